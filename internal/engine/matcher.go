// Package engine implements the core matching engine linking emails to deals.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ridgelinecap/dealmatch/internal/extract"
	"github.com/ridgelinecap/dealmatch/internal/model"
	"github.com/ridgelinecap/dealmatch/internal/score"
	"github.com/ridgelinecap/dealmatch/internal/service"
)

// MatcherConfig holds the knobs for the matching orchestrator. All values
// are injected at construction; there is no module-level state.
type MatcherConfig struct {
	AllowedStages        []string
	AcceptanceThreshold  int
	LoanNumberProperties []string
	DealNameProperty     string
	AddressProperty      string
}

// Matcher runs the identifier channels against the store in fixed priority
// order: loan number, deal name, address. The loan-number channel
// short-circuits at confidence 100; the other two pool candidates for
// scoring against the acceptance threshold.
type Matcher struct {
	repo   service.DealRepository
	pacer  service.Pacer
	logger *slog.Logger
	stages map[string]struct{}
	cfg    MatcherConfig
}

// NewMatcher creates a matcher with the given repository, pacer, and
// configuration.
func NewMatcher(repo service.DealRepository, pacer service.Pacer, cfg MatcherConfig) *Matcher {
	stages := make(map[string]struct{}, len(cfg.AllowedStages))
	for _, s := range cfg.AllowedStages {
		stages[strings.ToLower(s)] = struct{}{}
	}
	return &Matcher{
		repo:   repo,
		pacer:  pacer,
		cfg:    cfg,
		stages: stages,
		logger: slog.Default().With("component", "matcher"),
	}
}

// Match resolves the extracted identifiers to a deal, or nil when no
// channel yields an accepted match.
func (m *Matcher) Match(ctx context.Context, email model.EmailMessage, ids model.ParsedIdentifiers) (*model.Result, error) {
	result, err := m.matchLoanNumbers(ctx, email.ID, ids.LoanNumbers)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}

	candidates, err := m.poolCandidates(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	for i := range candidates {
		candidates[i].Score = score.Candidate(candidates[i], ids)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	top := candidates[0]
	if top.Score < m.cfg.AcceptanceThreshold {
		m.logger.Info("Top candidate below acceptance threshold",
			"email_id", email.ID,
			"deal_id", top.Deal.ID,
			"score", top.Score,
			"threshold", m.cfg.AcceptanceThreshold)
		return nil, nil
	}

	return &model.Result{Deal: top.Deal, Confidence: top.Score, Type: top.Type}, nil
}

// matchLoanNumbers runs the highest-priority channel. Any stage-eligible
// hit on any loan-number-bearing property wins outright at confidence 100
// and prevents the remaining channels from executing.
func (m *Matcher) matchLoanNumbers(ctx context.Context, emailID string, loanNumbers []string) (*model.Result, error) {
	for _, number := range loanNumbers {
		for _, property := range m.cfg.LoanNumberProperties {
			deals, err := m.search(ctx, property, number)
			if err != nil {
				return nil, err
			}
			deals = m.filterStages(deals)
			if len(deals) == 0 {
				continue
			}

			m.logger.Info("Loan number matched",
				"email_id", emailID,
				"loan_number", number,
				"property", property,
				"deal_id", deals[0].ID)
			return &model.Result{Deal: deals[0], Confidence: 100, Type: model.MatchLoanNumber}, nil
		}
	}
	return nil, nil
}

// poolCandidates runs the deal-name and address channels, pooling every
// stage-eligible hit. Names and addresses are stored interchangeably in
// practice, so each channel retries the other channel's property when its
// own search comes back empty.
func (m *Matcher) poolCandidates(ctx context.Context, ids model.ParsedIdentifiers) ([]model.Candidate, error) {
	var pool []model.Candidate

	for _, fragment := range ids.DealNames {
		name := extract.CleanFragment(fragment)
		if name == "" {
			continue
		}

		deals, err := m.searchWithRetryProperty(ctx, m.cfg.DealNameProperty, m.cfg.AddressProperty, name)
		if err != nil {
			return nil, err
		}
		for _, deal := range m.filterStages(deals) {
			pool = append(pool, model.Candidate{Deal: deal, Type: model.MatchDealName, MatchedText: name})
		}
	}

	for _, address := range ids.Addresses {
		core := extract.StreetCore(address)
		if core == "" {
			continue
		}

		deals, err := m.searchWithRetryProperty(ctx, m.cfg.AddressProperty, m.cfg.DealNameProperty, core)
		if err != nil {
			return nil, err
		}
		for _, deal := range m.filterStages(deals) {
			pool = append(pool, model.Candidate{Deal: deal, Type: model.MatchAddress, MatchedText: core})
		}
	}

	return pool, nil
}

func (m *Matcher) searchWithRetryProperty(ctx context.Context, primary, secondary, value string) ([]model.Deal, error) {
	deals, err := m.search(ctx, primary, value)
	if err != nil {
		return nil, err
	}
	if len(deals) > 0 {
		return deals, nil
	}
	return m.search(ctx, secondary, value)
}

func (m *Matcher) search(ctx context.Context, property, value string) ([]model.Deal, error) {
	if err := m.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pacer wait canceled: %w", err)
	}
	return m.repo.SearchDealsByProperty(ctx, property, value)
}

// filterStages drops deals whose stage is outside the allowed stage set.
func (m *Matcher) filterStages(deals []model.Deal) []model.Deal {
	filtered := make([]model.Deal, 0, len(deals))
	for _, deal := range deals {
		if _, ok := m.stages[strings.ToLower(deal.Stage)]; ok {
			filtered = append(filtered, deal)
		}
	}
	return filtered
}
