package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ridgelinecap/dealmatch/internal/model"
	"github.com/ridgelinecap/dealmatch/internal/service"
)

// Processor drives one batch invocation: filtering change events,
// deduplicating email ids within the batch, and running each email through
// extraction, matching, fallback, and the single association write.
//
// Processing is strictly sequential. A failure for one email marks it
// SKIPPED and never affects the rest of the batch; only context
// cancellation aborts the invocation.
type Processor struct {
	repo      service.DealRepository
	extractor IdentifierExtractor
	matcher   *Matcher
	resolver  *Resolver
	logger    *slog.Logger
	dryRun    bool
}

// NewProcessor creates a batch processor.
func NewProcessor(repo service.DealRepository, extractor IdentifierExtractor, matcher *Matcher, resolver *Resolver, dryRun bool) *Processor {
	return &Processor{
		repo:      repo,
		extractor: extractor,
		matcher:   matcher,
		resolver:  resolver,
		dryRun:    dryRun,
		logger:    slog.Default().With("component", "processor"),
	}
}

// ProcessBatch processes an ordered list of change events and returns the
// invocation summary. Individual email failures are reflected in the
// summary's Skipped count, not in the returned error.
func (p *Processor) ProcessBatch(ctx context.Context, events []model.ChangeEvent) (service.BatchSummary, error) {
	start := time.Now()
	logger := p.logger.With("run_id", uuid.NewString())
	logger.Info("Starting batch", "events", len(events), "dry_run", p.dryRun)

	var summary service.BatchSummary

	// In-batch dedup only; discarded when the batch ends.
	seen := make(map[string]struct{})

	for _, event := range events {
		if !event.IsEmailChange() {
			continue
		}
		if _, dup := seen[event.ObjectID]; dup {
			logger.Debug("Skipping duplicate event", "email_id", event.ObjectID)
			continue
		}
		seen[event.ObjectID] = struct{}{}
		summary.Processed++

		result, err := p.processEmail(ctx, event.ObjectID, logger)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				summary.Duration = time.Since(start)
				return summary, err
			}
			logger.Error("Email processing failed, skipping",
				"email_id", event.ObjectID,
				"state", model.StateSkipped,
				"error", err)
			summary.Skipped++
			continue
		}

		switch {
		case result == nil:
			summary.Unmatched++
		case result.Type == model.MatchSingleContactDeal:
			summary.FallbackMatched++
			summary.Matched++
		default:
			summary.Matched++
		}
	}

	summary.Duration = time.Since(start)
	logger.Info("Batch complete",
		"processed", summary.Processed,
		"matched", summary.Matched,
		"fallback_matched", summary.FallbackMatched,
		"unmatched", summary.Unmatched,
		"skipped", summary.Skipped,
		"duration", summary.Duration)

	return summary, nil
}

// processEmail walks one email through the state machine. A nil result with
// a nil error means the email ended UNMATCHED.
func (p *Processor) processEmail(ctx context.Context, emailID string, logger *slog.Logger) (*model.Result, error) {
	logger.Debug("Processing email", "email_id", emailID, "state", model.StateReceived)

	email, err := p.repo.GetEmail(ctx, emailID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch email content: %w", err)
	}

	ids := p.extractor.Extract(email.Subject, email.Body)
	logger.Debug("Extracted identifiers",
		"email_id", emailID,
		"state", model.StateParsed,
		"loan_numbers", len(ids.LoanNumbers),
		"addresses", len(ids.Addresses),
		"deal_names", len(ids.DealNames))

	result, err := p.matcher.Match(ctx, *email, ids)
	if err != nil {
		return nil, fmt.Errorf("matching failed: %w", err)
	}

	if result == nil {
		result, err = p.resolver.Resolve(ctx, emailID)
		if err != nil {
			return nil, fmt.Errorf("fallback resolution failed: %w", err)
		}
	}

	if result == nil {
		logger.Info("No match found", "email_id", emailID, "state", model.StateUnmatched)
		return nil, nil
	}

	logger.Info("Match found",
		"email_id", emailID,
		"state", matchState(result.Type),
		"deal_id", result.Deal.ID,
		"deal_name", result.Deal.Name,
		"match_type", result.Type,
		"confidence", result.Confidence)

	if p.dryRun {
		return result, nil
	}

	// The write is issued unconditionally on every match; at-least-once
	// event delivery relies on the store's idempotent association write.
	if err := p.repo.AssociateEmailToDeal(ctx, emailID, result.Deal.ID); err != nil {
		return nil, fmt.Errorf("association write failed: %w", err)
	}

	logger.Debug("Email associated", "email_id", emailID, "state", model.StateAssociated)
	return result, nil
}

func matchState(t model.MatchType) model.EmailState {
	switch t {
	case model.MatchLoanNumber:
		return model.StateLoanMatched
	case model.MatchSingleContactDeal:
		return model.StateFallbackMatched
	default:
		return model.StateCandidateScored
	}
}
