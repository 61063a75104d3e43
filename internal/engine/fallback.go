package engine

import (
	"context"
	"log/slog"

	"github.com/ridgelinecap/dealmatch/internal/model"
	"github.com/ridgelinecap/dealmatch/internal/service"
)

// Resolver is the last-resort matcher: when no content-based channel
// produced a match, an email whose contact has exactly one associated deal
// is linked to that deal.
type Resolver struct {
	repo   service.DealRepository
	logger *slog.Logger
}

// NewResolver creates a fallback resolver.
func NewResolver(repo service.DealRepository) *Resolver {
	return &Resolver{
		repo:   repo,
		logger: slog.Default().With("component", "fallback"),
	}
}

// Resolve walks the email's contacts in association order and returns the
// first contact's sole deal at confidence 100. Contacts with zero or
// multiple deals are ambiguous and skipped. A lookup failure for one
// contact is logged and the next contact is tried.
func (r *Resolver) Resolve(ctx context.Context, emailID string) (*model.Result, error) {
	contactIDs, err := r.repo.GetAssociatedIDs(ctx, "emails", emailID, "contacts")
	if err != nil {
		return nil, err
	}

	for _, contactID := range contactIDs {
		dealIDs, err := r.repo.GetAssociatedIDs(ctx, "contacts", contactID, "deals")
		if err != nil {
			r.logger.Warn("Failed to fetch deals for contact, trying next",
				"email_id", emailID,
				"contact_id", contactID,
				"error", err)
			continue
		}
		if len(dealIDs) != 1 {
			continue
		}

		deal, err := r.repo.GetDeal(ctx, dealIDs[0])
		if err != nil {
			r.logger.Warn("Failed to fetch contact's deal, trying next",
				"email_id", emailID,
				"contact_id", contactID,
				"deal_id", dealIDs[0],
				"error", err)
			continue
		}

		r.logger.Info("Fallback matched via single contact deal",
			"email_id", emailID,
			"contact_id", contactID,
			"deal_id", deal.ID)
		return &model.Result{Deal: *deal, Confidence: 100, Type: model.MatchSingleContactDeal}, nil
	}

	return nil, nil
}
