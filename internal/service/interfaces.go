// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/ridgelinecap/dealmatch/internal/model"
)

// DealRepository defines the contract for the external CRM store. All reads,
// searches, and the single association write go through this interface so
// the engine can be tested against a double.
type DealRepository interface {
	// Email operations
	GetEmail(ctx context.Context, id string) (*model.EmailMessage, error)

	// Deal operations
	GetDeal(ctx context.Context, id string) (*model.Deal, error)
	GetDealsByIDs(ctx context.Context, ids []string) ([]model.Deal, error)
	SearchDealsByProperty(ctx context.Context, property, value string) ([]model.Deal, error)

	// Association operations
	GetAssociatedIDs(ctx context.Context, fromType, fromID, toType string) ([]string, error)
	AssociateEmailToDeal(ctx context.Context, emailID, dealID string) error
}

// Pacer spaces out dependent external calls to respect the store's rate
// limits. *rate.Limiter satisfies it; tests substitute a zero-delay policy.
type Pacer interface {
	Wait(ctx context.Context) error
}

// RetryOptions configures retry behavior for rate-limited operations.
// An operation runs at most MaxRetries+1 times.
type RetryOptions struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// BatchSummary shows the results of one batch invocation.
type BatchSummary struct {
	Duration        time.Duration
	Processed       int
	Matched         int
	FallbackMatched int
	Unmatched       int
	Skipped         int
}
