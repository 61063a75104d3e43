package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridgelinecap/dealmatch/internal/crm"
	"github.com/ridgelinecap/dealmatch/internal/model"
)

func TestResolver_SingleContactSingleDeal(t *testing.T) {
	ctx := context.Background()
	repo := crm.NewMockRepository()
	repo.GetAssociatedIDsFn = func(_ context.Context, fromType, fromID, toType string) ([]string, error) {
		switch {
		case fromType == "emails" && fromID == "e1" && toType == "contacts":
			return []string{"c1"}, nil
		case fromType == "contacts" && fromID == "c1" && toType == "deals":
			return []string{"d1"}, nil
		}
		return nil, nil
	}
	repo.GetDealFn = func(_ context.Context, id string) (*model.Deal, error) {
		return &model.Deal{ID: id, Name: "Palm Villas"}, nil
	}

	r := NewResolver(repo)
	result, err := r.Resolve(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "d1", result.Deal.ID)
	assert.Equal(t, 100, result.Confidence)
	assert.Equal(t, model.MatchSingleContactDeal, result.Type)
}

func TestResolver_AmbiguousContactSkipped(t *testing.T) {
	ctx := context.Background()
	repo := crm.NewMockRepository()
	repo.GetAssociatedIDsFn = func(_ context.Context, fromType, fromID, toType string) ([]string, error) {
		switch {
		case fromType == "emails":
			return []string{"c1", "c2"}, nil
		case fromID == "c1":
			// Two deals: ambiguous, must be skipped.
			return []string{"d1", "d2"}, nil
		case fromID == "c2":
			return []string{"d3"}, nil
		}
		return nil, nil
	}

	r := NewResolver(repo)
	result, err := r.Resolve(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "d3", result.Deal.ID)
	assert.Equal(t, 100, result.Confidence)
}

func TestResolver_ContactLookupFailureContinues(t *testing.T) {
	ctx := context.Background()
	repo := crm.NewMockRepository()
	repo.GetAssociatedIDsFn = func(_ context.Context, fromType, fromID, toType string) ([]string, error) {
		switch {
		case fromType == "emails":
			return []string{"c1", "c2"}, nil
		case fromID == "c1":
			return nil, errors.New("transient lookup failure")
		case fromID == "c2":
			return []string{"d3"}, nil
		}
		return nil, nil
	}

	r := NewResolver(repo)
	result, err := r.Resolve(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "d3", result.Deal.ID)
}

func TestResolver_NoQualifyingContact(t *testing.T) {
	ctx := context.Background()
	repo := crm.NewMockRepository()
	repo.GetAssociatedIDsFn = func(_ context.Context, fromType, fromID, toType string) ([]string, error) {
		if fromType == "emails" {
			return []string{"c1", "c2"}, nil
		}
		// c1 has no deals, c2 has three.
		if fromID == "c1" {
			return nil, nil
		}
		return []string{"d1", "d2", "d3"}, nil
	}

	r := NewResolver(repo)
	result, err := r.Resolve(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestResolver_ContactFetchErrorPropagates(t *testing.T) {
	ctx := context.Background()
	repo := crm.NewMockRepository()
	lookupErr := errors.New("boom")
	repo.GetAssociatedIDsFn = func(_ context.Context, fromType, _, _ string) ([]string, error) {
		if fromType == "emails" {
			return nil, lookupErr
		}
		return nil, nil
	}

	r := NewResolver(repo)
	_, err := r.Resolve(ctx, "e1")
	assert.ErrorIs(t, err, lookupErr)
}
