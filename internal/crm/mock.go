package crm

import (
	"context"

	"github.com/ridgelinecap/dealmatch/internal/model"
)

// MockRepository is a mock implementation of service.DealRepository for testing.
type MockRepository struct {
	// Functions that can be set by tests to control behavior
	GetEmailFn              func(ctx context.Context, id string) (*model.EmailMessage, error)
	GetDealFn               func(ctx context.Context, id string) (*model.Deal, error)
	GetDealsByIDsFn         func(ctx context.Context, ids []string) ([]model.Deal, error)
	SearchDealsByPropertyFn func(ctx context.Context, property, value string) ([]model.Deal, error)
	GetAssociatedIDsFn      func(ctx context.Context, fromType, fromID, toType string) ([]string, error)
	AssociateEmailToDealFn  func(ctx context.Context, emailID, dealID string) error

	// Call tracking
	GetEmailCalls    []string
	GetDealCalls     []string
	SearchCalls      []SearchCall
	AssociationCalls []AssociationCall
	AssociateCalls   []AssociateCall

	// associations holds the email-deal pairs written so far, mimicking the
	// store's idempotent association write.
	associations map[string]struct{}
}

// SearchCall records the parameters of a SearchDealsByProperty call.
type SearchCall struct {
	Property string
	Value    string
}

// AssociationCall records the parameters of a GetAssociatedIDs call.
type AssociationCall struct {
	FromType string
	FromID   string
	ToType   string
}

// AssociateCall records the parameters of an AssociateEmailToDeal call.
type AssociateCall struct {
	EmailID string
	DealID  string
}

// NewMockRepository creates a new mock deal repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		associations: make(map[string]struct{}),
	}
}

// GetEmail implements service.DealRepository.
func (m *MockRepository) GetEmail(ctx context.Context, id string) (*model.EmailMessage, error) {
	m.GetEmailCalls = append(m.GetEmailCalls, id)
	if m.GetEmailFn != nil {
		return m.GetEmailFn(ctx, id)
	}
	return &model.EmailMessage{ID: id}, nil
}

// GetDeal implements service.DealRepository.
func (m *MockRepository) GetDeal(ctx context.Context, id string) (*model.Deal, error) {
	m.GetDealCalls = append(m.GetDealCalls, id)
	if m.GetDealFn != nil {
		return m.GetDealFn(ctx, id)
	}
	return &model.Deal{ID: id}, nil
}

// GetDealsByIDs implements service.DealRepository.
func (m *MockRepository) GetDealsByIDs(ctx context.Context, ids []string) ([]model.Deal, error) {
	if m.GetDealsByIDsFn != nil {
		return m.GetDealsByIDsFn(ctx, ids)
	}
	return nil, nil
}

// SearchDealsByProperty implements service.DealRepository.
func (m *MockRepository) SearchDealsByProperty(ctx context.Context, property, value string) ([]model.Deal, error) {
	m.SearchCalls = append(m.SearchCalls, SearchCall{Property: property, Value: value})
	if m.SearchDealsByPropertyFn != nil {
		return m.SearchDealsByPropertyFn(ctx, property, value)
	}
	return nil, nil
}

// GetAssociatedIDs implements service.DealRepository.
func (m *MockRepository) GetAssociatedIDs(ctx context.Context, fromType, fromID, toType string) ([]string, error) {
	m.AssociationCalls = append(m.AssociationCalls, AssociationCall{FromType: fromType, FromID: fromID, ToType: toType})
	if m.GetAssociatedIDsFn != nil {
		return m.GetAssociatedIDsFn(ctx, fromType, fromID, toType)
	}
	return nil, nil
}

// AssociateEmailToDeal implements service.DealRepository.
func (m *MockRepository) AssociateEmailToDeal(ctx context.Context, emailID, dealID string) error {
	m.AssociateCalls = append(m.AssociateCalls, AssociateCall{EmailID: emailID, DealID: dealID})
	if m.AssociateEmailToDealFn != nil {
		return m.AssociateEmailToDealFn(ctx, emailID, dealID)
	}
	m.associations[emailID+":"+dealID] = struct{}{}
	return nil
}

// AssociationCount returns the number of distinct email-deal links written.
func (m *MockRepository) AssociationCount() int {
	return len(m.associations)
}
