package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ruralpay/investflow/internal/models"
)

type MockPromptStore struct {
	mock.Mock
}

func (m *MockPromptStore) Load(ctx context.Context, owner string) (PromptState, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(PromptState), args.Error(1)
}

func (m *MockPromptStore) Save(ctx context.Context, owner string, state PromptState) error {
	args := m.Called(ctx, owner, state)
	return args.Error(0)
}

type MockBankProvider struct {
	mock.Mock
}

func (m *MockBankProvider) InitiateVerification(ctx context.Context, bankID string) (VerificationResult, error) {
	args := m.Called(ctx, bankID)
	return args.Get(0).(VerificationResult), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Debit(ctx context.Context, accountID, reference string, amount models.Money) (models.Money, error) {
	args := m.Called(ctx, accountID, reference, amount)
	return args.Get(0).(models.Money), args.Error(1)
}

func (m *MockLedger) Credit(ctx context.Context, accountID, reference string, amount models.Money) (models.Money, error) {
	args := m.Called(ctx, accountID, reference, amount)
	return args.Get(0).(models.Money), args.Error(1)
}

type fixedReference string

func (f fixedReference) Next() string { return string(f) }

// recordingNavigator remembers every route it was sent to.
type recordingNavigator struct {
	routes []models.Route
}

func (n *recordingNavigator) Navigate(route models.Route) {
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) last() models.Route {
	if len(n.routes) == 0 {
		return models.Route{}
	}
	return n.routes[len(n.routes)-1]
}
