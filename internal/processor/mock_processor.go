package processor

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(Intent), args.Error(1)
}

func (m *MockProcessor) RetrieveIntent(ctx context.Context, id string) (Intent, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Intent), args.Error(1)
}
