package mocks

import (
	"context"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/protocol"
	"github.com/stretchr/testify/mock"
)

// MockMailer is a mock implementation of sendemail.Mailer interface.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Deliver(ctx context.Context, message models.EmailMessage) error {
	args := m.Called(ctx, message)

	return args.Error(0)
}

// MockActivityStore is a mock implementation of createactivity.Store and services.ActivityReader.
type MockActivityStore struct {
	mock.Mock
}

func (m *MockActivityStore) AppendActivity(ctx context.Context, activity models.Activity) error {
	args := m.Called(ctx, activity)

	return args.Error(0)
}

// MockActionExecutor is a mock implementation of protocol.ActionExecutor interface.
type MockActionExecutor struct {
	mock.Mock

	NodeType models.NodeType
}

func (m *MockActionExecutor) Type() models.NodeType {
	return m.NodeType
}

func (m *MockActionExecutor) Execute(ctx context.Context, config models.NodeConfig, input protocol.Input) (map[string]any, error) {
	args := m.Called(ctx, config, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockActivityStore) ActivitiesByEntity(ctx context.Context, owner, entityID string) ([]models.Activity, error) {
	args := m.Called(ctx, owner, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.Activity), args.Error(1)
}
