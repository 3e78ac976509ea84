package mocks

import (
	"context"
	"time"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) LoadGraph(ctx context.Context, id string) (*models.Graph, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Graph), args.Error(1)
}

func (m *MockPersistence) SaveGraph(ctx context.Context, graph *models.Graph, expectedVersion int64) (*models.Graph, error) {
	args := m.Called(ctx, graph, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Graph), args.Error(1)
}

func (m *MockPersistence) UpdateGraphStatus(ctx context.Context, id string, status models.GraphStatus, expectedVersion int64) (*models.Graph, error) {
	args := m.Called(ctx, id, status, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Graph), args.Error(1)
}

func (m *MockPersistence) ListActive(ctx context.Context, owner, modelKey string) ([]*models.Graph, error) {
	args := m.Called(ctx, owner, modelKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Graph), args.Error(1)
}

func (m *MockPersistence) ListGraphs(ctx context.Context, owner string) ([]*models.Graph, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Graph), args.Error(1)
}

func (m *MockPersistence) DeleteGraph(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockPersistence) SaveExecution(ctx context.Context, record *models.ExecutionRecord) error {
	args := m.Called(ctx, record)

	return args.Error(0)
}

func (m *MockPersistence) ExecutionsByGraph(ctx context.Context, graphID string, limit int) ([]*models.ExecutionRecord, error) {
	args := m.Called(ctx, graphID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.ExecutionRecord), args.Error(1)
}

func (m *MockPersistence) DeleteExecutionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)

	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPersistence) AppendActivity(ctx context.Context, activity models.Activity) error {
	args := m.Called(ctx, activity)

	return args.Error(0)
}

func (m *MockPersistence) ActivitiesByEntity(ctx context.Context, owner, entityID string) ([]models.Activity, error) {
	args := m.Called(ctx, owner, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.Activity), args.Error(1)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
