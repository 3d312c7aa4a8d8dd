package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medregistry/internal/service"
)

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Dashboard(ctx context.Context, requesterID string) (*service.DashboardStats, error) {
	args := m.Called(ctx, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DashboardStats), args.Error(1)
}

func (m *MockStatsService) Trends(ctx context.Context, requesterID string, period int) ([]service.TrendPoint, error) {
	args := m.Called(ctx, requesterID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.TrendPoint), args.Error(1)
}
