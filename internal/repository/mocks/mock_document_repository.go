package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"medregistry/internal/model"
	"medregistry/internal/policy"
	"medregistry/internal/repository"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if f, ok := args.Get(0).(func(context.Context, *model.Document) *model.Document); ok {
		return f(ctx, doc), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListVisible(ctx context.Context, scope policy.Scope) ([]model.DocumentMeta, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentMeta), args.Error(1)
}

func (m *MockDocumentRepository) CountAndSize(ctx context.Context, scope policy.Scope, until *time.Time) (int, int64, error) {
	args := m.Called(ctx, scope, until)
	return args.Int(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentRepository) CountBetween(ctx context.Context, scope policy.Scope, from, to time.Time) (int, error) {
	args := m.Called(ctx, scope, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentRepository) DailyUploads(ctx context.Context, scope policy.Scope, from, to time.Time) ([]repository.DayStat, error) {
	args := m.Called(ctx, scope, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DayStat), args.Error(1)
}
