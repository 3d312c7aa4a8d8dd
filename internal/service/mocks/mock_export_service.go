package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medregistry/internal/service"
)

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportArchive(ctx context.Context, requesterID, docID string) (*service.ExportResult, error) {
	args := m.Called(ctx, requesterID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}
