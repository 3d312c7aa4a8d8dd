package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medregistry/internal/model"
	"medregistry/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, in service.UploadInput) (*model.DocumentMeta, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentMeta), args.Error(1)
}

func (m *MockDocumentService) ListVisible(ctx context.Context, requesterID string) ([]model.DocumentMeta, error) {
	args := m.Called(ctx, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentMeta), args.Error(1)
}

func (m *MockDocumentService) ListFiles(ctx context.Context, id string) (*service.FileListing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileListing), args.Error(1)
}

func (m *MockDocumentService) DownloadFile(ctx context.Context, id string, index int) (*service.FileContent, error) {
	args := m.Called(ctx, id, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileContent), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, id string) (*service.FileContent, *service.FileListing, error) {
	args := m.Called(ctx, id)
	var fc *service.FileContent
	if args.Get(0) != nil {
		fc = args.Get(0).(*service.FileContent)
	}
	var listing *service.FileListing
	if args.Get(1) != nil {
		listing = args.Get(1).(*service.FileListing)
	}
	return fc, listing, args.Error(2)
}

func (m *MockDocumentService) Archive(ctx context.Context, id string) (*service.Archive, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Archive), args.Error(1)
}
