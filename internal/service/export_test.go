package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medregistry/internal/model"
	repoMocks "medregistry/internal/repository/mocks"
	"medregistry/internal/storage"
	storeMocks "medregistry/internal/storage/mocks"
)

func TestExportService_ExportArchive(t *testing.T) {
	ctx := context.Background()

	t.Run("admin export stores the zip and presigns a link", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		mUsers := new(repoMocks.MockUserRepository)
		mStore := new(storeMocks.MockStorage)

		mUsers.On("FindByID", ctx, "admin-1").
			Return(&model.User{ID: "admin-1", Role: model.RoleAdmin}, nil)
		doc := storedDocument(t, []model.File{
			{Name: "scan.pdf", MimeType: "application/pdf", Size: 4, Payload: []byte("scan")},
		})
		mDocs.On("FindByID", ctx, "doc-1").Return(doc, nil)

		mStore.On("Put", ctx, "exports/doc-1/dischargesummary.zip",
			mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
				return opt.ContentType == "application/zip" && opt.Size > 0
			})).Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
			return storage.ObjectInfo{Key: key, Size: opt.Size}
		}, nil)
		mStore.On("PresignGet", ctx, "exports/doc-1/dischargesummary.zip", 15*time.Minute).
			Return("https://minio.local/exports/doc-1/dischargesummary.zip?sig=abc", nil)

		svc := NewExportService(mDocs, mUsers, mStore)
		res, err := svc.ExportArchive(ctx, "admin-1", "doc-1")

		require.NoError(t, err)
		assert.Equal(t, "exports/doc-1/dischargesummary.zip", res.Key)
		assert.Positive(t, res.Size)
		assert.True(t, strings.HasPrefix(res.URL, "https://minio.local/"))
		mStore.AssertExpectations(t)
	})

	t.Run("non-admin requester is refused", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("FindByID", ctx, "user-1").
			Return(&model.User{ID: "user-1", Role: model.RoleUser, Department: "Cardiology"}, nil)

		svc := NewExportService(new(repoMocks.MockDocumentRepository), mUsers, new(storeMocks.MockStorage))
		_, err := svc.ExportArchive(ctx, "user-1", "doc-1")

		assert.ErrorIs(t, err, ErrAdminRequired)
	})

	t.Run("anonymous requester is refused", func(t *testing.T) {
		svc := NewExportService(new(repoMocks.MockDocumentRepository), new(repoMocks.MockUserRepository), new(storeMocks.MockStorage))
		_, err := svc.ExportArchive(ctx, "", "doc-1")

		assert.ErrorIs(t, err, ErrAdminRequired)
	})

	t.Run("disabled without object storage", func(t *testing.T) {
		svc := NewExportService(new(repoMocks.MockDocumentRepository), new(repoMocks.MockUserRepository), nil)
		_, err := svc.ExportArchive(ctx, "admin-1", "doc-1")

		assert.ErrorIs(t, err, ErrExportDisabled)
	})
}
