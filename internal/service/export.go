package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"medregistry/internal/archive"
	"medregistry/internal/codec"
	"medregistry/internal/policy"
	"medregistry/internal/repository"
	"medregistry/internal/storage"
)

const presignExpiry = 15 * time.Minute

// ExportResult describes an archive pushed to object storage.
type ExportResult struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// ExportService copies a document's archive into object storage and
// hands out a presigned download link. Admin only.
type ExportService interface {
	ExportArchive(ctx context.Context, requesterID, docID string) (*ExportResult, error)
}

type exportService struct {
	docs  repository.DocumentRepository
	users repository.UserRepository
	store storage.Storage // optional; nil disables the feature
}

// NewExportService constructs an ExportService. store may be nil when
// object storage is not configured; every call then fails with
// ErrExportDisabled.
func NewExportService(docs repository.DocumentRepository, users repository.UserRepository, store storage.Storage) ExportService {
	return &exportService{docs: docs, users: users, store: store}
}

func (s *exportService) ExportArchive(ctx context.Context, requesterID, docID string) (*ExportResult, error) {
	if s.store == nil {
		return nil, ErrExportDisabled
	}

	scope, err := policy.Resolve(ctx, s.users, requesterID)
	if err != nil {
		return nil, err
	}
	if scope.Kind != policy.Admin {
		return nil, ErrAdminRequired
	}

	doc, err := fetchDocument(ctx, s.docs, docID)
	if err != nil {
		return nil, err
	}

	p := codec.Decode(doc.Blob, doc)
	if len(p.Files) == 0 {
		return nil, ErrNoFiles
	}

	var buf bytes.Buffer
	if err := archive.Write(&buf, p.Files); err != nil {
		return nil, fmt.Errorf("build archive: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s", doc.ID, archive.Filename(doc.Name))
	info, err := s.store.Put(ctx, key, &buf, storage.PutObjectOptions{
		Size:        int64(buf.Len()),
		ContentType: "application/zip",
	})
	if err != nil {
		return nil, fmt.Errorf("store archive: %w", err)
	}

	url, err := s.store.PresignGet(ctx, key, presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign archive: %w", err)
	}

	return &ExportResult{Key: info.Key, Size: info.Size, URL: url}, nil
}
