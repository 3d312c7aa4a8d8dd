package repository

import (
	"context"
	"time"

	"medregistry/internal/model"
	"medregistry/internal/policy"
)

// DocumentRepository defines persistence for documents using SQL
// queries only. Documents are insert-once: there is no update or
// delete operation by design.
type DocumentRepository interface {
	// Create inserts the document as a single row; the aggregate is
	// written as one unit or not at all.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document including its blob.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListVisible returns the metadata projections visible to the
	// given scope, newest first. Blobs are never selected.
	ListVisible(ctx context.Context, scope policy.Scope) ([]model.DocumentMeta, error)

	// CountAndSize returns the number of visible documents and their
	// summed total_size. A non-nil until restricts to rows uploaded
	// strictly before that instant (the baseline snapshot).
	CountAndSize(ctx context.Context, scope policy.Scope, until *time.Time) (int, int64, error)

	// CountBetween counts visible documents with from <= uploaded_at < to.
	CountBetween(ctx context.Context, scope policy.Scope, from, to time.Time) (int, error)

	// DailyUploads returns per-day upload aggregates for visible
	// documents with from <= uploaded_at < to, ordered oldest first.
	// Days without uploads are absent; callers zero-fill.
	DailyUploads(ctx context.Context, scope policy.Scope, from, to time.Time) ([]DayStat, error)
}
