package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"medregistry/internal/archive"
	"medregistry/internal/codec"
	"medregistry/internal/model"
	"medregistry/internal/policy"
	"medregistry/internal/repository"
)

// DefaultAccessLevel is applied when an upload omits the access_level
// field or supplies an unrecognized value. New documents are
// restricted until someone decides otherwise.
const DefaultAccessLevel = model.AccessAdminOnly

const fallbackMimeType = "application/octet-stream"

// UploadFile is one file of an upload request, buffered whole.
type UploadFile struct {
	Name     string
	MimeType string
	Payload  []byte
}

// UploadInput carries everything needed to aggregate one document.
// AccessLevel is the raw request value; unknown values fall back to
// DefaultAccessLevel.
type UploadInput struct {
	DocumentName string
	Category     string
	Department   string
	Description  string
	UploadedBy   string
	AccessLevel  string
	Files        []UploadFile
}

// FileEntry describes one embedded file in a listing, addressable by
// its zero-based index.
type FileEntry struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// FileListing is the per-document file inventory plus metadata.
type FileListing struct {
	Document model.DocumentMeta `json:"document"`
	Legacy   bool               `json:"legacy"`
	Files    []FileEntry        `json:"files"`
}

// FileContent is one file's bytes ready for download.
type FileContent struct {
	Name     string
	MimeType string
	Size     int64
	Payload  []byte
}

// Archive is a prepared bulk download. Validation (existence, at least
// one file) happens before any byte is written, so callers can set
// response headers safely; Write then streams the zip incrementally.
type Archive struct {
	Filename string
	files    []model.File
}

// Write streams the zip to w. A failure here aborts an in-flight
// response; bytes already sent cannot be recalled.
func (a *Archive) Write(w io.Writer) error {
	return archive.Write(w, a.files)
}

// DocumentService defines the registry use cases: aggregate uploads
// into documents, list them under the visibility policy, and serve the
// three retrieval modes. Documents are immutable; there is no update
// or delete.
type DocumentService interface {
	// Upload aggregates the input files into exactly one document row.
	Upload(ctx context.Context, in UploadInput) (*model.DocumentMeta, error)

	// ListVisible returns the metadata projections the requester may
	// see, newest first. An unknown requester id degrades to the
	// anonymous scope.
	ListVisible(ctx context.Context, requesterID string) ([]model.DocumentMeta, error)

	// ListFiles returns the ordered file inventory of one document.
	ListFiles(ctx context.Context, id string) (*FileListing, error)

	// DownloadFile returns the exact payload of the file at index.
	DownloadFile(ctx context.Context, id string, index int) (*FileContent, error)

	// Download serves the index-less retrieval mode with a single
	// lookup: legacy documents yield their one file, structured
	// documents yield the inventory. Exactly one result is non-nil.
	Download(ctx context.Context, id string) (*FileContent, *FileListing, error)

	// Archive prepares the bulk zip download for one document.
	Archive(ctx context.Context, id string) (*Archive, error)
}

type documentService struct {
	docs        repository.DocumentRepository
	users       repository.UserRepository
	maxFileSize int64
	now         func() time.Time
}

// NewDocumentService constructs a DocumentService. maxFileSize bounds
// each uploaded file's byte size; zero disables the check.
func NewDocumentService(docs repository.DocumentRepository, users repository.UserRepository, maxFileSize int64) DocumentService {
	return &documentService{
		docs:        docs,
		users:       users,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*model.DocumentMeta, error) {
	if strings.TrimSpace(in.DocumentName) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, ErrCategoryRequired
	}
	if strings.TrimSpace(in.Department) == "" {
		return nil, ErrDepartmentRequired
	}
	if len(in.Files) == 0 {
		return nil, ErrEmptyFileList
	}

	files := make([]model.File, 0, len(in.Files))
	var totalSize int64
	typeList := make([]string, 0, len(in.Files))
	seenTypes := make(map[string]bool)

	for _, f := range in.Files {
		size := int64(len(f.Payload))
		if s.maxFileSize > 0 && size > s.maxFileSize {
			return nil, fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, f.Name, size)
		}
		mimeType := f.MimeType
		if mimeType == "" {
			mimeType = fallbackMimeType
		}
		files = append(files, model.File{
			Name:     f.Name,
			MimeType: mimeType,
			Size:     size,
			Payload:  f.Payload,
		})
		totalSize += size
		if !seenTypes[mimeType] {
			seenTypes[mimeType] = true
			typeList = append(typeList, mimeType)
		}
	}

	// Resolve the uploader's display name. An id that does not resolve
	// is stored as NULL, not treated as an error. The lookup and the
	// insert below are not one transaction; a concurrent profile edit
	// can leave a stale snapshot, which is accepted because documents
	// are never mutated afterwards.
	var (
		uploaderID      *string
		uploaderDisplay *string
	)
	if in.UploadedBy != "" {
		u, err := s.users.FindByID(ctx, in.UploadedBy)
		switch {
		case err == nil:
			uploaderID = &u.ID
			uploaderDisplay = &u.Name
		case errors.Is(err, sql.ErrNoRows):
			// unknown uploader, keep both NULL
		default:
			return nil, fmt.Errorf("resolve uploader: %w", err)
		}
	}

	level, ok := model.ParseAccessLevel(in.AccessLevel)
	if !ok {
		level = DefaultAccessLevel
	}

	blob, err := codec.Encode(files)
	if err != nil {
		return nil, fmt.Errorf("encode files: %w", err)
	}

	doc := &model.Document{
		ID:              uuid.New().String(),
		Name:            in.DocumentName,
		Category:        in.Category,
		Department:      in.Department,
		Description:     in.Description,
		TotalSize:       totalSize,
		TypeList:        typeList,
		UploaderID:      uploaderID,
		UploaderDisplay: uploaderDisplay,
		Blob:            blob,
		AccessLevel:     level,
		UploadedAt:      s.now().UTC(),
	}

	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	meta := stored.Meta()
	return &meta, nil
}

func (s *documentService) ListVisible(ctx context.Context, requesterID string) ([]model.DocumentMeta, error) {
	scope, err := policy.Resolve(ctx, s.users, requesterID)
	if err != nil {
		return nil, err
	}
	return s.docs.ListVisible(ctx, scope)
}

// fetchDocument loads one document by id, mapping missing rows to
// ErrNotFound.
func fetchDocument(ctx context.Context, docs repository.DocumentRepository, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// fileListing projects a decoded payload into the inventory shape.
func fileListing(doc *model.Document, p codec.Payload) *FileListing {
	entries := make([]FileEntry, 0, len(p.Files))
	for i, f := range p.Files {
		entries = append(entries, FileEntry{
			Index:    i,
			Name:     f.Name,
			MimeType: f.MimeType,
			Size:     f.Size,
		})
	}
	return &FileListing{
		Document: doc.Meta(),
		Legacy:   p.Legacy(),
		Files:    entries,
	}
}

func fileContent(f model.File) *FileContent {
	return &FileContent{
		Name:     f.Name,
		MimeType: f.MimeType,
		Size:     int64(len(f.Payload)),
		Payload:  f.Payload,
	}
}

func (s *documentService) ListFiles(ctx context.Context, id string) (*FileListing, error) {
	doc, err := fetchDocument(ctx, s.docs, id)
	if err != nil {
		return nil, err
	}
	return fileListing(doc, codec.Decode(doc.Blob, doc)), nil
}

func (s *documentService) DownloadFile(ctx context.Context, id string, index int) (*FileContent, error) {
	doc, err := fetchDocument(ctx, s.docs, id)
	if err != nil {
		return nil, err
	}

	p := codec.Decode(doc.Blob, doc)
	if index < 0 || index >= len(p.Files) {
		return nil, ErrFileOutOfRange
	}
	return fileContent(p.Files[index]), nil
}

func (s *documentService) Download(ctx context.Context, id string) (*FileContent, *FileListing, error) {
	doc, err := fetchDocument(ctx, s.docs, id)
	if err != nil {
		return nil, nil, err
	}

	p := codec.Decode(doc.Blob, doc)
	if p.Legacy() {
		return fileContent(p.Files[0]), nil, nil
	}
	return nil, fileListing(doc, p), nil
}

func (s *documentService) Archive(ctx context.Context, id string) (*Archive, error) {
	doc, err := fetchDocument(ctx, s.docs, id)
	if err != nil {
		return nil, err
	}

	p := codec.Decode(doc.Blob, doc)
	if len(p.Files) == 0 {
		return nil, ErrNoFiles
	}
	return &Archive{
		Filename: archive.Filename(doc.Name),
		files:    p.Files,
	}, nil
}
