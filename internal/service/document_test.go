package service

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medregistry/internal/codec"
	"medregistry/internal/model"
	"medregistry/internal/policy"
	repoMocks "medregistry/internal/repository/mocks"
)

func validUpload() UploadInput {
	return UploadInput{
		DocumentName: "Lab Results",
		Category:     "Labs",
		Department:   "Cardiology",
		Description:  "quarterly panel",
		AccessLevel:  "Public",
		Files: []UploadFile{
			{Name: "a.pdf", MimeType: "application/pdf", Payload: []byte("pdf-bytes")},
			{Name: "b.csv", MimeType: "text/csv", Payload: []byte("x,y\n1,2\n")},
			{Name: "c.pdf", MimeType: "application/pdf", Payload: []byte("more-pdf")},
		},
	}
}

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		mutate     func(*UploadInput)
		maxSize    int64
		setupMocks func(mDocs *repoMocks.MockDocumentRepository, mUsers *repoMocks.MockUserRepository)
		check      func(t *testing.T, meta *model.DocumentMeta, mDocs *repoMocks.MockDocumentRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "happy path aggregates files into one row",
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository, mUsers *repoMocks.MockUserRepository) {
				mDocs.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					if doc.TotalSize != int64(len("pdf-bytes")+len("x,y\n1,2\n")+len("more-pdf")) {
						return false
					}
					// first-seen order, no duplicates
					if len(doc.TypeList) != 2 || doc.TypeList[0] != "application/pdf" || doc.TypeList[1] != "text/csv" {
						return false
					}
					if doc.AccessLevel != model.AccessPublic {
						return false
					}
					p := codec.Decode(doc.Blob, doc)
					return p.Kind == codec.Structured && len(p.Files) == 3
				})).Return(func(ctx context.Context, doc *model.Document) *model.Document {
					return doc
				}, nil)
			},
			check: func(t *testing.T, meta *model.DocumentMeta, mDocs *repoMocks.MockDocumentRepository) {
				assert.Equal(t, "Lab Results", meta.Name)
				assert.NotEmpty(t, meta.ID)
				assert.Nil(t, meta.UploaderDisplay)
			},
		},
		{
			name: "known uploader is snapshotted",
			mutate: func(in *UploadInput) {
				in.UploadedBy = "user-1"
			},
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository, mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByID", ctx, "user-1").
					Return(&model.User{ID: "user-1", Name: "Dr. Adams"}, nil)
				mDocs.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.UploaderID != nil && *doc.UploaderID == "user-1" &&
						doc.UploaderDisplay != nil && *doc.UploaderDisplay == "Dr. Adams"
				})).Return(func(ctx context.Context, doc *model.Document) *model.Document {
					return doc
				}, nil)
			},
			check: func(t *testing.T, meta *model.DocumentMeta, mDocs *repoMocks.MockDocumentRepository) {
				require.NotNil(t, meta.UploaderDisplay)
				assert.Equal(t, "Dr. Adams", *meta.UploaderDisplay)
			},
		},
		{
			name: "unknown uploader id is stored as null, not an error",
			mutate: func(in *UploadInput) {
				in.UploadedBy = "ghost"
			},
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository, mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByID", ctx, "ghost").Return(nil, sql.ErrNoRows)
				mDocs.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.UploaderID == nil && doc.UploaderDisplay == nil
				})).Return(func(ctx context.Context, doc *model.Document) *model.Document {
					return doc
				}, nil)
			},
		},
		{
			name: "unrecognized access level falls back to restricted",
			mutate: func(in *UploadInput) {
				in.AccessLevel = "Everyone"
			},
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository, mUsers *repoMocks.MockUserRepository) {
				mDocs.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.AccessLevel == model.AccessAdminOnly
				})).Return(func(ctx context.Context, doc *model.Document) *model.Document {
					return doc
				}, nil)
			},
		},
		{
			name: "missing mime type gets octet-stream",
			mutate: func(in *UploadInput) {
				in.Files = []UploadFile{{Name: "raw.bin", Payload: []byte{0x01, 0x02}}}
			},
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository, mUsers *repoMocks.MockUserRepository) {
				mDocs.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					return len(doc.TypeList) == 1 && doc.TypeList[0] == "application/octet-stream"
				})).Return(func(ctx context.Context, doc *model.Document) *model.Document {
					return doc
				}, nil)
			},
		},
		{
			name:    "empty file list is rejected",
			mutate:  func(in *UploadInput) { in.Files = nil },
			wantErr: ErrEmptyFileList,
		},
		{
			name:    "blank document name is rejected",
			mutate:  func(in *UploadInput) { in.DocumentName = "   " },
			wantErr: ErrNameRequired,
		},
		{
			name:    "missing category is rejected",
			mutate:  func(in *UploadInput) { in.Category = "" },
			wantErr: ErrCategoryRequired,
		},
		{
			name:    "missing department is rejected",
			mutate:  func(in *UploadInput) { in.Department = "" },
			wantErr: ErrDepartmentRequired,
		},
		{
			name:    "oversized file is rejected",
			maxSize: 4,
			wantErr: ErrFileTooLarge,
		},
		{
			name: "repository failure is surfaced",
			setupMocks: func(mDocs *repoMocks.MockDocumentRepository, mUsers *repoMocks.MockUserRepository) {
				mDocs.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErrMsg: "db save failed: db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mDocs := new(repoMocks.MockDocumentRepository)
			mUsers := new(repoMocks.MockUserRepository)
			if tt.setupMocks != nil {
				tt.setupMocks(mDocs, mUsers)
			}

			in := validUpload()
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			svc := NewDocumentService(mDocs, mUsers, tt.maxSize)
			meta, err := svc.Upload(ctx, in)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, meta)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
				assert.Nil(t, meta)
			default:
				require.NoError(t, err)
				require.NotNil(t, meta)
				if tt.check != nil {
					tt.check(t, meta, mDocs)
				}
			}

			mDocs.AssertExpectations(t)
			mUsers.AssertExpectations(t)
		})
	}
}

func storedDocument(t *testing.T, files []model.File) *model.Document {
	t.Helper()
	blob, err := codec.Encode(files)
	require.NoError(t, err)
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return &model.Document{
		ID:          "doc-1",
		Name:        "Discharge Summary",
		Category:    "Reports",
		Department:  "Neurology",
		TotalSize:   total,
		TypeList:    []string{"application/pdf"},
		Blob:        blob,
		AccessLevel: model.AccessPublic,
	}
}

func TestDocumentService_ListFiles(t *testing.T) {
	ctx := context.Background()

	t.Run("structured document lists entries in stored order", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		doc := storedDocument(t, []model.File{
			{Name: "one.pdf", MimeType: "application/pdf", Size: 3, Payload: []byte("abc")},
			{Name: "two.pdf", MimeType: "application/pdf", Size: 2, Payload: []byte("de")},
		})
		mDocs.On("FindByID", ctx, "doc-1").Return(doc, nil)

		svc := NewDocumentService(mDocs, nil, 0)
		listing, err := svc.ListFiles(ctx, "doc-1")

		require.NoError(t, err)
		assert.False(t, listing.Legacy)
		require.Len(t, listing.Files, 2)
		assert.Equal(t, 0, listing.Files[0].Index)
		assert.Equal(t, "one.pdf", listing.Files[0].Name)
		assert.Equal(t, 1, listing.Files[1].Index)
		assert.Equal(t, "two.pdf", listing.Files[1].Name)
		assert.Equal(t, "Discharge Summary", listing.Document.Name)
		mDocs.AssertExpectations(t)
	})

	t.Run("legacy blob lists a single synthesized file", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		doc := storedDocument(t, []model.File{{Name: "x", Size: 1, Payload: []byte("x")}})
		doc.Blob = []byte{0xDE, 0xAD, 0xBE, 0xEF}
		doc.TypeList = []string{"image/png"}
		doc.TotalSize = 4
		mDocs.On("FindByID", ctx, "doc-1").Return(doc, nil)

		svc := NewDocumentService(mDocs, nil, 0)
		listing, err := svc.ListFiles(ctx, "doc-1")

		require.NoError(t, err)
		assert.True(t, listing.Legacy)
		require.Len(t, listing.Files, 1)
		assert.Equal(t, "Discharge Summary", listing.Files[0].Name)
		assert.Equal(t, "image/png", listing.Files[0].MimeType)
		assert.Equal(t, int64(4), listing.Files[0].Size)
	})

	t.Run("missing document maps to not found", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		mDocs.On("FindByID", ctx, "gone").Return(nil, sql.ErrNoRows)

		svc := NewDocumentService(mDocs, nil, 0)
		_, err := svc.ListFiles(ctx, "gone")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty id is rejected before hitting the repository", func(t *testing.T) {
		svc := NewDocumentService(new(repoMocks.MockDocumentRepository), nil, 0)
		_, err := svc.ListFiles(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestDocumentService_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("structured document resolves to the inventory in one lookup", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		doc := storedDocument(t, []model.File{
			{Name: "one.pdf", MimeType: "application/pdf", Size: 3, Payload: []byte("abc")},
			{Name: "two.pdf", MimeType: "application/pdf", Size: 2, Payload: []byte("de")},
		})
		mDocs.On("FindByID", ctx, "doc-1").Return(doc, nil).Once()

		svc := NewDocumentService(mDocs, nil, 0)
		fc, listing, err := svc.Download(ctx, "doc-1")

		require.NoError(t, err)
		assert.Nil(t, fc)
		require.NotNil(t, listing)
		assert.False(t, listing.Legacy)
		require.Len(t, listing.Files, 2)
		mDocs.AssertNumberOfCalls(t, "FindByID", 1)
	})

	t.Run("legacy document resolves to its single file in one lookup", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		doc := storedDocument(t, []model.File{{Name: "x", Size: 1, Payload: []byte("x")}})
		doc.Blob = []byte{0xDE, 0xAD, 0xBE, 0xEF}
		doc.TypeList = []string{"image/png"}
		doc.TotalSize = 4
		mDocs.On("FindByID", ctx, "doc-2").Return(doc, nil).Once()

		svc := NewDocumentService(mDocs, nil, 0)
		fc, listing, err := svc.Download(ctx, "doc-2")

		require.NoError(t, err)
		assert.Nil(t, listing)
		require.NotNil(t, fc)
		assert.Equal(t, "Discharge Summary", fc.Name)
		assert.Equal(t, "image/png", fc.MimeType)
		assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, fc.Payload)
		mDocs.AssertNumberOfCalls(t, "FindByID", 1)
	})

	t.Run("missing document maps to not found", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		mDocs.On("FindByID", ctx, "gone").Return(nil, sql.ErrNoRows)

		svc := NewDocumentService(mDocs, nil, 0)
		_, _, err := svc.Download(ctx, "gone")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentService_ListVisible(t *testing.T) {
	ctx := context.Background()

	t.Run("member requester gets department scope", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("FindByID", ctx, "user-1").
			Return(&model.User{ID: "user-1", Role: model.RoleUser, Department: "Cardiology"}, nil)
		mDocs.On("ListVisible", ctx, policy.Scope{Kind: policy.Member, Department: "Cardiology", UserID: "user-1"}).
			Return([]model.DocumentMeta{{ID: "doc-1"}}, nil)

		svc := NewDocumentService(mDocs, mUsers, 0)
		docs, err := svc.ListVisible(ctx, "user-1")

		require.NoError(t, err)
		require.Len(t, docs, 1)
		mDocs.AssertExpectations(t)
	})

	t.Run("unknown requester degrades to anonymous", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("FindByID", ctx, "ghost").Return(nil, sql.ErrNoRows)
		mDocs.On("ListVisible", ctx, policy.Scope{Kind: policy.Anonymous}).
			Return([]model.DocumentMeta{}, nil)

		svc := NewDocumentService(mDocs, mUsers, 0)
		docs, err := svc.ListVisible(ctx, "ghost")

		require.NoError(t, err)
		assert.Empty(t, docs)
		mDocs.AssertExpectations(t)
	})
}

func TestDocumentService_DownloadFile(t *testing.T) {
	ctx := context.Background()
	doc := storedDocument(t, []model.File{
		{Name: "one.pdf", MimeType: "application/pdf", Size: 3, Payload: []byte("abc")},
		{Name: "two.pdf", MimeType: "application/pdf", Size: 2, Payload: []byte("de")},
	})

	tests := []struct {
		name    string
		index   int
		want    string
		wantErr error
	}{
		{name: "first file", index: 0, want: "abc"},
		{name: "second file", index: 1, want: "de"},
		{name: "negative index", index: -1, wantErr: ErrFileOutOfRange},
		{name: "index past the end", index: 2, wantErr: ErrFileOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mDocs := new(repoMocks.MockDocumentRepository)
			mDocs.On("FindByID", ctx, "doc-1").Return(doc, nil)

			svc := NewDocumentService(mDocs, nil, 0)
			fc, err := svc.DownloadFile(ctx, "doc-1", tt.index)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(fc.Payload))
			assert.Equal(t, int64(len(tt.want)), fc.Size)
		})
	}
}

func TestDocumentService_Archive(t *testing.T) {
	ctx := context.Background()

	t.Run("archive contains every file in order", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		doc := storedDocument(t, []model.File{
			{Name: "one.pdf", MimeType: "application/pdf", Size: 3, Payload: []byte("abc")},
			{Name: "two.pdf", MimeType: "application/pdf", Size: 2, Payload: []byte("de")},
			{Name: "three.pdf", MimeType: "application/pdf", Size: 1, Payload: []byte("f")},
		})
		mDocs.On("FindByID", ctx, "doc-1").Return(doc, nil)

		svc := NewDocumentService(mDocs, nil, 0)
		a, err := svc.Archive(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "dischargesummary.zip", a.Filename)

		var buf bytes.Buffer
		require.NoError(t, a.Write(&buf))

		zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		require.NoError(t, err)
		require.Len(t, zr.File, 3)
		assert.Equal(t, "one.pdf", zr.File[0].Name)
		assert.Equal(t, "two.pdf", zr.File[1].Name)
		assert.Equal(t, "three.pdf", zr.File[2].Name)

		rc, err := zr.File[1].Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		assert.Equal(t, "de", string(b))
	})

	t.Run("missing document maps to not found", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		mDocs.On("FindByID", ctx, "gone").Return(nil, sql.ErrNoRows)

		svc := NewDocumentService(mDocs, nil, 0)
		_, err := svc.Archive(ctx, "gone")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
