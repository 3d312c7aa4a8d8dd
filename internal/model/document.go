package model

import "time"

// AccessLevel is the visibility tier of a document.
type AccessLevel string

const (
	// AccessAdminOnly restricts a document to admin requesters.
	AccessAdminOnly AccessLevel = "AdminOnly"
	// AccessPublic makes a document visible to non-admin staff,
	// subject to department scoping.
	AccessPublic AccessLevel = "Public"
)

// DepartmentGlobal marks a document as visible to every department.
const DepartmentGlobal = "Global"

// ParseAccessLevel maps a request value onto a known access level.
// Unknown values report ok=false so callers can apply their default.
func ParseAccessLevel(s string) (AccessLevel, bool) {
	switch AccessLevel(s) {
	case AccessAdminOnly, AccessPublic:
		return AccessLevel(s), true
	}
	return "", false
}

// File is one uploaded binary object. Files are never independently
// addressable; they live inside a document's blob, ordered and
// indexable from zero.
type File struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Payload  []byte `json:"-"`
}

// Document is one logical upload record, possibly containing multiple
// files, stored as a single persisted unit. Documents are immutable
// once written; there is no update or delete path.
//
// This is a pure domain model with no database-specific dependencies or tags.
type Document struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Category        string      `json:"category"`
	Department      string      `json:"department"`
	Description     string      `json:"description"`
	TotalSize       int64       `json:"totalSize"`
	TypeList        []string    `json:"typeList"`
	UploaderID      *string     `json:"uploaderId"`
	UploaderDisplay *string     `json:"uploaderDisplay"`
	Blob            []byte      `json:"-"`
	AccessLevel     AccessLevel `json:"accessLevel"`
	UploadedAt      time.Time   `json:"uploadedAt"`
}

// Meta strips the blob, producing the listing projection.
func (d *Document) Meta() DocumentMeta {
	return DocumentMeta{
		ID:              d.ID,
		Name:            d.Name,
		Category:        d.Category,
		Department:      d.Department,
		Description:     d.Description,
		TotalSize:       d.TotalSize,
		TypeList:        d.TypeList,
		UploaderDisplay: d.UploaderDisplay,
		AccessLevel:     d.AccessLevel,
		UploadedAt:      d.UploadedAt,
	}
}

// DocumentMeta is the metadata projection returned by listing calls.
// It deliberately has no blob field.
type DocumentMeta struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Category        string      `json:"category"`
	Department      string      `json:"department"`
	Description     string      `json:"description"`
	TotalSize       int64       `json:"totalSize"`
	TypeList        []string    `json:"typeList"`
	UploaderDisplay *string     `json:"uploaderDisplay"`
	AccessLevel     AccessLevel `json:"accessLevel"`
	UploadedAt      time.Time   `json:"uploadedAt"`
}
