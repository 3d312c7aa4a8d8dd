// Package codec serializes a document's embedded file collection to
// and from the single persisted blob column.
//
// The stored form is a self-describing JSON array of
// {name, mimeType, size, data} entries with the binary payload carried
// as standard base64 in the data field. This layout is the storage
// compatibility contract: rows written before the multi-file encoding
// hold raw single-file bytes instead, and Decode recovers those
// through the LegacyRaw variant rather than failing.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"medregistry/internal/model"
)

// PayloadKind tags the two shapes a stored blob can take.
type PayloadKind int

const (
	// Structured is a blob written by Encode: a JSON file array.
	Structured PayloadKind = iota
	// LegacyRaw is a pre-encoding blob holding one file's raw bytes.
	LegacyRaw
)

// Payload is the decoded form of a document blob. For LegacyRaw the
// file list holds exactly one synthetic entry built from the
// document's own metadata and the raw blob bytes.
type Payload struct {
	Kind  PayloadKind
	Files []model.File
}

// Legacy reports whether the payload came through the fallback path.
func (p Payload) Legacy() bool { return p.Kind == LegacyRaw }

type encodedFile struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Data     string `json:"data"`
}

// Encode serializes the file list into the persisted blob form.
// Decode(Encode(files)) yields the same files: same order, identical
// payload bytes.
func Encode(files []model.File) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("codec: refusing to encode empty file list")
	}
	entries := make([]encodedFile, 0, len(files))
	for _, f := range files {
		entries = append(entries, encodedFile{
			Name:     f.Name,
			MimeType: f.MimeType,
			Size:     f.Size,
			Data:     base64.StdEncoding.EncodeToString(f.Payload),
		})
	}
	return json.Marshal(entries)
}

// Decode parses a stored blob into its tagged payload. A blob that is
// not a well-formed encoded file array is treated as legacy raw bytes
// and wrapped in a synthetic one-element list using the document's own
// name, first listed type, and total size. This fallback is a
// compatibility path, not an error; Decode never fails.
func Decode(blob []byte, doc *model.Document) Payload {
	files, ok := decodeStructured(blob)
	if !ok {
		return Payload{Kind: LegacyRaw, Files: []model.File{legacyFile(blob, doc)}}
	}
	return Payload{Kind: Structured, Files: files}
}

func decodeStructured(blob []byte) ([]model.File, bool) {
	var entries []encodedFile
	if err := json.Unmarshal(blob, &entries); err != nil {
		return nil, false
	}
	if len(entries) == 0 {
		return nil, false
	}
	files := make([]model.File, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return nil, false
		}
		payload, err := base64.StdEncoding.DecodeString(e.Data)
		if err != nil {
			return nil, false
		}
		files = append(files, model.File{
			Name:     e.Name,
			MimeType: e.MimeType,
			Size:     e.Size,
			Payload:  payload,
		})
	}
	return files, true
}

func legacyFile(blob []byte, doc *model.Document) model.File {
	mimeType := "application/octet-stream"
	if len(doc.TypeList) > 0 && doc.TypeList[0] != "" {
		mimeType = doc.TypeList[0]
	}
	size := doc.TotalSize
	if size == 0 {
		size = int64(len(blob))
	}
	return model.File{
		Name:     doc.Name,
		MimeType: mimeType,
		Size:     size,
		Payload:  blob,
	}
}
