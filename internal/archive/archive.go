// Package archive builds the bulk-download zip for a document's file
// collection.
package archive

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
	"strings"

	"medregistry/internal/model"
)

// Extension is the archive filename suffix.
const Extension = ".zip"

// Write streams a zip of the given files to w, one entry per file
// under its original name, using maximum Deflate compression. Entries
// are written incrementally; payloads held in memory are not copied
// again. A failure mid-write leaves w in an undefined state, so callers
// that already sent bytes must abort the response.
func Write(w io.Writer, files []model.File) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for i, f := range files {
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:   f.Name,
			Method: zip.Deflate,
		})
		if err != nil {
			return fmt.Errorf("create archive entry %d (%s): %w", i, f.Name, err)
		}
		if _, err := entry.Write(f.Payload); err != nil {
			return fmt.Errorf("write archive entry %d (%s): %w", i, f.Name, err)
		}
	}
	return zw.Close()
}

// Filename derives the download name for a document's archive: the
// document name lower-cased with every non-alphanumeric character
// stripped, plus the archive extension. A name with nothing left after
// sanitizing falls back to "documents".
func Filename(docName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(docName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		name = "documents"
	}
	return name + Extension
}
