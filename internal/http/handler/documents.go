package handler

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"medregistry/internal/service"
)

// maxUploadFiles bounds how many parts one upload request may carry.
const maxUploadFiles = 50

// attachmentDisposition renders a Content-Disposition header value for
// the given filename with double quotes stripped so the header cannot
// be broken out of.
func attachmentDisposition(name string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(name, `"`, ""))
}

// UploadDocument accepts a multipart form (field name: files) and
// aggregates every part into a single document.
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "multipart form is required")
		}

		parts := form.File["files"]
		if len(parts) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required")
		}
		if len(parts) > maxUploadFiles {
			return writeError(c, fiber.StatusBadRequest, "TOO_MANY_FILES", "too many files in one upload")
		}

		files := make([]service.UploadFile, 0, len(parts))
		for _, fh := range parts {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			payload, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
			}
			files = append(files, service.UploadFile{
				Name:     fh.Filename,
				MimeType: fh.Header.Get("Content-Type"),
				Payload:  payload,
			})
		}

		formValue := func(key string) string {
			if vs := form.Value[key]; len(vs) > 0 {
				return vs[0]
			}
			return ""
		}

		meta, err := svc.Upload(c.UserContext(), service.UploadInput{
			DocumentName: formValue("document_name"),
			Category:     formValue("category"),
			Department:   formValue("department"),
			Description:  formValue("description"),
			UploadedBy:   formValue("uploaded_by"),
			AccessLevel:  formValue("access_level"),
			Files:        files,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(meta)
	}
}

// ListDocuments returns the documents visible to the requester. The
// optional userId query parameter identifies the requester; absent or
// unknown ids see the anonymous view.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.ListVisible(c.UserContext(), c.Query("userId"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"files": docs})
	}
}

// DownloadDocument serves one document in two modes. With a fileIndex
// query parameter it streams that file's exact bytes. Without one,
// legacy single-file documents stream their only file directly while
// multi-file documents return the file inventory so the client can
// pick an index.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		if raw := c.Query("fileIndex"); raw != "" {
			index, err := strconv.Atoi(raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_FILE_INDEX", "fileIndex must be an integer")
			}
			fc, err := svc.DownloadFile(c.UserContext(), id, index)
			if err != nil {
				return writeServiceError(c, err)
			}
			return sendFile(c, fc)
		}

		fc, listing, err := svc.Download(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		if fc != nil {
			return sendFile(c, fc)
		}
		return c.JSON(listing)
	}
}

// streamArchive writes the zip body. A failure aborts the connection
// mid-body; the client sees a truncated archive rather than an error
// status, so the log line is the only record of it.
func streamArchive(w io.Writer, a *service.Archive, requestID string) {
	if err := a.Write(w); err != nil {
		log.Printf("request %s archive stream failed: %v", requestID, err)
	}
}

func sendFile(c *fiber.Ctx, fc *service.FileContent) error {
	mimeType := fc.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, mimeType)
	c.Set(fiber.HeaderContentDisposition, attachmentDisposition(fc.Name))
	return c.Send(fc.Payload)
}

// DownloadArchive streams every file of a document as one zip archive.
func DownloadArchive(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := svc.Archive(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}

		// Validation is complete; headers are safe to set before the
		// body starts streaming.
		c.Set(fiber.HeaderContentType, "application/zip")
		c.Set(fiber.HeaderContentDisposition, attachmentDisposition(a.Filename))
		requestID := requestIDFromCtx(c)
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			streamArchive(w, a, requestID)
		})
		return nil
	}
}
