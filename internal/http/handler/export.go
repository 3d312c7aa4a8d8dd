package handler

import (
	"github.com/gofiber/fiber/v2"

	"medregistry/internal/service"
)

// ExportDocument pushes a document's zip archive to object storage and
// returns a presigned download link. Admin only.
func ExportDocument(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.ExportArchive(c.UserContext(), c.Query("userId"), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}
