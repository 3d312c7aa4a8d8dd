package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"medregistry/internal/http/middleware"
	"medregistry/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking
// internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// serviceErrorMapping pairs a sentinel error with its HTTP translation.
type serviceErrorMapping struct {
	err    error
	status int
	code   string
}

var serviceErrorMappings = []serviceErrorMapping{
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID"},
	{service.ErrNameRequired, fiber.StatusBadRequest, "NAME_REQUIRED"},
	{service.ErrCategoryRequired, fiber.StatusBadRequest, "CATEGORY_REQUIRED"},
	{service.ErrDepartmentRequired, fiber.StatusBadRequest, "DEPARTMENT_REQUIRED"},
	{service.ErrEmptyFileList, fiber.StatusBadRequest, "FILES_REQUIRED"},
	{service.ErrFileTooLarge, fiber.StatusBadRequest, "FILE_TOO_LARGE"},
	{service.ErrInvalidPeriod, fiber.StatusBadRequest, "INVALID_PERIOD"},
	{service.ErrMissingFields, fiber.StatusBadRequest, "MISSING_FIELDS"},
	{service.ErrSelfDelete, fiber.StatusBadRequest, "SELF_DELETE"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{service.ErrAdminRequired, fiber.StatusForbidden, "ADMIN_REQUIRED"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{service.ErrFileOutOfRange, fiber.StatusNotFound, "FILE_NOT_FOUND"},
	{service.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{service.ErrEmailTaken, fiber.StatusConflict, "EMAIL_TAKEN"},
	{service.ErrNoFiles, fiber.StatusConflict, "NO_FILES"},
	{service.ErrExportDisabled, fiber.StatusServiceUnavailable, "EXPORT_DISABLED"},
}

// writeServiceError translates a service sentinel into the standard
// error shape. Anything unmapped becomes an opaque 500; the cause is
// never shown to the caller.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrorMappings {
		if errors.Is(err, m.err) {
			return writeError(c, m.status, m.code, m.err.Error())
		}
	}
	log.Printf("request %s failed: %v", requestIDFromCtx(c), err)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
