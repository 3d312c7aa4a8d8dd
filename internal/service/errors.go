package service

import "errors"

// Sentinel errors returned by the services. Handlers translate these
// with errors.Is; anything else is an internal failure whose cause is
// logged server-side and never shown to the caller.
var (
	ErrIDRequired     = errors.New("id is required")
	ErrNotFound       = errors.New("document not found")
	ErrFileOutOfRange = errors.New("file index out of range")

	ErrEmptyFileList      = errors.New("at least one file is required")
	ErrFileTooLarge       = errors.New("file exceeds the upload size limit")
	ErrNameRequired       = errors.New("document name is required")
	ErrCategoryRequired   = errors.New("category is required")
	ErrDepartmentRequired = errors.New("department is required")

	ErrNoFiles       = errors.New("document contains no files")
	ErrInvalidPeriod = errors.New("period must be 7 or 30")

	ErrMissingFields      = errors.New("all fields are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAdminRequired      = errors.New("admin privileges required")
	ErrSelfDelete         = errors.New("cannot delete your own admin account")
	ErrUserNotFound       = errors.New("user not found or is not a regular user")

	ErrExportDisabled = errors.New("object storage is not configured")
)
