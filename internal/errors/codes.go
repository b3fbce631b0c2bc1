// Package errors provides structured error handling for layer.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (exclude files, backups)
//   - 3XX: Repository errors (git unavailable, not a work tree)
//   - 4XX: Validation errors (bad input, paths outside the repository)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryRepository indicates git repository errors.
	CategoryRepository Category = "REPOSITORY"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound   = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeFileWrite      = "ERR_203_FILE_WRITE"
	ErrCodeLockFailed     = "ERR_204_LOCK_FAILED"
	ErrCodeBackupNotFound = "ERR_205_BACKUP_NOT_FOUND"
	ErrCodeEditorFailed   = "ERR_206_EDITOR_FAILED"

	// Repository errors (300-399)
	ErrCodeRepositoryUnavailable = "ERR_301_REPOSITORY_UNAVAILABLE"
	ErrCodeGitNotFound           = "ERR_302_GIT_NOT_FOUND"
	ErrCodeGitCommand            = "ERR_303_GIT_COMMAND"

	// Validation errors (400-499)
	ErrCodeInvalidInput   = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidPattern = "ERR_402_INVALID_PATTERN"
	ErrCodeEntryNotFound  = "ERR_403_ENTRY_NOT_FOUND"
	ErrCodeInvalidPath    = "ERR_406_INVALID_PATH"
	ErrCodeOutsideRepo    = "ERR_407_PATH_OUTSIDE_REPO"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryRepository
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeRepositoryUnavailable, ErrCodeGitNotFound:
		return SeverityFatal
	case ErrCodeEntryNotFound:
		return SeverityWarning
	default:
		return SeverityError
	}
}
