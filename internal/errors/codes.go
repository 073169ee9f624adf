// Package errors provides structured error handling for rigcheck.
//
// Probe-level problems (missing tools, old versions, odd output) never become
// errors; they are statuses inside detection results. Errors are reserved for
// failures of rigcheck itself.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (files, logs)
//   - 3XX: Transport errors (MCP server)
//   - 4XX: Validation errors
//   - 5XX: Internal and orchestration errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and log I/O errors.
	CategoryIO Category = "IO"
	// CategoryTransport indicates MCP transport errors.
	CategoryTransport Category = "TRANSPORT"
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
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"
	ErrCodeConfigWatch      = "ERR_104_CONFIG_WATCH"

	// IO errors (200-299)
	ErrCodeFileNotFound = "ERR_201_FILE_NOT_FOUND"
	ErrCodeLogSetup     = "ERR_203_LOG_SETUP"

	// Transport errors (300-399)
	ErrCodeTransportFailed      = "ERR_301_TRANSPORT_FAILED"
	ErrCodeUnsupportedTransport = "ERR_302_UNSUPPORTED_TRANSPORT"

	// Validation errors (400-499)
	ErrCodeInvalidInput    = "ERR_401_INVALID_INPUT"
	ErrCodeUnknownCategory = "ERR_402_UNKNOWN_CATEGORY"
	ErrCodeDuplicateProbe  = "ERR_403_DUPLICATE_PROBE"

	// Internal errors (500-599)
	ErrCodeInternal        = "ERR_501_INTERNAL"
	ErrCodeDetectionFailed = "ERR_502_DETECTION_FAILED"
	ErrCodeProbePanic      = "ERR_503_PROBE_PANIC"
	ErrCodeScanCancelled   = "ERR_504_SCAN_CANCELLED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "102" from "ERR_102_CONFIG_INVALID")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryTransport
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeConfigInvalid, ErrCodeDuplicateProbe:
		return SeverityFatal
	case ErrCodeConfigWatch, ErrCodeLogSetup:
		return SeverityWarning
	}
	return SeverityError
}
