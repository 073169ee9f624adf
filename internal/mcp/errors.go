// Package mcp implements the Model Context Protocol (MCP) server for rigcheck.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"

	"github.com/Aman-CERP/rigcheck/internal/detect"
	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
)

// ErrCodeTimeout indicates the request timed out or was canceled while a
// scan was running.
const ErrCodeTimeout = -32003

// DetectionError is returned by detect_environment when a scan fails.
// It is reported as a tool error whose text is the JSON error response,
// not as a protocol error.
type DetectionError struct {
	Response detect.ErrorResponse
	cause    error
}

// NewDetectionError wraps a failed scan.
func NewDetectionError(err error) *DetectionError {
	return &DetectionError{Response: detect.NewErrorResponse(err), cause: err}
}

// Error implements the error interface.
func (e *DetectionError) Error() string {
	data, err := json.Marshal(e.Response)
	if err != nil {
		return fmt.Sprintf(`{"error":%q,"details":%q}`, e.Response.Error, e.Response.Details)
	}
	return string(data)
}

// Unwrap returns the scan failure.
func (e *DetectionError) Unwrap() error {
	return e.cause
}

// MapError converts a handler failure into a JSON-RPC error, which the SDK
// sends with its code instead of folding it into a tool result.
func MapError(err error) *jsonrpc.Error {
	if err == nil {
		return nil
	}

	var wireErr *jsonrpc.Error
	if errors.As(err, &wireErr) {
		return wireErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &jsonrpc.Error{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &jsonrpc.Error{Code: ErrCodeTimeout, Message: "Request was canceled."}
	}

	if re, ok := rcerrors.As(err); ok {
		message := re.Message
		if re.Suggestion != "" {
			message = fmt.Sprintf("%s %s", re.Message, re.Suggestion)
		}
		code := int64(jsonrpc.CodeInternalError)
		if re.Category == rcerrors.CategoryValidation {
			code = jsonrpc.CodeInvalidParams
		}
		return &jsonrpc.Error{Code: code, Message: message}
	}

	return &jsonrpc.Error{Code: jsonrpc.CodeInternalError, Message: "Internal server error."}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *jsonrpc.Error {
	return &jsonrpc.Error{
		Code:    jsonrpc.CodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}
