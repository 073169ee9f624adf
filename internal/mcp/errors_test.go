package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
)

func TestMapError_NilError(t *testing.T) {
	assert.Nil(t, MapError(nil))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int64
		wantMsg  string
	}{
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout, "timed out"},
		{"canceled", fmt.Errorf("scan: %w", context.Canceled), ErrCodeTimeout, "canceled"},
		{"validation", rcerrors.ValidationError("bad category", nil), jsonrpc.CodeInvalidParams, "bad category"},
		{"detection failed", rcerrors.DetectionFailed(errors.New("boom")), jsonrpc.CodeInternalError, "Re-run the scan"},
		{"unknown", errors.New("something odd"), jsonrpc.CodeInternalError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When: mapping the error
			got := MapError(tt.err)

			// Then: the code and message match
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Contains(t, got.Message, tt.wantMsg)
		})
	}
}

func TestMapError_PassesThroughWireError(t *testing.T) {
	orig := NewMethodNotFoundError("search")

	got := MapError(fmt.Errorf("wrapped: %w", orig))

	assert.Same(t, orig, got)
}

func TestNewMethodNotFoundError(t *testing.T) {
	err := NewMethodNotFoundError("unknown_tool")

	assert.Equal(t, int64(jsonrpc.CodeMethodNotFound), err.Code)
	assert.Equal(t, "Tool 'unknown_tool' not found.", err.Message)
}

func TestDetectionError_StructuredCause(t *testing.T) {
	// Given: a scan that failed with a structured error
	err := NewDetectionError(rcerrors.DetectionFailed(errors.New("boom")))

	// Then: the JSON carries the code and the chain is kept
	assert.Contains(t, err.Error(), `"code":"`+rcerrors.ErrCodeDetectionFailed+`"`)
	assert.Equal(t, rcerrors.ErrCodeDetectionFailed, rcerrors.GetCode(err))
}

func TestDetectionError_PlainError(t *testing.T) {
	// Given: a scan that failed with an unstructured error
	err := NewDetectionError(errors.New("disk on fire"))

	// Then: the JSON has no code and the raw details
	assert.JSONEq(t, `{"error":"detection failed","details":"disk on fire"}`, err.Error())
	assert.EqualError(t, errors.Unwrap(err), "disk on fire")
}
