package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("yaml: line 3: mapping values are not allowed")

	// When: wrapping it
	err := New(ErrCodeConfigInvalid, "invalid .rigcheck.yaml", originalErr)

	// Then: unwrapping returns the original error
	require.NotNil(t, err)
	assert.Equal(t, originalErr, errors.Unwrap(err))
	assert.True(t, errors.Is(err, originalErr))
}

func TestError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigInvalid,
			message:  "ram_ok_gb must be >= ram_warn_gb",
			expected: "[ERR_102_CONFIG_INVALID] ram_ok_gb must be >= ram_warn_gb",
		},
		{
			name:     "transport error",
			code:     ErrCodeTransportFailed,
			message:  "stdio closed",
			expected: "[ERR_301_TRANSPORT_FAILED] stdio closed",
		},
		{
			name:     "detection error",
			code:     ErrCodeDetectionFailed,
			message:  "detection failed",
			expected: "[ERR_502_DETECTION_FAILED] detection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with the same code
	err1 := New(ErrCodeProbePanic, "probe cpu panicked", nil)
	err2 := New(ErrCodeProbePanic, "probe gpu panicked", nil)

	// Then: they match by code
	assert.True(t, errors.Is(err1, err2))

	// And: a different code does not match
	assert.False(t, errors.Is(err1, New(ErrCodeConfigInvalid, "x", nil)))
}

func TestError_WithDetail_AddsContext(t *testing.T) {
	err := New(ErrCodeFileNotFound, "file not found", nil).
		WithDetail("path", "/etc/rigcheck.yaml").
		WithDetail("size", "1024")

	assert.Equal(t, "/etc/rigcheck.yaml", err.Details["path"])
	assert.Equal(t, "1024", err.Details["size"])
}

func TestError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeConfigWatch, CategoryConfig},
		{ErrCodeFileNotFound, CategoryIO},
		{ErrCodeLogSetup, CategoryIO},
		{ErrCodeTransportFailed, CategoryTransport},
		{ErrCodeUnsupportedTransport, CategoryTransport},
		{ErrCodeInvalidInput, CategoryValidation},
		{ErrCodeDuplicateProbe, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
		{ErrCodeDetectionFailed, CategoryInternal},
		{"BAD", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestError_SeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantSeverity Severity
	}{
		{ErrCodeConfigInvalid, SeverityFatal},
		{ErrCodeDuplicateProbe, SeverityFatal},
		{ErrCodeConfigWatch, SeverityWarning},
		{ErrCodeDetectionFailed, SeverityError},
		{ErrCodeTransportFailed, SeverityError},
		{ErrCodeProbePanic, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("something went wrong")

	err := Wrap(ErrCodeInternal, originalErr)

	require.NotNil(t, err)
	assert.Equal(t, ErrCodeInternal, err.Code)
	assert.Equal(t, "something went wrong", err.Message)
	assert.Equal(t, originalErr, err.Cause)
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestDetectionFailed(t *testing.T) {
	// Given: a probe panic that aborted a scan
	cause := ProbePanic("gpu", "index out of range")

	// When: converting it into a detection failure
	err := DetectionFailed(cause)

	// Then: the failure keeps the chain and suggests a rerun
	assert.Equal(t, ErrCodeDetectionFailed, err.Code)
	assert.Contains(t, err.Message, "detection failed")
	assert.Contains(t, err.Message, `probe "gpu" panicked`)
	assert.True(t, errors.Is(err, New(ErrCodeProbePanic, "", nil)))
	assert.NotEmpty(t, err.Suggestion)
}

func TestProbePanic(t *testing.T) {
	err := ProbePanic("ram", "boom")

	assert.Equal(t, ErrCodeProbePanic, err.Code)
	assert.Equal(t, "ram", err.Details["probe"])
	assert.Contains(t, err.Error(), "boom")
}

func TestScanCancelled(t *testing.T) {
	err := ScanCancelled(context.Canceled)

	assert.Equal(t, ErrCodeScanCancelled, err.Code)
	assert.Equal(t, CategoryInternal, err.Category)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGetCode_WorksThroughWrapping(t *testing.T) {
	// Given: a structured error wrapped by fmt
	inner := ConfigError("bad threshold", nil)
	wrapped := fmt.Errorf("loading config: %w", inner)

	// Then: the code is still found
	assert.Equal(t, ErrCodeConfigInvalid, GetCode(wrapped))

	re, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, re)

	// And: plain errors yield zero values
	assert.Empty(t, GetCode(errors.New("plain")))
	assert.Empty(t, GetCode(nil))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want Category
	}{
		{"config", ConfigError("x", nil), CategoryConfig},
		{"io", IOError("x", nil), CategoryIO},
		{"validation", ValidationError("x", nil), CategoryValidation},
		{"internal", InternalError("x", nil), CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Category)
		})
	}
}
