package ui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/rigcheck/internal/detect"
	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
)

func TestPlainRenderer_Lifecycle(t *testing.T) {
	// Given: a plain renderer over a buffer
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf, WithNoColor(true)))

	// When: two of twelve probes report before completion
	require.NoError(t, r.Start(context.Background(), 12))
	r.ProbeDone(detect.Result{Name: "GPU", Status: detect.StatusOK})
	r.ProbeDone(detect.Result{Name: "CUDA", Status: detect.StatusWarning})
	r.Complete(sampleSnapshot())
	require.NoError(t, r.Stop())

	// Then: progress lines precede the report
	out := buf.String()
	assert.Contains(t, out, "rigcheck: running 12 checks\n")
	assert.Contains(t, out, "[ 1/12] ok            GPU\n")
	assert.Contains(t, out, "[ 2/12] warning       CUDA\n")
	assert.Contains(t, out, "5 checks: 2 ok")
}

func TestPlainRenderer_Fail(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf, WithNoColor(true)))

	r.Fail(rcerrors.DetectionFailed(errors.New("boom")))

	assert.Contains(t, buf.String(), "Error: detection failed")
	assert.Contains(t, buf.String(), rcerrors.ErrCodeDetectionFailed)
}

func TestPlainRenderer_ProbeDoneWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf, WithNoColor(true)))

	assert.NotPanics(t, func() {
		r.ProbeDone(detect.Result{Name: "Git", Status: detect.StatusOK})
	})
	assert.Contains(t, buf.String(), "Git")
}
