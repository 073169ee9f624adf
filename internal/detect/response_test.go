package detect

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
)

func TestNewResponse(t *testing.T) {
	snap := &Snapshot{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Results: []Result{
			{ID: "cpu", Name: "CPU", Category: CategoryHardware, Status: StatusOK, Message: "AMD Ryzen"},
		},
	}

	resp := NewResponse(snap)

	assert.Equal(t, "2026-01-02T03:04:05Z", resp.Timestamp)
	require.Len(t, resp.Results, 1)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"timestamp":"2026-01-02T03:04:05Z","results":[{"id":"cpu","name":"CPU","category":"hardware","status":"ok","message":"AMD Ryzen"}]}`,
		string(data))
}

func TestNewResponse_EmptyResultsIsArray(t *testing.T) {
	data, err := json.Marshal(NewResponse(&Snapshot{}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"results":[]`)
}

func TestNewErrorResponse(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantDetails string
	}{
		{
			name:        "structured failure",
			err:         rcerrors.DetectionFailed(rcerrors.ProbePanic("gpu", "boom")),
			wantCode:    rcerrors.ErrCodeDetectionFailed,
			wantDetails: `[ERR_503_PROBE_PANIC] probe "gpu" panicked: boom`,
		},
		{
			name:        "plain error",
			err:         errors.New("context canceled"),
			wantDetails: "context canceled",
		},
		{
			name: "nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewErrorResponse(tt.err)
			assert.Equal(t, "detection failed", resp.Error)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantDetails, resp.Details)
		})
	}
}
