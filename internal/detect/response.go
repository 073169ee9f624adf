package detect

import (
	"time"

	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
)

// Response is the external shape of a snapshot.
type Response struct {
	Timestamp string   `json:"timestamp"`
	Results   []Result `json:"results"`
}

// NewResponse converts a snapshot for the boundary. The timestamp is
// RFC 3339 in UTC and results is never null.
func NewResponse(snap *Snapshot) Response {
	results := snap.Results
	if results == nil {
		results = []Result{}
	}
	return Response{
		Timestamp: snap.Timestamp.UTC().Format(time.RFC3339),
		Results:   results,
	}
}

// ErrorResponse is returned at the boundary when a scan cannot complete.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details"`
}

// NewErrorResponse converts an orchestration failure for the boundary.
func NewErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: "detection failed"}
	if err == nil {
		return resp
	}
	resp.Details = err.Error()
	if re, ok := rcerrors.As(err); ok {
		resp.Code = re.Code
		if re.Cause != nil {
			resp.Details = re.Cause.Error()
		}
	}
	return resp
}
