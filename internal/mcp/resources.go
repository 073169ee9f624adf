package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/rigcheck/internal/detect"
)

// SnapshotResourceURI addresses the most recent scan.
const SnapshotResourceURI = "rigcheck://snapshot/latest"

// registerSnapshotResource registers the latest-snapshot resource.
func (s *Server) registerSnapshotResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "snapshot_latest",
			URI:         SnapshotResourceURI,
			Description: "Results of the most recent detect_environment scan",
			MIMEType:    "application/json",
		},
		s.makeSnapshotHandler(),
	)
}

// makeSnapshotHandler creates a handler for the latest-snapshot resource.
// Reading it never starts a scan.
func (s *Server) makeSnapshotHandler() mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return s.readSnapshot()
	}
}

func (s *Server) readSnapshot() (*mcp.ReadResourceResult, error) {
	snap := s.LastSnapshot()
	if snap == nil {
		return nil, mcp.ResourceNotFoundError(SnapshotResourceURI)
	}

	content, err := json.MarshalIndent(detect.NewResponse(snap), "", "  ")
	if err != nil {
		return nil, MapError(err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      SnapshotResourceURI,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}
