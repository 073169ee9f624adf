package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/rigcheck/internal/detect"
)

func TestSnapshotResource_BeforeAnyScan(t *testing.T) {
	// Given: a server that has not scanned yet
	d := &fakeDetector{snap: sampleSnapshot()}
	srv := newTestServer(t, d)

	// When: reading the snapshot resource
	res, err := srv.readSnapshot()

	// Then: the resource is not found and no scan was started
	assert.Nil(t, res)
	var wireErr *jsonrpc.Error
	require.ErrorAs(t, err, &wireErr)
	assert.Equal(t, int64(mcp.CodeResourceNotFound), wireErr.Code)
	assert.Equal(t, int32(0), d.calls.Load())
}

func TestSnapshotResource_Protocol_BeforeAnyScan(t *testing.T) {
	// Given: a client connected to a server that has not scanned yet
	cs := connect(t, newTestServer(t, &fakeDetector{snap: sampleSnapshot()}))

	// When: the client reads the snapshot resource
	_, err := cs.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: SnapshotResourceURI})

	// Then: the wire error carries the resource-not-found code
	var wireErr *jsonrpc.Error
	require.ErrorAs(t, err, &wireErr)
	assert.Equal(t, int64(mcp.CodeResourceNotFound), wireErr.Code)
	assert.Contains(t, string(wireErr.Data), SnapshotResourceURI)
}

func TestSnapshotResource_AfterScan(t *testing.T) {
	// Given: a server that has completed a scan
	srv := newTestServer(t, &fakeDetector{snap: sampleSnapshot()})
	_, err := srv.CallTool(context.Background(), ToolDetectEnvironment, nil)
	require.NoError(t, err)

	// When: reading the snapshot resource
	res, err := srv.readSnapshot()

	// Then: it holds the scan as JSON
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	content := res.Contents[0]
	assert.Equal(t, SnapshotResourceURI, content.URI)
	assert.Equal(t, "application/json", content.MIMEType)

	var resp detect.Response
	require.NoError(t, json.Unmarshal([]byte(content.Text), &resp))
	assert.Equal(t, "2026-03-01T12:00:00Z", resp.Timestamp)
	assert.Len(t, resp.Results, 2)
}
