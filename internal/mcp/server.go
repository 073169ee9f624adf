package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/rigcheck/internal/detect"
	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
	"github.com/Aman-CERP/rigcheck/pkg/version"
)

// ServerName is the implementation name reported to MCP clients.
const ServerName = "rigcheck"

// TransportStdio is the only supported transport.
const TransportStdio = "stdio"

// Detector runs environment scans. *detect.Detector satisfies it.
type Detector interface {
	DetectAll(ctx context.Context) (*detect.Snapshot, error)
	Probes() []detect.Probe
}

// Server is the MCP server for rigcheck.
// It lets AI clients ask what hardware and AI tooling the host has.
type Server struct {
	mcp      *mcp.Server
	detector Detector
	logger   *slog.Logger

	// last is the most recent successful snapshot, served as a resource.
	last *detect.Snapshot

	mu sync.RWMutex
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

var tools = []ToolInfo{
	{
		Name:        ToolDetectEnvironment,
		Description: "Scan this machine's hardware, GPU runtime, AI frameworks, local model servers and developer tools. Returns one result per component with a status of ok, warning, error or not_installed.",
	},
	{
		Name:        ToolListCategories,
		Description: "List the result categories detect_environment groups components into, in display order.",
	},
}

// NewServer creates a new MCP server backed by the given detector.
func NewServer(detector Detector, opts ...ServerOption) (*Server, error) {
	if detector == nil {
		return nil, errors.New("detector is required")
	}

	s := &Server{
		detector: detector,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: version.Version,
		},
		nil, // capabilities are inferred from registered tools/resources
	)

	s.registerTools()
	s.registerSnapshotResource()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return ServerName, version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	out := make([]ToolInfo, len(tools))
	copy(out, tools)
	return out
}

// CallTool invokes a tool by name, bypassing the protocol layer.
// A failed scan returns a *DetectionError; an unknown tool or a cancelled
// request returns a *jsonrpc.Error.
func (s *Server) CallTool(ctx context.Context, name string, _ map[string]any) (any, error) {
	switch name {
	case ToolDetectEnvironment:
		return s.detectEnvironment(ctx)
	case ToolListCategories:
		return newCategoriesOutput(s.detector.Probes()), nil
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

// LastSnapshot returns the most recent successful scan, or nil.
func (s *Server) LastSnapshot() *detect.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// detectEnvironment runs a full scan. Every call scans afresh.
func (s *Server) detectEnvironment(ctx context.Context) (detect.Response, error) {
	start := time.Now()
	requestID := generateRequestID()

	s.logger.Info("detection started",
		slog.String("request_id", requestID),
		slog.String("tool", ToolDetectEnvironment))

	snap, err := s.detector.DetectAll(ctx)
	duration := time.Since(start)
	if err == nil && ctx.Err() != nil {
		// The client gave up; results gathered after that are incomplete.
		s.logger.Warn("detection abandoned",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", ctx.Err().Error()))
		return detect.Response{}, MapError(ctx.Err())
	}
	if err != nil {
		s.logger.Error("detection failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.Any("error", rcerrors.FormatForLog(err)))
		return detect.Response{}, NewDetectionError(err)
	}

	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()

	s.logger.Info("detection completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("result_count", len(snap.Results)))

	return detect.NewResponse(snap), nil
}

func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolDetectEnvironment,
		Description: tools[0].Description,
	}, s.mcpDetectEnvironmentHandler)
	s.logger.Debug("Registered tool", slog.String("name", ToolDetectEnvironment))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolListCategories,
		Description: tools[1].Description,
	}, s.mcpListCategoriesHandler)
	s.logger.Debug("Registered tool", slog.String("name", ToolListCategories))

	s.logger.Info("MCP tools registered", slog.Int("count", len(tools)))
}

// mcpDetectEnvironmentHandler is the MCP SDK handler for detect_environment.
// A failed scan becomes a tool error whose text is the JSON error response.
func (s *Server) mcpDetectEnvironmentHandler(ctx context.Context, _ *mcp.CallToolRequest, _ DetectEnvironmentInput) (
	*mcp.CallToolResult,
	detect.Response,
	error,
) {
	resp, err := s.detectEnvironment(ctx)
	if err != nil {
		return nil, detect.Response{}, err
	}
	return nil, resp, nil
}

// mcpListCategoriesHandler is the MCP SDK handler for list_categories.
func (s *Server) mcpListCategoriesHandler(_ context.Context, _ *mcp.CallToolRequest, _ ListCategoriesInput) (
	*mcp.CallToolResult,
	ListCategoriesOutput,
	error,
) {
	return nil, newCategoriesOutput(s.detector.Probes()), nil
}

// Serve runs the server on the named transport until ctx is canceled.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server", slog.String("transport", transport))

	switch transport {
	case TransportStdio:
		s.logger.Debug("Using stdio transport for JSON-RPC")
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error",
				slog.String("error", err.Error()))
			return rcerrors.New(rcerrors.ErrCodeTransportFailed, "MCP server stopped", err)
		}
		s.logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return rcerrors.New(rcerrors.ErrCodeUnsupportedTransport,
			fmt.Sprintf("unknown transport: %s", transport), nil).
			WithSuggestion("Use the stdio transport.")
	}
}

// Close releases server resources.
func (s *Server) Close() error {
	// The MCP server stops when its context is canceled
	return nil
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
