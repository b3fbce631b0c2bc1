package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/layer/internal/workspace"
	"github.com/Aman-CERP/layer/pkg/version"
)

// Server is the MCP server for layer. Every tool call loads a fresh
// workspace, so answers follow edits made outside the server.
type Server struct {
	mcp    *mcp.Server
	root   string
	opts   workspace.Options
	logger *slog.Logger
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

var tools = []ToolInfo{
	{
		Name:        ToolStatus,
		Description: "List AI context files in the repository grouped as layered (hidden locally by .git/info/exclude), exposed (layered but still tracked by git), discovered (known context files not hidden yet) and stale (exclude entries whose file is gone).",
	},
	{
		Name:        ToolWhy,
		Description: "Explain whether a path is ignored by git and which rule decided it. Considers the global excludes file, every .gitignore and .git/info/exclude in precedence order, including negations and parent directory rules.",
	},
	{
		Name:        ToolPatterns,
		Description: "List the known AI assistant context paths layer recognizes, grouped by tool. With matched, only groups with a path present in the repository.",
	},
}

// NewServer creates an MCP server for the repository containing dir.
// The repository is discovered eagerly so a bad root fails at startup.
func NewServer(ctx context.Context, dir string, opts workspace.Options) (*Server, error) {
	ws, err := workspace.Load(ctx, dir, opts)
	if err != nil {
		return nil, err
	}

	s := &Server{
		root:   ws.Root(),
		opts:   opts,
		logger: slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "layer",
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Root returns the repository root the server answers for.
func (s *Server) Root() string {
	return s.root
}

// ListTools returns the registered tools.
func (s *Server) ListTools() []ToolInfo {
	return tools
}

// CallTool invokes a tool by name with raw arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case ToolStatus:
		return s.status(ctx)
	case ToolWhy:
		var in WhyInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return s.why(ctx, in)
	case ToolPatterns:
		var in PatternsInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return s.patterns(ctx, in)
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

func decodeArgs(args map[string]any, v any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func (s *Server) load(ctx context.Context) (*workspace.Workspace, error) {
	return workspace.Load(ctx, s.root, s.opts)
}

func (s *Server) status(ctx context.Context) (StatusOutput, error) {
	start := time.Now()
	ws, err := s.load(ctx)
	if err != nil {
		return StatusOutput{}, err
	}
	d, err := ws.Dashboard(ctx)
	if err != nil {
		return StatusOutput{}, err
	}

	out := ToStatusOutput(ws.Root(), d)
	s.logger.Info("layer_status completed",
		slog.Int("layered", len(out.Layered)),
		slog.Int("exposed", len(out.Exposed)),
		slog.Int("stale", len(out.Stale)),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}

func (s *Server) why(ctx context.Context, in WhyInput) (WhyOutput, error) {
	path := strings.TrimSpace(in.Path)
	if path == "" {
		return WhyOutput{}, NewInvalidParamsError("path parameter is required")
	}

	ws, err := s.load(ctx)
	if err != nil {
		return WhyOutput{}, err
	}
	c, err := ws.Candidate(path)
	if err != nil {
		return WhyOutput{}, err
	}

	out := ToWhyOutput(ws.Classify(c), ws.Explain(c), in.Verbose)
	s.logger.Debug("layer_why completed",
		slog.String("path", c.Path),
		slog.String("status", out.Entry.Status))
	return out, nil
}

func (s *Server) patterns(ctx context.Context, in PatternsInput) (PatternsOutput, error) {
	ws, err := s.load(ctx)
	if err != nil {
		return PatternsOutput{}, err
	}
	return PatternsOutput{Groups: ws.Patterns(in.Matched)}, nil
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{Name: ToolStatus, Description: tools[0].Description}, s.mcpStatusHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: ToolWhy, Description: tools[1].Description}, s.mcpWhyHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: ToolPatterns, Description: tools[2].Description}, s.mcpPatternsHandler)

	s.logger.Debug("MCP tools registered", slog.Int("count", len(tools)))
}

func (s *Server) mcpStatusHandler(ctx context.Context, _ *mcp.CallToolRequest, _ StatusInput) (
	*mcp.CallToolResult,
	StatusOutput,
	error,
) {
	out, err := s.status(ctx)
	if err != nil {
		return nil, StatusOutput{}, MapError(err)
	}
	return nil, out, nil
}

func (s *Server) mcpWhyHandler(ctx context.Context, _ *mcp.CallToolRequest, input WhyInput) (
	*mcp.CallToolResult,
	WhyOutput,
	error,
) {
	out, err := s.why(ctx, input)
	if err != nil {
		return nil, WhyOutput{}, MapError(err)
	}
	return nil, out, nil
}

func (s *Server) mcpPatternsHandler(ctx context.Context, _ *mcp.CallToolRequest, input PatternsInput) (
	*mcp.CallToolResult,
	PatternsOutput,
	error,
) {
	out, err := s.patterns(ctx, input)
	if err != nil {
		return nil, PatternsOutput{}, MapError(err)
	}
	return nil, out, nil
}

// Serve runs the server over stdio until ctx is canceled or the client
// disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting MCP server",
		slog.String("transport", "stdio"),
		slog.String("root", s.root))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped gracefully")
	return nil
}
