package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/layer/internal/git"
	"github.com/Aman-CERP/layer/internal/workspace"
	"github.com/Aman-CERP/layer/internal/workspace/workspacetest"
)

func newTestServer(t *testing.T) (*Server, *workspacetest.Repo) {
	t.Helper()
	repo := workspacetest.New(t, map[string]string{
		".git/info/exclude": "# managed by layer\nCLAUDE.md\n.cursorrules\ngone.md\n# end layer\n",
		".gitignore":        "*.log\n!keep.log\n",
		"CLAUDE.md":         "x",
		".cursorrules":      "x",
		"AGENTS.md":         "x",
		"debug.log":         "x",
	}, ".cursorrules")

	s, err := NewServer(context.Background(), repo.Root, repo.Options())
	require.NoError(t, err)
	return s, repo
}

type noRepoGit struct{}

func (noRepoGit) Run(context.Context, string, ...string) ([]byte, error) {
	return nil, errors.New("fatal: not a git repository")
}

func TestNewServer_RequiresRepository(t *testing.T) {
	// Given: git reports no repository
	opts := workspace.Options{GitOptions: []git.Option{git.WithRunner(noRepoGit{})}}

	// When: creating the server
	_, err := NewServer(context.Background(), t.TempDir(), opts)

	// Then: startup fails with a repository error
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotARepository, MapError(err).Code)
}

func TestServer_ListTools(t *testing.T) {
	s, _ := newTestServer(t)

	names := make([]string, 0, 3)
	for _, tool := range s.ListTools() {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
	}

	assert.Equal(t, []string{ToolStatus, ToolWhy, ToolPatterns}, names)
}

func TestServer_Status(t *testing.T) {
	// Given: a layered file, an exposed file, a discovered file and a stale entry
	s, repo := newTestServer(t)

	// When: calling layer_status
	res, err := s.CallTool(context.Background(), ToolStatus, nil)
	require.NoError(t, err)

	// Then: every section is filled in
	out, ok := res.(StatusOutput)
	require.True(t, ok)
	assert.Equal(t, repo.Root, out.Root)
	require.Len(t, out.Layered, 1)
	assert.Equal(t, "CLAUDE.md", out.Layered[0].Path)
	assert.Equal(t, "layered", out.Layered[0].Status)
	assert.Equal(t, 2, out.Layered[0].Line)
	require.Len(t, out.Exposed, 1)
	assert.Equal(t, ".cursorrules", out.Exposed[0].Path)
	assert.True(t, out.Exposed[0].Tracked)
	require.Len(t, out.Discovered, 1)
	assert.Equal(t, "AGENTS.md", out.Discovered[0].Path)
	require.Len(t, out.Stale, 1)
	assert.Equal(t, "gone.md", out.Stale[0].Entry)
	assert.True(t, out.Problems)
}

func TestServer_Why_Layered(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.CallTool(context.Background(), ToolWhy, map[string]any{"path": "CLAUDE.md"})
	require.NoError(t, err)

	out := res.(WhyOutput)
	assert.True(t, out.Ignored)
	assert.Equal(t, "layered", out.Entry.Status)
	assert.Equal(t, "CLAUDE.md", out.Entry.Pattern)
	assert.Contains(t, out.Entry.Source, "exclude")
	require.Len(t, out.Trace, 1)
	assert.True(t, out.Trace[0].Decisive)
}

func TestServer_Why_GitignoreNegation(t *testing.T) {
	// Given: *.log ignored and keep.log re-included
	s, _ := newTestServer(t)

	// When: asking about keep.log, which does not exist yet
	res, err := s.CallTool(context.Background(), ToolWhy, map[string]any{"path": "keep.log", "verbose": true})
	require.NoError(t, err)

	// Then: the negation wins and both rules appear in the trace
	out := res.(WhyOutput)
	assert.False(t, out.Ignored)
	assert.Equal(t, "!keep.log", out.Entry.Pattern)

	var matched []string
	for _, step := range out.Trace {
		if step.Matched {
			matched = append(matched, step.Pattern)
		}
	}
	assert.Equal(t, []string{"*.log", "!keep.log"}, matched)
}

func TestServer_Why_Validation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		args map[string]any
		want int
	}{
		{"missing path", map[string]any{}, ErrCodeInvalidParams},
		{"blank path", map[string]any{"path": "  "}, ErrCodeInvalidParams},
		{"wrong type", map[string]any{"path": 42}, ErrCodeInvalidParams},
		{"outside repository", map[string]any{"path": "../elsewhere"}, ErrCodeOutsideRepo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CallTool(context.Background(), ToolWhy, tt.args)
			require.Error(t, err)
			assert.Equal(t, tt.want, MapError(err).Code)
		})
	}
}

func TestServer_Patterns(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.CallTool(context.Background(), ToolPatterns, map[string]any{"matched": true})
	require.NoError(t, err)

	out := res.(PatternsOutput)
	names := make([]string, 0, len(out.Groups))
	for _, g := range out.Groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Claude Code", "Cursor / PearAI", "OpenAI Codex"}, names)
}

func TestServer_UnknownTool(t *testing.T) {
	s, _ := newTestServer(t)

	_, err := s.CallTool(context.Background(), "search", nil)

	require.Error(t, err)
	assert.Equal(t, ErrCodeMethodNotFound, MapError(err).Code)
}

func TestServer_InMemoryClient(t *testing.T) {
	// Given: a client connected over in-memory transports
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer func() { _ = serverSession.Close() }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	// When: listing tools and calling layer_why
	list, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolWhy,
		Arguments: map[string]any{"path": "AGENTS.md"},
	})
	require.NoError(t, err)

	// Then: the three tools are advertised and the call succeeds
	assert.Len(t, list.Tools, 3)
	assert.False(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"discovered"`)
}
