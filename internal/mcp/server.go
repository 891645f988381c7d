package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/dokploy-deploy/internal/deploy"
	"github.com/joescharf/dokploy-deploy/internal/git"
	"github.com/joescharf/dokploy-deploy/internal/monorepo"
	"github.com/joescharf/dokploy-deploy/internal/store"
)

// Options carries the settings the read-only tools need.
type Options struct {
	Domain            string
	HeuristicFallback bool
	Version           string
}

// Server exposes classification, remote parsing and run history as MCP tools.
// None of its tools call the platform API.
type Server struct {
	store store.Store // nil when the run journal is disabled
	git   git.Client
	opts  Options
}

// NewServer creates the MCP server wrapper.
func NewServer(s store.Store, gc git.Client, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Server{store: s, git: gc, opts: opts}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("dokploy-deploy", s.opts.Version, server.WithToolCapabilities(true))

	srv.AddTool(s.detectTool())
	srv.AddTool(s.planTool())
	srv.AddTool(s.parseRemoteTool())
	srv.AddTool(s.historyTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// dokploy_detect
func (s *Server) detectTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("dokploy_detect",
		mcp.WithDescription("Classify a directory as a single application or a monorepo. Returns the classification with entries, confidence, signals and candidate groups as JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the repository root")),
	)
	return tool, s.handleDetect
}

func (s *Server) handleDetect(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}
	if !dirExists(path) {
		return mcp.NewToolResultError(fmt.Sprintf("not a directory: %s", path)), nil
	}

	res := monorepo.Classify(path, monorepo.WithHeuristicFallback(s.opts.HeuristicFallback))
	return jsonResult(res)
}

// dokploy_plan
func (s *Server) planTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("dokploy_plan",
		mcp.WithDescription("Show the applications and host names a deploy of the directory would create, without calling the platform."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the repository root")),
		mcp.WithString("domain", mcp.Description("Wildcard domain; defaults to the configured domain")),
	)
	return tool, s.handlePlan
}

func (s *Server) handlePlan(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}
	if !dirExists(path) {
		return mcp.NewToolResultError(fmt.Sprintf("not a directory: %s", path)), nil
	}
	domain := request.GetString("domain", s.opts.Domain)
	if domain == "" {
		return mcp.NewToolResultError("no domain configured, pass domain or set DOKPLOY_DOMAIN"), nil
	}

	res := monorepo.Classify(path, monorepo.WithHeuristicFallback(s.opts.HeuristicFallback))

	type appOut struct {
		Name      string `json:"name"`
		BuildPath string `json:"build_path"`
		Host      string `json:"host"`
	}
	type planOut struct {
		Project    string   `json:"project"`
		MultiApp   bool     `json:"multi_app"`
		Confidence string   `json:"confidence"`
		Apps       []appOut `json:"apps"`
		Duplicates []string `json:"duplicates,omitempty"`
	}

	out := planOut{
		Project:    res.Root.Name,
		MultiApp:   res.IsMultiApp,
		Confidence: string(res.Confidence),
		Duplicates: res.DuplicateNames(),
	}
	for _, e := range res.Entries {
		out.Apps = append(out.Apps, appOut{
			Name:      e.Name,
			BuildPath: e.BuildPath,
			Host:      deploy.Host(res.Root.Name, e.Name, domain, res.IsMultiApp),
		})
	}
	return jsonResult(out)
}

// dokploy_parse_remote
func (s *Server) parseRemoteTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("dokploy_parse_remote",
		mcp.WithDescription("Extract owner and repository from a git remote URL, or from the origin remote of a local checkout."),
		mcp.WithString("url", mcp.Description("Remote URL (HTTPS, SSH or scp-style)")),
		mcp.WithString("path", mcp.Description("Local checkout whose origin should be parsed when url is not given")),
	)
	return tool, s.handleParseRemote
}

func (s *Server) handleParseRemote(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url := request.GetString("url", "")
	if url == "" {
		path := request.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("one of url or path is required"), nil
		}
		if s.git == nil {
			return mcp.NewToolResultError("git client not available"), nil
		}
		origin, err := s.git.RemoteURL(path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read remote: %v", err)), nil
		}
		if origin == "" {
			return mcp.NewToolResultError(fmt.Sprintf("no origin remote in %s", path)), nil
		}
		url = origin
	}

	r := git.ParseRemote(url)
	return jsonResult(map[string]string{
		"url":        url,
		"owner":      r.Owner,
		"repository": r.Repository,
	})
}

// dokploy_history
func (s *Server) historyTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("dokploy_history",
		mcp.WithDescription("List recorded deploy runs, newest first, or show one run with its applications and step results."),
		mcp.WithString("run_id", mcp.Description("Run ID or unique prefix; when set, returns that run in detail")),
		mcp.WithString("project", mcp.Description("Filter by project name")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs to list (default 20)")),
	)
	return tool, s.handleHistory
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("run history is disabled"), nil
	}

	if id := request.GetString("run_id", ""); id != "" {
		run, err := s.store.GetRun(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(run)
	}

	runs, err := s.store.ListRuns(ctx, store.RunListFilter{
		ProjectName: request.GetString("project", ""),
		Limit:       request.GetInt("limit", 20),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	type runOut struct {
		ID        string `json:"id"`
		Project   string `json:"project"`
		Status    string `json:"status"`
		MultiApp  bool   `json:"multi_app"`
		RemoteURL string `json:"remote_url"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]runOut, len(runs))
	for i, r := range runs {
		out[i] = runOut{
			ID:        r.ID,
			Project:   r.ProjectName,
			Status:    string(r.Status),
			MultiApp:  r.MultiApp,
			RemoteURL: r.RemoteURL,
			CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return jsonResult(out)
}
