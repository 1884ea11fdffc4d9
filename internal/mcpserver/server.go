// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Ansuz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/syncer"
)

// SyncFunc triggers a sync run on behalf of the sync_now tool.
type SyncFunc func(ctx context.Context) (*syncer.Result, error)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp       *server.MCPServer
	store     storage.Provider
	db        index.SyncIndex
	boardFile string
	sync      SyncFunc
}

// New creates a new MCP server with all Ansuz tools registered.
func New(store storage.Provider, db index.SyncIndex, boardFile string, sync SyncFunc) *Server {
	s := &Server{store: store, db: db, boardFile: boardFile, sync: sync}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_issues",
		mcp.WithDescription("List synced issues, optionally filtered by exact status label."),
		mcp.WithString("status", mcp.Description("Optional status filter (exact, case-sensitive)")),
	), s.listIssues)

	s.mcp.AddTool(mcp.NewTool("read_issue",
		mcp.WithDescription("Read the full Markdown note of a synced issue, including operator notes. "+
			"The region below the user-notes marker is operator-owned; read the ansuz://note-format "+
			"resource before suggesting edits."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Issue key (e.g. PROJ-42)")),
	), s.readIssue)

	s.mcp.AddTool(mcp.NewTool("search_issues",
		mcp.WithDescription("Search synced issues by summary and rendered description."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchIssues)

	s.mcp.AddTool(mcp.NewTool("read_board",
		mcp.WithDescription("Read the generated kanban board (issues grouped by status)."),
	), s.readBoard)

	s.mcp.AddTool(mcp.NewTool("sync_now",
		mcp.WithDescription("Run one sync against the tracker now and return the run summary."),
	), s.syncNow)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://note-format", "Note Format Contract",
			mcp.WithResourceDescription("The machine-owned/operator-owned split every issue note follows."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listIssues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "")
	rows, err := s.db.ListIssues(status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(rows, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readIssue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := s.db.GetIssue(key)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", key)), nil
	}
	data, err := s.store.Read(row.Path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("note missing on disk: %s", row.Path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) searchIssues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := s.store.Read(s.boardFile)
	if err != nil {
		return mcp.NewToolResultError("board not generated yet"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) syncNow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.sync == nil {
		return mcp.NewToolResultError("sync is not configured"), nil
	}
	res, err := s.sync(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
