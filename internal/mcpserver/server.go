// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes seekr tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/seekr/internal/engine"
	"github.com/starford/seekr/internal/models"
)

// Server wraps the MCP server with seekr tools.
type Server struct {
	mcp *server.MCPServer
	svc *engine.Service
}

// New creates a new MCP server with all seekr tools registered.
func New(svc *engine.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"seekr",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Search indexed local documents. Returns ranked chunks with path, line range and score. "+
			"Read the seekr://query-guide resource for mode semantics."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("mode", mcp.Description("lexical, vector or hybrid (default hybrid)"),
			mcp.Enum(string(models.ModeLexical), string(models.ModeVector), string(models.ModeHybrid))),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results, 1-100 (default 10)")),
		mcp.WithNumber("min_score", mcp.Description("Drop results scoring below this value (0-1)")),
		mcp.WithString("collection", mcp.Description("Restrict the search to one collection")),
	), s.search)

	s.mcp.AddTool(mcp.NewTool("reindex",
		mcp.WithDescription("Bring the index up to date with the file system for one or all collections."),
		mcp.WithString("collection", mcp.Description("Collection to reindex (empty for all)")),
		mcp.WithBoolean("full", mcp.Description("Re-chunk unchanged files too")),
	), s.reindex)

	s.mcp.AddTool(mcp.NewTool("list_collections",
		mcp.WithDescription("List collections with their document, chunk and embedding counts."),
	), s.listCollections)

	s.mcp.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Return a stored document with all of its chunks in order."),
		mcp.WithString("collection", mcp.Required(), mcp.Description("Collection name")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute document path as returned by search")),
	), s.getDocument)

	s.mcp.AddTool(mcp.NewTool("status",
		mcp.WithDescription("Index totals, including chunks still waiting for an embedding."),
	), s.status)

	s.mcp.AddResource(
		mcp.NewResource("seekr://query-guide", "Query Guide",
			mcp.WithResourceDescription("How search modes, scores and filters behave."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readQueryGuide,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) search(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, models.SearchRequest{
		Query:      query,
		Mode:       models.SearchMode(req.GetString("mode", "")),
		Limit:      req.GetInt("limit", 0),
		MinScore:   req.GetFloat("min_score", 0),
		Collection: req.GetString("collection", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) reindex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.svc.Reindex(ctx, req.GetString("collection", ""), req.GetBool("full", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stats)
}

func (s *Server) listCollections(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cols, err := s.svc.ListCollections(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cols)
}

func (s *Server) getDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection, err := req.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.GetDocument(ctx, collection, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d)
}

func (s *Server) status(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st)
}

func (s *Server) readQueryGuide(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "seekr://query-guide",
			MIMEType: "text/markdown",
			Text:     QueryGuide,
		},
	}, nil
}
