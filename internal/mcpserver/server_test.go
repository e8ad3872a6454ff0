package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/seekr/internal/engine"
	"github.com/starford/seekr/internal/models"
	"github.com/starford/seekr/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	svc := engine.New(testutil.TestDB(t), nil, engine.Options{Logger: testutil.DiscardLogger()})
	dir := testutil.WriteFiles(t, map[string]string{
		"go.md":   "# Go\nchannels and goroutines\n",
		"rust.md": "# Rust\nownership and borrowing\n",
	})
	ctx := context.Background()
	if _, err := svc.AddCollection(ctx, "langs", dir, ""); err != nil {
		t.Fatal(err)
	}
	return New(svc, "test"), dir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are invoked
	// directly.
	var (
		result *mcp.CallToolResult
		err    error
	)
	switch name {
	case "search":
		result, err = srv.search(ctx, req)
	case "reindex":
		result, err = srv.reindex(ctx, req)
	case "list_collections":
		result, err = srv.listCollections(ctx, req)
	case "get_document":
		result, err = srv.getDocument(ctx, req)
	case "status":
		result, err = srv.status(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReindexThenSearch(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "reindex", map[string]any{})
	if r.IsError {
		t.Fatalf("reindex error: %s", resultText(r))
	}
	var stats []models.ReindexStats
	if err := json.Unmarshal([]byte(resultText(r)), &stats); err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 || stats[0].Indexed != 2 {
		t.Fatalf("stats: %+v", stats)
	}

	r = callTool(t, srv, "search", map[string]any{"query": "goroutines", "mode": "lexical", "limit": 5})
	if r.IsError {
		t.Fatalf("search error: %s", resultText(r))
	}
	var results []models.SearchResult
	if err := json.Unmarshal([]byte(resultText(r)), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Title != "Go" {
		t.Fatalf("results: %+v", results)
	}
}

func TestSearch_InvalidMode(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "search", map[string]any{"query": "x", "mode": "fuzzy"})
	if !r.IsError {
		t.Error("expected error for invalid mode")
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "search", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing query")
	}
}

func TestListCollections(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_collections", map[string]any{})
	if !strings.Contains(resultText(r), `"name": "langs"`) {
		t.Errorf("list = %q", resultText(r))
	}
}

func TestGetDocument(t *testing.T) {
	srv, dir := testServer(t)
	_ = callTool(t, srv, "reindex", map[string]any{"collection": "langs"})

	r := callTool(t, srv, "get_document", map[string]any{
		"collection": "langs",
		"path":       filepath.Join(dir, "rust.md"),
	})
	if r.IsError {
		t.Fatalf("get_document error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "ownership and borrowing") {
		t.Errorf("document = %q", resultText(r))
	}

	r = callTool(t, srv, "get_document", map[string]any{"collection": "langs", "path": "/nope.md"})
	if !r.IsError {
		t.Error("expected error for missing document")
	}
}

func TestStatus(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "reindex", map[string]any{})

	var st models.Status
	if err := json.Unmarshal([]byte(resultText(callTool(t, srv, "status", map[string]any{}))), &st); err != nil {
		t.Fatal(err)
	}
	if st.Documents != 2 || st.Pending != 2 {
		t.Fatalf("status: %+v", st)
	}
}

func TestQueryGuideResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readQueryGuide(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || !strings.Contains(tc.Text, "hybrid") {
		t.Fatalf("resource: %+v", contents)
	}
}
