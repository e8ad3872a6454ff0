package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/starford/seekr/internal/models"
)

func TestSnippet(t *testing.T) {
	if got := snippet("a\n\n  b\tc", 10); got != "a b c" {
		t.Errorf("snippet = %q", got)
	}
	if got := snippet(strings.Repeat("é", 20), 5); got != "ééééé..." {
		t.Errorf("snippet = %q", got)
	}
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, nil)
	if buf.String() != "no results\n" {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	printResults(&buf, []models.SearchResult{{
		Path: "/notes/a.md", StartLine: 1, EndLine: 3, Title: "Alpha", Text: "cats\nsleep", Score: 0.5,
	}})
	out := buf.String()
	for _, want := range []string{" 1. 0.5000", "/notes/a.md:1-3", "Alpha", "cats sleep"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
