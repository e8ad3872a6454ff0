package engine

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/starford/seekr/internal/apperr"
	"github.com/starford/seekr/internal/models"
	"github.com/starford/seekr/internal/search"
	"github.com/starford/seekr/internal/testutil"
)

type stubEmbedder struct {
	err error
}

// Embed maps each text onto a 2-d vector keyed on whether it mentions "cat".
func (s stubEmbedder) Embed(_ context.Context, texts []string, _ string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if strings.Contains(t, "cat") {
			out[i] = []float32{1, 0}
		} else {
			out[i] = []float32{0, 1}
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	indexed []models.ReindexStats
	embeds  []models.EmbedStats
	cols    []string
}

func (p *recordingPublisher) PublishIndexed(st models.ReindexStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indexed = append(p.indexed, st)
}

func (p *recordingPublisher) PublishEmbedded(st models.EmbedStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embeds = append(p.embeds, st)
}

func (p *recordingPublisher) PublishCollection(kind, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cols = append(p.cols, kind+":"+name)
}

func newService(t *testing.T, emb stubEmbedder) (*Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc := New(testutil.TestDB(t), emb, Options{
		Model:     "test-model",
		Publisher: pub,
		Logger:    testutil.DiscardLogger(),
	})
	return svc, pub
}

func TestAddCollection_Validation(t *testing.T) {
	svc, _ := newService(t, stubEmbedder{})
	ctx := context.Background()
	dir := t.TempDir()

	cases := []struct {
		name, path, pattern string
	}{
		{"", dir, ""},
		{"bad name", dir, ""},
		{"ok", filepath.Join(dir, "missing"), ""},
		{"ok", dir, "[unclosed"},
	}
	for _, tc := range cases {
		if _, err := svc.AddCollection(ctx, tc.name, tc.path, tc.pattern); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("%+v: expected ErrInvalidArgument, got %v", tc, err)
		}
	}

	c, err := svc.AddCollection(ctx, "notes", dir, "")
	if err != nil {
		t.Fatalf("AddCollection: %v", err)
	}
	if c.Pattern != "**/*.md" || !filepath.IsAbs(c.BasePath) {
		t.Fatalf("collection: %+v", c)
	}
	if _, err := svc.AddCollection(ctx, "notes", dir, ""); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := svc.EnsureCollection(ctx, "notes", dir, ""); err != nil {
		t.Fatalf("EnsureCollection existing: %v", err)
	}
}

func TestReindex_TwoCollections(t *testing.T) {
	svc, pub := newService(t, stubEmbedder{})
	ctx := context.Background()

	dirA := testutil.WriteFiles(t, map[string]string{
		"one.md":   "# One\nfirst\n",
		"two.md":   "# Two\nsecond\n",
		"three.md": "# Three\nthird\n",
	})
	dirB := testutil.WriteFiles(t, map[string]string{
		"gone.md": "# Gone\nsoon removed\n",
	})
	if _, err := svc.AddCollection(ctx, "a", dirA, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddCollection(ctx, "b", dirB, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Reindex(ctx, "", false); err != nil {
		t.Fatalf("first Reindex: %v", err)
	}

	testutil.WriteFile(t, dirA, "four.md", "# Four\nfourth\n")
	if err := os.Remove(filepath.Join(dirB, "gone.md")); err != nil {
		t.Fatal(err)
	}

	stats, err := svc.Reindex(ctx, "", false)
	if err != nil {
		t.Fatalf("second Reindex: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 stats, got %d", len(stats))
	}
	a, b := stats[0], stats[1]
	if a.Collection != "a" || a.Indexed != 1 || a.Skipped != 3 || a.Removed != 0 {
		t.Errorf("A: %+v", a)
	}
	if b.Collection != "b" || b.Indexed != 0 || b.Skipped != 0 || b.Removed != 1 {
		t.Errorf("B: %+v", b)
	}
	if len(pub.indexed) != 4 {
		t.Errorf("published %d index events, want 4", len(pub.indexed))
	}
}

func TestReindex_UnknownCollection(t *testing.T) {
	svc, _ := newService(t, stubEmbedder{})
	if _, err := svc.Reindex(context.Background(), "nope", false); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func seedCorpus(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	dir := testutil.WriteFiles(t, map[string]string{
		"cats.md": "# Cats\nthe cat sat on the mat\n",
		"dogs.md": "# Dogs\nthe dog sat on the log\n",
	})
	if _, err := svc.AddCollection(ctx, "pets", dir, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Reindex(ctx, "pets", false); err != nil {
		t.Fatal(err)
	}
}

func TestSearch_Modes(t *testing.T) {
	svc, pub := newService(t, stubEmbedder{})
	ctx := context.Background()
	seedCorpus(t, svc)

	lex, err := svc.Search(ctx, models.SearchRequest{Query: "dog", Mode: models.ModeLexical})
	if err != nil {
		t.Fatalf("lexical: %v", err)
	}
	// Either keyword backend: one hit, normalized into (0, 1].
	if len(lex) != 1 || lex[0].Title != "Dogs" || lex[0].Score <= 0 || lex[0].Score > 1 {
		t.Fatalf("lexical results: %+v", lex)
	}

	vec, err := svc.Search(ctx, models.SearchRequest{Query: "cat", Mode: models.ModeVector})
	if err != nil {
		t.Fatalf("vector before embed: %v", err)
	}
	if len(vec) != 0 {
		t.Fatalf("expected no vector results before embedding, got %d", len(vec))
	}

	st, err := svc.Embed(ctx, false)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if st.Embedded != 2 || len(pub.embeds) != 1 {
		t.Fatalf("embed stats %+v, events %d", st, len(pub.embeds))
	}

	vec, err = svc.Search(ctx, models.SearchRequest{Query: "cat", Mode: models.ModeVector})
	if err != nil {
		t.Fatalf("vector: %v", err)
	}
	if len(vec) != 2 || vec[0].Title != "Cats" || vec[0].Score != 1 {
		t.Fatalf("vector results: %+v", vec)
	}

	hyb, err := svc.Search(ctx, models.SearchRequest{Query: "sat cat"})
	if err != nil {
		t.Fatalf("hybrid: %v", err)
	}
	if len(hyb) == 0 || hyb[0].Title != "Cats" {
		t.Fatalf("hybrid results: %+v", hyb)
	}

	filtered, err := svc.Search(ctx, models.SearchRequest{Query: "cat", Mode: models.ModeVector, MinScore: 0.9})
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 {
		t.Fatalf("min score filter: %+v", filtered)
	}
}

func TestSearch_HybridDegradesWhenProviderFails(t *testing.T) {
	svc, _ := newService(t, stubEmbedder{})
	ctx := context.Background()
	seedCorpus(t, svc)
	if _, err := svc.Embed(ctx, false); err != nil {
		t.Fatal(err)
	}

	failing := New(svc.db, stubEmbedder{err: &apperr.ProviderError{Status: 503, Message: "down"}}, Options{
		Logger: testutil.DiscardLogger(),
	})
	res, err := failing.Search(ctx, models.SearchRequest{Query: "dog"})
	if err != nil {
		t.Fatalf("hybrid should degrade, got %v", err)
	}
	if len(res) != 1 || res[0].Title != "Dogs" || res[0].LexicalScore <= 0 {
		t.Fatalf("results: %+v", res)
	}
	if want := search.DefaultWeights.Lexical * res[0].LexicalScore; math.Abs(res[0].Score-want) > 1e-9 {
		t.Fatalf("degraded score = %v, want lexical weight * %v = %v", res[0].Score, res[0].LexicalScore, want)
	}
	if res[0].VectorScore != 0 {
		t.Fatalf("degraded result carries vector score: %+v", res[0])
	}

	if _, err := failing.Search(ctx, models.SearchRequest{Query: "dog", Mode: models.ModeVector}); !apperr.IsProviderError(err) {
		t.Fatalf("vector mode should fail with provider error, got %v", err)
	}
}

func TestSearch_BlankQueryReturnsEmpty(t *testing.T) {
	svc, _ := newService(t, stubEmbedder{})
	ctx := context.Background()
	seedCorpus(t, svc)
	if _, err := svc.Embed(ctx, false); err != nil {
		t.Fatal(err)
	}

	// A failing embedder proves the blank query never reaches the provider.
	failing := New(svc.db, stubEmbedder{err: &apperr.ProviderError{Status: 400, Message: "empty input"}}, Options{
		Logger: testutil.DiscardLogger(),
	})
	for _, mode := range []models.SearchMode{models.ModeLexical, models.ModeVector, models.ModeHybrid} {
		for _, q := range []string{"", "   "} {
			for _, s := range []*Service{svc, failing} {
				res, err := s.Search(ctx, models.SearchRequest{Query: q, Mode: mode})
				if err != nil {
					t.Fatalf("mode %s query %q: %v", mode, q, err)
				}
				if res == nil || len(res) != 0 {
					t.Fatalf("mode %s query %q: got %+v, want empty", mode, q, res)
				}
			}
		}
	}

	if _, err := svc.Search(ctx, models.SearchRequest{Query: " ", Mode: "fuzzy"}); !errors.Is(err, apperr.ErrInvalidMode) {
		t.Errorf("blank query still validates mode, got %v", err)
	}
}

func TestSearch_Validation(t *testing.T) {
	svc, _ := newService(t, stubEmbedder{})
	ctx := context.Background()

	if _, err := svc.Search(ctx, models.SearchRequest{Query: "x", Mode: "fuzzy"}); !errors.Is(err, apperr.ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
	for _, limit := range []int{-1, 101} {
		if _, err := svc.Search(ctx, models.SearchRequest{Query: "x", Limit: limit}); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("limit %d: expected ErrInvalidArgument, got %v", limit, err)
		}
	}
	if _, err := svc.Search(ctx, models.SearchRequest{Query: "x", MinScore: -0.1}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative min score, got %v", err)
	}
	if _, err := svc.Search(ctx, models.SearchRequest{Query: "x", Collection: "nope"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	res, err := svc.Search(ctx, models.SearchRequest{Query: "   "})
	if err != nil || len(res) != 0 {
		t.Errorf("blank query: %v, %v", res, err)
	}
}

func TestRemoveCollection(t *testing.T) {
	svc, pub := newService(t, stubEmbedder{})
	ctx := context.Background()
	seedCorpus(t, svc)

	if err := svc.RemoveCollection(ctx, "pets"); err != nil {
		t.Fatalf("RemoveCollection: %v", err)
	}
	st, err := svc.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Collections) != 0 || st.Chunks != 0 {
		t.Fatalf("status: %+v", st)
	}
	if got := pub.cols; len(got) != 2 || got[0] != "added:pets" || got[1] != "removed:pets" {
		t.Fatalf("collection events: %v", got)
	}
}

func TestGetDocument(t *testing.T) {
	svc, _ := newService(t, stubEmbedder{})
	ctx := context.Background()
	seedCorpus(t, svc)

	docs, err := svc.ListDocuments(ctx, "pets")
	if err != nil || len(docs) != 2 {
		t.Fatalf("ListDocuments: %v, %v", docs, err)
	}
	d, err := svc.GetDocument(ctx, "pets", docs[0].Path)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if len(d.Chunks) != 1 {
		t.Fatalf("chunks: %+v", d.Chunks)
	}
	if _, err := svc.GetDocument(ctx, "nope", docs[0].Path); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckIntegrity(t *testing.T) {
	svc, _ := newService(t, stubEmbedder{})
	ctx := context.Background()
	seedCorpus(t, svc)

	if err := svc.CheckIntegrity(ctx); err != nil {
		t.Fatalf("healthy store: %v", err)
	}
	svc.db.Close()
	if err := svc.CheckIntegrity(ctx); err == nil {
		t.Fatal("expected error from closed store")
	}
}
