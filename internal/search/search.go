// Package search implements lexical, vector and hybrid ranking over the index.
package search

import (
	"context"
	"log/slog"

	"github.com/starford/seekr/internal/index"
	"github.com/starford/seekr/internal/models"
)

// KeywordStore ranks chunks by keyword relevance.
type KeywordStore interface {
	KeywordSearch(ctx context.Context, terms []string, limit int, collection string) ([]index.ChunkHit, error)
}

// EmbeddingStore exposes stored vectors for similarity search. The linear
// scan could be replaced by an approximate index behind the same interface.
type EmbeddingStore interface {
	ScanEmbeddings(ctx context.Context, collection string, fn func(chunkID int64, v []float32) error) error
	CountEmbeddings(ctx context.Context, collection string) (int, error)
	ChunksByID(ctx context.Context, ids []int64) (map[int64]index.ChunkHit, error)
}

// Store is everything the Searcher reads.
type Store interface {
	KeywordStore
	EmbeddingStore
}

// Embedder turns query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, texts []string, model string) ([][]float32, error)
}

// Weights are the per-modality multipliers used by hybrid fusion.
type Weights struct {
	Lexical float64
	Vector  float64
}

// DefaultWeights favour semantic similarity over keyword overlap.
var DefaultWeights = Weights{Lexical: 0.4, Vector: 0.6}

// Searcher runs queries against a Store.
type Searcher struct {
	store    Store
	embedder Embedder
	model    string
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithModel sets the embedding model used for query vectors.
func WithModel(model string) Option {
	return func(s *Searcher) { s.model = model }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Searcher) { s.logger = l }
}

// New creates a Searcher. embedder may be nil, in which case vector search
// fails and hybrid search degrades to lexical ranking.
func New(store Store, embedder Embedder, opts ...Option) *Searcher {
	s := &Searcher{store: store, embedder: embedder, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With(slog.String("component", "search"))
	return s
}

func resultFromHit(h index.ChunkHit) models.SearchResult {
	return models.SearchResult{
		ChunkID:    h.ChunkID,
		Collection: h.Collection,
		Path:       h.Path,
		Title:      h.Title,
		StartLine:  h.StartLine,
		EndLine:    h.EndLine,
		Text:       h.Text,
	}
}
