// Package engine coordinates collections, indexing, embedding and search on
// top of the index store. It is the application layer shared by the CLI, the
// HTTP API and the MCP server.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/seekr/internal/chunker"
	"github.com/starford/seekr/internal/index"
	"github.com/starford/seekr/internal/models"
	"github.com/starford/seekr/internal/search"
)

// Limits on search requests.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Publisher receives activity notifications. *sse.Broker implements it.
type Publisher interface {
	PublishIndexed(stats models.ReindexStats)
	PublishEmbedded(stats models.EmbedStats)
	PublishCollection(kind, name string)
}

// Options configures a Service.
type Options struct {
	Model        string
	BatchSize    int
	BatchDelay   time.Duration
	Weights      search.Weights
	DefaultLimit int
	Chunker      *chunker.Chunker
	Publisher    Publisher
	Logger       *slog.Logger
}

// Service is the application facade over one index database.
type Service struct {
	db       *index.DB
	embedder index.Embedder
	searcher *search.Searcher
	opts     Options
	logger   *slog.Logger

	// writeMu serialises reindex and embed passes.
	writeMu sync.Mutex
}

// New creates a Service. embedder serves both the embedding pass and query
// vectors.
func New(db *index.DB, embedder index.Embedder, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Chunker == nil {
		opts.Chunker = chunker.New()
	}
	if opts.Weights == (search.Weights{}) {
		opts.Weights = search.DefaultWeights
	}
	if opts.DefaultLimit <= 0 || opts.DefaultLimit > MaxLimit {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = index.DefaultBatchSize
	}
	logger := opts.Logger.With(slog.String("component", "engine"))

	return &Service{
		db:       db,
		embedder: embedder,
		searcher: search.New(db, embedder, search.WithModel(opts.Model), search.WithLogger(opts.Logger)),
		opts:     opts,
		logger:   logger,
	}
}

// Ping verifies the underlying store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// CheckIntegrity runs the store's integrity check. Corruption is reported as
// apperr.ErrCorruptStore; the file is quarantined on the next open.
func (s *Service) CheckIntegrity(ctx context.Context) error {
	if err := s.db.CheckIntegrity(ctx); err != nil {
		s.logger.Error("index integrity check failed",
			slog.String("path", s.db.Path()),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Status summarises the whole index.
func (s *Service) Status(ctx context.Context) (models.Status, error) {
	return s.db.Status(ctx)
}

// GetDocument returns one stored document with its chunks.
func (s *Service) GetDocument(ctx context.Context, collection, path string) (models.DocumentDetail, error) {
	if _, err := s.db.GetCollection(ctx, collection); err != nil {
		return models.DocumentDetail{}, err
	}
	return s.db.GetDocument(ctx, collection, path)
}

// ListDocuments returns stored documents, optionally for one collection.
func (s *Service) ListDocuments(ctx context.Context, collection string) ([]models.Document, error) {
	if collection != "" {
		if _, err := s.db.GetCollection(ctx, collection); err != nil {
			return nil, err
		}
	}
	return s.db.ListDocuments(ctx, collection)
}
