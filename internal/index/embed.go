package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/starford/seekr/internal/models"
	"github.com/starford/seekr/internal/vector"
)

// DefaultBatchSize is the number of chunks sent per embedding request.
const DefaultBatchSize = 100

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string, model string) ([][]float32, error)
}

// EmbedOptions configures EmbedPending.
type EmbedOptions struct {
	Model     string
	BatchSize int
	// Delay is the minimum spacing between consecutive embedding requests.
	Delay time.Duration
	// Force discards every stored vector first so all chunks are re-embedded.
	Force  bool
	Logger *slog.Logger
}

// EmbedPending embeds every chunk that has no vector yet, in batches, and
// stores the unit-normalized results. Batches that completed before an error
// stay committed; the returned stats cover them.
func EmbedPending(ctx context.Context, db *DB, emb Embedder, opts EmbedOptions) (models.EmbedStats, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	stats := models.EmbedStats{Model: opts.Model}

	if opts.Force {
		if err := db.ClearEmbeddings(ctx); err != nil {
			return stats, err
		}
	}

	var limiter *rate.Limiter
	if opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
	}

	for {
		pending, err := db.PendingChunks(ctx, opts.BatchSize)
		if err != nil {
			return stats, err
		}
		if len(pending) == 0 {
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return stats, err
			}
		}

		texts := make([]string, len(pending))
		for i, p := range pending {
			texts[i] = p.Text
		}
		vecs, err := emb.Embed(ctx, texts, opts.Model)
		if err != nil {
			return stats, fmt.Errorf("index: embed batch %d: %w", stats.Batches+1, err)
		}
		if len(vecs) != len(pending) {
			return stats, fmt.Errorf("index: embed batch %d: got %d vectors for %d chunks",
				stats.Batches+1, len(vecs), len(pending))
		}

		rows := make([]EmbeddingRow, len(pending))
		for i, p := range pending {
			rows[i] = EmbeddingRow{ChunkID: p.ID, Vector: vector.Normalize(vecs[i])}
		}
		stored, err := db.StoreEmbeddings(ctx, opts.Model, rows)
		if err != nil {
			return stats, err
		}
		stats.Batches++
		stats.Embedded += stored
		opts.Logger.Debug("embed: batch stored",
			slog.Int("batch", stats.Batches), slog.Int("chunks", stored))
	}

	opts.Logger.Info("embed: pass complete",
		slog.String("model", opts.Model),
		slog.Int("batches", stats.Batches),
		slog.Int("embedded", stats.Embedded))
	return stats, nil
}
