package index

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/starford/seekr/internal/chunker"
	"github.com/starford/seekr/internal/fingerprint"
	"github.com/starford/seekr/internal/models"
	"github.com/starford/seekr/internal/parser"
	"github.com/starford/seekr/internal/storage"
)

// SyncOptions configures SyncCollection.
type SyncOptions struct {
	// Full re-chunks every matched file even when its fingerprint is unchanged.
	Full    bool
	Chunker *chunker.Chunker
	Logger  *slog.Logger
}

// SyncCollection walks a collection root and brings the index up to date in
// one transaction:
//   - stored documents whose file no longer matches are deleted
//   - new or changed files are chunked and stored
//   - unchanged files are skipped
//
// Binary files are never indexed. Unreadable files are logged and skipped,
// keeping any previous record. On error nothing is committed.
func SyncCollection(ctx context.Context, db *DB, col models.Collection, opts SyncOptions) (models.ReindexStats, error) {
	if opts.Chunker == nil {
		opts.Chunker = chunker.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger.With(slog.String("collection", col.Name))
	stats := models.ReindexStats{Collection: col.Name}

	provider, err := storage.NewFS(col.BasePath)
	if err != nil {
		return stats, err
	}
	pattern := col.Pattern
	if pattern == "" {
		pattern = storage.DefaultPattern
	}
	files, err := provider.List(pattern)
	if err != nil {
		return stats, err
	}
	stats.Matched = len(files)

	err = db.WithTx(ctx, func(tx *Tx) error {
		prior, err := tx.DocumentRefs(ctx, col.ID)
		if err != nil {
			return err
		}

		onDisk := make(map[string]struct{}, len(files))
		for _, f := range files {
			onDisk[f.Path] = struct{}{}
		}
		stale := make([]string, 0)
		for p := range prior {
			if _, ok := onDisk[p]; !ok {
				stale = append(stale, p)
			}
		}
		sort.Strings(stale)
		for _, p := range stale {
			if err := tx.DeleteDocument(ctx, prior[p].ID); err != nil {
				return err
			}
			stats.Removed++
			logger.Debug("sync: removed stale", slog.String("path", p))
		}

		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			ref, known := prior[f.Path]

			data, err := provider.Read(f.RelPath)
			if err != nil {
				logger.Warn("sync: read failed", slog.String("path", f.Path), slog.String("error", err.Error()))
				continue
			}
			if fingerprint.IsBinary(data) {
				if known {
					if err := tx.DeleteDocument(ctx, ref.ID); err != nil {
						return err
					}
				}
				logger.Debug("sync: skipped binary", slog.String("path", f.Path))
				continue
			}

			sum := fingerprint.Sum(data)
			if known && ref.Fingerprint == sum && !opts.Full {
				stats.Skipped++
				continue
			}
			if known {
				if err := tx.DeleteDocument(ctx, ref.ID); err != nil {
					return err
				}
			}

			chunks := opts.Chunker.Chunk(string(data))
			doc := models.Document{
				CollectionID: col.ID,
				Path:         f.Path,
				Title:        parser.Title(f.Path, data),
				Fingerprint:  sum,
				IndexedAt:    time.Now().UTC(),
			}
			if _, err := tx.InsertDocument(ctx, doc, chunks); err != nil {
				return err
			}
			stats.Indexed++
			stats.Chunks += len(chunks)
			logger.Debug("sync: indexed", slog.String("path", f.Path), slog.Int("chunks", len(chunks)))
		}
		return nil
	})
	if err != nil {
		return models.ReindexStats{Collection: col.Name}, err
	}

	logger.Info("sync: collection indexed",
		slog.Int("matched", stats.Matched),
		slog.Int("indexed", stats.Indexed),
		slog.Int("skipped", stats.Skipped),
		slog.Int("removed", stats.Removed),
		slog.Int("chunks", stats.Chunks))
	return stats, nil
}
