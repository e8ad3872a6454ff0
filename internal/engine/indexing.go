package engine

import (
	"context"
	"log/slog"

	"github.com/starford/seekr/internal/apperr"
	"github.com/starford/seekr/internal/index"
	"github.com/starford/seekr/internal/models"
)

// Reindex brings one collection, or every collection when name is empty, up
// to date with the file system. Collections are processed sequentially, each
// in its own transaction. On error the stats of collections already committed
// are returned along with it.
func (s *Service) Reindex(ctx context.Context, name string, full bool) ([]models.ReindexStats, error) {
	var cols []models.Collection
	if name != "" {
		c, err := s.db.GetCollection(ctx, name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	} else {
		infos, err := s.db.ListCollections(ctx)
		if err != nil {
			return nil, err
		}
		for _, ci := range infos {
			cols = append(cols, ci.Collection)
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	out := make([]models.ReindexStats, 0, len(cols))
	for _, c := range cols {
		st, err := index.SyncCollection(ctx, s.db, c, index.SyncOptions{
			Full:    full,
			Chunker: s.opts.Chunker,
			Logger:  s.opts.Logger,
		})
		if err != nil {
			s.logger.Error("reindex failed", slog.String("collection", c.Name), slog.String("error", err.Error()))
			return out, err
		}
		out = append(out, st)
		if s.opts.Publisher != nil {
			s.opts.Publisher.PublishIndexed(st)
		}
	}
	return out, nil
}

// Embed runs an embedding pass over every chunk lacking a vector. With force
// every stored vector is discarded first.
func (s *Service) Embed(ctx context.Context, force bool) (models.EmbedStats, error) {
	if s.embedder == nil {
		return models.EmbedStats{Model: s.opts.Model}, apperr.ErrAuthRequired
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	st, err := index.EmbedPending(ctx, s.db, s.embedder, index.EmbedOptions{
		Model:     s.opts.Model,
		BatchSize: s.opts.BatchSize,
		Delay:     s.opts.BatchDelay,
		Force:     force,
		Logger:    s.opts.Logger,
	})
	if err != nil {
		s.logger.Error("embed failed",
			slog.Int("embedded", st.Embedded),
			slog.String("error", err.Error()))
		return st, err
	}
	if s.opts.Publisher != nil {
		s.opts.Publisher.PublishEmbedded(st)
	}
	return st, nil
}
