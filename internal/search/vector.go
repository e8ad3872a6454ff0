package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/seekr/internal/apperr"
	"github.com/starford/seekr/internal/models"
	"github.com/starford/seekr/internal/vector"
)

var errNoEmbedder = errors.New("search: no embedding client configured")

// SemanticSearch embeds query and returns the k most similar chunks. When the
// query is blank or no chunk matching the filter has an embedding the result
// is empty and the embedder is not called.
func (s *Searcher) SemanticSearch(ctx context.Context, query string, k int, collection string) ([]models.SearchResult, error) {
	if k <= 0 || strings.TrimSpace(query) == "" {
		return []models.SearchResult{}, nil
	}
	n, err := s.store.CountEmbeddings(ctx, collection)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []models.SearchResult{}, nil
	}
	if s.embedder == nil {
		return nil, errNoEmbedder
	}
	vecs, err := s.embedder.Embed(ctx, []string{query}, s.model)
	if err != nil {
		return nil, fmt.Errorf("search: embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("search: embed query: got %d vectors", len(vecs))
	}
	return s.VectorSearch(ctx, vecs[0], k, collection)
}

// VectorSearch scans every stored vector matching collection and returns the
// k with the highest cosine similarity to queryVec. Score is similarity mapped
// from [-1,1] onto [0,1]. Stored vectors of a different length are logged and
// skipped.
func (s *Searcher) VectorSearch(ctx context.Context, queryVec []float32, k int, collection string) ([]models.SearchResult, error) {
	if k <= 0 {
		return []models.SearchResult{}, nil
	}
	top := vector.NewTopK(k)
	err := s.store.ScanEmbeddings(ctx, collection, func(id int64, v []float32) error {
		sim, err := vector.Cosine(queryVec, v)
		if err != nil {
			if errors.Is(err, apperr.ErrDimensionMismatch) {
				s.logger.Warn("vector: skipping chunk", slog.Int64("chunk_id", id), slog.String("error", err.Error()))
				return nil
			}
			return err
		}
		top.Offer(id, vector.Score(sim), sim)
		return nil
	})
	if err != nil {
		return nil, err
	}

	ranked := top.Sorted()
	ids := make([]int64, len(ranked))
	for i, c := range ranked {
		ids[i] = c.ID
	}
	hits, err := s.store.ChunksByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.SearchResult, 0, len(ranked))
	for _, c := range ranked {
		h, ok := hits[c.ID]
		if !ok {
			continue
		}
		r := resultFromHit(h)
		r.Similarity = c.Raw
		r.VectorScore = c.Score
		r.Score = c.Score
		out = append(out, r)
	}
	return out, nil
}
