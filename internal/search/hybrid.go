package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/starford/seekr/internal/models"
)

// candidateFactor widens each leg's request before fusion.
const candidateFactor = 3

// HybridSearch runs lexical and vector search independently, each asking for
// 3k candidates, and fuses them by weighted sum. A chunk missing from one leg
// scores 0 for that modality. A failing vector leg is logged and treated as
// empty so the query still returns lexical results.
func (s *Searcher) HybridSearch(ctx context.Context, query string, k int, w Weights, collection string) ([]models.SearchResult, error) {
	if k <= 0 {
		return []models.SearchResult{}, nil
	}
	wide := k * candidateFactor

	lex, err := s.LexicalSearch(ctx, query, wide, collection)
	if err != nil {
		return nil, err
	}
	vec, err := s.SemanticSearch(ctx, query, wide, collection)
	if err != nil {
		s.logger.Warn("hybrid: vector leg failed, using lexical only", slog.String("error", err.Error()))
		vec = nil
	}

	fused := make(map[int64]*models.SearchResult, len(lex)+len(vec))
	order := make([]int64, 0, len(lex)+len(vec))
	for _, r := range lex {
		fused[r.ChunkID] = &r
		order = append(order, r.ChunkID)
	}
	for _, r := range vec {
		if f, ok := fused[r.ChunkID]; ok {
			f.VectorScore = r.VectorScore
			f.Similarity = r.Similarity
			continue
		}
		r.LexicalScore = 0
		fused[r.ChunkID] = &r
		order = append(order, r.ChunkID)
	}

	out := make([]models.SearchResult, 0, len(order))
	for _, id := range order {
		r := fused[id]
		r.Score = r.LexicalScore*w.Lexical + r.VectorScore*w.Vector
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
