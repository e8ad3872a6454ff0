package search

import (
	"context"
	"math"
	"strings"

	"github.com/starford/seekr/internal/models"
)

// LexicalSearch returns up to k chunks containing every whitespace-separated
// term of query, best first. Scores are the absolute raw rank divided by the
// largest absolute raw rank in this batch (at least 1), so they are relative
// to the batch and not comparable across queries.
func (s *Searcher) LexicalSearch(ctx context.Context, query string, k int, collection string) ([]models.SearchResult, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 || k <= 0 {
		return []models.SearchResult{}, nil
	}
	hits, err := s.store.KeywordSearch(ctx, terms, k, collection)
	if err != nil {
		return nil, err
	}

	maxAbs := 1.0
	for _, h := range hits {
		maxAbs = math.Max(maxAbs, math.Abs(h.Score))
	}

	out := make([]models.SearchResult, 0, len(hits))
	for _, h := range hits {
		r := resultFromHit(h)
		r.RawLexical = h.Score
		r.LexicalScore = math.Abs(h.Score) / maxAbs
		r.Score = r.LexicalScore
		out = append(out, r)
	}
	return out, nil
}
