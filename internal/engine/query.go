package engine

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/seekr/internal/apperr"
	"github.com/starford/seekr/internal/models"
)

// Search validates req and runs it. An empty mode means hybrid and a zero
// limit means the configured default. A blank query yields no results.
// Results scoring below MinScore are dropped after ranking.
func (s *Service) Search(ctx context.Context, req models.SearchRequest) ([]models.SearchResult, error) {
	if req.Mode == "" {
		req.Mode = models.ModeHybrid
	}
	if req.Limit == 0 {
		req.Limit = s.opts.DefaultLimit
	}
	if err := validateSearch(&req); err != nil {
		return nil, err
	}
	if req.Collection != "" {
		if _, err := s.db.GetCollection(ctx, req.Collection); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(req.Query) == "" {
		return []models.SearchResult{}, nil
	}

	var (
		results []models.SearchResult
		err     error
	)
	switch req.Mode {
	case models.ModeLexical:
		results, err = s.searcher.LexicalSearch(ctx, req.Query, req.Limit, req.Collection)
	case models.ModeVector:
		results, err = s.searcher.SemanticSearch(ctx, req.Query, req.Limit, req.Collection)
	case models.ModeHybrid:
		results, err = s.searcher.HybridSearch(ctx, req.Query, req.Limit, s.opts.Weights, req.Collection)
	}
	if err != nil {
		return nil, err
	}

	out := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Score >= req.MinScore {
			out = append(out, r)
		}
	}
	return out, nil
}

func validateSearch(req *models.SearchRequest) error {
	if !req.Mode.Valid() {
		return fmt.Errorf("%w: %q", apperr.ErrInvalidMode, req.Mode)
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Limit, validation.Min(1), validation.Max(MaxLimit)),
		validation.Field(&req.MinScore, validation.Min(0.0)),
	); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
	}
	return nil
}
