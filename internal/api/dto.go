package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/seekr/internal/models"
)

// CreateCollectionRequest is the request body for registering a collection.
type CreateCollectionRequest struct {
	Name    string `json:"name" example:"notes" validate:"required"`
	Path    string `json:"path" example:"/home/me/notes" validate:"required"`
	Pattern string `json:"pattern,omitempty" example:"**/*.md"`
}

// Validate checks required fields.
func (r CreateCollectionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Path, validation.Required),
	)
}

// ReindexRequest is the request body for POST /api/reindex. An empty
// collection reindexes every collection.
type ReindexRequest struct {
	Collection string `json:"collection,omitempty" example:"notes"`
	Full       bool   `json:"full,omitempty"`
}

// EmbedRequest is the request body for POST /api/embed.
type EmbedRequest struct {
	Force bool `json:"force,omitempty"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Query   string                `json:"query" example:"raft consensus"`
	Mode    models.SearchMode     `json:"mode" example:"hybrid"`
	Results []models.SearchResult `json:"results" validate:"required"`
}

// ReindexResponse lists per-collection outcomes.
type ReindexResponse struct {
	Results []models.ReindexStats `json:"results" validate:"required"`
}

// CollectionListResponse wraps collection listings.
type CollectionListResponse struct {
	Collections []models.CollectionInfo `json:"collections" validate:"required"`
}

// DocumentListResponse wraps document listings.
type DocumentListResponse struct {
	Documents []models.Document `json:"documents" validate:"required"`
	Total     int               `json:"total" example:"42"`
}
