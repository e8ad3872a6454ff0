package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/seekr/internal/apperr"
	"github.com/starford/seekr/internal/engine"
	"github.com/starford/seekr/internal/models"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *engine.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *engine.Service) *Handler {
	return &Handler{svc: svc}
}

// decodeBody reads an optional JSON body into v. An empty body leaves v at
// its zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid JSON body", apperr.ErrInvalidArgument)
	}
	return nil
}

// Search handles GET /api/search.
//
//	@Summary		Search indexed chunks
//	@Tags			search
//	@Produce		json
//	@Param			q			query		string	true	"Query text"
//	@Param			mode		query		string	false	"Search mode"	Enums(lexical, vector, hybrid)
//	@Param			limit		query		int		false	"Maximum results (1-100)"
//	@Param			min_score	query		number	false	"Drop results scoring below this"
//	@Param			collection	query		string	false	"Restrict to one collection"
//	@Success		200			{object}	SearchResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.SearchRequest{
		Query:      q.Get("q"),
		Mode:       models.SearchMode(q.Get("mode")),
		Collection: q.Get("collection"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be an integer"))
			return
		}
		req.Limit = n
	}
	if v := q.Get("min_score"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("min_score must be a number"))
			return
		}
		req.MinScore = f
	}

	results, err := h.svc.Search(r.Context(), req)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	mode := req.Mode
	if mode == "" {
		mode = models.ModeHybrid
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: req.Query, Mode: mode, Results: results})
}

// Reindex handles POST /api/reindex.
//
//	@Summary		Reindex one or all collections
//	@Tags			index
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ReindexRequest	false	"Scope"
//	@Success		200		{object}	ReindexResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reindex [post]
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	var req ReindexRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "reindex", err)
		return
	}
	stats, err := h.svc.Reindex(r.Context(), req.Collection, req.Full)
	if err != nil {
		writeError(w, "reindex", err)
		return
	}
	writeJSON(w, http.StatusOK, ReindexResponse{Results: stats})
}

// Embed handles POST /api/embed.
//
//	@Summary		Embed chunks that have no vector yet
//	@Tags			index
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EmbedRequest	false	"Options"
//	@Success		200		{object}	models.EmbedStats
//	@Failure		502		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/embed [post]
func (h *Handler) Embed(w http.ResponseWriter, r *http.Request) {
	var req EmbedRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "embed", err)
		return
	}
	stats, err := h.svc.Embed(r.Context(), req.Force)
	if err != nil {
		writeError(w, "embed", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListCollections handles GET /api/collections.
//
//	@Summary		List collections with counts
//	@Tags			collections
//	@Produce		json
//	@Success		200	{object}	CollectionListResponse
//	@Security		BearerAuth
//	@Router			/collections [get]
func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := h.svc.ListCollections(r.Context())
	if err != nil {
		writeError(w, "list collections", err)
		return
	}
	writeJSON(w, http.StatusOK, CollectionListResponse{Collections: cols})
}

// CreateCollection handles POST /api/collections.
//
//	@Summary		Register a collection
//	@Tags			collections
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateCollectionRequest	true	"Collection"
//	@Success		201		{object}	models.Collection
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/collections [post]
func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "create collection", err)
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	c, err := h.svc.AddCollection(r.Context(), req.Name, req.Path, req.Pattern)
	if err != nil {
		writeError(w, "create collection", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// DeleteCollection handles DELETE /api/collections/{name}.
//
//	@Summary		Remove a collection and its index data
//	@Tags			collections
//	@Param			name	path	string	true	"Collection name"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/collections/{name} [delete]
func (h *Handler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.svc.RemoveCollection(r.Context(), name); err != nil {
		writeError(w, "delete collection", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Status handles GET /api/status.
//
//	@Summary		Index totals
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	models.Status
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		writeError(w, "status", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Documents handles GET /api/documents. With both collection and path it
// returns one document with its chunks; otherwise it lists documents.
//
//	@Summary		List documents or get one with its chunks
//	@Tags			documents
//	@Produce		json
//	@Param			collection	query		string	false	"Collection name"
//	@Param			path		query		string	false	"Absolute document path"
//	@Success		200			{object}	DocumentListResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	collection, path := q.Get("collection"), q.Get("path")

	if path != "" {
		if collection == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("collection is required with path"))
			return
		}
		d, err := h.svc.GetDocument(r.Context(), collection, path)
		if err != nil {
			writeError(w, "get document", err)
			return
		}
		writeJSON(w, http.StatusOK, d)
		return
	}

	docs, err := h.svc.ListDocuments(r.Context(), collection)
	if err != nil {
		writeError(w, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Total: len(docs)})
}
