// Package models defines the domain types for seekr.
package models

import "time"

// Collection is a named root directory plus an inclusion glob.
type Collection struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	BasePath  string    `json:"base_path"`
	Pattern   string    `json:"pattern"`
	CreatedAt time.Time `json:"created_at"`
}

// CollectionInfo is a Collection enriched with derived counts.
type CollectionInfo struct {
	Collection
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Embedded  int `json:"embedded"`
}

// Document is one indexed file of a collection.
type Document struct {
	ID           int64     `json:"id"`
	CollectionID int64     `json:"collection_id"`
	Path         string    `json:"path"`
	Title        string    `json:"title,omitempty"`
	Fingerprint  string    `json:"fingerprint"`
	IndexedAt    time.Time `json:"indexed_at"`
}

// Chunk is a contiguous slice of a document's text.
// StartLine and EndLine are 1-based and inclusive.
type Chunk struct {
	ID         int64  `json:"id,omitempty"`
	DocumentID int64  `json:"document_id,omitempty"`
	Seq        int    `json:"seq"`
	Text       string `json:"text"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Tokens     int    `json:"tokens"`
}

// DocumentDetail is a stored document with its chunks in sequence order.
type DocumentDetail struct {
	Document
	Collection string  `json:"collection"`
	Chunks     []Chunk `json:"chunks"`
}

// SearchMode selects which retrieval signals a query uses.
type SearchMode string

const (
	ModeLexical SearchMode = "lexical"
	ModeVector  SearchMode = "vector"
	ModeHybrid  SearchMode = "hybrid"
)

// Valid reports whether m is a known mode.
func (m SearchMode) Valid() bool {
	switch m {
	case ModeLexical, ModeVector, ModeHybrid:
		return true
	}
	return false
}

// SearchRequest is the input of the search API.
type SearchRequest struct {
	Query      string     `json:"query"`
	Mode       SearchMode `json:"mode"`
	Limit      int        `json:"limit"`
	MinScore   float64    `json:"min_score"`
	Collection string     `json:"collection,omitempty"`
}

// SearchResult is one ranked hit. Score is normalized to [0,1]; the
// remaining score fields carry the per-modality values that produced it.
type SearchResult struct {
	ChunkID      int64   `json:"chunk_id"`
	Collection   string  `json:"collection"`
	Path         string  `json:"path"`
	Title        string  `json:"title,omitempty"`
	StartLine    int     `json:"start_line"`
	EndLine      int     `json:"end_line"`
	Text         string  `json:"text"`
	Score        float64 `json:"score"`
	LexicalScore float64 `json:"lexical_score,omitempty"`
	VectorScore  float64 `json:"vector_score,omitempty"`
	RawLexical   float64 `json:"raw_lexical,omitempty"`
	Similarity   float64 `json:"similarity,omitempty"`
}

// ReindexStats reports the outcome of one collection pass.
type ReindexStats struct {
	Collection string `json:"collection"`
	Matched    int    `json:"matched"`
	Indexed    int    `json:"indexed"`
	Skipped    int    `json:"skipped"`
	Removed    int    `json:"removed"`
	Chunks     int    `json:"chunks"`
}

// EmbedStats reports the outcome of an embedding pass.
type EmbedStats struct {
	Model    string `json:"model"`
	Batches  int    `json:"batches"`
	Embedded int    `json:"embedded"`
}

// Status summarises the whole index.
type Status struct {
	Collections []CollectionInfo `json:"collections"`
	Documents   int              `json:"documents"`
	Chunks      int              `json:"chunks"`
	Embedded    int              `json:"embedded"`
	Pending     int              `json:"pending"`
}
