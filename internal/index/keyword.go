package index

import "strings"

// ChunkHit is a chunk joined with its document and collection, as returned by
// keyword ranking and by chunk hydration.
type ChunkHit struct {
	ChunkID    int64
	Collection string
	Path       string
	Title      string
	StartLine  int
	EndLine    int
	Text       string
	// Score is the backend's raw relevance value. For FTS5 it is bm25, where
	// more negative means more relevant.
	Score float64
}

const hitColumns = `c.id, col.name, d.path, d.title, c.start_line, c.end_line, c.text`

const hitJoins = `
	JOIN documents d ON d.id = c.document_id
	JOIN collections col ON col.id = d.collection_id`

// MatchExpression builds an FTS5 query that requires every term. Each term is
// quoted as a string literal so user input cannot inject query syntax.
func MatchExpression(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " AND ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHit(s rowScanner, withScore bool) (ChunkHit, error) {
	var h ChunkHit
	dest := []any{&h.ChunkID, &h.Collection, &h.Path, &h.Title, &h.StartLine, &h.EndLine, &h.Text}
	if withScore {
		dest = append(dest, &h.Score)
	}
	err := s.Scan(dest...)
	return h, err
}
