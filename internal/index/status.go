package index

import (
	"context"
	"fmt"

	"github.com/starford/seekr/internal/models"
)

// Status summarises the whole index.
func (db *DB) Status(ctx context.Context) (models.Status, error) {
	cols, err := db.ListCollections(ctx)
	if err != nil {
		return models.Status{}, err
	}
	st := models.Status{Collections: cols}
	for _, c := range cols {
		st.Documents += c.Documents
		st.Chunks += c.Chunks
		st.Embedded += c.Embedded
	}

	err = db.conn.QueryRowContext(ctx, `
		SELECT count(*) FROM chunks c
		LEFT JOIN embeddings e ON e.chunk_id = c.id
		WHERE e.chunk_id IS NULL
	`).Scan(&st.Pending)
	if err != nil {
		return models.Status{}, fmt.Errorf("index: status: %w", err)
	}
	return st, nil
}
