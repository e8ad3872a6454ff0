package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/seekr/internal/vector"
)

// PendingChunk is a chunk that has no embedding yet.
type PendingChunk struct {
	ID   int64
	Text string
}

// EmbeddingRow is a vector to be stored for one chunk.
type EmbeddingRow struct {
	ChunkID int64
	Vector  []float32
}

// PendingChunks returns up to limit chunks without an embedding, in chunk
// order.
func (db *DB) PendingChunks(ctx context.Context, limit int) ([]PendingChunk, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.id, c.text
		FROM chunks c
		LEFT JOIN embeddings e ON e.chunk_id = c.id
		WHERE e.chunk_id IS NULL
		ORDER BY c.id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("index: pending chunks: %w", err)
	}
	defer rows.Close()

	var out []PendingChunk
	for rows.Next() {
		var p PendingChunk
		if err := rows.Scan(&p.ID, &p.Text); err != nil {
			return nil, fmt.Errorf("index: pending chunks: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// StoreEmbeddings writes vectors for a batch of chunks in one transaction,
// replacing any existing vector. Rows whose chunk no longer exists are
// ignored. It returns the number of rows stored.
func (db *DB) StoreEmbeddings(ctx context.Context, model string, rows []EmbeddingRow) (int, error) {
	stored := 0
	err := db.WithTx(ctx, func(tx *Tx) error {
		stmt, err := tx.tx.PrepareContext(ctx, `
			INSERT INTO embeddings (chunk_id, model, dims, vector)
			SELECT ?, ?, ?, ?
			WHERE EXISTS (SELECT 1 FROM chunks WHERE id = ?)
			ON CONFLICT(chunk_id) DO UPDATE SET
				model      = excluded.model,
				dims       = excluded.dims,
				vector     = excluded.vector,
				created_at = CURRENT_TIMESTAMP
		`)
		if err != nil {
			return fmt.Errorf("index: store embeddings: %w", err)
		}
		defer stmt.Close()

		for _, r := range rows {
			res, err := stmt.ExecContext(ctx, r.ChunkID, model, len(r.Vector), vector.Encode(r.Vector), r.ChunkID)
			if err != nil {
				return fmt.Errorf("index: store embedding for chunk %d: %w", r.ChunkID, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				stored++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stored, nil
}

// ClearEmbeddings deletes every stored vector.
func (db *DB) ClearEmbeddings(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM embeddings`); err != nil {
		return fmt.Errorf("index: clear embeddings: %w", err)
	}
	return nil
}

// CountEmbeddings returns how many chunks have a vector, optionally limited to
// one collection.
func (db *DB) CountEmbeddings(ctx context.Context, collection string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `
		SELECT count(*)
		FROM embeddings e
		JOIN chunks c ON c.id = e.chunk_id`+hitJoins+`
		WHERE (? = '' OR col.name = ?)
	`, collection, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("index: count embeddings: %w", err)
	}
	return n, nil
}

// ScanEmbeddings calls fn for every stored vector, optionally limited to one
// collection, in chunk order. Vectors that cannot be decoded are logged and
// skipped. A non-nil error from fn stops the scan and is returned.
func (db *DB) ScanEmbeddings(ctx context.Context, collection string, fn func(chunkID int64, v []float32) error) error {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT e.chunk_id, e.vector
		FROM embeddings e
		JOIN chunks c ON c.id = e.chunk_id`+hitJoins+`
		WHERE (? = '' OR col.name = ?)
		ORDER BY e.chunk_id
	`, collection, collection)
	if err != nil {
		return fmt.Errorf("index: scan embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return fmt.Errorf("index: scan embeddings: %w", err)
		}
		v, err := vector.Decode(blob)
		if err != nil {
			db.logger.Warn("index: skipping undecodable vector",
				slog.Int64("chunk_id", id), slog.String("error", err.Error()))
			continue
		}
		if err := fn(id, v); err != nil {
			return err
		}
	}
	return rows.Err()
}
