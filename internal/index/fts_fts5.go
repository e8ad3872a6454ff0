//go:build sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
			text,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(ctx context.Context, tx *sql.Tx, chunkID int64, text string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO chunks_fts (rowid, text) VALUES (?, ?)`, chunkID, text)
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

func ftsDeleteDocument(ctx context.Context, tx *sql.Tx, documentID int64) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM chunks_fts
		WHERE rowid IN (SELECT id FROM chunks WHERE document_id = ?)
	`, documentID)
	if err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

func ftsDeleteCollection(ctx context.Context, tx *sql.Tx, collectionID int64) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM chunks_fts
		WHERE rowid IN (
			SELECT c.id FROM chunks c
			JOIN documents d ON d.id = c.document_id
			WHERE d.collection_id = ?
		)
	`, collectionID)
	if err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// KeywordSearch ranks chunks containing every term by bm25, best first. The
// returned Score is the raw bm25 value (negative; lower is better). An empty
// collection searches all collections.
func (db *DB) KeywordSearch(ctx context.Context, terms []string, limit int, collection string) ([]ChunkHit, error) {
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+hitColumns+`, bm25(chunks_fts) AS score
		FROM chunks_fts
		JOIN chunks c ON c.id = chunks_fts.rowid`+hitJoins+`
		WHERE chunks_fts MATCH ?
		  AND (? = '' OR col.name = ?)
		ORDER BY score, c.id
		LIMIT ?
	`, MatchExpression(terms), collection, collection, limit)
	if err != nil {
		return nil, fmt.Errorf("index: keyword search: %w", err)
	}
	defer rows.Close()

	var out []ChunkHit
	for rows.Next() {
		h, err := scanHit(rows, true)
		if err != nil {
			return nil, fmt.Errorf("index: keyword search: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
