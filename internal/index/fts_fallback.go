//go:build !sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; keyword search uses LIKE over chunks.text.
	return nil
}

func ftsInsert(_ context.Context, _ *sql.Tx, _ int64, _ string) error { return nil }

func ftsDeleteDocument(_ context.Context, _ *sql.Tx, _ int64) error { return nil }

func ftsDeleteCollection(_ context.Context, _ *sql.Tx, _ int64) error { return nil }

// fallbackScore is the raw score of every LIKE match; all matches rank equal
// and keep chunk order.
const fallbackScore = -1.0

// KeywordSearch returns chunks containing every term (case-insensitive for
// ASCII), in chunk order. Fallback when FTS5 is not compiled in.
func (db *DB) KeywordSearch(ctx context.Context, terms []string, limit int, collection string) ([]ChunkHit, error) {
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}
	conds := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms)+3)
	for _, t := range terms {
		conds = append(conds, `c.text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(t)+"%")
	}
	args = append(args, collection, collection, limit)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+hitColumns+`
		FROM chunks c`+hitJoins+`
		WHERE `+strings.Join(conds, " AND ")+`
		  AND (? = '' OR col.name = ?)
		ORDER BY c.id
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("index: keyword search: %w", err)
	}
	defer rows.Close()

	var out []ChunkHit
	for rows.Next() {
		h, err := scanHit(rows, false)
		if err != nil {
			return nil, fmt.Errorf("index: keyword search: %w", err)
		}
		h.Score = fallbackScore
		out = append(out, h)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
