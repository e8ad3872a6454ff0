package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/seekr/internal/apperr"
	"github.com/starford/seekr/internal/models"
)

// AddCollection registers a new collection. A duplicate name fails with
// apperr.ErrAlreadyExists.
func (db *DB) AddCollection(ctx context.Context, c models.Collection) (models.Collection, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO collections (name, base_path, pattern, created_at)
		VALUES (?, ?, ?, ?)
	`, c.Name, c.BasePath, c.Pattern, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Collection{}, fmt.Errorf("collection %q: %w", c.Name, apperr.ErrAlreadyExists)
		}
		return models.Collection{}, fmt.Errorf("index: add collection: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Collection{}, fmt.Errorf("index: add collection: %w", err)
	}
	c.ID = id
	return c, nil
}

// GetCollection looks a collection up by name.
func (db *DB) GetCollection(ctx context.Context, name string) (models.Collection, error) {
	var c models.Collection
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, name, base_path, pattern, created_at
		FROM collections WHERE name = ?
	`, name).Scan(&c.ID, &c.Name, &c.BasePath, &c.Pattern, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Collection{}, fmt.Errorf("collection %q: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Collection{}, fmt.Errorf("index: get collection: %w", err)
	}
	return c, nil
}

// ListCollections returns all collections ordered by name, with document,
// chunk and embedding counts.
func (db *DB) ListCollections(ctx context.Context) ([]models.CollectionInfo, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT col.id, col.name, col.base_path, col.pattern, col.created_at,
		       (SELECT count(*) FROM documents d WHERE d.collection_id = col.id),
		       (SELECT count(*) FROM chunks c
		          JOIN documents d ON d.id = c.document_id
		         WHERE d.collection_id = col.id),
		       (SELECT count(*) FROM embeddings e
		          JOIN chunks c ON c.id = e.chunk_id
		          JOIN documents d ON d.id = c.document_id
		         WHERE d.collection_id = col.id)
		FROM collections col
		ORDER BY col.name
	`)
	if err != nil {
		return nil, fmt.Errorf("index: list collections: %w", err)
	}
	defer rows.Close()

	out := []models.CollectionInfo{}
	for rows.Next() {
		var ci models.CollectionInfo
		if err := rows.Scan(&ci.ID, &ci.Name, &ci.BasePath, &ci.Pattern, &ci.CreatedAt,
			&ci.Documents, &ci.Chunks, &ci.Embedded); err != nil {
			return nil, fmt.Errorf("index: list collections: %w", err)
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}

// RemoveCollection deletes a collection with all of its documents, chunks and
// embeddings.
func (db *DB) RemoveCollection(ctx context.Context, name string) error {
	c, err := db.GetCollection(ctx, name)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, func(tx *Tx) error {
		if err := ftsDeleteCollection(ctx, tx.tx, c.ID); err != nil {
			return err
		}
		if _, err := tx.tx.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, c.ID); err != nil {
			return fmt.Errorf("index: remove collection: %w", err)
		}
		return nil
	})
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
