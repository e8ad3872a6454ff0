package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/seekr/internal/apperr"
	"github.com/starford/seekr/internal/models"
)

// DocumentRef is the part of a stored document needed for change detection.
type DocumentRef struct {
	ID          int64
	Fingerprint string
}

// DocumentRefs returns the stored documents of a collection keyed by path.
func (t *Tx) DocumentRefs(ctx context.Context, collectionID int64) (map[string]DocumentRef, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, path, fingerprint FROM documents WHERE collection_id = ?
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("index: document refs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]DocumentRef)
	for rows.Next() {
		var (
			path string
			ref  DocumentRef
		)
		if err := rows.Scan(&ref.ID, &path, &ref.Fingerprint); err != nil {
			return nil, fmt.Errorf("index: document refs: %w", err)
		}
		out[path] = ref
	}
	return out, rows.Err()
}

// DeleteDocument removes a document together with its chunks and their
// embeddings.
func (t *Tx) DeleteDocument(ctx context.Context, documentID int64) error {
	if err := ftsDeleteDocument(ctx, t.tx, documentID); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, documentID); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return nil
}

// InsertDocument stores a document and its chunks, returning the document ID.
// Chunk Seq values are taken as given.
func (t *Tx) InsertDocument(ctx context.Context, doc models.Document, chunks []models.Chunk) (int64, error) {
	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = time.Now().UTC()
	}
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO documents (collection_id, path, title, fingerprint, indexed_at)
		VALUES (?, ?, ?, ?, ?)
	`, doc.CollectionID, doc.Path, doc.Title, doc.Fingerprint, doc.IndexedAt)
	if err != nil {
		return 0, fmt.Errorf("index: insert document %s: %w", doc.Path, err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("index: insert document %s: %w", doc.Path, err)
	}

	stmt, err := t.tx.PrepareContext(ctx, `
		INSERT INTO chunks (document_id, seq, text, start_line, end_line, tokens)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("index: insert chunks: %w", err)
	}
	defer stmt.Close()

	for _, ch := range chunks {
		res, err := stmt.ExecContext(ctx, docID, ch.Seq, ch.Text, ch.StartLine, ch.EndLine, ch.Tokens)
		if err != nil {
			return 0, fmt.Errorf("index: insert chunk %d of %s: %w", ch.Seq, doc.Path, err)
		}
		chunkID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("index: insert chunk %d of %s: %w", ch.Seq, doc.Path, err)
		}
		if err := ftsInsert(ctx, t.tx, chunkID, ch.Text); err != nil {
			return 0, err
		}
	}
	return docID, nil
}

// GetDocument returns a stored document with its chunks in sequence order.
func (db *DB) GetDocument(ctx context.Context, collection, path string) (models.DocumentDetail, error) {
	var d models.DocumentDetail
	err := db.conn.QueryRowContext(ctx, `
		SELECT d.id, d.collection_id, d.path, d.title, d.fingerprint, d.indexed_at, col.name
		FROM documents d
		JOIN collections col ON col.id = d.collection_id
		WHERE col.name = ? AND d.path = ?
	`, collection, path).Scan(&d.ID, &d.CollectionID, &d.Path, &d.Title, &d.Fingerprint, &d.IndexedAt, &d.Collection)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DocumentDetail{}, fmt.Errorf("document %s in %q: %w", path, collection, apperr.ErrNotFound)
	}
	if err != nil {
		return models.DocumentDetail{}, fmt.Errorf("index: get document: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, document_id, seq, text, start_line, end_line, tokens
		FROM chunks WHERE document_id = ? ORDER BY seq
	`, d.ID)
	if err != nil {
		return models.DocumentDetail{}, fmt.Errorf("index: get document chunks: %w", err)
	}
	defer rows.Close()

	d.Chunks = []models.Chunk{}
	for rows.Next() {
		var ch models.Chunk
		if err := rows.Scan(&ch.ID, &ch.DocumentID, &ch.Seq, &ch.Text, &ch.StartLine, &ch.EndLine, &ch.Tokens); err != nil {
			return models.DocumentDetail{}, fmt.Errorf("index: get document chunks: %w", err)
		}
		d.Chunks = append(d.Chunks, ch)
	}
	return d, rows.Err()
}

// ListDocuments returns the documents of a collection (all collections when
// empty) ordered by collection then path.
func (db *DB) ListDocuments(ctx context.Context, collection string) ([]models.Document, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT d.id, d.collection_id, d.path, d.title, d.fingerprint, d.indexed_at
		FROM documents d
		JOIN collections col ON col.id = d.collection_id
		WHERE (? = '' OR col.name = ?)
		ORDER BY col.name, d.path
	`, collection, collection)
	if err != nil {
		return nil, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	out := []models.Document{}
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.CollectionID, &d.Path, &d.Title, &d.Fingerprint, &d.IndexedAt); err != nil {
			return nil, fmt.Errorf("index: list documents: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ChunksByID hydrates chunk hits for the given IDs. Unknown IDs are absent
// from the returned map.
func (db *DB) ChunksByID(ctx context.Context, ids []int64) (map[int64]ChunkHit, error) {
	out := make(map[int64]ChunkHit, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+hitColumns+`
		FROM chunks c`+hitJoins+`
		WHERE c.id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("index: chunks by id: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		h, err := scanHit(rows, false)
		if err != nil {
			return nil, fmt.Errorf("index: chunks by id: %w", err)
		}
		out[h.ChunkID] = h
	}
	return out, rows.Err()
}
