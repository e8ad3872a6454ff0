// Package index provides the SQLite-backed index store: collections,
// documents, chunks and embeddings, plus keyword ranking via FTS5 (or a LIKE
// fallback when FTS5 is not compiled in).
package index

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultBusyTimeout bounds how long a writer waits on a locked database.
const DefaultBusyTimeout = 5 * time.Second

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS collections (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	base_path  TEXT NOT NULL,
	pattern    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS documents (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	path          TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	fingerprint   TEXT NOT NULL,
	indexed_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(collection_id, path)
);

CREATE TABLE IF NOT EXISTS chunks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	text        TEXT NOT NULL,
	start_line  INTEGER NOT NULL,
	end_line    INTEGER NOT NULL,
	tokens      INTEGER NOT NULL DEFAULT 0,
	UNIQUE(document_id, seq)
);

CREATE TABLE IF NOT EXISTS embeddings (
	chunk_id   INTEGER PRIMARY KEY REFERENCES chunks(id) ON DELETE CASCADE,
	model      TEXT NOT NULL,
	dims       INTEGER NOT NULL,
	vector     BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection_id);
CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
`

// Options configures Open.
type Options struct {
	// BusyTimeout is how long a write waits for a competing writer before
	// failing with SQLITE_BUSY. Zero means DefaultBusyTimeout.
	BusyTimeout time.Duration
	Logger      *slog.Logger
}

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn   *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (or creates) the SQLite database and applies the schema. A
// store that is found corrupt is moved aside and replaced by a fresh one.
func Open(path string, opts Options) (*DB, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = DefaultBusyTimeout
	}

	db, err := open(path, opts)
	if err == nil {
		return db, nil
	}
	if !isCorrupt(err) || path == ":memory:" {
		return nil, err
	}

	backup, qerr := quarantine(path, time.Now())
	if qerr != nil {
		return nil, fmt.Errorf("index: recover corrupt store: %w (original error: %v)", qerr, err)
	}
	opts.Logger.Warn("index: store corrupt, started fresh",
		slog.String("path", path),
		slog.String("backup", backup),
		slog.String("error", err.Error()))

	return open(path, opts)
}

func open(path string, opts Options) (*DB, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on&_txlock=immediate",
		path, opts.BusyTimeout.Milliseconds())
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if err := integrityCheck(context.Background(), conn); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn, path: path, logger: opts.Logger}, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Ping verifies the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// CheckIntegrity runs SQLite's quick integrity check.
func (db *DB) CheckIntegrity(ctx context.Context) error {
	return integrityCheck(ctx, db.conn)
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Tx is a write transaction over the index.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn inside one transaction. The transaction commits only when fn
// returns nil; any error rolls back every change fn made.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer sqlTx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("index: commit: %w", err)
	}
	return nil
}
