package index

import (
	"context"

	"github.com/starford/seekr/internal/models"
)

// Store defines the read-side operations the search and engine layers need.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type Store interface {
	KeywordSearch(ctx context.Context, terms []string, limit int, collection string) ([]ChunkHit, error)
	ScanEmbeddings(ctx context.Context, collection string, fn func(chunkID int64, v []float32) error) error
	CountEmbeddings(ctx context.Context, collection string) (int, error)
	ChunksByID(ctx context.Context, ids []int64) (map[int64]ChunkHit, error)
	GetCollection(ctx context.Context, name string) (models.Collection, error)
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
