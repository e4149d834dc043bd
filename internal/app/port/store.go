package port

import (
	"context"

	"portfolio_tracker/internal/domain/entity"
)

// PositionStore is the opaque row store holding the "positions"
// collection.
type PositionStore interface {
	// SelectAll returns every row of the positions collection.
	SelectAll(ctx context.Context) ([]entity.PositionRow, error)

	// DeleteByID removes one row by its id.
	DeleteByID(ctx context.Context, id string) error
}

// BlobStore is the opaque object store used for avatar uploads. Upload
// returns the public URL of the stored object.
type BlobStore interface {
	Upload(ctx context.Context, name string, contentType string, data []byte) (string, error)
}
