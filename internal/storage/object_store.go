package storage

import (
	"context"
	"io"
)

// ObjectStore persists analysis artifacts (uploaded PDFs, generated code,
// slide decks). Implementations are bound to one bucket or base directory.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data io.Reader) error

	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	DeleteObjects(ctx context.Context, prefix string) error
}
