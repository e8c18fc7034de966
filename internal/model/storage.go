package model

import (
	"context"
	"io"
)

// ObjectStore holds signing key material shared between replicas.
type ObjectStore interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
}
