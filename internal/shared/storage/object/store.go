package object

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrTemporaryURLUnsupported is returned by backends that cannot issue
// signed time-limited URLs for stored objects.
var ErrTemporaryURLUnsupported = errors.New("temporary urls not supported by this store")

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)

	// TemporaryURL issues a signed URL granting read access to the object at
	// storageKey until expires has elapsed. Backends without signing support
	// return ErrTemporaryURLUnsupported.
	TemporaryURL(ctx context.Context, storageKey string, expires time.Duration) (string, error)
}
