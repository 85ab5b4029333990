package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrNotFound     = errors.New("object not found")
	ErrInvalidKey   = errors.New("invalid object key")
	ErrInvalidToken = errors.New("invalid or expired download token")
)

// ObjectStore is the file storage used for card attachments.
type ObjectStore interface {
	// Put writes the object and returns the number of bytes stored.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes the objects; missing objects are not an error.
	Remove(ctx context.Context, keys ...string) error
	// SignedURL returns a download URL that stops working after ttl.
	SignedURL(key string, ttl time.Duration) (string, error)
	// VerifyToken returns the key a download token was issued for.
	VerifyToken(token string) (string, error)
}
