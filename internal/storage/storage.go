package storage

import "context"

// Storage persists uploaded post images and yields the URL stored on the post.
type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Remove(ctx context.Context, key string) error
	URL(key string) string
	// Key inverts URL so a stored object can be removed later.
	Key(url string) (string, bool)
}
