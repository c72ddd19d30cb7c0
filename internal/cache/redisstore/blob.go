package redisstore

import (
	"context"
	"time"
)

// BlobStore namespaces keys under a prefix and bounds each call with a timeout.
// Entries are written without expiry.
type BlobStore struct {
	c         *Client
	prefix    string
	opTimeout time.Duration
}

func NewBlobStore(c *Client, prefix string, opTimeout time.Duration) *BlobStore {
	if prefix == "" {
		prefix = "poster:layer:"
	}
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	return &BlobStore{c: c, prefix: prefix, opTimeout: opTimeout}
}

func (b *BlobStore) op(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.opTimeout)
}

func (b *BlobStore) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := b.op(ctx)
	defer cancel()
	return b.c.Exists(ctx, b.prefix+key)
}

func (b *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := b.op(ctx)
	defer cancel()
	return b.c.Get(ctx, b.prefix+key)
}

func (b *BlobStore) Put(ctx context.Context, key string, val []byte) error {
	ctx, cancel := b.op(ctx)
	defer cancel()
	return b.c.Set(ctx, b.prefix+key, val, 0)
}

func (b *BlobStore) Clear(ctx context.Context) error {
	_, err := b.c.DeletePrefix(ctx, b.prefix)
	return err
}

func (b *BlobStore) Close() error { return b.c.Close() }
