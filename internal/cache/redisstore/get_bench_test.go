package redisstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func prep(b *testing.B, size int) (*Client, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		b.Fatalf("miniredis: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)

	rc, err := New(ctx, mr.Addr())
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	if err := rc.Set(ctx, "blob", make([]byte, size), 0); err != nil {
		b.Fatalf("Set: %v", err)
	}

	cleanup := func() {
		cancel()
		_ = rc.Close()
		mr.Close()
	}
	return rc, cleanup
}

func benchGet(b *testing.B, size int) {
	rc, cleanup := prep(b, size)
	defer cleanup()

	ctx := context.Background()
	b.ReportAllocs()
	b.SetBytes(int64(size))

	for b.Loop() {
		if _, err := rc.Get(ctx, "blob"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGet(b *testing.B) {
	for _, size := range []int{4 << 10, 256 << 10, 4 << 20} {
		b.Run(fmt.Sprintf("%dKiB", size>>10), func(b *testing.B) { benchGet(b, size) })
	}
}
