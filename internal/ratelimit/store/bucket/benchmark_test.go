package bucket

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func BenchmarkAllow(b *testing.B) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()
	for b.Loop() {
		_, _ = store.Allow(ctx, "bench-key", 1000, time.Minute)
	}
}

func BenchmarkAllow_HighCardinality(b *testing.B) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()
	for i := 0; b.Loop(); i++ {
		_, _ = store.Allow(ctx, fmt.Sprintf("ip:%d", i%10000), 5, time.Minute)
	}
}
