package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"
)

// Benchmark 1: PlaceBid - Isolated Auctions (Low Contention - Micro Benchmark)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	svc, ids := setupAuctions(b, b.N, "50.00")
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		userID := fmt.Sprintf("user_%d", i)
		amount := fmt.Sprintf("%d.%02d", 50+rand.Intn(100), rand.Intn(100))
		if _, err := svc.PlaceBid(ctx, ids[i], userID, amount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Auction (High Contention - Concurrency Benchmark)
func Benchmark_PlaceBid_ConcurrentSharedAuction(b *testing.B) {
	svc, ids := setupAuctions(b, 1, "50.00")
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			userID := fmt.Sprintf("user_parallel_%d", rnd.Int())
			nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			_, _ = svc.PlaceBid(ctx, ids[0], userID, fmt.Sprintf("%d", nextBid))
		}
	})
}

// Benchmark 3: GetHighestBid - Single - Threaded (Low Contention)
func Benchmark_GetHighestBid_SingleThreaded(b *testing.B) {
	svc, ids := setupAuctions(b, b.N, "50.00")
	ctx := context.Background()

	for i, id := range ids {
		for j := 0; j < 10; j++ {
			userID := fmt.Sprintf("user_%d_%d", i, j)
			_, _ = svc.PlaceBid(ctx, id, userID, fmt.Sprintf("%d", 50+j*10))
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := svc.GetHighestBid(ctx, ids[i]); err != nil {
			b.Fatalf("failed to get highest bid: %v", err)
		}
	}
}

// Benchmark 4: GetHighestBid - Concurrent (High Contention)
func Benchmark_GetHighestBid_ConcurrentSharedAuction(b *testing.B) {
	svc, ids := setupAuctions(b, 1, "50.00")
	ctx := context.Background()

	for j := 0; j < 100; j++ {
		userID := fmt.Sprintf("user_%d", j)
		_, _ = svc.PlaceBid(ctx, ids[0], userID, fmt.Sprintf("%d", 50+j))
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.GetHighestBid(ctx, ids[0]); err != nil {
				b.Errorf("failed to get highest bid: %v", err)
				return
			}
		}
	})
}

// Benchmark 5: Mixed Workload (Readers + Writers concurrently)
func Benchmark_MixedWorkload_SharedAuction(b *testing.B) {
	svc, ids := setupAuctions(b, 1, "50.00")
	ctx := context.Background()

	for j := 0; j < 50; j++ {
		userID := fmt.Sprintf("user_seed_%d", j)
		_, _ = svc.PlaceBid(ctx, ids[0], userID, fmt.Sprintf("%d", 50+j*2))
	}

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 150

	// Ratio: 70% readers, 30% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			if rnd.Intn(10) < 3 {
				userID := fmt.Sprintf("user_writer_%d", rnd.Int())
				nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
				_, _ = svc.PlaceBid(ctx, ids[0], userID, fmt.Sprintf("%d", nextBid))
				continue
			}
			_, _ = svc.GetBidsForAuction(ctx, ids[0])
		}
	})
}
