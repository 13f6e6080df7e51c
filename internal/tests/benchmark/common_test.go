package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/yndnr/honeymesh/internal/core/service"
	"github.com/yndnr/honeymesh/internal/storage/badgerstore"
	"github.com/yndnr/honeymesh/internal/storage/memory"
	"github.com/yndnr/honeymesh/internal/storage/redisstore"
)

// TokenCounts are the store sizes access benchmarks run against.
var TokenCounts = []int{1000, 10000, 100000}

// backend opens a store for a benchmark and registers its cleanup.
type backend struct {
	name string
	open func(b *testing.B) service.TokenStore
}

var backends = []backend{
	{"memory", func(b *testing.B) service.TokenStore {
		s := memory.New()
		b.Cleanup(func() { s.Close() })
		return s
	}},
	{"badger", func(b *testing.B) service.TokenStore {
		s, err := badgerstore.Open(badgerstore.Config{InMemory: true}, quietLogger())
		if err != nil {
			b.Fatalf("open badger: %v", err)
		}
		b.Cleanup(func() { s.Close() })
		return s
	}},
	{"redis", func(b *testing.B) service.TokenStore {
		m := miniredis.NewMiniRedis()
		if err := m.Start(); err != nil {
			b.Fatalf("start miniredis: %v", err)
		}
		s, err := redisstore.New(redisstore.Config{Addr: m.Addr()}, quietLogger())
		if err != nil {
			b.Fatalf("open redis: %v", err)
		}
		b.Cleanup(func() {
			s.Close()
			m.Close()
		})
		return s
	}},
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newService(store service.TokenStore) *service.HoneytokenService {
	return service.NewHoneytokenService(store, service.WithLogger(quietLogger()))
}

// prefill mints count tokens and returns their ids.
func prefill(b *testing.B, svc *service.HoneytokenService, count int) []string {
	b.Helper()
	ctx := context.Background()
	ids := make([]string, count)
	for i := range ids {
		id, err := svc.Mint(ctx, fmt.Sprintf("page_visit:/patient/P%05d", i))
		if err != nil {
			b.Fatalf("prefill: %v", err)
		}
		ids[i] = id
	}
	return ids
}

// reportMemory reports heap usage after a forced GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
}

// runWithTokenCounts runs benchFn once per entry of counts.
func runWithTokenCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("tokens_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
