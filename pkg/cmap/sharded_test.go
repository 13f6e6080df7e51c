package cmap

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	m := New[int]()
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if len(m.shards) != DefaultShardCount {
		t.Errorf("shard count = %d, want %d", len(m.shards), DefaultShardCount)
	}
}

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{2, 2},
		{8, 8},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[int](tt.input)
			if len(m.shards) != tt.expected {
				t.Errorf("NewWithShards(%d) shard count = %d, want %d",
					tt.input, len(m.shards), tt.expected)
			}
		})
	}
}

func TestShardIndex_Stable(t *testing.T) {
	m := New[int]()
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("honeytoken:%d", i)
		a, b := m.ShardIndex(key), m.ShardIndex(key)
		if a != b {
			t.Fatalf("ShardIndex(%q) not stable: %d vs %d", key, a, b)
		}
		if a < 0 || a >= DefaultShardCount {
			t.Fatalf("ShardIndex(%q) = %d out of range", key, a)
		}
	}
}

func TestSetAndGet(t *testing.T) {
	m := New[int]()

	m.Set("key1", 100)
	m.Set("key2", 200)

	if val, ok := m.Get("key1"); !ok || val != 100 {
		t.Errorf("Get(key1) = (%d, %v), want (100, true)", val, ok)
	}
	if val, ok := m.Get("key2"); !ok || val != 200 {
		t.Errorf("Get(key2) = (%d, %v), want (200, true)", val, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) should report not found")
	}
	if !m.Has("key1") || m.Has("missing") {
		t.Error("Has() returned wrong result")
	}
}

func TestSetIfAbsent(t *testing.T) {
	m := New[string]()

	if !m.SetIfAbsent("k", "first") {
		t.Fatal("SetIfAbsent on empty key should succeed")
	}
	if m.SetIfAbsent("k", "second") {
		t.Fatal("SetIfAbsent on existing key should fail")
	}
	if v, _ := m.Get("k"); v != "first" {
		t.Errorf("value = %q, want %q", v, "first")
	}
}

func TestCompute(t *testing.T) {
	m := New[int]()
	m.Set("counter", 1)

	got, err := m.Compute("counter", func(cur int, exists bool) (int, error) {
		if !exists {
			t.Fatal("expected key to exist")
		}
		return cur + 1, nil
	})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if got != 2 {
		t.Errorf("Compute result = %d, want 2", got)
	}

	errStop := errors.New("stop")
	_, err = m.Compute("counter", func(cur int, _ bool) (int, error) {
		return cur + 100, errStop
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("Compute err = %v, want %v", err, errStop)
	}
	if v, _ := m.Get("counter"); v != 2 {
		t.Errorf("failed Compute must not store, got %d", v)
	}
}

func TestCompute_Concurrent(t *testing.T) {
	m := New[int]()
	m.Set("counter", 0)

	const workers = 50
	const perWorker = 200

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Compute("counter", func(cur int, _ bool) (int, error) {
					return cur + 1, nil
				})
			}
		}()
	}
	wg.Wait()

	if v, _ := m.Get("counter"); v != workers*perWorker {
		t.Errorf("counter = %d, want %d", v, workers*perWorker)
	}
}

func TestCountRangeKeys(t *testing.T) {
	m := New[int]()
	for i := 0; i < 40; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	if m.Count() != 40 {
		t.Errorf("Count() = %d, want 40", m.Count())
	}
	if len(m.Keys()) != 40 {
		t.Errorf("len(Keys()) = %d, want 40", len(m.Keys()))
	}

	seen := 0
	m.Range(func(_ string, _ int) bool {
		seen++
		return seen < 5
	})
	if seen != 5 {
		t.Errorf("Range stopped after %d items, want 5", seen)
	}
}
