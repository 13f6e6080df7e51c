package keylock

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestNew_RoundsToPowerOfTwo(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{0, DefaultStripes},
		{-5, DefaultStripes},
		{1, 1},
		{3, 4},
		{100, 128},
		{256, 256},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("stripes=%d", tt.input), func(t *testing.T) {
			if got := New(tt.input).Stripes(); got != tt.want {
				t.Errorf("New(%d).Stripes() = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestDo_SerializesSameKey(t *testing.T) {
	s := New(8)
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do("token-a", func() error {
				v := counter
				v++
				counter = v
				return nil
			})
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("counter = %d, want 100", counter)
	}
}

func TestDo_ReturnsCallbackError(t *testing.T) {
	s := New(4)
	want := errors.New("boom")
	if err := s.Do("k", func() error { return want }); !errors.Is(err, want) {
		t.Errorf("Do() err = %v, want %v", err, want)
	}

	// The stripe must have been released.
	unlock := s.Lock("k")
	unlock()
}
