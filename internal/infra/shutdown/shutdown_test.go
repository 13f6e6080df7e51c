package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestHandler_ReverseOrder(t *testing.T) {
	h := NewHandler(time.Second, nil)

	var (
		mu    sync.Mutex
		order []string
	)
	for _, name := range []string{"store", "alerts", "http"} {
		name := name
		h.OnShutdown(name, func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	h.Trigger()
	if err := h.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	want := []string{"http", "alerts", "store"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done() not closed after Wait")
	}
}

func TestHandler_JoinsErrors(t *testing.T) {
	h := NewHandler(time.Second, nil)
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	ran := false

	h.OnShutdown("a", func(context.Context) error { return errA })
	h.OnShutdown("ok", func(context.Context) error { ran = true; return nil })
	h.OnShutdown("b", func(context.Context) error { return errB })

	h.Trigger()
	err := h.Wait(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("Wait() error = %v, want both hook errors", err)
	}
	if !ran {
		t.Error("hook after a failing hook did not run")
	}
}

func TestHandler_HookDeadline(t *testing.T) {
	h := NewHandler(50*time.Millisecond, nil)
	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	h.Trigger()
	start := time.Now()
	if err := h.Wait(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() error = %v, want DeadlineExceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("hook was not bounded by the timeout")
	}
}

func TestHandler_ContextCancel(t *testing.T) {
	h := NewHandler(time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestHandler_Signal(t *testing.T) {
	h := NewHandler(time.Second, nil)
	called := make(chan struct{})
	h.OnShutdown("probe", func(context.Context) error {
		close(called)
		return nil
	})

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(context.Background()) }()

	// Let Wait install its signal handler before signalling.
	time.Sleep(50 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Wait() did not return after SIGTERM")
	}
	<-called
}

func TestHandler_TriggerTwice(t *testing.T) {
	h := NewHandler(time.Second, nil)
	h.Trigger()
	h.Trigger()
	if err := h.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}
