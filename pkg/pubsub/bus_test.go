package pubsub

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := New(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, "security_alerts")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	n, err := b.Publish("security_alerts", []byte(`{"event_type":"x"}`))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if n != 1 {
		t.Fatalf("delivered = %d, want 1", n)
	}

	select {
	case msg := <-ch:
		if string(msg) != `{"event_type":"x"}` {
			t.Errorf("msg = %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestBus_NoSubscribers(t *testing.T) {
	b := New(0)
	n, err := b.Publish("security_alerts", []byte("x"))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if n != 0 {
		t.Errorf("delivered = %d, want 0", n)
	}
}

func TestBus_FullSubscriberDrops(t *testing.T) {
	b := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := b.Subscribe(ctx, "c"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	b.Publish("c", []byte("1"))
	n, _ := b.Publish("c", []byte("2"))
	if n != 0 {
		t.Errorf("second publish delivered = %d, want 0", n)
	}
	if b.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", b.Dropped())
	}
}

func TestBus_UnsubscribeOnCancel(t *testing.T) {
	b := New(1)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx, "c")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	if b.Subscribers("c") != 0 {
		t.Errorf("Subscribers = %d, want 0", b.Subscribers("c"))
	}
}

func TestBus_Close(t *testing.T) {
	b := New(1)
	ch, _ := b.Subscribe(context.Background(), "c")

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after Close")
	}
	if _, err := b.Publish("c", nil); err != ErrClosed {
		t.Errorf("Publish after Close err = %v, want ErrClosed", err)
	}
	if _, err := b.Subscribe(context.Background(), "c"); err != ErrClosed {
		t.Errorf("Subscribe after Close err = %v, want ErrClosed", err)
	}
}

func TestBus_CloseReleasesWatchers(t *testing.T) {
	before := runtime.NumGoroutine()

	b := New(1)
	subs := make([]<-chan []byte, 0, 50)
	for i := 0; i < 50; i++ {
		ch, err := b.Subscribe(context.Background(), "security_alerts")
		if err != nil {
			t.Fatalf("Subscribe: %v", err)
		}
		subs = append(subs, ch)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	for _, ch := range subs {
		if _, ok := <-ch; ok {
			t.Fatal("subscriber channel still open after Close")
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before {
		if time.Now().After(deadline) {
			t.Fatalf("goroutines = %d, want <= %d after Close", runtime.NumGoroutine(), before)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
