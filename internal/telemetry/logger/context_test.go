package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestWithLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("from context")

	if !bytes.Contains(buf.Bytes(), []byte("from context")) {
		t.Errorf("expected message in custom logger output, got %s", buf.String())
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("FromContext() returned nil, expected default logger")
	}
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "01HZX3Q4")
	if got := RequestIDFromContext(ctx); got != "01HZX3Q4" {
		t.Errorf("RequestIDFromContext() = %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext() on empty ctx = %q", got)
	}
}

func TestL(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
	}{
		{"with request id", "req-12345"},
		{"without request id", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

			ctx := WithLogger(context.Background(), l)
			if tt.requestID != "" {
				ctx = WithRequestID(ctx, tt.requestID)
			}
			L(ctx).Info("test")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("Failed to parse JSON log: %v", err)
			}
			got, ok := entry["request_id"]
			if tt.requestID == "" {
				if ok {
					t.Errorf("unexpected request_id %v", got)
				}
				return
			}
			if got != tt.requestID {
				t.Errorf("request_id = %v, want %q", got, tt.requestID)
			}
		})
	}
}
