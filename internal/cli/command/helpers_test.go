package command

import (
	"io"
	"log/slog"
	"testing"

	"github.com/yndnr/honeymesh/internal/cli/output"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func outputFormat(t *testing.T, s string) output.Format {
	t.Helper()
	f, err := output.ParseFormat(s)
	if err != nil {
		t.Fatal(err)
	}
	return f
}
