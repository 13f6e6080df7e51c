package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yndnr/honeymesh/internal/cli/command"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return command.App().RunContext(context.Background(), os.Args)
}
