package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/honeymesh/internal/cli/connection"
)

// StatusCommand queries a running server's /health.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Query a running server's health",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "server address",
				EnvVars: []string{"HONEYMESH_SERVER"},
				Value:   "localhost:5002",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "request timeout",
				Value: connection.DefaultTimeout,
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "fail when the server reports a degraded store",
			},
		},
		Action: runStatus,
	}
}

func runStatus(c *cli.Context) error {
	f, err := formatter(c)
	if err != nil {
		return err
	}

	client := connection.NewHTTPClient(c.String("server"), c.Duration("timeout"))
	health, err := client.Health(c.Context)
	if err != nil {
		return fmt.Errorf("%s: %w", client.BaseURL(), err)
	}
	if err := f.Format(c.App.Writer, health); err != nil {
		return err
	}
	if c.Bool("strict") && health.Status != "ok" {
		return fmt.Errorf("server is %s (store: %s)", health.Status, health.Store)
	}
	return nil
}
