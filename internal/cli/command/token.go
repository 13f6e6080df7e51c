package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/honeymesh/internal/core/domain"
	"github.com/yndnr/honeymesh/internal/core/service"
)

// TokenCommand groups the honeytoken inspection commands.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint, inspect and trigger honeytokens",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show a honeytoken record",
				ArgsUsage: "<token-id>",
				Action:    runTokenGet,
			},
			{
				Name:  "mint",
				Usage: "Mint a honeytoken and print its id",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "context",
						Usage: "where the token will be planted",
						Value: "manual",
					},
				},
				Action: runTokenMint,
			},
			{
				Name:      "access",
				Usage:     "Record an access, as the beacon would, and publish the alert",
				ArgsUsage: "<token-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "ip",
						Usage: "source address to record",
						Value: "127.0.0.1",
					},
				},
				Action: runTokenAccess,
			},
		},
	}
}

func tokenArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one token id, got %d arguments", c.NArg())
	}
	return c.Args().First(), nil
}

func runTokenGet(c *cli.Context) error {
	id, err := tokenArg(c)
	if err != nil {
		return err
	}
	f, err := formatter(c)
	if err != nil {
		return err
	}
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.store.Close()

	h, err := s.svc.Lookup(c.Context, id)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return fmt.Errorf("token %s not found", id)
		}
		return err
	}
	return f.Format(c.App.Writer, h)
}

// runTokenMint fails on store errors instead of printing an id that was
// never stored.
func runTokenMint(c *cli.Context) error {
	s, err := openSession(c, service.WithStrictWrites(true))
	if err != nil {
		return err
	}
	defer s.store.Close()

	id, err := s.svc.Mint(c.Context, c.String("context"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, id)
	return err
}

func runTokenAccess(c *cli.Context) error {
	id, err := tokenArg(c)
	if err != nil {
		return err
	}
	f, err := formatter(c)
	if err != nil {
		return err
	}
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.store.Close()

	res, err := s.svc.RecordAccess(c.Context, id, c.String("ip"))
	if err != nil {
		return err
	}
	if res == nil {
		return fmt.Errorf("token %s not recorded (unknown or store unavailable)", id)
	}
	if !res.Published {
		s.log.Warn("access recorded but alert was not published", "token_id", id)
	}
	return f.Format(c.App.Writer, res.Record)
}
