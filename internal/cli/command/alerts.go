package command

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/honeymesh/internal/cli/output"
	"github.com/yndnr/honeymesh/internal/core/domain"
	"github.com/yndnr/honeymesh/internal/storage"
)

// AlertsCommand follows the alert channel and prints each event.
func AlertsCommand() *cli.Command {
	return &cli.Command{
		Name:  "alerts",
		Usage: "Follow the alert channel",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "channel",
				Usage: "channel to follow (defaults to alerts.channel)",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "exit after this many events (0 follows forever)",
			},
		},
		Action: runAlerts,
	}
}

func runAlerts(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.store.Close()

	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}

	channel := c.String("channel")
	if channel == "" {
		channel = s.cfg.Alerts.Channel
	}
	if strings.EqualFold(s.cfg.Store.Backend, storage.BackendMemory) {
		s.log.Warn("the memory backend only carries alerts published by this process")
	}

	events, err := s.store.Subscribe(c.Context, channel)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	s.log.Info("following alerts", "channel", channel)

	limit := c.Int("count")
	seen := 0
	for payload := range events {
		if err := printAlert(c.App.Writer, format, payload); err != nil {
			return err
		}
		seen++
		if limit > 0 && seen >= limit {
			return nil
		}
	}
	return nil
}

// alertLine is the union of the alert event shapes.
type alertLine struct {
	EventType   string    `json:"event_type"`
	TokenID     string    `json:"token_id"`
	IPAddress   string    `json:"ip_address"`
	Context     string    `json:"context"`
	AccessCount int64     `json:"access_count"`
	Username    string    `json:"username"`
	Success     bool      `json:"success"`
	Timestamp   time.Time `json:"timestamp"`
}

// printAlert writes one event. JSON and YAML output print the payload as
// published; table output prints a one-line summary.
func printAlert(w io.Writer, format output.Format, payload []byte) error {
	var ev alertLine
	decodeErr := json.Unmarshal(payload, &ev)

	switch {
	case format == output.FormatJSON || decodeErr != nil:
		_, err := fmt.Fprintf(w, "%s\n", payload)
		return err
	case format == output.FormatYAML:
		var generic map[string]any
		_ = json.Unmarshal(payload, &generic)
		fmt.Fprintln(w, "---")
		return output.NewFormatter(output.FormatYAML).Format(w, generic)
	}

	ts := ev.Timestamp.UTC().Format(output.TimeLayout)
	var err error
	switch ev.EventType {
	case domain.EventHoneytokenAccess:
		_, err = fmt.Fprintf(w, "%s  %s  token=%s ip=%s context=%q count=%d\n",
			ts, ev.EventType, ev.TokenID, ev.IPAddress, ev.Context, ev.AccessCount)
	case domain.EventLoginAttempt:
		_, err = fmt.Fprintf(w, "%s  %s  user=%q ip=%s success=%t\n",
			ts, ev.EventType, ev.Username, ev.IPAddress, ev.Success)
	default:
		_, err = fmt.Fprintf(w, "%s\n", payload)
	}
	return err
}
