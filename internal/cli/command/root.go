package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/honeymesh/internal/cli/output"
	"github.com/yndnr/honeymesh/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "honeymesh-server",
		Usage:   "honeytoken decoy portal",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ServeCommand(),
			AlertsCommand(),
			TokenCommand(),
			StatusCommand(),
		},
		DefaultCommand: "serve",
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to the YAML configuration file",
			EnvVars: []string{"HONEYMESH_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
	}
}

// formatter returns the formatter selected by --output.
func formatter(c *cli.Context) (output.Formatter, error) {
	f, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(f), nil
}
