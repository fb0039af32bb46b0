// Package commands implements the sats command line tool.
package commands

import (
	"log/slog"

	"github.com/urfave/cli/v2"
)

const loggerKey = "logger"

// NewApp creates the sats CLI app.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "sats"
	app.Usage = "Encode, decode and inspect algebraic values and schemas"
	app.EnableBashCompletion = true

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "log debug messages to stderr",
		},
	}

	app.Commands = []*cli.Command{
		NewEncodeCommand(),
		NewDecodeCommand(),
		NewHashCommand(),
		NewCheckCommand(),
		NewRegistryCommand(),
		NewVersionCommand(),
	}

	app.Before = func(c *cli.Context) error {
		level := slog.LevelInfo
		if c.Bool("verbose") {
			level = slog.LevelDebug
		}

		if c.App.Metadata == nil {
			c.App.Metadata = make(map[string]any)
		}
		c.App.Metadata[loggerKey] = slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
		return nil
	}

	return app
}

func logger(c *cli.Context) *slog.Logger {
	if l, ok := c.App.Metadata[loggerKey].(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
