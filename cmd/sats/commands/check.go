package commands

import (
	"fmt"

	"github.com/chaisql/sats/schema"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// NewCheckCommand returns a cli.Command for "sats check".
func NewCheckCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check that a client schema is compatible with a server schema.",
		UsageText: `sats check client.json server.json`,
		Description: `The check command verifies that every table and reducer of the client schema
exists in the server schema, with the same kind and a compatible type.
Server tables and reducers unknown to the client are ignored.`,
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return errors.New(c.Command.UsageText)
			}

			var client, server *schema.Schema

			var g errgroup.Group
			g.Go(func() (err error) {
				client, err = readSchema(c.Args().Get(0))
				return
			})
			g.Go(func() (err error) {
				server, err = readSchema(c.Args().Get(1))
				return
			})
			if err := g.Wait(); err != nil {
				return err
			}

			if err := schema.Compatible(client, server); err != nil {
				return err
			}

			logger(c).Debug("schemas compatible", "roots", len(client.Roots))

			_, err := fmt.Fprintln(c.App.Writer, "compatible")
			return err
		},
	}
}
