package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/chaisql/sats/engine"
	"github.com/chaisql/sats/engine/bolt"
	"github.com/chaisql/sats/engine/memory"
	"github.com/chaisql/sats/engine/pebble"
	"github.com/chaisql/sats/registry"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// openEngine opens the engine designated by the --engine and --path flags.
func openEngine(c *cli.Context) (engine.Engine, error) {
	path := c.String("path")

	switch name := c.String("engine"); name {
	case "pebble":
		return pebble.NewEngine(path, nil)
	case "bolt":
		return bolt.NewEngine(path, 0600, nil)
	case "memory":
		return memory.NewEngine(), nil
	default:
		return nil, errors.Errorf("unknown engine %q", name)
	}
}

// withRegistry opens the registry and calls fn.
func withRegistry(c *cli.Context, fn func(r *registry.Registry) error) error {
	ng, err := openEngine(c)
	if err != nil {
		return err
	}
	defer ng.Close()

	r, err := registry.Open(c.Context, ng, registry.Options{
		Logger: logger(c),
	})
	if err != nil {
		return err
	}

	return fn(r)
}

// NewRegistryCommand returns a cli.Command for "sats registry".
func NewRegistryCommand() *cli.Command {
	return &cli.Command{
		Name:  "registry",
		Usage: "Store and fetch schemas.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "engine",
				Aliases: []string{"e"},
				Usage:   "storage engine: pebble, bolt or memory",
				Value:   "pebble",
				EnvVars: []string{"SATS_ENGINE"},
			},
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "path of the database",
				Value:   "sats.db",
				EnvVars: []string{"SATS_PATH"},
			},
		},
		Subcommands: []*cli.Command{
			{
				Name:      "put",
				Usage:     "Store a schema file under a name.",
				UsageText: `sats registry put name schema.json`,
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return errors.New(c.Command.UsageText)
					}

					s, err := readSchema(c.Args().Get(1))
					if err != nil {
						return err
					}

					return withRegistry(c, func(r *registry.Registry) error {
						e, err := r.Put(c.Context, c.Args().Get(0), s)
						if err != nil {
							return err
						}

						_, err = fmt.Fprintln(c.App.Writer, e.Digest)
						return err
					})
				},
			},
			{
				Name:      "get",
				Usage:     "Print a stored schema, in JSON.",
				UsageText: `sats registry get name`,
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return errors.New(c.Command.UsageText)
					}

					return withRegistry(c, func(r *registry.Registry) error {
						s, err := r.Get(c.Context, name)
						if err != nil {
							return err
						}

						b, err := s.MarshalJSON()
						if err != nil {
							return err
						}

						_, err = fmt.Fprintln(c.App.Writer, string(b))
						return err
					})
				},
			},
			{
				Name:      "list",
				Usage:     "List the stored schemas.",
				UsageText: `sats registry list`,
				Action: func(c *cli.Context) error {
					return withRegistry(c, func(r *registry.Registry) error {
						entries, err := r.List(c.Context)
						if err != nil {
							return err
						}

						w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
						for _, e := range entries {
							fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Digest, e.UpdatedAt.Format(time.RFC3339))
						}
						return w.Flush()
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a schema name.",
				UsageText: `sats registry delete name`,
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return errors.New(c.Command.UsageText)
					}

					return withRegistry(c, func(r *registry.Registry) error {
						return r.Delete(c.Context, name)
					})
				},
			},
		},
	}
}
