package commands

import (
	"io"
	"os"

	"github.com/chaisql/sats/schema"
	"github.com/chaisql/sats/types"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

func schemaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "schema",
			Aliases:  []string{"s"},
			Usage:    "path of the schema file, in JSON",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "type",
			Aliases:  []string{"t"},
			Usage:    "name of the table or reducer describing the value",
			Required: true,
		},
	}
}

// readSchema reads a schema in its JSON form.
func readSchema(path string) (*schema.Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s schema.Schema
	if err := s.UnmarshalJSON(b); err != nil {
		return nil, errors.Wrapf(err, "invalid schema %q", path)
	}

	return &s, nil
}

// rootType loads the schema designated by the --schema flag and returns
// the type of the root designated by the --type flag.
func rootType(c *cli.Context) (*types.Typespace, types.AlgebraicType, error) {
	s, err := readSchema(c.String("schema"))
	if err != nil {
		return nil, nil, err
	}

	t, err := s.Type(c.String("type"))
	if err != nil {
		return nil, nil, err
	}

	return s.Typespace, t, nil
}

func readInput(c *cli.Context) ([]byte, error) {
	b, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "read standard input")
	}
	return b, nil
}
