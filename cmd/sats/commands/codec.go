package commands

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/chaisql/sats/encoding/bsatn"
	"github.com/chaisql/sats/encoding/jsoncodec"
	"github.com/chaisql/sats/encoding/satn"
	"github.com/chaisql/sats/types"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// readValue decodes the JSON value read from the standard input.
func readValue(c *cli.Context) (*types.Typespace, types.AlgebraicType, types.Value, error) {
	ts, t, err := rootType(c)
	if err != nil {
		return nil, nil, nil, err
	}

	data, err := readInput(c)
	if err != nil {
		return nil, nil, nil, err
	}

	v, err := jsoncodec.Unmarshal(ts, t, data)
	if err != nil {
		return nil, nil, nil, err
	}

	return ts, t, v, nil
}

// NewEncodeCommand returns a cli.Command for "sats encode".
func NewEncodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "Encode a JSON value read from stdin in binary, printed in hexadecimal.",
		UsageText: `sats encode --schema schema.json --type name`,
		Description: `The encode command reads the JSON representation of a value of the given
table or reducer type and prints its binary encoding:

$ echo '{"x": -5, "y": 7}' | sats encode -s schema.json -t point
fbffffff07000000`,
		Flags: schemaFlags(),
		Action: func(c *cli.Context) error {
			ts, t, v, err := readValue(c)
			if err != nil {
				return err
			}

			b, err := bsatn.Encode(ts, t, v)
			if err != nil {
				return err
			}

			logger(c).Debug("value encoded", "type", c.String("type"), "size", len(b))

			_, err = fmt.Fprintln(c.App.Writer, hex.EncodeToString(b))
			return err
		},
	}
}

// NewDecodeCommand returns a cli.Command for "sats decode".
func NewDecodeCommand() *cli.Command {
	flags := append(schemaFlags(), &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output format: json, satn or pretty",
		Value:   "json",
	})

	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a binary value read from stdin in hexadecimal.",
		UsageText: `sats decode --schema schema.json --type name [--output json|satn|pretty]`,
		Description: `The decode command reads the hexadecimal binary encoding of a value of
the given table or reducer type and prints it:

$ echo fbffffff07000000 | sats decode -s schema.json -t point -o satn
(x = -5, y = 7)`,
		Flags: flags,
		Action: func(c *cli.Context) error {
			ts, t, err := rootType(c)
			if err != nil {
				return err
			}

			input, err := readInput(c)
			if err != nil {
				return err
			}

			b, err := hex.DecodeString(string(bytes.TrimSpace(input)))
			if err != nil {
				return errors.Wrap(err, "invalid hexadecimal input")
			}

			v, err := bsatn.Decode(ts, t, b)
			if err != nil {
				return err
			}

			var out string
			switch o := c.String("output"); o {
			case "json":
				var js []byte
				js, err = jsoncodec.Marshal(ts, t, v)
				out = string(js)
			case "satn":
				out, err = satn.Format(ts, t, v)
			case "pretty":
				out, err = satn.FormatPretty(ts, t, v)
			default:
				return errors.Errorf("unknown output format %q", o)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(c.App.Writer, out)
			return err
		},
	}
}

// NewHashCommand returns a cli.Command for "sats hash".
func NewHashCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash",
		Usage:     "Print the SHA-256 content hash of a JSON value read from stdin.",
		UsageText: `sats hash --schema schema.json --type name`,
		Flags:     schemaFlags(),
		Action: func(c *cli.Context) error {
			ts, t, v, err := readValue(c)
			if err != nil {
				return err
			}

			h, err := bsatn.ContentHash(ts, t, v)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(c.App.Writer, hex.EncodeToString(h[:]))
			return err
		},
	}
}
