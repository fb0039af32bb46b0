// Package satn renders algebraic values as human readable text.
//
// The format is meant for logs, shells and error messages; it cannot be parsed back.
//
//	(x = 1, y = 2)         product
//	(Right = true)         sum
//	[1, 2]                 array
//	{"a" => 1}             map
//	0xdeadbeef             bytes
package satn

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chaisql/sats/types"
	"github.com/cockroachdb/errors"
)

// Format returns the single line representation of v.
func Format(ts *types.Typespace, t types.AlgebraicType, v types.Value) (string, error) {
	return format(ts, t, v, false)
}

// FormatPretty returns a multi line representation of v, with one entry per line,
// nested entries indented by four spaces and trailing commas.
func FormatPretty(ts *types.Typespace, t types.AlgebraicType, v types.Value) (string, error) {
	return format(ts, t, v, true)
}

func format(ts *types.Typespace, t types.AlgebraicType, v types.Value, pretty bool) (string, error) {
	if err := types.Check(ts, t, v); err != nil {
		return "", err
	}

	f := formatter{ts: ts, w: &writer{pretty: pretty, onNewline: true}}
	if err := f.format(t, v); err != nil {
		return "", err
	}
	return f.w.sb.String(), nil
}

// FormatPsql renders each column of a row on its own, the way a SQL shell displays them.
// Identities and connection ids are shown as hex, timestamps as RFC 3339 dates
// and durations as signed seconds.
func FormatPsql(ts *types.Typespace, row types.ProductType, v types.ProductValue) ([]string, error) {
	if err := types.Check(ts, row, v); err != nil {
		return nil, err
	}

	cells := make([]string, len(row.Elements))
	for i, col := range row.Elements {
		t, err := ts.Resolve(col.Type)
		if err != nil {
			return nil, err
		}

		if s, ok := formatSpecial(t, v[i]); ok {
			cells[i] = s
			continue
		}

		f := formatter{ts: ts, w: &writer{onNewline: true}}
		if err := f.format(t, v[i]); err != nil {
			return nil, err
		}
		cells[i] = f.w.sb.String()
	}

	return cells, nil
}

func formatSpecial(t types.AlgebraicType, v types.Value) (string, bool) {
	switch {
	case types.IsIdentity(t):
		x := types.U256(v.(types.ProductValue)[0].(types.U256Value))
		return hexBigEndian(x[:]), true
	case types.IsConnectionID(t):
		x := types.U128(v.(types.ProductValue)[0].(types.U128Value))
		return hexBigEndian(x[:]), true
	case types.IsTimestamp(t):
		tm, _ := types.TimeFromValue(v)
		return tm.Format("2006-01-02T15:04:05.000000-07:00"), true
	case types.IsTimeDuration(t):
		d, _ := types.DurationFromValue(v)
		return formatDuration(d), true
	}

	return "", false
}

func hexBigEndian(limbs []uint64) string {
	b := make([]byte, 0, len(limbs)*8)
	for i := len(limbs) - 1; i >= 0; i-- {
		for shift := 56; shift >= 0; shift -= 8 {
			b = append(b, byte(limbs[i]>>shift))
		}
	}
	return "0x" + hex.EncodeToString(b)
}

func formatDuration(d time.Duration) string {
	micros := d.Microseconds()
	sign := "+"
	if micros < 0 {
		sign = "-"
		micros = -micros
	}
	return fmt.Sprintf("%s%d.%06d", sign, micros/1e6, micros%1e6)
}

type formatter struct {
	ts *types.Typespace
	w  *writer
}

func (f *formatter) format(t types.AlgebraicType, v types.Value) error {
	t, err := f.ts.Resolve(t)
	if err != nil {
		return err
	}

	switch x := v.(type) {
	case types.StringValue:
		f.w.WriteString(`"` + string(x) + `"`)
	case types.BytesValue:
		f.w.WriteString("0x" + hex.EncodeToString(x))
	case types.F32Value:
		f.w.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	case types.F64Value:
		f.w.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 64))
	case types.ProductValue:
		pt := t.(types.ProductType)
		f.w.WriteString("(")
		e := entries{w: f.w}
		for i, field := range x {
			err := e.entry(func() error {
				f.w.WriteString(pt.ElementName(i) + " = ")
				return f.format(pt.Elements[i].Type, field)
			})
			if err != nil {
				return err
			}
		}
		f.w.WriteString(")")
	case types.SumValue:
		st := t.(types.SumType)
		f.w.WriteString("(")
		e := entries{w: f.w}
		err := e.entry(func() error {
			f.w.WriteString(st.VariantName(int(x.Tag)) + " = ")
			return f.format(st.Variants[x.Tag].Type, x.Value)
		})
		if err != nil {
			return err
		}
		f.w.WriteString(")")
	case types.ArrayValue:
		at := t.(types.ArrayType)
		f.w.WriteString("[")
		e := entries{w: f.w}
		for _, elem := range x {
			if err := e.entry(func() error { return f.format(at.Elem, elem) }); err != nil {
				return err
			}
		}
		f.w.WriteString("]")
	case types.MapValue:
		mt := t.(types.MapType)
		f.w.WriteString("{")
		e := entries{w: f.w}
		for _, entry := range x.Sorted() {
			err := e.entry(func() error {
				if err := f.format(mt.Key, entry.Key); err != nil {
					return err
				}
				f.w.WriteString(" => ")
				return f.format(mt.Value, entry.Value)
			})
			if err != nil {
				return err
			}
		}
		f.w.WriteString("}")
	case nil:
		return errors.New("cannot format nil value")
	default:
		// booleans and integers
		f.w.WriteString(x.String())
	}

	return nil
}

// entries writes the comma separated members of a composite value.
type entries struct {
	w *writer
	n int
}

func (e *entries) entry(fn func() error) error {
	defer func() { e.n++ }()

	if !e.w.pretty {
		if e.n > 0 {
			e.w.WriteString(", ")
		}
		return fn()
	}

	if e.n == 0 {
		e.w.WriteString("\n")
	}
	e.w.indent++
	defer func() { e.w.indent-- }()

	if err := fn(); err != nil {
		return err
	}
	e.w.WriteString(",\n")
	return nil
}

type writer struct {
	sb        strings.Builder
	pretty    bool
	indent    int
	onNewline bool
}

func (w *writer) WriteString(s string) {
	if !w.pretty {
		w.sb.WriteString(s)
		return
	}

	for len(s) > 0 {
		line := s
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			line = s[:i+1]
		}
		s = s[len(line):]

		if w.onNewline {
			w.sb.WriteString(strings.Repeat("    ", w.indent))
		}
		w.onNewline = strings.HasSuffix(line, "\n")
		w.sb.WriteString(line)
	}
}
