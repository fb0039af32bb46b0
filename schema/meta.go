package schema

import (
	"github.com/chaisql/sats/errors"
	"github.com/chaisql/sats/types"
)

// Slots appended to the meta-typespace to describe schemas.
var (
	metaRootKind types.Ref
	metaRoot     types.Ref
	metaSchema   types.Ref

	meta = newMeta()
)

func newMeta() *types.Typespace {
	ts := types.NewMetaTypespace()
	metaRootKind = ts.Add(types.Sum(
		types.Variant("table", types.UnitType()),
		types.Variant("reducer", types.UnitType()),
	))
	metaRoot = ts.Add(types.Product(
		types.Field("name", types.StringType),
		types.Field("kind", metaRootKind),
		types.Field("ref", types.U32Type),
	))
	metaSchema = ts.Add(types.Product(
		types.Field("typespace", types.MetaTypespace),
		types.Field("roots", types.Array(metaRoot)),
	))
	return ts
}

func (s *Schema) toValue() (types.Value, error) {
	ts, err := types.TypespaceToValue(s.Typespace)
	if err != nil {
		return nil, err
	}

	roots := make(types.ArrayValue, len(s.Roots))
	for i, r := range s.Roots {
		roots[i] = types.NewProductValue(
			types.StringValue(r.Name),
			types.NewSumValue(uint32(r.Kind), types.UnitValue()),
			types.U32Value(r.Ref),
		)
	}

	return types.NewProductValue(ts, roots), nil
}

// fromValue sets s from a value of the schema meta-type and validates it.
func (s *Schema) fromValue(v types.Value) error {
	p, ok := v.(types.ProductValue)
	if !ok || len(p) != 2 {
		return errors.NewSchemaError("malformed schema value %s", v)
	}

	ts, err := types.TypespaceFromValue(p[0])
	if err != nil {
		return err
	}

	arr, ok := p[1].(types.ArrayValue)
	if !ok {
		return errors.NewSchemaError("malformed schema roots %s", p[1])
	}

	roots := make([]Root, len(arr))
	for i, rv := range arr {
		rp, ok := rv.(types.ProductValue)
		if !ok || len(rp) != 3 {
			return errors.NewSchemaError("malformed schema root %s", rv)
		}
		name, ok1 := rp[0].(types.StringValue)
		kind, ok2 := rp[1].(types.SumValue)
		ref, ok3 := rp[2].(types.U32Value)
		if !ok1 || !ok2 || !ok3 {
			return errors.NewSchemaError("malformed schema root %s", rv)
		}
		roots[i] = Root{Name: string(name), Kind: RootKind(kind.Tag), Ref: types.Ref(ref)}
	}

	sc, err := New(ts, roots...)
	if err != nil {
		return err
	}

	*s = *sc
	return nil
}
