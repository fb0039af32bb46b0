package registry

import (
	"bytes"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// blob is the value of the schemas store, keyed by digest.
type blob struct {
	CreatedAt time.Time `msgpack:"created_at"`
	Schema    []byte    `msgpack:"schema"`
}

// link is the value of the names store, keyed by name.
type link struct {
	Digest    []byte    `msgpack:"digest"`
	CreatedAt time.Time `msgpack:"created_at"`
	UpdatedAt time.Time `msgpack:"updated_at"`
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	err := enc.Encode(v)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %T using MsgPack", v)
	}
	return buf.Bytes(), nil
}

func decode(b []byte, v any) error {
	dec := msgpack.GetDecoder()
	dec.Reset(bytes.NewReader(b))
	err := dec.Decode(v)
	msgpack.PutDecoder(dec)
	if err != nil {
		return errors.Wrapf(err, "failed to decode msgpack into %T", v)
	}
	return nil
}

func decodeLink(v []byte, l *link) error {
	if err := decode(v, l); err != nil {
		return err
	}
	if len(l.Digest) != len(Digest{}) {
		return errors.Errorf("invalid digest length %d", len(l.Digest))
	}
	return nil
}

func linkEntry(name string, v []byte) (Entry, error) {
	var l link
	if err := decodeLink(v, &l); err != nil {
		return Entry{}, errors.Wrapf(err, "entry %q", name)
	}

	e := Entry{
		Name:      name,
		CreatedAt: l.CreatedAt.UTC(),
		UpdatedAt: l.UpdatedAt.UTC(),
	}
	copy(e.Digest[:], l.Digest)
	return e, nil
}
