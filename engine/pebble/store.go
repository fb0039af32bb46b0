package pebble

import (
	"github.com/chaisql/sats/engine"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

// A Store is a range of keys sharing the same prefix.
type Store struct {
	tx     *Transaction
	prefix []byte
}

func (s *Store) buildKey(k []byte) []byte {
	key := make([]byte, 0, len(s.prefix)+len(k))
	key = append(key, s.prefix...)
	return append(key, k...)
}

// Put stores a key value pair. If it already exists, it overrides it.
func (s *Store) Put(k, v []byte) error {
	if !s.tx.writable {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	if len(k) == 0 {
		return errors.New("cannot store empty key")
	}

	return s.tx.batch.Set(s.buildKey(k), v, nil)
}

// Get returns a copy of the value associated with the given key.
// If not found, returns engine.ErrKeyNotFound.
func (s *Store) Get(k []byte) ([]byte, error) {
	value, closer, err := s.tx.reader.Get(s.buildKey(k))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.WithStack(engine.ErrKeyNotFound)
		}

		return nil, err
	}

	cp := make([]byte, len(value))
	copy(cp, value)

	if err := closer.Close(); err != nil {
		return nil, err
	}

	return cp, nil
}

// Delete a key. If not found, returns engine.ErrKeyNotFound.
func (s *Store) Delete(k []byte) error {
	if !s.tx.writable {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	key := s.buildKey(k)
	ok, err := s.tx.exists(key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithStack(engine.ErrKeyNotFound)
	}

	return s.tx.batch.Delete(key, nil)
}

// AscendGreaterOrEqual iterates over the keys of the store, without their prefix.
func (s *Store) AscendGreaterOrEqual(start []byte, fn func(k, v []byte) error) error {
	return s.iterate(start, func(k, v []byte) error {
		return fn(k[len(s.prefix):], v)
	})
}

// iterate calls fn with the full keys of the store.
func (s *Store) iterate(start []byte, fn func(k, v []byte) error) error {
	upperBound := append([]byte(nil), s.prefix...)
	upperBound[len(upperBound)-1]++

	it := s.tx.reader.NewIter(&pebble.IterOptions{
		LowerBound: s.prefix,
		UpperBound: upperBound,
	})

	for it.SeekGE(s.buildKey(start)); it.Valid(); it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			_ = it.Close()
			return err
		}
	}

	return it.Close()
}
