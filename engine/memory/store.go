package memory

import (
	"bytes"

	"github.com/chaisql/sats/engine"
	"github.com/cockroachdb/errors"
	"github.com/google/btree"
)

type item struct {
	k, v    []byte
	deleted bool
}

func (i *item) Less(than btree.Item) bool {
	return bytes.Compare(i.k, than.(*item).k) < 0
}

type store struct {
	tr *btree.BTree
	tx *transaction
}

func (s *store) Put(k, v []byte) error {
	if !s.tx.writable {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	if len(k) == 0 {
		return errors.New("cannot store empty key")
	}

	v = append([]byte(nil), v...)

	if i := s.tr.Get(&item{k: k}); i != nil {
		cur := i.(*item)

		oldv, oldDeleted := cur.v, cur.deleted
		cur.v = v
		cur.deleted = false

		s.tx.onRollback = append(s.tx.onRollback, func() {
			cur.v = oldv
			cur.deleted = oldDeleted
		})

		return nil
	}

	it := &item{k: append([]byte(nil), k...), v: v}
	s.tr.ReplaceOrInsert(it)

	s.tx.onRollback = append(s.tx.onRollback, func() {
		s.tr.Delete(it)
	})

	return nil
}

func (s *store) Get(k []byte) ([]byte, error) {
	i := s.tr.Get(&item{k: k})
	if i == nil || i.(*item).deleted {
		return nil, errors.WithStack(engine.ErrKeyNotFound)
	}

	return append([]byte(nil), i.(*item).v...), nil
}

// Delete marks the item as deleted; it is removed from the tree on commit.
func (s *store) Delete(k []byte) error {
	if !s.tx.writable {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	i := s.tr.Get(&item{k: k})
	if i == nil || i.(*item).deleted {
		return errors.WithStack(engine.ErrKeyNotFound)
	}

	it := i.(*item)
	it.deleted = true

	s.tx.onRollback = append(s.tx.onRollback, func() {
		it.deleted = false
	})

	s.tx.onCommit = append(s.tx.onCommit, func() {
		if it.deleted {
			s.tr.Delete(it)
		}
	})

	return nil
}

func (s *store) AscendGreaterOrEqual(start []byte, fn func(k, v []byte) error) (err error) {
	iterator := btree.ItemIterator(func(i btree.Item) bool {
		it := i.(*item)
		if it.deleted {
			return true
		}
		err = fn(it.k, it.v)
		return err == nil
	})

	if len(start) == 0 {
		s.tr.Ascend(iterator)
	} else {
		s.tr.AscendGreaterOrEqual(&item{k: start}, iterator)
	}

	return
}
