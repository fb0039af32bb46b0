// Package registry persists schemas in a key/value engine.
//
// Schemas are stored once, keyed by their content hash, and names point to
// the digest of their latest schema. Decoded schemas are cached by digest:
// a digest always designates the same schema, so cached entries never go stale.
package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/chaisql/sats/engine"
	"github.com/chaisql/sats/schema"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrSchemaNotFound is returned when no schema matches a name or a digest.
var ErrSchemaNotFound = errors.New("schema not found")

var (
	schemasStore = []byte("schemas")
	namesStore   = []byte("names")
)

// Digest is the SHA-256 content hash of a schema.
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses the hexadecimal representation of a digest.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, errors.Wrapf(err, "invalid digest %q", s)
	}
	if len(b) != len(d) {
		return d, errors.Errorf("invalid digest %q: expected %d bytes, got %d", s, len(d), len(b))
	}
	copy(d[:], b)
	return d, nil
}

// Entry describes a named schema.
type Entry struct {
	Name      string
	Digest    Digest
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Options configure a registry.
type Options struct {
	// Logger receives registry events. Defaults to slog.Default().
	Logger *slog.Logger
	// Concurrency is the number of schemas decoded in parallel by Preload. Defaults to 4.
	Concurrency int
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Registry stores schemas in an engine. It is safe for concurrent use.
type Registry struct {
	ng     engine.Engine
	opts   Options
	logger *slog.Logger

	group singleflight.Group

	mu    sync.RWMutex
	cache map[Digest]*schema.Schema
}

// Open creates the stores used by the registry if they don't exist.
// The engine is not closed by the registry.
func Open(ctx context.Context, ng engine.Engine, opts Options) (*Registry, error) {
	opts = opts.withDefaults()

	r := Registry{
		ng:     ng,
		opts:   opts,
		logger: opts.Logger,
		cache:  make(map[Digest]*schema.Schema),
	}

	err := r.update(ctx, func(tx engine.Transaction) error {
		for _, name := range [][]byte{schemasStore, namesStore} {
			_, err := tx.GetStore(name)
			if errors.Is(err, engine.ErrStoreNotFound) {
				err = tx.CreateStore(name)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "open registry")
	}

	return &r, nil
}

func (r *Registry) update(ctx context.Context, fn func(tx engine.Transaction) error) error {
	tx, err := r.ng.Begin(ctx, engine.TxOptions{Writable: true})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Registry) view(ctx context.Context, fn func(schemas, names engine.Store) error) error {
	tx, err := r.ng.Begin(ctx, engine.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	schemas, err := tx.GetStore(schemasStore)
	if err != nil {
		return err
	}
	names, err := tx.GetStore(namesStore)
	if err != nil {
		return err
	}

	return fn(schemas, names)
}

// Put stores s under name and returns the resulting entry.
// The schema is stored once per digest; putting the same schema under another name only adds the name.
func (r *Registry) Put(ctx context.Context, name string, s *schema.Schema) (Entry, error) {
	if name == "" {
		return Entry{}, errors.New("empty schema name")
	}

	bin, err := s.MarshalBinary()
	if err != nil {
		return Entry{}, err
	}
	digest := Digest(sha256.Sum256(bin))
	now := r.opts.Now().UTC()

	entry := Entry{Name: name, Digest: digest, CreatedAt: now, UpdatedAt: now}
	var stored bool

	err = r.update(ctx, func(tx engine.Transaction) error {
		schemas, err := tx.GetStore(schemasStore)
		if err != nil {
			return err
		}
		names, err := tx.GetStore(namesStore)
		if err != nil {
			return err
		}

		_, err = schemas.Get(digest[:])
		switch {
		case errors.Is(err, engine.ErrKeyNotFound):
			v, err := encode(&blob{CreatedAt: now, Schema: bin})
			if err != nil {
				return err
			}
			if err := schemas.Put(digest[:], v); err != nil {
				return err
			}
			stored = true
		case err != nil:
			return err
		}

		// keep the creation date of an existing name
		if v, err := names.Get([]byte(name)); err == nil {
			var old link
			if err := decodeLink(v, &old); err != nil {
				return err
			}
			entry.CreatedAt = old.CreatedAt
		} else if !errors.Is(err, engine.ErrKeyNotFound) {
			return err
		}

		v, err := encode(&link{Digest: digest[:], CreatedAt: entry.CreatedAt, UpdatedAt: now})
		if err != nil {
			return err
		}
		return names.Put([]byte(name), v)
	})
	if err != nil {
		return Entry{}, errors.Wrapf(err, "put schema %q", name)
	}

	r.mu.Lock()
	r.cache[digest] = s
	r.mu.Unlock()

	r.logger.LogAttrs(ctx, slog.LevelInfo, "registry: schema stored",
		slog.String("name", name),
		slog.String("digest", digest.String()),
		slog.Bool("new", stored),
		slog.Int("size", len(bin)))

	return entry, nil
}

// Entry returns the entry of a named schema.
func (r *Registry) Entry(ctx context.Context, name string) (Entry, error) {
	var entry Entry

	err := r.view(ctx, func(_, names engine.Store) error {
		v, err := names.Get([]byte(name))
		if errors.Is(err, engine.ErrKeyNotFound) {
			return errors.Wrapf(ErrSchemaNotFound, "%q", name)
		}
		if err != nil {
			return err
		}

		entry, err = linkEntry(name, v)
		return err
	})

	return entry, err
}

// Get returns the latest schema stored under name.
func (r *Registry) Get(ctx context.Context, name string) (*schema.Schema, error) {
	entry, err := r.Entry(ctx, name)
	if err != nil {
		return nil, err
	}

	return r.GetByDigest(ctx, entry.Digest)
}

// GetByDigest returns the schema with the given digest.
// Concurrent calls for the same digest share a single read.
func (r *Registry) GetByDigest(ctx context.Context, digest Digest) (*schema.Schema, error) {
	r.mu.RLock()
	s, ok := r.cache[digest]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	key := digest.String()
	v, err, shared := r.group.Do(key, func() (any, error) {
		return r.load(ctx, digest)
	})
	if err != nil {
		return nil, err
	}

	if shared {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "registry: shared load", slog.String("digest", key))
	}

	return v.(*schema.Schema), nil
}

func (r *Registry) load(ctx context.Context, digest Digest) (*schema.Schema, error) {
	var b blob

	err := r.view(ctx, func(schemas, _ engine.Store) error {
		v, err := schemas.Get(digest[:])
		if errors.Is(err, engine.ErrKeyNotFound) {
			return errors.Wrapf(ErrSchemaNotFound, "digest %s", digest)
		}
		if err != nil {
			return err
		}

		return decode(v, &b)
	})
	if err != nil {
		return nil, err
	}

	if Digest(sha256.Sum256(b.Schema)) != digest {
		return nil, errors.Errorf("schema %s is corrupted: digest mismatch", digest)
	}

	var s schema.Schema
	if err := s.UnmarshalBinary(b.Schema); err != nil {
		return nil, errors.Wrapf(err, "decode schema %s", digest)
	}

	r.mu.Lock()
	r.cache[digest] = &s
	r.mu.Unlock()

	r.logger.LogAttrs(ctx, slog.LevelDebug, "registry: schema loaded",
		slog.String("digest", digest.String()),
		slog.Int("size", len(b.Schema)))

	return &s, nil
}

// List returns the entries of every named schema, ordered by name.
func (r *Registry) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry

	err := r.view(ctx, func(_, names engine.Store) error {
		return names.AscendGreaterOrEqual(nil, func(k, v []byte) error {
			entry, err := linkEntry(string(k), v)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		})
	})

	return entries, err
}

// Delete removes a name. The schema it designates is kept, as other names may refer to it.
func (r *Registry) Delete(ctx context.Context, name string) error {
	err := r.update(ctx, func(tx engine.Transaction) error {
		names, err := tx.GetStore(namesStore)
		if err != nil {
			return err
		}

		err = names.Delete([]byte(name))
		if errors.Is(err, engine.ErrKeyNotFound) {
			return errors.Wrapf(ErrSchemaNotFound, "%q", name)
		}
		return err
	})
	if err != nil {
		return err
	}

	r.logger.LogAttrs(ctx, slog.LevelInfo, "registry: schema name deleted", slog.String("name", name))
	return nil
}

// Preload decodes every stored schema into the cache, using up to
// Options.Concurrency goroutines. It stops at the first error.
func (r *Registry) Preload(ctx context.Context) error {
	var digests []Digest

	err := r.view(ctx, func(schemas, _ engine.Store) error {
		return schemas.AscendGreaterOrEqual(nil, func(k, _ []byte) error {
			var d Digest
			if len(k) != len(d) {
				return errors.Errorf("invalid digest key %x", k)
			}
			copy(d[:], k)
			digests = append(digests, d)
			return nil
		})
	})
	if err != nil {
		return err
	}

	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for _, d := range digests {
		d := d
		g.Go(func() error {
			_, err := r.GetByDigest(gctx, d)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "preload schemas")
	}

	r.logger.LogAttrs(ctx, slog.LevelInfo, "registry: schemas preloaded",
		slog.Int("count", len(digests)),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}
