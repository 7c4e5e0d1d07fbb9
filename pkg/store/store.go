// Package store persists encoded database archives under string keys.
//
// A [Store] holds opaque bytes; encoding is the job of package archive. The
// backends are a directory of files ([FileStore]), process memory
// ([MemoryStore]), Redis ([RedisStore]) and a MongoDB collection
// ([MongoStore]). [Open] builds the backend selected in the configuration
// and reports hits, misses and writes to [observability.Store].
package store

import (
	"context"

	"github.com/Draaaaaaven/ecad/pkg/config"
	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/observability"
)

// Store is a key/value store for archive bytes. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the value under key. A missing key is not an error: it
	// returns (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Open creates the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendFile:
		s, err = NewFileStore(cfg.Dir)
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendRedis:
		s, err = NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	case config.BackendMongo:
		s, err = NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	}
	if err != nil {
		return nil, err
	}
	return &observed{Store: s, backend: cfg.Backend}, nil
}

// observed reports store traffic to the registered hooks.
type observed struct {
	Store
	backend string
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Store.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Store().OnStoreHit(ctx, o.backend)
		} else {
			observability.Store().OnStoreMiss(ctx, o.backend)
		}
	}
	return data, ok, err
}

func (o *observed) Put(ctx context.Context, key string, data []byte) error {
	if err := o.Store.Put(ctx, key, data); err != nil {
		return err
	}
	observability.Store().OnStorePut(ctx, o.backend, len(data))
	return nil
}

func ioError(err error, op, key string) error {
	return errors.Wrap(errors.ErrCodeIO, err, "%s %s", op, key)
}
