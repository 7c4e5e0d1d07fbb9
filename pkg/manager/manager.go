// Package manager is the entry point for applications that work with several
// databases at once.
//
// A [Manager] is an explicit registry object, not a process-wide singleton:
// it owns the open databases by name, saves and loads them through a
// [store.Store], and offers convenience constructors for every entity of the
// data model. The CLI and the HTTP server each build one from the loaded
// configuration.
//
// The registry is safe for concurrent use. A database itself is not; use
// [Manager.Do] to serialize access to one database across goroutines.
package manager

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Draaaaaaven/ecad/pkg/archive"
	"github.com/Draaaaaaven/ecad/pkg/config"
	"github.com/Draaaaaaven/ecad/pkg/ecad"
	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/store"
)

// ErrShutdown is returned by every operation after Shutdown.
var ErrShutdown = errors.New(errors.ErrCodeInvalidState, "manager is shut down")

// Manager owns a set of named databases.
type Manager struct {
	cfg    config.Config
	store  store.Store
	logger *log.Logger

	mu     sync.RWMutex
	dbs    map[string]*entry
	order  []string
	closed bool
}

type entry struct {
	mu sync.Mutex
	db *ecad.Database
}

// New creates a manager. A nil store keeps archives in memory; a nil logger
// uses log.Default().
func New(cfg config.Config, st store.Store, logger *log.Logger) *Manager {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		cfg:    cfg,
		store:  st,
		logger: logger,
		dbs:    make(map[string]*entry),
	}
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() config.Config { return m.cfg }

// DefaultFormat returns the configured archive format, falling back to BIN.
func (m *Manager) DefaultFormat() archive.Format {
	f, err := archive.ParseFormat(m.cfg.DefaultFormat)
	if err != nil {
		return archive.FormatBIN
	}
	return f
}

// =============================================================================
// Registry
// =============================================================================

// CreateDatabase creates and registers an empty database.
func (m *Manager) CreateDatabase(name string) (*ecad.Database, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrShutdown
	}
	if _, ok := m.dbs[name]; ok {
		return nil, errors.New(errors.ErrCodeDuplicateName, "database %q already exists", name)
	}
	db := ecad.NewDatabase(name)
	if m.cfg.Threads > 0 {
		db.SetThreads(m.cfg.Threads)
	}
	m.dbs[name] = &entry{db: db}
	m.order = append(m.order, name)
	m.logger.Debug("created database", "db", name)
	return db, nil
}

// OpenDatabase returns the named database, or nil.
func (m *Manager) OpenDatabase(name string) *ecad.Database {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.dbs[name]; ok {
		return e.db
	}
	return nil
}

// RemoveDatabase unregisters the named database and reports whether it was
// registered.
func (m *Manager) RemoveDatabase(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dbs[name]; !ok {
		return false
	}
	delete(m.dbs, name)
	m.order = slices.DeleteFunc(m.order, func(n string) bool { return n == name })
	m.logger.Debug("removed database", "db", name)
	return true
}

// Databases returns the registered database names in creation order.
func (m *Manager) Databases() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order)
}

// Do runs fn with exclusive access to the named database.
func (m *Manager) Do(name string, fn func(*ecad.Database) error) error {
	m.mu.RLock()
	e, ok := m.dbs[name]
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return ErrShutdown
	}
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "database %q not found", name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.db)
}

// =============================================================================
// Persistence
// =============================================================================

// SaveDatabase encodes db in format f and stores it under key.
func (m *Manager) SaveDatabase(ctx context.Context, db *ecad.Database, key string, f archive.Format) error {
	if db == nil {
		return ecad.ErrNilDatabase
	}
	if m.isClosed() {
		return ErrShutdown
	}
	start := time.Now()
	var buf bytes.Buffer
	if err := db.Encode(ctx, &buf, f); err != nil {
		return err
	}
	if err := m.store.Put(ctx, key, buf.Bytes()); err != nil {
		return err
	}
	m.logger.Info("saved database", "db", db.Name(), "key", key, "format", f,
		"bytes", buf.Len(), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// LoadDatabase replaces the content of db with the archive stored under key.
// A missing key is NOT_FOUND. On any failure db is left unchanged.
func (m *Manager) LoadDatabase(ctx context.Context, db *ecad.Database, key string, f archive.Format) error {
	if db == nil {
		return ecad.ErrNilDatabase
	}
	if m.isClosed() {
		return ErrShutdown
	}
	start := time.Now()
	data, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "archive %q not found", key)
	}
	if err := db.Decode(ctx, bytes.NewReader(data), f); err != nil {
		return err
	}
	m.logger.Info("loaded database", "db", db.Name(), "key", key, "format", f,
		"cells", db.CellCollection().Size(), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// Shutdown unregisters every database and closes the store. With autoSave
// each database is first written to <autosave_dir>/<name><ext> in the default
// format. Shutdown is idempotent; later calls return nil.
func (m *Manager) Shutdown(ctx context.Context, autoSave bool) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	entries := make([]*entry, 0, len(m.order))
	for _, name := range m.order {
		entries = append(entries, m.dbs[name])
	}
	m.dbs, m.order = make(map[string]*entry), nil
	m.mu.Unlock()

	var firstErr error
	if autoSave {
		f := m.DefaultFormat()
		dir := m.cfg.AutosaveDir
		if dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				firstErr = errors.Wrap(errors.ErrCodeIO, err, "create %s", dir)
			}
		}
		for _, e := range entries {
			if firstErr != nil || ctx.Err() != nil {
				break
			}
			e.mu.Lock()
			path := filepath.Join(dir, e.db.Name()+f.Ext())
			err := e.db.Save(path, f)
			e.mu.Unlock()
			if err != nil {
				firstErr = err
				break
			}
			m.logger.Info("autosaved database", "db", e.db.Name(), "path", path)
		}
		if firstErr == nil {
			firstErr = ctx.Err()
		}
	}
	if err := m.store.Close(); err != nil && firstErr == nil {
		firstErr = errors.Wrap(errors.ErrCodeIO, err, "close store")
	}
	m.logger.Debug("manager shut down", "databases", len(entries), "autosave", autoSave)
	return firstErr
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
