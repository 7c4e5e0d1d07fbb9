// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about hierarchy flattening, archive encoding and store
// access.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Engine().OnFlattenStart(ctx, cell, cellCount)
//	// ... flatten ...
//	observability.Engine().OnFlattenComplete(ctx, cell, primitiveCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from layout database algorithms.
type EngineHooks interface {
	// Flatten events
	OnFlattenStart(ctx context.Context, cell string, cellCount int)
	OnFlattenComplete(ctx context.Context, cell string, primitiveCount int, duration time.Duration, err error)

	// Metal fraction events
	OnMetalFractionComplete(ctx context.Context, layout string, layers int, duration time.Duration, err error)
}

// =============================================================================
// Archive Hooks
// =============================================================================

// ArchiveHooks receives events from database persistence.
type ArchiveHooks interface {
	// OnEncode records a database written in the given format.
	OnEncode(ctx context.Context, format string, size int, duration time.Duration, err error)

	// OnDecode records a database read in the given format.
	OnDecode(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from archive store operations.
type StoreHooks interface {
	// OnStoreHit records a successful lookup.
	OnStoreHit(ctx context.Context, backend string)

	// OnStoreMiss records a lookup for a missing key.
	OnStoreMiss(ctx context.Context, backend string)

	// OnStorePut records a write.
	OnStorePut(ctx context.Context, backend string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnFlattenStart(context.Context, string, int) {}
func (NoopEngineHooks) OnFlattenComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopEngineHooks) OnMetalFractionComplete(context.Context, string, int, time.Duration, error) {
}

// NoopArchiveHooks is a no-op implementation of ArchiveHooks.
type NoopArchiveHooks struct{}

func (NoopArchiveHooks) OnEncode(context.Context, string, int, time.Duration, error) {}
func (NoopArchiveHooks) OnDecode(context.Context, string, int, time.Duration, error) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreHit(context.Context, string)      {}
func (NoopStoreHooks) OnStoreMiss(context.Context, string)     {}
func (NoopStoreHooks) OnStorePut(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks  EngineHooks  = NoopEngineHooks{}
	archiveHooks ArchiveHooks = NoopArchiveHooks{}
	storeHooks   StoreHooks   = NoopStoreHooks{}
	hooksMu      sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any database operations.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetArchiveHooks registers custom archive hooks.
func SetArchiveHooks(h ArchiveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		archiveHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Archive returns the registered archive hooks.
func Archive() ArchiveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return archiveHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	archiveHooks = NoopArchiveHooks{}
	storeHooks = NoopStoreHooks{}
}
