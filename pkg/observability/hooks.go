// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout runs, graph ingestion, and web requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetIngestHooks(&myIngestHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnRunStart(ctx, generation, nodeCount)
//	// ... iterate ...
//	observability.Layout().OnRunComplete(ctx, iterations, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the force-directed layout engine.
type LayoutHooks interface {
	// OnRunStart records the start of a layout run against one graph
	// generation.
	OnRunStart(ctx context.Context, generation uint64, nodeCount int)

	// OnIteration records one completed iteration of a run.
	OnIteration(ctx context.Context, iteration, total int)

	// OnRunComplete records a run that performed its full iteration budget.
	OnRunComplete(ctx context.Context, iterations int, duration time.Duration)

	// OnRunAborted records a run that stopped early: superseded by a graph
	// mutation or cancelled.
	OnRunAborted(ctx context.Context, reason error, duration time.Duration)
}

// =============================================================================
// Ingest Hooks
// =============================================================================

// IngestHooks receives events from the ingestion driver.
type IngestHooks interface {
	// OnGroupIngested records one group record materialized into the graph.
	OnGroupIngested(ctx context.Context, label string, members int)

	// OnRecordSkipped records a malformed record that was skipped.
	OnRecordSkipped(ctx context.Context, label string, err error)

	// OnReplayComplete records the end of a replay pass over a group sequence.
	OnReplayComplete(ctx context.Context, groups, skipped int, duration time.Duration)
}

// =============================================================================
// Web Hooks
// =============================================================================

// WebHooks receives events from the embedded web server.
type WebHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnRunStart(context.Context, uint64, int)            {}
func (NoopLayoutHooks) OnIteration(context.Context, int, int)              {}
func (NoopLayoutHooks) OnRunComplete(context.Context, int, time.Duration)  {}
func (NoopLayoutHooks) OnRunAborted(context.Context, error, time.Duration) {}

// NoopIngestHooks is a no-op implementation of IngestHooks.
type NoopIngestHooks struct{}

func (NoopIngestHooks) OnGroupIngested(context.Context, string, int)              {}
func (NoopIngestHooks) OnRecordSkipped(context.Context, string, error)            {}
func (NoopIngestHooks) OnReplayComplete(context.Context, int, int, time.Duration) {}

// NoopWebHooks is a no-op implementation of WebHooks.
type NoopWebHooks struct{}

func (NoopWebHooks) OnRequest(context.Context, string, string)                      {}
func (NoopWebHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	ingestHooks IngestHooks = NoopIngestHooks{}
	webHooks    WebHooks    = NoopWebHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any layout runs.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetIngestHooks registers custom ingest hooks.
// This should be called once at application startup before any replay.
func SetIngestHooks(h IngestHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		ingestHooks = h
	}
}

// SetWebHooks registers custom web hooks.
// This should be called once at application startup before serving.
func SetWebHooks(h WebHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		webHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Ingest returns the registered ingest hooks.
func Ingest() IngestHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return ingestHooks
}

// Web returns the registered web hooks.
func Web() WebHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return webHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	ingestHooks = NoopIngestHooks{}
	webHooks = NoopWebHooks{}
}
