// Package worker holds the background side of the system: the snapshot
// mirror that keeps a secondary backend in sync with the primary one, and
// the event handler that drives it from the queue.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"infinance/internal/log"
	"infinance/internal/store"
)

// MirrorConfig holds configuration for the snapshot mirror.
type MirrorConfig struct {
	// ResyncInterval is how often a full sync runs even without events
	// (default: 15m).
	ResyncInterval time.Duration

	// Debounce is how long to wait after an event before syncing, so a
	// burst of changes collapses into one write (default: 2s).
	Debounce time.Duration
}

// DefaultMirrorConfig returns sensible defaults.
func DefaultMirrorConfig() MirrorConfig {
	return MirrorConfig{
		ResyncInterval: 15 * time.Minute,
		Debounce:       2 * time.Second,
	}
}

// Mirror copies the full ledger snapshot from a source backend to a
// target backend. The target is rewritten wholesale; it never feeds back
// into the source.
type Mirror struct {
	source store.SnapshotStore
	target store.SnapshotStore
	config MirrorConfig

	dirty chan struct{}

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMirror(source, target store.SnapshotStore, config MirrorConfig) *Mirror {
	if config.ResyncInterval <= 0 {
		config.ResyncInterval = DefaultMirrorConfig().ResyncInterval
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultMirrorConfig().Debounce
	}
	return &Mirror{
		source: source,
		target: target,
		config: config,
		dirty:  make(chan struct{}, 1),
	}
}

// MarkDirty schedules a sync. Safe to call from any goroutine; repeated
// calls before the sync runs collapse into one.
func (m *Mirror) MarkDirty() {
	select {
	case m.dirty <- struct{}{}:
	default:
	}
}

// Start begins the mirror loop. Returns an error if already running.
func (m *Mirror) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("mirror is already running")
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.mu.Unlock()

	go m.runLoop(ctx)

	slog.InfoContext(ctx, "Snapshot mirror started",
		"resync_interval", m.config.ResyncInterval,
		"debounce", m.config.Debounce)
	return nil
}

// Stop gracefully stops the mirror and waits for completion.
func (m *Mirror) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	close(m.stopCh)

	select {
	case <-m.doneCh:
		slog.InfoContext(ctx, "Snapshot mirror stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Snapshot mirror stop timed out")
		return ctx.Err()
	}

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
	return nil
}

// IsRunning returns whether the mirror loop is active.
func (m *Mirror) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Mirror) runLoop(ctx context.Context) {
	defer close(m.doneCh)

	resync := time.NewTicker(m.config.ResyncInterval)
	defer resync.Stop()

	// Full sync on startup so a fresh target catches up immediately.
	m.syncOnce(ctx)

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-m.dirty:
			// Let a burst of events settle before writing.
			timer := time.NewTimer(m.config.Debounce)
			select {
			case <-timer.C:
			case <-m.stopCh:
				timer.Stop()
				return
			case <-ctx.Done():
				timer.Stop()
				return
			}
			m.syncOnce(ctx)
		case <-resync.C:
			m.syncOnce(ctx)
		}
	}
}

// SyncOnce copies the current snapshot from source to target.
func (m *Mirror) SyncOnce(ctx context.Context) error {
	snap, err := m.source.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load source snapshot: %w", err)
	}
	if err := m.target.SaveAll(ctx, snap); err != nil {
		return fmt.Errorf("save target snapshot: %w", err)
	}
	return nil
}

func (m *Mirror) syncOnce(ctx context.Context) {
	start := time.Now()
	if err := m.SyncOnce(ctx); err != nil {
		slog.ErrorContext(ctx, "Snapshot mirror sync failed", log.FieldError, err)
		return
	}
	slog.InfoContext(ctx, "Snapshot mirrored", "duration", time.Since(start))
}
