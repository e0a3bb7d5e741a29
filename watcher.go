package fileenv

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Resolvable is satisfied by Resolver and Restricted.
type Resolvable interface {
	Resolve() (Mapping, error)
	pointerPaths() []string
}

// Watcher re-resolves when a file referenced by a pointer entry changes and
// invokes a callback with the fresh mapping. It watches the parent
// directories of the referenced files rather than the files themselves, so
// an atomic rename into place (how Kubernetes rotates mounted secrets) is
// observed too.
type Watcher struct {
	resolver Resolvable
	onChange func(Mapping)
	logger   *zap.Logger
	limiter  *rate.Limiter
	fsw      *fsnotify.Watcher

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	current Mapping
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithWatchLogger attaches a logger for watch events and re-resolution
// failures.
func WithWatchLogger(logger *zap.Logger) WatchOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMinInterval sets the minimum delay between re-resolutions, collapsing
// bursts of filesystem events into a single pass. The default is one second.
func WithMinInterval(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// Watch resolves once, starts watching the directories containing every
// referenced file, and invokes onChange whenever a later resolution produces
// a different mapping. A failed resolution while watching is logged and the
// previous mapping stands; a failed initial resolution is returned here.
func Watch(r Resolvable, onChange func(Mapping), opts ...WatchOption) (*Watcher, error) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		resolver: r,
		onChange: onChange,
		logger:   zap.NewNop(),
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(w)
	}

	initial, err := r.Resolve()
	if err != nil {
		cancel()
		return nil, err
	}
	w.current = initial

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("start watcher: %w", err)
	}
	w.fsw = fsw

	dirs := make(map[string]struct{})
	for _, path := range r.pointerPaths() {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			cancel()
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	go w.run()
	return w, nil
}

// Mapping returns the most recently resolved mapping.
func (w *Watcher) Mapping() Mapping {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Close stops watching. It is safe to call after a callback has fired.
func (w *Watcher) Close() error {
	w.cancel()
	return w.fsw.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevantOp(event.Op) {
				continue
			}
			if err := w.limiter.Wait(w.ctx); err != nil {
				return
			}
			drainEvents(w.fsw.Events)
			w.reresolve()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("filesystem watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) reresolve() {
	next, err := w.resolver.Resolve()
	if err != nil {
		w.logger.Warn("re-resolution failed, keeping previous mapping", zap.Error(err))
		return
	}

	w.mu.Lock()
	same := next.Profile == w.current.Profile && maps.Equal(next.Values, w.current.Values)
	if !same {
		w.current = next
	}
	w.mu.Unlock()

	if same {
		return
	}
	w.logger.Debug("mapping changed", zap.Int("keys", len(next.Values)))
	if w.onChange != nil {
		w.onChange(next)
	}
}

func relevantOp(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) ||
		op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}

// drainEvents empties pending events accumulated while rate limited; the
// single re-resolution that follows observes their combined effect.
func drainEvents(ch <-chan fsnotify.Event) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
