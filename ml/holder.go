package ml

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"phoneprice/metrics"
)

const defaultReloadDebounce = 200 * time.Millisecond

type loadedModel struct {
	model      Model
	generation uint64
}

// ModelHolder owns the long-lived model handle. Get loads the artifact on
// first use and returns the same model afterwards; Reload swaps in a fresh
// copy without interrupting callers holding the old one.
type ModelHolder struct {
	path     string
	logger   *zap.Logger
	load     func(string) (Model, error)
	debounce time.Duration

	mu          sync.Mutex
	generations uint64
	current     atomic.Pointer[loadedModel]
}

func NewModelHolder(path string, logger *zap.Logger) *ModelHolder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelHolder{
		path:     path,
		logger:   logger,
		load:     LoadModel,
		debounce: defaultReloadDebounce,
	}
}

func (h *ModelHolder) Path() string {
	return h.path
}

// Get returns the loaded model, loading it if nobody has yet. Concurrent
// first calls share a single load.
func (h *ModelHolder) Get() (Model, error) {
	model, _, err := h.Current()
	return model, err
}

// Current is Get plus the generation of the returned model. Every successful
// load or reload starts a new generation.
func (h *ModelHolder) Current() (Model, uint64, error) {
	if loaded := h.current.Load(); loaded != nil {
		return loaded.model, loaded.generation, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if loaded := h.current.Load(); loaded != nil {
		return loaded.model, loaded.generation, nil
	}
	model, err := h.load(h.path)
	if err != nil {
		return nil, 0, err
	}
	loaded := h.store(model)
	h.logger.Info("model loaded", zap.String("path", h.path), zap.String("schema", SchemaVersion))
	return loaded.model, loaded.generation, nil
}

// store publishes model under the next generation. Callers hold h.mu.
func (h *ModelHolder) store(model Model) *loadedModel {
	h.generations++
	loaded := &loadedModel{model: model, generation: h.generations}
	h.current.Store(loaded)
	return loaded
}

// Reload reads the artifact again. On failure the previous model stays in
// service and the error is returned.
func (h *ModelHolder) Reload() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	model, err := h.load(h.path)
	if err != nil {
		metrics.ModelReloads.WithLabelValues("failure").Inc()
		h.logger.Warn("model reload failed, keeping previous model", zap.String("path", h.path), zap.Error(err))
		return err
	}
	loaded := h.store(model)
	metrics.ModelReloads.WithLabelValues("success").Inc()
	h.logger.Info("model reloaded", zap.String("path", h.path), zap.Uint64("generation", loaded.generation))
	return nil
}

// Watch reloads the model whenever the artifact file is written or replaced,
// until ctx is cancelled.
func (h *ModelHolder) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory so atomic rename-into-place is seen too.
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		watcher.Close()
		return err
	}
	go h.watchLoop(ctx, watcher)
	return nil
}

func (h *ModelHolder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	target := filepath.Clean(h.path)
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.After(h.debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Warn("model watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			_ = h.Reload()
		}
	}
}
