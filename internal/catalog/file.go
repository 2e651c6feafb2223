package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

// FileCatalog serves providers from a JSON file and reloads it after the file
// changes on disk. A file that fails to parse leaves the previous snapshot in
// place.
type FileCatalog struct {
	path    string
	logger  *logging.Logger
	watcher *fsnotify.Watcher

	mu        sync.RWMutex
	providers []Provider

	dirty atomic.Bool
}

// NewFileCatalog loads path and starts watching its directory. The initial
// load must succeed.
func NewFileCatalog(path string, logger *logging.Logger) (*FileCatalog, error) {
	if logger == nil {
		logger = logging.Default()
	}
	c := &FileCatalog{path: path, logger: logger}
	if err := c.Reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to create file watcher: %w", err)
	}
	// Watch the directory: editors and deploy tools often replace the file
	// with a rename, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("catalog: failed to watch %s: %w", filepath.Dir(path), err)
	}
	c.watcher = watcher
	return c, nil
}

// Watch consumes file events until ctx is done or Close is called.
func (c *FileCatalog) Watch(ctx context.Context) {
	target := filepath.Clean(c.path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				c.logger.Info("provider catalog changed", "path", event.Name, "op", event.Op.String())
				c.dirty.Store(true)
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("provider catalog watcher error", "error", err)
		}
	}
}

// Close stops the watcher.
func (c *FileCatalog) Close() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

// Providers returns the current snapshot, reloading first if the file changed.
func (c *FileCatalog) Providers(ctx context.Context) ([]Provider, error) {
	if c.dirty.CompareAndSwap(true, false) {
		if err := c.Reload(); err != nil {
			c.logger.Warn("provider catalog reload failed, keeping previous snapshot", "path", c.path, "error", err)
		}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.providers) == 0 {
		return nil, ErrEmptyCatalog
	}
	return clone(c.providers), nil
}

// Reload reads and validates the file, replacing the snapshot on success.
func (c *FileCatalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", c.path, err)
	}
	var doc struct {
		Providers []Provider `json:"providers"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("catalog: parse %s: %w", c.path, err)
	}
	if err := validate(doc.Providers); err != nil {
		return err
	}

	c.mu.Lock()
	c.providers = doc.Providers
	c.mu.Unlock()
	c.logger.Info("provider catalog loaded", "path", c.path, "providers", len(doc.Providers))
	return nil
}
