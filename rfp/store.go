package rfp

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

//go:embed templates/*.json
var embeddedTemplates embed.FS

// FileStore resolves curated templates by category. Embedded defaults ship
// with the binary; a configured templates directory overlays them, and a
// watcher keeps the overlay fresh when files change on disk.
type FileStore struct {
	dir    string
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*Template // key → template
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithStoreLogger sets the structured logger.
func WithStoreLogger(logger *slog.Logger) FileStoreOption {
	return func(fs *FileStore) { fs.logger = logger }
}

// NewFileStore loads the embedded templates and overlays any <key>.json
// files found in dir. An empty dir means embedded templates only.
func NewFileStore(dir string, opts ...FileStoreOption) (*FileStore, error) {
	fs := &FileStore{
		dir:    dir,
		logger: slog.Default(),
		cache:  make(map[string]*Template),
	}
	for _, opt := range opts {
		opt(fs)
	}

	if err := fs.loadEmbedded(); err != nil {
		return nil, err
	}
	if dir != "" {
		fs.loadDir()
	}
	return fs, nil
}

func (fs *FileStore) loadEmbedded() error {
	entries, err := embeddedTemplates.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("read embedded templates: %w", err)
	}
	for _, entry := range entries {
		data, err := embeddedTemplates.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read embedded template %s: %w", entry.Name(), err)
		}
		var tmpl Template
		if err := json.Unmarshal(data, &tmpl); err != nil {
			return fmt.Errorf("parse embedded template %s: %w", entry.Name(), err)
		}
		key := strings.TrimSuffix(entry.Name(), ".json")
		fs.cache[key] = &tmpl
	}
	return nil
}

// loadDir overlays templates from the configured directory. Unreadable or
// malformed files are logged and skipped; the embedded default stays active.
func (fs *FileStore) loadDir() {
	for _, key := range categoryKeys {
		fs.loadFile(key)
	}
}

func (fs *FileStore) loadFile(key string) {
	path := filepath.Join(fs.dir, key+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var tmpl Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		fs.logger.Warn("Skipping malformed template file", "path", path, "error", err)
		return
	}
	fs.mu.Lock()
	fs.cache[key] = &tmpl
	fs.mu.Unlock()
	fs.logger.Info("Loaded template", "key", key, "path", path)
}

// Has reports whether a curated template exists for the category.
func (fs *FileStore) Has(category string) bool {
	key, ok := CategoryKey(category)
	if !ok {
		return false
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, found := fs.cache[key]
	return found
}

// Get returns the curated template for a category.
func (fs *FileStore) Get(category string) (*Template, bool) {
	key, ok := CategoryKey(category)
	if !ok {
		return nil, false
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	tmpl, found := fs.cache[key]
	return tmpl, found
}

// Watch reloads changed template files until ctx is cancelled. Events are
// debounced so editors that write in several steps trigger one reload.
func (fs *FileStore) Watch(ctx context.Context) error {
	if fs.dir == "" {
		return fmt.Errorf("no templates directory configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create template watcher: %w", err)
	}
	if err := watcher.Add(fs.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch templates dir %s: %w", fs.dir, err)
	}

	go fs.processEvents(ctx, watcher)
	fs.logger.Info("Template watcher started", "dir", fs.dir)
	return nil
}

func (fs *FileStore) processEvents(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	const debounce = 100 * time.Millisecond
	pending := make(map[string]struct{})
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				key := strings.TrimSuffix(filepath.Base(event.Name), ".json")
				pending[key] = struct{}{}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fs.logger.Error("Template watcher error", "error", err)

		case <-ticker.C:
			for key := range pending {
				fs.reload(key)
			}
			clear(pending)
		}
	}
}

// reload refreshes one key from disk. A removed overlay file falls back to
// the embedded default when one exists.
func (fs *FileStore) reload(key string) {
	path := filepath.Join(fs.dir, key+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := embeddedTemplates.ReadFile("templates/" + key + ".json")
		if err != nil {
			fs.mu.Lock()
			delete(fs.cache, key)
			fs.mu.Unlock()
			fs.logger.Info("Template removed", "key", key)
			return
		}
		var tmpl Template
		if err := json.Unmarshal(data, &tmpl); err != nil {
			return
		}
		fs.mu.Lock()
		fs.cache[key] = &tmpl
		fs.mu.Unlock()
		fs.logger.Info("Template reverted to embedded default", "key", key)
		return
	}
	fs.loadFile(key)
}
