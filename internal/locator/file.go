package locator

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/twinview/internal/log"
	"github.com/zjrosen/twinview/internal/watcher"
)

// registryFile is the on-disk layout of a view registry:
//
//	views:
//	  - name: Home
//	    path: /views/home.html
//	  - name: Person
//	    id: detail
//	    path: /views/person-detail.html
type registryFile struct {
	Views []Entry `yaml:"views"`
}

// LoadEntries reads and validates a registry file.
func LoadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: registry path comes from user config
	if err != nil {
		return nil, fmt.Errorf("reading view registry: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing view registry %s: %w", path, err)
	}
	if err := ValidateEntries(file.Views); err != nil {
		return nil, fmt.Errorf("invalid view registry %s: %w", path, err)
	}
	return file.Views, nil
}

// ValidateEntries checks every entry has a name and a path and that no
// (name, id) pair repeats.
func ValidateEntries(entries []Entry) error {
	seen := make(map[key]bool, len(entries))
	for i, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("view %d: name is required", i)
		}
		if e.Path == "" {
			return fmt.Errorf("view %d (%s): path is required", i, e.Name)
		}
		k := key{e.Name, e.ID}
		if seen[k] {
			return fmt.Errorf("view %d (%s): duplicate entry for id %q", i, e.Name, e.ID)
		}
		seen[k] = true
	}
	return nil
}

// WriteEntries writes entries in registry file layout.
func WriteEntries(path string, entries []Entry) error {
	data, err := yaml.Marshal(registryFile{Views: entries})
	if err != nil {
		return fmt.Errorf("encoding view registry: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing view registry: %w", err)
	}
	return nil
}

// FileRegistry is a Registry loaded from a YAML file, optionally kept in
// sync with it while Watch is running.
type FileRegistry struct {
	*Registry
	path     string
	mu       sync.Mutex
	entries  []Entry
	watcher  *watcher.Watcher
	onReload []func()
}

// OpenFile loads the registry at path.
func OpenFile(path string) (*FileRegistry, error) {
	entries, err := LoadEntries(path)
	if err != nil {
		return nil, err
	}
	log.Info(log.CatLocator, "view registry loaded", "path", path, "views", len(entries))
	return &FileRegistry{Registry: NewRegistry(entries...), path: path, entries: entries}, nil
}

// Entries returns the entries of the last successful load, in file order.
func (r *FileRegistry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Path returns the file backing the registry.
func (r *FileRegistry) Path() string { return r.path }

// OnReload registers fn to run after every successful reload.
// Must be called before Watch.
func (r *FileRegistry) OnReload(fn func()) {
	r.onReload = append(r.onReload, fn)
}

// Reload re-reads the file. On error the current mapping is kept.
func (r *FileRegistry) Reload() error {
	entries, err := LoadEntries(r.path)
	if err != nil {
		return err
	}
	r.Replace(entries)
	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	for _, fn := range r.onReload {
		fn()
	}
	log.Info(log.CatLocator, "view registry reloaded", "path", r.path, "views", len(entries))
	return nil
}

// Watch reloads the registry whenever its file changes, until Close.
func (r *FileRegistry) Watch(cfg watcher.Config) error {
	if r.watcher != nil {
		return errors.New("view registry already watched")
	}
	cfg.Path = r.path
	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}
	err = w.Start(func() {
		if err := r.Reload(); err != nil {
			log.ErrorErr(log.CatLocator, "view registry reload failed, keeping previous views", err, "path", r.path)
		}
	})
	if err != nil {
		_ = w.Stop()
		return err
	}
	r.watcher = w
	return nil
}

// Close stops watching. Safe to call when Watch was never started.
func (r *FileRegistry) Close() error {
	if r.watcher == nil {
		return nil
	}
	err := r.watcher.Stop()
	r.watcher = nil
	return err
}
