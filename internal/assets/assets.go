// Package assets handles addressable byte sources and caching.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Faultbox/objimport/pkg/encoding"
)

// ErrIO is matched by every *IOError.
var ErrIO = errors.New("asset read failed")

// IOError reports a failed byte read for an asset path.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// Source reads the bytes addressed by a forward-slash path.
// A missing path must yield an error matching fs.ErrNotExist.
type Source interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// DirSource reads files below a directory on disk. Absolute paths are read
// as given.
type DirSource struct {
	Root string
}

// ReadFile implements Source.
func (d DirSource) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := filepath.FromSlash(p)
	if !filepath.IsAbs(name) {
		name = filepath.Join(d.Root, name)
	}
	return os.ReadFile(name)
}

// MapSource serves files from memory. Keys are normalised on lookup, so
// "a\\b.obj" and "a/b.obj" address the same entry.
type MapSource map[string][]byte

// ReadFile implements Source.
func (m MapSource) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if data, ok := m[p]; ok {
		return data, nil
	}
	want := encoding.NormalizePath(p)
	for key, data := range m {
		if encoding.NormalizePath(key) == want {
			return data, nil
		}
	}
	return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
}

// Paths returns the stored keys in sorted order.
func (m MapSource) Paths() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Manager searches a stack of sources and caches what it reads.
type Manager struct {
	sources []Source
	cache   *Cache
	mu      sync.RWMutex
}

// NewManager creates a new asset manager over the given sources.
func NewManager(sources ...Source) *Manager {
	return &Manager{
		sources: sources,
		cache:   NewCache(),
	}
}

// AddSource adds a source to the manager.
// Sources are searched in reverse order (last added = highest priority).
func (m *Manager) AddSource(src Source) {
	m.mu.Lock()
	m.sources = append(m.sources, src)
	m.mu.Unlock()
}

// AddDir adds a directory source after checking it exists.
func (m *Manager) AddDir(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("adding data root %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding data root %s: not a directory", root)
	}
	m.AddSource(DirSource{Root: root})
	return nil
}

// ReadFile loads an asset, consulting the cache first. Failures are
// reported as *IOError; a path no source has matches fs.ErrNotExist.
func (m *Manager) ReadFile(ctx context.Context, p string) ([]byte, error) {
	key := encoding.NormalizePath(p)
	if data, ok := m.cache.Get(key); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var lastErr error = fs.ErrNotExist
	for i := len(m.sources) - 1; i >= 0; i-- {
		data, err := m.sources[i].ReadFile(ctx, key)
		if err == nil {
			m.cache.Set(key, data)
			return data, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &IOError{Path: key, Err: ctxErr}
		}
		if !errors.Is(err, fs.ErrNotExist) {
			lastErr = err
		}
	}
	return nil, &IOError{Path: key, Err: lastErr}
}

// Cache returns the manager's byte cache.
func (m *Manager) Cache() *Cache { return m.cache }

// Close drops all sources and cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = nil
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
