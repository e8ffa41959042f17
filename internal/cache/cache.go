// Package cache stores per-file parse results in a two-tier cache: a bounded
// in-memory map plus a best-effort on-disk tier. Validity is keyed on the
// file's modification time (second resolution) and byte size; any mismatch
// means the file must be reparsed.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/codegraph-dev/codegraph/internal/extract"
	"github.com/codegraph-dev/codegraph/internal/graph"
)

// DefaultMaxMemoryEntries bounds the in-memory tier.
const DefaultMaxMemoryEntries = 1000

// Entry is the persisted unit: one file's parse result plus the metadata the
// validity check compares against. No schema version field exists; a format
// change simply invalidates old entries through decode failure.
type Entry struct {
	Nodes     []*graph.Node    `json:"nodes"`
	Edges     []graph.Edge     `json:"edges"`
	CallSites []graph.CallSite `json:"call_sites,omitempty"`
	Timestamp int64            `json:"timestamp"`
	FileSize  int64            `json:"file_size"`
}

// Cache is safe for concurrent use. The disk tier degrades silently to
// memory-only when the cache directory cannot be created or written.
type Cache struct {
	mu         sync.RWMutex
	memory     map[string]*Entry
	cacheDir   string // empty means memory-only
	maxEntries int
}

// New creates a cache backed by dir. A dir of "" selects the default
// location under the OS temp directory. Disk-tier init failure logs a
// warning and falls back to memory-only; it never fails the caller.
func New(dir string, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxMemoryEntries
	}
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "codegraph_cache")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("cache.init.err", "dir", dir, "err", err)
		dir = ""
	}
	return &Cache{
		memory:     make(map[string]*Entry, maxEntries),
		cacheDir:   dir,
		maxEntries: maxEntries,
	}
}

// InMemoryOnly creates a cache that never touches the filesystem.
func InMemoryOnly() *Cache {
	return &Cache{
		memory:     make(map[string]*Entry, DefaultMaxMemoryEntries),
		maxEntries: DefaultMaxMemoryEntries,
	}
}

// NeedsUpdate reports whether the file must be reparsed. Stat failure is the
// caller's problem; a missing or stale entry just means "yes".
func (c *Cache) NeedsUpdate(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	ts := info.ModTime().Unix()
	size := info.Size()

	c.mu.RLock()
	entry, ok := c.memory[path]
	c.mu.RUnlock()
	if ok {
		return entry.Timestamp != ts || entry.FileSize != size, nil
	}

	if cp := c.diskPath(path); cp != "" {
		if entry, err := c.loadFromDisk(cp); err == nil {
			return entry.Timestamp != ts || entry.FileSize != size, nil
		}
	}
	return true, nil
}

// Get returns the cached parse result for a path, if any. A disk hit is
// promoted into memory when capacity allows.
func (c *Cache) Get(path string) (*extract.Result, bool) {
	c.mu.RLock()
	entry, ok := c.memory[path]
	c.mu.RUnlock()
	if ok {
		return entry.result(), true
	}

	cp := c.diskPath(path)
	if cp == "" {
		return nil, false
	}
	entry, err := c.loadFromDisk(cp)
	if err != nil {
		return nil, false
	}

	c.mu.Lock()
	if len(c.memory) < c.maxEntries {
		c.memory[path] = entry
	}
	c.mu.Unlock()

	return entry.result(), true
}

// Store caches a parse result under the file's current metadata. Disk write
// failure is returned, but callers treat it as non-fatal.
func (c *Cache) Store(path string, res *extract.Result) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	entry := &Entry{
		Nodes:     res.Nodes,
		Edges:     res.Edges,
		CallSites: res.CallSites,
		Timestamp: info.ModTime().Unix(),
		FileSize:  info.Size(),
	}

	c.mu.Lock()
	if len(c.memory) >= c.maxEntries {
		// Evict one arbitrary entry to make room. Map iteration order makes
		// this approximate, not LRU.
		for k := range c.memory {
			delete(c.memory, k)
			break
		}
	}
	c.memory[path] = entry
	c.mu.Unlock()

	if cp := c.diskPath(path); cp != "" {
		if err := c.storeToDisk(cp, entry); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops both tiers.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.memory = make(map[string]*Entry, c.maxEntries)
	c.mu.Unlock()

	if c.cacheDir == "" {
		return nil
	}
	if err := os.RemoveAll(c.cacheDir); err != nil {
		return fmt.Errorf("clear disk cache: %w", err)
	}
	return os.MkdirAll(c.cacheDir, 0o755)
}

// Stats describes current cache occupancy.
type Stats struct {
	MemoryEntries  int
	DiskEntryCount int
}

// Stats counts entries in both tiers.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	mem := len(c.memory)
	c.mu.RUnlock()

	disk := 0
	if c.cacheDir != "" {
		if entries, err := os.ReadDir(c.cacheDir); err == nil {
			disk = len(entries)
		}
	}
	return Stats{MemoryEntries: mem, DiskEntryCount: disk}
}

// diskPath maps a source path to its cache file, or "" when memory-only.
// Entries are named by a hash of the absolute path so unrelated trees sharing
// one cache directory cannot collide on base names.
func (c *Cache) diskPath(path string) string {
	if c.cacheDir == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return filepath.Join(c.cacheDir, fmt.Sprintf("cache_%x.json", xxh3.HashString(abs)))
}

func (c *Cache) loadFromDisk(cachePath string) (*Entry, error) {
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry %s: %w", cachePath, err)
	}
	return &entry, nil
}

func (c *Cache) storeToDisk(cachePath string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := os.WriteFile(cachePath, data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (e *Entry) result() *extract.Result {
	return &extract.Result{Nodes: e.Nodes, Edges: e.Edges, CallSites: e.CallSites}
}
