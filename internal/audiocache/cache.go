// Package audiocache keeps downloaded audio on disk, bounded by an entry count
// and evicted in least-recently-used order.
package audiocache

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/djherbis/times"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/llehouerou/riptide/internal/errmsg"
	"github.com/llehouerou/riptide/internal/logging"
	"github.com/llehouerou/riptide/internal/metrics"
)

const (
	audioExt   = ".audio"
	partSuffix = ".part"

	// DefaultMaxEntries is used when Options.MaxEntries is not positive.
	DefaultMaxEntries = 100
)

// Options configures a Cache.
type Options struct {
	Dir        string        // created if missing
	MaxEntries int           // default: DefaultMaxEntries
	Timeout    time.Duration // download timeout, default: DefaultTimeout
}

// Entry describes one cached file.
type Entry struct {
	ID           string
	Path         string
	LastAccessed time.Time
	Size         int64
}

// Stats summarises the cache contents.
type Stats struct {
	Entries int
	Bytes   int64
}

// Cache is a disk cache of audio files keyed by track id. Safe for concurrent use.
//
// Invariants, holding whenever no method is running:
//   - len(entries) <= max
//   - order holds exactly the ids of entries, least recently used first
type Cache struct {
	dir    string
	max    int
	dl     *Downloader
	logger *log.Logger

	mu      sync.Mutex
	entries map[string]*list.Element // value: *Entry
	order   *list.List
}

// New opens the cache directory and rebuilds the index from the files found there.
func New(opts Options, logger *log.Logger) (*Cache, error) {
	if opts.Dir == "" {
		opts.Dir = filepath.Join(os.TempDir(), "riptide_audio_cache")
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, errmsg.Wrap(errmsg.ErrIO, err)
	}

	c := &Cache{
		dir:     opts.Dir,
		max:     opts.MaxEntries,
		dl:      NewDownloader(opts.Timeout),
		logger:  logging.OrDiscard(logger).With("component", "audiocache"),
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}

	if err := c.recover(); err != nil {
		return nil, err
	}
	return c, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// MaxEntries returns the capacity.
func (c *Cache) MaxEntries() int { return c.max }

// Downloader returns the downloader used to fill the cache.
func (c *Cache) Downloader() *Downloader { return c.dl }

// Lookup returns the path of the cached file for id.
// A hit requires the file to still exist; an indexed entry whose file is gone
// is dropped and reported as a miss. Hits become most recently used.
func (c *Cache) Lookup(id string) (string, bool) {
	if validateID(id) != nil {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[id]
	if !ok {
		metrics.RecordCacheLookup(false)
		return "", false
	}

	e := el.Value.(*Entry) //nolint:forcetypeassert // list holds only *Entry
	if _, err := os.Stat(e.Path); err != nil {
		c.logger.Debug("dropping stale entry", "id", id, "err", err)
		c.unlinkLocked(el)
		metrics.SetCacheEntries(len(c.entries))
		metrics.RecordCacheLookup(false)
		return "", false
	}

	now := time.Now()
	e.LastAccessed = now
	c.order.MoveToBack(el)
	// Keep the file's atime in step so the next startup sees the same order.
	_ = os.Chtimes(e.Path, now, now) //nolint:errcheck // best-effort

	metrics.RecordCacheLookup(true)
	return e.Path, true
}

// Store downloads url and caches it under id, returning the cached path.
// Least recently used entries are evicted first so the new entry fits. On
// failure nothing is registered and no partial file is left behind.
func (c *Cache) Store(ctx context.Context, id, url string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}

	c.mu.Lock()
	if _, exists := c.entries[id]; !exists {
		c.evictLocked(1)
	}
	c.mu.Unlock()

	final := c.pathFor(id)
	tmp := final + "." + uuid.NewString() + partSuffix

	start := time.Now()
	n, err := c.dl.ToFile(ctx, url, tmp)
	if err == nil {
		if renameErr := os.Rename(tmp, final); renameErr != nil {
			err = errmsg.Wrap(errmsg.ErrIO, renameErr)
		}
	}
	metrics.RecordCacheStore(n, time.Since(start), err == nil)
	if err != nil {
		_ = os.Remove(tmp) //nolint:errcheck // may not exist
		c.logger.Warn("cache fill failed", "id", id, "err", err)
		return "", fmt.Errorf("store %s: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if el, ok := c.entries[id]; ok {
		e := el.Value.(*Entry) //nolint:forcetypeassert // list holds only *Entry
		e.Size = n
		e.LastAccessed = now
		c.order.MoveToBack(el)
	} else {
		// Concurrent stores may have filled the cache while we downloaded.
		c.evictLocked(1)
		c.entries[id] = c.order.PushBack(&Entry{
			ID:           id,
			Path:         final,
			LastAccessed: now,
			Size:         n,
		})
	}
	metrics.SetCacheEntries(len(c.entries))

	c.logger.Debug("cached", "id", id, "size", humanize.Bytes(uint64(n)), "took", time.Since(start)) //nolint:gosec // n >= 0
	return final, nil
}

// Fetch returns the cached path for id, downloading url on a miss.
// hit reports whether the file was already cached.
func (c *Cache) Fetch(ctx context.Context, id, url string) (path string, hit bool, err error) {
	if path, ok := c.Lookup(id); ok {
		return path, true, nil
	}
	path, err = c.Store(ctx, id, url)
	return path, false, err
}

// Remove drops id from the cache and deletes its file.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[id]
	if !ok {
		return
	}
	c.deleteLocked(el)
	metrics.SetCacheEntries(len(c.entries))
}

// Stats returns the entry count and the total size of indexed files.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Entries: len(c.entries)}
	for el := c.order.Front(); el != nil; el = el.Next() {
		s.Bytes += el.Value.(*Entry).Size //nolint:forcetypeassert // list holds only *Entry
	}
	return s
}

// Entries returns a snapshot of the index, least recently used first.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, 0, len(c.entries))
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, *el.Value.(*Entry)) //nolint:forcetypeassert // list holds only *Entry
	}
	return out
}

// Clear deletes every cached file. Delete failures are logged, not returned;
// the index is emptied regardless.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*Entry) //nolint:forcetypeassert // list holds only *Entry
		if err := os.Remove(e.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("failed to delete cached file", "id", e.ID, "err", err)
		}
	}
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	metrics.SetCacheEntries(0)
}

// evictLocked removes least recently used entries until adding reserve more
// entries would stay within capacity.
func (c *Cache) evictLocked(reserve int) {
	for c.order.Len() > 0 && c.order.Len()+reserve > c.max {
		el := c.order.Front()
		e := el.Value.(*Entry) //nolint:forcetypeassert // list holds only *Entry
		c.deleteLocked(el)
		metrics.RecordCacheEviction()
		c.logger.Debug("evicted", "id", e.ID, "last_accessed", e.LastAccessed)
	}
	metrics.SetCacheEntries(len(c.entries))
}

// deleteLocked removes the file and the index entry. A file that cannot be
// deleted is left orphaned on disk.
func (c *Cache) deleteLocked(el *list.Element) {
	e := el.Value.(*Entry) //nolint:forcetypeassert // list holds only *Entry
	if err := os.Remove(e.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("failed to delete cached file", "op", errmsg.OpCacheEvict, "id", e.ID, "err", err)
	}
	c.unlinkLocked(el)
}

func (c *Cache) unlinkLocked(el *list.Element) {
	e := el.Value.(*Entry) //nolint:forcetypeassert // list holds only *Entry
	c.order.Remove(el)
	delete(c.entries, e.ID)
}

// recover rebuilds the index from the directory listing, oldest access first,
// then trims it to capacity.
func (c *Cache) recover() error {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return errmsg.Wrap(errmsg.ErrIO, err)
	}

	var found []*Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		path := filepath.Join(c.dir, name)

		// Leftover from an interrupted download.
		if strings.HasSuffix(name, partSuffix) {
			_ = os.Remove(path) //nolint:errcheck // best-effort cleanup
			continue
		}
		if filepath.Ext(name) != audioExt {
			continue
		}

		info, err := de.Info()
		if err != nil {
			continue
		}
		found = append(found, &Entry{
			ID:           strings.TrimSuffix(name, audioExt),
			Path:         path,
			LastAccessed: lastAccess(info),
			Size:         info.Size(),
		})
	}

	slices.SortStableFunc(found, func(a, b *Entry) int {
		return a.LastAccessed.Compare(b.LastAccessed)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range found {
		c.entries[e.ID] = c.order.PushBack(e)
	}
	c.evictLocked(0)

	c.logger.Info("cache loaded", "dir", c.dir, "entries", len(c.entries), "max", c.max)
	return nil
}

// lastAccess picks the best available timestamp: access, modification, birth,
// then the Unix epoch.
func lastAccess(info os.FileInfo) time.Time {
	ts := times.Get(info)
	if t := ts.AccessTime(); !t.IsZero() {
		return t
	}
	if t := ts.ModTime(); !t.IsZero() {
		return t
	}
	if ts.HasBirthTime() {
		if t := ts.BirthTime(); !t.IsZero() {
			return t
		}
	}
	return time.Unix(0, 0)
}

func (c *Cache) pathFor(id string) string {
	return filepath.Join(c.dir, id+audioExt)
}

// validateID rejects ids that would escape the cache directory.
func validateID(id string) error {
	if id == "" || id == "." || id == ".." || filepath.Base(id) != id || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", errmsg.ErrInvalidID, id)
	}
	return nil
}
