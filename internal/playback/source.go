package playback

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/riptide/internal/audiocache"
	"github.com/llehouerou/riptide/internal/decode"
	"github.com/llehouerou/riptide/internal/errmsg"
)

// sourceKind classifies a QueueItem.Source.
type sourceKind int

const (
	sourceNone sourceKind = iota
	sourceLocal
	sourceRemote
)

func classify(src string) (sourceKind, string) {
	switch {
	case src == "":
		return sourceNone, ""
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return sourceRemote, src
	case strings.HasPrefix(src, "file://"):
		u, err := url.Parse(src)
		if err != nil || u.Path == "" {
			return sourceNone, ""
		}
		return sourceLocal, u.Path
	default:
		return sourceLocal, src
	}
}

// fetcher loads the raw bytes of an item.
type fetcher struct {
	cache  *audiocache.Cache // nil: remote sources are always downloaded
	dl     *audiocache.Downloader
	logger *log.Logger
}

// fetch returns the item's bytes and whether they came from the disk cache.
// A cache failure is logged and the URL is downloaded directly instead.
func (f *fetcher) fetch(ctx context.Context, item QueueItem) ([]byte, bool, error) {
	kind, loc := classify(item.Source)
	switch kind {
	case sourceLocal:
		data, err := os.ReadFile(loc)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", errmsg.ErrIO, err)
		}
		return data, false, nil

	case sourceRemote:
		if f.cache != nil {
			data, err := f.fromCache(ctx, item.ID, loc)
			if err == nil {
				return data, true, nil
			}
			f.logger.Warn("cache unavailable, downloading directly", "id", item.ID, "err", err)
		}
		data, err := f.dl.Bytes(ctx, loc)
		if err != nil {
			return nil, false, err
		}
		return data, false, nil

	default:
		return nil, false, fmt.Errorf("%w: item %q", errmsg.ErrMissingSource, item.ID)
	}
}

func (f *fetcher) fromCache(ctx context.Context, id, loc string) ([]byte, error) {
	path, hit, err := f.cache.Fetch(ctx, id, loc)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		f.cache.Remove(id)
		return nil, fmt.Errorf("%w: %w", errmsg.ErrIO, err)
	}
	f.logger.Debug("audio from cache", "id", id, "hit", hit)
	return data, nil
}

// download fetches a remote item without touching the cache.
func (f *fetcher) download(ctx context.Context, item QueueItem) ([]byte, error) {
	kind, loc := classify(item.Source)
	if kind != sourceRemote {
		return nil, fmt.Errorf("%w: item %q is not remote", errmsg.ErrMissingSource, item.ID)
	}
	return f.dl.Bytes(ctx, loc)
}

// evict drops a cached copy that turned out to be unusable.
func (f *fetcher) evict(id string) {
	if f.cache != nil && id != "" {
		f.cache.Remove(id)
	}
}

// withTags fills the display fields the caller left empty from the
// buffer's embedded tags.
func withTags(item QueueItem, data []byte) QueueItem {
	if item.Name != "" && len(item.Artists) > 0 && item.Album != "" {
		return item
	}
	tags, err := decode.ReadTags(data)
	if err != nil {
		return item
	}
	if item.Name == "" {
		item.Name = tags.Title
	}
	if len(item.Artists) == 0 && tags.Artist != "" {
		item.Artists = []string{tags.Artist}
	}
	if item.Album == "" {
		item.Album = tags.Album
	}
	return item
}
