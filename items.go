package main

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/llehouerou/riptide/internal/playback"
)

// itemsFromArgs turns command-line sources into queue items. Remote URLs get
// a stable id derived from the URL so repeated runs share cache entries;
// local files are keyed by path. Names stay empty so embedded tags win.
func itemsFromArgs(args []string) []playback.QueueItem {
	items := make([]playback.QueueItem, 0, len(args))
	for _, src := range args {
		item := playback.QueueItem{Source: src}
		if isRemote(src) {
			item.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(src)).String()
		} else if !strings.HasPrefix(src, "file://") {
			if abs, err := filepath.Abs(src); err == nil {
				item.Source = abs
			}
		}
		items = append(items, item)
	}
	return items
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
