// Package errmsg defines the engine's error kinds and formats them for display.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by component.
const (
	// Playback operations
	OpPlaybackStart  Op = "start playback"
	OpPlaybackSeek   Op = "seek"
	OpPlaybackPause  Op = "pause playback"
	OpPlaybackResume Op = "resume playback"
	OpPlaybackNext   Op = "skip to next track"
	OpPlaybackPrev   Op = "skip to previous track"
	OpPlaybackVolume Op = "set volume"

	// Source resolution
	OpSourceRead     Op = "read audio source"
	OpSourceDownload Op = "download audio source"

	// Cache operations
	OpCacheStore Op = "cache audio"
	OpCacheEvict Op = "evict cached audio"
	OpCacheClear Op = "clear audio cache"
	OpCacheLoad  Op = "load audio cache"

	// Decode operations
	OpDecodeOpen Op = "open audio stream"

	// Initialization
	OpInitialize Op = "initialize player"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
