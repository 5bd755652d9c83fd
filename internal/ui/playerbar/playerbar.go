// Package playerbar renders the now-playing bar of the terminal UI.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/riptide/internal/playback"
)

// DisplayMode controls the player bar appearance.
type DisplayMode int

const (
	ModeCompact  DisplayMode = iota // title row + progress row
	ModeExpanded                    // adds album, queue and status rows
)

// Toggle switches between compact and expanded.
func (m DisplayMode) Toggle() DisplayMode {
	if m == ModeExpanded {
		return ModeCompact
	}
	return ModeExpanded
}

// State holds everything needed to render the player bar.
type State struct {
	Status      playback.Status
	Title       string
	Artist      string
	Album       string
	Position    time.Duration
	Duration    time.Duration
	Volume      float64
	Repeat      playback.RepeatMode
	Shuffle     bool
	QueueIndex  int
	QueueLen    int
	Message     string // last error, shown in expanded mode
	DisplayMode DisplayMode
}

// Height returns the rendered height for mode, borders included.
func Height(mode DisplayMode) int {
	if mode == ModeExpanded {
		return 6
	}
	return 4
}

// NewState builds a State from a playback snapshot.
func NewState(ps playback.PlaybackState, mode DisplayMode) State {
	s := State{
		Status:      ps.Status,
		Position:    ps.Elapsed(),
		Duration:    ps.Length(),
		Volume:      ps.Volume,
		Repeat:      ps.Repeat,
		Shuffle:     ps.Shuffle,
		QueueIndex:  ps.QueueIndex,
		QueueLen:    ps.QueueLen,
		DisplayMode: mode,
	}
	if ps.Current != nil {
		s.Title = ps.Current.Name
		if s.Title == "" {
			s.Title = ps.Current.Source
		}
		s.Artist = ps.Current.ArtistLine()
		s.Album = ps.Current.Album
	}
	return s
}

// HasTrack reports whether a track is loaded.
func (s State) HasTrack() bool {
	return s.Title != ""
}

// Render draws the bar at the given outer width.
func Render(s State, width int) string {
	inner := max(width-4, 10)

	var lines []string
	if !s.HasTrack() {
		lines = append(lines, metaStyle().Render(truncate("Nothing playing", inner)))
	} else {
		lines = append(lines, renderTitle(s, inner))
	}
	if s.DisplayMode == ModeExpanded {
		lines = append(lines, renderAlbum(s, inner))
	}
	lines = append(lines, renderProgress(s, inner))
	if s.DisplayMode == ModeExpanded {
		lines = append(lines, renderStatus(s, inner))
	}

	return barStyle().
		Width(inner + 2).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func renderTitle(s State, width int) string {
	right := RenderModes(s.Repeat, s.Shuffle) + "  " + RenderVolume(s.Volume)
	avail := width - lipgloss.Width(right) - 1

	title := titleStyle().Render(sanitize(s.Title))
	if s.Artist != "" {
		title += artistStyle().Render(" · " + sanitize(s.Artist))
	}
	return row(truncateStyled(title, avail), right, width)
}

func renderAlbum(s State, width int) string {
	album := s.Album
	if album == "" {
		album = "-"
	}
	queue := ""
	if s.QueueLen > 0 {
		pos := "-"
		if s.QueueIndex >= 0 {
			pos = fmt.Sprint(s.QueueIndex + 1)
		}
		queue = fmt.Sprintf("%s/%d", pos, s.QueueLen)
	}
	left := truncate(album, width-lipgloss.Width(queue)-1)
	return row(artistStyle().Render(left), metaStyle().Render(queue), width)
}

func renderProgress(s State, width int) string {
	return progressTimeStyle().Render(
		RenderProgressBar(s.Position, s.Duration, width, statusSymbol(s.Status)),
	)
}

func renderStatus(s State, width int) string {
	if s.Message != "" {
		return errorStyle().Render(pad(truncate(s.Message, width), width))
	}
	return metaStyle().Render(pad(s.Status.String(), width))
}

func statusSymbol(st playback.Status) string {
	switch st {
	case playback.StatusPlaying:
		return playSymbol
	case playback.StatusPaused:
		return pauseSymbol
	case playback.StatusLoading:
		return loadingSymbol
	default:
		return stopSymbol
	}
}

// RenderModes shows repeat and shuffle flags, e.g. "[all] [shuf]".
func RenderModes(repeat playback.RepeatMode, shuffle bool) string {
	var parts []string
	switch repeat {
	case playback.RepeatAll:
		parts = append(parts, "[all]")
	case playback.RepeatOne:
		parts = append(parts, "[one]")
	}
	if shuffle {
		parts = append(parts, "[shuf]")
	}
	return metaStyle().Render(strings.Join(parts, " "))
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h, m, sec := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
