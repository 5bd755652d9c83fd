package playerbar

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/riptide/internal/playback"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{59 * time.Second, "0:59"},
		{83 * time.Second, "1:23"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	bar := ansi.Strip(RenderProgressBar(30*time.Second, time.Minute, 31, playSymbol))

	assert.True(t, strings.HasPrefix(bar, "▶  0:30  "))
	assert.True(t, strings.HasSuffix(bar, "  1:00"))
	assert.Equal(t, 31, lipgloss.Width(bar))
	assert.Equal(t, strings.Count(bar, filledBlock), strings.Count(bar, emptyBlock))
}

func TestRenderProgressBar_Narrow(t *testing.T) {
	bar := RenderProgressBar(5*time.Second, 10*time.Second, 12, pauseSymbol)
	assert.Equal(t, "⏸  0:05 / 0:10", bar)
}

func TestRenderProgressBar_PastEnd(t *testing.T) {
	bar := ansi.Strip(RenderProgressBar(2*time.Minute, time.Minute, 30, playSymbol))
	assert.NotContains(t, bar, emptyBlock)
}

func TestRenderVolume(t *testing.T) {
	assert.Equal(t, "mute", ansi.Strip(RenderVolume(0)))
	assert.Equal(t, "vol  70%", ansi.Strip(RenderVolume(0.7)))
	assert.Equal(t, "vol 100%", ansi.Strip(RenderVolume(1)))
}

func TestRenderModes(t *testing.T) {
	assert.Empty(t, ansi.Strip(RenderModes(playback.RepeatNone, false)))
	assert.Equal(t, "[all] [shuf]", ansi.Strip(RenderModes(playback.RepeatAll, true)))
	assert.Equal(t, "[one]", ansi.Strip(RenderModes(playback.RepeatOne, false)))
}

func TestNewState(t *testing.T) {
	ps := playback.PlaybackState{
		Playing:  true,
		Position: 12.5,
		Duration: 180,
		Volume:   0.5,
		Status:   playback.StatusPlaying,
		Current: &playback.QueueItem{
			ID:      "1",
			Name:    "Song",
			Artists: []string{"A", "B"},
			Album:   "Record",
		},
		QueueIndex: 0,
		QueueLen:   3,
	}

	s := NewState(ps, ModeExpanded)

	assert.Equal(t, "Song", s.Title)
	assert.Equal(t, "A, B", s.Artist)
	assert.Equal(t, "Record", s.Album)
	assert.Equal(t, 12500*time.Millisecond, s.Position)
	assert.Equal(t, 3*time.Minute, s.Duration)
	assert.True(t, s.HasTrack())
}

func TestNewState_FallsBackToSource(t *testing.T) {
	s := NewState(playback.PlaybackState{
		Current: &playback.QueueItem{Source: "/music/x.flac"},
	}, ModeCompact)
	assert.Equal(t, "/music/x.flac", s.Title)
}

func TestRender_Height(t *testing.T) {
	for _, mode := range []DisplayMode{ModeCompact, ModeExpanded} {
		s := State{Title: "Song", Artist: "Artist", Duration: time.Minute, DisplayMode: mode}
		out := Render(s, 60)
		assert.Equal(t, Height(mode), lipgloss.Height(out), "mode %d", mode)
		assert.Equal(t, 60, lipgloss.Width(out), "mode %d", mode)
	}
}

func TestRender_Idle(t *testing.T) {
	out := ansi.Strip(Render(State{}, 60))
	assert.Contains(t, out, "Nothing playing")
	assert.Contains(t, out, stopSymbol)
}

func TestRender_TruncatesLongTitle(t *testing.T) {
	s := State{Title: strings.Repeat("x", 200), Status: playback.StatusPlaying}
	out := Render(s, 50)
	for line := range strings.SplitSeq(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 50)
	}
	assert.Contains(t, ansi.Strip(out), "…")
}

func TestRender_ExpandedShowsMessage(t *testing.T) {
	s := State{
		Title:       "Song",
		Message:     "play: file not found",
		DisplayMode: ModeExpanded,
		QueueIndex:  1,
		QueueLen:    4,
	}
	out := ansi.Strip(Render(s, 60))
	assert.Contains(t, out, "play: file not found")
	assert.Contains(t, out, "2/4")
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean", "hello", "hello"},
		{"control chars", "a\x00b\x1bc", "abc"},
		{"tab kept", "a\tb", "a\tb"},
		{"nbsp", "a\u00a0b", "a b"},
		{"invalid utf8", "a\xffb", "ab"},
		{"wide", "日本語", "日本語"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitize(tt.input); got != tt.want {
				t.Errorf("sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 5))
	assert.Equal(t, "hell…", truncate("hello world", 5))
	assert.Equal(t, "日…", truncate("日本語", 4))
	assert.Empty(t, truncate("hello", 0))
}

func TestRow(t *testing.T) {
	assert.Equal(t, "ab    cd", row("ab", "cd", 8))
	assert.Equal(t, "abc d", row("abc", "d", 3))
}

func TestDisplayMode_Toggle(t *testing.T) {
	assert.Equal(t, ModeExpanded, ModeCompact.Toggle())
	assert.Equal(t, ModeCompact, ModeExpanded.Toggle())
}
