package main

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/llehouerou/riptide/internal/logging"
	"github.com/llehouerou/riptide/internal/notify"
	"github.com/llehouerou/riptide/internal/playback"
	"github.com/llehouerou/riptide/internal/stderr"
	"github.com/llehouerou/riptide/internal/ui/playerbar"
)

const (
	seekStep   = 5 * time.Second
	volumeStep = 0.05
)

var (
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

const helpText = "space pause · ←/→ seek · n/p next/prev · +/- volume · r repeat · s shuffle · x stop · v view · q quit"

type eventMsg struct{ ev playback.Event }

type eventsClosedMsg struct{}

type stderrMsg struct{ line string }

type model struct {
	player   *playback.Player
	sub      *playback.Subscription
	capture  *stderr.Capture
	announce *notify.NowPlaying
	logger   *log.Logger

	state   playback.PlaybackState
	mode    playerbar.DisplayMode
	message string
	width   int
}

func newModel(p *playback.Player, sub *playback.Subscription, logger *log.Logger) model {
	return model{
		player: p,
		sub:    sub,
		logger: logging.OrDiscard(logger),
		state:  playback.PlaybackState{QueueIndex: -1},
		width:  80,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.sub), m.watchStderr())
}

// waitForEvent delivers the next playback event as a message.
func waitForEvent(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-sub.Events:
			return eventMsg{ev: ev}
		case <-sub.Done:
			return eventsClosedMsg{}
		}
	}
}

func (m model) watchStderr() tea.Cmd {
	if m.capture == nil {
		return nil
	}
	lines := m.capture.Lines()
	return func() tea.Msg {
		line, ok := <-lines
		if !ok {
			return nil
		}
		return stderrMsg{line: line}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case eventMsg:
		m.apply(msg.ev)
		return m, waitForEvent(m.sub)

	case eventsClosedMsg:
		return m, tea.Quit

	case stderrMsg:
		m.logger.Warn("stderr", "line", msg.line)
		m.message = msg.line
		return m, m.watchStderr()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// apply folds an event into the displayed state.
func (m *model) apply(ev playback.Event) {
	switch ev := ev.(type) {
	case playback.StateChanged:
		m.state = ev.State
	case playback.TrackChanged:
		m.state.Current = ev.Item
		if ev.Item != nil {
			m.message = ""
		}
		if m.announce != nil {
			m.announce.Announce(ev.Item)
		}
	case playback.PositionUpdate:
		m.state.Position = ev.Position
	case playback.Error:
		m.message = ev.Error()
		m.logger.Warn("playback error", "op", ev.Op, "err", ev.Err)
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		err = m.player.TogglePause()
	case "n":
		err = m.player.NextTrack()
	case "p":
		err = m.player.PreviousTrack()
	case "left":
		err = m.player.SeekAsync(m.state.Elapsed() - seekStep)
	case "right":
		err = m.player.SeekAsync(m.state.Elapsed() + seekStep)
	case "+", "=":
		err = m.player.SetVolume(m.state.Volume + volumeStep)
	case "-":
		err = m.player.SetVolume(m.state.Volume - volumeStep)
	case "r":
		err = m.player.SetRepeatMode(m.state.Repeat.Next())
	case "s":
		err = m.player.ToggleShuffle()
	case "x":
		err = m.player.Stop()
	case "v":
		m.mode = m.mode.Toggle()
	}
	if err != nil {
		m.message = err.Error()
	}
	return m, nil
}

func (m model) View() string {
	bar := playerbar.NewState(m.state, m.mode)
	bar.Message = m.message

	var b strings.Builder
	b.WriteString(playerbar.Render(bar, m.width))
	b.WriteString("\n")
	if m.mode == playerbar.ModeCompact && m.message != "" {
		b.WriteString(messageStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(helpText))
	return b.String()
}
