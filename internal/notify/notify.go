// Package notify sends desktop notifications.
package notify

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/riptide/internal/logging"
	"github.com/llehouerou/riptide/internal/playback"
)

// AppName is reported to the notification server.
const AppName = "riptide"

// Urgency represents notification priority levels as defined by freedesktop notifications.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Backends without IDs return 0.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
}

// Disabled returns a Notifier that drops everything.
func Disabled() Notifier { return noopNotifier{} }

type noopNotifier struct{}

func (noopNotifier) Notify(Notification) (uint32, error) { return 0, nil }
func (noopNotifier) Close(uint32) error                  { return nil }

// NowPlaying announces track changes, replacing its previous notification.
type NowPlaying struct {
	n      Notifier
	logger *log.Logger
	lastID uint32
}

// NewNowPlaying wraps n.
func NewNowPlaying(n Notifier, logger *log.Logger) *NowPlaying {
	return &NowPlaying{n: n, logger: logging.OrDiscard(logger)}
}

// Announce shows item. A nil item closes the last notification.
func (p *NowPlaying) Announce(item *playback.QueueItem) {
	if item == nil {
		if p.lastID != 0 {
			_ = p.n.Close(p.lastID)
			p.lastID = 0
		}
		return
	}

	id, err := p.n.Notify(Message(item, p.lastID))
	if err != nil {
		p.logger.Warn("notification failed", "err", err)
		return
	}
	p.lastID = id
}

// Message builds the now-playing notification for item.
func Message(item *playback.QueueItem, replaces uint32) Notification {
	title := item.Name
	if title == "" {
		title = item.Source
	}
	var body []string
	if a := item.ArtistLine(); a != "" {
		body = append(body, a)
	}
	if item.Album != "" {
		body = append(body, item.Album)
	}
	return Notification{
		Title:      title,
		Body:       strings.Join(body, " - "),
		Timeout:    5000,
		ReplacesID: replaces,
		Urgency:    UrgencyLow,
	}
}
