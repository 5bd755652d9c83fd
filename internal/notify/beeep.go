package notify

import "github.com/gen2brain/beeep"

// beeepNotifier goes through the platform's native notification tool.
// It has no notification IDs, so Close is a no-op.
type beeepNotifier struct{}

func newBeeep() Notifier {
	beeep.AppName = AppName
	return beeepNotifier{}
}

func (beeepNotifier) Notify(n Notification) (uint32, error) {
	var icon any
	if n.Icon != "" {
		icon = n.Icon
	}
	if n.Urgency == UrgencyCritical {
		return 0, beeep.Alert(n.Title, n.Body, icon)
	}
	return 0, beeep.Notify(n.Title, n.Body, icon)
}

func (beeepNotifier) Close(uint32) error { return nil }
