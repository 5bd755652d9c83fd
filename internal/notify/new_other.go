//go:build !linux

package notify

// New returns the native notifier for this platform.
func New() (Notifier, error) {
	return newBeeep(), nil
}
