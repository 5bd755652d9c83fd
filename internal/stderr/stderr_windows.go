//go:build windows

package stderr

import "sync"

// Capture is inert on Windows: the audio backends there do not write to
// the console.
type Capture struct {
	lines chan string
	once  sync.Once
}

func Start() (*Capture, error) {
	return &Capture{lines: make(chan string)}, nil
}

func (c *Capture) Lines() <-chan string { return c.lines }

func (c *Capture) Stop() {
	c.once.Do(func() { close(c.lines) })
}
