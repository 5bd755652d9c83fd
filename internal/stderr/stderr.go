//go:build !windows

// Package stderr captures output that C libraries (ALSA, faad2) write
// straight to file descriptor 2, so it cannot tear through the TUI.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// Capture owns the redirected descriptor until Stop.
type Capture struct {
	orig  int
	r, w  *os.File
	lines chan string
	done  chan struct{}
	once  sync.Once
}

// Start redirects fd 2 into a pipe. Call it before the audio device is
// opened. On error stderr is left untouched.
func Start() (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := unix.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := unix.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		unix.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{
		orig:  orig,
		r:     r,
		w:     w,
		lines: make(chan string, 100),
		done:  make(chan struct{}),
	}
	go c.read()
	return c, nil
}

func (c *Capture) read() {
	defer close(c.done)
	defer close(c.lines)

	scanner := bufio.NewScanner(c.r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case c.lines <- line:
		default:
		}
	}
}

// Lines yields captured lines. Lines are dropped while the buffer is full.
// The channel closes after Stop.
func (c *Capture) Lines() <-chan string { return c.lines }

// Stop restores fd 2 and waits for the reader to drain.
func (c *Capture) Stop() {
	c.once.Do(func() {
		_ = unix.Dup2(c.orig, int(os.Stderr.Fd()))
		_ = unix.Close(c.orig)
		c.w.Close()
		<-c.done
		c.r.Close()
	})
}
