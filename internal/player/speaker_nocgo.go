//go:build linux && !cgo

package player

// NewSpeaker returns a silent output: the Linux audio backend needs cgo.
func NewSpeaker() Output {
	return NewNull()
}
