package errmsg

import (
	"errors"
	"fmt"
)

// Error kinds. Failures are wrapped around one of these with %w so callers
// can branch with errors.Is.
var (
	ErrNetwork           = errors.New("network error")
	ErrIO                = errors.New("i/o error")
	ErrDecode            = errors.New("decode error")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrChannelClosed     = errors.New("player is shut down")
	ErrMissingSource     = errors.New("no usable audio source")
	ErrInvalidID         = errors.New("invalid track id")
	ErrNoTrack           = errors.New("no track loaded")
)

// Wrap attaches kind to err, keeping err's message.
// Returns nil when err is nil, and err unchanged when it already matches kind.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Kind returns the error kind err belongs to, or nil if it matches none.
func Kind(err error) error {
	for _, k := range []error{
		ErrNetwork, ErrIO, ErrDecode, ErrUnsupportedFormat,
		ErrChannelClosed, ErrMissingSource, ErrInvalidID, ErrNoTrack,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
