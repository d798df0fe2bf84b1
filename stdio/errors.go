package stdio

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Start once the transport has been closed.
	ErrClosed = errors.New("stdio: transport closed")
	// ErrFrameTooLarge indicates a header declared a body larger than the
	// configured maximum frame size.
	ErrFrameTooLarge = errors.New("stdio: frame too large")
	// ErrMarshal wraps serialization failures on the send path.
	ErrMarshal = errors.New("stdio: marshal message")
)

// FrameError reports a frame that was received but could not be delivered.
// The frame's bytes have already been consumed; decoding continues with
// whatever follows.
type FrameError struct {
	// Offset is the stream offset of the first body byte.
	Offset int64
	// Length is the declared Content-Length (-1 when it did not fit an int).
	Length int
	Err    error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("stdio: frame at offset %d (content-length %d): %v", e.Offset, e.Length, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }
