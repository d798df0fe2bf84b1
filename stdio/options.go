package stdio

import (
	"io"
	"log/slog"
)

// Option customizes a Transport.
type Option func(*Transport)

// WithIO sets the reader and writer for the transport.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(t *Transport) {
		if r != nil {
			t.r = r
		}
		if w != nil {
			t.w = w
		}
	}
}

// WithReader overrides the input stream.
func WithReader(r io.Reader) Option {
	return func(t *Transport) {
		if r != nil {
			t.r = r
		}
	}
}

// WithWriter overrides the output stream.
func WithWriter(w io.Writer) Option {
	return func(t *Transport) {
		if w != nil {
			t.w = w
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.l = l
		}
	}
}

// WithObserver sets the initial observer. See Transport.SetObserver.
func WithObserver(o Observer) Option {
	return func(t *Transport) { t.obs = o }
}

// WithMaxFrameSize caps the Content-Length a peer may declare. Larger frames
// are reported as ErrFrameTooLarge and their bodies discarded as they arrive.
// Zero disables the cap, in which case a peer that never completes a declared
// body holds it in memory indefinitely. Negative values are ignored.
func WithMaxFrameSize(n int) Option {
	return func(t *Transport) {
		if n >= 0 {
			t.maxFrame = n
		}
	}
}

// WithReadBufferSize sets the size of each read from the input stream.
// Non-positive values are ignored.
func WithReadBufferSize(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.readSize = n
		}
	}
}
