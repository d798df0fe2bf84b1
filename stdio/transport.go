package stdio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
)

const (
	// DefaultMaxFrameSize bounds the body a peer may declare before the frame
	// is rejected with ErrFrameTooLarge.
	DefaultMaxFrameSize = 16 << 20
	// DefaultReadBufferSize is the size of each read from the input stream.
	DefaultReadBufferSize = 32 << 10
)

const (
	stateNew int32 = iota
	stateStarted
	stateClosed
)

// Observer receives transport events. Events are delivered from a single
// goroutine, in the order the underlying bytes arrived.
type Observer interface {
	// OnMessage is called once per decoded frame. msg is owned by the callee.
	OnMessage(msg json.RawMessage)
	// OnError is called for read errors and for frames that could not be
	// decoded. Frame errors are *FrameError values.
	OnError(err error)
	// OnClose is called once when the transport closes.
	OnClose()
}

// ObserverFuncs adapts plain functions to an Observer. Nil fields are ignored.
type ObserverFuncs struct {
	Message func(msg json.RawMessage)
	Error   func(err error)
	Close   func()
}

func (f ObserverFuncs) OnMessage(msg json.RawMessage) {
	if f.Message != nil {
		f.Message(msg)
	}
}

func (f ObserverFuncs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

func (f ObserverFuncs) OnClose() {
	if f.Close != nil {
		f.Close()
	}
}

// Transport reads Content-Length framed JSON messages from an io.Reader and
// writes them to an io.Writer. By default it uses os.Stdin and os.Stdout.
//
// The read and write directions are independent: Send may be called in any
// state, from any goroutine, while decoding only happens once Start has been
// called.
type Transport struct {
	r        io.Reader
	w        io.Writer
	l        *slog.Logger
	readSize int
	maxFrame int

	state atomic.Int32
	done  chan struct{}

	obsMu sync.RWMutex
	obs   Observer

	wmu sync.Mutex

	decMu sync.Mutex
	dec   decoder
}

// New constructs a Transport with defaults and applies options.
func New(opts ...Option) *Transport {
	t := &Transport{
		r:        os.Stdin,
		w:        os.Stdout,
		l:        slog.Default(),
		readSize: DefaultReadBufferSize,
		maxFrame: DefaultMaxFrameSize,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.dec = decoder{
		maxSize: t.maxFrame,
		frame:   t.deliver,
		fail:    func(err *FrameError) { t.observer().OnError(err) },
		halt:    func() bool { return t.state.Load() != stateStarted },
	}
	return t
}

// SetObserver replaces the observer. A nil observer discards events.
func (t *Transport) SetObserver(o Observer) {
	t.obsMu.Lock()
	t.obs = o
	t.obsMu.Unlock()
}

func (t *Transport) observer() Observer {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	if t.obs == nil {
		return ObserverFuncs{}
	}
	return t.obs
}

// Start begins reading from the input stream. Calling Start on a started
// transport is a no-op; calling it after Close returns ErrClosed. When ctx is
// canceled the transport is closed.
func (t *Transport) Start(ctx context.Context) error {
	if !t.state.CompareAndSwap(stateNew, stateStarted) {
		if t.state.Load() == stateClosed {
			return ErrClosed
		}
		return nil
	}
	t.l.Debug("stdio transport started", slog.Int("max_frame_bytes", t.maxFrame))

	go t.pump()
	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				_ = t.Close()
			case <-t.done:
			}
		}()
	}
	return nil
}

// pump is the only goroutine that decodes input read from the stream.
//
// Any read error ends the pump and closes the transport. An io.Reader that
// has returned an error makes no promise about later reads, so the stream is
// treated as dead; errors other than io.EOF are reported to OnError first.
// Malformed frames are not read errors and never close the transport.
func (t *Transport) pump() {
	buf := make([]byte, t.readSize)
	for {
		n, err := t.r.Read(buf)
		if n > 0 {
			if t.state.Load() != stateStarted {
				return
			}
			t.Feed(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && t.state.Load() == stateStarted {
				t.l.Debug("stdio read failed", slog.String("err", err.Error()))
				t.observer().OnError(err)
			}
			_ = t.Close()
			return
		}
	}
}

// Feed pushes a chunk of input bytes into the decoder, delivering every frame
// it completes before returning. It is what the reader goroutine calls for
// each read; hosts with their own event source may call it directly. Chunks
// fed before Start or after Close are ignored. Observer callbacks must not
// call Feed.
func (t *Transport) Feed(chunk []byte) {
	if t.state.Load() != stateStarted {
		return
	}
	t.decMu.Lock()
	defer t.decMu.Unlock()
	t.dec.write(chunk)
}

func (t *Transport) deliver(body []byte, offset int64) {
	var msg json.RawMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		t.observer().OnError(&FrameError{Offset: offset, Length: len(body), Err: err})
		return
	}
	t.observer().OnMessage(msg)
}

// Send serializes msg and writes it as a single frame. Marshal failures are
// returned wrapped in ErrMarshal and nothing is written.
func (t *Transport) Send(msg any) error {
	body, err := encodeMessage(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	return t.writeFrame(body)
}

func (t *Transport) writeFrame(body []byte) error {
	frame := make([]byte, 0, len(headerPrefix)+20+len(headerTerminator)+len(body))
	frame = append(frame, headerPrefix...)
	frame = strconv.AppendInt(frame, int64(len(body)), 10)
	frame = append(frame, headerTerminator...)
	frame = append(frame, body...)

	t.wmu.Lock()
	defer t.wmu.Unlock()
	if _, err := t.w.Write(frame); err != nil {
		return fmt.Errorf("stdio: write frame: %w", err)
	}
	if f, ok := t.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("stdio: flush: %w", err)
		}
	}
	return nil
}

// encodeMessage renders msg as compact JSON without HTML escaping and without
// the trailing newline json.Encoder appends.
func encodeMessage(msg any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// Close stops message delivery and notifies the observer. It is a no-op if
// the transport was never started or is already closed. The underlying
// streams are left open; a pending read finishes in the background and its
// bytes are discarded.
func (t *Transport) Close() error {
	if !t.state.CompareAndSwap(stateStarted, stateClosed) {
		return nil
	}
	close(t.done)
	t.l.Debug("stdio transport closed")
	t.observer().OnClose()
	return nil
}

// Done returns a channel that is closed when the transport closes.
func (t *Transport) Done() <-chan struct{} { return t.done }
