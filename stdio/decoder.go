package stdio

import (
	"bytes"
	"strconv"
)

const headerPrefix = "Content-Length: "

var headerTerminator = []byte("\r\n\r\n")

// decoder is the byte accumulator behind Transport.Feed. It turns an
// arbitrarily chunked byte stream into frame bodies.
//
// Invariants between calls to write:
//   - buf holds at most one partial header-plus-body tail;
//   - no header can start before buf[scan];
//   - skip > 0 implies len(buf) == 0.
type decoder struct {
	buf  []byte
	r    int // consumed prefix of buf, compacted away after each write
	scan int // first index in buf where a header may still start

	offset  int64 // stream offset of buf[0]
	maxSize int   // 0 means unlimited
	skip    int   // body bytes of an oversized frame still to discard

	frame func(body []byte, offset int64)
	fail  func(err *FrameError)
	halt  func() bool
}

// write appends p and emits every frame that is now complete, in order. The
// body passed to frame aliases the accumulator and is only valid for the
// duration of the call.
func (d *decoder) write(p []byte) {
	if d.skip > 0 {
		n := min(d.skip, len(p))
		d.skip -= n
		d.offset += int64(n)
		p = p[n:]
	}
	if len(p) == 0 {
		return
	}
	d.buf = append(d.buf, p...)

	for !d.halted() && d.next() {
	}
	d.compact()
}

// next consumes at most one frame. It reports false when more input is
// needed before another frame can be resolved.
func (d *decoder) next() bool {
	start, bodyStart, n, ok := d.findHeader()
	if !ok {
		return false
	}
	if n < 0 || (d.maxSize > 0 && n > d.maxSize) {
		d.fail(&FrameError{Offset: d.offset + int64(bodyStart), Length: n, Err: ErrFrameTooLarge})
		d.r, d.scan = bodyStart, bodyStart
		if n < 0 {
			// The declared length does not fit an int, so the body cannot be
			// skipped reliably; whatever follows is rescanned for a header.
			return true
		}
		avail := len(d.buf) - bodyStart
		if avail >= n {
			d.r = bodyStart + n
		} else {
			d.r = len(d.buf)
			d.skip = n - avail
		}
		d.scan = d.r
		return true
	}
	if len(d.buf)-bodyStart < n {
		// Anything before the header can never belong to a frame.
		d.r, d.scan = start, start
		return false
	}
	end := bodyStart + n
	body := d.buf[bodyStart:end]
	d.r, d.scan = end, end
	d.frame(body, d.offset+int64(bodyStart))
	return true
}

// findHeader locates the first complete "Content-Length: <digits>\r\n\r\n"
// at or after d.scan. It returns the header's start, the index just past the
// blank line and the declared length (-1 when it overflows an int). When no
// complete header is buffered it advances d.scan as far as is safe and
// drops the bytes before it.
func (d *decoder) findHeader() (start, bodyStart, n int, ok bool) {
	for {
		i := bytes.Index(d.buf[d.scan:], []byte(headerPrefix))
		if i < 0 {
			// Keep a tail that may be the beginning of a split prefix.
			if s := len(d.buf) - (len(headerPrefix) - 1); s > d.scan {
				d.scan = s
			}
			d.r = d.scan
			return 0, 0, 0, false
		}
		start = d.scan + i
		digits := start + len(headerPrefix)
		k := digits
		for k < len(d.buf) && isDigit(d.buf[k]) {
			k++
		}
		if k == len(d.buf) {
			d.r, d.scan = start, start
			return 0, 0, 0, false
		}
		if k == digits {
			d.scan = digits
			continue
		}
		tail := d.buf[k:]
		if len(tail) < len(headerTerminator) {
			if bytes.HasPrefix(headerTerminator, tail) {
				d.r, d.scan = start, start
				return 0, 0, 0, false
			}
			d.scan = k
			continue
		}
		if !bytes.Equal(tail[:len(headerTerminator)], headerTerminator) {
			d.scan = k
			continue
		}
		length, err := strconv.Atoi(string(d.buf[digits:k]))
		if err != nil {
			length = -1
		}
		return start, k + len(headerTerminator), length, true
	}
}

// compact drops the consumed prefix so the accumulator only ever holds
// unresolved bytes.
func (d *decoder) compact() {
	if d.r == 0 {
		return
	}
	n := copy(d.buf, d.buf[d.r:])
	d.buf = d.buf[:n]
	d.offset += int64(d.r)
	d.scan -= d.r
	d.r = 0
}

func (d *decoder) halted() bool { return d.halt != nil && d.halt() }

// buffered returns the number of unresolved bytes held by the accumulator.
func (d *decoder) buffered() int { return len(d.buf) - d.r }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
