package bytesio

import "github.com/bytedance/gopkg/lang/dirtmake"

const defaultBufSize = 256

// Writer is an append-only byte builder with geometric growth. It plays the
// role bufiox.BytesWriter plays for bufiox: a single-use, in-memory output
// buffer with no backing io.Writer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// NewWriterSize returns an empty Writer pre-sized to at least size bytes of
// capacity, avoiding early reallocation for callers who know the rough
// output length up front.
func NewWriterSize(size int) *Writer {
	if size < defaultBufSize {
		size = defaultBufSize
	}
	return &Writer{buf: dirtmake.Bytes(0, size)}
}

func (w *Writer) grow(n int) {
	need := len(w.buf) + n
	if need <= cap(w.buf) {
		return
	}
	ncap := cap(w.buf) * 2
	if ncap < defaultBufSize {
		ncap = defaultBufSize
	}
	for ncap < need {
		ncap *= 2
	}
	nb := dirtmake.Bytes(len(w.buf), ncap)
	copy(nb, w.buf)
	w.buf = nb
}

// Malloc grows the buffer by n bytes and returns a slice into it for the
// caller to fill in directly, the way bufiox.BytesWriter.Malloc does.
func (w *Writer) Malloc(n int) []byte {
	w.grow(n)
	off := len(w.buf)
	w.buf = w.buf[:off+n]
	return w.buf[off : off+n]
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) {
	w.Malloc(1)[0] = b
}

// Write appends b and satisfies io.ByteWriter's sibling io.Writer shape for
// callers that want to treat Writer generically.
func (w *Writer) Write(b []byte) (int, error) {
	copy(w.Malloc(len(b)), b)
	return len(b), nil
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the accumulated output. The returned slice is only valid
// until the next Malloc/WriteByte/Write call.
func (w *Writer) Bytes() []byte { return w.buf }
