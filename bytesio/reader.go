// Package bytesio provides a byte-slice cursor and a growable byte-slice
// builder for the codec packages. The core never performs I/O (bytes in,
// bytes out), so unlike bufio-style readers/writers these operate directly
// on an in-memory []byte with no underlying io.Reader/io.Writer.
package bytesio

import "github.com/iconidentify/fdocodec/ferr"

// Reader is a read-only cursor over a fixed []byte.
type Reader struct {
	buf []byte
	ri  int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.ri }

// Pos returns the current read offset into the original buffer.
func (r *Reader) Pos() int { return r.ri }

// Next advances n bytes and returns a slice into the underlying buffer.
func (r *Reader) Next(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, ferr.New(ferr.UnexpectedEof, "not enough bytes remaining")
	}
	b := r.buf[r.ri : r.ri+n]
	r.ri += n
	return b, nil
}

// Peek returns the next n bytes without advancing the cursor.
func (r *Reader) Peek(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, ferr.New(ferr.UnexpectedEof, "not enough bytes remaining")
	}
	return r.buf[r.ri : r.ri+n], nil
}

// ReadByte reads and consumes a single byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.Next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Skip advances n bytes without returning them.
func (r *Reader) Skip(n int) error {
	_, err := r.Next(n)
	return err
}

// Rest returns every remaining unread byte and consumes it.
func (r *Reader) Rest() []byte {
	b := r.buf[r.ri:]
	r.ri = len(r.buf)
	return b
}
