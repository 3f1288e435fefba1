package wire

// Cursor is a read-only view over a byte slice with an advancing
// offset, the decode side of the codec contract in spec §4.1. The
// encode side is a plain []byte grown with append; there is no
// streaming io.Reader/io.Writer variant (see SPEC_FULL.md §4.1).
type Cursor struct {
	src    []byte
	offset int
}

// NewCursor wraps src for decoding starting at offset 0.
func NewCursor(src []byte) *Cursor {
	return &Cursor{src: src}
}

// Offset returns the current read position.
func (c *Cursor) Offset() int { return c.offset }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.src) - c.offset }

// Bytes returns the full underlying buffer (not just the unread tail).
func (c *Cursor) Bytes() []byte { return c.src }

// take returns the next n bytes and advances the cursor, or fails with
// UnexpectedEof if fewer than n bytes remain.
func (c *Cursor) take(n int, field string) ([]byte, error) {
	if c.offset+n > len(c.src) {
		return nil, eof(field)
	}
	b := c.src[c.offset : c.offset+n]
	c.offset += n
	return b, nil
}

// ReadBytes reads exactly n raw bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	return c.take(n, "bytes")
}

// ReadRest reads the rest of the buffer.
func (c *Cursor) ReadRest() []byte {
	b := c.src[c.offset:]
	c.offset = len(c.src)
	return b
}
