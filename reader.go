package gobwire

import "unicode/utf8"

// Cursor provides sequential, bounds-checked access to a section's payload
// bytes. Unlike the teacher's Reader (which panics on overrun), every
// Cursor read reports ErrIncomplete on underrun so a decoder can surface a
// proper KindDeserialize error instead of crashing on malformed input —
// the wire format must tolerate hostile input (§7, §8 fuzz properties).
type Cursor struct {
	bytes []byte
	pos   int
}

// NewCursor wraps b for sequential reading from offset zero.
func NewCursor(b []byte) Cursor {
	return Cursor{bytes: b}
}

// Remaining reports how many unread bytes are left.
func (c *Cursor) Remaining() int { return len(c.bytes) - c.pos }

// Bytes returns the unread tail of the cursor's buffer, without consuming
// it.
func (c *Cursor) Bytes() []byte { return c.bytes[c.pos:] }

// Advance moves the read position forward by n bytes without returning
// them; it fails if fewer than n bytes remain.
func (c *Cursor) Advance(n int) error {
	if n > c.Remaining() {
		return deserializeErrWrap(ErrIncomplete, "advance %d bytes: only %d remain", n, c.Remaining())
	}
	c.pos += n
	return nil
}

// readByte consumes and returns a single byte.
func (c *Cursor) readByte() (byte, error) {
	if c.Remaining() < 1 {
		return 0, deserializeErrWrap(ErrIncomplete, "read byte: 0 bytes remain")
	}
	b := c.bytes[c.pos]
	c.pos++
	return b, nil
}

// readN consumes and returns the next n bytes, borrowed from the
// underlying buffer (zero-copy) when the cursor is backed by a
// whole-buffer slice (§9 "borrowed vs owned payload bytes").
func (c *Cursor) readN(n int) ([]byte, error) {
	if n > c.Remaining() {
		return nil, deserializeErrWrap(ErrIncomplete, "read %d bytes: only %d remain", n, c.Remaining())
	}
	b := c.bytes[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadUvarint decodes an unsigned integer per §4.1/§6: a single byte below
// 0x80 is the value itself; otherwise the byte's bitwise complement plus
// one gives the trailing big-endian byte count.
func ReadUvarint(c *Cursor) (uint64, error) {
	first, err := c.readByte()
	if err != nil {
		return 0, err
	}
	if first < 0x80 {
		return uint64(first), nil
	}

	width := int(^first) + 1
	if width > maxVarintWidth {
		return 0, deserializeErr("uvarint width %d exceeds maximum %d (corrupt stream)", width, maxVarintWidth)
	}

	tail, err := c.readN(width)
	if err != nil {
		return 0, err
	}

	var v uint64
	for _, b := range tail {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// ReadSvarint decodes a zigzag-encoded signed integer (§4.1/§6).
func ReadSvarint(c *Cursor) (int64, error) {
	u, err := ReadUvarint(c)
	if err != nil {
		return 0, err
	}
	return zigzagDecode(u), nil
}

// ReadBool decodes a boolean; any byte other than 0 or 1 is a protocol
// error (§4.1 "reading any other value fails IntegerOverflow").
func ReadBool(c *Cursor) (bool, error) {
	u, err := ReadUvarint(c)
	if err != nil {
		return false, err
	}
	switch u {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, deserializeErr("invalid bool encoding %d", u)
	}
}

// ReadFloat64 decodes an IEEE-754 double written byte-reversed then
// varint-encoded (§4.1).
func ReadFloat64(c *Cursor) (float64, error) {
	u, err := ReadUvarint(c)
	if err != nil {
		return 0, err
	}
	return floatBitsFromWire(u), nil
}

// ReadComplex decodes a complex128 as two float64 halves (real, imag),
// per §4.6/§9's two-tuple-of-floats rule.
func ReadComplex(c *Cursor) (complex128, error) {
	re, err := ReadFloat64(c)
	if err != nil {
		return 0, err
	}
	im, err := ReadFloat64(c)
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}

// ReadBytes decodes a length-prefixed byte slice, borrowed from the
// cursor's backing buffer.
func ReadBytes(c *Cursor) ([]byte, error) {
	n, err := ReadUvarint(c)
	if err != nil {
		return nil, err
	}
	return c.readN(int(n))
}

// ReadString decodes a length-prefixed UTF-8 string, failing with
// KindDeserialize if the bytes are not valid UTF-8 (§7).
func ReadString(c *Cursor) (string, error) {
	b, err := ReadBytes(c)
	if err != nil {
		return "", err
	}
	if !isValidUTF8(b) {
		return "", deserializeErr("invalid UTF-8 in string")
	}
	return string(b), nil
}

// ReadChar reads a signed integer and validates it as a Unicode scalar
// value (§4.7 "Char").
func ReadChar(c *Cursor) (rune, error) {
	i, err := ReadSvarint(c)
	if err != nil {
		return 0, err
	}
	if i < 0 || i > utf8.MaxRune || !utf8.ValidRune(rune(i)) {
		return 0, deserializeErr("invalid char code %d", i)
	}
	return rune(i), nil
}

// SkipVarint advances past one varint without decoding its value; used
// when a visitor declines a field (§4.7's "unknown fields on decode" path
// in sibling decoders still must consume the bytes they own).
func SkipVarint(c *Cursor) error {
	_, err := ReadUvarint(c)
	return err
}
