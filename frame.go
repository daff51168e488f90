package gobwire

import "io"

// SectionHeader describes one parsed, not-yet-consumed section: its type
// tag (positive ⇒ value, negative ⇒ type definition for id -TypeID) and a
// borrowed view of its payload (§4.2).
type SectionHeader struct {
	TypeID  TypeID
	Payload []byte
}

// IsTypeDef reports whether this section defines a type rather than
// carrying a value.
func (s SectionHeader) IsTypeDef() bool { return s.TypeID < 0 }

// WriteSection frames one section and flushes it to w as three ordered
// writes — length, tag, payload — per §4.2's writer contract.
func WriteSection(w io.Writer, typeID TypeID, payload []byte) error {
	if typeID == 0 {
		return serializeErr("type tag 0 is illegal")
	}

	var tagBuf [maxVarintWidth + 1]byte
	tag := appendSvarint(tagBuf[:0], int64(typeID))

	var lenBuf [maxVarintWidth + 1]byte
	msgLen := appendUvarint(lenBuf[:0], uint64(len(tag)+len(payload)))

	if _, err := w.Write(msgLen); err != nil {
		return ioErr("write section length", err)
	}
	if _, err := w.Write(tag); err != nil {
		return ioErr("write section tag", err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return ioErr("write section payload", err)
		}
	}
	return nil
}

// FrameReader incrementally parses length-prefixed sections out of an
// io.Reader, buffering through a RingBuffer so a short read can be retried
// once more bytes arrive without re-parsing from scratch (§4.2, §4.3).
type FrameReader struct {
	src     io.Reader
	ring    RingBuffer
	pending int // bytes of the last-returned section still to be consumed
}

// NewFrameReader wraps src for section-at-a-time reading.
func NewFrameReader(src io.Reader) *FrameReader {
	return &FrameReader{src: src}
}

// refill pulls one more chunk from src into the ring buffer. It returns
// io.EOF when the source is exhausted, or a wrapped KindIO error on a
// genuine I/O failure.
func (f *FrameReader) refill() error {
	_, err := f.ring.ReadFrom(f.src)
	return err
}

// Consume must be called once the caller is done with the Payload
// returned by the most recent ReadSection, before the next ReadSection
// call — it advances the ring buffer past that section.
func (f *FrameReader) Consume() error {
	if f.pending == 0 {
		return nil
	}
	n := f.pending
	f.pending = 0
	return f.ring.Advance(n)
}

// ReadSection returns the next section header, or (nil, nil) at a clean
// EOF between sections. The returned Payload borrows the FrameReader's
// internal buffer and is only valid until Consume is called — callers
// that need to retain it past that point must copy it (§4.2's reader
// contract: "return borrow into the buffer slice without consuming it").
func (f *FrameReader) ReadSection() (*SectionHeader, error) {
	if err := f.Consume(); err != nil {
		return nil, err
	}

	for {
		avail := f.ring.Bytes()
		lenCursor := NewCursor(avail)
		msgLen, err := ReadUvarint(&lenCursor)
		if err != nil {
			if !isIncomplete(err) {
				return nil, err
			}
			if rerr := f.refill(); rerr != nil {
				if rerr == io.EOF {
					if len(avail) == 0 {
						return nil, nil
					}
					return nil, deserializeErrWrap(ErrUnexpectedEOF, "EOF reading section length")
				}
				return nil, rerr
			}
			continue
		}

		lenWidth := lenCursor.pos
		total := lenWidth + int(msgLen)
		if total > len(avail) {
			if rerr := f.refill(); rerr != nil {
				if rerr == io.EOF {
					return nil, deserializeErrWrap(ErrUnexpectedEOF, "EOF mid-section")
				}
				return nil, rerr
			}
			continue
		}

		body := avail[lenWidth:total]
		tagCursor := NewCursor(body)
		tag, err := ReadSvarint(&tagCursor)
		if err != nil {
			return nil, err
		}
		if tag == 0 {
			return nil, deserializeErr("type tag 0 is illegal")
		}

		f.pending = total
		return &SectionHeader{TypeID: TypeID(tag), Payload: body[tagCursor.pos:]}, nil
	}
}
