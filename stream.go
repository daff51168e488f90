package gobwire

import "io"

// Value is implemented by anything that can be serialized: GobType
// describes its wire shape (for registration/dedup), EncodeValue writes
// its payload once id has been assigned. Most callers won't implement
// this by hand — the gobtype subpackage derives it from a plain Go value
// via reflection — but nothing in this package requires that bridge.
type Value interface {
	GobType() Type
	EncodeValue(ve *ValueEncoder, id TypeID) error
}

// Decodable is implemented by anything that can receive a decoded value.
// id is whatever the wire actually announced for this section — the
// decoder doesn't need dst to declare its own id up front, since every
// composite lookup during decode is driven by the registry, not by dst.
type Decodable interface {
	DecodeValue(vd *ValueDecoder, id TypeID) error
}

// StreamSerializer writes a sequence of values to w, interleaving type
// definitions as needed (§4.8): each SerializeValue call registers its
// value's type, flushes any newly-minted definitions, then writes the
// value section.
type StreamSerializer struct {
	w   io.Writer
	reg *Registry
}

// NewStreamSerializer wraps w with a fresh Registry configured by opts.
func NewStreamSerializer(w io.Writer, opts ...RegistryOption) *StreamSerializer {
	return &StreamSerializer{w: w, reg: NewRegistry(opts...)}
}

// Registry exposes the underlying encoder-side type table, e.g. for tests
// that want to assert on assigned ids.
func (s *StreamSerializer) Registry() *Registry { return s.reg }

// SerializeValue registers v's type if needed, flushes pending
// definitions, encodes v, and writes it as a value section. A bare
// top-level scalar (BoolValue, IntValue, UintValue, FloatValue,
// StringValue, §8 scenarios 1-5) carries an already-known builtin id and
// skips registration entirely.
func (s *StreamSerializer) SerializeValue(v Value) error {
	id := TypeID(0)
	if tv, ok := v.(topLevelValue); ok {
		id = tv.builtinID()
	} else {
		var err error
		id, err = s.reg.Register(v.GobType())
		if err != nil {
			return err
		}
		if err := s.reg.WritePending(s.w); err != nil {
			return err
		}
	}

	buf := NewBufferFromPool()
	defer buf.ReturnToPool()

	ve := NewValueEncoder(buf)
	if err := v.EncodeValue(ve, id); err != nil {
		return err
	}
	return WriteSection(s.w, id, buf.Bytes)
}

// StreamDeserializer reads a sequence of values from an underlying
// io.Reader, absorbing type-definition sections transparently (§4.8).
type StreamDeserializer struct {
	fr  *FrameReader
	reg *DecoderRegistry
}

// NewStreamDeserializer wraps r with a fresh DecoderRegistry configured by
// opts.
func NewStreamDeserializer(r io.Reader, opts ...DecoderRegistryOption) *StreamDeserializer {
	return &StreamDeserializer{fr: NewFrameReader(r), reg: NewDecoderRegistry(opts...)}
}

// Registry exposes the underlying decoder-side type table.
func (d *StreamDeserializer) Registry() *DecoderRegistry { return d.reg }

// DeserializeValue reads sections until the next value section arrives,
// absorbing any type definitions along the way, then decodes it into dst.
// It returns io.EOF once the stream is cleanly exhausted between values.
func (d *StreamDeserializer) DeserializeValue(dst Decodable) error {
	for {
		section, err := d.fr.ReadSection()
		if err != nil {
			return err
		}
		if section == nil {
			return io.EOF
		}
		if section.IsTypeDef() {
			if err := d.reg.Absorb(section); err != nil {
				return err
			}
			continue
		}

		c := NewCursor(section.Payload)
		vd := NewValueDecoder(&c, d.reg)
		return dst.DecodeValue(vd, section.TypeID)
	}
}
