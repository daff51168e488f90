package gobwire

// TypeLookup is satisfied by both the encoder-side Registry and the
// decoder-side DecoderRegistry (§4.4): anything that can resolve a TypeID
// to its registered Type description. encode.go and decode.go depend only
// on this narrow interface, not on either registry's full implementation.
type TypeLookup interface {
	Lookup(id TypeID) (Type, bool)
}

// ValueEncoder writes one value's payload bytes, given the expected
// TypeID at each step (§4.6). It never inspects a Go value directly —
// callers (the reflective gobtype bridge, wiretype.go's bootstrap
// encoding, or hand-written Value implementations) drive it by calling
// EmitX/BeginX in the shape their value dictates.
type ValueEncoder struct {
	buf *Buffer
}

// NewValueEncoder wraps buf for a single value's encode.
func NewValueEncoder(buf *Buffer) *ValueEncoder { return &ValueEncoder{buf: buf} }

// isEmptyBool follows spec.md §9's resolved Open Question: Go's
// encoding/gob treats false as the empty boolean value.
func isEmptyBool(v bool) bool { return !v }

// EmitBool writes a boolean, checking expect against the BOOL primitive
// (§4.6 "type check"). It reports whether the value is empty (§4.6 empty
// value rule) so struct/option encoding can decide to omit it.
func (e *ValueEncoder) EmitBool(expect TypeID, v bool) (empty bool, err error) {
	if expect != BoolID {
		return false, serializeErr("type id mismatch: expected BOOL (%d), got %d", BoolID, expect)
	}
	e.buf.AppendBool(v)
	return isEmptyBool(v), nil
}

// EmitInt writes a signed integer (zigzag varint).
func (e *ValueEncoder) EmitInt(expect TypeID, v int64) (empty bool, err error) {
	if expect != IntID {
		return false, serializeErr("type id mismatch: expected INT (%d), got %d", IntID, expect)
	}
	e.buf.AppendSvarint(v)
	return v == 0, nil
}

// EmitUint writes an unsigned integer (varint).
func (e *ValueEncoder) EmitUint(expect TypeID, v uint64) (empty bool, err error) {
	if expect != UintID {
		return false, serializeErr("type id mismatch: expected UINT (%d), got %d", UintID, expect)
	}
	e.buf.AppendUvarint(v)
	return v == 0, nil
}

// EmitFloat writes a float64 (byte-reversed IEEE-754, varint encoded).
func (e *ValueEncoder) EmitFloat(expect TypeID, v float64) (empty bool, err error) {
	if expect != FloatID {
		return false, serializeErr("type id mismatch: expected FLOAT (%d), got %d", FloatID, expect)
	}
	e.buf.AppendFloat64(v)
	return v == 0, nil
}

// EmitChar writes a Unicode scalar value, riding on the INT primitive
// (§4.7's Char is a validated signed varint, not a distinct wire kind).
func (e *ValueEncoder) EmitChar(expect TypeID, v rune) (empty bool, err error) {
	if expect != IntID {
		return false, serializeErr("type id mismatch: expected INT (%d) for char, got %d", IntID, expect)
	}
	e.buf.AppendSvarint(int64(v))
	return v == 0, nil
}

// EmitComplex writes a complex128 as two floats (real, imag). Not named
// among spec.md §4.6's explicit empty-value cases; gobwire extends the
// same rule (both halves zero ⇒ empty) since it is the only definition
// consistent with the rest of the empty-value table (SPEC_FULL.md §4
// COMPLEX128).
func (e *ValueEncoder) EmitComplex(expect TypeID, v complex128) (empty bool, err error) {
	if expect != ComplexID {
		return false, serializeErr("type id mismatch: expected COMPLEX (%d), got %d", ComplexID, expect)
	}
	e.buf.AppendComplex(v)
	return real(v) == 0 && imag(v) == 0, nil
}

// EmitBytes writes a length-prefixed byte slice.
func (e *ValueEncoder) EmitBytes(expect TypeID, v []byte) (empty bool, err error) {
	if expect != BytesID {
		return false, serializeErr("type id mismatch: expected BYTES (%d), got %d", BytesID, expect)
	}
	e.buf.AppendBytes(v)
	return len(v) == 0, nil
}

// EmitString writes a length-prefixed UTF-8 string.
func (e *ValueEncoder) EmitString(expect TypeID, v string) (empty bool, err error) {
	if expect != StringID {
		return false, serializeErr("type id mismatch: expected STRING (%d), got %d", StringID, expect)
	}
	e.buf.AppendString(v)
	return len(v) == 0, nil
}

// EmitNone emits the canonical zero-form of target (recursively, for
// composites) and reports the field as empty — the representation of an
// absent Option value (§4.6 "For None, the encoder emits a canonical
// zero-form of the target type ... and reports is_empty").
func (e *ValueEncoder) EmitNone(reg TypeLookup, target TypeID) (empty bool, err error) {
	switch target {
	case BoolID:
		return e.EmitBool(target, false)
	case IntID:
		return e.EmitInt(target, 0)
	case UintID:
		return e.EmitUint(target, 0)
	case FloatID:
		return e.EmitFloat(target, 0)
	case BytesID:
		return e.EmitBytes(target, nil)
	case StringID:
		return e.EmitString(target, "")
	case ComplexID:
		return e.EmitComplex(target, 0)
	}

	t, ok := reg.Lookup(target)
	if !ok {
		return false, serializeErr("EmitNone: unknown type id %d", target)
	}
	switch t.Kind {
	case KindSeq, KindMap:
		e.buf.AppendUvarint(0)
		return true, nil
	case KindStruct:
		s, err := e.BeginStruct(reg, target)
		if err != nil {
			return false, err
		}
		s.End()
		return true, nil
	default:
		return false, serializeErr("EmitNone: unsupported kind %v for id %d", t.Kind, target)
	}
}

// EmitTopLevel frames a bare, non-composite value serialized directly at
// the top level of a stream rather than as a struct field (§8 scenarios
// 1-5): a literal zero byte precedes the value's own bytes (a struct's
// first field delta, by contrast, is 1), and no terminator follows since
// there is no struct to close.
func (e *ValueEncoder) EmitTopLevel(fn func(ve *ValueEncoder) error) error {
	e.buf.AppendUvarint(0)
	return fn(e)
}

// SeqEncoder drives element-by-element sequence encoding (§4.6): write
// count, then each element recursively against Elem.
type SeqEncoder struct {
	ve   *ValueEncoder
	Elem TypeID
	n    int
}

// BeginSeq validates expect resolves to a Seq (array/slice), writes its
// count, and (for a fixed-length array) checks length against the
// registered Len.
func (e *ValueEncoder) BeginSeq(reg TypeLookup, expect TypeID, length int) (*SeqEncoder, error) {
	t, ok := reg.Lookup(expect)
	if !ok || t.Kind != KindSeq {
		return nil, serializeErr("type id mismatch: expected a sequence type, got %d", expect)
	}
	if t.Len != nil && length != *t.Len {
		return nil, serializeErr("array length mismatch: declared %d, got %d", *t.Len, length)
	}
	e.buf.AppendUvarint(uint64(length))
	return &SeqEncoder{ve: e, Elem: t.Elem, n: length}, nil
}

// Element encodes the next element via fn, which must call back into the
// shared ValueEncoder with expect == s.Elem.
func (s *SeqEncoder) Element(fn func(ve *ValueEncoder) error) error {
	return fn(s.ve)
}

// MapEncoder drives alternating key/value encoding (§4.6): write count,
// then count (key, value) pairs.
type MapEncoder struct {
	ve       *ValueEncoder
	Key, Val TypeID
}

// BeginMap validates expect resolves to a Map and writes its entry count.
func (e *ValueEncoder) BeginMap(reg TypeLookup, expect TypeID, count int) (*MapEncoder, error) {
	t, ok := reg.Lookup(expect)
	if !ok || t.Kind != KindMap {
		return nil, serializeErr("type id mismatch: expected a map type, got %d", expect)
	}
	e.buf.AppendUvarint(uint64(count))
	return &MapEncoder{ve: e, Key: t.Key, Val: t.Val}, nil
}

// Entry encodes one key then its value.
func (m *MapEncoder) Entry(key, val func(ve *ValueEncoder) error) error {
	if err := key(m.ve); err != nil {
		return err
	}
	return val(m.ve)
}

// StructEncoder drives field-delta struct encoding (§4.6): for each
// present field, write the unsigned gap from the previously-emitted field
// index, then the field's value; omit fields whose value reports empty;
// terminate with an unsigned zero.
type StructEncoder struct {
	ve      *ValueEncoder
	Fields  []Field
	lastIdx int
}

// BeginStruct validates expect resolves to a Struct and returns its
// encoder, seeded with last_serialized_field_idx = -1 (§4.6).
func (e *ValueEncoder) BeginStruct(reg TypeLookup, expect TypeID) (*StructEncoder, error) {
	t, ok := reg.Lookup(expect)
	if !ok || t.Kind != KindStruct {
		return nil, serializeErr("type id mismatch: expected a struct type, got %d", expect)
	}
	return &StructEncoder{ve: e, Fields: t.Fields, lastIdx: -1}, nil
}

// Field encodes field idx via fn. If fn reports the value empty, the
// field's bytes (including the delta just written) are discarded and
// encoding continues as if the field had never been visited — this is
// also how a variant's unused arms are naturally skipped (§9: writing
// exactly one Field call per active variant is identical to the "write
// variant_index+1 then payload" rule, since the struct encoder's delta is
// always idx - lastIdx and lastIdx starts at -1).
func (s *StructEncoder) Field(idx int, fn func(ve *ValueEncoder) (empty bool, err error)) error {
	pre := s.ve.buf.Len()
	delta := idx - s.lastIdx
	s.ve.buf.AppendUvarint(uint64(delta))

	empty, err := fn(s.ve)
	if err != nil {
		s.ve.buf.Truncate(pre)
		return err
	}
	if empty {
		s.ve.buf.Truncate(pre)
		return nil
	}
	s.lastIdx = idx
	return nil
}

// End writes the struct terminator (unsigned zero).
func (s *StructEncoder) End() {
	s.ve.buf.AppendUvarint(0)
}
