package gobwire

// ValueDecoder reads one value's payload bytes against a TypeLookup that
// resolves composite TypeIDs to their field/element/variant shape (§4.7).
// Unlike ValueEncoder it must consult the registry: a struct's field list,
// or a sequence's element id, isn't known to the decoder ahead of time the
// way it is to whatever constructs an encode-side value.
type ValueDecoder struct {
	c   *Cursor
	reg TypeLookup
}

// NewValueDecoder wraps c for decoding against reg.
func NewValueDecoder(c *Cursor, reg TypeLookup) *ValueDecoder {
	return &ValueDecoder{c: c, reg: reg}
}

// DecodeBool reads a boolean against expect.
func (d *ValueDecoder) DecodeBool(expect TypeID) (bool, error) {
	if expect != BoolID {
		return false, deserializeErr("type id mismatch: expected BOOL (%d), got %d", BoolID, expect)
	}
	return ReadBool(d.c)
}

// DecodeInt reads a signed integer against expect.
func (d *ValueDecoder) DecodeInt(expect TypeID) (int64, error) {
	if expect != IntID {
		return 0, deserializeErr("type id mismatch: expected INT (%d), got %d", IntID, expect)
	}
	return ReadSvarint(d.c)
}

// DecodeUint reads an unsigned integer against expect.
func (d *ValueDecoder) DecodeUint(expect TypeID) (uint64, error) {
	if expect != UintID {
		return 0, deserializeErr("type id mismatch: expected UINT (%d), got %d", UintID, expect)
	}
	return ReadUvarint(d.c)
}

// DecodeFloat reads a float64 against expect.
func (d *ValueDecoder) DecodeFloat(expect TypeID) (float64, error) {
	if expect != FloatID {
		return 0, deserializeErr("type id mismatch: expected FLOAT (%d), got %d", FloatID, expect)
	}
	return ReadFloat64(d.c)
}

// DecodeComplex reads a complex128 against expect.
func (d *ValueDecoder) DecodeComplex(expect TypeID) (complex128, error) {
	if expect != ComplexID {
		return 0, deserializeErr("type id mismatch: expected COMPLEX (%d), got %d", ComplexID, expect)
	}
	return ReadComplex(d.c)
}

// DecodeBytes reads a length-prefixed byte slice against expect. The
// returned slice aliases the cursor's backing array.
func (d *ValueDecoder) DecodeBytes(expect TypeID) ([]byte, error) {
	if expect != BytesID {
		return nil, deserializeErr("type id mismatch: expected BYTES (%d), got %d", BytesID, expect)
	}
	return ReadBytes(d.c)
}

// DecodeString reads a length-prefixed UTF-8 string against expect.
func (d *ValueDecoder) DecodeString(expect TypeID) (string, error) {
	if expect != StringID {
		return "", deserializeErr("type id mismatch: expected STRING (%d), got %d", StringID, expect)
	}
	return ReadString(d.c)
}

// DecodeChar reads a single Unicode scalar and validates it (not a gob
// builtin; it rides on the INT primitive as a signed varint, the form
// EmitChar writes).
func (d *ValueDecoder) DecodeChar(expect TypeID) (rune, error) {
	if expect != IntID {
		return 0, deserializeErr("type id mismatch: expected INT (%d) for char, got %d", IntID, expect)
	}
	return ReadChar(d.c)
}

// DecodeTopLevel reads the leading zero marker EmitTopLevel writes, then
// decodes the scalar itself via fn (§8 scenarios 1-5).
func (d *ValueDecoder) DecodeTopLevel(fn func(vd *ValueDecoder) error) error {
	marker, err := ReadUvarint(d.c)
	if err != nil {
		return err
	}
	if marker != 0 {
		return deserializeErr("top-level scalar: expected leading marker 0, got %d", marker)
	}
	return fn(d)
}

// SeqDecoder drives element-by-element sequence decoding: Len gives the
// already-read count, Elem the element TypeID every Next call must decode
// against.
type SeqDecoder struct {
	vd     *ValueDecoder
	Elem   TypeID
	Len    int
	cursor int
}

// BeginSeq validates expect resolves to a Seq, reads its count, and — for a
// fixed-length array — checks the count against the registered Len (§4.7
// "For arrays, count must equal the definition's Len or fail").
func (d *ValueDecoder) BeginSeq(expect TypeID) (*SeqDecoder, error) {
	t, ok := d.reg.Lookup(expect)
	if !ok || t.Kind != KindSeq {
		return nil, deserializeErr("type id mismatch: expected a sequence type, got %d", expect)
	}
	n, err := ReadUvarint(d.c)
	if err != nil {
		return nil, err
	}
	if t.Len != nil && uint64(*t.Len) != n {
		return nil, deserializeErr("array length mismatch: declared %d, got %d", *t.Len, n)
	}
	return &SeqDecoder{vd: d, Elem: t.Elem, Len: int(n)}, nil
}

// Next reports whether another element remains and, if so, decodes it via
// fn (which must call back against expect == s.Elem).
func (s *SeqDecoder) Next(fn func(vd *ValueDecoder) error) (bool, error) {
	if s.cursor >= s.Len {
		return false, nil
	}
	s.cursor++
	if err := fn(s.vd); err != nil {
		return false, err
	}
	return true, nil
}

// MapDecoder drives alternating key/value decoding.
type MapDecoder struct {
	vd       *ValueDecoder
	Key, Val TypeID
	Len      int
	cursor   int
}

// BeginMap validates expect resolves to a Map and reads its entry count.
func (d *ValueDecoder) BeginMap(expect TypeID) (*MapDecoder, error) {
	t, ok := d.reg.Lookup(expect)
	if !ok || t.Kind != KindMap {
		return nil, deserializeErr("type id mismatch: expected a map type, got %d", expect)
	}
	n, err := ReadUvarint(d.c)
	if err != nil {
		return nil, err
	}
	return &MapDecoder{vd: d, Key: t.Key, Val: t.Val, Len: int(n)}, nil
}

// Next reports whether another entry remains and, if so, decodes its key
// and value via key/val.
func (m *MapDecoder) Next(key, val func(vd *ValueDecoder) error) (bool, error) {
	if m.cursor >= m.Len {
		return false, nil
	}
	m.cursor++
	if err := key(m.vd); err != nil {
		return false, err
	}
	if err := val(m.vd); err != nil {
		return false, err
	}
	return true, nil
}

// StructDecoder drives field-delta struct decoding (§4.7): repeatedly read
// an unsigned delta; zero terminates, otherwise last_idx += delta names the
// next present field and the caller must decode it against that field's
// declared type. Fields not visited are left as the caller had them — the same
// mechanism used to decode an Enum's lowered struct-of-options (§9), where
// exactly one Next call fires for whichever variant was active.
type StructDecoder struct {
	vd      *ValueDecoder
	Fields  []Field
	lastIdx int
}

// BeginStruct validates expect resolves to a Struct and returns its decoder.
func (d *ValueDecoder) BeginStruct(expect TypeID) (*StructDecoder, error) {
	t, ok := d.reg.Lookup(expect)
	if !ok || t.Kind != KindStruct {
		return nil, deserializeErr("type id mismatch: expected a struct type, got %d", expect)
	}
	return &StructDecoder{vd: d, Fields: t.Fields, lastIdx: -1}, nil
}

// Next reads the next field delta. done is true once the terminator has
// been consumed, in which case idx/field are meaningless. Otherwise the
// caller must decode the field's value via fn, against field.Type.
func (s *StructDecoder) Next(fn func(idx int, field Field, vd *ValueDecoder) error) (done bool, err error) {
	delta, err := ReadUvarint(s.vd.c)
	if err != nil {
		return false, err
	}
	if delta == 0 {
		return true, nil
	}
	idx := s.lastIdx + int(delta)
	if idx < 0 || idx >= len(s.Fields) {
		return false, deserializeErr("struct field index %d out of range (have %d fields)", idx, len(s.Fields))
	}
	s.lastIdx = idx
	if err := fn(idx, s.Fields[idx], s.vd); err != nil {
		return false, err
	}
	return false, nil
}

// SkipValue discards one value of kind id without materializing it — used
// when a decoder encounters a field or element it doesn't care about, or
// during schema-evolution tolerant decode of an unrecognized field.
func (d *ValueDecoder) SkipValue(id TypeID) error {
	switch id {
	case BoolID:
		_, err := ReadBool(d.c)
		return err
	case IntID:
		return SkipVarint(d.c)
	case UintID:
		return SkipVarint(d.c)
	case FloatID:
		_, err := ReadFloat64(d.c)
		return err
	case ComplexID:
		_, err := ReadComplex(d.c)
		return err
	case BytesID:
		_, err := ReadBytes(d.c)
		return err
	case StringID:
		_, err := ReadString(d.c)
		return err
	}

	t, ok := d.reg.Lookup(id)
	if !ok {
		return deserializeErr("SkipValue: unknown type id %d", id)
	}
	switch t.Kind {
	case KindSeq:
		sd, err := d.BeginSeq(id)
		if err != nil {
			return err
		}
		for {
			more, err := sd.Next(func(vd *ValueDecoder) error { return vd.SkipValue(sd.Elem) })
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}
	case KindMap:
		md, err := d.BeginMap(id)
		if err != nil {
			return err
		}
		for {
			more, err := md.Next(
				func(vd *ValueDecoder) error { return vd.SkipValue(md.Key) },
				func(vd *ValueDecoder) error { return vd.SkipValue(md.Val) },
			)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}
	case KindStruct:
		sd, err := d.BeginStruct(id)
		if err != nil {
			return err
		}
		for {
			done, err := sd.Next(func(_ int, field Field, vd *ValueDecoder) error {
				return vd.SkipValue(field.Type)
			})
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	default:
		return deserializeErr("SkipValue: unsupported kind %v for id %d", t.Kind, id)
	}
}
