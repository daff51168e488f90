package gobwire

// rawvalue.go provides an untyped tree representation of any registered
// value, for tooling that wants to inspect or construct a value without a
// matching Go struct — generalized from the teacher's schema-agnostic
// Visitor/Walker (walker.go) into a concrete tree instead of a callback
// stream, and usable both to read (DumpValue) and to write (RawValue
// itself implements Value) a value, mirroring how the teacher's
// DocumentBuilder lets a caller build a document field-by-field without a
// static type.

// RawField is one named member of a RawValue of struct shape. Index is the
// field's position in the original struct definition, not its position in
// the enclosing RawValue.Struct slice — fields omitted by the empty-value
// rule (§4.6) leave gaps, so re-encoding must replay the true index, not
// the slice position, to reproduce the same delta sequence.
type RawField struct {
	Name  string
	Index int
	Value RawValue
}

// RawEntry is one key/value pair of a RawValue of map shape.
type RawEntry struct {
	Key, Val RawValue
}

// RawValue is a self-contained, typed tree snapshot of one decoded value.
// Kind reports which field(s) are meaningful for a composite value
// (Seq/Map/Struct); for a primitive it is left at its zero value and the
// TypeID alone disambiguates which scalar field to read. Unlike a live
// ValueDecoder walk, a RawValue can be held, compared, or re-encoded after
// the underlying cursor is gone.
type RawValue struct {
	TypeID TypeID
	Kind   Kind

	Bool    bool
	Int     int64
	Uint    uint64
	Float   float64
	Complex complex128
	Bytes   []byte
	Str     string

	Seq    []RawValue
	Map    []RawEntry
	Struct []RawField
}

// DumpValue decodes whatever id names, against reg, into a RawValue tree —
// the decode-side counterpart of RawValue.EncodeValue below. It needs no
// Go type at all; only the registry's own type descriptions.
func DumpValue(reg TypeLookup, id TypeID, vd *ValueDecoder) (RawValue, error) {
	switch id {
	case BoolID:
		v, err := vd.DecodeBool(id)
		return RawValue{TypeID: id, Bool: v}, err
	case IntID:
		v, err := vd.DecodeInt(id)
		return RawValue{TypeID: id, Int: v}, err
	case UintID:
		v, err := vd.DecodeUint(id)
		return RawValue{TypeID: id, Uint: v}, err
	case FloatID:
		v, err := vd.DecodeFloat(id)
		return RawValue{TypeID: id, Float: v}, err
	case ComplexID:
		v, err := vd.DecodeComplex(id)
		return RawValue{TypeID: id, Complex: v}, err
	case BytesID:
		v, err := vd.DecodeBytes(id)
		return RawValue{TypeID: id, Bytes: append([]byte(nil), v...)}, err
	case StringID:
		v, err := vd.DecodeString(id)
		return RawValue{TypeID: id, Str: v}, err
	}

	t, ok := reg.Lookup(id)
	if !ok {
		return RawValue{}, deserializeErr("DumpValue: unknown type id %d", id)
	}

	switch t.Kind {
	case KindSeq:
		sd, err := vd.BeginSeq(id)
		if err != nil {
			return RawValue{}, err
		}
		out := RawValue{TypeID: id, Kind: KindSeq, Seq: make([]RawValue, 0, sd.Len)}
		for {
			var elem RawValue
			more, err := sd.Next(func(vd *ValueDecoder) error {
				v, err := DumpValue(reg, sd.Elem, vd)
				elem = v
				return err
			})
			if err != nil {
				return RawValue{}, err
			}
			if !more {
				return out, nil
			}
			out.Seq = append(out.Seq, elem)
		}

	case KindMap:
		md, err := vd.BeginMap(id)
		if err != nil {
			return RawValue{}, err
		}
		out := RawValue{TypeID: id, Kind: KindMap, Map: make([]RawEntry, 0, md.Len)}
		for {
			var entry RawEntry
			more, err := md.Next(
				func(vd *ValueDecoder) error { k, err := DumpValue(reg, md.Key, vd); entry.Key = k; return err },
				func(vd *ValueDecoder) error { v, err := DumpValue(reg, md.Val, vd); entry.Val = v; return err },
			)
			if err != nil {
				return RawValue{}, err
			}
			if !more {
				return out, nil
			}
			out.Map = append(out.Map, entry)
		}

	case KindStruct:
		sd, err := vd.BeginStruct(id)
		if err != nil {
			return RawValue{}, err
		}
		out := RawValue{TypeID: id, Kind: KindStruct}
		for {
			done, err := sd.Next(func(idx int, field Field, vd *ValueDecoder) error {
				v, err := DumpValue(reg, field.Type, vd)
				if err != nil {
					return err
				}
				out.Struct = append(out.Struct, RawField{Name: field.Name, Index: idx, Value: v})
				return nil
			})
			if err != nil {
				return RawValue{}, err
			}
			if done {
				return out, nil
			}
		}

	default:
		return RawValue{}, deserializeErr("DumpValue: unsupported kind %v for id %d", t.Kind, id)
	}
}

// GobType implements Value: it rebuilds a Type from the tree's own shape.
// A struct comes back unnamed, with fields up to the highest index present;
// a field omitted by the empty-value rule (§4.6) leaves a zero-value gap,
// and omitted fields after the last present one are dropped. A sequence
// comes back as a slice, never an array, with the element id of its first
// element. Re-registering the result dedups back to the original id
// (§4.4) only when the original type was an unnamed struct whose fields
// all appear in this value, or a slice or map with at least one element.
func (r RawValue) GobType() Type {
	switch r.Kind {
	case KindSeq:
		var elem TypeID
		if len(r.Seq) > 0 {
			elem = r.Seq[0].TypeID
		}
		return NewSliceType(elem)
	case KindMap:
		var key, val TypeID
		if len(r.Map) > 0 {
			key, val = r.Map[0].Key.TypeID, r.Map[0].Val.TypeID
		}
		return NewMapType(key, val)
	default:
		n := 0
		for _, f := range r.Struct {
			if f.Index+1 > n {
				n = f.Index + 1
			}
		}
		fields := make([]Field, n)
		for _, f := range r.Struct {
			fields[f.Index] = Field{Name: f.Name, Type: f.Value.TypeID}
		}
		return NewStructType("", fields)
	}
}

// EncodeValue implements Value, writing r back out exactly as decoded.
// Composite encode below writes sequence and map counts directly and
// builds its StructEncoder from r's own already-known shape rather than
// consulting a registry — a RawValue is self-describing by construction,
// so there is nothing left to look up.
func (r RawValue) EncodeValue(ve *ValueEncoder, id TypeID) error {
	switch id {
	case BoolID:
		_, err := ve.EmitBool(id, r.Bool)
		return err
	case IntID:
		_, err := ve.EmitInt(id, r.Int)
		return err
	case UintID:
		_, err := ve.EmitUint(id, r.Uint)
		return err
	case FloatID:
		_, err := ve.EmitFloat(id, r.Float)
		return err
	case ComplexID:
		_, err := ve.EmitComplex(id, r.Complex)
		return err
	case BytesID:
		_, err := ve.EmitBytes(id, r.Bytes)
		return err
	case StringID:
		_, err := ve.EmitString(id, r.Str)
		return err
	}

	switch r.Kind {
	case KindSeq:
		return r.encodeSeq(ve, id)
	case KindMap:
		return r.encodeMap(ve, id)
	default:
		return r.encodeStruct(ve, id)
	}
}

func (r RawValue) encodeSeq(ve *ValueEncoder, id TypeID) error {
	ve.buf.AppendUvarint(uint64(len(r.Seq)))
	for _, elem := range r.Seq {
		if err := elem.EncodeValue(ve, elem.TypeID); err != nil {
			return err
		}
	}
	return nil
}

func (r RawValue) encodeMap(ve *ValueEncoder, id TypeID) error {
	ve.buf.AppendUvarint(uint64(len(r.Map)))
	for _, entry := range r.Map {
		if err := entry.Key.EncodeValue(ve, entry.Key.TypeID); err != nil {
			return err
		}
		if err := entry.Val.EncodeValue(ve, entry.Val.TypeID); err != nil {
			return err
		}
	}
	return nil
}

func (r RawValue) encodeStruct(ve *ValueEncoder, id TypeID) error {
	s := &StructEncoder{ve: ve, Fields: nil, lastIdx: -1}
	for _, f := range r.Struct {
		fv := f.Value
		if err := s.Field(f.Index, func(ve *ValueEncoder) (bool, error) {
			if err := fv.EncodeValue(ve, fv.TypeID); err != nil {
				return false, err
			}
			return false, nil
		}); err != nil {
			return err
		}
	}
	s.End()
	return nil
}
