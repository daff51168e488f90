package gobwire

// wiretype.go holds the self-describing schema records (§4.5, §6): the
// builtin Type definitions for ids 16-23, the Go-native record shapes that
// mirror them, translation between the abstract Type model and those
// records, and the hand-written encode/decode pair that turns a record
// into bytes (and back) using the same ValueEncoder/ValueDecoder
// machinery every other value goes through — because a WireType record is
// not special-cased wire format, it's an ordinary struct value of a
// builtin type.

// BuiltinWireTypeDefs returns the hardcoded Type descriptions for ids
// 16-23. These are never transmitted and never pass through Register: both
// sides of a stream know them by convention (§4.5 "the decoder pre-seeds
// ... without ever receiving a definition for them").
func BuiltinWireTypeDefs() map[TypeID]Type {
	return map[TypeID]Type{
		CommonTypeID: NewStructType("CommonType", []Field{
			{Name: "Name", Type: StringID},
			{Name: "Id", Type: IntID},
		}),
		FieldTypeID: NewStructType("FieldType", []Field{
			{Name: "Name", Type: StringID},
			{Name: "Id", Type: IntID},
		}),
		fieldTypeSliceID: NewSliceType(FieldTypeID),
		ArrayTypeID: NewStructType("ArrayType", []Field{
			{Name: "CommonType", Type: CommonTypeID},
			{Name: "Elem", Type: IntID},
			{Name: "Len", Type: IntID},
		}),
		SliceTypeID: NewStructType("SliceType", []Field{
			{Name: "CommonType", Type: CommonTypeID},
			{Name: "Elem", Type: IntID},
		}),
		StructTypeID: NewStructType("StructType", []Field{
			{Name: "CommonType", Type: CommonTypeID},
			{Name: "Field", Type: fieldTypeSliceID},
		}),
		MapTypeID: NewStructType("MapType", []Field{
			{Name: "CommonType", Type: CommonTypeID},
			{Name: "Key", Type: IntID},
			{Name: "Elem", Type: IntID},
		}),
		WireTypeID: NewStructType("WireType", []Field{
			{Name: "ArrayT", Type: ArrayTypeID},
			{Name: "SliceT", Type: SliceTypeID},
			{Name: "StructT", Type: StructTypeID},
			{Name: "MapT", Type: MapTypeID},
		}),
	}
}

// commonType, fieldType and friends are the Go-native mirrors of the
// builtin records above — plain structs, not run through gobtype's
// reflective bridge (that bridge is for user types; these are internal
// bootstrap plumbing the registry itself produces and consumes).
type commonType struct {
	Name string
	Id   TypeID
}

type fieldType struct {
	Name string
	Id   TypeID
}

type arrayType struct {
	Common commonType
	Elem   TypeID
	Len    int
}

type sliceType struct {
	Common commonType
	Elem   TypeID
}

type structType struct {
	Common commonType
	Field  []fieldType
}

type mapType struct {
	Common commonType
	Key    TypeID
	Elem   TypeID
}

// wireTypeRecord is the Go-native mirror of the WireType struct-of-options
// (§4.5, §6): exactly one of the four pointers is non-nil. Encoding it
// through the ordinary struct encoder — one Field call for the active
// member, none for the rest — produces exactly this shape "for free" (§9).
type wireTypeRecord struct {
	ArrayT  *arrayType
	SliceT  *sliceType
	StructT *structType
	MapT    *mapType
}

// translateToWireType converts an abstract Type, freshly assigned id, into
// its WireType record form (§4.5's "the registry must translate ... into
// one of these four record shapes"). t must already be lowered: a
// KindEnum value must never reach here directly — Register lowers Enum to
// a KindStruct before calling this.
func translateToWireType(id TypeID, t Type) (wireTypeRecord, error) {
	switch t.Kind {
	case KindSeq:
		if t.Len != nil {
			return wireTypeRecord{ArrayT: &arrayType{
				Common: commonType{Name: t.Name, Id: id},
				Elem:   t.Elem,
				Len:    *t.Len,
			}}, nil
		}
		return wireTypeRecord{SliceT: &sliceType{
			Common: commonType{Name: t.Name, Id: id},
			Elem:   t.Elem,
		}}, nil

	case KindMap:
		return wireTypeRecord{MapT: &mapType{
			Common: commonType{Name: t.Name, Id: id},
			Key:    t.Key,
			Elem:   t.Val,
		}}, nil

	case KindStruct:
		fields := make([]fieldType, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = fieldType{Name: f.Name, Id: f.Type}
		}
		return wireTypeRecord{StructT: &structType{
			Common: commonType{Name: t.Name, Id: id},
			Field:  fields,
		}}, nil

	default:
		return wireTypeRecord{}, serializeErr("translateToWireType: unsupported kind %v for id %d", t.Kind, id)
	}
}

// typeFromWireType is translateToWireType's inverse, used when the decoder
// absorbs an incoming type-definition section (§4.5).
func typeFromWireType(w wireTypeRecord) (TypeID, Type, error) {
	switch {
	case w.ArrayT != nil:
		l := w.ArrayT.Len
		return w.ArrayT.Common.Id, Type{Kind: KindSeq, Name: w.ArrayT.Common.Name, Elem: w.ArrayT.Elem, Len: &l}, nil
	case w.SliceT != nil:
		return w.SliceT.Common.Id, Type{Kind: KindSeq, Name: w.SliceT.Common.Name, Elem: w.SliceT.Elem}, nil
	case w.StructT != nil:
		fields := make([]Field, len(w.StructT.Field))
		for i, f := range w.StructT.Field {
			fields[i] = Field{Name: f.Name, Type: f.Id}
		}
		return w.StructT.Common.Id, Type{Kind: KindStruct, Name: w.StructT.Common.Name, Fields: fields}, nil
	case w.MapT != nil:
		return w.MapT.Common.Id, Type{Kind: KindMap, Name: w.MapT.Common.Name, Key: w.MapT.Key, Val: w.MapT.Elem}, nil
	default:
		return 0, Type{}, deserializeErr("WireType record has no active member")
	}
}

// encodeCommonType/encodeFieldType are shared helpers: CommonType and
// FieldType have the identical {Name string; Id TypeID} shape but distinct
// wire ids, so they aren't interchangeable despite the code reuse.
func encodeCommonType(ve *ValueEncoder, expect TypeID, c commonType) (bool, error) {
	s, err := ve.BeginStruct(globalBuiltins, expect)
	if err != nil {
		return false, err
	}
	if err := s.Field(0, func(ve *ValueEncoder) (bool, error) { return ve.EmitString(StringID, c.Name) }); err != nil {
		return false, err
	}
	if err := s.Field(1, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, int64(c.Id)) }); err != nil {
		return false, err
	}
	s.End()
	return false, nil
}

func encodeFieldType(ve *ValueEncoder, f fieldType) error {
	s, err := ve.BeginStruct(globalBuiltins, FieldTypeID)
	if err != nil {
		return err
	}
	if err := s.Field(0, func(ve *ValueEncoder) (bool, error) { return ve.EmitString(StringID, f.Name) }); err != nil {
		return err
	}
	if err := s.Field(1, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, int64(f.Id)) }); err != nil {
		return err
	}
	s.End()
	return nil
}

// encodeWireType serializes rec as a WireType struct value, against the
// builtin schema returned by BuiltinWireTypeDefs. This is the payload that
// goes out in a type-definition section's body (§4.5).
func encodeWireType(buf *Buffer, rec wireTypeRecord) error {
	ve := NewValueEncoder(buf)
	s, err := ve.BeginStruct(globalBuiltins, WireTypeID)
	if err != nil {
		return err
	}

	if rec.ArrayT != nil {
		if err := s.Field(0, func(ve *ValueEncoder) (bool, error) {
			return encodeArrayType(ve, *rec.ArrayT)
		}); err != nil {
			return err
		}
	}
	if rec.SliceT != nil {
		if err := s.Field(1, func(ve *ValueEncoder) (bool, error) {
			return encodeSliceType(ve, *rec.SliceT)
		}); err != nil {
			return err
		}
	}
	if rec.StructT != nil {
		if err := s.Field(2, func(ve *ValueEncoder) (bool, error) {
			return encodeStructType(ve, *rec.StructT)
		}); err != nil {
			return err
		}
	}
	if rec.MapT != nil {
		if err := s.Field(3, func(ve *ValueEncoder) (bool, error) {
			return encodeMapType(ve, *rec.MapT)
		}); err != nil {
			return err
		}
	}
	s.End()
	return nil
}

func encodeArrayType(ve *ValueEncoder, a arrayType) (bool, error) {
	s, err := ve.BeginStruct(globalBuiltins, ArrayTypeID)
	if err != nil {
		return false, err
	}
	if err := s.Field(0, func(ve *ValueEncoder) (bool, error) { return encodeCommonType(ve, CommonTypeID, a.Common) }); err != nil {
		return false, err
	}
	if err := s.Field(1, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, int64(a.Elem)) }); err != nil {
		return false, err
	}
	if err := s.Field(2, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, int64(a.Len)) }); err != nil {
		return false, err
	}
	s.End()
	return false, nil
}

func encodeSliceType(ve *ValueEncoder, sl sliceType) (bool, error) {
	s, err := ve.BeginStruct(globalBuiltins, SliceTypeID)
	if err != nil {
		return false, err
	}
	if err := s.Field(0, func(ve *ValueEncoder) (bool, error) { return encodeCommonType(ve, CommonTypeID, sl.Common) }); err != nil {
		return false, err
	}
	if err := s.Field(1, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, int64(sl.Elem)) }); err != nil {
		return false, err
	}
	s.End()
	return false, nil
}

func encodeStructType(ve *ValueEncoder, st structType) (bool, error) {
	s, err := ve.BeginStruct(globalBuiltins, StructTypeID)
	if err != nil {
		return false, err
	}
	if err := s.Field(0, func(ve *ValueEncoder) (bool, error) { return encodeCommonType(ve, CommonTypeID, st.Common) }); err != nil {
		return false, err
	}
	if err := s.Field(1, func(ve *ValueEncoder) (bool, error) {
		seq, err := ve.BeginSeq(globalBuiltins, fieldTypeSliceID, len(st.Field))
		if err != nil {
			return false, err
		}
		for _, f := range st.Field {
			if err := seq.Element(func(ve *ValueEncoder) error { return encodeFieldType(ve, f) }); err != nil {
				return false, err
			}
		}
		return len(st.Field) == 0, nil
	}); err != nil {
		return false, err
	}
	s.End()
	return false, nil
}

func encodeMapType(ve *ValueEncoder, m mapType) (bool, error) {
	s, err := ve.BeginStruct(globalBuiltins, MapTypeID)
	if err != nil {
		return false, err
	}
	if err := s.Field(0, func(ve *ValueEncoder) (bool, error) { return encodeCommonType(ve, CommonTypeID, m.Common) }); err != nil {
		return false, err
	}
	if err := s.Field(1, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, int64(m.Key)) }); err != nil {
		return false, err
	}
	if err := s.Field(2, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, int64(m.Elem)) }); err != nil {
		return false, err
	}
	s.End()
	return false, nil
}

// decodeWireType parses a WireType struct value out of c.
func decodeWireType(c *Cursor) (wireTypeRecord, error) {
	vd := NewValueDecoder(c, globalBuiltins)
	sd, err := vd.BeginStruct(WireTypeID)
	if err != nil {
		return wireTypeRecord{}, err
	}

	var rec wireTypeRecord
	for {
		done, err := sd.Next(func(idx int, field Field, vd *ValueDecoder) error {
			switch idx {
			case 0:
				a, err := decodeArrayType(vd)
				if err != nil {
					return err
				}
				rec.ArrayT = &a
			case 1:
				sl, err := decodeSliceType(vd)
				if err != nil {
					return err
				}
				rec.SliceT = &sl
			case 2:
				st, err := decodeStructType(vd)
				if err != nil {
					return err
				}
				rec.StructT = &st
			case 3:
				m, err := decodeMapType(vd)
				if err != nil {
					return err
				}
				rec.MapT = &m
			}
			return nil
		})
		if err != nil {
			return wireTypeRecord{}, err
		}
		if done {
			return rec, nil
		}
	}
}

func decodeCommonType(vd *ValueDecoder) (commonType, error) {
	sd, err := vd.BeginStruct(CommonTypeID)
	if err != nil {
		return commonType{}, err
	}
	var c commonType
	for {
		done, err := sd.Next(func(idx int, field Field, vd *ValueDecoder) error {
			switch idx {
			case 0:
				v, err := vd.DecodeString(StringID)
				c.Name = v
				return err
			case 1:
				v, err := vd.DecodeInt(IntID)
				c.Id = TypeID(v)
				return err
			}
			return nil
		})
		if err != nil {
			return commonType{}, err
		}
		if done {
			return c, nil
		}
	}
}

func decodeFieldType(vd *ValueDecoder) (fieldType, error) {
	sd, err := vd.BeginStruct(FieldTypeID)
	if err != nil {
		return fieldType{}, err
	}
	var f fieldType
	for {
		done, err := sd.Next(func(idx int, field Field, vd *ValueDecoder) error {
			switch idx {
			case 0:
				v, err := vd.DecodeString(StringID)
				f.Name = v
				return err
			case 1:
				v, err := vd.DecodeInt(IntID)
				f.Id = TypeID(v)
				return err
			}
			return nil
		})
		if err != nil {
			return fieldType{}, err
		}
		if done {
			return f, nil
		}
	}
}

func decodeArrayType(vd *ValueDecoder) (arrayType, error) {
	sd, err := vd.BeginStruct(ArrayTypeID)
	if err != nil {
		return arrayType{}, err
	}
	var a arrayType
	for {
		done, err := sd.Next(func(idx int, field Field, vd *ValueDecoder) error {
			switch idx {
			case 0:
				c, err := decodeCommonType(vd)
				a.Common = c
				return err
			case 1:
				v, err := vd.DecodeInt(IntID)
				a.Elem = TypeID(v)
				return err
			case 2:
				v, err := vd.DecodeInt(IntID)
				a.Len = int(v)
				return err
			}
			return nil
		})
		if err != nil {
			return arrayType{}, err
		}
		if done {
			return a, nil
		}
	}
}

func decodeSliceType(vd *ValueDecoder) (sliceType, error) {
	sd, err := vd.BeginStruct(SliceTypeID)
	if err != nil {
		return sliceType{}, err
	}
	var sl sliceType
	for {
		done, err := sd.Next(func(idx int, field Field, vd *ValueDecoder) error {
			switch idx {
			case 0:
				c, err := decodeCommonType(vd)
				sl.Common = c
				return err
			case 1:
				v, err := vd.DecodeInt(IntID)
				sl.Elem = TypeID(v)
				return err
			}
			return nil
		})
		if err != nil {
			return sliceType{}, err
		}
		if done {
			return sl, nil
		}
	}
}

func decodeStructType(vd *ValueDecoder) (structType, error) {
	sd, err := vd.BeginStruct(StructTypeID)
	if err != nil {
		return structType{}, err
	}
	var st structType
	for {
		done, err := sd.Next(func(idx int, field Field, vd *ValueDecoder) error {
			switch idx {
			case 0:
				c, err := decodeCommonType(vd)
				st.Common = c
				return err
			case 1:
				seq, err := vd.BeginSeq(fieldTypeSliceID)
				if err != nil {
					return err
				}
				fields := make([]fieldType, 0, seq.Len)
				for {
					more, err := seq.Next(func(vd *ValueDecoder) error {
						f, err := decodeFieldType(vd)
						if err != nil {
							return err
						}
						fields = append(fields, f)
						return nil
					})
					if err != nil {
						return err
					}
					if !more {
						break
					}
				}
				st.Field = fields
			}
			return nil
		})
		if err != nil {
			return structType{}, err
		}
		if done {
			return st, nil
		}
	}
}

func decodeMapType(vd *ValueDecoder) (mapType, error) {
	sd, err := vd.BeginStruct(MapTypeID)
	if err != nil {
		return mapType{}, err
	}
	var m mapType
	for {
		done, err := sd.Next(func(idx int, field Field, vd *ValueDecoder) error {
			switch idx {
			case 0:
				c, err := decodeCommonType(vd)
				m.Common = c
				return err
			case 1:
				v, err := vd.DecodeInt(IntID)
				m.Key = TypeID(v)
				return err
			case 2:
				v, err := vd.DecodeInt(IntID)
				m.Elem = TypeID(v)
				return err
			}
			return nil
		})
		if err != nil {
			return mapType{}, err
		}
		if done {
			return m, nil
		}
	}
}

// builtinLookup implements TypeLookup over BuiltinWireTypeDefs, used by
// the schema-record encode/decode helpers above — they only ever reach
// into the fixed builtin shapes (CommonType, FieldType, ...), never a
// stream's custom registry, so a package-level instance suffices.
type builtinLookup map[TypeID]Type

func (b builtinLookup) Lookup(id TypeID) (Type, bool) {
	t, ok := b[id]
	return t, ok
}

var globalBuiltins = builtinLookup(BuiltinWireTypeDefs())
