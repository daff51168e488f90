package gobwire

// topLevelValue is implemented by the bare-scalar Value wrappers below:
// their wire id is always one of the builtin primitive ids, known to
// every Registry/DecoderRegistry without a type-definition section, so
// SerializeValue can skip registration entirely when it sees one.
type topLevelValue interface {
	builtinID() TypeID
}

// BoolValue adapts a bare bool for direct top-level serialization (§8
// scenario 1), bypassing the struct/seq/map shape that GobType/EncodeValue
// normally describe.
type BoolValue bool

func (BoolValue) GobType() Type     { return Type{} }
func (BoolValue) builtinID() TypeID { return BoolID }

// EncodeValue implements Value.
func (v BoolValue) EncodeValue(ve *ValueEncoder, id TypeID) error {
	return ve.EmitTopLevel(func(ve *ValueEncoder) error {
		_, err := ve.EmitBool(id, bool(v))
		return err
	})
}

// DecodeValue implements Decodable.
func (v *BoolValue) DecodeValue(vd *ValueDecoder, id TypeID) error {
	return vd.DecodeTopLevel(func(vd *ValueDecoder) error {
		b, err := vd.DecodeBool(id)
		if err != nil {
			return err
		}
		*v = BoolValue(b)
		return nil
	})
}

// IntValue adapts a bare signed integer for direct top-level serialization
// (§8 scenario 3).
type IntValue int64

func (IntValue) GobType() Type     { return Type{} }
func (IntValue) builtinID() TypeID { return IntID }

func (v IntValue) EncodeValue(ve *ValueEncoder, id TypeID) error {
	return ve.EmitTopLevel(func(ve *ValueEncoder) error {
		_, err := ve.EmitInt(id, int64(v))
		return err
	})
}

func (v *IntValue) DecodeValue(vd *ValueDecoder, id TypeID) error {
	return vd.DecodeTopLevel(func(vd *ValueDecoder) error {
		n, err := vd.DecodeInt(id)
		if err != nil {
			return err
		}
		*v = IntValue(n)
		return nil
	})
}

// UintValue adapts a bare unsigned integer for direct top-level
// serialization (§8 scenario 2).
type UintValue uint64

func (UintValue) GobType() Type     { return Type{} }
func (UintValue) builtinID() TypeID { return UintID }

func (v UintValue) EncodeValue(ve *ValueEncoder, id TypeID) error {
	return ve.EmitTopLevel(func(ve *ValueEncoder) error {
		_, err := ve.EmitUint(id, uint64(v))
		return err
	})
}

func (v *UintValue) DecodeValue(vd *ValueDecoder, id TypeID) error {
	return vd.DecodeTopLevel(func(vd *ValueDecoder) error {
		n, err := vd.DecodeUint(id)
		if err != nil {
			return err
		}
		*v = UintValue(n)
		return nil
	})
}

// FloatValue adapts a bare float64 for direct top-level serialization (§8
// scenario 4).
type FloatValue float64

func (FloatValue) GobType() Type     { return Type{} }
func (FloatValue) builtinID() TypeID { return FloatID }

func (v FloatValue) EncodeValue(ve *ValueEncoder, id TypeID) error {
	return ve.EmitTopLevel(func(ve *ValueEncoder) error {
		_, err := ve.EmitFloat(id, float64(v))
		return err
	})
}

func (v *FloatValue) DecodeValue(vd *ValueDecoder, id TypeID) error {
	return vd.DecodeTopLevel(func(vd *ValueDecoder) error {
		f, err := vd.DecodeFloat(id)
		if err != nil {
			return err
		}
		*v = FloatValue(f)
		return nil
	})
}

// StringValue adapts a bare string for direct top-level serialization (§8
// scenario 5).
type StringValue string

func (StringValue) GobType() Type     { return Type{} }
func (StringValue) builtinID() TypeID { return StringID }

func (v StringValue) EncodeValue(ve *ValueEncoder, id TypeID) error {
	return ve.EmitTopLevel(func(ve *ValueEncoder) error {
		_, err := ve.EmitString(id, string(v))
		return err
	})
}

func (v *StringValue) DecodeValue(vd *ValueDecoder, id TypeID) error {
	return vd.DecodeTopLevel(func(vd *ValueDecoder) error {
		s, err := vd.DecodeString(id)
		if err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	})
}
