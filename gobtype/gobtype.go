// Package gobtype is the reflective bridge between ordinary Go values and
// the wire protocol's Value/Decodable interfaces. The core package
// (gobwire) never imports reflect — callers that want to hand it a plain
// struct instead of hand-writing EncodeValue/DecodeValue go through here.
//
// Struct fields are named on the wire by their Go field name, overridable
// with a `gob:"name"` tag (mirroring the teacher's own tag-driven schema
// naming, generalized from its "glint" tag to this package's own). Only
// exported fields participate.
package gobtype

import (
	"fmt"
	"reflect"

	"github.com/kungfusheep/gobwire"
)

const tagName = "gob"

// Binder derives wire Type shapes from Go reflect.Type values and caches
// the resulting TypeIDs, so repeatedly binding values of the same Go type
// against the same Registry doesn't re-walk the type via reflection every
// time.
type Binder struct {
	reg   *gobwire.Registry
	cache map[reflect.Type]gobwire.TypeID
}

// NewBinder builds a Binder that registers derived types into reg as they
// are encountered.
func NewBinder(reg *gobwire.Registry) *Binder {
	return &Binder{reg: reg, cache: map[reflect.Type]gobwire.TypeID{}}
}

// Bind wraps v (which must be a non-nil pointer to a struct, slice, array,
// or map) for serialization. The same *Value can later be handed to
// DecodeValue by a peer holding an independently-constructed decode-only
// binding — see Unmarshal and To.
func (b *Binder) Bind(v any) (*Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return nil, fmt.Errorf("gobtype: Bind requires a non-nil pointer, got %T", v)
	}
	elem := rv.Elem()
	id, err := b.register(elem.Type())
	if err != nil {
		return nil, err
	}
	gt, _ := b.reg.Lookup(id)
	return &Value{binder: b, rv: elem, id: id, gt: gt}, nil
}

// fieldName resolves a struct field's wire name: the gob tag if present,
// else the Go field name.
func fieldName(sf reflect.StructField) string {
	if tag, ok := sf.Tag.Lookup(tagName); ok && tag != "" {
		return tag
	}
	return sf.Name
}

// exportedFields returns t's exported fields in declaration order, shared
// by both derivation and encode/decode so the two always agree on which
// fields participate.
func exportedFields(t reflect.Type) []reflect.StructField {
	fields := make([]reflect.StructField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		fields = append(fields, sf)
	}
	return fields
}

// register derives (and registers, recursively) the wire Type for a Go
// reflect.Type, returning its TypeID. Pointer types lower to Option, i.e.
// they register as their element's own id (§4.4) — a pointer never mints
// an id of its own.
func (b *Binder) register(t reflect.Type) (gobwire.TypeID, error) {
	if t.Kind() == reflect.Ptr {
		inner, err := b.register(t.Elem())
		if err != nil {
			return 0, err
		}
		return b.reg.Register(gobwire.NewOptionType(inner))
	}

	if id, ok := b.cache[t]; ok {
		return id, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return gobwire.BoolID, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return gobwire.IntID, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return gobwire.UintID, nil
	case reflect.Float32, reflect.Float64:
		return gobwire.FloatID, nil
	case reflect.Complex64, reflect.Complex128:
		return gobwire.ComplexID, nil
	case reflect.String:
		return gobwire.StringID, nil
	}

	var gt gobwire.Type
	switch t.Kind() {
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return gobwire.BytesID, nil
		}
		elemID, err := b.register(t.Elem())
		if err != nil {
			return 0, err
		}
		gt = gobwire.NewSliceType(elemID)

	case reflect.Array:
		elemID, err := b.register(t.Elem())
		if err != nil {
			return 0, err
		}
		gt = gobwire.NewArrayType(elemID, t.Len())

	case reflect.Map:
		keyID, err := b.register(t.Key())
		if err != nil {
			return 0, err
		}
		valID, err := b.register(t.Elem())
		if err != nil {
			return 0, err
		}
		gt = gobwire.NewMapType(keyID, valID)

	case reflect.Struct:
		sfs := exportedFields(t)
		fields := make([]gobwire.Field, len(sfs))
		for i, sf := range sfs {
			fid, err := b.register(sf.Type)
			if err != nil {
				return 0, fmt.Errorf("gobtype: field %s.%s: %w", t.Name(), sf.Name, err)
			}
			fields[i] = gobwire.Field{Name: fieldName(sf), Type: fid}
		}
		gt = gobwire.NewStructType(t.Name(), fields)

	default:
		return 0, fmt.Errorf("gobtype: unsupported Go kind %s", t.Kind())
	}

	id, err := b.reg.Register(gt)
	if err != nil {
		return 0, err
	}
	b.cache[t] = id
	return id, nil
}

// Value adapts a bound Go value to gobwire.Value (encode) and
// gobwire.Decodable (decode); Bind produces one. Decoding into a plain
// pointer without a Value goes through To or Unmarshal.
type Value struct {
	binder *Binder
	rv     reflect.Value
	id     gobwire.TypeID
	gt     gobwire.Type
}

// GobType implements gobwire.Value.
func (v *Value) GobType() gobwire.Type { return v.gt }

// EncodeValue implements gobwire.Value.
func (v *Value) EncodeValue(ve *gobwire.ValueEncoder, id gobwire.TypeID) error {
	_, err := encodeReflect(ve, v.binder.reg, id, v.rv)
	return err
}

// DecodeValue implements gobwire.Decodable, letting a *Value bound for
// encode also serve as a decode target (e.g. round-trip tests).
func (v *Value) DecodeValue(vd *gobwire.ValueDecoder, id gobwire.TypeID) error {
	return decodeReflect(vd, id, v.rv)
}

// encodeReflect writes rv's bytes against expect, reporting emptiness for
// the struct-field-omission rule (§4.6).
func encodeReflect(ve *gobwire.ValueEncoder, reg gobwire.TypeLookup, expect gobwire.TypeID, rv reflect.Value) (bool, error) {
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ve.EmitNone(reg, expect)
		}
		return encodeReflect(ve, reg, expect, rv.Elem())
	}

	switch rv.Kind() {
	case reflect.Bool:
		return ve.EmitBool(expect, rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ve.EmitInt(expect, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return ve.EmitUint(expect, rv.Uint())
	case reflect.Float32, reflect.Float64:
		return ve.EmitFloat(expect, rv.Float())
	case reflect.Complex64, reflect.Complex128:
		return ve.EmitComplex(expect, rv.Complex())
	case reflect.String:
		return ve.EmitString(expect, rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return ve.EmitBytes(expect, rv.Bytes())
		}
		return encodeSeq(ve, reg, expect, rv)
	case reflect.Array:
		return encodeSeq(ve, reg, expect, rv)
	case reflect.Map:
		return encodeMap(ve, reg, expect, rv)
	case reflect.Struct:
		return encodeStruct(ve, reg, expect, rv)
	default:
		return false, fmt.Errorf("gobtype: unsupported Go kind %s", rv.Kind())
	}
}

func encodeSeq(ve *gobwire.ValueEncoder, reg gobwire.TypeLookup, expect gobwire.TypeID, rv reflect.Value) (bool, error) {
	seq, err := ve.BeginSeq(reg, expect, rv.Len())
	if err != nil {
		return false, err
	}
	for i := 0; i < rv.Len(); i++ {
		idx := i
		if err := seq.Element(func(ve *gobwire.ValueEncoder) error {
			_, err := encodeReflect(ve, reg, seq.Elem, rv.Index(idx))
			return err
		}); err != nil {
			return false, err
		}
	}
	return rv.Len() == 0, nil
}

func encodeMap(ve *gobwire.ValueEncoder, reg gobwire.TypeLookup, expect gobwire.TypeID, rv reflect.Value) (bool, error) {
	m, err := ve.BeginMap(reg, expect, rv.Len())
	if err != nil {
		return false, err
	}
	iter := rv.MapRange()
	for iter.Next() {
		k, v := iter.Key(), iter.Value()
		if err := m.Entry(
			func(ve *gobwire.ValueEncoder) error { _, err := encodeReflect(ve, reg, m.Key, k); return err },
			func(ve *gobwire.ValueEncoder) error { _, err := encodeReflect(ve, reg, m.Val, v); return err },
		); err != nil {
			return false, err
		}
	}
	return rv.Len() == 0, nil
}

func encodeStruct(ve *gobwire.ValueEncoder, reg gobwire.TypeLookup, expect gobwire.TypeID, rv reflect.Value) (bool, error) {
	s, err := ve.BeginStruct(reg, expect)
	if err != nil {
		return false, err
	}
	sfs := exportedFields(rv.Type())
	for i, sf := range sfs {
		if i >= len(s.Fields) {
			break
		}
		idx := i
		if err := s.Field(idx, func(ve *gobwire.ValueEncoder) (bool, error) {
			return encodeReflect(ve, reg, s.Fields[idx].Type, rv.FieldByIndex(sf.Index))
		}); err != nil {
			return false, err
		}
	}
	s.End()
	return false, nil
}

// target adapts a plain Go pointer to gobwire.Decodable, for use with
// StreamDeserializer.DeserializeValue.
type target struct{ dst any }

// To wraps dst (a non-nil pointer) as a gobwire.Decodable.
func To(dst any) gobwire.Decodable { return target{dst: dst} }

func (t target) DecodeValue(vd *gobwire.ValueDecoder, id gobwire.TypeID) error {
	return Unmarshal(vd, id, t.dst)
}

// Unmarshal decodes id/vd into dst, a non-nil pointer. Field matching is by
// wire field name against dst's own field names/tags, so fields the wire
// has that dst lacks (or vice versa) are tolerated — unknown incoming
// fields are skipped rather than erroring, matching the self-describing
// format's schema-evolution intent (§4.7).
func Unmarshal(vd *gobwire.ValueDecoder, id gobwire.TypeID, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("gobtype: Unmarshal requires a non-nil pointer, got %T", dst)
	}
	return decodeReflect(vd, id, rv.Elem())
}

func decodeReflect(vd *gobwire.ValueDecoder, id gobwire.TypeID, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return decodeReflect(vd, id, rv.Elem())
	case reflect.Bool:
		v, err := vd.DecodeBool(id)
		if err != nil {
			return err
		}
		rv.SetBool(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := vd.DecodeInt(id)
		if err != nil {
			return err
		}
		rv.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v, err := vd.DecodeUint(id)
		if err != nil {
			return err
		}
		rv.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := vd.DecodeFloat(id)
		if err != nil {
			return err
		}
		rv.SetFloat(v)
	case reflect.Complex64, reflect.Complex128:
		v, err := vd.DecodeComplex(id)
		if err != nil {
			return err
		}
		rv.SetComplex(v)
	case reflect.String:
		v, err := vd.DecodeString(id)
		if err != nil {
			return err
		}
		rv.SetString(v)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			v, err := vd.DecodeBytes(id)
			if err != nil {
				return err
			}
			rv.SetBytes(append([]byte(nil), v...))
			return nil
		}
		return decodeSeq(vd, id, rv)
	case reflect.Array:
		return decodeSeq(vd, id, rv)
	case reflect.Map:
		return decodeMap(vd, id, rv)
	case reflect.Struct:
		return decodeStruct(vd, id, rv)
	default:
		return fmt.Errorf("gobtype: unsupported Go kind %s", rv.Kind())
	}
	return nil
}

func decodeSeq(vd *gobwire.ValueDecoder, id gobwire.TypeID, rv reflect.Value) error {
	sd, err := vd.BeginSeq(id)
	if err != nil {
		return err
	}
	if rv.Kind() == reflect.Slice {
		rv.Set(reflect.MakeSlice(rv.Type(), sd.Len, sd.Len))
	} else if sd.Len != rv.Len() {
		return fmt.Errorf("gobtype: array length mismatch: have %d, wire has %d", rv.Len(), sd.Len)
	}
	i := 0
	for {
		idx := i
		more, err := sd.Next(func(vd *gobwire.ValueDecoder) error {
			return decodeReflect(vd, sd.Elem, rv.Index(idx))
		})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		i++
	}
}

func decodeMap(vd *gobwire.ValueDecoder, id gobwire.TypeID, rv reflect.Value) error {
	md, err := vd.BeginMap(id)
	if err != nil {
		return err
	}
	rv.Set(reflect.MakeMapWithSize(rv.Type(), md.Len))
	for {
		key := reflect.New(rv.Type().Key()).Elem()
		val := reflect.New(rv.Type().Elem()).Elem()
		more, err := md.Next(
			func(vd *gobwire.ValueDecoder) error { return decodeReflect(vd, md.Key, key) },
			func(vd *gobwire.ValueDecoder) error { return decodeReflect(vd, md.Val, val) },
		)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		rv.SetMapIndex(key, val)
	}
}

func decodeStruct(vd *gobwire.ValueDecoder, id gobwire.TypeID, rv reflect.Value) error {
	sd, err := vd.BeginStruct(id)
	if err != nil {
		return err
	}

	byName := map[string]reflect.Value{}
	for _, sf := range exportedFields(rv.Type()) {
		byName[fieldName(sf)] = rv.FieldByIndex(sf.Index)
	}

	for {
		done, err := sd.Next(func(_ int, field gobwire.Field, vd *gobwire.ValueDecoder) error {
			dst, ok := byName[field.Name]
			if !ok {
				return vd.SkipValue(field.Type)
			}
			return decodeReflect(vd, field.Type, dst)
		})
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}
