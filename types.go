package gobwire

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeID is a non-zero signed integer identifying a type on the wire.
// Builtin primitives and the self-describing schema records occupy the
// low range; custom types start at 65 and increment (§3).
type TypeID int64

const (
	// BoolID is the builtin boolean primitive.
	BoolID TypeID = 1
	// IntID is the builtin signed zigzag-varint primitive.
	IntID TypeID = 2
	// UintID is the builtin unsigned varint primitive.
	UintID TypeID = 3
	// FloatID is the builtin IEEE-754 double primitive.
	FloatID TypeID = 4
	// BytesID is the builtin length-prefixed raw bytes primitive.
	BytesID TypeID = 5
	// StringID is the builtin length-prefixed UTF-8 primitive.
	StringID TypeID = 6
	// ComplexID is the builtin pair-of-floats primitive.
	ComplexID TypeID = 7

	// WireTypeID is the id of the self-describing WireType record itself
	// (§4.5, §6).
	WireTypeID TypeID = 16
	// CommonTypeID is the id of the CommonType{Name,Id} record.
	CommonTypeID TypeID = 17
	// FieldTypeID is the id of the FieldType{Name,Id} record.
	FieldTypeID TypeID = 18
	// ArrayTypeID is the id of the ArrayType record.
	ArrayTypeID TypeID = 19
	// SliceTypeID is the id of the SliceType record.
	SliceTypeID TypeID = 20
	// StructTypeID is the id of the StructType record.
	StructTypeID TypeID = 21
	// MapTypeID is the id of the MapType record.
	MapTypeID TypeID = 22
	// fieldTypeSliceID is the id of "[]FieldType", used internally by
	// StructType's Fields member.
	fieldTypeSliceID TypeID = 23

	// FirstUserTypeID is the first id handed out to a custom type (§3).
	FirstUserTypeID TypeID = 65
)

func isBuiltinPrimitive(id TypeID) bool {
	switch id {
	case BoolID, IntID, UintID, FloatID, BytesID, StringID, ComplexID:
		return true
	}
	return false
}

// Kind discriminates the wire-level shapes a registered Type can take.
// Tuple/TupleStruct/NewtypeStruct/UnitStruct from spec.md §3 are not
// separate Kinds here: per §4.5 they are "reducible to the above", so
// their constructors (NewTupleType et al., below) build a KindStruct
// value directly rather than carrying their own wire representation.
type Kind uint8

const (
	// KindOption never reaches the registry: Register collapses it to
	// the inner type's id immediately (§4.4).
	KindOption Kind = iota
	KindSeq
	KindMap
	KindStruct
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindOption:
		return "option"
	case KindSeq:
		return "seq"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	default:
		return "invalid"
	}
}

// Field is one member of a Struct-kind Type: a name and the TypeID of its
// declared value. Field order is the order struct delta-encoding indexes
// against (§3 invariant 5).
type Field struct {
	Name string
	Type TypeID
}

// Variant is one arm of an Enum-kind Type. Exactly one of Newtype or
// Fields must be set: Newtype describes a single-value payload, Fields
// describes a struct-shaped payload. A Variant with neither set is a unit
// variant, which §9 says Register must reject.
type Variant struct {
	Name    string
	Newtype *TypeID
	Fields  []Field
}

func (v Variant) isUnit() bool { return v.Newtype == nil && v.Fields == nil }
func (v Variant) isStructShaped() bool { return v.Fields != nil }

// Type is the abstract description of a registerable type (§3). Zero value
// fields not relevant to Kind are ignored.
type Type struct {
	Kind Kind
	Name string // Struct, Enum

	Inner TypeID // Option

	Elem TypeID // Seq: element type
	Len  *int   // Seq: nil ⇒ slice, non-nil ⇒ fixed-length array of this length

	Key TypeID // Map
	Val TypeID // Map

	Fields []Field // Struct

	Variants []Variant // Enum
}

// NewOptionType builds an Option{inner}; registering it always returns
// inner's own id (§4.4).
func NewOptionType(inner TypeID) Type { return Type{Kind: KindOption, Inner: inner} }

// NewSliceType builds a variable-length Seq.
func NewSliceType(elem TypeID) Type { return Type{Kind: KindSeq, Elem: elem} }

// NewArrayType builds a fixed-length Seq of the given length.
func NewArrayType(elem TypeID, length int) Type {
	l := length
	return Type{Kind: KindSeq, Elem: elem, Len: &l}
}

// NewMapType builds a Map{key,value}.
func NewMapType(key, val TypeID) Type { return Type{Kind: KindMap, Key: key, Val: val} }

// NewStructType builds a named Struct with an ordered field list.
func NewStructType(name string, fields []Field) Type {
	return Type{Kind: KindStruct, Name: name, Fields: fields}
}

// NewEnumType builds a named Enum from its variants; Register lowers this
// to a struct-of-options per §4.5.
func NewEnumType(name string, variants []Variant) Type {
	return Type{Kind: KindEnum, Name: name, Variants: variants}
}

// NewTupleType builds an unnamed fixed-arity product as a Struct whose
// fields are named by their positional index — Tuple is "reducible to"
// Struct per §4.5.
func NewTupleType(elems []TypeID) Type {
	fields := make([]Field, len(elems))
	for i, id := range elems {
		fields[i] = Field{Name: strconv.Itoa(i), Type: id}
	}
	return Type{Kind: KindStruct, Fields: fields}
}

// NewTupleStructType is a named Tuple — reducible to a named Struct with
// positionally-named fields.
func NewTupleStructType(name string, elems []TypeID) Type {
	t := NewTupleType(elems)
	t.Name = name
	return t
}

// NewNewtypeStructType is a named single-field wrapper around inner —
// reducible to a one-field named Struct.
func NewNewtypeStructType(name string, inner TypeID) Type {
	return Type{Kind: KindStruct, Name: name, Fields: []Field{{Name: "0", Type: inner}}}
}

// NewUnitStructType is a named, field-less Struct.
func NewUnitStructType(name string) Type {
	return Type{Kind: KindStruct, Name: name, Fields: nil}
}

// fingerprint builds the canonical string used for structural deduplication
// (§4.4's "reverse index keyed on the full Type value", §8 property 8).
// For Enum it is computed over the *abstract* variant shapes (names and
// already-resolved referenced ids) rather than over any ids synthesized
// during lowering, so two structurally-identical enums registered
// separately still collapse to one id even though their struct-shaped
// variants would otherwise mint distinct synthetic ids (§4.4, §9).
func (t Type) fingerprint() string {
	var sb strings.Builder
	t.writeFingerprint(&sb)
	return sb.String()
}

func (t Type) writeFingerprint(sb *strings.Builder) {
	switch t.Kind {
	case KindOption:
		fmt.Fprintf(sb, "O(%d)", t.Inner)
	case KindSeq:
		if t.Len != nil {
			fmt.Fprintf(sb, "A(%d,%d)", t.Elem, *t.Len)
		} else {
			fmt.Fprintf(sb, "L(%d)", t.Elem)
		}
	case KindMap:
		fmt.Fprintf(sb, "M(%d,%d)", t.Key, t.Val)
	case KindStruct:
		fmt.Fprintf(sb, "S[%s]{", t.Name)
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(sb, "%s:%d", f.Name, f.Type)
		}
		sb.WriteByte('}')
	case KindEnum:
		fmt.Fprintf(sb, "E[%s]{", t.Name)
		for i, v := range t.Variants {
			if i > 0 {
				sb.WriteByte(',')
			}
			switch {
			case v.Newtype != nil:
				fmt.Fprintf(sb, "%s=n(%d)", v.Name, *v.Newtype)
			case v.Fields != nil:
				fmt.Fprintf(sb, "%s=s{", v.Name)
				for j, f := range v.Fields {
					if j > 0 {
						sb.WriteByte(';')
					}
					fmt.Fprintf(sb, "%s:%d", f.Name, f.Type)
				}
				sb.WriteByte('}')
			default:
				fmt.Fprintf(sb, "%s=u", v.Name)
			}
		}
		sb.WriteByte('}')
	}
}
