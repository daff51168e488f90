package gobwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpValueThenEncodeValueRoundTrips(t *testing.T) {
	reg := NewRegistry()
	pointT := NewStructType("Point", []Field{{Name: "X", Type: IntID}, {Name: "Y", Type: IntID}})
	pointID, err := reg.Register(pointT)
	require.NoError(t, err)
	listT := NewSliceType(pointID)
	listID, err := reg.Register(listT)
	require.NoError(t, err)

	buf := NewBufferFromPool()
	defer buf.ReturnToPool()
	ve := NewValueEncoder(buf)

	seq, err := ve.BeginSeq(reg, listID, 2)
	require.NoError(t, err)
	points := [][2]int64{{1, 2}, {3, 0}}
	for _, p := range points {
		p := p
		require.NoError(t, seq.Element(func(ve *ValueEncoder) error {
			s, err := ve.BeginStruct(reg, pointID)
			if err != nil {
				return err
			}
			if err := s.Field(0, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, p[0]) }); err != nil {
				return err
			}
			if err := s.Field(1, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, p[1]) }); err != nil {
				return err
			}
			s.End()
			return nil
		}))
	}

	c := NewCursor(buf.Bytes)
	vd := NewValueDecoder(&c, reg)
	dumped, err := DumpValue(reg, listID, vd)
	require.NoError(t, err)
	require.Equal(t, KindSeq, dumped.Kind)
	require.Len(t, dumped.Seq, 2)
	require.Equal(t, int64(1), dumped.Seq[0].Struct[0].Value.Int)
	require.Equal(t, int64(2), dumped.Seq[0].Struct[1].Value.Int)
	// Y==0 on the second point is empty and so never appears on the wire;
	// DumpValue only ever sees the fields the encoder actually wrote.
	require.Len(t, dumped.Seq[1].Struct, 1)
	require.Equal(t, "X", dumped.Seq[1].Struct[0].Name)
	require.Equal(t, int64(3), dumped.Seq[1].Struct[0].Value.Int)

	reenc := NewBufferFromPool()
	defer reenc.ReturnToPool()
	ve2 := NewValueEncoder(reenc)
	require.NoError(t, dumped.EncodeValue(ve2, dumped.TypeID))
	require.Equal(t, buf.Bytes, reenc.Bytes)
}

func TestDumpValueThenEncodeValuePreservesGappedFieldIndices(t *testing.T) {
	// Field 1 of 3 ("B") is left at its empty value, so the wire never
	// carries it — RawField.Index must record the gap so re-encoding
	// replays the same delta sequence (1, then 2 more) rather than the
	// slice-compacted (1, then 1).
	reg := NewRegistry()
	tripleT := NewStructType("Triple", []Field{
		{Name: "A", Type: IntID},
		{Name: "B", Type: IntID},
		{Name: "C", Type: IntID},
	})
	id, err := reg.Register(tripleT)
	require.NoError(t, err)

	buf := NewBufferFromPool()
	defer buf.ReturnToPool()
	ve := NewValueEncoder(buf)
	s, err := ve.BeginStruct(reg, id)
	require.NoError(t, err)
	require.NoError(t, s.Field(0, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, 1) }))
	require.NoError(t, s.Field(1, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, 0) }))
	require.NoError(t, s.Field(2, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, 3) }))
	s.End()

	c := NewCursor(buf.Bytes)
	vd := NewValueDecoder(&c, reg)
	dumped, err := DumpValue(reg, id, vd)
	require.NoError(t, err)
	require.Len(t, dumped.Struct, 2, "B is empty and never reaches the wire")
	require.Equal(t, 0, dumped.Struct[0].Index)
	require.Equal(t, 2, dumped.Struct[1].Index)

	reenc := NewBufferFromPool()
	defer reenc.ReturnToPool()
	ve2 := NewValueEncoder(reenc)
	require.NoError(t, dumped.EncodeValue(ve2, dumped.TypeID))
	require.Equal(t, buf.Bytes, reenc.Bytes)
}

func TestDumpValuePrimitives(t *testing.T) {
	reg := NewRegistry()
	buf := NewBufferFromPool()
	defer buf.ReturnToPool()
	ve := NewValueEncoder(buf)
	_, err := ve.EmitString(StringID, "hello")
	require.NoError(t, err)

	c := NewCursor(buf.Bytes)
	vd := NewValueDecoder(&c, reg)
	dumped, err := DumpValue(reg, StringID, vd)
	require.NoError(t, err)
	require.Equal(t, "hello", dumped.Str)
	require.Equal(t, StringID, dumped.TypeID)
}

func TestRawValueGobTypeReRegistersToSameID(t *testing.T) {
	// RawValue.GobType reconstructs an unnamed struct from the tree's own
	// field names/ids (it has no way to recover the original type's Name),
	// so the fixture below registers its struct unnamed too — otherwise
	// the fingerprint would differ on Name alone and this wouldn't dedup.
	reg := NewRegistry()
	structT := NewStructType("", []Field{{Name: "A", Type: IntID}, {Name: "B", Type: IntID}})
	id, err := reg.Register(structT)
	require.NoError(t, err)

	buf := NewBufferFromPool()
	defer buf.ReturnToPool()
	ve := NewValueEncoder(buf)
	s, err := ve.BeginStruct(reg, id)
	require.NoError(t, err)
	require.NoError(t, s.Field(0, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, 5) }))
	require.NoError(t, s.Field(1, func(ve *ValueEncoder) (bool, error) { return ve.EmitInt(IntID, 6) }))
	s.End()

	c := NewCursor(buf.Bytes)
	vd := NewValueDecoder(&c, reg)
	dumped, err := DumpValue(reg, id, vd)
	require.NoError(t, err)

	reReg := NewRegistry()
	firstID, err := reReg.Register(NewStructType("", []Field{{Name: "A", Type: IntID}, {Name: "B", Type: IntID}}))
	require.NoError(t, err)
	gotID, err := reReg.Register(dumped.GobType())
	require.NoError(t, err)
	require.Equal(t, firstID, gotID, "fingerprint dedup collapses back to the first-registered id")
}
