package gobwire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestTranslateToWireTypeRoundTripsStruct(t *testing.T) {
	st := Type{Kind: KindStruct, Name: "Point", Fields: []Field{
		{Name: "X", Type: IntID},
		{Name: "Y", Type: IntID},
	}}
	rec, err := translateToWireType(FirstUserTypeID, st)
	require.NoError(t, err)
	require.NotNil(t, rec.StructT)

	gotID, gotType, err := typeFromWireType(rec)
	require.NoError(t, err)
	require.Equal(t, FirstUserTypeID, gotID)
	if diff := cmp.Diff(st, gotType); diff != "" {
		t.Fatalf("struct type round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslateToWireTypeRoundTripsSliceAndArray(t *testing.T) {
	sl := NewSliceType(StringID)
	rec, err := translateToWireType(FirstUserTypeID, sl)
	require.NoError(t, err)
	require.NotNil(t, rec.SliceT)
	_, gotSl, err := typeFromWireType(rec)
	require.NoError(t, err)
	require.Equal(t, sl, gotSl)

	arr := NewArrayType(IntID, 4)
	rec2, err := translateToWireType(FirstUserTypeID+1, arr)
	require.NoError(t, err)
	require.NotNil(t, rec2.ArrayT)
	_, gotArr, err := typeFromWireType(rec2)
	require.NoError(t, err)
	require.Equal(t, 4, *gotArr.Len)
	require.Equal(t, IntID, gotArr.Elem)
}

func TestTranslateToWireTypeRoundTripsMap(t *testing.T) {
	m := NewMapType(StringID, IntID)
	rec, err := translateToWireType(FirstUserTypeID, m)
	require.NoError(t, err)
	require.NotNil(t, rec.MapT)
	_, gotMap, err := typeFromWireType(rec)
	require.NoError(t, err)
	require.Equal(t, m, gotMap)
}

func TestEncodeDecodeWireTypeStruct(t *testing.T) {
	st := Type{Kind: KindStruct, Name: "Pair", Fields: []Field{
		{Name: "A", Type: IntID},
		{Name: "B", Type: StringID},
	}}
	rec, err := translateToWireType(FirstUserTypeID, st)
	require.NoError(t, err)

	buf := NewBufferFromPool()
	defer buf.ReturnToPool()
	require.NoError(t, encodeWireType(buf, rec))

	c := NewCursor(buf.Bytes)
	gotRec, err := decodeWireType(&c)
	require.NoError(t, err)
	require.NotNil(t, gotRec.StructT)
	require.Equal(t, "Pair", gotRec.StructT.Common.Name)
	require.Equal(t, FirstUserTypeID, gotRec.StructT.Common.Id)
	require.Len(t, gotRec.StructT.Field, 2)
	require.Equal(t, "A", gotRec.StructT.Field[0].Name)
	require.Equal(t, IntID, gotRec.StructT.Field[0].Id)
	require.Equal(t, "B", gotRec.StructT.Field[1].Name)
	require.Equal(t, StringID, gotRec.StructT.Field[1].Id)
}

func TestEncodeDecodeWireTypeEmptyStruct(t *testing.T) {
	st := Type{Kind: KindStruct, Name: "Empty"}
	rec, err := translateToWireType(FirstUserTypeID, st)
	require.NoError(t, err)

	buf := NewBufferFromPool()
	defer buf.ReturnToPool()
	require.NoError(t, encodeWireType(buf, rec))

	c := NewCursor(buf.Bytes)
	gotRec, err := decodeWireType(&c)
	require.NoError(t, err)
	require.NotNil(t, gotRec.StructT)
	require.Empty(t, gotRec.StructT.Field)
}

func TestEncodeDecodeWireTypeMap(t *testing.T) {
	m := NewMapType(StringID, FloatID)
	rec, err := translateToWireType(FirstUserTypeID, m)
	require.NoError(t, err)

	buf := NewBufferFromPool()
	defer buf.ReturnToPool()
	require.NoError(t, encodeWireType(buf, rec))

	c := NewCursor(buf.Bytes)
	gotRec, err := decodeWireType(&c)
	require.NoError(t, err)
	require.NotNil(t, gotRec.MapT)
	require.Equal(t, StringID, gotRec.MapT.Key)
	require.Equal(t, FloatID, gotRec.MapT.Elem)
}
