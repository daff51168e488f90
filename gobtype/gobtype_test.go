package gobtype_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kungfusheep/gobwire"
	"github.com/kungfusheep/gobwire/gobtype"
)

type Tag struct {
	Key   string `gob:"key"`
	Value string `gob:"value"`
}

type Widget struct {
	ID     uint64
	Name   string
	Price  float64
	Tags   []Tag
	Counts map[string]int
	Parent *Widget
}

func roundTrip(t *testing.T, in any, out any) {
	t.Helper()
	var buf bytes.Buffer

	ser := gobwire.NewStreamSerializer(&buf)
	bound, err := gobtype.NewBinder(ser.Registry()).Bind(in)
	require.NoError(t, err)
	require.NoError(t, ser.SerializeValue(bound))

	de := gobwire.NewStreamDeserializer(&buf)
	require.NoError(t, de.DeserializeValue(gobtype.To(out)))
}

func TestRoundTripStructWithTagsMapsAndSlices(t *testing.T) {
	in := Widget{
		ID:    7,
		Name:  "sprocket",
		Price: 1.5,
		Tags:  []Tag{{Key: "color", Value: "red"}, {Key: "size", Value: "M"}},
		Counts: map[string]int{
			"in_stock": 12,
		},
	}
	var out Widget
	roundTrip(t, &in, &out)
	require.Equal(t, in, out)
}

func TestRoundTripNilPointerStaysNil(t *testing.T) {
	in := Widget{Name: "orphan"}
	var out Widget
	roundTrip(t, &in, &out)
	require.Nil(t, out.Parent)
	require.Equal(t, "orphan", out.Name)
}

func TestRoundTripNonNilPointer(t *testing.T) {
	in := Widget{
		Name:   "child",
		Parent: &Widget{Name: "parent", ID: 1},
	}
	var out Widget
	roundTrip(t, &in, &out)
	require.NotNil(t, out.Parent)
	require.Equal(t, "parent", out.Parent.Name)
	require.Equal(t, uint64(1), out.Parent.ID)
}

func TestRoundTripEmptyMapAndSliceComeBackNil(t *testing.T) {
	in := Widget{Name: "bare"}
	var out Widget
	roundTrip(t, &in, &out)
	require.Nil(t, out.Tags)
	require.Nil(t, out.Counts)
}

func TestUnknownWireFieldIsSkippedNotErrored(t *testing.T) {
	type WidgetV2 struct {
		ID      uint64
		Name    string
		Price   float64
		Tags    []Tag
		Counts  map[string]int
		Parent  *Widget
		Comment string
	}

	var buf bytes.Buffer
	ser := gobwire.NewStreamSerializer(&buf)
	in := WidgetV2{ID: 3, Name: "versioned", Comment: "extra field the old struct doesn't know about"}
	bound, err := gobtype.NewBinder(ser.Registry()).Bind(&in)
	require.NoError(t, err)
	require.NoError(t, ser.SerializeValue(bound))

	de := gobwire.NewStreamDeserializer(&buf)
	var out Widget
	require.NoError(t, de.DeserializeValue(gobtype.To(&out)))
	require.Equal(t, uint64(3), out.ID)
	require.Equal(t, "versioned", out.Name)
}

func TestBindRejectsNonPointer(t *testing.T) {
	reg := gobwire.NewRegistry()
	_, err := gobtype.NewBinder(reg).Bind(Widget{})
	require.Error(t, err)
}

func TestUnmarshalRejectsNonPointer(t *testing.T) {
	var buf bytes.Buffer
	ser := gobwire.NewStreamSerializer(&buf)
	bound, err := gobtype.NewBinder(ser.Registry()).Bind(&Widget{Name: "x"})
	require.NoError(t, err)
	require.NoError(t, ser.SerializeValue(bound))

	de := gobwire.NewStreamDeserializer(&buf)
	err = de.DeserializeValue(gobtype.To(Widget{}))
	require.Error(t, err)
}
