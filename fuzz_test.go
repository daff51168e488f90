package gobwire_test

import (
	"bytes"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"

	"github.com/kungfusheep/gobwire"
	"github.com/kungfusheep/gobwire/gobtype"
)

// FuzzFrameReaderNeverPanics feeds arbitrary byte streams through the
// framing layer: malformed input must surface as an error, never a panic
// or an infinite loop.
func FuzzFrameReaderNeverPanics(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x00})
	f.Add([]byte{0x03, 0x02, 0x00})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		fr := gobwire.NewFrameReader(bytes.NewReader(data))
		for i := 0; i < 64; i++ {
			section, err := fr.ReadSection()
			if err != nil || section == nil {
				return
			}
		}
	})
}

// FuzzStreamDeserializeValueNeverPanics drives the full stream decoder
// (type-def absorption plus value decode) against arbitrary bytes: the
// target struct is whatever gobtype's reflective decode happens to
// populate, or an error — either is acceptable, a panic is not.
func FuzzStreamDeserializeValueNeverPanics(f *testing.F) {
	var seed bytes.Buffer
	ser := gobwire.NewStreamSerializer(&seed)
	binder := gobtype.NewBinder(ser.Registry())
	type Sample struct {
		Name   string
		Count  int
		Tags   []string
		Scores map[string]float64
	}
	in := Sample{Name: "seed", Count: 3, Tags: []string{"a", "b"}, Scores: map[string]float64{"x": 1.5}}
	bound, err := binder.Bind(&in)
	if err != nil {
		f.Fatal(err)
	}
	if err := ser.SerializeValue(bound); err != nil {
		f.Fatal(err)
	}
	f.Add(seed.Bytes())
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		de := gobwire.NewStreamDeserializer(bytes.NewReader(data))
		var out Sample
		for i := 0; i < 16; i++ {
			if err := de.DeserializeValue(gobtype.To(&out)); err != nil {
				return
			}
		}
	})
}

// FuzzGobtypeBindRoundTrip uses go-fuzz-headers to generate arbitrary Go
// values of a fixed shape and checks that each one binds, serializes and
// deserializes without error; any failure at those steps fails the test.
// A value generated from insufficient fuzz bytes (GenerateStruct error) is
// simply skipped.
func FuzzGobtypeBindRoundTrip(f *testing.F) {
	f.Add([]byte("enough entropy to generate a small struct from"))

	type Fuzzed struct {
		A string
		B int32
		C []byte
		D map[string]int32
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		cons := fuzz.NewConsumer(data)
		var in Fuzzed
		if err := cons.GenerateStruct(&in); err != nil {
			return
		}

		var buf bytes.Buffer
		ser := gobwire.NewStreamSerializer(&buf)
		bound, err := gobtype.NewBinder(ser.Registry()).Bind(&in)
		if err != nil {
			t.Fatalf("bind failed on a well-formed Go value: %v", err)
		}
		if err := ser.SerializeValue(bound); err != nil {
			t.Fatalf("serialize failed on a well-formed Go value: %v", err)
		}

		de := gobwire.NewStreamDeserializer(&buf)
		var out Fuzzed
		if err := de.DeserializeValue(gobtype.To(&out)); err != nil {
			t.Fatalf("deserialize failed round-tripping our own encode: %v", err)
		}
	})
}
