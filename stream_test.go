package gobwire_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kungfusheep/gobwire"
	"github.com/kungfusheep/gobwire/gobtype"
)

type Address struct {
	City string
	Zip  string
}

type Person struct {
	Name    string
	Age     int
	Emails  []string
	Address Address
}

func TestStreamRoundTripSingleValue(t *testing.T) {
	var buf bytes.Buffer
	ser := gobwire.NewStreamSerializer(&buf)
	binder := gobtype.NewBinder(ser.Registry())

	in := Person{
		Name:   "Ada",
		Age:    36,
		Emails: []string{"ada@example.com", "countess@example.com"},
		Address: Address{
			City: "London",
			Zip:  "SW1",
		},
	}
	bound, err := binder.Bind(&in)
	require.NoError(t, err)
	require.NoError(t, ser.SerializeValue(bound))

	de := gobwire.NewStreamDeserializer(&buf)
	var out Person
	require.NoError(t, de.DeserializeValue(gobtype.To(&out)))
	require.Equal(t, in, out)
}

func TestStreamRoundTripMultipleValuesReuseTypeDefs(t *testing.T) {
	var buf bytes.Buffer
	ser := gobwire.NewStreamSerializer(&buf)
	binder := gobtype.NewBinder(ser.Registry())

	people := []Person{
		{Name: "Grace", Age: 85, Address: Address{City: "New York"}},
		{Name: "Alan", Age: 41, Emails: []string{"alan@example.com"}},
	}
	for i := range people {
		bound, err := binder.Bind(&people[i])
		require.NoError(t, err)
		require.NoError(t, ser.SerializeValue(bound))
	}

	de := gobwire.NewStreamDeserializer(&buf)
	var got []Person
	for i := 0; i < len(people); i++ {
		var out Person
		require.NoError(t, de.DeserializeValue(gobtype.To(&out)))
		got = append(got, out)
	}
	require.Equal(t, people, got)
}

// TestStreamSecondValueDoesNotResendTypeDefs confirms type definitions go
// out only once: the bytes written for a second value of the same Go type
// must be fewer than those written for the first value plus its
// definitions.
func TestStreamSecondValueDoesNotResendTypeDefs(t *testing.T) {
	var buf bytes.Buffer
	ser := gobwire.NewStreamSerializer(&buf)
	binder := gobtype.NewBinder(ser.Registry())

	first := Person{Name: "Grace"}
	bound, err := binder.Bind(&first)
	require.NoError(t, err)
	require.NoError(t, ser.SerializeValue(bound))
	sizeAfterFirst := buf.Len()

	second := Person{Name: "Alan"}
	bound2, err := binder.Bind(&second)
	require.NoError(t, err)
	require.NoError(t, ser.SerializeValue(bound2))

	// The second value's section alone (no type defs) must be far smaller
	// than the first value's section (which carried Person's and
	// Address's type definitions alongside the value itself).
	require.Less(t, buf.Len()-sizeAfterFirst, sizeAfterFirst)
}

func TestStreamDeserializeValueReturnsEOFAtCleanEnd(t *testing.T) {
	var buf bytes.Buffer
	ser := gobwire.NewStreamSerializer(&buf)
	binder := gobtype.NewBinder(ser.Registry())

	in := Person{Name: "Solo"}
	bound, err := binder.Bind(&in)
	require.NoError(t, err)
	require.NoError(t, ser.SerializeValue(bound))

	de := gobwire.NewStreamDeserializer(&buf)
	var out Person
	require.NoError(t, de.DeserializeValue(gobtype.To(&out)))

	err = de.DeserializeValue(gobtype.To(&out))
	require.ErrorIs(t, err, io.EOF)
}

// TestStreamEmptyStructOmitsAllFields confirms an all-zero Person round
// trips: its zero scalar, string and slice fields are omitted from the wire
// (the empty-value rule), while the nested Address struct, which is never
// empty, is still written with an empty body. Decoding, like
// encoding/gob itself, only visits fields actually present on the wire and
// leaves the rest of the destination untouched — so this decodes into a
// fresh destination rather than one pre-populated with other values.
func TestStreamEmptyStructOmitsAllFields(t *testing.T) {
	var buf bytes.Buffer
	ser := gobwire.NewStreamSerializer(&buf)
	binder := gobtype.NewBinder(ser.Registry())

	var in Person
	bound, err := binder.Bind(&in)
	require.NoError(t, err)
	require.NoError(t, ser.SerializeValue(bound))

	de := gobwire.NewStreamDeserializer(&buf)
	var out Person
	require.NoError(t, de.DeserializeValue(gobtype.To(&out)))
	require.Equal(t, Person{}, out)
}

// TestStreamDeserializeValueRetainsUnvisitedFields confirms the converse:
// decoding a value whose empty fields were omitted on the wire leaves a
// pre-populated destination's corresponding fields untouched, matching
// encoding/gob's own "absent fields keep their prior value" behavior.
func TestStreamDeserializeValueRetainsUnvisitedFields(t *testing.T) {
	var buf bytes.Buffer
	ser := gobwire.NewStreamSerializer(&buf)
	binder := gobtype.NewBinder(ser.Registry())

	var in Person
	bound, err := binder.Bind(&in)
	require.NoError(t, err)
	require.NoError(t, ser.SerializeValue(bound))

	de := gobwire.NewStreamDeserializer(&buf)
	out := Person{Name: "not-zero", Age: 99}
	require.NoError(t, de.DeserializeValue(gobtype.To(&out)))
	require.Equal(t, Person{Name: "not-zero", Age: 99}, out)
}
