package gobwire_test

import (
	"bytes"
	"fmt"

	"github.com/kungfusheep/gobwire"
	"github.com/kungfusheep/gobwire/gobtype"
)

// Event is a small event-log record, used here purely to demonstrate
// several values sharing one evolving type catalogue across a stream.
type Event struct {
	Kind    string
	Seq     int
	Payload map[string]string
}

// ExampleStreamSerializer demonstrates serializing several values onto one
// stream: the first value pays for Event's and its map's type
// definitions, every later value of the same shape rides on the already
// shared catalogue.
func ExampleStreamSerializer() {
	var wire bytes.Buffer

	ser := gobwire.NewStreamSerializer(&wire)
	binder := gobtype.NewBinder(ser.Registry())

	events := []Event{
		{Kind: "login", Seq: 1, Payload: map[string]string{"user": "ada"}},
		{Kind: "click", Seq: 2},
		{Kind: "logout", Seq: 3, Payload: map[string]string{"user": "ada", "reason": "idle"}},
	}

	for i := range events {
		bound, err := binder.Bind(&events[i])
		if err != nil {
			fmt.Println("bind error:", err)
			return
		}
		if err := ser.SerializeValue(bound); err != nil {
			fmt.Println("serialize error:", err)
			return
		}
	}

	de := gobwire.NewStreamDeserializer(&wire)
	for i := 0; i < len(events); i++ {
		var out Event
		if err := de.DeserializeValue(gobtype.To(&out)); err != nil {
			fmt.Println("deserialize error:", err)
			return
		}
		fmt.Printf("%d: %s %v\n", out.Seq, out.Kind, out.Payload)
	}

	// Output:
	// 1: login map[user:ada]
	// 2: click map[]
	// 3: logout map[reason:idle user:ada]
}
