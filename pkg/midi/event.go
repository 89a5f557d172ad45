// Package midi buffers, encodes and decodes the Bean's BLE MIDI packets.
package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Event is a timestamped 3-byte MIDI message.
type Event struct {
	// Timestamp is in milliseconds. Decoded events only carry the
	// low 7 bits from the record's timestamp byte.
	Timestamp uint32
	Status    byte
	Data1     byte
	Data2     byte
}

// Message converts the event into a gomidi message. No validation is done
// on the status byte, so the result may not be a valid MIDI message.
func (e Event) Message() gomidi.Message {
	return gomidi.Message{e.Status, e.Data1, e.Data2}
}

// Bytes returns status, data1 and data2.
func (e Event) Bytes() []byte {
	return []byte{e.Status, e.Data1, e.Data2}
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return fmt.Sprintf("@%d %s", e.Timestamp, e.Message().String())
}

// EventFrom creates an Event from a gomidi message. Only the first
// three bytes are used; shorter messages are zero padded.
func EventFrom(msg gomidi.Message, ts uint32) Event {
	var b [3]byte
	copy(b[:], msg)
	return Event{Timestamp: ts, Status: b[0], Data1: b[1], Data2: b[2]}
}
