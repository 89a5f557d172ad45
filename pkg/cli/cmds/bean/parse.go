package bean

import (
	"fmt"
	"strconv"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/robotalks/bean.go/pkg/l1/msgs"
)

func parseUint(s, what string, max uint64) (uint32, error) {
	val, err := strconv.ParseUint(s, 0, 32)
	if err != nil || val > max {
		return 0, fmt.Errorf("invalid %s %q, 0-%d expected", what, s, max)
	}
	return uint32(val), nil
}

func parseArgs(args []string, names []string, maxes []uint64) ([]uint32, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("%d arguments expected", len(names))
	}
	vals := make([]uint32, len(args))
	for n, arg := range args {
		val, err := parseUint(arg, names[n], maxes[n])
		if err != nil {
			return nil, err
		}
		vals[n] = val
	}
	return vals, nil
}

// ParseMidi builds MidiSend from command arguments:
//
//	note-on CH KEY VEL
//	note-off CH KEY
//	cc CH CTRL VAL
//	STATUS DATA1 DATA2
//
// Channels are 0-15.
func ParseMidi(args []string) (*msgs.MidiSend, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("MIDI message expected")
	}
	var msg gomidi.Message
	switch args[0] {
	case "note-on", "on":
		vals, err := parseArgs(args[1:], []string{"channel", "key", "velocity"}, []uint64{15, 127, 127})
		if err != nil {
			return nil, err
		}
		msg = gomidi.NoteOn(uint8(vals[0]), uint8(vals[1]), uint8(vals[2]))
	case "note-off", "off":
		vals, err := parseArgs(args[1:], []string{"channel", "key"}, []uint64{15, 127})
		if err != nil {
			return nil, err
		}
		msg = gomidi.NoteOff(uint8(vals[0]), uint8(vals[1]))
	case "cc":
		vals, err := parseArgs(args[1:], []string{"channel", "controller", "value"}, []uint64{15, 127, 127})
		if err != nil {
			return nil, err
		}
		msg = gomidi.ControlChange(uint8(vals[0]), uint8(vals[1]), uint8(vals[2]))
	default:
		vals, err := parseArgs(args, []string{"status", "data1", "data2"}, []uint64{255, 127, 127})
		if err != nil {
			return nil, err
		}
		if vals[0] < 0x80 {
			return nil, fmt.Errorf("invalid status 0x%x", vals[0])
		}
		msg = gomidi.Message{byte(vals[0]), byte(vals[1]), byte(vals[2])}
	}
	send := &msgs.MidiSend{}
	var b [3]byte
	copy(b[:], msg)
	send.Status, send.Data1, send.Data2 = uint32(b[0]), uint32(b[1]), uint32(b[2])
	return send, nil
}

// ParseLed builds LedSet from R G B.
func ParseLed(args []string) (*msgs.LedSet, error) {
	vals, err := parseArgs(args, []string{"red", "green", "blue"}, []uint64{255, 255, 255})
	if err != nil {
		return nil, err
	}
	led := &msgs.LedSet{}
	led.Red, led.Green, led.Blue = vals[0], vals[1], vals[2]
	return led, nil
}
