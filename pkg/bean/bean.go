// Package bean is the application facing API of a Bean board.
//
// Most operations forward to the co-processor link. Setters don't
// report link failures (they are logged), and getters return the zero
// value when the co-processor doesn't answer.
package bean

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bean.go/pkg/hal"
	"github.com/robotalks/bean.go/pkg/link"
	"github.com/robotalks/bean.go/pkg/midi"
	"github.com/robotalks/bean.go/pkg/power"
)

// Bean is a Bean board: the CPU side hardware and the co-processor
// behind the serial link. It's not safe for concurrent use, all calls
// are expected from the application's loop.
type Bean struct {
	Serial *link.Serial
	Board  hal.Board
	// HID sends keyboard and mouse reports, optional.
	HID HIDBackend

	sender  *midi.Sender
	decoder *midi.Decoder
	power   *power.Controller
	changes *hal.ChangeInterrupts

	enabledEvents   MotionEvent
	triggeredEvents MotionEvent
}

// New creates a Bean.
func New(serial *link.Serial, board hal.Board) *Bean {
	b := &Bean{Serial: serial, Board: board}
	b.sender = midi.NewSender(board.Clock(), serial)
	b.decoder = midi.NewDecoder(serial.Midi())
	b.power = power.NewController(serial, board)
	b.power.Session = b
	b.changes = hal.NewChangeInterrupts(board.CPU(), board.PinChange())
	return b
}

// Power gets the power controller.
func (b *Bean) Power() *power.Controller {
	return b.power
}

func logFailure(op string, err error) {
	if err != nil {
		glog.V(1).Infof("bean: %s: %v", op, err)
	}
}

// MidiSend queues a MIDI message stamped with the current time. It
// returns false when the queue is full and the message is dropped.
func (b *Bean) MidiSend(status, data1, data2 byte) bool {
	return b.sender.Send(status, data1, data2)
}

// MidiPending returns the number of queued MIDI messages.
func (b *Bean) MidiPending() int {
	return b.sender.Pending()
}

// MidiPacketSend sends queued messages in one packet and returns the
// packet size, 0 if nothing was queued.
func (b *Bean) MidiPacketSend() int {
	n, err := b.sender.Flush()
	logFailure("midi packet send", err)
	return n
}

// MidiRead decodes the next received MIDI message if available.
func (b *Bean) MidiRead() (midi.Event, bool) {
	return b.decoder.Next()
}

// ResetSession implements power.SessionResetter.
func (b *Bean) ResetSession() {
	b.decoder.Reset()
}

// Sleep puts the board into low power for d.
func (b *Bean) Sleep(d time.Duration) power.Result {
	return b.power.Sleep(d)
}

// KeepAwake prevents the co-processor from entering its idle sleep.
func (b *Bean) KeepAwake(enable bool) {
	b.power.SetKeepAwake(enable)
}

// EnableConfigSave controls whether configuration changes persist
// across resets of the co-processor.
func (b *Bean) EnableConfigSave(enable bool) {
	logFailure("config save", b.Serial.SetConfigSave(enable))
}

// EnableWakeOnConnect lets a new connection wake the board.
func (b *Bean) EnableWakeOnConnect(enable bool) {
	logFailure("wake on connect", b.Serial.WakeOnConnect(enable))
}

// AttachChangeInterrupt runs fn when pin changes. There is one callback
// for all pins, the last attached wins. Pins without change interrupt
// are ignored.
func (b *Bean) AttachChangeInterrupt(pin int, fn func()) {
	if !b.changes.Attach(pin, fn) {
		glog.Warningf("bean: pin %d has no change interrupt", pin)
	}
}

// DetachChangeInterrupt disables the change interrupt of pin and clears
// the callback.
func (b *Bean) DetachChangeInterrupt(pin int) {
	b.changes.Detach(pin)
}

// Temperature reads the temperature in degrees Celsius.
func (b *Bean) Temperature() int8 {
	t, _ := b.Serial.TemperatureRead()
	return t
}

// BatteryLevel reads the battery level in percent.
func (b *Bean) BatteryLevel() byte {
	level, _ := b.Serial.BatteryRead()
	return level
}

// BatteryVoltage estimates the battery voltage in centivolts from the
// level. The co-processor maps voltage to level as 63.53*V - 124.26.
func (b *Bean) BatteryVoltage() uint16 {
	level, _ := b.Serial.BatteryRead()
	return uint16((100*uint32(level) + 12426) * 100 / 6353)
}
