package midi

import (
	"github.com/golang/glog"
)

// PacketSize is the maximum size of an outbound packet, the largest
// payload the transport carries in one message.
const PacketSize = 20

const (
	tsBit     byte = 0x80
	headerTS  byte = 0x3f
	recordTS  byte = 0x7f
	recordLen      = 4
	runningLen     = 2
)

// HeaderByte encodes the packet header from the first event's timestamp:
// bit 7 set, bit 6 cleared, bits 5-0 taken from the low timestamp bits.
func HeaderByte(ts uint32) byte {
	return tsBit | byte(ts)&headerTS
}

// TimestampByte encodes the per-record timestamp: bit 7 set and the
// low 7 bits of the timestamp.
func TimestampByte(ts uint32) byte {
	return tsBit | byte(ts)&recordTS
}

// EncodePacket drains events from buf into pkt and returns the number
// of bytes written. An event is consumed only if it fits entirely, the
// rest is left for the next packet. pkt must hold at least 5 bytes.
func EncodePacket(buf *RingBuffer, pkt []byte) int {
	first, ok := buf.Peek()
	if !ok {
		return 0
	}
	pkt[0] = HeaderByte(first.Timestamp)
	n := 1
	var last Event
	for emitted := false; ; emitted = true {
		ev, ok := buf.Peek()
		if !ok {
			break
		}
		running := emitted && ev.Status == last.Status && ev.Timestamp == last.Timestamp
		size := recordLen
		if running {
			size = runningLen
		}
		if n+size > len(pkt) {
			break
		}
		if !running {
			pkt[n], pkt[n+1] = TimestampByte(ev.Timestamp), ev.Status
			n += 2
		}
		pkt[n], pkt[n+1] = ev.Data1, ev.Data2
		n += 2
		buf.Pop()
		last = ev
	}
	return n
}

// Clock provides the millisecond timestamps.
type Clock interface {
	Millis() uint32
}

// PacketWriter delivers an encoded packet.
type PacketWriter interface {
	WritePacket([]byte) error
}

// WritePacketFunc is the func form of PacketWriter.
type WritePacketFunc func([]byte) error

// WritePacket implements PacketWriter.
func (f WritePacketFunc) WritePacket(pkt []byte) error {
	return f(pkt)
}

// Sender queues outbound events and sends them in packets.
type Sender struct {
	Clock  Clock
	Writer PacketWriter

	buffer RingBuffer
	packet [PacketSize]byte
}

// NewSender creates a Sender.
func NewSender(clock Clock, w PacketWriter) *Sender {
	return &Sender{Clock: clock, Writer: w}
}

// Send queues an event stamped with the current time. The status byte
// is not validated. It returns false and drops the event if the buffer
// is full; the caller may retry after Flush.
func (s *Sender) Send(status, data1, data2 byte) bool {
	ev := Event{Timestamp: s.Clock.Millis(), Status: status, Data1: data1, Data2: data2}
	if err := s.buffer.Push(ev); err != nil {
		glog.V(2).Infof("midi: drop %s: %v", ev, err)
		return false
	}
	return true
}

// Pending returns the number of queued events.
func (s *Sender) Pending() int {
	return s.buffer.Len()
}

// Flush encodes queued events into one packet and writes it.
// Nothing is written when no event is queued. Encoded events are
// consumed even if the write fails.
func (s *Sender) Flush() (int, error) {
	n := EncodePacket(&s.buffer, s.packet[:])
	if n == 0 {
		return 0, nil
	}
	if glog.V(4) {
		glog.Infof("midi: packet % x", s.packet[:n])
	}
	return n, s.Writer.WritePacket(s.packet[:n])
}

// Reset drops queued events.
func (s *Sender) Reset() {
	s.buffer.Reset()
}
