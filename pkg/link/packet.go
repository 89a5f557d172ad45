package link

import (
	"fmt"
	"io"
	"time"
)

// PacketSeq is the sequence number of a packet.
// Valid numbers are 1 to 0xef, the rest are reserved for sync bytes.
type PacketSeq byte

// NewPacketSeq picks a random initial sequence number.
func NewPacketSeq() PacketSeq {
	return PacketSeq(byte(time.Now().UnixNano())).Next()
}

// Next returns the sequence number following s.
func (s PacketSeq) Next() PacketSeq {
	n := byte(s) + 1
	if n == 0 || n >= 0xf0 {
		n = 1
	}
	return PacketSeq(n)
}

// IsValid tells whether s can be used on a packet.
func (s PacketSeq) IsValid() bool {
	n := byte(s)
	return n > 0 && n < 0xf0
}

// MessageID identifies the message carried by a packet. Only 12 bits are used.
type MessageID uint16

// MaxMessageID is the largest message id.
const MaxMessageID MessageID = 0xfff

// MaxPayload is the largest payload of a packet.
const MaxPayload = 0x7f

const (
	ctlNotify   byte = 0x80
	ctlLenMask  byte = 0x70
	ctlIDMask   byte = 0x0f
	ctlLenShift      = 4
	lenExplicit byte = 7
)

// Packet is a single frame on the link.
type Packet struct {
	Seq    PacketSeq
	Notify bool
	ID     MessageID
	Data   []byte
}

// Validate checks the packet can be encoded.
func (p *Packet) Validate() error {
	if p.ID > MaxMessageID {
		return fmt.Errorf("invalid message id %#x", uint16(p.ID))
	}
	if len(p.Data) > MaxPayload {
		return ErrPayloadTooLarge
	}
	return nil
}

func (p *Packet) header() []byte {
	head := make([]byte, 4)
	head[0] = byte(p.Seq)
	head[1] = byte(p.ID>>8) & ctlIDMask
	if p.Notify {
		head[1] |= ctlNotify
	}
	head[2] = byte(p.ID)
	l := byte(len(p.Data))
	if l < lenExplicit {
		head[1] |= l << ctlLenShift
		return head[:3]
	}
	head[1] |= lenExplicit << ctlLenShift
	head[3] = l
	return head
}

// Bytes encodes the packet. The packet must be valid.
func (p *Packet) Bytes() []byte {
	return append(p.header(), p.Data...)
}

// WriteTo writes the encoded packet in a single Write.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	n, err := w.Write(p.Bytes())
	return int64(n), err
}

// String implements fmt.Stringer.
func (p *Packet) String() string {
	kind := "cmd"
	if p.Notify {
		kind = "ntf"
	}
	return fmt.Sprintf("#%d %s %s [% x]", p.Seq, kind, p.ID, p.Data)
}
