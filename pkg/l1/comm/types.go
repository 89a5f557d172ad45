package comm

import (
	"fmt"
	"io"
)

// MaxPacketSize bounds an L1 packet on every transport. The largest
// message, a BeanStatus with a long name, is far below it.
const MaxPacketSize = 1 << 16

// PacketTooLargeError rejects a packet over MaxPacketSize, either before
// it is sent or when its length is announced by the peer.
type PacketTooLargeError struct {
	Size int
}

// Error implements error.
func (e *PacketTooLargeError) Error() string {
	return fmt.Sprintf("packet size %d exceeds %d", e.Size, MaxPacketSize)
}

// CheckPacketSize returns PacketTooLargeError if size is over MaxPacketSize.
func CheckPacketSize(size int) error {
	if size > MaxPacketSize {
		return &PacketTooLargeError{Size: size}
	}
	return nil
}

// PacketReader reads a single encoded Typed message.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes a single encoded Typed message. Concurrent writes
// are serialized by Pipe.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter is what a Pipe runs on: a TCP stream, a websocket or
// a pair of MQTT topics.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// PacketConn is a PacketReadWriter owning its connection. Dialed
// transports return one, Pipe closes it when it stops.
type PacketConn interface {
	PacketReadWriter
	io.Closer
}
