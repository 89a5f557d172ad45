package link

import (
	"io"
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud is the baud rate between the CPU and the co-processor.
const DefaultBaud = 57600

// PortReadTimeout bounds a single Read on the serial port.
const PortReadTimeout = 10 * time.Millisecond

// OpenPort opens a serial device for a FIFO. Reads time out after
// PortReadTimeout, so the FIFO must be created with ReadTimeout set.
func OpenPort(device string, baud int) (io.ReadWriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: PortReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &timedPort{Port: port}, nil
}

// timedPort reports an expired read timeout as an empty read instead
// of io.EOF.
type timedPort struct {
	*serial.Port
}

func (p *timedPort) Read(b []byte) (int, error) {
	n, err := p.Port.Read(b)
	if n == 0 && err == io.EOF {
		return 0, nil
	}
	return n, err
}

// Dial opens the serial device and creates a Serial over it. The
// returned Client must be run.
func Dial(device string, baud int) (*Serial, io.Closer, error) {
	port, err := OpenPort(device, baud)
	if err != nil {
		return nil, nil, err
	}
	fifo := NewFIFO(port)
	fifo.ReadTimeout = true
	return NewSerial(NewClient(fifo)), port, nil
}
