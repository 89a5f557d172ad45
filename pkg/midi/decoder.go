package midi

// ByteSource is the buffered inbound MIDI byte stream. None of the
// methods may block.
type ByteSource interface {
	// Available returns the number of buffered bytes.
	Available() int
	// Peek returns the next byte without consuming it.
	Peek() (byte, bool)
	// Read consumes up to len(p) bytes.
	Read(p []byte) int
}

// EndOfPacket is the record terminating an inbound packet.
var EndOfPacket = [recordLen]byte{0xff, 0xff, 0xff, 0xff}

// minPacketLen is what must be buffered before a header is consumed:
// the header and one complete record.
const minPacketLen = 1 + recordLen

// Decoder parses inbound packets one event at a time. It never blocks:
// when a record is not completely buffered nothing is consumed and the
// caller polls again later.
type Decoder struct {
	Source ByteSource

	inBody     bool
	lastStatus byte
	lastTS     byte
	buf        [recordLen]byte
}

// NewDecoder creates a Decoder reading from src.
func NewDecoder(src ByteSource) *Decoder {
	return &Decoder{Source: src}
}

// InPacket indicates the header of the current packet was consumed.
func (d *Decoder) InPacket() bool {
	return d.inBody
}

// Reset returns to the packet boundary and forgets the running status.
func (d *Decoder) Reset() {
	d.inBody, d.lastStatus, d.lastTS = false, 0, 0
}

// Next decodes the next event if enough bytes are buffered.
func (d *Decoder) Next() (Event, bool) {
	if !d.inBody {
		if d.Source.Available() < minPacketLen {
			return Event{}, false
		}
		d.Source.Read(d.buf[:1])
		d.inBody = true
	}
	b, ok := d.Source.Peek()
	if !ok {
		return Event{}, false
	}
	if b&tsBit != 0 {
		if d.Source.Available() < recordLen {
			return Event{}, false
		}
		d.Source.Read(d.buf[:])
		if d.buf == EndOfPacket {
			d.inBody = false
			return Event{}, false
		}
		d.lastTS, d.lastStatus = d.buf[0]&recordTS, d.buf[1]
		return Event{
			Timestamp: uint32(d.lastTS),
			Status:    d.lastStatus,
			Data1:     d.buf[2],
			Data2:     d.buf[3],
		}, true
	}
	if d.Source.Available() < runningLen {
		return Event{}, false
	}
	d.Source.Read(d.buf[:runningLen])
	return Event{
		Timestamp: uint32(d.lastTS),
		Status:    d.lastStatus,
		Data1:     d.buf[0],
		Data2:     d.buf[1],
	}, true
}
