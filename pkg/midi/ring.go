package midi

import "errors"

// BufferSize is the number of slots in the ring buffer. One slot is
// always left empty to tell a full buffer from an empty one.
const BufferSize = 20

// ErrBufferFull indicates the ring buffer has no free slot.
var ErrBufferFull = errors.New("midi buffer full")

// RingBuffer is a fixed size FIFO of events with a single producer
// and a single consumer.
type RingBuffer struct {
	events [BufferSize]Event
	write  int
	read   int
}

// Empty indicates no event is pending.
func (b *RingBuffer) Empty() bool {
	return b.write == b.read
}

// Full indicates Push would fail.
func (b *RingBuffer) Full() bool {
	return (b.write+1)%BufferSize == b.read
}

// Len returns the number of pending events.
func (b *RingBuffer) Len() int {
	return (b.write - b.read + BufferSize) % BufferSize
}

// Push appends an event. The buffer is left untouched when full.
func (b *RingBuffer) Push(ev Event) error {
	if b.Full() {
		return ErrBufferFull
	}
	b.events[b.write] = ev
	b.write = (b.write + 1) % BufferSize
	return nil
}

// Peek returns the oldest pending event without consuming it.
func (b *RingBuffer) Peek() (Event, bool) {
	if b.Empty() {
		return Event{}, false
	}
	return b.events[b.read], true
}

// Pop consumes the oldest pending event.
func (b *RingBuffer) Pop() (ev Event, ok bool) {
	if ev, ok = b.Peek(); ok {
		b.read = (b.read + 1) % BufferSize
	}
	return
}

// Reset drops all pending events.
func (b *RingBuffer) Reset() {
	b.write, b.read = 0, 0
}
