package midi

import (
	"errors"
	"sync"
)

// ErrQueueFull is returned when a write does not fit into the queue.
var ErrQueueFull = errors.New("midi queue full")

// ByteQueue is a thread-safe ByteSource filled by the transport.
// A write is accepted as a whole or not at all, so packet framing
// survives an overflow.
type ByteQueue struct {
	Capacity int

	data []byte
	lock sync.Mutex
}

// DefaultQueueCapacity matches the co-processor's serial buffer.
const DefaultQueueCapacity = 64

// Write appends all of p, or nothing with ErrQueueFull when p does
// not fit.
func (q *ByteQueue) Write(p []byte) (int, error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	capacity := q.Capacity
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	if len(p) > capacity-len(q.data) {
		return 0, ErrQueueFull
	}
	q.data = append(q.data, p...)
	return len(p), nil
}

// Available implements ByteSource.
func (q *ByteQueue) Available() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.data)
}

// Peek implements ByteSource.
func (q *ByteQueue) Peek() (byte, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if len(q.data) == 0 {
		return 0, false
	}
	return q.data[0], true
}

// Read implements ByteSource.
func (q *ByteQueue) Read(p []byte) int {
	q.lock.Lock()
	defer q.lock.Unlock()
	n := copy(p, q.data)
	q.data = q.data[n:]
	if len(q.data) == 0 {
		q.data = nil
	}
	return n
}

// Reset drops all buffered bytes.
func (q *ByteQueue) Reset() {
	q.lock.Lock()
	q.data = nil
	q.lock.Unlock()
}
