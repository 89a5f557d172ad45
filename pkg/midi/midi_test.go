package midi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

type fakeClock struct {
	ms uint32
}

func (c *fakeClock) Millis() uint32 { return c.ms }

type packetRecorder struct {
	packets [][]byte
	err     error
}

func (r *packetRecorder) WritePacket(pkt []byte) error {
	r.packets = append(r.packets, append([]byte(nil), pkt...))
	return r.err
}

func ev(ts uint32, status, d1, d2 byte) Event {
	return Event{Timestamp: ts, Status: status, Data1: d1, Data2: d2}
}

func TestRingBuffer(t *testing.T) {
	var buf RingBuffer
	require.True(t, buf.Empty())
	require.False(t, buf.Full())
	_, ok := buf.Pop()
	require.False(t, ok)

	for i := 0; i < BufferSize-1; i++ {
		require.NoError(t, buf.Push(ev(uint32(i), 0x90, byte(i), 0x40)))
	}
	require.True(t, buf.Full())
	require.Equal(t, BufferSize-1, buf.Len())
	require.Equal(t, ErrBufferFull, buf.Push(ev(99, 0x80, 1, 2)))
	require.Equal(t, BufferSize-1, buf.Len())

	for i := 0; i < BufferSize-1; i++ {
		e, ok := buf.Pop()
		require.True(t, ok)
		require.Equal(t, ev(uint32(i), 0x90, byte(i), 0x40), e)
	}
	require.True(t, buf.Empty())
}

func TestRingBufferWrap(t *testing.T) {
	var buf RingBuffer
	for round := 0; round < 3; round++ {
		for i := 0; i < 15; i++ {
			require.NoError(t, buf.Push(ev(uint32(round*100+i), 0xb0, byte(i), 0)))
		}
		for i := 0; i < 15; i++ {
			e, ok := buf.Pop()
			require.True(t, ok)
			require.Equal(t, uint32(round*100+i), e.Timestamp)
		}
	}
	require.Equal(t, 0, buf.Len())
}

func TestTimestampBytes(t *testing.T) {
	testCases := []struct {
		ts     uint32
		header byte
		record byte
	}{
		{0, 0x80, 0x80},
		{0x3f, 0xbf, 0xbf},
		{0x40, 0x80, 0xc0},
		{0x7f, 0xbf, 0xff},
		{0x80, 0x80, 0x80},
		{0x1234, 0xb4, 0xb4},
		{0x1fff, 0xbf, 0xff},
		{0x2000, 0x80, 0x80},
		{0xffffffff, 0xbf, 0xff},
	}
	for _, tc := range testCases {
		require.Equalf(t, tc.header, HeaderByte(tc.ts), "header of %x", tc.ts)
		require.Equalf(t, tc.record, TimestampByte(tc.ts), "record of %x", tc.ts)
		require.Zero(t, HeaderByte(tc.ts)&0x40)
	}
}

func TestEncodePacket(t *testing.T) {
	testCases := []struct {
		name   string
		events []Event
		expect []byte
		remain int
	}{
		{
			name: "empty",
		},
		{
			name:   "single",
			events: []Event{ev(0x1234, 0x90, 0x3c, 0x64)},
			expect: []byte{0xb4, 0xb4, 0x90, 0x3c, 0x64},
		},
		{
			name: "running status",
			events: []Event{
				ev(0x1234, 0x90, 0x3c, 0x64),
				ev(0x1234, 0x90, 0x40, 0x50),
			},
			expect: []byte{0xb4, 0xb4, 0x90, 0x3c, 0x64, 0x40, 0x50},
		},
		{
			name: "same status different time",
			events: []Event{
				ev(10, 0x90, 0x3c, 0x64),
				ev(11, 0x90, 0x40, 0x50),
			},
			expect: []byte{0x8a, 0x8a, 0x90, 0x3c, 0x64, 0x8b, 0x90, 0x40, 0x50},
		},
		{
			name: "same time different status",
			events: []Event{
				ev(10, 0x90, 0x3c, 0x64),
				ev(10, 0x80, 0x3c, 0x00),
			},
			expect: []byte{0x8a, 0x8a, 0x90, 0x3c, 0x64, 0x8a, 0x80, 0x3c, 0x00},
		},
		{
			name: "running status after a change",
			events: []Event{
				ev(10, 0x90, 1, 2),
				ev(10, 0x80, 3, 4),
				ev(10, 0x80, 5, 6),
			},
			expect: []byte{0x8a, 0x8a, 0x90, 1, 2, 0x8a, 0x80, 3, 4, 5, 6},
		},
		{
			name: "full records overflow",
			events: []Event{
				ev(1, 0x90, 1, 1),
				ev(2, 0x90, 2, 2),
				ev(3, 0x90, 3, 3),
				ev(4, 0x90, 4, 4),
				ev(5, 0x90, 5, 5),
			},
			expect: []byte{
				0x81,
				0x81, 0x90, 1, 1,
				0x82, 0x90, 2, 2,
				0x83, 0x90, 3, 3,
				0x84, 0x90, 4, 4,
			},
			remain: 1,
		},
		{
			name: "running records fill the packet",
			events: []Event{
				ev(7, 0xb0, 0, 0),
				ev(7, 0xb0, 1, 1),
				ev(7, 0xb0, 2, 2),
				ev(7, 0xb0, 3, 3),
				ev(7, 0xb0, 4, 4),
				ev(7, 0xb0, 5, 5),
				ev(7, 0xb0, 6, 6),
				ev(7, 0xb0, 7, 7),
				ev(7, 0xb0, 8, 8),
			},
			expect: []byte{
				0x87, 0x87, 0xb0, 0, 0,
				1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7,
			},
			remain: 1,
		},
		{
			name: "full record does not fit after running records",
			events: []Event{
				ev(7, 0xb0, 0, 0),
				ev(7, 0xb0, 1, 1),
				ev(7, 0xb0, 2, 2),
				ev(7, 0xb0, 3, 3),
				ev(7, 0xb0, 4, 4),
				ev(7, 0xb0, 5, 5),
				ev(7, 0xb0, 6, 6),
				ev(8, 0xb0, 7, 7),
			},
			expect: []byte{
				0x87, 0x87, 0xb0, 0, 0,
				1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
			},
			remain: 1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf RingBuffer
			for _, e := range tc.events {
				require.NoError(t, buf.Push(e))
			}
			pkt := make([]byte, PacketSize)
			n := EncodePacket(&buf, pkt)
			require.Equal(t, len(tc.expect), n)
			if n > 0 {
				require.Equal(t, tc.expect, pkt[:n])
			}
			require.Equal(t, tc.remain, buf.Len())
		})
	}
}

func TestEncodePacketNeverSplits(t *testing.T) {
	var buf RingBuffer
	var sent []Event
	for i := 0; i < BufferSize-1; i++ {
		e := ev(uint32(i/3), 0x90|byte(i%2), byte(i), byte(i))
		sent = append(sent, e)
		require.NoError(t, buf.Push(e))
	}
	var decoded []Event
	for !buf.Empty() {
		pkt := make([]byte, PacketSize)
		n := EncodePacket(&buf, pkt)
		require.True(t, n > 1 && n <= PacketSize, "packet size %d", n)
		decoded = append(decoded, decodeAll(t, pkt[:n])...)
	}
	require.Len(t, decoded, len(sent))
	for i := range sent {
		require.Equal(t, sent[i].Bytes(), decoded[i].Bytes())
	}
}

func decodeAll(t *testing.T, pkt []byte) []Event {
	var q ByteQueue
	q.Write(pkt)
	q.Write(EndOfPacket[:])
	d := NewDecoder(&q)
	var events []Event
	for {
		e, ok := d.Next()
		if !ok {
			break
		}
		events = append(events, e)
	}
	require.Zero(t, q.Available())
	require.False(t, d.InPacket())
	return events
}

func TestSender(t *testing.T) {
	clock := &fakeClock{ms: 1000}
	w := &packetRecorder{}
	s := NewSender(clock, w)

	n, err := s.Flush()
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, w.packets)

	for i := 0; i < BufferSize-1; i++ {
		require.True(t, s.Send(0x90, byte(i), 0x7f))
	}
	require.False(t, s.Send(0x80, 0, 0))
	require.Equal(t, BufferSize-1, s.Pending())

	for s.Pending() > 0 {
		n, err = s.Flush()
		require.NoError(t, err)
		require.True(t, n > 0)
	}
	require.NotEmpty(t, w.packets)
	var got []Event
	for _, pkt := range w.packets {
		require.True(t, len(pkt) <= PacketSize)
		got = append(got, decodeAll(t, pkt)...)
	}
	require.Len(t, got, BufferSize-1)
	for i, e := range got {
		require.Equal(t, byte(0x90), e.Status)
		require.Equal(t, byte(i), e.Data1)
		require.Equal(t, byte(0x7f), e.Data2)
		require.Equal(t, uint32(1000&0x7f), e.Timestamp)
	}
	require.True(t, s.Send(0x80, 0, 0))
}

func TestSenderWriteError(t *testing.T) {
	w := &packetRecorder{err: errors.New("link down")}
	s := NewSender(&fakeClock{}, w)
	require.True(t, s.Send(0x90, 1, 2))
	n, err := s.Flush()
	require.Error(t, err)
	require.Equal(t, 5, n)
	require.Zero(t, s.Pending())
	n, err = s.Flush()
	require.NoError(t, err)
	require.Zero(t, n)
}

type decoderStep struct {
	feed   []byte
	expect []Event
}

func TestDecoder(t *testing.T) {
	testCases := []struct {
		name  string
		steps []decoderStep
	}{
		{
			name: "header waits for a full record",
			steps: []decoderStep{
				{feed: []byte{0x80, 0x81, 0x90, 1}},
				{feed: []byte{2}, expect: []Event{ev(1, 0x90, 1, 2)}},
			},
		},
		{
			name: "partial record",
			steps: []decoderStep{
				{feed: []byte{0x80, 0x81, 0x90, 1, 2}, expect: []Event{ev(1, 0x90, 1, 2)}},
				{feed: []byte{0x85}},
				{feed: []byte{0x80}},
				{feed: []byte{3}},
				{feed: []byte{4}, expect: []Event{ev(5, 0x80, 3, 4)}},
			},
		},
		{
			name: "running status",
			steps: []decoderStep{
				{feed: []byte{0x80, 0x8a, 0xb0, 7, 100, 7}, expect: []Event{ev(10, 0xb0, 7, 100)}},
				{feed: []byte{90}, expect: []Event{ev(10, 0xb0, 7, 90)}},
				{feed: []byte{8, 1, 9, 2}, expect: []Event{ev(10, 0xb0, 8, 1), ev(10, 0xb0, 9, 2)}},
			},
		},
		{
			name: "end of packet",
			steps: []decoderStep{
				{
					feed:   []byte{0x80, 0x81, 0x90, 1, 2, 0xff, 0xff, 0xff, 0xff},
					expect: []Event{ev(1, 0x90, 1, 2)},
				},
				{
					feed:   []byte{0xa0, 0x82, 0x80, 1, 0},
					expect: []Event{ev(2, 0x80, 1, 0)},
				},
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var q ByteQueue
			d := NewDecoder(&q)
			for n, step := range tc.steps {
				q.Write(step.feed)
				var got []Event
				for {
					e, ok := d.Next()
					if !ok {
						break
					}
					got = append(got, e)
				}
				require.Equalf(t, step.expect, got, "steps[%d]", n)
			}
		})
	}
}

func TestDecoderNoConsumeBeforeHeader(t *testing.T) {
	var q ByteQueue
	d := NewDecoder(&q)
	q.Write([]byte{0x80, 0x81, 0x90, 1})
	_, ok := d.Next()
	require.False(t, ok)
	require.Equal(t, 4, q.Available())
	require.False(t, d.InPacket())
}

func TestDecoderReset(t *testing.T) {
	var q ByteQueue
	d := NewDecoder(&q)
	q.Write([]byte{0x80, 0x81, 0x90, 1, 2})
	_, ok := d.Next()
	require.True(t, ok)
	require.True(t, d.InPacket())
	d.Reset()
	require.False(t, d.InPacket())
}

func TestQueueOverflowKeepsFraming(t *testing.T) {
	packet := func(base byte) []byte {
		pkt := []byte{0x81, 0x81, 0x90, base, 1}
		for i := byte(1); i < 4; i++ {
			pkt = append(pkt, base+i, i+1)
		}
		return append(pkt, EndOfPacket[:]...)
	}
	var q ByteQueue
	accepted := 0
	for n := 0; n < 5; n++ {
		pkt := packet(byte(10 * n))
		require.Len(t, pkt, 15)
		written, err := q.Write(pkt)
		if err != nil {
			require.Equal(t, ErrQueueFull, err)
			require.Zero(t, written)
			continue
		}
		require.Equal(t, len(pkt), written)
		accepted++
	}
	require.Equal(t, 4, accepted)
	require.Equal(t, 60, q.Available())

	d := NewDecoder(&q)
	drain := func() []Event {
		var events []Event
		for {
			before := q.Available()
			e, ok := d.Next()
			if ok {
				events = append(events, e)
			} else if q.Available() == before {
				return events
			}
		}
	}
	require.Len(t, drain(), 16)
	require.False(t, d.InPacket())
	require.Zero(t, q.Available())

	_, err := q.Write(packet(100))
	require.NoError(t, err)
	got := drain()
	require.Equal(t, []Event{
		ev(1, 0x90, 100, 1),
		ev(1, 0x90, 101, 2),
		ev(1, 0x90, 102, 3),
		ev(1, 0x90, 103, 4),
	}, got)
	require.False(t, d.InPacket())
	require.Zero(t, q.Available())
}

func TestRoundTrip(t *testing.T) {
	clock := &fakeClock{ms: 5000}
	w := &packetRecorder{}
	s := NewSender(clock, w)
	var sent []Event
	for i := 0; i < 12; i++ {
		if i%4 == 0 {
			clock.ms += 3
		}
		status := byte(0x90)
		if i%3 == 0 {
			status = 0x80
		}
		require.True(t, s.Send(status, byte(60+i), byte(i*10)))
		sent = append(sent, ev(clock.ms, status, byte(60+i), byte(i*10)))
	}
	for s.Pending() > 0 {
		_, err := s.Flush()
		require.NoError(t, err)
	}

	// feed all packets byte by byte.
	var q ByteQueue
	q.Capacity = 1024
	d := NewDecoder(&q)
	var got []Event
	for _, pkt := range w.packets {
		stream := append(append([]byte(nil), pkt...), EndOfPacket[:]...)
		for _, b := range stream {
			q.Write([]byte{b})
			for {
				e, ok := d.Next()
				if !ok {
					break
				}
				got = append(got, e)
			}
		}
	}
	require.Len(t, got, len(sent))
	for i := range sent {
		require.Equal(t, sent[i].Bytes(), got[i].Bytes())
		require.Equal(t, sent[i].Timestamp&0x7f, got[i].Timestamp)
	}
}

func TestEventMessage(t *testing.T) {
	e := EventFrom(gomidi.NoteOn(1, 60, 100), 42)
	require.Equal(t, ev(42, 0x91, 60, 100), e)
	var ch, key, vel uint8
	require.True(t, e.Message().GetNoteOn(&ch, &key, &vel))
	require.Equal(t, uint8(1), ch)
	require.Equal(t, uint8(60), key)
	require.Equal(t, uint8(100), vel)
	require.Contains(t, e.String(), "@42")
}
