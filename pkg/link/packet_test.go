package link

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPacketSeq(t *testing.T) {
	for s := byte(0xff); s >= byte(0xf0); s-- {
		require.False(t, PacketSeq(s).IsValid())
		require.Equal(t, PacketSeq(1), PacketSeq(s).Next())
	}
	for s := byte(1); s < byte(0xf0); s++ {
		require.True(t, PacketSeq(s).IsValid())
		if s+1 < 0xf0 {
			require.Equal(t, PacketSeq(s+1), PacketSeq(s).Next())
		} else {
			require.Equal(t, PacketSeq(1), PacketSeq(s).Next())
		}
	}
	require.False(t, PacketSeq(0).IsValid())
	require.True(t, NewPacketSeq().IsValid())
}

func TestPacket(t *testing.T) {
	seven := []byte{1, 2, 3, 4, 5, 6, 7}
	testCases := []struct {
		name   string
		packet Packet
		expect []byte
	}{
		{"no data", Packet{Seq: 1, ID: 2}, []byte{1, 0x00, 2}},
		{"small data", Packet{Seq: 1, ID: 2, Data: []byte{1}}, []byte{1, 0x10, 2, 1}},
		{"six bytes", Packet{Seq: 1, ID: 0x302, Data: seven[:6]}, []byte{1, 0x63, 2, 1, 2, 3, 4, 5, 6}},
		{"large data", Packet{Seq: 1, ID: 2, Data: seven}, []byte{1, 0x70, 2, 7, 1, 2, 3, 4, 5, 6, 7}},
		{"notify no data", Packet{Seq: 1, Notify: true, ID: 0x102}, []byte{1, 0x81, 0x02}},
		{"notify small data", Packet{Seq: 1, Notify: true, ID: MsgMidiRead, Data: []byte{1}}, []byte{1, 0x91, 0x01, 1}},
		{"notify large data", Packet{Seq: 1, Notify: true, ID: MaxMessageID, Data: seven}, []byte{1, 0xff, 0xff, 7, 1, 2, 3, 4, 5, 6, 7}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.packet.Validate())
			require.Equal(t, tc.expect, tc.packet.Bytes())
			var buf bytes.Buffer
			n, err := tc.packet.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, tc.expect, buf.Bytes())
			require.Equal(t, int64(len(tc.expect)), n)
		})
	}
}

func TestPacketValidate(t *testing.T) {
	pkt := &Packet{ID: MaxMessageID + 1}
	require.Error(t, pkt.Validate())
	pkt = &Packet{ID: 1, Data: make([]byte, MaxPayload+1)}
	require.Equal(t, ErrPayloadTooLarge, pkt.Validate())
	var buf bytes.Buffer
	_, err := pkt.WriteTo(&buf)
	require.Equal(t, ErrPayloadTooLarge, err)
	require.Zero(t, buf.Len())
	pkt.Data = pkt.Data[:MaxPayload]
	require.NoError(t, pkt.Validate())
}

func TestPacketRoundTrip(t *testing.T) {
	var parser Parser
	parser.Reset()
	parser.Parse(syncACK)
	parser.Parse(0x20)
	for _, pkt := range []*Packet{
		{Seq: 0x20, ID: MsgLedSet, Data: []byte{1, 2, 3}},
		{Seq: 0x21, Notify: true, ID: MsgMidiRead, Data: bytes.Repeat([]byte{0x90}, 40)},
		{Seq: 0x22, ID: MsgDisconnect},
	} {
		var pr ParseResult
		for _, b := range pkt.Bytes() {
			pr = parser.Parse(b)
		}
		require.Equal(t, pkt, pr.Packet)
	}
}
