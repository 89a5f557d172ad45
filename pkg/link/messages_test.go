package link

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageIDString(t *testing.T) {
	require.Equal(t, "midi-read", MsgMidiRead.String())
	require.Equal(t, "ancs-message-read", MsgAncsMessageRead.String())
	require.Equal(t, "msg-7ff", MessageID(0x7ff).String())
}

func TestUint32(t *testing.T) {
	b := EncodeUint32(0x01020304)
	require.Equal(t, []byte{4, 3, 2, 1}, b)
	v, err := DecodeUint32(MsgSleep, b)
	require.NoError(t, err)
	require.Equal(t, uint32(0x01020304), v)
	_, err = DecodeUint32(MsgSleep, b[:3])
	require.EqualError(t, err, "sleep: 4 bytes expected, got 3")
}

func TestDecodeShortPayload(t *testing.T) {
	testCases := []struct {
		name   string
		decode func([]byte) error
		size   int
	}{
		{"led", func(b []byte) error { _, err := DecodeLedSetting(b); return err }, 3},
		{"accel", func(b []byte) error { _, err := DecodeAcceleration(b); return err }, 7},
		{"bt states", func(b []byte) error { _, err := DecodeBTStates(b); return err }, 2},
		{"adv onoff", func(b []byte) error { _, err := DecodeAdvOnOff(b); return err }, 5},
		{"beacon", func(b []byte) error { _, err := DecodeBeaconParams(b); return err }, 6},
		{"radio config", func(b []byte) error { _, err := DecodeRadioConfig(b); return err }, 7},
		{"observer", func(b []byte) error { _, err := DecodeObserverAdvertisement(b); return err }, 8},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, tc.decode(make([]byte, tc.size-1)))
			require.NoError(t, tc.decode(make([]byte, tc.size)))
		})
	}
}

func TestAcceleration(t *testing.T) {
	a := Acceleration{X: -1, Y: 256, Z: -300, Sensitivity: 4}
	b := a.Bytes()
	require.Equal(t, []byte{0xff, 0xff, 0x00, 0x01, 0xd4, 0xfe, 4}, b)
	decoded, err := DecodeAcceleration(b)
	require.NoError(t, err)
	require.Equal(t, a, decoded)
}

func TestAdvOnOff(t *testing.T) {
	b := AdvOnOff{Enable: true, Timer: 1000}.Bytes()
	require.Equal(t, []byte{1, 0xe8, 0x03, 0, 0}, b)
	a, err := DecodeAdvOnOff(b)
	require.NoError(t, err)
	require.True(t, a.Enable)
	require.Equal(t, uint32(1000), a.Timer)
}

func TestServices(t *testing.T) {
	s := ServiceStandard | ServiceMIDI
	require.True(t, s.Has(ServiceMIDI))
	require.True(t, s.Has(ServiceStandard|ServiceMIDI))
	require.False(t, s.Has(ServiceMIDI|ServiceHID))
	require.False(t, s.Has(ServiceIBeacon))
}

func TestRadioConfig(t *testing.T) {
	cfg := RadioConfig{
		AdvInterval:  100,
		ConnInterval: 20,
		TxPower:      3,
		AdvMode:      1,
		LocalName:    strings.Repeat("n", 30),
	}
	b := cfg.Bytes()
	require.Len(t, b, 7+MaxLocalNameSize)
	require.Equal(t, byte(MaxLocalNameSize), b[6])
	decoded, err := DecodeRadioConfig(b)
	require.NoError(t, err)
	cfg.LocalName = cfg.LocalName[:MaxLocalNameSize]
	require.Equal(t, cfg, decoded)

	// name length beyond the payload is clipped.
	b = []byte{0, 0, 0, 0, 0, 0, 10, 'a', 'b'}
	decoded, err = DecodeRadioConfig(b)
	require.NoError(t, err)
	require.Equal(t, "ab", decoded.LocalName)
}

func TestObserverAdvertisement(t *testing.T) {
	adv := ObserverAdvertisement{
		EventType:   2,
		AddressType: 1,
		Address:     [6]byte{1, 2, 3, 4, 5, 6},
		Data:        []byte{0x02, 0x01, 0x06},
	}
	decoded, err := DecodeObserverAdvertisement(adv.Bytes())
	require.NoError(t, err)
	require.Equal(t, adv, decoded)
}
