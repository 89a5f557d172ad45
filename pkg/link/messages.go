package link

import (
	"encoding/binary"
	"fmt"
)

// Message ids, grouped by the high 4 bits.
const (
	// power and configuration
	MsgUARTSleep     MessageID = 0x001
	MsgSleep         MessageID = 0x002
	MsgWakeOnConnect MessageID = 0x003
	MsgConfigSave    MessageID = 0x004

	// MIDI
	MsgMidiWrite MessageID = 0x100
	MsgMidiRead  MessageID = 0x101

	// LED
	MsgLedSet       MessageID = 0x200
	MsgLedSetSingle MessageID = 0x201
	MsgLedRead      MessageID = 0x202

	// sensors
	MsgBatteryRead   MessageID = 0x300
	MsgTempRead      MessageID = 0x301
	MsgAccelRead     MessageID = 0x302
	MsgAccelRegWrite MessageID = 0x303
	MsgAccelRegRead  MessageID = 0x304
	MsgWakeOnAccel   MessageID = 0x305

	// radio
	MsgAdvInterval   MessageID = 0x400
	MsgAdvOnOff      MessageID = 0x401
	MsgBTStates      MessageID = 0x402
	MsgGATTRead      MessageID = 0x403
	MsgGATTWrite     MessageID = 0x404
	MsgScratchSet    MessageID = 0x405
	MsgScratchGet    MessageID = 0x406
	MsgLocalName     MessageID = 0x407
	MsgRadioConfig   MessageID = 0x408
	MsgBeaconParams  MessageID = 0x409
	MsgBeaconEnable  MessageID = 0x40a
	MsgCustomAdv     MessageID = 0x40b
	MsgObserverStart MessageID = 0x40c
	MsgObserverStop  MessageID = 0x40d
	MsgObserverAdv   MessageID = 0x40e
	MsgDisconnect    MessageID = 0x40f

	// ANCS
	MsgAncsAvailable   MessageID = 0x500
	MsgAncsRead        MessageID = 0x501
	MsgAncsDetails     MessageID = 0x502
	MsgAncsMessageRead MessageID = 0x503
)

var messageNames = map[MessageID]string{
	MsgUARTSleep:       "uart-sleep",
	MsgSleep:           "sleep",
	MsgWakeOnConnect:   "wake-on-connect",
	MsgConfigSave:      "config-save",
	MsgMidiWrite:       "midi-write",
	MsgMidiRead:        "midi-read",
	MsgLedSet:          "led-set",
	MsgLedSetSingle:    "led-set-single",
	MsgLedRead:         "led-read",
	MsgBatteryRead:     "battery-read",
	MsgTempRead:        "temp-read",
	MsgAccelRead:       "accel-read",
	MsgAccelRegWrite:   "accel-reg-write",
	MsgAccelRegRead:    "accel-reg-read",
	MsgWakeOnAccel:     "wake-on-accel",
	MsgAdvInterval:     "adv-interval",
	MsgAdvOnOff:        "adv-onoff",
	MsgBTStates:        "bt-states",
	MsgGATTRead:        "gatt-read",
	MsgGATTWrite:       "gatt-write",
	MsgScratchSet:      "scratch-set",
	MsgScratchGet:      "scratch-get",
	MsgLocalName:       "local-name",
	MsgRadioConfig:     "radio-config",
	MsgBeaconParams:    "beacon-params",
	MsgBeaconEnable:    "beacon-enable",
	MsgCustomAdv:       "custom-adv",
	MsgObserverStart:   "observer-start",
	MsgObserverStop:    "observer-stop",
	MsgObserverAdv:     "observer-adv",
	MsgDisconnect:      "disconnect",
	MsgAncsAvailable:   "ancs-available",
	MsgAncsRead:        "ancs-read",
	MsgAncsDetails:     "ancs-details",
	MsgAncsMessageRead: "ancs-message-read",
}

// String implements fmt.Stringer.
func (id MessageID) String() string {
	if name, ok := messageNames[id]; ok {
		return name
	}
	return fmt.Sprintf("msg-%03x", uint16(id))
}

// Status codes replied by the co-processor.
const (
	StatusOK          byte = 0
	StatusUnknown     byte = 1
	StatusInvalidArgs byte = 2
	StatusBusy        byte = 3
)

// Scratch and name limits.
const (
	MaxScratchSize   = 20
	MaxLocalNameSize = 20
	NumScratchBanks  = 5
)

var le = binary.LittleEndian

func errShort(id MessageID, want, got int) error {
	return fmt.Errorf("%s: %d bytes expected, got %d", id, want, got)
}

// EncodeBool encodes a flag payload.
func EncodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// EncodeUint32 encodes a little-endian uint32 payload.
func EncodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	le.PutUint32(b, v)
	return b
}

// DecodeUint32 decodes a little-endian uint32 payload.
func DecodeUint32(id MessageID, b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, errShort(id, 4, len(b))
	}
	return le.Uint32(b), nil
}

// LedColor selects a single LED.
type LedColor byte

// LED colors
const (
	LedRed LedColor = iota
	LedGreen
	LedBlue
)

var ledColorNames = [...]string{"red", "green", "blue"}

// String implements fmt.Stringer.
func (c LedColor) String() string {
	if int(c) < len(ledColorNames) {
		return ledColorNames[c]
	}
	return fmt.Sprintf("led-%d", byte(c))
}

// LedSetting is the RGB LED state.
type LedSetting struct {
	Red, Green, Blue byte
}

// Bytes encodes the setting.
func (s LedSetting) Bytes() []byte {
	return []byte{s.Red, s.Green, s.Blue}
}

// DecodeLedSetting decodes a LedSetting.
func DecodeLedSetting(b []byte) (s LedSetting, err error) {
	if len(b) < 3 {
		return s, errShort(MsgLedRead, 3, len(b))
	}
	return LedSetting{Red: b[0], Green: b[1], Blue: b[2]}, nil
}

// Acceleration is a 3-axis accelerometer reading.
type Acceleration struct {
	X, Y, Z     int16
	Sensitivity byte
}

// Bytes encodes the reading.
func (a Acceleration) Bytes() []byte {
	b := make([]byte, 7)
	le.PutUint16(b[0:], uint16(a.X))
	le.PutUint16(b[2:], uint16(a.Y))
	le.PutUint16(b[4:], uint16(a.Z))
	b[6] = a.Sensitivity
	return b
}

// DecodeAcceleration decodes an Acceleration.
func DecodeAcceleration(b []byte) (a Acceleration, err error) {
	if len(b) < 7 {
		return a, errShort(MsgAccelRead, 7, len(b))
	}
	return Acceleration{
		X:           int16(le.Uint16(b[0:])),
		Y:           int16(le.Uint16(b[2:])),
		Z:           int16(le.Uint16(b[4:])),
		Sensitivity: b[6],
	}, nil
}

// BTStates reports advertising and connection state.
type BTStates struct {
	Advertising bool
	Connected   bool
}

// Bytes encodes the states.
func (s BTStates) Bytes() []byte {
	return []byte{EncodeBool(s.Advertising)[0], EncodeBool(s.Connected)[0]}
}

// DecodeBTStates decodes BTStates.
func DecodeBTStates(b []byte) (s BTStates, err error) {
	if len(b) < 2 {
		return s, errShort(MsgBTStates, 2, len(b))
	}
	return BTStates{Advertising: b[0] != 0, Connected: b[1] != 0}, nil
}

// Services are the GATT services advertised, one bit each.
type Services byte

// Service bits
const (
	ServiceStandard Services = 1 << iota
	ServiceHID
	ServiceMIDI
	ServiceANCS
	ServiceObserver
	ServiceCustom
	ServiceIBeacon
)

// Has tells whether all of the services in s are enabled.
func (s Services) Has(svc Services) bool {
	return s&svc == svc
}

// AdvOnOff is the payload of MsgAdvOnOff.
type AdvOnOff struct {
	Enable bool
	// Timer is the advertising duration in milliseconds, 0 for forever.
	Timer uint32
}

// Bytes encodes the payload.
func (a AdvOnOff) Bytes() []byte {
	return append(EncodeBool(a.Enable), EncodeUint32(a.Timer)...)
}

// DecodeAdvOnOff decodes AdvOnOff.
func DecodeAdvOnOff(b []byte) (a AdvOnOff, err error) {
	if len(b) < 5 {
		return a, errShort(MsgAdvOnOff, 5, len(b))
	}
	return AdvOnOff{Enable: b[0] != 0, Timer: le.Uint32(b[1:])}, nil
}

// BeaconParams are the iBeacon identifiers.
type BeaconParams struct {
	UUID, Major, Minor uint16
}

// Bytes encodes the parameters.
func (p BeaconParams) Bytes() []byte {
	b := make([]byte, 6)
	le.PutUint16(b[0:], p.UUID)
	le.PutUint16(b[2:], p.Major)
	le.PutUint16(b[4:], p.Minor)
	return b
}

// DecodeBeaconParams decodes BeaconParams.
func DecodeBeaconParams(b []byte) (p BeaconParams, err error) {
	if len(b) < 6 {
		return p, errShort(MsgBeaconParams, 6, len(b))
	}
	return BeaconParams{UUID: le.Uint16(b[0:]), Major: le.Uint16(b[2:]), Minor: le.Uint16(b[4:])}, nil
}

// RadioConfig is the radio configuration of the co-processor.
type RadioConfig struct {
	AdvInterval  uint16
	ConnInterval uint16
	TxPower      byte
	AdvMode      byte
	LocalName    string
}

// Bytes encodes the config, the name is truncated to MaxLocalNameSize.
func (c RadioConfig) Bytes() []byte {
	name := c.LocalName
	if len(name) > MaxLocalNameSize {
		name = name[:MaxLocalNameSize]
	}
	b := make([]byte, 7, 7+len(name))
	le.PutUint16(b[0:], c.AdvInterval)
	le.PutUint16(b[2:], c.ConnInterval)
	b[4], b[5], b[6] = c.TxPower, c.AdvMode, byte(len(name))
	return append(b, name...)
}

// DecodeRadioConfig decodes RadioConfig.
func DecodeRadioConfig(b []byte) (c RadioConfig, err error) {
	if len(b) < 7 {
		return c, errShort(MsgRadioConfig, 7, len(b))
	}
	c.AdvInterval, c.ConnInterval = le.Uint16(b[0:]), le.Uint16(b[2:])
	c.TxPower, c.AdvMode = b[4], b[5]
	size := int(b[6])
	if size > MaxLocalNameSize {
		size = MaxLocalNameSize
	}
	if size > len(b)-7 {
		size = len(b) - 7
	}
	c.LocalName = string(b[7 : 7+size])
	return c, nil
}

// ObserverAdvertisement is an advertisement seen by the observer.
type ObserverAdvertisement struct {
	EventType   byte
	AddressType byte
	Address     [6]byte
	Data        []byte
}

// Bytes encodes the advertisement.
func (a ObserverAdvertisement) Bytes() []byte {
	b := make([]byte, 8, 8+len(a.Data))
	b[0], b[1] = a.EventType, a.AddressType
	copy(b[2:], a.Address[:])
	return append(b, a.Data...)
}

// DecodeObserverAdvertisement decodes ObserverAdvertisement.
func DecodeObserverAdvertisement(b []byte) (a ObserverAdvertisement, err error) {
	if len(b) < 8 {
		return a, errShort(MsgObserverAdv, 8, len(b))
	}
	a.EventType, a.AddressType = b[0], b[1]
	copy(a.Address[:], b[2:8])
	a.Data = append([]byte(nil), b[8:]...)
	return a, nil
}
