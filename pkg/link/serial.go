package link

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bean.go/pkg/midi"
	"github.com/robotalks/bean.go/pkg/power"
)

// DefaultCallTimeout is the default time to wait for a reply.
const DefaultCallTimeout = 500 * time.Millisecond

// Serial provides the typed operations of the co-processor.
type Serial struct {
	Client  *Client
	Timeout time.Duration

	midi     midi.ByteQueue
	observer chan ObserverAdvertisement
}

// NewSerial creates a Serial and takes over the notifications of client.
func NewSerial(client *Client) *Serial {
	s := &Serial{
		Client:   client,
		Timeout:  DefaultCallTimeout,
		observer: make(chan ObserverAdvertisement, 8),
	}
	client.NotifyHandler = s
	return s
}

// HandlePacket implements PacketHandler for notifications.
func (s *Serial) HandlePacket(ctx context.Context, pkt *Packet) {
	switch pkt.ID {
	case MsgMidiRead:
		if _, err := s.midi.Write(pkt.Data); err != nil {
			glog.Warningf("link: %v, notification of %d bytes dropped", err, len(pkt.Data))
		}
	case MsgObserverAdv:
		adv, err := DecodeObserverAdvertisement(pkt.Data)
		if err != nil {
			glog.V(1).Info(err)
			return
		}
		select {
		case s.observer <- adv:
		default:
			glog.V(2).Info("link: observer queue full")
		}
	default:
		glog.V(2).Infof("link: unhandled notification %s", pkt)
	}
}

func (s *Serial) call(id MessageID, data []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	reply, err := s.Client.Call(ctx, id, data)
	if err != nil {
		glog.V(1).Infof("link: %s: %v", id, err)
	}
	return reply, err
}

func (s *Serial) exec(id MessageID, data []byte) error {
	_, err := s.call(id, data)
	return err
}

// ConfigureUARTSleep sets the co-processor's idle sleep policy.
func (s *Serial) ConfigureUARTSleep(mode power.UARTSleepMode) error {
	return s.exec(MsgUARTSleep, []byte{byte(mode)})
}

// RequestSleep asks the co-processor to sleep for ms. The reply comes
// after the handshake line is raised.
func (s *Serial) RequestSleep(ms uint32) error {
	return s.exec(MsgSleep, EncodeUint32(ms))
}

// Flush waits until written packets are transmitted. Packets are
// written synchronously so it only reports whether the link is usable.
func (s *Serial) Flush() error {
	if !s.Client.FIFO().State().IsReady() {
		return ErrNotReady
	}
	return nil
}

// Midi returns the queue of inbound MIDI bytes.
func (s *Serial) Midi() *midi.ByteQueue {
	return &s.midi
}

// MidiAvailable returns the number of buffered MIDI bytes.
func (s *Serial) MidiAvailable() int {
	return s.midi.Available()
}

// PeekMidi returns the next MIDI byte without consuming it.
func (s *Serial) PeekMidi() (byte, bool) {
	return s.midi.Peek()
}

// ReadMidi consumes up to len(p) MIDI bytes.
func (s *Serial) ReadMidi(p []byte) int {
	return s.midi.Read(p)
}

// WriteMessage sends a framed message without waiting for a reply.
func (s *Serial) WriteMessage(id MessageID, payload []byte) error {
	return s.Client.Notify(id, payload)
}

// WritePacket implements midi.PacketWriter.
func (s *Serial) WritePacket(pkt []byte) error {
	return s.WriteMessage(MsgMidiWrite, pkt)
}

// LedSet sets all colors.
func (s *Serial) LedSet(setting LedSetting) error {
	return s.exec(MsgLedSet, setting.Bytes())
}

// LedSetSingle sets one color.
func (s *Serial) LedSetSingle(color LedColor, intensity byte) error {
	return s.exec(MsgLedSetSingle, []byte{byte(color), intensity})
}

// LedRead reads the LED.
func (s *Serial) LedRead() (LedSetting, error) {
	b, err := s.call(MsgLedRead, nil)
	if err != nil {
		return LedSetting{}, err
	}
	return DecodeLedSetting(b)
}

// BatteryRead reads the battery level in percent.
func (s *Serial) BatteryRead() (byte, error) {
	b, err := s.call(MsgBatteryRead, nil)
	if err != nil {
		return 0, err
	}
	if len(b) < 1 {
		return 0, errShort(MsgBatteryRead, 1, 0)
	}
	return b[0], nil
}

// TemperatureRead reads the temperature in degrees Celsius.
func (s *Serial) TemperatureRead() (int8, error) {
	b, err := s.call(MsgTempRead, nil)
	if err != nil {
		return 0, err
	}
	if len(b) < 1 {
		return 0, errShort(MsgTempRead, 1, 0)
	}
	return int8(b[0]), nil
}

// AccelRead reads the accelerometer.
func (s *Serial) AccelRead() (Acceleration, error) {
	b, err := s.call(MsgAccelRead, nil)
	if err != nil {
		return Acceleration{}, err
	}
	return DecodeAcceleration(b)
}

// AccelRegisterWrite writes an accelerometer register.
func (s *Serial) AccelRegisterWrite(reg, value byte) error {
	return s.exec(MsgAccelRegWrite, []byte{reg, value})
}

// AccelRegisterRead reads n consecutive accelerometer registers.
func (s *Serial) AccelRegisterRead(reg byte, n int) ([]byte, error) {
	b, err := s.call(MsgAccelRegRead, []byte{reg, byte(n)})
	if err != nil {
		return nil, err
	}
	if len(b) < n {
		return nil, errShort(MsgAccelRegRead, n, len(b))
	}
	return b[:n], nil
}

// WakeOnAccel lets accelerometer interrupts wake the CPU.
func (s *Serial) WakeOnAccel(enable bool) error {
	return s.exec(MsgWakeOnAccel, EncodeBool(enable))
}

// SetAdvertisingInterval sets the advertising interval in milliseconds.
func (s *Serial) SetAdvertisingInterval(ms uint16) error {
	return s.exec(MsgAdvInterval, []byte{byte(ms), byte(ms >> 8)})
}

// SetAdvertisingOnOff turns advertising on or off, timer in
// milliseconds limits it, 0 for forever.
func (s *Serial) SetAdvertisingOnOff(enable bool, timer uint32) error {
	return s.exec(MsgAdvOnOff, AdvOnOff{Enable: enable, Timer: timer}.Bytes())
}

// States reads advertising and connection state.
func (s *Serial) States() (BTStates, error) {
	b, err := s.call(MsgBTStates, nil)
	if err != nil {
		return BTStates{}, err
	}
	return DecodeBTStates(b)
}

// ReadGATT reads the enabled services.
func (s *Serial) ReadGATT() (Services, error) {
	b, err := s.call(MsgGATTRead, nil)
	if err != nil {
		return 0, err
	}
	if len(b) < 1 {
		return 0, errShort(MsgGATTRead, 1, 0)
	}
	return Services(b[0]), nil
}

// WriteGATT sets the enabled services.
func (s *Serial) WriteGATT(services Services) error {
	return s.exec(MsgGATTWrite, []byte{byte(services)})
}

// SetScratch writes a scratch characteristic.
func (s *Serial) SetScratch(bank byte, data []byte) error {
	if len(data) > MaxScratchSize {
		return ErrPayloadTooLarge
	}
	return s.exec(MsgScratchSet, append([]byte{bank}, data...))
}

// GetScratch reads a scratch characteristic.
func (s *Serial) GetScratch(bank byte) ([]byte, error) {
	return s.call(MsgScratchGet, []byte{bank})
}

// SetLocalName sets the advertised name.
func (s *Serial) SetLocalName(name string) error {
	if len(name) > MaxLocalNameSize {
		name = name[:MaxLocalNameSize]
	}
	return s.exec(MsgLocalName, []byte(name))
}

// RadioConfig reads the radio configuration.
func (s *Serial) RadioConfig() (RadioConfig, error) {
	b, err := s.call(MsgRadioConfig, nil)
	if err != nil {
		return RadioConfig{}, err
	}
	return DecodeRadioConfig(b)
}

// SetBeaconParams sets the iBeacon identifiers.
func (s *Serial) SetBeaconParams(params BeaconParams) error {
	return s.exec(MsgBeaconParams, params.Bytes())
}

// EnableBeacon turns iBeacon mode on or off.
func (s *Serial) EnableBeacon(enable bool) error {
	return s.exec(MsgBeaconEnable, EncodeBool(enable))
}

// SetCustomAdvertisement sets the raw advertisement data.
func (s *Serial) SetCustomAdvertisement(data []byte) error {
	return s.exec(MsgCustomAdv, data)
}

// StartObserver starts scanning advertisements.
func (s *Serial) StartObserver() error {
	return s.exec(MsgObserverStart, nil)
}

// StopObserver stops scanning advertisements.
func (s *Serial) StopObserver() error {
	return s.exec(MsgObserverStop, nil)
}

// ObserverMessage waits for the next advertisement seen.
func (s *Serial) ObserverMessage(timeout time.Duration) (ObserverAdvertisement, error) {
	select {
	case adv := <-s.observer:
		return adv, nil
	case <-time.After(timeout):
		return ObserverAdvertisement{}, ErrTimeout
	}
}

// Disconnect drops the current connection.
func (s *Serial) Disconnect() error {
	return s.exec(MsgDisconnect, nil)
}

// SetConfigSave controls whether configuration changes are persisted.
func (s *Serial) SetConfigSave(enable bool) error {
	return s.exec(MsgConfigSave, EncodeBool(enable))
}

// WakeOnConnect lets a new connection wake the CPU.
func (s *Serial) WakeOnConnect(enable bool) error {
	return s.exec(MsgWakeOnConnect, EncodeBool(enable))
}

// AncsAvailable returns the number of pending ANCS notifications.
func (s *Serial) AncsAvailable() (int, error) {
	b, err := s.call(MsgAncsAvailable, nil)
	if err != nil {
		return 0, err
	}
	if len(b) < 1 {
		return 0, errShort(MsgAncsAvailable, 1, 0)
	}
	return int(b[0]), nil
}

// ReadAncs reads up to max bytes of pending ANCS source messages.
func (s *Serial) ReadAncs(max int) ([]byte, error) {
	return s.readLimited(MsgAncsRead, max)
}

// AncsNotiDetails sends a notification detail or action request.
func (s *Serial) AncsNotiDetails(req []byte) error {
	return s.exec(MsgAncsDetails, req)
}

// ReadAncsMessage reads up to max bytes of the requested details.
func (s *Serial) ReadAncsMessage(max int) ([]byte, error) {
	return s.readLimited(MsgAncsMessageRead, max)
}

func (s *Serial) readLimited(id MessageID, max int) ([]byte, error) {
	if max > MaxPayload-2 {
		max = MaxPayload - 2
	}
	if max < 0 {
		max = 0
	}
	b, err := s.call(id, []byte{byte(max)})
	if err != nil {
		return nil, err
	}
	if len(b) > max {
		b = b[:max]
	}
	return b, nil
}
