package bean

import (
	"encoding/binary"
	"time"

	"github.com/robotalks/bean.go/pkg/link"
)

// SetAdvertisingInterval sets the advertising interval.
func (b *Bean) SetAdvertisingInterval(interval time.Duration) {
	ms := interval / time.Millisecond
	if ms > 0xffff {
		ms = 0xffff
	}
	logFailure("advertising interval", b.Serial.SetAdvertisingInterval(uint16(ms)))
}

// EnableAdvertising turns advertising on or off for good.
func (b *Bean) EnableAdvertising(enable bool) {
	b.EnableAdvertisingFor(enable, 0)
}

// EnableAdvertisingFor turns advertising on or off, reverting after d.
// d of 0 doesn't revert.
func (b *Bean) EnableAdvertisingFor(enable bool, d time.Duration) {
	logFailure("advertising", b.Serial.SetAdvertisingOnOff(enable, uint32(d/time.Millisecond)))
}

// ConnectionState tells whether a central is connected.
func (b *Bean) ConnectionState() bool {
	st, err := b.Serial.States()
	return err == nil && st.Connected
}

// AdvertisingState tells whether the board is advertising.
func (b *Bean) AdvertisingState() bool {
	st, err := b.Serial.States()
	return err == nil && st.Advertising
}

// Disconnect drops the current connection.
func (b *Bean) Disconnect() {
	logFailure("disconnect", b.Serial.Disconnect())
}

// Services reads the enabled GATT services.
func (b *Bean) Services() link.Services {
	svcs, err := b.Serial.ReadGATT()
	if err != nil {
		return 0
	}
	return svcs
}

// SetServices sets the enabled GATT services.
func (b *Bean) SetServices(svcs link.Services) {
	logFailure("set services", b.Serial.WriteGATT(svcs))
}

// ResetServices enables the standard service only.
func (b *Bean) ResetServices() {
	b.SetServices(link.ServiceStandard)
}

func (b *Bean) enableService(svc link.Services) {
	b.SetServices(b.Services() | svc)
}

// EnableHID adds the HID service.
func (b *Bean) EnableHID() { b.enableService(link.ServiceHID) }

// EnableMidi adds the BLE-MIDI service.
func (b *Bean) EnableMidi() { b.enableService(link.ServiceMIDI) }

// EnableANCS adds the ANCS client.
func (b *Bean) EnableANCS() { b.enableService(link.ServiceANCS) }

// EnableCustom adds the custom advertisement.
func (b *Bean) EnableCustom() { b.enableService(link.ServiceCustom) }

// EnableIBeacon adds iBeacon advertising.
func (b *Bean) EnableIBeacon() { b.enableService(link.ServiceIBeacon) }

// SetCustomAdvertisement sets the raw advertisement data.
func (b *Bean) SetCustomAdvertisement(data []byte) {
	logFailure("custom advertisement", b.Serial.SetCustomAdvertisement(data))
}

// StartObserver starts scanning advertisements.
func (b *Bean) StartObserver() {
	logFailure("start observer", b.Serial.StartObserver())
}

// StopObserver stops scanning advertisements.
func (b *Bean) StopObserver() {
	logFailure("stop observer", b.Serial.StopObserver())
}

// ObserverMessage waits up to timeout for an advertisement.
func (b *Bean) ObserverMessage(timeout time.Duration) (link.ObserverAdvertisement, bool) {
	adv, err := b.Serial.ObserverMessage(timeout)
	return adv, err == nil
}

// SetBeaconParameters sets the iBeacon identifiers.
func (b *Bean) SetBeaconParameters(uuid, major, minor uint16) {
	logFailure("beacon parameters", b.Serial.SetBeaconParams(link.BeaconParams{UUID: uuid, Major: major, Minor: minor}))
}

// SetBeaconEnable turns iBeacon mode on or off.
func (b *Bean) SetBeaconEnable(enable bool) {
	logFailure("beacon enable", b.Serial.EnableBeacon(enable))
}

// SetScratchData writes up to 20 bytes to a scratch bank (1-5). It
// returns false without writing if data is too long.
func (b *Bean) SetScratchData(bank byte, data []byte) bool {
	if len(data) > link.MaxScratchSize {
		return false
	}
	logFailure("set scratch", b.Serial.SetScratch(bank, data))
	return true
}

// SetScratchNumber writes a little-endian number to a scratch bank.
func (b *Bean) SetScratchNumber(bank byte, n uint32) bool {
	return b.SetScratchData(bank, link.EncodeUint32(n))
}

// ReadScratchData reads a scratch bank.
func (b *Bean) ReadScratchData(bank byte) []byte {
	data, err := b.Serial.GetScratch(bank)
	if err != nil {
		return nil
	}
	return data
}

// ReadScratchNumber reads the little-endian number in a scratch bank.
// Missing bytes read as 0.
func (b *Bean) ReadScratchNumber(bank byte) int32 {
	var buf [4]byte
	copy(buf[:], b.ReadScratchData(bank))
	return int32(binary.LittleEndian.Uint32(buf[:]))
}

// SetBeanName sets the advertised name, truncated to 20 bytes.
func (b *Bean) SetBeanName(name string) {
	logFailure("set name", b.Serial.SetLocalName(name))
}

// BeanName reads the advertised name.
func (b *Bean) BeanName() string {
	cfg, err := b.Serial.RadioConfig()
	if err != nil {
		return ""
	}
	return cfg.LocalName
}
