package bean

import "github.com/robotalks/bean.go/pkg/link"

// BMA250 registers.
const (
	RegIntStatus   byte = 0x09
	RegRange       byte = 0x0f
	RegPowerMode   byte = 0x11
	RegIntEnable0  byte = 0x16
	RegIntEnable1  byte = 0x17
	RegIntMapping1 byte = 0x19
	RegLatch       byte = 0x21
)

// Acceleration ranges for SetAccelerationRange.
const (
	Range2G  byte = 0x03
	Range4G  byte = 0x05
	Range8G  byte = 0x08
	Range16G byte = 0x0c
)

// Accelerometer power modes for SetAccelerometerPowerMode.
const (
	PowerModeNormal        byte = 0x00
	PowerModeSuspend       byte = 0x80
	PowerModeLowPower10ms  byte = 0x54
	PowerModeLowPower100ms byte = 0x5a
	PowerModeLowPower1s    byte = 0x5e
)

// Interrupt latch settings.
const (
	LatchNone      byte = 0x00
	LatchTemporary byte = 0x01 // 250ms
	Latched        byte = 0x07
	LatchReset     byte = 0x80
)

// Interrupt enable bits, RegIntEnable0 in the high byte.
const (
	enableFlat      uint16 = 0x8000
	enableOrient    uint16 = 0x4000
	enableSingleTap uint16 = 0x2000
	enableDoubleTap uint16 = 0x1000
	enableAnyMotion uint16 = 0x0700
	enableLowG      uint16 = 0x0008
	enableHighG     uint16 = 0x0007
)

// WakeSource selects the interrupts mapped to the wake pin.
type WakeSource byte

// Wake sources
const (
	WakeLowG      WakeSource = 0x01
	WakeHighG     WakeSource = 0x02
	WakeAnyMotion WakeSource = 0x04
	WakeDoubleTap WakeSource = 0x10
	WakeSingleTap WakeSource = 0x20
	WakeOrient    WakeSource = 0x40
	WakeFlat      WakeSource = 0x80
)

// MotionEvent is a set of accelerometer events. The bits match the
// interrupt status register.
type MotionEvent byte

// Motion events
const (
	LowGEvent      MotionEvent = 0x01
	HighGEvent     MotionEvent = 0x02
	AnyMotionEvent MotionEvent = 0x04
	DoubleTapEvent MotionEvent = 0x10
	SingleTapEvent MotionEvent = 0x20
	OrientEvent    MotionEvent = 0x40
	FlatEvent      MotionEvent = 0x80
)

var motionInterrupts = []struct {
	event  MotionEvent
	enable uint16
	wake   WakeSource
}{
	{FlatEvent, enableFlat, WakeFlat},
	{OrientEvent, enableOrient, WakeOrient},
	{SingleTapEvent, enableSingleTap, WakeSingleTap},
	{DoubleTapEvent, enableDoubleTap, WakeDoubleTap},
	{AnyMotionEvent, enableAnyMotion, WakeAnyMotion},
	{HighGEvent, enableHighG, WakeHighG},
	{LowGEvent, enableLowG, WakeLowG},
}

// AccelRegisterWrite writes an accelerometer register.
func (b *Bean) AccelRegisterWrite(reg, value byte) {
	logFailure("accel register write", b.Serial.AccelRegisterWrite(reg, value))
}

// AccelRegisterRead reads n consecutive accelerometer registers.
func (b *Bean) AccelRegisterRead(reg byte, n int) ([]byte, error) {
	return b.Serial.AccelRegisterRead(reg, n)
}

func (b *Bean) accelRegister(reg byte) byte {
	v, err := b.Serial.AccelRegisterRead(reg, 1)
	if err != nil {
		return 0
	}
	return v[0]
}

// SetAccelerometerPowerMode sets the power mode register.
func (b *Bean) SetAccelerometerPowerMode(mode byte) {
	b.AccelRegisterWrite(RegPowerMode, mode)
}

// AccelerometerPowerMode reads the power mode register.
func (b *Bean) AccelerometerPowerMode() byte {
	return b.accelRegister(RegPowerMode)
}

// SetAccelerationRange sets the range, one of Range2G..Range16G.
func (b *Bean) SetAccelerationRange(r byte) {
	b.AccelRegisterWrite(RegRange, r)
}

// AccelerationRange reads the range.
func (b *Bean) AccelerationRange() byte {
	return b.accelRegister(RegRange)
}

// EnableWakeOnAccelerometer maps sources to the wake pin and lets the
// accelerometer wake the board.
func (b *Bean) EnableWakeOnAccelerometer(sources WakeSource) {
	b.AccelRegisterWrite(RegLatch, LatchTemporary)
	b.AccelRegisterWrite(RegIntMapping1, byte(sources))
	logFailure("wake on accel", b.Serial.WakeOnAccel(true))
}

// Acceleration reads all axes.
func (b *Bean) Acceleration() link.Acceleration {
	a, err := b.Serial.AccelRead()
	if err != nil {
		return link.Acceleration{}
	}
	return a
}

// AccelerationX reads the X axis.
func (b *Bean) AccelerationX() int16 { return b.Acceleration().X }

// AccelerationY reads the Y axis.
func (b *Bean) AccelerationY() int16 { return b.Acceleration().Y }

// AccelerationZ reads the Z axis.
func (b *Bean) AccelerationZ() int16 { return b.Acceleration().Z }

// EnableMotionEvent adds events to the enabled ones. Previously
// triggered flags of these events are cleared.
func (b *Bean) EnableMotionEvent(events MotionEvent) {
	b.enabledEvents |= events
	var enable uint16
	var wake WakeSource
	for _, m := range motionInterrupts {
		if b.enabledEvents&m.event != 0 {
			enable |= m.enable
			wake |= m.wake
		}
	}
	b.triggeredEvents &^= events
	b.accelerometerConfig(enable, PowerModeLowPower10ms)
	b.EnableWakeOnAccelerometer(wake)
}

// DisableMotionEvents disables all events.
func (b *Bean) DisableMotionEvents() {
	b.enabledEvents = 0
	b.accelerometerConfig(0, PowerModeLowPower1s)
}

// EnabledMotionEvents returns the enabled events.
func (b *Bean) EnabledMotionEvents() MotionEvent {
	return b.enabledEvents
}

// CheckMotionEvent tells whether any of events was triggered since the
// last check and clears them.
func (b *Bean) CheckMotionEvent(events MotionEvent) bool {
	b.triggeredEvents |= b.accelInterrupts()
	occurred := b.triggeredEvents&events != 0
	b.triggeredEvents &^= events
	return occurred
}

func (b *Bean) accelerometerConfig(interrupts uint16, powerMode byte) {
	b.AccelRegisterWrite(RegPowerMode, powerMode)
	b.AccelRegisterWrite(RegLatch, Latched)
	b.AccelRegisterWrite(RegIntEnable0, byte(interrupts>>8))
	b.AccelRegisterWrite(RegIntEnable1, byte(interrupts))
}

// accelInterrupts reads the latched interrupts and resets the latch.
func (b *Bean) accelInterrupts() MotionEvent {
	status, err := b.Serial.AccelRegisterRead(RegIntStatus, 2)
	if err != nil {
		return 0
	}
	latch := b.accelRegister(RegLatch)
	b.AccelRegisterWrite(RegLatch, latch|LatchReset)
	return MotionEvent(status[0])
}
