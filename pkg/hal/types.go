// Package hal abstracts the Bean's AVR hardware used by the core.
package hal

import "time"

// Clock provides the monotonic millisecond clock and busy-wait delay.
type Clock interface {
	// Millis returns milliseconds since boot, wrapping at 2^32.
	Millis() uint32
	// Delay busy-waits for the duration.
	Delay(time.Duration)
}

// InputPin is a digital line which is only ever read by this side.
type InputPin interface {
	ConfigureInput()
	Get() bool
}

// Peripherals exposes the enable state of power hungry peripherals
// which are turned off across a hardware sleep.
type Peripherals interface {
	ADCEnabled() bool
	SetADCEnabled(bool)
	ComparatorEnabled() bool
	SetComparatorEnabled(bool)
}

// Trigger defines the condition firing an external interrupt.
type Trigger int

// Triggers
const (
	TriggerLow Trigger = iota
	TriggerChange
	TriggerRising
	TriggerFalling
)

// Interrupts manages the external interrupt lines.
// In power-down sleep only TriggerLow can wake the CPU.
type Interrupts interface {
	Attach(line int, trigger Trigger, handler func())
	Detach(line int)
}

// SleepMode selects the CPU sleep state.
type SleepMode int

// Sleep modes
const (
	SleepIdle SleepMode = iota
	SleepADCNoiseReduction
	SleepPowerDown
	SleepPowerSave
	SleepStandby
	SleepExtendedStandby
)

// CPU provides the atomicity primitives around sleeping.
type CPU interface {
	SetSleepMode(SleepMode)
	// SleepIf disables interrupts, evaluates cond and, only if it holds,
	// enables sleep and halts with interrupts re-enabled on the way in so
	// the wake condition can not be missed between the check and the halt.
	// It returns whether the CPU was halted, after waking.
	SleepIf(cond func() bool) bool
	// Critical runs fn with interrupts disabled.
	Critical(fn func())
}

// PinChange controls the pin-change interrupt groups.
type PinChange interface {
	Enable(group int, mask byte)
	// Disable clears mask and turns the group off once no pin is left.
	Disable(group int, mask byte)
	// SetVector installs the function run by all pin-change vectors.
	SetVector(fn func())
}

// Board aggregates everything the core needs from the hardware.
type Board interface {
	Clock() Clock
	HandshakeLine() InputPin
	Peripherals() Peripherals
	Interrupts() Interrupts
	CPU() CPU
	PinChange() PinChange
}
