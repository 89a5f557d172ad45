package hal

import "sync/atomic"

// CallbackSlot holds the callback invoked by the pin-change vectors.
// There is a single writer (Attach/Detach, never called from an interrupt)
// and the interrupt vectors are the only readers. Writes happen with
// interrupts disabled.
type CallbackSlot struct {
	fn atomic.Pointer[func()]
}

// Set replaces the callback. nil clears it.
func (s *CallbackSlot) Set(fn func()) {
	if fn == nil {
		s.fn.Store(nil)
		return
	}
	s.fn.Store(&fn)
}

// Fire invokes the callback if one is set.
func (s *CallbackSlot) Fire() {
	if fn := s.fn.Load(); fn != nil {
		(*fn)()
	}
}

// IsSet indicates a callback is attached.
func (s *CallbackSlot) IsSet() bool {
	return s.fn.Load() != nil
}

// ChangePin locates a Bean pin in the pin-change interrupt groups.
type ChangePin struct {
	Group int
	Mask  byte
}

// NumChangePins is the number of Bean pins with change interrupts.
const NumChangePins = 6

// Pin-change groups
const (
	PinChangeGroup0 = 0 // D1-D5
	PinChangeGroup1 = 1 // A0, A1
	PinChangeGroup2 = 2 // D0
)

var changePins = [NumChangePins]ChangePin{
	{Group: PinChangeGroup2, Mask: 1 << 6}, // D0: PCINT22
	{Group: PinChangeGroup0, Mask: 1 << 1}, // D1: PCINT1
	{Group: PinChangeGroup0, Mask: 1 << 2},
	{Group: PinChangeGroup0, Mask: 1 << 3},
	{Group: PinChangeGroup0, Mask: 1 << 4},
	{Group: PinChangeGroup0, Mask: 1 << 5},
}

// ChangePinOf maps a Bean pin number to its pin-change group and mask.
func ChangePinOf(pin int) (ChangePin, bool) {
	if pin < 0 || pin >= NumChangePins {
		return ChangePin{}, false
	}
	return changePins[pin], true
}

// ChangeInterrupts attaches a single shared callback to Bean pins.
type ChangeInterrupts struct {
	CPU       CPU
	PinChange PinChange

	slot CallbackSlot
}

// NewChangeInterrupts creates ChangeInterrupts and installs its vector.
func NewChangeInterrupts(cpu CPU, pc PinChange) *ChangeInterrupts {
	c := &ChangeInterrupts{CPU: cpu, PinChange: pc}
	pc.SetVector(c.Vector)
	return c
}

// Attach enables the change interrupt of pin and replaces the shared
// callback. It returns false for pins without a change interrupt.
func (c *ChangeInterrupts) Attach(pin int, fn func()) bool {
	cp, ok := ChangePinOf(pin)
	if !ok {
		return false
	}
	c.CPU.Critical(func() {
		c.PinChange.Enable(cp.Group, cp.Mask)
		c.slot.Set(fn)
	})
	return true
}

// Detach disables the change interrupt of pin and clears the callback.
func (c *ChangeInterrupts) Detach(pin int) {
	c.CPU.Critical(func() {
		if cp, ok := ChangePinOf(pin); ok {
			c.PinChange.Disable(cp.Group, cp.Mask)
		}
		c.slot.Set(nil)
	})
}

// Vector is the body of all three pin-change interrupt vectors.
func (c *ChangeInterrupts) Vector() {
	c.slot.Fire()
}

// Attached indicates a callback is currently attached.
func (c *ChangeInterrupts) Attached() bool {
	return c.slot.IsSet()
}
