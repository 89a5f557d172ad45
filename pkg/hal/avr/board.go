//go:build avr

// Package avr implements hal.Board on the Bean's ATmega328P with TinyGo.
package avr

import (
	"device/avr"
	"runtime/interrupt"
	"time"

	"github.com/robotalks/bean.go/pkg/hal"
)

const handshakeBit = 1 << 3 // PD3, also INT1

var (
	boot = time.Now()

	// handlers of INT0 and INT1.
	extHandlers   [2]func()
	changeHandler func()

	// the interrupt IDs must be constants, so the vectors are bound here.
	int0   = interrupt.New(avr.IRQ_INT0, func(interrupt.Interrupt) { runExt(0) })
	int1   = interrupt.New(avr.IRQ_INT1, func(interrupt.Interrupt) { runExt(1) })
	pcint0 = interrupt.New(avr.IRQ_PCINT0, func(interrupt.Interrupt) { runChange() })
	pcint1 = interrupt.New(avr.IRQ_PCINT1, func(interrupt.Interrupt) { runChange() })
	pcint2 = interrupt.New(avr.IRQ_PCINT2, func(interrupt.Interrupt) { runChange() })
)

func runExt(n int) {
	if h := extHandlers[n]; h != nil {
		h()
	}
}

func runChange() {
	if h := changeHandler; h != nil {
		h()
	}
}

// Board is the ATmega328P. There is only one.
type Board struct{}

// Default is the board.
var Default = &Board{}

// Clock implements hal.Board.
func (b *Board) Clock() hal.Clock { return b }

// HandshakeLine implements hal.Board.
func (b *Board) HandshakeLine() hal.InputPin { return handshakePin{} }

// Peripherals implements hal.Board.
func (b *Board) Peripherals() hal.Peripherals { return b }

// Interrupts implements hal.Board.
func (b *Board) Interrupts() hal.Interrupts { return b }

// CPU implements hal.Board.
func (b *Board) CPU() hal.CPU { return b }

// PinChange implements hal.Board.
func (b *Board) PinChange() hal.PinChange { return b }

// Millis implements hal.Clock.
func (b *Board) Millis() uint32 {
	return uint32(time.Since(boot) / time.Millisecond)
}

// Delay implements hal.Clock.
func (b *Board) Delay(d time.Duration) {
	time.Sleep(d)
}

type handshakePin struct{}

func (handshakePin) ConfigureInput() {
	avr.DDRD.ClearBits(handshakeBit)
}

func (handshakePin) Get() bool {
	return avr.PIND.HasBits(handshakeBit)
}

// ADCEnabled implements hal.Peripherals.
func (b *Board) ADCEnabled() bool {
	return avr.ADCSRA.HasBits(avr.ADCSRA_ADEN)
}

// SetADCEnabled implements hal.Peripherals.
func (b *Board) SetADCEnabled(en bool) {
	if en {
		avr.ADCSRA.SetBits(avr.ADCSRA_ADEN)
	} else {
		avr.ADCSRA.ClearBits(avr.ADCSRA_ADEN)
	}
}

// ComparatorEnabled implements hal.Peripherals.
// ACD is the analog comparator disable bit.
func (b *Board) ComparatorEnabled() bool {
	return !avr.ACSR.HasBits(avr.ACSR_ACD)
}

// SetComparatorEnabled implements hal.Peripherals.
func (b *Board) SetComparatorEnabled(en bool) {
	if en {
		avr.ACSR.ClearBits(avr.ACSR_ACD)
	} else {
		avr.ACSR.SetBits(avr.ACSR_ACD)
	}
}

// Attach implements hal.Interrupts. Only INT0 and INT1 exist, other
// lines are ignored.
func (b *Board) Attach(line int, trigger hal.Trigger, handler func()) {
	var isc uint8
	switch trigger {
	case hal.TriggerChange:
		isc = 1
	case hal.TriggerFalling:
		isc = 2
	case hal.TriggerRising:
		isc = 3
	}
	switch line {
	case 0:
		extHandlers[0] = handler
		avr.EICRA.ReplaceBits(isc, 0x03, 0)
		int0.Enable()
		avr.EIMSK.SetBits(avr.EIMSK_INT0)
	case 1:
		extHandlers[1] = handler
		avr.EICRA.ReplaceBits(isc, 0x03, 2)
		int1.Enable()
		avr.EIMSK.SetBits(avr.EIMSK_INT1)
	}
}

// Detach implements hal.Interrupts.
func (b *Board) Detach(line int) {
	switch line {
	case 0:
		avr.EIMSK.ClearBits(avr.EIMSK_INT0)
		extHandlers[0] = nil
	case 1:
		avr.EIMSK.ClearBits(avr.EIMSK_INT1)
		extHandlers[1] = nil
	}
}

// SetSleepMode implements hal.CPU.
func (b *Board) SetSleepMode(mode hal.SleepMode) {
	var sm uint8
	switch mode {
	case hal.SleepADCNoiseReduction:
		sm = 1
	case hal.SleepPowerDown:
		sm = 2
	case hal.SleepPowerSave:
		sm = 3
	case hal.SleepStandby:
		sm = 6
	case hal.SleepExtendedStandby:
		sm = 7
	}
	avr.SMCR.ReplaceBits(sm<<1, 0x0e, 0)
}

// SleepIf implements hal.CPU. The instruction after SEI always runs
// before a pending interrupt, so SLEEP can not miss the wake condition.
func (b *Board) SleepIf(cond func() bool) bool {
	state := interrupt.Disable()
	slept := cond()
	if slept {
		avr.SMCR.SetBits(avr.SMCR_SE)
		mcucr := avr.MCUCR.Get()
		avr.MCUCR.Set(mcucr | avr.MCUCR_BODS | avr.MCUCR_BODSE)
		avr.MCUCR.Set((mcucr | avr.MCUCR_BODS) &^ avr.MCUCR_BODSE)
		avr.Asm("sei")
		avr.Asm("sleep")
		avr.SMCR.ClearBits(avr.SMCR_SE)
	}
	interrupt.Restore(state)
	avr.Asm("sei")
	return slept
}

// Critical implements hal.CPU.
func (b *Board) Critical(fn func()) {
	state := interrupt.Disable()
	fn()
	interrupt.Restore(state)
}

// Enable implements hal.PinChange.
func (b *Board) Enable(group int, mask byte) {
	switch group {
	case hal.PinChangeGroup0:
		pcint0.Enable()
		avr.PCMSK0.SetBits(mask)
		avr.PCICR.SetBits(avr.PCICR_PCIE0)
	case hal.PinChangeGroup1:
		pcint1.Enable()
		avr.PCMSK1.SetBits(mask)
		avr.PCICR.SetBits(avr.PCICR_PCIE1)
	case hal.PinChangeGroup2:
		pcint2.Enable()
		avr.PCMSK2.SetBits(mask)
		avr.PCICR.SetBits(avr.PCICR_PCIE2)
	}
}

// Disable implements hal.PinChange.
func (b *Board) Disable(group int, mask byte) {
	switch group {
	case hal.PinChangeGroup0:
		if avr.PCMSK0.ClearBits(mask); avr.PCMSK0.Get() == 0 {
			avr.PCICR.ClearBits(avr.PCICR_PCIE0)
		}
	case hal.PinChangeGroup1:
		if avr.PCMSK1.ClearBits(mask); avr.PCMSK1.Get() == 0 {
			avr.PCICR.ClearBits(avr.PCICR_PCIE1)
		}
	case hal.PinChangeGroup2:
		if avr.PCMSK2.ClearBits(mask); avr.PCMSK2.Get() == 0 {
			avr.PCICR.ClearBits(avr.PCICR_PCIE2)
		}
	}
}

// SetVector implements hal.PinChange.
func (b *Board) SetVector(fn func()) {
	state := interrupt.Disable()
	changeHandler = fn
	interrupt.Restore(state)
}
