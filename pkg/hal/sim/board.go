// Package sim provides a simulated Bean board for tests and host runs.
package sim

import (
	"sort"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bean.go/pkg/hal"
)

// WakeLine is the external interrupt line wired to the handshake pin (PD3/INT1).
const WakeLine = 1

// Stats counts the hardware activities observed by the board.
type Stats struct {
	Polls   int
	Delays  int
	Delayed time.Duration
	Halts   int
	Wakes   int
}

type extInt struct {
	trigger hal.Trigger
	handler func()
}

type timer struct {
	at time.Duration
	fn func()
}

// Board simulates the ATmega328P side of a Bean.
// With a virtual clock, Delay advances time instantly and runs timers
// scheduled with After in order; otherwise real time is used.
type Board struct {
	lock sync.Mutex
	irq  sync.Mutex // held while interrupts are disabled

	virtual bool
	start   time.Time
	now     time.Duration
	timers  []timer

	handshake   bool
	handshakeIn bool
	adc         bool
	comparator  bool
	sleepMode   hal.SleepMode
	lines       map[int]extInt
	pcMask      [3]byte
	pcEnabled   [3]bool
	vector      func()
	halted      bool
	wakeCh      chan struct{}
	stats       Stats
}

// NewBoard creates a board after reset: ADC and comparator enabled.
func NewBoard(virtual bool) *Board {
	return &Board{
		virtual:    virtual,
		start:      time.Now(),
		adc:        true,
		comparator: true,
		lines:      make(map[int]extInt),
		wakeCh:     make(chan struct{}, 1),
	}
}

// Clock implements hal.Board.
func (b *Board) Clock() hal.Clock { return b }

// HandshakeLine implements hal.Board.
func (b *Board) HandshakeLine() hal.InputPin { return (*handshakePin)(b) }

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
	b.lock.Lock()
	defer b.lock.Unlock()
	return uint32(b.elapsed() / time.Millisecond)
}

func (b *Board) elapsed() time.Duration {
	if b.virtual {
		return b.now
	}
	return time.Since(b.start)
}

// Delay implements hal.Clock.
func (b *Board) Delay(d time.Duration) {
	b.lock.Lock()
	b.stats.Delays++
	b.stats.Delayed += d
	if !b.virtual {
		b.lock.Unlock()
		time.Sleep(d)
		return
	}
	target := b.now + d
	for len(b.timers) > 0 && b.timers[0].at <= target {
		t := b.popTimer()
		b.lock.Unlock()
		t.fn()
		b.lock.Lock()
	}
	if target > b.now {
		b.now = target
	}
	b.lock.Unlock()
}

// Advance moves the virtual clock without counting it as a delay.
func (b *Board) Advance(d time.Duration) {
	b.lock.Lock()
	b.now += d
	b.lock.Unlock()
}

// After runs fn once d elapsed.
func (b *Board) After(d time.Duration, fn func()) {
	if !b.virtual {
		time.AfterFunc(d, fn)
		return
	}
	b.lock.Lock()
	b.timers = append(b.timers, timer{at: b.now + d, fn: fn})
	sort.SliceStable(b.timers, func(i, j int) bool { return b.timers[i].at < b.timers[j].at })
	b.lock.Unlock()
}

func (b *Board) popTimer() timer {
	t := b.timers[0]
	b.timers = b.timers[1:]
	if t.at > b.now {
		b.now = t.at
	}
	return t
}

// SetHandshake drives the handshake line as the co-processor does.
func (b *Board) SetHandshake(level bool) {
	b.lock.Lock()
	prev := b.handshake
	b.handshake = level
	line, ok := b.lines[WakeLine]
	b.lock.Unlock()
	if ok && fires(line.trigger, prev, level) {
		b.interrupt(line.handler)
	}
}

func fires(trigger hal.Trigger, prev, level bool) bool {
	switch trigger {
	case hal.TriggerLow:
		return !level
	case hal.TriggerChange:
		return prev != level
	case hal.TriggerRising:
		return !prev && level
	case hal.TriggerFalling:
		return prev && !level
	}
	return false
}

func (b *Board) interrupt(handler func()) {
	b.irq.Lock()
	if handler != nil {
		handler()
	}
	b.irq.Unlock()
	b.lock.Lock()
	if b.halted {
		b.halted = false
		b.stats.Wakes++
		select {
		case b.wakeCh <- struct{}{}:
		default:
		}
	}
	b.lock.Unlock()
}

type handshakePin Board

// ConfigureInput implements hal.InputPin.
func (p *handshakePin) ConfigureInput() {
	b := (*Board)(p)
	b.lock.Lock()
	b.handshakeIn = true
	b.lock.Unlock()
}

// Get implements hal.InputPin.
func (p *handshakePin) Get() bool {
	b := (*Board)(p)
	b.lock.Lock()
	defer b.lock.Unlock()
	b.stats.Polls++
	return b.handshake
}

// ADCEnabled implements hal.Peripherals.
func (b *Board) ADCEnabled() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.adc
}

// SetADCEnabled implements hal.Peripherals.
func (b *Board) SetADCEnabled(en bool) {
	b.lock.Lock()
	b.adc = en
	b.lock.Unlock()
}

// ComparatorEnabled implements hal.Peripherals.
func (b *Board) ComparatorEnabled() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.comparator
}

// SetComparatorEnabled implements hal.Peripherals.
func (b *Board) SetComparatorEnabled(en bool) {
	b.lock.Lock()
	b.comparator = en
	b.lock.Unlock()
}

// Attach implements hal.Interrupts.
func (b *Board) Attach(line int, trigger hal.Trigger, handler func()) {
	b.lock.Lock()
	b.lines[line] = extInt{trigger: trigger, handler: handler}
	low := line == WakeLine && !b.handshake
	b.lock.Unlock()
	if low && trigger == hal.TriggerLow {
		b.interrupt(handler)
	}
}

// Detach implements hal.Interrupts.
func (b *Board) Detach(line int) {
	b.lock.Lock()
	delete(b.lines, line)
	b.lock.Unlock()
}

// Attached tells whether an external interrupt line is armed.
func (b *Board) Attached(line int) bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	_, ok := b.lines[line]
	return ok
}

// SetSleepMode implements hal.CPU.
func (b *Board) SetSleepMode(mode hal.SleepMode) {
	b.lock.Lock()
	b.sleepMode = mode
	b.lock.Unlock()
}

// SleepMode returns the selected sleep mode.
func (b *Board) SleepMode() hal.SleepMode {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.sleepMode
}

// SleepIf implements hal.CPU.
func (b *Board) SleepIf(cond func() bool) bool {
	b.irq.Lock()
	if !cond() {
		b.irq.Unlock()
		return false
	}
	b.lock.Lock()
	b.halted = true
	b.stats.Halts++
	b.lock.Unlock()
	b.irq.Unlock()
	glog.V(4).Info("sim: CPU halted")
	b.waitWake()
	glog.V(4).Info("sim: CPU woke up")
	return true
}

func (b *Board) waitWake() {
	for {
		b.lock.Lock()
		if !b.halted {
			b.lock.Unlock()
			return
		}
		if b.virtual && len(b.timers) > 0 {
			t := b.popTimer()
			b.lock.Unlock()
			t.fn()
			continue
		}
		b.lock.Unlock()
		<-b.wakeCh
	}
}

// Critical implements hal.CPU.
func (b *Board) Critical(fn func()) {
	b.irq.Lock()
	defer b.irq.Unlock()
	fn()
}

// Enable implements hal.PinChange.
func (b *Board) Enable(group int, mask byte) {
	b.lock.Lock()
	b.pcMask[group] |= mask
	b.pcEnabled[group] = true
	b.lock.Unlock()
}

// Disable implements hal.PinChange.
func (b *Board) Disable(group int, mask byte) {
	b.lock.Lock()
	b.pcMask[group] &^= mask
	if b.pcMask[group] == 0 {
		b.pcEnabled[group] = false
	}
	b.lock.Unlock()
}

// SetVector implements hal.PinChange.
func (b *Board) SetVector(fn func()) {
	b.lock.Lock()
	b.vector = fn
	b.lock.Unlock()
}

// PinChangeState returns the mask and enable bit of a group.
func (b *Board) PinChangeState(group int) (byte, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.pcMask[group], b.pcEnabled[group]
}

// TogglePin simulates a level change on a pin of a pin-change group.
func (b *Board) TogglePin(group int, mask byte) {
	b.lock.Lock()
	fire := b.pcEnabled[group] && b.pcMask[group]&mask != 0
	vector := b.vector
	b.lock.Unlock()
	if fire && vector != nil {
		b.interrupt(vector)
	}
}

// HandshakeConfigured tells whether the handshake pin was set as input.
func (b *Board) HandshakeConfigured() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.handshakeIn
}

// Stats returns a snapshot of the counters.
func (b *Board) Stats() Stats {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.stats
}
