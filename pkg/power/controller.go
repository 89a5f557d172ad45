// Package power negotiates sleep with the co-processor and puts the CPU
// into power-down until the co-processor wakes it up.
package power

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bean.go/pkg/hal"
)

// Timing constants of the sleep negotiation.
const (
	// MinSleep is the shortest duration worth a negotiation, anything
	// shorter is a plain delay.
	MinSleep = 10 * time.Millisecond
	// PollCount is the number of handshake line polls per attempt.
	PollCount = 30
	// PollInterval is the delay before each poll.
	PollInterval = time.Millisecond
	// PollWindow is the time one handshake attempt may take.
	PollWindow = PollCount * PollInterval
	// LongSleep is the duration above which failed handshakes are
	// retried for the whole duration instead of falling back to a delay.
	LongSleep = 30000 * time.Millisecond
)

// WakeLine is the external interrupt line wired to the handshake pin.
const WakeLine = 1

// UARTSleepMode is the co-processor's idle sleep policy.
type UARTSleepMode byte

// UART sleep policies
const (
	UARTSleepNormal UARTSleepMode = 0
	UARTSleepNever  UARTSleepMode = 1
)

// String implements fmt.Stringer.
func (m UARTSleepMode) String() string {
	switch m {
	case UARTSleepNormal:
		return "normal"
	case UARTSleepNever:
		return "never"
	}
	return "unknown"
}

// SleepLink is the part of the transport link used for sleeping.
// Errors are ignored by the controller: a lost request shows up as a
// handshake which never completes.
type SleepLink interface {
	ConfigureUARTSleep(UARTSleepMode) error
	RequestSleep(ms uint32) error
	Flush() error
}

// State is the state of a sleep call.
type State int

// States
const (
	Idle State = iota
	Handshaking
	HardwareSleep
	SoftwareDelay
	HandshakeFailedRetry
	Awake
)

var stateNames = [...]string{
	Idle:                 "idle",
	Handshaking:          "handshaking",
	HardwareSleep:        "hardware-sleep",
	SoftwareDelay:        "software-delay",
	HandshakeFailedRetry: "handshake-failed-retry",
	Awake:                "awake",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Observer is notified on each state transition.
// It's called synchronously from Sleep and must not block.
type Observer interface {
	StateChanged(State)
}

// ObserverFunc is the func form of Observer.
type ObserverFunc func(State)

// StateChanged implements Observer.
func (f ObserverFunc) StateChanged(s State) {
	f(s)
}

// SessionResetter forgets per-connection state when keep-awake changes.
type SessionResetter interface {
	ResetSession()
}

// Result summarizes a Sleep call.
type Result struct {
	// Slept indicates the CPU was halted in power-down.
	Slept bool
	// Attempts is the number of handshake attempts.
	Attempts int
	// Final is always Awake.
	Final State
}

// Controller implements the sleep/wake state machine.
type Controller struct {
	Link     SleepLink
	Board    hal.Board
	Observer Observer
	Session  SessionResetter

	state State
}

// NewController creates a Controller.
func NewController(link SleepLink, board hal.Board) *Controller {
	return &Controller{Link: link, Board: board}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

func (c *Controller) transit(s State) {
	glog.V(2).Infof("power: %s -> %s", c.state, s)
	c.state = s
	if c.Observer != nil {
		c.Observer.StateChanged(s)
	}
}

// SetKeepAwake resets the session and tells the co-processor whether
// it may enter its own idle sleep.
func (c *Controller) SetKeepAwake(enabled bool) {
	if c.Session != nil {
		c.Session.ResetSession()
	}
	mode := UARTSleepNormal
	if enabled {
		mode = UARTSleepNever
	}
	if err := c.Link.ConfigureUARTSleep(mode); err != nil {
		glog.V(1).Infof("power: configure uart sleep %s: %v", mode, err)
	}
}

// AttemptHandshake requests the co-processor to sleep for d and polls
// the handshake line for at most PollWindow.
func (c *Controller) AttemptHandshake(d time.Duration) bool {
	line := c.Board.HandshakeLine()
	line.ConfigureInput()
	if err := c.Link.RequestSleep(durationMillis(d)); err != nil {
		glog.V(1).Infof("power: request sleep: %v", err)
	}
	if err := c.Link.Flush(); err != nil {
		glog.V(1).Infof("power: flush: %v", err)
	}
	clock := c.Board.Clock()
	for n := 0; n < PollCount; n++ {
		clock.Delay(PollInterval)
		if line.Get() {
			return true
		}
	}
	glog.V(1).Infof("power: handshake for %v timed out", d)
	return false
}

// Sleep sleeps for d. The CPU only halts when the co-processor
// acknowledged the request, otherwise the time is spent in delays.
// There is no way to abort a sleep in progress.
func (c *Controller) Sleep(d time.Duration) (r Result) {
	defer func() {
		c.transit(Awake)
		r.Final = c.state
	}()
	c.transit(Idle)

	c.Board.HandshakeLine().ConfigureInput()
	if err := c.Link.ConfigureUARTSleep(UARTSleepNormal); err != nil {
		glog.V(1).Infof("power: configure uart sleep: %v", err)
	}

	clock := c.Board.Clock()
	if d < MinSleep {
		c.transit(SoftwareDelay)
		if d > 0 {
			clock.Delay(d)
		}
		return
	}

	start := clock.Millis()
	c.transit(Handshaking)
	r.Attempts++
	sleeping := c.AttemptHandshake(d)
	switch {
	case !sleeping && d > LongSleep:
		// The budget shrinks by the time each attempt really took,
		// transport round trips included.
		for !sleeping {
			spent := elapsed(clock, start)
			if spent > d {
				break
			}
			c.transit(HandshakeFailedRetry)
			c.transit(Handshaking)
			r.Attempts++
			sleeping = c.AttemptHandshake(d - spent)
		}
	case !sleeping && d > PollWindow:
		c.transit(SoftwareDelay)
		if spent := elapsed(clock, start); spent < d {
			clock.Delay(d - spent)
		}
	}
	if !sleeping {
		return
	}

	r.Slept = c.hardwareSleep()
	return
}

func (c *Controller) hardwareSleep() bool {
	c.transit(HardwareSleep)
	periph := c.Board.Peripherals()
	adc, comparator := periph.ADCEnabled(), periph.ComparatorEnabled()
	if adc {
		periph.SetADCEnabled(false)
	}
	if comparator {
		periph.SetComparatorEnabled(false)
	}

	line := c.Board.HandshakeLine()
	irqs := c.Board.Interrupts()
	cpu := c.Board.CPU()
	irqs.Attach(WakeLine, hal.TriggerLow, func() {})
	cpu.SetSleepMode(hal.SleepPowerDown)
	halted := cpu.SleepIf(line.Get)
	if !halted {
		glog.V(1).Info("power: handshake line dropped before halt")
	}
	irqs.Detach(WakeLine)

	if adc {
		periph.SetADCEnabled(true)
	}
	if comparator {
		periph.SetComparatorEnabled(true)
	}
	return halted
}

func elapsed(clock hal.Clock, since uint32) time.Duration {
	return time.Duration(clock.Millis()-since) * time.Millisecond
}

func durationMillis(d time.Duration) uint32 {
	ms := d / time.Millisecond
	if ms < 0 {
		return 0
	}
	if ms > 0xffffffff {
		return 0xffffffff
	}
	return uint32(ms)
}
