// Package controller runs a Bean as an L1 controller on the control loop.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bean.go/pkg/bean"
	fx "github.com/robotalks/bean.go/pkg/framework"
	"github.com/robotalks/bean.go/pkg/l1"
	"github.com/robotalks/bean.go/pkg/l1/msgs"
	"github.com/robotalks/bean.go/pkg/power"
)

// Defaults
const (
	DefaultFlushInterval  = 10 * time.Millisecond
	DefaultPollInterval   = 5 * time.Millisecond
	DefaultStatusInterval = time.Second
)

var (
	// ErrMidiQueueFull is replied when a MidiSend is dropped.
	ErrMidiQueueFull = errors.New("midi queue full")
)

// Controller forwards L1 commands to a Bean and publishes its MIDI
// input and status as events. All Bean calls happen on the loop.
type Controller struct {
	Bean      *bean.Bean
	Registrar l1.Registrar

	FlushInterval  time.Duration
	PollInterval   time.Duration
	StatusInterval time.Duration

	lastFlush  time.Time
	lastPoll   time.Time
	lastStatus time.Time
	status     msgs.BeanStatus
	statusSent bool
	dirty      bool

	keepAwake  bool
	powerState power.State
}

// New creates a Controller.
func New(b *bean.Bean, reg l1.Registrar) *Controller {
	c := &Controller{
		Bean:           b,
		Registrar:      reg,
		FlushInterval:  DefaultFlushInterval,
		PollInterval:   DefaultPollInterval,
		StatusInterval: DefaultStatusInterval,
		powerState:     power.Awake,
	}
	b.Power().Observer = power.ObserverFunc(c.powerChanged)
	return c
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvSense, fx.ControlFunc(c.pollMidi))
	loop.AddController(fx.PrLvControl, fx.ControlFunc(c.processCommands))
	loop.AddController(fx.PrLvOutput, fx.ControlFunc(c.flushMidi))
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(c.publishStatus))
}

func (c *Controller) powerChanged(s power.State) {
	c.powerState = s
	c.dirty = true
}

func due(now, last time.Time, interval time.Duration) bool {
	return last.IsZero() || now.Sub(last) >= interval
}

func (c *Controller) sendEvent(ctx context.Context, msg fx.Message) {
	if err := c.Registrar.SendEvent(ctx, msg); err != nil {
		glog.V(1).Infof("controller: send event: %v", err)
	}
}

func (c *Controller) pollMidi(cc fx.ControlContext) error {
	if !due(cc.Time(), c.lastPoll, c.PollInterval) {
		return nil
	}
	c.lastPoll = cc.Time()
	for {
		ev, ok := c.Bean.MidiRead()
		if !ok {
			return nil
		}
		msg := &msgs.MidiEvent{}
		msg.Timestamp = ev.Timestamp
		msg.Status, msg.Data1, msg.Data2 = uint32(ev.Status), uint32(ev.Data1), uint32(ev.Data2)
		glog.V(4).Infof("controller: midi in %s", ev)
		c.sendEvent(cc.Context(), msg)
	}
}

func (c *Controller) flushMidi(cc fx.ControlContext) error {
	if c.Bean.MidiPending() == 0 || !due(cc.Time(), c.lastFlush, c.FlushInterval) {
		return nil
	}
	c.lastFlush = cc.Time()
	c.Bean.MidiPacketSend()
	c.dirty = true
	return nil
}

func (c *Controller) processCommands(cc fx.ControlContext) error {
	fx.TakeMessages(cc, func(cmdMsg *l1.CommandMsg) bool {
		reply, handled := c.handleCommand(cmdMsg.Command.Msg())
		if !handled {
			return false
		}
		if err := cmdMsg.Command.Done(reply); err != nil {
			glog.V(1).Infof("controller: reply: %v", err)
		}
		return true
	})
	return nil
}

// checkMidi is applied to MidiSend commands received from L1 clients
// only. Bean.MidiSend itself forwards any three bytes unchecked, remote
// clients must send a status byte and two 7-bit data bytes.
func checkMidi(m *msgs.MidiSend) error {
	if m.Status < 0x80 || m.Status > 0xff {
		return fmt.Errorf("invalid midi status 0x%x", m.Status)
	}
	if m.Data1 > 0x7f || m.Data2 > 0x7f {
		return fmt.Errorf("invalid midi data %d %d", m.Data1, m.Data2)
	}
	return nil
}

func checkLed(m *msgs.LedSet) error {
	if m.Red > 0xff || m.Green > 0xff || m.Blue > 0xff {
		return fmt.Errorf("invalid led intensity %d %d %d", m.Red, m.Green, m.Blue)
	}
	return nil
}

func (c *Controller) handleCommand(msg fx.Message) (fx.Message, bool) {
	switch m := msg.(type) {
	case *msgs.BeanStatusQuery:
		reply := &msgs.BeanStatusReply{}
		status := c.currentStatus()
		reply.Status = &status.BeanStatus
		return reply, true
	case *msgs.MidiSend:
		if err := checkMidi(m); err != nil {
			return msgs.NewCommandErr(err), true
		}
		if !c.Bean.MidiSend(byte(m.Status), byte(m.Data1), byte(m.Data2)) {
			return msgs.NewCommandErr(ErrMidiQueueFull), true
		}
		return msgs.NewCommandOK(), true
	case *msgs.SleepRequest:
		r := c.Bean.Sleep(time.Duration(m.DurationMs) * time.Millisecond)
		reply := &msgs.SleepResult{}
		reply.Slept, reply.Attempts = r.Slept, uint32(r.Attempts)
		return reply, true
	case *msgs.KeepAwake:
		c.Bean.KeepAwake(m.Enable)
		c.keepAwake = m.Enable
		c.dirty = true
		return msgs.NewCommandOK(), true
	case *msgs.LedSet:
		if err := checkLed(m); err != nil {
			return msgs.NewCommandErr(err), true
		}
		c.Bean.SetLed(byte(m.Red), byte(m.Green), byte(m.Blue))
		return msgs.NewCommandOK(), true
	case *msgs.LedQuery:
		led := c.Bean.Led()
		reply := &msgs.LedState{}
		reply.Red, reply.Green, reply.Blue = uint32(led.Red), uint32(led.Green), uint32(led.Blue)
		return reply, true
	case *msgs.BatteryQuery:
		reply := &msgs.BatteryState{}
		reply.Level = uint32(c.Bean.BatteryLevel())
		reply.Voltage = uint32(c.Bean.BatteryVoltage())
		reply.Temperature = int32(c.Bean.Temperature())
		return reply, true
	case *msgs.AccelQuery:
		a := c.Bean.Acceleration()
		reply := &msgs.Acceleration{}
		reply.X, reply.Y, reply.Z = int32(a.X), int32(a.Y), int32(a.Z)
		reply.Sensitivity = uint32(a.Sensitivity)
		return reply, true
	}
	return nil, false
}

func (c *Controller) currentStatus() *msgs.BeanStatus {
	status := &msgs.BeanStatus{}
	status.Name = c.Bean.BeanName()
	status.PowerState = c.powerState.String()
	status.KeepAwake = c.keepAwake
	status.Connected = c.Bean.ConnectionState()
	status.Advertising = c.Bean.AdvertisingState()
	status.MidiPending = uint32(c.Bean.MidiPending())
	status.Services = uint32(c.Bean.Services())
	return status
}

// publishStatus sends BeanStatus when it changed. The co-processor is
// only queried when something happened locally or StatusInterval
// elapsed.
func (c *Controller) publishStatus(cc fx.ControlContext) error {
	if !c.dirty && c.statusSent && !due(cc.Time(), c.lastStatus, c.StatusInterval) {
		return nil
	}
	c.lastStatus, c.dirty = cc.Time(), false
	status := c.currentStatus()
	if c.statusSent && status.String() == c.status.String() {
		return nil
	}
	c.status, c.statusSent = *status, true
	c.sendEvent(cc.Context(), status)
	return nil
}
