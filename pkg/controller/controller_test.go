package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bean.go/pkg/bean"
	"github.com/robotalks/bean.go/pkg/coproc"
	fx "github.com/robotalks/bean.go/pkg/framework"
	"github.com/robotalks/bean.go/pkg/hal/sim"
	"github.com/robotalks/bean.go/pkg/l1"
	"github.com/robotalks/bean.go/pkg/l1/msgs"
	"github.com/robotalks/bean.go/pkg/power"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("wait for %s timeout", what)
		}
		time.Sleep(time.Millisecond)
	}
}

type fakeRegistrar struct {
	lock   sync.Mutex
	events []fx.Message
}

func (r *fakeRegistrar) SendEvent(ctx context.Context, msg fx.Message) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, msg)
	return nil
}

func (r *fakeRegistrar) take() []fx.Message {
	r.lock.Lock()
	defer r.lock.Unlock()
	events := r.events
	r.events = nil
	return events
}

type fakeCommand struct {
	msg   fx.Message
	reply fx.Message
}

func (c *fakeCommand) Msg() fx.Message { return c.msg }

func (c *fakeCommand) Done(reply fx.Message) error {
	c.reply = reply
	return nil
}

type testEnv struct {
	*Controller
	pair *coproc.Pair
	loop *fx.Loop
	reg  *fakeRegistrar
	now  time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	p := coproc.NewPair()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	waitFor(t, "sync", p.Ready)
	board := sim.NewBoard(true)
	p.Sim.Handshake, p.Sim.Scheduler = board, board

	e := &testEnv{pair: p, loop: fx.NewLoop(), reg: &fakeRegistrar{}, now: time.Unix(1000, 0)}
	e.loop.Now = func() time.Time { return e.now }
	e.Controller = New(bean.New(p.Serial, board), e.reg)
	e.loop.Add(e.Controller)
	return e
}

func (e *testEnv) do(msg fx.Message) fx.Message {
	cmd := &fakeCommand{msg: msg}
	e.loop.PostMessage(&l1.CommandMsg{Command: cmd})
	e.loop.RunIteration(context.Background())
	return cmd.reply
}

func (e *testEnv) tick(d time.Duration) {
	e.now = e.now.Add(d)
	e.loop.RunIteration(context.Background())
}

func TestStatusEvents(t *testing.T) {
	e := newTestEnv(t)
	e.tick(0)
	events := e.reg.take()
	require.Len(t, events, 1)
	status := events[0].(*msgs.BeanStatus)
	require.Equal(t, "Bean", status.Name)
	require.Equal(t, "awake", status.PowerState)
	require.False(t, status.KeepAwake)

	// unchanged status isn't published again
	e.tick(2 * DefaultStatusInterval)
	require.Empty(t, e.reg.take())

	keepAwake := &msgs.KeepAwake{}
	keepAwake.Enable = true
	require.IsType(t, &msgs.CommandOK{}, e.do(keepAwake))
	events = e.reg.take()
	require.Len(t, events, 1)
	require.True(t, events[0].(*msgs.BeanStatus).KeepAwake)
	require.Equal(t, power.UARTSleepNever, e.pair.Sim.State().UARTSleep)

	reply := e.do(&msgs.BeanStatusQuery{}).(*msgs.BeanStatusReply)
	require.Equal(t, "Bean", reply.Status.Name)
	require.True(t, reply.Status.KeepAwake)
}

func TestMidiForwarding(t *testing.T) {
	e := newTestEnv(t)
	e.pair.Sim.SetLoopback(true)
	e.tick(0)
	e.reg.take()

	send := &msgs.MidiSend{}
	send.Status, send.Data1, send.Data2 = 0x90, 60, 100
	require.IsType(t, &msgs.CommandOK{}, e.do(send))

	var got []*msgs.MidiEvent
	waitFor(t, "midi event", func() bool {
		e.tick(DefaultPollInterval)
		for _, ev := range e.reg.take() {
			if midiEv, ok := ev.(*msgs.MidiEvent); ok {
				got = append(got, midiEv)
			}
		}
		return len(got) > 0
	})
	require.Len(t, got, 1)
	require.Equal(t, []uint32{0x90, 60, 100}, []uint32{got[0].Status, got[0].Data1, got[0].Data2})
	require.Zero(t, e.Bean.MidiPending())

	send.Data1 = 0x80
	reply := e.do(send)
	require.IsType(t, &msgs.CommandErr{}, reply)
	send.Status, send.Data1 = 0x10, 60
	require.IsType(t, &msgs.CommandErr{}, e.do(send))
	require.Zero(t, e.Bean.MidiPending())

	// local callers are not checked.
	require.True(t, e.Bean.MidiSend(0x10, 0x80, 0xff))
	require.Equal(t, 1, e.Bean.MidiPending())
}

func TestDeviceCommands(t *testing.T) {
	e := newTestEnv(t)

	set := &msgs.LedSet{}
	set.Red, set.Green, set.Blue = 10, 20, 30
	require.IsType(t, &msgs.CommandOK{}, e.do(set))
	led := e.do(&msgs.LedQuery{}).(*msgs.LedState)
	require.Equal(t, []uint32{10, 20, 30}, []uint32{led.Red, led.Green, led.Blue})
	set.Blue = 256
	require.IsType(t, &msgs.CommandErr{}, e.do(set))

	battery := e.do(&msgs.BatteryQuery{}).(*msgs.BatteryState)
	require.Equal(t, uint32(e.pair.Sim.State().Battery), battery.Level)
	require.NotZero(t, battery.Voltage)

	require.IsType(t, &msgs.Acceleration{}, e.do(&msgs.AccelQuery{}))

	sleep := &msgs.SleepRequest{}
	sleep.DurationMs = 300
	result := e.do(sleep).(*msgs.SleepResult)
	require.True(t, result.Slept)
	require.Equal(t, uint32(1), result.Attempts)
}

func TestUnhandledCommands(t *testing.T) {
	e := newTestEnv(t)
	cmd := &fakeCommand{msg: &msgs.CommandOK{}}
	var left []fx.Message
	e.loop.AddController(fx.PrLvIdle, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
			left = append(left, mc.CurrentMessage())
		}))
		return nil
	}))
	e.loop.PostMessage(&l1.CommandMsg{Command: cmd})
	e.loop.RunIteration(context.Background())
	require.Nil(t, cmd.reply)
	require.Len(t, left, 1)
}
