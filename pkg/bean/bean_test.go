package bean

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bean.go/pkg/coproc"
	"github.com/robotalks/bean.go/pkg/hal"
	"github.com/robotalks/bean.go/pkg/hal/sim"
	"github.com/robotalks/bean.go/pkg/link"
	"github.com/robotalks/bean.go/pkg/power"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("wait for %s timeout", what)
		}
		time.Sleep(time.Millisecond)
	}
}

type testEnv struct {
	*Bean
	pair  *coproc.Pair
	board *sim.Board
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
	return &testEnv{Bean: New(p.Serial, board), pair: p, board: board}
}

func (e *testEnv) state() coproc.State {
	return e.pair.Sim.State()
}

func TestMidiRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	e.pair.Sim.SetLoopback(true)
	require.True(t, e.MidiSend(0x90, 60, 100))
	require.True(t, e.MidiSend(0x80, 60, 0))
	require.Equal(t, 2, e.MidiPending())
	require.NotZero(t, e.MidiPacketSend())
	require.Zero(t, e.MidiPending())
	require.Zero(t, e.MidiPacketSend())

	var got [][3]byte
	waitFor(t, "midi events", func() bool {
		if ev, ok := e.MidiRead(); ok {
			got = append(got, [3]byte{ev.Status, ev.Data1, ev.Data2})
		}
		return len(got) == 2
	})
	require.Equal(t, [][3]byte{{0x90, 60, 100}, {0x80, 60, 0}}, got)
	require.Len(t, e.state().MidiOut, 1)
}

func TestSleep(t *testing.T) {
	e := newTestEnv(t)
	r := e.Sleep(300 * time.Millisecond)
	require.True(t, r.Slept)
	require.Equal(t, uint32(300), e.board.Millis())
	require.Equal(t, []uint32{300}, e.state().Sleeps)

	e.KeepAwake(true)
	require.Equal(t, power.UARTSleepNever, e.state().UARTSleep)

	e.EnableConfigSave(false)
	e.EnableWakeOnConnect(true)
	st := e.state()
	require.False(t, st.ConfigSave)
	require.True(t, st.WakeOnConnect)
}

func TestLed(t *testing.T) {
	e := newTestEnv(t)
	e.SetLed(10, 20, 30)
	e.SetLedBlue(40)
	require.Equal(t, link.LedSetting{Red: 10, Green: 20, Blue: 40}, e.Led())
	e.SetLedRed(1)
	e.SetLedGreen(2)
	require.Equal(t, byte(1), e.LedRed())
	require.Equal(t, byte(2), e.LedGreen())
	require.Equal(t, byte(40), e.LedBlue())
}

func TestBattery(t *testing.T) {
	e := newTestEnv(t)
	cases := []struct {
		level   byte
		voltage uint16
	}{
		{100, 352},
		{50, 274},
		{0, 195},
	}
	for _, c := range cases {
		e.pair.Sim.Update(func(st *coproc.State) { st.Battery = c.level })
		require.Equal(t, c.level, e.BatteryLevel())
		require.Equal(t, c.voltage, e.BatteryVoltage())
	}
	e.pair.Sim.Update(func(st *coproc.State) { st.Temperature = 31 })
	require.Equal(t, int8(31), e.Temperature())
}

func TestAccelerometer(t *testing.T) {
	e := newTestEnv(t)
	e.pair.Sim.Update(func(st *coproc.State) {
		st.Accel = link.Acceleration{X: -3, Y: 7, Z: 250, Sensitivity: 2}
	})
	require.Equal(t, int16(-3), e.AccelerationX())
	require.Equal(t, int16(7), e.AccelerationY())
	require.Equal(t, int16(250), e.AccelerationZ())

	e.SetAccelerationRange(Range8G)
	require.Equal(t, Range8G, e.AccelerationRange())
	e.SetAccelerometerPowerMode(PowerModeLowPower100ms)
	require.Equal(t, PowerModeLowPower100ms, e.AccelerometerPowerMode())

	regs, err := e.AccelRegisterRead(RegRange, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{Range8G}, regs)
	_, err = e.AccelRegisterRead(coproc.AccelRegisters, 1)
	require.Error(t, err)
}

func TestMotionEvents(t *testing.T) {
	e := newTestEnv(t)
	e.EnableMotionEvent(SingleTapEvent | DoubleTapEvent)
	require.Equal(t, SingleTapEvent|DoubleTapEvent, e.EnabledMotionEvents())
	st := e.state()
	require.Equal(t, byte(0x30), st.AccelRegs[RegIntEnable0])
	require.Equal(t, byte(0), st.AccelRegs[RegIntEnable1])
	require.Equal(t, PowerModeLowPower10ms, st.AccelRegs[RegPowerMode])
	require.Equal(t, byte(WakeSingleTap|WakeDoubleTap), st.AccelRegs[RegIntMapping1])
	require.True(t, st.WakeOnAccel)

	require.False(t, e.CheckMotionEvent(SingleTapEvent))

	e.pair.Sim.Update(func(st *coproc.State) {
		st.AccelRegs[RegIntStatus] = byte(SingleTapEvent | DoubleTapEvent)
	})
	require.True(t, e.CheckMotionEvent(SingleTapEvent))
	// the latch was reset, the double tap is remembered
	require.Zero(t, e.state().AccelRegs[RegIntStatus])
	require.True(t, e.CheckMotionEvent(DoubleTapEvent))
	require.False(t, e.CheckMotionEvent(DoubleTapEvent|SingleTapEvent))

	e.EnableMotionEvent(HighGEvent)
	st = e.state()
	require.Equal(t, byte(0x30), st.AccelRegs[RegIntEnable0])
	require.Equal(t, byte(0x07), st.AccelRegs[RegIntEnable1])

	e.DisableMotionEvents()
	require.Zero(t, e.EnabledMotionEvents())
	st = e.state()
	require.Zero(t, st.AccelRegs[RegIntEnable0])
	require.Zero(t, st.AccelRegs[RegIntEnable1])
	require.Equal(t, PowerModeLowPower1s, st.AccelRegs[RegPowerMode])
}

func TestAdvertising(t *testing.T) {
	e := newTestEnv(t)
	require.True(t, e.AdvertisingState())
	require.False(t, e.ConnectionState())

	e.SetAdvertisingInterval(250 * time.Millisecond)
	e.EnableAdvertisingFor(false, 2*time.Second)
	st := e.state()
	require.Equal(t, uint16(250), st.AdvInterval)
	require.False(t, st.Advertising)
	require.Equal(t, uint32(2000), st.AdvTimer)
	require.False(t, e.AdvertisingState())

	e.EnableAdvertising(true)
	require.True(t, e.AdvertisingState())
	require.Zero(t, e.state().AdvTimer)

	e.SetBeaconParameters(0xbeef, 1, 2)
	e.SetBeaconEnable(true)
	st = e.state()
	require.Equal(t, link.BeaconParams{UUID: 0xbeef, Major: 1, Minor: 2}, st.Beacon)
	require.True(t, st.BeaconEnabled)

	e.SetCustomAdvertisement([]byte{2, 1, 6})
	require.Equal(t, []byte{2, 1, 6}, e.state().CustomAdv)
}

func TestObserver(t *testing.T) {
	e := newTestEnv(t)
	_, ok := e.ObserverMessage(10 * time.Millisecond)
	require.False(t, ok)

	e.StartObserver()
	adv := link.ObserverAdvertisement{EventType: 3, Address: [6]byte{1, 2, 3, 4, 5, 6}, Data: []byte{9}}
	require.NoError(t, e.pair.Sim.InjectAdvertisement(adv))
	got, ok := e.ObserverMessage(time.Second)
	require.True(t, ok)
	require.Equal(t, adv, got)
	e.StopObserver()
	require.False(t, e.state().Observing)
}

func TestServices(t *testing.T) {
	e := newTestEnv(t)
	require.Equal(t, link.ServiceStandard, e.Services())
	e.EnableHID()
	e.EnableMidi()
	require.Equal(t, link.ServiceStandard|link.ServiceHID|link.ServiceMIDI, e.Services())
	e.EnableANCS()
	e.EnableCustom()
	e.EnableIBeacon()
	svcs := e.Services()
	require.True(t, svcs.Has(link.ServiceANCS|link.ServiceCustom|link.ServiceIBeacon))
	e.ResetServices()
	require.Equal(t, link.ServiceStandard, e.Services())
	e.SetServices(link.ServiceMIDI)
	require.Equal(t, link.ServiceMIDI, e.state().Services)
}

func TestScratch(t *testing.T) {
	e := newTestEnv(t)
	require.False(t, e.SetScratchData(1, make([]byte, link.MaxScratchSize+1)))
	require.True(t, e.SetScratchData(1, []byte("scratch")))
	require.Equal(t, []byte("scratch"), e.ReadScratchData(1))

	require.True(t, e.SetScratchNumber(2, 0xfffffffe))
	require.Equal(t, int32(-2), e.ReadScratchNumber(2))
	require.True(t, e.SetScratchData(3, []byte{7}))
	require.Equal(t, int32(7), e.ReadScratchNumber(3))
	require.Zero(t, e.ReadScratchNumber(4))
	require.Empty(t, e.ReadScratchData(9))
}

func TestName(t *testing.T) {
	e := newTestEnv(t)
	require.Equal(t, "Bean", e.BeanName())
	e.SetBeanName("Kitchen")
	require.Equal(t, "Kitchen", e.BeanName())
	long := strings.Repeat("x", 30)
	e.SetBeanName(long)
	require.Equal(t, long[:link.MaxLocalNameSize], e.BeanName())
}

func TestDisconnect(t *testing.T) {
	e := newTestEnv(t)
	e.pair.Sim.Update(func(st *coproc.State) { st.Connected = true })
	require.True(t, e.ConnectionState())
	e.Disconnect()
	require.False(t, e.ConnectionState())
}

func TestAncs(t *testing.T) {
	e := newTestEnv(t)
	e.pair.Sim.Update(func(st *coproc.State) {
		st.Ancs = [][]byte{
			{0, 1, 4, 1, 0x11, 0, 0, 0},
			{1, 0, 6, 2, 0x22, 0x01, 0, 0},
		}
		st.AncsDetails[0x11] = []byte("hello world")
	})
	require.Equal(t, 2, e.AncsAvailable())
	msgs := e.ParseAncs(4)
	require.Equal(t, []AncsSourceMessage{
		{EventID: 0, EventFlags: 1, CategoryID: 4, CategoryCount: 1, NotificationUID: 0x11},
		{EventID: 1, EventFlags: 0, CategoryID: 6, CategoryCount: 2, NotificationUID: 0x122},
	}, msgs)
	require.Zero(t, e.AncsAvailable())
	require.Empty(t, e.ParseAncs(4))

	e.RequestAncsNotiDetails(NotiAttrTitle, 100, 0x11)
	require.Equal(t, []byte("hello world"), e.ReadAncsNotiDetails(64))
	require.Empty(t, e.ReadAncsNotiDetails(64))

	e.PerformAncsAction(0x122, 1)
	require.Equal(t, byte(1), e.state().AncsActions[0x122])
}

type fakeHID struct {
	events []string
	fail   byte
}

func (h *fakeHID) key(op string, k byte) int {
	h.events = append(h.events, op+":"+string(rune(k)))
	if k == h.fail {
		return 1
	}
	return 0
}

func (h *fakeHID) Press(k byte) int   { return h.key("press", k) }
func (h *fakeHID) Release(k byte) int { return h.key("release", k) }
func (h *fakeHID) Write(k byte) int   { return h.key("write", k) }

func (h *fakeHID) MoveMouse(x, y, wheel int8) {
	h.events = append(h.events, "move")
}

func (h *fakeHID) ClickMouse(buttons byte) {
	h.events = append(h.events, "click")
}

func (h *fakeHID) SendConsumerControl(cmd byte) {
	h.events = append(h.events, "consumer")
}

func TestHID(t *testing.T) {
	b := &Bean{}
	require.Equal(t, hidStatusNoBackend, b.HIDWrite("a"))
	require.Equal(t, hidStatusNoBackend, b.HIDPressKey('a'))
	b.HIDMoveMouse(1, 1, 0)

	h := &fakeHID{fail: 'x'}
	b.HID = h
	require.Zero(t, b.HIDPressKey('a'))
	require.Zero(t, b.HIDReleaseKey('a'))
	require.Zero(t, b.HIDWriteKey('b'))
	require.NotZero(t, b.HIDWrite("xyz"))
	b.HIDMoveMouse(1, -1, 0)
	b.HIDClickMouse(1)
	b.HIDSendConsumerControl(0xcd)
	require.Equal(t, []string{
		"press:a", "release:a", "write:b",
		"write:x", "write:y", "write:z",
		"move", "click", "consumer",
	}, h.events)
}

func TestChangeInterrupt(t *testing.T) {
	e := newTestEnv(t)
	count := 0
	e.AttachChangeInterrupt(1, func() { count++ })
	e.AttachChangeInterrupt(9, func() { count += 100 })
	e.board.TogglePin(hal.PinChangeGroup0, 1<<1)
	require.Equal(t, 1, count)

	e.DetachChangeInterrupt(1)
	e.board.TogglePin(hal.PinChangeGroup0, 1<<1)
	require.Equal(t, 1, count)
	mask, enabled := e.board.PinChangeState(hal.PinChangeGroup0)
	require.Zero(t, mask)
	require.False(t, enabled)
}
