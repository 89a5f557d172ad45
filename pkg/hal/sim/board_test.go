package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bean.go/pkg/hal"
)

func TestVirtualClock(t *testing.T) {
	b := NewBoard(true)
	var fired []uint32
	b.After(20*time.Millisecond, func() { fired = append(fired, b.Millis()) })
	b.After(5*time.Millisecond, func() { fired = append(fired, b.Millis()) })
	b.Delay(10 * time.Millisecond)
	require.Equal(t, []uint32{5}, fired)
	require.Equal(t, uint32(10), b.Millis())
	b.Delay(10 * time.Millisecond)
	require.Equal(t, []uint32{5, 20}, fired)
	b.Advance(time.Second)
	require.Equal(t, uint32(1020), b.Millis())
	stats := b.Stats()
	require.Equal(t, 2, stats.Delays)
	require.Equal(t, 20*time.Millisecond, stats.Delayed)
}

func TestWakeLineTriggers(t *testing.T) {
	testCases := []struct {
		trigger hal.Trigger
		levels  []bool
		fires   int
	}{
		{hal.TriggerLow, []bool{true, false, false}, 2},
		{hal.TriggerChange, []bool{true, false, false, true}, 2},
		{hal.TriggerRising, []bool{true, false, true}, 1},
		{hal.TriggerFalling, []bool{true, false, true, false}, 2},
	}
	for _, tc := range testCases {
		b := NewBoard(true)
		b.SetHandshake(true)
		fires := 0
		b.Attach(WakeLine, tc.trigger, func() { fires++ })
		for _, level := range tc.levels {
			b.SetHandshake(level)
		}
		require.Equalf(t, tc.fires, fires, "trigger %d", tc.trigger)
		b.Detach(WakeLine)
		require.False(t, b.Attached(WakeLine))
	}
}

func TestAttachLowFiresWhenLow(t *testing.T) {
	b := NewBoard(true)
	fires := 0
	b.Attach(WakeLine, hal.TriggerLow, func() { fires++ })
	require.Equal(t, 1, fires)
}

func TestSleepIf(t *testing.T) {
	b := NewBoard(true)
	require.False(t, b.SleepIf(func() bool { return false }))
	require.Zero(t, b.Stats().Halts)

	b.SetHandshake(true)
	b.Attach(WakeLine, hal.TriggerLow, func() {})
	b.After(100*time.Millisecond, func() { b.SetHandshake(false) })
	require.True(t, b.SleepIf(b.HandshakeLine().Get))
	stats := b.Stats()
	require.Equal(t, 1, stats.Halts)
	require.Equal(t, 1, stats.Wakes)
	require.Equal(t, uint32(100), b.Millis())
}

func TestSleepIfRealTime(t *testing.T) {
	b := NewBoard(false)
	b.SetHandshake(true)
	b.Attach(WakeLine, hal.TriggerLow, func() {})
	b.After(50*time.Millisecond, func() { b.SetHandshake(false) })
	done := make(chan bool, 1)
	go func() { done <- b.SleepIf(b.HandshakeLine().Get) }()
	select {
	case halted := <-done:
		require.True(t, halted)
	case <-time.After(5 * time.Second):
		t.Fatal("board never woke up")
	}
}

func TestPeripherals(t *testing.T) {
	b := NewBoard(true)
	require.True(t, b.ADCEnabled())
	require.True(t, b.ComparatorEnabled())
	b.SetADCEnabled(false)
	b.SetComparatorEnabled(false)
	require.False(t, b.ADCEnabled())
	require.False(t, b.ComparatorEnabled())
}
