package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testMsg struct {
	val int
}

func (m *testMsg) NewMessage() Message { return &testMsg{} }

func TestLoopPriorities(t *testing.T) {
	var order []Priority
	l := NewLoop()
	for _, lv := range []Priority{PrLvOutput, PrLvSense, PrLvControl} {
		lv := lv
		l.AddController(lv, ControlFunc(func(cc ControlContext) error {
			require.Equal(t, lv, cc.PriorityLevel())
			order = append(order, lv)
			return nil
		}))
	}
	l.RunIteration(context.Background())
	require.Equal(t, []Priority{PrLvSense, PrLvControl, PrLvOutput}, order)
	require.Equal(t, uint64(1), l.Iterations())
}

func TestLoopMessages(t *testing.T) {
	l := NewLoop()
	var taken, seen []int
	l.AddController(PrLvSense, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			m := mc.CurrentMessage().(*testMsg)
			if m.val%2 == 0 {
				mc.MessageTaken()
				taken = append(taken, m.val)
			}
		}))
		return nil
	}))
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			seen = append(seen, mc.CurrentMessage().(*testMsg).val)
			if len(seen) == 1 {
				mc.StopProcessing()
			}
		}))
		return nil
	}))
	for i := 1; i <= 4; i++ {
		l.PostMessage(&testMsg{val: i})
	}
	l.RunIteration(context.Background())
	require.Equal(t, []int{2, 4}, taken)
	require.Equal(t, []int{1}, seen)

	// left-over messages are dropped at the end of an iteration
	taken, seen = nil, nil
	l.RunIteration(context.Background())
	require.Empty(t, taken)
	require.Empty(t, seen)
}

func TestLoopHooks(t *testing.T) {
	l := NewLoop()
	var calls []string
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		calls = append(calls, "ctl")
		cc.PostRun(ControlFunc(func(ControlContext) error {
			calls = append(calls, "post")
			return nil
		}))
		return errors.New("logged only")
	}))
	l.PreRunAt(PrLvControl, ControlFunc(func(ControlContext) error {
		calls = append(calls, "pre")
		return nil
	}))
	l.RunIteration(context.Background())
	l.RunIteration(context.Background())
	require.Equal(t, []string{"pre", "ctl", "post", "ctl", "post"}, calls)
}

func TestLoopTime(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewLoop()
	l.Now = func() time.Time { return now }
	var got time.Time
	l.AddController(PrLvIdle, ControlFunc(func(cc ControlContext) error {
		got = cc.Time()
		return nil
	}))
	l.RunIteration(context.Background())
	require.Equal(t, now, got)
}

type countRunner struct {
	started chan LoopControl
}

func (r *countRunner) Run(ctx context.Context) error {
	r.started <- LoopCtlFrom(ctx)
	<-ctx.Done()
	return ctx.Err()
}

func TestLoopRun(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Hour
	runner := &countRunner{started: make(chan LoopControl, 1)}
	got := make(chan int, 1)
	l.AddRunnable(runner)
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			mc.MessageTaken()
			got <- mc.CurrentMessage().(*testMsg).val
		}))
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	loopCtl := <-runner.started
	loopCtl.PostMessage(&testMsg{val: 7})
	loopCtl.TriggerNext()
	select {
	case val := <-got:
		require.Equal(t, 7, val)
	case <-time.After(time.Second):
		t.Fatal("message not processed")
	}
	cancel()
	require.Equal(t, context.Canceled, <-done)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(errors.New("a"), nil, errors.New("b"))
	require.EqualError(t, errs.Aggregate(), "Multiple errors:\na\nb")
}

type failRunner struct{}

func (failRunner) Run(ctx context.Context) error { return errors.New("broken") }

func TestRunnerErrors(t *testing.T) {
	err := NewRunner().Go(NamedRun("serial", failRunner{})).Wait()
	require.EqualError(t, err, "Multiple errors:\nserial: broken")
	agg := err.(*AggregatedError)
	var runnerErr *RunnerError
	require.True(t, errors.As(agg.Errors[0], &runnerErr))
	require.Equal(t, "serial", runnerErr.Name)
	require.True(t, errors.As(err, &runnerErr))
}

type blockRunner struct{}

func (blockRunner) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type doneRunner struct{}

func (doneRunner) Run(ctx context.Context) error { return nil }

func TestEssentialRunnerStopsOthers(t *testing.T) {
	r := NewRunner().Go(
		NamedRun("loop", blockRunner{}),
		Essential(NamedRun("link", failRunner{})),
	)
	<-r.Stopped()
	err := r.Wait()
	require.EqualError(t, err, "Multiple errors:\nlink: broken")
	require.EqualError(t, r.Err(), "link: broken")
	tasks := r.Tasks()
	require.Len(t, tasks, 2)
	require.Equal(t, "loop", tasks[0].Name)
	require.Equal(t, TaskStopped, tasks[0].State)
	require.False(t, tasks[0].Essential)
	require.Equal(t, "link", tasks[1].Name)
	require.Equal(t, TaskFailed, tasks[1].State)
	require.True(t, tasks[1].Essential)
}

func TestEssentialRunnerExited(t *testing.T) {
	r := NewRunner().Go(blockRunner{}, Essential(doneRunner{}))
	require.NoError(t, r.Wait())
	var runnerErr *RunnerError
	require.True(t, errors.As(r.Err(), &runnerErr))
	require.Equal(t, "1", runnerErr.Name)
	require.Equal(t, ErrExited, runnerErr.Err)
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner().Go(NamedRun("session", blockRunner{}))
	require.Equal(t, TaskRunning, r.Tasks()[0].State)
	r.Stop(nil)
	require.NoError(t, r.Wait())
	require.NoError(t, r.Err())
	require.Equal(t, TaskStopped, r.Tasks()[0].State)
	require.Equal(t, "stopped", TaskStopped.String())
}

func TestLoopStopsWithEssentialRunner(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Hour
	l.AddRunnable(NamedRun("idle", blockRunner{}), Essential(NamedRun("link", failRunner{})))
	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()
	select {
	case err := <-done:
		require.EqualError(t, err, "link: broken")
	case <-time.After(time.Second):
		t.Fatal("loop not stopped")
	}
	tasks := l.Tasks()
	require.Len(t, tasks, 2)
	require.Equal(t, TaskStopped, tasks[0].State)
	require.Equal(t, TaskFailed, tasks[1].State)
}

type otherMsg struct{}

func (m *otherMsg) NewMessage() Message { return &otherMsg{} }

func TestTakeMessages(t *testing.T) {
	l := NewLoop()
	var taken []int
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		TakeMessages(cc, func(m *testMsg) bool {
			if m.val > 1 {
				taken = append(taken, m.val)
				return true
			}
			return false
		})
		return nil
	}))
	var left int
	l.AddController(PrLvIdle, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(MessageProcessingContext) { left++ }))
		return nil
	}))
	l.PostMessage(&testMsg{val: 1})
	l.PostMessage(&otherMsg{})
	l.PostMessage(&testMsg{val: 2})
	l.RunIteration(context.Background())
	require.Equal(t, []int{2}, taken)
	require.Equal(t, 2, left)
}

func TestPriorityString(t *testing.T) {
	require.Equal(t, "sense", PrLvSense.String())
	require.Equal(t, "post-proc", PrLvPostProc.String())
	require.Equal(t, "priority-3", Priority(3).String())
}
