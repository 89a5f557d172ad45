package framework

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

// ErrExited is reported when an essential Runnable returns without an
// error while it was still expected to run.
var ErrExited = errors.New("exited unexpectedly")

// TaskState is the lifecycle state of a Runnable started by a Runner.
type TaskState int

// Task states
const (
	TaskRunning TaskState = iota
	TaskStopped
	TaskFailed
)

// String implements fmt.Stringer.
func (s TaskState) String() string {
	switch s {
	case TaskRunning:
		return "running"
	case TaskStopped:
		return "stopped"
	case TaskFailed:
		return "failed"
	}
	return "unknown"
}

// Task is a snapshot of a Runnable started by a Runner.
type Task struct {
	Name      string
	Essential bool
	State     TaskState
	Err       error
}

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

type essentialRunnable struct {
	Runnable
}

func (r *essentialRunnable) Name() string {
	if named, ok := r.Runnable.(Named); ok {
		return named.Name()
	}
	return ""
}

// Essential marks a Runnable the others depend on, like the serial
// link to the co-processor. When it stops, the Runner stops the rest.
// Wrap the result of NamedRun, not the other way around.
func Essential(runnable Runnable) Runnable {
	return &essentialRunnable{Runnable: runnable}
}

// Runner runs multiple Runnables and collect errors.
type Runner struct {
	Context context.Context
	Runners []Runnable

	cancel   context.CancelFunc
	errCh    chan error
	exitCh   chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	stopErr  error

	lock  sync.Mutex
	tasks []*Task
}

// NewRunner creates a runner with a default background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner with a specified context.
func NewRunnerWith(ctx context.Context) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	return &Runner{
		Context: ctx,
		cancel:  cancel,
		errCh:   make(chan error, 1),
		exitCh:  make(chan struct{}),
		stopCh:  make(chan struct{}),
	}
}

// HandleSignals handles CtrlC and SIGTERM from the system.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		r.Stop(nil)
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.exitCh)
	}()
	return r
}

// Stop cancels all Runnables. err is reported by Err, only the first
// call has an effect.
func (r *Runner) Stop(err error) {
	r.stopOnce.Do(func() {
		r.stopErr = err
		close(r.stopCh)
		r.cancel()
	})
}

// Stopped is closed once Stop is called or an essential Runnable ended.
func (r *Runner) Stopped() <-chan struct{} {
	return r.stopCh
}

// Err returns the reason of the stop, nil for a requested stop.
func (r *Runner) Err() error {
	select {
	case <-r.stopCh:
		return r.stopErr
	default:
		return nil
	}
}

// Tasks returns the state of all started Runnables.
func (r *Runner) Tasks() []Task {
	r.lock.Lock()
	defer r.lock.Unlock()
	tasks := make([]Task, len(r.tasks))
	for n, t := range r.tasks {
		tasks[n] = *t
	}
	return tasks
}

// Go spawns a Runnable with default context.
func (r *Runner) Go(runners ...Runnable) *Runner {
	return r.GoWith(r.Context, runners...)
}

// GoWith spawns a Runnable with a specified context. The Runnables are
// also canceled by Stop.
func (r *Runner) GoWith(ctx context.Context, runners ...Runnable) *Runner {
	for _, runner := range runners {
		task := &Task{State: TaskRunning}
		if named, ok := runner.(Named); ok {
			task.Name = named.Name()
		}
		if task.Name == "" {
			task.Name = strconv.Itoa(len(r.Runners))
		}
		_, task.Essential = runner.(*essentialRunnable)
		r.lock.Lock()
		r.Runners = append(r.Runners, runner)
		r.tasks = append(r.tasks, task)
		r.lock.Unlock()

		taskCtx, cancel := context.WithCancel(ctx)
		go func() {
			select {
			case <-r.stopCh:
				cancel()
			case <-taskCtx.Done():
			}
		}()
		glog.V(4).Infof("start Runner[%s]", task.Name)
		go func(runner Runnable, task *Task) {
			defer cancel()
			err := runner.Run(taskCtx)
			glog.V(4).Infof("Runner[%s] stopped: %v", task.Name, err)
			canceled := taskCtx.Err() != nil
			if err != nil && err != context.Canceled {
				err = &RunnerError{Name: task.Name, Err: err}
			}
			r.finish(task, err)
			if task.Essential {
				switch {
				case err != nil && err != context.Canceled:
					glog.Errorf("essential %v", err)
					r.Stop(err)
				case !canceled:
					glog.Errorf("essential Runner[%s] %v", task.Name, ErrExited)
					r.Stop(&RunnerError{Name: task.Name, Err: ErrExited})
				default:
					r.Stop(nil)
				}
			}
			r.errCh <- err
		}(runner, task)
	}
	return r
}

func (r *Runner) finish(task *Task, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	task.Err = err
	if err != nil && err != context.Canceled {
		task.State = TaskFailed
	} else {
		task.State = TaskStopped
	}
}

// Wait waits until all Runnables stops and aggregate errors.
func (r *Runner) Wait() error {
	r.lock.Lock()
	count := len(r.Runners)
	r.lock.Unlock()
	var errs AggregatedError
	for n := 0; n < count; n++ {
		select {
		case <-r.exitCh:
			return errors.New("forced exit")
		case err := <-r.errCh:
			if err != context.Canceled {
				errs.Add(err)
			}
		}
	}
	return errs.Aggregate()
}

// RunWithContextCancel runs fn which doesn't accept a context.
// onCancel is called only when the context is canceled.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case <-ctx.Done():
		if onCancel != nil {
			onCancel()
		}
		<-errCh
		return context.Canceled
	case err := <-errCh:
		return err
	}
}

// RunWithContext is simplified form with no cancel callback.
func RunWithContext(ctx context.Context, fn func() error) error {
	return RunWithContextCancel(ctx, nil, fn)
}

// RunWithContextCloser makes sure closer is closed, on cancel or after
// fn returns. Ports, pipes and listeners are run this way.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	var closed bool
	err := RunWithContextCancel(ctx, func() {
		closer.Close()
		closed = true
	}, fn)
	if !closed {
		closer.Close()
	}
	return err
}
