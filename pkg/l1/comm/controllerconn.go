package comm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/bean.go/pkg/framework"
	"github.com/robotalks/bean.go/pkg/l1"
	"github.com/robotalks/bean.go/pkg/l1/msgs"
)

// ErrConnClosed fails the commands still waiting when the connection
// to the controller is gone.
var ErrConnClosed = errors.New("controller connection closed")

// DefaultCommandExpiration is the default expiration expecting a result.
const DefaultCommandExpiration = 1 * time.Second

// ControllerConn is the client side of a Pipe to a Bean controller.
// Replies are matched to commands by sequence, a command without reply
// within Expiration fails with context.DeadlineExceeded. Events are
// posted to the loop, the last BeanStatus is also kept.
type ControllerConn struct {
	Expiration time.Duration

	pipe    Pipe
	seq     uint32
	pending map[uint32]*commandFuture
	status  *msgs.BeanStatus
	closed  bool
	lock    sync.Mutex
}

// Init initializes ControllerConn with defaults.
func (c *ControllerConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.pending = make(map[uint32]*commandFuture)
}

// DoCommand implements ControllerConn.
func (c *ControllerConn) DoCommand(msg fx.Message) l1.CommandFuture {
	f := &commandFuture{result: make(chan l1.Result, 1)}
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		f.complete(l1.Result{Err: ErrConnClosed})
		return f
	}
	c.seq++
	if c.seq == 0 {
		c.seq++
	}
	f.seq, f.expireAt = c.seq, time.Now().Add(c.Expiration)
	if err := c.pipe.SendCommandMsg(msg, f.seq); err != nil {
		f.complete(l1.Result{Err: err})
		return f
	}
	c.pending[f.seq] = f
	return f
}

// Do sends a command and waits for its reply. A CommandErr reply is
// returned as the error.
func (c *ControllerConn) Do(ctx context.Context, msg fx.Message) (fx.Message, error) {
	select {
	case res := <-c.DoCommand(msg).ResultChan():
		return res.Msg, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Status returns the last BeanStatus event from the controller.
func (c *ControllerConn) Status() (*msgs.BeanStatus, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.status, c.status != nil
}

// Pending returns the number of commands waiting for results.
func (c *ControllerConn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.pending)
}

// Run implements Runnable. Once the pipe stops, waiting commands fail
// with ErrConnClosed.
func (c *ControllerConn) Run(ctx context.Context) error {
	err := c.pipe.Run(ctx)
	c.shutdown()
	return err
}

// Close closes the connection and fails waiting commands.
func (c *ControllerConn) Close() error {
	c.shutdown()
	return c.pipe.Close()
}

// AddToLoop implements LoopAdder.
func (c *ControllerConn) AddToLoop(l *fx.Loop) {
	c.pipe.addReadWriter(l)
	l.AddRunnable(c)
	l.AddController(fx.PrLvIdle, fx.ControlFunc(c.purgeExpired))
}

func (c *ControllerConn) shutdown() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = true
	for seq, f := range c.pending {
		delete(c.pending, seq)
		f.complete(l1.Result{Err: ErrConnClosed})
	}
}

func (c *ControllerConn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		if status, ok := msg.(*msgs.BeanStatus); ok {
			c.lock.Lock()
			c.status = status
			c.lock.Unlock()
		}
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(msg)
		loopCtl.TriggerNext()
		return nil
	}
	if !typed.IsReply() {
		glog.V(2).Infof("l1: unexpected command %x from controller", typed.TypeId)
		return nil
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	f := c.pending[typed.Sequence]
	if f == nil {
		glog.V(2).Infof("l1: reply %d after expiration", typed.Sequence)
		return nil
	}
	delete(c.pending, typed.Sequence)
	result := l1.Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	f.complete(result)
	return nil
}

func (c *ControllerConn) purgeExpired(cc fx.ControlContext) error {
	now := cc.Time()
	c.lock.Lock()
	defer c.lock.Unlock()
	for seq, f := range c.pending {
		if f.expireAt.After(now) {
			continue
		}
		delete(c.pending, seq)
		f.complete(l1.Result{Err: context.DeadlineExceeded})
	}
	return nil
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	result   chan l1.Result
}

func (f *commandFuture) complete(res l1.Result) {
	f.result <- res
	close(f.result)
}

func (f *commandFuture) ResultChan() <-chan l1.Result {
	return f.result
}
