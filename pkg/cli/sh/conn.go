package sh

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	fx "github.com/robotalks/bean.go/pkg/framework"
	"github.com/robotalks/bean.go/pkg/l1"
	"github.com/robotalks/bean.go/pkg/l1/msgs"
)

// ConnLoop is a running loop with a controller connection. Its loop
// keeps the last Bean status and prints events while watching.
type ConnLoop struct {
	Ctx    context.Context
	Cancel func()
	Ref    l1.ControllerRef
	Loop   *fx.Loop
	Conn   l1.ControllerConn

	// Print outputs watched events.
	Print func(string)
	// StatusChanged is called on the loop goroutine with each status.
	StatusChanged func(*msgs.BeanStatus)

	watch  atomic.Bool
	status *msgs.BeanStatus
	lock   sync.Mutex
}

// NewConnLoop creates the loop around conn, Run starts it.
func NewConnLoop(ref l1.ControllerRef, conn l1.ControllerConn) *ConnLoop {
	c := &ConnLoop{Ref: ref, Conn: conn, Loop: fx.NewLoop()}
	c.Ctx, c.Cancel = context.WithCancel(context.Background())
	if adder, ok := conn.(fx.LoopAdder); ok {
		c.Loop.Add(adder)
	}
	c.Loop.AddController(fx.PrLvControl, c)
	return c
}

// Run runs the loop until Close.
func (c *ConnLoop) Run() error {
	return c.Loop.Run(c.Ctx)
}

// Control implements Controller.
func (c *ConnLoop) Control(cc fx.ControlContext) error {
	fx.TakeMessages(cc, func(st *msgs.BeanStatus) bool {
		c.setStatus(st)
		c.print(st)
		return true
	})
	fx.TakeMessages(cc, func(ev *msgs.MidiEvent) bool {
		c.print(ev)
		return true
	})
	return nil
}

// SetWatch turns printing of events on or off.
func (c *ConnLoop) SetWatch(on bool) {
	c.watch.Store(on)
}

// Watching tells whether events are printed.
func (c *ConnLoop) Watching() bool {
	return c.watch.Load()
}

// Status returns the last known Bean status.
func (c *ConnLoop) Status() *msgs.BeanStatus {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.status
}

// Do runs a command on the connection.
func (c *ConnLoop) Do(ctx context.Context, msg fx.Message) (fx.Message, error) {
	select {
	case res := <-c.Conn.DoCommand(msg).ResultChan():
		if res.Err == nil {
			if reply, ok := res.Msg.(*msgs.BeanStatusReply); ok && reply.Status != nil {
				st := &msgs.BeanStatus{}
				st.BeanStatus = *reply.Status
				c.setStatus(st)
			}
		}
		return res.Msg, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the loop and closes the connection.
func (c *ConnLoop) Close() error {
	c.Cancel()
	if closer, ok := c.Conn.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *ConnLoop) setStatus(st *msgs.BeanStatus) {
	c.lock.Lock()
	c.status = st
	c.lock.Unlock()
	if fn := c.StatusChanged; fn != nil {
		fn(st)
	}
}

func (c *ConnLoop) print(msg fx.Message) {
	if c.watch.Load() && c.Print != nil {
		c.Print(FormatMessage(msg))
	}
}
