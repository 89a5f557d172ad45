package link

import (
	"context"
	"sync"
)

// Result is the reply to a command.
type Result struct {
	Err  error
	ID   MessageID
	Data []byte
}

// Command is a command waiting for its reply.
type Command struct {
	id         MessageID
	requestSeq PacketSeq
	resultCh   chan Result
	next       *Command
}

// RequestSeq returns the sequence number of the request packet.
func (c *Command) RequestSeq() PacketSeq {
	return c.requestSeq
}

// ResultChan returns the chan receiving the result.
func (c *Command) ResultChan() <-chan Result {
	return c.resultCh
}

// Client matches replies to commands sent over a FIFO.
// Replies arrive in the order of the commands, a reply to a later
// command fails the earlier ones with ErrNoReply.
type Client struct {
	// NotifyHandler receives notifications if set, otherwise they go
	// to EventChan. It's called from the FIFO's Run.
	NotifyHandler PacketHandler

	fifo     *FIFO
	eventCh  chan *Packet
	stateCh  chan SyncState
	cmdsHead *Command
	cmdsTail *Command
	cmdsLock sync.Mutex
}

// NewClient creates a client which takes over the handler and notifier
// of the fifo.
func NewClient(fifo *FIFO) *Client {
	c := &Client{
		fifo:    fifo,
		eventCh: make(chan *Packet, 1),
		stateCh: make(chan SyncState, 1),
	}
	c.fifo.Handler = c
	c.fifo.Notifier = StateChangedFunc(c.stateChanged)
	return c
}

// FIFO gets the wrapped FIFO.
func (c *Client) FIFO() *FIFO {
	return c.fifo
}

// StateChan reports sync state changes. Only the latest state is kept.
func (c *Client) StateChan() <-chan SyncState {
	return c.stateCh
}

// EventChan reports notifications when NotifyHandler is not set.
func (c *Client) EventChan() <-chan *Packet {
	return c.eventCh
}

func (c *Client) stateChanged(ctx context.Context, state SyncState) {
	for {
		select {
		case c.stateCh <- state:
			return
		default:
		}
		select {
		case <-c.stateCh:
		default:
		}
	}
}

// DoWith sends a command and delivers the result to ch.
func (c *Client) DoWith(pkt *Packet, ch chan Result) *Command {
	pkt.Notify = false
	cmd := &Command{id: pkt.ID, resultCh: ch}

	c.cmdsLock.Lock()
	defer c.cmdsLock.Unlock()
	err := c.fifo.Send(pkt)
	cmd.requestSeq = pkt.Seq
	if err != nil {
		cmd.resultCh <- Result{Err: err, ID: pkt.ID}
		return cmd
	}
	if c.cmdsHead == nil {
		c.cmdsHead = cmd
	} else {
		c.cmdsTail.next = cmd
	}
	c.cmdsTail = cmd
	return cmd
}

// Do sends a command.
func (c *Client) Do(pkt *Packet) *Command {
	return c.DoWith(pkt, make(chan Result, 1))
}

// Call sends a command and waits for the reply payload.
func (c *Client) Call(ctx context.Context, id MessageID, data []byte) ([]byte, error) {
	cmd := c.Do(&Packet{ID: id, Data: data})
	select {
	case r := <-cmd.ResultChan():
		return r.Data, r.Err
	case <-ctx.Done():
		c.cancel(cmd)
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}

// Notify sends a notification, which is never answered.
func (c *Client) Notify(id MessageID, data []byte) error {
	return c.fifo.Send(&Packet{Notify: true, ID: id, Data: data})
}

func (c *Client) cancel(cmd *Command) {
	c.cmdsLock.Lock()
	defer c.cmdsLock.Unlock()
	var prev *Command
	for curr := c.cmdsHead; curr != nil; prev, curr = curr, curr.next {
		if curr != cmd {
			continue
		}
		if prev == nil {
			c.cmdsHead = curr.next
		} else {
			prev.next = curr.next
		}
		if c.cmdsTail == curr {
			c.cmdsTail = prev
		}
		curr.next = nil
		return
	}
}

// HandlePacket implements PacketHandler.
func (c *Client) HandlePacket(ctx context.Context, pkt *Packet) {
	if pkt.Notify {
		if h := c.NotifyHandler; h != nil {
			h.HandlePacket(ctx, pkt)
		} else {
			c.eventCh <- pkt
		}
		return
	}
	if len(pkt.Data) < 2 {
		// not a reply.
		return
	}
	seq := PacketSeq(pkt.Data[0])
	if !seq.IsValid() {
		return
	}
	c.cmdsLock.Lock()
	head := c.cmdsHead
	curr := c.cmdsHead
	for ; curr != nil; curr = curr.next {
		if curr.requestSeq == seq {
			if c.cmdsHead = curr.next; c.cmdsHead == nil {
				c.cmdsTail = nil
			}
			curr.next = nil
			break
		}
	}
	c.cmdsLock.Unlock()
	if curr == nil {
		return
	}
	for ; head != curr; head = head.next {
		head.resultCh <- Result{Err: ErrNoReply, ID: head.id}
	}
	if status := pkt.Data[1]; status != 0 {
		curr.resultCh <- Result{Err: &CommandError{ID: pkt.ID, Status: status}, ID: pkt.ID}
		return
	}
	curr.resultCh <- Result{ID: pkt.ID, Data: pkt.Data[2:]}
}

// Run wraps FIFO.Run to implement Runnable.
func (c *Client) Run(ctx context.Context) error {
	return c.fifo.Run(ctx)
}

// Reply builds the reply to a command.
func Reply(cmd *Packet, status byte, payload []byte) *Packet {
	data := make([]byte, 2, 2+len(payload))
	data[0], data[1] = byte(cmd.Seq), status
	return &Packet{ID: cmd.ID, Data: append(data, payload...)}
}
