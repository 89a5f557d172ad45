package link

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
)

// PacketHandler is called when a packet is received.
type PacketHandler interface {
	HandlePacket(context.Context, *Packet)
}

// HandlePacketFunc is func type of PacketHandler.
type HandlePacketFunc func(context.Context, *Packet)

// HandlePacket implements PacketHandler.
func (f HandlePacketFunc) HandlePacket(ctx context.Context, pkt *Packet) {
	f(ctx, pkt)
}

// StateNotifier is called when the sync state changes.
type StateNotifier interface {
	StateChanged(context.Context, SyncState)
}

// StateChangedFunc is func type of StateNotifier.
type StateChangedFunc func(context.Context, SyncState)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(ctx context.Context, state SyncState) {
	f(ctx, state)
}

// DefaultSyncTimeout is the default time to wait for sync bytes and
// the rest of a partially received packet.
const DefaultSyncTimeout = 100 * time.Millisecond

const readBufferSize = 256

// FIFO sends and receives packets over a byte stream. Handler and
// Notifier are called from Run.
type FIFO struct {
	ReadWriter io.ReadWriter
	Handler    PacketHandler
	Notifier   StateNotifier
	Timeout    time.Duration
	// ReadTimeout is set when Read returns after a timeout on its own
	// (e.g. a serial port with a read timeout), so no reading goroutine
	// is needed.
	ReadTimeout bool

	seq   PacketSeq
	state SyncState
	lock  sync.RWMutex

	syncTimer <-chan time.Time
	parser    Parser
}

// NewFIFO creates a FIFO.
func NewFIFO(rw io.ReadWriter) *FIFO {
	return &FIFO{
		ReadWriter: rw,
		Timeout:    DefaultSyncTimeout,
		seq:        NewPacketSeq(),
	}
}

// State gets the sync state.
func (f *FIFO) State() SyncState {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.state
}

// Send assigns the next sequence number and writes the packet.
func (f *FIFO) Send(pkt *Packet) error {
	if err := pkt.Validate(); err != nil {
		return err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	if !f.state.IsReady() {
		return ErrNotReady
	}
	pkt.Seq = f.seq
	if _, err := pkt.WriteTo(f.ReadWriter); err != nil {
		return err
	}
	if glog.V(4) {
		glog.Infof("link: send %s", pkt)
	}
	f.seq = f.seq.Next()
	return nil
}

// Run reads and parses the stream until ctx is done or the stream fails.
func (f *FIFO) Run(ctx context.Context) error {
	if f.ReadTimeout {
		return f.runPolling(ctx)
	}
	return f.runStreaming(ctx)
}

func (f *FIFO) runPolling(ctx context.Context) error {
	if err := f.apply(ctx, f.parser.Reset()); err != nil {
		return err
	}
	buf := make([]byte, 1)
	for {
		var pr ParseResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.syncTimer:
			pr = f.parser.Timeout()
		default:
			n, err := f.ReadWriter.Read(buf)
			switch {
			case err != nil && !os.IsTimeout(err):
				return err
			case err != nil || n == 0:
				pr = f.parser.Timeout()
			default:
				pr = f.parser.Parse(buf[0])
			}
		}
		if err := f.apply(ctx, pr); err != nil {
			return err
		}
	}
}

func (f *FIFO) runStreaming(ctx context.Context) error {
	// reading starts before the first REQ is written, and bytes are
	// buffered, so two FIFOs on an unbuffered pipe don't block each other.
	byteCh, errCh := make(chan byte, readBufferSize), make(chan error, 1)
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go f.readLoop(readCtx, byteCh, errCh)
	if err := f.apply(ctx, f.parser.Reset()); err != nil {
		return err
	}
	for {
		var pr ParseResult
		select {
		case b := <-byteCh:
			pr = f.parser.Parse(b)
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-f.syncTimer:
			pr = f.parser.Timeout()
		}
		if err := f.apply(ctx, pr); err != nil {
			return err
		}
	}
}

func (f *FIFO) readLoop(ctx context.Context, byteCh chan<- byte, errCh chan<- error) {
	buf := make([]byte, 1)
	for {
		if _, err := f.ReadWriter.Read(buf); err != nil {
			errCh <- err
			return
		}
		select {
		case byteCh <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}

func (f *FIFO) apply(ctx context.Context, pr ParseResult) (err error) {
	var notifier StateNotifier
	f.lock.Lock()
	if f.state != pr.State {
		glog.V(3).Infof("link: %s -> %s", f.state, pr.State)
		f.state = pr.State
		notifier = f.Notifier
	}
	if pr.Sync != 0 {
		_, err = f.ReadWriter.Write([]byte{pr.Sync, byte(f.seq)})
	}
	f.lock.Unlock()
	if err != nil {
		return
	}

	action := pr.TimerAction()
	if f.ReadTimeout {
		// bytes keep arriving through polling, only a pending
		// REQ needs the timer.
		action = TimerStop
		if pr.Sync == syncREQ {
			action = TimerRestart
		}
	}
	switch action {
	case TimerRestart:
		f.syncTimer = time.After(f.Timeout)
	case TimerStop:
		f.syncTimer = nil
	}

	if notifier != nil {
		notifier.StateChanged(ctx, pr.State)
	}
	if pr.Packet != nil {
		if glog.V(4) {
			glog.Infof("link: recv %s", pr.Packet)
		}
		if h := f.Handler; h != nil {
			h.HandlePacket(ctx, pr.Packet)
		}
	}
	return
}
