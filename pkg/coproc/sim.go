// Package coproc simulates the radio co-processor of a Bean on the
// peer side of the serial link.
package coproc

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bean.go/pkg/link"
	"github.com/robotalks/bean.go/pkg/midi"
	"github.com/robotalks/bean.go/pkg/power"
)

// Handshake is the handshake line into the CPU.
type Handshake interface {
	SetHandshake(level bool)
}

// Scheduler runs fn after d on the CPU clock.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// AccelRegisters is the size of the accelerometer register file.
const AccelRegisters = 0x40

// State is everything the co-processor remembers.
type State struct {
	UARTSleep     power.UARTSleepMode
	ConfigSave    bool
	WakeOnConnect bool
	WakeOnAccel   bool

	Led         link.LedSetting
	Battery     byte
	Temperature int8
	Accel       link.Acceleration
	AccelRegs   [AccelRegisters]byte

	Services      link.Services
	Advertising   bool
	AdvTimer      uint32
	AdvInterval   uint16
	Connected     bool
	Scratch       [link.NumScratchBanks][]byte
	Radio         link.RadioConfig
	Beacon        link.BeaconParams
	BeaconEnabled bool
	CustomAdv     []byte
	Observing     bool

	// Ancs holds pending 8-byte notification source messages.
	Ancs [][]byte
	// AncsDetails maps a notification UID to its attribute data.
	AncsDetails map[uint32][]byte
	// AncsActions records the performed actions by notification UID.
	AncsActions map[uint32]byte
	// ancsPending is the detail data requested but not yet read.
	ancsPending []byte

	// MidiOut records the MIDI packets written by the CPU.
	MidiOut [][]byte
	// Sleeps records the sleep requests in milliseconds.
	Sleeps []uint32
}

// DefaultState is the state of a Bean out of the box.
func DefaultState() State {
	return State{
		Battery:     100,
		Temperature: 23,
		Services:    link.ServiceStandard,
		Advertising: true,
		AdvInterval: 500,
		Radio: link.RadioConfig{
			AdvInterval:  500,
			ConnInterval: 20,
			TxPower:      3,
			LocalName:    "Bean",
		},
		AncsDetails: make(map[uint32][]byte),
		AncsActions: make(map[uint32]byte),
	}
}

// Sim is the simulated co-processor.
type Sim struct {
	Handshake Handshake
	Scheduler Scheduler

	fifo     *link.FIFO
	lock     sync.Mutex
	state    State
	loopback bool
}

// New creates a Sim talking over rw.
func New(rw io.ReadWriter) *Sim {
	s := &Sim{fifo: link.NewFIFO(rw), state: DefaultState()}
	s.fifo.Handler = s
	return s
}

// FIFO gets the peer FIFO.
func (s *Sim) FIFO() *link.FIFO {
	return s.fifo
}

// Run implements framework.Runnable.
func (s *Sim) Run(ctx context.Context) error {
	return s.fifo.Run(ctx)
}

// State returns a copy of the current state.
func (s *Sim) State() State {
	s.lock.Lock()
	defer s.lock.Unlock()
	st := s.state
	st.Ancs = append([][]byte(nil), st.Ancs...)
	st.MidiOut = append([][]byte(nil), st.MidiOut...)
	st.Sleeps = append([]uint32(nil), st.Sleeps...)
	return st
}

// Update changes the state.
func (s *Sim) Update(fn func(*State)) {
	s.lock.Lock()
	fn(&s.state)
	s.lock.Unlock()
}

// SetLoopback makes written MIDI packets come back as inbound MIDI.
func (s *Sim) SetLoopback(enable bool) {
	s.lock.Lock()
	s.loopback = enable
	s.lock.Unlock()
}

// InjectMidi delivers a MIDI packet received over the air. The end of
// packet record is appended.
func (s *Sim) InjectMidi(pkt []byte) error {
	data := make([]byte, 0, len(pkt)+len(midi.EndOfPacket))
	data = append(data, pkt...)
	data = append(data, midi.EndOfPacket[:]...)
	return s.fifo.Send(&link.Packet{Notify: true, ID: link.MsgMidiRead, Data: data})
}

// InjectAdvertisement delivers an advertisement seen while observing.
// It's dropped when the observer is not started.
func (s *Sim) InjectAdvertisement(adv link.ObserverAdvertisement) error {
	s.lock.Lock()
	observing := s.state.Observing
	s.lock.Unlock()
	if !observing {
		return nil
	}
	return s.fifo.Send(&link.Packet{Notify: true, ID: link.MsgObserverAdv, Data: adv.Bytes()})
}

// HandlePacket implements link.PacketHandler.
func (s *Sim) HandlePacket(ctx context.Context, pkt *link.Packet) {
	if pkt.Notify {
		s.handleNotification(pkt)
		return
	}
	handler, ok := handlers[pkt.ID]
	if !ok {
		glog.V(1).Infof("coproc: unknown command %s", pkt.ID)
		s.reply(pkt, link.StatusUnknown, nil)
		return
	}
	var after func()
	s.lock.Lock()
	reply, status := handler(s, &s.state, pkt.Data, &after)
	s.lock.Unlock()
	if after != nil {
		after()
	}
	s.reply(pkt, status, reply)
}

func (s *Sim) reply(cmd *link.Packet, status byte, payload []byte) {
	if err := s.fifo.Send(link.Reply(cmd, status, payload)); err != nil {
		glog.Warningf("coproc: reply %s: %v", cmd.ID, err)
	}
}

func (s *Sim) handleNotification(pkt *link.Packet) {
	if pkt.ID != link.MsgMidiWrite {
		glog.V(2).Infof("coproc: unhandled notification %s", pkt)
		return
	}
	s.lock.Lock()
	s.state.MidiOut = append(s.state.MidiOut, append([]byte(nil), pkt.Data...))
	loopback := s.loopback
	s.lock.Unlock()
	if loopback {
		if err := s.InjectMidi(pkt.Data); err != nil {
			glog.Warningf("coproc: midi loopback: %v", err)
		}
	}
}

// sleep raises the handshake line and drops it when the time is up.
// Called after the state is unlocked and before the reply.
func (s *Sim) sleep(ms uint32) {
	if s.Handshake == nil {
		return
	}
	s.Handshake.SetHandshake(true)
	wake := func() { s.Handshake.SetHandshake(false) }
	if s.Scheduler != nil {
		s.Scheduler.After(time.Duration(ms)*time.Millisecond, wake)
		return
	}
	time.AfterFunc(time.Duration(ms)*time.Millisecond, wake)
}
