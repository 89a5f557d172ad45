package link

// SyncState is the synchronization state of the link.
type SyncState int

// Sync states, SyncStateReady and SyncStateReceiving are flags.
const (
	SyncStateSyncing   SyncState = 0
	SyncStateReady     SyncState = 0x01
	SyncStateReceiving SyncState = 0x02
)

// IsReady indicates packets can be sent.
func (s SyncState) IsReady() bool {
	return s&SyncStateReady != 0
}

// IsReceiving indicates a sync sequence or a packet is partially received.
func (s SyncState) IsReceiving() bool {
	return s&SyncStateReceiving != 0
}

// String implements fmt.Stringer.
func (s SyncState) String() string {
	switch s {
	case SyncStateSyncing:
		return "syncing"
	case SyncStateSyncing | SyncStateReceiving:
		return "syncing+receiving"
	case SyncStateReady:
		return "ready"
	case SyncStateReady | SyncStateReceiving:
		return "ready+receiving"
	}
	return "invalid"
}

// TimerAction tells the FIFO what to do with the sync timer.
type TimerAction int

// Timer actions
const (
	TimerNoChange TimerAction = iota
	TimerRestart
	TimerStop
)

// ParseResult is the outcome of feeding the parser.
type ParseResult struct {
	// Sync is the sync byte to send, 0 for none.
	Sync   byte
	State  SyncState
	Packet *Packet
}

// TimerAction decides what to do with the sync timer.
func (r ParseResult) TimerAction() TimerAction {
	switch {
	case r.State.IsReceiving(), r.Sync == syncREQ:
		return TimerRestart
	case r.State.IsReady():
		return TimerStop
	}
	return TimerNoChange
}

type parseState int

const (
	stateSyncWait   parseState = iota // REQ sent, waiting for ACK or REQ
	stateSyncReqSeq                   // peer seq after REQ
	stateSyncAckSeq                   // peer seq after ACK
	stateMsgSeq                       // idle, waiting for a packet
	stateMsgAckSeq                    // ACK while synchronized, validating seq
	stateMsgCtl
	stateMsgID
	stateMsgLen
	stateMsgData
)

const (
	syncREQ byte = 0xff
	syncACK byte = 0xfe
)

// Parser is the receiving state machine, fed one byte at a time.
type Parser struct {
	peerSeq PacketSeq
	state   parseState
	packet  *Packet
	recvLen int
}

// State returns the current sync state.
func (p *Parser) State() SyncState {
	switch {
	case p.state == stateSyncWait:
		return SyncStateSyncing
	case p.state == stateMsgSeq:
		return SyncStateReady
	case p.state > stateMsgSeq:
		return SyncStateReady | SyncStateReceiving
	}
	return SyncStateSyncing | SyncStateReceiving
}

// Reset drops everything and starts a resync.
func (p *Parser) Reset() ParseResult {
	p.packet = nil
	return p.result(p.resync())
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) ParseResult {
	return p.result(p.parseByte(b))
}

// Timeout notifies the sync timer expired: anything partially received
// is dropped and a resync starts.
func (p *Parser) Timeout() ParseResult {
	if p.state == stateMsgSeq {
		return p.result(0, nil)
	}
	return p.result(p.resync())
}

func (p *Parser) result(sync byte, pkt *Packet) ParseResult {
	return ParseResult{Sync: sync, State: p.State(), Packet: pkt}
}

func (p *Parser) parseByte(b byte) (byte, *Packet) {
	switch p.state {
	case stateSyncWait:
		switch b {
		case syncREQ:
			p.state = stateSyncReqSeq
		case syncACK:
			p.state = stateSyncAckSeq
		}
	case stateSyncReqSeq, stateSyncAckSeq:
		seq := PacketSeq(b)
		if !seq.IsValid() {
			return p.resync()
		}
		ack := p.state == stateSyncReqSeq
		p.peerSeq, p.state = seq, stateMsgSeq
		if ack {
			return syncACK, nil
		}
	case stateMsgSeq:
		switch {
		case b == syncREQ:
			p.state = stateSyncReqSeq
		case b == syncACK:
			p.state = stateMsgAckSeq
		case b != byte(p.peerSeq):
			return p.resync()
		default:
			p.packet = &Packet{Seq: p.peerSeq}
			p.peerSeq = p.peerSeq.Next()
			p.state = stateMsgCtl
		}
	case stateMsgAckSeq:
		if b != byte(p.peerSeq) {
			return p.resync()
		}
		p.state = stateMsgSeq
	case stateMsgCtl:
		p.packet.Notify = b&ctlNotify != 0
		p.packet.ID = MessageID(b&ctlIDMask) << 8
		p.recvLen = int((b & ctlLenMask) >> ctlLenShift)
		p.state = stateMsgID
	case stateMsgID:
		p.packet.ID |= MessageID(b)
		switch byte(p.recvLen) {
		case 0:
			return p.packetReady()
		case lenExplicit:
			p.state = stateMsgLen
		default:
			p.startData(p.recvLen)
		}
	case stateMsgLen:
		if b > MaxPayload {
			return p.resync()
		}
		if b == 0 {
			return p.packetReady()
		}
		p.startData(int(b))
	case stateMsgData:
		p.packet.Data[p.recvLen] = b
		p.recvLen++
		if p.recvLen >= len(p.packet.Data) {
			return p.packetReady()
		}
	}
	return 0, nil
}

func (p *Parser) startData(size int) {
	p.packet.Data, p.recvLen = make([]byte, size), 0
	p.state = stateMsgData
}

func (p *Parser) resync() (byte, *Packet) {
	p.state, p.packet = stateSyncWait, nil
	return syncREQ, nil
}

func (p *Parser) packetReady() (byte, *Packet) {
	p.state = stateMsgSeq
	pkt := p.packet
	p.packet = nil
	return 0, pkt
}
