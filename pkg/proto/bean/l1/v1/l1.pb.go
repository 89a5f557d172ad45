// Package v1 holds the wire schema of L1 messages, see l1.proto.
package v1

import "github.com/golang/protobuf/proto"

// Typed wraps an encoded message with its type id.
type Typed struct {
	TypeId   uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Sequence uint32 `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Message  []byte `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *Typed) Reset()         { *m = Typed{} }
func (m *Typed) String() string { return proto.CompactTextString(m) }
func (*Typed) ProtoMessage()    {}

// CommandOK is the generic successful reply.
type CommandOK struct {
}

func (m *CommandOK) Reset()         { *m = CommandOK{} }
func (m *CommandOK) String() string { return proto.CompactTextString(m) }
func (*CommandOK) ProtoMessage()    {}

// CommandErr is the generic failure reply.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *CommandErr) Reset()         { *m = CommandErr{} }
func (m *CommandErr) String() string { return proto.CompactTextString(m) }
func (*CommandErr) ProtoMessage()    {}

type BeanStatusQuery struct {
}

func (m *BeanStatusQuery) Reset()         { *m = BeanStatusQuery{} }
func (m *BeanStatusQuery) String() string { return proto.CompactTextString(m) }
func (*BeanStatusQuery) ProtoMessage()    {}

// BeanStatus summarizes the board state.
type BeanStatus struct {
	Name        string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	PowerState  string `protobuf:"bytes,2,opt,name=power_state,json=powerState,proto3" json:"power_state,omitempty"`
	KeepAwake   bool   `protobuf:"varint,3,opt,name=keep_awake,json=keepAwake,proto3" json:"keep_awake,omitempty"`
	Connected   bool   `protobuf:"varint,4,opt,name=connected,proto3" json:"connected,omitempty"`
	Advertising bool   `protobuf:"varint,5,opt,name=advertising,proto3" json:"advertising,omitempty"`
	MidiPending uint32 `protobuf:"varint,6,opt,name=midi_pending,json=midiPending,proto3" json:"midi_pending,omitempty"`
	Services    uint32 `protobuf:"varint,7,opt,name=services,proto3" json:"services,omitempty"`
}

func (m *BeanStatus) Reset()         { *m = BeanStatus{} }
func (m *BeanStatus) String() string { return proto.CompactTextString(m) }
func (*BeanStatus) ProtoMessage()    {}

type BeanStatusReply struct {
	Status *BeanStatus `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

func (m *BeanStatusReply) Reset()         { *m = BeanStatusReply{} }
func (m *BeanStatusReply) String() string { return proto.CompactTextString(m) }
func (*BeanStatusReply) ProtoMessage()    {}

// MidiSend queues a MIDI message.
type MidiSend struct {
	Status uint32 `protobuf:"varint,1,opt,name=status,proto3" json:"status,omitempty"`
	Data1  uint32 `protobuf:"varint,2,opt,name=data1,proto3" json:"data1,omitempty"`
	Data2  uint32 `protobuf:"varint,3,opt,name=data2,proto3" json:"data2,omitempty"`
}

func (m *MidiSend) Reset()         { *m = MidiSend{} }
func (m *MidiSend) String() string { return proto.CompactTextString(m) }
func (*MidiSend) ProtoMessage()    {}

// MidiEvent is a received MIDI message.
type MidiEvent struct {
	Timestamp uint32 `protobuf:"varint,1,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Status    uint32 `protobuf:"varint,2,opt,name=status,proto3" json:"status,omitempty"`
	Data1     uint32 `protobuf:"varint,3,opt,name=data1,proto3" json:"data1,omitempty"`
	Data2     uint32 `protobuf:"varint,4,opt,name=data2,proto3" json:"data2,omitempty"`
}

func (m *MidiEvent) Reset()         { *m = MidiEvent{} }
func (m *MidiEvent) String() string { return proto.CompactTextString(m) }
func (*MidiEvent) ProtoMessage()    {}

type SleepRequest struct {
	DurationMs uint32 `protobuf:"varint,1,opt,name=duration_ms,json=durationMs,proto3" json:"duration_ms,omitempty"`
}

func (m *SleepRequest) Reset()         { *m = SleepRequest{} }
func (m *SleepRequest) String() string { return proto.CompactTextString(m) }
func (*SleepRequest) ProtoMessage()    {}

type SleepResult struct {
	Slept    bool   `protobuf:"varint,1,opt,name=slept,proto3" json:"slept,omitempty"`
	Attempts uint32 `protobuf:"varint,2,opt,name=attempts,proto3" json:"attempts,omitempty"`
}

func (m *SleepResult) Reset()         { *m = SleepResult{} }
func (m *SleepResult) String() string { return proto.CompactTextString(m) }
func (*SleepResult) ProtoMessage()    {}

type KeepAwake struct {
	Enable bool `protobuf:"varint,1,opt,name=enable,proto3" json:"enable,omitempty"`
}

func (m *KeepAwake) Reset()         { *m = KeepAwake{} }
func (m *KeepAwake) String() string { return proto.CompactTextString(m) }
func (*KeepAwake) ProtoMessage()    {}

type LedSet struct {
	Red   uint32 `protobuf:"varint,1,opt,name=red,proto3" json:"red,omitempty"`
	Green uint32 `protobuf:"varint,2,opt,name=green,proto3" json:"green,omitempty"`
	Blue  uint32 `protobuf:"varint,3,opt,name=blue,proto3" json:"blue,omitempty"`
}

func (m *LedSet) Reset()         { *m = LedSet{} }
func (m *LedSet) String() string { return proto.CompactTextString(m) }
func (*LedSet) ProtoMessage()    {}

type LedQuery struct {
}

func (m *LedQuery) Reset()         { *m = LedQuery{} }
func (m *LedQuery) String() string { return proto.CompactTextString(m) }
func (*LedQuery) ProtoMessage()    {}

type LedState struct {
	Red   uint32 `protobuf:"varint,1,opt,name=red,proto3" json:"red,omitempty"`
	Green uint32 `protobuf:"varint,2,opt,name=green,proto3" json:"green,omitempty"`
	Blue  uint32 `protobuf:"varint,3,opt,name=blue,proto3" json:"blue,omitempty"`
}

func (m *LedState) Reset()         { *m = LedState{} }
func (m *LedState) String() string { return proto.CompactTextString(m) }
func (*LedState) ProtoMessage()    {}

type BatteryQuery struct {
}

func (m *BatteryQuery) Reset()         { *m = BatteryQuery{} }
func (m *BatteryQuery) String() string { return proto.CompactTextString(m) }
func (*BatteryQuery) ProtoMessage()    {}

type BatteryState struct {
	Level       uint32 `protobuf:"varint,1,opt,name=level,proto3" json:"level,omitempty"`
	Voltage     uint32 `protobuf:"varint,2,opt,name=voltage,proto3" json:"voltage,omitempty"`
	Temperature int32  `protobuf:"zigzag32,3,opt,name=temperature,proto3" json:"temperature,omitempty"`
}

func (m *BatteryState) Reset()         { *m = BatteryState{} }
func (m *BatteryState) String() string { return proto.CompactTextString(m) }
func (*BatteryState) ProtoMessage()    {}

type AccelQuery struct {
}

func (m *AccelQuery) Reset()         { *m = AccelQuery{} }
func (m *AccelQuery) String() string { return proto.CompactTextString(m) }
func (*AccelQuery) ProtoMessage()    {}

type Acceleration struct {
	X           int32  `protobuf:"zigzag32,1,opt,name=x,proto3" json:"x,omitempty"`
	Y           int32  `protobuf:"zigzag32,2,opt,name=y,proto3" json:"y,omitempty"`
	Z           int32  `protobuf:"zigzag32,3,opt,name=z,proto3" json:"z,omitempty"`
	Sensitivity uint32 `protobuf:"varint,4,opt,name=sensitivity,proto3" json:"sensitivity,omitempty"`
}

func (m *Acceleration) Reset()         { *m = Acceleration{} }
func (m *Acceleration) String() string { return proto.CompactTextString(m) }
func (*Acceleration) ProtoMessage()    {}
