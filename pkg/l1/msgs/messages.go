package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/bean.go/pkg/framework"
	pb "github.com/robotalks/bean.go/pkg/proto/bean/l1/v1"
)

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
	pb.CommandOK
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// Serializable implements SerializableMessage.
func (m *CommandOK) Serializable() proto.Message { return &m.CommandOK }

// CommandErr is the generic message representing command error.
type CommandErr struct {
	pb.CommandErr
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return NewCommandErrFromMsg(err.Error())
}

// NewCommandErrFromMsg creates a CommandErr.
func NewCommandErrFromMsg(message string) *CommandErr {
	return &CommandErr{CommandErr: pb.CommandErr{Message: message}}
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Serializable implements SerializableMessage.
func (m *CommandErr) Serializable() proto.Message { return &m.CommandErr }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// BeanStatusQuery command queries BeanStatusReply.
type BeanStatusQuery struct {
	pb.BeanStatusQuery
}

// NewMessage implements Message.
func (m *BeanStatusQuery) NewMessage() fx.Message { return &BeanStatusQuery{} }

// TypeID implements SerializableMessage.
func (m *BeanStatusQuery) TypeID() uint32 { return BeanStatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *BeanStatusQuery) Serializable() proto.Message { return &m.BeanStatusQuery }

// BeanStatusReply is the response of BeanStatusQuery.
type BeanStatusReply struct {
	pb.BeanStatusReply
}

// NewMessage implements Message.
func (m *BeanStatusReply) NewMessage() fx.Message { return &BeanStatusReply{} }

// TypeID implements SerializableMessage.
func (m *BeanStatusReply) TypeID() uint32 { return BeanStatusReplyTypeID }

// Serializable implements SerializableMessage.
func (m *BeanStatusReply) Serializable() proto.Message { return &m.BeanStatusReply }

// BeanStatus event is sent when the board state changes.
type BeanStatus struct {
	pb.BeanStatus
}

// NewMessage implements Message.
func (m *BeanStatus) NewMessage() fx.Message { return &BeanStatus{} }

// TypeID implements SerializableMessage.
func (m *BeanStatus) TypeID() uint32 { return BeanStatusTypeID }

// Serializable implements SerializableMessage.
func (m *BeanStatus) Serializable() proto.Message { return &m.BeanStatus }

// MidiSend command queues a MIDI message, it fails if the queue is full.
type MidiSend struct {
	pb.MidiSend
}

// NewMessage implements Message.
func (m *MidiSend) NewMessage() fx.Message { return &MidiSend{} }

// TypeID implements SerializableMessage.
func (m *MidiSend) TypeID() uint32 { return MidiSendTypeID }

// Serializable implements SerializableMessage.
func (m *MidiSend) Serializable() proto.Message { return &m.MidiSend }

// MidiEvent event carries a received MIDI message.
type MidiEvent struct {
	pb.MidiEvent
}

// NewMessage implements Message.
func (m *MidiEvent) NewMessage() fx.Message { return &MidiEvent{} }

// TypeID implements SerializableMessage.
func (m *MidiEvent) TypeID() uint32 { return MidiEventTypeID }

// Serializable implements SerializableMessage.
func (m *MidiEvent) Serializable() proto.Message { return &m.MidiEvent }

// SleepRequest command sleeps the board, replied with SleepResult.
type SleepRequest struct {
	pb.SleepRequest
}

// NewMessage implements Message.
func (m *SleepRequest) NewMessage() fx.Message { return &SleepRequest{} }

// TypeID implements SerializableMessage.
func (m *SleepRequest) TypeID() uint32 { return SleepRequestTypeID }

// Serializable implements SerializableMessage.
func (m *SleepRequest) Serializable() proto.Message { return &m.SleepRequest }

// SleepResult response.
type SleepResult struct {
	pb.SleepResult
}

// NewMessage implements Message.
func (m *SleepResult) NewMessage() fx.Message { return &SleepResult{} }

// TypeID implements SerializableMessage.
func (m *SleepResult) TypeID() uint32 { return SleepResultTypeID }

// Serializable implements SerializableMessage.
func (m *SleepResult) Serializable() proto.Message { return &m.SleepResult }

// KeepAwake command.
type KeepAwake struct {
	pb.KeepAwake
}

// NewMessage implements Message.
func (m *KeepAwake) NewMessage() fx.Message { return &KeepAwake{} }

// TypeID implements SerializableMessage.
func (m *KeepAwake) TypeID() uint32 { return KeepAwakeTypeID }

// Serializable implements SerializableMessage.
func (m *KeepAwake) Serializable() proto.Message { return &m.KeepAwake }

// LedSet command.
type LedSet struct {
	pb.LedSet
}

// NewMessage implements Message.
func (m *LedSet) NewMessage() fx.Message { return &LedSet{} }

// TypeID implements SerializableMessage.
func (m *LedSet) TypeID() uint32 { return LedSetTypeID }

// Serializable implements SerializableMessage.
func (m *LedSet) Serializable() proto.Message { return &m.LedSet }

// LedQuery command.
type LedQuery struct {
	pb.LedQuery
}

// NewMessage implements Message.
func (m *LedQuery) NewMessage() fx.Message { return &LedQuery{} }

// TypeID implements SerializableMessage.
func (m *LedQuery) TypeID() uint32 { return LedQueryTypeID }

// Serializable implements SerializableMessage.
func (m *LedQuery) Serializable() proto.Message { return &m.LedQuery }

// LedState response.
type LedState struct {
	pb.LedState
}

// NewMessage implements Message.
func (m *LedState) NewMessage() fx.Message { return &LedState{} }

// TypeID implements SerializableMessage.
func (m *LedState) TypeID() uint32 { return LedStateTypeID }

// Serializable implements SerializableMessage.
func (m *LedState) Serializable() proto.Message { return &m.LedState }

// BatteryQuery command.
type BatteryQuery struct {
	pb.BatteryQuery
}

// NewMessage implements Message.
func (m *BatteryQuery) NewMessage() fx.Message { return &BatteryQuery{} }

// TypeID implements SerializableMessage.
func (m *BatteryQuery) TypeID() uint32 { return BatteryQueryTypeID }

// Serializable implements SerializableMessage.
func (m *BatteryQuery) Serializable() proto.Message { return &m.BatteryQuery }

// BatteryState response. Voltage is in centivolts.
type BatteryState struct {
	pb.BatteryState
}

// NewMessage implements Message.
func (m *BatteryState) NewMessage() fx.Message { return &BatteryState{} }

// TypeID implements SerializableMessage.
func (m *BatteryState) TypeID() uint32 { return BatteryStateTypeID }

// Serializable implements SerializableMessage.
func (m *BatteryState) Serializable() proto.Message { return &m.BatteryState }

// AccelQuery command.
type AccelQuery struct {
	pb.AccelQuery
}

// NewMessage implements Message.
func (m *AccelQuery) NewMessage() fx.Message { return &AccelQuery{} }

// TypeID implements SerializableMessage.
func (m *AccelQuery) TypeID() uint32 { return AccelQueryTypeID }

// Serializable implements SerializableMessage.
func (m *AccelQuery) Serializable() proto.Message { return &m.AccelQuery }

// Acceleration response.
type Acceleration struct {
	pb.Acceleration
}

// NewMessage implements Message.
func (m *Acceleration) NewMessage() fx.Message { return &Acceleration{} }

// TypeID implements SerializableMessage.
func (m *Acceleration) TypeID() uint32 { return AccelerationTypeID }

// Serializable implements SerializableMessage.
func (m *Acceleration) Serializable() proto.Message { return &m.Acceleration }

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupBean    uint32 = 0x00030000
	GroupMidi    uint32 = 0x00040000
	GroupCustom  uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	CommandOKTypeID       uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID      uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	BeanStatusQueryTypeID uint32 = GroupBean | 0x0000
	BeanStatusReplyTypeID uint32 = BeanStatusQueryTypeID | TypeIDMaskReply
	BeanStatusTypeID      uint32 = GroupBean | TypeIDKindEvent | 0x0000
	SleepRequestTypeID    uint32 = GroupBean | 0x0001
	SleepResultTypeID     uint32 = SleepRequestTypeID | TypeIDMaskReply
	KeepAwakeTypeID       uint32 = GroupBean | 0x0002
	LedSetTypeID          uint32 = GroupBean | 0x0003
	LedQueryTypeID        uint32 = GroupBean | 0x0004
	LedStateTypeID        uint32 = LedQueryTypeID | TypeIDMaskReply
	BatteryQueryTypeID    uint32 = GroupBean | 0x0005
	BatteryStateTypeID    uint32 = BatteryQueryTypeID | TypeIDMaskReply
	AccelQueryTypeID      uint32 = GroupBean | 0x0006
	AccelerationTypeID    uint32 = AccelQueryTypeID | TypeIDMaskReply
	MidiSendTypeID        uint32 = GroupMidi | 0x0000
	MidiEventTypeID       uint32 = GroupMidi | TypeIDKindEvent | 0x0000
)
