package framework

import (
	"context"
	"strconv"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunnableFunc defines the func form of Runnable.
type RunnableFunc func(context.Context) error

// Run implements Runnable.
func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Message is anything posted to the loop: received commands, decoded
// events, results of background work.
type Message interface {
	// NewMessage creates an empty message.
	NewMessage() Message
}

// Controller defines the abstract controlling logic. Controllers run
// one after another on the loop goroutine, never concurrently.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(ctx ControlContext) error {
	return f(ctx)
}

// Priority orders the controllers of an iteration, lower runs first.
type Priority int

// PriorityLevels is the total levels of priorities.
const PriorityLevels = 16

// The stages of an iteration. Inputs are sensed before commands are
// processed, outputs are flushed once all commands queued theirs.
const (
	// PrLvSense is where inputs are polled (e.g. received MIDI).
	PrLvSense Priority = 4
	// PrLvControl is where commands are processed.
	PrLvControl Priority = 8
	// PrLvOutput is where pending outputs are flushed.
	PrLvOutput Priority = 12
	// PrLvPostProc is where state changes are published.
	PrLvPostProc Priority = PriorityLevels - 2
	// PrLvIdle takes what nobody else wanted.
	PrLvIdle Priority = PriorityLevels - 1
)

// String implements fmt.Stringer.
func (p Priority) String() string {
	switch p {
	case PrLvSense:
		return "sense"
	case PrLvControl:
		return "control"
	case PrLvOutput:
		return "output"
	case PrLvPostProc:
		return "post-proc"
	case PrLvIdle:
		return "idle"
	}
	return "priority-" + strconv.Itoa(int(p))
}

// ControlContext provides the context of current control
// iteration.
type ControlContext interface {
	// Time is when the iteration started, the same for all controllers.
	Time() time.Time
	// Context retrieves context.Context.
	Context() context.Context
	// PriorityLevel gets the current priority level.
	PriorityLevel() Priority
	// Messages retrieves all messages collected when
	// this iteration starts.
	Messages() MessageStore
	// PostRun injects post-run one-shot hooks at current
	// priority level. If called in post-run hooks, new hooks
	// are installed for next iteration.
	PostRun(hooks ...Controller)

	LoopControl
}

// LoopControl exposes access to the controlling loop.
type LoopControl interface {
	// PreRunAt injects one-shot pre-run controller hooks at
	// specified priority level.
	PreRunAt(priorityLevel Priority, controllers ...Controller)
	// PostRunAt injects one-shot post-run controller hooks at
	// specified priority level.
	PostRunAt(priorityLevel Priority, controllers ...Controller)
	// PostMessage enqueues the message.
	PostMessage(Message)
	// TriggerNext schedules the next iteration to be executed
	// immediately after the current iteration.
	TriggerNext()
}

// MessageStore holds the messages of the current iteration. Messages
// not taken by the end of the iteration are dropped.
type MessageStore interface {
	// ProcessMessages uses a processor to process all messages.
	ProcessMessages(MessageProcessor)
	// AddMessages appends messages for the controllers after the
	// current one.
	AddMessages(msgs ...Message)
}

// MessageProcessor is used by MessageStore to process messages.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext provides context for current message.
type MessageProcessingContext interface {
	// CurrentMessage gets the current message being processed.
	CurrentMessage() Message
	// MessageTaken indicates the message has been processed and
	// should be removed from store.
	MessageTaken()
	// StopProcessing indicates no need to examine further messages.
	StopProcessing()
	// AddMessages appends messages to the store.
	AddMessages(msgs ...Message)
}

// TakeMessages passes each pending message of type T to fn and removes
// the ones fn handled.
func TakeMessages[T Message](cc ControlContext, fn func(T) bool) {
	cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
		if msg, ok := mc.CurrentMessage().(T); ok && fn(msg) {
			mc.MessageTaken()
		}
	}))
}
