// Package l1 connects a Bean controller (L1) to its clients (L2).
//
// The controller registers itself with one or more registrars and
// receives commands as CommandMsg in its control loop. Clients discover
// controllers with a Connector and send commands over a ControllerConn.
package l1

import (
	"context"
	"fmt"
	"strings"

	fx "github.com/robotalks/bean.go/pkg/framework"
)

// DefaultControllerType is the controller type of beand.
const DefaultControllerType = "bean"

// Registrar registers a Bean controller to a registry.
// It integrates with framework and helps the controller to
// easily process messages.
type Registrar interface {
	// SendEvent sends an event to all clients.
	SendEvent(context.Context, fx.Message) error
}

// Command represents a received command to be processed.
type Command interface {
	Msg() fx.Message
	Done(fx.Message) error
}

// CommandMsg wraps a Command as a Message.
type CommandMsg struct {
	Command Command
}

// NewMessage implements Message.
func (m *CommandMsg) NewMessage() fx.Message { return &CommandMsg{} }

// ControllerRef is a reference to a controller.
type ControllerRef struct {
	// Type is controller type, DefaultControllerType for beand.
	Type string
	// ID is unique ID of the board.
	ID string
}

// ParseControllerRef parses TYPE/ID.
func ParseControllerRef(s string) (ControllerRef, error) {
	items := strings.SplitN(s, "/", 2)
	if len(items) != 2 || items[0] == "" || items[1] == "" {
		return ControllerRef{}, fmt.Errorf("invalid controller ref %q, TYPE/ID expected", s)
	}
	return ControllerRef{Type: items[0], ID: items[1]}, nil
}

// Name retrieves the name from ref.
func (r ControllerRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates ControllerRef is valid.
func (r ControllerRef) IsValid() bool {
	return r.Type != "" && r.ID != "" && !strings.Contains(r.Type, "/")
}

// ControllerMeta provides metadata for a controller.
type ControllerMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ControllerInfo provides information of a controller.
type ControllerInfo struct {
	Ref  ControllerRef
	Meta ControllerMeta
}

// Connector is used by clients to connect to a controller.
type Connector interface {
	// Discover enumerates registered controllers.
	Discover(context.Context) ([]ControllerInfo, error)
	// Connect connects to the specified controller.
	Connect(context.Context, ControllerRef) (ControllerConn, error)
}

// ControllerConn is the connection to a controller.
type ControllerConn interface {
	// DoCommand executes a command.
	DoCommand(fx.Message) CommandFuture
}

// Result represents result of a command.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture is the future of sent command.
type CommandFuture interface {
	ResultChan() <-chan Result
}
