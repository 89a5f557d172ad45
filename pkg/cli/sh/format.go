package sh

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"

	fx "github.com/robotalks/bean.go/pkg/framework"
	"github.com/robotalks/bean.go/pkg/l1"
	"github.com/robotalks/bean.go/pkg/l1/msgs"
)

var (
	formatters     = make(map[reflect.Type]func(fx.Message) string)
	formattersLock sync.RWMutex
)

// RegisterFormatter sets how replies and events of type T are printed.
func RegisterFormatter[T fx.Message](fn func(T) string) {
	var zero T
	formattersLock.Lock()
	defer formattersLock.Unlock()
	formatters[reflect.TypeOf(zero)] = func(msg fx.Message) string {
		return fn(msg.(T))
	}
}

// FormatMessage prints msg with its registered formatter, or as the
// message name followed by its fields.
func FormatMessage(msg fx.Message) string {
	formattersLock.RLock()
	fn := formatters[reflect.TypeOf(msg)]
	formattersLock.RUnlock()
	if fn != nil {
		return fn(msg)
	}
	name := reflect.Indirect(reflect.ValueOf(msg)).Type().Name()
	if sm, ok := msg.(msgs.SerializableMessage); ok {
		if desc := sm.Serializable().String(); desc != "" {
			return name + " " + desc
		}
	}
	return name
}

// FormatJSON prints msg as JSON of its protobuf form.
func FormatJSON(msg fx.Message) (string, error) {
	sm, ok := msg.(msgs.SerializableMessage)
	if !ok {
		return "", fmt.Errorf("%T is not serializable", msg)
	}
	out, err := json.Marshal(sm.Serializable())
	return string(out), err
}

// FormatInfo prints ControllerInfo into friendly string for display.
func FormatInfo(info l1.ControllerInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	return w.String()
}

// FormatStatus prints a Bean status on one line.
func FormatStatus(st *msgs.BeanStatus) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%q %s", st.Name, st.PowerState)
	if st.KeepAwake {
		w.WriteString(" keep-awake")
	}
	if st.Connected {
		w.WriteString(" connected")
	} else if st.Advertising {
		w.WriteString(" advertising")
	}
	fmt.Fprintf(&w, " midi-pending=%d services=0x%02x", st.MidiPending, st.Services)
	return w.String()
}

// Prompt is the shell prompt for a connection, with the last known
// power state.
func Prompt(ref l1.ControllerRef, st *msgs.BeanStatus) string {
	if st == nil || st.PowerState == "" {
		return ref.Name() + " > "
	}
	return fmt.Sprintf("%s (%s) > ", ref.Name(), st.PowerState)
}

func init() {
	RegisterFormatter(func(*msgs.CommandOK) string { return "OK" })
	RegisterFormatter(func(st *msgs.BeanStatus) string {
		return "status " + FormatStatus(st)
	})
	RegisterFormatter(func(ev *msgs.MidiEvent) string {
		m := gomidi.Message{byte(ev.Status), byte(ev.Data1), byte(ev.Data2)}
		return fmt.Sprintf("midi @%d %02x %02x %02x %s", ev.Timestamp, ev.Status, ev.Data1, ev.Data2, m)
	})
}
