package sh

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/bean.go/pkg/l1"
)

// ParseRefArgs parses the arguments of connect: TYPE/ID, TYPE ID, or
// TYPE alone which only filters discovery and leaves ref.ID empty.
func ParseRefArgs(args []string) (ref l1.ControllerRef, err error) {
	switch {
	case len(args) > 2:
		err = fmt.Errorf("too many arguments, TYPE/ID expected")
	case len(args) == 2:
		ref.Type, ref.ID = args[0], args[1]
		if !ref.IsValid() {
			err = fmt.Errorf("invalid controller ref %q", ref.Name())
		}
	case len(args) == 1 && strings.Contains(args[0], "/"):
		ref, err = l1.ParseControllerRef(args[0])
	case len(args) == 1:
		ref.Type = args[0]
	}
	return
}

// ParseOnOff parses on/off style booleans.
func ParseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid value %q, on or off expected", s)
}

var (
	// DiscoverCmd discovers controllers.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "list Bean controllers",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			_, infoList, err := s.DiscoverControllers(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(infoList) == 0 {
					// in case infoList is nil, make it empty slice.
					infoList = []l1.ControllerInfo{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No controllers found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a controller.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[TYPE/ID | TYPE ID | TYPE]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ref, err := ParseRefArgs(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if ref.ID == "" {
				var filter func(l1.ControllerInfo) bool
				if ref.Type != "" {
					filter = func(info l1.ControllerInfo) bool {
						return info.Ref.Type == ref.Type
					}
				}
				_, info, err := s.SelectController(filter)
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no controller discovered"))
					return
				}
				ref = info.Ref
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current controller.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "disconnect current controller",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// WatchCmd prints MIDI and status events as they arrive.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[on|off] print received MIDI and status changes",
		Func: MustBeConnected(func(c *ishell.Context) {
			loop := ShellFrom(c).Loop
			on := !loop.Watching()
			if len(c.Args) > 0 {
				var err error
				if on, err = ParseOnOff(c.Args[0]); err != nil {
					c.Err(err)
					return
				}
			}
			loop.SetWatch(on)
			if on {
				if st := loop.Status(); st != nil {
					c.Println(FormatMessage(st))
				}
				c.Println("watching events, \"watch off\" to stop")
			}
		}),
	}
)
