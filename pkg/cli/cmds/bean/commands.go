// Package bean provides the beancli commands of a Bean controller.
package bean

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/bean.go/pkg/cli/sh"
	"github.com/robotalks/bean.go/pkg/l1/msgs"
)

var (
	// StatusCmd queries the Bean status.
	StatusCmd = ishell.Cmd{
		Name:    "bean.status",
		Aliases: []string{"status", "st"},
		Help:    "show Bean status",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.BeanStatusQuery{})
		}),
	}

	// MidiSendCmd sends a MIDI message.
	MidiSendCmd = ishell.Cmd{
		Name:    "midi.send",
		Aliases: []string{"midi"},
		Help:    "note-on CH KEY VEL | note-off CH KEY | cc CH CTRL VAL | STATUS DATA1 DATA2",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := ParseMidi(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}

	// SleepCmd puts the Bean into sleep.
	SleepCmd = ishell.Cmd{
		Name: "sleep",
		Help: "MS",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("MS required"))
				return
			}
			ms, err := parseUint(c.Args[0], "duration", 1<<32-1)
			if err != nil {
				c.Err(err)
				return
			}
			msg := &msgs.SleepRequest{}
			msg.DurationMs = ms
			sh.DoCommand(c, msg)
		}),
	}

	// AwakeCmd toggles keep-awake.
	AwakeCmd = ishell.Cmd{
		Name: "awake",
		Help: "on|off",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("on or off required"))
				return
			}
			enable, err := sh.ParseOnOff(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			msg := &msgs.KeepAwake{}
			msg.Enable = enable
			sh.DoCommand(c, msg)
		}),
	}

	// LedCmd sets the LED.
	LedCmd = ishell.Cmd{
		Name: "led",
		Help: "R G B",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := ParseLed(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}

	// LedQueryCmd reads the LED.
	LedQueryCmd = ishell.Cmd{
		Name: "led?",
		Help: "show LED",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.LedQuery{})
		}),
	}

	// BatteryCmd reads the battery and temperature.
	BatteryCmd = ishell.Cmd{
		Name:    "battery",
		Aliases: []string{"bat"},
		Help:    "show battery level, voltage and temperature",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.BatteryQuery{})
		}),
	}

	// AccelCmd reads the accelerometer.
	AccelCmd = ishell.Cmd{
		Name: "accel",
		Help: "show acceleration",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.AccelQuery{})
		}),
	}
)

func init() {
	sh.AddCmds(
		&StatusCmd,
		&MidiSendCmd,
		&SleepCmd,
		&AwakeCmd,
		&LedCmd,
		&LedQueryCmd,
		&BatteryCmd,
		&AccelCmd,
	)
}
