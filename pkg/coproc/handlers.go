package coproc

import (
	"encoding/binary"

	"github.com/robotalks/bean.go/pkg/link"
	"github.com/robotalks/bean.go/pkg/power"
)

// handler runs with the state locked. Work which must not hold the
// lock goes to after, which runs before the reply is sent.
type handler func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte)

// Accelerometer registers the simulation gives a meaning to.
const (
	regIntStatus  = 0x09
	regIntStatus2 = 0x0a
	regLatch      = 0x21
	latchReset    = 0x80
)

// MaxCustomAdvertisement is the size of a BLE advertising payload.
const MaxCustomAdvertisement = 31

// ANCS request commands.
const (
	ancsGetDetails    = 0
	ancsPerformAction = 2
)

var handlers = map[link.MessageID]handler{
	link.MsgUARTSleep: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		if len(data) < 1 || data[0] > byte(power.UARTSleepNever) {
			return nil, link.StatusInvalidArgs
		}
		st.UARTSleep = power.UARTSleepMode(data[0])
		return nil, link.StatusOK
	},
	link.MsgSleep: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		ms, err := link.DecodeUint32(link.MsgSleep, data)
		if err != nil {
			return nil, link.StatusInvalidArgs
		}
		st.Sleeps = append(st.Sleeps, ms)
		if st.UARTSleep == power.UARTSleepNormal {
			*after = func() { s.sleep(ms) }
		}
		return nil, link.StatusOK
	},
	link.MsgWakeOnConnect: setFlag(func(st *State) *bool { return &st.WakeOnConnect }),
	link.MsgConfigSave:    setFlag(func(st *State) *bool { return &st.ConfigSave }),

	link.MsgLedSet: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		led, err := link.DecodeLedSetting(data)
		if err != nil {
			return nil, link.StatusInvalidArgs
		}
		st.Led = led
		return nil, link.StatusOK
	},
	link.MsgLedSetSingle: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		if len(data) < 2 {
			return nil, link.StatusInvalidArgs
		}
		switch link.LedColor(data[0]) {
		case link.LedRed:
			st.Led.Red = data[1]
		case link.LedGreen:
			st.Led.Green = data[1]
		case link.LedBlue:
			st.Led.Blue = data[1]
		default:
			return nil, link.StatusInvalidArgs
		}
		return nil, link.StatusOK
	},
	link.MsgLedRead: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		return st.Led.Bytes(), link.StatusOK
	},

	link.MsgBatteryRead: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		return []byte{st.Battery}, link.StatusOK
	},
	link.MsgTempRead: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		return []byte{byte(st.Temperature)}, link.StatusOK
	},
	link.MsgAccelRead: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		return st.Accel.Bytes(), link.StatusOK
	},
	link.MsgAccelRegWrite: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		if len(data) < 2 || int(data[0]) >= AccelRegisters {
			return nil, link.StatusInvalidArgs
		}
		reg, val := data[0], data[1]
		if reg == regLatch && val&latchReset != 0 {
			st.AccelRegs[regIntStatus], st.AccelRegs[regIntStatus2] = 0, 0
			val &^= latchReset
		}
		st.AccelRegs[reg] = val
		return nil, link.StatusOK
	},
	link.MsgAccelRegRead: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		if len(data) < 2 || int(data[0])+int(data[1]) > AccelRegisters {
			return nil, link.StatusInvalidArgs
		}
		reg, n := int(data[0]), int(data[1])
		return append([]byte(nil), st.AccelRegs[reg:reg+n]...), link.StatusOK
	},
	link.MsgWakeOnAccel: setFlag(func(st *State) *bool { return &st.WakeOnAccel }),

	link.MsgAdvInterval: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		if len(data) < 2 {
			return nil, link.StatusInvalidArgs
		}
		st.AdvInterval = binary.LittleEndian.Uint16(data)
		st.Radio.AdvInterval = st.AdvInterval
		return nil, link.StatusOK
	},
	link.MsgAdvOnOff: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		adv, err := link.DecodeAdvOnOff(data)
		if err != nil {
			return nil, link.StatusInvalidArgs
		}
		st.Advertising, st.AdvTimer = adv.Enable, adv.Timer
		return nil, link.StatusOK
	},
	link.MsgBTStates: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		return link.BTStates{Advertising: st.Advertising, Connected: st.Connected}.Bytes(), link.StatusOK
	},
	link.MsgGATTRead: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		return []byte{byte(st.Services)}, link.StatusOK
	},
	link.MsgGATTWrite: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		if len(data) < 1 {
			return nil, link.StatusInvalidArgs
		}
		st.Services = link.Services(data[0])
		return nil, link.StatusOK
	},
	link.MsgScratchSet: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		if len(data) < 1 || len(data)-1 > link.MaxScratchSize {
			return nil, link.StatusInvalidArgs
		}
		bank, ok := scratchBank(data[0])
		if !ok {
			return nil, link.StatusInvalidArgs
		}
		st.Scratch[bank] = append([]byte(nil), data[1:]...)
		return nil, link.StatusOK
	},
	link.MsgScratchGet: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		if len(data) < 1 {
			return nil, link.StatusInvalidArgs
		}
		bank, ok := scratchBank(data[0])
		if !ok {
			return nil, link.StatusInvalidArgs
		}
		return append([]byte(nil), st.Scratch[bank]...), link.StatusOK
	},
	link.MsgLocalName: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		if len(data) > link.MaxLocalNameSize {
			data = data[:link.MaxLocalNameSize]
		}
		st.Radio.LocalName = string(data)
		return nil, link.StatusOK
	},
	link.MsgRadioConfig: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		return st.Radio.Bytes(), link.StatusOK
	},
	link.MsgBeaconParams: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		params, err := link.DecodeBeaconParams(data)
		if err != nil {
			return nil, link.StatusInvalidArgs
		}
		st.Beacon = params
		return nil, link.StatusOK
	},
	link.MsgBeaconEnable: setFlag(func(st *State) *bool { return &st.BeaconEnabled }),
	link.MsgCustomAdv: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		if len(data) > MaxCustomAdvertisement {
			return nil, link.StatusInvalidArgs
		}
		st.CustomAdv = append([]byte(nil), data...)
		return nil, link.StatusOK
	},
	link.MsgObserverStart: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		st.Observing = true
		return nil, link.StatusOK
	},
	link.MsgObserverStop: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		st.Observing = false
		return nil, link.StatusOK
	},
	link.MsgDisconnect: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		st.Connected = false
		return nil, link.StatusOK
	},

	link.MsgAncsAvailable: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		return []byte{byte(len(st.Ancs))}, link.StatusOK
	},
	link.MsgAncsRead: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		if len(data) < 1 {
			return nil, link.StatusInvalidArgs
		}
		var out []byte
		for len(st.Ancs) > 0 && len(out)+len(st.Ancs[0]) <= int(data[0]) {
			out = append(out, st.Ancs[0]...)
			st.Ancs = st.Ancs[1:]
		}
		return out, link.StatusOK
	},
	link.MsgAncsDetails: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		switch {
		case len(data) == 8 && data[0] == ancsGetDetails:
			uid := binary.LittleEndian.Uint32(data[1:])
			details := st.AncsDetails[uid]
			if n := int(data[6]); len(details) > n {
				details = details[:n]
			}
			st.ancsPending = append([]byte(nil), details...)
		case len(data) == 6 && data[0] == ancsPerformAction:
			if st.AncsActions == nil {
				st.AncsActions = make(map[uint32]byte)
			}
			st.AncsActions[binary.LittleEndian.Uint32(data[1:])] = data[5]
		default:
			return nil, link.StatusInvalidArgs
		}
		return nil, link.StatusOK
	},
	link.MsgAncsMessageRead: func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		if len(data) < 1 {
			return nil, link.StatusInvalidArgs
		}
		n := int(data[0])
		if n > len(st.ancsPending) {
			n = len(st.ancsPending)
		}
		out := st.ancsPending[:n]
		st.ancsPending = st.ancsPending[n:]
		return out, link.StatusOK
	},
}

func setFlag(field func(*State) *bool) handler {
	return func(s *Sim, st *State, data []byte, after *func()) ([]byte, byte) {
		if len(data) < 1 {
			return nil, link.StatusInvalidArgs
		}
		*field(st) = data[0] != 0
		return nil, link.StatusOK
	}
}

// scratchBank maps the 1-based bank number to an index.
func scratchBank(n byte) (int, bool) {
	if n < 1 || int(n) > link.NumScratchBanks {
		return 0, false
	}
	return int(n) - 1, true
}
