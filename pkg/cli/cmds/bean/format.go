package bean

import (
	"fmt"

	"github.com/robotalks/bean.go/pkg/cli/sh"
	"github.com/robotalks/bean.go/pkg/l1/msgs"
)

// FormatLed prints the LED color as #rrggbb.
func FormatLed(led *msgs.LedState) string {
	return fmt.Sprintf("led #%02x%02x%02x", led.Red, led.Green, led.Blue)
}

// FormatBattery prints level, voltage (reported in centivolts) and
// temperature.
func FormatBattery(bat *msgs.BatteryState) string {
	return fmt.Sprintf("battery %d%% %d.%02dV %d°C",
		bat.Level, bat.Voltage/100, bat.Voltage%100, bat.Temperature)
}

// FormatAccel prints the acceleration in raw units and the range in g.
func FormatAccel(a *msgs.Acceleration) string {
	return fmt.Sprintf("accel x=%d y=%d z=%d ±%dg", a.X, a.Y, a.Z, a.Sensitivity)
}

// FormatSleep prints the result of a sleep request.
func FormatSleep(r *msgs.SleepResult) string {
	if !r.Slept {
		return fmt.Sprintf("not slept after %d attempts", r.Attempts)
	}
	return fmt.Sprintf("slept, %d attempts", r.Attempts)
}

func init() {
	sh.RegisterFormatter(FormatLed)
	sh.RegisterFormatter(FormatBattery)
	sh.RegisterFormatter(FormatAccel)
	sh.RegisterFormatter(FormatSleep)
	sh.RegisterFormatter(func(r *msgs.BeanStatusReply) string {
		if r.Status == nil {
			return "status unknown"
		}
		st := &msgs.BeanStatus{}
		st.BeanStatus = *r.Status
		return "status " + sh.FormatStatus(st)
	})
}
