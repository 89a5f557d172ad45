package bean

import "github.com/robotalks/bean.go/pkg/link"

func (b *Bean) setLedSingle(color link.LedColor, intensity byte) {
	logFailure("led set "+color.String(), b.Serial.LedSetSingle(color, intensity))
}

// SetLedRed sets the red LED.
func (b *Bean) SetLedRed(intensity byte) {
	b.setLedSingle(link.LedRed, intensity)
}

// SetLedGreen sets the green LED.
func (b *Bean) SetLedGreen(intensity byte) {
	b.setLedSingle(link.LedGreen, intensity)
}

// SetLedBlue sets the blue LED.
func (b *Bean) SetLedBlue(intensity byte) {
	b.setLedSingle(link.LedBlue, intensity)
}

// SetLed sets all LEDs.
func (b *Bean) SetLed(red, green, blue byte) {
	logFailure("led set", b.Serial.LedSet(link.LedSetting{Red: red, Green: green, Blue: blue}))
}

// Led reads all LEDs.
func (b *Bean) Led() link.LedSetting {
	led, err := b.Serial.LedRead()
	if err != nil {
		return link.LedSetting{}
	}
	return led
}

// LedRed reads the red LED.
func (b *Bean) LedRed() byte { return b.Led().Red }

// LedGreen reads the green LED.
func (b *Bean) LedGreen() byte { return b.Led().Green }

// LedBlue reads the blue LED.
func (b *Bean) LedBlue() byte { return b.Led().Blue }
