package bean

import "github.com/golang/glog"

// HIDBackend sends keyboard, mouse and consumer control reports.
// Key functions return a non-zero status on failure.
type HIDBackend interface {
	Press(key byte) int
	Release(key byte) int
	Write(key byte) int
	MoveMouse(x, y, wheel int8)
	ClickMouse(buttons byte)
	SendConsumerControl(cmd byte)
}

// hidStatusNoBackend is returned by key functions without a backend.
const hidStatusNoBackend = -1

func (b *Bean) hid() HIDBackend {
	if b.HID == nil {
		glog.V(1).Info("bean: no HID backend")
	}
	return b.HID
}

// HIDPressKey presses a key.
func (b *Bean) HIDPressKey(key byte) int {
	if h := b.hid(); h != nil {
		return h.Press(key)
	}
	return hidStatusNoBackend
}

// HIDReleaseKey releases a key.
func (b *Bean) HIDReleaseKey(key byte) int {
	if h := b.hid(); h != nil {
		return h.Release(key)
	}
	return hidStatusNoBackend
}

// HIDWriteKey presses and releases a key.
func (b *Bean) HIDWriteKey(key byte) int {
	if h := b.hid(); h != nil {
		return h.Write(key)
	}
	return hidStatusNoBackend
}

// HIDWrite types every byte of s. The statuses are or'ed.
func (b *Bean) HIDWrite(s string) int {
	h := b.hid()
	if h == nil {
		return hidStatusNoBackend
	}
	status := 0
	for i := 0; i < len(s); i++ {
		status |= h.Write(s[i])
	}
	return status
}

// HIDMoveMouse moves the mouse and scrolls.
func (b *Bean) HIDMoveMouse(x, y, wheel int8) {
	if h := b.hid(); h != nil {
		h.MoveMouse(x, y, wheel)
	}
}

// HIDClickMouse clicks mouse buttons.
func (b *Bean) HIDClickMouse(buttons byte) {
	if h := b.hid(); h != nil {
		h.ClickMouse(buttons)
	}
}

// HIDSendConsumerControl sends a consumer control command.
func (b *Bean) HIDSendConsumerControl(cmd byte) {
	if h := b.hid(); h != nil {
		h.SendConsumerControl(cmd)
	}
}
