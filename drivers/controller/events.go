package controller

import (
	"github.com/rovertronic/joybus/pif/joybus"
)

// Events tracks one port's state across poll cycles and derives edge
// transitions from it, like newly pressed buttons or a plugged pak.
type Events struct {
	current, last         Pad
	currentPlug, lastPlug bool
	currentPak, lastPak   bool
}

// Update feeds the result of one poll cycle.
func (e *Events) Update(pad Pad, port *Port) {
	e.last, e.current = e.current, pad
	e.lastPlug, e.currentPlug = e.currentPlug, port.Plugged
}

// UpdateStatus feeds the result of a status query.
func (e *Events) UpdateStatus(status DeviceStatus) {
	e.lastPak = e.currentPak
	e.currentPak = status.Status&joybus.PakInserted != 0
}

// Changed returns the buttons that changed state since the last cycle.
func (e *Events) Changed() joybus.ButtonMask {
	return e.current.Buttons ^ e.last.Buttons
}

// Pressed returns the buttons that went down since the last cycle.
func (e *Events) Pressed() joybus.ButtonMask {
	return e.Changed() & e.current.Buttons
}

// Released returns the buttons that went up since the last cycle.
func (e *Events) Released() joybus.ButtonMask {
	return e.Changed() & e.last.Buttons
}

// Down returns the currently held buttons.
func (e *Events) Down() joybus.ButtonMask {
	return e.current.Buttons
}

// Stick returns the current stick position.
func (e *Events) Stick() joybus.AxisPair[int8] {
	return e.current.Stick
}

// Delta returns the stick movement since the last cycle.
func (e *Events) Delta() joybus.AxisPair[int8] {
	return joybus.AxisPair[int8]{
		X: e.current.Stick.X - e.last.Stick.X,
		Y: e.current.Stick.Y - e.last.Stick.Y,
	}
}

// Plugged reports whether a controller appeared since the last cycle.
func (e *Events) Plugged() bool {
	return e.currentPlug && !e.lastPlug
}

// Unplugged reports whether the controller disappeared since the last cycle.
func (e *Events) Unplugged() bool {
	return !e.currentPlug && e.lastPlug
}

// PakInserted reports whether an accessory pak appeared since the last
// status query.
func (e *Events) PakInserted() bool {
	return e.currentPak && !e.lastPak
}

// PakRemoved reports whether the accessory pak disappeared since the last
// status query.
func (e *Events) PakRemoved() bool {
	return !e.currentPak && e.lastPak
}
