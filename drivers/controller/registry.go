// Package controller translates between the PIF's command frames and a
// unified logical view of up to four controller channels.  It builds and
// parses the poll and status frames, normalizes standard and GameCube
// responses into one input record, and drives accessory pak rumble motors.
package controller

import "github.com/rovertronic/joybus/pif/joybus"

// NumPorts is the number of physical controller channels on the bus.
const NumPorts = 4

// Port holds what is known about one controller channel.  Ports are only
// written while holding the bus gate; there is no internal locking.
type Port struct {
	// Device is the identified device type, valid while Plugged.
	Device joybus.Device
	// Plugged is set by a successful status query and cleared when the
	// channel stops answering.
	Plugged bool
	// Player is the assigned player number, 1 to 4.  Unassigned ports are
	// skipped while polling unless the poller is status polling.
	Player uint8
	// Rumble is the motor state folded into the next GameCube poll
	// command.  Pak motors ignore it.
	Rumble joybus.Motor

	origins origins
}

// origins are the analog baselines captured from the first successful
// GameCube response after a connect.  They stay fixed until the channel
// errors or detaches.
type origins struct {
	initialized bool
	stick       joybus.AxisPair[uint8]
	cStick      joybus.AxisPair[uint8]
	trig        joybus.AxisPair[uint8]
}

// Registry is the shared per-channel state of the bus.
type Registry [NumPorts]Port

// Detach marks a port as unplugged and drops its calibration, forcing a
// fresh origin capture on the next connect.
func (r *Registry) Detach(port int) {
	r[port].Plugged = false
	r[port].origins = origins{}
}
