package controller

import (
	"github.com/rovertronic/joybus/pif"
	"github.com/rovertronic/joybus/pif/joybus"
)

// DeviceStatus is one channel's decoded answer to a status query.
type DeviceStatus struct {
	// Type is the raw byteswapped device type, before any null-type
	// fallback was applied.  DeviceNull if the channel didn't answer.
	Type   joybus.Device
	Status joybus.Status
	Err    joybus.ChannelError
}

// BuildStatusFrame packs an info command for all four channels.
func BuildStatusFrame(f *pif.Frame) (cmds [NumPorts]joybus.InfoCommand, err error) {
	f.Reset()
	for i := range cmds {
		if cmds[i], err = joybus.NewInfoCommand(f); err != nil {
			return
		}
	}
	err = joybus.ControlByte(f, joybus.CtrlEnd)
	return
}

// ParseStatusFrame decodes the four fixed channel slots of a status response
// and updates the registry: answering channels get their device type and
// plugged flag set, silent channels are detached.  nullType replaces the
// null device type in the registry before classification.
//
// Returns a bitmask with one bit per answering channel, lowest port first.
func ParseStatusFrame(cmds *[NumPorts]joybus.InfoCommand, reg *Registry, nullType joybus.Device) (mask uint8, stats [NumPorts]DeviceStatus) {
	for i := range cmds {
		stats[i].Err = cmds[i].Error()
		dev, status, err := cmds[i].Info()
		if stats[i].Err != joybus.ChanSuccess || err != nil {
			stats[i].Type = joybus.DeviceNull
			reg.Detach(i)
			continue
		}

		stats[i].Type = dev
		stats[i].Status = status
		if dev == joybus.DeviceNull {
			// Some emulated PIFs answer with the null type if their
			// input backend isn't up yet.
			dev = nullType
		}
		reg[i].Device = dev
		reg[i].Plugged = true
		mask |= 1 << i
	}
	return
}
