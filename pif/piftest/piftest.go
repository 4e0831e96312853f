// Package piftest provides an in-memory PIF and virtual joybus devices,
// allowing full build/transfer/parse cycles to run without hardware.
package piftest

import (
	"encoding/binary"

	"github.com/rovertronic/joybus/pif"
	"github.com/rovertronic/joybus/pif/joybus"
)

// A Device answers joybus commands on one channel.
type Device interface {
	// Exec runs one command addressed to the device.  tx is the transmit
	// data beginning with the command id, rx the response space to fill.
	Exec(tx, rx []byte) joybus.ChannelError
}

// DeviceFunc adapts a function to the Device interface.
type DeviceFunc func(tx, rx []byte) joybus.ChannelError

func (f DeviceFunc) Exec(tx, rx []byte) joybus.ChannelError {
	return f(tx, rx)
}

// PIF is a simulated PIF implementing pif.Transport.  Reading back a frame
// executes the resident commands against the attached devices, like the
// real PIF re-runs its RAM on every read transfer.  Empty channels answer
// with the no-response error.
type PIF struct {
	Devices [4]Device

	ram [pif.FrameSize]byte
}

func New(devices ...Device) *PIF {
	p := &PIF{}
	copy(p.Devices[:], devices)
	return p
}

func (p *PIF) Write(buf []byte) error {
	copy(p.ram[:], buf)
	return nil
}

func (p *PIF) Read(buf []byte) error {
	p.exec()
	copy(buf, p.ram[:])
	return nil
}

func (p *PIF) exec() {
	ram := p.ram[:]
	ch := 0
	for off := 0; off < len(ram); {
		switch ram[off] {
		case joybus.CtrlEnd:
			return
		case joybus.CtrlSkip, joybus.CtrlReset:
			ch++
			off++
			continue
		case joybus.CtrlNOP:
			off++
			continue
		}

		if off+2 > len(ram) {
			return
		}
		tx := int(ram[off])
		rx := int(ram[off+1] & 0x3f)
		if off+2+tx+rx > len(ram) {
			return
		}
		txData := ram[off+2 : off+2+tx]
		rxData := ram[off+2+tx : off+2+tx+rx]

		var e joybus.ChannelError
		if ch >= len(p.Devices) || p.Devices[ch] == nil {
			e = joybus.ChanNoResponse
		} else {
			e = p.Devices[ch].Exec(txData, rxData)
		}
		ram[off+1] = byte(rx) | byte(e)<<4

		off += 2 + tx + rx
		ch++
	}
}

// Accessory pak probe semantics, as seen through a Pad64's slot.
const (
	probeAddr  uint16 = 0x8000
	rumbleAddr uint16 = 0xc000

	idRumble      byte = 0x80
	idTransferOn  byte = 0x84
	idTransferOff byte = 0xfe
)

// A PakDevice is an accessory plugged into a Pad64's slot.  Addresses are
// block-aligned, buffers are one block long.
type PakDevice interface {
	Read(addr uint16, dst []byte)
	Write(addr uint16, src []byte)
}

// Pad64 is a virtual standard controller with an optional accessory pak.
type Pad64 struct {
	Buttons joybus.ButtonMask
	X, Y    int8

	// PakAckFault corrupts the checksum acknowledge of the next pak
	// write, simulating a flaky slot contact.
	PakAckFault bool

	pak    PakDevice
	pulled bool
}

// AttachPak puts a pak into the controller's slot.  The swap is reported
// once through the pulled status flag, like on real hardware.
func (p *Pad64) AttachPak(pak PakDevice) {
	p.pak = pak
	p.pulled = true
}

// RemovePak empties the slot.
func (p *Pad64) RemovePak() {
	p.pak = nil
	p.pulled = true
}

func (p *Pad64) Exec(tx, rx []byte) joybus.ChannelError {
	switch tx[0] {
	case joybus.CmdInfo, joybus.CmdReset:
		rx[0], rx[1] = 0x05, 0x00
		var s joybus.Status
		if p.pak != nil {
			s |= joybus.PakInserted
		}
		if p.pulled {
			s |= joybus.PakPulled
			p.pulled = false
		}
		rx[2] = byte(s)
	case joybus.CmdReadState:
		binary.BigEndian.PutUint16(rx[0:2], uint16(p.Buttons))
		rx[2] = byte(p.X)
		rx[3] = byte(p.Y)
	case joybus.CmdReadPak:
		addr := uint16(tx[1])<<8 | uint16(tx[2])&^0x1f
		data := rx[:len(rx)-1]
		csum := byte(0)
		if p.pak != nil {
			p.pak.Read(addr, data)
			csum = joybus.DataChecksum(data)
		} else {
			for i := range data {
				data[i] = 0xff
			}
			csum = ^joybus.DataChecksum(data)
		}
		rx[len(rx)-1] = csum
	case joybus.CmdWritePak:
		addr := uint16(tx[1])<<8 | uint16(tx[2])&^0x1f
		data := tx[3:]
		csum := joybus.DataChecksum(data)
		if p.pak != nil {
			p.pak.Write(addr, data)
		} else {
			csum = ^csum
		}
		if p.PakAckFault {
			p.PakAckFault = false
			csum = ^csum
		}
		rx[0] = csum
	default:
		return joybus.ChanNoResponse
	}
	return joybus.ChanSuccess
}

// RumblePak is a virtual rumble pak.  It identifies through the probe block
// and latches motor writes.
type RumblePak struct {
	Motor byte // last motor state written
	Bank  byte // last probe value written
}

func (r *RumblePak) Read(addr uint16, dst []byte) {
	fill := byte(0)
	if addr == probeAddr {
		fill = idRumble
	}
	for i := range dst {
		dst[i] = fill
	}
}

func (r *RumblePak) Write(addr uint16, src []byte) {
	switch addr {
	case probeAddr:
		r.Bank = src[len(src)-1]
	case rumbleAddr:
		r.Motor = src[len(src)-1] & 1
	}
}

// TransferPak is a virtual transfer pak, modelling only its power state.
type TransferPak struct {
	On bool
}

func (t *TransferPak) Read(addr uint16, dst []byte) {
	fill := byte(0)
	if addr == probeAddr {
		fill = idTransferOff
		if t.On {
			fill = idTransferOn
		}
	}
	for i := range dst {
		dst[i] = fill
	}
}

func (t *TransferPak) Write(addr uint16, src []byte) {
	if addr != probeAddr {
		return
	}
	switch src[len(src)-1] {
	case idTransferOn:
		t.On = true
	case idTransferOff:
		t.On = false
	}
}

// PadGCN is a virtual GameCube controller.  Poll responses are packed
// according to the requested analog mode.
type PadGCN struct {
	Buttons  joybus.GCNButton
	Stick    joybus.AxisPair[uint8]
	CStick   joybus.AxisPair[uint8]
	Trig     joybus.AxisPair[uint8]
	AnalogAB joybus.AxisPair[uint8]

	Motor joybus.Motor // latched from the last poll command
}

// pack4 packs the high nibbles of two samples into one byte.
func pack4(x, y uint8) byte {
	return x&0xf0 | y>>4
}

func (p *PadGCN) Exec(tx, rx []byte) joybus.ChannelError {
	switch tx[0] {
	case joybus.CmdInfo, joybus.CmdReset:
		rx[0], rx[1], rx[2] = 0x09, 0x00, 0x00
	case joybus.CmdShortPoll:
		p.Motor = joybus.Motor(tx[2])
		binary.BigEndian.PutUint16(rx[0:2], uint16(p.Buttons))
		rx[2], rx[3] = p.Stick.X, p.Stick.Y
		switch joybus.AnalogMode(tx[1]) {
		case joybus.Mode121:
			rx[4] = pack4(p.CStick.X, p.CStick.Y)
			rx[5], rx[6] = p.Trig.X, p.Trig.Y
			rx[7] = pack4(p.AnalogAB.X, p.AnalogAB.Y)
		case joybus.Mode112:
			rx[4] = pack4(p.CStick.X, p.CStick.Y)
			rx[5] = pack4(p.Trig.X, p.Trig.Y)
			rx[6], rx[7] = p.AnalogAB.X, p.AnalogAB.Y
		case joybus.Mode220:
			rx[4], rx[5] = p.CStick.X, p.CStick.Y
			rx[6], rx[7] = p.Trig.X, p.Trig.Y
		case joybus.Mode202:
			rx[4], rx[5] = p.CStick.X, p.CStick.Y
			rx[6], rx[7] = p.AnalogAB.X, p.AnalogAB.Y
		default: // Mode211 and modes 5-7
			rx[4], rx[5] = p.CStick.X, p.CStick.Y
			rx[6] = pack4(p.Trig.X, p.Trig.Y)
			rx[7] = pack4(p.AnalogAB.X, p.AnalogAB.Y)
		}
	case joybus.CmdLongPoll, joybus.CmdReadOrigin:
		if tx[0] == joybus.CmdLongPoll {
			p.Motor = joybus.Motor(tx[2])
		}
		binary.BigEndian.PutUint16(rx[0:2], uint16(p.Buttons))
		rx[2], rx[3] = p.Stick.X, p.Stick.Y
		rx[4], rx[5] = p.CStick.X, p.CStick.Y
		rx[6], rx[7] = p.Trig.X, p.Trig.Y
		rx[8], rx[9] = p.AnalogAB.X, p.AnalogAB.Y
	default:
		return joybus.ChanNoResponse
	}
	return joybus.ChanSuccess
}
