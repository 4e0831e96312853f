package controller

import (
	"fmt"

	"github.com/rovertronic/joybus/pif"
	"github.com/rovertronic/joybus/pif/joybus"
)

// Pak provides raw block access to the accessory slot of a standard
// controller and implements PakIO.  The filesystem living on memory paks is
// not interpreted here, only 32-byte block transfers with their address and
// data checksums.
type Pak struct {
	bus  *pif.Bus
	port int

	readFrame  *pif.Frame
	writeFrame *pif.Frame
	infoFrame  *pif.Frame
	readCmd    joybus.ReadPakCommand
	writeCmd   joybus.WritePakCommand
	infoCmd    joybus.InfoCommand
}

func skipChannels(f *pif.Frame, n int) error {
	for i := 0; i < n; i++ {
		if err := joybus.ControlByte(f, joybus.CtrlSkip); err != nil {
			return err
		}
	}
	return nil
}

// NewPak returns pak access for the given port.  The command frames are
// built once and reused for every transfer.
func NewPak(bus *pif.Bus, port int) (pak *Pak, err error) {
	pak = &Pak{
		bus:        bus,
		port:       port,
		readFrame:  pif.NewFrame(),
		writeFrame: pif.NewFrame(),
		infoFrame:  pif.NewFrame(),
	}

	if err = skipChannels(pak.readFrame, port); err != nil {
		return nil, err
	}
	if pak.readCmd, err = joybus.NewReadPakCommand(pak.readFrame); err != nil {
		return nil, err
	}
	if err = joybus.ControlByte(pak.readFrame, joybus.CtrlEnd); err != nil {
		return nil, err
	}

	if err = skipChannels(pak.writeFrame, port); err != nil {
		return nil, err
	}
	if pak.writeCmd, err = joybus.NewWritePakCommand(pak.writeFrame); err != nil {
		return nil, err
	}
	if err = joybus.ControlByte(pak.writeFrame, joybus.CtrlEnd); err != nil {
		return nil, err
	}

	if err = skipChannels(pak.infoFrame, port); err != nil {
		return nil, err
	}
	if pak.infoCmd, err = joybus.NewInfoCommand(pak.infoFrame); err != nil {
		return nil, err
	}
	if err = joybus.ControlByte(pak.infoFrame, joybus.CtrlEnd); err != nil {
		return nil, err
	}

	return pak, nil
}

// ReadBlock reads one block of the accessory address space.
func (p *Pak) ReadBlock(addr uint16) (data [joybus.BlockSize]byte, err error) {
	p.readCmd.Reset()
	p.readCmd.SetAddress(addr)
	if err = p.bus.Run(p.readFrame); err != nil {
		return
	}

	if e := p.readCmd.Error(); e != joybus.ChanSuccess {
		return data, e.Err()
	}
	rx, derr := p.readCmd.Data()
	if derr != nil {
		return data, fmt.Errorf("%w: read block %#04x", ErrPakCommunication, addr)
	}
	copy(data[:], rx)
	return data, nil
}

// WriteBlock writes one block of the accessory address space and verifies
// the pak's checksum acknowledge.
func (p *Pak) WriteBlock(addr uint16, data [joybus.BlockSize]byte) error {
	p.writeCmd.Reset()
	p.writeCmd.SetAddress(addr)
	if err := p.writeCmd.SetData(data[:]); err != nil {
		return err
	}
	if err := p.bus.Run(p.writeFrame); err != nil {
		return err
	}

	if e := p.writeCmd.Error(); e != joybus.ChanSuccess {
		return e.Err()
	}
	if err := p.writeCmd.Result(); err != nil {
		return fmt.Errorf("%w: write block %#04x", ErrPakCommunication, addr)
	}
	return nil
}

// status queries the port's accessory flags.
func (p *Pak) status() (joybus.Status, error) {
	p.infoCmd.Reset()
	if err := p.bus.Run(p.infoFrame); err != nil {
		return 0, err
	}
	_, s, err := p.infoCmd.Info()
	return s, err
}

// SelectBank writes a probe or bank id to the probe block.  The following
// status query catches paks that were swapped or removed underneath:
// ErrNewPak respectively ErrNoPak.
func (p *Pak) SelectBank(bank byte) error {
	var data [joybus.BlockSize]byte
	for i := range data {
		data[i] = bank
	}
	werr := p.WriteBlock(pakProbeAddr, data)

	s, err := p.status()
	if err != nil {
		return err
	}
	if s&joybus.PakInserted == 0 {
		return ErrNoPak
	}
	if s&joybus.PakPulled != 0 {
		return ErrNewPak
	}
	return werr
}
