package controller

import (
	"errors"
	"fmt"

	"github.com/rovertronic/joybus/pif"
	"github.com/rovertronic/joybus/pif/joybus"
)

var (
	ErrNoPak            = errors.New("no accessory pak")
	ErrNewPak           = errors.New("accessory pak changed")
	ErrWrongDevice      = errors.New("wrong accessory device")
	ErrPakCommunication = errors.New("accessory pak communication error")
	ErrMotorOff         = errors.New("rumble motor not initialized")
)

// Accessory address space.  The probe block identifies the pak type and,
// for paks that support it, selects the active bank; the rumble block
// controls the motor.
const (
	pakLabelAddr  uint16 = 0x0000
	pakProbeAddr  uint16 = 0x8000
	pakRumbleAddr uint16 = 0xc000
)

// Accessory ids read back from the probe block.
const (
	pakIDRumble      byte = 0x80
	pakIDTransferOff byte = 0xfe // writing it also powers a transfer pak off
	pakIDNull        byte = 0xff
)

// PakIO is the accessory collaborator used while probing for a rumble pak.
// SelectBank writes a probe or bank id; ReadBlock reads one block of the
// accessory address space.  Implementations report pak swaps as ErrNewPak.
type PakIO interface {
	SelectBank(bank byte) error
	ReadBlock(addr uint16) ([joybus.BlockSize]byte, error)
}

// Motor drives one channel's rumble motor.  Accessory pak motors need a
// probing handshake via Init before use; GameCube controllers multiplex
// rumble into the regular poll command and skip the handshake.
type Motor struct {
	poller *Poller
	port   int

	initialized bool
	frame       *pif.Frame
	cmd         joybus.WritePakCommand
}

// Motor returns the rumble motor of the given port.
func (p *Poller) Motor(port int) *Motor {
	return &Motor{poller: p, port: port}
}

// Init verifies that the accessory on the motor's port is a rumble pak and
// caches the motor command frame.  pak is only accessed for standard
// protocol ports.
//
// A pak that identifies as something else fails with ErrWrongDevice; a pak
// swap mid-handshake fails with ErrPakCommunication.
func (m *Motor) Init(pak PakIO) error {
	m.initialized = false
	if m.poller.reg[m.port].Device.IsGCN() {
		m.initialized = true
		return nil
	}

	// Make sure a transfer pak is powered off before probing.
	err := pak.SelectBank(pakIDTransferOff)
	if errors.Is(err, ErrNewPak) {
		err = pak.SelectBank(pakIDRumble)
	}
	if err != nil {
		return err
	}

	data, err := pak.ReadBlock(pakProbeAddr)
	if errors.Is(err, ErrNewPak) {
		err = ErrPakCommunication
	}
	if err != nil {
		return err
	}
	if data[joybus.BlockSize-1] == pakIDTransferOff {
		return fmt.Errorf("%w: transfer pak", ErrWrongDevice)
	}

	if err = pak.SelectBank(pakIDRumble); err != nil {
		if errors.Is(err, ErrNewPak) {
			err = ErrPakCommunication
		}
		return err
	}

	data, err = pak.ReadBlock(pakProbeAddr)
	if errors.Is(err, ErrNewPak) {
		err = ErrPakCommunication
	}
	if err != nil {
		return err
	}
	if data[joybus.BlockSize-1] != pakIDRumble {
		return fmt.Errorf("%w: probe id %#02x", ErrWrongDevice, data[joybus.BlockSize-1])
	}

	if m.frame == nil {
		if err := m.makeMotorFrame(); err != nil {
			return err
		}
	}
	m.initialized = true
	return nil
}

// makeMotorFrame builds the reusable motor command: skip bytes for the lower
// channels, an alignment byte and a pak write addressed to the rumble block.
func (m *Motor) makeMotorFrame() error {
	f := pif.NewFrame()
	for i := 0; i < m.port; i++ {
		if err := joybus.ControlByte(f, joybus.CtrlSkip); err != nil {
			return err
		}
	}
	if err := joybus.ControlByte(f, joybus.CtrlNOP); err != nil {
		return err
	}
	cmd, err := joybus.NewWritePakCommand(f)
	if err != nil {
		return err
	}
	cmd.SetAddress(pakRumbleAddr)
	if err := joybus.ControlByte(f, joybus.CtrlEnd); err != nil {
		return err
	}
	m.frame, m.cmd = f, cmd
	return nil
}

// Set drives the motor.  MotorBrake is only meaningful on GameCube
// controllers; pak motors treat it as stop.
//
// For pak motors the accessory acknowledges the command with a checksum
// that depends on the written state; a mismatch returns
// ErrPakCommunication.  The cached command frame stays valid, the caller
// may retry.
func (m *Motor) Set(state joybus.Motor) error {
	if !m.initialized {
		return ErrMotorOff
	}
	port := &m.poller.reg[m.port]

	if port.Device.IsGCN() {
		port.Rumble = state
		m.poller.Invalidate()
		return nil
	}

	state &= joybus.MotorStart // pak motors only know stop and start

	var data [joybus.BlockSize]byte
	for i := range data {
		data[i] = byte(state)
	}
	if err := m.cmd.SetData(data[:]); err != nil {
		return err
	}

	m.poller.Invalidate()
	if err := m.poller.bus.Run(m.frame); err != nil {
		return err
	}

	if e := m.cmd.Error(); e != joybus.ChanSuccess {
		return e.Err()
	}
	if err := m.cmd.Result(); err != nil {
		return fmt.Errorf("%w: bad motor ack", ErrPakCommunication)
	}
	return nil
}

// Start and Stop are shorthands for Set.
func (m *Motor) Start() error { return m.Set(joybus.MotorStart) }
func (m *Motor) Stop() error  { return m.Set(joybus.MotorStop) }
