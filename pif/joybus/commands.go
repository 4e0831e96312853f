// Package joybus contains functions for creating and parsing of joybus
// commands as they are represented in the PIF RAM.  Each command carries a
// 2-byte header with the transmit and receive lengths, followed by the
// transmit data (beginning with the command id) and space for the response.
// It doesn't handle the execution of commands on the bus.
package joybus

import (
	"bytes"
	"errors"
	"strings"
)

var (
	ErrNoResponse      = errors.New("no response from device")
	ErrInvalidResponse = errors.New("invalid response")
	ErrHeader          = errors.New("invalid header")
	ErrChecksum        = errors.New("checksum mismatch")
	ErrDataLength      = errors.New("invalid data length")
	ErrUnknownCommand  = errors.New("unknown command id")
)

type Allocator interface {
	Alloc(n int) ([]byte, error)
}

// PIF-NUS special control bytes.  They have structural meaning in the frame
// and must never appear as a command's transmit length.
const (
	CtrlSkip  byte = 0x00 // skip this channel
	CtrlReset byte = 0xfd // reset this channel
	CtrlEnd   byte = 0xfe // end of frame
	CtrlNOP   byte = 0xff // padding, ignored
)

// ControlByte appends a single control byte to the frame.
func ControlByte(alloc Allocator, ctrl byte) error {
	b, err := alloc.Alloc(1)
	if err != nil {
		return err
	}
	b[0] = ctrl
	return nil
}

const headerLen = 3

// error bits set by the PIF in the upper bits of the receive length byte
const (
	flagNoResponse      = 0x80
	flagInvalidResponse = 0x40

	flagMask = 0xc0
)

// ChannelError is a command's error field shifted into the libultra nibble
// convention.
type ChannelError uint8

const (
	ChanSuccess    ChannelError = 0x0
	ChanOverrun    ChannelError = flagInvalidResponse >> 4 // 0x4
	ChanNoResponse ChannelError = flagNoResponse >> 4      // 0x8
)

// Err converts the channel error into a sentinel error, nil on success.
func (e ChannelError) Err() error {
	switch e {
	case ChanSuccess:
		return nil
	case ChanNoResponse:
		return ErrNoResponse
	default:
		return ErrInvalidResponse
	}
}

// RxError extracts the channel error from a command's receive length byte.
func RxError(rxSize byte) ChannelError {
	return ChannelError(rxSize&flagMask) >> 4
}

// Command ids as they appear on the wire.
const (
	CmdInfo       byte = 0x00
	CmdReadState  byte = 0x01
	CmdReadPak    byte = 0x02
	CmdWritePak   byte = 0x03
	CmdShortPoll  byte = 0x40
	CmdReadOrigin byte = 0x41
	CmdCalibrate  byte = 0x42
	CmdLongPoll   byte = 0x43
	CmdReset      byte = 0xff
)

// joybus command headers: tx length, rx length, command id
const (
	cmdReset      = "\x01\x03\xff"
	cmdInfo       = "\x01\x03\x00"
	cmdReadState  = "\x01\x04\x01"
	cmdReadPak    = "\x03\x21\x02"
	cmdWritePak   = "\x23\x01\x03"
	cmdShortPoll  = "\x03\x08\x40"
	cmdReadOrigin = "\x01\x0a\x41"
	cmdCalibrate  = "\x03\x0a\x42"
	cmdLongPoll   = "\x03\x0a\x43"
)

type Command []byte

func newCommand(alloc Allocator, cmd string) (Command, error) {
	c := Command(cmd)
	n := c.Size()
	buf, err := alloc.Alloc(n)
	if err != nil {
		return nil, err
	}
	copy(buf, []byte(c))
	c = buf[:n]
	c.Reset()
	return c, nil
}

// Reset fills the command's receive data with NOP bytes, marking it as not
// yet answered.
func (c Command) Reset() {
	rx := c.rxData()
	for i := range rx {
		rx[i] = CtrlNOP
	}
}

// ID returns the command id.
func (c Command) ID() byte {
	return c[2]
}

// Size returns the total number of bytes the command occupies in a frame.
func (c Command) Size() int {
	return 2 + int(c.txSize()) + int(c.rxSize())
}

// Error returns the channel error the PIF stored in the command's header.
func (c Command) Error() ChannelError {
	return RxError(c[1])
}

func (c Command) txSize() uint8 {
	return uint8(c[0])
}

func (c Command) txData() []byte {
	return c[headerLen-1 : headerLen-1+c.txSize()]
}

func (c Command) rxSize() uint8 {
	return uint8(c[1]) &^ flagMask
}

func (c Command) rxData() []byte {
	off := headerLen - 1 + c.txSize()
	return c[off : off+c.rxSize()]
}

func validate(c Command, header string) error {
	expected := []byte(header)
	got := [headerLen]byte{}
	copy(got[:], c)

	if !bytes.Equal(got[:], expected) {
		errFlags := got[1] & flagMask
		got[1] &^= errFlags
		if bytes.Equal(got[:], expected) {
			switch errFlags {
			case flagNoResponse:
				return ErrNoResponse
			case flagInvalidResponse:
				return ErrInvalidResponse
			}
		}
		return ErrHeader
	}

	return nil
}

// Device identifies the type of device answering on a channel, in libultra's
// byteswapped convention: the wire carries the low byte first.
type Device uint16

const (
	DeviceNull Device = 0xffff // nothing or not yet identified

	Controller Device = 0x0005
	VRU        Device = 0x0100
	Mouse      Device = 0x0002

	// ConsoleGCN marks devices that speak the GameCube flavor of the
	// protocol.
	ConsoleGCN Device = 0x0008

	GCNController Device = 0x0009
	GCNWaveBird   Device = 0x000a
)

// IsGCN reports whether the device uses the GameCube protocol.
func (d Device) IsGCN() bool {
	return d != DeviceNull && d&ConsoleGCN != 0
}

// Status holds the flags a device reports alongside its type in an info
// response.
type Status byte

const (
	PakInserted Status = 0x01 << iota // an accessory pak is present
	PakPulled                         // pak was swapped since the last query
	AddrCRCErr                        // last pak address had a bad checksum
)

type InfoCommand struct{ Command }

func NewInfoCommand(alloc Allocator) (InfoCommand, error) {
	cmd, err := newCommand(alloc, cmdInfo)
	return InfoCommand{cmd}, err
}

// Reset command has the same data layout as an Info command
func NewResetCommand(alloc Allocator) (InfoCommand, error) {
	cmd, err := newCommand(alloc, cmdReset)
	return InfoCommand{cmd}, err
}

// Info returns the byteswapped device type and the device's status flags.
func (c InfoCommand) Info() (dev Device, status Status, err error) {
	hdr := cmdInfo
	if c.ID() == CmdReset {
		hdr = cmdReset
	}
	if err = validate(c.Command, hdr); err != nil {
		return DeviceNull, 0, err
	}
	rx := c.rxData()
	return Device(uint16(rx[1])<<8 | uint16(rx[0])), Status(rx[2]), nil
}

type ButtonMask uint16

const (
	ButtonA ButtonMask = 1 << (15 - iota)
	ButtonB
	ButtonZ
	ButtonStart
	ButtonDUp
	ButtonDDown
	ButtonDLeft
	ButtonDRight
	ButtonReset // L+R+Start pressed simultaneously
	ButtonUnknown
	ButtonL
	ButtonR
	ButtonCUp
	ButtonCDown
	ButtonCLeft
	ButtonCRight
)

var buttonNames = [...]string{
	"A",
	"B",
	"Z",
	"Start",
	"↑",
	"↓",
	"←",
	"→",
	"Reset",
	"Unknown",
	"L",
	"R",
	"C↑",
	"C↓",
	"C←",
	"C→",
}

func (b ButtonMask) String() string {
	var sb strings.Builder
	for i, v := range buttonNames {
		if b&(1<<(15-i)) != 0 {
			if sb.Len() != 0 {
				sb.WriteString(" + ")
			}
			sb.WriteString(v)
		}
	}
	return sb.String()
}

type ControllerStateCommand struct{ Command }

func NewControllerStateCommand(alloc Allocator) (ControllerStateCommand, error) {
	cmd, err := newCommand(alloc, cmdReadState)
	return ControllerStateCommand{cmd}, err
}

func (c ControllerStateCommand) State() (b ButtonMask, x int8, y int8, err error) {
	if err = validate(c.Command, cmdReadState); err != nil {
		return
	}
	rx := c.rxData()
	return ButtonMask(uint16(rx[0])<<8 | uint16(rx[1])), int8(rx[2]), int8(rx[3]), nil
}
