package joybus

import "github.com/sigurn/crc8"

// BlockSize is the payload size of a single pak read or write command.
const BlockSize = 32

type PakCommand struct{ Command }

// SetAddress sets the pak address to access.  The lower 5 bits hold a
// checksum over the block-aligned address.
func (c PakCommand) SetAddress(addr uint16) {
	// calculate checksum in lower 5 bits
	addr &^= 0x1f
	const lut = "\x01\x1a\x0d\x1c\x0e\x07\x19\x16\x0b\x1f\x15"
	for i, v := range lut {
		if addr&(0x1<<(15-i)) != 0 {
			addr ^= uint16(v)
		}
	}
	tx := c.txData()
	tx[1] = byte(addr >> 8)
	tx[2] = byte(addr)
}

var pakCRC8 = crc8.MakeTable(crc8.Params{Poly: 0x85, Init: 0x00, RefIn: false, RefOut: false, XorOut: 0x00, Check: 0xF4, Name: "CRC-8 N64 Pak"})

// DataChecksum returns the checksum a pak answers a block transfer with.
func DataChecksum(data []byte) byte {
	csum := crc8.Init(pakCRC8)
	csum = crc8.Update(csum, data, pakCRC8)
	return crc8.Complete(csum, pakCRC8)
}

type ReadPakCommand struct{ PakCommand }

func NewReadPakCommand(alloc Allocator) (ReadPakCommand, error) {
	cmd, err := newCommand(alloc, cmdReadPak)
	return ReadPakCommand{PakCommand{cmd}}, err
}

func (c ReadPakCommand) Data() (data []byte, err error) {
	err = validate(c.Command, cmdReadPak)
	if err != nil {
		return
	}

	data = c.rxData()
	data = data[:len(data)-1] // exclude checksum byte

	if DataChecksum(data) != c.rxData()[len(data)] {
		err = ErrChecksum
	}

	return
}

type WritePakCommand struct {
	PakCommand
	csum byte
}

func NewWritePakCommand(alloc Allocator) (WritePakCommand, error) {
	cmd, err := newCommand(alloc, cmdWritePak)
	return WritePakCommand{PakCommand{cmd}, 0}, err
}

// SetData fills the command's payload.  len(src) must match the block size.
func (c *WritePakCommand) SetData(src []byte) (err error) {
	err = validate(c.Command, cmdWritePak)
	if err != nil {
		return
	}

	data := c.txData()
	data = data[3:] // exclude cmd id and addr

	if len(src) != len(data) {
		return ErrDataLength
	}

	copy(data, src)
	c.csum = DataChecksum(data)

	return
}

// Result checks the checksum the pak acknowledged the write with.
func (c WritePakCommand) Result() error {
	err := validate(c.Command, cmdWritePak)
	if err != nil {
		return err
	} else if c.rxData()[0] != c.csum {
		return ErrChecksum
	}
	return nil
}
