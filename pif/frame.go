// Package pif implements the framing layer of the joybus protocol: a fixed
// size command frame that is exchanged with the PIF over an external
// transport.  The PIF executes the joybus commands packed into the frame and
// writes each command's response back in place, so the same frame is used for
// building requests and parsing responses.
//
// Individual commands are encoded and decoded by package pif/joybus.
package pif

import "errors"

// FrameSize is the size of the PIF RAM in bytes.  Every transfer moves the
// whole frame.
const FrameSize = 64

// cmdExecute in the frame's status byte makes the PIF run the joybus
// commands resident in its RAM.
const cmdExecute byte = 0x01

var ErrFrameFull = errors.New("pif: command frame full")

// A Frame is an in-memory image of the PIF RAM.  Commands are appended with
// Alloc, which hands out slices of the frame's backing array.  Command views
// created during build stay valid after the frame was run, pointing at the
// response data.
//
// The last byte is reserved for the PIF status byte.
type Frame struct {
	buf [FrameSize]byte
	n   int
}

func NewFrame() *Frame {
	return &Frame{}
}

// Alloc reserves the next n bytes of the frame.
func (f *Frame) Alloc(n int) ([]byte, error) {
	if n > f.Free() {
		return nil, ErrFrameFull
	}
	b := f.buf[f.n : f.n+n]
	f.n += n
	return b, nil
}

// Free returns the number of bytes still available for commands.
func (f *Frame) Free() int {
	return len(f.buf) - f.n - 1 // status byte
}

// Len returns the number of bytes written so far.
func (f *Frame) Len() int {
	return f.n
}

// Reset zeroes the frame and rewinds the allocation cursor.
func (f *Frame) Reset() {
	clear(f.buf[:])
	f.n = 0
}

// Bytes returns the full frame, including unallocated space and the status
// byte.
func (f *Frame) Bytes() []byte {
	return f.buf[:]
}
