package pif

import (
	"fmt"
	"sync"
)

// Transport moves frames between the host and the PIF RAM.  Both directions
// are synchronous: a call returns only after the transfer completed, there is
// no cancellation.  Writing a frame with the execute status byte set makes
// the PIF run the contained joybus commands before the next read returns.
//
// A caller that gives up on a transfer must assume the PIF is in an
// inconsistent state and re-query all device statuses.
type Transport interface {
	// Write copies buf to the PIF RAM.
	Write(buf []byte) error
	// Read copies the PIF RAM into buf, after any pending joybus commands
	// were executed.
	Read(buf []byte) error
}

// Bus serializes all access to the PIF.  The joybus has no concept of
// concurrent exchanges; building, transferring and parsing a frame for one
// purpose must not interleave with another, so every exchange holds the
// bus-wide lock.
type Bus struct {
	mu sync.Mutex
	t  Transport
}

func NewBus(t Transport) *Bus {
	return &Bus{t: t}
}

// Run executes the frame's commands on the PIF and reads the responses back
// into the frame.
func (b *Bus) Run(f *Frame) error {
	return b.run(f, true)
}

// Readback re-executes the frame resident in the PIF RAM and reads the
// result, skipping the write transfer.  Only valid if the previous exchange
// ran the same frame.
func (b *Bus) Readback(f *Frame) error {
	return b.run(f, false)
}

func (b *Bus) run(f *Frame, write bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf := f.Bytes()
	if write {
		buf[FrameSize-1] = cmdExecute
		if err := b.t.Write(buf); err != nil {
			return fmt.Errorf("pif write: %w", err)
		}
	}
	if err := b.t.Read(buf); err != nil {
		return fmt.Errorf("pif read: %w", err)
	}
	return nil
}
