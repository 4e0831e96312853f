package controller

import (
	"errors"
	"testing"

	"github.com/rovertronic/joybus/pif"
	"github.com/rovertronic/joybus/pif/joybus"
	"github.com/rovertronic/joybus/pif/piftest"
)

// memPak is a virtual memory pak backed by a block map.
type memPak map[uint16][joybus.BlockSize]byte

func (m memPak) Read(addr uint16, dst []byte) {
	b := m[addr]
	copy(dst, b[:])
}

func (m memPak) Write(addr uint16, src []byte) {
	var b [joybus.BlockSize]byte
	copy(b[:], src)
	m[addr] = b
}

func TestPakBlockRoundTrip(t *testing.T) {
	pad := &piftest.Pad64{}
	pad.AttachPak(memPak{})

	// Port 1, so the frame carries a channel skip.
	pak, err := NewPak(pif.NewBus(piftest.New(nil, pad)), 1)
	if err != nil {
		t.Fatal("pak:", err)
	}

	var block [joybus.BlockSize]byte
	for i := range block {
		block[i] = byte(i)
	}
	if err := pak.WriteBlock(0x0100, block); err != nil {
		t.Fatal("write:", err)
	}
	data, err := pak.ReadBlock(0x0100)
	if err != nil {
		t.Fatal("read:", err)
	}
	if data != block {
		t.Fatalf("got % x", data)
	}

	// An address with the checksum bits set hits the same block.
	data, err = pak.ReadBlock(0x011f)
	if err != nil {
		t.Fatal("read:", err)
	}
	if data != block {
		t.Fatalf("aliased read: % x", data)
	}
}

func TestPakEmptySlot(t *testing.T) {
	pak, err := NewPak(pif.NewBus(piftest.New(&piftest.Pad64{})), 0)
	if err != nil {
		t.Fatal("pak:", err)
	}

	// An empty slot answers reads with garbage and a wrong checksum.
	if _, err := pak.ReadBlock(0x0000); !errors.Is(err, ErrPakCommunication) {
		t.Fatalf("expected %v, got %v", ErrPakCommunication, err)
	}
	if err := pak.SelectBank(0xfe); !errors.Is(err, ErrNoPak) {
		t.Fatalf("expected %v, got %v", ErrNoPak, err)
	}
}

func TestPakSelectBankReportsSwap(t *testing.T) {
	pad := &piftest.Pad64{}
	pak, err := NewPak(pif.NewBus(piftest.New(pad)), 0)
	if err != nil {
		t.Fatal("pak:", err)
	}

	pad.AttachPak(memPak{})
	if err := pak.SelectBank(0xfe); !errors.Is(err, ErrNewPak) {
		t.Fatalf("expected %v, got %v", ErrNewPak, err)
	}
	if err := pak.SelectBank(0xfe); err != nil {
		t.Fatal("second select:", err)
	}

	pad.RemovePak()
	if err := pak.SelectBank(0xfe); !errors.Is(err, ErrNoPak) {
		t.Fatalf("expected %v, got %v", ErrNoPak, err)
	}
}

func TestPakSilentChannel(t *testing.T) {
	pak, err := NewPak(pif.NewBus(piftest.New()), 0)
	if err != nil {
		t.Fatal("pak:", err)
	}
	if _, err := pak.ReadBlock(0x0000); !errors.Is(err, joybus.ErrNoResponse) {
		t.Fatalf("expected %v, got %v", joybus.ErrNoResponse, err)
	}
}
