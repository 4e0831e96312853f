package joybus

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rovertronic/joybus/pif"
)

func TestPakSetAddress(t *testing.T) {
	// The lower 5 bits carry a checksum over the block-aligned address.
	tests := map[string]struct {
		addr     uint16
		expected [2]byte
	}{
		"probe":     {0x8000, [2]byte{0x80, 0x01}},
		"rumble":    {0xc000, [2]byte{0xc0, 0x1b}},
		"label":     {0x0000, [2]byte{0x00, 0x00}},
		"lowMasked": {0xc01f, [2]byte{0xc0, 0x1b}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := pif.NewFrame()
			cmd, err := NewReadPakCommand(f)
			if err != nil {
				t.Fatal(err)
			}
			cmd.SetAddress(tc.addr)
			tx := cmd.txData()
			if tx[1] != tc.expected[0] || tx[2] != tc.expected[1] {
				t.Fatalf("expected % x, got % x", tc.expected, tx[1:3])
			}
		})
	}
}

func TestDataChecksum(t *testing.T) {
	// The motor control acks are the checksums of the repeated motor
	// state byte: 0x00 after a stop block, 0xeb after a start block.
	stop := bytes.Repeat([]byte{0x00}, BlockSize)
	start := bytes.Repeat([]byte{0x01}, BlockSize)

	if got := DataChecksum(stop); got != 0x00 {
		t.Fatalf("stop block: expected 0x00, got %#02x", got)
	}
	if got := DataChecksum(start); got != 0xeb {
		t.Fatalf("start block: expected 0xeb, got %#02x", got)
	}
}

func TestReadPakData(t *testing.T) {
	f := pif.NewFrame()
	cmd, err := NewReadPakCommand(f)
	if err != nil {
		t.Fatal(err)
	}

	payload := bytes.Repeat([]byte{0x80}, BlockSize)
	rx := cmd.rxData()
	copy(rx, payload)
	rx[BlockSize] = DataChecksum(payload)

	data, err := cmd.Data()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("got % x", data)
	}

	rx[0] ^= 0xff
	if _, err := cmd.Data(); !errors.Is(err, ErrChecksum) {
		t.Fatalf("expected %v, got %v", ErrChecksum, err)
	}
}

func TestWritePakResult(t *testing.T) {
	f := pif.NewFrame()
	cmd, err := NewWritePakCommand(f)
	if err != nil {
		t.Fatal(err)
	}
	cmd.SetAddress(0xc000)

	payload := bytes.Repeat([]byte{0x01}, BlockSize)
	if err := cmd.SetData(payload); err != nil {
		t.Fatal(err)
	}
	if err := cmd.SetData(payload[:7]); !errors.Is(err, ErrDataLength) {
		t.Fatalf("expected %v, got %v", ErrDataLength, err)
	}

	cmd.rxData()[0] = 0xeb
	if err := cmd.Result(); err != nil {
		t.Fatal("correct ack:", err)
	}

	cmd.rxData()[0] = 0x14
	if err := cmd.Result(); !errors.Is(err, ErrChecksum) {
		t.Fatalf("expected %v, got %v", ErrChecksum, err)
	}
}
