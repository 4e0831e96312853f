package controller

import (
	"errors"
	"testing"

	"github.com/rovertronic/joybus/pif"
	"github.com/rovertronic/joybus/pif/joybus"
	"github.com/rovertronic/joybus/pif/piftest"
)

func rumbleSetup(t *testing.T) (*piftest.Pad64, *piftest.RumblePak, *Poller, *Pak) {
	t.Helper()
	pad := &piftest.Pad64{}
	rumble := &piftest.RumblePak{}
	pad.AttachPak(rumble)

	bus := pif.NewBus(piftest.New(pad))
	reg := &Registry{{Device: joybus.Controller, Plugged: true, Player: 1}}
	poller := NewPoller(bus, reg, testLogger())

	pak, err := NewPak(bus, 0)
	if err != nil {
		t.Fatal("pak:", err)
	}
	return pad, rumble, poller, pak
}

func TestMotorInitAndSet(t *testing.T) {
	pad, rumble, poller, pak := rumbleSetup(t)
	motor := poller.Motor(0)

	// The pak was just attached: the probing handshake sees the pulled
	// flag once and must retry.
	if err := motor.Init(pak); err != nil {
		t.Fatal("init:", err)
	}
	if rumble.Bank != 0x80 {
		t.Fatalf("probe block not selected: %#02x", rumble.Bank)
	}

	if err := motor.Start(); err != nil {
		t.Fatal("start:", err)
	}
	if rumble.Motor != 1 {
		t.Fatal("motor not running")
	}

	// A corrupted checksum acknowledge must surface, and a retry with the
	// cached frame must go through.
	pad.PakAckFault = true
	if err := motor.Stop(); !errors.Is(err, ErrPakCommunication) {
		t.Fatalf("expected %v, got %v", ErrPakCommunication, err)
	}
	if err := motor.Stop(); err != nil {
		t.Fatal("stop:", err)
	}
	if rumble.Motor != 0 {
		t.Fatal("motor still running")
	}
}

func TestMotorUninitialized(t *testing.T) {
	_, _, poller, _ := rumbleSetup(t)
	if err := poller.Motor(0).Start(); !errors.Is(err, ErrMotorOff) {
		t.Fatalf("expected %v, got %v", ErrMotorOff, err)
	}
}

func TestMotorInitTransferPak(t *testing.T) {
	pad := &piftest.Pad64{}
	pad.AttachPak(&piftest.TransferPak{})

	bus := pif.NewBus(piftest.New(pad))
	reg := &Registry{{Device: joybus.Controller, Plugged: true, Player: 1}}
	poller := NewPoller(bus, reg, testLogger())
	pak, err := NewPak(bus, 0)
	if err != nil {
		t.Fatal("pak:", err)
	}

	if err := poller.Motor(0).Init(pak); !errors.Is(err, ErrWrongDevice) {
		t.Fatalf("expected %v, got %v", ErrWrongDevice, err)
	}
}

func TestMotorGCNBypass(t *testing.T) {
	gcn := &piftest.PadGCN{
		Stick:  joybus.AxisPair[uint8]{X: 0x80, Y: 0x80},
		CStick: joybus.AxisPair[uint8]{X: 0x80, Y: 0x80},
	}
	reg := &Registry{{Device: joybus.GCNController, Plugged: true, Player: 1}}
	poller := NewPoller(pif.NewBus(piftest.New(gcn)), reg, testLogger())

	// No handshake and no pak access on GameCube ports.
	motor := poller.Motor(0)
	if err := motor.Init(nil); err != nil {
		t.Fatal("init:", err)
	}
	if err := motor.Set(joybus.MotorStart); err != nil {
		t.Fatal("set:", err)
	}

	// The state travels inside the next poll command.
	if _, err := poller.Poll(); err != nil {
		t.Fatal("poll:", err)
	}
	if gcn.Motor != joybus.MotorStart {
		t.Fatalf("expected motor start, got %v", gcn.Motor)
	}

	if err := motor.Set(joybus.MotorBrake); err != nil {
		t.Fatal("set:", err)
	}
	if _, err := poller.Poll(); err != nil {
		t.Fatal("poll:", err)
	}
	if gcn.Motor != joybus.MotorBrake {
		t.Fatalf("expected motor brake, got %v", gcn.Motor)
	}
}

type scriptPakIO struct {
	selects []error
	reads   []error
	id      byte
}

func (s *scriptPakIO) SelectBank(bank byte) error {
	err := s.selects[0]
	s.selects = s.selects[1:]
	return err
}

func (s *scriptPakIO) ReadBlock(addr uint16) (data [joybus.BlockSize]byte, err error) {
	err = s.reads[0]
	s.reads = s.reads[1:]
	data[joybus.BlockSize-1] = s.id
	return data, err
}

func TestMotorInitFaults(t *testing.T) {
	tests := map[string]struct {
		pak      scriptPakIO
		expected error
	}{
		"pulledDuringDetect": {
			scriptPakIO{selects: []error{nil}, reads: []error{ErrNewPak}, id: 0x80},
			ErrPakCommunication,
		},
		"pulledDuringSelect": {
			scriptPakIO{selects: []error{nil, ErrNewPak}, reads: []error{nil}, id: 0x80},
			ErrPakCommunication,
		},
		"unknownProbeID": {
			scriptPakIO{selects: []error{nil, nil}, reads: []error{nil, nil}, id: 0xff},
			ErrWrongDevice,
		},
		"noPak": {
			scriptPakIO{selects: []error{ErrNewPak, ErrNoPak}},
			ErrNoPak,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			reg := &Registry{{Device: joybus.Controller, Plugged: true, Player: 1}}
			poller := NewPoller(pif.NewBus(piftest.New()), reg, testLogger())

			motor := poller.Motor(0)
			if err := motor.Init(&tc.pak); !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
			if err := motor.Start(); !errors.Is(err, ErrMotorOff) {
				t.Fatal("motor must stay off after a failed handshake")
			}
		})
	}
}
