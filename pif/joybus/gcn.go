package joybus

// GCNButton is the button bitfield of a GameCube poll response.
type GCNButton uint16

const (
	GCNErrStat GCNButton = 1 << (15 - iota)
	GCNErrLatch
	GCNGetOrigin // controller wants its origins read back
	GCNStart
	GCNY
	GCNX
	GCNB
	GCNA
	GCNUseOrigin
	GCNL
	GCNR
	GCNZ
	GCNDUp
	GCNDDown
	GCNDRight
	GCNDLeft
)

// AnalogMode selects how a GameCube controller packs the low-resolution
// analog fields of a short poll response.  The digits name the byte count of
// the c-stick, trigger and analog button fields: a "2" field carries 8 bits
// per axis, a "1" field packs two 4-bit samples into one byte.
type AnalogMode byte

const (
	Mode211 AnalogMode = iota
	Mode121
	Mode112
	Mode220 // no analog buttons
	Mode202 // no triggers, the pair reads as zero
	// Modes 5 to 7 repeat the Mode211 layout.
)

// Motor is a rumble motor state.  On GameCube controllers it is folded into
// every poll command; accessory pak motors only know stop and start.
type Motor byte

const (
	MotorStop Motor = iota
	MotorStart
	MotorBrake // stop the motor quickly, GameCube only
)

// GCNInput is a raw GameCube poll response.  All analog fields are widened
// to 8 bits but not yet centered.
type GCNInput struct {
	Buttons  GCNButton
	Stick    AxisPair[uint8]
	CStick   AxisPair[uint8]
	Trig     AxisPair[uint8]
	AnalogAB AxisPair[uint8] // analog A/B buttons, zero in modes 3 and 4
}

// GCNPollCommand reads a GameCube controller's input state.  The same
// wrapper handles the short poll, long poll and read origin commands, which
// share their response layout.
type GCNPollCommand struct{ Command }

// NewShortPollCommand creates the regular 8-byte poll.  The analog mode
// selects the response layout, motor is applied by the controller on
// reception.
func NewShortPollCommand(alloc Allocator, mode AnalogMode, motor Motor) (GCNPollCommand, error) {
	cmd, err := newCommand(alloc, cmdShortPoll)
	if err == nil {
		tx := cmd.txData()
		tx[1] = byte(mode)
		tx[2] = byte(motor)
	}
	return GCNPollCommand{cmd}, err
}

// NewLongPollCommand creates the 10-byte poll, which always returns full
// 8-bit resolution on every axis plus the analog A/B buttons.
func NewLongPollCommand(alloc Allocator, motor Motor) (GCNPollCommand, error) {
	cmd, err := newCommand(alloc, cmdLongPoll)
	if err == nil {
		tx := cmd.txData()
		tx[2] = byte(motor)
	}
	return GCNPollCommand{cmd}, err
}

// NewReadOriginCommand reads the controller's own notion of its analog
// origins, in the long poll layout.
func NewReadOriginCommand(alloc Allocator) (GCNPollCommand, error) {
	cmd, err := newCommand(alloc, cmdReadOrigin)
	return GCNPollCommand{cmd}, err
}

// Mode returns the analog mode of a short poll command.
func (c GCNPollCommand) Mode() AnalogMode {
	return AnalogMode(c.txData()[1])
}

func (c GCNPollCommand) header() string {
	switch c.ID() {
	case CmdLongPoll:
		return cmdLongPoll
	case CmdReadOrigin:
		return cmdReadOrigin
	default:
		return cmdShortPoll
	}
}

// Input decodes the response.  Packed 4-bit fields are widened to their full
// 8-bit span.
func (c GCNPollCommand) Input() (in GCNInput, err error) {
	if err = validate(c.Command, c.header()); err != nil {
		return
	}

	rx := c.rxData()
	in.Buttons = GCNButton(uint16(rx[0])<<8 | uint16(rx[1]))
	in.Stick = AxisPair[uint8]{rx[2], rx[3]}

	if c.ID() != CmdShortPoll {
		in.CStick = AxisPair[uint8]{rx[4], rx[5]}
		in.Trig = AxisPair[uint8]{rx[6], rx[7]}
		in.AnalogAB = AxisPair[uint8]{rx[8], rx[9]}
		return
	}

	switch c.Mode() {
	case Mode121:
		in.CStick = widenPacked(rx[4])
		in.Trig = AxisPair[uint8]{rx[5], rx[6]}
		in.AnalogAB = widenPacked(rx[7])
	case Mode112:
		in.CStick = widenPacked(rx[4])
		in.Trig = widenPacked(rx[5])
		in.AnalogAB = AxisPair[uint8]{rx[6], rx[7]}
	case Mode220:
		in.CStick = AxisPair[uint8]{rx[4], rx[5]}
		in.Trig = AxisPair[uint8]{rx[6], rx[7]}
	case Mode202:
		in.CStick = AxisPair[uint8]{rx[4], rx[5]}
		in.AnalogAB = AxisPair[uint8]{rx[6], rx[7]}
		// triggers read as zero in this mode
	default: // Mode211 and modes 5-7
		in.CStick = AxisPair[uint8]{rx[4], rx[5]}
		in.Trig = widenPacked(rx[6])
		in.AnalogAB = widenPacked(rx[7])
	}
	return
}
