package controller

import "github.com/rovertronic/joybus/pif/joybus"

// Analog thresholds used when translating GameCube inputs.  Tests exercise
// their boundary values, keep comparisons strict.
const (
	// CStickThresholdY and CStickThresholdX are the centered c-stick
	// deflections beyond which the synthesized C buttons register.
	CStickThresholdY int8 = 38
	CStickThresholdX int8 = 38

	// TriggerThreshold is the raw left trigger travel beyond which Z is
	// considered pressed, in addition to the digital L bit.
	TriggerThreshold uint8 = 85
)

// Pad is the unified per-channel input record.  It is overwritten on every
// poll cycle; callers that need history must copy it.
type Pad struct {
	Buttons joybus.ButtonMask
	// Stick and CStick are centered against the port's origins.
	Stick  joybus.AxisPair[int8]
	CStick joybus.AxisPair[int8]
	// Trig is the centered analog trigger pair.
	Trig joybus.AxisPair[uint8]
	// Err is the channel error of the poll that produced this record.
	Err joybus.ChannelError
}

func centerS8(raw, origin joybus.AxisPair[uint8]) joybus.AxisPair[int8] {
	c := raw.Center(origin)
	return joybus.AxisPair[int8]{X: int8(c.X), Y: int8(c.Y)}
}

// readState writes a standard controller response into pad.  The protocol
// carries no c-stick or trigger axes, they are defined as zero.
func readState(pad *Pad, b joybus.ButtonMask, x, y int8) {
	pad.Buttons = b
	pad.Stick = joybus.AxisPair[int8]{X: x, Y: y}
	pad.CStick = joybus.AxisPair[int8]{}
	pad.Trig = joybus.AxisPair[uint8]{}
}

// readGCN normalizes a raw GameCube response into pad.  The first response
// after a connect captures the analog origins for the port.
func (p *Port) readGCN(pad *Pad, in joybus.GCNInput) {
	org := &p.origins
	if !org.initialized {
		org.initialized = true
		org.stick = in.Stick
		org.cStick = in.CStick
		org.trig = in.Trig
	}

	pad.Stick = centerS8(in.Stick, org.stick)
	pad.CStick = centerS8(in.CStick, org.cStick)
	pad.Trig = in.Trig.Center(org.trig)

	// Map GameCube buttons onto the unified mask.  L and Z are swapped on
	// purpose to match the target ergonomics, and a partly pressed left
	// trigger also counts as Z.
	gcn := in.Buttons
	var b joybus.ButtonMask
	if gcn&joybus.GCNA != 0 {
		b |= joybus.ButtonA
	}
	if gcn&joybus.GCNB != 0 {
		b |= joybus.ButtonB
	}
	if gcn&joybus.GCNL != 0 || in.Trig.X > TriggerThreshold {
		b |= joybus.ButtonZ
	}
	if gcn&joybus.GCNStart != 0 {
		b |= joybus.ButtonStart
	}
	if gcn&joybus.GCNDUp != 0 {
		b |= joybus.ButtonDUp
	}
	if gcn&joybus.GCNDDown != 0 {
		b |= joybus.ButtonDDown
	}
	if gcn&joybus.GCNDLeft != 0 {
		b |= joybus.ButtonDLeft
	}
	if gcn&joybus.GCNDRight != 0 {
		b |= joybus.ButtonDRight
	}
	// A standard controller sets this bit on L+R+Start to recalibrate its
	// stick; X takes the role of that soft reset here.
	if gcn&joybus.GCNX != 0 {
		b |= joybus.ButtonReset
	}
	if gcn&joybus.GCNY != 0 {
		b |= joybus.ButtonUnknown
	}
	if gcn&joybus.GCNZ != 0 {
		b |= joybus.ButtonL
	}
	if gcn&joybus.GCNR != 0 {
		b |= joybus.ButtonR
	}
	// The C buttons are synthesized from the centered c-stick.
	if pad.CStick.Y > CStickThresholdY {
		b |= joybus.ButtonCUp
	}
	if pad.CStick.Y < -CStickThresholdY {
		b |= joybus.ButtonCDown
	}
	if pad.CStick.X < -CStickThresholdX {
		b |= joybus.ButtonCLeft
	}
	if pad.CStick.X > CStickThresholdX {
		b |= joybus.ButtonCRight
	}

	pad.Buttons = b
}
