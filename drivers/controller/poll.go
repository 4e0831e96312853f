package controller

import (
	"fmt"
	"log/slog"

	"github.com/rovertronic/joybus/pif"
	"github.com/rovertronic/joybus/pif/joybus"
)

// DefaultAnalogMode is the submode requested from GameCube controllers when
// building short poll commands: full resolution on the c-stick and triggers,
// no analog buttons.
const DefaultAnalogMode = joybus.Mode220

// BuildPollFrame packs one poll command per pollable port.  Ports without a
// controller are skipped with a single control byte, as are ports without a
// player assignment unless repollAll is set.  GameCube ports get a poll
// command carrying their current rumble state.
func BuildPollFrame(f *pif.Frame, reg *Registry, repollAll, longPoll bool) error {
	f.Reset()
	for i := range reg {
		p := &reg[i]
		if !p.Plugged || (!repollAll && p.Player == 0) {
			if err := joybus.ControlByte(f, joybus.CtrlSkip); err != nil {
				return err
			}
			continue
		}

		var err error
		switch {
		case !p.Device.IsGCN():
			_, err = joybus.NewControllerStateCommand(f)
		case longPoll:
			_, err = joybus.NewLongPollCommand(f, p.Rumble)
		default:
			_, err = joybus.NewShortPollCommand(f, DefaultAnalogMode, p.Rumble)
		}
		if err != nil {
			return err
		}
	}
	return joybus.ControlByte(f, joybus.CtrlEnd)
}

// ParsePollFrame walks a poll response and decodes one Pad per answered
// channel.  Skipped channels leave their pad untouched.
//
// If a polled device stopped answering, parsing is aborted and repoll is
// returned true: the rest of the response is stale and the caller must
// re-query device statuses before the next poll.  An unknown command id in
// the response is a protocol integrity fault and aborts with
// joybus.ErrUnknownCommand.
func ParsePollFrame(f *pif.Frame, reg *Registry, pads *[NumPorts]Pad) (repoll bool, err error) {
	buf := f.Bytes()
	port := 0
	off := 0
	for off < len(buf) {
		switch buf[off] {
		case joybus.CtrlEnd:
			return false, nil
		case joybus.CtrlSkip, joybus.CtrlReset:
			port++
			off++
			continue
		case joybus.CtrlNOP:
			off++
			continue
		}

		if port >= NumPorts || off+2 > len(buf) {
			return false, fmt.Errorf("%w: command block outside frame", joybus.ErrHeader)
		}
		cmd := joybus.Command(buf[off:])
		size := cmd.Size()
		if off+size > len(buf) {
			return false, fmt.Errorf("%w: command exceeds frame", joybus.ErrHeader)
		}
		cmd = cmd[:size]

		pad := &pads[port]
		pad.Err = cmd.Error()
		if pad.Err == joybus.ChanNoResponse {
			return true, nil
		}

		switch cmd.ID() {
		case joybus.CmdReadState:
			if pad.Err == joybus.ChanSuccess {
				b, x, y, serr := (joybus.ControllerStateCommand{Command: cmd}).State()
				if serr != nil {
					return false, serr
				}
				readState(pad, b, x, y)
			}
		case joybus.CmdShortPoll, joybus.CmdLongPoll:
			if pad.Err == joybus.ChanSuccess {
				in, gerr := (joybus.GCNPollCommand{Command: cmd}).Input()
				if gerr != nil {
					return false, gerr
				}
				reg[port].readGCN(pad, in)
			} else {
				// Calibration is lost on any error, recapture on
				// the next successful poll.
				reg[port].origins.initialized = false
			}
		default:
			return false, fmt.Errorf("%w: %#02x", joybus.ErrUnknownCommand, cmd.ID())
		}

		off += size
		port++
	}
	return false, fmt.Errorf("%w: unterminated frame", joybus.ErrHeader)
}

// Poller owns the recurring exchanges of an input loop: input polls, status
// queries and the frame they share.  It keeps the frame resident across
// cycles, so consecutive polls with unchanged registry state skip the
// rebuild and rerun the commands already in the PIF RAM.
type Poller struct {
	// NullType substitutes for the null device type that some emulated
	// PIFs report when queried before their input backend is up.  The
	// zero value keeps the standard controller fallback; set
	// joybus.DeviceNull to store the reported type unmodified.
	NullType joybus.Device
	// LongPoll selects the long poll command for GameCube ports.
	LongPoll bool

	bus *pif.Bus
	reg *Registry
	log *slog.Logger

	statusPolling bool
	lastCmd       byte
	frame         *pif.Frame
	pads          [NumPorts]Pad
}

// NewPoller returns a poller over bus updating reg.  A nil log uses
// slog.Default.
func NewPoller(bus *pif.Bus, reg *Registry, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}
	return &Poller{
		bus:     bus,
		reg:     reg,
		log:     log,
		lastCmd: joybus.CtrlEnd,
		frame:   pif.NewFrame(),
	}
}

// Invalidate drops the resident frame, forcing the next poll to rebuild its
// commands.  Required after any registry change that affects the frame
// contents, like a rumble state update.
func (p *Poller) Invalidate() {
	p.lastCmd = joybus.CtrlEnd
}

// SetStatusPolling switches between polling only player-assigned ports and
// polling every plugged port.  The poller enables it by itself when a
// controller stops answering; callers clear it once assignments settle.
func (p *Poller) SetStatusPolling(on bool) {
	p.statusPolling = on
	p.Invalidate()
}

func (p *Poller) StatusPolling() bool {
	return p.statusPolling
}

// Poll runs one input poll cycle and returns the decoded pads.  The
// returned array is reused between calls.
//
// If a controller was unplugged mid-poll, Poll switches itself into status
// polling; run PollStatus before relying on further polls.
func (p *Poller) Poll() (*[NumPorts]Pad, error) {
	var err error
	if p.lastCmd != joybus.CmdReadState {
		if err = BuildPollFrame(p.frame, p.reg, p.statusPolling, p.LongPoll); err != nil {
			return nil, err
		}
		err = p.bus.Run(p.frame)
	} else {
		// Same frame as last cycle, the PIF re-executes the resident
		// commands on the read transfer.
		err = p.bus.Readback(p.frame)
	}
	if err != nil {
		p.Invalidate()
		p.statusPolling = true
		return nil, err
	}
	p.lastCmd = joybus.CmdReadState

	repoll, err := ParsePollFrame(p.frame, p.reg, &p.pads)
	if err != nil {
		p.log.Error("poll decode failed", "err", err)
		p.Invalidate()
		return nil, err
	}
	if repoll {
		p.log.Warn("controller lost, forcing status repoll")
		p.statusPolling = true
		p.Invalidate()
	}
	return &p.pads, nil
}

// PollStatus queries every channel's device status, updating the registry
// and returning the mask of answering channels.
func (p *Poller) PollStatus() (mask uint8, stats [NumPorts]DeviceStatus, err error) {
	p.Invalidate()
	cmds, err := BuildStatusFrame(p.frame)
	if err != nil {
		return 0, stats, err
	}
	if err = p.bus.Run(p.frame); err != nil {
		return 0, stats, err
	}

	nullType := p.NullType
	if nullType == 0 {
		nullType = joybus.Controller
	}
	mask, stats = ParseStatusFrame(&cmds, p.reg, nullType)
	return mask, stats, nil
}
