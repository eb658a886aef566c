package device

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/uartframe/pkg/l0/frame"
)

// LocalID is the id of the device on the link.
const LocalID = 100

// Sender sends a reply frame.
type Sender interface {
	SendData(ctx context.Context, receiver byte, payload []byte) error
}

// FrameSource yields buffered frames.
type FrameSource interface {
	Recv() (*frame.Frame, bool)
}

// State describes what the device is generating.
type State struct {
	// DutyCycles are timer compare values.
	DutyCycles []uint32
	// UserDutyCycles are the percentages last requested.
	UserDutyCycles []uint8
	PWMGenerated   bool
}

// Device executes commands against a Timer.
type Device struct {
	ID        byte
	TimerFreq uint32
	Timer     Timer
	Sender    Sender

	lock  sync.Mutex
	state State
}

// New creates a Device with LocalID.
func New(timerFreq uint32, timer Timer, sender Sender) *Device {
	return &Device{
		ID:        LocalID,
		TimerFreq: timerFreq,
		Timer:     timer,
		Sender:    sender,
		state:     State{DutyCycles: []uint32{0}},
	}
}

// State returns a copy of the current state.
func (d *Device) State() State {
	d.lock.Lock()
	defer d.lock.Unlock()
	return State{
		DutyCycles:     append([]uint32(nil), d.state.DutyCycles...),
		UserDutyCycles: append([]uint8(nil), d.state.UserDutyCycles...),
		PWMGenerated:   d.state.PWMGenerated,
	}
}

// Execute runs a parsed command and returns the reply.
func (d *Device) Execute(args []string) string {
	if len(args) == 0 {
		return ReplyUnknownCommand
	}
	cmd := findCommand(args[0])
	if cmd == nil {
		return ReplyUnknownCommand
	}
	if n := len(args) - 1; n < cmd.minArgs || n > cmd.maxArgs {
		return ReplyInvalidArgument
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	return cmd.fn(d, args)
}

// HandleFrame implements comm.FrameHandler.
func (d *Device) HandleFrame(ctx context.Context, f *frame.Frame) {
	if f.Receiver != d.ID {
		glog.V(2).Infof("ignore frame %s", f)
		return
	}
	args := ParseCommand(f.Data)
	if args == nil {
		return
	}
	reply := d.Execute(args)
	glog.V(1).Infof("%d: %s -> %s", f.Sender, strings.Join(args, " "), reply)
	if d.Sender == nil {
		return
	}
	if err := d.Sender.SendData(ctx, f.Sender, []byte(reply)); err != nil {
		glog.Warningf("reply to %d failed: %v", f.Sender, err)
	}
}

// HandlePending executes all frames buffered in src.
func (d *Device) HandlePending(ctx context.Context, src FrameSource) {
	for {
		f, ok := src.Recv()
		if !ok {
			return
		}
		d.HandleFrame(ctx, f)
	}
}

func (d *Device) startPWM() {
	d.state.PWMGenerated = true
	d.Timer.StartPWM(d.state.DutyCycles)
}

func (d *Device) stopPWM() {
	d.state.PWMGenerated = false
	d.Timer.StopPWM()
}

func (d *Device) cmdOn(args []string) string {
	if !d.state.PWMGenerated {
		d.startPWM()
	}
	return ReplyPWMOn
}

func (d *Device) cmdOff(args []string) string {
	if d.state.PWMGenerated {
		d.stopPWM()
	}
	return ReplyPWMOff
}

func (d *Device) cmdSetFreq(args []string) string {
	freq, ok := parseUint32(args[1])
	if !ok {
		return ReplyInvalidArgument
	}
	if freq == 0 || d.TimerFreq/freq == 0 {
		return ReplyInvalidFrequency
	}
	period := d.TimerFreq / freq

	restart := d.state.PWMGenerated
	if restart {
		d.stopPWM()
	}
	d.Timer.SetPeriod(period)
	for n, user := range d.state.UserDutyCycles {
		d.state.DutyCycles[n] = uint32(uint64(user) * uint64(period) / 100)
	}
	if restart {
		d.startPWM()
	}
	return fmt.Sprintf("%s %d", ReplyFreqChanged, freq)
}

func (d *Device) cmdSetDutyCycles(args []string) string {
	period := uint64(d.Timer.Period())
	duty := make([]uint32, 0, len(args)-1)
	user := make([]uint8, 0, len(args)-1)
	invalid := false
	for _, arg := range args[1:] {
		v, ok := parseUint32(arg)
		if !ok {
			return ReplyInvalidArgument
		}
		if v > 100 {
			invalid = true
			continue
		}
		duty = append(duty, uint32(uint64(v)*period/100))
		user = append(user, uint8(v))
	}
	if invalid {
		return ReplyInvalidDutyCycle
	}

	if d.state.PWMGenerated {
		d.stopPWM()
		d.state.DutyCycles = duty
		d.startPWM()
	} else {
		d.state.DutyCycles = duty
	}
	d.state.UserDutyCycles = user
	return ReplyDutyCyclesChanged + " " + strings.Join(args[1:], " ")
}

func (d *Device) cmdStatus(args []string) string {
	period := d.Timer.Period()
	var sb strings.Builder
	sb.WriteString(ReplyStatus)
	if d.state.PWMGenerated {
		sb.WriteString(" 1")
	} else {
		sb.WriteString(" 0")
	}
	fmt.Fprintf(&sb, " %d", d.TimerFreq/period)
	for _, cnt := range d.state.DutyCycles {
		fmt.Fprintf(&sb, " %d", uint64(cnt)*100/uint64(period))
	}
	return sb.String()
}
