// Package pwm provides shell commands for the PWM device.
package pwm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/uartframe/pkg/cli/sh"
	"github.com/robotalks/uartframe/pkg/device"
)

func doDevice(c *ishell.Context, args ...string) {
	s := sh.ShellFrom(c)
	sh.DoCommand(c, s.Config.Device(), strings.Join(args, " "))
}

var (
	// OnCmd starts signal generation.
	OnCmd = ishell.Cmd{
		Name: "on",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			doDevice(c, "ON")
		}),
	}

	// OffCmd stops signal generation.
	OffCmd = ishell.Cmd{
		Name: "off",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			doDevice(c, "OFF")
		}),
	}

	// FreqCmd changes the signal frequency.
	FreqCmd = ishell.Cmd{
		Name:    "freq",
		Aliases: []string{"f"},
		Help:    "FREQ(Hz)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("FREQ required"))
				return
			}
			if _, err := strconv.ParseUint(c.Args[0], 10, 32); err != nil {
				c.Err(fmt.Errorf("Invalid FREQ: %v", err))
				return
			}
			doDevice(c, "SET_FREQ", c.Args[0])
		}),
	}

	// DutyCmd sets the duty cycles replayed by the device.
	DutyCmd = ishell.Cmd{
		Name:    "duty",
		Aliases: []string{"dc"},
		Help:    "DUTY(%)...",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 || len(c.Args) > device.MaxDutyCycles {
				c.Err(fmt.Errorf("1 to %d duty cycles required", device.MaxDutyCycles))
				return
			}
			for _, arg := range c.Args {
				if v, err := strconv.ParseUint(arg, 10, 8); err != nil || v > 100 {
					c.Err(fmt.Errorf("Invalid DUTY %q", arg))
					return
				}
			}
			doDevice(c, append([]string{"SET_DUTY_CYCLES"}, c.Args...)...)
		}),
	}

	// StatusCmd queries the device state.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			doDevice(c, "STATUS")
		}),
	}
)

func init() {
	sh.AddCmds(
		&OnCmd,
		&OffCmd,
		&FreqCmd,
		&DutyCmd,
		&StatusCmd,
	)
}
