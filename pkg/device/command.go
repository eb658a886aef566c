package device

import (
	"bytes"
	"strconv"
)

// MaxDutyCycles is the largest number of duty cycles in one command.
const MaxDutyCycles = 312

type commandFunc func(d *Device, args []string) string

type command struct {
	name    string
	fn      commandFunc
	minArgs int
	maxArgs int
}

var commands = []command{
	{name: "ON", fn: (*Device).cmdOn},
	{name: "OFF", fn: (*Device).cmdOff},
	{name: "SET_FREQ", fn: (*Device).cmdSetFreq, minArgs: 1, maxArgs: 1},
	{name: "SET_DUTY_CYCLES", fn: (*Device).cmdSetDutyCycles, minArgs: 1, maxArgs: MaxDutyCycles},
	{name: "STATUS", fn: (*Device).cmdStatus},
}

// ParseCommand splits data by spaces, skipping empty fields.
// The first field is the command name. It returns nil for a blank payload.
func ParseCommand(data []byte) []string {
	var args []string
	for _, field := range bytes.Split(data, []byte{' '}) {
		if len(field) > 0 {
			args = append(args, string(field))
		}
	}
	return args
}

func findCommand(name string) *command {
	for n := range commands {
		if commands[n].name == name {
			return &commands[n]
		}
	}
	return nil
}

// parseUint32 accepts plain decimal digits only.
func parseUint32(s string) (uint32, bool) {
	if len(s) == 0 || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
