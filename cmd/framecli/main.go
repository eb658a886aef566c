package main

import (
	"github.com/robotalks/uartframe/pkg/cli/sh"
	"github.com/robotalks/uartframe/pkg/env"

	_ "github.com/robotalks/uartframe/pkg/cli/cmds/pwm"
)

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
