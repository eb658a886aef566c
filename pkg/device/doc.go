// Package device implements the command layer of a PWM signal generator
// reachable over the L0 link.
//
// A frame addressed to LocalID carries one ASCII command, with arguments
// separated by spaces. Each command is answered with a frame back to the
// sender.
package device
