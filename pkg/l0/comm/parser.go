package comm

import (
	"github.com/robotalks/uartframe/pkg/l0/container"
	"github.com/robotalks/uartframe/pkg/l0/frame"
)

// MaxEncodedSize bounds an encoded frame: both delimiters plus every other
// byte escaped.
const MaxEncodedSize = 2 + (frame.FrameMaxSize-2)*2

// TimerAction defines what to do with the receive timer.
type TimerAction int

const (
	// TimerNoChange indicates keep the timer as-is.
	TimerNoChange TimerAction = iota
	// TimerRestart to restart the timer.
	TimerRestart
	// TimerStop to stop/cancel the timer.
	TimerStop
)

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	// Receiving is true while a frame is being assembled.
	Receiving bool
	// Frame is set when an end byte completed a valid frame.
	Frame *frame.Frame
	// Err is set when a candidate frame was dropped.
	Err error
}

// WhatAboutTimer decides what to do with the receive timer.
// The timer runs while a frame is partially received, and when it fires
// the parser should be Reset.
func (r ParseResult) WhatAboutTimer() TimerAction {
	if r.Receiving {
		return TimerRestart
	}
	return TimerStop
}

// Parser assembles frames from a byte stream on the host side.
// A begin byte always starts a new candidate, an end byte decodes the
// candidate. Bytes outside a candidate are ignored.
type Parser struct {
	buf *container.Vec[byte]
}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{buf: container.NewVec[byte](MaxEncodedSize)}
}

// Receiving indicates a frame is being assembled.
func (p *Parser) Receiving() bool {
	return p.buf.Len() > 0
}

// Reset drops the partial frame.
func (p *Parser) Reset() {
	p.buf.Clear()
}

// Parse feeds one byte.
func (p *Parser) Parse(b byte) (r ParseResult) {
	switch {
	case b == frame.BeginFrameByte:
		p.buf.Clear()
		p.buf.Push(b)
	case p.buf.Len() == 0:
	case b == frame.EndFrameByte:
		p.buf.Push(b)
		r.Frame, r.Err = frame.Decode(p.buf.Slice())
		p.buf.Clear()
	default:
		if _, ok := p.buf.Push(b); !ok {
			p.buf.Clear()
			r.Err = frame.ErrDataTooBig
		}
	}
	r.Receiving = p.Receiving()
	return
}

// ParseBytes feeds p and calls fn for each result carrying a frame or error.
func (p *Parser) ParseBytes(data []byte, fn func(ParseResult)) {
	for _, b := range data {
		if r := p.Parse(b); r.Frame != nil || r.Err != nil {
			fn(r)
		}
	}
}
