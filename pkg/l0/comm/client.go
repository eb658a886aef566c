package comm

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/uartframe/pkg/l0/frame"
)

// DefaultReceiveTimeout resets a partially received frame when the stream
// goes idle.
const DefaultReceiveTimeout = 500 * time.Millisecond

// Result is the result of a command using Do.
type Result struct {
	Err   error
	Frame *frame.Frame
}

// Command represents a pending command waiting for reply.
type Command struct {
	receiver byte
	resultCh chan Result
}

// Receiver returns the id the command was sent to.
func (c *Command) Receiver() byte {
	return c.receiver
}

// ResultChan returns the chan to retrieve result.
func (c *Command) ResultChan() <-chan Result {
	return c.resultCh
}

// Client provides host side operations over a byte stream.
//
// A device replies to the sender of each command in order, so a frame from
// peer X completes the oldest pending command sent to X. Frames matching no
// pending command are reported on EventChan.
type Client struct {
	ReadWriter     io.ReadWriter
	LocalID        byte
	Observer       Observer
	ReceiveTimeout time.Duration

	parser    *Parser
	eventCh   chan *frame.Frame
	pending   []*Command
	cmdsLock  sync.Mutex
	writeLock sync.Mutex
}

// NewClient creates client over rw.
func NewClient(rw io.ReadWriter, localID byte) *Client {
	return &Client{
		ReadWriter:     rw,
		LocalID:        localID,
		ReceiveTimeout: DefaultReceiveTimeout,
		parser:         NewParser(),
		eventCh:        make(chan *frame.Frame, 16),
	}
}

// EventChan retrieves the chan of unsolicited frames.
func (c *Client) EventChan() <-chan *frame.Frame {
	return c.eventCh
}

// Send writes a frame to receiver without expecting a reply.
func (c *Client) Send(receiver byte, payload []byte) error {
	f := &frame.Frame{Sender: c.LocalID, Receiver: receiver, Data: payload}
	encoded, err := f.Serialize()
	if err != nil {
		return err
	}
	c.writeLock.Lock()
	_, err = c.ReadWriter.Write(encoded)
	c.writeLock.Unlock()
	if err != nil {
		return &LinkError{Op: "write", Err: err}
	}
	ObserverOf(c.Observer).FrameSent(f)
	return nil
}

// DoWith sends a command and expects a result in the provided chan.
// ch should have room for one Result: the result is sent from the reading
// goroutine, or from DoWith itself when sending fails. A nil ch is replaced
// by a buffered one.
func (c *Client) DoWith(receiver byte, payload []byte, ch chan Result) *Command {
	if ch == nil {
		ch = make(chan Result, 1)
	}
	cmd := &Command{receiver: receiver, resultCh: ch}

	c.cmdsLock.Lock()
	err := c.Send(receiver, payload)
	if err == nil {
		c.pending = append(c.pending, cmd)
	}
	c.cmdsLock.Unlock()

	if err != nil {
		cmd.resultCh <- Result{Err: err}
	}
	return cmd
}

// Do sends a command and returns a Command for result.
func (c *Client) Do(receiver byte, payload []byte) *Command {
	return c.DoWith(receiver, payload, make(chan Result, 1))
}

// Wait waits for the result of cmd. When ctx is done first, cmd is
// abandoned and ErrNoReply returned.
func (c *Client) Wait(ctx context.Context, cmd *Command) Result {
	select {
	case r := <-cmd.resultCh:
		return r
	case <-ctx.Done():
	}
	if c.abandon(cmd) {
		return Result{Err: ErrNoReply}
	}
	// completed concurrently.
	return <-cmd.resultCh
}

// Pending returns the number of commands waiting for reply.
func (c *Client) Pending() int {
	c.cmdsLock.Lock()
	defer c.cmdsLock.Unlock()
	return len(c.pending)
}

func (c *Client) abandon(cmd *Command) bool {
	c.cmdsLock.Lock()
	defer c.cmdsLock.Unlock()
	for i, p := range c.pending {
		if p == cmd {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return true
		}
	}
	return false
}

// HandleFrame implements FrameHandler.
func (c *Client) HandleFrame(ctx context.Context, f *frame.Frame) {
	if f.Receiver != c.LocalID {
		glog.V(2).Infof("ignore frame %s: %v", f, ErrNotForUs)
		return
	}
	var matched *Command
	c.cmdsLock.Lock()
	for i, cmd := range c.pending {
		if cmd.receiver == f.Sender {
			matched = cmd
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
	c.cmdsLock.Unlock()

	if matched == nil {
		select {
		case c.eventCh <- f:
		default:
			glog.Warningf("event chan full, drop frame %s", f)
		}
		return
	}
	matched.resultCh <- Result{Frame: f}
}

// Run reads the stream and dispatches frames until ctx is done or the
// stream fails.
func (c *Client) Run(ctx context.Context) error {
	obs := ObserverOf(c.Observer)
	dataCh := make(chan []byte)
	errCh := make(chan error, 1)
	go c.readLoop(ctx, dataCh, errCh)

	timer := time.NewTimer(c.ReceiveTimeout)
	stopTimer(timer)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-timer.C:
			glog.V(1).Info("receive timeout, reset parser")
			c.parser.Reset()
		case data := <-dataCh:
			var last ParseResult
			for _, b := range data {
				last = c.parser.Parse(b)
				if last.Err != nil {
					obs.FrameDropped(last.Err)
				}
				if last.Frame != nil {
					obs.FrameReceived(last.Frame)
					c.HandleFrame(ctx, last.Frame)
				}
			}
			switch last.WhatAboutTimer() {
			case TimerRestart:
				stopTimer(timer)
				timer.Reset(c.ReceiveTimeout)
			case TimerStop:
				stopTimer(timer)
			}
		}
	}
}

func (c *Client) readLoop(ctx context.Context, dataCh chan<- []byte, errCh chan<- error) {
	for {
		buf := make([]byte, 256)
		n, err := c.ReadWriter.Read(buf)
		if n > 0 {
			select {
			case dataCh <- buf[:n]:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- &LinkError{Op: "read", Err: err}
			return
		}
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
