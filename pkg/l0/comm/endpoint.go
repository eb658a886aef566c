package comm

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/uartframe/pkg/l0/container"
	"github.com/robotalks/uartframe/pkg/l0/frame"
)

// FrameHandler handles a received frame.
type FrameHandler interface {
	HandleFrame(context.Context, *frame.Frame)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, *frame.Frame)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, fr *frame.Frame) {
	f(ctx, fr)
}

// Endpoint is the device side of the link over a byte stream.
// Incoming bytes go through a RxLink, outgoing frames through a TxQueue
// drained one byte at a time.
//
// With a Handler, Run dispatches frames as they complete. Without one, the
// owner polls Recv, e.g. from a framework.Loop woken by RxNotify.
type Endpoint struct {
	ReadWriter io.ReadWriter
	LocalID    byte
	Handler    FrameHandler
	Observer   Observer
	// RxNotify is called from the reading goroutine after bytes are buffered.
	RxNotify func()

	rx       *RxLink
	tx       *TxQueue
	txCh     chan byte
	rxReady  chan struct{}
	sendLock sync.Mutex
	encoded  *container.Vec[byte]
}

// NewEndpoint creates an Endpoint over rw.
func NewEndpoint(rw io.ReadWriter, localID byte) *Endpoint {
	e := &Endpoint{
		ReadWriter: rw,
		LocalID:    localID,
		rx:         NewRxLink(DefaultRingSize),
		txCh:       make(chan byte, 1),
		rxReady:    make(chan struct{}, 1),
		encoded:    container.NewVec[byte](frame.FrameMaxSize * 2),
	}
	e.tx = NewTxQueue(DefaultRingSize, TransmitByteFunc(func(b byte) {
		e.txCh <- b
	}))
	return e
}

// Rx returns the receive link.
func (e *Endpoint) Rx() *RxLink {
	return e.rx
}

// Tx returns the transmit queue.
func (e *Endpoint) Tx() *TxQueue {
	return e.tx
}

// SendData builds a frame from LocalID to receiver and queues its encoding.
// It blocks until all bytes are queued, not transmitted.
func (e *Endpoint) SendData(ctx context.Context, receiver byte, payload []byte) error {
	f := &frame.Frame{Sender: e.LocalID, Receiver: receiver, Data: payload}

	e.sendLock.Lock()
	defer e.sendLock.Unlock()
	e.encoded.Clear()
	if err := f.SerializeInto(e.encoded); err != nil {
		return err
	}
	for data := e.encoded.Slice(); ; {
		n := e.tx.Puts(data)
		if data = data[n:]; len(data) == 0 {
			break
		}
		select {
		case <-e.tx.Space():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	ObserverOf(e.Observer).FrameSent(f)
	return nil
}

// Recv returns the next buffered frame, if any.
func (e *Endpoint) Recv() (*frame.Frame, bool) {
	obs := ObserverOf(e.Observer)
	for {
		var f frame.Frame
		ok, err := e.rx.Poll(&f)
		if ok {
			obs.FrameReceived(&f)
			return &f, true
		}
		if err == nil {
			return nil, false
		}
		obs.FrameDropped(err)
	}
}

// Run runs the reading and writing loops and dispatches received frames
// to Handler until ctx is done or the stream fails.
func (e *Endpoint) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 2)
	go e.readLoop(errCh)
	go e.writeLoop(ctx, errCh)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-e.rxReady:
			if e.Handler != nil {
				e.dispatch(ctx)
			}
		}
	}
}

func (e *Endpoint) dispatch(ctx context.Context) {
	for {
		f, ok := e.Recv()
		if !ok {
			return
		}
		e.Handler.HandleFrame(ctx, f)
	}
}

func (e *Endpoint) readLoop(errCh chan<- error) {
	var buf [256]byte
	for {
		n, err := e.ReadWriter.Read(buf[:])
		if n > 0 {
			e.rx.Receive(buf[:n])
			select {
			case e.rxReady <- struct{}{}:
			default:
			}
			if e.RxNotify != nil {
				e.RxNotify()
			}
		}
		if err != nil {
			glog.V(1).Infof("endpoint %d read error: %v", e.LocalID, err)
			errCh <- &LinkError{Op: "read", Err: err}
			return
		}
	}
}

func (e *Endpoint) writeLoop(ctx context.Context, errCh chan<- error) {
	var buf [1]byte
	for {
		select {
		case <-ctx.Done():
			return
		case buf[0] = <-e.txCh:
		}
		if _, err := e.ReadWriter.Write(buf[:]); err != nil {
			glog.V(1).Infof("endpoint %d write error: %v", e.LocalID, err)
			errCh <- &LinkError{Op: "write", Err: err}
			return
		}
		e.tx.TxComplete()
	}
}
