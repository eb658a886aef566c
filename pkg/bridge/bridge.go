package bridge

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/uartframe/pkg/framework"
	"github.com/robotalks/uartframe/pkg/l0/comm"
	"github.com/robotalks/uartframe/pkg/l0/frame"
)

// Upstream is a packet transport on the far side of the bridge.
type Upstream struct {
	Name       string
	ReadWriter PacketReadWriter
}

// Bridge relays frames between a serial byte stream and upstreams.
// Frames decoded from the serial side are sent to every upstream, frames
// from any upstream are written to the serial side.
type Bridge struct {
	Serial    io.ReadWriter
	Upstreams []Upstream
	// SerialObserver observes the serial link.
	SerialObserver comm.Observer

	writeLock sync.Mutex
}

// New creates a Bridge.
func New(serial io.ReadWriter) *Bridge {
	return &Bridge{Serial: serial}
}

// AddUpstream adds an upstream.
func (b *Bridge) AddUpstream(name string, rw PacketReadWriter) *Bridge {
	b.Upstreams = append(b.Upstreams, Upstream{Name: name, ReadWriter: rw})
	return b
}

// Run implements Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	runner := fx.NewRunnerWith(ctx)
	runner.FailFast = true
	runner.Go(fx.NamedRun("serial", fx.RunFunc(b.runSerial)))
	for _, up := range b.Upstreams {
		up := up
		runner.Go(fx.NamedRun(up.Name, fx.RunFunc(func(ctx context.Context) error {
			return b.runUpstream(ctx, up)
		})))
		if runnable, ok := up.ReadWriter.(fx.Runnable); ok {
			runner.Go(fx.NamedRun(up.Name+"-transport", runnable))
		}
	}
	<-runner.Context().Done()
	return runner.Wait()
}

// WriteFrame writes f to the serial side.
func (b *Bridge) WriteFrame(f *frame.Frame) error {
	encoded, err := f.Serialize()
	if err != nil {
		return err
	}
	b.writeLock.Lock()
	defer b.writeLock.Unlock()
	if _, err = b.Serial.Write(encoded); err != nil {
		return &comm.LinkError{Op: "write", Err: err}
	}
	comm.ObserverOf(b.SerialObserver).FrameSent(f)
	return nil
}

// Publish sends f to all upstreams.
func (b *Bridge) Publish(f *frame.Frame) {
	pkt, err := EncodeEnvelope(f)
	if err != nil {
		glog.Warningf("encode %s: %v", f, err)
		return
	}
	for _, up := range b.Upstreams {
		if err := up.ReadWriter.WritePacket(pkt); err != nil {
			glog.Warningf("publish to %s: %v", up.Name, err)
		}
	}
}

func (b *Bridge) runSerial(ctx context.Context) error {
	obs := comm.ObserverOf(b.SerialObserver)
	parser := comm.NewParser()
	buf := make([]byte, 256)
	return fx.RunWithContextCancel(ctx, closerOf(b.Serial), func() error {
		for {
			n, err := b.Serial.Read(buf)
			parser.ParseBytes(buf[:n], func(r comm.ParseResult) {
				if r.Err != nil {
					glog.V(2).Infof("serial drop: %v", r.Err)
					obs.FrameDropped(r.Err)
					return
				}
				obs.FrameReceived(r.Frame)
				glog.V(2).Infof("serial rx %s", r.Frame)
				b.Publish(r.Frame)
			})
			if err != nil {
				return &comm.LinkError{Op: "read", Err: err}
			}
		}
	})
}

func (b *Bridge) runUpstream(ctx context.Context, up Upstream) error {
	return fx.RunWithContextCancel(ctx, closerOf(up.ReadWriter), func() error {
		for {
			pkt, err := up.ReadWriter.ReadPacket()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			f, err := DecodeEnvelope(pkt)
			if err != nil {
				glog.Warningf("%s: drop packet: %v", up.Name, err)
				continue
			}
			glog.V(2).Infof("%s tx %s", up.Name, f)
			if err = b.WriteFrame(f); err != nil {
				return err
			}
		}
	})
}

// closerOf returns a func closing v to unblock its reader, or nil if v
// can't be closed.
func closerOf(v interface{}) func() {
	if c, ok := v.(io.Closer); ok {
		return func() { c.Close() }
	}
	return nil
}
