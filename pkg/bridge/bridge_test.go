package bridge

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uartframe/pkg/l0/comm"
	"github.com/robotalks/uartframe/pkg/l0/frame"
)

const testTimeout = 500 * time.Millisecond

type chanPacketReadWriter struct {
	readCh  chan []byte
	writeCh chan []byte
}

func newChanPacketReadWriter() *chanPacketReadWriter {
	return &chanPacketReadWriter{readCh: make(chan []byte, 4), writeCh: make(chan []byte, 4)}
}

func (c *chanPacketReadWriter) ReadPacket() ([]byte, error) {
	pkt, ok := <-c.readCh
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

func (c *chanPacketReadWriter) WritePacket(pkt []byte) error {
	c.writeCh <- pkt
	return nil
}

type bridgeTestCtx struct {
	t        *testing.T
	device   net.Conn
	upstream *chanPacketReadWriter
	cancel   context.CancelFunc
	doneCh   chan error
}

func newBridgeTestCtx(t *testing.T) *bridgeTestCtx {
	serial, device := net.Pipe()
	tc := &bridgeTestCtx{
		t:        t,
		device:   device,
		upstream: newChanPacketReadWriter(),
		doneCh:   make(chan error, 1),
	}
	b := New(serial).AddUpstream("test", tc.upstream)
	ctx, cancel := context.WithCancel(context.Background())
	tc.cancel = cancel
	go func() { tc.doneCh <- b.Run(ctx) }()
	return tc
}

func (tc *bridgeTestCtx) close() {
	tc.cancel()
	tc.device.Close()
}

func (tc *bridgeTestCtx) expectPacket() *frame.Frame {
	select {
	case pkt := <-tc.upstream.writeCh:
		f, err := DecodeEnvelope(pkt)
		require.NoError(tc.t, err)
		return f
	case <-time.After(testTimeout):
		require.Fail(tc.t, "timeout waiting for packet")
		return nil
	}
}

func TestBridgeSerialToUpstream(t *testing.T) {
	tc := newBridgeTestCtx(t)
	defer tc.close()

	f := &frame.Frame{Sender: 100, Receiver: 1, Data: []byte("PWM_ON")}
	encoded, err := f.Serialize()
	require.NoError(t, err)
	corrupt := append([]byte(nil), encoded...)
	corrupt[6] ^= 0x04

	_, err = tc.device.Write(append(append([]byte("noise)"), corrupt...), encoded...))
	require.NoError(t, err)
	got := tc.expectPacket()
	require.True(t, f.Equal(got), "got %s", got)
}

func TestBridgeUpstreamToSerial(t *testing.T) {
	tc := newBridgeTestCtx(t)
	defer tc.close()

	f := &frame.Frame{Sender: 1, Receiver: 100, Data: []byte("SET_FREQ 1000")}
	pkt, err := EncodeEnvelope(f)
	require.NoError(t, err)
	tc.upstream.readCh <- []byte{0xff}
	tc.upstream.readCh <- pkt

	parser := comm.NewParser()
	buf := make([]byte, 64)
	tc.device.SetReadDeadline(time.Now().Add(testTimeout))
	for {
		n, err := tc.device.Read(buf)
		require.NoError(t, err)
		var got *frame.Frame
		parser.ParseBytes(buf[:n], func(r comm.ParseResult) {
			require.NoError(t, r.Err)
			got = r.Frame
		})
		if got != nil {
			require.True(t, f.Equal(got), "got %s", got)
			return
		}
	}
}

func TestBridgeStopsOnSerialError(t *testing.T) {
	tc := newBridgeTestCtx(t)
	defer tc.cancel()
	tc.device.Close()
	select {
	case err := <-tc.doneCh:
		require.Error(t, err)
		var linkErr *comm.LinkError
		require.ErrorAs(t, err, &linkErr)
	case <-time.After(testTimeout):
		require.Fail(t, "bridge not stopped")
	}
}
