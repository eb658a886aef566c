package comm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uartframe/pkg/l0/frame"
)

const testTimeout = 500 * time.Millisecond

type chanReadWriter struct {
	readCh  <-chan byte
	writeCh chan byte
}

func (c *chanReadWriter) Read(p []byte) (int, error) {
	p[0] = <-c.readCh
	return 1, nil
}

func (c *chanReadWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		c.writeCh <- b
	}
	return len(p), nil
}

func encodeFrame(t *testing.T, sender, receiver byte, data string) []byte {
	f := &frame.Frame{Sender: sender, Receiver: receiver, Data: []byte(data)}
	encoded, err := f.Serialize()
	require.NoError(t, err)
	return encoded
}

func feedBytes(ch chan<- byte, data []byte) {
	for _, b := range data {
		ch <- b
	}
}

// readFrame parses bytes from ch until a frame completes.
func readFrame(t *testing.T, ch <-chan byte) *frame.Frame {
	p := NewParser()
	for {
		select {
		case b := <-ch:
			if r := p.Parse(b); r.Frame != nil {
				return r.Frame
			} else if r.Err != nil {
				require.Fail(t, "unexpected parse error", "%v", r.Err)
			}
		case <-time.After(testTimeout):
			require.Fail(t, "timeout waiting for frame")
			return nil
		}
	}
}

func requireFrameData(t *testing.T, f *frame.Frame, sender, receiver byte, data string) {
	require.NotNil(t, f)
	require.Equalf(t, sender, f.Sender, "sender of %s", f)
	require.Equalf(t, receiver, f.Receiver, "receiver of %s", f)
	require.Equal(t, data, string(f.Data))
}
