package comm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uartframe/pkg/l0/frame"
)

func TestRxLinkPoll(t *testing.T) {
	l := NewRxLink(DefaultRingSize)
	var f frame.Frame
	ok, err := l.Poll(&f)
	require.False(t, ok)
	require.NoError(t, err)

	encoded := encodeFrame(t, 1, 100, "ON")
	l.Receive(encoded[:len(encoded)-1])
	ok, err = l.Poll(&f)
	require.False(t, ok)
	require.NoError(t, err)
	require.Equal(t, len(encoded)-1, l.Buffered())

	l.ReceiveByte(encoded[len(encoded)-1])
	ok, err = l.Poll(&f)
	require.True(t, ok)
	require.NoError(t, err)
	requireFrameData(t, &f, 1, 100, "ON")
	require.Zero(t, l.Buffered())
	require.Equal(t, uint64(1), l.Stats().Frames)
}

func TestRxLinkResyncInOnePoll(t *testing.T) {
	l := NewRxLink(DefaultRingSize)
	l.Receive([]byte{'(', 1, 2, 3})
	l.Receive(encodeFrame(t, 1, 100, "OFF"))

	var f frame.Frame
	ok, err := l.Poll(&f)
	require.True(t, ok)
	require.NoError(t, err)
	requireFrameData(t, &f, 1, 100, "OFF")
	require.Equal(t, uint64(1), l.Stats().Resyncs)
}

func TestRxLinkDropCorrupt(t *testing.T) {
	l := NewRxLink(DefaultRingSize)
	corrupt := encodeFrame(t, 1, 100, "STATUS")
	corrupt[6] ^= 0x02
	l.Receive(corrupt)
	l.Receive(encodeFrame(t, 1, 100, "STATUS"))

	var f frame.Frame
	ok, err := l.Poll(&f)
	require.False(t, ok)
	require.Equal(t, frame.ErrCRC32Mismatch, err)

	ok, err = l.Poll(&f)
	require.True(t, ok)
	require.NoError(t, err)
	requireFrameData(t, &f, 1, 100, "STATUS")

	stats := l.Stats()
	require.Equal(t, uint64(1), stats.DroppedBy(frame.ErrCRC32Mismatch))
	require.Equal(t, uint64(1), stats.Frames)
}

func TestRxLinkOverflowKeepsNewest(t *testing.T) {
	l := NewRxLink(64)
	for i := 0; i < 200; i++ {
		l.ReceiveByte(0x55)
	}
	require.Equal(t, 63, l.Buffered())
	l.Receive(encodeFrame(t, 2, 100, "x"))

	var f frame.Frame
	ok, err := l.Poll(&f)
	require.True(t, ok)
	require.NoError(t, err)
	requireFrameData(t, &f, 2, 100, "x")
}
