package stream

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uartframe/pkg/bridge"
)

func TestReadWriter(t *testing.T) {
	var buf bytes.Buffer
	rw := New(&buf)
	require.NoError(t, rw.WritePacket([]byte("abc")))
	require.NoError(t, rw.WritePacket(nil))
	require.Equal(t, []byte{3, 0, 0, 0, 'a', 'b', 'c', 0, 0, 0, 0}, buf.Bytes())

	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), pkt)
	pkt, err = rw.ReadPacket()
	require.NoError(t, err)
	require.Empty(t, pkt)
	_, err = rw.ReadPacket()
	require.Error(t, err)
}

func TestReadWriterSizeLimit(t *testing.T) {
	var buf bytes.Buffer
	rw := New(&buf)
	require.Error(t, rw.WritePacket(make([]byte, MaxPacketSize+1)))
	buf.Write([]byte{0xff, 0xff, 0, 0})
	_, err := rw.ReadPacket()
	require.Error(t, err)
}

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	hub := bridge.NewHub()
	defer hub.Close()
	go Serve(ln, hub)
	defer ln.Close()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	client := New(conn)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, client.WritePacket([]byte("up")))
	pkt, err := hub.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("up"), pkt)

	require.NoError(t, hub.WritePacket([]byte("down")))
	pkt, err = client.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("down"), pkt)
}
