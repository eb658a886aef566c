// Package websocket carries packets as binary websocket messages.
package websocket

import (
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/uartframe/pkg/bridge"
)

// ReadWriter implements bridge.PacketReadWriter.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// Dial connects to a websocket server.
func Dial(url, origin string) (*ReadWriter, error) {
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}

// Handler serves websocket clients attached to hub.
func Handler(hub *bridge.Hub) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		glog.Infof("websocket client %s connected", conn.Request().RemoteAddr)
		err := hub.Attach(New(conn))
		glog.Infof("websocket client %s disconnected: %v", conn.Request().RemoteAddr, err)
	})
}
