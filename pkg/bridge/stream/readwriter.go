// Package stream carries packets over a byte stream, e.g. TCP.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/golang/glog"

	"github.com/robotalks/uartframe/pkg/bridge"
)

// MaxPacketSize bounds the length of a packet.
const MaxPacketSize = 4096

// ReadWriter implements bridge.PacketReadWriter.
// Each packet is prefixed by 4-byte (little-endian) indicate the length.
type ReadWriter struct {
	io.ReadWriter
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{s}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var size uint32
	if err := binary.Read(p, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxPacketSize {
		return nil, fmt.Errorf("packet size %d exceeds %d", size, MaxPacketSize)
	}
	pkt := make([]byte, size)
	_, err := io.ReadFull(p, pkt)
	return pkt, err
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	if len(pkt) > MaxPacketSize {
		return fmt.Errorf("packet size %d exceeds %d", len(pkt), MaxPacketSize)
	}
	buf := make([]byte, 4+len(pkt))
	binary.LittleEndian.PutUint32(buf, uint32(len(pkt)))
	copy(buf[4:], pkt)
	_, err := p.Write(buf)
	return err
}

// Serve accepts connections on ln and attaches them to hub until ln is
// closed.
func Serve(ln net.Listener, hub *bridge.Hub) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		glog.Infof("stream client %s connected", conn.RemoteAddr())
		go func(conn net.Conn) {
			defer conn.Close()
			err := hub.Attach(New(conn))
			glog.Infof("stream client %s disconnected: %v", conn.RemoteAddr(), err)
		}(conn)
	}
}
