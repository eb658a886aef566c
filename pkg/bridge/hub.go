package bridge

import (
	"io"
	"sync"

	"github.com/golang/glog"
)

// Hub is a PacketReadWriter over many attached clients.
// Packets written to the hub are broadcast to every client, packets read
// from any client are read from the hub.
type Hub struct {
	lock     sync.RWMutex
	clients  map[*hubClient]struct{}
	packetCh chan []byte
	closeCh  chan struct{}
	closed   sync.Once
}

type hubClient struct {
	rw        PacketReadWriter
	writeLock sync.Mutex
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*hubClient]struct{}),
		packetCh: make(chan []byte),
		closeCh:  make(chan struct{}),
	}
}

// Attach adds rw to the hub and reads from it until it fails or the hub is
// closed.
func (h *Hub) Attach(rw PacketReadWriter) error {
	c := &hubClient{rw: rw}
	h.lock.Lock()
	h.clients[c] = struct{}{}
	h.lock.Unlock()
	defer func() {
		h.lock.Lock()
		delete(h.clients, c)
		h.lock.Unlock()
	}()
	for {
		pkt, err := rw.ReadPacket()
		if err != nil {
			return err
		}
		select {
		case h.packetCh <- pkt:
		case <-h.closeCh:
			return io.EOF
		}
	}
}

// Clients returns the number of attached clients.
func (h *Hub) Clients() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}

// ReadPacket implements PacketReader.
func (h *Hub) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-h.packetCh:
		return pkt, nil
	case <-h.closeCh:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
// A client failing to write is left to its reader to detach.
func (h *Hub) WritePacket(pkt []byte) error {
	h.lock.RLock()
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.lock.RUnlock()
	for _, c := range clients {
		c.writeLock.Lock()
		err := c.rw.WritePacket(pkt)
		c.writeLock.Unlock()
		if err != nil {
			glog.V(1).Infof("hub client write: %v", err)
		}
	}
	return nil
}

// Close implements io.Closer.
func (h *Hub) Close() error {
	h.closed.Do(func() { close(h.closeCh) })
	return nil
}
