package mqtt

import (
	"context"
	"io"
	"sync"
)

// Default topics relative to the queue prefix.
const (
	// TopicRx carries frames received from the serial link.
	TopicRx = "rx"
	// TopicTx carries frames to be written to the serial link.
	TopicTx = "tx"
)

// ReadWriter implements bridge.PacketReadWriter.
// Packets are read from SubTopic and written to PubTopic.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
	doneCh   chan struct{}
	done     sync.Once
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 16),
		doneCh:   make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForBridge sets topics as seen by the bridge:
// SubTopic = tx, PubTopic = rx
func (p *ReadWriter) ForBridge() *ReadWriter {
	return p.WithTopics(TopicTx, TopicRx)
}

// ForClient sets topics as seen by a remote client of the bridge:
// SubTopic = rx, PubTopic = tx
func (p *ReadWriter) ForClient() *ReadWriter {
	return p.WithTopics(TopicRx, TopicTx)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.doneCh:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, p.handleMsg)
	defer sub.Close()
	defer p.done.Do(func() { close(p.doneCh) })
	<-ctx.Done()
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.doneCh:
	}
}
