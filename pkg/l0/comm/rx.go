package comm

import (
	"sync"

	"github.com/robotalks/uartframe/pkg/l0/container"
	"github.com/robotalks/uartframe/pkg/l0/frame"
)

// DefaultRingSize is the capacity of the receive and transmit rings.
const DefaultRingSize = frame.FrameMaxSize * 4

// RxLink owns the receive ring buffer.
//
// ReceiveByte is the producer side, called for every byte arriving on the
// link. Poll is the consumer side. The lock stands for masking the receive
// interrupt: both sides hold it for their whole read-then-write sequence on
// the head/tail pair.
type RxLink struct {
	ring      *container.Ring
	lock      sync.Mutex
	extractor frame.Extractor
}

// NewRxLink creates a RxLink with a ring of the given capacity.
func NewRxLink(capacity int) *RxLink {
	return &RxLink{ring: container.NewRing(capacity)}
}

// ReceiveByte stores b at the next write slot and advances head. Under
// sustained overflow the oldest unread byte is dropped.
func (l *RxLink) ReceiveByte(b byte) {
	l.lock.Lock()
	*l.ring.NextSlot() = b
	l.ring.AdvanceHead()
	l.lock.Unlock()
}

// Receive calls ReceiveByte for each byte in p.
func (l *RxLink) Receive(p []byte) {
	for _, b := range p {
		l.ReceiveByte(b)
	}
}

// Poll extracts the next frame into f.
// It returns false with nil error when no complete frame is buffered, and
// false with the decode error when a candidate was dropped; polling again
// may still yield a frame.
func (l *RxLink) Poll(f *frame.Frame) (bool, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	for {
		resyncs := l.extractor.Stats.Resyncs
		ok, err := l.extractor.ExtractInto(l.ring, f)
		if ok || err != nil {
			return ok, err
		}
		// a resync moved tail onto a new begin byte which may already
		// delimit a full frame.
		if l.extractor.Stats.Resyncs == resyncs {
			return false, nil
		}
	}
}

// Buffered returns the number of unread bytes.
func (l *RxLink) Buffered() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.ring.Len()
}

// Stats returns a snapshot of the extraction counters.
func (l *RxLink) Stats() frame.Stats {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.extractor.Stats
}
