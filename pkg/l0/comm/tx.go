package comm

import (
	"sync"

	"github.com/robotalks/uartframe/pkg/l0/container"
)

// Transmitter starts sending a single byte. When the byte is out it must
// call TxComplete on the queue. TransmitByte is never called again before
// that, so it must not block.
type Transmitter interface {
	TransmitByte(b byte)
}

// TransmitByteFunc is func type of Transmitter.
type TransmitByteFunc func(byte)

// TransmitByte implements Transmitter.
func (f TransmitByteFunc) TransmitByte(b byte) {
	f(b)
}

// TxQueue is the transmit ring buffer.
//
// Foreground code queues bytes with Puts, which starts the transmitter when
// the link is idle. Each completion pops one byte and chains the next one,
// so at most one byte is in flight.
type TxQueue struct {
	ring    *container.Ring
	lock    sync.Mutex
	busy    bool
	tx      Transmitter
	spaceCh chan struct{}
}

// NewTxQueue creates a TxQueue with a ring of the given capacity.
func NewTxQueue(capacity int, tx Transmitter) *TxQueue {
	return &TxQueue{
		ring:    container.NewRing(capacity),
		tx:      tx,
		spaceCh: make(chan struct{}, 1),
	}
}

// Puts queues as many bytes of p as fit and returns how many were taken.
func (q *TxQueue) Puts(p []byte) int {
	q.lock.Lock()
	defer q.lock.Unlock()
	n := 0
	for n < len(p) {
		if _, ok := q.ring.PushHead(p[n]); !ok {
			break
		}
		n++
	}
	if !q.ring.Empty() && !q.busy {
		q.busy = true
		q.tx.TransmitByte(q.ring.At(q.ring.Tail()))
	}
	return n
}

// TxComplete is called when the byte at tail has been transmitted.
func (q *TxQueue) TxComplete() {
	q.lock.Lock()
	q.ring.PopTail()
	if q.ring.Empty() {
		q.busy = false
		q.lock.Unlock()
		q.notifySpace()
		return
	}
	next := q.ring.At(q.ring.Tail())
	q.lock.Unlock()
	q.notifySpace()
	q.tx.TransmitByte(next)
}

// Space returns a chan signaled whenever bytes leave the queue.
func (q *TxQueue) Space() <-chan struct{} {
	return q.spaceCh
}

// Busy reports whether a byte is in flight.
func (q *TxQueue) Busy() bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.busy
}

// Pending returns the number of queued bytes, including the one in flight.
func (q *TxQueue) Pending() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.ring.Len()
}

func (q *TxQueue) notifySpace() {
	select {
	case q.spaceCh <- struct{}{}:
	default:
	}
}
