package frame

import "github.com/robotalks/uartframe/pkg/l0/container"

// RingBuffer is read access to a circular byte buffer, as provided by
// *container.Ring.
type RingBuffer interface {
	// At returns the raw slot at index i modulo Cap.
	At(i int) byte
	Head() int
	Tail() int
	Len() int
	Cap() int
}

// RingScanner is a RingBuffer whose tail can be moved by a consumer.
type RingScanner interface {
	RingBuffer
	SetTail(i int)
}

// DeserializeFromRing decodes the frame starting at the tail of rb, in place,
// without copying the encoded bytes out first. The tail is not moved.
//
// The caller must ensure rb holds an EndFrameByte at or before its last
// written byte; Extractor does that.
func (f *Frame) DeserializeFromRing(rb RingBuffer) error {
	size, tail := rb.Cap(), rb.Tail()
	if rb.At(tail) != BeginFrameByte {
		return ErrInvalidStartByte
	}
	if rb.Len() < FrameMinSize {
		return ErrUnexpectedEOF
	}

	// the delimiters are not part of the decoded content.
	var storage [FrameMaxSize - 2]byte
	decoded := container.VecOver(storage[:])

	last := rb.Head() - 1
	if last < 0 {
		last = size - 1
	}
	idx := (tail + 1) % size
	remain := (last - idx + size) % size
	var window [2]byte
	for remain > 0 {
		if rb.At(idx) == EndFrameByte {
			break
		}
		// a pair is read so an escape sequence can straddle the wrap point.
		window[0], window[1] = rb.At(idx), rb.At((idx+1)%size)
		b, n, err := DecodeByte(window[:])
		if err != nil {
			return err
		}
		if _, ok := decoded.Push(b); !ok {
			return ErrDataTooBig
		}
		if n > remain {
			return ErrUnexpectedEOF
		}
		idx = (idx + n) % size
		remain -= n
	}
	if rb.At(idx) != EndFrameByte {
		return ErrUnexpectedEOF
	}
	return f.deserializeDecoded(decoded.Slice())
}
