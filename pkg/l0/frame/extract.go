package frame

import (
	"errors"

	"github.com/golang/glog"
)

// Stats counts what an Extractor has seen.
type Stats struct {
	// Frames is the number of frames decoded successfully.
	Frames uint64
	// Resyncs is the number of candidates abandoned because another
	// BeginFrameByte showed up before an EndFrameByte.
	Resyncs uint64
	// Dropped counts delimited candidates that failed to decode, by error.
	Dropped [numDeserializeErrors]uint64
}

// DroppedBy returns the drop count for err.
func (s *Stats) DroppedBy(err DeserializeError) uint64 {
	if int(err) >= len(s.Dropped) {
		return 0
	}
	return s.Dropped[err]
}

// TotalDropped returns the number of dropped candidates.
func (s *Stats) TotalDropped() (n uint64) {
	for _, c := range s.Dropped {
		n += c
	}
	return
}

// Extractor pulls frames out of a ring buffer fed by an asynchronous
// producer.
//
// Extractor does no locking itself. The caller must hold whatever lock keeps
// the producer from moving head while ExtractInto runs, and release it
// afterwards.
type Extractor struct {
	Stats Stats
}

// ExtractInto looks for the next delimited frame in rb and decodes it into f.
//
// It returns true when f holds a valid frame. It returns false with a nil
// error when no complete frame is available yet, and false with the decode
// error when a delimited candidate was dropped. Either way the tail of rb has
// been moved past anything that can't start a frame, so a corrupt frame is
// consumed exactly once.
func (x *Extractor) ExtractInto(rb RingScanner, f *Frame) (bool, error) {
	size, head, tail := rb.Cap(), rb.Head(), rb.Tail()

	for tail != head && rb.At(tail) != BeginFrameByte {
		tail = (tail + 1) % size
	}
	rb.SetTail(tail)
	if tail == head {
		return false, nil
	}

	idx := (tail + 1) % size
	for idx != head && rb.At(idx) != EndFrameByte {
		if rb.At(idx) == BeginFrameByte {
			// the current candidate lost its end; restart from here.
			rb.SetTail(idx)
			x.Stats.Resyncs++
			return false, nil
		}
		idx = (idx + 1) % size
	}
	if idx == head {
		// wait for more bytes.
		return false, nil
	}

	err := f.DeserializeFromRing(rb)
	rb.SetTail((idx + 1) % size)
	if err != nil {
		x.recordDrop(err)
		return false, err
	}
	x.Stats.Frames++
	return true, nil
}

// Extract is ExtractInto with a new Frame.
func (x *Extractor) Extract(rb RingScanner) (*Frame, bool) {
	var f Frame
	if ok, _ := x.ExtractInto(rb, &f); ok {
		return &f, true
	}
	return nil, false
}

func (x *Extractor) recordDrop(err error) {
	var derr DeserializeError
	if !errors.As(err, &derr) {
		return
	}
	if int(derr) < len(x.Stats.Dropped) {
		x.Stats.Dropped[derr]++
	}
	if derr == ErrExpectedEOF {
		glog.Errorf("frame: trailing bytes after checksum, decoder defect (%d so far)", x.Stats.Dropped[derr])
	} else {
		glog.V(2).Infof("frame: dropped candidate: %v", err)
	}
}
