package sh

import (
	"fmt"
	"sync"
	"time"

	"github.com/robotalks/uartframe/pkg/l0/frame"
)

// DefaultHistorySize is the number of frames kept by History.
const DefaultHistorySize = 64

// Direction of a recorded frame.
type Direction string

// Directions.
const (
	Sent     Direction = "TX"
	Received Direction = "RX"
	Dropped  Direction = "DROP"
)

// Entry is a recorded frame.
type Entry struct {
	Time      time.Time `json:"time"`
	Direction Direction `json:"direction"`
	Sender    byte      `json:"sender"`
	Receiver  byte      `json:"receiver"`
	Data      string    `json:"data,omitempty"`
	CRC32     uint32    `json:"crc32"`
	Length    int       `json:"length"`
	Err       string    `json:"error,omitempty"`
}

// String formats the entry for display.
func (e *Entry) String() string {
	ts := e.Time.Format("15:04:05.000")
	if e.Direction == Dropped {
		return fmt.Sprintf("%s %-4s %s", ts, e.Direction, e.Err)
	}
	return fmt.Sprintf("%s %-4s %3d -> %3d crc=%08x len=%d %q",
		ts, e.Direction, e.Sender, e.Receiver, e.CRC32, e.Length, e.Data)
}

// History records recent link activity. It implements comm.Observer.
type History struct {
	size    int
	lock    sync.Mutex
	entries []Entry
}

// NewHistory creates a History keeping the last size entries.
func NewHistory(size int) *History {
	return &History{size: size}
}

func (h *History) add(e Entry) {
	e.Time = time.Now()
	h.lock.Lock()
	defer h.lock.Unlock()
	if len(h.entries) >= h.size {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, e)
}

func entryOf(dir Direction, f *frame.Frame) Entry {
	return Entry{
		Direction: dir,
		Sender:    f.Sender,
		Receiver:  f.Receiver,
		Data:      string(f.Data),
		CRC32:     f.CRC32(),
		Length:    f.EncodedLen(),
	}
}

// FrameReceived implements comm.Observer.
func (h *History) FrameReceived(f *frame.Frame) {
	h.add(entryOf(Received, f))
}

// FrameSent implements comm.Observer.
func (h *History) FrameSent(f *frame.Frame) {
	h.add(entryOf(Sent, f))
}

// FrameDropped implements comm.Observer.
func (h *History) FrameDropped(err error) {
	h.add(Entry{Direction: Dropped, Err: err.Error()})
}

// Entries returns a copy of recorded entries, oldest first.
func (h *History) Entries() []Entry {
	h.lock.Lock()
	defer h.lock.Unlock()
	return append([]Entry(nil), h.entries...)
}
