package container

// Ring is a circular byte buffer with a fixed capacity.
//
// head is the next slot to write and tail the next slot to read, both taken
// modulo Cap. The buffer is empty when head == tail, so at most Cap-1 bytes
// are distinguishable.
//
// Ring does no locking. A producer advancing head and a consumer advancing
// tail from different goroutines must share a lock around multi-step
// updates.
type Ring struct {
	buf  []byte
	head int
	tail int
}

// NewRing creates a Ring with the given capacity, which must be at least 2.
func NewRing(capacity int) *Ring {
	if capacity < 2 {
		panic("container: ring capacity must be at least 2")
	}
	return &Ring{buf: make([]byte, capacity)}
}

// PushHead writes val at head and advances it. On a full buffer nothing is
// written and val is returned with ok false.
func (r *Ring) PushHead(val byte) (rejected byte, ok bool) {
	next := (r.head + 1) % len(r.buf)
	if next == r.tail {
		return val, false
	}
	r.buf[r.head] = val
	r.head = next
	return 0, true
}

// PopTail reads the byte at tail and advances it.
func (r *Ring) PopTail() (byte, bool) {
	if r.tail == r.head {
		return 0, false
	}
	b := r.buf[r.tail]
	r.tail = (r.tail + 1) % len(r.buf)
	return b, true
}

// NextSlot returns the slot head points at, so an external byte source can
// write into it before calling AdvanceHead.
func (r *Ring) NextSlot() *byte {
	return &r.buf[r.head]
}

// AdvanceHead advances head unconditionally. If head lands on tail the
// oldest unread byte is dropped by advancing tail as well.
func (r *Ring) AdvanceHead() {
	r.head = (r.head + 1) % len(r.buf)
	if r.head == r.tail {
		r.tail = (r.tail + 1) % len(r.buf)
	}
}

// Len returns the number of unread bytes.
func (r *Ring) Len() int {
	return (r.head - r.tail + len(r.buf)) % len(r.buf)
}

// Cap returns the capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Empty reports whether there are no unread bytes.
func (r *Ring) Empty() bool {
	return r.head == r.tail
}

// At returns the raw slot at index i modulo Cap, regardless of whether it
// holds a live byte.
func (r *Ring) At(i int) byte {
	return r.buf[i%len(r.buf)]
}

// Head returns the head index.
func (r *Ring) Head() int {
	return r.head
}

// Tail returns the tail index.
func (r *Ring) Tail() int {
	return r.tail
}

// SetTail moves tail to index i modulo Cap. It is used by scanners that
// consume bytes in place.
func (r *Ring) SetTail(i int) {
	r.tail = i % len(r.buf)
}

// Reset drops all unread bytes.
func (r *Ring) Reset() {
	r.head, r.tail = 0, 0
}
