package container

// Vec is a sequence with a fixed capacity and a dynamic length.
type Vec[T any] struct {
	buf []T
	n   int
}

// NewVec creates an empty Vec able to hold capacity elements.
func NewVec[T any](capacity int) *Vec[T] {
	return &Vec[T]{buf: make([]T, capacity)}
}

// NewVecOf creates a Vec of length 1 holding seed.
func NewVecOf[T any](capacity int, seed T) *Vec[T] {
	v := NewVec[T](capacity)
	v.Push(seed)
	return v
}

// VecOver creates an empty Vec using storage as its backing array.
// The capacity is len(storage).
func VecOver[T any](storage []T) *Vec[T] {
	return &Vec[T]{buf: storage[:len(storage):len(storage)]}
}

// Push appends val. If the Vec is full, val is returned with ok false.
func (v *Vec[T]) Push(val T) (rejected T, ok bool) {
	if v.n >= len(v.buf) {
		return val, false
	}
	v.buf[v.n] = val
	v.n++
	return rejected, true
}

// Pop removes and returns the last element.
func (v *Vec[T]) Pop() (val T, ok bool) {
	if v.n == 0 {
		return val, false
	}
	v.n--
	return v.buf[v.n], true
}

// PushSlice appends as many values as fit and returns how many were taken.
// It stops at the first rejection, so a partial write is possible.
func (v *Vec[T]) PushSlice(vals []T) int {
	for n, val := range vals {
		if _, ok := v.Push(val); !ok {
			return n
		}
	}
	return len(vals)
}

// Clear resets the length to 0. Storage is left as-is.
func (v *Vec[T]) Clear() {
	v.n = 0
}

// Truncate shortens the Vec to n elements. It is a no-op if n >= Len.
func (v *Vec[T]) Truncate(n int) {
	if n >= 0 && n < v.n {
		v.n = n
	}
}

// Len returns the number of live elements.
func (v *Vec[T]) Len() int {
	return v.n
}

// Cap returns the fixed capacity.
func (v *Vec[T]) Cap() int {
	return len(v.buf)
}

// Full reports whether another Push would be rejected.
func (v *Vec[T]) Full() bool {
	return v.n == len(v.buf)
}

// Slice returns the live elements. The slice aliases the Vec storage and is
// only valid until the next mutation.
func (v *Vec[T]) Slice() []T {
	return v.buf[:v.n:v.n]
}
