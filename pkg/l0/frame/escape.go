package frame

// escapeTable maps each reserved byte to the substitute that follows
// EscapeByte on the wire.
var escapeTable = [...]struct {
	raw byte
	sub byte
}{
	{EscapeByte, 0x41},
	{BeginFrameByte, 0x42},
	{EndFrameByte, 0x43},
}

// IsReserved reports whether b must be escaped inside a frame.
func IsReserved(b byte) bool {
	for _, e := range escapeTable {
		if e.raw == b {
			return true
		}
	}
	return false
}

// EncodeByte returns the wire sequence for b and its length, which is 2 for
// reserved bytes and 1 otherwise.
func EncodeByte(b byte) (seq [2]byte, n int) {
	for _, e := range escapeTable {
		if e.raw == b {
			return [2]byte{EscapeByte, e.sub}, 2
		}
	}
	return [2]byte{b}, 1
}

// DecodeByte decodes the first byte of window. It returns the decoded byte
// and how many bytes of window were consumed. window needs 2 bytes to look
// past an EscapeByte.
func DecodeByte(window []byte) (byte, int, error) {
	if len(window) == 0 {
		return 0, 0, ErrUnexpectedEOF
	}
	switch window[0] {
	case EscapeByte:
		if len(window) < 2 {
			return 0, 0, ErrUnexpectedEOF
		}
		for _, e := range escapeTable {
			if e.sub == window[1] {
				return e.raw, 2, nil
			}
		}
		return 0, 0, ErrInvalidEscapeSequence
	case BeginFrameByte, EndFrameByte:
		// a delimiter inside a frame means bytes were lost on the link.
		return 0, 0, ErrInvalidByte
	}
	return window[0], 1, nil
}

// ByteSink receives bytes one at a time and hands back a byte it can't take.
// *container.Vec[byte] implements it.
type ByteSink interface {
	Push(byte) (byte, bool)
}

// stuffer writes to a ByteSink and remembers whether anything was rejected.
type stuffer struct {
	out ByteSink
	ok  bool
}

func (s *stuffer) raw(b byte) {
	if _, ok := s.out.Push(b); !ok {
		s.ok = false
	}
}

func (s *stuffer) encode(b byte) {
	seq, n := EncodeByte(b)
	for _, c := range seq[:n] {
		s.raw(c)
	}
}

func (s *stuffer) encodeBytes(data []byte) {
	for _, b := range data {
		s.encode(b)
	}
}
