package frame

// SerializeError is returned when a Frame can't be serialized.
type SerializeError uint8

// Serialize errors.
const (
	// ErrFrameTooLong means Data exceeds FrameDataMaxSize.
	ErrFrameTooLong SerializeError = iota + 1
	// ErrBufferTooSmall means the destination ran out of capacity. Whatever
	// was written to it is an unusable prefix.
	ErrBufferTooSmall
)

var serializeErrorNames = [...]string{
	ErrFrameTooLong:   "FrameTooLongError",
	ErrBufferTooSmall: "BufferTooSmall",
}

var serializeErrorMessages = [...]string{
	ErrFrameTooLong:   "frame too long",
	ErrBufferTooSmall: "buffer too small",
}

// Error implements error.
func (e SerializeError) Error() string {
	if int(e) < len(serializeErrorMessages) && e != 0 {
		return "frame: " + serializeErrorMessages[e]
	}
	return "frame: unknown serialize error"
}

// String returns the error name.
func (e SerializeError) String() string {
	if int(e) < len(serializeErrorNames) && e != 0 {
		return serializeErrorNames[e]
	}
	return "SerializeError(?)"
}

// DeserializeError is returned when bytes can't be decoded into a Frame.
// None of them is fatal to a stream: the candidate frame is dropped.
type DeserializeError uint8

// Deserialize errors.
const (
	// ErrInvalidStartByte means the input doesn't start with BeginFrameByte.
	ErrInvalidStartByte DeserializeError = iota + 1
	// ErrInvalidEndByte means the input doesn't end with EndFrameByte.
	ErrInvalidEndByte
	// ErrUnexpectedEOF means the input ended before a field was complete.
	ErrUnexpectedEOF
	// ErrExpectedEOF means bytes are left after the checksum. The length
	// checks before it make this unreachable; seeing it is a defect.
	ErrExpectedEOF
	// ErrCRC32Mismatch means the frame decoded fully but its checksum is
	// wrong. The content must not be acted upon.
	ErrCRC32Mismatch
	// ErrInvalidEscapeSequence means EscapeByte is followed by an unknown
	// substitute.
	ErrInvalidEscapeSequence
	// ErrDataTooBig means the declared or decoded size exceeds the limits.
	ErrDataTooBig
	// ErrInvalidByte means a reserved byte appeared unescaped inside a frame.
	ErrInvalidByte

	numDeserializeErrors = int(ErrInvalidByte) + 1
)

var deserializeErrorNames = [...]string{
	ErrInvalidStartByte:      "InvalidStartByte",
	ErrInvalidEndByte:        "InvalidEndByte",
	ErrUnexpectedEOF:         "UnexpectedEOF",
	ErrExpectedEOF:           "ExpectedEOF",
	ErrCRC32Mismatch:         "CRC32MissMatch",
	ErrInvalidEscapeSequence: "InvalidEscapeSequence",
	ErrDataTooBig:            "DataTooBig",
	ErrInvalidByte:           "InvalidByte",
}

var deserializeErrorMessages = [...]string{
	ErrInvalidStartByte:      "invalid frame start byte",
	ErrInvalidEndByte:        "invalid frame end byte",
	ErrUnexpectedEOF:         "unexpected EOF",
	ErrExpectedEOF:           "expected EOF after checksum",
	ErrCRC32Mismatch:         "CRC32 mismatch",
	ErrInvalidEscapeSequence: "invalid escape sequence",
	ErrDataTooBig:            "data too big",
	ErrInvalidByte:           "unescaped reserved byte",
}

// Error implements error.
func (e DeserializeError) Error() string {
	if int(e) < len(deserializeErrorMessages) && e != 0 {
		return "frame: " + deserializeErrorMessages[e]
	}
	return "frame: unknown deserialize error"
}

// String returns the error name.
func (e DeserializeError) String() string {
	if int(e) < len(deserializeErrorNames) && e != 0 {
		return deserializeErrorNames[e]
	}
	return "DeserializeError(?)"
}
