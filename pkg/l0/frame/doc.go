// Package frame implements the L0 wire format.
//
// A frame is delimited by BeginFrameByte and EndFrameByte. Everything in
// between is byte-stuffed so that neither delimiter nor EscapeByte ever
// appears raw inside a frame:
//
//	'(' | sender(1) | receiver(1) | data_len(2) | data(data_len) | crc32(4) | ')'
//
// Multi-byte fields are big-endian. The checksum is a non-reflected CRC-32
// (poly 0x04C11DB7, init 0xFFFFFFFF, no final complement) over
// sender, receiver, data_len and data, zero-padded to a multiple of 4 bytes.
// The padding is never transmitted.
//
// Frames can be decoded from a flat slice or in place from a ring buffer
// that a producer keeps filling; Extractor locates frame boundaries in such
// a buffer and resynchronizes after corruption.
package frame

const (
	// EscapeByte prefixes a substitute for a reserved byte.
	EscapeByte byte = 0x1B
	// BeginFrameByte starts every frame and is never escaped there.
	BeginFrameByte byte = '('
	// EndFrameByte ends every frame and is never escaped there.
	EndFrameByte byte = ')'
)

const (
	// FrameMaxSize is the largest frame before byte-stuffing.
	FrameMaxSize = 1280
	// FrameMinSize is the size of a frame with empty data.
	FrameMinSize = 10
	// FrameDataMaxSize is the largest data payload of a frame.
	FrameDataMaxSize = FrameMaxSize - FrameMinSize - 2
)

// headerSize covers sender, receiver and data_len.
const headerSize = 4

// crcSize is the size of the trailing checksum.
const crcSize = 4
