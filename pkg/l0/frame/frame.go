package frame

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/robotalks/uartframe/pkg/l0/container"
)

// Frame is one protocol message.
type Frame struct {
	Sender   byte
	Receiver byte
	Data     []byte
}

// Equal compares two frames field by field. Nil and empty Data are equal.
func (f *Frame) Equal(o *Frame) bool {
	return f.Sender == o.Sender && f.Receiver == o.Receiver && bytes.Equal(f.Data, o.Data)
}

// String implements fmt.Stringer.
func (f *Frame) String() string {
	return fmt.Sprintf("%d->%d [%d] %q", f.Sender, f.Receiver, len(f.Data), f.Data)
}

// EncodedLen returns the exact size of f on the wire.
func (f *Frame) EncodedLen() int {
	n := 2 + headerSize + crcSize + len(f.Data)
	add := func(b byte) {
		if IsReserved(b) {
			n++
		}
	}
	add(f.Sender)
	add(f.Receiver)
	dataLen := uint16(len(f.Data))
	add(byte(dataLen >> 8))
	add(byte(dataLen))
	for _, b := range f.Data {
		add(b)
	}
	var crc [crcSize]byte
	binary.BigEndian.PutUint32(crc[:], f.CRC32())
	for _, b := range crc {
		add(b)
	}
	return n
}

// SerializeInto writes the wire form of f into out.
// On error out may hold a partial frame which must be discarded.
func (f *Frame) SerializeInto(out ByteSink) error {
	if len(f.Data) > FrameDataMaxSize {
		return ErrFrameTooLong
	}
	s := stuffer{out: out, ok: true}
	s.raw(BeginFrameByte)
	s.encode(f.Sender)
	s.encode(f.Receiver)
	var field [crcSize]byte
	binary.BigEndian.PutUint16(field[:2], uint16(len(f.Data)))
	s.encodeBytes(field[:2])
	s.encodeBytes(f.Data)
	binary.BigEndian.PutUint32(field[:], f.CRC32())
	s.encodeBytes(field[:])
	s.raw(EndFrameByte)
	if !s.ok {
		return ErrBufferTooSmall
	}
	return nil
}

// Serialize returns the wire form of f in a new slice.
func (f *Frame) Serialize() ([]byte, error) {
	if len(f.Data) > FrameDataMaxSize {
		return nil, ErrFrameTooLong
	}
	out := container.NewVec[byte](f.EncodedLen())
	if err := f.SerializeInto(out); err != nil {
		return nil, err
	}
	return out.Slice(), nil
}

// DeserializeFrom decodes a complete wire frame from encoded, replacing the
// content of f. On error the content of f is unspecified.
func (f *Frame) DeserializeFrom(encoded []byte) error {
	if len(encoded) < FrameMinSize {
		return ErrUnexpectedEOF
	}
	if encoded[0] != BeginFrameByte {
		return ErrInvalidStartByte
	}
	if encoded[len(encoded)-1] != EndFrameByte {
		return ErrInvalidEndByte
	}
	var storage [FrameMaxSize]byte
	decoded := container.VecOver(storage[:])
	for data := encoded[1 : len(encoded)-1]; len(data) > 0; {
		b, n, err := DecodeByte(data)
		if err != nil {
			return err
		}
		if _, ok := decoded.Push(b); !ok {
			return ErrDataTooBig
		}
		data = data[n:]
	}
	return f.deserializeDecoded(decoded.Slice())
}

// Decode is a convenience for DeserializeFrom into a new Frame.
func Decode(encoded []byte) (*Frame, error) {
	var f Frame
	if err := f.DeserializeFrom(encoded); err != nil {
		return nil, err
	}
	return &f, nil
}

type fieldReader struct {
	buf []byte
	idx int
}

func (r *fieldReader) next(n int) ([]byte, error) {
	if r.idx+n > len(r.buf) {
		return nil, ErrUnexpectedEOF
	}
	b := r.buf[r.idx : r.idx+n]
	r.idx += n
	return b, nil
}

// deserializeDecoded parses the unstuffed content between the delimiters.
func (f *Frame) deserializeDecoded(decoded []byte) error {
	r := fieldReader{buf: decoded}
	field, err := r.next(1)
	if err != nil {
		return err
	}
	f.Sender = field[0]
	if field, err = r.next(1); err != nil {
		return err
	}
	f.Receiver = field[0]
	if field, err = r.next(2); err != nil {
		return err
	}
	dataLen := int(binary.BigEndian.Uint16(field))
	if dataLen > FrameDataMaxSize {
		return ErrDataTooBig
	}
	// data must be followed by at least part of the checksum.
	if r.idx+dataLen >= len(decoded) {
		return ErrUnexpectedEOF
	}
	data, _ := r.next(dataLen)
	f.Data = append(f.Data[:0], data...)
	if field, err = r.next(crcSize); err != nil {
		return err
	}
	crc := binary.BigEndian.Uint32(field)
	if r.idx != len(decoded) {
		return ErrExpectedEOF
	}
	if crc != f.CRC32() {
		return ErrCRC32Mismatch
	}
	return nil
}
