package frame

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uartframe/pkg/l0/container"
)

func requireFrame(t *testing.T, expected, actual *Frame) {
	t.Helper()
	require.Equal(t, expected.Sender, actual.Sender, "sender")
	require.Equal(t, expected.Receiver, actual.Receiver, "receiver")
	require.True(t, bytes.Equal(expected.Data, actual.Data), "data: %x != %x", expected.Data, actual.Data)
}

func mustSerialize(t *testing.T, f *Frame) []byte {
	t.Helper()
	encoded, err := f.Serialize()
	require.NoError(t, err)
	return encoded
}

func TestChecksumCheckValue(t *testing.T) {
	require.Equal(t, uint32(0x0376E6E7), Checksum([]byte("123456789")))
	require.Equal(t, crcInit, Checksum(nil))
}

func TestCRC32Padding(t *testing.T) {
	f := &Frame{Sender: 7, Receiver: 9, Data: []byte{1, 2, 3}}
	// 4 header bytes + 3 data bytes, padded with one zero.
	require.Equal(t, Checksum([]byte{7, 9, 0, 3, 1, 2, 3, 0}), f.CRC32())

	f = &Frame{Sender: 7, Receiver: 9}
	require.Equal(t, Checksum([]byte{7, 9, 0, 0}), f.CRC32())
}

func TestCRC32Determinism(t *testing.T) {
	a := &Frame{Sender: 3, Receiver: 4, Data: []byte("hello")}
	b := &Frame{Sender: 3, Receiver: 4, Data: []byte("hello")}
	require.Equal(t, a.CRC32(), b.CRC32())
}

func TestCRC32SingleBitFlips(t *testing.T) {
	base := &Frame{Sender: 0x12, Receiver: 0x34, Data: []byte("the quick brown fox")}
	crc := base.CRC32()
	for bit := 0; bit < 8; bit++ {
		f := *base
		f.Sender ^= 1 << bit
		require.NotEqual(t, crc, f.CRC32(), "sender bit %d", bit)
		f = *base
		f.Receiver ^= 1 << bit
		require.NotEqual(t, crc, f.CRC32(), "receiver bit %d", bit)
	}
	for i := range base.Data {
		for bit := 0; bit < 8; bit++ {
			data := append([]byte(nil), base.Data...)
			data[i] ^= 1 << bit
			f := &Frame{Sender: base.Sender, Receiver: base.Receiver, Data: data}
			require.NotEqual(t, crc, f.CRC32(), "data[%d] bit %d", i, bit)
		}
	}
}

func TestSerializeEscapedPayload(t *testing.T) {
	f := &Frame{Sender: 1, Receiver: 2, Data: []byte{0x1B, 0x28, 0x29}}
	encoded := mustSerialize(t, f)

	require.Equal(t, BeginFrameByte, encoded[0])
	require.Equal(t, EndFrameByte, encoded[len(encoded)-1])
	require.Equal(t, []byte{1, 2, 0, 3}, encoded[1:5])
	require.Equal(t, []byte{0x1B, 0x41, 0x1B, 0x42, 0x1B, 0x43}, encoded[5:11])
	require.Equal(t, f.EncodedLen(), len(encoded))
	for _, b := range encoded[1 : len(encoded)-1] {
		require.NotEqual(t, BeginFrameByte, b)
		require.NotEqual(t, EndFrameByte, b)
	}

	var decoded Frame
	require.NoError(t, decoded.DeserializeFrom(encoded))
	requireFrame(t, f, &decoded)
}

func TestSerializeEmptyFrame(t *testing.T) {
	f := &Frame{Sender: 133, Receiver: 20}
	encoded := mustSerialize(t, f)
	require.True(t, len(encoded) >= FrameMinSize)
	decoded, err := Decode(encoded)
	require.NoError(t, err)
	requireFrame(t, f, decoded)
	require.True(t, f.Equal(decoded))
}

func TestSerializeErrors(t *testing.T) {
	f := &Frame{Data: make([]byte, FrameDataMaxSize+1)}
	require.Equal(t, ErrFrameTooLong, f.SerializeInto(container.NewVec[byte](4*FrameMaxSize)))
	_, err := f.Serialize()
	require.Equal(t, ErrFrameTooLong, err)

	f = &Frame{Sender: 1, Receiver: 2, Data: []byte("payload")}
	require.Equal(t, ErrBufferTooSmall, f.SerializeInto(container.NewVec[byte](5)))
	out := container.NewVec[byte](f.EncodedLen())
	require.NoError(t, f.SerializeInto(out))
	require.True(t, out.Full())
}

func TestRoundTripMaxSize(t *testing.T) {
	// every byte escaped is the worst case for the encoded size.
	f := &Frame{Sender: EscapeByte, Receiver: EndFrameByte, Data: bytes.Repeat([]byte{EscapeByte}, FrameDataMaxSize)}
	out := container.NewVec[byte](2 * FrameMaxSize)
	require.NoError(t, f.SerializeInto(out))
	var decoded Frame
	require.NoError(t, decoded.DeserializeFrom(out.Slice()))
	requireFrame(t, f, &decoded)
}

func TestRoundTripRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	var decoded Frame
	for i := 0; i < 200; i++ {
		data := make([]byte, rnd.Intn(64))
		rnd.Read(data)
		f := &Frame{Sender: byte(rnd.Intn(256)), Receiver: byte(rnd.Intn(256)), Data: data}
		require.NoError(t, decoded.DeserializeFrom(mustSerialize(t, f)))
		requireFrame(t, f, &decoded)
	}
}

func TestDeserializeReplacesData(t *testing.T) {
	decoded := Frame{Data: []byte("stale content that is longer")}
	f := &Frame{Sender: 5, Receiver: 6, Data: []byte("new")}
	require.NoError(t, decoded.DeserializeFrom(mustSerialize(t, f)))
	requireFrame(t, f, &decoded)
}

func TestDeserializeErrors(t *testing.T) {
	valid := mustSerialize(t, &Frame{Sender: 1, Receiver: 2, Data: []byte("abcdef")})
	corrupt := append([]byte(nil), valid...)
	corrupt[6] = 'x'
	badStart := append([]byte(nil), valid...)
	badStart[0] = 'x'
	badEnd := append([]byte(nil), valid...)
	badEnd[len(badEnd)-1] = 'x'

	testCases := []struct {
		name    string
		encoded []byte
		err     error
	}{
		{"too short", []byte("()"), ErrUnexpectedEOF},
		{"invalid start", badStart, ErrInvalidStartByte},
		{"invalid end", badEnd, ErrInvalidEndByte},
		{"crc mismatch", corrupt, ErrCRC32Mismatch},
		{"invalid escape", []byte{'(', EscapeByte, 0x50, 0, 0, 0, 0, 0, 0, 0, 0, ')'}, ErrInvalidEscapeSequence},
		{"unescaped begin", []byte{'(', '(', 0, 0, 0, 0, 0, 0, 0, 0, ')'}, ErrInvalidByte},
		{"data too big", []byte{'(', 1, 2, 0xFF, 0xFF, 0, 0, 0, 0, 0, ')'}, ErrDataTooBig},
		{"trailing escape", []byte{'(', 0, 0, 0, 0, 0, 0, 0, 0, EscapeByte, ')'}, ErrUnexpectedEOF},
		{"missing checksum", []byte{'(', 1, 2, 0, 5, 'a', 'b', 'c', 'd', 'e', ')'}, ErrUnexpectedEOF},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var f Frame
			require.Equal(t, tc.err, f.DeserializeFrom(tc.encoded))
		})
	}
}

func TestDeserializeTruncated(t *testing.T) {
	f := &Frame{Sender: 0x1B, Receiver: 2, Data: []byte("hell(o w)or\x1bld")}
	encoded := mustSerialize(t, f)
	for n := 0; n < len(encoded)-1; n++ {
		var decoded Frame
		// content cut short but still delimited.
		sealed := append(append([]byte(nil), encoded[:n]...), EndFrameByte)
		if n == 0 {
			sealed = []byte{EndFrameByte}
		}
		require.Equal(t, ErrUnexpectedEOF, decoded.DeserializeFrom(sealed), "sealed prefix %d", n)

		err := decoded.DeserializeFrom(encoded[:n])
		require.Error(t, err, "prefix %d", n)
		if n < FrameMinSize {
			require.Equal(t, ErrUnexpectedEOF, err)
		} else {
			require.Equal(t, ErrInvalidEndByte, err)
		}
	}
}
