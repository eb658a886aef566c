package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeReservedBytes(t *testing.T) {
	testCases := []struct {
		raw byte
		sub byte
	}{
		{EscapeByte, 0x41},
		{BeginFrameByte, 0x42},
		{EndFrameByte, 0x43},
	}
	for _, tc := range testCases {
		seq, n := EncodeByte(tc.raw)
		require.Equal(t, 2, n)
		require.Equal(t, [2]byte{EscapeByte, tc.sub}, seq)
		b, read, err := DecodeByte(seq[:n])
		require.NoError(t, err)
		require.Equal(t, 2, read)
		require.Equal(t, tc.raw, b)
	}
}

func TestEscapeIdentityForOtherBytes(t *testing.T) {
	for i := 0; i < 256; i++ {
		b := byte(i)
		if IsReserved(b) {
			continue
		}
		seq, n := EncodeByte(b)
		require.Equal(t, 1, n)
		require.Equal(t, b, seq[0])
		decoded, read, err := DecodeByte([]byte{b, EscapeByte})
		require.NoError(t, err)
		require.Equal(t, 1, read)
		require.Equal(t, b, decoded)
	}
}

func TestDecodeByteErrors(t *testing.T) {
	testCases := []struct {
		name   string
		window []byte
		err    error
	}{
		{"empty", nil, ErrUnexpectedEOF},
		{"lone escape", []byte{EscapeByte}, ErrUnexpectedEOF},
		{"unknown substitute", []byte{EscapeByte, 0x44}, ErrInvalidEscapeSequence},
		{"escaped end byte", []byte{EscapeByte, EndFrameByte}, ErrInvalidEscapeSequence},
		{"raw begin", []byte{BeginFrameByte, 0x00}, ErrInvalidByte},
		{"raw end", []byte{EndFrameByte}, ErrInvalidByte},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, n, err := DecodeByte(tc.window)
			require.Equal(t, tc.err, err)
			require.Equal(t, 0, n)
		})
	}
}

func TestErrorNames(t *testing.T) {
	require.Equal(t, "CRC32MissMatch", ErrCRC32Mismatch.String())
	require.Equal(t, "frame: CRC32 mismatch", ErrCRC32Mismatch.Error())
	require.Equal(t, "BufferTooSmall", ErrBufferTooSmall.String())
	require.Equal(t, "frame: unknown deserialize error", DeserializeError(200).Error())
}
