package frame

const (
	crcInit       uint32 = 0xFFFFFFFF
	crcPolynomial uint32 = 0x04C11DB7
)

// crcUpdate feeds one byte into crc, MSB first, without reflection.
func crcUpdate(crc uint32, b byte) uint32 {
	crc ^= uint32(b) << 24
	for i := 0; i < 8; i++ {
		msb := crc >> 31
		crc <<= 1
		crc ^= -msb & crcPolynomial
	}
	return crc
}

// Checksum computes the CRC-32 variant used by frames over data as-is.
// The result is not complemented. This matches CRC-32/MPEG-2.
func Checksum(data []byte) uint32 {
	crc := crcInit
	for _, b := range data {
		crc = crcUpdate(crc, b)
	}
	return crc
}

// CRC32 computes the checksum of f over sender, receiver, data_len and data,
// zero-padded to a multiple of 4 bytes.
func (f *Frame) CRC32() uint32 {
	crc := crcInit
	crc = crcUpdate(crc, f.Sender)
	crc = crcUpdate(crc, f.Receiver)
	dataLen := uint16(len(f.Data))
	crc = crcUpdate(crc, byte(dataLen>>8))
	crc = crcUpdate(crc, byte(dataLen))
	for _, b := range f.Data {
		crc = crcUpdate(crc, b)
	}
	for n := headerSize + len(f.Data); n%4 != 0; n++ {
		crc = crcUpdate(crc, 0)
	}
	return crc
}
