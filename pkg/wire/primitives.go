package wire

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// WriteBool appends a single byte: 0 for false, 1 for true.
func WriteBool(sink []byte, v bool) []byte {
	if v {
		return append(sink, 1)
	}
	return append(sink, 0)
}

// ReadBool reads one byte, failing OutOfRange if it is neither 0 nor 1.
func ReadBool(c *Cursor) (bool, error) {
	b, err := c.take(1, "bool")
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, outOfRange("bool")
	}
}

// WriteUint8 appends one byte.
func WriteUint8(sink []byte, v uint8) []byte {
	return append(sink, v)
}

// ReadUint8 reads one byte.
func ReadUint8(c *Cursor) (uint8, error) {
	b, err := c.take(1, "u8")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteInt8 appends one byte.
func WriteInt8(sink []byte, v int8) []byte {
	return append(sink, byte(v))
}

// ReadInt8 reads one byte.
func ReadInt8(c *Cursor) (int8, error) {
	v, err := ReadUint8(c)
	return int8(v), err
}

// WriteUint16 appends a big-endian uint16.
func WriteUint16(sink []byte, v uint16) []byte {
	return append(sink, byte(v>>8), byte(v))
}

// ReadUint16 reads a big-endian uint16.
func ReadUint16(c *Cursor) (uint16, error) {
	b, err := c.take(2, "u16")
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// WriteUint16LE appends a little-endian uint16.
func WriteUint16LE(sink []byte, v uint16) []byte {
	return append(sink, byte(v), byte(v>>8))
}

// ReadUint16LE reads a little-endian uint16.
func ReadUint16LE(c *Cursor) (uint16, error) {
	b, err := c.take(2, "u16le")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// WriteInt16 appends a big-endian int16.
func WriteInt16(sink []byte, v int16) []byte {
	return WriteUint16(sink, uint16(v))
}

// ReadInt16 reads a big-endian int16.
func ReadInt16(c *Cursor) (int16, error) {
	v, err := ReadUint16(c)
	return int16(v), err
}

// WriteUint32 appends a big-endian uint32.
func WriteUint32(sink []byte, v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return append(sink, buf[:]...)
}

// ReadUint32 reads a big-endian uint32.
func ReadUint32(c *Cursor) (uint32, error) {
	b, err := c.take(4, "u32")
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// WriteUint32LE appends a little-endian uint32.
func WriteUint32LE(sink []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(sink, buf[:]...)
}

// ReadUint32LE reads a little-endian uint32.
func ReadUint32LE(c *Cursor) (uint32, error) {
	b, err := c.take(4, "u32le")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// WriteInt32 appends a big-endian int32.
func WriteInt32(sink []byte, v int32) []byte {
	return WriteUint32(sink, uint32(v))
}

// ReadInt32 reads a big-endian int32.
func ReadInt32(c *Cursor) (int32, error) {
	v, err := ReadUint32(c)
	return int32(v), err
}

// WriteUint64 appends a big-endian uint64.
func WriteUint64(sink []byte, v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append(sink, buf[:]...)
}

// ReadUint64 reads a big-endian uint64.
func ReadUint64(c *Cursor) (uint64, error) {
	b, err := c.take(8, "u64")
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// WriteUint64LE appends a little-endian uint64.
func WriteUint64LE(sink []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(sink, buf[:]...)
}

// ReadUint64LE reads a little-endian uint64.
func ReadUint64LE(c *Cursor) (uint64, error) {
	b, err := c.take(8, "u64le")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// WriteFloat32 appends a big-endian IEEE-754 float32.
func WriteFloat32(sink []byte, v float32) []byte {
	return WriteUint32(sink, math.Float32bits(v))
}

// ReadFloat32 reads a big-endian IEEE-754 float32.
func ReadFloat32(c *Cursor) (float32, error) {
	bits, err := ReadUint32(c)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// WriteFloat64 appends a big-endian IEEE-754 float64.
func WriteFloat64(sink []byte, v float64) []byte {
	return WriteUint64(sink, math.Float64bits(v))
}

// ReadFloat64 reads a big-endian IEEE-754 float64.
func ReadFloat64(c *Cursor) (float64, error) {
	bits, err := ReadUint64(c)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// WriteString appends a big-endian u16 length prefix followed by the
// UTF-8 bytes of s.
func WriteString(sink []byte, s string) []byte {
	sink = WriteUint16(sink, uint16(len(s)))
	return append(sink, s...)
}

// ReadString reads a big-endian u16 length prefix and that many UTF-8
// bytes, failing InvalidUtf8 if the bytes are not valid UTF-8.
func ReadString(c *Cursor) (string, error) {
	n, err := ReadUint16(c)
	if err != nil {
		return "", err
	}
	b, err := c.take(int(n), "string")
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", invalidUTF8("string")
	}
	return string(b), nil
}
