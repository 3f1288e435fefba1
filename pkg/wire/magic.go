package wire

// MagicPayload is the fixed 16-byte cookie identifying RakNet
// handshake traffic. Magic itself carries no in-memory payload; its
// presence on the wire is asserted on read.
var MagicPayload = [16]byte{
	0x00, 0xFF, 0xFF, 0x00, 0xFE, 0xFE, 0xFE, 0xFE,
	0xFD, 0xFD, 0xFD, 0xFD, 0x12, 0x34, 0x56, 0x78,
}

// WriteMagic appends the literal 16-byte magic cookie.
func WriteMagic(sink []byte) []byte {
	return append(sink, MagicPayload[:]...)
}

// ReadMagic reads 16 bytes and fails MagicMismatch if they differ from
// MagicPayload.
func ReadMagic(c *Cursor) error {
	b, err := c.take(16, "magic")
	if err != nil {
		return err
	}
	for i, want := range MagicPayload {
		if b[i] != want {
			return magicMismatch()
		}
	}
	return nil
}
