// Package datagram implements datagram framing (spec §4.4) and the
// online-packet wrapper that dispatches an in-session UDP payload to
// Ack, Nack or Datagram (spec §4.6).
package datagram

import (
	"github.com/ventosilenzioso/go-raknet/pkg/acklist"
	"github.com/ventosilenzioso/go-raknet/pkg/inner"
	"github.com/ventosilenzioso/go-raknet/pkg/wire"
)

// Datagram is a 24-bit little-endian sequence number plus an ordered
// list of inner packets (spec §4.4).
type Datagram struct {
	SequenceNumber wire.Triad
	Packets        []*inner.Packet
}

// Encode appends d.SequenceNumber followed by the concatenation of
// d.Packets, with no length prefix between them.
func Encode(sink []byte, d *Datagram) []byte {
	sink = wire.WriteTriadLE(sink, d.SequenceNumber)
	for _, p := range d.Packets {
		sink = inner.Encode(sink, p)
	}
	return sink
}

// Decode consumes the remaining bytes of c, repeatedly parsing inner
// packets until the buffer is exhausted. A trailing partial inner
// packet surfaces as a decode error.
func Decode(c *wire.Cursor) (*Datagram, error) {
	seq, err := wire.ReadTriadLE(c)
	if err != nil {
		return nil, err
	}
	d := &Datagram{SequenceNumber: seq}
	for c.Remaining() > 0 {
		p, err := inner.Decode(c)
		if err != nil {
			return nil, err
		}
		d.Packets = append(d.Packets, p)
	}
	return d, nil
}

// Flags are the leading byte of every in-session UDP datagram (spec §4.6).
const (
	FlagValid          = 0x80
	FlagAck            = 0x40
	FlagNak            = 0x20
	FlagPacketPair     = 0x10
	FlagContinuousSend = 0x08
	FlagNeedBAndAS     = 0x04
)

// Kind discriminates the payload an Online wrapper carries.
type Kind int

const (
	// KindNone means bit 7 (VALID) was absent: the caller must drop
	// the datagram silently, not treat it as an error.
	KindNone Kind = iota
	KindAck
	KindNak
	KindDatagram
)

// Online is the decoded form of one in-session UDP payload.
type Online struct {
	Kind     Kind
	Acks     *acklist.List // valid iff Kind == KindAck
	Nacks    *acklist.List // valid iff Kind == KindNak
	Datagram *Datagram     // valid iff Kind == KindDatagram
}

// EncodeAck wraps an ack list for the wire.
func EncodeAck(sink []byte, acks *acklist.List) []byte {
	sink = append(sink, FlagValid|FlagAck)
	return acklist.Encode(sink, acks)
}

// EncodeNack wraps a nack list for the wire.
func EncodeNack(sink []byte, nacks *acklist.List) []byte {
	sink = append(sink, FlagValid|FlagNak)
	return acklist.Encode(sink, nacks)
}

// EncodeDatagram wraps a Datagram for the wire.
func EncodeDatagram(sink []byte, d *Datagram) []byte {
	sink = append(sink, byte(FlagValid))
	return Encode(sink, d)
}

// DecodeOnline reads the leading flag byte and dispatches to Ack,
// Nack or Datagram decoding. bits 4/3/2 (PACKET_PAIR,
// CONTINUOUS_SEND, NEED_B_AND_AS) are accepted and ignored.
func DecodeOnline(c *wire.Cursor) (*Online, error) {
	flags, err := wire.ReadUint8(c)
	if err != nil {
		return nil, err
	}
	if flags&FlagValid == 0 {
		return &Online{Kind: KindNone}, nil
	}
	switch {
	case flags&FlagAck != 0:
		acks, err := acklist.Decode(c)
		if err != nil {
			return nil, err
		}
		return &Online{Kind: KindAck, Acks: acks}, nil
	case flags&FlagNak != 0:
		nacks, err := acklist.Decode(c)
		if err != nil {
			return nil, err
		}
		return &Online{Kind: KindNak, Nacks: nacks}, nil
	default:
		d, err := Decode(c)
		if err != nil {
			return nil, err
		}
		return &Online{Kind: KindDatagram, Datagram: d}, nil
	}
}
