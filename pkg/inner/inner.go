// Package inner implements the encapsulated-packet ("inner packet")
// wire format: the bit-packed reliability header, split header and
// length-in-bits field described in spec §4.3.
package inner

import "github.com/ventosilenzioso/go-raknet/pkg/wire"

// channelCount is the number of ordering/sequencing channels a
// datagram's order_channel field may address (spec §4.7).
const channelCount = 32

// Reliability is the tagged union of the eight reliability variants
// from spec §3, numbered 0..7 as they appear on the wire.
type Reliability uint8

const (
	Unreliable Reliability = iota
	UnreliableSequenced
	Reliable
	ReliableOrdered
	ReliableSequenced
	UnreliableWithAckReceipt
	ReliableWithAckReceipt
	ReliableOrderedWithAckReceipt
)

const (
	reliabilityShift = 5
	reliabilityMask  = 0x07
	splitBit         = 0x10
)

// HasMessageIndex reports whether this reliability id carries a
// message_index field (ids 2, 3, 4, 6, 7).
func (r Reliability) HasMessageIndex() bool {
	switch r {
	case Reliable, ReliableOrdered, ReliableSequenced, ReliableWithAckReceipt, ReliableOrderedWithAckReceipt:
		return true
	default:
		return false
	}
}

// HasSequenceIndex reports whether this reliability id carries a
// sequence_index field (ids 1, 4).
func (r Reliability) HasSequenceIndex() bool {
	return r == UnreliableSequenced || r == ReliableSequenced
}

// HasOrder reports whether this reliability id carries an order_index
// and order_channel (ids 1, 3, 4, 7 — ordered or sequenced).
func (r Reliability) HasOrder() bool {
	switch r {
	case UnreliableSequenced, ReliableOrdered, ReliableSequenced, ReliableOrderedWithAckReceipt:
		return true
	default:
		return false
	}
}

// HasAckReceipt reports whether this reliability id requests
// ack-receipt delivery notification (ids 5, 6, 7).
func (r Reliability) HasAckReceipt() bool {
	switch r {
	case UnreliableWithAckReceipt, ReliableWithAckReceipt, ReliableOrderedWithAckReceipt:
		return true
	default:
		return false
	}
}

// Split carries the split-packet descriptor of a fragment belonging
// to a split group (spec §4.3 item 6).
type Split struct {
	Count uint32
	ID    uint16
	Index uint32
}

// Packet is one encapsulated ("inner") packet: a reliability
// descriptor, an optional split descriptor and an opaque payload.
type Packet struct {
	Reliability   Reliability
	MessageIndex  wire.Triad // valid iff Reliability.HasMessageIndex()
	SequenceIndex wire.Triad // valid iff Reliability.HasSequenceIndex()
	OrderIndex    wire.Triad // valid iff Reliability.HasOrder()
	OrderChannel  uint8      // valid iff Reliability.HasOrder()
	Split         *Split
	Payload       []byte
}

// Size returns the encoded byte length of p, per spec §4.3's formula:
// 3 + 3*(has_message_index) + 3*(has_sequence_index) + 4*(has_order) +
// 10*(has_split) + payload_byte_count.
func (p *Packet) Size() int {
	size := 3
	if p.Reliability.HasMessageIndex() {
		size += 3
	}
	if p.Reliability.HasSequenceIndex() {
		size += 3
	}
	if p.Reliability.HasOrder() {
		size += 4
	}
	if p.Split != nil {
		size += 10
	}
	size += len(p.Payload)
	return size
}

// Encode appends the wire form of p to sink.
func Encode(sink []byte, p *Packet) []byte {
	flags := byte(p.Reliability) << reliabilityShift
	if p.Split != nil {
		flags |= splitBit
	}
	sink = append(sink, flags)

	bits := uint16(len(p.Payload)) * 8
	sink = wire.WriteUint16(sink, bits)

	if p.Reliability.HasMessageIndex() {
		sink = wire.WriteTriadLE(sink, p.MessageIndex)
	}
	if p.Reliability.HasSequenceIndex() {
		sink = wire.WriteTriadLE(sink, p.SequenceIndex)
	}
	if p.Reliability.HasOrder() {
		sink = wire.WriteTriadLE(sink, p.OrderIndex)
		sink = append(sink, p.OrderChannel)
	}
	if p.Split != nil {
		sink = wire.WriteUint32(sink, p.Split.Count)
		sink = wire.WriteUint16(sink, p.Split.ID)
		sink = wire.WriteUint32(sink, p.Split.Index)
	}

	sink = append(sink, p.Payload...)
	return sink
}

// Decode reads one inner packet from c. A payload-length-in-bits field
// of 0, or an order_channel outside [0, 32), is a decode error
// (OutOfRange), per spec §4.3.
func Decode(c *wire.Cursor) (*Packet, error) {
	flagsByte, err := wire.ReadUint8(c)
	if err != nil {
		return nil, err
	}

	reliability := Reliability((flagsByte >> reliabilityShift) & reliabilityMask)
	hasSplit := flagsByte&splitBit != 0

	bits, err := wire.ReadUint16(c)
	if err != nil {
		return nil, err
	}
	if bits == 0 {
		return nil, wire.ErrOutOfRange
	}
	payloadBytes := int((bits + 7) / 8)

	p := &Packet{Reliability: reliability}

	if reliability.HasMessageIndex() {
		if p.MessageIndex, err = wire.ReadTriadLE(c); err != nil {
			return nil, err
		}
	}
	if reliability.HasSequenceIndex() {
		if p.SequenceIndex, err = wire.ReadTriadLE(c); err != nil {
			return nil, err
		}
	}
	if reliability.HasOrder() {
		if p.OrderIndex, err = wire.ReadTriadLE(c); err != nil {
			return nil, err
		}
		if p.OrderChannel, err = wire.ReadUint8(c); err != nil {
			return nil, err
		}
		if p.OrderChannel >= channelCount {
			return nil, wire.ErrOutOfRange
		}
	}
	if hasSplit {
		s := &Split{}
		if s.Count, err = wire.ReadUint32(c); err != nil {
			return nil, err
		}
		if s.ID, err = wire.ReadUint16(c); err != nil {
			return nil, err
		}
		if s.Index, err = wire.ReadUint32(c); err != nil {
			return nil, err
		}
		p.Split = s
	}

	payload, err := c.ReadBytes(payloadBytes)
	if err != nil {
		return nil, err
	}
	p.Payload = append([]byte(nil), payload...)

	return p, nil
}
