// Package encap implements the in-session, user-level packet
// catalogue (spec §4.2): packets carried as the payload of an inner
// packet once a session is established.
package encap

import "github.com/ventosilenzioso/go-raknet/pkg/wire"

// Packet discriminants (spec §4.2).
const (
	IDConnectedPing             = 0x00
	IDConnectedPong             = 0x03
	IDConnectionRequest         = 0x09
	IDConnectionRequestAccepted = 0x10
	IDNewIncomingConnection     = 0x13
	IDDisconnectionNotification = 0x15
)

// tailSize is the byte length of NewIncomingConnection's fixed trailer
// (two u64s) that the variable-trailer decode rule (spec §4.2b)
// extracts before parsing the variable-length address list.
const tailSize = 16

// Packet is the tagged union of encapsulated user-level packets. Each
// concrete type below implements it.
type Packet interface {
	id() byte
}

type ConnectedPing struct {
	SendPingTime uint64
}

func (ConnectedPing) id() byte { return IDConnectedPing }

type ConnectedPong struct {
	SendPingTime uint64
	SendPongTime uint64
}

func (ConnectedPong) id() byte { return IDConnectedPong }

type ConnectionRequest struct {
	ClientID     uint64
	SendPingTime uint64
	UseSecurity  bool
}

func (ConnectionRequest) id() byte { return IDConnectionRequest }

type ConnectionRequestAccepted struct {
	Address wire.SocketAddress
}

func (ConnectionRequestAccepted) id() byte { return IDConnectionRequestAccepted }

type NewIncomingConnection struct {
	Address         wire.SocketAddress
	SystemAddresses []wire.SocketAddress
	SendPingTime    uint64
	SendPongTime    uint64
}

func (NewIncomingConnection) id() byte { return IDNewIncomingConnection }

type DisconnectionNotification struct{}

func (DisconnectionNotification) id() byte { return IDDisconnectionNotification }

// Encode appends the wire form of p, including its leading
// discriminant byte.
func Encode(sink []byte, p Packet) []byte {
	sink = append(sink, p.id())
	switch v := p.(type) {
	case ConnectedPing:
		sink = wire.WriteUint64(sink, v.SendPingTime)
	case ConnectedPong:
		sink = wire.WriteUint64(sink, v.SendPingTime)
		sink = wire.WriteUint64(sink, v.SendPongTime)
	case ConnectionRequest:
		sink = wire.WriteUint64(sink, v.ClientID)
		sink = wire.WriteUint64(sink, v.SendPingTime)
		sink = wire.WriteBool(sink, v.UseSecurity)
	case ConnectionRequestAccepted:
		sink = wire.WriteSocketAddress(sink, v.Address)
	case NewIncomingConnection:
		sink = wire.WriteSocketAddress(sink, v.Address)
		for _, a := range v.SystemAddresses {
			sink = wire.WriteSocketAddress(sink, a)
		}
		sink = wire.WriteUint64(sink, v.SendPingTime)
		sink = wire.WriteUint64(sink, v.SendPongTime)
	case DisconnectionNotification:
		// empty body
	}
	return sink
}

// Decode reads one encapsulated packet from src, dispatching on the
// leading discriminant byte. Unknown discriminants fail OutOfRange.
func Decode(src []byte) (Packet, error) {
	c := wire.NewCursor(src)
	id, err := wire.ReadUint8(c)
	if err != nil {
		return nil, err
	}

	switch id {
	case IDConnectedPing:
		p := ConnectedPing{}
		if p.SendPingTime, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		return p, nil

	case IDConnectedPong:
		p := ConnectedPong{}
		if p.SendPingTime, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		if p.SendPongTime, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		return p, nil

	case IDConnectionRequest:
		p := ConnectionRequest{}
		if p.ClientID, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		if p.SendPingTime, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		if p.UseSecurity, err = wire.ReadBool(c); err != nil {
			return nil, err
		}
		return p, nil

	case IDConnectionRequestAccepted:
		p := ConnectionRequestAccepted{}
		if p.Address, err = wire.ReadSocketAddress(c); err != nil {
			return nil, err
		}
		return p, nil

	case IDNewIncomingConnection:
		p := NewIncomingConnection{}
		if p.Address, err = wire.ReadSocketAddress(c); err != nil {
			return nil, err
		}
		rest := c.ReadRest()
		if len(rest) < tailSize {
			return nil, wire.ErrUnexpectedEOF
		}
		prefix, tail := rest[:len(rest)-tailSize], rest[len(rest)-tailSize:]

		pc := wire.NewCursor(prefix)
		for pc.Remaining() > 0 {
			addr, err := wire.ReadSocketAddress(pc)
			if err != nil {
				return nil, err
			}
			p.SystemAddresses = append(p.SystemAddresses, addr)
		}

		tc := wire.NewCursor(tail)
		if p.SendPingTime, err = wire.ReadUint64(tc); err != nil {
			return nil, err
		}
		if p.SendPongTime, err = wire.ReadUint64(tc); err != nil {
			return nil, err
		}
		return p, nil

	case IDDisconnectionNotification:
		return DisconnectionNotification{}, nil

	default:
		return nil, wire.ErrOutOfRange
	}
}
