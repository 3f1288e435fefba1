// Package offline implements the pre-session packet catalogue (spec
// §4.2): the packets exchanged before a RakNet session is
// established, each dispatched by a leading discriminant byte.
package offline

import "github.com/ventosilenzioso/go-raknet/pkg/wire"

// Packet discriminants (spec §4.2).
const (
	IDUnconnectedPing                = 0x01
	IDUnconnectedPingOpenConnections = 0x02
	IDOpenConnectionRequest1         = 0x05
	IDOpenConnectionReply1           = 0x06
	IDOpenConnectionRequest2         = 0x07
	IDOpenConnectionReply2           = 0x08
	IDIncompatibleProtocolVersion    = 0x19
	IDUnconnectedPong                = 0x1C
)

// Packet is the tagged union of offline packets. Each concrete type
// below implements it.
type Packet interface {
	id() byte
}

type UnconnectedPing struct {
	SendPingTime uint64
	ClientID     uint64
}

func (UnconnectedPing) id() byte { return IDUnconnectedPing }

type UnconnectedPingOpenConnections struct {
	SendPingTime uint64
	ClientID     uint64
}

func (UnconnectedPingOpenConnections) id() byte { return IDUnconnectedPingOpenConnections }

// OpenConnectionRequest1's MTUSize is not an encoded field: it is the
// signal carried by the packet's total length. Encode pads the packet
// out to MTUSize bytes; decode sets MTUSize to the total packet
// length (spec §4.2).
type OpenConnectionRequest1 struct {
	ProtocolVersion uint8
	MTUSize         uint16
}

func (OpenConnectionRequest1) id() byte { return IDOpenConnectionRequest1 }

type OpenConnectionReply1 struct {
	ServerID       uint64
	ServerSecurity bool
	MTUSize        uint16
}

func (OpenConnectionReply1) id() byte { return IDOpenConnectionReply1 }

type OpenConnectionRequest2 struct {
	ServerAddress wire.SocketAddress
	MTUSize       uint16
	ClientID      uint64
}

func (OpenConnectionRequest2) id() byte { return IDOpenConnectionRequest2 }

type OpenConnectionReply2 struct {
	ServerID       uint64
	ClientAddress  wire.SocketAddress
	MTUSize        uint16
	ServerSecurity bool
}

func (OpenConnectionReply2) id() byte { return IDOpenConnectionReply2 }

type IncompatibleProtocolVersion struct {
	ProtocolVersion uint8
	ServerID        uint64
}

func (IncompatibleProtocolVersion) id() byte { return IDIncompatibleProtocolVersion }

type UnconnectedPong struct {
	SendPingTime uint64
	ServerID     uint64
	ServerName   string
}

func (UnconnectedPong) id() byte { return IDUnconnectedPong }

// Encode appends the wire form of p, including its leading
// discriminant byte.
func Encode(sink []byte, p Packet) []byte {
	sink = append(sink, p.id())
	switch v := p.(type) {
	case UnconnectedPing:
		sink = wire.WriteUint64(sink, v.SendPingTime)
		sink = wire.WriteMagic(sink)
		sink = wire.WriteUint64(sink, v.ClientID)
	case UnconnectedPingOpenConnections:
		sink = wire.WriteUint64(sink, v.SendPingTime)
		sink = wire.WriteMagic(sink)
		sink = wire.WriteUint64(sink, v.ClientID)
	case OpenConnectionRequest1:
		sink = wire.WriteMagic(sink)
		sink = wire.WriteUint8(sink, v.ProtocolVersion)
		padding := int(v.MTUSize) - len(sink)
		if padding > 0 {
			sink = append(sink, make([]byte, padding)...)
		}
	case OpenConnectionReply1:
		sink = wire.WriteMagic(sink)
		sink = wire.WriteUint64(sink, v.ServerID)
		sink = wire.WriteBool(sink, v.ServerSecurity)
		sink = wire.WriteUint16(sink, v.MTUSize)
	case OpenConnectionRequest2:
		sink = wire.WriteMagic(sink)
		sink = wire.WriteSocketAddress(sink, v.ServerAddress)
		sink = wire.WriteUint16(sink, v.MTUSize)
		sink = wire.WriteUint64(sink, v.ClientID)
	case OpenConnectionReply2:
		sink = wire.WriteMagic(sink)
		sink = wire.WriteUint64(sink, v.ServerID)
		sink = wire.WriteSocketAddress(sink, v.ClientAddress)
		sink = wire.WriteUint16(sink, v.MTUSize)
		sink = wire.WriteBool(sink, v.ServerSecurity)
	case IncompatibleProtocolVersion:
		sink = wire.WriteUint8(sink, v.ProtocolVersion)
		sink = wire.WriteMagic(sink)
		sink = wire.WriteUint64(sink, v.ServerID)
	case UnconnectedPong:
		sink = wire.WriteUint64(sink, v.SendPingTime)
		sink = wire.WriteUint64(sink, v.ServerID)
		sink = wire.WriteMagic(sink)
		sink = wire.WriteString(sink, v.ServerName)
	}
	return sink
}

// Decode reads one offline packet from src, dispatching on the
// leading discriminant byte. Unknown discriminants fail OutOfRange.
func Decode(src []byte) (Packet, error) {
	c := wire.NewCursor(src)
	id, err := wire.ReadUint8(c)
	if err != nil {
		return nil, err
	}

	switch id {
	case IDUnconnectedPing:
		p := UnconnectedPing{}
		if p.SendPingTime, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		if err = wire.ReadMagic(c); err != nil {
			return nil, err
		}
		if p.ClientID, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		return p, nil

	case IDUnconnectedPingOpenConnections:
		p := UnconnectedPingOpenConnections{}
		if p.SendPingTime, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		if err = wire.ReadMagic(c); err != nil {
			return nil, err
		}
		if p.ClientID, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		return p, nil

	case IDOpenConnectionRequest1:
		if err = wire.ReadMagic(c); err != nil {
			return nil, err
		}
		p := OpenConnectionRequest1{}
		if p.ProtocolVersion, err = wire.ReadUint8(c); err != nil {
			return nil, err
		}
		p.MTUSize = uint16(len(src))
		return p, nil

	case IDOpenConnectionReply1:
		if err = wire.ReadMagic(c); err != nil {
			return nil, err
		}
		p := OpenConnectionReply1{}
		if p.ServerID, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		if p.ServerSecurity, err = wire.ReadBool(c); err != nil {
			return nil, err
		}
		if p.MTUSize, err = wire.ReadUint16(c); err != nil {
			return nil, err
		}
		return p, nil

	case IDOpenConnectionRequest2:
		if err = wire.ReadMagic(c); err != nil {
			return nil, err
		}
		p := OpenConnectionRequest2{}
		if p.ServerAddress, err = wire.ReadSocketAddress(c); err != nil {
			return nil, err
		}
		if p.MTUSize, err = wire.ReadUint16(c); err != nil {
			return nil, err
		}
		if p.ClientID, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		return p, nil

	case IDOpenConnectionReply2:
		if err = wire.ReadMagic(c); err != nil {
			return nil, err
		}
		p := OpenConnectionReply2{}
		if p.ServerID, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		if p.ClientAddress, err = wire.ReadSocketAddress(c); err != nil {
			return nil, err
		}
		if p.MTUSize, err = wire.ReadUint16(c); err != nil {
			return nil, err
		}
		if p.ServerSecurity, err = wire.ReadBool(c); err != nil {
			return nil, err
		}
		return p, nil

	case IDIncompatibleProtocolVersion:
		p := IncompatibleProtocolVersion{}
		if p.ProtocolVersion, err = wire.ReadUint8(c); err != nil {
			return nil, err
		}
		if err = wire.ReadMagic(c); err != nil {
			return nil, err
		}
		if p.ServerID, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		return p, nil

	case IDUnconnectedPong:
		p := UnconnectedPong{}
		if p.SendPingTime, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		if p.ServerID, err = wire.ReadUint64(c); err != nil {
			return nil, err
		}
		if err = wire.ReadMagic(c); err != nil {
			return nil, err
		}
		if p.ServerName, err = wire.ReadString(c); err != nil {
			return nil, err
		}
		return p, nil

	default:
		return nil, wire.ErrOutOfRange
	}
}
