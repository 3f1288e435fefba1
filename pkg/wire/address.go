package wire

// SocketAddress is a tagged union of IPv4 and IPv6 endpoints, the Go
// representation of the RakNet socket-address wire form (spec §3,
// SPEC_FULL.md §3.1). FlowInfo and ScopeID are only meaningful when
// IsIPv6 is true; they round-trip byte-identically but carry no
// interpreted semantics (spec Non-goals: no IPv6 flow-label
// semantics beyond byte-identical passthrough).
type SocketAddress struct {
	IsIPv6   bool
	IP       [16]byte // IPv4 addresses use the first 4 bytes
	Port     uint16
	FlowInfo uint32 // IPv6 only
	ScopeID  uint32 // IPv6 only
}

// ipv6AddressFamily is the opaque, unchecked-on-read platform
// address-family constant RakNet places on the wire for IPv6
// addresses (spec §4.1).
const ipv6AddressFamily uint16 = 10

// NewIPv4Address builds a IPv4 SocketAddress from four octets and a port.
func NewIPv4Address(a, b, c, d byte, port uint16) SocketAddress {
	return SocketAddress{IP: [16]byte{a, b, c, d}, Port: port}
}

// NewIPv6Address builds an IPv6 SocketAddress.
func NewIPv6Address(ip [16]byte, port uint16, flowInfo, scopeID uint32) SocketAddress {
	return SocketAddress{IsIPv6: true, IP: ip, Port: port, FlowInfo: flowInfo, ScopeID: scopeID}
}

// WriteSocketAddress appends the RakNet wire form: byte 4 + four
// inverted octets + big-endian port for IPv4, byte 6 + the
// little-endian address-family constant + big-endian port +
// big-endian flow-info + 16 raw octets + big-endian scope-id for
// IPv6.
func WriteSocketAddress(sink []byte, addr SocketAddress) []byte {
	if !addr.IsIPv6 {
		sink = append(sink, 4)
		for i := 0; i < 4; i++ {
			sink = append(sink, ^addr.IP[i])
		}
		return WriteUint16(sink, addr.Port)
	}

	sink = append(sink, 6)
	sink = WriteUint16LE(sink, ipv6AddressFamily)
	sink = WriteUint16(sink, addr.Port)
	sink = WriteUint32(sink, addr.FlowInfo)
	sink = append(sink, addr.IP[:]...)
	sink = WriteUint32(sink, addr.ScopeID)
	return sink
}

// ReadSocketAddress reads a SocketAddress, failing OutOfRange for any
// leading byte other than 4 or 6.
func ReadSocketAddress(c *Cursor) (SocketAddress, error) {
	version, err := ReadUint8(c)
	if err != nil {
		return SocketAddress{}, err
	}

	switch version {
	case 4:
		octets, err := c.take(4, "ipv4_address")
		if err != nil {
			return SocketAddress{}, err
		}
		var addr SocketAddress
		for i := 0; i < 4; i++ {
			addr.IP[i] = ^octets[i]
		}
		port, err := ReadUint16(c)
		if err != nil {
			return SocketAddress{}, err
		}
		addr.Port = port
		return addr, nil

	case 6:
		if _, err := ReadUint16LE(c); err != nil { // address family, unchecked
			return SocketAddress{}, err
		}
		port, err := ReadUint16(c)
		if err != nil {
			return SocketAddress{}, err
		}
		flowInfo, err := ReadUint32(c)
		if err != nil {
			return SocketAddress{}, err
		}
		octets, err := c.take(16, "ipv6_address")
		if err != nil {
			return SocketAddress{}, err
		}
		scopeID, err := ReadUint32(c)
		if err != nil {
			return SocketAddress{}, err
		}
		addr := SocketAddress{IsIPv6: true, Port: port, FlowInfo: flowInfo, ScopeID: scopeID}
		copy(addr.IP[:], octets)
		return addr, nil

	default:
		return SocketAddress{}, outOfRange("socket_address_version")
	}
}
