package offline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ventosilenzioso/go-raknet/pkg/wire"
)

func roundTrip(t *testing.T, p Packet) Packet {
	t.Helper()
	sink := Encode(nil, p)
	got, err := Decode(sink)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

func TestUnconnectedPingRoundTrip(t *testing.T) {
	p := UnconnectedPing{SendPingTime: 1234, ClientID: 5678}
	if diff := cmp.Diff(Packet(p), roundTrip(t, p)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUnconnectedPongRoundTrip(t *testing.T) {
	p := UnconnectedPong{SendPingTime: 1, ServerID: 2, ServerName: "MCPE;A Server"}
	if diff := cmp.Diff(Packet(p), roundTrip(t, p)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenConnectionRequest1PaddingIsTheSignal(t *testing.T) {
	p := OpenConnectionRequest1{ProtocolVersion: 9, MTUSize: 200}
	sink := Encode(nil, p)
	if len(sink) != 200 {
		t.Fatalf("len = %d, want 200", len(sink))
	}

	decoded, err := Decode(sink)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(OpenConnectionRequest1)
	if got.MTUSize != 200 {
		t.Errorf("decoded MTUSize = %d, want 200 (total packet length)", got.MTUSize)
	}
	if got.ProtocolVersion != 9 {
		t.Errorf("decoded ProtocolVersion = %d, want 9", got.ProtocolVersion)
	}
}

func TestOpenConnectionReply1RoundTrip(t *testing.T) {
	p := OpenConnectionReply1{ServerID: 99, ServerSecurity: false, MTUSize: 1492}
	if diff := cmp.Diff(Packet(p), roundTrip(t, p)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenConnectionRequest2RoundTrip(t *testing.T) {
	p := OpenConnectionRequest2{
		ServerAddress: wire.NewIPv4Address(10, 0, 0, 1, 19132),
		MTUSize:       1400,
		ClientID:      42,
	}
	if diff := cmp.Diff(Packet(p), roundTrip(t, p)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenConnectionReply2RoundTrip(t *testing.T) {
	p := OpenConnectionReply2{
		ServerID:       7,
		ClientAddress:  wire.NewIPv4Address(127, 0, 0, 1, 7777),
		MTUSize:        1492,
		ServerSecurity: true,
	}
	if diff := cmp.Diff(Packet(p), roundTrip(t, p)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestIncompatibleProtocolVersionRoundTrip(t *testing.T) {
	p := IncompatibleProtocolVersion{ProtocolVersion: 5, ServerID: 8}
	if diff := cmp.Diff(Packet(p), roundTrip(t, p)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeUnknownDiscriminant(t *testing.T) {
	_, err := Decode([]byte{0xFF})
	if err != wire.ErrOutOfRange {
		t.Errorf("expected OutOfRange, got %v", err)
	}
}

func TestDecodeEmptyIsEOF(t *testing.T) {
	_, err := Decode(nil)
	if !errors.Is(err, wire.ErrUnexpectedEOF) {
		t.Errorf("expected UnexpectedEof, got %v", err)
	}
}
