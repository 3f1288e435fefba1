package encap

import (
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

func TestConnectedPingRoundTrip(t *testing.T) {
	p := ConnectedPing{SendPingTime: 123}
	if diff := cmp.Diff(Packet(p), roundTrip(t, p)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestConnectedPongRoundTrip(t *testing.T) {
	p := ConnectedPong{SendPingTime: 1, SendPongTime: 2}
	if diff := cmp.Diff(Packet(p), roundTrip(t, p)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestConnectionRequestRoundTrip(t *testing.T) {
	p := ConnectionRequest{ClientID: 9, SendPingTime: 100, UseSecurity: false}
	if diff := cmp.Diff(Packet(p), roundTrip(t, p)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestConnectionRequestAcceptedRoundTrip(t *testing.T) {
	p := ConnectionRequestAccepted{Address: wire.NewIPv4Address(1, 2, 3, 4, 19132)}
	if diff := cmp.Diff(Packet(p), roundTrip(t, p)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDisconnectionNotificationRoundTrip(t *testing.T) {
	sink := Encode(nil, DisconnectionNotification{})
	if len(sink) != 1 {
		t.Fatalf("len = %d, want 1 (id byte only)", len(sink))
	}
	got, err := Decode(sink)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(DisconnectionNotification); !ok {
		t.Errorf("got %T, want DisconnectionNotification", got)
	}
}

// Exercises the variable-trailer decode rule from spec §4.2b: the
// address list length is inferred by reserving the fixed 16-byte tail
// first.
func TestNewIncomingConnectionVariableTrailer(t *testing.T) {
	p := NewIncomingConnection{
		Address: wire.NewIPv4Address(127, 0, 0, 1, 19132),
		SystemAddresses: []wire.SocketAddress{
			wire.NewIPv4Address(0, 0, 0, 0, 0),
			wire.NewIPv4Address(0, 0, 0, 0, 0),
			wire.NewIPv4Address(0, 0, 0, 0, 0),
		},
		SendPingTime: 1000,
		SendPongTime: 2000,
	}
	if diff := cmp.Diff(Packet(p), roundTrip(t, p)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNewIncomingConnectionNoSystemAddresses(t *testing.T) {
	p := NewIncomingConnection{
		Address:      wire.NewIPv4Address(127, 0, 0, 1, 19132),
		SendPingTime: 1,
		SendPongTime: 2,
	}
	if diff := cmp.Diff(Packet(p), roundTrip(t, p)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeUnknownDiscriminant(t *testing.T) {
	_, err := Decode([]byte{0xFE})
	if err != wire.ErrOutOfRange {
		t.Errorf("expected OutOfRange, got %v", err)
	}
}
