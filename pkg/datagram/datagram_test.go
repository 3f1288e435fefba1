package datagram

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ventosilenzioso/go-raknet/pkg/acklist"
	"github.com/ventosilenzioso/go-raknet/pkg/inner"
	"github.com/ventosilenzioso/go-raknet/pkg/wire"
)

func TestDatagramRoundTrip(t *testing.T) {
	d := &Datagram{
		SequenceNumber: 5,
		Packets: []*inner.Packet{
			{Reliability: inner.Unreliable, Payload: []byte{1, 2}},
			{Reliability: inner.Reliable, MessageIndex: 9, Payload: []byte{3, 4, 5}},
		},
	}
	sink := Encode(nil, d)
	got, err := Decode(wire.NewCursor(sink))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDatagramTrailingPartialPacketIsError(t *testing.T) {
	d := &Datagram{SequenceNumber: 1, Packets: []*inner.Packet{
		{Reliability: inner.Unreliable, Payload: []byte{1, 2, 3}},
	}}
	sink := Encode(nil, d)
	truncated := sink[:len(sink)-1]
	if _, err := Decode(wire.NewCursor(truncated)); err == nil {
		t.Fatal("expected decode error for truncated trailing inner packet")
	}
}

// Scenario 6 from spec §8: OnlinePacket Ack wrapper.
func TestOnlineAckWrapperScenario(t *testing.T) {
	acks := acklist.FromSorted([]uint32{2, 3, 4, 7})
	sink := EncodeAck(nil, acks)
	if sink[0] != 0xC0 {
		t.Fatalf("flags byte = 0x%02X, want 0xC0", sink[0])
	}

	online, err := DecodeOnline(wire.NewCursor(sink))
	if err != nil {
		t.Fatal(err)
	}
	if online.Kind != KindAck {
		t.Fatalf("Kind = %v, want KindAck", online.Kind)
	}
	if diff := cmp.Diff(acks.ToSorted(), online.Acks.ToSorted()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOnlineInvalidFlagIsSilentlyNone(t *testing.T) {
	online, err := DecodeOnline(wire.NewCursor([]byte{0x00}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if online.Kind != KindNone {
		t.Errorf("Kind = %v, want KindNone", online.Kind)
	}
}

func TestOnlineDatagramWrapperRoundTrip(t *testing.T) {
	d := &Datagram{SequenceNumber: 11, Packets: []*inner.Packet{
		{Reliability: inner.Unreliable, Payload: []byte{9}},
	}}
	sink := EncodeDatagram(nil, d)
	if sink[0] != 0x80 {
		t.Fatalf("flags byte = 0x%02X, want 0x80", sink[0])
	}
	online, err := DecodeOnline(wire.NewCursor(sink))
	if err != nil {
		t.Fatal(err)
	}
	if online.Kind != KindDatagram {
		t.Fatalf("Kind = %v, want KindDatagram", online.Kind)
	}
	if diff := cmp.Diff(d, online.Datagram); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOnlineIgnoresUnusedBits(t *testing.T) {
	d := &Datagram{SequenceNumber: 1}
	sink := EncodeDatagram(nil, d)
	sink[0] |= FlagPacketPair | FlagContinuousSend | FlagNeedBAndAS
	online, err := DecodeOnline(wire.NewCursor(sink))
	if err != nil {
		t.Fatal(err)
	}
	if online.Kind != KindDatagram {
		t.Errorf("Kind = %v, want KindDatagram", online.Kind)
	}
}
