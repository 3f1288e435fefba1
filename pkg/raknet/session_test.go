package raknet

import (
	"testing"

	"github.com/ventosilenzioso/go-raknet/pkg/acklist"
	"github.com/ventosilenzioso/go-raknet/pkg/datagram"
	"github.com/ventosilenzioso/go-raknet/pkg/sendqueue"
	"github.com/ventosilenzioso/go-raknet/pkg/wire"
)

type captureSender struct {
	frames [][]byte
}

func (s *captureSender) Send(seq wire.Triad, encoded []byte) {
	s.frames = append(s.frames, encoded)
}

func TestSessionPushFlushRoundTripsThroughPeerSession(t *testing.T) {
	addr := wire.NewIPv4Address(127, 0, 0, 1, 19132)

	a := &captureSender{}
	sessionA := New(addr, 1400, a)

	if _, err := sessionA.Push([]byte("hello"), true, sendqueue.OrderNone, 0, false); err != nil {
		t.Fatal(err)
	}
	sessionA.Flush()

	if len(a.frames) != 1 {
		t.Fatalf("got %d outbound frames, want 1", len(a.frames))
	}

	b := &captureSender{}
	sessionB := New(addr, 1400, b)

	delivered, err := sessionB.HandleIncoming(a.frames[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(delivered) != 1 || string(delivered[0]) != "hello" {
		t.Fatalf("delivered = %v, want [hello]", delivered)
	}

	ack := sessionB.PendingAck()
	if ack == nil {
		t.Fatal("expected a pending ack after receiving a datagram")
	}
	if ack.Size() != 1 {
		t.Errorf("ack.Size() = %d, want 1", ack.Size())
	}
}

func TestSessionHandleAckRetiresRetransmitState(t *testing.T) {
	addr := wire.NewIPv4Address(10, 0, 0, 1, 19132)
	sender := &captureSender{}
	session := New(addr, 1400, sender)

	if _, err := session.Push([]byte("x"), true, sendqueue.OrderNone, 0, false); err != nil {
		t.Fatal(err)
	}
	session.Flush()

	c := wire.NewCursor(sender.frames[0])
	online, err := datagram.DecodeOnline(c)
	if err != nil {
		t.Fatal(err)
	}
	seq := online.Datagram.SequenceNumber

	ackFrame := datagram.EncodeAck(nil, acklist.FromSorted([]uint32{uint32(seq)}))
	if _, err := session.HandleIncoming(ackFrame); err != nil {
		t.Fatal(err)
	}

	session.SendQueue.HandleNack([]uint32{uint32(seq)})
	session.Flush()
	if len(sender.frames) != 1 {
		t.Fatalf("got %d frames, want 1 (acked datagram must not be retransmitted)", len(sender.frames))
	}
}
