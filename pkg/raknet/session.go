// Package raknet wires the send-queue reliability engine and the
// receive-side reassembler together into one per-connection Session
// (spec §2, §5). It owns no socket and no handshake state machine —
// those are collaborator concerns (spec §6) — it is exactly the
// intersection of pkg/sendqueue and pkg/recv that a real connection
// needs.
package raknet

import (
	"sort"

	"github.com/ventosilenzioso/go-raknet/pkg/acklist"
	"github.com/ventosilenzioso/go-raknet/pkg/datagram"
	"github.com/ventosilenzioso/go-raknet/pkg/recv"
	"github.com/ventosilenzioso/go-raknet/pkg/sendqueue"
	"github.com/ventosilenzioso/go-raknet/pkg/wire"
)

// Session is the single-threaded-cooperative unit described in spec
// §5: it owns its SendQueue and Receiver exclusively and requires no
// lock around either. Callers are expected to serialize access to one
// Session from a single task, same as the collaborator's socket loop
// hands each session its own slice of inbound bytes.
type Session struct {
	Address wire.SocketAddress
	MTU     int

	SendQueue *sendqueue.SendQueue
	Receiver  *recv.Receiver
}

// Option configures a Session at construction time. It fans out to
// the underlying SendQueue/Receiver options.
type Option func(*sessionConfig)

type sessionConfig struct {
	sendQueueOpts []sendqueue.Option
	recvOpts      []recv.Option
}

// WithLogger forwards a sendqueue.Logger to the underlying SendQueue.
func WithLogger(l sendqueue.Logger) Option {
	return func(c *sessionConfig) { c.sendQueueOpts = append(c.sendQueueOpts, sendqueue.WithLogger(l)) }
}

// WithAckReceiptSink forwards an ack-receipt callback to the
// underlying SendQueue (SPEC_FULL.md §4.7.1).
func WithAckReceiptSink(sink func(receiptID uint32)) Option {
	return func(c *sessionConfig) {
		c.sendQueueOpts = append(c.sendQueueOpts, sendqueue.WithAckReceiptSink(sink))
	}
}

// WithMaxSplitGroups forwards a split-group cap to the underlying Receiver.
func WithMaxSplitGroups(n int) Option {
	return func(c *sessionConfig) { c.recvOpts = append(c.recvOpts, recv.WithMaxSplitGroups(n)) }
}

// WithMaxOutOfOrder forwards an out-of-order buffer cap to the
// underlying Receiver.
func WithMaxOutOfOrder(n int) Option {
	return func(c *sessionConfig) { c.recvOpts = append(c.recvOpts, recv.WithMaxOutOfOrder(n)) }
}

// New creates a Session bound to address and mtu. Every counter in
// both the send queue and the receiver starts at zero (spec §3
// Lifecycle).
func New(address wire.SocketAddress, mtu int, sender sendqueue.Sender, opts ...Option) *Session {
	cfg := &sessionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Session{
		Address:   address,
		MTU:       mtu,
		SendQueue: sendqueue.New(mtu, sender, cfg.sendQueueOpts...),
		Receiver:  recv.New(cfg.recvOpts...),
	}
}

// Push submits a user buffer for transmission; see sendqueue.Push.
func (s *Session) Push(buffer []byte, reliable bool, mode sendqueue.OrderMode, channel uint8, wantAckReceipt bool) (uint32, error) {
	return s.SendQueue.Push(buffer, reliable, mode, channel, wantAckReceipt)
}

// Flush forces the pending outbound batch onto the wire even if it
// has not reached the MTU threshold; see sendqueue.Flush.
func (s *Session) Flush() {
	s.SendQueue.Flush()
}

// HandleIncoming decodes one in-session UDP payload and routes it:
// acks and nacks drive SendQueue retransmission bookkeeping, and a
// datagram is handed to the Receiver for reassembly. It returns the
// user payloads that became deliverable as a result (spec §4.8).
func (s *Session) HandleIncoming(payload []byte) ([][]byte, error) {
	c := wire.NewCursor(payload)
	online, err := datagram.DecodeOnline(c)
	if err != nil {
		return nil, err
	}

	switch online.Kind {
	case datagram.KindNone:
		return nil, nil
	case datagram.KindAck:
		s.SendQueue.HandleAck(online.Acks.ToSorted())
		return nil, nil
	case datagram.KindNak:
		s.SendQueue.HandleNack(online.Nacks.ToSorted())
		return nil, nil
	case datagram.KindDatagram:
		return s.Receiver.HandleDatagram(online.Datagram)
	default:
		return nil, nil
	}
}

// PendingAck builds the ack list for every datagram sequence number
// observed since the last call, or nil if there is nothing to
// acknowledge yet.
func (s *Session) PendingAck() *acklist.List {
	ids := s.Receiver.PendingAcks()
	if len(ids) == 0 {
		return nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return acklist.FromSorted(ids)
}
