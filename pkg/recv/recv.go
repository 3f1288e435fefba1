// Package recv implements receive-side reassembly (spec §4.8): datagram
// sequence dedup, split-group buffering and the per-channel
// ordering/sequencing reassembler.
package recv

import (
	"errors"

	"github.com/ventosilenzioso/go-raknet/pkg/datagram"
	"github.com/ventosilenzioso/go-raknet/pkg/inner"
	"github.com/ventosilenzioso/go-raknet/pkg/metrics"
	"github.com/ventosilenzioso/go-raknet/pkg/wire"
)

// ChannelCount mirrors sendqueue.ChannelCount: 32 independent
// ordering/sequencing channels.
const ChannelCount = 32

// Default resource caps (spec §5 "Resource policy").
const (
	DefaultMaxSplitGroups = 64
	DefaultMaxOutOfOrder  = 1024
)

// ErrSplitGroupLimitExceeded is returned when a new split group would
// exceed MaxSplitGroups (spec §5, "exceeding either bound is a fatal
// session error").
var ErrSplitGroupLimitExceeded = errors.New("raknet/recv: too many buffered split groups")

// ErrOutOfOrderLimitExceeded is returned when a channel's buffered
// out-of-order packet count would exceed MaxOutOfOrder.
var ErrOutOfOrderLimitExceeded = errors.New("raknet/recv: too many buffered out-of-order packets")

type splitGroup struct {
	count     uint32
	fragments map[uint32][]byte
}

type orderState struct {
	next     wire.Triad
	buffered map[wire.Triad][]byte
}

type sequenceState struct {
	has  bool
	last wire.Triad
}

// Receiver is the per-session receive-side reassembler described in
// spec §4.8. It is not safe for concurrent use: per §5, each session
// owns its Receiver exclusively from the owning session's task.
type Receiver struct {
	maxSplitGroups int
	maxOutOfOrder  int

	seen        map[wire.Triad]struct{}
	pendingAcks []uint32

	splitGroups map[uint16]*splitGroup
	orders      [ChannelCount]orderState
	sequences   [ChannelCount]sequenceState
}

// Option configures a Receiver at construction time.
type Option func(*Receiver)

// WithMaxSplitGroups overrides DefaultMaxSplitGroups.
func WithMaxSplitGroups(n int) Option {
	return func(r *Receiver) { r.maxSplitGroups = n }
}

// WithMaxOutOfOrder overrides DefaultMaxOutOfOrder.
func WithMaxOutOfOrder(n int) Option {
	return func(r *Receiver) { r.maxOutOfOrder = n }
}

// New creates a Receiver with empty per-channel state.
func New(opts ...Option) *Receiver {
	r := &Receiver{
		maxSplitGroups: DefaultMaxSplitGroups,
		maxOutOfOrder:  DefaultMaxOutOfOrder,
		seen:           make(map[wire.Triad]struct{}),
		splitGroups:    make(map[uint16]*splitGroup),
	}
	for i := range r.orders {
		r.orders[i].buffered = make(map[wire.Triad][]byte)
	}
	return r
}

// HandleDatagram records d's sequence number for ack emission,
// dropping the body silently if already seen, then routes each inner
// packet through split reassembly and ordering/sequencing reassembly.
// It returns the user payloads that became deliverable as a result,
// in the order they were released: each packet is followed directly by
// any buffered out-of-order packets it unblocked, before the next
// packet of the same datagram.
func (r *Receiver) HandleDatagram(d *datagram.Datagram) ([][]byte, error) {
	if _, dup := r.seen[d.SequenceNumber]; dup {
		metrics.DatagramsDuplicate.Inc()
		return nil, nil
	}
	r.seen[d.SequenceNumber] = struct{}{}
	r.pendingAcks = append(r.pendingAcks, uint32(d.SequenceNumber))

	var out [][]byte
	for _, p := range d.Packets {
		payload, ready, err := r.resolveSplit(p)
		if err != nil {
			return out, err
		}
		if !ready {
			continue
		}
		delivered, err := r.reassembleOrder(p, payload)
		if err != nil {
			return out, err
		}
		out = append(out, delivered...)
	}
	return out, nil
}

// PendingAcks returns the datagram sequence numbers observed since
// the last call and clears the internal buffer (spec §4.8, "record
// its sequence number for ack emission").
func (r *Receiver) PendingAcks() []uint32 {
	acks := r.pendingAcks
	r.pendingAcks = nil
	return acks
}

// resolveSplit buffers p if it carries a split descriptor, returning
// the reconstituted payload once every fragment of its group has
// arrived. Non-split packets pass through unchanged.
func (r *Receiver) resolveSplit(p *inner.Packet) ([]byte, bool, error) {
	if p.Split == nil {
		return p.Payload, true, nil
	}

	g, ok := r.splitGroups[p.Split.ID]
	if !ok {
		if len(r.splitGroups) >= r.maxSplitGroups {
			return nil, false, ErrSplitGroupLimitExceeded
		}
		g = &splitGroup{count: p.Split.Count, fragments: make(map[uint32][]byte)}
		r.splitGroups[p.Split.ID] = g
	}
	g.fragments[p.Split.Index] = p.Payload

	if uint32(len(g.fragments)) < g.count {
		return nil, false, nil
	}

	delete(r.splitGroups, p.Split.ID)
	var payload []byte
	for i := uint32(0); i < g.count; i++ {
		payload = append(payload, g.fragments[i]...)
	}
	return payload, true, nil
}

// reassembleOrder applies the per-channel ordering/sequencing rule
// from spec §4.8 to one reconstituted payload, returning zero or more
// payloads that became deliverable (the one just arrived plus any
// buffered successors it unblocked).
func (r *Receiver) reassembleOrder(p *inner.Packet, payload []byte) ([][]byte, error) {
	if !p.Reliability.HasOrder() {
		return [][]byte{payload}, nil
	}

	channel := p.OrderChannel
	if channel >= ChannelCount {
		return nil, wire.ErrOutOfRange // corrupt input: inner.Decode should have rejected this already
	}
	if p.Reliability.HasSequenceIndex() {
		st := &r.sequences[channel]
		if st.has && !triadAfter(p.SequenceIndex, st.last) {
			return nil, nil // spec §4.8: drop sequence_index <= last delivered
		}
		st.has = true
		st.last = p.SequenceIndex
		return [][]byte{payload}, nil
	}

	st := &r.orders[channel]
	if p.OrderIndex != st.next && triadAfter(st.next, p.OrderIndex) {
		return nil, nil // duplicate: already delivered
	}
	if p.OrderIndex != st.next {
		if len(st.buffered) >= r.maxOutOfOrder {
			return nil, ErrOutOfOrderLimitExceeded
		}
		st.buffered[p.OrderIndex] = payload
		return nil, nil
	}

	out := [][]byte{payload}
	st.next++
	for {
		b, ok := st.buffered[st.next]
		if !ok {
			break
		}
		out = append(out, b)
		delete(st.buffered, st.next)
		st.next++
	}
	return out, nil
}

// triadAfter reports whether a is strictly after b in the circular
// 24-bit index space, using windowed (half-range) comparison to
// survive wraparound (spec §4.7's wrap invariant).
func triadAfter(a, b wire.Triad) bool {
	diff := (uint32(a) - uint32(b)) & (wire.TriadMax - 1)
	return diff != 0 && diff < wire.TriadMax/2
}
