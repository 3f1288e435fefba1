// Package sendqueue implements the send-queue reliability engine (spec
// §4.7): MTU-bounded batching, per-channel ordering/sequencing index
// assignment, fragmentation into split groups, datagram sequence-
// number allocation, and ack/nack-driven retransmission policy.
package sendqueue

import (
	"errors"

	"github.com/ventosilenzioso/go-raknet/pkg/datagram"
	"github.com/ventosilenzioso/go-raknet/pkg/inner"
	"github.com/ventosilenzioso/go-raknet/pkg/wire"
)

// ChannelCount is the number of independent ordering/sequencing
// channels a session exposes (spec §3).
const ChannelCount = 32

// mtuFragmentMargin is the byte budget reserved for UDP/IP headers
// plus the datagram sequence number and inner-packet header overhead
// when deciding whether a submission needs fragmenting (spec §4.7
// item 3). Empirically inherited from the reference implementation
// (spec §9 Open Questions) — tune per deployment.
const mtuFragmentMargin = 60

// flushHeaderOverhead is the additional byte budget (UDP+IP headers
// plus framing slack) accounted for before a pending batch is allowed
// to grow further (spec §4.7 item 4).
const flushHeaderOverhead = 4 + 20 + 8 + 8

// OrderMode selects how a submission is sequenced relative to others
// on the same channel.
type OrderMode int

const (
	OrderNone OrderMode = iota
	OrderOrdered
	OrderSequenced
)

// ErrSequencedAckReceipt is returned by Push when a Sequenced
// submission also requests an ack receipt — not representable on the
// wire and fatal for the caller (spec §4.7 item 1).
var ErrSequencedAckReceipt = errors.New("raknet/sendqueue: a sequenced packet cannot request an ack receipt")

// Logger receives the one warning this package ever emits: an
// Unreliable+Ordered submission silently coerced to Unreliable.
type Logger interface {
	Warnf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...interface{}) {}

// Sender hands an encoded datagram byte buffer to the external
// socket collaborator. The SendQueue owns the pending batch
// exclusively until Send is called; no aliased reference escapes
// (spec §9, "Ownership of the pending batch").
type Sender interface {
	Send(seq wire.Triad, encoded []byte)
}

// trackedFragment is bookkeeping kept for a flushed fragment that
// still matters after it leaves the queue: reliable fragments need it
// for retransmission, ack-receipt fragments need it to fire the
// receipt callback once acked.
type trackedFragment struct {
	packet    *inner.Packet
	receiptID *uint32
}

// SendQueue is the per-session reliability engine described in spec
// §3 and §4.7. It is not safe for concurrent use: per §5, each session
// owns its SendQueue exclusively from the owning session's task.
type SendQueue struct {
	mtuSize int
	sender  Sender
	logger  Logger

	pending []*inner.Packet
	estSize int

	nextSeqNumber wire.Triad

	sendOrderedIndices   [ChannelCount]wire.Triad
	sendSequencedIndices [ChannelCount]wire.Triad
	messageIndex         wire.Triad
	splitID              uint16
	nextReceiptID        uint32

	// pendingByDatagram tracks, per flushed datagram sequence number,
	// the fragments that still need ack/nack bookkeeping. Entries are
	// removed once the datagram is acked or nacked/retransmitted.
	pendingByDatagram map[wire.Triad][]trackedFragment
	// receiptRemaining counts, per receipt id, how many of its
	// fragments are still unacked; the sink fires when it hits zero.
	receiptRemaining map[uint32]int
	// stagedTracking holds bookkeeping for fragments appended to the
	// pending batch since the last flush; Flush() reconciles it against
	// the sequence number the batch is about to receive.
	stagedTracking []trackedFragment

	ackReceiptSink func(receiptID uint32)
}

// Option configures a SendQueue at construction time.
type Option func(*SendQueue)

// WithLogger sets the Logger used for the Unreliable+Ordered
// coercion warning. Defaults to a no-op logger.
func WithLogger(l Logger) Option {
	return func(q *SendQueue) { q.logger = l }
}

// WithAckReceiptSink registers a callback invoked exactly once per
// receipt id, when every fragment of the submission that requested it
// has been acknowledged (SPEC_FULL.md §4.7.1).
func WithAckReceiptSink(sink func(receiptID uint32)) Option {
	return func(q *SendQueue) { q.ackReceiptSink = sink }
}

// New creates a SendQueue bound to mtuSize and sender. All counters
// start at zero, per spec §3 Lifecycle.
func New(mtuSize int, sender Sender, opts ...Option) *SendQueue {
	q := &SendQueue{
		mtuSize:           mtuSize,
		sender:            sender,
		logger:            nopLogger{},
		pendingByDatagram: make(map[wire.Triad][]trackedFragment),
		receiptRemaining:  make(map[uint32]int),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Push submits one user buffer for transmission. It returns the
// receipt id assigned if wantAckReceipt is true (0 otherwise), per
// SPEC_FULL.md §4.7.1.
func (q *SendQueue) Push(buffer []byte, reliable bool, mode OrderMode, channel uint8, wantAckReceipt bool) (uint32, error) {
	if mode == OrderSequenced && wantAckReceipt {
		return 0, ErrSequencedAckReceipt
	}

	if !reliable && mode == OrderOrdered {
		q.logger.Warnf("raknet/sendqueue: unreliable ordered packet is not representable on the wire, coercing to unreliable")
		mode = OrderNone
	}

	reliability := chooseReliability(reliable, mode, wantAckReceipt)

	var orderIndex, sequenceIndex wire.Triad
	var orderChannel uint8
	switch mode {
	case OrderOrdered:
		orderChannel = channel
		orderIndex = q.sendOrderedIndices[channel]
		q.sendOrderedIndices[channel]++
	case OrderSequenced:
		orderChannel = channel
		sequenceIndex = q.sendSequencedIndices[channel]
		q.sendSequencedIndices[channel]++
		// Sequenced packets ride the ordered channel's current window
		// but do not advance it (spec §4.7 item 2).
		orderIndex = q.sendOrderedIndices[channel]
	}

	var receiptID uint32
	if wantAckReceipt {
		receiptID = q.nextReceiptID
		q.nextReceiptID++
	}

	maxFragmentPayload := q.mtuSize - mtuFragmentMargin
	if maxFragmentPayload <= 0 {
		maxFragmentPayload = 1
	}

	if len(buffer) <= maxFragmentPayload {
		packet := q.newFragment(reliability, orderIndex, sequenceIndex, orderChannel, nil, buffer)
		q.pushInner(packet, wantAckReceipt, receiptID)
		return receiptID, nil
	}

	splitID := q.splitID
	q.splitID++

	chunks := chunk(buffer, maxFragmentPayload)
	for i, c := range chunks {
		split := &inner.Split{
			Count: uint32(len(chunks)),
			ID:    splitID,
			Index: uint32(i),
		}
		packet := q.newFragment(reliability, orderIndex, sequenceIndex, orderChannel, split, c)
		q.pushInner(packet, wantAckReceipt, receiptID)
	}
	return receiptID, nil
}

func chunk(buffer []byte, size int) [][]byte {
	var chunks [][]byte
	for len(buffer) > 0 {
		n := size
		if n > len(buffer) {
			n = len(buffer)
		}
		chunks = append(chunks, buffer[:n])
		buffer = buffer[n:]
	}
	return chunks
}

// newFragment builds one inner packet, assigning a fresh message_index
// if the reliability variant carries one (spec §4.7 item 3: "Each
// fragment receives its own fresh message_index").
func (q *SendQueue) newFragment(reliability inner.Reliability, orderIndex, sequenceIndex wire.Triad, orderChannel uint8, split *inner.Split, payload []byte) *inner.Packet {
	p := &inner.Packet{
		Reliability:   reliability,
		OrderIndex:    orderIndex,
		SequenceIndex: sequenceIndex,
		OrderChannel:  orderChannel,
		Split:         split,
		Payload:       append([]byte(nil), payload...),
	}
	if reliability.HasMessageIndex() {
		p.MessageIndex = q.messageIndex
		q.messageIndex++
	}
	return p
}

func chooseReliability(reliable bool, mode OrderMode, wantAckReceipt bool) inner.Reliability {
	switch {
	case !reliable && mode == OrderNone && !wantAckReceipt:
		return inner.Unreliable
	case !reliable && mode == OrderNone && wantAckReceipt:
		return inner.UnreliableWithAckReceipt
	case !reliable && mode == OrderSequenced:
		return inner.UnreliableSequenced
	case reliable && mode == OrderNone && !wantAckReceipt:
		return inner.Reliable
	case reliable && mode == OrderNone && wantAckReceipt:
		return inner.ReliableWithAckReceipt
	case reliable && mode == OrderOrdered && !wantAckReceipt:
		return inner.ReliableOrdered
	case reliable && mode == OrderOrdered && wantAckReceipt:
		return inner.ReliableOrderedWithAckReceipt
	case reliable && mode == OrderSequenced:
		return inner.ReliableSequenced
	default:
		return inner.Unreliable
	}
}

// pushInner appends packet to the pending batch, flushing before and
// after if the batch would exceed the MTU (spec §4.7 item 4), and
// records receipt bookkeeping for the fragment's eventual datagram.
func (q *SendQueue) pushInner(packet *inner.Packet, wantAckReceipt bool, receiptID uint32) {
	size := packet.Size()
	q.flushIfLong(size)

	q.pending = append(q.pending, packet)
	q.estSize += size

	if wantAckReceipt {
		q.receiptRemaining[receiptID]++
		rid := receiptID
		q.trackPending(packet, &rid)
	} else if packet.Reliability.HasMessageIndex() {
		q.trackPending(packet, nil)
	}

	q.flushIfLong(0)
}

// trackPending associates packet with whatever datagram sequence
// number it ends up in once flushed; since the sequence number is not
// known until flush time, tracking happens lazily via stagedTracking,
// reconciled in Flush().
func (q *SendQueue) trackPending(packet *inner.Packet, receiptID *uint32) {
	q.stagedTracking = append(q.stagedTracking, trackedFragment{packet: packet, receiptID: receiptID})
}

func (q *SendQueue) flushIfLong(extra int) {
	if q.estSize+flushHeaderOverhead+extra > q.mtuSize {
		q.Flush()
	}
}

// Flush wraps the pending batch into a Datagram with the next
// sequence number, encodes it, and hands the byte buffer to the
// sender (spec §4.7 item 5).
func (q *SendQueue) Flush() {
	if len(q.pending) == 0 {
		return
	}

	seq := q.nextSeqNumber
	q.nextSeqNumber++

	d := &datagram.Datagram{SequenceNumber: seq, Packets: q.pending}
	encoded := datagram.EncodeDatagram(nil, d)

	if len(q.stagedTracking) > 0 {
		q.pendingByDatagram[seq] = append(q.pendingByDatagram[seq], q.stagedTracking...)
		q.stagedTracking = nil
	}

	q.pending = nil
	q.estSize = 0

	if q.sender != nil {
		q.sender.Send(seq, encoded)
	}
}
