package sendqueue

import (
	"github.com/ventosilenzioso/go-raknet/pkg/inner"
	"github.com/ventosilenzioso/go-raknet/pkg/metrics"
	"github.com/ventosilenzioso/go-raknet/pkg/wire"
)

// HandleAck retires every fragment tracked under each acked datagram
// sequence number: reliable fragments are dropped from the
// retransmit index, and ack-receipt fragments have their remaining
// count decremented, firing the sink once a submission's every
// fragment has been acknowledged (spec §4.7 item 6,
// SPEC_FULL.md §4.7.1).
func (q *SendQueue) HandleAck(seqs []uint32) {
	for _, s := range seqs {
		seq := wire.Triad(s)
		fragments, ok := q.pendingByDatagram[seq]
		if !ok {
			continue
		}
		delete(q.pendingByDatagram, seq)

		for _, f := range fragments {
			metrics.AckedBytes.Add(float64(len(f.packet.Payload)))
			if f.receiptID == nil {
				continue
			}
			rid := *f.receiptID
			q.receiptRemaining[rid]--
			if q.receiptRemaining[rid] <= 0 {
				delete(q.receiptRemaining, rid)
				if q.ackReceiptSink != nil {
					q.ackReceiptSink(rid)
				}
			}
		}
	}
}

// HandleNack re-enqueues every reliable fragment tracked under each
// nacked (or timed-out) datagram sequence number into a fresh batch,
// preserving its original message_index, order/sequence index and
// split descriptor exactly — only the datagram sequence number it
// eventually ships in changes. Unreliable fragments, including those
// carrying UnreliableWithAckReceipt, are dropped silently: they were
// never going to be retransmitted, so their receipt (if any) simply
// never fires (spec §4.7 item 6).
func (q *SendQueue) HandleNack(seqs []uint32) {
	for _, s := range seqs {
		seq := wire.Triad(s)
		fragments, ok := q.pendingByDatagram[seq]
		if !ok {
			continue
		}
		delete(q.pendingByDatagram, seq)

		for _, f := range fragments {
			if !f.packet.Reliability.HasMessageIndex() {
				continue
			}
			metrics.Retransmits.Inc()
			q.resend(f.packet, f.receiptID)
		}
	}
}

// resend places an already-assigned packet back into the pending
// batch without touching any of its index fields, and re-tracks it
// against whatever datagram sequence number the next flush assigns.
func (q *SendQueue) resend(packet *inner.Packet, receiptID *uint32) {
	size := packet.Size()
	q.flushIfLong(size)

	q.pending = append(q.pending, packet)
	q.estSize += size
	q.trackPending(packet, receiptID)

	q.flushIfLong(0)
}
