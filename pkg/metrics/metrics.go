// Package metrics exposes the engine's Prometheus instrumentation:
// datagram throughput, retransmissions, decode errors by kind, and
// reassembly buffer occupancy (SPEC_FULL.md §1.2 domain stack).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DatagramsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_datagrams_sent_total", Help: "Total datagrams flushed onto the wire.",
	})
	DatagramsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_datagrams_received_total", Help: "Total inbound in-session UDP payloads decoded without error.",
	})
	DatagramsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_datagrams_duplicate_total", Help: "Total datagrams dropped as already-seen sequence numbers.",
	})

	Retransmits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_retransmits_total", Help: "Total reliable fragments re-enqueued after a nack or timeout.",
	})
	AckedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_acked_bytes_total", Help: "Total payload bytes confirmed delivered by an ack.",
	})
	AckReceiptsFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_ack_receipts_fired_total", Help: "Total ack-receipt callbacks fired.",
	})

	DecodeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "raknet_decode_errors_total", Help: "Total decode errors, partitioned by kind.",
	}, []string{"kind"})

	SplitGroupsBuffered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "raknet_split_groups_buffered", Help: "Current number of incomplete split groups buffered per process.",
	})
	OutOfOrderBuffered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "raknet_out_of_order_buffered", Help: "Current number of buffered out-of-order ordered-channel packets per process.",
	})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "raknet_sessions_active", Help: "Current number of live sessions.",
	})
)
