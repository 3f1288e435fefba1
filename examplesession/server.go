// Package examplesession is a reference (non-core) implementation of
// the Socket and session-manager collaborators spec §6 leaves to the
// embedder: a UDP socket loop over a map of pkg/raknet Sessions, each
// driven by a ticker-based flush and a stale-session reaper, in the
// shape of a classic game-server accept loop. The socket loop and the
// update ticker call into each Session directly; there are no inbox
// channels between them.
//
// It carries none of the engine's invariants; it exists to give the
// wired domain dependencies (zap, prometheus, backoff, xid) a home
// and to demonstrate pkg/raknet end to end.
package examplesession

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/xid"

	"github.com/ventosilenzioso/go-raknet/pkg/datagram"
	"github.com/ventosilenzioso/go-raknet/pkg/encap"
	"github.com/ventosilenzioso/go-raknet/pkg/logger"
	"github.com/ventosilenzioso/go-raknet/pkg/metrics"
	"github.com/ventosilenzioso/go-raknet/pkg/raknet"
	"github.com/ventosilenzioso/go-raknet/pkg/sendqueue"
	"github.com/ventosilenzioso/go-raknet/pkg/wire"
)

const (
	readBufferSize  = 2048
	DefaultMTU      = 1400
	updateInterval  = 50 * time.Millisecond
	cleanupInterval = 5 * time.Second
	sessionTimeout  = 30 * time.Second

	keepaliveInitialInterval = 500 * time.Millisecond
	keepaliveMaxInterval     = 5 * time.Second
)

// DeliverFunc receives one reassembled user payload from a session.
type DeliverFunc func(id xid.ID, addr *net.UDPAddr, payload []byte)

type entry struct {
	id       xid.ID
	addr     *net.UDPAddr
	session  *raknet.Session
	lastSeen time.Time

	// keepalive backs off the ConnectedPing cadence while a session is
	// idle, and resets on any inbound traffic, rather than pinging on
	// a fixed tick forever (spec §5: "timers are supplied by the
	// collaborator").
	keepalive backoff.BackOff
	nextPing  time.Time
}

func newKeepalive() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = keepaliveInitialInterval
	b.MaxInterval = keepaliveMaxInterval
	b.MaxElapsedTime = 0 // never stop backing off
	return b
}

type udpSender struct {
	conn *net.UDPConn
	addr *net.UDPAddr
}

// Send implements sendqueue.Sender by writing the encoded datagram
// straight to the peer address this sender is bound to.
func (s *udpSender) Send(_ wire.Triad, encoded []byte) {
	if _, err := s.conn.WriteToUDP(encoded, s.addr); err != nil {
		logger.Error("raknet: write to %s failed: %v", s.addr, err)
		return
	}
	metrics.DatagramsSent.Inc()
}

// Server is the reference UDP accept loop. One Server hosts many
// Sessions, keyed by peer address.
type Server struct {
	conn    *net.UDPConn
	mu      sync.Mutex
	peers   map[string]*entry
	deliver DeliverFunc
	running bool
}

// NewServer creates a Server that invokes deliver for each payload a
// session reassembles.
func NewServer(deliver DeliverFunc) *Server {
	return &Server{peers: make(map[string]*entry), deliver: deliver}
}

// Start binds addr and runs the accept loop, update ticker and
// cleanup reaper until Stop is called. It blocks in the accept loop,
// matching the teacher's Server.Start/listen split.
func (srv *Server) Start(addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}

	srv.conn = conn
	srv.running = true

	logger.Section("RakNet Engine")
	logger.Info("listening on %s", addr)

	go srv.updateLoop()
	go srv.cleanupLoop()

	return srv.listen()
}

// Stop halts the accept loop and closes the socket.
func (srv *Server) Stop() {
	srv.running = false
	if srv.conn != nil {
		srv.conn.Close()
	}
	logger.Info("raknet: server stopped")
}

func (srv *Server) listen() error {
	buffer := make([]byte, readBufferSize)
	for srv.running {
		n, addr, err := srv.conn.ReadFromUDP(buffer)
		if err != nil {
			if srv.running {
				logger.Error("raknet: read error: %v", err)
			}
			continue
		}
		data := append([]byte(nil), buffer[:n]...)
		srv.handlePacket(data, addr)
	}
	return nil
}

func (srv *Server) handlePacket(data []byte, addr *net.UDPAddr) {
	key := addr.String()

	srv.mu.Lock()
	e, ok := srv.peers[key]
	if !ok {
		e = srv.newEntry(addr)
		srv.peers[key] = e
		metrics.SessionsActive.Inc()
		logger.InfoCyan("raknet: new session %s from %s", e.id, key)
	}
	srv.mu.Unlock()

	e.lastSeen = time.Now()
	e.keepalive.Reset()
	e.nextPing = time.Now().Add(e.keepalive.NextBackOff())

	delivered, err := e.session.HandleIncoming(data)
	if err != nil {
		metrics.DecodeErrors.WithLabelValues(decodeErrorKind(err)).Inc()
		logger.Warn("raknet: decode error from %s: %v", key, err)
		return
	}
	metrics.DatagramsReceived.Inc()

	for _, payload := range delivered {
		if srv.deliver != nil {
			srv.deliver(e.id, addr, payload)
		}
	}

	if ack := e.session.PendingAck(); ack != nil {
		frame := datagram.EncodeAck(nil, ack)
		if _, err := srv.conn.WriteToUDP(frame, addr); err != nil {
			logger.Error("raknet: ack write to %s failed: %v", key, err)
		}
	}
}

func (srv *Server) newEntry(addr *net.UDPAddr) *entry {
	id := xid.New()
	sender := &udpSender{conn: srv.conn, addr: addr}
	session := raknet.New(fromUDPAddr(addr), DefaultMTU, sender,
		raknet.WithAckReceiptSink(func(receiptID uint32) {
			metrics.AckReceiptsFired.Inc()
			logger.Debug("raknet: receipt %d delivered to %s", receiptID, addr)
		}),
	)
	keepalive := newKeepalive()
	return &entry{
		id:        id,
		addr:      addr,
		session:   session,
		lastSeen:  time.Now(),
		keepalive: keepalive,
		nextPing:  time.Now().Add(keepalive.NextBackOff()),
	}
}

// updateLoop flushes every session's pending batch on a fixed tick,
// mirroring the teacher's 50ms update ticker.
func (srv *Server) updateLoop() {
	ticker := time.NewTicker(updateInterval)
	defer ticker.Stop()
	for srv.running {
		<-ticker.C
		srv.mu.Lock()
		entries := make([]*entry, 0, len(srv.peers))
		for _, e := range srv.peers {
			entries = append(entries, e)
		}
		srv.mu.Unlock()
		now := time.Now()
		for _, e := range entries {
			if now.After(e.nextPing) {
				payload := encap.Encode(nil, encap.ConnectedPing{SendPingTime: uint64(now.UnixMilli())})
				if _, err := e.session.Push(payload, false, sendqueue.OrderNone, 0, false); err != nil {
					logger.Error("raknet: keepalive push to %s failed: %v", e.addr, err)
				}
				e.nextPing = now.Add(e.keepalive.NextBackOff())
			}
			e.session.Flush()
		}
	}
}

// cleanupLoop reaps sessions that have not been heard from within
// sessionTimeout, mirroring the teacher's session cleanup ticker.
func (srv *Server) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for srv.running {
		<-ticker.C
		now := time.Now()
		srv.mu.Lock()
		for key, e := range srv.peers {
			if now.Sub(e.lastSeen) > sessionTimeout {
				delete(srv.peers, key)
				metrics.SessionsActive.Dec()
				logger.Info("raknet: session %s (%s) timed out", e.id, key)
			}
		}
		srv.mu.Unlock()
	}
}

func decodeErrorKind(err error) string {
	var de *wire.DecodeError
	if errors.As(err, &de) {
		return de.Kind().String()
	}
	return "unknown"
}

func fromUDPAddr(addr *net.UDPAddr) wire.SocketAddress {
	if ip4 := addr.IP.To4(); ip4 != nil {
		return wire.NewIPv4Address(ip4[0], ip4[1], ip4[2], ip4[3], uint16(addr.Port))
	}
	var raw [16]byte
	copy(raw[:], addr.IP.To16())
	return wire.NewIPv6Address(raw, uint16(addr.Port), 0, uint32(zoneToScopeID(addr.Zone)))
}

func zoneToScopeID(zone string) int {
	if zone == "" {
		return 0
	}
	if iface, err := net.InterfaceByName(zone); err == nil {
		return iface.Index
	}
	return 0
}
