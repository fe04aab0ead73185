// Package socket runs the single-threaded event loop that owns a UDP
// socket, its virtual connection registry, and its read buffer — the
// caller only ever touches it through SendTo and the Events channel. This
// keeps all connection mutation on one goroutine, the same shape as the
// teacher's listen/updateLoop/sessionCleanupLoop goroutines in
// source/server/server.go, collapsed into one loop with a polling
// deadline standing in for its tickers.
package socket

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ventosilenzioso/rudp/config"
	"github.com/ventosilenzioso/rudp/events"
	"github.com/ventosilenzioso/rudp/internal/logging"
	"github.com/ventosilenzioso/rudp/internal/metrics"
	"github.com/ventosilenzioso/rudp/protocol"
)

// Socket owns one UDP connection and every virtual connection it has
// inferred from traffic.
type Socket struct {
	conn        *net.UDPConn
	cfg         config.SocketConfig
	connections *protocol.ActiveConnections
	mx          *metrics.Metrics

	eventsCh   chan events.SocketEvent
	outboundCh chan outboundRequest
	stopCh     chan struct{}
	wg         sync.WaitGroup
	started    int32
}

type outboundRequest struct {
	addr     net.Addr
	payload  []byte
	delivery protocol.DeliveryMethod
	result   chan error
}

// Bind opens a UDP socket at addr and builds a Socket around it. Call
// Start to begin polling.
func Bind(addr string, cfg config.SocketConfig, mx *metrics.Metrics) (*Socket, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("socket: resolve %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("socket: listen %q: %w", addr, err)
	}
	return &Socket{
		conn:        conn,
		cfg:         cfg,
		connections: protocol.NewActiveConnections(mx),
		mx:          mx,
		eventsCh:    make(chan events.SocketEvent, cfg.SocketEventBufferSize),
		outboundCh:  make(chan outboundRequest),
		stopCh:      make(chan struct{}),
	}, nil
}

// LocalAddr reports the bound local address.
func (s *Socket) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// Events is the channel of SocketEvents (delivered packets and
// connection timeouts) the caller should drain.
func (s *Socket) Events() <-chan events.SocketEvent {
	return s.eventsCh
}

// Start launches the polling loop in its own goroutine.
func (s *Socket) Start() {
	if !atomic.CompareAndSwapInt32(&s.started, 0, 1) {
		return
	}
	s.wg.Add(1)
	go s.loop()
}

// Close stops the polling loop and releases the underlying UDP socket.
func (s *Socket) Close() error {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	err := s.conn.Close()
	s.wg.Wait()
	close(s.eventsCh)
	return err
}

// SendTo submits payload for delivery to addr under the given method. It
// blocks until the loop goroutine has serialized and written every
// resulting datagram, or returns ErrPollingNotStarted if Start has not
// been called.
func (s *Socket) SendTo(addr net.Addr, payload []byte, delivery protocol.DeliveryMethod) error {
	if len(payload) > s.cfg.MaxPacketSizeBytes() {
		return &protocol.PacketError{Kind: protocol.ExceededMaxPacketSize}
	}
	if atomic.LoadInt32(&s.started) == 0 {
		return protocol.ErrPollingNotStarted
	}

	req := outboundRequest{addr: addr, payload: payload, delivery: delivery, result: make(chan error, 1)}
	select {
	case s.outboundCh <- req:
	case <-s.stopCh:
		return protocol.ErrPollingNotStarted
	}

	select {
	case err := <-req.result:
		return err
	case <-s.stopCh:
		return protocol.ErrPollingNotStarted
	}
}

func (s *Socket) loop() {
	defer s.wg.Done()

	buf := make([]byte, s.cfg.ReceiveBufferSizeBytes)
	for {
		select {
		case <-s.stopCh:
			return
		case req := <-s.outboundCh:
			s.handleOutbound(req)
			continue
		default:
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.SocketPollingTimeout)); err != nil {
			return
		}
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				s.sweepIdle()
				continue
			}
			select {
			case <-s.stopCh:
				return
			default:
			}
			logging.Warn("udp read failed", logging.Fields{"error": err.Error()})
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		s.handleIncoming(addr, data)
	}
}

func (s *Socket) handleIncoming(addr net.Addr, data []byte) {
	now := time.Now()
	conn := s.connections.GetOrInsert(addr, s.cfg, now)

	incoming, err := conn.ProcessIncoming(data, now)
	if err != nil {
		logging.Debug("dropping malformed datagram", logging.Fields{"peer": addr.String(), "error": err.Error()})
		return
	}

	for _, pkt := range incoming.Packets {
		s.publish(events.NewPacketEvent(pkt.Addr(), pkt.Payload()))
	}
	for _, d := range incoming.Dropped {
		logging.Warn("reliable send unacknowledged", logging.Fields{"peer": addr.String(), "sequence": d.Sequence})
	}
}

func (s *Socket) handleOutbound(req outboundRequest) {
	now := time.Now()
	conn := s.connections.GetOrInsert(req.addr, s.cfg, now)

	datagrams, err := conn.ProcessOutgoing(req.payload, req.delivery, now)
	if err != nil {
		req.result <- err
		return
	}
	for _, dg := range datagrams {
		if _, err := s.conn.WriteTo(dg, req.addr); err != nil {
			req.result <- err
			return
		}
	}
	req.result <- nil
}

func (s *Socket) sweepIdle() {
	now := time.Now()
	for _, conn := range s.connections.Idle(now, s.cfg.IdleConnectionTimeout) {
		s.connections.Remove(conn.Addr())
		if s.mx != nil {
			s.mx.ConnectionTimeouts.Inc()
		}
		s.publish(events.NewTimeOutEvent(conn.Addr()))
	}
}

func (s *Socket) publish(ev events.SocketEvent) {
	select {
	case s.eventsCh <- ev:
	default:
		logging.Warn("event channel full, dropping event", logging.Fields{"kind": ev.Kind.String()})
	}
}
