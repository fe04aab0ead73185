package protocol

import (
	"net"
	"time"

	"github.com/rs/xid"

	"github.com/ventosilenzioso/rudp/config"
	"github.com/ventosilenzioso/rudp/internal/metrics"
)

// VirtualConnection is the per-peer state the socket accumulates purely
// from observed traffic — there is no handshake, so a connection exists
// from the moment its first datagram is seen until it goes idle. It is
// owned exclusively by the socket's single-threaded event loop (spec.md
// §5); nothing else touches it, so it carries no synchronization of its
// own, the way the original's connection.rs is a plain unsynchronized
// struct.
type VirtualConnection struct {
	id   xid.ID
	addr net.Addr
	cfg  config.SocketConfig
	mx   *metrics.Metrics

	lastSeen     time.Time
	nextSeq      uint16
	externalAcks ExternalAcks
	localAcks    LocalAckRecord
	congestion   *SequenceBuffer
	reassembler  Reassembler
	rtt          RttMeasurer
	smoothedRTT  float32
}

// NewVirtualConnection builds a connection for addr, first observed at
// createdAt.
func NewVirtualConnection(addr net.Addr, cfg config.SocketConfig, mx *metrics.Metrics, createdAt time.Time) *VirtualConnection {
	return &VirtualConnection{
		id:         xid.New(),
		addr:       addr,
		cfg:        cfg,
		mx:         mx,
		lastSeen:   createdAt,
		congestion: NewSequenceBuffer(DefaultSequenceBufferCapacity),
		rtt:        NewRttMeasurer(cfg.RTTMaxValueMs, cfg.RTTSmoothingFactor),
	}
}

// ID is a correlation id for logs and metrics, analogous to the teacher's
// per-session GUID.
func (c *VirtualConnection) ID() xid.ID {
	return c.id
}

// Addr is the peer this connection represents.
func (c *VirtualConnection) Addr() net.Addr {
	return c.addr
}

// Touch records traffic at t, keeping the connection alive.
func (c *VirtualConnection) Touch(t time.Time) {
	if t.After(c.lastSeen) {
		c.lastSeen = t
	}
}

// LastSeen returns the last time traffic was observed on this connection.
func (c *VirtualConnection) LastSeen() time.Time {
	return c.lastSeen
}

// Idle reports whether this connection has gone silent longer than
// timeout, as of now.
func (c *VirtualConnection) Idle(now time.Time, timeout time.Duration) bool {
	return now.Sub(c.lastSeen) > timeout
}

// SmoothedRTT returns the most recently computed smoothed RTT estimate
// (spec.md §3, §4.5); zero until the first reliable send is acknowledged.
func (c *VirtualConnection) SmoothedRTT() float32 {
	return c.smoothedRTT
}

// Quality classifies the connection's current smoothed RTT.
func (c *VirtualConnection) Quality() Quality {
	return Classify(c.smoothedRTT)
}

// ProcessOutgoing assigns payload the next sequence number, attaches a
// ReliableHeader when delivery requires one, and serializes the result into
// one or more wire-ready datagrams (spec.md §5).
func (c *VirtualConnection) ProcessOutgoing(payload []byte, delivery DeliveryMethod, now time.Time) ([][]byte, error) {
	if !delivery.implemented() {
		return nil, ErrUnimplementedDeliveryMethod
	}
	if len(payload) > c.cfg.MaxPacketSizeBytes() {
		return nil, &PacketError{Kind: ExceededMaxPacketSize}
	}

	seq := c.nextSeq
	c.nextSeq++

	var reliability *ReliableHeader
	if delivery.HasReliability() {
		rh := NewReliableHeader(c.externalAcks.LastAcked(), c.externalAcks.AckField())
		reliability = &rh
		c.localAcks.Enqueue(seq, payload)
		c.congestion.Insert(NewCongestionData(seq, now))
	}

	pp := ProcessedPacket{
		SequenceNum: seq,
		Addr:        c.addr,
		Delivery:    delivery,
		Payload:     payload,
		Reliability: reliability,
	}
	datagrams, err := pp.Fragments(c.cfg.FragmentSizeBytes, c.cfg.MaxFragments)
	if err != nil {
		return nil, err
	}
	if c.mx != nil {
		c.mx.PacketsSent.WithLabelValues(delivery.String()).Inc()
	}
	return datagrams, nil
}

// Incoming is the result of folding one received datagram into a
// connection: at most one completed application packet (one for a plain
// packet; for a fragment, none unless its set just finished reassembling;
// none for heartbeat, disconnect and unknown types), and any outstanding
// reliable sends the peer's ack window no longer accounts for.
type Incoming struct {
	Packets []Packet
	Dropped []Dropped
}

// ProcessIncoming decodes one received datagram, updates ack bookkeeping
// and RTT samples, feeds fragments to the reassembler, and reports any
// newly-completed application packets (spec.md §4, §9).
//
// Wire order after the standard header is FragmentHeader? || ReliableHeader?
// || payload (spec.md §3, §6): the fragment header, when present, always
// comes before the reliable header.
func (c *VirtualConnection) ProcessIncoming(data []byte, now time.Time) (Incoming, error) {
	header, rest, err := ReadStandardHeader(data)
	if err != nil {
		return Incoming{}, err
	}
	if !ValidVersion(header.ProtocolVersion) {
		return Incoming{}, ErrProtocolVersionMismatch
	}
	if !header.DeliveryMethod.implemented() {
		return Incoming{}, ErrUnimplementedDeliveryMethod
	}

	c.Touch(now)
	c.externalAcks.Ack(header.SequenceNum)

	var fragHeader FragmentHeader
	if header.PacketType == PacketTypeFragment {
		fh, remainder, err := ReadFragmentHeader(rest)
		if err != nil {
			return Incoming{}, err
		}
		fragHeader = fh
		rest = remainder
	}

	var dropped []Dropped
	if header.DeliveryMethod.HasReliability() {
		reliable, remainder, err := ReadReliableHeader(rest)
		if err != nil {
			return Incoming{}, err
		}
		rest = remainder

		dropped = c.localAcks.Ack(reliable.LastAcked, reliable.AckField)
		c.observeAcks(reliable.LastAcked, reliable.AckField, now)
	}

	if c.mx != nil {
		c.mx.PacketsReceived.WithLabelValues(header.DeliveryMethod.String()).Inc()
		for range dropped {
			c.mx.PacketsDropped.WithLabelValues(header.DeliveryMethod.String()).Inc()
		}
	}

	switch header.PacketType {
	case PacketTypeHeartBeat, PacketTypeDisconnect, PacketTypeUnknown:
		return Incoming{Dropped: dropped}, nil
	case PacketTypeFragment:
		assembled, complete := c.reassembler.Add(header.SequenceNum, header.DeliveryMethod, fragHeader, rest)
		if !complete {
			return Incoming{Dropped: dropped}, nil
		}
		return Incoming{
			Packets: []Packet{NewPacket(c.addr, assembled, header.DeliveryMethod)},
			Dropped: dropped,
		}, nil
	default:
		return Incoming{
			Packets: []Packet{NewPacket(c.addr, rest, header.DeliveryMethod)},
			Dropped: dropped,
		}, nil
	}
}

// observeAcks samples RTT for every outstanding send the peer's ack window
// just confirmed, using the matching congestion record.
func (c *VirtualConnection) observeAcks(lastAcked uint16, ackField uint32, now time.Time) {
	c.sampleRTT(lastAcked, now)
	for n := uint16(1); n <= AckWindowSize; n++ {
		if ackField&(1<<(n-1)) == 0 {
			continue
		}
		c.sampleRTT(lastAcked-n, now)
	}
}

func (c *VirtualConnection) sampleRTT(seq uint16, now time.Time) {
	data, ok := c.congestion.Get(seq)
	if !ok {
		return
	}
	c.smoothedRTT = c.rtt.RTT(data, now)
	if c.mx != nil {
		c.mx.RTTMilliseconds.Observe(float64(asMilliseconds(now.Sub(data.SendingTime))))
	}
	c.congestion.Remove(seq)
}
