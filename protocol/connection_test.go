package protocol

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/ventosilenzioso/rudp/config"
)

func newTestConnection(t *testing.T) *VirtualConnection {
	t.Helper()
	cfg := config.NewSocketConfig()
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 20000}
	return NewVirtualConnection(addr, cfg, nil, time.Now())
}

func TestConnectionUnreliableRoundTrip(t *testing.T) {
	sender := newTestConnection(t)
	receiver := newTestConnection(t)
	now := time.Now()

	datagrams, err := sender.ProcessOutgoing([]byte("ping"), UnreliableUnordered, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(datagrams) != 1 {
		t.Fatalf("expected 1 datagram, got %d", len(datagrams))
	}

	incoming, err := receiver.ProcessIncoming(datagrams[0], now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(incoming.Packets) != 1 || string(incoming.Packets[0].Payload()) != "ping" {
		t.Fatalf("expected to receive %q, got %+v", "ping", incoming.Packets)
	}
}

func TestConnectionReliableFragmentedRoundTrip(t *testing.T) {
	sender := newTestConnection(t)
	receiver := newTestConnection(t)
	now := time.Now()

	payload := make([]byte, 4000)
	for i := range payload {
		payload[i] = byte(i)
	}

	datagrams, err := sender.ProcessOutgoing(payload, ReliableUnordered, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(datagrams) != 3 {
		t.Fatalf("expected 3 fragments for a 4000-byte reliable send at the default fragment size, got %d", len(datagrams))
	}

	var completed []Packet
	for _, dg := range datagrams {
		incoming, err := receiver.ProcessIncoming(dg, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		completed = append(completed, incoming.Packets...)
	}

	if len(completed) != 1 {
		t.Fatalf("expected exactly 1 reassembled packet, got %d", len(completed))
	}
	if len(completed[0].Payload()) != len(payload) {
		t.Fatalf("expected reassembled payload of %d bytes, got %d", len(payload), len(completed[0].Payload()))
	}
	for i, b := range completed[0].Payload() {
		if b != payload[i] {
			t.Fatalf("byte %d mismatch: expected %d, got %d", i, payload[i], b)
		}
	}
}

func TestConnectionReportsDroppedReliableSends(t *testing.T) {
	sender := newTestConnection(t)
	receiver := newTestConnection(t)
	now := time.Now()

	var sent [][]byte
	for i := 0; i < 3; i++ {
		dgs, err := sender.ProcessOutgoing([]byte{byte(i)}, ReliableUnordered, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sent = append(sent, dgs[0])
	}

	// Receiver only ever sees sequence 2 (the earlier sends, 0 and 1, are lost).
	if _, err := receiver.ProcessIncoming(sent[2], now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Bounce an ack from the receiver back to the sender: it carries the
	// receiver's external-ack state, which the sender folds in as a local
	// ack update for its own outstanding reliable sends.
	ackDatagrams, err := receiver.ProcessOutgoing([]byte("ack-carrier"), ReliableUnordered, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	incoming, err := sender.ProcessIncoming(ackDatagrams[0], now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(incoming.Dropped) == 0 {
		t.Fatal("expected at least one dropped sequence to be reported")
	}
}

func TestConnectionProcessOutgoingRejectsOversizedPayload(t *testing.T) {
	c := newTestConnection(t)

	_, err := c.ProcessOutgoing(make([]byte, 30000), ReliableUnordered, time.Now())
	var packetErr *PacketError
	if !errors.As(err, &packetErr) || packetErr.Kind != ExceededMaxPacketSize {
		t.Errorf("expected ExceededMaxPacketSize, got %v", err)
	}
}

func TestConnectionRejectsUnimplementedDeliveryMethod(t *testing.T) {
	c := newTestConnection(t)
	_, err := c.ProcessOutgoing([]byte("x"), ReliableOrdered, time.Now())
	if err != ErrUnimplementedDeliveryMethod {
		t.Errorf("expected ErrUnimplementedDeliveryMethod, got %v", err)
	}
}

func TestConnectionIdle(t *testing.T) {
	c := newTestConnection(t)
	now := time.Now()

	if c.Idle(now, 5*time.Second) {
		t.Error("freshly created connection should not be idle")
	}
	if !c.Idle(now.Add(6*time.Second), 5*time.Second) {
		t.Error("expected connection to be idle after exceeding the timeout")
	}

	c.Touch(now.Add(6 * time.Second))
	if c.Idle(now.Add(7*time.Second), 5*time.Second) {
		t.Error("expected Touch to reset the idle clock")
	}
}
