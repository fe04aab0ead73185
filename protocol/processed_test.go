package protocol

import (
	"bytes"
	"errors"
	"net"
	"testing"
)

func testAddr() net.Addr {
	return &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 20000}
}

func TestProcessedPacketSingleDatagram(t *testing.T) {
	pp := ProcessedPacket{
		SequenceNum: 1,
		Addr:        testAddr(),
		Delivery:    UnreliableUnordered,
		Payload:     []byte("hello"),
	}

	datagrams, err := pp.Fragments(1450, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(datagrams) != 1 {
		t.Fatalf("expected 1 datagram, got %d", len(datagrams))
	}

	header, rest, err := ReadStandardHeader(datagrams[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if header.PacketType != PacketTypePacket {
		t.Errorf("expected PacketTypePacket, got %v", header.PacketType)
	}
	if !bytes.Equal(rest, pp.Payload) {
		t.Errorf("expected payload %q, got %q", pp.Payload, rest)
	}
}

func TestProcessedPacketSplitsAcrossFragments(t *testing.T) {
	payload := []byte("0123456789AB") // 12 bytes
	pp := ProcessedPacket{
		SequenceNum: 9,
		Addr:        testAddr(),
		Delivery:    ReliableUnordered,
		Payload:     payload,
		Reliability: &ReliableHeader{LastAcked: 3, AckField: 0x1},
	}

	datagrams, err := pp.Fragments(5, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(datagrams) != 3 {
		t.Fatalf("expected 3 fragments for a 12-byte payload at fragment size 5, got %d", len(datagrams))
	}

	var reassembled []byte
	for i, dg := range datagrams {
		std, rest, err := ReadStandardHeader(dg)
		if err != nil {
			t.Fatalf("fragment %d: unexpected error: %v", i, err)
		}
		if std.PacketType != PacketTypeFragment {
			t.Fatalf("fragment %d: expected PacketTypeFragment, got %v", i, std.PacketType)
		}
		if std.SequenceNum != pp.SequenceNum {
			t.Fatalf("fragment %d: expected sequence %d, got %d", i, pp.SequenceNum, std.SequenceNum)
		}

		frag, rest, err := ReadFragmentHeader(rest)
		if err != nil {
			t.Fatalf("fragment %d: unexpected error: %v", i, err)
		}
		if int(frag.ID) != i {
			t.Fatalf("fragment %d: expected id %d, got %d", i, i, frag.ID)
		}
		if frag.NumFragments != 3 {
			t.Fatalf("fragment %d: expected num_fragments 3, got %d", i, frag.NumFragments)
		}

		reliable, rest, err := ReadReliableHeader(rest)
		if err != nil {
			t.Fatalf("fragment %d: unexpected error: %v", i, err)
		}
		if reliable != *pp.Reliability {
			t.Fatalf("fragment %d: expected reliable header %+v, got %+v", i, *pp.Reliability, reliable)
		}

		reassembled = append(reassembled, rest...)
	}

	if !bytes.Equal(reassembled, payload) {
		t.Errorf("expected reassembled payload %q, got %q", payload, reassembled)
	}

	expectedSizes := []int{5, 5, 2}
	for i, dg := range datagrams {
		chunkSize := len(dg) - StandardHeaderSize - FragmentHeaderSize - ReliableHeaderSize
		if chunkSize != expectedSizes[i] {
			t.Errorf("fragment %d: expected chunk size %d, got %d", i, expectedSizes[i], chunkSize)
		}
	}
}

func TestProcessedPacketExceedsMaxFragments(t *testing.T) {
	pp := ProcessedPacket{
		SequenceNum: 1,
		Addr:        testAddr(),
		Delivery:    ReliableUnordered,
		Payload:     make([]byte, 4000),
	}

	_, err := pp.Fragments(1450, 2)
	var packetErr *PacketError
	if !errors.As(err, &packetErr) || packetErr.Kind != ExceededMaxFragments {
		t.Errorf("expected ExceededMaxFragments, got %v", err)
	}
}

func TestFragmentCountBoundary(t *testing.T) {
	cases := []struct {
		payloadLen   int
		fragmentSize int
		want         int
	}{
		{0, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{12, 5, 3},
		{1450, 1450, 1},
		{1451, 1450, 2},
	}
	for _, c := range cases {
		if got := fragmentCount(c.payloadLen, c.fragmentSize); got != c.want {
			t.Errorf("fragmentCount(%d, %d) = %d, want %d", c.payloadLen, c.fragmentSize, got, c.want)
		}
	}
}
