package protocol

import (
	"encoding/binary"
	"fmt"
)

// ReliableHeaderSize is the wire size of ReliableHeader in bytes.
const ReliableHeaderSize = 6

// ReliableHeader carries the sender's view of what it has received from the
// peer, so the peer can detect its own dropped sends.
type ReliableHeader struct {
	LastAcked uint16
	AckField  uint32
}

// NewReliableHeader builds a reliable header from a connection's external
// ack state.
func NewReliableHeader(lastAcked uint16, ackField uint32) ReliableHeader {
	return ReliableHeader{LastAcked: lastAcked, AckField: ackField}
}

// Write appends the encoded header to buf and returns the extended slice.
func (h ReliableHeader) Write(buf []byte) []byte {
	var tmp [ReliableHeaderSize]byte
	binary.BigEndian.PutUint16(tmp[0:2], h.LastAcked)
	binary.BigEndian.PutUint32(tmp[2:6], h.AckField)
	return append(buf, tmp[:]...)
}

// ReadReliableHeader decodes a ReliableHeader from the front of data,
// returning the header and the remaining bytes after it.
func ReadReliableHeader(data []byte) (ReliableHeader, []byte, error) {
	if len(data) < ReliableHeaderSize {
		return ReliableHeader{}, nil, fmt.Errorf("%w: need %d bytes for reliable header, got %d", ErrReceivedDataTooShort, ReliableHeaderSize, len(data))
	}
	h := ReliableHeader{
		LastAcked: binary.BigEndian.Uint16(data[0:2]),
		AckField:  binary.BigEndian.Uint32(data[2:6]),
	}
	return h, data[ReliableHeaderSize:], nil
}
