package protocol

import (
	"encoding/binary"
	"fmt"
)

// StandardHeaderSize is the wire size of StandardHeader in bytes.
const StandardHeaderSize = 8

// StandardHeader is prepended to every datagram: protocol CRC32, packet
// type, delivery method and sequence number, all big-endian.
type StandardHeader struct {
	ProtocolVersion uint32
	PacketType      PacketType
	DeliveryMethod  DeliveryMethod
	SequenceNum     uint16
}

// NewStandardHeader builds a header stamped with the local protocol version.
func NewStandardHeader(packetType PacketType, delivery DeliveryMethod, seq uint16) StandardHeader {
	return StandardHeader{
		ProtocolVersion: VersionCRC32(),
		PacketType:      packetType,
		DeliveryMethod:  delivery,
		SequenceNum:     seq,
	}
}

// Write appends the encoded header to buf and returns the extended slice.
func (h StandardHeader) Write(buf []byte) []byte {
	var tmp [StandardHeaderSize]byte
	binary.BigEndian.PutUint32(tmp[0:4], h.ProtocolVersion)
	tmp[4] = byte(h.PacketType)
	tmp[5] = byte(h.DeliveryMethod)
	binary.BigEndian.PutUint16(tmp[6:8], h.SequenceNum)
	return append(buf, tmp[:]...)
}

// ReadStandardHeader decodes a StandardHeader from the front of data,
// returning the header and the remaining bytes after it.
func ReadStandardHeader(data []byte) (StandardHeader, []byte, error) {
	if len(data) < StandardHeaderSize {
		return StandardHeader{}, nil, fmt.Errorf("%w: need %d bytes for standard header, got %d", ErrReceivedDataTooShort, StandardHeaderSize, len(data))
	}
	h := StandardHeader{
		ProtocolVersion: binary.BigEndian.Uint32(data[0:4]),
		PacketType:      packetTypeFromByte(data[4]),
		DeliveryMethod:  deliveryMethodFromByte(data[5]),
		SequenceNum:     binary.BigEndian.Uint16(data[6:8]),
	}
	return h, data[StandardHeaderSize:], nil
}
