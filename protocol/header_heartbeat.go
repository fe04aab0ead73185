package protocol

// HeartBeatHeaderSize is the wire size of HeartBeatHeader in bytes.
const HeartBeatHeaderSize = StandardHeaderSize

// HeartBeatHeader is a reserved packet shape: it keeps a connection's
// last-seen time fresh without carrying a payload. The core never emits it
// (spec.md §9), but the shape is kept encodable for a future sender.
type HeartBeatHeader struct {
	ProtocolVersion uint32
}

// NewHeartBeatHeader builds a heartbeat header stamped with the local
// protocol version.
func NewHeartBeatHeader() HeartBeatHeader {
	return HeartBeatHeader{ProtocolVersion: VersionCRC32()}
}

// Write appends the encoded header to buf and returns the extended slice.
func (h HeartBeatHeader) Write(buf []byte) []byte {
	std := StandardHeader{
		ProtocolVersion: h.ProtocolVersion,
		PacketType:      PacketTypeHeartBeat,
		DeliveryMethod:  UnreliableUnordered,
		SequenceNum:     0,
	}
	return std.Write(buf)
}

// ReadHeartBeatHeader decodes a HeartBeatHeader from the front of data.
func ReadHeartBeatHeader(data []byte) (HeartBeatHeader, []byte, error) {
	std, rest, err := ReadStandardHeader(data)
	if err != nil {
		return HeartBeatHeader{}, nil, err
	}
	return HeartBeatHeader{ProtocolVersion: std.ProtocolVersion}, rest, nil
}
