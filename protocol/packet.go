package protocol

import "net"

// Packet is the user-facing unit of data: a peer address, an opaque
// payload, and the delivery method it was sent or received under. It is
// immutable once created.
type Packet struct {
	addr     net.Addr
	payload  []byte
	delivery DeliveryMethod
}

// NewPacket builds a Packet for submission or delivery.
func NewPacket(addr net.Addr, payload []byte, delivery DeliveryMethod) Packet {
	return Packet{addr: addr, payload: payload, delivery: delivery}
}

// Addr is the peer this packet was sent to or received from.
func (p Packet) Addr() net.Addr {
	return p.addr
}

// Payload is the packet's raw data.
func (p Packet) Payload() []byte {
	return p.payload
}

// Delivery is the delivery method this packet was sent or received under.
func (p Packet) Delivery() DeliveryMethod {
	return p.delivery
}
