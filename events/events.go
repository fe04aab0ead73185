// Package events defines the outward-facing notifications a Socket
// publishes to its caller, adapted from the teacher's EventManager
// (core/events/events.go) down to the two event kinds this transport
// actually emits.
package events

import "net"

// Kind identifies which variant a SocketEvent carries.
type Kind int

const (
	// KindPacket carries a fully received (and, if fragmented,
	// reassembled) application payload.
	KindPacket Kind = iota
	// KindTimeOut reports that a virtual connection went idle past its
	// configured timeout and was torn down.
	KindTimeOut
	// KindConnected is reserved: the core infers connections from
	// traffic and never emits an explicit handshake event today.
	KindConnected
	// KindDisconnected is reserved: the core never emits an explicit
	// teardown notification beyond KindTimeOut today.
	KindDisconnected
)

func (k Kind) String() string {
	switch k {
	case KindPacket:
		return "Packet"
	case KindTimeOut:
		return "TimeOut"
	case KindConnected:
		return "Connected"
	case KindDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// SocketEvent is the sum type a Socket publishes on its event channel.
type SocketEvent struct {
	Kind    Kind
	Addr    net.Addr
	Payload []byte
}

// NewPacketEvent wraps a delivered payload from addr.
func NewPacketEvent(addr net.Addr, payload []byte) SocketEvent {
	return SocketEvent{Kind: KindPacket, Addr: addr, Payload: payload}
}

// NewTimeOutEvent reports that addr's connection has been torn down for
// inactivity.
func NewTimeOutEvent(addr net.Addr) SocketEvent {
	return SocketEvent{Kind: KindTimeOut, Addr: addr}
}
