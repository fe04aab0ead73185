package protocol

import (
	"net"
	"sync"
	"time"

	"github.com/ventosilenzioso/rudp/config"
	"github.com/ventosilenzioso/rudp/internal/metrics"
)

// ActiveConnections is the socket's table of virtual connections, keyed by
// the peer's address string. There is no handshake: a connection is
// created the first time traffic to or from a new peer is observed and torn
// down on idle timeout.
type ActiveConnections struct {
	mu    sync.Mutex
	byKey map[string]*VirtualConnection
	mx    *metrics.Metrics
}

// NewActiveConnections builds an empty registry reporting gauge updates to
// mx, which may be nil.
func NewActiveConnections(mx *metrics.Metrics) *ActiveConnections {
	return &ActiveConnections{byKey: make(map[string]*VirtualConnection), mx: mx}
}

// GetOrInsert returns the existing connection for addr, creating one with
// cfg if this is the first traffic seen from it.
func (a *ActiveConnections) GetOrInsert(addr net.Addr, cfg config.SocketConfig, now time.Time) *VirtualConnection {
	key := addr.String()

	a.mu.Lock()
	defer a.mu.Unlock()

	if conn, ok := a.byKey[key]; ok {
		return conn
	}
	conn := NewVirtualConnection(addr, cfg, a.mx, now)
	a.byKey[key] = conn
	if a.mx != nil {
		a.mx.ActiveConnections.Inc()
	}
	return conn
}

// Remove drops the connection for addr, if any.
func (a *ActiveConnections) Remove(addr net.Addr) {
	key := addr.String()

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.byKey[key]; !ok {
		return
	}
	delete(a.byKey, key)
	if a.mx != nil {
		a.mx.ActiveConnections.Dec()
	}
}

// Len reports how many connections are currently tracked.
func (a *ActiveConnections) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.byKey)
}

// Idle returns every connection that has gone silent past timeout as of
// now, without removing them — the caller decides whether and how to tear
// each one down.
func (a *ActiveConnections) Idle(now time.Time, timeout time.Duration) []*VirtualConnection {
	a.mu.Lock()
	defer a.mu.Unlock()

	var idle []*VirtualConnection
	for _, conn := range a.byKey {
		if conn.Idle(now, timeout) {
			idle = append(idle, conn)
		}
	}
	return idle
}
