// Package config holds the tunables for a socket and its virtual
// connections: fragmentation limits, idle timeout, buffer sizing and RTT
// smoothing. Mirrors the teacher's preference for a single options struct
// with sane defaults over scattered constants (source/server/server.go).
package config

import "time"

const (
	// DefaultFragmentSizeBytes is the payload chunk size used when a
	// packet must be split across datagrams.
	DefaultFragmentSizeBytes = 1450
	// DefaultMaxFragments caps how many fragments a single packet may be
	// split into; together with the fragment size it sets
	// MaxPacketSizeBytes, so a payload that would need more fragments is
	// rejected at submission with ExceededMaxPacketSize.
	DefaultMaxFragments = 16
	// DefaultIdleConnectionTimeout is how long a virtual connection may go
	// without traffic before it is torn down and a TimeOut event fires.
	DefaultIdleConnectionTimeout = 5 * time.Second
	// DefaultReceiveBufferSizeBytes sizes the UDP read buffer.
	DefaultReceiveBufferSizeBytes = 1500
	// DefaultSocketEventBufferSize sizes the channel the event loop
	// publishes SocketEvents and delivered Packets on.
	DefaultSocketEventBufferSize = 1024
	// DefaultSocketPollingTimeout bounds how long one iteration of the
	// event loop blocks on ReadFromUDP before running its idle sweep.
	DefaultSocketPollingTimeout = 100 * time.Millisecond
	// DefaultRTTMaxValueMs is the RTT, in milliseconds, above which a
	// connection's smoothed RTT is classified Bad.
	DefaultRTTMaxValueMs = 250
	// DefaultRTTSmoothingFactor scales how much a single sample moves the
	// smoothed RTT estimate.
	DefaultRTTSmoothingFactor float32 = 0.10
)

// SocketConfig configures a Socket and the virtual connections it owns.
type SocketConfig struct {
	FragmentSizeBytes      uint16
	MaxFragments           uint8
	IdleConnectionTimeout  time.Duration
	ReceiveBufferSizeBytes int
	SocketEventBufferSize  int
	SocketPollingTimeout   time.Duration
	RTTMaxValueMs          int64
	RTTSmoothingFactor     float32
}

// Option mutates a SocketConfig during construction.
type Option func(*SocketConfig)

// DefaultSocketConfig returns the configuration the teacher's server uses
// out of the box, before any Option overrides it.
func DefaultSocketConfig() SocketConfig {
	return SocketConfig{
		FragmentSizeBytes:      DefaultFragmentSizeBytes,
		MaxFragments:           DefaultMaxFragments,
		IdleConnectionTimeout:  DefaultIdleConnectionTimeout,
		ReceiveBufferSizeBytes: DefaultReceiveBufferSizeBytes,
		SocketEventBufferSize:  DefaultSocketEventBufferSize,
		SocketPollingTimeout:   DefaultSocketPollingTimeout,
		RTTMaxValueMs:          DefaultRTTMaxValueMs,
		RTTSmoothingFactor:     DefaultRTTSmoothingFactor,
	}
}

// NewSocketConfig builds a SocketConfig from the defaults, applying opts in
// order.
func NewSocketConfig(opts ...Option) SocketConfig {
	cfg := DefaultSocketConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithFragmentSize overrides the per-fragment payload size.
func WithFragmentSize(bytes uint16) Option {
	return func(c *SocketConfig) { c.FragmentSizeBytes = bytes }
}

// WithMaxFragments overrides the max fragment count per packet.
func WithMaxFragments(n uint8) Option {
	return func(c *SocketConfig) { c.MaxFragments = n }
}

// WithIdleConnectionTimeout overrides how long a connection may sit idle.
func WithIdleConnectionTimeout(d time.Duration) Option {
	return func(c *SocketConfig) { c.IdleConnectionTimeout = d }
}

// WithReceiveBufferSize overrides the UDP read buffer size.
func WithReceiveBufferSize(bytes int) Option {
	return func(c *SocketConfig) { c.ReceiveBufferSizeBytes = bytes }
}

// WithSocketEventBufferSize overrides the event channel's buffer size.
func WithSocketEventBufferSize(n int) Option {
	return func(c *SocketConfig) { c.SocketEventBufferSize = n }
}

// WithSocketPollingTimeout overrides the event loop's read deadline.
func WithSocketPollingTimeout(d time.Duration) Option {
	return func(c *SocketConfig) { c.SocketPollingTimeout = d }
}

// WithRTTMeasurement overrides the RTT max value and smoothing factor used
// to classify connection quality.
func WithRTTMeasurement(maxValueMs int64, smoothingFactor float32) Option {
	return func(c *SocketConfig) {
		c.RTTMaxValueMs = maxValueMs
		c.RTTSmoothingFactor = smoothingFactor
	}
}

// MaxPacketSizeBytes is the largest payload this config will ever
// serialize, derived from the fragment size and fragment count ceiling.
func (c SocketConfig) MaxPacketSizeBytes() int {
	return int(c.FragmentSizeBytes) * int(c.MaxFragments)
}
