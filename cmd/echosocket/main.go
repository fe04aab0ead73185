// Command echosocket binds a socket, logs every packet and timeout it
// observes, and echoes each payload back to its sender. It mirrors the
// bind/start-polling/receive-loop shape of the upstream example this
// package is modeled after, and the graceful-shutdown handling from the
// teacher's core/main.go.
package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/ventosilenzioso/rudp/config"
	"github.com/ventosilenzioso/rudp/events"
	"github.com/ventosilenzioso/rudp/internal/logging"
	"github.com/ventosilenzioso/rudp/internal/metrics"
	"github.com/ventosilenzioso/rudp/protocol"
	"github.com/ventosilenzioso/rudp/socket"
)

const listenAddr = "127.0.0.1:12345"

func main() {
	cfg := config.NewSocketConfig()
	mx := metrics.NewUnregistered()

	sock, err := socket.Bind(listenAddr, cfg, mx)
	if err != nil {
		logging.Error("failed to bind socket", logging.Fields{"addr": listenAddr, "error": err.Error()})
		os.Exit(1)
	}
	sock.Start()
	logging.Info("listening", logging.Fields{"addr": sock.LocalAddr().String()})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		for ev := range sock.Events() {
			handleEvent(sock, ev)
		}
	}()

	<-sigCh
	logging.Info("shutting down", logging.Fields{})
	if err := sock.Close(); err != nil {
		logging.Warn("error closing socket", logging.Fields{"error": err.Error()})
	}
}

func handleEvent(sock *socket.Socket, ev events.SocketEvent) {
	switch ev.Kind {
	case events.KindPacket:
		logging.Info("packet received", logging.Fields{"peer": ev.Addr.String(), "bytes": len(ev.Payload)})
		if err := sock.SendTo(ev.Addr, ev.Payload, protocol.UnreliableUnordered); err != nil {
			logging.Warn("echo send failed", logging.Fields{"peer": ev.Addr.String(), "error": err.Error()})
		}
	case events.KindTimeOut:
		logging.Warn("client timed out", logging.Fields{"peer": addrString(ev.Addr)})
	}
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
