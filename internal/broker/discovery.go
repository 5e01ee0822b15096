package broker

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"

	"github.com/grandcat/zeroconf"
)

const (
	mdnsServiceType = "_pubsub._tcp"
	mdnsDomain      = "local."
)

// Discovery advertises a running broker over mDNS so LAN clients can
// find it without a hardcoded port.
type Discovery struct {
	server *zeroconf.Server
	logger *slog.Logger
}

// Advertise registers an mDNS service for the broker listening on
// addr. The caller must call Shutdown when the broker stops.
func Advertise(addr net.Addr, logger *slog.Logger) (*Discovery, error) {
	port := tcpPort(addr)
	if port == 0 {
		return nil, fmt.Errorf("discovery: cannot determine TCP port from %v", addr)
	}

	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "pubsub-broker"
	}

	instance := sanitizeInstance(fmt.Sprintf("Pub/Sub Broker (%s)", hostname))
	txt := []string{
		fmt.Sprintf("port=%d", port),
		"proto=v1",
	}

	server, err := zeroconf.Register(instance, mdnsServiceType, mdnsDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: register: %w", err)
	}

	logger.Info("mDNS advertisement started", "instance", instance, "port", port)
	return &Discovery{server: server, logger: logger}, nil
}

// Shutdown withdraws the mDNS advertisement.
func (d *Discovery) Shutdown() {
	if d == nil || d.server == nil {
		return
	}
	d.server.Shutdown()
	d.logger.Info("mDNS advertisement stopped")
}

func tcpPort(addr net.Addr) int {
	if addr == nil {
		return 0
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

func sanitizeInstance(name string) string {
	cleaned := strings.TrimSpace(name)
	cleaned = strings.ReplaceAll(cleaned, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	if cleaned == "" {
		cleaned = "Pub/Sub Broker"
	}
	runes := []rune(cleaned)
	const maxLen = 63
	if len(runes) > maxLen {
		cleaned = string(runes[:maxLen])
	}
	return cleaned
}
