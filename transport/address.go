package transport

import (
	"fmt"
	"net"
	"strconv"
)

// UnresolvedAddress is a provider host/port pair. It is a plain value and is
// never DNS-resolved by the consumer; resolution happens inside the connector
// when a connection is first dialed.
type UnresolvedAddress struct {
	Host string
	Port int
}

// NewAddress creates an UnresolvedAddress from host and port.
func NewAddress(host string, port int) UnresolvedAddress {
	return UnresolvedAddress{Host: host, Port: port}
}

// String returns the address in host:port form.
func (a UnresolvedAddress) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// IsZero reports whether the address is the zero value.
func (a UnresolvedAddress) IsZero() bool {
	return a.Host == "" && a.Port == 0
}

// ParseAddress parses a "host:port" string into an UnresolvedAddress.
func ParseAddress(s string) (UnresolvedAddress, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return UnresolvedAddress{}, fmt.Errorf("parse address %q: %w", s, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return UnresolvedAddress{}, fmt.Errorf("parse address %q: invalid port %q", s, portStr)
	}
	return UnresolvedAddress{Host: host, Port: port}, nil
}
