package model

import (
	"context"
	"net"
)

// SecurityLayer opens the listener a server accepts on, plain TCP or TLS.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is implemented by the public HTTP API and the gRPC ops listener.
// Start and Serve return nil after a Stop.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Serve(listener net.Listener) error
	Stop(ctx context.Context) error
	Address() string
}
