package model

import (
	"context"
	"net"
)

// SecurityLayer opens the listener a Server accepts connections on.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a long running network server of the process.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
