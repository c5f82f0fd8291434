// Package transport wraps a raw connection with the IRC wire codec,
// PING/PONG keepalive, and an outbound send queue, presenting an inbound
// frame channel and a Send method to the session layer above it.
package transport

import (
	"crypto/tls"
	"net"
	"time"
)

// Socket is the boundary between a session and its underlying connection.
// Both plain TCP and TLS connections satisfy it, and a test fake can too.
type Socket interface {
	net.Conn

	// PeerAddr returns the remote address as a string suitable for logging
	// and for the reverse-DNS boundary, without requiring callers to type
	// assert into net.TCPAddr.
	PeerAddr() string
}

type socket struct {
	net.Conn
}

func (s socket) PeerAddr() string {
	return s.Conn.RemoteAddr().String()
}

// Plain wraps an already-accepted net.Conn (e.g. from net.Listener.Accept)
// as a Socket.
func Plain(conn net.Conn) Socket {
	return socket{Conn: conn}
}

// TLSListen opens a listener on address whose Accept returns
// TLS-terminated net.Conns, using the certificates in config. Each accepted
// connection becomes a Socket through Plain, like a plain TCP one.
func TLSListen(network, address string, config *tls.Config) (net.Listener, error) {
	return tls.Listen(network, address, config)
}

// DialTimeout is a thin helper retained for tests that need a real Socket
// without standing up a listener.
func DialTimeout(network, address string, timeout time.Duration) (Socket, error) {
	conn, err := net.DialTimeout(network, address, timeout)
	if err != nil {
		return nil, err
	}
	return Plain(conn), nil
}
