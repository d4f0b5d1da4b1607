//go:build !linux

package server

import "net"

// Relies on the socket's file mode; peer credentials are not inspected.
func checkPeer(conn *net.UnixConn) error {
	return nil
}
