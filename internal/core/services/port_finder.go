package services

import (
	"fmt"
	"net"
)

// FindAvailablePort finds an available port in the given range.
// Providers require exact redirect URI matches, so the callback port is
// chosen from the range registered with the OAuth app rather than letting
// the OS pick an ephemeral one.
func FindAvailablePort(startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", startPort, endPort)
}
