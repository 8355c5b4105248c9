package remote

import (
	"net"
	"strconv"
)

// ShareAddress returns the host:port other machines on the LAN should
// use to reach a server listening on the given port. The host is the
// preferred outgoing interface address, falling back to the first
// non-loopback IPv4 on networks with no default route.
func ShareAddress(port int) string {
	return net.JoinHostPort(lanIP().String(), strconv.Itoa(port))
}

func lanIP() net.IP {
	if conn, err := net.Dial("udp", "8.8.8.8:80"); err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
			return addr.IP
		}
	}
	addrs, err := net.InterfaceAddrs()
	if err == nil {
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	return net.IPv4(127, 0, 0, 1)
}
