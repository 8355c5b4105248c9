package remote

import (
	"net"
	"strconv"
	"testing"
)

func TestShareAddress(t *testing.T) {
	addr := ShareAddress(8787)
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("ShareAddress returned unparseable address %q: %v", addr, err)
	}
	if port, err := strconv.Atoi(portStr); err != nil || port != 8787 {
		t.Fatalf("got port %q, want 8787", portStr)
	}
	if net.ParseIP(host) == nil {
		t.Fatalf("host %q is not an IP", host)
	}
}

func TestLanIPNeverNil(t *testing.T) {
	if ip := lanIP(); ip == nil {
		t.Fatal("lanIP returned nil")
	}
}
