package remote

import (
	"net"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
)

func TestCollectFirstJoinsOnClose(t *testing.T) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found, done := collectFirst(entries)

	entries <- &mdns.ServiceEntry{Port: 0} // unusable, skipped
	entries <- &mdns.ServiceEntry{AddrV4: net.IPv4(192, 168, 1, 7), Port: 8787}
	entries <- &mdns.ServiceEntry{AddrV4: net.IPv4(10, 0, 0, 2), Port: 9999} // late duplicate, dropped
	close(entries)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not terminate after entries closed")
	}

	select {
	case addr := <-found:
		if addr != "192.168.1.7:8787" {
			t.Errorf("addr = %q, want first usable entry", addr)
		}
	default:
		t.Fatal("no address collected")
	}
}

func TestCollectFirstEmpty(t *testing.T) {
	entries := make(chan *mdns.ServiceEntry)
	found, done := collectFirst(entries)
	close(entries)
	<-done

	select {
	case addr := <-found:
		t.Fatalf("collected %q from an empty query", addr)
	default:
	}
}
