package remote

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_viral._tcp"

// Advertise announces a running board server on the local network so
// clients started without -addr can find it. The caller shuts the
// returned server down on exit.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, []string{"viral board"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Discover browses for a board server and returns the first address
// found, as host:port.
func Discover(timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found, done := collectFirst(entries)

	err := mdns.Query(&mdns.QueryParam{
		Service: serviceType,
		Entries: entries,
		Timeout: timeout,
	})
	// Query has stopped writing once it returns; closing the channel
	// lets the collector finish and guarantees found is settled.
	close(entries)
	<-done
	if err != nil {
		return "", fmt.Errorf("mDNS lookup: %w", err)
	}

	select {
	case addr := <-found:
		return addr, nil
	default:
		return "", fmt.Errorf("no board server found on the local network")
	}
}

// collectFirst keeps the first usable entry off the channel and drains
// the rest. The done channel closes once entries does, so callers can
// join the collector before inspecting found.
func collectFirst(entries <-chan *mdns.ServiceEntry) (found chan string, done chan struct{}) {
	found = make(chan string, 1)
	done = make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			select {
			case found <- fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port):
			default:
			}
		}
	}()
	return found, done
}
