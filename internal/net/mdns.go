package net

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_colorbook._tcp"

// Peer is a bridge found on the local network.
type Peer struct {
	Name string
	Addr string
}

// URL returns the peer's WebSocket endpoint.
func (p Peer) URL() string { return "ws://" + p.Addr + "/ws" }

// Advertise announces a bridge listening on port. Shut the returned server
// down to withdraw the announcement.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	info := []string{"colorbook", "path=/ws"}
	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse queries for bridges for up to timeout and reports each one that
// has an IPv4 address. It returns early if ctx is done.
func Browse(ctx context.Context, timeout time.Duration, found func(Peer)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			found(Peer{
				Name: strings.TrimSuffix(e.Name, "."+serviceType+".local."),
				Addr: fmt.Sprintf("%s:%d", e.AddrV4, e.Port),
			})
		}
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done
	return err
}
