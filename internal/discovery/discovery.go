// Package discovery advertises the preview server on the local network over
// mDNS and finds other running instances.
package discovery

import (
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD service name of the preview server.
const ServiceType = "_mirrorpaint._tcp"

// DefaultBrowseTimeout is how long Browse listens for answers.
const DefaultBrowseTimeout = 2 * time.Second

// Peer is one instance found on the network.
type Peer struct {
	Instance string
	Host     string
	Addr     string
	Port     int
	Info     []string
}

// URL returns the HTTP base URL of the peer.
func (p Peer) URL() string {
	return "http://" + net.JoinHostPort(p.Addr, strconv.Itoa(p.Port))
}

// Advertise announces the HTTP server on port. Shut the returned server down
// to withdraw the announcement.
func Advertise(port int, info []string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("create mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("start mdns server: %w", err)
	}
	return server, nil
}

// Browse listens for instances for timeout and returns them sorted by
// instance name. Entries without an IPv4 address or port are skipped.
func Browse(timeout time.Duration) ([]Peer, error) {
	if timeout <= 0 {
		timeout = DefaultBrowseTimeout
	}

	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(map[string]Peer)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for e := range entries {
			if p, ok := entryPeer(e); ok {
				found[p.Instance] = p
			}
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	err := mdns.Query(params)
	close(entries)
	<-collected
	if err != nil {
		return nil, fmt.Errorf("mdns query: %w", err)
	}

	peers := make([]Peer, 0, len(found))
	for _, p := range found {
		peers = append(peers, p)
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].Instance < peers[j].Instance })
	return peers, nil
}

func entryPeer(e *mdns.ServiceEntry) (Peer, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Peer{}, false
	}
	// Name is "<instance>.<service>.<domain>."
	instance := e.Name
	if i := strings.Index(instance, "."+ServiceType); i > 0 {
		instance = instance[:i]
	}
	return Peer{
		Instance: instance,
		Host:     strings.TrimSuffix(e.Host, "."),
		Addr:     e.AddrV4.String(),
		Port:     e.Port,
		Info:     e.InfoFields,
	}, true
}
