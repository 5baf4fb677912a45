// Package discovery finds fcserver instances on the local network via
// mDNS.
//
// fcserver itself does not announce; installations that want zero-conf
// clients run an announcer alongside it (or an fcserver build patched
// to register the service). Discovery is therefore strictly optional:
// the client package takes a plain address and never depends on this
// package.
package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// mDNS constants.
const (
	// ServiceType is the announced service type for fcserver instances.
	ServiceType = "_fcserver._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultBrowseTimeout bounds FindFirst when the caller's context
	// has no deadline.
	DefaultBrowseTimeout = 10 * time.Second
)

// Server is one discovered fcserver instance.
type Server struct {
	// Instance is the mDNS instance name.
	Instance string

	// Host is the announced hostname.
	Host string

	// Port is the announced OPC/WebSocket port.
	Port int

	// Addresses are the resolved IP addresses, IPv4 first.
	Addresses []string
}

// Addr returns a dialable "host:port" using the first resolved
// address, falling back to the announced hostname.
func (s *Server) Addr() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(host, fmt.Sprintf("%d", s.Port))
}

// BrowserConfig configures browsing behavior.
type BrowserConfig struct {
	// BrowseTimeout bounds FindFirst. Default: DefaultBrowseTimeout.
	BrowseTimeout time.Duration

	// Interface restricts browsing to one network interface.
	// Empty string means all interfaces.
	Interface string
}

// Browser browses for fcserver instances.
type Browser struct {
	config BrowserConfig
}

// NewBrowser creates a browser.
func NewBrowser(config BrowserConfig) *Browser {
	if config.BrowseTimeout == 0 {
		config.BrowseTimeout = DefaultBrowseTimeout
	}
	return &Browser{config: config}
}

// Browse emits discovered servers until the context is cancelled.
// Instances announced on multiple interfaces are emitted once, with
// their addresses merged.
func (b *Browser) Browse(ctx context.Context) (<-chan *Server, error) {
	out := make(chan *Server)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	go func() {
		defer close(out)

		seen := make(map[string]*Server)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				srv := entryToServer(entry)
				if srv == nil {
					continue
				}
				if existing, found := seen[srv.Instance]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, srv.Addresses)
					continue
				}
				seen[srv.Instance] = srv
				select {
				case out <- srv:
				case <-ctx.Done():
					return
				}

			case <-removed:
				// Server gone; nothing to revoke for a one-shot browse

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindFirst returns the first discovered server, or an error when the
// context or the browse timeout expires first.
func (b *Browser) FindFirst(ctx context.Context) (*Server, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.BrowseTimeout)
		defer cancel()
	}

	servers, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	select {
	case srv, ok := <-servers:
		if !ok {
			return nil, fmt.Errorf("no fcserver instance found")
		}
		return srv, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *Browser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		if iface, err := net.InterfaceByName(b.config.Interface); err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

// entryToServer converts a zeroconf entry, collecting IPv4 addresses
// before IPv6.
func entryToServer(entry *zeroconf.ServiceEntry) *Server {
	if entry.Port == 0 {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &Server{
		Instance:  entry.Instance,
		Host:      entry.HostName,
		Port:      entry.Port,
		Addresses: addrs,
	}
}

// mergeAddresses appends addresses from b not already present in a.
func mergeAddresses(a, b []string) []string {
	present := make(map[string]bool, len(a))
	for _, addr := range a {
		present[addr] = true
	}
	for _, addr := range b {
		if !present[addr] {
			a = append(a, addr)
		}
	}
	return a
}
