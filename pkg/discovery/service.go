package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	DefaultServerType = "_stage-catalog._tcp"
	DefaultDomain     = "local"
)

var ErrNotFound = errors.New("no catalog store found on the local network")

type ServiceInfo struct {
	Name   string // instance name
	Type   string // service name, e.g., "_stage-catalog._tcp"
	Domain string // domain, e.g., "local"
	Addr   net.IP
	Port   int
}

// URL returns the base address of the catalog store behind the service.
func (s ServiceInfo) URL() string {
	host := "localhost"
	if s.Addr != nil {
		host = s.Addr.String()
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.Port))
}

// DiscoveryResult contains either a snapshot of the known services or an error.
type DiscoveryResult struct {
	Services []ServiceInfo
	Error    error
}

type Adapter interface {
	Announce(ctx context.Context, service ServiceInfo) error
	Discover(ctx context.Context, service string) <-chan DiscoveryResult
}

// ServiceName is the fully qualified lookup name for a service type in a domain.
func ServiceName(serviceType, domain string) string {
	return fmt.Sprintf("%s.%s.", serviceType, domain)
}

// FindFirst browses for catalog stores and returns the first one seen
// within timeout.
func FindFirst(ctx context.Context, adapter Adapter, timeout time.Duration) (ServiceInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := adapter.Discover(ctx, ServiceName(DefaultServerType, DefaultDomain))
	for {
		select {
		case <-ctx.Done():
			return ServiceInfo{}, ErrNotFound
		case res, ok := <-results:
			if !ok {
				return ServiceInfo{}, ErrNotFound
			}
			if res.Error != nil {
				return ServiceInfo{}, res.Error
			}
			if len(res.Services) > 0 {
				return res.Services[0], nil
			}
		}
	}
}
