package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/brutella/dnssd"
)

type MDNSAdapter struct{}

func (m *MDNSAdapter) Announce(ctx context.Context, serviceInfo ServiceInfo) error {
	text := make(map[string]string)
	text["desc"] = "Performance event catalog"
	text["path"] = "/events"

	cfg := dnssd.Config{
		Name:   serviceInfo.Name,
		Type:   serviceInfo.Type,
		Domain: serviceInfo.Domain,
		// mdns will multicast to ip address, so we can leave it nil
		IPs:  nil,
		Text: text,
		Port: serviceInfo.Port,
	}

	service, err := dnssd.NewService(cfg)
	if err != nil {
		return fmt.Errorf("failed to create mDNS service: %w", err)
	}

	rp, err := dnssd.NewResponder()
	if err != nil {
		return fmt.Errorf("failed to create mDNS responder: %w", err)
	}

	if _, err = rp.Add(service); err != nil {
		return fmt.Errorf("failed to add mDNS service: %w", err)
	}

	slog.Info("Announcing catalog store", "name", serviceInfo.Name, "type", serviceInfo.Type, "port", serviceInfo.Port)
	if err = rp.Respond(ctx); err != nil {
		// Context cancellation is not an error in normal operation
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("failed to respond to mDNS service: %w", err)
	}
	return nil
}

// browseSet tracks the entries a running browse currently sees. dnssd calls
// the add and remove callbacks from its own goroutine, so every access
// takes mu.
type browseSet struct {
	mu      sync.Mutex
	entries map[string]ServiceInfo
}

func newBrowseSet() *browseSet {
	return &browseSet{entries: make(map[string]ServiceInfo)}
}

func browseKey(e dnssd.BrowseEntry) string {
	return fmt.Sprintf("%s:%s:%s", e.Name, e.Type, e.Domain)
}

// add records e and reports whether it was usable.
func (b *browseSet) add(e dnssd.BrowseEntry) bool {
	if len(e.IPs) == 0 {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[browseKey(e)] = ServiceInfo{
		Name:   e.Name,
		Type:   e.Type,
		Domain: e.Domain,
		Addr:   e.IPs[0],
		Port:   e.Port,
	}
	return true
}

func (b *browseSet) remove(e dnssd.BrowseEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, browseKey(e))
}

func (b *browseSet) snapshot() []ServiceInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	snapshot := make([]ServiceInfo, 0, len(b.entries))
	for _, entry := range b.entries {
		snapshot = append(snapshot, entry)
	}
	return snapshot
}

// Discover streams snapshots of the services currently visible.
func (m *MDNSAdapter) Discover(ctx context.Context, service string) <-chan DiscoveryResult {
	var (
		seen  = newBrowseSet()
		outCh = make(chan DiscoveryResult, 10)
	)

	sendSnapshot := func() {
		select {
		case outCh <- DiscoveryResult{Services: seen.snapshot(), Error: nil}:
		default:
		}
	}

	sendError := func(err error) {
		select {
		case outCh <- DiscoveryResult{Services: nil, Error: err}:
		default:
		}
	}

	addFn := func(e dnssd.BrowseEntry) {
		if !seen.add(e) {
			slog.Debug("Ignoring catalog store without address", "name", e.Name)
			return
		}
		sendSnapshot()
	}

	rmvFn := func(e dnssd.BrowseEntry) {
		seen.remove(e)
		sendSnapshot()
	}

	go func() {
		defer close(outCh)
		if err := dnssd.LookupType(ctx, service, addFn, rmvFn); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			sendError(fmt.Errorf("mDNS lookup failed: %w", err))
		}
	}()

	return outCh
}
