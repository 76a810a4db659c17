package discovery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"

	"github.com/smartsniper31/network-guardian/internal/models"
)

// ErrScanUnavailable means the scanning collaborator is absent or
// failed. Callers treat it as an empty discovery result and surface a
// warning instead of crashing.
var ErrScanUnavailable = errors.New("network scanner unavailable")

// Scanner produces the raw endpoint tuples the merge consumes.
// The router IP selects the subnet to sweep; it is opaque beyond that.
type Scanner interface {
	Scan(ctx context.Context, routerIP string) ([]models.Endpoint, error)
}

// NmapScanner sweeps the router's /24 with an nmap host-discovery scan.
type NmapScanner struct {
	timeout time.Duration
}

// NewNmapScanner creates a scanner with the given per-scan timeout.
func NewNmapScanner(timeout time.Duration) *NmapScanner {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &NmapScanner{timeout: timeout}
}

// Scan runs a ping sweep of the router's subnet and returns one tuple
// per live host. All failures collapse into ErrScanUnavailable.
func (s *NmapScanner) Scan(ctx context.Context, routerIP string) ([]models.Endpoint, error) {
	subnet, err := subnetFor(routerIP)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	scanner, err := nmap.NewScanner(
		ctx,
		nmap.WithTargets(subnet),
		nmap.WithPingScan(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanUnavailable, err)
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanUnavailable, err)
	}
	if warnings != nil && len(*warnings) > 0 {
		log.Printf("scan: nmap warnings for %s: %v", subnet, *warnings)
	}

	var endpoints []models.Endpoint
	for _, host := range result.Hosts {
		if host.Status.State != "up" {
			continue
		}

		var ep models.Endpoint
		var vendor string
		for _, addr := range host.Addresses {
			switch addr.AddrType {
			case "ipv4":
				ep.IP = addr.Addr
			case "mac":
				ep.MAC = addr.Addr
				vendor = addr.Vendor
			}
		}
		// Hosts without a MAC (usually the scanning machine itself, or
		// an unprivileged scan) carry no natural key and are skipped.
		if ep.MAC == "" {
			continue
		}

		if len(host.Hostnames) > 0 && host.Hostnames[0].Name != "" {
			ep.Name = host.Hostnames[0].Name
		} else {
			ep.Name = vendor
		}
		ep.Name = VendorName(ep)

		endpoints = append(endpoints, ep)
	}

	log.Printf("scan: %s complete, %d endpoints", subnet, len(endpoints))
	return endpoints, nil
}

// subnetFor maps the router's IPv4 address to its /24 in CIDR form.
func subnetFor(routerIP string) (string, error) {
	ip := net.ParseIP(routerIP)
	if ip == nil || ip.To4() == nil {
		return "", fmt.Errorf("invalid router IP %q", routerIP)
	}
	v4 := ip.To4()
	return fmt.Sprintf("%d.%d.%d.0/24", v4[0], v4[1], v4[2]), nil
}
