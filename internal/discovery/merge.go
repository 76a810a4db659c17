// Package discovery reconciles freshly scanned endpoints with the
// device registry. The merge itself is a pure function of the raw
// tuples and a registry snapshot; all I/O lives behind the Scanner
// contract and in the caller.
package discovery

import (
	"net"
	"strings"
	"time"

	"github.com/smartsniper31/network-guardian/internal/models"
)

// DefaultDNS is the resolver label given to newly discovered devices.
const DefaultDNS = "auto"

// NormalizeMAC returns the canonical form of a MAC address: uppercase
// hex with colon separators. Unparseable input is uppercased as-is so
// dedup still works on consistent garbage.
func NormalizeMAC(mac string) string {
	mac = strings.TrimSpace(mac)
	if hw, err := net.ParseMAC(mac); err == nil {
		return strings.ToUpper(hw.String())
	}
	return strings.ToUpper(strings.ReplaceAll(mac, "-", ":"))
}

// Merge reconciles a batch of raw scanned endpoints against a registry
// snapshot and returns complete device drafts for the genuinely new
// MAC addresses. Tuples whose normalized MAC is already registered are
// dropped, which makes re-running a scan idempotent. Fields of
// already-known devices are never touched: the scan is a one-shot
// discovery pass, not a refresh.
//
// An empty batch produces an empty result; Merge never fails.
func Merge(raw []models.Endpoint, existing []models.Device, now time.Time, classify Classifier) []models.Device {
	if classify == nil {
		classify = ClassifyRoundRobin
	}

	known := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		known[NormalizeMAC(d.MAC)] = struct{}{}
	}

	var drafts []models.Device
	for i, ep := range raw {
		mac := NormalizeMAC(ep.MAC)
		if mac == "" {
			continue
		}
		if _, ok := known[mac]; ok {
			continue
		}
		known[mac] = struct{}{} // a MAC repeated within the batch yields one draft

		drafts = append(drafts, models.Device{
			IP:                ep.IP,
			MAC:               mac,
			Name:              ep.Name,
			Type:              classify(i, ep),
			Status:            models.StatusOnline,
			BandwidthUsage:    0,
			DataUsage:         models.DataUsage{},
			LastSeen:          now,
			OpenPorts:         []int{},
			DNS:               DefaultDNS,
			DHCP:              true,
			FirewallRules:     []string{},
			BlockedCategories: []string{},
		})
	}
	return drafts
}
