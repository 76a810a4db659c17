package discovery

import (
	"testing"
	"time"

	"github.com/smartsniper31/network-guardian/internal/models"
)

var mergeNow = time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

func router(mac string) models.Device {
	return models.Device{
		ID:     "device-router",
		IP:     "192.168.1.1",
		MAC:    mac,
		Name:   "Livebox",
		Type:   models.TypeRouter,
		Status: models.StatusOnline,
	}
}

func TestMergeProducesNormalizedDraft(t *testing.T) {
	existing := []models.Device{router("AA:BB:CC:DD:EE:01")}
	raw := []models.Endpoint{{IP: "192.168.1.50", MAC: "aa:bb:cc:dd:ee:02", Name: "Phone"}}

	drafts := Merge(raw, existing, mergeNow, ClassifyRoundRobin)

	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	d := drafts[0]
	if d.MAC != "AA:BB:CC:DD:EE:02" {
		t.Errorf("MAC not normalized: %q", d.MAC)
	}
	if d.Status != models.StatusOnline {
		t.Errorf("expected Online, got %s", d.Status)
	}
	if d.ID != "" {
		t.Errorf("merge must not assign ids, got %q", d.ID)
	}
	if d.IP != "192.168.1.50" || d.Name != "Phone" {
		t.Errorf("tuple fields lost: %+v", d)
	}
}

func TestMergeDraftDefaults(t *testing.T) {
	drafts := Merge([]models.Endpoint{{IP: "10.0.0.9", MAC: "aa-bb-cc-dd-ee-03", Name: "Cam"}}, nil, mergeNow, nil)

	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	d := drafts[0]
	if d.MAC != "AA:BB:CC:DD:EE:03" {
		t.Errorf("dash separators not canonicalized: %q", d.MAC)
	}
	if d.BandwidthUsage != 0 || d.DataUsage.Download != 0 || d.DataUsage.Upload != 0 {
		t.Errorf("usage counters not zeroed: %+v", d)
	}
	if !d.LastSeen.Equal(mergeNow) {
		t.Errorf("lastSeen = %v, want %v", d.LastSeen, mergeNow)
	}
	if !d.DHCP {
		t.Error("dhcp should default to true")
	}
	if d.DNS != DefaultDNS {
		t.Errorf("dns = %q, want %q", d.DNS, DefaultDNS)
	}
	if len(d.OpenPorts) != 0 || len(d.FirewallRules) != 0 || len(d.BlockedCategories) != 0 {
		t.Errorf("sets should start empty: %+v", d)
	}
}

func TestMergeDropsKnownMAC(t *testing.T) {
	existing := []models.Device{router("AA:BB:CC:DD:EE:01")}
	raw := []models.Endpoint{{IP: "192.168.1.1", MAC: "aa:bb:cc:dd:ee:01", Name: "Livebox"}}

	if drafts := Merge(raw, existing, mergeNow, nil); len(drafts) != 0 {
		t.Errorf("expected 0 drafts for already-known MAC, got %d", len(drafts))
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	existing := []models.Device{router("AA:BB:CC:DD:EE:01")}
	raw := []models.Endpoint{
		{IP: "192.168.1.50", MAC: "aa:bb:cc:dd:ee:02", Name: "Phone"},
		{IP: "192.168.1.51", MAC: "aa:bb:cc:dd:ee:03", Name: "TV"},
	}

	first := Merge(raw, existing, mergeNow, nil)
	if len(first) != 2 {
		t.Fatalf("first pass: expected 2 drafts, got %d", len(first))
	}

	// Pretend the caller registered the first pass, then re-ran the scan.
	registered := append([]models.Device{}, existing...)
	for i, d := range first {
		d.ID = "device-" + string(rune('a'+i))
		registered = append(registered, d)
	}

	second := Merge(raw, registered, mergeNow, nil)
	if len(second) != 0 {
		t.Errorf("second pass: expected 0 drafts, got %d", len(second))
	}
}

func TestMergeDedupsWithinBatch(t *testing.T) {
	raw := []models.Endpoint{
		{IP: "192.168.1.50", MAC: "AA:BB:CC:DD:EE:02", Name: "Phone"},
		{IP: "192.168.1.50", MAC: "aa:bb:cc:dd:ee:02", Name: "Phone"},
	}

	if drafts := Merge(raw, nil, mergeNow, nil); len(drafts) != 1 {
		t.Errorf("expected 1 draft for a repeated MAC, got %d", len(drafts))
	}
}

func TestMergeEmptyInputIsNoOp(t *testing.T) {
	if drafts := Merge(nil, []models.Device{router("AA:BB:CC:DD:EE:01")}, mergeNow, nil); len(drafts) != 0 {
		t.Errorf("expected no drafts for empty input, got %d", len(drafts))
	}
}

func TestMergeSkipsEmptyMAC(t *testing.T) {
	raw := []models.Endpoint{{IP: "192.168.1.77", MAC: "", Name: "Ghost"}}
	if drafts := Merge(raw, nil, mergeNow, nil); len(drafts) != 0 {
		t.Errorf("expected no drafts for MAC-less tuple, got %d", len(drafts))
	}
}

func TestNormalizeMAC(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"aa:bb:cc:dd:ee:02", "AA:BB:CC:DD:EE:02"},
		{"AA:BB:CC:DD:EE:02", "AA:BB:CC:DD:EE:02"},
		{"aa-bb-cc-dd-ee-02", "AA:BB:CC:DD:EE:02"},
		{"  aa:bb:cc:dd:ee:02 ", "AA:BB:CC:DD:EE:02"},
		{"not-a-mac", "NOT:A:MAC"},
	}
	for _, tt := range tests {
		if got := NormalizeMAC(tt.in); got != tt.want {
			t.Errorf("NormalizeMAC(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifyRoundRobinCycles(t *testing.T) {
	want := []models.DeviceType{
		models.TypeSmartphone, models.TypeTV, models.TypeCamera,
		models.TypeLaptop, models.TypeIoT, models.TypeTablet,
		models.TypeSmartphone, // wraps
	}
	for i, w := range want {
		if got := ClassifyRoundRobin(i, models.Endpoint{}); got != w {
			t.Errorf("index %d: got %s, want %s", i, got, w)
		}
	}
}

func TestClassifyOUI(t *testing.T) {
	pi := models.Endpoint{MAC: "b8:27:eb:11:22:33"}
	if got := ClassifyOUI(3, pi); got != models.TypeIoT {
		t.Errorf("Raspberry Pi prefix: got %s, want IoT", got)
	}

	// Unknown prefix falls back to the positional placeholder.
	unknown := models.Endpoint{MAC: "02:00:00:00:00:01"}
	if got := ClassifyOUI(3, unknown); got != ClassifyRoundRobin(3, unknown) {
		t.Errorf("unknown prefix should fall back to round robin, got %s", got)
	}
}

func TestVendorName(t *testing.T) {
	if got := VendorName(models.Endpoint{IP: "192.168.1.9", Name: "Printer"}); got != "Printer" {
		t.Errorf("got %q", got)
	}
	if got := VendorName(models.Endpoint{IP: "192.168.1.9"}); got != "Unknown device (192.168.1.9)" {
		t.Errorf("got %q", got)
	}
}

func TestSubnetFor(t *testing.T) {
	got, err := subnetFor("192.168.1.254")
	if err != nil {
		t.Fatal(err)
	}
	if got != "192.168.1.0/24" {
		t.Errorf("got %q", got)
	}

	if _, err := subnetFor("not-an-ip"); err == nil {
		t.Error("expected an error for an invalid router IP")
	}
}
