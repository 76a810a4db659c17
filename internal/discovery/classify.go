package discovery

import (
	"strings"

	"github.com/smartsniper31/network-guardian/internal/models"
)

// Classifier picks a device type for the i-th endpoint of a scan batch.
type Classifier func(i int, ep models.Endpoint) models.DeviceType

// rotation is the fixed type cycle the placeholder classifier walks.
var rotation = []models.DeviceType{
	models.TypeSmartphone,
	models.TypeTV,
	models.TypeCamera,
	models.TypeLaptop,
	models.TypeIoT,
	models.TypeTablet,
}

// ClassifyRoundRobin assigns a type purely from the endpoint's position
// in the batch (types[i mod N]). It has no relationship to the actual
// device; it exists for parity with the original console and is the
// fallback when the vendor prefix is unknown.
func ClassifyRoundRobin(i int, _ models.Endpoint) models.DeviceType {
	return rotation[i%len(rotation)]
}

// ouiPrefixes maps IEEE vendor prefixes (first three octets of the MAC)
// to a likely device type. The table is deliberately small: anything
// not listed falls back to the round-robin placeholder.
var ouiPrefixes = map[string]models.DeviceType{
	"3C:22:FB": models.TypeLaptop,     // Apple
	"F0:18:98": models.TypeLaptop,     // Apple
	"A4:5E:60": models.TypeSmartphone, // Apple
	"D8:3A:DD": models.TypeIoT,        // Raspberry Pi
	"B8:27:EB": models.TypeIoT,        // Raspberry Pi
	"DC:A6:32": models.TypeIoT,        // Raspberry Pi
	"00:17:88": models.TypeIoT,        // Philips Hue
	"18:B4:30": models.TypeIoT,        // Nest
	"64:16:66": models.TypeCamera,     // Ring
	"00:62:6E": models.TypeCamera,     // Hikvision
	"FC:A6:67": models.TypeCamera,     // Amazon (Blink)
	"5C:AA:FD": models.TypeTV,         // Sony
	"F8:77:B8": models.TypeTV,         // Samsung
	"CC:6E:A4": models.TypeTV,         // Samsung
	"8C:79:F5": models.TypeSmartphone, // Samsung
	"28:6C:07": models.TypeIoT,        // Xiaomi
	"EC:FA:BC": models.TypeIoT,        // Espressif
	"24:0A:C4": models.TypeIoT,        // Espressif
	"B0:4E:26": models.TypeRouter,     // TP-Link
	"9C:53:22": models.TypeRouter,     // TP-Link
}

// ClassifyOUI looks the endpoint's vendor prefix up in the OUI table
// and falls back to the round-robin placeholder when the prefix is not
// recognised.
func ClassifyOUI(i int, ep models.Endpoint) models.DeviceType {
	mac := NormalizeMAC(ep.MAC)
	if len(mac) >= 8 {
		if t, ok := ouiPrefixes[mac[:8]]; ok {
			return t
		}
	}
	return ClassifyRoundRobin(i, ep)
}

// VendorName extracts a display name for an endpoint whose scanner
// reported no name, mirroring the original console's "unknown device"
// label.
func VendorName(ep models.Endpoint) string {
	if name := strings.TrimSpace(ep.Name); name != "" {
		return name
	}
	return "Unknown device (" + ep.IP + ")"
}
