package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/smartsniper31/network-guardian/internal/discovery"
	"github.com/smartsniper31/network-guardian/internal/events"
	"github.com/smartsniper31/network-guardian/internal/models"
	"github.com/smartsniper31/network-guardian/internal/registry"
	"github.com/smartsniper31/network-guardian/internal/setup"
)

// ScanHandler runs the discovery workflow: sweep the router's subnet,
// merge the result against the registry and register the survivors.
type ScanHandler struct {
	Registry *registry.Registry
	Scanner  discovery.Scanner
	Setup    *setup.Tracker
	Bus      *events.Bus
	Classify discovery.Classifier
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(reg *registry.Registry, scanner discovery.Scanner, tracker *setup.Tracker, bus *events.Bus) *ScanHandler {
	return &ScanHandler{
		Registry: reg,
		Scanner:  scanner,
		Setup:    tracker,
		Bus:      bus,
		Classify: discovery.ClassifyOUI,
	}
}

// Scan handles POST /api/scan. The router IP may be supplied in the
// body; by default the registered router's address is used. The
// workflow is not atomic, but re-running it is safe: already-known
// MACs are dropped by the merge.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RouterIP string `json:"router_ip"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // empty body keeps the default
	}

	routerIP := req.RouterIP
	if routerIP == "" {
		var ok bool
		if routerIP, ok = h.routerIP(); !ok {
			JSONError(w, "No router registered; complete setup first", http.StatusConflict)
			return
		}
	}

	endpoints, err := h.Scanner.Scan(r.Context(), routerIP)
	if err != nil {
		if errors.Is(err, discovery.ErrScanUnavailable) {
			// Degrade to an empty discovery pass; the client shows a
			// configuration warning instead of an error page.
			log.Printf("⚠️  scan: %v", err)
			h.publish(events.Event{
				Type:     events.ScanUnavailable,
				Severity: events.SeverityWarning,
				Message:  "network scan unavailable; no devices discovered",
			})
			JSONResponse(w, map[string]interface{}{
				"added":   []models.Device{},
				"warning": "Network scanner unavailable. Check that nmap is installed.",
			})
			return
		}
		JSONError(w, "Scan failed", http.StatusInternalServerError)
		return
	}

	drafts := discovery.Merge(endpoints, h.Registry.List(), time.Now().UTC(), h.Classify)

	added := make([]models.Device, 0, len(drafts))
	for _, draft := range drafts {
		added = append(added, h.Registry.Add(draft))
	}

	if h.Setup != nil {
		h.Setup.Advance(setup.StepDiscovery)
	}
	h.publish(events.Event{
		Type:     events.ScanCompleted,
		Severity: events.SeverityInfo,
		Message:  scanSummary(len(endpoints), len(added)),
		Metadata: map[string]string{"action": "Network Scan", "target": routerIP},
	})

	JSONResponse(w, map[string]interface{}{"added": added})
}

// routerIP returns the registered router's address.
func (h *ScanHandler) routerIP() (string, bool) {
	for _, d := range h.Registry.List() {
		if d.Type == models.TypeRouter {
			return d.IP, true
		}
	}
	return "", false
}

func (h *ScanHandler) publish(e events.Event) {
	if h.Bus != nil {
		h.Bus.Publish(e)
	}
}

func scanSummary(found, added int) string {
	switch {
	case found == 0:
		return "network scan found no devices"
	case added == 0:
		return "network scan found no new devices"
	default:
		return fmt.Sprintf("network scan registered %d new device(s)", added)
	}
}
