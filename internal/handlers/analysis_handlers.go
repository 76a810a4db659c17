package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/smartsniper31/network-guardian/internal/activity"
	"github.com/smartsniper31/network-guardian/internal/analyzer"
	"github.com/smartsniper31/network-guardian/internal/events"
	"github.com/smartsniper31/network-guardian/internal/registry"
)

// AnalysisHandler exposes the external AI analyzer over the API.
// A collaborator failure is answered with 503 "analysis unavailable";
// the console never substitutes fabricated findings.
type AnalysisHandler struct {
	Registry *registry.Registry
	Activity *activity.Log
	Client   analyzer.Client
	Bus      *events.Bus
}

// NewAnalysisHandler creates a new analysis handler. Client may be nil
// when no analyzer is configured.
func NewAnalysisHandler(reg *registry.Registry, act *activity.Log, client analyzer.Client, bus *events.Bus) *AnalysisHandler {
	return &AnalysisHandler{Registry: reg, Activity: act, Client: client, Bus: bus}
}

// Device handles GET /api/analysis/device/{id}
func (h *AnalysisHandler) Device(w http.ResponseWriter, r *http.Request) {
	if h.Client == nil {
		h.unavailable(w, nil)
		return
	}

	device, err := h.Registry.Get(r.PathValue("id"))
	if errors.Is(err, registry.ErrNotFound) {
		JSONError(w, "Device not found", http.StatusNotFound)
		return
	}

	report, err := h.Client.AnalyzeDevice(r.Context(), device)
	if err != nil {
		h.unavailable(w, err)
		return
	}
	JSONResponse(w, report)
}

// Anomalies handles POST /api/analysis/anomalies. Detected alerts are
// published on the bus so parental/security notifications fire, but
// nothing mutates the registry without an explicit user action.
func (h *AnalysisHandler) Anomalies(w http.ResponseWriter, r *http.Request) {
	if h.Client == nil {
		h.unavailable(w, nil)
		return
	}

	report, err := h.Client.DetectAnomalies(r.Context(), h.Registry.List())
	if err != nil {
		h.unavailable(w, err)
		return
	}

	if h.Bus != nil {
		for _, alert := range report.Alerts {
			severity := events.SeverityWarning
			if alert.Severity == "high" {
				severity = events.SeverityCritical
			}
			h.Bus.Publish(events.Event{
				Type:     events.AnomalyDetected,
				Severity: severity,
				DeviceID: alert.DeviceID,
				Message:  alert.AnomalyType + ": " + alert.Details,
			})
		}
	}
	JSONResponse(w, report)
}

// Chat handles POST /api/analysis/chat
func (h *AnalysisHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.Client == nil {
		h.unavailable(w, nil)
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		JSONError(w, "query is required", http.StatusBadRequest)
		return
	}

	resp, err := h.Client.Chat(r.Context(), req.Query, h.Registry.List())
	if err != nil {
		h.unavailable(w, err)
		return
	}
	JSONResponse(w, resp)
}

// Report handles GET /api/analysis/report
func (h *AnalysisHandler) Report(w http.ResponseWriter, r *http.Request) {
	if h.Client == nil {
		h.unavailable(w, nil)
		return
	}

	report, err := h.Client.WeeklyReport(r.Context(), h.Registry.List(), h.Activity.Entries())
	if err != nil {
		h.unavailable(w, err)
		return
	}
	JSONResponse(w, report)
}

// unavailable is the single degraded-analysis response. The typed
// analyzer error is logged server-side only; the client sees a stable
// "analysis unavailable" state it can render honestly.
func (h *AnalysisHandler) unavailable(w http.ResponseWriter, err error) {
	if err != nil {
		log.Printf("⚠️  analysis: %v", err)
	}
	JSONError(w, "Analysis unavailable", http.StatusServiceUnavailable)
}
