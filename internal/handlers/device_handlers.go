package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/smartsniper31/network-guardian/internal/activity"
	"github.com/smartsniper31/network-guardian/internal/discovery"
	"github.com/smartsniper31/network-guardian/internal/models"
	"github.com/smartsniper31/network-guardian/internal/registry"
	"github.com/smartsniper31/network-guardian/internal/setup"
)

// DeviceHandler handles device registry API requests.
type DeviceHandler struct {
	Registry *registry.Registry
	Activity *activity.Log
	Setup    *setup.Tracker
}

// NewDeviceHandler creates a new device handler.
func NewDeviceHandler(reg *registry.Registry, act *activity.Log, tracker *setup.Tracker) *DeviceHandler {
	return &DeviceHandler{Registry: reg, Activity: act, Setup: tracker}
}

// List handles GET /api/devices
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	devices := h.Registry.List()
	if devices == nil {
		devices = []models.Device{}
	}
	JSONResponse(w, devices)
}

// Get handles GET /api/devices/{id}
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	device, err := h.Registry.Get(r.PathValue("id"))
	if errors.Is(err, registry.ErrNotFound) {
		JSONError(w, "Device not found", http.StatusNotFound)
		return
	}
	JSONResponse(w, device)
}

// Create handles POST /api/devices (manual add, including the router
// during setup).
func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft models.Device
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		JSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if draft.IP == "" || draft.MAC == "" || draft.Name == "" {
		JSONError(w, "ip, mac and name are required", http.StatusBadRequest)
		return
	}

	draft.ID = "" // ids are assigned by the registry only
	draft.MAC = discovery.NormalizeMAC(draft.MAC)
	if draft.Type == "" {
		draft.Type = models.TypeUnknown
	}
	if !models.ValidType(draft.Type) {
		JSONError(w, "Unknown device type", http.StatusBadRequest)
		return
	}
	if draft.Status == "" {
		draft.Status = models.StatusOnline
	}
	if !models.ValidStatus(draft.Status) {
		JSONError(w, "Unknown device status", http.StatusBadRequest)
		return
	}
	if draft.LastSeen.IsZero() {
		draft.LastSeen = time.Now().UTC()
	}

	device := h.Registry.Add(draft)

	// Registering the router completes that step of first-run setup.
	if device.Type == models.TypeRouter && h.Setup != nil {
		h.Setup.Advance(setup.StepRouter)
	}

	w.WriteHeader(http.StatusCreated)
	JSONResponse(w, device)
}

// UpdateStatus handles PUT /api/devices/{id}/status
func (h *DeviceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.DeviceStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if !models.ValidStatus(req.Status) {
		JSONError(w, "Unknown device status", http.StatusBadRequest)
		return
	}

	device, err := h.Registry.UpdateStatus(r.PathValue("id"), req.Status)
	if errors.Is(err, registry.ErrNotFound) {
		JSONError(w, "Device not found", http.StatusNotFound)
		return
	}
	JSONResponse(w, device)
}

// UpdateCategories handles PUT /api/devices/{id}/categories
func (h *DeviceHandler) UpdateCategories(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Categories []string `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	device, err := h.Registry.UpdateBlockedCategories(r.PathValue("id"), req.Categories)
	if errors.Is(err, registry.ErrNotFound) {
		JSONError(w, "Device not found", http.StatusNotFound)
		return
	}
	JSONResponse(w, device)
}

// Logs handles GET /api/logs
func (h *DeviceHandler) Logs(w http.ResponseWriter, r *http.Request) {
	entries := h.Activity.Entries()
	if entries == nil {
		entries = []models.LogEntry{}
	}
	JSONResponse(w, entries)
}
