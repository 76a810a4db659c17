package handlers

import (
	"net/http"

	"github.com/smartsniper31/network-guardian/internal/registry"
	"github.com/smartsniper31/network-guardian/internal/setup"
	"github.com/smartsniper31/network-guardian/internal/store"
	"github.com/smartsniper31/network-guardian/internal/version"
)

// HealthHandler reports service and storage health. The store degrades
// silently on failure, so this is where the durability loss becomes
// observable to the UI.
type HealthHandler struct {
	Store    *store.Store
	Registry *registry.Registry
	Setup    *setup.Tracker
	Updates  *version.Checker
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(st *store.Store, reg *registry.Registry, tracker *setup.Tracker) *HealthHandler {
	return &HealthHandler{Store: st, Registry: reg, Setup: tracker}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]interface{}{
		"status":     "ok",
		"persistent": h.Store.Persistent(),
	})
}

// Version handles GET /api/version. A failed GitHub lookup is not an
// error state for the console; the UI just shows the running version.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	if h.Updates == nil {
		JSONResponse(w, map[string]interface{}{"current_version": version.Current})
		return
	}
	info, err := h.Updates.Check()
	if err != nil {
		JSONResponse(w, map[string]interface{}{"current_version": version.Current})
		return
	}
	JSONResponse(w, info)
}

// SetupState handles GET /api/setup. The dashboard gates itself on
// router registration; the setup screen resumes from the recorded step.
func (h *HealthHandler) SetupState(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]interface{}{
		"step":       h.Setup.Current(),
		"complete":   h.Setup.Complete(),
		"has_router": h.Registry.HasRouter(),
	})
}
