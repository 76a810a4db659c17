// Package registry is the authoritative in-process collection of known
// devices. It owns the "devices" key in the persistent store and is the
// only writer of it.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/smartsniper31/network-guardian/internal/events"
	"github.com/smartsniper31/network-guardian/internal/models"
	"github.com/smartsniper31/network-guardian/internal/store"
)

// ErrNotFound is returned for operations on an unknown device id.
var ErrNotFound = errors.New("device not found")

const devicesKey = "devices"

// Registry holds the device collection in insertion order and persists
// it as a single JSON array after every mutation. Each operation
// replaces the record atomically within the single-process store, so no
// partial updates are observable.
type Registry struct {
	mu      sync.Mutex
	store   *store.Store
	bus     *events.Bus
	devices []models.Device
}

// New creates a registry over the given store, loading any previously
// persisted collection. A corrupt snapshot is discarded rather than
// crashing the console.
func New(st *store.Store, bus *events.Bus) *Registry {
	r := &Registry{store: st, bus: bus}

	if raw, ok := st.Read(devicesKey); ok {
		if err := json.Unmarshal(raw, &r.devices); err != nil {
			log.Printf("⚠️  registry: discarding unreadable device snapshot: %v", err)
			r.devices = nil
		}
	}
	return r
}

// List returns the full collection in insertion order. It never fails.
func (r *Registry) List() []models.Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Get returns the device with the given id.
func (r *Registry) Get(id string) (models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.devices {
		if d.ID == id {
			return d, nil
		}
	}
	return models.Device{}, ErrNotFound
}

// Add assigns a fresh unique id to the draft, appends it and persists.
// Existing records are never mutated. The assigned id is never reused,
// even for a re-added device with the same MAC.
func (r *Registry) Add(draft models.Device) models.Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	draft.ID = "device-" + uuid.NewString()
	r.devices = append(r.devices, draft)
	r.persist()

	r.publish(events.Event{
		Type:     events.DeviceAdded,
		Severity: events.SeverityInfo,
		DeviceID: draft.ID,
		Message:  fmt.Sprintf("device %q (%s) added", draft.Name, draft.MAC),
		Metadata: map[string]string{"action": "Add Device", "target": draft.Name},
	})
	return draft
}

// UpdateStatus overwrites the device's status unconditionally: the
// state machine is permissive, any status may follow any status. A
// self-transition is a no-op and emits nothing.
func (r *Registry) UpdateStatus(id string, status models.DeviceStatus) (models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return models.Device{}, ErrNotFound
	}

	prev := r.devices[idx].Status
	if prev == status {
		return r.devices[idx], nil
	}

	r.devices[idx].Status = status
	r.persist()

	d := r.devices[idx]
	evt := events.Event{
		Type:     events.StatusChanged,
		Severity: events.SeverityInfo,
		DeviceID: d.ID,
		Message:  fmt.Sprintf("device %q status %s -> %s", d.Name, prev, status),
		Metadata: map[string]string{"action": "Update Status", "target": d.Name, "from": string(prev), "to": string(status)},
	}
	if status == models.StatusBlocked {
		evt.Type = events.DeviceBlocked
		evt.Severity = events.SeverityCritical
	}
	r.publish(evt)
	return d, nil
}

// UpdateBlockedCategories replaces the device's full content-filter
// category list. It is a replace, not a merge.
func (r *Registry) UpdateBlockedCategories(id string, categories []string) (models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return models.Device{}, ErrNotFound
	}

	r.devices[idx].BlockedCategories = append([]string(nil), categories...)
	r.persist()

	d := r.devices[idx]
	r.publish(events.Event{
		Type:     events.CategoriesUpdated,
		Severity: events.SeverityInfo,
		DeviceID: d.ID,
		Message:  fmt.Sprintf("device %q content filters updated (%d categories)", d.Name, len(categories)),
		Metadata: map[string]string{"action": "Update Filters", "target": d.Name},
	})
	return d, nil
}

// HasRouter reports whether any device has type Router. The setup
// workflow gates dashboard access on it.
func (r *Registry) HasRouter() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.devices {
		if d.Type == models.TypeRouter {
			return true
		}
	}
	return false
}

// Reset wipes the device collection. Signup performs a factory reset
// through this.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices = nil
	r.persist()

	r.publish(events.Event{
		Type:     events.RegistryReset,
		Severity: events.SeverityWarning,
		Message:  "device collection reset",
		Metadata: map[string]string{"action": "Factory Reset", "target": "all devices"},
	})
}

// indexOf returns the position of id, or -1. Caller holds the mutex.
func (r *Registry) indexOf(id string) int {
	for i, d := range r.devices {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the whole collection under the devices key. Caller
// holds the mutex. Store failures degrade silently inside the store.
func (r *Registry) persist() {
	raw, err := json.Marshal(r.devices)
	if err != nil {
		log.Printf("⚠️  registry: marshal devices: %v", err)
		return
	}
	r.store.Write(devicesKey, raw)
}

func (r *Registry) publish(e events.Event) {
	if r.bus != nil {
		r.bus.Publish(e)
	}
}
