// Package activity keeps an append-only record of state-changing
// operations. The log is deliberately ephemeral: it lives in memory,
// capped at a fixed size, and feeds the logs view and the weekly
// report.
package activity

import (
	"sync"

	"github.com/google/uuid"

	"github.com/smartsniper31/network-guardian/internal/events"
	"github.com/smartsniper31/network-guardian/internal/models"
)

// DefaultCapacity bounds the in-memory log.
const DefaultCapacity = 500

// Log collects state-changing events from the bus as LogEntry records.
type Log struct {
	mu      sync.Mutex
	entries []models.LogEntry
	max     int
}

// New creates an activity log subscribed to every state-changing event.
func New(bus *events.Bus, capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Log{max: capacity}

	bus.Subscribe(l.record,
		events.DeviceAdded,
		events.StatusChanged,
		events.DeviceBlocked,
		events.CategoriesUpdated,
		events.RegistryReset,
		events.ScanCompleted,
		events.UserSignedUp,
		events.PasswordRecovered,
	)
	return l
}

// record converts an event into a log entry. Handlers on the bus run
// synchronously, so entries keep the order of the operations that
// produced them.
func (l *Log) record(e events.Event) {
	user := e.User
	if user == "" {
		user = "admin" // single-tenant console
	}
	entry := models.LogEntry{
		ID:        "log-" + uuid.NewString(),
		Timestamp: e.Timestamp,
		User:      user,
		Action:    e.Metadata["action"],
		Target:    e.Metadata["target"],
		Details:   e.Message,
	}
	if entry.Action == "" {
		entry.Action = string(e.Type)
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
	l.mu.Unlock()
}

// Entries returns the log newest-first.
func (l *Log) Entries() []models.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.LogEntry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}
