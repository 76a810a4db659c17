// Package store is the durable key/value layer under the device
// registry and the credential store. Reads and writes never fail from
// the caller's perspective: when the backing database is unavailable
// the store degrades to an in-process map and keeps serving, so higher
// layers stay correct within a single session even though nothing will
// survive a restart.
package store

import (
	"database/sql"
	"log"
	"sync"

	"github.com/smartsniper31/network-guardian/internal/events"
)

// Store multiplexes logical collections onto stable keys.
type Store struct {
	mu       sync.Mutex
	db       *sql.DB
	bus      *events.Bus
	mem      map[string][]byte
	degraded bool
}

// New creates a store backed by the given database handle.
// A nil handle means the database could not be opened; the store then
// runs in-memory from the start and reports itself as not persistent.
func New(db *sql.DB, bus *events.Bus) *Store {
	s := &Store{
		db:  db,
		bus: bus,
		mem: make(map[string][]byte),
	}
	if db == nil {
		s.markDegraded("open", nil)
	}
	return s
}

// NewInMemory creates a store with no durable backing. Used in tests
// and as the fallback when the database cannot be opened.
func NewInMemory() *Store {
	return &Store{mem: make(map[string][]byte), degraded: true}
}

// Read returns the value stored under key, or false if absent.
// It never fails: a storage error degrades the store and the read is
// answered from the in-memory mirror.
func (s *Store) Read(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.degraded {
		var value []byte
		err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
		switch {
		case err == nil:
			// Mirror so a later degrade keeps serving the latest state.
			s.mem[key] = value
			return append([]byte(nil), value...), true
		case err == sql.ErrNoRows:
			return nil, false
		default:
			s.markDegraded("read", err)
		}
	}

	value, ok := s.mem[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), value...), true
}

// Write stores value under key. It never fails: a storage error
// degrades the store and the write lands in the in-memory mirror only.
func (s *Store) Write(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem[key] = append([]byte(nil), value...)

	if s.degraded {
		return
	}

	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		s.markDegraded("write", err)
	}
}

// Persistent reports whether writes are actually reaching durable
// storage. Callers use it to warn the user that changes will not
// survive a restart.
func (s *Store) Persistent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.degraded
}

// markDegraded flips the store into in-memory mode. Called with the
// mutex held (or during construction). The failure is logged and
// announced once; it is never surfaced to callers as an error.
func (s *Store) markDegraded(op string, err error) {
	if s.degraded {
		return
	}
	s.degraded = true
	log.Printf("⚠️  store: %s failed, degrading to in-memory: %v", op, err)
	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type:     events.StorageDegraded,
			Severity: events.SeverityWarning,
			Message:  "persistent storage unavailable; changes will not survive a restart",
		})
	}
}
