// Package setup tracks progress through the first-run workflow:
// create the account, register the router, run the discovery scan.
// The completed step is persisted so an interrupted setup resumes
// where it left off instead of starting over; re-running discovery is
// safe because the merge dedups by MAC.
package setup

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/smartsniper31/network-guardian/internal/store"
)

// Step identifies the last completed setup step.
type Step string

const (
	StepNone      Step = "none"
	StepSignup    Step = "signup"
	StepRouter    Step = "router_registered"
	StepDiscovery Step = "discovery_completed"
)

// rank orders steps so Advance never moves backwards.
var rank = map[Step]int{
	StepNone:      0,
	StepSignup:    1,
	StepRouter:    2,
	StepDiscovery: 3,
}

const stateKey = "setup-state"

type state struct {
	Step      Step      `json:"step"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker persists the setup progress in the key/value store.
type Tracker struct {
	mu    sync.Mutex
	store *store.Store
	cur   state
}

// NewTracker loads the persisted progress, defaulting to StepNone.
func NewTracker(st *store.Store) *Tracker {
	t := &Tracker{store: st, cur: state{Step: StepNone}}

	if raw, ok := st.Read(stateKey); ok {
		var s state
		if err := json.Unmarshal(raw, &s); err != nil || rank[s.Step] == 0 && s.Step != StepNone {
			log.Printf("⚠️  setup: discarding unreadable setup state")
		} else {
			t.cur = s
		}
	}
	return t
}

// Current returns the last completed step.
func (t *Tracker) Current() Step {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cur.Step
}

// Complete reports whether the whole setup sequence has finished.
func (t *Tracker) Complete() bool {
	return t.Current() == StepDiscovery
}

// Advance records that step completed. Moving backwards is ignored, so
// a re-run of an earlier step (like a second discovery scan) cannot
// regress the recorded progress.
func (t *Tracker) Advance(step Step) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rank[step] <= rank[t.cur.Step] {
		return
	}
	t.cur = state{Step: step, UpdatedAt: time.Now().UTC()}
	t.persist()
}

// Reset rewinds the tracker to the very beginning (factory reset).
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cur = state{Step: StepNone, UpdatedAt: time.Now().UTC()}
	t.persist()
}

// persist writes the current state. Caller holds the mutex.
func (t *Tracker) persist() {
	raw, err := json.Marshal(t.cur)
	if err != nil {
		log.Printf("⚠️  setup: marshal state: %v", err)
		return
	}
	t.store.Write(stateKey, raw)
}
