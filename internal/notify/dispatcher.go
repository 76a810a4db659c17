// Package notify pushes important console events (blocked devices,
// detected anomalies, storage degradation) to the user's notification
// channels via Shoutrrr URLs.
package notify

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nicholas-fedor/shoutrrr"

	"github.com/smartsniper31/network-guardian/internal/events"
)

// Sender abstracts message dispatch so the dispatcher can be tested
// without hitting real services.
type Sender interface {
	Send(shoutrrrURL, message string) error
}

// ShoutrrrSender dispatches via the Shoutrrr library.
type ShoutrrrSender struct{}

func (ShoutrrrSender) Send(url, message string) error {
	return shoutrrr.Send(url, message)
}

// defaultCooldown suppresses duplicate notifications for the same
// (url, event type, device) within the window.
const defaultCooldown = 30 * time.Minute

// Dispatcher subscribes to the event bus, filters by severity,
// enforces cooldowns and dispatches via Shoutrrr.
type Dispatcher struct {
	bus         *events.Bus
	sender      Sender
	urls        []string
	minSeverity events.Severity
	cooldown    time.Duration

	// cooldowns tracks the last dispatch time per (url, event, device).
	mu        sync.Mutex
	cooldowns map[string]time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher wired to the given bus. A nil
// sender selects the real Shoutrrr sender.
func NewDispatcher(bus *events.Bus, urls []string, sender Sender) *Dispatcher {
	if sender == nil {
		sender = ShoutrrrSender{}
	}
	return &Dispatcher{
		bus:         bus,
		sender:      sender,
		urls:        urls,
		minSeverity: events.SeverityWarning,
		cooldown:    defaultCooldown,
		cooldowns:   make(map[string]time.Time),
		stopCh:      make(chan struct{}),
	}
}

// Start subscribes to all events and begins dispatching.
func (d *Dispatcher) Start() {
	if len(d.urls) == 0 {
		log.Printf("notify: no notification URLs configured, dispatcher idle")
		return
	}

	ch := make(chan events.Event, 256)

	d.bus.Subscribe(func(e events.Event) {
		select {
		case ch <- e:
		default:
			log.Printf("notify: event queue full, dropping %s event", e.Type)
		}
	})

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case e := <-ch:
				d.handle(e)
			case <-d.stopCh:
				// Drain remaining events
				for {
					select {
					case e := <-ch:
						d.handle(e)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop signals the dispatcher goroutine to finish and waits for it.
func (d *Dispatcher) Stop() {
	close(d.stopCh)
	d.wg.Wait()
}

// handle dispatches a single event to every configured URL.
func (d *Dispatcher) handle(e events.Event) {
	if e.Severity < d.minSeverity {
		return
	}

	message := fmt.Sprintf("[%s] %s", e.Severity, e.Message)

	for _, url := range d.urls {
		if !d.cooldownElapsed(url, e) {
			continue
		}
		if err := d.sender.Send(url, message); err != nil {
			log.Printf("notify: send failed: %v", err)
			continue
		}
		d.markSent(url, e)
	}
}

func cooldownKey(url string, e events.Event) string {
	return url + "|" + string(e.Type) + "|" + e.DeviceID
}

func (d *Dispatcher) cooldownElapsed(url string, e events.Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.cooldowns[cooldownKey(url, e)]
	return !ok || time.Since(last) >= d.cooldown
}

func (d *Dispatcher) markSent(url string, e events.Event) {
	d.mu.Lock()
	d.cooldowns[cooldownKey(url, e)] = time.Now()
	d.mu.Unlock()
}
