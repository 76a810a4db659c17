package notify

import (
	"strings"
	"sync"
	"testing"

	"github.com/smartsniper31/network-guardian/internal/events"
)

// fakeSender records dispatched messages.
type fakeSender struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeSender) Send(url, message string) error {
	f.mu.Lock()
	f.messages = append(f.messages, url+" "+message)
	f.mu.Unlock()
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func newTestDispatcher(t *testing.T) (*events.Bus, *Dispatcher, *fakeSender) {
	t.Helper()
	bus := events.NewBus()
	sender := &fakeSender{}
	d := NewDispatcher(bus, []string{"discord://token@channel"}, sender)
	d.Start()
	return bus, d, sender
}

func TestCriticalEventIsDispatched(t *testing.T) {
	bus, d, sender := newTestDispatcher(t)

	bus.Publish(events.Event{
		Type:     events.DeviceBlocked,
		Severity: events.SeverityCritical,
		DeviceID: "device-1",
		Message:  "device \"Cam\" status Online -> Blocked",
	})
	d.Stop()

	if sender.count() != 1 {
		t.Fatalf("expected 1 dispatch, got %d", sender.count())
	}
	if !strings.Contains(sender.messages[0], "critical") {
		t.Errorf("severity missing from message: %q", sender.messages[0])
	}
}

func TestInfoEventsAreFiltered(t *testing.T) {
	bus, d, sender := newTestDispatcher(t)

	bus.Publish(events.Event{
		Type:     events.DeviceAdded,
		Severity: events.SeverityInfo,
		Message:  "device added",
	})
	d.Stop()

	if sender.count() != 0 {
		t.Errorf("info events should not be dispatched, got %d", sender.count())
	}
}

func TestCooldownSuppressesDuplicates(t *testing.T) {
	bus, d, sender := newTestDispatcher(t)

	e := events.Event{
		Type:     events.DeviceBlocked,
		Severity: events.SeverityCritical,
		DeviceID: "device-1",
		Message:  "blocked",
	}
	bus.Publish(e)
	bus.Publish(e)
	d.Stop()

	if sender.count() != 1 {
		t.Errorf("expected duplicate within cooldown to be suppressed, got %d dispatches", sender.count())
	}
}

func TestDistinctDevicesAreNotSuppressed(t *testing.T) {
	bus, d, sender := newTestDispatcher(t)

	bus.Publish(events.Event{Type: events.DeviceBlocked, Severity: events.SeverityCritical, DeviceID: "device-1", Message: "a"})
	bus.Publish(events.Event{Type: events.DeviceBlocked, Severity: events.SeverityCritical, DeviceID: "device-2", Message: "b"})
	d.Stop()

	if sender.count() != 2 {
		t.Errorf("expected 2 dispatches for distinct devices, got %d", sender.count())
	}
}

func TestNoURLsMeansIdleDispatcher(t *testing.T) {
	bus := events.NewBus()
	sender := &fakeSender{}
	d := NewDispatcher(bus, nil, sender)
	d.Start()

	bus.Publish(events.Event{Type: events.DeviceBlocked, Severity: events.SeverityCritical, Message: "x"})

	if sender.count() != 0 {
		t.Errorf("idle dispatcher sent %d messages", sender.count())
	}
}
