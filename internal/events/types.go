package events

import "time"

// EventType identifies the kind of event being published.
type EventType string

const (
	// Registry events
	DeviceAdded       EventType = "device_added"
	StatusChanged     EventType = "device_status_changed"
	DeviceBlocked     EventType = "device_blocked"
	CategoriesUpdated EventType = "device_categories_updated"
	RegistryReset     EventType = "registry_reset"

	// Discovery events
	ScanCompleted   EventType = "scan_completed"
	ScanUnavailable EventType = "scan_unavailable"

	// Account events
	UserSignedUp      EventType = "user_signed_up"
	PasswordRecovered EventType = "password_reset"

	// Analysis events
	AnomalyDetected EventType = "anomaly_detected"

	// System events
	StorageDegraded EventType = "storage_degraded"
)

// Severity indicates the urgency of an event.
type Severity int

const (
	SeverityInfo     Severity = 0
	SeverityWarning  Severity = 1
	SeverityCritical Severity = 2
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Event is the payload published through the bus.
type Event struct {
	Type      EventType         `json:"type"`
	Severity  Severity          `json:"severity"`
	DeviceID  string            `json:"device_id,omitempty"`
	User      string            `json:"user,omitempty"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
