package models

import "time"

// DeviceType classifies a network endpoint.
type DeviceType string

const (
	TypeLaptop     DeviceType = "Laptop"
	TypeSmartphone DeviceType = "Smartphone"
	TypeTablet     DeviceType = "Tablet"
	TypeIoT        DeviceType = "IoT"
	TypeCamera     DeviceType = "Camera"
	TypeTV         DeviceType = "TV"
	TypeRouter     DeviceType = "Router"
	TypeUnknown    DeviceType = "Unknown"
)

// ValidType reports whether t is one of the known device types.
func ValidType(t DeviceType) bool {
	switch t {
	case TypeLaptop, TypeSmartphone, TypeTablet, TypeIoT,
		TypeCamera, TypeTV, TypeRouter, TypeUnknown:
		return true
	}
	return false
}

// DeviceStatus governs whether a device is granted network access.
// Blocked and Paused both deny access: Blocked is a security action,
// Paused is a parental-control action.
type DeviceStatus string

const (
	StatusOnline  DeviceStatus = "Online"
	StatusOffline DeviceStatus = "Offline"
	StatusBlocked DeviceStatus = "Blocked"
	StatusPaused  DeviceStatus = "Paused"
)

// ValidStatus reports whether s is one of the known device statuses.
func ValidStatus(s DeviceStatus) bool {
	switch s {
	case StatusOnline, StatusOffline, StatusBlocked, StatusPaused:
		return true
	}
	return false
}

// DataUsage holds cumulative transfer counters in megabytes.
type DataUsage struct {
	Download float64 `json:"download"`
	Upload   float64 `json:"upload"`
}

// Device represents one known network endpoint.
// The MAC address is the natural key used to detect already-known
// devices during discovery; the ID is assigned once and never reused.
type Device struct {
	ID                string       `json:"id"`
	IP                string       `json:"ip"`
	MAC               string       `json:"mac"`
	Name              string       `json:"name"`
	Type              DeviceType   `json:"type"`
	Status            DeviceStatus `json:"status"`
	BandwidthUsage    float64      `json:"bandwidthUsage"`
	DataUsage         DataUsage    `json:"dataUsage"`
	LastSeen          time.Time    `json:"lastSeen"`
	OpenPorts         []int        `json:"openPorts"`
	DNS               string       `json:"dns"`
	DHCP              bool         `json:"dhcp"`
	FirewallRules     []string     `json:"firewallRules"`
	BlockedCategories []string     `json:"blockedCategories"`
}

// Endpoint is one raw tuple produced by the network scanner.
type Endpoint struct {
	IP   string `json:"ip"`
	MAC  string `json:"mac"`
	Name string `json:"name"`
}

// Credential is the single local administrator record.
// Only the salted hash of the password is ever stored.
type Credential struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// Session represents an active browser session.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LogEntry is one record in the activity log.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Details   string    `json:"details"`
}

// Config holds server configuration.
type Config struct {
	Port            string
	DBPath          string
	AnalyzerURL     string
	AnalyzerTimeout time.Duration
	ScanTimeout     time.Duration
	SessionTTL      time.Duration
	NotifyURLs      []string
}
