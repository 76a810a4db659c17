// Package analyzer is the boundary with the external AI analysis
// collaborator. The core hands it read-only registry snapshots and
// consumes structured results; a failure is surfaced as a typed error
// so the UI can distinguish "no findings" from "analysis unavailable"
// instead of showing fabricated results.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smartsniper31/network-guardian/internal/models"
)

// Error wraps an analyzer failure.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("analyzer: %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Vulnerability is one finding from a device analysis.
type Vulnerability struct {
	Severity       string `json:"severity"` // low, medium, high, critical
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// VulnerabilityReport is the result of analysing a single device.
type VulnerabilityReport struct {
	AnalysisSummary string          `json:"analysisSummary"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

// AnomalyAlert flags suspicious activity on one device.
type AnomalyAlert struct {
	DeviceID    string `json:"deviceId"`
	AnomalyType string `json:"anomalyType"`
	Severity    string `json:"severity"` // low, medium, high
	Timestamp   string `json:"timestamp"`
	Details     string `json:"details"`
}

// AnomalyReport is the result of scanning the device list for anomalies.
type AnomalyReport struct {
	Alerts []AnomalyAlert `json:"alerts"`
}

// ChatResponse is the free-text answer to a network question.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ScreenTimeEntry is the estimated weekly usage of one device.
type ScreenTimeEntry struct {
	DeviceName string  `json:"deviceName"`
	DeviceID   string  `json:"deviceId"`
	UsageHours float64 `json:"usageHours"`
}

// Threat describes one detected threat and how to handle it.
type Threat struct {
	Details        string `json:"details"`
	Recommendation string `json:"recommendation"`
}

// ThreatsSummary aggregates the week's security findings.
type ThreatsSummary struct {
	TotalThreats int      `json:"totalThreats"`
	Threats      []Threat `json:"threats"`
}

// Recommendation is one actionable suggestion in the weekly report.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"` // low, medium, high
}

// WeeklyReport is the full weekly network report.
type WeeklyReport struct {
	OverallSummary     string            `json:"overallSummary"`
	ScreenTimeAnalysis []ScreenTimeEntry `json:"screenTimeAnalysis"`
	ThreatsSummary     ThreatsSummary    `json:"threatsSummary"`
	Recommendations    []Recommendation  `json:"recommendations"`
}

// Client is the capability contract the core consumes. Every call
// carries a context; implementations must honour its deadline.
type Client interface {
	AnalyzeDevice(ctx context.Context, device models.Device) (*VulnerabilityReport, error)
	DetectAnomalies(ctx context.Context, devices []models.Device) (*AnomalyReport, error)
	Chat(ctx context.Context, query string, devices []models.Device) (*ChatResponse, error)
	WeeklyReport(ctx context.Context, devices []models.Device, logs []models.LogEntry) (*WeeklyReport, error)
}

// HTTPClient talks JSON to an analyzer sidecar. The request timeout is
// explicit: the core never blocks indefinitely on the collaborator.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for the analyzer at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) AnalyzeDevice(ctx context.Context, device models.Device) (*VulnerabilityReport, error) {
	var out VulnerabilityReport
	if err := c.post(ctx, "/analyze/device", device, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DetectAnomalies(ctx context.Context, devices []models.Device) (*AnomalyReport, error) {
	// The collaborator receives the device list serialized as data, not
	// a live reference into the registry.
	in := map[string]interface{}{"devices": devices}
	var out AnomalyReport
	if err := c.post(ctx, "/analyze/anomalies", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Chat(ctx context.Context, query string, devices []models.Device) (*ChatResponse, error) {
	in := map[string]interface{}{"query": query, "devices": devices}
	var out ChatResponse
	if err := c.post(ctx, "/chat", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) WeeklyReport(ctx context.Context, devices []models.Device, logs []models.LogEntry) (*WeeklyReport, error) {
	in := map[string]interface{}{"devices": devices, "logs": logs}
	var out WeeklyReport
	if err := c.post(ctx, "/report/weekly", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return &Error{Op: path, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &Error{Op: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{Op: path, Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
