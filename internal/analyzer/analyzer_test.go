package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartsniper31/network-guardian/internal/models"
)

func TestAnalyzeDevice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze/device" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var device models.Device
		if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if device.MAC != "AA:BB:CC:DD:EE:02" {
			t.Errorf("unexpected device: %+v", device)
		}
		json.NewEncoder(w).Encode(VulnerabilityReport{
			AnalysisSummary: "One open telnet port.",
			Vulnerabilities: []Vulnerability{{Severity: "high", Description: "telnet", Recommendation: "disable it"}},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	report, err := c.AnalyzeDevice(context.Background(), models.Device{MAC: "AA:BB:CC:DD:EE:02"})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Vulnerabilities) != 1 || report.Vulnerabilities[0].Severity != "high" {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestDetectAnomaliesSerializesDeviceList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Devices []models.Device `json:"devices"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || len(in.Devices) != 2 {
			t.Errorf("expected 2 devices, got %+v (err %v)", in, err)
		}
		json.NewEncoder(w).Encode(AnomalyReport{Alerts: []AnomalyAlert{{DeviceID: "device-1", Severity: "high"}}})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	report, err := c.DetectAnomalies(context.Background(), []models.Device{{ID: "device-1"}, {ID: "device-2"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Alerts) != 1 || report.Alerts[0].DeviceID != "device-1" {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestFailureSurfacesTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.AnalyzeDevice(context.Background(), models.Device{})
	if err == nil {
		t.Fatal("expected an error")
	}

	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected *analyzer.Error, got %T", err)
	}
}

func TestUnreachableCollaborator(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", 200*time.Millisecond)

	var aerr *Error
	if _, err := c.Chat(context.Background(), "who is online?", nil); !errors.As(err, &aerr) {
		t.Fatalf("expected *analyzer.Error, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects the client hang-up and
		// cancels the request context; otherwise Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewHTTPClient(srv.URL, time.Minute)
	if _, err := c.WeeklyReport(ctx, nil, nil); err == nil {
		t.Fatal("expected a deadline error")
	}
}
