package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/smartsniper31/network-guardian/internal/activity"
	"github.com/smartsniper31/network-guardian/internal/analyzer"
	"github.com/smartsniper31/network-guardian/internal/auth"
	"github.com/smartsniper31/network-guardian/internal/config"
	"github.com/smartsniper31/network-guardian/internal/db"
	"github.com/smartsniper31/network-guardian/internal/discovery"
	"github.com/smartsniper31/network-guardian/internal/events"
	"github.com/smartsniper31/network-guardian/internal/handlers"
	"github.com/smartsniper31/network-guardian/internal/notify"
	"github.com/smartsniper31/network-guardian/internal/registry"
	"github.com/smartsniper31/network-guardian/internal/setup"
	"github.com/smartsniper31/network-guardian/internal/store"
	"github.com/smartsniper31/network-guardian/internal/version"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("✓ Loaded .env")
	}
	cfg := config.Load()

	bus := events.NewBus()

	// The console must come up even without a writable disk: a nil
	// connection puts the store in memory-only mode.
	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Printf("⚠️  Database unavailable (%v); running without persistence", err)
		conn = nil
	} else {
		defer conn.Close()
		log.Printf("✓ Database connected (%s)", cfg.DBPath)
	}
	st := store.New(conn, bus)

	devices := registry.New(st, bus)
	activityLog := activity.New(bus, activity.DefaultCapacity)
	tracker := setup.NewTracker(st)

	// Signup is a factory reset: setup progress rewinds to the first
	// completed step.
	bus.Subscribe(func(events.Event) {
		tracker.Reset()
		tracker.Advance(setup.StepSignup)
	}, events.UserSignedUp)

	authService := auth.NewService(st, devices, bus)
	sessions := auth.NewSessionManager(cfg.SessionTTL)
	go func() {
		for range time.Tick(time.Hour) {
			sessions.CleanupExpired()
		}
	}()

	var analysis analyzer.Client
	if cfg.AnalyzerURL != "" {
		analysis = analyzer.NewHTTPClient(cfg.AnalyzerURL, cfg.AnalyzerTimeout)
		log.Printf("✓ Analyzer configured (%s)", cfg.AnalyzerURL)
	} else {
		log.Println("⚠️  No ANALYZER_URL set; analysis endpoints will report unavailable")
	}

	dispatcher := notify.NewDispatcher(bus, cfg.NotifyURLs, notify.ShoutrrrSender{})
	dispatcher.Start()
	defer dispatcher.Stop()

	deviceHandler := handlers.NewDeviceHandler(devices, activityLog, tracker)
	scanHandler := handlers.NewScanHandler(devices, discovery.NewNmapScanner(cfg.ScanTimeout), tracker, bus)
	analysisHandler := handlers.NewAnalysisHandler(devices, activityLog, analysis, bus)
	healthHandler := handlers.NewHealthHandler(st, devices, tracker)
	healthHandler.Updates = version.NewChecker(version.Current, "smartsniper31", "network-guardian")
	hub := handlers.NewWebSocketHub(bus)
	authHandlers := &auth.Handlers{Service: authService, Sessions: sessions}

	protect := func(next http.HandlerFunc) http.HandlerFunc {
		return auth.Middleware(sessions, next)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /api/health", healthHandler.Health)
	mux.HandleFunc("GET /api/version", protect(healthHandler.Version))

	mux.HandleFunc("POST /api/auth/signup", authHandlers.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandlers.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandlers.Logout)
	mux.HandleFunc("GET /api/auth/me", protect(authHandlers.Me))
	mux.HandleFunc("POST /api/auth/recover", authHandlers.Recover)
	mux.HandleFunc("POST /api/auth/reset", authHandlers.Reset)

	mux.HandleFunc("GET /api/setup", protect(healthHandler.SetupState))

	mux.HandleFunc("GET /api/devices", protect(deviceHandler.List))
	mux.HandleFunc("POST /api/devices", protect(deviceHandler.Create))
	mux.HandleFunc("GET /api/devices/{id}", protect(deviceHandler.Get))
	mux.HandleFunc("PUT /api/devices/{id}/status", protect(deviceHandler.UpdateStatus))
	mux.HandleFunc("PUT /api/devices/{id}/categories", protect(deviceHandler.UpdateCategories))

	mux.HandleFunc("POST /api/scan", protect(scanHandler.Scan))

	mux.HandleFunc("GET /api/logs", protect(deviceHandler.Logs))

	mux.HandleFunc("GET /api/analysis/device/{id}", protect(analysisHandler.Device))
	mux.HandleFunc("POST /api/analysis/anomalies", protect(analysisHandler.Anomalies))
	mux.HandleFunc("POST /api/analysis/chat", protect(analysisHandler.Chat))
	mux.HandleFunc("GET /api/analysis/report", protect(analysisHandler.Report))

	mux.HandleFunc("GET /ws", protect(hub.HandleConnection))

	log.Printf("Network Guardian listening on port %s...", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil {
		log.Fatal(err)
	}
}
