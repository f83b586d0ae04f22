package api

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/inkdrift/inkdrift/internal/events"
	"github.com/inkdrift/inkdrift/internal/version"
)

// Metrics state
var (
	metricsState = &MetricsState{}
)

// MetricsState holds runtime metrics for the /metrics endpoint.
type MetricsState struct {
	mu                     sync.RWMutex
	startTime              time.Time
	storyName              string
	saveLastSuccessTimeSec int64 // Unix timestamp, -1 if unknown
}

// InitMetrics initializes the metrics system. Must be called at startup.
func InitMetrics() {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.startTime = time.Now()
	metricsState.saveLastSuccessTimeSec = -1
}

// SetStoryName sets the story name for metrics labels.
func SetStoryName(name string) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.storyName = name
}

// GetStoryName returns the current story name.
func GetStoryName() string {
	metricsState.mu.RLock()
	defer metricsState.mu.RUnlock()
	return metricsState.storyName
}

// SetSaveLastSuccess records the time of the last successful save.
func SetSaveLastSuccess() {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.saveLastSuccessTimeSec = time.Now().Unix()
}

// metricsHandler returns Prometheus-compatible metrics in text format.
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Gather metrics
	metricsState.mu.RLock()
	startTime := metricsState.startTime
	storyName := metricsState.storyName
	saveLastSuccess := metricsState.saveLastSuccessTimeSec
	metricsState.mu.RUnlock()

	uptime := time.Since(startTime).Seconds()
	eventsTotal := events.TotalCount()

	readiness.mu.RLock()
	engineReady := readiness.engineReady
	postgresConnected := readiness.postgresConnected
	readiness.mu.RUnlock()

	wsClients := events.SubscriberCount()
	activeSessions := sessions.Count()

	engineReadyVal := 0
	if engineReady {
		engineReadyVal = 1
	}

	postgresConnectedVal := 0
	if postgresConnected {
		postgresConnectedVal = 1
	}

	// Get hostname for instance label
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	// Build Prometheus text format response
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	// Helper to write metric with optional labels
	writeMetric := func(name, mtype, help string, value interface{}, labels string) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		if labels != "" {
			fmt.Fprintf(w, "%s{%s} %v\n", name, labels, value)
		} else {
			fmt.Fprintf(w, "%s %v\n", name, value)
		}
	}

	// Common labels
	labels := fmt.Sprintf(`story="%s",instance="%s",version="%s"`, storyName, hostname, version.Version)

	// Uptime
	writeMetric("inkdrift_uptime_seconds", "gauge",
		"Number of seconds since the engine started", uptime, labels)

	// Engine ready
	writeMetric("inkdrift_engine_ready", "gauge",
		"Whether a story is loaded and serving (1) or not (0)", engineReadyVal, labels)

	// Active sessions
	writeMetric("inkdrift_sessions_active", "gauge",
		"Number of active play sessions", activeSessions, labels)

	// Events total
	writeMetric("inkdrift_events_total", "counter",
		"Total number of events emitted since startup", eventsTotal, labels)

	// Postgres connected
	writeMetric("inkdrift_postgres_connected", "gauge",
		"Whether PostgreSQL is connected (1) or not (0)", postgresConnectedVal, labels)

	// WebSocket clients
	writeMetric("inkdrift_ws_clients", "gauge",
		"Number of active WebSocket client connections", wsClients, labels)

	// Last successful save timestamp
	writeMetric("inkdrift_save_last_success_timestamp", "gauge",
		"Unix timestamp of last successful save (-1 if unknown)", saveLastSuccess, labels)
}
