package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/inkdrift/inkdrift/internal/events"
	"github.com/inkdrift/inkdrift/internal/game"
	"github.com/inkdrift/inkdrift/internal/session"
	"github.com/inkdrift/inkdrift/internal/story"
)

var (
	gameEngine *game.Engine
	saveStore  *session.FileStore
)

// SetEngine installs the narrative engine served by the session endpoints.
func SetEngine(e *game.Engine) {
	gameEngine = e
}

// SetStore installs the save-slot store served by the save endpoints.
func SetStore(s *session.FileStore) {
	saveStore = s
}

// readiness tracks dependency state for /ready and /metrics.
var readiness = struct {
	mu                sync.RWMutex
	engineReady       bool
	postgresConnected bool
	postgresOptional  bool
}{}

// SetEngineReady marks the engine as loaded and serving.
func SetEngineReady(ready bool) {
	readiness.mu.Lock()
	readiness.engineReady = ready
	readiness.mu.Unlock()
}

// SetPostgresState records journal connectivity. An optional journal never
// fails readiness.
func SetPostgresState(connected, optional bool) {
	readiness.mu.Lock()
	readiness.postgresConnected = connected
	readiness.postgresOptional = optional
	readiness.mu.Unlock()
}

// CheckStatus is one dependency's state in the readiness report.
type CheckStatus struct {
	Status   string `json:"status"`
	Optional bool   `json:"optional,omitempty"`
}

type ReadinessResponse struct {
	Ready       bool                   `json:"ready"`
	Checks      map[string]CheckStatus `json:"checks"`
	NotReadyMsg string                 `json:"message,omitempty"`
}

func readyHandler(w http.ResponseWriter, r *http.Request) {
	readiness.mu.RLock()
	engineReady := readiness.engineReady
	postgresConnected := readiness.postgresConnected
	postgresOptional := readiness.postgresOptional
	readiness.mu.RUnlock()

	resp := ReadinessResponse{Ready: true, Checks: map[string]CheckStatus{}}
	var reasons []string

	if engineReady {
		resp.Checks["engine"] = CheckStatus{Status: "ok"}
	} else {
		resp.Checks["engine"] = CheckStatus{Status: "not_ready"}
		resp.Ready = false
		reasons = append(reasons, "engine not ready")
	}

	switch {
	case postgresConnected:
		resp.Checks["postgres"] = CheckStatus{Status: "ok", Optional: postgresOptional}
	case postgresOptional:
		resp.Checks["postgres"] = CheckStatus{Status: "unavailable", Optional: true}
	default:
		resp.Checks["postgres"] = CheckStatus{Status: "not_ready"}
		resp.Ready = false
		reasons = append(reasons, "postgres not connected")
	}

	if !resp.Ready {
		resp.NotReadyMsg = strings.Join(reasons, "; ")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}
	writeJSON(w, resp)
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Story     string `json:"story,omitempty"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	resp := HealthResponse{
		Status:    "ok",
		Service:   "engine",
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if gameEngine != nil {
		resp.Story = gameEngine.Story().Meta.ID
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// StoryResponse summarizes the loaded story without exposing its content.
type StoryResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	Version  string `json:"version,omitempty"`
	Checksum string `json:"checksum"`
	Scenes   int    `json:"scenes"`
	Start    string `json:"start"`
}

func storyHandler(w http.ResponseWriter, r *http.Request) {
	if gameEngine == nil {
		http.Error(w, "no story loaded", http.StatusServiceUnavailable)
		return
	}
	s := gameEngine.Story()
	resp := StoryResponse{
		ID:       s.Meta.ID,
		Title:    s.Meta.Title,
		Author:   s.Meta.Author,
		Version:  s.Meta.Version,
		Checksum: s.Checksum(),
		Scenes:   len(s.Scenes),
		Start:    s.Start,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events.Snapshot())
}

// journalHandler queries the Postgres event journal. Falls back to the
// in-memory buffer when no journal is configured.
func journalHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	client := events.GetPostgresClient()
	if client == nil {
		_ = json.NewEncoder(w).Encode(events.Snapshot())
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := client.Query(limit)
	if err != nil {
		http.Error(w, "journal query failed", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}

// ErrorResponse is the JSON error shape for all endpoints.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{OK: false, Kind: kind, Error: msg})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// NewMux builds the full route table.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler)
	mux.HandleFunc("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /story", storyHandler)
	mux.HandleFunc("GET /events", eventsHandler)
	mux.HandleFunc("GET /events/journal", journalHandler)
	mux.HandleFunc("GET /ws/events", wsEventsHandler)
	mux.HandleFunc("GET /", uiHandler)

	mux.HandleFunc("POST /sessions", RequireAnyRole(createSessionHandler))
	mux.HandleFunc("GET /sessions/{id}", RequireAnyRole(getSessionHandler))
	mux.HandleFunc("POST /sessions/{id}/choose", RequireAnyRole(chooseHandler))
	mux.HandleFunc("DELETE /sessions/{id}", RequireAnyRole(endSessionHandler))
	mux.HandleFunc("POST /sessions/{id}/save", RequireAnyRole(saveSessionHandler))
	mux.HandleFunc("POST /sessions/load", RequireAnyRole(loadSessionHandler))
	mux.HandleFunc("GET /saves", RequireAnyRole(listSavesHandler))
	mux.HandleFunc("DELETE /saves/{slot}", RequireAdmin(deleteSaveHandler))
	return mux
}

// ListenAndServe starts the API server on the given port.
// It blocks until the server exits. TLS is used when configured.
func ListenAndServe(port int) error {
	mux := NewMux()
	addr := fmt.Sprintf(":%d", port)

	if IsTLSEnabled() {
		srv := &http.Server{Addr: addr, Handler: mux, TLSConfig: LoadTLSConfig()}
		log.Printf("API listening on %s (TLS)\n", addr)
		return srv.ListenAndServeTLS("", "")
	}

	log.Printf("API listening on %s\n", addr)
	return http.ListenAndServe(addr, mux)
}

// Start starts the API server in a goroutine.
// Errors are logged but do not stop the caller.
func Start(port int) {
	go func() {
		if err := ListenAndServe(port); err != nil {
			log.Printf("api server error: %v", err)
		}
	}()
}

// sessionStory returns the loaded story or reports 503.
func sessionStory(w http.ResponseWriter) (*story.Story, bool) {
	if gameEngine == nil {
		writeError(w, http.StatusServiceUnavailable, "", "no story loaded")
		return nil, false
	}
	return gameEngine.Story(), true
}
