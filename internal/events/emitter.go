package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/inkdrift/inkdrift/internal/storage/postgres"
)

var buffer = NewRingBuffer(256)

var (
	pgClient      *postgres.Client
	pgMu          sync.RWMutex
	pgErrorLogged bool

	totalMu    sync.Mutex
	totalCount int64
)

// SetPostgresClient sets the Postgres client for event persistence.
func SetPostgresClient(client *postgres.Client) {
	pgMu.Lock()
	pgClient = client
	pgMu.Unlock()
}

// GetPostgresClient returns the current Postgres client (for API queries).
func GetPostgresClient() *postgres.Client {
	pgMu.RLock()
	defer pgMu.RUnlock()
	return pgClient
}

type Event struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Name      string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Emit records an event: ring buffer, live subscribers, and the Postgres
// journal when one is configured. The session id, when present in fields,
// lands in its own journal column.
func Emit(level, name, msg string, fields map[string]interface{}) ([]byte, error) {
	if err := Validate(name); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	e := Event{
		Timestamp: ts.Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		Fields:    fields,
	}

	buffer.Add(e)
	broadcast(e)

	totalMu.Lock()
	totalCount++
	totalMu.Unlock()

	// Persist to Postgres (non-blocking, error-resistant)
	pgMu.RLock()
	client := pgClient
	errorLogged := pgErrorLogged
	pgMu.RUnlock()

	if client != nil {
		sessionID, _ := fields["session_id"].(string)
		if err := client.Append(ts, level, name, msg, fields, sessionID); err != nil {
			// Log error once to avoid spam.
			// IMPORTANT: We add directly to buffer.Add() here, NOT Emit(),
			// to avoid infinite recursion if Postgres keeps failing.
			if !errorLogged {
				pgMu.Lock()
				if !pgErrorLogged {
					pgErrorLogged = true
					pgMu.Unlock()
					// Add system.error directly to ring buffer (bypasses DB append)
					errEvent := Event{
						Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
						Level:     "error",
						Name:      "system.error",
						Message:   "postgres append failed",
						Fields: map[string]interface{}{
							"error": err.Error(),
						},
					}
					buffer.Add(errEvent) // Direct add, no recursion
				} else {
					pgMu.Unlock()
				}
			}
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return b, nil
}

func Snapshot() []Event {
	return buffer.Snapshot()
}

// TotalCount returns the number of events emitted since startup.
func TotalCount() int64 {
	totalMu.Lock()
	defer totalMu.Unlock()
	return totalCount
}

// Clear resets the event buffer. Used for testing.
func Clear() {
	buffer.Clear()
}
