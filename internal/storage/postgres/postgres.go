package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/inkdrift/inkdrift/internal/config"
)

// EventRow represents an event stored in Postgres.
type EventRow struct {
	EventID   int64                  `json:"event_id"`
	Timestamp time.Time              `json:"ts"`
	Level     string                 `json:"level"`
	Event     string                 `json:"event"`
	Message   *string                `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	StoryID   string                 `json:"story_id"`
	SessionID *string                `json:"session_id,omitempty"`
}

// SaveRow describes one save slot mirrored to Postgres.
type SaveRow struct {
	Slot    string    `json:"slot"`
	StoryID string    `json:"story_id"`
	Scene   string    `json:"scene"`
	SavedAt time.Time `json:"saved_at"`
}

// Client manages the Postgres connection for the event journal and the
// save-slot mirror.
type Client struct {
	db      *sql.DB
	storyID string

	mu          sync.Mutex
	errorLogged bool
}

// New creates a new Postgres client using environment variables.
// Returns nil if connection fails (caller should handle gracefully).
func New(storyID string) (*Client, error) {
	host := getEnv("PGHOST", "127.0.0.1")
	port := getEnv("PGPORT", "5432")
	user := getEnv("PGUSER", "inkdrift")
	dbname := getEnv("PGDATABASE", "inkdrift")
	password, err := config.ResolveSecret("PGPASSWORD")
	if err != nil {
		return nil, err
	}

	var connStr string
	if password != "" {
		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	} else {
		connStr = fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable",
			host, port, user, dbname)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	client := &Client{
		db:      db,
		storyID: storyID,
	}

	// Create tables if not exist
	if err := client.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return client, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func (c *Client) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS events (
			event_id   BIGSERIAL PRIMARY KEY,
			ts         TIMESTAMPTZ NOT NULL,
			level      TEXT NOT NULL,
			event      TEXT NOT NULL,
			msg        TEXT,
			fields     JSONB,
			story_id   TEXT NOT NULL,
			session_id TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_events_story_id ON events(story_id);

		CREATE TABLE IF NOT EXISTS saves (
			slot     TEXT PRIMARY KEY,
			story_id TEXT NOT NULL,
			scene    TEXT NOT NULL,
			saved_at TIMESTAMPTZ NOT NULL,
			snapshot BYTEA NOT NULL
		);
	`
	_, err := c.db.Exec(query)
	return err
}

// Append inserts an event into the journal.
// Returns error if insert fails.
func (c *Client) Append(ts time.Time, level, event, msg string, fields map[string]interface{}, sessionID string) error {
	var fieldsJSON []byte
	var err error
	if fields != nil {
		fieldsJSON, err = json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %w", err)
		}
	}

	var msgPtr *string
	if msg != "" {
		msgPtr = &msg
	}

	var sessionPtr *string
	if sessionID != "" {
		sessionPtr = &sessionID
	}

	query := `
		INSERT INTO events (ts, level, event, msg, fields, story_id, session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = c.db.Exec(query, ts, level, event, msgPtr, fieldsJSON, c.storyID, sessionPtr)
	return err
}

// Query returns the last N events from the journal in descending order by timestamp.
func (c *Client) Query(limit int) ([]EventRow, error) {
	if limit <= 0 {
		limit = 200
	}
	if limit > 10000 {
		limit = 10000
	}

	query := `
		SELECT event_id, ts, level, event, msg, fields, story_id, session_id
		FROM events
		WHERE story_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`
	rows, err := c.db.Query(query, c.storyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		var fieldsJSON []byte
		var msg, sessionID sql.NullString

		if err := rows.Scan(&e.EventID, &e.Timestamp, &e.Level, &e.Event, &msg, &fieldsJSON, &e.StoryID, &sessionID); err != nil {
			return nil, err
		}

		if msg.Valid {
			e.Message = &msg.String
		}
		if sessionID.Valid {
			e.SessionID = &sessionID.String
		}
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
				return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
			}
		}

		events = append(events, e)
	}

	return events, rows.Err()
}

// PutSave upserts a save slot's snapshot.
func (c *Client) PutSave(slot, scene string, savedAt time.Time, snapshot []byte) error {
	query := `
		INSERT INTO saves (slot, story_id, scene, saved_at, snapshot)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slot) DO UPDATE
		SET story_id = EXCLUDED.story_id,
		    scene = EXCLUDED.scene,
		    saved_at = EXCLUDED.saved_at,
		    snapshot = EXCLUDED.snapshot
	`
	_, err := c.db.Exec(query, slot, c.storyID, scene, savedAt, snapshot)
	return err
}

// GetSave returns the snapshot bytes stored for a slot.
func (c *Client) GetSave(slot string) ([]byte, error) {
	var snapshot []byte
	err := c.db.QueryRow(`SELECT snapshot FROM saves WHERE slot = $1 AND story_id = $2`, slot, c.storyID).Scan(&snapshot)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ListSaves describes every save slot for this story, newest first.
func (c *Client) ListSaves() ([]SaveRow, error) {
	rows, err := c.db.Query(`
		SELECT slot, story_id, scene, saved_at
		FROM saves
		WHERE story_id = $1
		ORDER BY saved_at DESC
	`, c.storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var saves []SaveRow
	for rows.Next() {
		var s SaveRow
		if err := rows.Scan(&s.Slot, &s.StoryID, &s.Scene, &s.SavedAt); err != nil {
			return nil, err
		}
		saves = append(saves, s)
	}
	return saves, rows.Err()
}

// DeleteSave removes a save slot.
func (c *Client) DeleteSave(slot string) error {
	_, err := c.db.Exec(`DELETE FROM saves WHERE slot = $1 AND story_id = $2`, slot, c.storyID)
	return err
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// MarkErrorLogged marks that an error has been logged (to avoid spam).
func (c *Client) MarkErrorLogged() {
	c.mu.Lock()
	c.errorLogged = true
	c.mu.Unlock()
}

// HasLoggedError returns true if an error has been logged.
func (c *Client) HasLoggedError() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorLogged
}
