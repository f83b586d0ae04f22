package api

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"sync"

	"github.com/inkdrift/inkdrift/internal/events"
	"github.com/inkdrift/inkdrift/internal/game"
	"github.com/inkdrift/inkdrift/internal/session"
	"github.com/inkdrift/inkdrift/internal/story"
)

// playSession pairs a state with the mutex that serializes access to it.
// The engine itself is stateless over a read-only story; the per-session
// lock is what keeps each state single-writer under concurrent requests.
type playSession struct {
	mu sync.Mutex
	st *game.State
}

// sessionManager holds the active play sessions.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*playSession
}

var sessions = &sessionManager{sessions: make(map[string]*playSession)}

func (m *sessionManager) add(st *game.State) (string, *playSession) {
	id := newSessionID()
	ps := &playSession{st: st}
	m.mu.Lock()
	m.sessions[id] = ps
	m.mu.Unlock()
	return id, ps
}

func (m *sessionManager) get(id string) (*playSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps, ok := m.sessions[id]
	return ps, ok
}

func (m *sessionManager) remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Count returns the number of active sessions.
func (m *sessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ResetSessionsForTest drops all active sessions.
func ResetSessionsForTest() {
	sessions.mu.Lock()
	sessions.sessions = make(map[string]*playSession)
	sessions.mu.Unlock()
}

func newSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}

// SessionResponse is the full view of one session returned by the API.
type SessionResponse struct {
	OK        bool               `json:"ok"`
	SessionID string             `json:"session_id"`
	Status    game.Status        `json:"status"`
	Scene     *game.Presentation `json:"scene"`
	Stats     map[string]int     `json:"stats"`
	Inventory map[string]int     `json:"inventory"`
	Flags     []string           `json:"flags"`
	History   []string           `json:"history"`
}

// sessionResponse renders the session view. The caller must hold the
// session's lock.
func sessionResponse(w http.ResponseWriter, id string, st *game.State) {
	p, err := gameEngine.Present(st)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "scene_missing", err.Error())
		return
	}
	writeJSON(w, SessionResponse{
		OK:        true,
		SessionID: id,
		Status:    gameEngine.Status(st),
		Scene:     p,
		Stats:     st.Stats,
		Inventory: st.Inventory,
		Flags:     st.FlagList(),
		History:   st.History,
	})
}

func createSessionHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionStory(w); !ok {
		return
	}

	st := gameEngine.NewGame()
	id, ps := sessions.add(st)
	events.Emit("info", "game.started", "", map[string]interface{}{
		"session_id": id,
		"story_id":   st.StoryID,
	})

	ps.mu.Lock()
	defer ps.mu.Unlock()
	sessionResponse(w, id, ps.st)
}

func getSessionHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionStory(w); !ok {
		return
	}

	id := r.PathValue("id")
	ps, ok := sessions.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "", "session not found")
		return
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	sessionResponse(w, id, ps.st)
}

type ChooseRequest struct {
	Index int `json:"index"`
}

func chooseHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionStory(w); !ok {
		return
	}

	id := r.PathValue("id")
	ps, ok := sessions.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "", "session not found")
		return
	}

	var req ChooseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid JSON")
		return
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, err := gameEngine.Choose(ps.st, req.Index); err != nil {
		var cerr *game.ChoiceError
		if errors.As(err, &cerr) {
			events.Emit("info", "choice.rejected", cerr.Error(), map[string]interface{}{
				"session_id": id,
				"kind":       string(cerr.Kind),
				"index":      cerr.Index,
			})
			status := http.StatusUnprocessableEntity
			if cerr.Kind == game.ChoiceSessionEnded {
				status = http.StatusConflict
			}
			writeError(w, status, string(cerr.Kind), cerr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "scene_missing", err.Error())
		return
	}

	sessionResponse(w, id, ps.st)
}

func endSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !sessions.remove(id) {
		writeError(w, http.StatusNotFound, "", "session not found")
		return
	}
	events.Emit("info", "session.ended", "", map[string]interface{}{"session_id": id})
	writeJSON(w, map[string]interface{}{"ok": true, "session_id": id})
}

type SaveRequest struct {
	Slot string `json:"slot"`
}

type SaveResponse struct {
	OK   bool   `json:"ok"`
	Slot string `json:"slot"`
}

func saveSessionHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionStory(w)
	if !ok {
		return
	}
	if saveStore == nil {
		writeError(w, http.StatusServiceUnavailable, "", "no save store configured")
		return
	}

	id := r.PathValue("id")
	ps, ok := sessions.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "", "session not found")
		return
	}

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid JSON")
		return
	}
	if req.Slot == "" {
		writeError(w, http.StatusBadRequest, "", "slot required")
		return
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if err := saveStore.Save(req.Slot, ps.st, s); err != nil {
		writeError(w, http.StatusInternalServerError, "persistence", err.Error())
		return
	}

	mirrorSaveToJournal(req.Slot, ps.st, s)
	SetSaveLastSuccess()
	events.Emit("info", "session.saved", "", map[string]interface{}{
		"session_id": id,
		"slot":       req.Slot,
		"scene_id":   ps.st.Scene,
	})
	writeJSON(w, SaveResponse{OK: true, Slot: req.Slot})
}

type LoadRequest struct {
	Slot string `json:"slot"`
}

func loadSessionHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionStory(w)
	if !ok {
		return
	}
	if saveStore == nil {
		writeError(w, http.StatusServiceUnavailable, "", "no save store configured")
		return
	}

	var req LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid JSON")
		return
	}
	if req.Slot == "" {
		writeError(w, http.StatusBadRequest, "", "slot required")
		return
	}

	st, err := saveStore.Load(req.Slot, s)
	if err != nil {
		var lerr *session.LoadError
		switch {
		case errors.As(err, &lerr):
			writeError(w, http.StatusConflict, string(lerr.Kind), lerr.Error())
		case errors.Is(err, fs.ErrNotExist):
			writeError(w, http.StatusNotFound, "persistence", "no such save slot")
		default:
			writeError(w, http.StatusInternalServerError, "persistence", err.Error())
		}
		return
	}

	id, ps := sessions.add(st)
	events.Emit("info", "session.loaded", "", map[string]interface{}{
		"session_id": id,
		"slot":       req.Slot,
		"scene_id":   st.Scene,
	})

	ps.mu.Lock()
	defer ps.mu.Unlock()
	sessionResponse(w, id, ps.st)
}

func listSavesHandler(w http.ResponseWriter, r *http.Request) {
	if saveStore == nil {
		writeError(w, http.StatusServiceUnavailable, "", "no save store configured")
		return
	}
	infos, err := saveStore.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "persistence", err.Error())
		return
	}
	writeJSON(w, infos)
}

func deleteSaveHandler(w http.ResponseWriter, r *http.Request) {
	if saveStore == nil {
		writeError(w, http.StatusServiceUnavailable, "", "no save store configured")
		return
	}

	slot := r.PathValue("slot")
	if err := saveStore.Delete(slot); err != nil {
		writeError(w, http.StatusInternalServerError, "persistence", err.Error())
		return
	}
	if client := events.GetPostgresClient(); client != nil {
		_ = client.DeleteSave(slot)
	}
	events.Emit("info", "session.deleted", "", map[string]interface{}{"slot": slot})
	writeJSON(w, SaveResponse{OK: true, Slot: slot})
}

// mirrorSaveToJournal copies the snapshot to Postgres when available. File
// saves are the source of truth; the mirror is best effort.
func mirrorSaveToJournal(slot string, st *game.State, s *story.Story) {
	client := events.GetPostgresClient()
	if client == nil {
		return
	}
	data, err := session.Encode(st, s)
	if err != nil {
		return
	}
	snap, err := session.Peek(data)
	if err != nil {
		return
	}
	_ = client.PutSave(slot, st.Scene, snap.SavedAt, data)
}
