package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/inkdrift/inkdrift/internal/game"
	"github.com/inkdrift/inkdrift/internal/story"
)

// PersistenceError reports an I/O failure while writing or reading a save
// slot. A failed save leaves the existing slot untouched.
type PersistenceError struct {
	Op   string
	Slot string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save slot %q: %s failed: %v", e.Slot, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// SlotInfo describes one save slot without loading it into play.
type SlotInfo struct {
	Slot    string    `json:"slot"`
	StoryID string    `json:"story_id"`
	Scene   string    `json:"scene"`
	SavedAt time.Time `json:"saved_at"`
}

// FileStore keeps one snapshot file per named slot under a directory.
// Writes go to a temporary file first and replace the slot atomically, so a
// failed save never corrupts an existing one.
type FileStore struct {
	dir string
}

// NewFileStore creates the store, making the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create saves dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save encodes the state and atomically writes it to the named slot.
func (fs *FileStore) Save(slot string, st *game.State, s *story.Story) error {
	if err := checkSlotName(slot); err != nil {
		return err
	}

	data, err := Encode(st, s)
	if err != nil {
		return &PersistenceError{Op: "encode", Slot: slot, Err: err}
	}

	final := fs.slotPath(slot)
	tmp, err := os.CreateTemp(fs.dir, "."+slot+".tmp-*")
	if err != nil {
		return &PersistenceError{Op: "create temp file", Slot: slot, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &PersistenceError{Op: "write", Slot: slot, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &PersistenceError{Op: "sync", Slot: slot, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &PersistenceError{Op: "close", Slot: slot, Err: err}
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return &PersistenceError{Op: "rename", Slot: slot, Err: err}
	}
	return nil
}

// Load reads the named slot and verifies it against the story.
func (fs *FileStore) Load(slot string, s *story.Story) (*game.State, error) {
	if err := checkSlotName(slot); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fs.slotPath(slot))
	if err != nil {
		return nil, &PersistenceError{Op: "read", Slot: slot, Err: err}
	}
	return Decode(data, s)
}

// List describes every readable slot, newest first. Unreadable files are
// skipped rather than failing the whole listing.
func (fs *FileStore) List() ([]SlotInfo, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read saves dir: %w", err)
	}

	infos := []SlotInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(fs.dir, name))
		if err != nil {
			continue
		}
		snap, err := Peek(data)
		if err != nil {
			continue
		}
		infos = append(infos, SlotInfo{
			Slot:    strings.TrimSuffix(name, ".yaml"),
			StoryID: snap.StoryID,
			Scene:   snap.State.Scene,
			SavedAt: snap.SavedAt,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].SavedAt.After(infos[j].SavedAt) })
	return infos, nil
}

// Delete removes the named slot. Deleting a missing slot is not an error.
func (fs *FileStore) Delete(slot string) error {
	if err := checkSlotName(slot); err != nil {
		return err
	}
	if err := os.Remove(fs.slotPath(slot)); err != nil && !os.IsNotExist(err) {
		return &PersistenceError{Op: "delete", Slot: slot, Err: err}
	}
	return nil
}

func (fs *FileStore) slotPath(slot string) string {
	return filepath.Join(fs.dir, slot+".yaml")
}

// checkSlotName rejects names that could escape the saves directory.
func checkSlotName(slot string) error {
	if slot == "" {
		return fmt.Errorf("empty save slot name")
	}
	for _, r := range slot {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("invalid save slot name %q", slot)
		}
	}
	return nil
}
