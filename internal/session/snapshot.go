// Package session serializes play sessions to a versioned YAML snapshot and
// restores them, enforcing the compatibility checks a load must pass.
package session

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inkdrift/inkdrift/internal/game"
	"github.com/inkdrift/inkdrift/internal/story"
)

// FormatVersion is the newest snapshot format this build can read.
const FormatVersion = 1

// LoadErrorKind distinguishes why a snapshot was rejected.
type LoadErrorKind string

const (
	LoadVersionMismatch   LoadErrorKind = "version_mismatch"
	LoadStoryMismatch     LoadErrorKind = "story_mismatch"
	LoadDanglingReference LoadErrorKind = "dangling_reference"
	LoadCorrupt           LoadErrorKind = "corrupt"
)

// LoadError reports a rejected snapshot. The caller's in-memory session, if
// any, remains usable after a failed load.
type LoadError struct {
	Kind   LoadErrorKind
	Detail string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load session (%s): %s", e.Kind, e.Detail)
}

// Snapshot is the persisted unit: identity of the story it belongs to plus
// the full player state.
type Snapshot struct {
	FormatVersion int         `yaml:"format_version"`
	StoryID       string      `yaml:"story_id"`
	StoryChecksum string      `yaml:"story_checksum"`
	SavedAt       time.Time   `yaml:"saved_at"`
	State         stateRecord `yaml:"state"`
}

type stateRecord struct {
	Scene     string         `yaml:"scene"`
	Stats     map[string]int `yaml:"stats,omitempty"`
	Inventory map[string]int `yaml:"inventory,omitempty"`
	Flags     []string       `yaml:"flags,omitempty"`
	History   []string       `yaml:"history"`
}

// Encode serializes a player state for the given story.
func Encode(st *game.State, s *story.Story) ([]byte, error) {
	snap := Snapshot{
		FormatVersion: FormatVersion,
		StoryID:       s.Meta.ID,
		StoryChecksum: s.Checksum(),
		SavedAt:       time.Now().UTC(),
		State: stateRecord{
			Scene:     st.Scene,
			Stats:     st.Stats,
			Inventory: st.Inventory,
			Flags:     st.FlagList(),
			History:   st.History,
		},
	}
	return yaml.Marshal(&snap)
}

// Decode parses and verifies a snapshot against the story it will resume,
// returning a player state observably equal to the one saved.
//
// Unknown stat, item, and flag names are tolerated for forward
// compatibility; scene ids absent from the story are not.
func Decode(data []byte, s *story.Story) (*game.State, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, &LoadError{Kind: LoadCorrupt, Detail: err.Error()}
	}

	if snap.FormatVersion > FormatVersion {
		return nil, &LoadError{
			Kind:   LoadVersionMismatch,
			Detail: fmt.Sprintf("snapshot format %d is newer than supported %d", snap.FormatVersion, FormatVersion),
		}
	}
	if snap.FormatVersion < 1 {
		return nil, &LoadError{Kind: LoadCorrupt, Detail: "snapshot carries no format version"}
	}

	if snap.StoryID != s.Meta.ID {
		return nil, &LoadError{
			Kind:   LoadStoryMismatch,
			Detail: fmt.Sprintf("snapshot belongs to story %q, loaded story is %q", snap.StoryID, s.Meta.ID),
		}
	}
	if snap.StoryChecksum != s.Checksum() {
		return nil, &LoadError{
			Kind:   LoadStoryMismatch,
			Detail: fmt.Sprintf("story %q content has changed since this session was saved", snap.StoryID),
		}
	}

	if _, ok := s.Scene(snap.State.Scene); !ok {
		return nil, &LoadError{
			Kind:   LoadDanglingReference,
			Detail: fmt.Sprintf("current scene %q does not exist in the story", snap.State.Scene),
		}
	}
	for _, id := range snap.State.History {
		if _, ok := s.Scene(id); !ok {
			return nil, &LoadError{
				Kind:   LoadDanglingReference,
				Detail: fmt.Sprintf("history scene %q does not exist in the story", id),
			}
		}
	}

	st := &game.State{
		StoryID:   snap.StoryID,
		Scene:     snap.State.Scene,
		Stats:     snap.State.Stats,
		Inventory: snap.State.Inventory,
		Flags:     make(map[string]bool, len(snap.State.Flags)),
		History:   snap.State.History,
	}
	if st.Stats == nil {
		st.Stats = make(map[string]int)
	}
	if st.Inventory == nil {
		st.Inventory = make(map[string]int)
	}
	for _, f := range snap.State.Flags {
		st.Flags[f] = true
	}
	return st, nil
}

// Peek parses a snapshot without verifying it against a story. Used for
// listing save slots.
func Peek(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, &LoadError{Kind: LoadCorrupt, Detail: err.Error()}
	}
	return &snap, nil
}
