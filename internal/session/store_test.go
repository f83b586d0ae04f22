package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "saves"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return fs
}

func TestFileStoreSaveLoad(t *testing.T) {
	s := testStory(t)
	st := playedState(t, s)
	fs := newTestStore(t)

	if err := fs.Save("slot1", st, s); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := fs.Load("slot1", s)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !got.Equal(st) {
		t.Error("loaded state differs from saved state")
	}
}

func TestFileStoreOverwriteIsAtomic(t *testing.T) {
	s := testStory(t)
	st := playedState(t, s)
	fs := newTestStore(t)

	if err := fs.Save("slot1", st, s); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	st.Flags["second_save"] = true
	if err := fs.Save("slot1", st, s); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got, err := fs.Load("slot1", s)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !got.HasFlag("second_save") {
		t.Error("overwrite did not replace the slot")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		t.Fatalf("failed to read saves dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("saves dir holds %d entries, want 1", len(entries))
	}
}

func TestFileStoreList(t *testing.T) {
	s := testStory(t)
	st := playedState(t, s)
	fs := newTestStore(t)

	if err := fs.Save("older", st, s); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := fs.Save("newer", st, s); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// A corrupt file in the dir is skipped, not fatal.
	if err := os.WriteFile(filepath.Join(fs.dir, "broken.yaml"), []byte("{nope"), 0644); err != nil {
		t.Fatalf("failed to plant corrupt file: %v", err)
	}

	infos, err := fs.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d slots, want 2", len(infos))
	}
	if infos[0].Slot != "newer" {
		t.Errorf("newest slot first: got %q", infos[0].Slot)
	}
	if infos[0].StoryID != "crossroads" || infos[0].Scene != "forest" {
		t.Errorf("slot info = %+v", infos[0])
	}
}

func TestFileStoreDelete(t *testing.T) {
	s := testStory(t)
	fs := newTestStore(t)

	if err := fs.Save("slot1", playedState(t, s), s); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := fs.Delete("slot1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := fs.Load("slot1", s); err == nil {
		t.Error("loading a deleted slot should fail")
	}

	// Deleting again is not an error.
	if err := fs.Delete("slot1"); err != nil {
		t.Errorf("deleting a missing slot should be a no-op, got %v", err)
	}
}

func TestFileStoreRejectsBadSlotNames(t *testing.T) {
	s := testStory(t)
	st := playedState(t, s)
	fs := newTestStore(t)

	for _, slot := range []string{"", "../escape", "a/b", "a b", "dot.dot"} {
		if err := fs.Save(slot, st, s); err == nil {
			t.Errorf("slot %q should be rejected", slot)
		}
	}
}
