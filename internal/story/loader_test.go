package story

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const crossroadsDoc = `
version: 1
meta:
  id: crossroads
  title: The Crossroads
start: start
stats:
  - name: courage
    initial: 0
    min: 0
    max: 10
scenes:
  - id: start
    variants:
      - text: "You stand at a crossroads."
    choices:
      - label: "Go left"
        target: forest
        effects:
          - stat: courage
            delta: 1
      - label: "Go right"
        target: cave
        visible_when:
          stat: courage
          op: gte
          value: 1
  - id: forest
    variants:
      - text: "Tall trees close in around you."
    choices:
      - label: "Walk on"
        target: ending
  - id: cave
    variants:
      - text: "The cave mouth yawns."
    choices:
      - label: "Turn back"
        target: start
  - id: ending
    ending: true
    variants:
      - text: "Your journey ends here."
`

func TestParseValidStory(t *testing.T) {
	s, err := Parse([]byte(crossroadsDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Meta.ID != "crossroads" {
		t.Errorf("meta.id = %q, want %q", s.Meta.ID, "crossroads")
	}
	if s.Start != "start" {
		t.Errorf("start = %q, want %q", s.Start, "start")
	}
	if len(s.Scenes) != 4 {
		t.Fatalf("got %d scenes, want 4", len(s.Scenes))
	}

	sc, ok := s.Scene("start")
	if !ok {
		t.Fatal("scene start not found by id")
	}
	if len(sc.Choices) != 2 {
		t.Errorf("start has %d choices, want 2", len(sc.Choices))
	}
	if sc.Choices[1].VisibleWhen == nil {
		t.Error("second choice should carry a visibility condition")
	}

	end, _ := s.Scene("ending")
	if !end.Ending {
		t.Error("ending scene should be terminal")
	}

	if s.Checksum() == "" {
		t.Error("checksum should be set after parse")
	}

	def, ok := s.Stat("courage")
	if !ok {
		t.Fatal("stat courage not declared")
	}
	if def.Min == nil || *def.Min != 0 || def.Max == nil || *def.Max != 10 {
		t.Error("courage bounds not parsed")
	}
}

func TestParseChecksumTracksContent(t *testing.T) {
	a, err := Parse([]byte(crossroadsDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Parse([]byte(crossroadsDoc + "\n# trailing comment\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Checksum() == b.Checksum() {
		t.Error("different source bytes should produce different checksums")
	}
}

func TestParseRejectsUnknownVersion(t *testing.T) {
	doc := strings.Replace(crossroadsDoc, "version: 1", "version: 99", 1)
	if _, err := Parse([]byte(doc)); err == nil {
		t.Error("expected error for unsupported story version")
	}
}

func TestParseRejectsDanglingTarget(t *testing.T) {
	doc := strings.Replace(crossroadsDoc, "target: forest", "target: nowhere", 1)
	_, err := Parse([]byte(doc))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if !anyContains(verr.Problems, `target scene "nowhere" does not exist`) {
		t.Errorf("problems do not name the dangling target: %v", verr.Problems)
	}
}

func TestParseRejectsMissingStart(t *testing.T) {
	doc := strings.Replace(crossroadsDoc, "start: start", "start: missing", 1)
	_, err := Parse([]byte(doc))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestParseRejectsDuplicateSceneID(t *testing.T) {
	doc := crossroadsDoc + `
  - id: forest
    variants:
      - text: "Duplicate."
`
	_, err := Parse([]byte(doc))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if !anyContains(verr.Problems, `duplicate scene id "forest"`) {
		t.Errorf("problems do not name the duplicate: %v", verr.Problems)
	}
}

func TestParseRejectsBadStatBounds(t *testing.T) {
	doc := strings.Replace(crossroadsDoc, "max: 10", "max: -5", 1)
	_, err := Parse([]byte(doc))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestParseRejectsEndingWithChoices(t *testing.T) {
	doc := strings.Replace(crossroadsDoc, "  - id: ending\n    ending: true\n    variants:",
		"  - id: ending\n    ending: true\n    choices:\n      - label: \"Keep going\"\n        target: start\n    variants:", 1)
	_, err := Parse([]byte(doc))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestParseRejectsBadOperator(t *testing.T) {
	doc := strings.Replace(crossroadsDoc, "op: gte", "op: above", 1)
	_, err := Parse([]byte(doc))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if !anyContains(verr.Problems, `unknown stat operator "above"`) {
		t.Errorf("problems do not name the operator: %v", verr.Problems)
	}
}

func TestParseRejectsTwoFallbackVariants(t *testing.T) {
	doc := strings.Replace(crossroadsDoc,
		`      - text: "Tall trees close in around you."`,
		"      - text: \"Tall trees close in around you.\"\n      - text: \"Second fallback.\"", 1)
	_, err := Parse([]byte(doc))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestParseRejectsCorruptYAML(t *testing.T) {
	if _, err := Parse([]byte("version: [not a story")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.yaml")
	if err := os.WriteFile(path, []byte(crossroadsDoc), 0644); err != nil {
		t.Fatalf("failed to write story file: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Meta.ID != "crossroads" {
		t.Errorf("got story id %q, want %q", s.Meta.ID, "crossroads")
	}
	if s.Checksum() == "" {
		t.Error("expected non-empty checksum")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func anyContains(problems []string, substr string) bool {
	for _, p := range problems {
		if strings.Contains(p, substr) {
			return true
		}
	}
	return false
}
