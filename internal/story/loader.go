package story

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidationError reports every structural problem found in a story
// document. A story with any problem is never made playable.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid story: %s", strings.Join(e.Problems, "; "))
}

// Load reads and validates a story document from a file.
func Load(path string) (*Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story file: %w", err)
	}
	return Parse(data)
}

// Parse validates a story document and returns an immutable Story.
// Any structural problem fails the whole parse with a ValidationError.
func Parse(data []byte) (*Story, error) {
	var s Story
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse story YAML: %w", err)
	}

	if s.Version != 1 {
		return nil, fmt.Errorf("unsupported story version: %d", s.Version)
	}

	if problems := validate(&s); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	sum := sha256.Sum256(data)
	s.checksum = hex.EncodeToString(sum[:])
	s.index()
	return &s, nil
}

func validate(s *Story) []string {
	var problems []string

	if s.Meta.ID == "" {
		problems = append(problems, "meta.id is required")
	}
	if s.Start == "" {
		problems = append(problems, "start scene id is required")
	}
	if len(s.Scenes) == 0 {
		problems = append(problems, "story has no scenes")
	}

	seenStats := make(map[string]bool)
	for _, def := range s.Stats {
		if def.Name == "" {
			problems = append(problems, "stat with empty name")
			continue
		}
		if seenStats[def.Name] {
			problems = append(problems, fmt.Sprintf("duplicate stat %q", def.Name))
		}
		seenStats[def.Name] = true
		if def.Min != nil && def.Max != nil && *def.Min > *def.Max {
			problems = append(problems, fmt.Sprintf("stat %q: min %d exceeds max %d", def.Name, *def.Min, *def.Max))
		}
	}

	ids := make(map[string]bool, len(s.Scenes))
	for _, sc := range s.Scenes {
		if sc.ID == "" {
			problems = append(problems, "scene with empty id")
			continue
		}
		if ids[sc.ID] {
			problems = append(problems, fmt.Sprintf("duplicate scene id %q", sc.ID))
		}
		ids[sc.ID] = true
	}

	if s.Start != "" && !ids[s.Start] {
		problems = append(problems, fmt.Sprintf("start scene %q does not exist", s.Start))
	}

	for i := range s.Scenes {
		problems = append(problems, validateScene(&s.Scenes[i], ids)...)
	}

	return problems
}

func validateScene(sc *Scene, ids map[string]bool) []string {
	var problems []string

	if len(sc.Variants) == 0 {
		problems = append(problems, fmt.Sprintf("scene %q has no variants", sc.ID))
	}

	fallbacks := 0
	for i := range sc.Variants {
		v := &sc.Variants[i]
		if v.When == nil {
			fallbacks++
		} else {
			at := fmt.Sprintf("scene %q variant %d", sc.ID, i)
			problems = append(problems, v.When.validate(at)...)
		}
	}
	if fallbacks > 1 {
		problems = append(problems, fmt.Sprintf("scene %q has %d unconditioned variants, want at most one", sc.ID, fallbacks))
	}

	if sc.Ending && len(sc.Choices) > 0 {
		problems = append(problems, fmt.Sprintf("ending scene %q must not have choices", sc.ID))
	}

	for i := range sc.Choices {
		ch := &sc.Choices[i]
		at := fmt.Sprintf("scene %q choice %d (%s)", sc.ID, i, ch.Label)
		if ch.Label == "" {
			problems = append(problems, fmt.Sprintf("scene %q choice %d has no label", sc.ID, i))
		}
		if ch.Target == "" {
			problems = append(problems, at+": no target scene")
		} else if !ids[ch.Target] {
			problems = append(problems, fmt.Sprintf("%s: target scene %q does not exist", at, ch.Target))
		}
		if ch.VisibleWhen != nil {
			problems = append(problems, ch.VisibleWhen.validate(at+" visible_when")...)
		}
		if ch.EnabledWhen != nil {
			problems = append(problems, ch.EnabledWhen.validate(at+" enabled_when")...)
		}
		for j := range ch.Effects {
			problems = append(problems, ch.Effects[j].validate(fmt.Sprintf("%s effect %d", at, j))...)
		}
	}

	for i := range sc.OnEnter {
		problems = append(problems, sc.OnEnter[i].validate(fmt.Sprintf("scene %q on_enter effect %d", sc.ID, i))...)
	}

	return problems
}
