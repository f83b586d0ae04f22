// Package story defines the immutable story catalog: scenes, variants,
// choices, conditions, and effects, loaded once from a YAML document.
package story

// Story is the top-level container loaded from YAML.
// Immutable after a successful Load.
type Story struct {
	Version int       `yaml:"version"`
	Meta    Metadata  `yaml:"meta"`
	Start   string    `yaml:"start"`
	Stats   []StatDef `yaml:"stats,omitempty"`
	Scenes  []Scene   `yaml:"scenes"`

	byID     map[string]*Scene
	checksum string
}

// Metadata identifies a story independently of its content.
type Metadata struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Author  string `yaml:"author,omitempty"`
	Version string `yaml:"version,omitempty"`
}

// StatDef declares a statistic with its starting value and optional bounds.
// When Min or Max is declared, values are clamped to it after every effect.
type StatDef struct {
	Name    string `yaml:"name"`
	Initial int    `yaml:"initial"`
	Min     *int   `yaml:"min,omitempty"`
	Max     *int   `yaml:"max,omitempty"`
}

// Scene is one narrative beat. Variants are tried in declared order and the
// first whose condition holds supplies the text. A scene with Ending set
// terminates the session; ending scenes carry no choices.
type Scene struct {
	ID       string    `yaml:"id"`
	Variants []Variant `yaml:"variants"`
	Choices  []Choice  `yaml:"choices,omitempty"`
	Ending   bool      `yaml:"ending,omitempty"`
	OnEnter  []Effect  `yaml:"on_enter,omitempty"`
}

// Variant is one conditional rendering of a scene. A nil When always matches.
type Variant struct {
	Text string     `yaml:"text"`
	When *Condition `yaml:"when,omitempty"`
}

// Choice is a player-selectable transition to another scene.
// VisibleWhen hides the choice entirely when unsatisfied; EnabledWhen shows
// it greyed out. Effects run in declared order when the choice is taken.
type Choice struct {
	Label       string     `yaml:"label"`
	Target      string     `yaml:"target"`
	VisibleWhen *Condition `yaml:"visible_when,omitempty"`
	EnabledWhen *Condition `yaml:"enabled_when,omitempty"`
	Effects     []Effect   `yaml:"effects,omitempty"`
}

// Scene returns the scene with the given id, if present.
func (s *Story) Scene(id string) (*Scene, bool) {
	sc, ok := s.byID[id]
	return sc, ok
}

// Stat returns the declaration for a statistic name, if declared.
func (s *Story) Stat(name string) (*StatDef, bool) {
	for i := range s.Stats {
		if s.Stats[i].Name == name {
			return &s.Stats[i], true
		}
	}
	return nil, false
}

// Checksum returns the hex SHA-256 of the source document the story was
// loaded from. Used to match save files against story content.
func (s *Story) Checksum() string {
	return s.checksum
}

func (s *Story) index() {
	s.byID = make(map[string]*Scene, len(s.Scenes))
	for i := range s.Scenes {
		s.byID[s.Scenes[i].ID] = &s.Scenes[i]
	}
}
