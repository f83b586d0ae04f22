package game

import (
	"github.com/inkdrift/inkdrift/internal/story"
)

// Status describes what the engine will accept next for a given state.
type Status string

const (
	StatusAwaitingChoice Status = "awaiting_choice"
	StatusEnded          Status = "ended"
	StatusError          Status = "error"
)

// Presentation is the render-ready view of the current scene. Hidden
// choices are omitted entirely; disabled choices are included but flagged.
type Presentation struct {
	SceneID string       `json:"scene_id"`
	Text    string       `json:"text"`
	Ended   bool         `json:"ended"`
	Choices []ChoiceView `json:"choices"`
}

// ChoiceView is one visible choice as presented to the player.
type ChoiceView struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// Outcome reports the result of a successful choice.
type Outcome struct {
	SceneID string `json:"scene_id"`
	Ended   bool   `json:"ended"`
}

// Engine advances player states through one story. The story is read-only
// and may be shared by any number of states; each call takes the state it
// operates on explicitly, so one engine serves multiple sessions.
type Engine struct {
	story    *story.Story
	emitFunc func(name string, fields map[string]interface{})
}

// NewEngine creates an engine for a validated story.
func NewEngine(s *story.Story) *Engine {
	return &Engine{story: s}
}

// SetEmitFunc installs an event callback invoked as the engine acts.
func (e *Engine) SetEmitFunc(fn func(name string, fields map[string]interface{})) {
	e.emitFunc = fn
}

// Story returns the story this engine runs.
func (e *Engine) Story() *story.Story {
	return e.story
}

// NewGame creates a fresh state at the story's start scene, seeding stats
// from their declared initial values and running the start scene's entry
// effects.
func (e *Engine) NewGame() *State {
	st := &State{
		StoryID:   e.story.Meta.ID,
		Scene:     e.story.Start,
		Stats:     make(map[string]int),
		Inventory: make(map[string]int),
		Flags:     make(map[string]bool),
		History:   []string{e.story.Start},
	}
	for _, def := range e.story.Stats {
		st.Stats[def.Name] = def.Initial
	}

	e.emit("game.started", map[string]interface{}{"story_id": st.StoryID, "scene_id": st.Scene})
	if sc, ok := e.story.Scene(st.Scene); ok {
		e.enterScene(st, sc)
	}
	return st
}

// Status reports what the engine will accept next for this state.
func (e *Engine) Status(st *State) Status {
	sc, ok := e.story.Scene(st.Scene)
	if !ok {
		return StatusError
	}
	if sc.Ending {
		return StatusEnded
	}
	return StatusAwaitingChoice
}

// Present computes the current scene view. It is read-only: calling it
// twice with unchanged state yields identical results.
func (e *Engine) Present(st *State) (*Presentation, error) {
	sc, ok := e.story.Scene(st.Scene)
	if !ok {
		return nil, &SceneMissingError{Scene: st.Scene}
	}

	p := &Presentation{
		SceneID: sc.ID,
		Text:    e.variantText(sc, st),
		Ended:   sc.Ending,
		Choices: []ChoiceView{},
	}
	for i := range sc.Choices {
		ch := &sc.Choices[i]
		if !Eval(ch.VisibleWhen, st) {
			continue
		}
		p.Choices = append(p.Choices, ChoiceView{
			Label:   ch.Label,
			Enabled: Eval(ch.EnabledWhen, st),
		})
	}
	return p, nil
}

// Choose takes the index-th visible choice of the current scene. Indices
// count visible choices only, in declared order, matching Present. All
// rejection checks run before any mutation, so a failed Choose leaves the
// state untouched.
func (e *Engine) Choose(st *State, index int) (*Outcome, error) {
	sc, ok := e.story.Scene(st.Scene)
	if !ok {
		return nil, &SceneMissingError{Scene: st.Scene}
	}
	if sc.Ending {
		return nil, &ChoiceError{Kind: ChoiceSessionEnded, Scene: sc.ID, Index: index}
	}

	var visible []*story.Choice
	for i := range sc.Choices {
		if Eval(sc.Choices[i].VisibleWhen, st) {
			visible = append(visible, &sc.Choices[i])
		}
	}
	if index < 0 || index >= len(visible) {
		return nil, &ChoiceError{Kind: ChoiceOutOfRange, Scene: sc.ID, Index: index}
	}

	ch := visible[index]
	if !Eval(ch.EnabledWhen, st) {
		return nil, &ChoiceError{Kind: ChoiceDisabled, Scene: sc.ID, Index: index}
	}
	target, ok := e.story.Scene(ch.Target)
	if !ok {
		return nil, &SceneMissingError{Scene: ch.Target}
	}

	// Effects run in declared order; later effects see earlier results.
	for _, eff := range ch.Effects {
		e.applyEffect(st, eff)
	}

	st.Scene = target.ID
	st.History = append(st.History, target.ID)
	e.emit("choice.made", map[string]interface{}{
		"scene_id": sc.ID,
		"label":    ch.Label,
		"target":   target.ID,
	})
	e.enterScene(st, target)

	if target.Ending {
		e.emit("game.ended", map[string]interface{}{"scene_id": target.ID})
	}
	return &Outcome{SceneID: target.ID, Ended: target.Ending}, nil
}

func (e *Engine) enterScene(st *State, sc *story.Scene) {
	e.emit("scene.entered", map[string]interface{}{"scene_id": sc.ID})
	for _, eff := range sc.OnEnter {
		e.applyEffect(st, eff)
	}
}

func (e *Engine) applyEffect(st *State, eff story.Effect) {
	st.Apply(eff, e.story)

	switch {
	case eff.Stat != "":
		e.emit("stat.changed", map[string]interface{}{"stat": eff.Stat, "value": st.Stat(eff.Stat)})
	case eff.AddItem != "":
		e.emit("item.added", map[string]interface{}{"item": eff.AddItem, "quantity": st.ItemCount(eff.AddItem)})
	case eff.RemoveItem != "":
		e.emit("item.removed", map[string]interface{}{"item": eff.RemoveItem, "quantity": st.ItemCount(eff.RemoveItem)})
	case eff.SetFlag != "":
		e.emit("flag.set", map[string]interface{}{"flag": eff.SetFlag})
	case eff.ClearFlag != "":
		e.emit("flag.cleared", map[string]interface{}{"flag": eff.ClearFlag})
	}
}

func (e *Engine) variantText(sc *story.Scene, st *State) string {
	for i := range sc.Variants {
		if Eval(sc.Variants[i].When, st) {
			return sc.Variants[i].Text
		}
	}
	// No matching variant: present empty text rather than failing.
	return ""
}

func (e *Engine) emit(name string, fields map[string]interface{}) {
	if e.emitFunc != nil {
		e.emitFunc(name, fields)
	}
}
