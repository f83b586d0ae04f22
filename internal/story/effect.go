package story

import "fmt"

// Effect is a single mutation of player state. Exactly one field group is
// set: a stat delta, an inventory add/remove, or a flag set/clear.
// Quantity defaults to 1 for inventory effects.
type Effect struct {
	Stat  string `yaml:"stat,omitempty"`
	Delta int    `yaml:"delta,omitempty"`

	AddItem    string `yaml:"add_item,omitempty"`
	RemoveItem string `yaml:"remove_item,omitempty"`
	Quantity   int    `yaml:"quantity,omitempty"`

	SetFlag   string `yaml:"set_flag,omitempty"`
	ClearFlag string `yaml:"clear_flag,omitempty"`
}

func (e *Effect) validate(at string) []string {
	set := 0
	if e.Stat != "" {
		set++
	}
	if e.AddItem != "" {
		set++
	}
	if e.RemoveItem != "" {
		set++
	}
	if e.SetFlag != "" {
		set++
	}
	if e.ClearFlag != "" {
		set++
	}

	switch set {
	case 0:
		return []string{fmt.Sprintf("%s: empty effect", at)}
	case 1:
		return nil
	default:
		return []string{fmt.Sprintf("%s: effect sets more than one mutation", at)}
	}
}
