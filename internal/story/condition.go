package story

import "fmt"

// Comparison operators for stat conditions.
const (
	OpGTE = "gte"
	OpLTE = "lte"
	OpEQ  = "eq"
	OpNE  = "ne"
)

// Condition is a closed boolean expression tree over player state.
// Exactly one field group is set per node: a combinator (All, Any, Not) or a
// single predicate (stat comparison, item presence/absence, flag
// presence/absence). Conditions never mutate state.
type Condition struct {
	All []Condition `yaml:"all,omitempty"`
	Any []Condition `yaml:"any,omitempty"`
	Not *Condition  `yaml:"not,omitempty"`

	Stat  string `yaml:"stat,omitempty"`
	Op    string `yaml:"op,omitempty"`
	Value int    `yaml:"value,omitempty"`

	HasItem   string `yaml:"has_item,omitempty"`
	Quantity  int    `yaml:"quantity,omitempty"`
	LacksItem string `yaml:"lacks_item,omitempty"`

	HasFlag   string `yaml:"has_flag,omitempty"`
	LacksFlag string `yaml:"lacks_flag,omitempty"`
}

// validate checks that the node sets exactly one predicate or combinator and
// that any stat comparison uses a known operator. at names the location for
// error messages.
func (c *Condition) validate(at string) []string {
	var problems []string

	set := 0
	if len(c.All) > 0 {
		set++
	}
	if len(c.Any) > 0 {
		set++
	}
	if c.Not != nil {
		set++
	}
	if c.Stat != "" {
		set++
	}
	if c.HasItem != "" {
		set++
	}
	if c.LacksItem != "" {
		set++
	}
	if c.HasFlag != "" {
		set++
	}
	if c.LacksFlag != "" {
		set++
	}

	switch set {
	case 0:
		problems = append(problems, fmt.Sprintf("%s: empty condition", at))
	case 1:
		// ok
	default:
		problems = append(problems, fmt.Sprintf("%s: condition sets more than one predicate", at))
	}

	if c.Stat != "" {
		switch c.Op {
		case OpGTE, OpLTE, OpEQ, OpNE:
		default:
			problems = append(problems, fmt.Sprintf("%s: unknown stat operator %q", at, c.Op))
		}
	}

	for i := range c.All {
		problems = append(problems, c.All[i].validate(fmt.Sprintf("%s/all[%d]", at, i))...)
	}
	for i := range c.Any {
		problems = append(problems, c.Any[i].validate(fmt.Sprintf("%s/any[%d]", at, i))...)
	}
	if c.Not != nil {
		problems = append(problems, c.Not.validate(at+"/not")...)
	}

	return problems
}
