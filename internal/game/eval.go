package game

import "github.com/inkdrift/inkdrift/internal/story"

// Eval evaluates a condition tree against player state. It is pure and
// total: unknown stat names read as zero and unknown items or flags as
// absent, so forward-compatible content never errors at runtime. A nil
// condition always holds. All and Any short-circuit.
func Eval(c *story.Condition, st *State) bool {
	if c == nil {
		return true
	}

	switch {
	case len(c.All) > 0:
		for i := range c.All {
			if !Eval(&c.All[i], st) {
				return false
			}
		}
		return true

	case len(c.Any) > 0:
		for i := range c.Any {
			if Eval(&c.Any[i], st) {
				return true
			}
		}
		return false

	case c.Not != nil:
		return !Eval(c.Not, st)

	case c.Stat != "":
		v := st.Stat(c.Stat)
		switch c.Op {
		case story.OpGTE:
			return v >= c.Value
		case story.OpLTE:
			return v <= c.Value
		case story.OpEQ:
			return v == c.Value
		case story.OpNE:
			return v != c.Value
		}
		// Unknown operators are rejected at load time.
		return false

	case c.HasItem != "":
		want := c.Quantity
		if want <= 0 {
			want = 1
		}
		return st.ItemCount(c.HasItem) >= want

	case c.LacksItem != "":
		return st.ItemCount(c.LacksItem) == 0

	case c.HasFlag != "":
		return st.HasFlag(c.HasFlag)

	case c.LacksFlag != "":
		return !st.HasFlag(c.LacksFlag)
	}

	// Empty conditions are rejected at load time.
	return false
}
