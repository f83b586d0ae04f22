package game

import (
	"testing"

	"github.com/inkdrift/inkdrift/internal/story"
)

func evalState() *State {
	return &State{
		Stats:     map[string]int{"courage": 3, "gold": 0},
		Inventory: map[string]int{"torch": 1, "coin": 5},
		Flags:     map[string]bool{"met_hermit": true},
	}
}

func TestEvalNilConditionHolds(t *testing.T) {
	if !Eval(nil, evalState()) {
		t.Error("nil condition should always hold")
	}
}

func TestEvalStatComparisons(t *testing.T) {
	st := evalState()

	cases := []struct {
		name string
		cond story.Condition
		want bool
	}{
		{"gte holds", story.Condition{Stat: "courage", Op: story.OpGTE, Value: 3}, true},
		{"gte fails", story.Condition{Stat: "courage", Op: story.OpGTE, Value: 4}, false},
		{"lte holds", story.Condition{Stat: "courage", Op: story.OpLTE, Value: 3}, true},
		{"eq holds", story.Condition{Stat: "gold", Op: story.OpEQ, Value: 0}, true},
		{"ne holds", story.Condition{Stat: "courage", Op: story.OpNE, Value: 0}, true},
		{"unknown stat reads zero", story.Condition{Stat: "luck", Op: story.OpEQ, Value: 0}, true},
	}

	for _, tc := range cases {
		if got := Eval(&tc.cond, st); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEvalItemsAndFlags(t *testing.T) {
	st := evalState()

	if !Eval(&story.Condition{HasItem: "torch"}, st) {
		t.Error("has_item torch should hold")
	}
	if Eval(&story.Condition{HasItem: "coin", Quantity: 6}, st) {
		t.Error("has_item coin quantity 6 should fail with 5 held")
	}
	if !Eval(&story.Condition{HasItem: "coin", Quantity: 5}, st) {
		t.Error("has_item coin quantity 5 should hold")
	}
	if !Eval(&story.Condition{LacksItem: "sword"}, st) {
		t.Error("lacks_item sword should hold")
	}
	if !Eval(&story.Condition{HasFlag: "met_hermit"}, st) {
		t.Error("has_flag met_hermit should hold")
	}
	if !Eval(&story.Condition{LacksFlag: "betrayed"}, st) {
		t.Error("lacks_flag betrayed should hold")
	}
}

func TestEvalCombinators(t *testing.T) {
	st := evalState()

	all := story.Condition{All: []story.Condition{
		{Stat: "courage", Op: story.OpGTE, Value: 1},
		{HasItem: "torch"},
	}}
	if !Eval(&all, st) {
		t.Error("all with both satisfied should hold")
	}

	any := story.Condition{Any: []story.Condition{
		{HasFlag: "betrayed"},
		{HasItem: "torch"},
	}}
	if !Eval(&any, st) {
		t.Error("any with one satisfied should hold")
	}

	not := story.Condition{Not: &story.Condition{HasFlag: "betrayed"}}
	if !Eval(&not, st) {
		t.Error("not over unset flag should hold")
	}

	nested := story.Condition{All: []story.Condition{
		{Any: []story.Condition{
			{Stat: "courage", Op: story.OpGTE, Value: 10},
			{HasItem: "torch"},
		}},
		{Not: &story.Condition{LacksItem: "coin"}},
	}}
	if !Eval(&nested, st) {
		t.Error("nested combinators should hold")
	}
}

func TestEvalIsPure(t *testing.T) {
	st := evalState()
	before := st.Clone()

	cond := story.Condition{All: []story.Condition{
		{Stat: "courage", Op: story.OpGTE, Value: 1},
		{Not: &story.Condition{HasItem: "sword"}},
	}}
	Eval(&cond, st)
	Eval(&cond, st)

	if !st.Equal(before) {
		t.Error("evaluation must not mutate state")
	}
}
