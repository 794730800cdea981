package rules

import (
	"errors"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(Bool("flag"), Int("n"), Double("amount"), String("kind"))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return engine
}

func TestCompileAndFirstMatch(t *testing.T) {
	engine := newTestEngine(t)

	set, err := Compile(engine, []Rule[string]{
		{ID: "flagged", Expression: "flag", Outcome: "A"},
		{ID: "big", Expression: "n > 10", Outcome: "B"},
		{ID: "fallback", Expression: "true", Outcome: "C"},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	if n := len(set.Rules()); n != 3 {
		t.Errorf("expected 3 rules, got %d", n)
	}

	tests := []struct {
		name     string
		flag     bool
		n        int64
		expected string
	}{
		{"FirstRuleWinsOverLater", true, 50, "A"},
		{"SecondRule", false, 11, "B"},
		{"Fallback", false, 3, "C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := set.First(map[string]any{
				"flag":   tt.flag,
				"n":      tt.n,
				"amount": 0.0,
				"kind":   "",
			})
			if err != nil {
				t.Fatalf("First failed: %v", err)
			}
			if rule.Outcome != tt.expected {
				t.Errorf("expected outcome %s, got %s (rule %s)", tt.expected, rule.Outcome, rule.ID)
			}
		})
	}
}

func TestNoMatch(t *testing.T) {
	engine := newTestEngine(t)

	set, err := Compile(engine, []Rule[int]{
		{ID: "never", Expression: "false", Outcome: 1},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	_, err = set.First(map[string]any{})
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

func TestCompileRejectsInvalidRules(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name  string
		rules []Rule[int]
	}{
		{"Empty", nil},
		{"MissingID", []Rule[int]{{Expression: "true"}}},
		{"DuplicateID", []Rule[int]{{ID: "a", Expression: "true"}, {ID: "a", Expression: "false"}}},
		{"InvalidSyntax", []Rule[int]{{ID: "bad", Expression: "this is not valid CEL !!!"}}},
		{"UnknownVariable", []Rule[int]{{ID: "unknown", Expression: "missing > 1"}}},
		{"NonBoolOutput", []Rule[int]{{ID: "double", Expression: "amount * 2.0"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(engine, tt.rules); err == nil {
				t.Error("expected compile error")
			}
		})
	}
}

func TestEvaluationErrorStopsWalk(t *testing.T) {
	engine := newTestEngine(t)

	set, err := Compile(engine, []Rule[string]{
		{ID: "needs-n", Expression: "n > 1", Outcome: "A"},
		{ID: "fallback", Expression: "true", Outcome: "B"},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	// n missing from the activation
	if _, err := set.First(map[string]any{}); err == nil {
		t.Error("expected evaluation error for missing variable")
	}
}

func TestRulesPreserveOrder(t *testing.T) {
	engine := newTestEngine(t)

	input := []Rule[string]{
		{ID: "z", Expression: "flag", Outcome: "1"},
		{ID: "a", Expression: "true", Outcome: "2"},
	}
	set, err := Compile(engine, input)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	got := set.Rules()
	for i := range input {
		if got[i].ID != input[i].ID {
			t.Errorf("position %d: expected %s, got %s", i, input[i].ID, got[i].ID)
		}
	}
}
