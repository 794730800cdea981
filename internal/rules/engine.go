// Package rules provides CEL-Go based ordered rule lists.
//
// A RuleSet holds (predicate, outcome) pairs. Evaluation walks the list in
// order and returns the first rule whose predicate is true, so the priority
// order is data rather than nested branches.
package rules

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// ErrNoMatch is returned when no rule in a set matches.
var ErrNoMatch = errors.New("no rule matched")

// Variable declares a name that rule expressions may reference.
type Variable struct {
	Name string
	Type *cel.Type
}

// Bool declares a boolean variable.
func Bool(name string) Variable { return Variable{Name: name, Type: cel.BoolType} }

// Int declares an integer variable. Activations must supply int64 values.
func Int(name string) Variable { return Variable{Name: name, Type: cel.IntType} }

// Double declares a floating point variable.
func Double(name string) Variable { return Variable{Name: name, Type: cel.DoubleType} }

// String declares a string variable.
func String(name string) Variable { return Variable{Name: name, Type: cel.StringType} }

// Engine is a CEL environment that compiles rule predicates.
type Engine struct {
	env *cel.Env
}

// NewEngine creates an engine whose expressions can reference vars.
func NewEngine(vars ...Variable) (*Engine, error) {
	opts := make([]cel.EnvOption, 0, len(vars))
	for _, v := range vars {
		opts = append(opts, cel.Variable(v.Name, v.Type))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{env: env}, nil
}

// Rule pairs a predicate expression with the outcome it selects.
type Rule[T any] struct {
	ID         string
	Expression string
	Outcome    T
}

// RuleSet is an ordered, compiled list of rules. It is immutable and safe
// for concurrent use.
type RuleSet[T any] struct {
	rules []compiledRule[T]
}

type compiledRule[T any] struct {
	rule    Rule[T]
	program cel.Program
}

// Compile compiles rules in order. Every expression must return bool and
// every rule ID must be unique.
func Compile[T any](e *Engine, rules []Rule[T]) (*RuleSet[T], error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("rule set is empty")
	}

	seen := make(map[string]bool, len(rules))
	compiled := make([]compiledRule[T], 0, len(rules))

	for _, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule id is required")
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule id %s", r.ID)
		}
		seen[r.ID] = true

		program, err := e.compile(r.ID, r.Expression)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule[T]{rule: r, program: program})
	}

	return &RuleSet[T]{rules: compiled}, nil
}

func (e *Engine) compile(id, expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", id, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("rule %s: expression must return bool, got %s", id, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for rule %s: %w", id, err)
	}
	return program, nil
}

// First evaluates the rules in order and returns the first match.
// An evaluation error stops the walk; later rules are never consulted.
func (s *RuleSet[T]) First(activation map[string]any) (Rule[T], error) {
	for _, cr := range s.rules {
		out, _, err := cr.program.Eval(activation)
		if err != nil {
			return Rule[T]{}, fmt.Errorf("evaluate rule %s: %w", cr.rule.ID, err)
		}
		if matched, ok := out.(types.Bool); ok && bool(matched) {
			return cr.rule, nil
		}
	}
	return Rule[T]{}, ErrNoMatch
}

// Rules returns the rules in evaluation order.
func (s *RuleSet[T]) Rules() []Rule[T] {
	out := make([]Rule[T], len(s.rules))
	for i, cr := range s.rules {
		out[i] = cr.rule
	}
	return out
}
