// Package validation detects data-quality issues on a tree's effective tags.
// This is part of the Functional Core - no I/O, only pure functions.
package validation

import (
	"github.com/paulmach/orb"

	"github.com/example/treewarden/internal/core/entity"
)

// Severity constants for issue classification.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityTodo    Severity = "todo"
)

// Severity tags an issue.
type Severity string

// KV is one key/value pair of a suggested patch.
type KV struct {
	Key   string
	Value string
}

// Issue is a single finding. Patch is empty when there is no automatic fix.
type Issue struct {
	Message  string
	Severity Severity
	Patch    []KV
}

// Changes converts the suggested patch into a change map.
func (i Issue) Changes() map[string]string {
	out := make(map[string]string, len(i.Patch))
	for _, kv := range i.Patch {
		out[kv.Key] = kv.Value
	}
	return out
}

// HasFix reports whether the issue carries a suggested patch.
func (i Issue) HasFix() bool {
	return len(i.Patch) > 0
}

// Input is everything a rule may look at.
type Input struct {
	Tags     map[string]string
	Point    orb.Point
	Orchards []entity.Orchard
}

// Result groups issues by severity, each list in rule order.
type Result struct {
	Errors   []Issue
	Warnings []Issue
	Todos    []Issue
}

// All returns errors, then warnings, then todos.
func (r Result) All() []Issue {
	out := make([]Issue, 0, len(r.Errors)+len(r.Warnings)+len(r.Todos))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	out = append(out, r.Todos...)
	return out
}

// Empty reports whether no rule fired.
func (r Result) Empty() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0 && len(r.Todos) == 0
}

func (r *Result) add(issue Issue) {
	switch issue.Severity {
	case SeverityError:
		r.Errors = append(r.Errors, issue)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, issue)
	default:
		r.Todos = append(r.Todos, issue)
	}
}

// Rule inspects one input and returns zero or more issues.
type Rule interface {
	Name() string
	Check(in Input) []Issue
}

// Engine evaluates its rules in order.
type Engine struct {
	Rules []Rule
}

// NewEngine returns an engine running the default rule set over the built-in tables.
func NewEngine() Engine {
	return Engine{Rules: DefaultRules()}
}

// Validate runs every rule against the input.
func (e Engine) Validate(in Input) Result {
	if in.Tags == nil {
		in.Tags = map[string]string{}
	}
	var res Result
	for _, rule := range e.Rules {
		for _, issue := range rule.Check(in) {
			res.add(issue)
		}
	}
	return res
}
