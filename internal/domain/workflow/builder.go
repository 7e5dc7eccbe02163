package workflow

import (
	"fmt"
	"strings"
)

// TableBuilder collects the permitted transitions of one status enum
type TableBuilder[S Status] struct {
	entity string
	edges  map[S][]S
}

// StateConfiguration configures the outgoing edges of a single status
type StateConfiguration[S Status] struct {
	builder *TableBuilder[S]
	from    S
}

// Table is an immutable adjacency map from a status to the statuses reachable in one step
type Table[S Status] struct {
	entity string
	edges  map[S][]S
}

// NewTableBuilder creates a builder for the named entity type (used in messages)
func NewTableBuilder[S Status](entity string) *TableBuilder[S] {
	return &TableBuilder[S]{
		entity: entity,
		edges:  make(map[S][]S),
	}
}

// Configure returns the configuration for the given status
func (b *TableBuilder[S]) Configure(from S) *StateConfiguration[S] {
	if !from.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", from))
	}
	if _, exists := b.edges[from]; !exists {
		b.edges[from] = nil
	}
	return &StateConfiguration[S]{builder: b, from: from}
}

// Permit allows a transition from the configured status to each target
func (c *StateConfiguration[S]) Permit(to ...S) *StateConfiguration[S] {
	for _, target := range to {
		if !target.IsValid() {
			panic(fmt.Sprintf("invalid target state: %s", target))
		}
		if !contains(c.builder.edges[c.from], target) {
			c.builder.edges[c.from] = append(c.builder.edges[c.from], target)
		}
	}
	return c
}

// Build freezes the configured edges into a Table
func (b *TableBuilder[S]) Build() *Table[S] {
	edges := make(map[S][]S, len(b.edges))
	for from, targets := range b.edges {
		edges[from] = append([]S(nil), targets...)
	}
	return &Table[S]{entity: b.entity, edges: edges}
}

// Entity returns the entity type the table governs
func (t *Table[S]) Entity() string {
	return t.entity
}

// ValidNextStates returns every status reachable from the given one in a single step.
// Terminal statuses return an empty slice.
func (t *Table[S]) ValidNextStates(from S) []S {
	return append([]S{}, t.edges[from]...)
}

// IsValidTransition reports whether to is reachable from from
func (t *Table[S]) IsValidTransition(from, to S) bool {
	return contains(t.edges[from], to)
}

// IsTerminal reports whether the status has no outgoing edges
func (t *Table[S]) IsTerminal(s S) bool {
	return len(t.edges[s]) == 0
}

// NonTerminal returns the statuses that still have outgoing edges, in no particular order
func (t *Table[S]) NonTerminal() []S {
	var out []S
	for from, targets := range t.edges {
		if len(targets) > 0 {
			out = append(out, from)
		}
	}
	return out
}

// InvalidTransitionReason formats a human-readable message listing the valid alternatives
func (t *Table[S]) InvalidTransitionReason(from, to S) string {
	next := t.edges[from]
	if len(next) == 0 {
		return fmt.Sprintf("Cannot transition %s from %s to %s: %s is a terminal status.", t.entity, from, to, from)
	}

	names := make([]string, 0, len(next))
	for _, s := range next {
		names = append(names, string(s))
	}
	return fmt.Sprintf("Cannot transition %s from %s to %s. Valid transitions: %s.",
		t.entity, from, to, strings.Join(names, ", "))
}

// Check returns ErrInvalidTransition wrapped with the reason when the transition is not permitted
func (t *Table[S]) Check(from, to S) error {
	if t.IsValidTransition(from, to) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidTransition, t.InvalidTransitionReason(from, to))
}

func contains[S comparable](list []S, v S) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
