// Package abtest assigns UI variants and aggregates view and conversion
// counters for the two-variant layout experiment.
package abtest

import "math/rand/v2"

// Variant is one of the two UI treatments: A renders cards, B renders a table.
type Variant string

const (
	A Variant = "A"
	B Variant = "B"
)

// ParseVariant accepts exactly "A" or "B".
func ParseVariant(raw string) (Variant, bool) {
	switch Variant(raw) {
	case A:
		return A, true
	case B:
		return B, true
	default:
		return "", false
	}
}

// Assigner draws a fresh variant on every call. It keeps no record of past
// draws; callers that need a sticky variant must store and replay it.
type Assigner struct {
	float64 func() float64
}

// NewAssigner returns an Assigner using src as a uniform source on [0,1).
// A nil src uses the process-wide generator.
func NewAssigner(src func() float64) *Assigner {
	if src == nil {
		src = rand.Float64
	}
	return &Assigner{float64: src}
}

func (a *Assigner) Assign() Variant {
	if a.float64() < 0.5 {
		return A
	}
	return B
}
