package sat

import "fmt"

// Literal is a nonzero signed integer. Its sign denotes polarity and its
// absolute value denotes the variable id. Variable ids are allocated densely
// starting at 1, so Literal(0) is never a valid literal and is reserved as
// the "whole clause" sentinel used by Clause.CalculateReason.
type Literal int32

// Lit returns the literal of variable v with the given polarity. v must be a
// valid variable id (>= 1).
func Lit(v int, positive bool) Literal {
	if positive {
		return Literal(v)
	}
	return Literal(-v)
}

// Var returns the id of the literal's variable.
func (l Literal) Var() int {
	if l < 0 {
		return int(-l)
	}
	return int(l)
}

// IsPositive returns true iff the literal represents its variable directly
// (as opposed to its negation).
func (l Literal) IsPositive() bool {
	return l > 0
}

// Negate returns the opposite literal.
func (l Literal) Negate() Literal {
	return -l
}

func (l Literal) String() string {
	return fmt.Sprintf("%d", int(l))
}

// index maps a literal to a dense, zero-based slot used to index per-literal
// arrays (watch lists, assignment table). Variable v occupies slots
// 2*(v-1) (positive) and 2*(v-1)+1 (negative).
func (l Literal) index() int {
	v := l.Var() - 1
	if l.IsPositive() {
		return v * 2
	}
	return v*2 + 1
}
