package sat

// ReasonKind tags how a trail entry's literal came to be assigned.
type ReasonKind uint8

const (
	// ReasonDecision marks a literal chosen by the branching policy.
	ReasonDecision ReasonKind = iota
	// ReasonPropagated marks a literal forced by unit propagation; Clause
	// is the clause that was unit.
	ReasonPropagated
	// ReasonConflict marks the clause in which propagation discovered a
	// contradiction. The engine's own search never produces it and no trail
	// entry carries it.
	ReasonConflict
)

// Reason replaces the source solver's convention of overloading a nil
// *Clause for both "decision" and "conflict source": here the two cases are
// distinguished explicitly by Kind instead of relying on a shared sentinel.
type Reason struct {
	Kind   ReasonKind
	Clause *Clause
}

var decisionReason = Reason{Kind: ReasonDecision}

func propagatedReason(c *Clause) Reason {
	return Reason{Kind: ReasonPropagated, Clause: c}
}

func conflictReason(c *Clause) Reason {
	return Reason{Kind: ReasonConflict, Clause: c}
}

// IsDecision reports whether the literal was chosen rather than forced.
func (r Reason) IsDecision() bool {
	return r.Kind == ReasonDecision
}
