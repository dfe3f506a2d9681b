package sat

import "strings"

type clauseStatus uint8

const (
	statusDeleted   clauseStatus = 0b001
	statusLearnt    clauseStatus = 0b010
	statusProtected clauseStatus = 0b100
)

// Clause is an ordered sequence of distinct literals. Positions 0 and 1 are
// the two watched literals (§3 "Clause"): whenever neither watch is True and
// both are assigned, the clause is in conflict; whenever exactly one watch is
// assigned False and the other unassigned, the clause is unit on that other
// watch.
type Clause struct {
	literals []Literal

	// prevPos caches where the last new watch was found, so the next scan
	// for a replacement watch resumes from there instead of from position 2
	// every time (amortizes long clauses well under repeated propagation).
	prevPos int

	activity float64
	lbd      int
	status   clauseStatus
}

func (c *Clause) isLearnt() bool    { return c.status&statusLearnt != 0 }
func (c *Clause) isDeleted() bool   { return c.status&statusDeleted != 0 }
func (c *Clause) isProtected() bool { return c.status&statusProtected != 0 }
func (c *Clause) setProtected()     { c.status |= statusProtected }
func (c *Clause) clearProtected()   { c.status &^= statusProtected }

// Literals returns the clause's current literals. The slice must not be
// mutated by the caller.
func (c *Clause) Literals() []Literal {
	return c.literals
}

// newClause validates and constructs a clause against the solver's current
// assignment. Non-learnt clauses are deduplicated and simplified against
// root-level facts at construction time; a clause containing its own
// negation is discarded (per §3, it is a tautology). Returns (clause, ok);
// ok is false iff the clause is already falsified at the root level (empty
// clause after simplification), which the caller must treat as UNSAT.
//
// A unit clause is resolved immediately via enqueue and no *Clause is
// allocated for it (nil, true).
func newClause(s *Solver, lits []Literal, learnt bool) (*Clause, bool) {
	size := len(lits)

	if !learnt {
		seen := make(map[Literal]struct{}, size)
		for i := size - 1; i >= 0; i-- {
			if _, ok := seen[lits[i].Negate()]; ok {
				return nil, true // tautology: always true, discard
			}
			if _, ok := seen[lits[i]]; ok {
				size--
				lits[i], lits[size] = lits[size], lits[i]
				continue
			}
			seen[lits[i]] = struct{}{}

			switch s.LitValue(lits[i]) {
			case True:
				return nil, true // already satisfied, discard
			case False:
				size--
				lits[i], lits[size] = lits[size], lits[i]
			}
		}
		lits = lits[:size]
	}

	switch size {
	case 0:
		return nil, false
	case 1:
		// A unit fact needs no clause of its own to carry it; it is still a
		// propagated fact, not a decision, so cancelUntil(0) must never undo
		// it once committed (callers only add unit clauses at level 0).
		return nil, s.enqueue(lits[0], propagatedReason(nil))
	default:
		c := &Clause{
			literals: append([]Literal(nil), lits...),
			prevPos:  2,
		}
		if learnt {
			c.status |= statusLearnt
			maxLevel, wl := -1, -1
			for i, l := range c.literals {
				if lvl := s.level[l.Var()]; lvl > maxLevel {
					maxLevel, wl = lvl, i
				}
			}
			c.literals[wl], c.literals[1] = c.literals[1], c.literals[wl]
		}

		s.watch(c, c.literals[0].Negate(), c.literals[1])
		s.watch(c, c.literals[1].Negate(), c.literals[0])
		return c, true
	}
}

// locked reports whether the clause is the reason for its first literal's
// current assignment (and so must not be deleted by clause GC).
func (c *Clause) locked(s *Solver) bool {
	r := s.reason[c.literals[0].Var()]
	return r.Kind == ReasonPropagated && r.Clause == c
}

// delete removes both watches. Per §5, this must happen atomically before
// the clause itself becomes unreachable, since the watch index holds
// non-owning back-references to it.
func (c *Clause) delete(s *Solver) {
	c.status |= statusDeleted
	s.unwatch(c, c.literals[0].Negate())
	s.unwatch(c, c.literals[1].Negate())
	c.literals = nil
}

// simplify drops literals assigned False at the root level and reports
// whether the clause is now satisfied (and so can be dropped entirely).
// Only valid to call at decision level 0.
func (c *Clause) simplify(s *Solver) bool {
	k := 0
	for _, l := range c.literals {
		switch s.LitValue(l) {
		case True:
			return true
		case False:
			// drop
		default:
			c.literals[k] = l
			k++
		}
	}
	c.literals = c.literals[:k]
	return false
}

// propagate is invoked when Literal l's negation (one of the clause's
// watches) has just become False. It restores the watched-literal invariant
// (§4.A): find a new non-False literal to watch if one exists; otherwise the
// other watch must be enqueued as a unit implication. Returns false iff that
// enqueue fails, meaning this clause is the conflict.
func (c *Clause) propagate(s *Solver, l Literal) bool {
	opp := l.Negate()
	if c.literals[0] == opp {
		c.literals[0], c.literals[1] = c.literals[1], opp
	}

	if s.LitValue(c.literals[0]) == True {
		s.watch(c, l, c.literals[0])
		return true
	}

	if c.prevPos >= len(c.literals) {
		c.prevPos = 2
	}
	for i := c.prevPos; i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			c.literals[1], c.literals[i] = c.literals[i], opp
			c.prevPos = i
			s.watch(c, c.literals[1].Negate(), c.literals[0])
			return true
		}
	}
	for i := 2; i < c.prevPos && i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			c.literals[1], c.literals[i] = c.literals[i], opp
			c.prevPos = i
			s.watch(c, c.literals[1].Negate(), c.literals[0])
			return true
		}
	}

	s.watch(c, l, c.literals[0])
	return s.enqueue(c.literals[0], propagatedReason(c))
}

// CalculateReason returns the negations of the clause's other literals (§4.A
// calculate_reason). When pivot is zero (the "whole clause" sentinel, valid
// because variable ids start at 1), the negations of every literal are
// returned instead, used when the clause itself is the conflict.
func (c *Clause) CalculateReason(pivot Literal) []Literal {
	if pivot == 0 {
		out := make([]Literal, 0, len(c.literals))
		for _, l := range c.literals {
			out = append(out, l.Negate())
		}
		return out
	}
	out := make([]Literal, 0, len(c.literals)-1)
	for _, l := range c.literals[1:] {
		out = append(out, l.Negate())
	}
	return out
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	var sb strings.Builder
	sb.WriteString("Clause[")
	for i, l := range c.literals {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
