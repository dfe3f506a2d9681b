package sat

import "github.com/rhartert/yagh"

// Policy is the branching-policy capability (§4.J, §9 "dynamic dispatch over
// policies"): a narrow interface rather than a virtual-call hierarchy, so the
// engine can be driven by either its own activity-based VarOrder (useful for
// generic SAT solving, e.g. cmd/satbench) or a domain-specific policy such as
// the dependency resolver's installed-first policy.
type Policy interface {
	// NextDecision returns the next literal to assume. Called only when at
	// least one variable is unassigned.
	NextDecision(s *Solver) Literal
	// OnUnassign is called when a variable is unassigned by cancel, so
	// activity-based policies can reinsert it into their candidate set.
	OnUnassign(v int)
	// AddVar is called once per newly allocated variable.
	AddVar(v int)
}

// VarOrder is the engine's default Policy: a VSIDS-style activity ordering
// backed by a binary heap (github.com/rhartert/yagh), matching the teacher's
// own branching heuristic.
type VarOrder struct {
	heap *yagh.IntMap[float64]

	scores     []float64
	scoreInc   float64
	scoreDecay float64

	phases      []LBool
	phaseSaving bool
}

// NewVarOrder returns an empty VarOrder. decay must be in (0, 1].
func NewVarOrder(decay float64, phaseSaving bool) *VarOrder {
	return &VarOrder{
		heap:        yagh.New[float64](0),
		scoreInc:    1,
		scoreDecay:  decay,
		phaseSaving: phaseSaving,
	}
}

func (vo *VarOrder) AddVar(v int) {
	for len(vo.scores) <= v {
		vo.scores = append(vo.scores, 0)
		vo.phases = append(vo.phases, Unassigned)
	}
	vo.heap.GrowBy(1)
	vo.heap.Put(v, -vo.scores[v])
}

func (vo *VarOrder) OnUnassign(v int) {
	vo.heap.Put(v, -vo.scores[v])
}

// Bump increases v's activity score, rescaling all scores if it would
// overflow the solver's float budget.
func (vo *VarOrder) Bump(v int) {
	vo.scores[v] += vo.scoreInc
	if vo.heap.Contains(v) {
		vo.heap.Put(v, -vo.scores[v])
	}
	if vo.scores[v] > 1e100 {
		vo.rescale()
	}
}

// Decay ages all activities by bumping the shared increment, so recently
// bumped variables matter more than older ones without rewriting every score.
func (vo *VarOrder) Decay() {
	vo.scoreInc /= vo.scoreDecay
	if vo.scoreInc > 1e100 {
		vo.rescale()
	}
}

func (vo *VarOrder) rescale() {
	vo.scoreInc *= 1e-100
	for v, s := range vo.scores {
		vo.scores[v] = s * 1e-100
		if vo.heap.Contains(v) {
			vo.heap.Put(v, -vo.scores[v])
		}
	}
}

func (vo *VarOrder) NextDecision(s *Solver) Literal {
	for {
		top, ok := vo.heap.Pop()
		if !ok {
			panic("sat: VarOrder exhausted with unassigned variables remaining")
		}
		if s.VarValue(top.Elem) != Unassigned {
			continue
		}
		switch vo.phases[top.Elem] {
		case False:
			return Lit(top.Elem, false)
		default:
			return Lit(top.Elem, true)
		}
	}
}

func (vo *VarOrder) savePhase(v int, val LBool) {
	if vo.phaseSaving {
		vo.phases[v] = val
	}
}
