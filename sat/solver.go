package sat

import (
	"context"
	"fmt"
)

// watcher is a clause registered against one of its two watched literals.
type watcher struct {
	clause *Clause
	// guard is the clause's other watch; if it is already True there is no
	// need to load (or propagate) the clause at all.
	guard Literal
}

// Options configures a Solver. The zero value disables restarts and
// learnt-clause GC (matching §4.E: "a conforming implementation may omit
// restarts").
type Options struct {
	ClauseDecay      float64
	VariableDecay    float64
	PhaseSaving      bool
	EnableRestarts   bool
	RestartThreshold float64 // multiplier of the long-run LBD EMA
	ReduceDBEvery    int     // 0 disables learnt-clause GC
}

// DefaultOptions matches the teacher's own solver defaults.
var DefaultOptions = Options{
	ClauseDecay:      0.999,
	VariableDecay:    0.95,
	PhaseSaving:      false,
	EnableRestarts:   false,
	RestartThreshold: 1.25,
	ReduceDBEvery:    0,
}

// Status is the outcome of a search.
type Status int8

const (
	StatusUnknown Status = iota
	StatusSAT
	StatusUNSAT
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSAT:
		return "SAT"
	case StatusUNSAT:
		return "UNSAT"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// InternalError reports an engine invariant violation (§7): these are
// unreachable in a correct implementation and exist as defence-in-depth
// assertions, so they carry a diagnostic and are never recovered from.
type InternalError struct {
	Msg     string
	Clause  *Clause
	Trail   []Literal
	AtLevel int
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("sat: internal invariant violation: %s (clause=%v trail=%v level=%d)",
		e.Msg, e.Clause, e.Trail, e.AtLevel)
}

// Solver is a watched-literal CDCL engine (§4.A-E). It is single-threaded
// and synchronous (§5): a Solver must never be shared between concurrent
// solves.
type Solver struct {
	opts Options

	constraints []*Clause
	learnts     []*Clause

	clauseInc   float64
	clauseDecay float64

	watchers [][]watcher

	propQueue *litQueue

	assigns []LBool // indexed by Literal.index()

	trail    []Literal
	trailLim []int
	reason   []Reason // indexed by variable id (1-based; index 0 unused)
	level    []int    // indexed by variable id

	unsat bool

	policy Policy

	seen *ResetSet

	tmpWatchers []watcher
	tmpLearnts  []Literal

	lastConflict *Clause

	restartEMAFast EMA
	restartEMASlow EMA

	// Telemetry (§7: "the engine never logs directly; telemetry is exposed
	// as counters and timers on the engine state for the caller to consult").
	Stats Stats
}

// Stats are solver counters exposed for the caller to log/report; the engine
// itself never logs.
type Stats struct {
	Conflicts  int64
	Decisions  int64
	Propagations int64
	Restarts   int64
	LearntsGCed int64
}

// NewSolver returns an empty Solver. Call SetPolicy to override the default
// activity-based branching policy.
func NewSolver(opts Options) *Solver {
	s := &Solver{
		opts:           opts,
		clauseInc:      1,
		clauseDecay:    opts.ClauseDecay,
		propQueue:      newLitQueue(128),
		seen:           NewResetSet(),
		restartEMAFast: NewEMA(0.6),
		restartEMASlow: NewEMA(0.999),
	}
	vo := NewVarOrder(opts.VariableDecay, opts.PhaseSaving)
	s.policy = vo
	return s
}

// NewDefaultSolver returns a Solver configured with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

// SetPolicy overrides the branching policy. Must be called before any
// variables are added.
func (s *Solver) SetPolicy(p Policy) {
	s.policy = p
}

func (s *Solver) decisionLevel() int { return len(s.trailLim) }

// DecisionLevel returns the current decision level (0 = root).
func (s *Solver) DecisionLevel() int { return s.decisionLevel() }

func (s *Solver) NumVariables() int   { return len(s.level) - 1 }
func (s *Solver) NumAssigned() int    { return len(s.trail) }
func (s *Solver) NumConstraints() int { return len(s.constraints) }
func (s *Solver) NumLearnts() int     { return len(s.learnts) }

// VarValue returns the current value of variable v's positive literal.
func (s *Solver) VarValue(v int) LBool {
	return s.assigns[Lit(v, true).index()]
}

// LitValue returns the current value of literal l.
func (s *Solver) LitValue(l Literal) LBool {
	return s.assigns[l.index()]
}

// AddVariable allocates and returns a new variable id (starting at 1).
func (s *Solver) AddVariable() int {
	v := len(s.level)
	if v == 0 {
		// index 0 is unused so that variable ids can start at 1.
		s.level = append(s.level, 0)
		s.reason = append(s.reason, Reason{})
		s.seen.Expand()
		v = 1
	}
	s.assigns = append(s.assigns, Unassigned, Unassigned)
	s.watchers = append(s.watchers, nil, nil)
	s.level = append(s.level, -1)
	s.reason = append(s.reason, Reason{})
	s.seen.Expand()
	s.policy.AddVar(v)
	return v
}

func (s *Solver) watch(c *Clause, on Literal, guard Literal) {
	idx := on.index()
	s.watchers[idx] = append(s.watchers[idx], watcher{clause: c, guard: guard})
}

func (s *Solver) unwatch(c *Clause, on Literal) {
	idx := on.index()
	list := s.watchers[idx]
	j := 0
	for i := range list {
		if list[i].clause != c {
			list[j] = list[i]
			j++
		}
	}
	s.watchers[idx] = list[:j]
}

// AddClause adds a clause to the problem. Must be called at decision level 0
// (§4.C). Returns an error only if called at a non-root level; an
// unsatisfiable clause (e.g. the empty clause) instead flips the solver to
// UNSAT and is reported by the next Solve call, matching §8 S5.
func (s *Solver) AddClause(lits []Literal) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("sat: AddClause called at decision level %d, must be 0", s.decisionLevel())
	}
	if s.unsat {
		return nil
	}
	if len(lits) == 0 {
		s.unsat = true
		s.lastConflict = &Clause{}
		return nil
	}
	c, ok := newClause(s, lits, false)
	if c != nil {
		s.constraints = append(s.constraints, c)
	}
	if !ok {
		// newClause allocates no *Clause when the clause is falsified at the
		// root; it only reorders lits in place, so keep them as the conflict.
		s.unsat = true
		s.lastConflict = &Clause{literals: append([]Literal(nil), lits...)}
	}
	return nil
}

// enqueue records that l has become True. If the variable is already
// assigned, it reports whether the existing value agrees with l (§4.B).
func (s *Solver) enqueue(l Literal, r Reason) bool {
	switch s.LitValue(l) {
	case False:
		return false
	case True:
		return true
	default:
		v := l.Var()
		s.assigns[l.index()] = True
		s.assigns[l.Negate().index()] = False
		s.level[v] = s.decisionLevel()
		s.reason[v] = r
		s.trail = append(s.trail, l)
		s.propQueue.Push(l)
		return true
	}
}

// assume pushes a new decision level and enqueues l as a decision (§4.B).
// Precondition: l's variable is unassigned.
func (s *Solver) assume(l Literal) {
	s.trailLim = append(s.trailLim, len(s.trail))
	s.enqueue(l, decisionReason)
}

func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.Var()
	if vo, ok := s.policy.(*VarOrder); ok {
		vo.savePhase(v, s.assigns[l.index()])
	}
	s.assigns[l.index()] = Unassigned
	s.assigns[l.Negate().index()] = Unassigned
	s.reason[v] = Reason{}
	s.level[v] = -1
	s.trail = s.trail[:len(s.trail)-1]
	s.policy.OnUnassign(v)
}

// cancel undoes every assignment made at the current decision level.
func (s *Solver) cancel() {
	n := len(s.trail) - s.trailLim[len(s.trailLim)-1]
	for ; n > 0; n-- {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
}

// cancelUntil repeatedly cancels until the decision level matches target.
func (s *Solver) cancelUntil(target int) {
	for s.decisionLevel() > target {
		s.cancel()
	}
}

// Propagate drains the propagation queue, returning the conflicting clause
// if one is found (§4.C). On conflict, the queue is left empty and every
// watcher that has not yet been examined is restored to its watch list
// unchanged, so the solver's invariants hold for conflict analysis.
func (s *Solver) Propagate() *Clause {
	for s.propQueue.Size() > 0 {
		l := s.propQueue.Pop()
		s.Stats.Propagations++

		idx := l.index()
		s.tmpWatchers = append(s.tmpWatchers[:0], s.watchers[idx]...)
		s.watchers[idx] = s.watchers[idx][:0]

		for i, w := range s.tmpWatchers {
			if s.LitValue(w.guard) == True {
				s.watchers[idx] = append(s.watchers[idx], w)
				continue
			}
			if w.clause.propagate(s, l) {
				continue
			}
			// Conflict: re-append every watcher not yet examined. The current
			// one is not among them: clause.propagate already re-watched it.
			s.watchers[idx] = append(s.watchers[idx], s.tmpWatchers[i+1:]...)
			s.propQueue.Clear()
			return w.clause
		}
	}
	return nil
}

func (s *Solver) explain(c *Clause, pivot Literal) []Literal {
	return c.CalculateReason(pivot)
}

// analyze performs first-UIP conflict analysis (§4.D), returning the learned
// clause (asserting literal at position 0) and the backjump level.
func (s *Solver) analyze(conflict *Clause) ([]Literal, int) {
	counter := 0
	s.tmpLearnts = append(s.tmpLearnts[:0], 0) // reserve slot 0 for the UIP
	s.seen.Clear()

	current := conflict
	pivot := Literal(0)
	backjumpLevel := 0
	nextTrailIdx := len(s.trail) - 1

	for {
		for _, q := range s.explain(current, pivot) {
			v := q.Var()
			if s.seen.Contains(v) {
				continue
			}
			s.seen.Add(v)
			if s.level[v] == s.decisionLevel() {
				counter++
				continue
			}
			if s.level[v] > 0 {
				s.tmpLearnts = append(s.tmpLearnts, q.Negate())
				if s.level[v] > backjumpLevel {
					backjumpLevel = s.level[v]
				}
			}
		}

		// Walk the trail backward to the next seen variable.
		var v int
		for {
			pivot = s.trail[nextTrailIdx]
			nextTrailIdx--
			v = pivot.Var()
			if s.seen.Contains(v) {
				break
			}
		}
		current = s.reason[v].Clause
		s.seen.Remove(v)
		counter--
		if counter <= 0 {
			break
		}
	}

	s.tmpLearnts[0] = pivot.Negate()
	learned := append([]Literal(nil), s.tmpLearnts...)
	return learned, backjumpLevel
}

// record installs a learned clause, placing its asserting literal at
// position 0 and enqueuing it (§4.E).
func (s *Solver) record(lits []Literal) {
	if len(lits) == 1 {
		s.enqueue(lits[0], propagatedReason(nil))
		return
	}
	c, _ := newClause(s, lits, true)
	s.enqueue(c.literals[0], propagatedReason(c))
	s.learnts = append(s.learnts, c)
	s.bumpClauseActivity(c)
}

func (s *Solver) bumpClauseActivity(c *Clause) {
	c.activity += s.clauseInc
	if c.activity > 1e100 {
		s.clauseInc *= 1e-100
		for _, l := range s.learnts {
			l.activity *= 1e-100
		}
	}
}

func (s *Solver) decayClauseActivity() {
	s.clauseInc *= s.clauseDecay
}

// bumpVars increases the activity of every variable referenced by the
// analyzed conflict, if the policy supports it.
func (s *Solver) bumpVars(lits []Literal) {
	vo, ok := s.policy.(*VarOrder)
	if !ok {
		return
	}
	for _, l := range lits {
		vo.Bump(l.Var())
	}
	vo.Decay()
}

// Simplify drops clauses satisfied at the root level. Valid only at decision
// level 0. Returns false if simplification discovers the problem is UNSAT.
func (s *Solver) Simplify() bool {
	if s.decisionLevel() != 0 {
		panic(&InternalError{Msg: "Simplify called above decision level 0", AtLevel: s.decisionLevel()})
	}
	if s.unsat {
		return false
	}
	if c := s.Propagate(); c != nil {
		s.unsat = true
		s.lastConflict = c
		return false
	}
	s.simplifySet(&s.learnts)
	s.simplifySet(&s.constraints)
	return true
}

func (s *Solver) simplifySet(set *[]*Clause) {
	clauses := *set
	j := 0
	for i := range clauses {
		if clauses[i].simplify(s) {
			clauses[i].delete(s)
		} else {
			clauses[j] = clauses[i]
			j++
		}
	}
	*set = clauses[:j]
}

// reduceLearnts deletes half of the unlocked, low-activity learnt clauses
// (teacher's ReduceDB), an optional GC pass (§9 supplemented feature).
func (s *Solver) reduceLearnts() {
	if len(s.learnts) == 0 {
		return
	}
	lim := s.clauseInc / float64(len(s.learnts))

	sortClausesByActivity(s.learnts)

	kept := s.learnts[:0]
	half := len(s.learnts) / 2
	for i, c := range s.learnts {
		switch {
		case c.locked(s) || c.isProtected():
			kept = append(kept, c)
		case i < half:
			c.delete(s)
			s.Stats.LearntsGCed++
		case c.activity < lim:
			c.delete(s)
			s.Stats.LearntsGCed++
		default:
			kept = append(kept, c)
		}
	}
	s.learnts = kept
}

func sortClausesByActivity(cs []*Clause) {
	// Insertion sort by ascending activity (O(n^2) worst case): learnt-clause
	// lists are modest in size relative to propagation cost.
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j-1].activity > cs[j].activity; j-- {
			cs[j-1], cs[j] = cs[j], cs[j-1]
		}
	}
}

// Solve runs the CDCL search loop (§4.E) to completion, or until ctx is
// cancelled. Cancellation is cooperative (§5, §7): the loop checks ctx
// before each decision and unwinds to decision level 0 before returning.
func (s *Solver) Solve(ctx context.Context) Status {
	if s.unsat {
		return StatusUNSAT
	}

	for {
		select {
		case <-ctx.Done():
			s.cancelUntil(0)
			return StatusCancelled
		default:
		}

		conflict := s.Propagate()
		if conflict != nil {
			s.Stats.Conflicts++
			if s.decisionLevel() == 0 {
				s.unsat = true
				s.lastConflict = conflict
				return StatusUNSAT
			}

			learned, backjumpLevel := s.analyze(conflict)
			lbd := 0
			if s.opts.EnableRestarts {
				// LBD: distinct decision levels among the learnt literals,
				// counted before backjumping while all of them are assigned.
				levels := make(map[int]bool, len(learned))
				for _, l := range learned {
					levels[s.level[l.Var()]] = true
				}
				lbd = len(levels)
			}
			s.cancelUntil(backjumpLevel)
			s.bumpVars(learned)
			s.record(learned)
			s.decayClauseActivity()

			if s.opts.EnableRestarts {
				s.restartEMAFast.Add(float64(lbd))
				s.restartEMASlow.Add(float64(lbd))
				if s.restartEMASlow.Value() > 0 &&
					s.restartEMAFast.Value() > s.restartEMASlow.Value()*s.opts.RestartThreshold {
					s.Stats.Restarts++
					s.cancelUntil(0)
				}
			}
			continue
		}

		if s.decisionLevel() == 0 {
			if !s.Simplify() {
				return StatusUNSAT
			}
		}

		if s.opts.ReduceDBEvery > 0 && len(s.learnts) >= s.opts.ReduceDBEvery {
			s.reduceLearnts()
		}

		if s.NumAssigned() == s.NumVariables() {
			return StatusSAT
		}

		s.Stats.Decisions++
		l := s.policy.NextDecision(s)
		s.assume(l)
	}
}

// Model returns the current (fully assigned) model as a map from variable id
// to its boolean value. Only meaningful after Solve returns StatusSAT.
func (s *Solver) Model() map[int]bool {
	m := make(map[int]bool, s.NumVariables())
	for v := 1; v <= s.NumVariables(); v++ {
		lb := s.VarValue(v)
		if lb == Unassigned {
			continue
		}
		m[v] = lb == True
	}
	return m
}

// AssignedAtRoot reports whether l is already forced at decision level 0,
// used by callers (e.g. the rule generator) needing to fast-path already
// known facts.
func (s *Solver) AssignedAtRoot(l Literal) (LBool, bool) {
	v := l.Var()
	if s.level[v] != 0 {
		return Unassigned, false
	}
	return s.LitValue(l), true
}

// LastConflict returns the clause that caused the most recent root-level
// conflict (the one that made Solve return StatusUNSAT), or nil if the
// solver has never reached that state. Used by callers building an
// unsatisfiability explanation.
func (s *Solver) LastConflict() *Clause {
	return s.lastConflict
}

// ReasonOf returns the reason recorded for variable v's current assignment.
func (s *Solver) ReasonOf(v int) Reason {
	return s.reason[v]
}

// LevelOf returns the decision level at which variable v was assigned, or
// -1 if it is currently unassigned.
func (s *Solver) LevelOf(v int) int {
	return s.level[v]
}
