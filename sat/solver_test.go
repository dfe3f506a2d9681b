package sat

import (
	"context"
	"testing"
)

// setupZM01 builds the 19-variable, 8-clause instance used throughout §8's
// worked scenarios. The solver is left at decision level 0, so callers can
// still add clauses before calling replayZM01History.
func setupZM01(t *testing.T) *Solver {
	t.Helper()
	s := NewDefaultSolver()
	for i := 0; i < 19; i++ {
		s.AddVariable()
	}

	clauses := [][]Literal{
		{Lit(12, false), Lit(6, true), Lit(11, false)},
		{Lit(16, true), Lit(11, false), Lit(13, true)},
		{Lit(2, false), Lit(12, true), Lit(16, false)},
		{Lit(10, false), Lit(4, false), Lit(2, true)},
		{Lit(1, true), Lit(8, false), Lit(10, true)},
		{Lit(3, true), Lit(10, true)},
		{Lit(5, false), Lit(10, true)},
		{Lit(18, true), Lit(17, true), Lit(1, false), Lit(3, false), Lit(5, true)},
	}
	for _, c := range clauses {
		if err := s.AddClause(c); err != nil {
			t.Fatalf("AddClause(%v): %v", c, err)
		}
	}

	return s
}

// replayZM01History puts in place the decision/propagation history leading
// up to "assume(11)". The three enqueued facts (¬17, ¬13, 19) stand in for
// consequences of clauses outside this excerpt; their own reasons are never
// inspected by this particular conflict, so a nil propagated reason is
// harmless.
func replayZM01History(s *Solver) {
	s.assume(Lit(6, false))
	s.enqueue(Lit(17, false), propagatedReason(nil))
	s.assume(Lit(8, true))
	s.enqueue(Lit(13, false), propagatedReason(nil))
	s.assume(Lit(4, true))
	s.enqueue(Lit(19, true), propagatedReason(nil))
}

func litSet(lits []Literal) map[Literal]bool {
	m := make(map[Literal]bool, len(lits))
	for _, l := range lits {
		m[l] = true
	}
	return m
}

func TestS1_PropagationAfterAssume11(t *testing.T) {
	s := setupZM01(t)
	replayZM01History(s)
	s.assume(Lit(11, true))

	if conflict := s.Propagate(); conflict != nil {
		t.Fatalf("Propagate() returned conflict %v, want none", conflict)
	}

	levelStart := s.trailLim[3]
	got := litSet(s.trail[levelStart:])
	want := litSet([]Literal{
		Lit(11, true), Lit(12, false), Lit(16, true), Lit(2, false),
		Lit(10, false), Lit(1, true), Lit(3, true), Lit(5, false), Lit(18, true),
	})
	if len(got) != len(want) {
		t.Fatalf("trail tail = %v, want set %v", s.trail[levelStart:], want)
	}
	for l := range want {
		if !got[l] {
			t.Errorf("trail tail %v missing expected literal %v", s.trail[levelStart:], l)
		}
	}

	for v, want := range map[int]LBool{
		12: False, 16: True, 2: False, 10: False,
		1: True, 3: True, 5: False, 18: True,
	} {
		if got := s.VarValue(v); got != want {
			t.Errorf("VarValue(%d) = %v, want %v", v, got, want)
		}
	}
}

func TestS2_ConflictAnalysisFirstUIP(t *testing.T) {
	s := setupZM01(t)
	if err := s.AddClause([]Literal{Lit(18, false), Lit(3, false), Lit(19, false)}); err != nil {
		t.Fatalf("AddClause: %v", err)
	}
	replayZM01History(s)

	s.assume(Lit(11, true))
	conflict := s.Propagate()
	if conflict == nil {
		t.Fatalf("Propagate() returned no conflict, want one")
	}

	learned, backjump := s.analyze(conflict)
	if backjump != 3 {
		t.Errorf("backjump level = %d, want 3", backjump)
	}

	got := litSet(learned)
	want := litSet([]Literal{Lit(8, false), Lit(10, true), Lit(17, true), Lit(19, false)})
	if len(got) != len(want) {
		t.Fatalf("learned = %v, want set %v", learned, want)
	}
	for l := range want {
		if !got[l] {
			t.Errorf("learned %v missing expected literal %v", learned, l)
		}
	}
}

func TestS3_SimpleConflict(t *testing.T) {
	s := NewDefaultSolver()
	s.AddVariable()
	s.AddVariable()
	if err := s.AddClause([]Literal{Lit(1, true), Lit(2, true)}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddClause([]Literal{Lit(1, true), Lit(2, false)}); err != nil {
		t.Fatal(err)
	}

	s.assume(Lit(1, false))
	conflict := s.Propagate()
	if conflict == nil {
		t.Fatalf("Propagate() returned no conflict, want one")
	}

	learned, backjump := s.analyze(conflict)
	if backjump != 0 {
		t.Errorf("backjump level = %d, want 0", backjump)
	}
	if len(learned) != 1 || learned[0] != Lit(1, true) {
		t.Errorf("learned = %v, want [1]", learned)
	}
}

func TestS4_UnitClausePropagation(t *testing.T) {
	s := NewDefaultSolver()
	s.AddVariable()

	if err := s.AddClause([]Literal{Lit(1, false)}); err != nil {
		t.Fatal(err)
	}
	if conflict := s.Propagate(); conflict != nil {
		t.Fatalf("Propagate() returned conflict %v, want none", conflict)
	}
	if got := s.VarValue(1); got != False {
		t.Errorf("VarValue(1) = %v, want False", got)
	}
}

func TestS5_EmptyClauseIsUnsat(t *testing.T) {
	s := NewDefaultSolver()
	s.AddVariable()

	before := s.NumAssigned()
	if err := s.AddClause(nil); err != nil {
		t.Fatal(err)
	}
	if !s.unsat {
		t.Errorf("solver.unsat = false, want true after adding the empty clause")
	}
	if s.NumAssigned() != before {
		t.Errorf("NumAssigned() changed from %d to %d, empty clause must not enqueue", before, s.NumAssigned())
	}
	if got := s.Solve(context.Background()); got != StatusUNSAT {
		t.Errorf("Solve() = %v, want UNSAT", got)
	}
}

func TestAssumeCancelRoundTrip(t *testing.T) {
	s := NewDefaultSolver()
	for i := 0; i < 3; i++ {
		s.AddVariable()
	}
	if err := s.AddClause([]Literal{Lit(1, true), Lit(2, true)}); err != nil {
		t.Fatal(err)
	}

	trailBefore := append([]Literal(nil), s.trail...)
	levelBefore := s.decisionLevel()

	s.assume(Lit(3, true))
	s.Propagate()
	s.cancel()

	if s.decisionLevel() != levelBefore {
		t.Errorf("decisionLevel() = %d, want %d", s.decisionLevel(), levelBefore)
	}
	if len(s.trail) != len(trailBefore) {
		t.Errorf("trail = %v, want %v", s.trail, trailBefore)
	}
	if got := s.VarValue(3); got != Unassigned {
		t.Errorf("VarValue(3) = %v, want Unassigned after cancel", got)
	}
}

func TestSolveSmallSatisfiable(t *testing.T) {
	s := NewDefaultSolver()
	for i := 0; i < 3; i++ {
		s.AddVariable()
	}
	clauses := [][]Literal{
		{Lit(1, true), Lit(2, true), Lit(3, true)},
		{Lit(1, false), Lit(2, false)},
		{Lit(2, false), Lit(3, false)},
	}
	for _, c := range clauses {
		if err := s.AddClause(c); err != nil {
			t.Fatal(err)
		}
	}

	status := s.Solve(context.Background())
	if status != StatusSAT {
		t.Fatalf("Solve() = %v, want SAT", status)
	}

	model := s.Model()
	for _, c := range clauses {
		satisfied := false
		for _, l := range c {
			if model[l.Var()] == l.IsPositive() {
				satisfied = true
			}
		}
		if !satisfied {
			t.Errorf("clause %v not satisfied by model %v", c, model)
		}
	}
}

func TestSolveUnsatisfiable(t *testing.T) {
	s := NewDefaultSolver()
	s.AddVariable()
	for _, c := range [][]Literal{
		{Lit(1, true)},
		{Lit(1, false)},
	} {
		if err := s.AddClause(c); err != nil {
			t.Fatal(err)
		}
	}
	if status := s.Solve(context.Background()); status != StatusUNSAT {
		t.Fatalf("Solve() = %v, want UNSAT", status)
	}
}

func TestLitQueueFIFOOrder(t *testing.T) {
	s := NewDefaultSolver()
	for i := 0; i < 5; i++ {
		s.AddVariable()
	}
	s.enqueue(Lit(1, true), decisionReason)
	s.enqueue(Lit(2, true), decisionReason)
	s.enqueue(Lit(3, true), decisionReason)

	var order []Literal
	for s.propQueue.Size() > 0 {
		order = append(order, s.propQueue.Pop())
	}
	want := []Literal{Lit(1, true), Lit(2, true), Lit(3, true)}
	if len(order) != len(want) {
		t.Fatalf("propagation order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("propagation order = %v, want %v", order, want)
			break
		}
	}
}
