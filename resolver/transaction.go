package resolver

import "github.com/satpkg/resolver/model"

// OpKind distinguishes transaction operations.
type OpKind int

const (
	OpInstall OpKind = iota
	OpRemove
	OpUpdate
)

func (k OpKind) String() string {
	switch k {
	case OpInstall:
		return "install"
	case OpRemove:
		return "remove"
	case OpUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Op is a single transaction operation. From is the zero Package for
// Install; To is the zero Package for Remove.
type Op struct {
	Kind OpKind
	From model.Package
	To   model.Package
}

// Transaction is the ordered plan of operations a solve produces (§3). Pool
// is the solve's Pool, kept around so a presentation layer can render SAT
// variable ids (--print-ids) alongside package identities.
type Transaction struct {
	Ops  []Op
	Pool *Pool
}

// Installs returns the packages this transaction installs (fresh installs
// and the "to" side of updates).
func (t *Transaction) Installs() []model.Package {
	var out []model.Package
	for _, op := range t.Ops {
		if op.Kind == OpInstall || op.Kind == OpUpdate {
			out = append(out, op.To)
		}
	}
	return out
}

// Removes returns the packages this transaction removes (fresh removes and
// the "from" side of updates).
func (t *Transaction) Removes() []model.Package {
	var out []model.Package
	for _, op := range t.Ops {
		if op.Kind == OpRemove || op.Kind == OpUpdate {
			out = append(out, op.From)
		}
	}
	return out
}

// Apply returns the package set that results from applying the transaction
// to installed, keyed by package ID — used to check §8's "transaction
// consistency" invariant.
func (t *Transaction) Apply(installed []model.Package) map[string]model.Package {
	result := make(map[string]model.Package, len(installed))
	for _, p := range installed {
		result[p.ID()] = p
	}
	for _, op := range t.Ops {
		switch op.Kind {
		case OpInstall:
			result[op.To.ID()] = op.To
		case OpRemove:
			delete(result, op.From.ID())
		case OpUpdate:
			delete(result, op.From.ID())
			result[op.To.ID()] = op.To
		}
	}
	return result
}
