package resolver

import (
	"github.com/rhartert/yagh"
	"github.com/sirupsen/logrus"

	"github.com/satpkg/resolver/model"
	"github.com/satpkg/resolver/sat"
)

const (
	tierInstalled = 0
	tierRequested = 1
	tierRemaining = 2
)

// InstalledFirstPolicy is the domain branching policy (§4.J): among
// unassigned variables it prefers currently-installed packages, then
// packages named by a pending request, then everything else — each tier
// preferring True (inclusion), newer versions before older ones within a
// name, and ascending variable id as the final tie-break for determinism.
type InstalledFirstPolicy struct {
	pool            *Pool
	preferInstalled bool
	log             *logrus.Entry

	priority []float64 // indexed by variable id
	heap     *yagh.IntMap[float64]
}

// NewInstalledFirstPolicy returns a policy over pool. installed and
// requested name the packages to prioritize into tiers 1 and 2; when
// preferInstalled is false, tier 1 is skipped (an installed package falls
// through to tier 2 if a request names it, otherwise to tier 3).
func NewInstalledFirstPolicy(pool *Pool, installed *model.Repository, req model.Request, preferInstalled bool, log *logrus.Entry) *InstalledFirstPolicy {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	p := &InstalledFirstPolicy{
		pool:            pool,
		preferInstalled: preferInstalled,
		log:             log,
		heap:            yagh.New[float64](0),
	}

	upgradeAll := false
	for _, a := range req.Actions {
		if a.Kind == model.ActionUpgradeAll {
			upgradeAll = true
		}
	}

	installedVars := make(map[int]bool)
	requestedVars := make(map[int]bool)
	if installed != nil {
		for _, pkg := range installed.All() {
			v, ok := pool.VarOf(pkg)
			if !ok {
				continue
			}
			if upgradeAll {
				// Every version of an upgrade-all package is a candidate, not
				// just the one already on disk: route the whole name into
				// tierRequested so priorityFor's newest-first rank picks among
				// them instead of tierInstalled pinning the old version ahead.
				for _, vv := range pool.VersionsOf(pkg.Name) {
					requestedVars[vv] = true
				}
				continue
			}
			installedVars[v] = true
		}
	}
	for _, a := range req.Actions {
		if a.Kind != model.ActionInstall && a.Kind != model.ActionUpgrade {
			continue
		}
		vars, err := pool.variablesFor(a.Requirement)
		if err != nil {
			continue
		}
		for _, v := range vars {
			requestedVars[v] = true
		}
	}

	p.priority = make([]float64, pool.NumVariables()+1)
	for _, pkg := range pool.Packages() {
		v, _ := pool.VarOf(pkg)
		p.priority[v] = p.priorityFor(v, pkg, installedVars, requestedVars)
	}
	return p
}

func (p *InstalledFirstPolicy) priorityFor(v int, pkg model.Package, installedVars, requestedVars map[int]bool) float64 {
	tier := tierRemaining
	switch {
	case p.preferInstalled && installedVars[v]:
		tier = tierInstalled
	case requestedVars[v]:
		tier = tierRequested
	}

	rank := 0.0
	versions := p.pool.VersionsOf(pkg.Name)
	for i, vv := range versions {
		if vv == v {
			rank = float64(len(versions) - 1 - i) // 0 = newest
			break
		}
	}

	return float64(tier)*1e12 + rank*1e6 + float64(v)
}

func (p *InstalledFirstPolicy) AddVar(v int) {
	for len(p.priority) <= v {
		p.priority = append(p.priority, 0)
	}
	p.heap.GrowBy(1)
	p.heap.Put(v, p.priority[v])
}

func (p *InstalledFirstPolicy) OnUnassign(v int) {
	p.heap.Put(v, p.priority[v])
}

func (p *InstalledFirstPolicy) NextDecision(s *sat.Solver) sat.Literal {
	for {
		top, ok := p.heap.Pop()
		if !ok {
			panic("resolver: InstalledFirstPolicy exhausted with unassigned variables remaining")
		}
		if s.VarValue(top.Elem) != sat.Unassigned {
			continue
		}
		p.log.WithFields(logrus.Fields{
			"variable": top.Elem,
			"package":  p.pool.PackageOf(top.Elem).ID(),
		}).Debug("branching decision")
		return sat.Lit(top.Elem, true)
	}
}
