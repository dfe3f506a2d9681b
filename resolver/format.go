package resolver

import (
	"fmt"
	"strings"

	"github.com/satpkg/resolver/model"
)

// FormatSimple renders a transaction as one line per operation with no
// version detail beyond package identity, e.g. "install foo", "remove bar".
func FormatSimple(t *Transaction) string {
	var sb strings.Builder
	for _, op := range t.Ops {
		switch op.Kind {
		case OpInstall:
			fmt.Fprintf(&sb, "install %s\n", op.To.Name)
		case OpRemove:
			fmt.Fprintf(&sb, "remove %s\n", op.From.Name)
		case OpUpdate:
			fmt.Fprintf(&sb, "update %s\n", op.To.Name)
		}
	}
	return sb.String()
}

// FormatWithIDs renders a transaction like FormatDetailed, additionally
// prefixing each package with its SAT variable id (§6 "--print-ids").
func FormatWithIDs(t *Transaction) string {
	id := func(p model.Package) string {
		if t.Pool == nil {
			return p.ID()
		}
		if v, ok := t.Pool.VarOf(p); ok {
			return fmt.Sprintf("#%d:%s", v, p.ID())
		}
		return p.ID()
	}
	var sb strings.Builder
	for _, op := range t.Ops {
		switch op.Kind {
		case OpInstall:
			fmt.Fprintf(&sb, "Install(%s)\n", id(op.To))
		case OpRemove:
			fmt.Fprintf(&sb, "Remove(%s)\n", id(op.From))
		case OpUpdate:
			fmt.Fprintf(&sb, "Update(%s -> %s)\n", id(op.From), id(op.To))
		}
	}
	return sb.String()
}

// FormatDetailed renders a transaction with full package identities
// (name@version) and, for updates, both the prior and new version.
func FormatDetailed(t *Transaction) string {
	var sb strings.Builder
	for _, op := range t.Ops {
		switch op.Kind {
		case OpInstall:
			fmt.Fprintf(&sb, "Install(%s)\n", op.To.ID())
		case OpRemove:
			fmt.Fprintf(&sb, "Remove(%s)\n", op.From.ID())
		case OpUpdate:
			fmt.Fprintf(&sb, "Update(%s -> %s)\n", op.From.ID(), op.To.ID())
		}
	}
	return sb.String()
}
