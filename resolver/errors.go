package resolver

import "fmt"

// InvalidInputError is returned when a request references a requirement the
// pool cannot possibly satisfy (no providers, and no package declares it as
// a dependency either) — surfaced before any solve is attempted, per §7.
type InvalidInputError struct {
	Requirement fmt.Stringer
	Reason      string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("resolver: invalid input: %s: %s", e.Requirement, e.Reason)
}
