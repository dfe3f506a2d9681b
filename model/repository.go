package model

// Repository is an ordered collection of Packages. Order is preserved
// because the Pool allocates variable ids in this order, and variable ids
// are the branching policy's final tie-break. Versions within a name are
// ordered by semver, not by repository order.
type Repository struct {
	Name     string
	Packages []Package
}

// NewRepository returns an empty, named Repository.
func NewRepository(name string) *Repository {
	return &Repository{Name: name}
}

// Add appends a package to the repository.
func (r *Repository) Add(p Package) {
	r.Packages = append(r.Packages, p)
}

// All returns every package in the repository in insertion order.
func (r *Repository) All() []Package {
	return r.Packages
}
