// Package scenario loads the YAML files the CLI (cmd/depsolve) reads: a set
// of repositories, an installed package set, and a request. None of this is
// part of the resolver's core; it is the §6 "Scenario file (collaborator)".
package scenario

import (
	"fmt"
	"os"

	"github.com/blang/semver/v4"
	"gopkg.in/yaml.v3"

	"github.com/satpkg/resolver/model"
)

// File is the on-disk YAML shape of a scenario.
type File struct {
	Repositories []repositoryYAML `yaml:"repositories"`
	Installed    []packageRefYAML `yaml:"installed"`
	Request      []actionYAML     `yaml:"request"`
}

type repositoryYAML struct {
	Name     string        `yaml:"name"`
	Packages []packageYAML `yaml:"packages"`
}

type packageYAML struct {
	Name         string   `yaml:"name"`
	Version      string   `yaml:"version"`
	Dependencies []reqYAML `yaml:"dependencies"`
	Conflicts    []reqYAML `yaml:"conflicts"`
}

type reqYAML struct {
	Name       string `yaml:"name"`
	Constraint string `yaml:"constraint"`
}

type packageRefYAML struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type actionYAML struct {
	Kind       string `yaml:"kind"` // install, remove, upgrade, upgrade-all
	Name       string `yaml:"name"`
	Constraint string `yaml:"constraint"`
}

// Scenario is the decoded, ready-to-use form of a scenario file.
type Scenario struct {
	Repositories []*model.Repository
	Installed    *model.Repository
	Request      model.Request
}

// Load reads and parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("scenario: parsing %s: %w", path, err)
	}
	return f.decode()
}

func (f *File) decode() (*Scenario, error) {
	s := &Scenario{}

	for _, ry := range f.Repositories {
		repo := model.NewRepository(ry.Name)
		for _, py := range ry.Packages {
			pkg, err := py.decode()
			if err != nil {
				return nil, fmt.Errorf("scenario: repository %s: %w", ry.Name, err)
			}
			repo.Add(pkg)
		}
		s.Repositories = append(s.Repositories, repo)
	}

	installed := model.NewRepository("installed")
	allPackages := make(map[string]packageYAML)
	for _, ry := range f.Repositories {
		for _, py := range ry.Packages {
			allPackages[py.Name+"@"+py.Version] = py
		}
	}
	for _, ref := range f.Installed {
		py, ok := allPackages[ref.Name+"@"+ref.Version]
		if !ok {
			return nil, fmt.Errorf("scenario: installed package %s@%s not found in any repository", ref.Name, ref.Version)
		}
		pkg, err := py.decode()
		if err != nil {
			return nil, err
		}
		installed.Add(pkg)
	}
	s.Installed = installed

	for _, ay := range f.Request {
		req := model.NewRequirement(ay.Name, ay.Constraint)
		switch ay.Kind {
		case "install":
			s.Request.Install(req)
		case "remove":
			s.Request.Remove(req)
		case "upgrade":
			s.Request.Upgrade(req)
		case "upgrade-all":
			s.Request.UpgradeAll()
		default:
			return nil, fmt.Errorf("scenario: unknown request kind %q", ay.Kind)
		}
	}

	return s, nil
}

func (py packageYAML) decode() (model.Package, error) {
	v, err := semver.Parse(py.Version)
	if err != nil {
		return model.Package{}, fmt.Errorf("package %s: version %q: %w", py.Name, py.Version, err)
	}
	pkg := model.Package{Name: py.Name, Version: v}
	for _, d := range py.Dependencies {
		pkg.Dependencies = append(pkg.Dependencies, model.NewRequirement(d.Name, d.Constraint))
	}
	for _, c := range py.Conflicts {
		pkg.Conflicts = append(pkg.Conflicts, model.NewRequirement(c.Name, c.Constraint))
	}
	return pkg, nil
}
