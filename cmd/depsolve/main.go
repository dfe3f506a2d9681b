// Command depsolve resolves a scenario file into a package transaction.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/satpkg/resolver/resolver"
	"github.com/satpkg/resolver/scenario"
)

// debugCounter implements flag.Value so --debug can be repeated to raise
// verbosity, matching §6's "--debug (repeatable counter)".
type debugCounter int

func (d *debugCounter) String() string { return fmt.Sprintf("%d", int(*d)) }
func (d *debugCounter) IsBoolFlag() bool { return true }
func (d *debugCounter) Set(string) error {
	*d++
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("depsolve", flag.ContinueOnError)
	printIDs := fs.Bool("print-ids", false, "prefix each package@version with its SAT variable id")
	noPrune := fs.Bool("no-prune", false, "disable the pruning pass over don't-care installs")
	noPreferInstalled := fs.Bool("no-prefer-installed", false, "don't prioritize already-installed packages when branching")
	simple := fs.Bool("simple", false, "print the simple (name-only) transaction form")
	var debug debugCounter
	fs.Var(&debug, "debug", "increase log verbosity (repeatable)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: depsolve [flags] <scenario-path>")
		return 2
	}

	log := logrus.New()
	switch {
	case int(debug) >= 2:
		log.SetLevel(logrus.TraceLevel)
	case int(debug) == 1:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	sc, err := scenario.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	opts := resolver.NewOptions(
		resolver.WithPrune(!*noPrune),
		resolver.WithPreferInstalled(!*noPreferInstalled),
		resolver.WithLogger(logrus.NewEntry(log)),
	)
	driver := resolver.NewDriver(opts)

	txn, err := driver.Solve(context.Background(), sc.Repositories, sc.Installed, sc.Request)
	if err != nil {
		if unsat, ok := err.(*resolver.UnsatisfiableError); ok {
			fmt.Fprintln(os.Stderr, unsat)
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	switch {
	case *simple:
		fmt.Print(resolver.FormatSimple(txn))
	case *printIDs:
		fmt.Print(resolver.FormatWithIDs(txn))
	default:
		fmt.Print(resolver.FormatDetailed(txn))
	}
	return 0
}
