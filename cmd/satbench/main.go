// Command satbench loads a DIMACS CNF instance and solves it, optionally
// running several independent solves concurrently to benchmark throughput.
// Each concurrent run gets its own *sat.Solver: the engine keeps no shared
// mutable state across instances, so two solves never share one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/satpkg/resolver/sat"
)

var (
	flagCPUProfile = flag.Bool("cpuprof", false, "save pprof CPU profile to ./cpuprof")
	flagMemProfile = flag.Bool("memprof", false, "save pprof memory profile to ./memprof")
	flagJobs       = flag.Int("jobs", 1, "number of independent solver instances to run concurrently")
	flagTimeout    = flag.Duration("timeout", 0, "cancel any solve that runs longer than this (0 = no timeout)")
)

type config struct {
	instanceFile string
	jobs         int
	timeout      time.Duration
	cpuProfile   bool
	memProfile   bool
}

func parseConfig() (*config, error) {
	flag.Parse()
	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return nil, fmt.Errorf("missing instance file")
	}
	if *flagJobs < 1 {
		return nil, fmt.Errorf("jobs must be >= 1, got %d", *flagJobs)
	}
	return &config{
		instanceFile: flag.Arg(0),
		jobs:         *flagJobs,
		timeout:      *flagTimeout,
		cpuProfile:   *flagCPUProfile,
		memProfile:   *flagMemProfile,
	}, nil
}

// result is one solver instance's outcome, reported after the run.
type result struct {
	status   sat.Status
	elapsed  time.Duration
	stats    sat.Stats
	nVars    int
	nClauses int
}

func runOne(ctx context.Context, instanceFile string) (result, error) {
	s := sat.NewDefaultSolver()
	nVars, nClauses, err := loadDIMACS(instanceFile, s)
	if err != nil {
		return result{}, err
	}

	t := time.Now()
	status := s.Solve(ctx)
	elapsed := time.Since(t)

	return result{
		status:   status,
		elapsed:  elapsed,
		stats:    s.Stats,
		nVars:    nVars,
		nClauses: nClauses,
	}, nil
}

func run(cfg *config) error {
	ctx := context.Background()
	var cancel context.CancelFunc
	if cfg.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	results := make([]result, cfg.jobs)
	errs := make([]error, cfg.jobs)

	var wg sync.WaitGroup
	for i := 0; i < cfg.jobs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = runOne(ctx, cfg.instanceFile)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("job %d: %w", i, err)
		}
	}

	for i, r := range results {
		fmt.Printf("c --- job %d ---\n", i)
		fmt.Printf("c variables:  %d\n", r.nVars)
		fmt.Printf("c clauses:    %d\n", r.nClauses)
		fmt.Printf("c time (sec): %f\n", r.elapsed.Seconds())
		fmt.Printf("c conflicts:  %d (%.2f /sec)\n", r.stats.Conflicts, float64(r.stats.Conflicts)/r.elapsed.Seconds())
		fmt.Printf("c decisions:  %d\n", r.stats.Decisions)
		fmt.Printf("c restarts:   %d\n", r.stats.Restarts)
		fmt.Printf("c status:     %s\n", r.status)
	}
	return nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
