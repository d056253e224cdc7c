package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Plopez230/Philosopher-s-Snitch/config"
	"github.com/Plopez230/Philosopher-s-Snitch/internal/log"
	"github.com/Plopez230/Philosopher-s-Snitch/internal/log/tag"
	"github.com/Plopez230/Philosopher-s-Snitch/scorebook"
	"github.com/Plopez230/Philosopher-s-Snitch/snitch"
)

// Exit codes: 0 for a clean verdict, 1 for a faulty one, 2 when the input
// could not be read or the arguments are invalid.
const (
	exitClean  = 0
	exitFaulty = 1
	exitUsage  = 2
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: %s [flags] <philosophers> <time_to_die> <time_to_eat> <time_to_sleep> [must_eat]

Reads a philosophers simulation log from stdin and reports every rule the
simulation broke. The positional parameters are the same ones the simulation
was started with, in milliseconds.

`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		debug      bool
		bonus      bool
		tolerance  time.Duration
		configPath string
		logPath    string
	)
	flag.Usage = usage
	flag.BoolVar(&debug, "debug", false, "emit the per-record diagnostic trace and the full anomaly list")
	flag.BoolVar(&bonus, "bonus", false, "use the bonus ruleset: forks are a counting pool of philosophers/2")
	flag.DurationVar(&tolerance, "tolerance", config.DefaultTolerance, "jitter allowance around timing checks")
	flag.StringVar(&configPath, "config", "", "optional YAML overlay (tolerance_ms, debug, bonus)")
	flag.StringVar(&logPath, "log-file", "", "mirror detected violations to this file")
	flag.Parse()

	sim, err := buildConfig(flag.Args(), debug, bonus, tolerance, configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		return exitUsage
	}

	logger := log.NewCLILogger(sim.Debug)

	var violationLog log.Logger
	if logPath != "" {
		vl, closeFn, err := log.NewFileLogger(logPath)
		if err != nil {
			logger.Error("snitch: cannot open log file", tag.Error(err))
			return exitUsage
		}
		defer func() {
			if err := closeFn(); err != nil {
				logger.Warn("snitch: failed to close log file", tag.Error(err))
			}
		}()
		violationLog = vl
	}

	s, err := snitch.New(snitch.Config{
		Simulation:      sim,
		Logger:          logger,
		ViolationLogger: violationLog,
	})
	if err != nil {
		logger.Error("snitch: setup failed", tag.Error(err))
		return exitUsage
	}

	if err := s.Run(os.Stdin); err != nil {
		logger.Error("snitch: run aborted", tag.Error(err))
		return exitUsage
	}

	report := s.Finish()
	if err := report.Render(os.Stdout, sim.Debug); err != nil {
		logger.Error("snitch: failed to write report", tag.Error(err))
		return exitUsage
	}

	if report.Verdict == scorebook.VerdictFaulty {
		return exitFaulty
	}
	return exitClean
}

// buildConfig assembles the simulation config from flag defaults, the
// optional YAML overlay, and finally any explicitly set flags, in that order
// of increasing precedence.
func buildConfig(args []string, debug, bonus bool, tolerance time.Duration, configPath string) (config.Simulation, error) {
	if len(args) != 4 && len(args) != 5 {
		return config.Simulation{}, fmt.Errorf("expected 4 or 5 positional arguments, got %d", len(args))
	}

	values := make([]uint64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return config.Simulation{}, fmt.Errorf("argument %q must be a non-negative integer", arg)
		}
		values[i] = v
	}

	sim := config.Simulation{
		Philosophers: uint32(values[0]),
		TimeToDie:    time.Duration(values[1]) * time.Millisecond,
		TimeToEat:    time.Duration(values[2]) * time.Millisecond,
		TimeToSleep:  time.Duration(values[3]) * time.Millisecond,
		Tolerance:    config.DefaultTolerance,
		Debug:        debug,
	}
	if len(values) == 5 {
		mustEat := uint32(values[4])
		sim.MustEat = &mustEat
	}
	if bonus {
		sim.Ruleset = config.RulesetBonus
	}

	if configPath != "" {
		overlay, err := config.LoadFile(configPath)
		if err != nil {
			return config.Simulation{}, err
		}
		overlay.Apply(&sim)
	}

	// Explicit flags win over the overlay.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tolerance":
			sim.Tolerance = tolerance
		case "debug":
			sim.Debug = debug
		case "bonus":
			if bonus {
				sim.Ruleset = config.RulesetBonus
			} else {
				sim.Ruleset = config.RulesetClassic
			}
		}
	})

	if err := sim.Validate(); err != nil {
		return config.Simulation{}, err
	}
	return sim, nil
}
