package snitch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Plopez230/Philosopher-s-Snitch/config"
	"github.com/Plopez230/Philosopher-s-Snitch/internal/log"
	"github.com/Plopez230/Philosopher-s-Snitch/internal/log/tag"
	"github.com/Plopez230/Philosopher-s-Snitch/roster"
	"github.com/Plopez230/Philosopher-s-Snitch/rulebook"
	"github.com/Plopez230/Philosopher-s-Snitch/rulebook/rules"
	"github.com/Plopez230/Philosopher-s-Snitch/scorebook"
	"github.com/Plopez230/Philosopher-s-Snitch/trace"
)

// Snitch is the validation engine. It consumes the simulation log one line at
// a time, runs every rule against each event, folds the event into the table,
// and accumulates anomalies in the scorebook. Nothing short of an unreadable
// input stream aborts a run: corrupted records are themselves anomalies and
// scanning continues to the end of input.
type Snitch struct {
	cfg          config.Simulation
	logger       log.Logger
	violationLog log.Logger

	parser    *trace.Parser
	table     *roster.Table
	rules     *rulebook.Registry
	scorebook *scorebook.Scorebook

	lines    int
	events   int
	lastSeen uint64
	finished bool
}

// Config holds the engine wiring.
type Config struct {
	// Simulation is the already-validated dinner configuration.
	Simulation config.Simulation
	// Logger for engine output and per-record diagnostics.
	Logger log.Logger
	// ViolationLogger, when non-nil, mirrors every violation-severity
	// anomaly as it is detected.
	ViolationLogger log.Logger
	// Rules overrides the default rule set; mostly for tests.
	Rules []rulebook.Rule
}

// New creates an engine for one validation run.
func New(cfg Config) (*Snitch, error) {
	if cfg.Logger == nil {
		return nil, errors.New("snitch: logger is required")
	}
	if err := cfg.Simulation.Validate(); err != nil {
		return nil, fmt.Errorf("snitch: %w", err)
	}

	table := roster.NewTable(cfg.Simulation)
	registry := rulebook.NewRegistry()
	ruleSet := cfg.Rules
	if ruleSet == nil {
		ruleSet = rules.Default()
	}
	for _, rule := range ruleSet {
		registry.Register(rule)
	}
	if err := registry.Init(rulebook.Deps{
		Config: cfg.Simulation,
		Table:  table,
		Logger: cfg.Logger,
	}); err != nil {
		return nil, fmt.Errorf("snitch: %w", err)
	}

	cfg.Logger.Debug("snitch initialized",
		tag.NewInt("numRules", len(registry.Rules())),
		tag.NewUint32("philosophers", cfg.Simulation.Philosophers),
		tag.NewStringTag("ruleset", cfg.Simulation.Ruleset.String()),
	)

	return &Snitch{
		cfg:          cfg.Simulation,
		logger:       cfg.Logger,
		violationLog: cfg.ViolationLogger,
		parser:       trace.NewParser(cfg.Simulation.Philosophers),
		table:        table,
		rules:        registry,
		scorebook:    scorebook.NewScorebook(),
	}, nil
}

// ProcessLine feeds one input line through the pipeline. Blank lines are
// skipped; anything else is either an event or a parse failure.
func (s *Snitch) ProcessLine(line string) {
	s.lines++
	if strings.TrimSpace(line) == "" {
		// Blank lines, usually the trailing newline of the stream.
		return
	}

	ev, fail := s.parser.Parse(line, s.lines)
	if fail != nil {
		s.logger.Debug("unparseable line",
			tag.NewInt("line", fail.Line),
			tag.NewStringTag("reason", fail.Reason),
		)
		s.scorebook.Add(rulebook.Violation{
			Rule:     "parser",
			Kind:     rulebook.KindParseFailure,
			Severity: rulebook.SeverityWarning,
			Message:  fmt.Sprintf("line %d: %s: %q", fail.Line, fail.Reason, fail.Raw),
		})
		return
	}

	s.events++
	violations := s.rules.Observe(ev)
	s.record(violations)
	s.table.Apply(ev)
	if ev.Timestamp > s.lastSeen {
		s.lastSeen = ev.Timestamp
	}
}

// Run consumes the whole stream. The only returned error is an unreadable
// input, which halts the run since no further events can be evaluated.
func (s *Snitch) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s.ProcessLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("snitch: failed to read input: %w", err)
	}
	return nil
}

// Finish runs the end-of-stream checks and compiles the report. It is
// idempotent; the second and later calls only recompile.
func (s *Snitch) Finish() scorebook.Report {
	if !s.finished {
		s.finished = true
		s.record(s.rules.Finish(s.lastSeen))
	}
	return s.scorebook.Compile(s.lines, s.events)
}

// Scorebook exposes the anomaly history for querying in tests.
func (s *Snitch) Scorebook() *scorebook.Scorebook {
	return s.scorebook
}

// Table exposes the per-philosopher state for querying in tests.
func (s *Snitch) Table() *roster.Table {
	return s.table
}

func (s *Snitch) record(violations []rulebook.Violation) {
	for _, v := range violations {
		s.scorebook.Add(v)
		if s.violationLog != nil && v.Severity == rulebook.SeverityViolation {
			s.violationLog.Warn(v.Message,
				tag.NewStringTag("kind", string(v.Kind)),
				tag.NewUint32("philosopher", v.Philosopher),
				tag.NewUint64("timestamp", v.Timestamp),
			)
		}
	}
}
