package rulebook

import (
	"fmt"

	"github.com/Plopez230/Philosopher-s-Snitch/config"
	"github.com/Plopez230/Philosopher-s-Snitch/internal/log"
	"github.com/Plopez230/Philosopher-s-Snitch/roster"
	"github.com/Plopez230/Philosopher-s-Snitch/trace"
)

// Deps bundles dependencies handed to rules at initialization.
type Deps struct {
	// Config is the immutable dinner configuration.
	Config config.Simulation
	// Table is the shared per-philosopher state, updated by the engine after
	// every rule has observed the event.
	Table *roster.Table
	// Logger to use for per-record diagnostics.
	Logger log.Logger
}

// Rule is one check run against every event. Observe runs before the event is
// folded into the table, so rules judge each record against the last legal
// state. Rules never abort the run; they return violations and keep going.
type Rule interface {
	// Name identifies the rule in violation records.
	Name() string
	// Init prepares the rule's internal state.
	Init(deps Deps) error
	// Observe checks one event and returns any violations it detects.
	Observe(ev trace.Event) []Violation
}

// Finisher is implemented by rules that need an end-of-stream pass, after the
// last event has been applied. lastSeen is the largest timestamp observed.
type Finisher interface {
	Finish(lastSeen uint64) []Violation
}

// Registry holds the ordered rule set for one run. Order matters: rules see
// the table as left by the previous event, and their violations are recorded
// in registration order within each event.
type Registry struct {
	rules []Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a rule.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Rules returns the registered rules in order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Init initializes every registered rule.
func (r *Registry) Init(deps Deps) error {
	for _, rule := range r.rules {
		if err := rule.Init(deps); err != nil {
			return fmt.Errorf("rulebook: failed to init rule %q: %w", rule.Name(), err)
		}
	}
	return nil
}

// Observe runs every rule against ev and collects their violations in order.
func (r *Registry) Observe(ev trace.Event) []Violation {
	var out []Violation
	for _, rule := range r.rules {
		out = append(out, rule.Observe(ev)...)
	}
	return out
}

// Finish runs the end-of-stream pass of every rule that has one.
func (r *Registry) Finish(lastSeen uint64) []Violation {
	var out []Violation
	for _, rule := range r.rules {
		if f, ok := rule.(Finisher); ok {
			out = append(out, f.Finish(lastSeen)...)
		}
	}
	return out
}
