package rules

import (
	"errors"
	"fmt"

	"github.com/Plopez230/Philosopher-s-Snitch/rulebook"
	"github.com/Plopez230/Philosopher-s-Snitch/trace"
)

// TimelineRule enforces global and per-philosopher time monotonicity.
// A regressing record is reported but does not move the watermark back, so a
// single bad timestamp cannot cascade into a violation per following line.
type TimelineRule struct {
	deps rulebook.Deps

	lastGlobal uint64
	seen       bool
}

var _ rulebook.Rule = (*TimelineRule)(nil)

func (r *TimelineRule) Name() string { return "timeline" }

func (r *TimelineRule) Init(deps rulebook.Deps) error {
	if deps.Table == nil {
		return errors.New("timeline: table is required")
	}
	r.deps = deps
	return nil
}

func (r *TimelineRule) Observe(ev trace.Event) []rulebook.Violation {
	var violations []rulebook.Violation

	if r.seen && ev.Timestamp < r.lastGlobal {
		violations = append(violations, rulebook.Violation{
			Rule:         r.Name(),
			Kind:         rulebook.KindTimeTravel,
			Severity:     rulebook.SeverityViolation,
			Philosopher:  ev.Philosopher,
			Timestamp:    ev.Timestamp,
			HasTimestamp: true,
			Message: fmt.Sprintf("record at %d ms arrived after the table clock reached %d ms (%d ms backwards)",
				ev.Timestamp, r.lastGlobal, r.lastGlobal-ev.Timestamp),
		})
	} else {
		r.lastGlobal = ev.Timestamp
		r.seen = true
	}

	// The per-philosopher check is stricter than the global one and is
	// reported in addition to it, not instead of it.
	if p, ok := r.deps.Table.Lookup(ev.Philosopher); ok && p.Seen && ev.Timestamp < p.LastEventAt {
		violations = append(violations, rulebook.Violation{
			Rule:         r.Name(),
			Kind:         rulebook.KindTimeTravel,
			Severity:     rulebook.SeverityViolation,
			Philosopher:  ev.Philosopher,
			Timestamp:    ev.Timestamp,
			HasTimestamp: true,
			Message: fmt.Sprintf("philosopher %d traveled %d ms backwards: previous record was at %d ms",
				ev.Philosopher, p.LastEventAt-ev.Timestamp, p.LastEventAt),
		})
	}

	return violations
}
