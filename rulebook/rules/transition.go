package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Plopez230/Philosopher-s-Snitch/internal/log/tag"
	"github.com/Plopez230/Philosopher-s-Snitch/rulebook"
	"github.com/Plopez230/Philosopher-s-Snitch/trace"
)

// TransitionRule validates that every record is a legal move out of the
// philosopher's last legal state, and that nothing at all happens to a
// philosopher after its death.
type TransitionRule struct {
	deps rulebook.Deps

	// firstDeath remembers the first accepted death record; once somebody
	// dies the dinner is supposed to stop for everyone.
	firstDeathID       uint32
	firstDeathAt       uint64
	dinnerOverReported bool
}

var _ rulebook.Rule = (*TransitionRule)(nil)

func (r *TransitionRule) Name() string { return "transitions" }

func (r *TransitionRule) Init(deps rulebook.Deps) error {
	if deps.Table == nil {
		return errors.New("transitions: table is required")
	}
	r.deps = deps
	return nil
}

func (r *TransitionRule) Observe(ev trace.Event) []rulebook.Violation {
	p := r.deps.Table.Seat(ev.Philosopher)

	if p.Dead {
		return []rulebook.Violation{{
			Rule:         r.Name(),
			Kind:         rulebook.KindPostmortemEvent,
			Severity:     rulebook.SeverityViolation,
			Philosopher:  ev.Philosopher,
			Timestamp:    ev.Timestamp,
			HasTimestamp: true,
			Message: fmt.Sprintf("philosopher %d died at %d ms and is still %s",
				ev.Philosopher, p.DiedAt, ev.Kind.Phrase()),
		}}
	}

	var violations []rulebook.Violation

	// The rest of the table should have stopped once somebody died.
	if r.firstDeathID != 0 && ev.Philosopher != r.firstDeathID && !r.dinnerOverReported {
		r.dinnerOverReported = true
		violations = append(violations, rulebook.Violation{
			Rule:         r.Name(),
			Kind:         rulebook.KindPostmortemEvent,
			Severity:     rulebook.SeverityWarning,
			Philosopher:  ev.Philosopher,
			Timestamp:    ev.Timestamp,
			HasTimestamp: true,
			Message: fmt.Sprintf("the dinner went on after philosopher %d died at %d ms",
				r.firstDeathID, r.firstDeathAt),
		})
	}

	expected := quotedPhrases(p.Expected())
	if !p.CanApply(ev.Kind) {
		violations = append(violations, rulebook.Violation{
			Rule:         r.Name(),
			Kind:         rulebook.KindInvalidTransition,
			Severity:     rulebook.SeverityViolation,
			Philosopher:  ev.Philosopher,
			Timestamp:    ev.Timestamp,
			HasTimestamp: true,
			Message: fmt.Sprintf("philosopher %d is %s and cannot be %q; expected %s",
				ev.Philosopher, p.State(), ev.Kind.Phrase(), expected),
		})
	} else {
		r.deps.Logger.Debug("transition accepted",
			tag.NewUint32("philosopher", ev.Philosopher),
			tag.NewStringTag("state", p.State()),
			tag.NewStringTag("next", ev.Kind.Phrase()),
		)
		if ev.Kind == trace.KindDied && r.firstDeathID == 0 {
			r.firstDeathID = ev.Philosopher
			r.firstDeathAt = ev.Timestamp
		}
	}

	return violations
}

func quotedPhrases(phrases []string) string {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = fmt.Sprintf("%q", p)
	}
	return strings.Join(quoted, " or ")
}
