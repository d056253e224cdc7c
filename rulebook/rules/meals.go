package rules

import (
	"errors"
	"fmt"

	"github.com/Plopez230/Philosopher-s-Snitch/internal/log/tag"
	"github.com/Plopez230/Philosopher-s-Snitch/roster"
	"github.com/Plopez230/Philosopher-s-Snitch/rulebook"
	"github.com/Plopez230/Philosopher-s-Snitch/trace"
)

// MealRule applies the optional must-eat bound: a philosopher that has eaten
// its share is finished and must not start another meal. When the whole table
// is finished the dinner is over, which is noted once as a warning.
// Without a must-eat bound the rule only contributes debug meal counts.
type MealRule struct {
	deps rulebook.Deps

	mustEat        *uint32
	allAteReported bool
}

var _ rulebook.Rule = (*MealRule)(nil)

func (r *MealRule) Name() string { return "meals" }

func (r *MealRule) Init(deps rulebook.Deps) error {
	if deps.Table == nil {
		return errors.New("meals: table is required")
	}
	r.deps = deps
	r.mustEat = deps.Config.MustEat
	return nil
}

func (r *MealRule) Observe(ev trace.Event) []rulebook.Violation {
	p := r.deps.Table.Seat(ev.Philosopher)
	if p.Dead {
		return nil
	}

	r.deps.Logger.Debug("meals eaten",
		tag.NewUint32("philosopher", ev.Philosopher),
		tag.NewUint32("meals", p.Meals),
	)

	if r.mustEat == nil {
		return nil
	}

	var violations []rulebook.Violation

	if ev.Kind == trace.KindEating && p.Finished {
		violations = append(violations, rulebook.Violation{
			Rule:         r.Name(),
			Kind:         rulebook.KindFinishEating,
			Severity:     rulebook.SeverityViolation,
			Philosopher:  ev.Philosopher,
			Timestamp:    ev.Timestamp,
			HasTimestamp: true,
			Message: fmt.Sprintf("philosopher %d already ate %d times and is finished",
				ev.Philosopher, p.Meals),
		})
	}

	// A validated meal completion; note the end of the dinner when this was
	// the last outstanding share.
	if ev.Kind == trace.KindSleeping && p.State() == roster.StateEating && !r.allAteReported {
		if p.Meals+1 >= *r.mustEat && r.restFinished(p.ID) {
			r.allAteReported = true
			violations = append(violations, rulebook.Violation{
				Rule:         r.Name(),
				Kind:         rulebook.KindFinishEating,
				Severity:     rulebook.SeverityWarning,
				Philosopher:  ev.Philosopher,
				Timestamp:    ev.Timestamp,
				HasTimestamp: true,
				Message: fmt.Sprintf("every philosopher has eaten %d times; the dinner is over",
					*r.mustEat),
			})
		}
	}

	return violations
}

func (r *MealRule) restFinished(except uint32) bool {
	for id := uint32(1); id <= r.deps.Table.Size(); id++ {
		if id == except {
			continue
		}
		p, ok := r.deps.Table.Lookup(id)
		if !ok || !p.Finished {
			return false
		}
	}
	return true
}
