package rules

import (
	"errors"
	"fmt"

	"github.com/Plopez230/Philosopher-s-Snitch/internal/log/tag"
	"github.com/Plopez230/Philosopher-s-Snitch/roster"
	"github.com/Plopez230/Philosopher-s-Snitch/rulebook"
	"github.com/Plopez230/Philosopher-s-Snitch/trace"
)

// DeadlineRule checks death and phase timing against the declared simulation
// parameters. Every philosopher carries an implicit death deadline of
// last meal end + time to die (simulation start counts as meal zero); dying
// before it is premature, and outliving it without a death record is the
// strange smell of a missed death. Meal and nap durations are checked on the
// way out of the eating and sleeping states.
//
// All comparisons allow a fixed tolerance to absorb scheduling jitter in the
// simulation under test.
type DeadlineRule struct {
	deps rulebook.Deps

	tolerance   int64
	timeToDie   int64
	timeToEat   int64
	timeToSleep int64

	// smelled marks philosophers whose missed death was already reported, so
	// a long agony is one record instead of one per subsequent line.
	smelled map[uint32]bool
}

var (
	_ rulebook.Rule     = (*DeadlineRule)(nil)
	_ rulebook.Finisher = (*DeadlineRule)(nil)
)

func (r *DeadlineRule) Name() string { return "deadlines" }

func (r *DeadlineRule) Init(deps rulebook.Deps) error {
	if deps.Table == nil {
		return errors.New("deadlines: table is required")
	}
	r.deps = deps
	r.tolerance = deps.Config.Tolerance.Milliseconds()
	r.timeToDie = deps.Config.TimeToDie.Milliseconds()
	r.timeToEat = deps.Config.TimeToEat.Milliseconds()
	r.timeToSleep = deps.Config.TimeToSleep.Milliseconds()
	r.smelled = make(map[uint32]bool)
	return nil
}

func (r *DeadlineRule) Observe(ev trace.Event) []rulebook.Violation {
	var violations []rulebook.Violation

	p := r.deps.Table.Seat(ev.Philosopher)
	if !p.Dead {
		switch ev.Kind {
		case trace.KindDied:
			deadline := int64(p.LastMealEnd) + r.timeToDie
			if int64(ev.Timestamp) < deadline-r.tolerance {
				violations = append(violations, rulebook.Violation{
					Rule:         r.Name(),
					Kind:         rulebook.KindPrematureDeath,
					Severity:     rulebook.SeverityViolation,
					Philosopher:  ev.Philosopher,
					Timestamp:    ev.Timestamp,
					HasTimestamp: true,
					Message: fmt.Sprintf("philosopher %d died with %d ms still ahead: deadline was %d ms",
						ev.Philosopher, deadline-int64(ev.Timestamp), deadline),
				})
			}

		case trace.KindSleeping:
			if p.State() == roster.StateEating {
				elapsed := int64(ev.Timestamp) - int64(p.EatingSince)
				if elapsed < r.timeToEat-r.tolerance {
					violations = append(violations, rulebook.Violation{
						Rule:         r.Name(),
						Kind:         rulebook.KindEatingTooShort,
						Severity:     rulebook.SeverityViolation,
						Philosopher:  ev.Philosopher,
						Timestamp:    ev.Timestamp,
						HasTimestamp: true,
						Message: fmt.Sprintf("philosopher %d ate for only %d ms; time to eat is %d ms",
							ev.Philosopher, elapsed, r.timeToEat),
					})
				} else {
					r.deps.Logger.Debug("meal finished",
						tag.NewUint32("philosopher", ev.Philosopher),
						tag.NewInt64("ateMs", elapsed),
					)
				}
			}

		case trace.KindThinking:
			if p.State() == roster.StateSleeping {
				elapsed := int64(ev.Timestamp) - int64(p.SleepingSince)
				if elapsed < r.timeToSleep-r.tolerance {
					violations = append(violations, rulebook.Violation{
						Rule:         r.Name(),
						Kind:         rulebook.KindSleepingTooShort,
						Severity:     rulebook.SeverityViolation,
						Philosopher:  ev.Philosopher,
						Timestamp:    ev.Timestamp,
						HasTimestamp: true,
						Message: fmt.Sprintf("philosopher %d woke up after only %d ms; time to sleep is %d ms",
							ev.Philosopher, elapsed, r.timeToSleep),
					})
				} else {
					r.deps.Logger.Debug("nap finished",
						tag.NewUint32("philosopher", ev.Philosopher),
						tag.NewInt64("sleptMs", elapsed),
					)
				}
			}
		}

		r.deps.Logger.Debug("time to die",
			tag.NewUint32("philosopher", ev.Philosopher),
			tag.NewInt64("remainingMs", int64(p.LastMealEnd)+r.timeToDie-int64(ev.Timestamp)),
		)
	}

	// The starving philosopher may well be the one seat printing nothing, so
	// the whole table is swept on every record.
	violations = append(violations, r.sweep(ev.Timestamp)...)
	return violations
}

// Finish sweeps the table once more at the last observed timestamp, catching
// philosophers whose deadline passed between the final records.
func (r *DeadlineRule) Finish(lastSeen uint64) []rulebook.Violation {
	return r.sweep(lastSeen)
}

func (r *DeadlineRule) sweep(now uint64) []rulebook.Violation {
	var violations []rulebook.Violation
	for id := uint32(1); id <= r.deps.Table.Size(); id++ {
		if r.smelled[id] {
			continue
		}
		deadline := r.timeToDie
		if p, ok := r.deps.Table.Lookup(id); ok {
			if p.Dead {
				continue
			}
			deadline = int64(p.LastMealEnd) + r.timeToDie
		}
		if int64(now) > deadline+r.tolerance {
			r.smelled[id] = true
			violations = append(violations, rulebook.Violation{
				Rule:         r.Name(),
				Kind:         rulebook.KindMissedDeath,
				Severity:     rulebook.SeverityViolation,
				Philosopher:  id,
				Timestamp:    now,
				HasTimestamp: true,
				Message: fmt.Sprintf("strange smell: philosopher %d should have died %d ms ago",
					id, int64(now)-deadline),
			})
		}
	}
	return violations
}
