package rules

import (
	"errors"
	"fmt"

	"github.com/Plopez230/Philosopher-s-Snitch/config"
	"github.com/Plopez230/Philosopher-s-Snitch/internal/log/tag"
	"github.com/Plopez230/Philosopher-s-Snitch/roster"
	"github.com/Plopez230/Philosopher-s-Snitch/rulebook"
	"github.com/Plopez230/Philosopher-s-Snitch/trace"
)

// ForkRule maintains the fork ledger and flags acquisitions that should have
// blocked: a fork still held by a neighbor, a third fork, or an exhausted
// pool under the bonus ruleset. Forks come back to the table when their
// holder finishes eating or dies.
type ForkRule struct {
	deps rulebook.Deps
}

var _ rulebook.Rule = (*ForkRule)(nil)

func (r *ForkRule) Name() string { return "forks" }

func (r *ForkRule) Init(deps rulebook.Deps) error {
	if deps.Table == nil {
		return errors.New("forks: table is required")
	}
	r.deps = deps
	return nil
}

func (r *ForkRule) Observe(ev trace.Event) []rulebook.Violation {
	p := r.deps.Table.Seat(ev.Philosopher)
	if p.Dead {
		return nil
	}
	ledger := r.deps.Table.Ledger()

	switch ev.Kind {
	case trace.KindTookFork:
		if conflict := ledger.Acquire(p); conflict != nil {
			return []rulebook.Violation{{
				Rule:         r.Name(),
				Kind:         rulebook.KindForkDuplication,
				Severity:     rulebook.SeverityViolation,
				Philosopher:  ev.Philosopher,
				Timestamp:    ev.Timestamp,
				HasTimestamp: true,
				Message:      fmt.Sprintf("philosopher %d picked up a magic fork: %s", ev.Philosopher, conflict.Reason),
			}}
		}
		if r.deps.Config.Ruleset == config.RulesetBonus {
			r.deps.Logger.Debug("fork taken from the pool",
				tag.NewUint32("philosopher", ev.Philosopher),
				tag.NewInt("available", ledger.Available()),
			)
		} else {
			r.deps.Logger.Debug("fork taken",
				tag.NewUint32("philosopher", ev.Philosopher),
				tag.NewInt("held", p.Units),
			)
		}

	case trace.KindSleeping:
		// Leaving the eating state returns both forks to the table. An
		// is-sleeping record in any other state is an invalid transition and
		// releases nothing.
		if p.State() == roster.StateEating {
			ledger.Release(p)
		}

	case trace.KindDied:
		ledger.Release(p)
	}

	return nil
}
