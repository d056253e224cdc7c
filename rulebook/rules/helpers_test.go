package rules_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Plopez230/Philosopher-s-Snitch/config"
	"github.com/Plopez230/Philosopher-s-Snitch/internal/log"
	"github.com/Plopez230/Philosopher-s-Snitch/roster"
	"github.com/Plopez230/Philosopher-s-Snitch/rulebook"
	"github.com/Plopez230/Philosopher-s-Snitch/rulebook/rules"
	"github.com/Plopez230/Philosopher-s-Snitch/trace"
)

func testConfig(philosophers uint32) config.Simulation {
	return config.Simulation{
		Philosophers: philosophers,
		TimeToDie:    800 * time.Millisecond,
		TimeToEat:    200 * time.Millisecond,
		TimeToSleep:  200 * time.Millisecond,
		Tolerance:    config.DefaultTolerance,
	}
}

func event(ts uint64, id uint32, kind trace.Kind) trace.Event {
	return trace.Event{Timestamp: ts, Philosopher: id, Kind: kind}
}

// harness runs the full default rule pipeline the way the engine does, so a
// rule under test sees realistic table state from the surrounding rules.
type harness struct {
	t     *testing.T
	table *roster.Table
	reg   *rulebook.Registry
}

func newHarness(t *testing.T, cfg config.Simulation) *harness {
	t.Helper()
	table := roster.NewTable(cfg)
	reg := rulebook.NewRegistry()
	for _, r := range rules.Default() {
		reg.Register(r)
	}
	require.NoError(t, reg.Init(rulebook.Deps{
		Config: cfg,
		Table:  table,
		Logger: log.NewNoopLogger(),
	}))
	return &harness{t: t, table: table, reg: reg}
}

// feed observes and applies the events in order, returning every violation.
func (h *harness) feed(events ...trace.Event) []rulebook.Violation {
	h.t.Helper()
	var out []rulebook.Violation
	var lastSeen uint64
	for _, ev := range events {
		out = append(out, h.reg.Observe(ev)...)
		h.table.Apply(ev)
		if ev.Timestamp > lastSeen {
			lastSeen = ev.Timestamp
		}
	}
	return out
}

// finish runs the end-of-stream pass at lastSeen.
func (h *harness) finish(lastSeen uint64) []rulebook.Violation {
	return h.reg.Finish(lastSeen)
}

// ofKind filters violations by category.
func ofKind(vs []rulebook.Violation, kind rulebook.Kind) []rulebook.Violation {
	var out []rulebook.Violation
	for _, v := range vs {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}

// mealCycle returns a full legal eat cycle for one philosopher starting at
// ts: two forks, eating, then sleeping at ts+eat.
func mealCycle(ts uint64, id uint32, eat uint64) []trace.Event {
	return []trace.Event{
		event(ts, id, trace.KindTookFork),
		event(ts, id, trace.KindTookFork),
		event(ts, id, trace.KindEating),
		event(ts+eat, id, trace.KindSleeping),
	}
}
