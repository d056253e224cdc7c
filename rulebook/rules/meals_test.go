package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Plopez230/Philosopher-s-Snitch/rulebook"
	"github.com/Plopez230/Philosopher-s-Snitch/trace"
)

func TestExtraMealAfterFinishing(t *testing.T) {
	cfg := testConfig(2)
	mustEat := uint32(1)
	cfg.MustEat = &mustEat
	h := newHarness(t, cfg)

	vs := h.feed(mealCycle(0, 1, 200)...)
	vs = append(vs, h.feed(
		event(400, 1, trace.KindThinking),
		event(400, 1, trace.KindTookFork),
		event(400, 1, trace.KindTookFork),
		event(400, 1, trace.KindEating),
	)...)

	finish := ofKind(vs, rulebook.KindFinishEating)
	var violations []rulebook.Violation
	for _, v := range finish {
		if v.Severity == rulebook.SeverityViolation {
			violations = append(violations, v)
		}
	}
	require.Len(t, violations, 1)
	assert.Equal(t, uint32(1), violations[0].Philosopher)
	assert.Contains(t, violations[0].Message, "already ate 1 times")

	p, ok := h.table.Lookup(1)
	require.True(t, ok)
	assert.True(t, p.Finished, "the record stays marked finished")
}

func TestNoMustEatMeansNoMealViolations(t *testing.T) {
	h := newHarness(t, testConfig(2))
	vs := h.feed(mealCycle(0, 1, 200)...)
	vs = append(vs, h.feed(
		event(400, 1, trace.KindThinking),
		event(400, 1, trace.KindTookFork),
		event(400, 1, trace.KindTookFork),
		event(400, 1, trace.KindEating),
	)...)
	assert.Empty(t, ofKind(vs, rulebook.KindFinishEating))
}

func TestDinnerOverWarning(t *testing.T) {
	cfg := testConfig(2)
	mustEat := uint32(1)
	cfg.MustEat = &mustEat
	h := newHarness(t, cfg)

	vs := h.feed(mealCycle(0, 1, 200)...)
	vs = append(vs, h.feed(mealCycle(200, 2, 200)...)...)

	finish := ofKind(vs, rulebook.KindFinishEating)
	require.Len(t, finish, 1)
	assert.Equal(t, rulebook.SeverityWarning, finish[0].Severity)
	assert.Contains(t, finish[0].Message, "the dinner is over")
}
