package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Plopez230/Philosopher-s-Snitch/rulebook"
	"github.com/Plopez230/Philosopher-s-Snitch/trace"
)

func TestLegalDinnerHasNoTransitionViolations(t *testing.T) {
	h := newHarness(t, testConfig(2))
	vs := h.feed(
		event(0, 1, trace.KindTookFork),
		event(0, 1, trace.KindTookFork),
		event(0, 1, trace.KindEating),
		event(200, 1, trace.KindSleeping),
		event(400, 1, trace.KindThinking),
	)
	assert.Empty(t, ofKind(vs, rulebook.KindInvalidTransition))
	assert.Empty(t, ofKind(vs, rulebook.KindPostmortemEvent))
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name   string
		events []trace.Event
		// expect is the number of invalid transition records.
		expect int
	}{
		{
			name:   "eating without forks",
			events: []trace.Event{event(0, 1, trace.KindEating)},
			expect: 1,
		},
		{
			name: "eating with a single fork",
			events: []trace.Event{
				event(0, 1, trace.KindTookFork),
				event(5, 1, trace.KindEating),
			},
			expect: 1,
		},
		{
			name: "sleeping from thinking",
			events: []trace.Event{
				event(0, 1, trace.KindSleeping),
			},
			expect: 1,
		},
		{
			name: "eating after sleeping without forks",
			events: []trace.Event{
				event(0, 1, trace.KindTookFork),
				event(0, 1, trace.KindTookFork),
				event(0, 1, trace.KindEating),
				event(200, 1, trace.KindSleeping),
				event(250, 1, trace.KindEating),
			},
			expect: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testConfig(2))
			vs := h.feed(tt.events...)
			invalid := ofKind(vs, rulebook.KindInvalidTransition)
			require.Len(t, invalid, tt.expect)
			for _, v := range invalid {
				assert.Equal(t, rulebook.SeverityViolation, v.Severity)
				assert.Contains(t, v.Message, "expected")
			}
		})
	}
}

func TestInvalidRecordDoesNotCascade(t *testing.T) {
	h := newHarness(t, testConfig(2))
	// The illegal eating record leaves philosopher 1 thinking, so the
	// following fork and meal records are judged legal from there.
	vs := h.feed(
		event(0, 1, trace.KindEating),
		event(10, 1, trace.KindTookFork),
		event(10, 1, trace.KindTookFork),
		event(10, 1, trace.KindEating),
	)
	assert.Len(t, ofKind(vs, rulebook.KindInvalidTransition), 1)
}

func TestPostmortemEvents(t *testing.T) {
	h := newHarness(t, testConfig(2))
	vs := h.feed(
		event(800, 1, trace.KindDied),
		event(810, 1, trace.KindThinking),
		event(820, 1, trace.KindTookFork),
	)
	postmortem := ofKind(vs, rulebook.KindPostmortemEvent)
	require.Len(t, postmortem, 2)
	for _, v := range postmortem {
		assert.Equal(t, rulebook.SeverityViolation, v.Severity)
		assert.Equal(t, uint32(1), v.Philosopher)
	}
}

func TestDinnerContinuingAfterDeathIsWarnedOnce(t *testing.T) {
	h := newHarness(t, testConfig(3))
	vs := h.feed(
		event(800, 1, trace.KindDied),
		event(805, 2, trace.KindTookFork),
		event(806, 3, trace.KindTookFork),
	)
	postmortem := ofKind(vs, rulebook.KindPostmortemEvent)
	require.Len(t, postmortem, 1)
	assert.Equal(t, rulebook.SeverityWarning, postmortem[0].Severity)
	assert.Contains(t, postmortem[0].Message, "philosopher 1 died at 800 ms")
}
