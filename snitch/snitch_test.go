package snitch_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Plopez230/Philosopher-s-Snitch/config"
	"github.com/Plopez230/Philosopher-s-Snitch/internal/log"
	"github.com/Plopez230/Philosopher-s-Snitch/rulebook"
	"github.com/Plopez230/Philosopher-s-Snitch/scorebook"
	"github.com/Plopez230/Philosopher-s-Snitch/snitch"
)

func testConfig() config.Simulation {
	return config.Simulation{
		Philosophers: 2,
		TimeToDie:    800 * time.Millisecond,
		TimeToEat:    200 * time.Millisecond,
		TimeToSleep:  200 * time.Millisecond,
		Tolerance:    config.DefaultTolerance,
	}
}

func newSnitch(t *testing.T, cfg config.Simulation) *snitch.Snitch {
	t.Helper()
	s, err := snitch.New(snitch.Config{
		Simulation: cfg,
		Logger:     log.NewNoopLogger(),
	})
	require.NoError(t, err)
	return s
}

func runTrace(t *testing.T, cfg config.Simulation, input string) scorebook.Report {
	t.Helper()
	s := newSnitch(t, cfg)
	require.NoError(t, s.Run(strings.NewReader(input)))
	return s.Finish()
}

// cleanDinner is a legal alternating pattern for two philosophers with
// nobody starving past 800 ms.
const cleanDinner = `0 1 has taken a fork
0 1 has taken a fork
0 1 is eating
200 1 is sleeping
200 2 has taken a fork
200 2 has taken a fork
200 2 is eating
400 1 is thinking
400 2 is sleeping
400 1 has taken a fork
400 1 has taken a fork
400 1 is eating
600 2 is thinking
600 1 is sleeping
600 2 has taken a fork
600 2 has taken a fork
600 2 is eating
800 1 is thinking
800 2 is sleeping
`

func TestCleanDinner(t *testing.T) {
	report := runTrace(t, testConfig(), cleanDinner)
	assert.Empty(t, report.Anomalies)
	assert.Equal(t, scorebook.VerdictClean, report.Verdict)
	assert.Equal(t, 19, report.Events)
}

func TestMissingForkBeforeSecondMeal(t *testing.T) {
	// Philosopher 1's second meal starts 50 ms after its nap with no
	// intervening fork records: one invalid transition, verdict faulty.
	input := `0 1 has taken a fork
0 1 has taken a fork
0 1 is eating
200 1 is sleeping
250 1 is eating
`
	report := runTrace(t, testConfig(), input)
	require.Equal(t, 1, report.Counts[rulebook.KindInvalidTransition])
	assert.Equal(t, scorebook.VerdictFaulty, report.Verdict)

	invalid := report.Anomalies[0]
	assert.Equal(t, rulebook.KindInvalidTransition, invalid.Kind)
	assert.Equal(t, uint32(1), invalid.Philosopher)
}

func TestSingleTimeTravelRecord(t *testing.T) {
	input := `0 1 has taken a fork
0 1 has taken a fork
0 1 is eating
200 1 is sleeping
150 2 has taken a fork
400 1 is thinking
`
	report := runTrace(t, testConfig(), input)
	assert.Equal(t, 1, report.Counts[rulebook.KindTimeTravel])
	assert.Len(t, report.Anomalies, 1)
}

func TestParseNoiseKeepsCleanVerdict(t *testing.T) {
	input := "garbage in the stream\n" + cleanDinner
	report := runTrace(t, testConfig(), input)
	assert.Equal(t, 1, report.Counts[rulebook.KindParseFailure])
	assert.Equal(t, scorebook.VerdictClean, report.Verdict)
}

func TestUninvitedPhilosopherIsParseNoise(t *testing.T) {
	input := cleanDinner + "800 3 is thinking\n"
	report := runTrace(t, testConfig(), input)
	assert.Equal(t, 1, report.Counts[rulebook.KindParseFailure])
	assert.Equal(t, scorebook.VerdictClean, report.Verdict)
}

func TestForkDuplicationEndToEnd(t *testing.T) {
	input := `0 1 has taken a fork
0 1 has taken a fork
5 2 has taken a fork
`
	report := runTrace(t, testConfig(), input)
	require.Equal(t, 1, report.Counts[rulebook.KindForkDuplication])
	dup := report.Anomalies[0]
	assert.Equal(t, uint32(2), dup.Philosopher)
}

func TestFinishEatingEndToEnd(t *testing.T) {
	cfg := testConfig()
	mustEat := uint32(1)
	cfg.MustEat = &mustEat

	input := `0 1 has taken a fork
0 1 has taken a fork
0 1 is eating
200 1 is sleeping
200 2 has taken a fork
200 2 has taken a fork
200 2 is eating
400 1 is thinking
400 2 is sleeping
400 1 has taken a fork
400 1 has taken a fork
400 1 is eating
`
	report := runTrace(t, cfg, input)
	assert.Equal(t, scorebook.VerdictFaulty, report.Verdict)

	var extraMeals int
	for _, v := range report.Anomalies {
		if v.Kind == rulebook.KindFinishEating && v.Severity == rulebook.SeverityViolation {
			extraMeals++
		}
	}
	assert.Equal(t, 1, extraMeals)
}

func TestMissedDeathEndToEnd(t *testing.T) {
	// Philosopher 2 stays silent while philosopher 1 keeps the stream
	// going past 2's deadline plus two tolerances.
	input := `0 1 has taken a fork
0 1 has taken a fork
0 1 is eating
200 1 is sleeping
400 1 is thinking
820 1 has taken a fork
`
	report := runTrace(t, testConfig(), input)
	require.Equal(t, 1, report.Counts[rulebook.KindMissedDeath])
	assert.Equal(t, scorebook.VerdictFaulty, report.Verdict)
}

func TestPrematureDeathEndToEnd(t *testing.T) {
	input := "780 1 died\n"
	report := runTrace(t, testConfig(), input)
	assert.Equal(t, 1, report.Counts[rulebook.KindPrematureDeath])
	assert.Equal(t, scorebook.VerdictFaulty, report.Verdict)
}

func TestDeathOnDeadlineIsClean(t *testing.T) {
	cfg := testConfig()
	cfg.Philosophers = 1
	input := "800 1 died\n"
	report := runTrace(t, cfg, input)
	assert.Zero(t, report.Counts[rulebook.KindPrematureDeath])
	assert.Zero(t, report.Counts[rulebook.KindMissedDeath])
	assert.Equal(t, scorebook.VerdictClean, report.Verdict)
}

func TestIdempotentReruns(t *testing.T) {
	input := `0 1 has taken a fork
junk line
0 1 has taken a fork
0 1 is eating
150 1 is sleeping
100 2 has taken a fork
900 1 is thinking
`
	cfg := testConfig()
	first := runTrace(t, cfg, input)
	second := runTrace(t, cfg, input)

	assert.Equal(t, first.Verdict, second.Verdict)
	assert.Equal(t, first.Counts, second.Counts)
	require.Equal(t, len(first.Anomalies), len(second.Anomalies))
	for i := range first.Anomalies {
		assert.Equal(t, first.Anomalies[i], second.Anomalies[i])
	}
}

func TestFinishIsIdempotent(t *testing.T) {
	s := newSnitch(t, testConfig())
	require.NoError(t, s.Run(strings.NewReader(cleanDinner)))
	first := s.Finish()
	second := s.Finish()
	assert.Equal(t, len(first.Anomalies), len(second.Anomalies))
}

func TestNewRequiresLogger(t *testing.T) {
	_, err := snitch.New(snitch.Config{Simulation: testConfig()})
	assert.Error(t, err)
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Philosophers = 0
	_, err := snitch.New(snitch.Config{Simulation: cfg, Logger: log.NewNoopLogger()})
	assert.Error(t, err)
}

func TestScorebookQueries(t *testing.T) {
	s := newSnitch(t, testConfig())
	require.NoError(t, s.Run(strings.NewReader("0 1 is eating\n")))
	s.Finish()

	records := s.Scorebook().QueryByPhilosopher(1)
	require.NotEmpty(t, records)
	assert.Equal(t, rulebook.KindInvalidTransition, records[0].Kind)
}
