package rulebook

import (
	"fmt"
	"strings"
)

// Kind classifies an anomaly.
type Kind string

const (
	KindParseFailure      Kind = "parse_failure"
	KindTimeTravel        Kind = "time_travel"
	KindInvalidTransition Kind = "invalid_transition"
	KindForkDuplication   Kind = "fork_duplication"
	KindPrematureDeath    Kind = "premature_death"
	KindMissedDeath       Kind = "missed_death"
	KindEatingTooShort    Kind = "eating_too_short"
	KindSleepingTooShort  Kind = "sleeping_too_short"
	KindFinishEating      Kind = "finish_eating"
	KindPostmortemEvent   Kind = "postmortem_event"
)

// Kinds lists every category in report order.
var Kinds = []Kind{
	KindParseFailure,
	KindTimeTravel,
	KindInvalidTransition,
	KindForkDuplication,
	KindPrematureDeath,
	KindMissedDeath,
	KindEatingTooShort,
	KindSleepingTooShort,
	KindFinishEating,
	KindPostmortemEvent,
}

// Severity separates verdict-breaking violations from logged-only warnings.
type Severity int

const (
	// SeverityWarning is recorded but keeps a clean verdict.
	SeverityWarning Severity = iota
	// SeverityViolation makes the final verdict faulty.
	SeverityViolation
)

func (s Severity) String() string {
	if s == SeverityViolation {
		return "violation"
	}
	return "warning"
}

// Violation is one detected anomaly. Records are append-only and kept in
// detection order, which is not necessarily timestamp order since malformed
// lines can disrupt the stream.
type Violation struct {
	// Rule is the name of the rule that detected the anomaly.
	Rule     string
	Kind     Kind
	Severity Severity
	// Philosopher is the implicated seat, zero when not applicable.
	Philosopher uint32
	// Timestamp is the implicated event time, valid only when HasTimestamp.
	Timestamp    uint64
	HasTimestamp bool
	// Message is the human-readable detail.
	Message string
}

func (v Violation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", v.Severity, v.Kind)
	if v.Philosopher != 0 {
		fmt.Fprintf(&b, " phil=%d", v.Philosopher)
	}
	if v.HasTimestamp {
		fmt.Fprintf(&b, " t=%d", v.Timestamp)
	}
	fmt.Fprintf(&b, " %s", v.Message)
	return b.String()
}
