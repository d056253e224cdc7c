package scorebook

import (
	"fmt"
	"io"

	"github.com/Plopez230/Philosopher-s-Snitch/rulebook"
)

// Verdict is the overall outcome of a run.
type Verdict int

const (
	// VerdictClean means no violation-severity record was found. Warnings
	// such as pure parse noise do not spoil it.
	VerdictClean Verdict = iota
	// VerdictFaulty means at least one violation was found.
	VerdictFaulty
)

func (v Verdict) String() string {
	if v == VerdictFaulty {
		return "FAULTY"
	}
	return "CLEAN"
}

// Report is the compiled outcome of one run.
type Report struct {
	// Counts holds the number of records per category.
	Counts map[rulebook.Kind]int
	// Anomalies is the full record list in detection order.
	Anomalies []rulebook.Violation
	Verdict   Verdict
	// Lines and Events count the consumed input.
	Lines  int
	Events int
}

// Compile builds the report for everything recorded so far.
func (s *Scorebook) Compile(lines, events int) Report {
	verdict := VerdictClean
	if s.Violations() > 0 {
		verdict = VerdictFaulty
	}
	return Report{
		Counts:    s.CountByKind(),
		Anomalies: s.All(),
		Verdict:   verdict,
		Lines:     lines,
		Events:    events,
	}
}

// Render writes the human-readable report. Normal mode prints per-category
// counts and the verdict; verbose mode prepends every record in detection
// order. Output is deterministic: categories appear in a fixed order.
func (r Report) Render(w io.Writer, verbose bool) error {
	if verbose {
		for _, v := range r.Anomalies {
			if _, err := fmt.Fprintln(w, v.String()); err != nil {
				return err
			}
		}
		if len(r.Anomalies) > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintf(w, "lines: %d  events: %d  anomalies: %d\n",
		r.Lines, r.Events, len(r.Anomalies)); err != nil {
		return err
	}
	for _, kind := range rulebook.Kinds {
		if n := r.Counts[kind]; n > 0 {
			if _, err := fmt.Fprintf(w, "  %-20s %d\n", kind, n); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "verdict: %s\n", r.Verdict)
	return err
}
