package scorebook

import (
	"sync"

	"github.com/Plopez230/Philosopher-s-Snitch/rulebook"
)

// Scorebook keeps every anomaly of one run in detection order. Records are
// append-only and never mutated after insertion.
type Scorebook struct {
	mu        sync.RWMutex
	anomalies []rulebook.Violation
}

// NewScorebook creates an empty scorebook.
func NewScorebook() *Scorebook {
	return &Scorebook{
		anomalies: make([]rulebook.Violation, 0),
	}
}

// Add records one anomaly.
func (s *Scorebook) Add(v rulebook.Violation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anomalies = append(s.anomalies, v)
}

// AddAll records multiple anomalies, preserving their order.
func (s *Scorebook) AddAll(vs []rulebook.Violation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anomalies = append(s.anomalies, vs...)
}

// All returns a copy of the recorded anomalies in detection order.
func (s *Scorebook) All() []rulebook.Violation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]rulebook.Violation, len(s.anomalies))
	copy(out, s.anomalies)
	return out
}

// CountByKind returns the number of records per category.
func (s *Scorebook) CountByKind() map[rulebook.Kind]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[rulebook.Kind]int)
	for _, v := range s.anomalies {
		counts[v.Kind]++
	}
	return counts
}

// QueryByKind returns the records of one category in detection order.
func (s *Scorebook) QueryByKind(kind rulebook.Kind) []rulebook.Violation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []rulebook.Violation
	for _, v := range s.anomalies {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}

// QueryByPhilosopher returns the records implicating one philosopher.
func (s *Scorebook) QueryByPhilosopher(id uint32) []rulebook.Violation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []rulebook.Violation
	for _, v := range s.anomalies {
		if v.Philosopher == id {
			out = append(out, v)
		}
	}
	return out
}

// Violations returns how many records carry violation severity.
func (s *Scorebook) Violations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.anomalies {
		if v.Severity == rulebook.SeverityViolation {
			n++
		}
	}
	return n
}
