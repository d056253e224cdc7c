package roster

import (
	"slices"

	"github.com/Plopez230/Philosopher-s-Snitch/config"
	"github.com/Plopez230/Philosopher-s-Snitch/trace"
)

// Table owns all per-philosopher records and the fork ledger for one
// validation run. It is mutated in place by the single validation pass, so it
// needs no locking.
type Table struct {
	cfg    config.Simulation
	seats  map[uint32]*Philosopher
	ledger *ForkLedger
}

// NewTable sets an empty table for the configured dinner.
func NewTable(cfg config.Simulation) *Table {
	return &Table{
		cfg:    cfg,
		seats:  make(map[uint32]*Philosopher),
		ledger: NewForkLedger(cfg),
	}
}

// Seat returns the record for philosopher id, creating it on first use.
func (t *Table) Seat(id uint32) *Philosopher {
	p, ok := t.seats[id]
	if !ok {
		p = NewPhilosopher(id)
		t.seats[id] = p
	}
	return p
}

// Lookup returns the record for id without creating one.
func (t *Table) Lookup(id uint32) (*Philosopher, bool) {
	p, ok := t.seats[id]
	return p, ok
}

// Ledger returns the fork ledger.
func (t *Table) Ledger() *ForkLedger {
	return t.ledger
}

// Size returns the configured number of seats.
func (t *Table) Size() uint32 {
	return t.cfg.Philosophers
}

// Philosophers returns the seated records ordered by id, for deterministic
// iteration.
func (t *Table) Philosophers() []*Philosopher {
	out := make([]*Philosopher, 0, len(t.seats))
	for _, p := range t.seats {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Philosopher) int {
		return int(a.ID) - int(b.ID)
	})
	return out
}

// Apply folds one event into the table after the rules have inspected it.
// Illegal transitions leave the state machine untouched so that later events
// are still judged against the last legal state, and nothing moves once a
// philosopher is dead. Fork ownership is maintained by the fork rule, not
// here.
func (t *Table) Apply(ev trace.Event) {
	p := t.Seat(ev.Philosopher)
	if !p.Dead {
		if p.CanApply(ev.Kind) {
			p.apply(ev, t.cfg.MustEat)
		}
		if ev.Timestamp > p.LastEventAt {
			p.LastEventAt = ev.Timestamp
		}
	}
	p.Seen = true
}
