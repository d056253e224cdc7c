package roster

import (
	"fmt"

	"github.com/Plopez230/Philosopher-s-Snitch/config"
)

// ForkID identifies one fork on the table. Forks are numbered 0..N-1
// clockwise; philosopher i owns the pair {i-1, i mod N}.
type ForkID uint32

// Conflict describes a fork acquisition that should have blocked in the
// simulation but was logged as succeeding.
type Conflict struct {
	// Fork is the contested fork under the classic ruleset.
	Fork ForkID
	// Holder is the philosopher currently holding the contested fork, zero
	// when the conflict is not about another holder.
	Holder uint32
	// Reason is a human-readable explanation.
	Reason string
}

// ForkLedger tracks fork ownership. Under the classic ruleset each fork maps
// to at most one holder; under bonus the table is a counting pool of
// philosophers/2 units.
type ForkLedger struct {
	ruleset config.Ruleset
	seats   uint32

	holders   map[ForkID]uint32
	available int
	poolSize  int
}

// NewForkLedger sets up the ledger for the configured table.
func NewForkLedger(cfg config.Simulation) *ForkLedger {
	return &ForkLedger{
		ruleset:   cfg.Ruleset,
		seats:     cfg.Philosophers,
		holders:   make(map[ForkID]uint32),
		available: cfg.PoolSize(),
		poolSize:  cfg.PoolSize(),
	}
}

// PairFor returns the left and right fork of philosopher id. On a one-seat
// table both are the same single fork.
func (l *ForkLedger) PairFor(id uint32) (left, right ForkID) {
	return ForkID(id - 1), ForkID(id % l.seats)
}

// Holder returns the philosopher currently holding fork f, if any.
func (l *ForkLedger) Holder(f ForkID) (uint32, bool) {
	id, ok := l.holders[f]
	return id, ok
}

// Available returns the free units of the bonus pool.
func (l *ForkLedger) Available() int {
	return l.available
}

// Acquire records philosopher p picking up one fork. It returns nil and
// updates the ledger and p when the acquisition is legal, or a Conflict
// describing why the fork could not have been free.
func (l *ForkLedger) Acquire(p *Philosopher) *Conflict {
	if p.Units >= 2 {
		return &Conflict{Reason: fmt.Sprintf("philosopher %d already holds two forks", p.ID)}
	}
	if l.ruleset == config.RulesetBonus {
		if l.available == 0 {
			return &Conflict{Reason: fmt.Sprintf("fork pool of %d is exhausted", l.poolSize)}
		}
		l.available--
		p.Units++
		return nil
	}

	left, right := l.PairFor(p.ID)
	if left == right && p.Units >= 1 {
		// Alone at the table there is a single fork, and it is already in hand.
		return &Conflict{Fork: left, Reason: fmt.Sprintf("philosopher %d has the only fork on the table", p.ID)}
	}

	var candidate ForkID
	switch {
	case l.heldBy(left, p.ID):
		candidate = right
	case l.heldBy(right, p.ID):
		candidate = left
	default:
		candidate = left
		if _, taken := l.holders[left]; taken {
			candidate = right
		}
	}

	if holder, taken := l.holders[candidate]; taken {
		return &Conflict{
			Fork:   candidate,
			Holder: holder,
			Reason: fmt.Sprintf("fork %d is still held by philosopher %d", candidate, holder),
		}
	}
	l.holders[candidate] = p.ID
	p.Forks = append(p.Forks, candidate)
	p.Units++
	return nil
}

// Release returns every fork (or pool unit) held by p to the table. Called
// when p finishes eating or dies.
func (l *ForkLedger) Release(p *Philosopher) {
	if l.ruleset == config.RulesetBonus {
		l.available += p.Units
		if l.available > l.poolSize {
			l.available = l.poolSize
		}
		p.Units = 0
		return
	}
	for _, f := range p.Forks {
		if l.holders[f] == p.ID {
			delete(l.holders, f)
		}
	}
	p.Forks = nil
	p.Units = 0
}

func (l *ForkLedger) heldBy(f ForkID, id uint32) bool {
	holder, ok := l.holders[f]
	return ok && holder == id
}
