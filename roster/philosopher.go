package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/Plopez230/Philosopher-s-Snitch/trace"
)

// Philosopher states. A record starts out thinking and ends, at most once,
// dead.
const (
	StateThinking = "thinking"
	StateWaiting  = "waiting"
	StateEating   = "eating"
	StateSleeping = "sleeping"
	StateDead     = "dead"
)

// fsm event names driving the philosopher state machine.
const (
	actionSeize  = "seize"
	actionDine   = "dine"
	actionRest   = "rest"
	actionPonder = "ponder"
	actionPerish = "perish"
)

var fsmActions = map[trace.Kind]string{
	trace.KindTookFork: actionSeize,
	trace.KindEating:   actionDine,
	trace.KindSleeping: actionRest,
	trace.KindThinking: actionPonder,
	trace.KindDied:     actionPerish,
}

// Philosopher tracks one seat at the table. It is created lazily on the first
// well-formed event naming its id and lives for the whole run.
type Philosopher struct {
	ID  uint32
	FSM *fsm.FSM

	// LastEventAt is the largest timestamp observed for this id.
	LastEventAt uint64
	// LastMealEnd is the timestamp of the last completed meal (the is-sleeping
	// record that ended it). Zero until the first meal completes, which makes
	// the first death deadline fall at simulation start + time to die.
	LastMealEnd uint64
	// EatingSince and SleepingSince hold the entry timestamps of the current
	// eating and sleeping phases, for duration checks on the way out.
	EatingSince   uint64
	SleepingSince uint64

	// Meals counts validated meal completions.
	Meals uint32
	// Finished is set once Meals reaches the configured must-eat count.
	Finished bool

	// Forks are the fork ids held under the classic ruleset.
	Forks []ForkID
	// Units is the number of fork units held; under classic it mirrors
	// len(Forks), under bonus it counts pool units.
	Units int

	// Dead is set when a death record is accepted. No state change is legal
	// afterwards, and Forks/Units are empty at the moment it is set.
	Dead   bool
	DiedAt uint64

	// Seen is set once any event for this id has been applied.
	Seen bool
}

// NewPhilosopher seats a new, thinking philosopher.
func NewPhilosopher(id uint32) *Philosopher {
	p := &Philosopher{ID: id}
	p.FSM = fsm.NewFSM(
		StateThinking,
		fsm.Events{
			{Name: actionSeize, Src: []string{StateThinking}, Dst: StateWaiting},
			// Second fork of the pair; the unit-count guard in CanApply keeps
			// a third one out.
			{Name: actionSeize, Src: []string{StateWaiting}, Dst: StateWaiting},
			{Name: actionDine, Src: []string{StateWaiting}, Dst: StateEating},
			{Name: actionRest, Src: []string{StateEating}, Dst: StateSleeping},
			{Name: actionPonder, Src: []string{StateSleeping}, Dst: StateThinking},
			{Name: actionPerish, Src: []string{StateThinking, StateWaiting, StateEating, StateSleeping}, Dst: StateDead},
		},
		fsm.Callbacks{},
	)
	return p
}

// State returns the current state name.
func (p *Philosopher) State() string {
	return p.FSM.Current()
}

// CanApply reports whether kind is a legal transition out of the current
// state. Fork-count guards refine the raw state machine: eating requires both
// forks, and only two forks fit in two hands.
func (p *Philosopher) CanApply(kind trace.Kind) bool {
	action, ok := fsmActions[kind]
	if !ok || !p.FSM.Can(action) {
		return false
	}
	switch kind {
	case trace.KindTookFork:
		return p.Units < 2
	case trace.KindEating:
		return p.Units == 2
	}
	return true
}

// Expected returns the phrases that would be legal next, for transition
// violation messages.
func (p *Philosopher) Expected() []string {
	switch p.FSM.Current() {
	case StateThinking:
		return []string{trace.KindTookFork.Phrase(), trace.KindDied.Phrase()}
	case StateWaiting:
		if p.Units < 2 {
			return []string{trace.KindTookFork.Phrase(), trace.KindDied.Phrase()}
		}
		return []string{trace.KindEating.Phrase(), trace.KindDied.Phrase()}
	case StateEating:
		return []string{trace.KindSleeping.Phrase(), trace.KindDied.Phrase()}
	case StateSleeping:
		return []string{trace.KindThinking.Phrase(), trace.KindDied.Phrase()}
	default:
		return nil
	}
}

// apply advances the state machine and bookkeeping for a legal event. Illegal
// events must not reach here; the caller checks CanApply first so that an
// invalid record leaves the last legal state in place.
func (p *Philosopher) apply(ev trace.Event, mustEat *uint32) {
	action := fsmActions[ev.Kind]
	if err := p.FSM.Event(context.Background(), action); err != nil {
		// NoTransitionError is the library's sentinel for a completed
		// self-transition (the second seize in waiting), not a rejection.
		if !errors.As(err, &fsm.NoTransitionError{}) {
			// Unreachable after CanApply; kept as a loud marker for refactors.
			panic(fmt.Sprintf("roster: fsm rejected validated action %q from %q: %v", action, p.FSM.Current(), err))
		}
	}
	switch ev.Kind {
	case trace.KindEating:
		p.EatingSince = ev.Timestamp
	case trace.KindSleeping:
		p.Meals++
		p.LastMealEnd = ev.Timestamp
		p.SleepingSince = ev.Timestamp
		if mustEat != nil && p.Meals >= *mustEat {
			p.Finished = true
		}
	case trace.KindDied:
		p.Dead = true
		p.DiedAt = ev.Timestamp
	}
}

func (p *Philosopher) String() string {
	return fmt.Sprintf("Philosopher{id=%d, state=%s, forks=%d, meals=%d}",
		p.ID, p.FSM.Current(), p.Units, p.Meals)
}
