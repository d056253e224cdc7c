package rules

import "github.com/Plopez230/Philosopher-s-Snitch/rulebook"

// Default returns the full rule set in evaluation order. Order matters: the
// timeline watermark is checked first, then state legality, then fork
// bookkeeping, then timing, then meal accounting.
func Default() []rulebook.Rule {
	return []rulebook.Rule{
		&TimelineRule{},
		&TransitionRule{},
		&ForkRule{},
		&DeadlineRule{},
		&MealRule{},
	}
}
