package trace

// Kind enumerates the recognized event vocabulary of the simulation log.
type Kind int

const (
	KindUnknown Kind = iota
	KindTookFork
	KindEating
	KindSleeping
	KindThinking
	KindDied
)

// phrases is the simulator's fixed vocabulary. Anything else is a parse
// failure, so an unrecognized phrase can never be misread as a valid kind.
var phrases = map[string]Kind{
	"has taken a fork": KindTookFork,
	"is eating":        KindEating,
	"is sleeping":      KindSleeping,
	"is thinking":      KindThinking,
	"died":             KindDied,
}

func (k Kind) String() string {
	switch k {
	case KindTookFork:
		return "took_fork"
	case KindEating:
		return "eating"
	case KindSleeping:
		return "sleeping"
	case KindThinking:
		return "thinking"
	case KindDied:
		return "died"
	default:
		return "unknown"
	}
}

// Phrase returns the log vocabulary for the kind, as printed by the simulation.
func (k Kind) Phrase() string {
	for p, kind := range phrases {
		if kind == k {
			return p
		}
	}
	return "unknown"
}

// Event is one well-formed record of the simulation log.
type Event struct {
	// Timestamp is in milliseconds since simulation start.
	Timestamp uint64
	// Philosopher is the 1-based seat number.
	Philosopher uint32
	Kind        Kind
	// Raw is the line as received, whitespace-normalized.
	Raw string
	// Line is the 1-based input line number.
	Line int
}

// ParseFailure describes a line that did not match the log grammar. It is
// reported as an anomaly but never updates any dinner state.
type ParseFailure struct {
	Line   int
	Raw    string
	Reason string
}
