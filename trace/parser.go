package trace

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser turns raw log lines into events. It is pure: a line either yields an
// Event or a ParseFailure, and neither path touches any dinner state.
type Parser struct {
	philosophers uint32
}

// NewParser returns a parser accepting philosopher ids in [1, philosophers].
func NewParser(philosophers uint32) *Parser {
	return &Parser{philosophers: philosophers}
}

// Parse parses one line. Exactly one of the results is non-zero: a well-formed
// line yields (Event, nil), anything else yields a failure describing why.
func (p *Parser) Parse(line string, lineNo int) (Event, *ParseFailure) {
	fields := strings.Fields(line)
	raw := strings.Join(fields, " ")
	if len(fields) < 3 {
		return Event{}, &ParseFailure{
			Line:   lineNo,
			Raw:    raw,
			Reason: "expected <timestamp> <philosopher> <phrase>",
		}
	}

	ts, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Event{}, &ParseFailure{
			Line:   lineNo,
			Raw:    raw,
			Reason: fmt.Sprintf("timestamp %q is not a non-negative integer", fields[0]),
		}
	}

	id, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return Event{}, &ParseFailure{
			Line:   lineNo,
			Raw:    raw,
			Reason: fmt.Sprintf("philosopher %q is not a valid id", fields[1]),
		}
	}
	// An id outside the table cannot name an existing philosopher, so the
	// line is rejected here rather than creating a phantom record.
	if id < 1 || id > uint64(p.philosophers) {
		return Event{}, &ParseFailure{
			Line:   lineNo,
			Raw:    raw,
			Reason: fmt.Sprintf("philosopher %d was not invited: ids run from 1 to %d", id, p.philosophers),
		}
	}

	phrase := strings.Join(fields[2:], " ")
	kind, ok := phrases[phrase]
	if !ok {
		return Event{}, &ParseFailure{
			Line:   lineNo,
			Raw:    raw,
			Reason: fmt.Sprintf("unrecognized phrase %q", phrase),
		}
	}

	return Event{
		Timestamp:   ts,
		Philosopher: uint32(id),
		Kind:        kind,
		Raw:         raw,
		Line:        lineNo,
	}, nil
}
