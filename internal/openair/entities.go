package openair

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Airspace is one AC record and the geometry built from its drawing commands.
type Airspace struct {
	Class string
	Name  string
	Upper string
	Lower string
	Ring  orb.Ring
	Line  int // Line of the AC command
}

// ParseError points at the line that broke an airspace record.
type ParseError struct {
	Line   int
	Record string // Airspace name when known
	Err    error
}

func (e *ParseError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("line %d (%s): %v", e.Line, e.Record, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
