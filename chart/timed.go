package chart

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"

	"go.uber.org/multierr"

	"github.com/wippyai/chartclip/errors"
)

// TimedNote is a note positioned in seconds instead of rows. Editors emit
// these when the selection was copied in time-based mode.
type TimedNote struct {
	Time    float64
	Column  uint8
	Kind    Kind
	EndTime float64
}

// Duration returns EndTime-Time for sustained kinds and 0 otherwise.
func (n TimedNote) Duration() float64 {
	if n.Kind.Sustained() {
		return n.EndTime - n.Time
	}
	return 0
}

func (n TimedNote) String() string {
	if n.Kind.Sustained() {
		return fmt.Sprintf("%s@%d:%gs-%gs", n.Kind, n.Column, n.Time, n.EndTime)
	}
	return fmt.Sprintf("%s@%d:%gs", n.Kind, n.Column, n.Time)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Validate checks the note against a lane count. Times must be finite.
func (n TimedNote) Validate(maxColumns int) error {
	switch {
	case !n.Kind.Valid():
		return errors.InvalidNote([]string{"kind"}, n.Kind, fmt.Sprintf("undefined kind %d", uint8(n.Kind)))
	case maxColumns > 0 && int(n.Column) >= maxColumns:
		return errors.InvalidNote([]string{"column"}, n.Column,
			fmt.Sprintf("column %d outside %d lanes", n.Column, maxColumns))
	case !finite(n.Time):
		return errors.InvalidNote([]string{"time"}, n.Time, "time must be finite")
	case n.Kind.Sustained() && !finite(n.EndTime):
		return errors.InvalidNote([]string{"end_time"}, n.EndTime, "end time must be finite")
	case n.Kind.Sustained() && n.EndTime < n.Time:
		return errors.InvalidNote([]string{"end_time"}, n.EndTime,
			fmt.Sprintf("%s ends at %gs before it starts at %gs", n.Kind, n.EndTime, n.Time))
	case !n.Kind.Sustained() && n.EndTime != 0:
		return errors.InvalidNote([]string{"end_time"}, n.EndTime,
			fmt.Sprintf("%s cannot carry an end time", n.Kind))
	}
	return nil
}

// CompareTimed orders timed notes by (Time, Column). Times must not be NaN.
func CompareTimed(a, b TimedNote) int {
	if c := cmp.Compare(a.Time, b.Time); c != 0 {
		return c
	}
	return cmp.Compare(a.Column, b.Column)
}

// TimedSelection is an ordered sequence of timed notes.
type TimedSelection []TimedNote

// Sorted returns a copy of s in canonical (Time, Column) order.
func (s TimedSelection) Sorted() TimedSelection {
	out := slices.Clone(s)
	slices.SortStableFunc(out, CompareTimed)
	return out
}

// Validate checks every note and reports all failures together.
func (s TimedSelection) Validate(maxColumns int) error {
	var errs error
	for i, n := range s {
		if err := n.Validate(maxColumns); err != nil {
			if e, ok := err.(*errors.Error); ok {
				e.Path = append([]string{"note[" + strconv.Itoa(i) + "]"}, e.Path...)
			}
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
