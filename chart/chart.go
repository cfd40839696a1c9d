// Package chart defines the note events carried by the clipboard format.
package chart

import (
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/multierr"

	"github.com/wippyai/chartclip/errors"
)

// Kind identifies the type of a note event.
type Kind uint8

const (
	KindTap Kind = iota
	KindHold
	KindMine
	KindRoll
	KindLift
	KindFake
)

var kindNames = [...]string{
	KindTap:  "tap",
	KindHold: "hold",
	KindMine: "mine",
	KindRoll: "roll",
	KindLift: "lift",
	KindFake: "fake",
}

// Kinds lists every defined kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindTap, KindHold, KindMine, KindRoll, KindLift, KindFake}
}

// Valid reports whether k is a defined kind.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// Sustained reports whether notes of this kind span from Row to EndRow.
func (k Kind) Sustained() bool {
	return k == KindHold || k == KindRoll
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind returns the kind with the given lower-case name.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown note kind %q", name)
}

// Note is a single chart event. EndRow is only meaningful for sustained
// kinds and must be zero otherwise.
type Note struct {
	Row    uint64
	Column uint8
	Kind   Kind
	EndRow uint64
}

// Length returns the sustain length in rows, zero for non-sustained kinds.
func (n Note) Length() uint64 {
	if !n.Kind.Sustained() {
		return 0
	}
	return n.EndRow - n.Row
}

func (n Note) String() string {
	if n.Kind.Sustained() {
		return fmt.Sprintf("%s@%d:%d-%d", n.Kind, n.Column, n.Row, n.EndRow)
	}
	return fmt.Sprintf("%s@%d:%d", n.Kind, n.Column, n.Row)
}

// Validate checks the note against a lane count. maxColumns <= 0 skips
// the column check.
func (n Note) Validate(maxColumns int) error {
	switch {
	case !n.Kind.Valid():
		return errors.InvalidNote([]string{"kind"}, n.Kind, fmt.Sprintf("undefined kind %d", uint8(n.Kind)))
	case maxColumns > 0 && int(n.Column) >= maxColumns:
		return errors.InvalidNote([]string{"column"}, n.Column,
			fmt.Sprintf("column %d outside %d lanes", n.Column, maxColumns))
	case n.Kind.Sustained() && n.EndRow < n.Row:
		return errors.InvalidNote([]string{"end_row"}, n.EndRow,
			fmt.Sprintf("%s ends at row %d before it starts at row %d", n.Kind, n.EndRow, n.Row))
	case !n.Kind.Sustained() && n.EndRow != 0:
		return errors.InvalidNote([]string{"end_row"}, n.EndRow,
			fmt.Sprintf("%s cannot carry an end row", n.Kind))
	}
	return nil
}

// Compare orders notes by (Row, Column).
func Compare(a, b Note) int {
	switch {
	case a.Row < b.Row:
		return -1
	case a.Row > b.Row:
		return 1
	case a.Column < b.Column:
		return -1
	case a.Column > b.Column:
		return 1
	}
	return 0
}

// Selection is an ordered sequence of notes.
type Selection []Note

// Sorted returns a copy of s in canonical (Row, Column) order. Notes with
// equal keys keep their relative order.
func (s Selection) Sorted() Selection {
	out := slices.Clone(s)
	slices.SortStableFunc(out, Compare)
	return out
}

// IsSorted reports whether s is already in canonical order.
func (s Selection) IsSorted() bool {
	return slices.IsSortedFunc(s, Compare)
}

// Validate checks every note and reports all failures together.
func (s Selection) Validate(maxColumns int) error {
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
