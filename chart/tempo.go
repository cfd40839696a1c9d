package chart

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/multierr"

	"github.com/wippyai/chartclip/errors"
)

// TempoKind identifies the type of a timing event.
type TempoKind uint8

const (
	TempoBPM TempoKind = iota
	TempoStop
	TempoDelay
	TempoWarp
	TempoTimeSignature
	TempoTicks
	TempoCombo
	TempoSpeed
	TempoScroll
	TempoFakeSegment
	TempoLabel
)

var tempoNames = [...]string{
	TempoBPM:           "bpm",
	TempoStop:          "stop",
	TempoDelay:         "delay",
	TempoWarp:          "warp",
	TempoTimeSignature: "time_signature",
	TempoTicks:         "ticks",
	TempoCombo:         "combo",
	TempoSpeed:         "speed",
	TempoScroll:        "scroll",
	TempoFakeSegment:   "fake_segment",
	TempoLabel:         "label",
}

// TempoKinds lists every defined tempo kind in declaration order.
func TempoKinds() []TempoKind {
	out := make([]TempoKind, len(tempoNames))
	for i := range out {
		out[i] = TempoKind(i)
	}
	return out
}

// Valid reports whether k is a defined tempo kind.
func (k TempoKind) Valid() bool {
	return int(k) < len(tempoNames)
}

func (k TempoKind) String() string {
	if k.Valid() {
		return tempoNames[k]
	}
	return "tempo(" + strconv.Itoa(int(k)) + ")"
}

// ParseTempoKind returns the tempo kind with the given lower-case name.
func ParseTempoKind(name string) (TempoKind, error) {
	for i, n := range tempoNames {
		if n == name {
			return TempoKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tempo kind %q", name)
}

// TempoEvent is a timing change at a row. Only the fields belonging to
// Kind may be set:
//
//	bpm             BPM
//	stop, delay     Seconds
//	warp            Rows (rows skipped)
//	time_signature  Numerator, Denominator
//	ticks           Ticks
//	combo           ComboMultiplier, MissMultiplier
//	speed           Ratio, Delay, DelayIsTime
//	scroll          Ratio
//	fake_segment    Rows (fake rows)
//	label           Label
type TempoEvent struct {
	Row  uint32
	Kind TempoKind

	BPM         float64
	Seconds     float64
	Ratio       float64
	Delay       float64
	DelayIsTime bool
	Rows        uint32
	Numerator   uint32
	Denominator uint32
	Ticks       uint32

	ComboMultiplier uint32
	MissMultiplier  uint32

	Label string
}

// payload returns e with every field Kind does not use cleared.
func (e TempoEvent) payload() TempoEvent {
	out := TempoEvent{Row: e.Row, Kind: e.Kind}
	switch e.Kind {
	case TempoBPM:
		out.BPM = e.BPM
	case TempoStop, TempoDelay:
		out.Seconds = e.Seconds
	case TempoWarp, TempoFakeSegment:
		out.Rows = e.Rows
	case TempoTimeSignature:
		out.Numerator, out.Denominator = e.Numerator, e.Denominator
	case TempoTicks:
		out.Ticks = e.Ticks
	case TempoCombo:
		out.ComboMultiplier, out.MissMultiplier = e.ComboMultiplier, e.MissMultiplier
	case TempoSpeed:
		out.Ratio, out.Delay, out.DelayIsTime = e.Ratio, e.Delay, e.DelayIsTime
	case TempoScroll:
		out.Ratio = e.Ratio
	case TempoLabel:
		out.Label = e.Label
	}
	return out
}

func (e TempoEvent) String() string {
	p := e.payload()
	switch e.Kind {
	case TempoBPM:
		return fmt.Sprintf("bpm@%d:%g", e.Row, p.BPM)
	case TempoStop, TempoDelay:
		return fmt.Sprintf("%s@%d:%gs", e.Kind, e.Row, p.Seconds)
	case TempoWarp, TempoFakeSegment:
		return fmt.Sprintf("%s@%d:%d", e.Kind, e.Row, p.Rows)
	case TempoTimeSignature:
		return fmt.Sprintf("time_signature@%d:%d/%d", e.Row, p.Numerator, p.Denominator)
	case TempoTicks:
		return fmt.Sprintf("ticks@%d:%d", e.Row, p.Ticks)
	case TempoCombo:
		return fmt.Sprintf("combo@%d:%d,%d", e.Row, p.ComboMultiplier, p.MissMultiplier)
	case TempoSpeed:
		return fmt.Sprintf("speed@%d:%g,%g,%t", e.Row, p.Ratio, p.Delay, p.DelayIsTime)
	case TempoScroll:
		return fmt.Sprintf("scroll@%d:%g", e.Row, p.Ratio)
	case TempoLabel:
		return fmt.Sprintf("label@%d:%q", e.Row, p.Label)
	}
	return fmt.Sprintf("%s@%d", e.Kind, e.Row)
}

// Validate checks that the event's kind is defined, that only its own
// fields are set and that its float fields are finite.
func (e TempoEvent) Validate() error {
	if !e.Kind.Valid() {
		return errors.InvalidNote([]string{"kind"}, e.Kind, fmt.Sprintf("undefined tempo kind %d", uint8(e.Kind)))
	}
	if e != e.payload() {
		return errors.InvalidNote(nil, e.Kind, fmt.Sprintf("%s event sets fields it does not use", e.Kind))
	}
	for _, f := range []struct {
		name  string
		value float64
	}{{"bpm", e.BPM}, {"seconds", e.Seconds}, {"ratio", e.Ratio}, {"delay", e.Delay}} {
		if !finite(f.value) {
			return errors.InvalidNote([]string{f.name}, f.value, f.name+" must be finite")
		}
	}
	return nil
}

// CompareTempo orders events by (Kind, Row), the order in which they are
// grouped on the wire.
func CompareTempo(a, b TempoEvent) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	return cmp.Compare(a.Row, b.Row)
}

// TempoEvents is an ordered sequence of timing events.
type TempoEvents []TempoEvent

// Sorted returns a copy of s in canonical (Kind, Row) order.
func (s TempoEvents) Sorted() TempoEvents {
	out := slices.Clone(s)
	slices.SortStableFunc(out, CompareTempo)
	return out
}

// Validate checks every event and reports all failures together.
func (s TempoEvents) Validate() error {
	var errs error
	for i, e := range s {
		if err := e.Validate(); err != nil {
			if ce, ok := err.(*errors.Error); ok {
				ce.Path = append([]string{"event[" + strconv.Itoa(i) + "]"}, ce.Path...)
			}
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
