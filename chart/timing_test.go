package chart

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/multierr"

	clerrors "github.com/wippyai/chartclip/errors"
)

func TestTimedNoteValidate(t *testing.T) {
	tests := []struct {
		name    string
		note    TimedNote
		wantErr bool
	}{
		{"tap", TimedNote{Time: 0.25, Column: 3}, false},
		{"negative time", TimedNote{Time: -1}, false},
		{"hold", TimedNote{Time: 1, Kind: KindHold, EndTime: 2}, false},
		{"column on bound", TimedNote{Column: 4}, true},
		{"nan time", TimedNote{Time: math.NaN()}, true},
		{"infinite end", TimedNote{Kind: KindRoll, EndTime: math.Inf(1)}, true},
		{"roll ends early", TimedNote{Time: 2, Kind: KindRoll, EndTime: 1}, true},
		{"lift with end time", TimedNote{Time: 2, Kind: KindLift, EndTime: 2}, true},
		{"undefined kind", TimedNote{Kind: Kind(7)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.note.Validate(4)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, clerrors.ErrInvalidNote) {
				t.Errorf("got %v, want invalid_note", err)
			}
		})
	}
}

func TestTimedSelectionSorted(t *testing.T) {
	sel := TimedSelection{
		{Time: 0.5, Column: 1},
		{Time: 0.25, Column: 2},
		{Time: 0.5, Column: 0, Kind: KindMine},
		{Time: 0.25, Column: 2, Kind: KindFake},
	}
	got := sel.Sorted()
	want := TimedSelection{sel[1], sel[3], sel[2], sel[0]}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sorted[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if sel[0].Time != 0.5 {
		t.Error("Sorted modified its receiver")
	}
	if d := (TimedNote{Time: 1, Kind: KindHold, EndTime: 1.5}).Duration(); d != 0.5 {
		t.Errorf("Duration = %g, want 0.5", d)
	}
}

func TestTimedSelectionValidateCollectsAll(t *testing.T) {
	err := TimedSelection{{Column: 9}, {Time: 1}, {Time: math.NaN()}}.Validate(4)
	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), err)
	}
	var e *clerrors.Error
	if !errors.As(errs[1], &e) || len(e.Path) != 2 || e.Path[0] != "note[2]" {
		t.Errorf("second error = %v", errs[1])
	}
}

func TestTempoKindNames(t *testing.T) {
	for _, k := range TempoKinds() {
		got, err := ParseTempoKind(k.String())
		if err != nil {
			t.Fatalf("ParseTempoKind(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseTempoKind(%q) = %v", k.String(), got)
		}
	}
	if len(TempoKinds()) != 11 {
		t.Errorf("got %d tempo kinds, want 11", len(TempoKinds()))
	}
	if s := TempoKind(11).String(); s != "tempo(11)" {
		t.Errorf("String() of undefined kind = %q", s)
	}
	if _, err := ParseTempoKind("BPM"); err == nil {
		t.Error("ParseTempoKind should be case-sensitive")
	}
}

func TestTempoEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   TempoEvent
		wantErr bool
	}{
		{"bpm", TempoEvent{Kind: TempoBPM, BPM: 120}, false},
		{"speed", TempoEvent{Kind: TempoSpeed, Ratio: 2, Delay: 1, DelayIsTime: true}, false},
		{"empty label", TempoEvent{Kind: TempoLabel}, false},
		{"warp with bpm", TempoEvent{Kind: TempoWarp, Rows: 4, BPM: 120}, true},
		{"scroll with delay flag", TempoEvent{Kind: TempoScroll, Ratio: 1, DelayIsTime: true}, true},
		{"stop with label", TempoEvent{Kind: TempoStop, Seconds: 1, Label: "x"}, true},
		{"nan bpm", TempoEvent{Kind: TempoBPM, BPM: math.NaN()}, true},
		{"infinite delay", TempoEvent{Kind: TempoSpeed, Delay: math.Inf(-1)}, true},
		{"undefined kind", TempoEvent{Kind: TempoKind(20)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, clerrors.ErrInvalidNote) {
				t.Errorf("got %v, want invalid_note", err)
			}
		})
	}
}

func TestTempoEventsSorted(t *testing.T) {
	events := TempoEvents{
		{Row: 96, Kind: TempoScroll, Ratio: 2},
		{Row: 48, Kind: TempoBPM, BPM: 90},
		{Row: 0, Kind: TempoScroll, Ratio: 1},
		{Row: 0, Kind: TempoBPM, BPM: 120},
	}
	got := events.Sorted()
	want := TempoEvents{events[3], events[1], events[2], events[0]}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sorted[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTempoEventString(t *testing.T) {
	tests := []struct {
		event TempoEvent
		want  string
	}{
		{TempoEvent{Row: 4, Kind: TempoBPM, BPM: 150}, "bpm@4:150"},
		{TempoEvent{Row: 8, Kind: TempoTimeSignature, Numerator: 3, Denominator: 4}, "time_signature@8:3/4"},
		{TempoEvent{Row: 0, Kind: TempoLabel, Label: "intro"}, `label@0:"intro"`},
		{TempoEvent{Row: 2, Kind: TempoKind(30)}, "tempo(30)@2"},
	}
	for _, tt := range tests {
		if got := tt.event.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
