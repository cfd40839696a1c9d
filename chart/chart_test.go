package chart

import (
	"errors"
	"testing"

	"go.uber.org/multierr"

	clerrors "github.com/wippyai/chartclip/errors"
)

func TestKindNames(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}

	if _, err := ParseKind("Hold"); err == nil {
		t.Error("ParseKind should be case-sensitive")
	}
	if s := Kind(42).String(); s != "kind(42)" {
		t.Errorf("String() of undefined kind = %q", s)
	}
	if Kind(6).Valid() {
		t.Error("Kind(6) should not be valid")
	}
}

func TestKindSustained(t *testing.T) {
	want := map[Kind]bool{KindHold: true, KindRoll: true}
	for _, k := range Kinds() {
		if k.Sustained() != want[k] {
			t.Errorf("%v.Sustained() = %v", k, k.Sustained())
		}
	}
}

func TestNoteValidate(t *testing.T) {
	tests := []struct {
		name    string
		note    Note
		lanes   int
		wantErr bool
	}{
		{"tap", Note{Row: 4, Column: 3}, 4, false},
		{"hold", Note{Row: 8, Column: 1, Kind: KindHold, EndRow: 16}, 4, false},
		{"zero length roll", Note{Row: 8, Kind: KindRoll, EndRow: 8}, 4, false},
		{"column on bound", Note{Column: 4}, 4, true},
		{"no lane bound", Note{Column: 200}, 0, false},
		{"hold ends early", Note{Row: 8, Kind: KindHold, EndRow: 7}, 4, true},
		{"mine with end row", Note{Row: 8, Kind: KindMine, EndRow: 9}, 4, true},
		{"undefined kind", Note{Kind: Kind(9)}, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.note.Validate(tt.lanes)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, clerrors.ErrInvalidNote) {
				t.Errorf("error %v is not invalid_note", err)
			}
		})
	}
}

func TestNoteLength(t *testing.T) {
	if got := (Note{Row: 8, Kind: KindHold, EndRow: 16}).Length(); got != 8 {
		t.Errorf("hold Length() = %d, want 8", got)
	}
	if got := (Note{Row: 8, Kind: KindTap}).Length(); got != 0 {
		t.Errorf("tap Length() = %d, want 0", got)
	}
}

func TestSelectionSorted(t *testing.T) {
	in := Selection{
		{Row: 8, Column: 1, Kind: KindHold, EndRow: 16},
		{Row: 4, Column: 3},
		{Row: 0, Column: 2, Kind: KindMine},
		{Row: 0, Column: 0},
		{Row: 0, Column: 2, Kind: KindFake},
	}
	orig := append(Selection(nil), in...)

	got := in.Sorted()
	want := Selection{
		{Row: 0, Column: 0},
		{Row: 0, Column: 2, Kind: KindMine},
		{Row: 0, Column: 2, Kind: KindFake},
		{Row: 4, Column: 3},
		{Row: 8, Column: 1, Kind: KindHold, EndRow: 16},
	}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	for i := range orig {
		if in[i] != orig[i] {
			t.Fatalf("Sorted mutated its receiver at %d", i)
		}
	}
	if in.IsSorted() {
		t.Error("input should not report sorted")
	}
	if !got.IsSorted() {
		t.Error("output should report sorted")
	}
}

func TestSelectionValidateCollectsAll(t *testing.T) {
	sel := Selection{
		{Row: 0, Column: 9},
		{Row: 4, Column: 1},
		{Row: 8, Kind: KindRoll, EndRow: 2},
	}

	err := sel.Validate(4)
	if err == nil {
		t.Fatal("expected error")
	}
	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), err)
	}

	var first *clerrors.Error
	if !errors.As(errs[0], &first) {
		t.Fatalf("first error is %T", errs[0])
	}
	if first.Path[0] != "note[0]" || first.Path[1] != "column" {
		t.Errorf("first path = %v", first.Path)
	}
	if !errors.Is(err, clerrors.ErrInvalidNote) {
		t.Error("combined error should match ErrInvalidNote")
	}
}
