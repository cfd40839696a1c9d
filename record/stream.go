package record

import (
	"fmt"
	"strconv"

	"github.com/wippyai/chartclip/chart"
	clerrors "github.com/wippyai/chartclip/errors"
	"github.com/wippyai/chartclip/internal/binary"
	"github.com/wippyai/chartclip/version"
)

// Leading byte of a flagged-layout stream: how note positions are stored.
const (
	positionRows    byte = 0
	positionSeconds byte = 1
)

// IsTimeBased reports whether a flagged-layout stream holds time-based
// notes. It looks only at the leading byte.
func IsTimeBased(data []byte, rules version.Rules) bool {
	return rules.TimeBased && len(data) > 0 && data[0] == positionSeconds
}

func positionError(got, want byte) error {
	detail := "row-based note copy where time-based was expected"
	if want == positionRows {
		detail = "time-based note copy where row-based was expected"
	}
	if got > positionSeconds {
		detail = fmt.Sprintf("unknown position mode %d", got)
	}
	return clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
		Path("time_based").
		Offset(0).
		Value(got).
		Detail(detail).
		Build()
}

// minRecordSize is the smallest encoding of one record per layout.
var minRecordSize = map[version.Layout]int{
	version.LayoutTagged:  3, // row, column, tag
	version.LayoutFlagged: 2, // column, row
}

// EncodeStream serializes sel in the current version's layout.
func EncodeStream(sel chart.Selection) ([]byte, error) {
	return EncodeStreamVersion(sel, version.MustLookup(version.Current))
}

// EncodeStreamVersion serializes sel with the given rules. The input is
// validated, then a stably sorted copy is written; sel is not modified.
func EncodeStreamVersion(sel chart.Selection, rules version.Rules) ([]byte, error) {
	if err := sel.Validate(rules.MaxColumns); err != nil {
		return nil, err
	}
	sorted := sel.Sorted()

	w := binary.NewWriter()
	if rules.Layout == version.LayoutFlagged {
		w.Byte(positionRows)
	}
	w.WriteU64(uint64(len(sorted)))

	var prev uint64
	for i, n := range sorted {
		rec := Record{
			RowField: n.Row,
			Column:   n.Column,
			Kind:     n.Kind,
			Length:   n.Length(),
		}
		if rules.DeltaRows {
			rec.RowField = n.Row - prev
		}
		if err := EncodeRecord(w, rec, rules); err != nil {
			return nil, annotate(err, i)
		}
		prev = n.Row
	}
	return w.Bytes(), nil
}

// DecodeStream parses a record stream written with rules. Every byte of
// data must belong to a declared record.
func DecodeStream(data []byte, rules version.Rules) (chart.Selection, error) {
	r := binary.NewReader(data)

	if rules.Layout == version.LayoutFlagged {
		flag, err := r.ReadByte()
		if err != nil {
			return nil, fieldError(r, "time_based", err)
		}
		if flag != positionRows {
			return nil, positionError(flag, positionRows)
		}
	}

	count, err := r.ReadU64()
	if err != nil {
		return nil, fieldError(r, "count", err)
	}
	minSize, ok := minRecordSize[rules.Layout]
	if !ok {
		return nil, clerrors.MalformedRecord(nil, r.Position(), fmt.Sprintf("version %d has no record layout", rules.Version))
	}
	if fits := uint64(r.Remaining() / minSize); count > fits {
		return nil, clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
			Path("count").
			Offset(r.Position()).
			Value(count).
			Detail("%d records declared but only %d bytes remain", count, r.Remaining()).
			Build()
	}

	notes := make(chart.Selection, 0, count)
	var prev chart.Note
	for i := 0; uint64(i) < count; i++ {
		start := r.Position()
		rec, _, err := DecodeRecord(r, rules)
		if err != nil {
			return nil, annotate(err, i)
		}

		n := chart.Note{Column: rec.Column, Kind: rec.Kind, Row: rec.RowField}
		if rules.DeltaRows {
			n.Row = prev.Row + rec.RowField
			if n.Row < prev.Row {
				return nil, clerrors.MalformedRecord(recordPath(i, "row"), start, "row overflows")
			}
		}
		if rec.Kind.Sustained() {
			n.EndRow = n.Row + rec.Length
			if n.EndRow < n.Row {
				return nil, clerrors.MalformedRecord(recordPath(i, "length"), start, "end row overflows")
			}
		}
		if i > 0 && chart.Compare(prev, n) > 0 {
			return nil, clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
				Path(recordPath(i)...).
				Offset(start).
				Detail("record %v is out of order after %v", n, prev).
				Build()
		}

		notes = append(notes, n)
		prev = n
	}

	if r.Remaining() > 0 {
		return nil, clerrors.TrailingData(r.Position(), r.Remaining())
	}
	return notes, nil
}

func recordPath(i int, field ...string) []string {
	return append([]string{"record[" + strconv.Itoa(i) + "]"}, field...)
}

// annotate prefixes a structured error's path with the record index.
func annotate(err error, i int) error {
	if e, ok := err.(*clerrors.Error); ok {
		e.Path = recordPath(i, e.Path...)
	}
	return err
}
