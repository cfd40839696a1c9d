package record

import (
	"fmt"
	"math"

	"github.com/wippyai/chartclip/chart"
	clerrors "github.com/wippyai/chartclip/errors"
	"github.com/wippyai/chartclip/internal/binary"
	"github.com/wippyai/chartclip/version"
)

// minTimedRecordSize is a tap: column byte and an 8-byte time.
const minTimedRecordSize = 9

// EncodeTimedStream serializes a time-based selection. Only layouts with
// rules.TimeBased can carry one; positions are little-endian float64
// seconds.
func EncodeTimedStream(sel chart.TimedSelection, rules version.Rules) ([]byte, error) {
	if !rules.TimeBased {
		return nil, clerrors.Wrap(clerrors.PhaseEncode, clerrors.KindInvalidNote, nil,
			fmt.Sprintf("version %d cannot carry time-based notes", rules.Version))
	}
	if err := sel.Validate(rules.MaxColumns); err != nil {
		return nil, err
	}
	sorted := sel.Sorted()

	w := binary.NewWriter()
	w.Byte(positionSeconds)
	w.WriteU64(uint64(len(sorted)))
	for i, n := range sorted {
		if n.Kind == chart.KindTap {
			w.Byte(n.Column)
			w.WriteF64LE(n.Time)
			continue
		}
		tag, ok := rules.Tag(n.Kind)
		if !ok {
			return nil, annotate(clerrors.InvalidNote([]string{"kind"}, n.Kind,
				fmt.Sprintf("%v has no tag in version %d", n.Kind, rules.Version)), i)
		}
		end := n.Time
		if n.Kind.Sustained() {
			end = n.EndTime
		}
		w.Byte(n.Column | flagNonTap)
		w.WriteF64LE(n.Time)
		w.WriteF64LE(end)
		w.Byte(tag)
	}
	return w.Bytes(), nil
}

// DecodeTimedStream parses a time-based stream written with rules.
func DecodeTimedStream(data []byte, rules version.Rules) (chart.TimedSelection, error) {
	if !rules.TimeBased {
		return nil, clerrors.MalformedRecord(nil, 0,
			fmt.Sprintf("version %d cannot carry time-based notes", rules.Version))
	}
	r := binary.NewReader(data)

	flag, err := r.ReadByte()
	if err != nil {
		return nil, fieldError(r, "time_based", err)
	}
	if flag != positionSeconds {
		return nil, positionError(flag, positionSeconds)
	}

	count, err := r.ReadU64()
	if err != nil {
		return nil, fieldError(r, "count", err)
	}
	if fits := uint64(r.Remaining() / minTimedRecordSize); count > fits {
		return nil, clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
			Path("count").
			Offset(r.Position()).
			Value(count).
			Detail("%d records declared but only %d bytes remain", count, r.Remaining()).
			Build()
	}

	notes := make(chart.TimedSelection, 0, count)
	for i := 0; uint64(i) < count; i++ {
		start := r.Position()
		n, err := decodeTimedNote(r, rules)
		if err != nil {
			return nil, annotate(err, i)
		}
		if i > 0 && chart.CompareTimed(notes[i-1], n) > 0 {
			return nil, clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
				Path(recordPath(i)...).
				Offset(start).
				Detail("record %v is out of order after %v", n, notes[i-1]).
				Build()
		}
		notes = append(notes, n)
	}

	if r.Remaining() > 0 {
		return nil, clerrors.TrailingData(r.Position(), r.Remaining())
	}
	return notes, nil
}

func decodeTimedNote(r *binary.Reader, rules version.Rules) (chart.TimedNote, error) {
	var n chart.TimedNote

	first, err := r.ReadByte()
	if err != nil {
		return n, fieldError(r, "column", err)
	}
	n.Column = first &^ flagNonTap

	n.Time, err = readFinite(r, "time")
	if err != nil {
		return n, err
	}
	if first&flagNonTap == 0 {
		n.Kind = chart.KindTap
		return n, nil
	}

	end, err := readFinite(r, "end_time")
	if err != nil {
		return n, err
	}
	tag, err := r.ReadByte()
	if err != nil {
		return n, fieldError(r, "kind", err)
	}
	kind, ok := rules.KindForTag(tag)
	if !ok {
		return n, unknownTag(r, tag)
	}
	n.Kind = kind

	switch {
	case kind.Sustained() && end < n.Time:
		return n, clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
			Path("end_time").
			Offset(r.Position()).
			Value(end).
			Detail("%v ends at %gs before it starts at %gs", kind, end, n.Time).
			Build()
	case kind.Sustained():
		n.EndTime = end
	case math.Float64bits(end) != math.Float64bits(n.Time):
		return n, clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
			Path("end_time").
			Offset(r.Position()).
			Value(end).
			Detail("%v must repeat its time %gs, got %gs", kind, n.Time, end).
			Build()
	}
	return n, nil
}
