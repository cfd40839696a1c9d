package record

import (
	"errors"
	"fmt"
	"io"

	"github.com/wippyai/chartclip/chart"
	clerrors "github.com/wippyai/chartclip/errors"
	"github.com/wippyai/chartclip/internal/binary"
	"github.com/wippyai/chartclip/version"
)

// flagNonTap marks a non-tap record in the column byte of the flagged layout.
const flagNonTap = 0x80

// Record is the wire form of one note. RowField holds either the offset
// from the previous record's row or the absolute row, as the layout
// dictates. Length is EndRow-Row and only travels for sustained kinds.
type Record struct {
	RowField uint64
	Column   uint8
	Kind     chart.Kind
	Length   uint64
}

// EncodeRecord appends rec to w using the layout described by rules.
func EncodeRecord(w *binary.Writer, rec Record, rules version.Rules) error {
	if !rules.Supports(rec.Kind) {
		return clerrors.InvalidNote([]string{"kind"}, rec.Kind,
			fmt.Sprintf("%v cannot be written in version %d", rec.Kind, rules.Version))
	}
	if int(rec.Column) >= rules.MaxColumns {
		return clerrors.InvalidNote([]string{"column"}, rec.Column,
			fmt.Sprintf("column %d outside %d lanes of version %d", rec.Column, rules.MaxColumns, rules.Version))
	}
	if !rec.Kind.Sustained() && rec.Length != 0 {
		return clerrors.InvalidNote([]string{"length"}, rec.Length,
			fmt.Sprintf("%v cannot carry a length", rec.Kind))
	}

	switch rules.Layout {
	case version.LayoutTagged:
		tag, _ := rules.Tag(rec.Kind)
		w.WriteU64(rec.RowField)
		w.Byte(rec.Column)
		w.Byte(tag)
		if rec.Kind.Sustained() {
			w.WriteU64(rec.Length)
		}

	case version.LayoutFlagged:
		if rec.Kind == chart.KindTap {
			w.Byte(rec.Column)
			w.WriteU64(rec.RowField)
			return nil
		}
		tag, ok := rules.Tag(rec.Kind)
		if !ok {
			return clerrors.InvalidNote([]string{"kind"}, rec.Kind,
				fmt.Sprintf("%v has no tag in version %d", rec.Kind, rules.Version))
		}
		end := rec.RowField + rec.Length
		if end < rec.RowField {
			return clerrors.InvalidNote([]string{"length"}, rec.Length, "end row overflows")
		}
		w.Byte(rec.Column | flagNonTap)
		w.WriteU64(rec.RowField)
		w.WriteU64(end)
		w.Byte(tag)

	default:
		return clerrors.Wrap(clerrors.PhaseEncode, clerrors.KindInternal, nil,
			fmt.Sprintf("version %d has no record layout", rules.Version))
	}
	return nil
}

// DecodeRecord reads one record from r and reports how many bytes it used.
func DecodeRecord(r *binary.Reader, rules version.Rules) (Record, int, error) {
	start := r.Position()

	var rec Record
	var err error
	switch rules.Layout {
	case version.LayoutTagged:
		rec, err = decodeTagged(r, rules)
	case version.LayoutFlagged:
		rec, err = decodeFlagged(r, rules)
	default:
		err = clerrors.MalformedRecord(nil, start, fmt.Sprintf("version %d has no record layout", rules.Version))
	}
	if err != nil {
		return Record{}, r.Position() - start, err
	}
	return rec, r.Position() - start, nil
}

func decodeTagged(r *binary.Reader, rules version.Rules) (Record, error) {
	var rec Record

	row, err := r.ReadU64()
	if err != nil {
		return rec, fieldError(r, "row", err)
	}
	rec.RowField = row

	column, err := r.ReadByte()
	if err != nil {
		return rec, fieldError(r, "column", err)
	}
	if int(column) >= rules.MaxColumns {
		return rec, clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
			Path("column").
			Offset(r.Position() - 1).
			Value(column).
			Detail("column %d outside %d lanes", column, rules.MaxColumns).
			Build()
	}
	rec.Column = column

	tag, err := r.ReadByte()
	if err != nil {
		return rec, fieldError(r, "kind", err)
	}
	kind, ok := rules.KindForTag(tag)
	if !ok {
		return rec, unknownTag(r, tag)
	}
	rec.Kind = kind

	if kind.Sustained() {
		length, err := r.ReadU64()
		if err != nil {
			return rec, fieldError(r, "length", err)
		}
		rec.Length = length
	}
	return rec, nil
}

func decodeFlagged(r *binary.Reader, rules version.Rules) (Record, error) {
	var rec Record

	first, err := r.ReadByte()
	if err != nil {
		return rec, fieldError(r, "column", err)
	}
	rec.Column = first &^ flagNonTap

	row, err := r.ReadU64()
	if err != nil {
		return rec, fieldError(r, "row", err)
	}
	rec.RowField = row

	if first&flagNonTap == 0 {
		rec.Kind = chart.KindTap
		return rec, nil
	}

	end, err := r.ReadU64()
	if err != nil {
		return rec, fieldError(r, "end_row", err)
	}
	tag, err := r.ReadByte()
	if err != nil {
		return rec, fieldError(r, "kind", err)
	}
	kind, ok := rules.KindForTag(tag)
	if !ok {
		return rec, unknownTag(r, tag)
	}
	rec.Kind = kind

	// Non-sustained kinds repeat the row so each note has one encoding.
	if !kind.Sustained() && end != row {
		return rec, clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
			Path("end_row").
			Offset(r.Position()).
			Value(end).
			Detail("%v must repeat its row %d, got %d", kind, row, end).
			Build()
	}
	if kind.Sustained() {
		if end < row {
			return rec, clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
				Path("end_row").
				Offset(r.Position()).
				Value(end).
				Detail("%v ends at row %d before it starts at row %d", kind, end, row).
				Build()
		}
		rec.Length = end - row
	}
	return rec, nil
}

func unknownTag(r *binary.Reader, tag uint8) error {
	return clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
		Path("kind").
		Offset(r.Position() - 1).
		Value(tag).
		Detail("unknown kind tag %d", tag).
		Build()
}

func fieldError(r *binary.Reader, field string, err error) error {
	detail := "invalid " + field
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		detail = "truncated " + field
	}
	return clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
		Path(field).
		Offset(r.Position()).
		Cause(err).
		Detail(detail).
		Build()
}
