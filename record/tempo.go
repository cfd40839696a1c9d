package record

import (
	"fmt"
	"math"
	"strconv"

	"github.com/wippyai/chartclip/chart"
	clerrors "github.com/wippyai/chartclip/errors"
	"github.com/wippyai/chartclip/internal/binary"
	"github.com/wippyai/chartclip/version"
)

// minTempoEventSize is a row and an empty label length.
const minTempoEventSize = 5

// EncodeTempoStream serializes tempo events. Events are validated, sorted
// by (kind, row) and written as one group per kind: a count, the kind tag
// and the events. A zero count ends the list.
func EncodeTempoStream(events chart.TempoEvents, rules version.TempoRules) ([]byte, error) {
	if err := events.Validate(); err != nil {
		return nil, err
	}
	sorted := events.Sorted()

	w := binary.NewWriter()
	for start := 0; start < len(sorted); {
		kind := sorted[start].Kind
		end := start + 1
		for end < len(sorted) && sorted[end].Kind == kind {
			end++
		}
		tag, ok := rules.Tag(kind)
		if !ok {
			return nil, annotateEvent(clerrors.InvalidNote([]string{"kind"}, kind,
				fmt.Sprintf("%v cannot be written in tempo version %d", kind, rules.Version)), start)
		}

		w.WriteU64(uint64(end - start))
		w.Byte(tag)
		for _, e := range sorted[start:end] {
			encodeTempoEvent(w, e)
		}
		start = end
	}
	w.WriteU64(0)
	return w.Bytes(), nil
}

func encodeTempoEvent(w *binary.Writer, e chart.TempoEvent) {
	w.WriteU32LE(e.Row)
	switch e.Kind {
	case chart.TempoBPM:
		w.WriteF64LE(e.BPM)
	case chart.TempoStop, chart.TempoDelay:
		w.WriteF64LE(e.Seconds)
	case chart.TempoWarp, chart.TempoFakeSegment:
		w.WriteU32LE(e.Rows)
	case chart.TempoTimeSignature:
		w.WriteU32LE(e.Numerator)
		w.WriteU32LE(e.Denominator)
	case chart.TempoTicks:
		w.WriteU32LE(e.Ticks)
	case chart.TempoCombo:
		w.WriteU32LE(e.ComboMultiplier)
		w.WriteU32LE(e.MissMultiplier)
	case chart.TempoSpeed:
		w.WriteF64LE(e.Ratio)
		w.WriteF64LE(e.Delay)
		var flag uint32
		if e.DelayIsTime {
			flag = 1
		}
		w.WriteU32LE(flag)
	case chart.TempoScroll:
		w.WriteF64LE(e.Ratio)
	case chart.TempoLabel:
		w.WriteString(e.Label)
	}
}

// DecodeTempoStream parses a tempo stream written with rules. Groups must
// appear in ascending kind order, at most once each, with rows ascending
// inside a group.
func DecodeTempoStream(data []byte, rules version.TempoRules) (chart.TempoEvents, error) {
	r := binary.NewReader(data)

	var events chart.TempoEvents
	var prevKind chart.TempoKind
	for group := 0; ; group++ {
		countPos := r.Position()
		count, err := r.ReadU64()
		if err != nil {
			return nil, fieldError(r, "count", err)
		}
		if count == 0 {
			break
		}
		if fits := uint64(r.Remaining() / minTempoEventSize); count > fits {
			return nil, clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
				Path("group["+strconv.Itoa(group)+"]", "count").
				Offset(countPos).
				Value(count).
				Detail("%d events declared but only %d bytes remain", count, r.Remaining()).
				Build()
		}

		tag, err := r.ReadByte()
		if err != nil {
			return nil, annotateGroup(fieldError(r, "kind", err), group)
		}
		kind, ok := rules.KindForTag(tag)
		if !ok {
			return nil, annotateGroup(unknownTag(r, tag), group)
		}
		if group > 0 && kind <= prevKind {
			return nil, clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
				Path("group["+strconv.Itoa(group)+"]", "kind").
				Offset(r.Position() - 1).
				Value(tag).
				Detail("%v group follows %v group", kind, prevKind).
				Build()
		}
		prevKind = kind

		for j := uint64(0); j < count; j++ {
			i := len(events)
			start := r.Position()
			e, err := decodeTempoEvent(r, kind)
			if err != nil {
				return nil, annotateEvent(err, i)
			}
			if j > 0 && e.Row < events[i-1].Row {
				return nil, clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
					Path(eventPath(i, "row")...).
					Offset(start).
					Value(e.Row).
					Detail("%v event at row %d follows row %d", kind, e.Row, events[i-1].Row).
					Build()
			}
			events = append(events, e)
		}
	}

	if r.Remaining() > 0 {
		return nil, clerrors.TrailingData(r.Position(), r.Remaining())
	}
	return events, nil
}

func decodeTempoEvent(r *binary.Reader, kind chart.TempoKind) (chart.TempoEvent, error) {
	e := chart.TempoEvent{Kind: kind}

	var err error
	if e.Row, err = r.ReadU32LE(); err != nil {
		return e, fieldError(r, "row", err)
	}

	switch kind {
	case chart.TempoBPM:
		e.BPM, err = readFinite(r, "bpm")
	case chart.TempoStop, chart.TempoDelay:
		e.Seconds, err = readFinite(r, "seconds")
	case chart.TempoWarp, chart.TempoFakeSegment:
		e.Rows, err = readU32(r, "rows")
	case chart.TempoTimeSignature:
		if e.Numerator, err = readU32(r, "numerator"); err == nil {
			e.Denominator, err = readU32(r, "denominator")
		}
	case chart.TempoTicks:
		e.Ticks, err = readU32(r, "ticks")
	case chart.TempoCombo:
		if e.ComboMultiplier, err = readU32(r, "combo_multiplier"); err == nil {
			e.MissMultiplier, err = readU32(r, "miss_multiplier")
		}
	case chart.TempoSpeed:
		e.Ratio, e.Delay, e.DelayIsTime, err = readSpeed(r)
	case chart.TempoScroll:
		e.Ratio, err = readFinite(r, "ratio")
	case chart.TempoLabel:
		if e.Label, err = r.ReadString(); err != nil {
			err = fieldError(r, "label", err)
		}
	}
	return e, err
}

func readSpeed(r *binary.Reader) (ratio, delay float64, isTime bool, err error) {
	if ratio, err = readFinite(r, "ratio"); err != nil {
		return
	}
	if delay, err = readFinite(r, "delay"); err != nil {
		return
	}
	pos := r.Position()
	flag, err := readU32(r, "delay_is_time")
	if err != nil {
		return
	}
	if flag > 1 {
		err = clerrors.New(clerrors.PhaseRecords, clerrors.KindMalformedRecord).
			Path("delay_is_time").
			Offset(pos).
			Value(flag).
			Detail("delay_is_time must be 0 or 1, got %d", flag).
			Build()
		return
	}
	return ratio, delay, flag == 1, nil
}

func readU32(r *binary.Reader, field string) (uint32, error) {
	v, err := r.ReadU32LE()
	if err != nil {
		return 0, fieldError(r, field, err)
	}
	return v, nil
}

func readFinite(r *binary.Reader, field string) (float64, error) {
	pos := r.Position()
	v, err := r.ReadF64LE()
	if err != nil {
		return 0, fieldError(r, field, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, clerrors.MalformedRecord([]string{field}, pos, fmt.Sprintf("%s is not a finite number", field))
	}
	return v, nil
}

func eventPath(i int, field ...string) []string {
	return append([]string{"event[" + strconv.Itoa(i) + "]"}, field...)
}

func annotateEvent(err error, i int) error {
	if e, ok := err.(*clerrors.Error); ok {
		e.Path = eventPath(i, e.Path...)
	}
	return err
}

func annotateGroup(err error, group int) error {
	if e, ok := err.(*clerrors.Error); ok {
		e.Path = append([]string{"group[" + strconv.Itoa(group) + "]"}, e.Path...)
	}
	return err
}
