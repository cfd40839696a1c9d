package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/chartclip"
)

type timedFile struct {
	Notes []timedEntry `toml:"note"`
}

type timedEntry struct {
	Time    float64 `toml:"time" cbor:"1,keyasint"`
	Column  uint8   `toml:"column" cbor:"2,keyasint"`
	Kind    string  `toml:"kind" cbor:"3,keyasint"`
	EndTime float64 `toml:"end_time,omitempty" cbor:"4,keyasint,omitempty"`
}

type tempoFile struct {
	Events []tempoEntry `toml:"tempo"`
}

// tempoEntry keeps only the fields the event's kind uses; the rest are
// zero and omitted.
type tempoEntry struct {
	Row             uint32  `toml:"row" cbor:"1,keyasint"`
	Kind            string  `toml:"kind" cbor:"2,keyasint"`
	BPM             float64 `toml:"bpm,omitempty" cbor:"3,keyasint,omitempty"`
	Seconds         float64 `toml:"seconds,omitempty" cbor:"4,keyasint,omitempty"`
	Ratio           float64 `toml:"ratio,omitempty" cbor:"5,keyasint,omitempty"`
	Delay           float64 `toml:"delay,omitempty" cbor:"6,keyasint,omitempty"`
	DelayIsTime     bool    `toml:"delay_is_time,omitempty" cbor:"7,keyasint,omitempty"`
	Rows            uint32  `toml:"rows,omitempty" cbor:"8,keyasint,omitempty"`
	Numerator       uint32  `toml:"numerator,omitempty" cbor:"9,keyasint,omitempty"`
	Denominator     uint32  `toml:"denominator,omitempty" cbor:"10,keyasint,omitempty"`
	Ticks           uint32  `toml:"ticks,omitempty" cbor:"11,keyasint,omitempty"`
	ComboMultiplier uint32  `toml:"combo_multiplier,omitempty" cbor:"12,keyasint,omitempty"`
	MissMultiplier  uint32  `toml:"miss_multiplier,omitempty" cbor:"13,keyasint,omitempty"`
	Label           string  `toml:"label,omitempty" cbor:"14,keyasint,omitempty"`
}

func timedEntries(sel chartclip.TimedSelection) []timedEntry {
	out := make([]timedEntry, len(sel))
	for i, n := range sel {
		out[i] = timedEntry{Time: n.Time, Column: n.Column, Kind: n.Kind.String(), EndTime: n.EndTime}
	}
	return out
}

func tempoEntries(events chartclip.TempoEvents) []tempoEntry {
	out := make([]tempoEntry, len(events))
	for i, e := range events {
		out[i] = tempoEntry{
			Row:             e.Row,
			Kind:            e.Kind.String(),
			BPM:             e.BPM,
			Seconds:         e.Seconds,
			Ratio:           e.Ratio,
			Delay:           e.Delay,
			DelayIsTime:     e.DelayIsTime,
			Rows:            e.Rows,
			Numerator:       e.Numerator,
			Denominator:     e.Denominator,
			Ticks:           e.Ticks,
			ComboMultiplier: e.ComboMultiplier,
			MissMultiplier:  e.MissMultiplier,
			Label:           e.Label,
		}
	}
	return out
}

// writeTimed renders a time-based selection in the named format.
func writeTimed(w io.Writer, sel chartclip.TimedSelection, format string) error {
	switch format {
	case "text":
		for _, n := range sel {
			if n.Kind.Sustained() {
				fmt.Fprintf(w, "%-10.4f %3d  %-5s %.4f\n", n.Time, n.Column, n.Kind, n.EndTime)
			} else {
				fmt.Fprintf(w, "%-10.4f %3d  %s\n", n.Time, n.Column, n.Kind)
			}
		}
		return nil
	case "toml":
		return writeTOML(w, timedFile{Notes: timedEntries(sel)})
	case "cbor":
		return writeCBOR(w, timedEntries(sel))
	}
	return checkFormat(format)
}

// writeTempo renders tempo events in the named format.
func writeTempo(w io.Writer, events chartclip.TempoEvents, format string) error {
	switch format {
	case "text":
		for _, e := range events {
			fmt.Fprintf(w, "%-6d %s\n", e.Row, e)
		}
		return nil
	case "toml":
		return writeTOML(w, tempoFile{Events: tempoEntries(events)})
	case "cbor":
		return writeCBOR(w, tempoEntries(events))
	}
	return checkFormat(format)
}

func writeTOML(w io.Writer, v any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeCBOR(w io.Writer, v any) error {
	data, err := cborEncMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cbor: %w", err)
	}
	_, err = w.Write(data)
	return err
}
