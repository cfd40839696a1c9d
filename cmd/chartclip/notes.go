package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/chartclip"
	"github.com/wippyai/chartclip/chart"
	"github.com/wippyai/chartclip/version"
)

// notesFile is the TOML form of a selection:
//
//	[[note]]
//	row = 8
//	column = 1
//	kind = "hold"
//	end_row = 16
type notesFile struct {
	Notes []noteEntry `toml:"note"`
}

type noteEntry struct {
	Row    uint64 `toml:"row" cbor:"1,keyasint"`
	Column uint8  `toml:"column" cbor:"2,keyasint"`
	Kind   string `toml:"kind" cbor:"3,keyasint"`
	EndRow uint64 `toml:"end_row,omitempty" cbor:"4,keyasint,omitempty"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("chartclip: cbor enc mode: %v", err))
	}
	cborEncMode = em
}

// parseNotes reads a notes file. A missing kind means tap.
func parseNotes(data []byte) (chartclip.Selection, error) {
	var f notesFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("parse notes: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse notes: unknown key %q", undecoded[0].String())
	}

	sel := make(chartclip.Selection, 0, len(f.Notes))
	for i, e := range f.Notes {
		n, err := e.note()
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i+1, err)
		}
		sel = append(sel, n)
	}
	if err := sel.Validate(version.MustLookup(version.Current).MaxColumns); err != nil {
		return nil, err
	}
	return sel, nil
}

func (e noteEntry) note() (chartclip.Note, error) {
	kind := chartclip.KindTap
	if e.Kind != "" {
		var err error
		kind, err = chart.ParseKind(strings.ToLower(e.Kind))
		if err != nil {
			return chartclip.Note{}, err
		}
	}
	return chartclip.Note{Row: e.Row, Column: e.Column, Kind: kind, EndRow: e.EndRow}, nil
}

func entries(sel chartclip.Selection) []noteEntry {
	out := make([]noteEntry, len(sel))
	for i, n := range sel {
		out[i] = noteEntry{Row: n.Row, Column: n.Column, Kind: n.Kind.String(), EndRow: n.EndRow}
	}
	return out
}

// writeNotes renders sel in the named format.
func writeNotes(w io.Writer, sel chartclip.Selection, format string) error {
	switch format {
	case "text":
		for _, n := range sel {
			if n.Kind.Sustained() {
				fmt.Fprintf(w, "%-6d %3d  %-5s %d\n", n.Row, n.Column, n.Kind, n.EndRow)
			} else {
				fmt.Fprintf(w, "%-6d %3d  %s\n", n.Row, n.Column, n.Kind)
			}
		}
		return nil

	case "toml":
		return writeTOML(w, notesFile{Notes: entries(sel)})

	case "cbor":
		return writeCBOR(w, entries(sel))
	}
	return checkFormat(format)
}

// writeInfo prints the framing facts reported by Inspect.
func writeInfo(w io.Writer, info chartclip.Info) {
	fmt.Fprintf(w, "version:          %d\n", info.Version)
	fmt.Fprintf(w, "layout:           %s\n", layoutName(info.Rules.Layout))
	fmt.Fprintf(w, "payload bytes:    %d\n", info.PayloadBytes)
	fmt.Fprintf(w, "compressed bytes: %d\n", info.CompressedBytes)
	fmt.Fprintf(w, "stream bytes:     %d\n", info.StreamBytes)
	fmt.Fprintf(w, "notes:            %d\n", info.Notes)
}

func layoutName(l version.Layout) string {
	switch l {
	case version.LayoutFlagged:
		return "flagged (absolute rows)"
	case version.LayoutTagged:
		return "tagged (row deltas)"
	default:
		return "unknown"
	}
}
