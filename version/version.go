// Package version resolves a clipboard payload's version number to the
// binary record layout it was written with.
package version

import (
	"github.com/wippyai/chartclip/chart"
	"github.com/wippyai/chartclip/errors"
)

// Version identifies a record layout.
type Version uint32

const (
	// V1 is the ArrowVortex row-based layout: absolute rows, a non-tap flag
	// in the column byte, and a trailing type byte.
	V1 Version = 1
	// V2 stores row deltas and an explicit kind tag on every record.
	V2 Version = 2

	// Current is the version every encoder writes.
	Current = V2
	// TimedCurrent is the version written for time-based selections. Only
	// the flagged layout can carry seconds.
	TimedCurrent = V1
)

// Layout selects the record field arrangement.
type Layout uint8

const (
	LayoutFlagged Layout = iota + 1
	LayoutTagged
)

// Rules describes how records of one version are laid out.
type Rules struct {
	Version Version
	Layout  Layout
	// DeltaRows is true when row fields are offsets from the previous record.
	DeltaRows bool
	// MaxColumns bounds the column field; valid columns are [0, MaxColumns).
	MaxColumns int
	// TimeBased is true when the layout can carry positions in seconds.
	TimeBased bool
	supported  []chart.Kind
	tags       map[chart.Kind]uint8
	kinds      map[uint8]chart.Kind
}

// Supports reports whether notes of kind k can be written in this version.
func (r Rules) Supports(k chart.Kind) bool {
	for _, s := range r.supported {
		if s == k {
			return true
		}
	}
	return false
}

// Tag returns the wire tag for k, or false if k has no tag in this version.
// In the flagged layout taps are marked by the column byte and have no tag.
func (r Rules) Tag(k chart.Kind) (uint8, bool) {
	t, ok := r.tags[k]
	return t, ok
}

// KindForTag returns the kind a wire tag denotes, or false for an unknown tag.
func (r Rules) KindForTag(tag uint8) (chart.Kind, bool) {
	k, ok := r.kinds[tag]
	return k, ok
}

// Kinds returns the kinds this version can carry.
func (r Rules) Kinds() []chart.Kind {
	return append([]chart.Kind(nil), r.supported...)
}

func newRules(v Version, layout Layout, delta bool, maxColumns int, supported []chart.Kind, tags map[chart.Kind]uint8) Rules {
	kinds := make(map[uint8]chart.Kind, len(tags))
	for k, t := range tags {
		kinds[t] = k
	}
	return Rules{
		Version:    v,
		Layout:     layout,
		DeltaRows:  delta,
		MaxColumns: maxColumns,
		TimeBased:  layout == LayoutFlagged,
		supported:  supported,
		tags:       tags,
		kinds:      kinds,
	}
}

// table is the single source of truth for supported versions, ascending.
var table = []Rules{
	newRules(V1, LayoutFlagged, false, 128, chart.Kinds(), map[chart.Kind]uint8{
		chart.KindHold: 0,
		chart.KindMine: 1,
		chart.KindRoll: 2,
		chart.KindLift: 3,
		chart.KindFake: 4,
	}),
	newRules(V2, LayoutTagged, true, 255, chart.Kinds(), map[chart.Kind]uint8{
		chart.KindTap:  0,
		chart.KindHold: 1,
		chart.KindMine: 2,
		chart.KindRoll: 3,
		chart.KindLift: 4,
		chart.KindFake: 5,
	}),
}

// Lookup returns the rules for v, or an unsupported_version error.
func Lookup(v Version) (Rules, error) {
	for _, r := range table {
		if r.Version == v {
			return r, nil
		}
	}
	supported := make([]uint32, len(table))
	for i, r := range table {
		supported[i] = uint32(r.Version)
	}
	return Rules{}, errors.UnsupportedVersion(uint32(v), supported)
}

// LookupTimed is Lookup restricted to versions that carry time-based
// notes.
func LookupTimed(v Version) (Rules, error) {
	var supported []uint32
	for _, r := range table {
		if !r.TimeBased {
			continue
		}
		if r.Version == v {
			return r, nil
		}
		supported = append(supported, uint32(r.Version))
	}
	return Rules{}, errors.UnsupportedVersion(uint32(v), supported)
}

// MustLookup is Lookup for versions known to be in the table.
func MustLookup(v Version) Rules {
	r, err := Lookup(v)
	if err != nil {
		panic(err)
	}
	return r
}

// Supported lists every version the decoder accepts, ascending.
func Supported() []Version {
	out := make([]Version, len(table))
	for i, r := range table {
		out[i] = r.Version
	}
	return out
}
