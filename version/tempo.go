package version

import (
	"github.com/wippyai/chartclip/chart"
	"github.com/wippyai/chartclip/errors"
)

const (
	// TempoV1 is the ArrowVortex tempo layout: events grouped by kind, each
	// group a count and a tag byte, the list ended by a zero count.
	TempoV1 Version = 1

	// TempoCurrent is the tempo version every encoder writes.
	TempoCurrent = TempoV1
)

// TempoRules describes how tempo events of one version are laid out.
type TempoRules struct {
	Version Version
	tags    map[chart.TempoKind]uint8
	kinds   map[uint8]chart.TempoKind
}

// Tag returns the wire tag for k.
func (r TempoRules) Tag(k chart.TempoKind) (uint8, bool) {
	t, ok := r.tags[k]
	return t, ok
}

// KindForTag returns the tempo kind a wire tag denotes.
func (r TempoRules) KindForTag(tag uint8) (chart.TempoKind, bool) {
	k, ok := r.kinds[tag]
	return k, ok
}

func newTempoRules(v Version, kinds []chart.TempoKind) TempoRules {
	r := TempoRules{
		Version: v,
		tags:    make(map[chart.TempoKind]uint8, len(kinds)),
		kinds:   make(map[uint8]chart.TempoKind, len(kinds)),
	}
	for i, k := range kinds {
		r.tags[k] = uint8(i)
		r.kinds[uint8(i)] = k
	}
	return r
}

// tempoTable lists supported tempo versions, ascending. Tags follow the
// order of the kinds slice, which is also their canonical group order.
var tempoTable = []TempoRules{
	newTempoRules(TempoV1, []chart.TempoKind{
		chart.TempoBPM,
		chart.TempoStop,
		chart.TempoDelay,
		chart.TempoWarp,
		chart.TempoTimeSignature,
		chart.TempoTicks,
		chart.TempoCombo,
		chart.TempoSpeed,
		chart.TempoScroll,
		chart.TempoFakeSegment,
		chart.TempoLabel,
	}),
}

// LookupTempo returns the tempo rules for v, or an unsupported_version error.
func LookupTempo(v Version) (TempoRules, error) {
	for _, r := range tempoTable {
		if r.Version == v {
			return r, nil
		}
	}
	supported := make([]uint32, len(tempoTable))
	for i, r := range tempoTable {
		supported[i] = uint32(r.Version)
	}
	return TempoRules{}, errors.UnsupportedVersion(uint32(v), supported)
}

// MustLookupTempo is LookupTempo for versions known to be in the table.
func MustLookupTempo(v Version) TempoRules {
	r, err := LookupTempo(v)
	if err != nil {
		panic(err)
	}
	return r
}
