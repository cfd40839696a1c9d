package chartclip

import (
	"go.uber.org/zap"

	"github.com/wippyai/chartclip/chart"
	"github.com/wippyai/chartclip/compress"
	"github.com/wippyai/chartclip/envelope"
	"github.com/wippyai/chartclip/errors"
	"github.com/wippyai/chartclip/record"
	"github.com/wippyai/chartclip/version"
)

type (
	TimedNote      = chart.TimedNote
	TimedSelection = chart.TimedSelection
	TempoEvent     = chart.TempoEvent
	TempoEvents    = chart.TempoEvents
	TempoKind      = chart.TempoKind
)

const (
	TempoBPM           = chart.TempoBPM
	TempoStop          = chart.TempoStop
	TempoDelay         = chart.TempoDelay
	TempoWarp          = chart.TempoWarp
	TempoTimeSignature = chart.TempoTimeSignature
	TempoTicks         = chart.TempoTicks
	TempoCombo         = chart.TempoCombo
	TempoSpeed         = chart.TempoSpeed
	TempoScroll        = chart.TempoScroll
	TempoFakeSegment   = chart.TempoFakeSegment
	TempoLabel         = chart.TempoLabel
)

// EncodeTimed renders a time-based selection. Only version 1 carries
// positions in seconds, so the payload is always a version 1 payload.
func (c *Codec) EncodeTimed(sel TimedSelection) (string, error) {
	rules := version.MustLookup(version.TimedCurrent)
	raw, err := record.EncodeTimedStream(sel, rules)
	if err != nil {
		return "", err
	}
	body, err := c.compress(raw)
	if err != nil {
		return "", err
	}
	text := envelope.Wrap(rules.Version, body)
	c.log().Debug("encoded timed selection",
		zap.Int("notes", len(sel)),
		zap.Uint32("version", uint32(rules.Version)),
		zap.Int("payload_bytes", len(text)))
	return text, nil
}

// DecodeTimed parses a note payload holding time-based notes. Row-based
// payloads are rejected as malformed; use Decode for those.
func (c *Codec) DecodeTimed(text string) (TimedSelection, error) {
	sel, err := c.decodeTimed(text)
	if err != nil {
		c.log().Debug("rejected timed payload",
			zap.String("kind", string(errors.KindOf(err))),
			zap.Int("payload_bytes", len(text)),
			zap.Error(err))
		return nil, err
	}
	c.log().Debug("decoded timed selection", zap.Int("notes", len(sel)))
	return sel, nil
}

func (c *Codec) decodeTimed(text string) (TimedSelection, error) {
	v, body, err := envelope.Unwrap(text)
	if err != nil {
		return nil, err
	}
	rules, err := version.LookupTimed(v)
	if err != nil {
		return nil, err
	}
	raw, err := compress.Decompress(body, c.maxDecompressed)
	if err != nil {
		return nil, err
	}
	return record.DecodeTimedStream(raw, rules)
}

// IsTimed reports whether text is a well-formed note payload holding
// time-based notes. Errors of any kind yield false.
func (c *Codec) IsTimed(text string) bool {
	v, body, err := envelope.Unwrap(text)
	if err != nil {
		return false
	}
	rules, err := version.LookupTimed(v)
	if err != nil {
		return false
	}
	raw, err := compress.Decompress(body, c.maxDecompressed)
	if err != nil {
		return false
	}
	return record.IsTimeBased(raw, rules)
}

// EncodeTempo renders tempo events as a tempo payload. Events are written
// grouped by kind and ordered by row within a group.
func (c *Codec) EncodeTempo(events TempoEvents) (string, error) {
	rules := version.MustLookupTempo(version.TempoCurrent)
	raw, err := record.EncodeTempoStream(events, rules)
	if err != nil {
		return "", err
	}
	body, err := c.compress(raw)
	if err != nil {
		return "", err
	}
	text := envelope.WrapTempo(rules.Version, body)
	c.log().Debug("encoded tempo events",
		zap.Int("events", len(events)),
		zap.Uint32("version", uint32(rules.Version)),
		zap.Int("payload_bytes", len(text)))
	return text, nil
}

// DecodeTempo parses a tempo payload. Like Decode it treats text as
// untrusted and returns no events on any error.
func (c *Codec) DecodeTempo(text string) (TempoEvents, error) {
	events, err := c.decodeTempo(text)
	if err != nil {
		c.log().Debug("rejected tempo payload",
			zap.String("kind", string(errors.KindOf(err))),
			zap.Int("payload_bytes", len(text)),
			zap.Error(err))
		return nil, err
	}
	c.log().Debug("decoded tempo events", zap.Int("events", len(events)))
	return events, nil
}

func (c *Codec) decodeTempo(text string) (TempoEvents, error) {
	v, body, err := envelope.UnwrapTempo(text)
	if err != nil {
		return nil, err
	}
	rules, err := version.LookupTempo(v)
	if err != nil {
		return nil, err
	}
	raw, err := compress.Decompress(body, c.maxDecompressed)
	if err != nil {
		return nil, err
	}
	return record.DecodeTempoStream(raw, rules)
}

// EncodeTimed renders sel with a default Codec.
func EncodeTimed(sel TimedSelection) (string, error) {
	return defaultCodec.EncodeTimed(sel)
}

// DecodeTimed parses text with a default Codec.
func DecodeTimed(text string) (TimedSelection, error) {
	return defaultCodec.DecodeTimed(text)
}

// EncodeTempo renders events with a default Codec.
func EncodeTempo(events TempoEvents) (string, error) {
	return defaultCodec.EncodeTempo(events)
}

// DecodeTempo parses text with a default Codec.
func DecodeTempo(text string) (TempoEvents, error) {
	return defaultCodec.DecodeTempo(text)
}
