// Package envelope frames compressed record bytes as clipboard text:
//
//	ChartClip:<version>:<base64 body>
//	ChartTempo:<version>:<base64 body>
//
// Note copies use the first marker and tempo copies the second; each has
// its own version space. The markers, separator and alphabet are wire
// constants. Changing any of them breaks every payload already written.
package envelope

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/wippyai/chartclip/errors"
	"github.com/wippyai/chartclip/version"
)

const (
	// Marker opens every note payload. Matching is exact and case-sensitive.
	Marker = "ChartClip"
	// TempoMarker opens every tempo payload.
	TempoMarker = "ChartTempo"
	// Separator follows the marker and the version field.
	Separator = ":"
)

// encoding is standard padded base64; Strict rejects non-zero padding bits
// so each body has exactly one accepted spelling.
var encoding = base64.StdEncoding.Strict()

// Wrap renders compressed note bytes as a clipboard payload.
func Wrap(v version.Version, body []byte) string {
	return wrap(Marker, v, body)
}

// WrapTempo renders compressed tempo bytes as a clipboard payload.
func WrapTempo(v version.Version, body []byte) string {
	return wrap(TempoMarker, v, body)
}

func wrap(marker string, v version.Version, body []byte) string {
	var b strings.Builder
	b.Grow(len(marker) + 2*len(Separator) + 10 + encoding.EncodedLen(len(body)))
	b.WriteString(marker)
	b.WriteString(Separator)
	b.WriteString(strconv.FormatUint(uint64(v), 10))
	b.WriteString(Separator)
	b.WriteString(encoding.EncodeToString(body))
	return b.String()
}

// Unwrap splits a note payload into its version and decoded body. Trailing
// whitespace is ignored; everything else must match the wire form exactly.
func Unwrap(text string) (version.Version, []byte, error) {
	return unwrap(Marker, text)
}

// UnwrapTempo is Unwrap for tempo payloads.
func UnwrapTempo(text string) (version.Version, []byte, error) {
	return unwrap(TempoMarker, text)
}

// IsTempo reports whether text carries the tempo marker. It checks only the
// prefix.
func IsTempo(text string) bool {
	return strings.HasPrefix(text, TempoMarker+Separator)
}

func unwrap(marker, text string) (version.Version, []byte, error) {
	text = strings.TrimRight(text, " \t\r\n")

	rest, ok := strings.CutPrefix(text, marker+Separator)
	if !ok {
		return 0, nil, errors.InvalidPrefix("text does not start with " + strconv.Quote(marker+Separator))
	}

	field, body, ok := strings.Cut(rest, Separator)
	if !ok {
		return 0, nil, errors.New(errors.PhaseEnvelope, errors.KindInvalidVersionField).
			Value(rest).
			Detail("no separator after version field").
			Build()
	}
	v, err := parseVersion(field)
	if err != nil {
		return 0, nil, err
	}

	bodyStart := len(marker) + len(Separator) + len(field) + len(Separator)
	// The base64 decoder skips CR and LF; a payload must not contain them.
	if i := strings.IndexAny(body, "\r\n"); i >= 0 {
		return 0, nil, errors.InvalidEncoding(bodyStart+i, base64.CorruptInputError(i))
	}
	data, err := encoding.DecodeString(body)
	if err != nil {
		offset := bodyStart
		if ce, ok := err.(base64.CorruptInputError); ok {
			offset += int(ce)
		}
		return 0, nil, errors.InvalidEncoding(offset, err)
	}
	return v, data, nil
}

// parseVersion accepts a run of ASCII digits with no leading zero, so each
// version has one spelling. A numeric field too large for a Version is
// well-formed but can never be supported.
func parseVersion(field string) (version.Version, error) {
	if field == "" {
		return 0, errors.InvalidVersionField("", nil)
	}
	for i := 0; i < len(field); i++ {
		if field[i] < '0' || field[i] > '9' {
			return 0, errors.InvalidVersionField(field, nil)
		}
	}
	if len(field) > 1 && field[0] == '0' {
		return 0, errors.New(errors.PhaseEnvelope, errors.KindInvalidVersionField).
			Value(field).
			Detail("version field %q has a leading zero", field).
			Build()
	}
	n, err := strconv.ParseUint(field, 10, 32)
	if err != nil {
		return 0, errors.New(errors.PhaseVersion, errors.KindUnsupportedVersion).
			Value(field).
			Cause(err).
			Detail("version %s is not supported", field).
			Build()
	}
	return version.Version(n), nil
}
