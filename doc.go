// Package chartclip encodes rhythm-game chart note selections as clipboard
// text and decodes them back.
//
// A payload is a single line:
//
//	ChartClip:<version>:<base64 body>
//
// made of a fixed marker, a decimal version, and the base64 form of a zlib
// compressed binary record stream. Tempo copies use the same framing under
// their own marker, ChartTempo, with a separate version space.
//
// # Architecture Overview
//
//	chartclip/          Encode, Decode and the configurable Codec
//	├── chart/          Notes, timed notes and tempo events with canonical ordering
//	├── record/         Note, timed note and tempo stream codecs
//	├── version/        Version table and per-version record layout rules
//	├── compress/       zlib with a decompressed-size ceiling
//	├── envelope/       Marker, version field and base64 framing
//	├── errors/         Structured error types for every rejection
//	└── cmd/chartclip/  Command-line host with clipboard access and a viewer
//
// # Quick Start
//
//	text, err := chartclip.Encode(chartclip.Selection{
//	    {Row: 0, Column: 0, Kind: chartclip.KindTap},
//	    {Row: 8, Column: 1, Kind: chartclip.KindHold, EndRow: 16},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	notes, err := chartclip.Decode(text)
//	if errors.Is(err, cerrors.ErrUnsupportedVersion) {
//	    // payload from a newer editor
//	}
//
// # Versions
//
// Encoders always write version 2, which stores row deltas and an explicit
// kind tag per record. Version 1 payloads, which use the ArrowVortex
// row-based record layout, remain readable. Any other version is rejected;
// newer payloads are never guessed at.
//
// # Timing Data
//
// Version 1 can also hold notes positioned in seconds, as copied from an
// editor in time-based mode. EncodeTimed and DecodeTimed handle those;
// Decode rejects them. EncodeTempo and DecodeTempo carry BPM changes, stops,
// warps, labels and the other timing events of a chart.
//
// # Untrusted Input
//
// Clipboard text can be written by any process. Decode bounds inflated
// output (see WithMaxDecompressedSize), never allocates in proportion to a
// declared record count it cannot back with bytes, and returns no notes at
// all on the first error.
//
// # Thread Safety
//
// Encode, Decode and Codec are safe for concurrent use. No state is shared
// between calls.
package chartclip
