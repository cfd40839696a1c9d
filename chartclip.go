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
	Note      = chart.Note
	Kind      = chart.Kind
	Selection = chart.Selection
)

const (
	KindTap  = chart.KindTap
	KindHold = chart.KindHold
	KindMine = chart.KindMine
	KindRoll = chart.KindRoll
	KindLift = chart.KindLift
	KindFake = chart.KindFake
)

// Codec converts selections to and from clipboard text. A Codec is
// immutable after New and safe for concurrent use.
type Codec struct {
	logger          *zap.Logger
	maxDecompressed int
}

// Option configures a Codec.
type Option func(*Codec)

// WithMaxDecompressedSize sets the ceiling on inflated record bytes.
// Values <= 0 keep compress.DefaultMaxDecompressedSize.
func WithMaxDecompressedSize(n int) Option {
	return func(c *Codec) {
		if n > 0 {
			c.maxDecompressed = n
		}
	}
}

// WithLogger sets the codec's logger. The package Logger is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(c *Codec) {
		c.logger = l
	}
}

// New creates a Codec.
func New(opts ...Option) *Codec {
	c := &Codec{maxDecompressed: compress.DefaultMaxDecompressedSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxDecompressedSize returns the decompression ceiling in bytes.
func (c *Codec) MaxDecompressedSize() int {
	return c.maxDecompressed
}

func (c *Codec) log() *zap.Logger {
	if c.logger != nil {
		return c.logger
	}
	return Logger()
}

// Encode renders sel as a current-version clipboard payload. sel is not
// modified; notes are written in (row, column) order. Errors are returned
// only for notes that break the data model or an internal compression
// failure.
func (c *Codec) Encode(sel Selection) (string, error) {
	raw, err := record.EncodeStream(sel)
	if err != nil {
		return "", err
	}
	body, err := c.compress(raw)
	if err != nil {
		return "", err
	}

	text := envelope.Wrap(version.Current, body)
	c.log().Debug("encoded selection",
		zap.Int("notes", len(sel)),
		zap.Uint32("version", uint32(version.Current)),
		zap.Int("stream_bytes", len(raw)),
		zap.Int("compressed_bytes", len(body)),
		zap.Int("payload_bytes", len(text)))
	return text, nil
}

// compress deflates a record stream, warning when the stream would not
// decode under this codec's ceiling.
func (c *Codec) compress(raw []byte) ([]byte, error) {
	if len(raw) > c.maxDecompressed {
		c.log().Warn("encoded stream exceeds decode ceiling",
			zap.Int("stream_bytes", len(raw)),
			zap.Int("max_decompressed", c.maxDecompressed))
	}
	body, err := compress.Compress(raw)
	if err != nil {
		c.log().Error("compress record stream", zap.Error(err))
		return nil, err
	}
	return body, nil
}

// Decode parses a clipboard payload. text is untrusted: any deviation from
// the wire format is reported as an *errors.Error and no notes are returned.
func (c *Codec) Decode(text string) (Selection, error) {
	info, sel, err := c.decode(text)
	if err != nil {
		c.log().Debug("rejected clipboard payload",
			zap.String("kind", string(errors.KindOf(err))),
			zap.Int("payload_bytes", len(text)),
			zap.Error(err))
		return nil, err
	}
	c.log().Debug("decoded selection",
		zap.Uint32("version", uint32(info.Version)),
		zap.Int("notes", info.Notes),
		zap.Int("compressed_bytes", info.CompressedBytes),
		zap.Int("stream_bytes", info.StreamBytes))
	return sel, nil
}

// Info describes a payload's framing.
type Info struct {
	Version         version.Version
	Rules           version.Rules
	PayloadBytes    int
	CompressedBytes int
	StreamBytes     int
	Notes           int
}

// Inspect decodes text and reports its framing alongside the notes.
func (c *Codec) Inspect(text string) (Info, Selection, error) {
	return c.decode(text)
}

func (c *Codec) decode(text string) (Info, Selection, error) {
	info := Info{PayloadBytes: len(text)}

	v, body, err := envelope.Unwrap(text)
	if err != nil {
		return info, nil, err
	}
	info.Version = v
	info.CompressedBytes = len(body)

	rules, err := version.Lookup(v)
	if err != nil {
		return info, nil, err
	}
	info.Rules = rules

	raw, err := compress.Decompress(body, c.maxDecompressed)
	if err != nil {
		return info, nil, err
	}
	info.StreamBytes = len(raw)

	sel, err := record.DecodeStream(raw, rules)
	if err != nil {
		return info, nil, err
	}
	info.Notes = len(sel)
	return info, sel, nil
}

var defaultCodec = New()

// Encode renders sel with a default Codec.
func Encode(sel Selection) (string, error) {
	return defaultCodec.Encode(sel)
}

// Decode parses text with a default Codec.
func Decode(text string) (Selection, error) {
	return defaultCodec.Decode(text)
}
