package chartclip

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/chartclip/compress"
	"github.com/wippyai/chartclip/envelope"
	clerrors "github.com/wippyai/chartclip/errors"
	"github.com/wippyai/chartclip/version"
)

// timedTaps is ArrowVortex's time-based copy of four taps a quarter
// second apart.
var timedTaps = []byte{
	0x01, 0x04,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xd0, 0x3f,
	0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xe0, 0x3f,
	0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xe8, 0x3f,
}

// tempoDoc is ArrowVortex's tempo copy: 120 BPM, a 0.2s delay at row 48,
// a 24-row warp at 96 and 2x scroll at 144.
var tempoDoc = []byte{
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x5e, 0x40,
	0x01, 0x02, 0x30, 0x00, 0x00, 0x00, 0x9a, 0x99, 0x99, 0x99, 0x99, 0x99, 0xc9, 0x3f,
	0x01, 0x03, 0x60, 0x00, 0x00, 0x00, 0x18, 0x00, 0x00, 0x00,
	0x01, 0x08, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x40,
	0x00,
}

func wrapStream(t *testing.T, wrap func(version.Version, []byte) string, v version.Version, raw []byte) string {
	t.Helper()
	body, err := compress.Compress(raw)
	if err != nil {
		t.Fatal(err)
	}
	return wrap(v, body)
}

func TestDecodeTimedFixture(t *testing.T) {
	text := wrapStream(t, envelope.Wrap, version.V1, timedTaps)

	got, err := DecodeTimed(text)
	if err != nil {
		t.Fatalf("DecodeTimed: %v", err)
	}
	want := TimedSelection{
		{Time: 0, Column: 0},
		{Time: 0.25, Column: 1},
		{Time: 0.5, Column: 2},
		{Time: 0.75, Column: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("note %d = %v, want %v", i, got[i], want[i])
		}
	}

	if !New().IsTimed(text) {
		t.Error("IsTimed = false for a time-based payload")
	}
	_, err = Decode(text)
	if !errors.Is(err, clerrors.ErrMalformedRecord) {
		t.Errorf("Decode of a time-based payload = %v, want malformed_record", err)
	}
}

func TestTimedRoundTrip(t *testing.T) {
	sel := TimedSelection{
		{Time: 2, Column: 1, Kind: KindHold, EndTime: 3.5},
		{Time: 0.125, Column: 0, Kind: KindLift},
		{Time: 0.125, Column: 2},
	}
	text, err := EncodeTimed(sel)
	if err != nil {
		t.Fatalf("EncodeTimed: %v", err)
	}
	if !strings.HasPrefix(text, "ChartClip:1:") {
		t.Errorf("payload %q is not version 1", text)
	}
	got, err := DecodeTimed(text)
	if err != nil {
		t.Fatalf("DecodeTimed: %v", err)
	}
	want := sel.Sorted()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("note %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecodeTimedRejects(t *testing.T) {
	rowPayload, err := Encode(scenario())
	if err != nil {
		t.Fatal(err)
	}
	legacyRows := wrapStream(t, envelope.Wrap, version.V1, []byte{0x00, 0x01, 0x00, 0x00})

	tests := []struct {
		name string
		text string
		want error
	}{
		{"current version", rowPayload, clerrors.ErrUnsupportedVersion},
		{"row based v1", legacyRows, clerrors.ErrMalformedRecord},
		{"tempo marker", wrapStream(t, envelope.WrapTempo, version.TempoV1, tempoDoc), clerrors.ErrInvalidPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTimed(tt.text)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
			if got != nil {
				t.Errorf("partial result returned: %v", got)
			}
		})
	}

	if New().IsTimed(rowPayload) || New().IsTimed(legacyRows) {
		t.Error("IsTimed = true for a row-based payload")
	}
}

func TestDecodeTempoFixture(t *testing.T) {
	text := wrapStream(t, envelope.WrapTempo, version.TempoV1, tempoDoc)

	got, err := DecodeTempo(text)
	if err != nil {
		t.Fatalf("DecodeTempo: %v", err)
	}
	want := TempoEvents{
		{Row: 0, Kind: TempoBPM, BPM: 120},
		{Row: 48, Kind: TempoDelay, Seconds: 0.2},
		{Row: 96, Kind: TempoWarp, Rows: 24},
		{Row: 144, Kind: TempoScroll, Ratio: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}

	again, err := EncodeTempo(want)
	if err != nil {
		t.Fatalf("EncodeTempo: %v", err)
	}
	if !strings.HasPrefix(again, "ChartTempo:1:") {
		t.Errorf("payload %q lacks tempo prefix", again)
	}
	if _, err := Decode(again); !errors.Is(err, clerrors.ErrInvalidPrefix) {
		t.Errorf("Decode of a tempo payload = %v, want invalid_prefix", err)
	}
}

func TestDecodeTempoRejects(t *testing.T) {
	unknownTag := []byte{0x01, 0x0b, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	notes, err := Encode(scenario())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		text string
		want error
	}{
		{"unknown tempo tag", wrapStream(t, envelope.WrapTempo, version.TempoV1, unknownTag), clerrors.ErrMalformedRecord},
		{"unsupported version", wrapStream(t, envelope.WrapTempo, 2, tempoDoc), clerrors.ErrUnsupportedVersion},
		{"trailing data", wrapStream(t, envelope.WrapTempo, version.TempoV1, append(append([]byte{}, tempoDoc...), 0x00)), clerrors.ErrTrailingData},
		{"note payload", notes, clerrors.ErrInvalidPrefix},
		{"leading zero", "ChartTempo:01:AAAA", clerrors.ErrInvalidVersionField},
		{"bad body", "ChartTempo:1:AAAA", clerrors.ErrDecompression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTempo(tt.text)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
			if got != nil {
				t.Errorf("partial result returned: %v", got)
			}
		})
	}
}

func TestEncodeTempoRejectsInvalidEvents(t *testing.T) {
	_, err := EncodeTempo(TempoEvents{{Kind: TempoWarp, Rows: 4, BPM: 1}})
	if !errors.Is(err, clerrors.ErrInvalidNote) {
		t.Errorf("got %v, want invalid_note", err)
	}
}

func TestTempoLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	codec := New(WithLogger(zap.New(core)))

	text, err := codec.EncodeTempo(TempoEvents{{Kind: TempoBPM, BPM: 150}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := codec.DecodeTempo(text); err != nil {
		t.Fatal(err)
	}
	if _, err := codec.DecodeTempo("ChartClip:2:"); err == nil {
		t.Fatal("expected error")
	}

	if n := logs.FilterMessage("decoded tempo events").Len(); n != 1 {
		t.Errorf("decoded tempo events logged %d times", n)
	}
	rejected := logs.FilterMessage("rejected tempo payload").All()
	if len(rejected) != 1 {
		t.Fatalf("rejected logged %d times", len(rejected))
	}
	if kind := rejected[0].ContextMap()["kind"]; kind != string(clerrors.KindInvalidPrefix) {
		t.Errorf("kind field = %v", kind)
	}
}
