package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates which codec stage produced the error
type Phase string

const (
	PhaseEncode     Phase = "encode"     // selection to payload
	PhaseEnvelope   Phase = "envelope"   // marker, version field, base64 body
	PhaseVersion    Phase = "version"    // version dispatch
	PhaseDecompress Phase = "decompress" // zlib stream
	PhaseRecords    Phase = "records"    // binary record stream
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidPrefix       Kind = "invalid_prefix"
	KindInvalidVersionField Kind = "invalid_version_field"
	KindUnsupportedVersion  Kind = "unsupported_version"
	KindInvalidEncoding     Kind = "invalid_encoding"
	KindDecompression       Kind = "decompression_error"
	KindDecompressionBomb   Kind = "decompression_bomb"
	KindMalformedRecord     Kind = "malformed_record"
	KindTrailingData        Kind = "trailing_data"
	KindInvalidNote         Kind = "invalid_note"
	KindInternal            Kind = "internal"
)

// Sentinels for errors.Is. They match on Kind regardless of Phase.
var (
	ErrInvalidPrefix       = &Error{Kind: KindInvalidPrefix}
	ErrInvalidVersionField = &Error{Kind: KindInvalidVersionField}
	ErrUnsupportedVersion  = &Error{Kind: KindUnsupportedVersion}
	ErrInvalidEncoding     = &Error{Kind: KindInvalidEncoding}
	ErrDecompression       = &Error{Kind: KindDecompression}
	ErrDecompressionBomb   = &Error{Kind: KindDecompressionBomb}
	ErrMalformedRecord     = &Error{Kind: KindMalformedRecord}
	ErrTrailingData        = &Error{Kind: KindTrailingData}
	ErrInvalidNote         = &Error{Kind: KindInvalidNote}
	ErrInternal            = &Error{Kind: KindInternal}
)

// Error is the structured error type used throughout the codec
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	// Offset is the byte position in the stage's input, or -1 when unknown.
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Offset >= 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a Phase
// matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Path sets the location path, e.g. "record[3]", "kind"
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the byte position
func (b *Builder) Offset(pos int) *Builder {
	b.err.Offset = pos
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidPrefix creates an error for text that does not start with the marker
func InvalidPrefix(detail string) *Error {
	return &Error{
		Phase:  PhaseEnvelope,
		Kind:   KindInvalidPrefix,
		Detail: detail,
		Offset: -1,
	}
}

// InvalidVersionField creates an error for a missing or non-numeric version field
func InvalidVersionField(field string, cause error) *Error {
	detail := "missing version field"
	if field != "" {
		detail = fmt.Sprintf("version field %q is not a non-negative integer", field)
	}
	return &Error{
		Phase:  PhaseEnvelope,
		Kind:   KindInvalidVersionField,
		Detail: detail,
		Value:  field,
		Cause:  cause,
		Offset: -1,
	}
}

// UnsupportedVersion creates an error for a well-formed but unknown version
func UnsupportedVersion(v uint32, supported []uint32) *Error {
	names := make([]string, len(supported))
	for i, s := range supported {
		names[i] = fmt.Sprint(s)
	}
	return &Error{
		Phase:  PhaseVersion,
		Kind:   KindUnsupportedVersion,
		Detail: fmt.Sprintf("version %d is not supported (supported: %s)", v, strings.Join(names, ", ")),
		Value:  v,
		Offset: -1,
	}
}

// InvalidEncoding creates an error for a body that is not valid base64
func InvalidEncoding(offset int, cause error) *Error {
	return &Error{
		Phase:  PhaseEnvelope,
		Kind:   KindInvalidEncoding,
		Detail: "body is not valid base64",
		Cause:  cause,
		Offset: offset,
	}
}

// Decompression creates an error for a structurally invalid compressed stream
func Decompression(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecompress,
		Kind:   KindDecompression,
		Detail: detail,
		Cause:  cause,
		Offset: -1,
	}
}

// DecompressionBomb creates an error for output that exceeds the ceiling
func DecompressionBomb(limit int) *Error {
	return &Error{
		Phase:  PhaseDecompress,
		Kind:   KindDecompressionBomb,
		Detail: fmt.Sprintf("decompressed size exceeds %d bytes", limit),
		Value:  limit,
		Offset: -1,
	}
}

// MalformedRecord creates an error for an unreadable record
func MalformedRecord(path []string, offset int, detail string) *Error {
	return &Error{
		Phase:  PhaseRecords,
		Kind:   KindMalformedRecord,
		Path:   path,
		Detail: detail,
		Offset: offset,
	}
}

// TrailingData creates an error for bytes left after the declared records
func TrailingData(offset, remaining int) *Error {
	return &Error{
		Phase:  PhaseRecords,
		Kind:   KindTrailingData,
		Detail: fmt.Sprintf("%d unexpected byte(s) after last record", remaining),
		Value:  remaining,
		Offset: offset,
	}
}

// InvalidNote creates an error for a note that cannot be encoded
func InvalidNote(path []string, value any, detail string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindInvalidNote,
		Path:   path,
		Detail: detail,
		Value:  value,
		Offset: -1,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
		Offset: -1,
	}
}
