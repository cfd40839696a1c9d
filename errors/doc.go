// Package errors provides structured error types for the chartclip codec.
//
// Errors are categorized by Phase (which codec stage failed) and Kind (error category).
// The Error type carries a location path, a byte offset and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRecords, errors.KindMalformedRecord).
//		Path("record[3]", "kind").
//		Offset(17).
//		Value(uint8(9)).
//		Detail("unknown kind tag %d", 9).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidPrefix("missing marker")
//	err := errors.TrailingData(42, 3)
//
// All errors implement the standard error interface and support errors.Is/As.
// The package-level sentinels (ErrInvalidPrefix, ErrMalformedRecord, ...)
// match any error of the same Kind:
//
//	if errors.Is(err, errors.ErrUnsupportedVersion) { ... }
package errors
