package chartclip

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var nopLogger = zap.NewNop()

// pkgLogger backs codecs built without WithLogger. A nil pointer means the
// no-op logger.
var pkgLogger atomic.Pointer[zap.Logger]

// Logger returns the logger used by codecs that were not given one.
func Logger() *zap.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return nopLogger
}

// SetLogger replaces the package logger. It is safe to call at any time,
// including concurrently with codec operations. A nil logger restores the
// no-op default.
func SetLogger(l *zap.Logger) {
	pkgLogger.Store(l)
}
