package vulfield

import (
	"log/slog"
	"sync/atomic"
)

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger replaces the logger used for misuse warnings. nil restores
// slog.Default().
func SetLogger(l *slog.Logger) { pkgLogger.Store(l) }

func logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
