package core

import (
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var defaultLogger atomic.Pointer[log.Logger]

func init() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "midicore",
	})
	l.SetLevel(log.InfoLevel)
	defaultLogger.Store(l)
}

// Logger returns the package-wide diagnostic logger. The router, its
// ports and the event queue log through it rather than panicking or returning
// fatal errors (spec.md §7: diagnostics only, never abort).
func Logger() *log.Logger { return defaultLogger.Load() }

// SetLogger replaces the package-wide logger, e.g. so a test can silence
// it or a host binary can redirect it.
func SetLogger(l *log.Logger) { defaultLogger.Store(l) }
