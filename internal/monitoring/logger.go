// Package monitoring holds the shared diagnostic logger.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// may be replaced with SetLogger; tests typically mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Prefixed returns a logger that prepends a bracketed component name, so
// call sites read monitoring.Prefixed("Session")("processed %d rays", n).
func Prefixed(component string) func(format string, v ...interface{}) {
	return func(format string, v ...interface{}) {
		Logf("["+component+"] "+format, v...)
	}
}
