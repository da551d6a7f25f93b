// Package logging implements the simulator's structured logger: a small
// leveled Logger interface any component logs through, backed by a
// logrus.Logger by default.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the leveled logging interface every simulation component logs
// through. Components take a Logger instead of reaching for a package-level
// global, so a caller embedding the simulator in a larger program can
// redirect its output.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// DefaultLogger is the logrus-backed Logger used when a simulation is built
// without an explicit WithLogger option.
type DefaultLogger struct {
	entry *logrus.Entry
}

// NewDefaultLogger builds a DefaultLogger writing to stderr with the given
// level. debug enables Debug-level output; otherwise only Info and above
// are emitted.
func NewDefaultLogger(debug bool) *DefaultLogger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		base.SetLevel(logrus.DebugLevel)
	} else {
		base.SetLevel(logrus.InfoLevel)
	}
	return &DefaultLogger{entry: logrus.NewEntry(base)}
}

// WithField returns a DefaultLogger that attaches key/value to every
// subsequent log line, the way a per-participant logger tags its process id.
func (l *DefaultLogger) WithField(key string, value interface{}) *DefaultLogger {
	return &DefaultLogger{entry: l.entry.WithField(key, value)}
}

func (l *DefaultLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *DefaultLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *DefaultLogger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

// Noop is a Logger that discards everything, useful in tests that don't
// want simulation output on the test log.
type Noop struct{}

func (Noop) Infof(string, ...interface{})  {}
func (Noop) Warnf(string, ...interface{})  {}
func (Noop) Errorf(string, ...interface{}) {}
func (Noop) Debugf(string, ...interface{}) {}
func (Noop) Fatalf(string, ...interface{}) {}
