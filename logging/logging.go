// Package logging is the structured-logging seam every component in this
// module goes through, instead of each file constructing its own logrus
// entry. One *logrus.Logger is built at startup and narrow, pre-fielded
// loggers are passed down into the components that need them.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Level re-exports logrus's level type so call sites never need to
// import logrus directly just to pick a verbosity.
type Level = logrus.Level

const (
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
)

// Logger is the narrow surface components depend on, so call sites never
// need to import logrus directly.
type Logger interface {
	WithField(key string, value any) Logger
	WithError(err error) Logger
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
}

type entry struct{ e *logrus.Entry }

func (l entry) WithField(key string, value any) Logger { return entry{l.e.WithField(key, value)} }
func (l entry) WithError(err error) Logger             { return entry{l.e.WithError(err)} }
func (l entry) Debug(args ...any)                      { l.e.Debug(args...) }
func (l entry) Info(args ...any)                       { l.e.Info(args...) }
func (l entry) Warn(args ...any)                       { l.e.Warn(args...) }
func (l entry) Error(args ...any)                      { l.e.Error(args...) }

// New builds a Logger writing JSON-formatted entries to stderr at level.
func New(level logrus.Level) Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(level)
	return entry{logrus.NewEntry(base)}
}

// Noop returns a Logger that discards everything, for callers that
// construct a Client without a LoggingConfig.
func Noop() Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetLevel(logrus.PanicLevel + 1)
	return entry{logrus.NewEntry(base)}
}
