package logger

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Fields carries structured context attached to a single log entry, e.g.
// connection id, command name, object id.
type Fields map[string]interface{}

// Logger is the logging façade used throughout the gateway. It wraps a
// logrus.Logger so the output writer can be swapped (SetOutput) without
// callers depending on logrus directly.
type Logger interface {
	SetLevel(lvl Level)
	GetLevel() Level
	SetOutput(w io.Writer)
	WithFields(f Fields) Logger

	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string, err error)
}

type entry struct {
	base *logrus.Logger
	lvl  *atomic.Value
	flds logrus.Fields
}

// New returns a Logger writing to stdout at InfoLevel by default.
func New() Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl := &atomic.Value{}
	lvl.Store(InfoLevel)
	l.SetLevel(InfoLevel.logrus())

	return &entry{base: l, lvl: lvl}
}

func (e *entry) SetLevel(lvl Level) {
	e.lvl.Store(lvl)
	e.base.SetLevel(lvl.logrus())
}

func (e *entry) GetLevel() Level {
	return e.lvl.Load().(Level)
}

func (e *entry) SetOutput(w io.Writer) {
	e.base.SetOutput(w)
}

func (e *entry) WithFields(f Fields) Logger {
	merged := make(logrus.Fields, len(e.flds)+len(f))
	for k, v := range e.flds {
		merged[k] = v
	}
	for k, v := range f {
		merged[k] = v
	}
	return &entry{base: e.base, lvl: e.lvl, flds: merged}
}

func (e *entry) logEntry() *logrus.Entry {
	return e.base.WithFields(e.flds)
}

func (e *entry) Debug(msg string) {
	e.logEntry().Debug(msg)
}

func (e *entry) Info(msg string) {
	e.logEntry().Info(msg)
}

func (e *entry) Warn(msg string) {
	e.logEntry().Warn(msg)
}

func (e *entry) Error(msg string, err error) {
	if err != nil {
		e.logEntry().WithError(err).Error(msg)
		return
	}
	e.logEntry().Error(msg)
}

// Discard returns a Logger that drops every entry, useful in tests.
func Discard() Logger {
	l := New().(*entry)
	l.base.SetOutput(io.Discard)
	return l
}
