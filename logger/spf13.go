package logger

import (
	"io"

	jww "github.com/spf13/jwalterweatherman"
)

// BridgeSPF13 routes jwalterweatherman output (used internally by cobra and
// viper for their own diagnostics) through this Logger so a single log sink
// and level apply to the whole process.
func BridgeSPF13(l Logger, lvl Level) {
	if lvl == NilLevel {
		jww.SetLogOutput(io.Discard)
		jww.SetStdoutThreshold(jww.LevelCritical)
		return
	}

	w := &jwwWriter{l: l}
	jww.SetLogOutput(w)

	switch lvl {
	case DebugLevel:
		jww.SetLogThreshold(jww.LevelTrace)
	case WarnLevel:
		jww.SetLogThreshold(jww.LevelWarn)
	case ErrorLevel, FatalLevel, PanicLevel:
		jww.SetLogThreshold(jww.LevelError)
	default:
		jww.SetLogThreshold(jww.LevelInfo)
	}
}

// jwwWriter adapts io.Writer (what jwalterweatherman wants) onto Logger.
type jwwWriter struct {
	l Logger
}

func (w *jwwWriter) Write(p []byte) (int, error) {
	w.l.Debug(string(p))
	return len(p), nil
}
