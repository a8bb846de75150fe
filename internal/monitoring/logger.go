package monitoring

import (
	"log"

	"go.uber.org/zap"
)

// Logf is the package-level diagnostic logger used by the simulator packages.
// It defaults to log.Printf; binaries install a zap-backed logger with UseZap.
var Logf func(format string, v ...interface{}) = log.Printf

// Debugf carries per-tick detail. It is muted unless a verbose logger is
// installed.
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces Logf. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebugLogger replaces Debugf. Passing nil mutes it.
func SetDebugLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Debugf = func(string, ...interface{}) {}
		return
	}
	Debugf = f
}

// UseZap routes Logf and Debugf through l. Debug output still obeys the
// logger's level.
func UseZap(l *zap.Logger) {
	if l == nil {
		SetLogger(nil)
		SetDebugLogger(nil)
		return
	}
	sugar := l.Sugar()
	SetLogger(sugar.Infof)
	SetDebugLogger(sugar.Debugf)
}

// NewZapLogger builds the console logger used by the commands. verbose lowers
// the level to debug; quiet raises it to warn.
func NewZapLogger(verbose, quiet bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	switch {
	case quiet:
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case verbose:
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
