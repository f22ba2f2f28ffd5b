// Package log wraps logrus behind a small Logger interface shared by all packages.
package log

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the leveled, field-carrying logger used across the replayer.
type Logger interface {
	Trace(args ...interface{})
	Tracef(format string, args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsTraceEnabled() bool
	IsDebugEnabled() bool
}

var (
	mu     sync.RWMutex
	logger Logger
	output *MultiWriter
)

func init() {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	logger = &logrusAdapter{entry: logrus.NewEntry(l)}
}

func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Init replaces the global logger according to cfg. Files held by the
// previous logger are closed.
func Init(cfg *LoggerConfig) error {
	l, w, err := newByConfig(cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	prev := output
	logger, output = l, w
	mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Close releases the log files opened by Init.
func Close() error {
	mu.Lock()
	w := output
	output = nil
	mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}
