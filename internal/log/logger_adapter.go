package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPattern = "%time [%level] %msg %field%n"
	DefaultTime    = "2006-01-02 15:04:05.000"
)

type LoggerConfig struct {
	Pattern string          `mapstructure:"pattern"`
	Time    string          `mapstructure:"time"`
	Level   string          `mapstructure:"level"`
	File    FileAppenderOpt `mapstructure:"file"`

	// Output overrides stdout, mainly for tests.
	Output io.Writer `mapstructure:"-"`
}

// verbosityLevels maps replay verbosity names to logrus levels. "quiet"
// keeps only panics, which the replayer never logs.
var verbosityLevels = map[string]logrus.Level{
	"quiet":    logrus.PanicLevel,
	"errors":   logrus.ErrorLevel,
	"warnings": logrus.WarnLevel,
	"full":     logrus.InfoLevel,
	"debug":    logrus.DebugLevel,
}

// ParseVerbosity maps a replay verbosity name to a logrus level name.
func ParseVerbosity(verbosity string) (string, error) {
	level, ok := verbosityLevels[strings.ToLower(verbosity)]
	if !ok {
		return "", fmt.Errorf("unknown verbosity %q (must be quiet/errors/warnings/full/debug)", verbosity)
	}
	return level.String(), nil
}

func newByConfig(cfg *LoggerConfig) (*logrusAdapter, *MultiWriter, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	timeLayout := cfg.Time
	if timeLayout == "" {
		timeLayout = DefaultTime
	}
	f := newFormatter(pattern, timeLayout)

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	writers := NewMultiWriter().Add(out)
	if cfg.File.Filename != "" {
		fa, err := newFileAppender(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		writers.AddOwned(fa)
	}

	l := logrus.New()
	l.SetFormatter(f)
	l.SetLevel(level)
	l.SetOutput(writers)
	l.SetReportCaller(f.hasCaller())

	return &logrusAdapter{entry: logrus.NewEntry(l)}, writers, nil
}

type logrusAdapter struct {
	entry *logrus.Entry
}

func (l *logrusAdapter) Trace(args ...interface{})                 { l.entry.Trace(args...) }
func (l *logrusAdapter) Tracef(format string, args ...interface{}) { l.entry.Tracef(format, args...) }
func (l *logrusAdapter) Debug(args ...interface{})                 { l.entry.Debug(args...) }
func (l *logrusAdapter) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logrusAdapter) Info(args ...interface{})                  { l.entry.Info(args...) }
func (l *logrusAdapter) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logrusAdapter) Warn(args ...interface{})                  { l.entry.Warn(args...) }
func (l *logrusAdapter) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusAdapter) Error(args ...interface{})                 { l.entry.Error(args...) }
func (l *logrusAdapter) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *logrusAdapter) WithField(field string, value interface{}) Logger {
	return &logrusAdapter{entry: l.entry.WithField(field, value)}
}

func (l *logrusAdapter) WithFields(fields map[string]interface{}) Logger {
	return &logrusAdapter{entry: l.entry.WithFields(fields)}
}

func (l *logrusAdapter) WithError(err error) Logger {
	return &logrusAdapter{entry: l.entry.WithError(err)}
}

func (l *logrusAdapter) IsTraceEnabled() bool { return l.entry.Logger.IsLevelEnabled(logrus.TraceLevel) }
func (l *logrusAdapter) IsDebugEnabled() bool { return l.entry.Logger.IsLevelEnabled(logrus.DebugLevel) }
