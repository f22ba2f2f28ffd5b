package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"quiet", "panic"},
		{"errors", "error"},
		{"warnings", "warning"},
		{"full", "info"},
		{"debug", "debug"},
		{"DEBUG", "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseVerbosity(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)

			_, err = logrus.ParseLevel(level)
			assert.NoError(t, err)
		})
	}
}

func TestParseVerbosityInvalid(t *testing.T) {
	for _, input := range []string{"", "verbose", "info"} {
		_, err := ParseVerbosity(input)
		assert.Error(t, err, input)
	}
}

func TestInitWritesPattern(t *testing.T) {
	var buf bytes.Buffer
	err := Init(&LoggerConfig{
		Pattern: "[%level] %msg %field\n",
		Level:   "info",
		Output:  &buf,
	})
	require.NoError(t, err)

	GetLogger().WithField("packet", 7).WithField("tracer", "vulkan").Info("replayed")
	GetLogger().Debug("hidden")

	assert.Equal(t, "[info] replayed packet=7,tracer=vulkan\n", buf.String())
}

func TestInitLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(&LoggerConfig{Level: "error", Output: &buf}))

	l := GetLogger()
	l.Warn("skipped")
	l.WithError(errors.New("boom")).Error("failed")

	out := buf.String()
	assert.NotContains(t, out, "skipped")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "error=boom")
	assert.False(t, l.IsDebugEnabled())
}

func TestInitInvalidLevel(t *testing.T) {
	err := Init(&LoggerConfig{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestInitWithFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "replay.log")
	var buf bytes.Buffer
	require.NoError(t, Init(&LoggerConfig{
		Level:  "debug",
		Output: &buf,
		File:   FileAppenderOpt{Filename: path, MaxSize: 1},
	}))
	t.Cleanup(func() { _ = Close() })

	GetLogger().Debug("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "to file"))
	assert.Contains(t, buf.String(), "to file")
}

func TestFileAppenderRotateOnStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "replay.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))

	w, err := newFileAppender(FileAppenderOpt{Filename: path, RotateOnStart: true})
	require.NoError(t, err)
	_, err = w.Write([]byte("this run\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "this run\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFormatterPattern(t *testing.T) {
	entry := logrus.NewEntry(logrus.New())
	entry.Time = time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)
	entry.Level = logrus.WarnLevel
	entry.Message = "frame skipped"
	entry.Data = logrus.Fields{"frame": 12, "reason": "bad return", "name": "vkCmdDraw"}

	tests := []struct {
		pattern string
		want    string
	}{
		{"%msg%n", "frame skipped\n"},
		{"%time %level", "10:20:30 warning"},
		{"%field", `frame=12,name=vkCmdDraw,reason="bad return"`},
		{"100% %msg", "100% frame skipped"},
		{"%caller", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			out, err := newFormatter(tt.pattern, "15:04:05").Format(entry)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestFormatterCaller(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(&LoggerConfig{Pattern: "%caller %msg", Level: "info", Output: &buf}))

	GetLogger().Info("here")

	assert.Regexp(t, `^log/logger_adapter\.go:\d+ here$`, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestMultiWriterContinuesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	m := NewMultiWriter().Add(failingWriter{}).Add(&buf)

	n, err := m.Write([]byte("line"))
	assert.Equal(t, 4, n)
	assert.Error(t, err)
	assert.Equal(t, "line", buf.String())
	assert.NoError(t, m.Close())
}

func TestMultiWriterClosesOwnedOnly(t *testing.T) {
	borrowed, owned := &closeRecorder{}, &closeRecorder{}
	m := NewMultiWriter().Add(borrowed).AddOwned(owned)

	_, err := m.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, m.Close())

	assert.False(t, borrowed.closed)
	assert.True(t, owned.closed)
	assert.Equal(t, "x", borrowed.String())
}
