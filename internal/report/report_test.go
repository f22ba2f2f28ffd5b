package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/vkreplay/internal/sequencer"
)

func sampleSummary() *Summary {
	s := &Summary{
		TraceFile:    "/traces/game.vktrace",
		TraceVersion: 6,
		Tracers:      []string{"gl-fps", "vulkan"},
		BytesRead:    3 * 1000 * 1000,
		StartedAt:    time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
	}
	s.SetLoop(sequencer.Settings{NumLoops: 2, LoopStartFrame: 1, LoopEndFrame: 3})
	return s
}

func TestWriteAndRead(t *testing.T) {
	s := sampleSummary()
	s.SetResult(sequencer.Stats{Iterations: 2, APICalls: 1234, LastFrame: 3, Duration: 1500 * time.Millisecond}, nil)

	path := filepath.Join(t.TempDir(), "out", "summary.yaml")
	require.NoError(t, Write(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "loop_start_frame: 1")
	assert.Contains(t, string(data), "api_calls: 1234")
	assert.Contains(t, string(data), "duration: 1.5s")
	assert.NotContains(t, string(data), "error:")

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestSetResultFailure(t *testing.T) {
	s := sampleSummary()
	s.SetResult(sequencer.Stats{APICalls: 5}, errors.New("packet 5: replay failed: bad-return"))

	assert.False(t, s.Success)
	assert.Equal(t, "packet 5: replay failed: bad-return", s.Error)
	assert.Contains(t, s.Line(), "replay failed")
}

func TestLine(t *testing.T) {
	s := sampleSummary()
	s.SetResult(sequencer.Stats{Iterations: 2, APICalls: 1234567, LastFrame: 42, Duration: 2 * time.Second}, nil)

	line := s.Line()
	assert.Contains(t, line, "replay completed")
	assert.Contains(t, line, "1,234,567 API calls")
	assert.Contains(t, line, "2 iteration(s)")
	assert.Contains(t, line, "last frame 42")
	assert.Contains(t, line, "3.0 MB read")
	assert.Contains(t, line, "in 2s")
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
