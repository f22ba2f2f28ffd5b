// Package report writes the replay run summary.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"firestige.xyz/vkreplay/internal/sequencer"
)

// Loop mirrors sequencer.Settings with stable YAML names.
type Loop struct {
	NumLoops       int `yaml:"num_loops"`
	LoopStartFrame int `yaml:"loop_start_frame"`
	LoopEndFrame   int `yaml:"loop_end_frame"`
}

// Summary is the outcome of a replay run.
type Summary struct {
	TraceFile    string          `yaml:"trace_file"`
	TraceVersion uint32          `yaml:"trace_version"`
	Tracers      []string        `yaml:"tracers"`
	BytesRead    int64           `yaml:"bytes_read"`
	StartedAt    time.Time       `yaml:"started_at"`
	Loop         Loop            `yaml:"loop"`
	Stats        sequencer.Stats `yaml:"stats"`
	Success      bool            `yaml:"success"`
	Error        string          `yaml:"error,omitempty"`
}

// SetLoop records the loop settings the run used.
func (s *Summary) SetLoop(l sequencer.Settings) {
	s.Loop = Loop{
		NumLoops:       l.NumLoops,
		LoopStartFrame: l.LoopStartFrame,
		LoopEndFrame:   l.LoopEndFrame,
	}
}

// SetResult records the run outcome.
func (s *Summary) SetResult(stats sequencer.Stats, err error) {
	s.Stats = stats
	s.Success = err == nil
	if err != nil {
		s.Error = err.Error()
	}
}

// Line is the one-line human readable summary.
func (s *Summary) Line() string {
	status := "completed"
	if !s.Success {
		status = "failed"
	}
	return fmt.Sprintf("replay %s: %s API calls, %d iteration(s), last frame %d, %s read in %s",
		status,
		humanize.Comma(int64(s.Stats.APICalls)),
		s.Stats.Iterations,
		s.Stats.LastFrame,
		humanize.Bytes(uint64(s.BytesRead)),
		s.Stats.Duration.Round(time.Millisecond),
	)
}

// Write stores the summary as YAML at path, creating parent directories.
func Write(path string, s *Summary) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to expand report path %s: %w", path, err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(expanded, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", expanded, err)
	}
	return nil
}

// Read loads a summary written by Write.
func Read(path string) (*Summary, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand report path %s: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", expanded, err)
	}
	var s Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", expanded, err)
	}
	return &s, nil
}
