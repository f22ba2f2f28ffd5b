package sequencer

import (
	"time"

	"firestige.xyz/vkreplay/internal/core"
	"firestige.xyz/vkreplay/internal/dispatch"
)

// Stats summarizes a run.
type Stats struct {
	Iterations        int           `yaml:"iterations"`
	PacketsRead       int           `yaml:"packets_read"`
	APICalls          int           `yaml:"api_calls"`
	Skipped           int           `yaml:"skipped"`
	Markers           int           `yaml:"markers"`
	Messages          int           `yaml:"messages"`
	LastFrame         int           `yaml:"last_frame"`
	LoopStartCaptured bool          `yaml:"loop_start_captured"`
	Duration          time.Duration `yaml:"duration"`
}

// Observer receives run progress. Calls happen on the replay goroutine.
type Observer interface {
	PacketRead(p *core.Packet)
	Dispatched(p *core.Packet, res dispatch.Result)
	IterationDone(n int)
}

type nopObserver struct{}

func (nopObserver) PacketRead(*core.Packet)                  {}
func (nopObserver) Dispatched(*core.Packet, dispatch.Result) {}
func (nopObserver) IterationDone(int)                        {}
