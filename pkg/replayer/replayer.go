// Package replayer defines the contract between the replay engine and the
// per-API replayers, and the factory registry replayers register into.
package replayer

import (
	"firestige.xyz/vkreplay/internal/core"
)

// Replayer re-issues the calls of one captured API against a live context.
type Replayer interface {
	Name() string
	Init(opts map[string]any) error
	// Interpret turns an API call packet into the replayer's own call representation.
	Interpret(p *core.Packet) (any, error)
	// Replay issues an interpreted call. It blocks until the call completes.
	Replay(call any) core.ReplayStatus
	// FrameNumber is the current logical frame; it never decreases except
	// through ResetFrameNumber.
	FrameNumber() int
	ResetFrameNumber(frame int)
	Deinit() error
}

// Factory creates an uninitialized replayer.
type Factory func() Replayer

// TracerInfo describes a tracer id known to the engine.
type TracerInfo struct {
	ID   core.TracerID
	Name string
	// NeedsReplayer is false for tracers that only record metadata.
	NeedsReplayer bool
}

var tracers = map[core.TracerID]TracerInfo{
	core.TracerGLFPS:  {ID: core.TracerGLFPS, Name: "gl-fps", NeedsReplayer: false},
	core.TracerVulkan: {ID: core.TracerVulkan, Name: "vulkan", NeedsReplayer: true},
}

// Tracer returns the static description of id.
func Tracer(id core.TracerID) (TracerInfo, bool) {
	info, ok := tracers[id]
	return info, ok
}
