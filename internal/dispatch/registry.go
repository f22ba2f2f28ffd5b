// Package dispatch holds the live replayers of a run and routes API call
// packets to them.
package dispatch

import (
	"errors"
	"fmt"

	"firestige.xyz/vkreplay/internal/core"
	"firestige.xyz/vkreplay/internal/log"
	"firestige.xyz/vkreplay/pkg/replayer"
)

// Registry maps tracer ids to at most one live replayer. Empty slots are
// valid: packets for them are skipped.
type Registry struct {
	replayers [core.MaxTracerIDs]replayer.Replayer
	warned    [core.MaxTracerIDs]bool
}

// Result is the outcome of dispatching one packet.
type Result struct {
	Status core.ReplayStatus
	// Skipped is set when no replayer is registered for the tracer id.
	Skipped bool
	// Frame is the replayer's frame number after a successful replay.
	Frame int
}

// Build instantiates and initializes a replayer for every tracer in ids
// that needs one. opts holds per-replayer options keyed by replayer name.
// On failure every replayer built so far is deinitialized.
func Build(ids []core.TracerID, opts map[string]map[string]any) (*Registry, error) {
	r := &Registry{}
	for _, id := range ids {
		if !id.Valid() {
			r.Close()
			return nil, fmt.Errorf("%w: %d in trace header", core.ErrInvalidTracerID, id)
		}
		info, known := replayer.Tracer(id)
		if known && !info.NeedsReplayer {
			continue
		}
		if r.replayers[id] != nil {
			continue
		}

		rp, err := replayer.New(id)
		if err != nil {
			r.Close()
			return nil, err
		}
		if err := rp.Init(opts[rp.Name()]); err != nil {
			r.Close()
			return nil, fmt.Errorf("%w: %s: %v", core.ErrReplayerInit, rp.Name(), err)
		}
		r.replayers[id] = rp
		log.GetLogger().WithField("tracer", id).WithField("replayer", rp.Name()).Debug("Replayer initialized")
	}
	return r, nil
}

// Set installs rp for id, replacing any existing replayer.
func (r *Registry) Set(id core.TracerID, rp replayer.Replayer) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %d", core.ErrInvalidTracerID, id)
	}
	r.replayers[id] = rp
	return nil
}

// Get returns the replayer for id, or nil.
func (r *Registry) Get(id core.TracerID) replayer.Replayer {
	if int(id) >= len(r.replayers) {
		return nil
	}
	return r.replayers[id]
}

// Each calls fn for every registered replayer in tracer id order.
func (r *Registry) Each(fn func(id core.TracerID, rp replayer.Replayer)) {
	for i, rp := range r.replayers {
		if rp != nil {
			fn(core.TracerID(i), rp)
		}
	}
}

// Len returns the number of registered replayers.
func (r *Registry) Len() int {
	n := 0
	r.Each(func(core.TracerID, replayer.Replayer) { n++ })
	return n
}

// Dispatch routes an API call packet to its replayer. The error return is
// reserved for framing errors; replay failures are reported in Result.Status.
func (r *Registry) Dispatch(p *core.Packet) (Result, error) {
	if !p.TracerID.Valid() {
		return Result{Status: core.ReplayError}, fmt.Errorf("%w: %d in packet %d",
			core.ErrInvalidTracerID, p.TracerID, p.GlobalPacketIndex)
	}

	rp := r.replayers[p.TracerID]
	if rp == nil {
		r.warnMissing(p)
		return Result{Status: core.ReplaySuccess, Skipped: true}, nil
	}

	call, err := rp.Interpret(p)
	if err != nil {
		status := core.ReplayInvalidParams
		if errors.Is(err, core.ErrUnknownEntryPoint) {
			status = core.ReplayInvalidID
		}
		log.GetLogger().WithError(err).
			WithField("packet", p.GlobalPacketIndex).
			WithField("replayer", rp.Name()).
			Error("Failed to interpret packet")
		return Result{Status: status}, nil
	}

	status := rp.Replay(call)
	if status != core.ReplaySuccess {
		return Result{Status: status}, nil
	}
	return Result{Status: status, Frame: rp.FrameNumber()}, nil
}

func (r *Registry) warnMissing(p *core.Packet) {
	l := log.GetLogger().WithError(core.ErrNoReplayer).
		WithField("tracer", p.TracerID).
		WithField("packet", p.GlobalPacketIndex)
	if r.warned[p.TracerID] {
		l.Debug("Skipping packet")
		return
	}
	r.warned[p.TracerID] = true
	l.Warn("Skipping packets of tracer")
}

// ResetFrames resets the frame counter of every replayer to frame.
func (r *Registry) ResetFrames(frame int) {
	r.Each(func(_ core.TracerID, rp replayer.Replayer) {
		rp.ResetFrameNumber(frame)
	})
}

// Close deinitializes and removes every replayer.
func (r *Registry) Close() error {
	var errs []error
	for i, rp := range r.replayers {
		if rp == nil {
			continue
		}
		if err := rp.Deinit(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rp.Name(), err))
		}
		r.replayers[i] = nil
	}
	return errors.Join(errs...)
}
