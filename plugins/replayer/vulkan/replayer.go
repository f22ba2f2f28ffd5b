// Package vulkan implements the built-in replayer for the Vulkan tracer.
package vulkan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"

	"firestige.xyz/vkreplay/internal/core"
	"firestige.xyz/vkreplay/internal/log"
	"firestige.xyz/vkreplay/pkg/replayer"
)

const Name = "vulkan"

// Options are decoded from the replayer's section of the configuration.
type Options struct {
	IgnoreReturnMismatch bool   `mapstructure:"ignore_return_mismatch"`
	Executor             string `mapstructure:"executor"`
}

type Replayer struct {
	opts        Options
	exec        Executor
	frame       int
	screenshots map[int]bool
	log         log.Logger
}

// Option customizes a Replayer before Init.
type Option func(*Replayer)

// WithExecutor overrides the executor selected by the options.
func WithExecutor(e Executor) Option {
	return func(r *Replayer) {
		r.exec = e
	}
}

func NewReplayer(opts ...Option) *Replayer {
	r := &Replayer{log: log.GetLogger().WithField("replayer", Name)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Factory is registered for core.TracerVulkan.
func Factory() replayer.Replayer {
	return NewReplayer()
}

func (r *Replayer) Name() string {
	return Name
}

func (r *Replayer) Init(opts map[string]any) error {
	if err := mapstructure.Decode(opts, &r.opts); err != nil {
		return fmt.Errorf("invalid %s options: %w", Name, err)
	}
	if r.exec == nil {
		exec, err := newExecutor(r.opts.Executor)
		if err != nil {
			return err
		}
		r.exec = exec
	}

	frames, err := core.ParseFrameList(os.Getenv(core.ScreenshotEnv))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", core.ScreenshotEnv, err)
	}
	r.screenshots = make(map[int]bool, len(frames))
	for _, f := range frames {
		r.screenshots[f] = true
	}

	r.log = log.GetLogger().WithField("replayer", Name)
	r.frame = 0
	return nil
}

func (r *Replayer) Interpret(p *core.Packet) (any, error) {
	ep, err := LookupEntryPoint(p.PacketID)
	if err != nil {
		return nil, err
	}
	if len(p.Payload) < 4 {
		return nil, fmt.Errorf("%s packet %d: payload of %d bytes has no return value",
			ep.Name, p.GlobalPacketIndex, len(p.Payload))
	}
	return &Call{
		EntryPoint:  ep,
		PacketIndex: p.GlobalPacketIndex,
		Recorded:    Result(int32(binary.LittleEndian.Uint32(p.Payload))),
		Params:      p.Payload[4:],
	}, nil
}

func (r *Replayer) Replay(v any) core.ReplayStatus {
	call, ok := v.(*Call)
	if !ok {
		return core.ReplayError
	}

	got, err := r.exec.Execute(call)
	if err != nil {
		r.log.WithError(err).WithField("call", call.Name).WithField("packet", call.PacketIndex).Error("Call failed")
		if errors.Is(err, ErrValidation) {
			return core.ReplayValidationError
		}
		return core.ReplayCallError
	}
	if got != call.Recorded {
		l := r.log.WithField("call", call.Name).
			WithField("packet", call.PacketIndex).
			WithField("recorded", call.Recorded).
			WithField("replayed", got)
		if !r.opts.IgnoreReturnMismatch {
			l.Error("Return value differs from trace")
			return core.ReplayBadReturn
		}
		l.Warn("Return value differs from trace")
	}

	if call.Present {
		if r.screenshots[r.frame] {
			r.log.WithField("frame", r.frame).Info("Screenshot requested")
		}
		r.frame++
		if r.log.IsDebugEnabled() {
			r.log.WithField("frame", r.frame).Debug("Frame presented")
		}
	}
	return core.ReplaySuccess
}

func (r *Replayer) FrameNumber() int {
	return r.frame
}

func (r *Replayer) ResetFrameNumber(frame int) {
	r.frame = frame
}

func (r *Replayer) Deinit() error {
	r.exec = nil
	return nil
}

// EncodeCall builds an API call packet payload.
func EncodeCall(recorded Result, params []byte) []byte {
	buf := binary.LittleEndian.AppendUint32(make([]byte, 0, 4+len(params)), uint32(recorded))
	return append(buf, params...)
}
