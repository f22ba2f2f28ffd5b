// Package sequencer implements the replay loop: it drains the packet source,
// dispatches API calls to replayers and loops over the trace or a frame range.
package sequencer

import (
	"context"
	"fmt"
	"time"

	"firestige.xyz/vkreplay/internal/core"
	"firestige.xyz/vkreplay/internal/dispatch"
	"firestige.xyz/vkreplay/internal/log"
	"firestige.xyz/vkreplay/internal/source/file"
	"firestige.xyz/vkreplay/internal/trace"
)

// NoFrame marks an unset loop frame and the "no frame observed" state.
const NoFrame = -1

// Source is the packet source the sequencer reads from.
type Source interface {
	NextPacket() (*core.Packet, error)
	RecordBookmark()
	Bookmark() file.Bookmark
	SetBookmark(file.Bookmark) error
}

// Dispatcher routes API call packets to replayers.
type Dispatcher interface {
	Dispatch(p *core.Packet) (dispatch.Result, error)
	ResetFrames(frame int)
}

// Settings control looping.
type Settings struct {
	NumLoops       int
	LoopStartFrame int
	LoopEndFrame   int
}

// State is the sequencer's run state.
type State int

const (
	StateRunning State = iota
	StateLoopRestart
	StateDone
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateLoopRestart:
		return "loop-restart"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

type Sequencer struct {
	src        Source
	dispatcher Dispatcher
	settings   Settings
	observer   Observer
	log        log.Logger

	state             State
	prevFrame         int
	loopStartCaptured bool
	stats             Stats
	start             time.Time
}

// Option customizes a Sequencer.
type Option func(*Sequencer)

// WithObserver reports run progress to o.
func WithObserver(o Observer) Option {
	return func(s *Sequencer) {
		s.observer = o
	}
}

func New(src Source, d Dispatcher, settings Settings, opts ...Option) (*Sequencer, error) {
	if settings.NumLoops < 1 {
		return nil, fmt.Errorf("%w: loop count %d must be at least 1", core.ErrConfigInvalid, settings.NumLoops)
	}
	if settings.LoopStartFrame < NoFrame || settings.LoopEndFrame < NoFrame {
		return nil, fmt.Errorf("%w: negative loop frame", core.ErrConfigInvalid)
	}
	if settings.LoopEndFrame != NoFrame && settings.LoopEndFrame <= settings.LoopStartFrame {
		return nil, fmt.Errorf("%w: loop end frame %d must be after loop start frame %d",
			core.ErrConfigInvalid, settings.LoopEndFrame, settings.LoopStartFrame)
	}

	s := &Sequencer{
		src:        src,
		dispatcher: d,
		settings:   settings,
		observer:   nopObserver{},
		log:        log.GetLogger().WithField("module", "sequencer"),
		state:      StateRunning,
		prevFrame:  NoFrame,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// State returns the current run state.
func (s *Sequencer) State() State {
	return s.state
}

// Run replays the trace until the loop budget is spent. Any replay failure,
// framing error or ctx cancellation stops the run immediately.
func (s *Sequencer) Run(ctx context.Context) (Stats, error) {
	s.start = time.Now()
	remaining := s.settings.NumLoops
	// Frame 0 starts at the first packet, which the initial bookmark already points at.
	s.loopStartCaptured = s.settings.LoopStartFrame <= 0
	s.prevFrame = NoFrame
	s.src.RecordBookmark()
	s.setState(StateRunning)

	for s.state != StateDone {
		if err := ctx.Err(); err != nil {
			return s.stop(fmt.Errorf("replay interrupted: %w", err))
		}

		p, err := s.src.NextPacket()
		if err != nil {
			return s.stop(err)
		}

		iterationDone := p == nil
		if p != nil {
			s.stats.PacketsRead++
			s.observer.PacketRead(p)
			endFrame, err := s.handle(p)
			if err != nil {
				return s.stop(err)
			}
			iterationDone = endFrame
		}
		if !iterationDone {
			continue
		}

		s.stats.Iterations++
		remaining--
		s.observer.IterationDone(s.stats.Iterations)
		s.log.WithField("iteration", s.stats.Iterations).WithField("remaining", remaining).Info("Loop iteration finished")
		if remaining == 0 {
			s.setState(StateDone)
			break
		}

		s.setState(StateLoopRestart)
		if err := s.restart(); err != nil {
			return s.stop(err)
		}
		s.setState(StateRunning)
	}

	s.stats.Duration = time.Since(s.start)
	return s.stats, nil
}

// handle processes one packet and reports whether it ended the iteration.
func (s *Sequencer) handle(p *core.Packet) (bool, error) {
	switch p.Kind {
	case core.KindMessage:
		s.stats.Messages++
		return false, s.logMessage(p)

	case core.KindMarker:
		// Markers are acknowledged only; none of them affect looping.
		s.stats.Markers++
		if s.log.IsTraceEnabled() {
			s.log.WithField("marker", p.Marker).WithField("packet", p.GlobalPacketIndex).Trace("Marker packet")
		}
		return false, nil

	case core.KindAPICall:
		return s.dispatch(p)

	default:
		return false, fmt.Errorf("%w: packet %d has id %d", core.ErrUnknownPacketID, p.GlobalPacketIndex, p.PacketID)
	}
}

func (s *Sequencer) dispatch(p *core.Packet) (bool, error) {
	res, err := s.dispatcher.Dispatch(p)
	if err != nil {
		return false, err
	}
	s.observer.Dispatched(p, res)
	if res.Skipped {
		s.stats.Skipped++
		return false, nil
	}
	if res.Status != core.ReplaySuccess {
		return false, fmt.Errorf("packet %d (%s, id %d): %w",
			p.GlobalPacketIndex, p.TracerID, p.PacketID, res.Status.Err())
	}
	s.stats.APICalls++

	if res.Frame == s.prevFrame {
		return false, nil
	}
	s.prevFrame = res.Frame
	s.stats.LastFrame = res.Frame

	if !s.loopStartCaptured && res.Frame == s.settings.LoopStartFrame {
		s.src.RecordBookmark()
		s.loopStartCaptured = true
		s.stats.LoopStartCaptured = true
		s.log.WithField("frame", res.Frame).WithField("packet", p.GlobalPacketIndex).Info("Loop start bookmark recorded")
	}
	if s.settings.LoopEndFrame != NoFrame && res.Frame == s.settings.LoopEndFrame {
		s.log.WithField("frame", res.Frame).WithField("packet", p.GlobalPacketIndex).Debug("Loop end frame reached")
		return true, nil
	}
	return false, nil
}

func (s *Sequencer) restart() error {
	if err := s.src.SetBookmark(s.src.Bookmark()); err != nil {
		return err
	}
	s.prevFrame = NoFrame

	frame := 0
	if s.loopStartCaptured && s.settings.LoopStartFrame > 0 {
		frame = s.settings.LoopStartFrame
	}
	s.dispatcher.ResetFrames(frame)
	return nil
}

func (s *Sequencer) logMessage(p *core.Packet) error {
	msg, err := trace.DecodeMessage(p)
	if err != nil {
		return err
	}
	l := s.log.WithField("packet", p.GlobalPacketIndex).WithField("tracer", p.TracerID)
	switch msg.Level {
	case core.MessageError:
		l.Error(msg.Text)
	case core.MessageWarning:
		l.Warn(msg.Text)
	case core.MessageInfo:
		l.Info(msg.Text)
	default:
		l.Debug(msg.Text)
	}
	return nil
}

func (s *Sequencer) setState(state State) {
	if s.state != state {
		s.log.WithField("from", s.state).WithField("to", state).Debug("State change")
	}
	s.state = state
}

func (s *Sequencer) stop(err error) (Stats, error) {
	s.setState(StateDone)
	s.stats.Duration = time.Since(s.start)
	return s.stats, err
}
