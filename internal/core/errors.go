// Package core defines sentinel errors.
package core

import "errors"

// Sentinel errors shared by the trace reader, the replayer registry and the sequencer.
var (
	// Trace file errors
	ErrBadMagic            = errors.New("vkreplay: not a trace file")
	ErrIncompatibleVersion = errors.New("vkreplay: incompatible trace file version")
	ErrMalformedHeader     = errors.New("vkreplay: malformed trace file header")
	ErrMalformedPacket     = errors.New("vkreplay: malformed packet")
	ErrSourceClosed        = errors.New("vkreplay: packet source closed")

	// Framing errors
	ErrUnknownPacketID = errors.New("vkreplay: unknown packet id")
	ErrInvalidTracerID = errors.New("vkreplay: invalid tracer id")

	// Replayer errors
	ErrNoFactory         = errors.New("vkreplay: no replayer factory for tracer id")
	ErrReplayerInit      = errors.New("vkreplay: replayer init failed")
	ErrNoReplayer        = errors.New("vkreplay: no replayer registered for tracer id")
	ErrReplayFailed      = errors.New("vkreplay: replay failed")
	ErrUnknownEntryPoint = errors.New("vkreplay: unknown entrypoint")

	// Configuration errors
	ErrConfigInvalid = errors.New("vkreplay: invalid configuration")
)
