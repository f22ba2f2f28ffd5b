// Package core defines core types with zero external dependencies.
package core

import "fmt"

// TracerID identifies the captured API a packet or replayer belongs to.
type TracerID uint8

const (
	TracerReserved TracerID = 0 // invalid sentinel
	TracerGLFPS    TracerID = 1
	TracerVulkan   TracerID = 2

	// MaxTracerIDs bounds the tracer id range and the header's tracer array.
	MaxTracerIDs = 14
)

// Valid reports whether id is inside the tracer range and not the reserved sentinel.
func (id TracerID) Valid() bool {
	return id != TracerReserved && int(id) < MaxTracerIDs
}

func (id TracerID) String() string {
	switch id {
	case TracerReserved:
		return "reserved"
	case TracerGLFPS:
		return "gl-fps"
	case TracerVulkan:
		return "vulkan"
	default:
		return fmt.Sprintf("tracer-%d", uint8(id))
	}
}

// PacketID identifies the semantics of a packet.
// Values below PacketBeginAPI are control or informational packets.
type PacketID uint16

const (
	PacketMessage          PacketID = 0
	PacketCheckpoint       PacketID = 1
	PacketAPIBoundary      PacketID = 2
	PacketAPIGroupBegin    PacketID = 3
	PacketAPIGroupEnd      PacketID = 4
	PacketTerminateProcess PacketID = 5

	// Ids 6 and 7 carry portability tables and metadata written by newer
	// capture layers. They are not understood here and fail classification.

	// PacketBeginAPI is the first id used by API call packets.
	PacketBeginAPI PacketID = 8
)

// Kind is the decoded variant of a packet.
type Kind uint8

const (
	KindMessage Kind = iota + 1
	KindMarker
	KindAPICall
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindMarker:
		return "marker"
	case KindAPICall:
		return "api-call"
	default:
		return "unknown"
	}
}

// Marker is the sub-kind of a KindMarker packet.
type Marker uint8

const (
	MarkerNone Marker = iota
	MarkerCheckpoint
	MarkerAPIBoundary
	MarkerAPIGroupBegin
	MarkerAPIGroupEnd
	MarkerTerminateProcess
)

func (m Marker) String() string {
	switch m {
	case MarkerCheckpoint:
		return "checkpoint"
	case MarkerAPIBoundary:
		return "api-boundary"
	case MarkerAPIGroupBegin:
		return "api-group-begin"
	case MarkerAPIGroupEnd:
		return "api-group-end"
	case MarkerTerminateProcess:
		return "terminate-process"
	default:
		return "none"
	}
}

// Classify maps a packet id to its kind. Ids below PacketBeginAPI that are not
// recognized control ids are framing errors.
func Classify(id PacketID) (Kind, Marker, error) {
	switch id {
	case PacketMessage:
		return KindMessage, MarkerNone, nil
	case PacketCheckpoint:
		return KindMarker, MarkerCheckpoint, nil
	case PacketAPIBoundary:
		return KindMarker, MarkerAPIBoundary, nil
	case PacketAPIGroupBegin:
		return KindMarker, MarkerAPIGroupBegin, nil
	case PacketAPIGroupEnd:
		return KindMarker, MarkerAPIGroupEnd, nil
	case PacketTerminateProcess:
		return KindMarker, MarkerTerminateProcess, nil
	}
	if id >= PacketBeginAPI {
		return KindAPICall, MarkerNone, nil
	}
	return 0, MarkerNone, fmt.Errorf("%w: %d", ErrUnknownPacketID, id)
}
