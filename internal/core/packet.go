// Package core defines core data structures with zero external dependencies.
package core

// PacketHeaderSize is the encoded size of Header in bytes.
const PacketHeaderSize = 64

// Header is the fixed-size prefix of every packet in a trace stream.
type Header struct {
	Size              uint64 // Total packet size including this header
	GlobalPacketIndex uint64 // Sequence position, diagnostics only
	TracerID          TracerID
	PacketID          PacketID
	ThreadID          uint32
	TraceBeginTime    uint64
	EntryBeginTime    uint64
	EntryEndTime      uint64
	TraceEndTime      uint64
	NextBuffersOffset uint64
}

// Packet is one immutable record read from the trace stream.
type Packet struct {
	Header
	Kind    Kind
	Marker  Marker // Only meaningful for KindMarker
	Payload []byte
}

// MessageLevel is the severity carried by a message packet.
type MessageLevel uint32

const (
	MessageError MessageLevel = iota
	MessageWarning
	MessageInfo
	MessageDebug
)

// Message is the decoded payload of a KindMessage packet.
type Message struct {
	Level MessageLevel
	Text  string
}
