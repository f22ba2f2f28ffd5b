// Package trace implements the binary trace file format: the file header,
// packet framing and message payloads.
package trace

import (
	"firestige.xyz/vkreplay/internal/core"
)

const (
	// Magic is "VKTR" read as a little endian uint32.
	Magic uint32 = 0x52544b56

	CurrentVersion           uint32 = 6
	MinimumCompatibleVersion uint32 = 5

	// FileHeaderSize is the encoded size of FileHeader in bytes.
	FileHeaderSize = 4 + 4 + 16 + 8 + 4 + core.MaxTracerIDs*4

	// maxPacketSize guards against absurd size fields in corrupt traces.
	maxPacketSize = 1 << 30
)

// TracerEntry is one slot of the header's tracer array.
type TracerEntry struct {
	ID      core.TracerID
	Is64Bit bool
}

// FileHeader is the fixed header at the start of every trace file.
type FileHeader struct {
	Version           uint32
	UUID              [16]byte
	FirstPacketOffset uint64
	TracerCount       uint32
	Tracers           [core.MaxTracerIDs]TracerEntry
}

// NewFileHeader returns a current-version header listing the given tracers.
func NewFileHeader(tracers ...core.TracerID) *FileHeader {
	h := &FileHeader{
		Version:           CurrentVersion,
		FirstPacketOffset: FileHeaderSize,
		TracerCount:       uint32(len(tracers)),
	}
	for i, id := range tracers {
		if i >= core.MaxTracerIDs {
			break
		}
		h.Tracers[i] = TracerEntry{ID: id, Is64Bit: true}
	}
	return h
}

// TracerIDs returns the non-reserved tracer ids listed in the header, in order.
func (h *FileHeader) TracerIDs() []core.TracerID {
	ids := make([]core.TracerID, 0, h.TracerCount)
	for i := 0; i < int(h.TracerCount) && i < core.MaxTracerIDs; i++ {
		if h.Tracers[i].ID != core.TracerReserved {
			ids = append(ids, h.Tracers[i].ID)
		}
	}
	return ids
}
