package trace

import (
	"encoding/binary"
	"fmt"
	"io"

	"firestige.xyz/vkreplay/internal/core"
)

// Writer encodes a trace stream. It assigns global packet indexes in order.
type Writer struct {
	w    *writer
	next uint64
}

// NewWriter writes h to w and returns a Writer positioned at the first packet.
func NewWriter(w io.Writer, h *FileHeader) (*Writer, error) {
	bw := newWriter(w)
	bw.Uint32(Magic)
	bw.Uint32(h.Version)
	bw.Data(h.UUID[:])
	bw.Uint64(h.FirstPacketOffset)
	bw.Uint32(h.TracerCount)
	for _, t := range h.Tracers {
		bw.Uint8(uint8(t.ID))
		if t.Is64Bit {
			bw.Uint8(1)
		} else {
			bw.Uint8(0)
		}
		bw.Uint16(0)
	}
	if pad := int64(h.FirstPacketOffset) - FileHeaderSize; pad > 0 {
		bw.Data(make([]byte, pad))
	}
	if err := bw.Err(); err != nil {
		return nil, fmt.Errorf("failed to write trace header: %w", err)
	}
	return &Writer{w: bw}, nil
}

// WritePacket appends a packet. Size and GlobalPacketIndex are filled in.
func (w *Writer) WritePacket(hdr core.Header, payload []byte) error {
	hdr.Size = uint64(core.PacketHeaderSize + len(payload))
	hdr.GlobalPacketIndex = w.next
	w.next++

	bw := w.w
	bw.Uint64(hdr.Size)
	bw.Uint64(hdr.GlobalPacketIndex)
	bw.Uint8(uint8(hdr.TracerID))
	bw.Uint8(0)
	bw.Uint16(uint16(hdr.PacketID))
	bw.Uint32(hdr.ThreadID)
	bw.Uint64(hdr.TraceBeginTime)
	bw.Uint64(hdr.EntryBeginTime)
	bw.Uint64(hdr.EntryEndTime)
	bw.Uint64(hdr.TraceEndTime)
	bw.Uint64(hdr.NextBuffersOffset)
	bw.Data(payload)
	if err := bw.Err(); err != nil {
		return fmt.Errorf("failed to write packet %d: %w", hdr.GlobalPacketIndex, err)
	}
	return nil
}

// WriteMessage appends a message packet.
func (w *Writer) WriteMessage(level core.MessageLevel, text string) error {
	return w.WritePacket(core.Header{PacketID: core.PacketMessage}, EncodeMessage(level, text))
}

// WriteMarker appends a control marker packet.
func (w *Writer) WriteMarker(id core.PacketID) error {
	return w.WritePacket(core.Header{PacketID: id}, nil)
}

// EncodeMessage builds a message packet payload.
func EncodeMessage(level core.MessageLevel, text string) []byte {
	buf := make([]byte, 0, 8+len(text))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(level))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(text)))
	return append(buf, text...)
}
