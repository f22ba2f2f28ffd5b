package trace

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"firestige.xyz/vkreplay/internal/core"
)

// ReadHeader decodes the file header. Traces older than
// MinimumCompatibleVersion are rejected.
func ReadHeader(r io.Reader) (*FileHeader, error) {
	br := newReader(r)

	if magic := br.Uint32(); br.Err() == nil && magic != Magic {
		return nil, fmt.Errorf("%w: magic 0x%08x", core.ErrBadMagic, magic)
	}

	h := &FileHeader{}
	h.Version = br.Uint32()
	br.Data(h.UUID[:])
	h.FirstPacketOffset = br.Uint64()
	h.TracerCount = br.Uint32()
	for i := range h.Tracers {
		h.Tracers[i].ID = core.TracerID(br.Uint8())
		h.Tracers[i].Is64Bit = br.Uint8() != 0
		br.Uint16() // padding
	}
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedHeader, err)
	}

	if h.Version < MinimumCompatibleVersion {
		return nil, fmt.Errorf("%w: trace version %d, minimum compatible version is %d",
			core.ErrIncompatibleVersion, h.Version, MinimumCompatibleVersion)
	}
	if h.TracerCount > core.MaxTracerIDs {
		return nil, fmt.Errorf("%w: tracer count %d exceeds %d",
			core.ErrMalformedHeader, h.TracerCount, core.MaxTracerIDs)
	}
	if h.FirstPacketOffset < FileHeaderSize {
		return nil, fmt.Errorf("%w: first packet offset %d inside header",
			core.ErrMalformedHeader, h.FirstPacketOffset)
	}
	return h, nil
}

// ReadPacket reads one packet. It returns io.EOF only when the stream ends
// exactly at a packet boundary; anything else short is ErrMalformedPacket.
// The returned count is the number of bytes consumed.
func ReadPacket(r io.Reader) (*core.Packet, int64, error) {
	var raw [core.PacketHeaderSize]byte
	n, err := io.ReadFull(r, raw[:])
	if err != nil {
		if errors.Is(err, io.EOF) && n == 0 {
			return nil, 0, io.EOF
		}
		return nil, int64(n), fmt.Errorf("%w: truncated header after %d bytes", core.ErrMalformedPacket, n)
	}

	hdr := decodePacketHeader(raw[:])
	if hdr.Size < core.PacketHeaderSize || hdr.Size > maxPacketSize {
		return nil, int64(n), fmt.Errorf("%w: packet %d has size %d",
			core.ErrMalformedPacket, hdr.GlobalPacketIndex, hdr.Size)
	}

	kind, marker, err := core.Classify(hdr.PacketID)
	if err != nil {
		return nil, int64(n), fmt.Errorf("packet %d: %w", hdr.GlobalPacketIndex, err)
	}

	// The size field is untrusted; the buffer grows only as body bytes arrive.
	want := int64(hdr.Size - core.PacketHeaderSize)
	payload, err := io.ReadAll(io.LimitReader(r, want))
	m := len(payload)
	if err != nil {
		return nil, int64(n + m), fmt.Errorf("%w: packet %d body: %v", core.ErrMalformedPacket, hdr.GlobalPacketIndex, err)
	}
	if int64(m) < want {
		return nil, int64(n + m), fmt.Errorf("%w: packet %d body truncated after %d of %d bytes",
			core.ErrMalformedPacket, hdr.GlobalPacketIndex, m, want)
	}

	return &core.Packet{
		Header:  hdr,
		Kind:    kind,
		Marker:  marker,
		Payload: payload,
	}, int64(n + m), nil
}

func decodePacketHeader(raw []byte) core.Header {
	br := newReader(bytes.NewReader(raw))
	var h core.Header
	h.Size = br.Uint64()
	h.GlobalPacketIndex = br.Uint64()
	h.TracerID = core.TracerID(br.Uint8())
	br.Uint8() // padding
	h.PacketID = core.PacketID(br.Uint16())
	h.ThreadID = br.Uint32()
	h.TraceBeginTime = br.Uint64()
	h.EntryBeginTime = br.Uint64()
	h.EntryEndTime = br.Uint64()
	h.TraceEndTime = br.Uint64()
	h.NextBuffersOffset = br.Uint64()
	return h
}

// DecodeMessage decodes the payload of a KindMessage packet.
func DecodeMessage(p *core.Packet) (core.Message, error) {
	br := newReader(bytes.NewReader(p.Payload))
	level := core.MessageLevel(br.Uint32())
	length := br.Uint32()
	if br.Err() != nil || int(length) > len(p.Payload)-8 {
		return core.Message{}, fmt.Errorf("%w: message packet %d", core.ErrMalformedPacket, p.GlobalPacketIndex)
	}
	text := make([]byte, length)
	br.Data(text)
	return core.Message{Level: level, Text: string(text)}, nil
}
