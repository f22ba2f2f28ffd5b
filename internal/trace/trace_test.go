package trace

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/vkreplay/internal/core"
)

func encodeTrace(t *testing.T, h *FileHeader, build func(w *Writer)) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, h)
	require.NoError(t, err)
	if build != nil {
		build(w)
	}
	return buf.Bytes()
}

func TestHeaderRoundTrip(t *testing.T) {
	h := NewFileHeader(core.TracerGLFPS, core.TracerVulkan)
	h.UUID = [16]byte{1, 2, 3, 4}
	data := encodeTrace(t, h, nil)
	assert.Len(t, data, FileHeaderSize)

	got, err := ReadHeader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, []core.TracerID{core.TracerGLFPS, core.TracerVulkan}, got.TracerIDs())
}

func TestReadHeaderErrors(t *testing.T) {
	valid := encodeTrace(t, NewFileHeader(core.TracerVulkan), nil)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{
			name: "bad magic",
			mutate: func(b []byte) []byte {
				copy(b, "NOPE")
				return b
			},
			want: core.ErrBadMagic,
		},
		{
			name: "old version",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[4:], MinimumCompatibleVersion-1)
				return b
			},
			want: core.ErrIncompatibleVersion,
		},
		{
			name: "too many tracers",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[32:], core.MaxTracerIDs+1)
				return b
			},
			want: core.ErrMalformedHeader,
		},
		{
			name: "truncated",
			mutate: func(b []byte) []byte {
				return b[:20]
			},
			want: core.ErrMalformedHeader,
		},
		{
			name: "first packet inside header",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint64(b[24:], 8)
				return b
			},
			want: core.ErrMalformedHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(append([]byte(nil), valid...))
			_, err := ReadHeader(bytes.NewReader(data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestReadPacketSequence(t *testing.T) {
	data := encodeTrace(t, NewFileHeader(core.TracerVulkan), func(w *Writer) {
		require.NoError(t, w.WriteMessage(core.MessageInfo, "hello"))
		require.NoError(t, w.WritePacket(core.Header{TracerID: core.TracerVulkan, PacketID: core.PacketBeginAPI + 3}, []byte{9, 8, 7}))
		require.NoError(t, w.WriteMarker(core.PacketAPIBoundary))
	})
	r := bytes.NewReader(data[FileHeaderSize:])

	p, n, err := ReadPacket(r)
	require.NoError(t, err)
	assert.Equal(t, core.KindMessage, p.Kind)
	assert.Equal(t, uint64(0), p.GlobalPacketIndex)
	assert.Equal(t, int64(p.Size), n)
	msg, err := DecodeMessage(p)
	require.NoError(t, err)
	assert.Equal(t, core.Message{Level: core.MessageInfo, Text: "hello"}, msg)

	p, _, err = ReadPacket(r)
	require.NoError(t, err)
	assert.Equal(t, core.KindAPICall, p.Kind)
	assert.Equal(t, core.TracerVulkan, p.TracerID)
	assert.Equal(t, core.PacketBeginAPI+3, p.PacketID)
	assert.Equal(t, uint64(1), p.GlobalPacketIndex)
	assert.Equal(t, []byte{9, 8, 7}, p.Payload)

	p, _, err = ReadPacket(r)
	require.NoError(t, err)
	assert.Equal(t, core.KindMarker, p.Kind)
	assert.Equal(t, core.MarkerAPIBoundary, p.Marker)

	_, _, err = ReadPacket(r)
	assert.Equal(t, io.EOF, err)
}

func TestReadPacketMalformed(t *testing.T) {
	data := encodeTrace(t, NewFileHeader(core.TracerVulkan), func(w *Writer) {
		require.NoError(t, w.WritePacket(core.Header{TracerID: core.TracerVulkan, PacketID: core.PacketBeginAPI}, []byte{1, 2, 3, 4}))
	})
	body := data[FileHeaderSize:]

	t.Run("truncated header", func(t *testing.T) {
		_, _, err := ReadPacket(bytes.NewReader(body[:10]))
		assert.True(t, errors.Is(err, core.ErrMalformedPacket))
	})

	t.Run("truncated body", func(t *testing.T) {
		_, _, err := ReadPacket(bytes.NewReader(body[:len(body)-1]))
		assert.True(t, errors.Is(err, core.ErrMalformedPacket))
	})

	t.Run("size smaller than header", func(t *testing.T) {
		b := append([]byte(nil), body...)
		binary.LittleEndian.PutUint64(b, 10)
		_, _, err := ReadPacket(bytes.NewReader(b))
		assert.True(t, errors.Is(err, core.ErrMalformedPacket))
	})

	t.Run("size beyond the body", func(t *testing.T) {
		b := append([]byte(nil), body...)
		binary.LittleEndian.PutUint64(b, maxPacketSize)

		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)
		_, n, err := ReadPacket(bytes.NewReader(b))
		runtime.ReadMemStats(&after)

		assert.True(t, errors.Is(err, core.ErrMalformedPacket))
		assert.Equal(t, int64(len(b)), n)
		assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
	})

	t.Run("unknown control id", func(t *testing.T) {
		b := append([]byte(nil), body...)
		binary.LittleEndian.PutUint16(b[18:], 7)
		_, _, err := ReadPacket(bytes.NewReader(b))
		assert.True(t, errors.Is(err, core.ErrUnknownPacketID))
	})
}

func TestDecodeMessageMalformed(t *testing.T) {
	p := &core.Packet{Payload: []byte{0, 0, 0, 0, 50, 0, 0, 0, 'x'}}
	_, err := DecodeMessage(p)
	assert.True(t, errors.Is(err, core.ErrMalformedPacket))
}
