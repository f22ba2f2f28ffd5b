package trace

import (
	"encoding/binary"
	"io"
)

// reader decodes little endian values. The first error stops all further
// reads, which then return zero values; Err reports it.
type reader struct {
	r   io.Reader
	tmp [8]byte
	err error
}

func newReader(r io.Reader) *reader {
	return &reader{r: r}
}

func (r *reader) Data(p []byte) {
	if r.err != nil {
		return
	}
	_, r.err = io.ReadFull(r.r, p)
}

func (r *reader) Uint8() uint8 {
	r.Data(r.tmp[:1])
	if r.err != nil {
		return 0
	}
	return r.tmp[0]
}

func (r *reader) Uint16() uint16 {
	r.Data(r.tmp[:2])
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(r.tmp[:2])
}

func (r *reader) Uint32() uint32 {
	r.Data(r.tmp[:4])
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(r.tmp[:4])
}

func (r *reader) Uint64() uint64 {
	r.Data(r.tmp[:8])
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(r.tmp[:8])
}

func (r *reader) Err() error {
	return r.err
}

// writer is the encoding counterpart of reader.
type writer struct {
	w   io.Writer
	tmp [8]byte
	err error
}

func newWriter(w io.Writer) *writer {
	return &writer{w: w}
}

func (w *writer) Data(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	if err != nil {
		w.err = err
	} else if n != len(p) {
		w.err = io.ErrShortWrite
	}
}

func (w *writer) Uint8(v uint8) {
	w.tmp[0] = v
	w.Data(w.tmp[:1])
}

func (w *writer) Uint16(v uint16) {
	binary.LittleEndian.PutUint16(w.tmp[:2], v)
	w.Data(w.tmp[:2])
}

func (w *writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.tmp[:4], v)
	w.Data(w.tmp[:4])
}

func (w *writer) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(w.tmp[:8], v)
	w.Data(w.tmp[:8])
}

func (w *writer) Err() error {
	return w.err
}
