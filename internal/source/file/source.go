// Package file implements the packet source over a trace file.
package file

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"

	"firestige.xyz/vkreplay/internal/core"
	"firestige.xyz/vkreplay/internal/trace"
)

// Bookmark is an opaque, restorable position in the packet stream.
type Bookmark struct {
	offset int64
}

// Source yields packets in stream order from a trace and can rewind to a
// recorded bookmark. It is not safe for concurrent use.
type Source struct {
	path     string
	rs       io.ReadSeeker
	closer   io.Closer
	br       *bufio.Reader
	header   *trace.FileHeader
	offset   int64
	read     int64
	bookmark Bookmark
}

// Open opens the trace at path, validates its header and positions the
// source at the first packet.
func Open(path string) (*Source, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand trace path %s: %w", path, err)
	}

	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file %s: %w", expanded, err)
	}

	header, err := trace.ReadHeader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read trace header %s: %w", expanded, err)
	}

	s, err := NewSource(f, header)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.path = expanded
	s.closer = f
	return s, nil
}

// NewSource wraps an already-read trace. rs is positioned at the header's
// first packet offset.
func NewSource(rs io.ReadSeeker, header *trace.FileHeader) (*Source, error) {
	s := &Source{
		rs:     rs,
		header: header,
	}
	if err := s.seek(int64(header.FirstPacketOffset)); err != nil {
		return nil, err
	}
	s.bookmark = Bookmark{offset: s.offset}
	return s, nil
}

// Header returns the trace file header.
func (s *Source) Header() *trace.FileHeader {
	return s.header
}

// Path returns the expanded trace path, empty for sources built with NewSource.
func (s *Source) Path() string {
	return s.path
}

// NextPacket returns the next packet, or nil at end of stream.
func (s *Source) NextPacket() (*core.Packet, error) {
	if s.rs == nil {
		return nil, core.ErrSourceClosed
	}

	p, n, err := trace.ReadPacket(s.br)
	s.offset += n
	s.read += n
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("at offset %d: %w", s.offset-n, err)
	}
	return p, nil
}

// RecordBookmark captures the current read position.
func (s *Source) RecordBookmark() {
	s.bookmark = Bookmark{offset: s.offset}
}

// Bookmark returns the most recently recorded bookmark.
func (s *Source) Bookmark() Bookmark {
	return s.bookmark
}

// SetBookmark rewinds the source so the next packet read is the one the
// bookmark was recorded in front of.
func (s *Source) SetBookmark(b Bookmark) error {
	if s.rs == nil {
		return core.ErrSourceClosed
	}
	if b.offset == s.offset {
		return nil
	}
	return s.seek(b.offset)
}

// BytesRead returns the total number of packet bytes consumed, counting
// re-reads after a bookmark restore.
func (s *Source) BytesRead() int64 {
	return s.read
}

// Close releases the underlying file.
func (s *Source) Close() error {
	s.rs = nil
	s.br = nil
	if s.closer != nil {
		err := s.closer.Close()
		s.closer = nil
		return err
	}
	return nil
}

func (s *Source) seek(offset int64) error {
	if _, err := s.rs.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek trace to %d: %w", offset, err)
	}
	if s.br == nil {
		s.br = bufio.NewReaderSize(s.rs, 64*1024)
	} else {
		s.br.Reset(s.rs)
	}
	s.offset = offset
	return nil
}
