package file

import (
	"firestige.xyz/vkreplay/internal/core"
)

// Stats summarizes the packets of a trace.
type Stats struct {
	Packets   int
	Messages  int
	Markers   map[core.Marker]int
	APICalls  map[core.TracerID]int
	Bytes     int64
	LastIndex uint64
}

// Scan reads s from its current position to end of stream and counts packets.
// The source is left at end of stream.
func Scan(s *Source) (*Stats, error) {
	st := &Stats{
		Markers:  make(map[core.Marker]int),
		APICalls: make(map[core.TracerID]int),
	}
	start := s.BytesRead()
	for {
		p, err := s.NextPacket()
		if err != nil {
			return st, err
		}
		if p == nil {
			break
		}
		st.Packets++
		st.LastIndex = p.GlobalPacketIndex
		switch p.Kind {
		case core.KindMessage:
			st.Messages++
		case core.KindMarker:
			st.Markers[p.Marker]++
		case core.KindAPICall:
			st.APICalls[p.TracerID]++
		}
	}
	st.Bytes = s.BytesRead() - start
	return st, nil
}
