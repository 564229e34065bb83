package outseg

import (
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/merr"
)

// EventListWriteFunc receives one flushed event list as its packed words
// plus the byte count, and may abort the send by returning an error.
type EventListWriteFunc func(words []uint32, byteCount int) error

// UMPSegmenter packs a stream of whole UMPs into event-list-sized
// containers (CoreMIDI event lists, Windows MIDI Services, PipeWire/JACK
// UMP buffers), flushing whenever the next whole UMP would overflow the
// configured MaxListBytes, per spec.md §4.4.
type UMPSegmenter struct {
	MaxListBytes int

	current []uint32
}

// Write appends ump to the current event list, flushing first if ump
// would overflow it. Write never flushes the final partial list; the
// caller does that with Flush at the end of the stream.
func (s *UMPSegmenter) Write(ump message.UMP, flush EventListWriteFunc) error {
	n := ump.Len
	curBytes := len(s.current) * 4
	addBytes := n * 4

	if len(s.current) > 0 && curBytes+addBytes > s.MaxListBytes {
		if err := s.Flush(flush); err != nil {
			return err
		}
	}
	if addBytes > s.MaxListBytes {
		return merr.Newf(merr.MessageSize, "single UMP (%d bytes) exceeds event list capacity (%d bytes)", addBytes, s.MaxListBytes)
	}
	s.current = append(s.current, ump.Words[:n]...)
	return nil
}

// Flush writes out and clears any buffered partial event list.
func (s *UMPSegmenter) Flush(flush EventListWriteFunc) error {
	if len(s.current) == 0 {
		return nil
	}
	if err := flush(s.current, len(s.current)*4); err != nil {
		return err
	}
	s.current = s.current[:0]
	return nil
}
