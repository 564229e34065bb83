package smf

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/message"
)

// Format is the SMF header format field (0, 1, or 2).
type Format uint16

const (
	Format0 Format = 0 // single multi-channel track
	Format1 Format = 1 // one or more simultaneous tracks
	Format2 Format = 2 // one or more independent tracks
)

// Division selects how delta times are interpreted: ticks per quarter
// note (the common case) or SMPTE frames/ticks-per-frame.
type Division struct {
	TicksPerQuarter uint16 // used when SMPTE == false
	SMPTE           bool
	FramesPerSecond int8 // negative, e.g. -30 for 30fps, when SMPTE == true
	TicksPerFrame   uint8
}

func (d Division) encode() uint16 {
	if d.SMPTE {
		return uint16(uint8(d.FramesPerSecond))<<8 | uint16(d.TicksPerFrame) | 0x8000
	}
	return d.TicksPerQuarter & 0x7FFF
}

func decodeDivision(v uint16) Division {
	if v&0x8000 != 0 {
		return Division{SMPTE: true, FramesPerSecond: int8(v >> 8), TicksPerFrame: uint8(v)}
	}
	return Division{TicksPerQuarter: v}
}

// Event is one delta-timed event within a track: either a MIDI 1.0
// channel/system message or a MetaEvent, never both.
type Event struct {
	DeltaTicks uint32
	Message    *message.Message
	Meta       *MetaEvent
}

// Track is an ordered sequence of delta-timed events, one MTrk chunk.
type Track struct {
	Events []Event
}

// AbsoluteTicks returns, for each event in order, the accumulated tick
// position from the start of the track instead of the delta-time-between-
// events representation Events stores natively — the second of the two
// tick representations spec.md §4.7 calls out ("a mode flag chooses
// between delta-time-between-events and accumulated absolute-tick
// timestamps"). Both representations describe the same events; EndTime
// is unaffected by which one a caller works with.
func (t Track) AbsoluteTicks() []uint32 {
	out := make([]uint32, len(t.Events))
	var acc uint32
	for i, ev := range t.Events {
		acc += ev.DeltaTicks
		out[i] = acc
	}
	return out
}

// File is a parsed Standard MIDI File: a header plus its tracks.
type File struct {
	Format   Format
	Division Division
	Tracks   []Track
}

// ParseResult classifies how completely a file was read, per spec.md
// §6.5's Validated/Complete/Incomplete/Invalid outcome set.
type ParseResult int

const (
	Validated ParseResult = iota // well-formed and every track contains a MetaEndOfTrack event
	Complete                     // well-formed, but some track has no MetaEndOfTrack event
	Incomplete                   // a track chunk was truncated before its declared length
	Invalid                      // header or chunk framing was malformed
)

const (
	chunkMThd = "MThd"
	chunkMTrk = "MTrk"
)

// Read parses a Standard MIDI File from r.
func Read(r io.Reader) (*File, ParseResult, error) {
	id, size, err := readChunkHeader(r)
	if err != nil {
		return nil, Invalid, err
	}
	if id != chunkMThd || size < 6 {
		return nil, Invalid, merr.New(merr.BadMessage, "missing or undersized MThd chunk")
	}
	hdr := make([]byte, size)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, Invalid, merr.Wrap(merr.BadMessage, err, "truncated MThd chunk")
	}
	f := &File{
		Format:   Format(binary.BigEndian.Uint16(hdr[0:2])),
		Division: decodeDivision(binary.BigEndian.Uint16(hdr[4:6])),
	}
	numTracks := int(binary.BigEndian.Uint16(hdr[2:4]))

	result := Validated
	for i := 0; i < numTracks; i++ {
		id, size, err := readChunkHeader(r)
		if err == io.EOF {
			return f, Incomplete, nil
		}
		if err != nil {
			return f, Invalid, err
		}
		if id != chunkMTrk {
			return f, Invalid, merr.Newf(merr.BadMessage, "expected MTrk chunk, got %q", id)
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return f, Incomplete, nil
		}
		track, endOfTrack, err := parseTrack(data)
		if err != nil {
			return f, Invalid, err
		}
		f.Tracks = append(f.Tracks, track)
		if !endOfTrack {
			result = Complete
		}
	}
	return f, result, nil
}

func parseTrack(data []byte) (Track, bool, error) {
	var track Track
	var runningStatus byte
	endOfTrack := false

	for len(data) > 0 {
		delta, n, ok := decodeVLQ(data)
		if !ok {
			return track, false, merr.New(merr.BadMessage, "truncated delta-time VLQ in track")
		}
		data = data[n:]
		if len(data) == 0 {
			return track, false, merr.New(merr.BadMessage, "track ends mid-event")
		}

		first := data[0]
		switch {
		case first == 0xFF:
			if len(data) < 2 {
				return track, false, merr.New(merr.BadMessage, "truncated meta event")
			}
			typ := data[1]
			length, ln, ok := decodeVLQ(data[2:])
			if !ok {
				return track, false, merr.New(merr.BadMessage, "truncated meta event length")
			}
			start := 2 + ln
			end := start + int(length)
			if end > len(data) {
				return track, false, merr.New(merr.BadMessage, "truncated meta event payload")
			}
			payload := append([]byte(nil), data[start:end]...)
			track.Events = append(track.Events, Event{DeltaTicks: delta, Meta: &MetaEvent{Type: typ, Data: payload}})
			if typ == MetaEndOfTrack {
				endOfTrack = true
			}
			data = data[end:]

		case first == message.SysExStart || first == message.SysExEnd:
			length, ln, ok := decodeVLQ(data[1:])
			if !ok {
				return track, false, merr.New(merr.BadMessage, "truncated sysex event length")
			}
			start := 1 + ln
			end := start + int(length)
			if end > len(data) {
				return track, false, merr.New(merr.BadMessage, "truncated sysex event payload")
			}
			full := append([]byte{first}, data[start:end]...)
			track.Events = append(track.Events, Event{DeltaTicks: delta, Message: &message.Message{Bytes: full}})
			data = data[end:]

		default:
			var status byte
			var rest []byte
			if first&0x80 != 0 {
				status = first
				rest = data[1:]
			} else {
				// Running status: reuse the previous status byte and this
				// byte is itself the first data byte.
				if runningStatus == 0 {
					return track, false, merr.New(merr.BadMessage, "running status with no prior status byte")
				}
				status = runningStatus
				rest = data
			}
			n := message.DataLen(status)
			if n < 0 || len(rest) < n {
				return track, false, merr.New(merr.BadMessage, "truncated channel message in track")
			}
			if message.IsChannelVoice(status) {
				runningStatus = status
			}
			full := append([]byte{status}, rest[:n]...)
			track.Events = append(track.Events, Event{DeltaTicks: delta, Message: &message.Message{Bytes: full}})
			if first&0x80 != 0 {
				data = data[1+n:]
			} else {
				data = data[n:]
			}
		}
	}
	return track, endOfTrack, nil
}

// Write serializes f as a Standard MIDI File.
func Write(w io.Writer, f *File) error {
	var hdr bytes.Buffer
	hdr.Write([]byte(chunkMThd))
	binary.Write(&hdr, binary.BigEndian, uint32(6))
	binary.Write(&hdr, binary.BigEndian, uint16(f.Format))
	binary.Write(&hdr, binary.BigEndian, uint16(len(f.Tracks)))
	binary.Write(&hdr, binary.BigEndian, f.Division.encode())
	if _, err := w.Write(hdr.Bytes()); err != nil {
		return merr.Wrap(merr.IOError, err, "failed to write MThd chunk")
	}

	for _, t := range f.Tracks {
		var body bytes.Buffer
		for _, ev := range t.Events {
			body.Write(encodeVLQ(ev.DeltaTicks))
			switch {
			case ev.Meta != nil:
				body.Write(ev.Meta.Bytes())
			case ev.Message != nil:
				b := ev.Message.Bytes
				if len(b) > 0 && (b[0] == message.SysExStart || b[0] == message.SysExEnd) {
					// SysEx events are stored as status, VLQ payload length, payload.
					body.WriteByte(b[0])
					body.Write(encodeVLQ(uint32(len(b) - 1)))
					body.Write(b[1:])
				} else {
					body.Write(b)
				}
			}
		}
		if !endsInEndOfTrack(t.Events) {
			body.Write(encodeVLQ(0))
			body.Write(MetaEvent{Type: MetaEndOfTrack}.Bytes())
		}
		var chunk bytes.Buffer
		chunk.Write([]byte(chunkMTrk))
		binary.Write(&chunk, binary.BigEndian, uint32(body.Len()))
		chunk.Write(body.Bytes())
		if _, err := w.Write(chunk.Bytes()); err != nil {
			return merr.Wrap(merr.IOError, err, "failed to write MTrk chunk")
		}
	}
	return nil
}

// EndTime returns the wall-clock duration, in nanoseconds, from the
// start of track 0 to its final event, honoring MetaTempo changes as
// they occur (default 120 BPM, i.e. 500000 microseconds/quarter, until
// the first tempo event). Only meaningful for a Division with SMPTE ==
// false; a SMPTE-divided file's ticks already map directly to wall time
// and EndTime returns that direct mapping instead.
func (f *File) EndTime() int64 {
	if len(f.Tracks) == 0 {
		return 0
	}
	if f.Division.SMPTE {
		return smpteEndTime(f.Tracks[0], f.Division)
	}

	const defaultMicrosPerQuarter = 500000
	microsPerQuarter := uint32(defaultMicrosPerQuarter)
	var totalNanos int64
	for _, ev := range f.Tracks[0].Events {
		if ev.DeltaTicks > 0 {
			nanosPerTick := float64(microsPerQuarter) * 1000 / float64(f.Division.TicksPerQuarter)
			totalNanos += int64(float64(ev.DeltaTicks) * nanosPerTick)
		}
		if ev.Meta != nil && ev.Meta.Type == MetaTempo {
			if t := ev.Meta.Tempo(); t > 0 {
				microsPerQuarter = t
			}
		}
	}
	return totalNanos
}

func smpteEndTime(t Track, d Division) int64 {
	framesPerSecond := -int64(d.FramesPerSecond)
	if framesPerSecond <= 0 || d.TicksPerFrame == 0 {
		return 0
	}
	var totalTicks int64
	for _, ev := range t.Events {
		totalTicks += int64(ev.DeltaTicks)
	}
	secondsPerTick := 1.0 / (float64(framesPerSecond) * float64(d.TicksPerFrame))
	return int64(float64(totalTicks) * secondsPerTick * 1e9)
}

// endsInEndOfTrack reports whether events already ends with a
// MetaEndOfTrack event, so Write doesn't double up on one.
func endsInEndOfTrack(events []Event) bool {
	if len(events) == 0 {
		return false
	}
	last := events[len(events)-1]
	return last.Meta != nil && last.Meta.Type == MetaEndOfTrack
}

func readChunkHeader(r io.Reader) (id string, size uint32, err error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return "", 0, err
	}
	return string(hdr[0:4]), binary.BigEndian.Uint32(hdr[4:8]), nil
}
