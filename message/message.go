// Package message holds the MIDI 1.0 byte-message and MIDI 2.0 Universal
// MIDI Packet value types, plus the channel and sysex factories used to
// build them. It has no knowledge of any transport.
package message

import "github.com/odaacabeef/midicore/merr"

// Message is a single complete MIDI 1.0 message: an ordered byte sequence
// (running status already resolved — the first byte always has the high
// bit set) paired with a timestamp.
type Message struct {
	Bytes     []byte
	Timestamp merr.Timestamp
}

// IsSysEx reports whether m is a System Exclusive message.
func (m Message) IsSysEx() bool {
	return len(m.Bytes) >= 1 && m.Bytes[0] == 0xF0
}

// Status returns the status byte, or 0 if Bytes is empty.
func (m Message) Status() byte {
	if len(m.Bytes) == 0 {
		return 0
	}
	return m.Bytes[0]
}

// Channel status nibbles.
const (
	NoteOff         byte = 0x80
	NoteOn          byte = 0x90
	PolyPressure    byte = 0xA0
	ControlChange   byte = 0xB0
	ProgramChange   byte = 0xC0
	ChannelPressure byte = 0xD0
	PitchBend       byte = 0xE0
)

// System common / real-time status bytes.
const (
	SysExStart     byte = 0xF0
	MTCQuarterFrame byte = 0xF1
	SongPosition   byte = 0xF2
	SongSelect     byte = 0xF3
	TuneRequest    byte = 0xF6
	SysExEnd       byte = 0xF7
	TimingClock    byte = 0xF8
	Start          byte = 0xFA
	Continue       byte = 0xFB
	Stop           byte = 0xFC
	ActiveSensing  byte = 0xFE
	SystemReset    byte = 0xFF
)

// DataLen returns the number of data bytes that follow a channel-voice or
// system-common status byte (not counting the status byte itself), or -1
// for variable-length messages (SysEx) and for undefined or unlisted
// status bytes (0xF4, 0xF5, 0xF7, 0xF9, 0xFD), matching the per-status
// table of spec.md §4.2.
func DataLen(status byte) int {
	switch status & 0xF0 {
	case NoteOff, NoteOn, PolyPressure, ControlChange, PitchBend:
		return 2
	case ProgramChange, ChannelPressure:
		return 1
	}
	switch status {
	case SysExStart:
		return -1
	case MTCQuarterFrame, SongSelect:
		return 1
	case SongPosition:
		return 2
	case TuneRequest, TimingClock, Start, Continue, Stop, ActiveSensing, SystemReset:
		return 0
	default:
		return -1
	}
}

// IsRealTime reports whether status is a single-byte system real-time
// message (spec.md §4.2: 0xF8..0xFF, which may interleave inside a
// running channel message without disturbing it).
func IsRealTime(status byte) bool {
	return status >= 0xF8
}

// IsChannelVoice reports whether status is a channel voice status byte
// (0x80-0xEF).
func IsChannelVoice(status byte) bool {
	return status >= 0x80 && status < 0xF0
}

// NoteOnMsg builds a Note On channel-voice message.
func NoteOnMsg(channel, note, velocity byte, ts merr.Timestamp) Message {
	return Message{Bytes: []byte{NoteOn | (channel & 0x0F), note & 0x7F, velocity & 0x7F}, Timestamp: ts}
}

// NoteOffMsg builds a Note Off channel-voice message.
func NoteOffMsg(channel, note, velocity byte, ts merr.Timestamp) Message {
	return Message{Bytes: []byte{NoteOff | (channel & 0x0F), note & 0x7F, velocity & 0x7F}, Timestamp: ts}
}

// ControlChangeMsg builds a Control Change message.
func ControlChangeMsg(channel, controller, value byte, ts merr.Timestamp) Message {
	return Message{Bytes: []byte{ControlChange | (channel & 0x0F), controller & 0x7F, value & 0x7F}, Timestamp: ts}
}

// ProgramChangeMsg builds a Program Change message.
func ProgramChangeMsg(channel, program byte, ts merr.Timestamp) Message {
	return Message{Bytes: []byte{ProgramChange | (channel & 0x0F), program & 0x7F}, Timestamp: ts}
}

// PitchBendMsg builds a Pitch Bend message from an unsigned 14-bit value
// (0x0000-0x3FFF) whose center is 0x2000.
func PitchBendMsg(channel byte, value14 uint16, ts merr.Timestamp) Message {
	return Message{Bytes: []byte{PitchBend | (channel & 0x0F), byte(value14 & 0x7F), byte((value14 >> 7) & 0x7F)}, Timestamp: ts}
}

// SysExMsg builds a complete SysEx message (0xF0 ... 0xF7) from a payload
// that excludes the framing bytes.
func SysExMsg(payload []byte, ts merr.Timestamp) Message {
	b := make([]byte, 0, len(payload)+2)
	b = append(b, SysExStart)
	b = append(b, payload...)
	b = append(b, SysExEnd)
	return Message{Bytes: b, Timestamp: ts}
}
