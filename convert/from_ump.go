package convert

import (
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/merr"
)

// Converter turns UMPs into MIDI 1 messages through Feed, which invokes
// emit only when a MIDI 1 message results. UMP content with no MIDI 1
// representation (MIDI 2 properties absent from MIDI 1, Flex Data,
// Stream, per-note controllers, SysEx8) is dropped silently, per
// spec.md §4.3 — that is success, not an error, and Feed returns nil
// without calling emit.
//
// SysEx7 reassembly is stateful across calls; pass the same *Converter
// (or at minimum the same *SysExReassembler) for every UMP on one stream.
type Converter struct {
	sysex SysExReassembler
}

// Feed converts one UMP, calling emit for the zero or one MIDI1 messages
// it produces. It returns an error only for malformed input (e.g. sysex7
// continuation mismatch), never for "not representable in MIDI 1" input.
func (c *Converter) Feed(u message.UMP, emit func(message.Message)) error {
	switch u.MessageType() {
	case message.UMPSystem:
		return systemUMPToMIDI1(u, emit)
	case message.UMPMIDI2ChannelVoice:
		return midi2VoiceToMIDI1(u, emit)
	case message.UMPData64:
		out, ok, err := c.sysex.Feed(u)
		if err != nil {
			return err
		}
		if ok {
			emit(message.Message{Bytes: out, Timestamp: u.Timestamp})
		}
		return nil
	default:
		// Utility, MIDI1 channel voice passthrough, Data128/SysEx8, Flex
		// Data, Stream, and reserved types carry no MIDI 1 equivalent (or
		// are simply not MIDI content this converter bridges); dropped.
		return nil
	}
}

func systemUMPToMIDI1(u message.UMP, emit func(message.Message)) error {
	status := byte((u.Words[0] >> 16) & 0xFF)
	ts := u.Timestamp
	switch status {
	case message.MTCQuarterFrame, message.SongSelect:
		data := byte((u.Words[0] >> 8) & 0x7F)
		emit(message.Message{Bytes: []byte{status, data}, Timestamp: ts})
	case message.SongPosition:
		lsb := byte((u.Words[0] >> 8) & 0x7F)
		msb := byte(u.Words[0] & 0x7F)
		emit(message.Message{Bytes: []byte{status, lsb, msb}, Timestamp: ts})
	case message.TuneRequest, message.TimingClock, message.Start, message.Continue,
		message.Stop, message.ActiveSensing, message.SystemReset:
		emit(message.Message{Bytes: []byte{status}, Timestamp: ts})
	default:
		return merr.Newf(merr.BadMessage, "unrecognized system UMP status 0x%02X", status)
	}
	return nil
}

func midi2VoiceToMIDI1(u message.UMP, emit func(message.Message)) error {
	opcode := byte((u.Words[0] >> 20) & 0x0F)
	channel := byte((u.Words[0] >> 16) & 0x0F)
	ts := u.Timestamp

	switch opcode {
	case message.M2NoteOff, message.M2NoteOn:
		note := byte((u.Words[0] >> 8) & 0x7F)
		vel16 := uint16(u.Words[1] >> 16)
		vel7 := message.U16ToU7(vel16)
		status := message.NoteOn | channel
		if opcode == message.M2NoteOff {
			status = message.NoteOff | channel
		}
		emit(message.Message{Bytes: []byte{status, note, vel7}, Timestamp: ts})
	case message.M2PolyPressure:
		note := byte((u.Words[0] >> 8) & 0x7F)
		v7 := message.U32ToU7(u.Words[1])
		emit(message.Message{Bytes: []byte{message.PolyPressure | channel, note, v7}, Timestamp: ts})
	case message.M2ControlChange:
		idx := byte((u.Words[0] >> 8) & 0x7F)
		v7 := message.U32ToU7(u.Words[1])
		emit(message.Message{Bytes: []byte{message.ControlChange | channel, idx, v7}, Timestamp: ts})
	case message.M2ProgramChange:
		program := byte((u.Words[1] >> 24) & 0x7F)
		emit(message.Message{Bytes: []byte{message.ProgramChange | channel, program}, Timestamp: ts})
	case message.M2ChannelPressure:
		v7 := message.U32ToU7(u.Words[1])
		emit(message.Message{Bytes: []byte{message.ChannelPressure | channel, v7}, Timestamp: ts})
	case message.M2PitchBend:
		v14 := message.U32ToU14(u.Words[1])
		emit(message.Message{Bytes: []byte{
			message.PitchBend | channel,
			byte(v14 & 0x7F),
			byte((v14 >> 7) & 0x7F),
		}, Timestamp: ts})
	default:
		// Per-note controllers and other MIDI-2-only opcodes have no MIDI
		// 1 equivalent; dropped silently.
	}
	return nil
}
