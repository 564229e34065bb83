// Package convert implements bit-exact MIDI 1.0 ⇄ UMP conversion, per
// spec.md §4.3. It does not allocate on the channel-voice hot path; SysEx
// bridging uses one bounded reassembly buffer per converter.
package convert

import (
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/merr"
)

// MIDI1ToUMP converts one complete MIDI 1.0 message into zero or more UMP
// packets, invoking emit for each. Group is the UMP group (0-15) this
// stream is assigned to. Long SysEx (>6 data bytes) is split into
// Start/Continue/End packets; short SysEx (<=6 data bytes) becomes one
// Complete packet.
func MIDI1ToUMP(m message.Message, group byte, emit func(message.UMP)) error {
	if len(m.Bytes) == 0 {
		return merr.New(merr.BadMessage, "empty MIDI 1 message")
	}
	status := m.Bytes[0]
	ts := m.Timestamp
	g := uint32(group&0x0F) << 24

	if status == message.SysExStart {
		return sysEx7Encode(m.Bytes, g, ts, emit)
	}

	if message.IsRealTime(status) || status == message.TuneRequest {
		w0 := (uint32(message.UMPSystem) << 28) | g | (uint32(status) << 16)
		emit(message.NewUMP1(w0, ts))
		return nil
	}

	switch status {
	case message.MTCQuarterFrame, message.SongSelect:
		if len(m.Bytes) < 2 {
			return merr.New(merr.BadMessage, "short system-common message")
		}
		w0 := (uint32(message.UMPSystem) << 28) | g | (uint32(status) << 16) | (uint32(m.Bytes[1]) << 8)
		emit(message.NewUMP1(w0, ts))
		return nil
	case message.SongPosition:
		if len(m.Bytes) < 3 {
			return merr.New(merr.BadMessage, "short song position message")
		}
		w0 := (uint32(message.UMPSystem) << 28) | g | (uint32(status) << 16) | (uint32(m.Bytes[1]) << 8) | uint32(m.Bytes[2])
		emit(message.NewUMP1(w0, ts))
		return nil
	}

	if !message.IsChannelVoice(status) {
		return merr.Newf(merr.BadMessage, "unrecognized MIDI 1 status 0x%02X", status)
	}
	return channelVoiceToUMP(m.Bytes, g, ts, emit)
}

func channelVoiceToUMP(b []byte, g uint32, ts merr.Timestamp, emit func(message.UMP)) error {
	status := b[0]
	channel := uint32(status & 0x0F)
	opcode := uint32(status&0xF0) >> 4
	w0hdr := (uint32(message.UMPMIDI2ChannelVoice) << 28) | g | (opcode << 20) | (channel << 16)

	switch status & 0xF0 {
	case message.NoteOff, message.NoteOn:
		if len(b) < 3 {
			return merr.New(merr.BadMessage, "short note message")
		}
		note := uint32(b[1] & 0x7F)
		vel16 := message.U7ToU16(b[2])
		w0 := w0hdr | (note << 8)
		w1 := uint32(vel16) << 16
		emit(message.NewUMP2(w0, w1, ts))
	case message.PolyPressure:
		if len(b) < 3 {
			return merr.New(merr.BadMessage, "short poly pressure message")
		}
		note := uint32(b[1] & 0x7F)
		w0 := w0hdr | (note << 8)
		w1 := message.U7ToU32(b[2])
		emit(message.NewUMP2(w0, w1, ts))
	case message.ControlChange:
		if len(b) < 3 {
			return merr.New(merr.BadMessage, "short control change message")
		}
		idx := uint32(b[1] & 0x7F)
		w0 := w0hdr | (idx << 8)
		w1 := message.U7ToU32(b[2])
		emit(message.NewUMP2(w0, w1, ts))
	case message.ProgramChange:
		if len(b) < 2 {
			return merr.New(merr.BadMessage, "short program change message")
		}
		w0 := w0hdr
		w1 := uint32(b[1]&0x7F) << 24
		emit(message.NewUMP2(w0, w1, ts))
	case message.ChannelPressure:
		if len(b) < 2 {
			return merr.New(merr.BadMessage, "short channel pressure message")
		}
		w1 := message.U7ToU32(b[1])
		emit(message.NewUMP2(w0hdr, w1, ts))
	case message.PitchBend:
		if len(b) < 3 {
			return merr.New(merr.BadMessage, "short pitch bend message")
		}
		v14 := uint16(b[1]&0x7F) | (uint16(b[2]&0x7F) << 7)
		w1 := message.U14ToU32(v14)
		emit(message.NewUMP2(w0hdr, w1, ts))
	default:
		return merr.Newf(merr.BadMessage, "unrecognized channel voice status 0x%02X", status)
	}
	return nil
}

// sysEx7Encode splits a complete 0xF0..0xF7 MIDI 1 SysEx message into one
// Complete Data64 UMP (<=6 data bytes) or a Start/Continue*/End sequence
// (>6 data bytes), per spec.md §4.3.
func sysEx7Encode(b []byte, g uint32, ts merr.Timestamp, emit func(message.UMP)) error {
	if len(b) < 2 || b[len(b)-1] != message.SysExEnd {
		return merr.New(merr.BadMessage, "unterminated sysex")
	}
	payload := b[1 : len(b)-1]

	if len(payload) <= 6 {
		emit(sysex7Packet(message.SysEx7Complete, payload, g, ts))
		return nil
	}

	for i := 0; i < len(payload); i += 6 {
		end := i + 6
		status := message.SysEx7Continue
		if i == 0 {
			status = message.SysEx7Start
		}
		if end >= len(payload) {
			end = len(payload)
			status = message.SysEx7End
		}
		emit(sysex7Packet(status, payload[i:end], g, ts))
	}
	return nil
}

func sysex7Packet(status byte, chunk []byte, g uint32, ts merr.Timestamp) message.UMP {
	n := len(chunk)
	w0 := (uint32(message.UMPData64) << 28) | g | (uint32(status) << 20) | (uint32(n) << 16)
	var b [6]byte
	copy(b[:], chunk)
	if n > 0 {
		w0 |= uint32(b[0]) << 8
	}
	if n > 1 {
		w0 |= uint32(b[1])
	}
	w1 := uint32(b[2])<<24 | uint32(b[3])<<16 | uint32(b[4])<<8 | uint32(b[5])
	return message.NewUMP2(w0, w1, ts)
}
