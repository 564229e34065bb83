package convert

import (
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/merr"
)

// SysExReassembler reconstitutes a MIDI 1 0xF0..0xF7 byte stream from a
// sequence of Data64 (SysEx7) UMP Start/Continue/End packets, per
// spec.md §4.3's "buffer that reassembles 6-byte SysEx7 fragments across
// multiple 64-bit UMP packets" requirement. Zero value is ready to use.
type SysExReassembler struct {
	buf       []byte
	reassembling bool
}

// Feed processes one Data64 UMP. When it completes a SysEx message (a
// Complete packet, or the End of a Start/Continue* run), it returns the
// full 0xF0..0xF7 byte slice and ok=true.
func (r *SysExReassembler) Feed(u message.UMP) (msg []byte, ok bool, err error) {
	if u.MessageType() != message.UMPData64 {
		return nil, false, merr.New(merr.BadMessage, "not a Data64 UMP")
	}
	status := byte((u.Words[0] >> 20) & 0x0F)
	n := int((u.Words[0] >> 16) & 0x0F)
	if n > 6 {
		n = 6
	}
	var chunk [6]byte
	chunk[0] = byte((u.Words[0] >> 8) & 0xFF)
	chunk[1] = byte(u.Words[0] & 0xFF)
	chunk[2] = byte((u.Words[1] >> 24) & 0xFF)
	chunk[3] = byte((u.Words[1] >> 16) & 0xFF)
	chunk[4] = byte((u.Words[1] >> 8) & 0xFF)
	chunk[5] = byte(u.Words[1] & 0xFF)

	switch status {
	case message.SysEx7Complete:
		r.reset()
		return buildSysEx(chunk[:n]), true, nil
	case message.SysEx7Start:
		r.buf = append(r.buf[:0], chunk[:n]...)
		r.reassembling = true
		return nil, false, nil
	case message.SysEx7Continue:
		if !r.reassembling {
			return nil, false, merr.New(merr.BadMessage, "sysex7 continue without start")
		}
		r.buf = append(r.buf, chunk[:n]...)
		return nil, false, nil
	case message.SysEx7End:
		if !r.reassembling {
			return nil, false, merr.New(merr.BadMessage, "sysex7 end without start")
		}
		r.buf = append(r.buf, chunk[:n]...)
		out := buildSysEx(r.buf)
		r.reset()
		return out, true, nil
	default:
		return nil, false, merr.Newf(merr.BadMessage, "unknown sysex7 status %d", status)
	}
}

func (r *SysExReassembler) reset() {
	r.buf = r.buf[:0]
	r.reassembling = false
}

func buildSysEx(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+2)
	out = append(out, message.SysExStart)
	out = append(out, payload...)
	out = append(out, message.SysExEnd)
	return out
}
