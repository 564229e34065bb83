package convert

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odaacabeef/midicore/message"
)

func TestMIDI1ToUMPNoteOn(t *testing.T) {
	m := message.NoteOnMsg(0x3, 0x40, 0x7F, 0)
	var got []message.UMP
	err := MIDI1ToUMP(m, 0x1, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	u := got[0]
	require.Equal(t, byte(message.UMPMIDI2ChannelVoice), u.MessageType())
	require.Equal(t, byte(0x1), u.Group())
	require.Equal(t, byte(message.NoteOn)>>4, byte((u.Words[0]>>20)&0x0F))
	require.Equal(t, byte(0x3), byte((u.Words[0]>>16)&0x0F))
	require.Equal(t, byte(0x40), byte((u.Words[0]>>8)&0x7F))
	require.Equal(t, uint16(0xFFFF), uint16(u.Words[1]>>16))
}

func TestMIDI1ToUMPControlChange(t *testing.T) {
	m := message.Message{Bytes: []byte{message.ControlChange | 0x0, 0x07, 0x00}}
	var got []message.UMP
	err := MIDI1ToUMP(m, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, uint32(0), got[0].Words[1])
}

func TestMIDI1ToUMPProgramChange(t *testing.T) {
	m := message.Message{Bytes: []byte{message.ProgramChange | 0x2, 0x05}}
	var got []message.UMP
	err := MIDI1ToUMP(m, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Equal(t, byte(0x05), byte((got[0].Words[1]>>24)&0x7F))
}

func TestMIDI1ToUMPChannelPressure(t *testing.T) {
	m := message.Message{Bytes: []byte{message.ChannelPressure | 0x0, 0x7F}}
	var got []message.UMP
	err := MIDI1ToUMP(m, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Equal(t, uint32(0xFFFFFFFF), got[0].Words[1])
}

func TestMIDI1ToUMPPitchBend(t *testing.T) {
	m := message.Message{Bytes: []byte{message.PitchBend | 0x0, 0x00, 0x40}}
	var got []message.UMP
	err := MIDI1ToUMP(m, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Equal(t, 1, len(got))
}

func TestMIDI1ToUMPPolyPressure(t *testing.T) {
	m := message.Message{Bytes: []byte{message.PolyPressure | 0x0, 0x3C, 0x7F}}
	var got []message.UMP
	err := MIDI1ToUMP(m, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Equal(t, byte(0x3C), byte((got[0].Words[0]>>8)&0x7F))
}

func TestMIDI1ToUMPRealTime(t *testing.T) {
	m := message.Message{Bytes: []byte{message.TimingClock}}
	var got []message.UMP
	err := MIDI1ToUMP(m, 0x2, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, byte(message.UMPSystem), got[0].MessageType())
	require.Equal(t, byte(0x2), got[0].Group())
	require.Equal(t, message.TimingClock, byte((got[0].Words[0]>>16)&0xFF))
}

func TestMIDI1ToUMPSongPosition(t *testing.T) {
	m := message.Message{Bytes: []byte{message.SongPosition, 0x10, 0x20}}
	var got []message.UMP
	err := MIDI1ToUMP(m, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Equal(t, byte(0x10), byte((got[0].Words[0]>>8)&0x7F))
	require.Equal(t, byte(0x20), byte(got[0].Words[0]&0x7F))
}

func TestMIDI1ToUMPShortMessageErrors(t *testing.T) {
	cases := [][]byte{
		{message.NoteOn, 0x40},
		{message.ProgramChange},
		{message.ChannelPressure},
		{message.PitchBend, 0x00},
		{message.SongPosition, 0x10},
	}
	for _, b := range cases {
		err := MIDI1ToUMP(message.Message{Bytes: b}, 0, func(message.UMP) {})
		require.Error(t, err, "%v", b)
	}
}

func TestMIDI1ToUMPEmptyMessage(t *testing.T) {
	err := MIDI1ToUMP(message.Message{}, 0, func(message.UMP) {})
	require.Error(t, err)
}

func TestMIDI1ToUMPUnrecognizedStatus(t *testing.T) {
	err := MIDI1ToUMP(message.Message{Bytes: []byte{0xF4, 0x00}}, 0, func(message.UMP) {})
	require.Error(t, err)
}

func TestSysEx7EncodeShortBecomesComplete(t *testing.T) {
	m := message.SysExMsg([]byte{0x01, 0x02, 0x03}, 0)
	var got []message.UMP
	err := MIDI1ToUMP(m, 0x5, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	u := got[0]
	require.Equal(t, byte(message.UMPData64), u.MessageType())
	require.Equal(t, byte(0x5), u.Group())
	require.Equal(t, message.SysEx7Complete, byte((u.Words[0]>>20)&0x0F))
	require.Equal(t, byte(3), byte((u.Words[0]>>16)&0x0F))
}

func TestSysEx7EncodeLongSplitsIntoStartContinueEnd(t *testing.T) {
	payload := make([]byte, 13)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	m := message.SysExMsg(payload, 0)
	var got []message.UMP
	err := MIDI1ToUMP(m, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Len(t, got, 3)

	statusOf := func(u message.UMP) byte { return byte((u.Words[0] >> 20) & 0x0F) }
	lenOf := func(u message.UMP) byte { return byte((u.Words[0] >> 16) & 0x0F) }

	require.Equal(t, message.SysEx7Start, statusOf(got[0]))
	require.Equal(t, byte(6), lenOf(got[0]))
	require.Equal(t, message.SysEx7Continue, statusOf(got[1]))
	require.Equal(t, byte(6), lenOf(got[1]))
	require.Equal(t, message.SysEx7End, statusOf(got[2]))
	require.Equal(t, byte(1), lenOf(got[2]))
}

func TestSysEx7EncodeExactlySixBytes(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6}
	m := message.SysExMsg(payload, 0)
	var got []message.UMP
	err := MIDI1ToUMP(m, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, message.SysEx7Complete, byte((got[0].Words[0]>>20)&0x0F))
}

func TestSysEx7EncodeUnterminatedErrors(t *testing.T) {
	err := sysEx7Encode([]byte{message.SysExStart, 0x01}, 0, 0, func(message.UMP) {})
	require.Error(t, err)
}

func TestMIDI1ToUMPAndBackSysExRoundTrip(t *testing.T) {
	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = byte(i)
	}
	m := message.SysExMsg(payload, 0)

	var umps []message.UMP
	require.NoError(t, MIDI1ToUMP(m, 0, func(u message.UMP) { umps = append(umps, u) }))

	var reassembler SysExReassembler
	var out []byte
	for _, u := range umps {
		got, ok, err := reassembler.Feed(u)
		require.NoError(t, err)
		if ok {
			out = got
		}
	}
	require.Equal(t, m.Bytes, out)
}

func TestMIDI1ToUMPAndBackChannelVoiceRoundTrip(t *testing.T) {
	m := message.NoteOnMsg(0x5, 0x3C, 0x64, 0)
	var umps []message.UMP
	require.NoError(t, MIDI1ToUMP(m, 0x3, func(u message.UMP) { umps = append(umps, u) }))
	require.Len(t, umps, 1)

	c := &Converter{}
	var out []message.Message
	require.NoError(t, c.Feed(umps[0], func(mm message.Message) { out = append(out, mm) }))
	require.Len(t, out, 1)
	require.Equal(t, message.NoteOn|0x5, out[0].Bytes[0])
	require.Equal(t, byte(0x3C), out[0].Bytes[1])
}
