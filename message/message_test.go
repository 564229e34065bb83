package message

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataLen(t *testing.T) {
	cases := []struct {
		status byte
		want   int
	}{
		{NoteOn, 2},
		{NoteOff, 2},
		{ControlChange, 2},
		{ProgramChange, 1},
		{ChannelPressure, 1},
		{PitchBend, 2},
		{SysExStart, -1},
		{MTCQuarterFrame, 1},
		{SongPosition, 2},
		{TuneRequest, 0},
		{TimingClock, 0},
		{ActiveSensing, 0},
	}
	for _, c := range cases {
		require.Equal(t, c.want, DataLen(c.status), "status 0x%X", c.status)
	}
}

func TestIsRealTime(t *testing.T) {
	require.True(t, IsRealTime(TimingClock))
	require.True(t, IsRealTime(SystemReset))
	require.False(t, IsRealTime(NoteOn))
}

func TestIsChannelVoice(t *testing.T) {
	require.True(t, IsChannelVoice(NoteOn|0x03))
	require.False(t, IsChannelVoice(SysExStart))
	require.False(t, IsChannelVoice(TimingClock))
}

func TestNoteOnMsgMasksNibbles(t *testing.T) {
	m := NoteOnMsg(0x1F, 0xFF, 0xFF, 0)
	require.Equal(t, []byte{NoteOn | 0x0F, 0x7F, 0x7F}, m.Bytes)
}

func TestSysExMsgFraming(t *testing.T) {
	m := SysExMsg([]byte{0x01, 0x02}, 0)
	require.Equal(t, []byte{SysExStart, 0x01, 0x02, SysExEnd}, m.Bytes)
	require.True(t, m.IsSysEx())
}
