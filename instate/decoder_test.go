package instate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/merr"
)

func TestDecoderSimpleNoteOn(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.None})
	var got []message.Message
	err := d.Feed([]byte{message.NoteOn | 0x0, 0x40, 0x7F}, 0, 0, func(m message.Message) { got = append(got, m) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []byte{message.NoteOn, 0x40, 0x7F}, got[0].Bytes)
}

func TestDecoderWaitsForCompleteMessage(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.None})
	var got []message.Message
	emit := func(m message.Message) { got = append(got, m) }

	require.NoError(t, d.Feed([]byte{message.NoteOn | 0x0, 0x40}, 0, 0, emit))
	require.Empty(t, got)

	require.NoError(t, d.Feed([]byte{0x7F}, 0, 0, emit))
	require.Len(t, got, 1)
}

func TestDecoderRunningStatus(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.None})
	var got []message.Message
	emit := func(m message.Message) { got = append(got, m) }

	require.NoError(t, d.Feed([]byte{
		message.NoteOn | 0x0, 0x40, 0x7F,
		0x41, 0x7F, // running status reuse
	}, 0, 0, emit))
	require.Len(t, got, 2)
	require.Equal(t, []byte{message.NoteOn, 0x41, 0x7F}, got[1].Bytes)
}

func TestDecoderStrayDataByteDropped(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.None})
	var got []message.Message
	err := d.Feed([]byte{0x40, 0x7F}, 0, 0, func(m message.Message) { got = append(got, m) })
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDecoderRealTimeInterleavesMidSysEx(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.None})
	var got []message.Message
	emit := func(m message.Message) { got = append(got, m) }

	require.NoError(t, d.Feed([]byte{message.SysExStart, 0x01}, 0, 0, emit))
	require.Empty(t, got)

	require.NoError(t, d.Feed([]byte{message.TimingClock}, 0, 0, emit))
	require.Len(t, got, 1)
	require.Equal(t, []byte{message.TimingClock}, got[0].Bytes)

	require.NoError(t, d.Feed([]byte{0x02, message.SysExEnd}, 0, 0, emit))
	require.Len(t, got, 2)
	require.Equal(t, []byte{message.SysExStart, 0x01, 0x02, message.SysExEnd}, got[1].Bytes)
}

func TestDecoderSysExAcrossFeedCalls(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.None})
	var got []message.Message
	emit := func(m message.Message) { got = append(got, m) }

	require.NoError(t, d.Feed([]byte{message.SysExStart, 0x01, 0x02}, 0, 0, emit))
	require.Empty(t, got)
	require.NoError(t, d.Feed([]byte{0x03, 0x04}, 0, 0, emit))
	require.Empty(t, got)
	require.NoError(t, d.Feed([]byte{0x05, message.SysExEnd}, 0, 0, emit))
	require.Len(t, got, 1)
	require.Equal(t, []byte{message.SysExStart, 0x01, 0x02, 0x03, 0x04, 0x05, message.SysExEnd}, got[0].Bytes)
}

func TestDecoderIgnoreSysEx(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.None, Ignore: IgnoreMask{SysEx: true}})
	var got []message.Message
	err := d.Feed([]byte{message.SysExStart, 0x01, message.SysExEnd}, 0, 0, func(m message.Message) { got = append(got, m) })
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDecoderIgnoreTiming(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.None, Ignore: IgnoreMask{Timing: true}})
	var got []message.Message
	err := d.Feed([]byte{message.TimingClock, message.Start, message.Stop}, 0, 0, func(m message.Message) { got = append(got, m) })
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDecoderIgnoreSensing(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.None, Ignore: IgnoreMask{Sensing: true}})
	var got []message.Message
	err := d.Feed([]byte{message.ActiveSensing}, 0, 0, func(m message.Message) { got = append(got, m) })
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDecoderModeNoneAlwaysZero(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.None})
	var got []message.Message
	require.NoError(t, d.Feed([]byte{message.TimingClock}, 123, 0, func(m message.Message) { got = append(got, m) }))
	require.Equal(t, merr.Timestamp(0), got[0].Timestamp)
}

func TestDecoderModeAbsoluteWithCapability(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.Absolute, Caps: merr.Capabilities{Absolute: true}})
	var got []message.Message
	require.NoError(t, d.Feed([]byte{message.TimingClock}, 555, 0, func(m message.Message) { got = append(got, m) }))
	require.Equal(t, merr.Timestamp(555), got[0].Timestamp)
}

func TestDecoderModeAbsoluteFallsBackWithoutCapability(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.Absolute})
	var got []message.Message
	require.NoError(t, d.Feed([]byte{message.TimingClock}, 555, 0, func(m message.Message) { got = append(got, m) }))
	require.NotEqual(t, merr.Timestamp(555), got[0].Timestamp)
}

func TestDecoderModeRelativeFirstMessageIsZero(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.Relative, Caps: merr.Capabilities{Absolute: true}})
	var got []message.Message
	require.NoError(t, d.Feed([]byte{message.TimingClock}, 1000, 0, func(m message.Message) { got = append(got, m) }))
	require.Equal(t, merr.Timestamp(0), got[0].Timestamp)
}

func TestDecoderModeRelativeSubsequentIsDelta(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.Relative, Caps: merr.Capabilities{Absolute: true}})
	var got []message.Message
	emit := func(m message.Message) { got = append(got, m) }
	require.NoError(t, d.Feed([]byte{message.TimingClock}, 1000, 0, emit))
	require.NoError(t, d.Feed([]byte{message.TimingClock}, 1500, 0, emit))
	require.Len(t, got, 2)
	require.Equal(t, merr.Timestamp(500), got[1].Timestamp)
}

func TestDecoderModeAudioFrame(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.AudioFrame, Caps: merr.Capabilities{Samples: true}})
	var got []message.Message
	require.NoError(t, d.Feed([]byte{message.TimingClock}, 0, 42, func(m message.Message) { got = append(got, m) }))
	require.Equal(t, merr.Timestamp(42), got[0].Timestamp)
}

func TestDecoderModeAudioFrameWithoutCapabilityIsZero(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.AudioFrame})
	var got []message.Message
	require.NoError(t, d.Feed([]byte{message.TimingClock}, 0, 42, func(m message.Message) { got = append(got, m) }))
	require.Equal(t, merr.Timestamp(0), got[0].Timestamp)
}

func TestDecoderModeCustom(t *testing.T) {
	fn := func(absolute merr.Timestamp) merr.Timestamp { return absolute * 2 }
	d := NewDecoder(Options{Mode: merr.Custom, Caps: merr.Capabilities{Absolute: true}, CustomFunc: fn})
	var got []message.Message
	require.NoError(t, d.Feed([]byte{message.TimingClock}, 10, 0, func(m message.Message) { got = append(got, m) }))
	require.Equal(t, merr.Timestamp(20), got[0].Timestamp)
}

func TestDecoderModeCustomWithoutFuncIsZero(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.Custom})
	var got []message.Message
	require.NoError(t, d.Feed([]byte{message.TimingClock}, 10, 0, func(m message.Message) { got = append(got, m) }))
	require.Equal(t, merr.Timestamp(0), got[0].Timestamp)
}

func TestDecoderControlChangeNeedsTwoDataBytes(t *testing.T) {
	d := NewDecoder(Options{Mode: merr.None})
	var got []message.Message
	err := d.Feed([]byte{message.ControlChange | 0x2, 0x07, 0x40}, 0, 0, func(m message.Message) { got = append(got, m) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []byte{message.ControlChange | 0x2, 0x07, 0x40}, got[0].Bytes)
}
