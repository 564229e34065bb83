package instate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/merr"
)

func umpSystemWord(status byte) uint32 {
	return (uint32(message.UMPSystem) << 28) | (uint32(status) << 16)
}

func TestUMPDecoderSingleWordMessage(t *testing.T) {
	d := NewUMPDecoder(Options{Mode: merr.None})
	var got []message.UMP
	err := d.Feed([]uint32{umpSystemWord(message.TimingClock)}, 0, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, got[0].Len)
}

func TestUMPDecoderWaitsForFullPacket(t *testing.T) {
	d := NewUMPDecoder(Options{Mode: merr.None})
	var got []message.UMP
	emit := func(u message.UMP) { got = append(got, u) }

	w0 := (uint32(message.UMPMIDI2ChannelVoice) << 28) | (uint32(message.M2NoteOn) << 20)
	require.NoError(t, d.Feed([]uint32{w0}, 0, 0, emit))
	require.Empty(t, got)

	require.NoError(t, d.Feed([]uint32{0x12345678}, 0, 0, emit))
	require.Len(t, got, 1)
	require.Equal(t, 2, got[0].Len)
	require.Equal(t, uint32(0x12345678), got[0].Words[1])
}

func TestUMPDecoderMultiplePacketsInOneFeed(t *testing.T) {
	d := NewUMPDecoder(Options{Mode: merr.None})
	var got []message.UMP
	err := d.Feed([]uint32{
		umpSystemWord(message.TimingClock),
		umpSystemWord(message.Start),
	}, 0, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestUMPDecoderIgnoreTiming(t *testing.T) {
	d := NewUMPDecoder(Options{Mode: merr.None, Ignore: IgnoreMask{Timing: true}})
	var got []message.UMP
	err := d.Feed([]uint32{umpSystemWord(message.TimingClock)}, 0, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestUMPDecoderIgnoreSensing(t *testing.T) {
	d := NewUMPDecoder(Options{Mode: merr.None, Ignore: IgnoreMask{Sensing: true}})
	var got []message.UMP
	err := d.Feed([]uint32{umpSystemWord(message.ActiveSensing)}, 0, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestUMPDecoderData64NeverFilteredPerFragment(t *testing.T) {
	d := NewUMPDecoder(Options{Mode: merr.None, Ignore: IgnoreMask{SysEx: true}})
	var got []message.UMP
	w0 := uint32(message.UMPData64) << 28
	err := d.Feed([]uint32{w0, 0}, 0, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestUMPDecoderFourWordPacket(t *testing.T) {
	d := NewUMPDecoder(Options{Mode: merr.None})
	var got []message.UMP
	w0 := uint32(message.UMPStream) << 28
	err := d.Feed([]uint32{w0, 1, 2}, 0, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Empty(t, got, "incomplete 4-word packet should not emit")

	err = d.Feed([]uint32{3}, 0, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 4, got[0].Len)
	require.Equal(t, [4]uint32{w0, 1, 2, 3}, got[0].Words)
}

func TestUMPDecoderModeAbsolute(t *testing.T) {
	d := NewUMPDecoder(Options{Mode: merr.Absolute, Caps: merr.Capabilities{Absolute: true}})
	var got []message.UMP
	err := d.Feed([]uint32{umpSystemWord(message.TimingClock)}, 999, 0, func(u message.UMP) { got = append(got, u) })
	require.NoError(t, err)
	require.Equal(t, merr.Timestamp(999), got[0].Timestamp)
}

func TestUMPDecoderModeRelative(t *testing.T) {
	d := NewUMPDecoder(Options{Mode: merr.Relative, Caps: merr.Capabilities{Absolute: true}})
	var got []message.UMP
	emit := func(u message.UMP) { got = append(got, u) }
	require.NoError(t, d.Feed([]uint32{umpSystemWord(message.TimingClock)}, 100, 0, emit))
	require.NoError(t, d.Feed([]uint32{umpSystemWord(message.Start)}, 300, 0, emit))
	require.Len(t, got, 2)
	require.Equal(t, merr.Timestamp(0), got[0].Timestamp)
	require.Equal(t, merr.Timestamp(200), got[1].Timestamp)
}
