package smf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odaacabeef/midicore/message"
)

func TestVLQRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0x7F, 0x80, 0x2000, 0x3FFF, 0x200000, 0x0FFFFFFF} {
		enc := encodeVLQ(v)
		got, n, ok := decodeVLQ(enc)
		require.True(t, ok)
		require.Equal(t, len(enc), n)
		require.Equal(t, v, got)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	f := &File{
		Format:   Format1,
		Division: Division{TicksPerQuarter: 480},
		Tracks: []Track{
			{
				Events: []Event{
					{DeltaTicks: 0, Meta: &MetaEvent{Type: MetaTempo, Data: []byte{0x07, 0xA1, 0x20}}},
					{DeltaTicks: 0, Message: &message.Message{Bytes: []byte{message.NoteOn | 0x0, 0x3C, 0x64}}},
					{DeltaTicks: 480, Message: &message.Message{Bytes: []byte{message.NoteOff | 0x0, 0x3C, 0x40}}},
					{DeltaTicks: 0, Meta: &MetaEvent{Type: MetaEndOfTrack}},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))

	got, result, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, Validated, result)
	require.Equal(t, f.Format, got.Format)
	require.Equal(t, f.Division, got.Division)
	require.Len(t, got.Tracks, 1)

	evs := got.Tracks[0].Events
	require.Len(t, evs, 4)
	require.Equal(t, MetaTempo, evs[0].Meta.Type)
	require.Equal(t, []byte{message.NoteOn, 0x3C, 0x64}, evs[1].Message.Bytes)
	require.Equal(t, uint32(480), evs[2].DeltaTicks)
	require.Equal(t, []byte{message.NoteOff, 0x3C, 0x40}, evs[2].Message.Bytes)
	require.Equal(t, MetaEndOfTrack, evs[3].Meta.Type)
}

func TestWriteSynthesizesEndOfTrack(t *testing.T) {
	f := &File{
		Format:   Format0,
		Division: Division{TicksPerQuarter: 96},
		Tracks: []Track{
			{Events: []Event{
				{DeltaTicks: 0, Message: &message.Message{Bytes: []byte{message.NoteOn, 0x40, 0x7F}}},
			}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))

	got, result, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, Validated, result, "Write synthesized an end-of-track meta event, so the parse is Validated")
	require.Len(t, got.Tracks[0].Events, 2)
}

func TestReadInvalidMissingHeader(t *testing.T) {
	_, result, err := Read(bytes.NewReader([]byte("not a midi file at all")))
	require.Error(t, err)
	require.Equal(t, Invalid, result)
}

func TestReadIncompleteTruncatedTrack(t *testing.T) {
	f := &File{
		Format:   Format0,
		Division: Division{TicksPerQuarter: 480},
		Tracks: []Track{{Events: []Event{
			{Meta: &MetaEvent{Type: MetaEndOfTrack}},
		}}},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))

	truncated := buf.Bytes()[:len(buf.Bytes())-2]
	_, result, err := Read(bytes.NewReader(truncated))
	require.NoError(t, err)
	require.Equal(t, Incomplete, result)
}

func TestEndTimeWithTempoChange(t *testing.T) {
	f := &File{
		Division: Division{TicksPerQuarter: 480},
		Tracks: []Track{{Events: []Event{
			{DeltaTicks: 480, Message: &message.Message{Bytes: []byte{message.NoteOn, 0x40, 0x7F}}},
			{DeltaTicks: 0, Meta: &MetaEvent{Type: MetaTempo, Data: []byte{0x03, 0xD0, 0x90}}}, // 250000 us/qn
			{DeltaTicks: 480, Message: &message.Message{Bytes: []byte{message.NoteOff, 0x40, 0x00}}},
		}}},
	}
	// First 480 ticks at default 500000us/qn = 500ms; next 480 ticks at
	// 250000us/qn = 250ms. Total 750ms.
	require.Equal(t, int64(750*1e6), f.EndTime())
}

func TestTrackAbsoluteTicks(t *testing.T) {
	tr := Track{Events: []Event{
		{DeltaTicks: 100},
		{DeltaTicks: 50},
		{DeltaTicks: 0},
		{DeltaTicks: 200},
	}}
	require.Equal(t, []uint32{100, 150, 150, 350}, tr.AbsoluteTicks())
}

func TestMetaEventBytesRoundTrip(t *testing.T) {
	m := MetaEvent{Type: MetaTrackName, Data: []byte("lead synth")}
	b := m.Bytes()
	require.Equal(t, byte(0xFF), b[0])
	require.Equal(t, MetaTrackName, b[1])
	text, ok := MetaEvent{Type: MetaText, Data: []byte("hello")}.Text()
	require.True(t, ok)
	require.Equal(t, "hello", text)
}
