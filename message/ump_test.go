package message

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWordsFor(t *testing.T) {
	require.Equal(t, 1, WordsFor(UMPUtility))
	require.Equal(t, 1, WordsFor(UMPMIDI1ChannelVoice))
	require.Equal(t, 2, WordsFor(UMPData64))
	require.Equal(t, 2, WordsFor(UMPMIDI2ChannelVoice))
	require.Equal(t, 3, WordsFor(0xB))
	require.Equal(t, 4, WordsFor(UMPData128))
	require.Equal(t, 4, WordsFor(UMPStream))
	require.Equal(t, 1, WordsFor(0x10), "unknown nibble falls back to 1 word")
}

func TestMessageTypeAndGroup(t *testing.T) {
	u := NewUMP1(0x21903040, 0)
	require.Equal(t, byte(0x2), u.MessageType())
	require.Equal(t, byte(0x1), u.Group())
}

func TestU7ToU16Extremes(t *testing.T) {
	require.Equal(t, uint16(0x0000), U7ToU16(0x00))
	require.Equal(t, uint16(0xFFFF), U7ToU16(0x7F))
}

func TestU7ToU16Monotonic(t *testing.T) {
	var prev uint16
	for v := byte(0); v <= 0x7F; v++ {
		got := U7ToU16(v)
		require.GreaterOrEqual(t, got, prev)
		prev = got
	}
}
