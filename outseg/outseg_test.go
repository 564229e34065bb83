package outseg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/message"
)

func TestSysExChunkerSplitsAndConcatenatesExactly(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i)
	}

	var writes [][]byte
	c := &SysExChunker{Policy: ChunkingPolicy{MaxChunkBytes: 200}}
	err := c.Write(data, func(chunk []byte) error {
		writes = append(writes, append([]byte(nil), chunk...))
		return nil
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(writes), 6)

	var got []byte
	for _, w := range writes {
		require.LessOrEqual(t, len(w), 200)
		got = append(got, w...)
	}
	require.True(t, bytes.Equal(data, got))
}

func TestSysExChunkerAbortsOnWaitFalse(t *testing.T) {
	data := make([]byte, 100)
	writeCount := 0
	c := &SysExChunker{Policy: ChunkingPolicy{
		MaxChunkBytes: 10,
		Wait: func(delay int64, written int) bool {
			return written < 30
		},
	}}
	err := c.Write(data, func(chunk []byte) error {
		writeCount++
		return nil
	})
	require.Error(t, err)
	var e *merr.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, merr.IOError, e.Category)
	require.Equal(t, 3, writeCount, "no further writes after wait returns false")
}

func TestSysExChunkerRespectsAvailableSpace(t *testing.T) {
	data := make([]byte, 50)
	c := &SysExChunker{Policy: ChunkingPolicy{
		MaxChunkBytes:  200,
		AvailableSpace: func() int { return 7 },
	}}
	var writes [][]byte
	err := c.Write(data, func(chunk []byte) error {
		writes = append(writes, chunk)
		return nil
	})
	require.NoError(t, err)
	for _, w := range writes {
		require.LessOrEqual(t, len(w), 7)
	}
}

func TestSysExChunkerPrefersBoundary(t *testing.T) {
	data := make([]byte, 12)
	for i := range data {
		data[i] = 0x01
	}
	data[5] = 0xF7
	c := &SysExChunker{Policy: ChunkingPolicy{MaxChunkBytes: 8}}
	var writes [][]byte
	err := c.Write(data, func(chunk []byte) error {
		writes = append(writes, append([]byte(nil), chunk...))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, byte(0xF7), writes[0][len(writes[0])-1])
}

func TestUMPSegmenterFlushesOnOverflow(t *testing.T) {
	s := &UMPSegmenter{MaxListBytes: 10}
	var lists [][]uint32

	u1 := message.NewUMP1(0x20903C64, 0)
	u2 := message.NewUMP2(0x40903C00, 0xFFFF0000, 0)

	require.NoError(t, s.Write(u1, func(words []uint32, n int) error {
		lists = append(lists, words)
		return nil
	}))
	require.NoError(t, s.Write(u2, func(words []uint32, n int) error {
		lists = append(lists, words)
		return nil
	}))
	require.NoError(t, s.Flush(func(words []uint32, n int) error {
		lists = append(lists, words)
		return nil
	}))

	require.Len(t, lists, 2)
	require.Len(t, lists[0], 1)
	require.Len(t, lists[1], 2)
}

func TestUMPSegmenterRejectsOversizedSingleUMP(t *testing.T) {
	s := &UMPSegmenter{MaxListBytes: 4}
	u := message.NewUMP2(0, 0, 0)
	err := s.Write(u, func(words []uint32, n int) error { return nil })
	require.Error(t, err)
}
