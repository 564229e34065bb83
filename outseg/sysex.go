// Package outseg implements the output-path segmentation of spec.md §4.4:
// SysEx chunking against a transport's buffer limits with application
// pacing, and UMP segmentation into event-list-sized containers.
package outseg

import "github.com/odaacabeef/midicore/merr"

// WaitFunc is invoked between chunks with the required inter-chunk delay
// and the number of bytes written so far. Returning false aborts the send
// cleanly.
type WaitFunc func(requiredDelayNanos int64, bytesWrittenSoFar int) bool

// AvailableSpaceFunc reports how many bytes the transport can currently
// accept in one write; the chunker never exceeds min(policy limit, this).
// A nil AvailableSpaceFunc means "no additional limit beyond the policy".
type AvailableSpaceFunc func() int

// WriteFunc performs one chunk write; a non-nil error aborts the send.
type WriteFunc func(chunk []byte) error

// ChunkingPolicy bounds how an outbound SysEx byte stream is sliced.
type ChunkingPolicy struct {
	MaxChunkBytes    int
	InterChunkDelay  int64 // nanoseconds
	Wait             WaitFunc
	AvailableSpace   AvailableSpaceFunc
}

// SysExChunker slices an outbound byte stream so no single write exceeds
// the lesser of the policy limit and the transport's currently available
// space, preferring SysEx 0xF7 boundaries when a break falls inside one.
type SysExChunker struct {
	Policy ChunkingPolicy
}

// Write slices data according to the policy and calls write for each
// chunk, pacing between chunks via Policy.Wait. It returns an io-error if
// the wait function aborts mid-stream.
func (c *SysExChunker) Write(data []byte, write WriteFunc) error {
	written := 0
	for len(data) > 0 {
		limit := c.Policy.MaxChunkBytes
		if limit <= 0 || limit > len(data) {
			limit = len(data)
		}
		if c.Policy.AvailableSpace != nil {
			if avail := c.Policy.AvailableSpace(); avail > 0 && avail < limit {
				limit = avail
			}
		}
		if limit <= 0 {
			limit = len(data)
		}

		end := limit
		if end < len(data) {
			end = preferSysExBoundary(data, end)
		}

		chunk := data[:end]
		if err := write(chunk); err != nil {
			return merr.Wrap(merr.IOError, err, "sysex chunk write failed")
		}
		written += len(chunk)
		data = data[end:]

		if len(data) == 0 {
			break
		}
		if c.Policy.Wait != nil {
			if !c.Policy.Wait(c.Policy.InterChunkDelay, written) {
				return merr.New(merr.IOError, "sysex send aborted by wait function")
			}
		}
	}
	return nil
}

// preferSysExBoundary looks backward from limit for a 0xF7 end-of-SysEx
// byte to break on, so a chunk boundary doesn't fall in the middle of a
// nested/concatenated SysEx message when a cleaner break is nearby. Falls
// back to the hard limit if none is found close by.
func preferSysExBoundary(data []byte, limit int) int {
	const lookback = 8
	start := limit - lookback
	if start < 1 {
		start = 1
	}
	for i := limit; i > start; i-- {
		if data[i-1] == 0xF7 {
			return i
		}
	}
	return limit
}
