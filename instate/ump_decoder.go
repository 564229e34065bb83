package instate

import (
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/merr"
)

// UMPDecoder accumulates 32-bit words into complete UMP packets, per
// spec.md §4.2's UMP decoding rules: the word count is determined by the
// top nibble of the first word, and an incomplete trailing UMP remains
// buffered for the next Feed call.
type UMPDecoder struct {
	opts Options

	buf []uint32

	firstMessage bool
	lastAbsolute merr.Timestamp
	lastSteady   merr.Timestamp
}

// NewUMPDecoder constructs a UMPDecoder ready to accept words via Feed.
func NewUMPDecoder(opts Options) *UMPDecoder {
	return &UMPDecoder{opts: opts, firstMessage: true}
}

// Feed appends incoming words and invokes emit for every complete UMP
// decoded, applying the configured ignore mask.
func (d *UMPDecoder) Feed(words []uint32, absolute merr.Timestamp, samples int64, emit func(message.UMP)) error {
	d.buf = append(d.buf, words...)

	for len(d.buf) > 0 {
		mtype := byte(d.buf[0] >> 28)
		need := message.WordsFor(mtype)
		if len(d.buf) < need {
			break
		}
		var u message.UMP
		copy(u.Words[:], d.buf[:need])
		u.Len = need
		u.Timestamp = d.timestampFor(absolute, samples)
		d.buf = d.buf[need:]

		if d.filteredUMP(u) {
			continue
		}
		emit(u)
	}
	return nil
}

// filteredUMP applies the ignore mask by message type, and for System
// messages, by the status byte carried in the word payload, per
// spec.md §4.2.
func (d *UMPDecoder) filteredUMP(u message.UMP) bool {
	switch u.MessageType() {
	case message.UMPData64:
		// SysEx7 packets are always delivered: Ignore.SysEx is not
		// applied to UMP input, here or anywhere else in this package.
		return false
	case message.UMPSystem:
		status := byte((u.Words[0] >> 16) & 0xFF)
		switch status {
		case message.TimingClock, message.Start, message.Continue, message.Stop, message.MTCQuarterFrame, message.SongPosition:
			return d.opts.Ignore.Timing
		case message.ActiveSensing:
			return d.opts.Ignore.Sensing
		}
	}
	return false
}

func (d *UMPDecoder) timestampFor(absolute merr.Timestamp, samples int64) merr.Timestamp {
	switch d.opts.Mode {
	case merr.None:
		return 0
	case merr.Relative:
		if d.firstMessage {
			d.firstMessage = false
			if d.opts.Caps.Absolute {
				d.lastAbsolute = absolute
			} else {
				d.lastSteady = merr.SteadyNow()
			}
			return 0
		}
		if d.opts.Caps.Absolute {
			delta := absolute - d.lastAbsolute
			d.lastAbsolute = absolute
			return delta
		}
		now := merr.SteadyNow()
		delta := now - d.lastSteady
		d.lastSteady = now
		return delta
	case merr.Absolute:
		if d.opts.Caps.Absolute {
			return absolute
		}
		return merr.SteadyNow()
	case merr.SystemMonotonic:
		return merr.SteadyNow()
	case merr.AudioFrame:
		if d.opts.Caps.Samples {
			return merr.Timestamp(samples)
		}
		return 0
	case merr.Custom:
		if d.opts.CustomFunc == nil {
			return 0
		}
		if d.opts.Caps.Absolute {
			return d.opts.CustomFunc(absolute)
		}
		return d.opts.CustomFunc(merr.SteadyNow())
	default:
		return 0
	}
}
