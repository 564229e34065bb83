// Package instate implements the reusable MIDI 1.0 and UMP input decoders:
// byte/word accumulation, running status, SysEx reassembly, and the
// timestamp-mode reconciliation table of spec.md §4.2.
package instate

import (
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/merr"
)

// sysexState is the explicit small state machine spec.md §9 asks for in
// place of a boolean-flag cluster.
type sysexState int

const (
	sysexIdle sysexState = iota
	sysexInProgress
)

// IgnoreMask selects which incoming categories are dropped instead of
// delivered, per spec.md §3's "caller's ignore mask".
type IgnoreMask struct {
	SysEx   bool
	Timing  bool // clock, start/continue/stop, MTC quarter frame, song position pointer
	Sensing bool // active sensing
}

// Options configures a Decoder.
type Options struct {
	Mode       merr.Mode
	Caps       merr.Capabilities
	Ignore     IgnoreMask
	CustomFunc merr.CustomFunc // required when Mode == merr.Custom
}

// Decoder is the per-connection MIDI 1.0 byte-stream state machine of
// spec.md §4.2. Not safe for concurrent use by multiple goroutines; a
// backend owns exactly one Decoder per input connection.
type Decoder struct {
	opts Options

	buf           []byte
	runningStatus byte
	sysex         sysexState

	firstMessage bool
	lastAbsolute merr.Timestamp
	lastSteady   merr.Timestamp
}

// NewDecoder constructs a Decoder ready to accept slices via Feed.
func NewDecoder(opts Options) *Decoder {
	return &Decoder{opts: opts, firstMessage: true}
}

// Feed appends raw bytes arriving at absolute (the backend's best estimate
// of the first byte's timestamp, meaningful only if opts.Caps.Absolute)
// and invokes emit for every complete message decoded. samples is the
// audio-frame offset for this slice, used only in AudioFrame mode.
func (d *Decoder) Feed(data []byte, absolute merr.Timestamp, samples int64, emit func(message.Message)) error {
	drain := func() error {
		for {
			consumed, msg, ok, err := d.tryDecodeOne(absolute, samples)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			d.buf = d.buf[consumed:]
			if msg != nil {
				emit(*msg)
			}
		}
	}

	for _, b := range data {
		// A real-time byte arriving while an earlier message is still
		// incomplete is delivered on its own, ahead of that message; the
		// pending bytes stay buffered unchanged.
		if message.IsRealTime(b) && len(d.buf) > 0 {
			if err := drain(); err != nil {
				return err
			}
			if len(d.buf) > 0 {
				ts := d.timestampFor(absolute, samples)
				if !d.filtered(b) {
					emit(message.Message{Bytes: []byte{b}, Timestamp: ts})
				}
				continue
			}
		}
		d.buf = append(d.buf, b)
	}
	return drain()
}

// tryDecodeOne attempts to decode exactly one complete message from the
// front of d.buf. ok is false when d.buf holds an incomplete message and
// more bytes are needed.
func (d *Decoder) tryDecodeOne(absolute merr.Timestamp, samples int64) (consumed int, msg *message.Message, ok bool, err error) {
	if len(d.buf) == 0 {
		return 0, nil, false, nil
	}

	first := d.buf[0]

	// A real-time byte is a complete one-byte message. Feed delivers the
	// ones that arrive inside another message (including mid-SysEx) ahead
	// of it, without disturbing the pending state.
	if first >= 0xF8 {
		ts := d.timestampFor(absolute, samples)
		if d.filtered(first) {
			return 1, nil, true, nil
		}
		return 1, ptr(message.Message{Bytes: []byte{first}, Timestamp: ts}), true, nil
	}

	if d.sysex == sysexInProgress {
		return d.continueSysEx(absolute, samples)
	}

	if first == message.SysExStart {
		return d.startSysEx(absolute, samples)
	}

	var status byte
	var dataStart int
	if first&0x80 != 0 {
		status = first
		dataStart = 1
	} else {
		// Running status: a data byte with no preceding status byte in
		// this slice reuses the last channel-voice status.
		if d.runningStatus == 0 {
			// Malformed stream: drop the stray data byte.
			return 1, nil, true, nil
		}
		status = d.runningStatus
		dataStart = 0
	}

	n := message.DataLen(status)
	if n < 0 {
		// Unknown status with no SysEx framing; drop it defensively.
		return dataStart, nil, true, nil
	}
	need := dataStart + n
	if len(d.buf) < need {
		return 0, nil, false, nil // wait for more bytes
	}

	if message.IsChannelVoice(status) {
		d.runningStatus = status
	}

	full := make([]byte, 0, need)
	full = append(full, status)
	full = append(full, d.buf[dataStart:need]...)

	if d.filtered(status) {
		return need, nil, true, nil
	}

	ts := d.timestampFor(absolute, samples)
	return need, ptr(message.Message{Bytes: full, Timestamp: ts}), true, nil
}

func (d *Decoder) startSysEx(absolute merr.Timestamp, samples int64) (int, *message.Message, bool, error) {
	end := indexByte(d.buf, message.SysExEnd)
	if end < 0 {
		d.sysex = sysexInProgress
		return 0, nil, false, nil
	}
	full := append([]byte(nil), d.buf[:end+1]...)
	d.sysex = sysexIdle
	if d.opts.Ignore.SysEx {
		return end + 1, nil, true, nil
	}
	ts := d.timestampFor(absolute, samples)
	return end + 1, ptr(message.Message{Bytes: full, Timestamp: ts}), true, nil
}

func (d *Decoder) continueSysEx(absolute merr.Timestamp, samples int64) (int, *message.Message, bool, error) {
	end := indexByte(d.buf, message.SysExEnd)
	if end < 0 {
		return 0, nil, false, nil
	}
	full := append([]byte(nil), d.buf[:end+1]...)
	d.sysex = sysexIdle
	if d.opts.Ignore.SysEx {
		return end + 1, nil, true, nil
	}
	ts := d.timestampFor(absolute, samples)
	return end + 1, ptr(message.Message{Bytes: full, Timestamp: ts}), true, nil
}

// filtered reports whether status should be dropped per the ignore mask.
func (d *Decoder) filtered(status byte) bool {
	switch status {
	case message.TimingClock, message.Start, message.Continue, message.Stop, message.MTCQuarterFrame, message.SongPosition:
		return d.opts.Ignore.Timing
	case message.ActiveSensing:
		return d.opts.Ignore.Sensing
	default:
		return false
	}
}

// timestampFor implements the delivered-timestamp table of spec.md §4.2.
func (d *Decoder) timestampFor(absolute merr.Timestamp, samples int64) merr.Timestamp {
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

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func ptr(m message.Message) *message.Message { return &m }
