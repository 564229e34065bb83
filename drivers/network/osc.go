// Package network implements the OSC-over-UDP transport of spec.md §6:
// UDP datagrams carrying OSC-formatted bundles/messages, ",m" for
// embedded MIDI 1 payloads (4-byte groups: port byte + 3 MIDI bytes) and
// ",M" for embedded UMP payloads (4-byte-aligned words). No third-party
// OSC library appears anywhere in the retrieval pack, so this codec is
// hand-rolled stdlib — see DESIGN.md for that justification.
package network

import (
	"encoding/binary"

	"github.com/odaacabeef/midicore/merr"
)

// MaxDatagramBytes is the hard UDP payload cap of spec.md §6; a packet
// larger than this is rejected rather than fragmented.
const MaxDatagramBytes = 65507

// EncodeMIDI1 builds an OSC message with address addr and type tag ",m",
// one 4-byte group per MIDI 1 message: a port byte (always 0 here; we run
// one address per logical port) followed by up to 3 MIDI bytes, zero
// padded. Messages longer than 3 bytes (SysEx) are not representable in
// a single ",m" group; this package has no other encoding for them.
func EncodeMIDI1(addr string, groups [][4]byte) ([]byte, error) {
	b := appendOSCString(nil, addr)
	tag := ",m" + repeat('m', len(groups)-1)
	if len(groups) == 0 {
		tag = ","
	}
	b = appendOSCString(b, tag)
	for _, g := range groups {
		b = append(b, g[0], g[1], g[2], g[3])
	}
	if len(b) > MaxDatagramBytes {
		return nil, merr.New(merr.MessageSize, "OSC datagram exceeds 65507 bytes")
	}
	return b, nil
}

// EncodeUMP builds an OSC message with address addr and type tag ",M",
// each UMP's words packed big-endian, 4-byte aligned.
func EncodeUMP(addr string, words []uint32) ([]byte, error) {
	b := appendOSCString(nil, addr)
	b = appendOSCString(b, ",M")
	for _, w := range words {
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], w)
		b = append(b, tmp[:]...)
	}
	if len(b) > MaxDatagramBytes {
		return nil, merr.New(merr.MessageSize, "OSC datagram exceeds 65507 bytes")
	}
	return b, nil
}

// Decode parses an OSC message/bundle datagram, returning the raw MIDI 1
// groups or UMP words found for a ",m"/",M" typed message. Bundle
// timetags are parsed but not honored as scheduling hints in this core
// (see SPEC_FULL.md §9's open-question resolution).
func Decode(datagram []byte) (addr string, midiGroups [][4]byte, umpWords []uint32, err error) {
	if len(datagram) >= 8 && string(datagram[:7]) == "#bundle" {
		return decodeBundle(datagram)
	}
	return decodeMessage(datagram)
}

func decodeBundle(datagram []byte) (string, [][4]byte, []uint32, error) {
	// Skip "#bundle\0" + 8-byte timetag.
	if len(datagram) < 16 {
		return "", nil, nil, merr.New(merr.BadMessage, "truncated OSC bundle")
	}
	rest := datagram[16:]
	for len(rest) >= 4 {
		size := binary.BigEndian.Uint32(rest[:4])
		rest = rest[4:]
		if uint32(len(rest)) < size {
			return "", nil, nil, merr.New(merr.BadMessage, "truncated OSC bundle element")
		}
		elem := rest[:size]
		rest = rest[size:]
		addr, mg, uw, err := decodeMessage(elem)
		if err == nil && (len(mg) > 0 || len(uw) > 0) {
			return addr, mg, uw, nil
		}
	}
	return "", nil, nil, merr.New(merr.BadMessage, "no MIDI content in OSC bundle")
}

func decodeMessage(datagram []byte) (string, [][4]byte, []uint32, error) {
	addr, rest, err := readOSCString(datagram)
	if err != nil {
		return "", nil, nil, err
	}
	tag, rest, err := readOSCString(rest)
	if err != nil {
		return "", nil, nil, err
	}
	if len(tag) == 0 || tag[0] != ',' {
		return "", nil, nil, merr.New(merr.BadMessage, "missing OSC type tag")
	}
	switch tag[1:] {
	case "":
		return addr, nil, nil, nil
	default:
	}

	switch tag[1] {
	case 'm':
		n := len(tag) - 1
		if len(rest) < n*4 {
			return "", nil, nil, merr.New(merr.BadMessage, "truncated MIDI 1 OSC payload")
		}
		groups := make([][4]byte, n)
		for i := 0; i < n; i++ {
			copy(groups[i][:], rest[i*4:i*4+4])
		}
		return addr, groups, nil, nil
	case 'M':
		if len(rest)%4 != 0 {
			return "", nil, nil, merr.New(merr.BadMessage, "misaligned UMP OSC payload")
		}
		words := make([]uint32, len(rest)/4)
		for i := range words {
			words[i] = binary.BigEndian.Uint32(rest[i*4 : i*4+4])
		}
		return addr, nil, words, nil
	default:
		return "", nil, nil, merr.Newf(merr.BadMessage, "unsupported OSC type tag %q", tag)
	}
}

// appendOSCString appends s as a null-terminated, 4-byte-aligned OSC
// string.
func appendOSCString(b []byte, s string) []byte {
	b = append(b, s...)
	b = append(b, 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

func readOSCString(b []byte) (string, []byte, error) {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	if i == len(b) {
		return "", nil, merr.New(merr.BadMessage, "unterminated OSC string")
	}
	s := string(b[:i])
	aligned := (i + 4) &^ 3
	if aligned > len(b) {
		return "", nil, merr.New(merr.BadMessage, "truncated OSC string padding")
	}
	return s, b[aligned:], nil
}

func repeat(c byte, n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = c
	}
	return string(b)
}
