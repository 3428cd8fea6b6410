package codec

import (
	"encoding/binary"
	"fmt"
)

// Decoders for the outgoing action encodings. The feeder itself only
// encodes; these exist so callers can verify a constructed payload against
// the schema (and they back the encoder tests).

// DecodeUpdateValue decodes an UpdateValue action payload.
func DecodeUpdateValue(raw []byte) (UpdateValue, error) {
	if len(raw) != 1+2*u128Size {
		return UpdateValue{}, fmt.Errorf("update-value: want %d bytes, got %d", 1+2*u128Size, len(raw))
	}
	if raw[0] != tagUpdateValue {
		return UpdateValue{}, fmt.Errorf("update-value: unexpected tag %d", raw[0])
	}
	id, err := readU128(raw[1 : 1+u128Size])
	if err != nil {
		return UpdateValue{}, fmt.Errorf("update-value id: %w", err)
	}
	value, err := readU128(raw[1+u128Size:])
	if err != nil {
		return UpdateValue{}, fmt.Errorf("update-value value: %w", err)
	}
	return UpdateValue{ID: id, Value: value}, nil
}

// DecodeSetRandomValue decodes a SetRandomValue action payload.
func DecodeSetRandomValue(raw []byte) (SetRandomValue, error) {
	if len(raw) < 1+3*u128Size {
		return SetRandomValue{}, fmt.Errorf("set-random-value: truncated payload (%d bytes)", len(raw))
	}
	if raw[0] != tagSetRandomValue {
		return SetRandomValue{}, fmt.Errorf("set-random-value: unexpected tag %d", raw[0])
	}
	round, err := readU128(raw[1 : 1+u128Size])
	if err != nil {
		return SetRandomValue{}, fmt.Errorf("set-random-value round: %w", err)
	}

	var out SetRandomValue
	out.Round = round
	rest := raw[1+u128Size:]
	copy(out.Value.Randomness[0][:], rest[:u128Size])
	copy(out.Value.Randomness[1][:], rest[u128Size:2*u128Size])
	rest = rest[2*u128Size:]

	sig, rest, err := readBytes(rest)
	if err != nil {
		return SetRandomValue{}, fmt.Errorf("set-random-value signature: %w", err)
	}
	prev, rest, err := readBytes(rest)
	if err != nil {
		return SetRandomValue{}, fmt.Errorf("set-random-value prev signature: %w", err)
	}
	if len(rest) != 0 {
		return SetRandomValue{}, fmt.Errorf("set-random-value: %d trailing bytes", len(rest))
	}
	out.Value.Signature = sig
	out.Value.PrevSignature = prev
	return out, nil
}

// readU128 reads a little-endian u128 that must fit in 64 bits.
func readU128(field []byte) (uint64, error) {
	if len(field) != u128Size {
		return 0, fmt.Errorf("want %d bytes, got %d", u128Size, len(field))
	}
	for _, b := range field[8:] {
		if b != 0 {
			return 0, fmt.Errorf("value exceeds 64 bits")
		}
	}
	return binary.LittleEndian.Uint64(field[:8]), nil
}

// readBytes reads a compact-length-prefixed byte string and returns the
// remainder of the input.
func readBytes(buf []byte) ([]byte, []byte, error) {
	n, consumed, err := readCompact(buf)
	if err != nil {
		return nil, nil, err
	}
	buf = buf[consumed:]
	if uint32(len(buf)) < n {
		return nil, nil, fmt.Errorf("byte string truncated: want %d, have %d", n, len(buf))
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, buf[n:], nil
}
