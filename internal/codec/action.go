// Package codec encodes oracle actions and decodes oracle events for the
// Gear message wire format: a leading variant tag byte followed by
// little-endian u128 numerics and compact-length-prefixed byte strings.
package codec

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Action variant tags, matching the declaration order of the on-chain
// action enums.
const (
	// tagUpdateValue is Action::UpdateValue in the value oracle
	// (RequestValue=0, ChangeManager=1, UpdateValue=2).
	tagUpdateValue byte = 2
	// tagSetRandomValue is Action::SetRandomValue in the randomness oracle.
	tagSetRandomValue byte = 0
)

// u128Size is the encoded width of the on-chain u128 numerics.
const u128Size = 16

// Action is an outgoing oracle message payload.
type Action interface {
	// Encode returns the canonical binary encoding.
	Encode() ([]byte, error)
}

// UpdateValue resolves one pending request with a value.
type UpdateValue struct {
	ID    uint64
	Value uint64
}

// Encode implements Action.
func (a UpdateValue) Encode() ([]byte, error) {
	buf := make([]byte, 0, 1+2*u128Size)
	buf = append(buf, tagUpdateValue)
	buf = appendU128(buf, a.ID)
	buf = appendU128(buf, a.Value)
	return buf, nil
}

// Random is one randomness-beacon output as stored on chain.
type Random struct {
	// Randomness is the beacon output split into the two u128-sized halves
	// of the on-chain seed pair.
	Randomness [2][u128Size]byte
	Signature  []byte
	// PrevSignature chains this round to the previous one.
	PrevSignature []byte
}

// SetRandomValue publishes one beacon round.
type SetRandomValue struct {
	Round uint64
	Value Random
}

// Encode implements Action.
func (a SetRandomValue) Encode() ([]byte, error) {
	buf := make([]byte, 0, 1+3*u128Size+len(a.Value.Signature)+len(a.Value.PrevSignature)+10)
	buf = append(buf, tagSetRandomValue)
	buf = appendU128(buf, a.Round)
	buf = append(buf, a.Value.Randomness[0][:]...)
	buf = append(buf, a.Value.Randomness[1][:]...)
	buf = appendBytes(buf, a.Value.Signature)
	buf = appendBytes(buf, a.Value.PrevSignature)
	return buf, nil
}

// EncodeActionHex encodes an action as the 0x-prefixed hex payload accepted
// by the node's send-message call.
func EncodeActionHex(a Action) (string, error) {
	raw, err := a.Encode()
	if err != nil {
		return "", fmt.Errorf("encode action: %w", err)
	}
	return "0x" + hex.EncodeToString(raw), nil
}

// appendU128 appends v as a little-endian u128, zero-extended above 64 bits.
func appendU128(buf []byte, v uint64) []byte {
	var field [u128Size]byte
	binary.LittleEndian.PutUint64(field[:8], v)
	return append(buf, field[:]...)
}

// appendBytes appends a compact-length-prefixed byte string.
func appendBytes(buf, b []byte) []byte {
	buf = appendCompact(buf, uint32(len(b)))
	return append(buf, b...)
}
