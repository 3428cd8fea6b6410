package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Event variant tags emitted by the oracle program.
const (
	// tagNewUpdateRequest is Event::NewUpdateRequest{id, caller}.
	tagNewUpdateRequest byte = 0
)

// newRequestHeaderLen is the discriminant byte plus the u128 id field.
const newRequestHeaderLen = 1 + u128Size

// ErrNotRequest reports a payload whose discriminant is not the
// new-request tag. Not an error condition for the caller; such events are
// simply not addressed to the feeder.
var ErrNotRequest = errors.New("codec: not a new-request event")

// ErrMalformedEvent reports a new-request payload that does not match the
// declared layout.
var ErrMalformedEvent = errors.New("codec: malformed event payload")

// PendingRequest is one unresolved oracle request.
type PendingRequest struct {
	ID uint64
	// Caller is the requesting actor's address, passed through verbatim.
	Caller []byte
}

// DecodeNewRequest decodes a raw user-message payload into a PendingRequest.
//
// Layout: byte 0 = discriminant; bytes 1..17 = little-endian u128 request
// id; bytes 17.. = caller address. Returns ErrNotRequest for foreign
// discriminants without inspecting the rest of the payload, and
// ErrMalformedEvent for truncated or out-of-range new-request payloads.
func DecodeNewRequest(payload []byte) (PendingRequest, error) {
	if len(payload) == 0 {
		return PendingRequest{}, fmt.Errorf("%w: empty payload", ErrMalformedEvent)
	}
	if payload[0] != tagNewUpdateRequest {
		return PendingRequest{}, ErrNotRequest
	}
	if len(payload) < newRequestHeaderLen {
		return PendingRequest{}, fmt.Errorf("%w: %d bytes, need at least %d",
			ErrMalformedEvent, len(payload), newRequestHeaderLen)
	}

	id := binary.LittleEndian.Uint64(payload[1:9])
	// The wire field is a u128; ids beyond 64 bits would be silently
	// truncated, which could resolve the wrong request.
	for _, b := range payload[9:newRequestHeaderLen] {
		if b != 0 {
			return PendingRequest{}, fmt.Errorf("%w: request id exceeds 64 bits", ErrMalformedEvent)
		}
	}

	caller := make([]byte, len(payload)-newRequestHeaderLen)
	copy(caller, payload[newRequestHeaderLen:])

	return PendingRequest{ID: id, Caller: caller}, nil
}
