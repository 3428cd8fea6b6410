package chain

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// JSON-RPC envelope
// =============================================================================

// RPCRequest is a JSON-RPC 2.0 request.
type RPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// RPCResponse is a JSON-RPC 2.0 response.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
	ID      int             `json:"id"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// =============================================================================
// Node types
// =============================================================================

// GasInfo is the node's gas estimate for a handle call.
type GasInfo struct {
	// MinLimit is the minimum gas limit that lets the call complete.
	MinLimit uint64 `json:"min_limit"`
	Reserved uint64 `json:"reserved"`
	Burned   uint64 `json:"burned"`
}

// Message is an unsigned send-message call to a program.
type Message struct {
	// Destination is the target program address (0x-prefixed hex).
	Destination string `json:"destination"`
	// Payload is the encoded action (0x-prefixed hex).
	Payload  string `json:"payload"`
	GasLimit uint64 `json:"gasLimit"`
	Value    uint64 `json:"value"`
	Nonce    uint64 `json:"nonce"`
}

// SigningPayload returns the canonical byte sequence signed by the sender:
// destination bytes, payload bytes, then gas limit, value and nonce as
// little-endian u64s.
func (m *Message) SigningPayload() ([]byte, error) {
	dest, err := DecodeHex(m.Destination)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	payload, err := DecodeHex(m.Payload)
	if err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}

	buf := make([]byte, 0, len(dest)+len(payload)+24)
	buf = append(buf, dest...)
	buf = append(buf, payload...)
	buf = binary.LittleEndian.AppendUint64(buf, m.GasLimit)
	buf = binary.LittleEndian.AppendUint64(buf, m.Value)
	buf = binary.LittleEndian.AppendUint64(buf, m.Nonce)
	return buf, nil
}

// SignedMessage is a message plus its sender signature, ready to broadcast.
type SignedMessage struct {
	Message
	// Signer is the sender address (0x-prefixed hex public key).
	Signer string `json:"signer"`
	// Signature is the 0x-prefixed hex signature over SigningPayload.
	Signature string `json:"signature"`
}

// Message inclusion states reported by the node.
const (
	StatusFinalized = "finalized"
	StatusInvalid   = "invalid"
	StatusDropped   = "dropped"
)

// MessageStatus is the node's view of a broadcast message.
type MessageStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// UserMessageEvent is one message-sent notification from the event stream.
type UserMessageEvent struct {
	// Source is the emitting program address.
	Source string `json:"source"`
	// Destination is the recipient address.
	Destination string `json:"destination"`
	// Payload is the raw event payload.
	Payload HexBytes `json:"payload"`
}

// HexBytes unmarshals a 0x-prefixed hex JSON string into raw bytes.
type HexBytes []byte

// UnmarshalJSON implements json.Unmarshaler.
func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := DecodeHex(s)
	if err != nil {
		return err
	}
	*h = raw
	return nil
}

// MarshalJSON implements json.Marshaler.
func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + hex.EncodeToString(h))
}

// DecodeHex decodes a hex string with or without the 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}
