// Package beacon fetches rounds from an external HTTP randomness beacon.
package beacon

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// randomnessSize is the byte length of one beacon output.
const randomnessSize = 32

// Record is one beacon round.
type Record struct {
	Round uint64
	// Randomness is the 32-byte beacon output.
	Randomness [randomnessSize]byte
	Signature  []byte
	// PrevSignature chains the round to its predecessor.
	PrevSignature []byte
}

// Halves splits the randomness into the two 16-byte halves of the on-chain
// seed pair.
func (r *Record) Halves() (lo, hi [16]byte) {
	copy(lo[:], r.Randomness[:16])
	copy(hi[:], r.Randomness[16:])
	return lo, hi
}

// Client talks to a drand-style HTTP beacon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds beacon client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a beacon client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("beacon URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// wireRecord is the beacon's JSON response shape.
type wireRecord struct {
	Round         uint64 `json:"round"`
	Randomness    string `json:"randomness"`
	Signature     string `json:"signature"`
	PrevSignature string `json:"previous_signature"`
}

// Latest fetches the most recent beacon round.
func (c *Client) Latest(ctx context.Context) (*Record, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/public/latest", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest round: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("beacon returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var wire wireRecord
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal round: %w", err)
	}

	randomness, err := hex.DecodeString(wire.Randomness)
	if err != nil {
		return nil, fmt.Errorf("decode randomness: %w", err)
	}
	if len(randomness) != randomnessSize {
		return nil, fmt.Errorf("randomness is %d bytes, want %d", len(randomness), randomnessSize)
	}
	signature, err := hex.DecodeString(wire.Signature)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	prevSignature, err := hex.DecodeString(wire.PrevSignature)
	if err != nil {
		return nil, fmt.Errorf("decode previous signature: %w", err)
	}

	record := &Record{
		Round:         wire.Round,
		Signature:     signature,
		PrevSignature: prevSignature,
	}
	copy(record.Randomness[:], randomness)
	return record, nil
}
