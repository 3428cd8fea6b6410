// Package chain provides the Gear node RPC client used by the feeder.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a JSON-RPC client for a Gear node.
type Client struct {
	rpcURL     string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	RPCURL  string
	Timeout time.Duration
}

// NewClient creates a new node client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		rpcURL: cfg.RPCURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// =============================================================================
// Core RPC Method
// =============================================================================

// Call makes an RPC call to the node.
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	req := RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}

// =============================================================================
// State and gas queries
// =============================================================================

// ReadState issues a read-only state query against a program. The query is
// the encoded state-query payload as 0x hex; the result shape depends on
// the query.
func (c *Client) ReadState(ctx context.Context, programID, queryHex string) (json.RawMessage, error) {
	return c.Call(ctx, "gear_readState", []interface{}{programID, queryHex})
}

// CalculateHandleGas asks the node to estimate gas for a handle call.
func (c *Client) CalculateHandleGas(ctx context.Context, source, programID, payloadHex string, value uint64) (*GasInfo, error) {
	result, err := c.Call(ctx, "gear_calculateHandleGas", []interface{}{source, programID, payloadHex, value})
	if err != nil {
		return nil, err
	}

	var info GasInfo
	if err := json.Unmarshal(result, &info); err != nil {
		return nil, fmt.Errorf("unmarshal gas info: %w", err)
	}
	return &info, nil
}

// AccountNonce returns the next transaction nonce for an address.
func (c *Client) AccountNonce(ctx context.Context, address string) (uint64, error) {
	result, err := c.Call(ctx, "system_accountNextIndex", []interface{}{address})
	if err != nil {
		return 0, err
	}

	var nonce uint64
	if err := json.Unmarshal(result, &nonce); err != nil {
		return 0, fmt.Errorf("unmarshal nonce: %w", err)
	}
	return nonce, nil
}

// =============================================================================
// Message submission
// =============================================================================

// SubmitMessage broadcasts a signed send-message call and returns its hash.
func (c *Client) SubmitMessage(ctx context.Context, msg *SignedMessage) (string, error) {
	result, err := c.Call(ctx, "gear_submitMessage", []interface{}{msg})
	if err != nil {
		return "", err
	}

	var hash string
	if err := json.Unmarshal(result, &hash); err != nil {
		return "", fmt.Errorf("unmarshal message hash: %w", err)
	}
	return hash, nil
}

// GetMessageStatus returns the node's current status for a broadcast message.
func (c *Client) GetMessageStatus(ctx context.Context, hash string) (*MessageStatus, error) {
	result, err := c.Call(ctx, "gear_getMessageStatus", []interface{}{hash})
	if err != nil {
		return nil, err
	}

	var status MessageStatus
	if err := json.Unmarshal(result, &status); err != nil {
		return nil, fmt.Errorf("unmarshal message status: %w", err)
	}
	return &status, nil
}

// DefaultPollInterval is the default interval for polling message status.
const DefaultPollInterval = 2 * time.Second

// AwaitFinalized polls a message's status until the node reports a terminal
// state. An invalid or dropped message is an error.
func (c *Client) AwaitFinalized(ctx context.Context, hash string, pollInterval time.Duration) error {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			status, err := c.GetMessageStatus(ctx, hash)
			if err != nil {
				return err
			}
			switch status.Status {
			case StatusFinalized:
				return nil
			case StatusInvalid, StatusDropped:
				if status.Error != "" {
					return fmt.Errorf("message %s: %s: %s", hash, status.Status, status.Error)
				}
				return fmt.Errorf("message %s: %s", hash, status.Status)
			}
		}
	}
}

// SubmitMessageAndWait broadcasts a signed message and waits for the node
// to report a terminal state.
func (c *Client) SubmitMessageAndWait(ctx context.Context, msg *SignedMessage, pollInterval time.Duration) (string, error) {
	hash, err := c.SubmitMessage(ctx, msg)
	if err != nil {
		return "", err
	}
	if err := c.AwaitFinalized(ctx, hash, pollInterval); err != nil {
		return hash, err
	}
	return hash, nil
}
