package feeder

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gear-feeds/oracle-feeder/internal/chain"
	"github.com/gear-feeds/oracle-feeder/internal/codec"
)

// queryGetRequestsQueue is the encoded GetRequestsQueue state query
// (StateQuery enum: GetOwner=0, GetManager=1, GetRequestsQueue=2).
const queryGetRequestsQueue = "0x02"

// requestsQueueResponse is the node's human-readable state response: a list
// of [id-as-decimal-string, caller-as-hex-string] pairs.
type requestsQueueResponse struct {
	RequestsQueue [][]string `json:"RequestsQueue"`
}

// fetchRequestsQueue reads the program's pending-request queue. Any
// unparsable entry fails the whole read. Order is preserved as received.
func (s *Service) fetchRequestsQueue(ctx context.Context) ([]codec.PendingRequest, error) {
	raw, err := s.cfg.Node.ReadState(ctx, s.cfg.ProgramID, queryGetRequestsQueue)
	if err != nil {
		return nil, fmt.Errorf("read requests queue: %w", err)
	}

	var resp requestsQueueResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal requests queue: %w", err)
	}

	requests := make([]codec.PendingRequest, 0, len(resp.RequestsQueue))
	for i, pair := range resp.RequestsQueue {
		if len(pair) != 2 {
			return nil, fmt.Errorf("queue entry %d: want [id, caller] pair, got %d items", i, len(pair))
		}
		id, err := strconv.ParseUint(pair[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("queue entry %d: parse id %q: %w", i, pair[0], err)
		}
		caller, err := chain.DecodeHex(pair[1])
		if err != nil {
			return nil, fmt.Errorf("queue entry %d: parse caller %q: %w", i, pair[1], err)
		}
		requests = append(requests, codec.PendingRequest{ID: id, Caller: caller})
	}
	return requests, nil
}

// reconcile resolves every request that was already pending when the feeder
// started. Items are dispatched concurrently with no ordering guarantee. A
// queue read failure abandons the backlog but not the live stream.
func (s *Service) reconcile(ctx context.Context) {
	requests, err := s.fetchRequestsQueue(ctx)
	if err != nil {
		s.logger.Error(ctx, "reconciliation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	s.logger.Info(ctx, "reconciling pending requests", map[string]interface{}{
		"count": len(requests),
	})

	for _, req := range requests {
		s.resolveRequest(ctx, req)
	}
}

// resolveRequest produces a value for one pending request and dispatches
// the resolving submission.
func (s *Service) resolveRequest(ctx context.Context, req codec.PendingRequest) {
	value, err := s.cfg.Producer.Value(ctx, req)
	if err != nil {
		s.logger.Error(ctx, "value production failed", map[string]interface{}{
			"request_id": req.ID,
			"error":      err.Error(),
		})
		return
	}

	s.dispatch(ctx, job{
		kind:   "update_value",
		target: req.ID,
		action: codec.UpdateValue{ID: req.ID, Value: value},
	})
}
