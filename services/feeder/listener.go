package feeder

import (
	"context"
	"errors"

	"github.com/gear-feeds/oracle-feeder/internal/chain"
	"github.com/gear-feeds/oracle-feeder/internal/codec"
)

// handleEvent processes one user-message event from the live stream:
// filter by source program, decode, and dispatch the resolution. Stateless;
// events are handled in delivery order.
func (s *Service) handleEvent(ctx context.Context, ev chain.UserMessageEvent) {
	if ev.Source != s.cfg.ProgramID {
		return
	}

	req, err := codec.DecodeNewRequest(ev.Payload)
	switch {
	case errors.Is(err, codec.ErrNotRequest):
		// Some other oracle event (manager change, reply); not ours to act on.
		return
	case errors.Is(err, codec.ErrMalformedEvent):
		s.metrics.malformedEvents.Inc()
		s.logger.Debug(ctx, "discarding malformed event", map[string]interface{}{
			"error": err.Error(),
		})
		return
	case err != nil:
		s.logger.Debug(ctx, "discarding undecodable event", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	s.metrics.requestsDecoded.Inc()
	s.logger.Info(ctx, "new update request", map[string]interface{}{
		"request_id": req.ID,
	})

	s.resolveRequest(ctx, req)
}
