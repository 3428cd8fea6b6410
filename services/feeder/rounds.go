package feeder

import (
	"context"

	"github.com/gear-feeds/oracle-feeder/internal/codec"
)

// pushBeaconRound fetches the latest beacon round and dispatches its
// on-chain publication. A failed fetch skips the tick; the next tick tries
// again. Rounds must advance: the program rejects non-increasing rounds, so
// a stale round is skipped without burning gas.
func (s *Service) pushBeaconRound(ctx context.Context) {
	record, err := s.cfg.Beacon.Latest(ctx)
	if err != nil {
		s.logger.Warn(ctx, "beacon fetch failed, skipping tick", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if record.Round <= s.lastRound {
		s.logger.Debug(ctx, "beacon round not advanced, skipping tick", map[string]interface{}{
			"round":      record.Round,
			"last_round": s.lastRound,
		})
		return
	}
	s.lastRound = record.Round
	s.metrics.beaconRounds.Inc()

	lo, hi := record.Halves()
	action := codec.SetRandomValue{
		Round: record.Round,
		Value: codec.Random{
			Randomness:    [2][16]byte{lo, hi},
			Signature:     record.Signature,
			PrevSignature: record.PrevSignature,
		},
	}

	s.logger.Info(ctx, "publishing beacon round", map[string]interface{}{
		"round": record.Round,
	})

	s.dispatch(ctx, job{
		kind:   "set_random_value",
		target: record.Round,
		action: action,
	})
}
