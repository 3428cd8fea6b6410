package feeder

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/gear-feeds/oracle-feeder/internal/beacon"
	"github.com/gear-feeds/oracle-feeder/internal/codec"
)

// ValueProducer supplies the value that resolves one pending request.
type ValueProducer interface {
	Value(ctx context.Context, req codec.PendingRequest) (uint64, error)
}

// BeaconRoundFetcher fetches the latest round from the external randomness
// beacon. *beacon.Client implements it.
type BeaconRoundFetcher interface {
	Latest(ctx context.Context) (*beacon.Record, error)
}

// LocalRandom produces uniformly distributed values below a fixed bound
// from a non-cryptographic source.
type LocalRandom struct {
	bound uint64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocalRandom creates a producer with the given exclusive upper bound.
func NewLocalRandom(bound uint64) *LocalRandom {
	return &LocalRandom{
		bound: bound,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Value implements ValueProducer. Each request gets an independent sample.
func (p *LocalRandom) Value(ctx context.Context, req codec.PendingRequest) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return uint64(p.rng.Int63n(int64(p.bound))), nil
}
