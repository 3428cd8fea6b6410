// Package feeder implements the oracle feeder: it reconciles the program's
// pending-request backlog at startup, watches the live event stream for new
// requests, produces a value for each one and submits the resolving message.
package feeder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gear-feeds/oracle-feeder/internal/chain"
	"github.com/gear-feeds/oracle-feeder/internal/codec"
	"github.com/gear-feeds/oracle-feeder/internal/config"
	"github.com/gear-feeds/oracle-feeder/internal/logging"
)

// jobBuffer bounds the submission channel. A full buffer falls back to a
// dedicated goroutine so a trigger is never blocked or dropped.
const jobBuffer = 256

// NodeClient is the chain surface the feeder needs. *chain.Client
// implements it.
type NodeClient interface {
	ReadState(ctx context.Context, programID, queryHex string) (json.RawMessage, error)
	CalculateHandleGas(ctx context.Context, source, programID, payloadHex string, value uint64) (*chain.GasInfo, error)
	AccountNonce(ctx context.Context, address string) (uint64, error)
	SubmitMessage(ctx context.Context, msg *chain.SignedMessage) (string, error)
	AwaitFinalized(ctx context.Context, hash string, pollInterval time.Duration) error
}

// Signer signs outgoing messages. *keystore.Identity implements it.
type Signer interface {
	Address() string
	Sign(msg []byte) []byte
}

// EventStream is a live feed of user-message events. *chain.Subscription
// implements it.
type EventStream interface {
	Events() <-chan chain.UserMessageEvent
	Err() error
	Close()
}

// SubscribeFunc opens the event stream for the value-feeder variant.
type SubscribeFunc func(ctx context.Context) (EventStream, error)

// Config assembles the feeder's collaborators. All fields are read-only
// after New.
type Config struct {
	Node     NodeClient
	Signer   Signer
	Metadata *codec.Metadata

	// ProgramID is the oracle program address.
	ProgramID string

	Variant config.Variant

	// Producer supplies values for the value-feeder variant.
	Producer ValueProducer

	// Subscribe opens the live event stream (value variant).
	Subscribe SubscribeFunc

	// Beacon fetches rounds (randomness variant).
	Beacon BeaconRoundFetcher

	// PollInterval is the beacon polling cadence.
	PollInterval time.Duration

	// StatusPollInterval is the broadcast-acknowledgment poll cadence.
	StatusPollInterval time.Duration

	Workers int

	Logger   *logging.Logger
	Registry prometheus.Registerer
}

// Service is the feeder orchestrator. Read-only after New; all mutable
// state lives in the per-run goroutines.
type Service struct {
	cfg     Config
	logger  *logging.Logger
	metrics *metrics

	jobs chan job

	// lastRound guards against non-advancing beacon rounds; touched only
	// by the single beacon loop goroutine.
	lastRound uint64
}

// job is one submission unit: a fully built action plus its log identity.
type job struct {
	kind   string // "update_value" or "set_random_value"
	target uint64 // request id or beacon round
	action codec.Action
}

// New validates the configuration and builds the service. The metadata
// contract is checked here so a schema drift fails startup, not the first
// submission.
func New(cfg Config) (*Service, error) {
	if cfg.Node == nil {
		return nil, fmt.Errorf("node client required")
	}
	if cfg.Signer == nil {
		return nil, fmt.Errorf("signer required")
	}
	if cfg.Metadata == nil {
		return nil, fmt.Errorf("metadata required")
	}
	if cfg.ProgramID == "" {
		return nil, fmt.Errorf("program id required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	switch cfg.Variant {
	case config.VariantValue:
		if cfg.Producer == nil {
			return nil, fmt.Errorf("value producer required")
		}
		if cfg.Subscribe == nil {
			return nil, fmt.Errorf("subscribe func required")
		}
		if err := cfg.Metadata.EnsureAction("UpdateValue"); err != nil {
			return nil, err
		}
	case config.VariantRandomness:
		if cfg.Beacon == nil {
			return nil, fmt.Errorf("beacon source required")
		}
		if cfg.PollInterval <= 0 {
			return nil, fmt.Errorf("poll interval required")
		}
		if err := cfg.Metadata.EnsureAction("SetRandomValue"); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown variant %q", cfg.Variant)
	}

	return &Service{
		cfg:     cfg,
		logger:  cfg.Logger.With("feeder"),
		metrics: newMetrics(cfg.Registry),
		jobs:    make(chan job, jobBuffer),
	}, nil
}

// Run drives the feeder until ctx is cancelled or the event stream dies.
// Submissions are join-none: Run does not wait for in-flight submissions
// when it returns, and the worker pool winds down on ctx cancellation.
func (s *Service) Run(ctx context.Context) error {
	for i := 0; i < s.cfg.Workers; i++ {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case j := <-s.jobs:
					s.submit(ctx, j)
				}
			}
		}()
	}

	switch s.cfg.Variant {
	case config.VariantValue:
		return s.runValueFeeder(ctx)
	case config.VariantRandomness:
		return s.runRandomnessFeeder(ctx)
	default:
		return fmt.Errorf("unknown variant %q", s.cfg.Variant)
	}
}

// runValueFeeder reconciles the backlog, then serves the live stream.
func (s *Service) runValueFeeder(ctx context.Context) error {
	// The stream is opened before reconciliation so requests created while
	// the backlog is read are not missed.
	stream, err := s.cfg.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to user messages: %w", err)
	}
	defer stream.Close()

	s.reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, open := <-stream.Events():
			if !open {
				if err := stream.Err(); err != nil {
					return fmt.Errorf("event stream ended: %w", err)
				}
				return fmt.Errorf("event stream closed")
			}
			s.handleEvent(ctx, ev)
		}
	}
}

// runRandomnessFeeder pushes one beacon round per tick.
func (s *Service) runRandomnessFeeder(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.pushBeaconRound(ctx)
		}
	}
}

// dispatch hands a job to the submitter pool without blocking the trigger.
func (s *Service) dispatch(ctx context.Context, j job) {
	select {
	case s.jobs <- j:
	default:
		go s.submit(ctx, j)
	}
}
