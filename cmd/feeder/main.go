// Command feeder runs the oracle feeder: it resolves the oracle program's
// pending-request backlog, then serves new requests from the live event
// stream (value variant) or publishes beacon rounds on a fixed cadence
// (randomness variant) until killed.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gear-feeds/oracle-feeder/internal/beacon"
	"github.com/gear-feeds/oracle-feeder/internal/chain"
	"github.com/gear-feeds/oracle-feeder/internal/codec"
	"github.com/gear-feeds/oracle-feeder/internal/config"
	"github.com/gear-feeds/oracle-feeder/internal/keystore"
	"github.com/gear-feeds/oracle-feeder/internal/logging"
	"github.com/gear-feeds/oracle-feeder/services/feeder"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	identity, err := keystore.Load(cfg.KeyfilePath, cfg.Passphrase)
	if err != nil {
		log.Fatalf("keystore: %v", err)
	}

	meta, err := codec.LoadMetadata(cfg.MetadataPath)
	if err != nil {
		log.Fatalf("metadata: %v", err)
	}

	node, err := chain.NewClient(chain.Config{RPCURL: cfg.NodeRPCURL})
	if err != nil {
		log.Fatalf("node client: %v", err)
	}

	registry := prometheus.NewRegistry()

	svcCfg := feeder.Config{
		Node:         node,
		Signer:       identity,
		Metadata:     meta,
		ProgramID:    cfg.ProgramID,
		Variant:      cfg.Variant,
		PollInterval: cfg.PollInterval,
		Workers:      cfg.Workers,
		Logger:       logger,
		Registry:     registry,
	}

	switch cfg.Variant {
	case config.VariantValue:
		svcCfg.Producer = feeder.NewLocalRandom(cfg.ValueBound)
		svcCfg.Subscribe = func(ctx context.Context) (feeder.EventStream, error) {
			return chain.SubscribeUserMessages(ctx, cfg.NodeWSURL)
		}
	case config.VariantRandomness:
		source, err := beacon.NewClient(beacon.Config{BaseURL: cfg.BeaconURL})
		if err != nil {
			log.Fatalf("beacon client: %v", err)
		}
		svcCfg.Beacon = source
	}

	svc, err := feeder.New(svcCfg)
	if err != nil {
		log.Fatalf("feeder: %v", err)
	}

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Warn(ctx, "metrics listener stopped", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}()
	}

	logger.Info(ctx, "feeder starting", map[string]interface{}{
		"variant": string(cfg.Variant),
		"program": cfg.ProgramID,
		"signer":  identity.Address(),
	})

	if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("feeder: %v", err)
	}
}
