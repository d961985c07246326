package service

import (
	"context"
	"net/http"
	"time"

	"github.com/arc-coordination/matching-svc/internal/config"
	"github.com/arc-coordination/matching-svc/internal/data/postgres"
	"github.com/arc-coordination/matching-svc/internal/settlement"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
	"gitlab.com/distributed_lab/running"
)

const metricsShutdownTimeout = 5 * time.Second

type service struct {
	log          *logan.Entry
	loop         *loop
	metrics      *metrics
	metricsAddr  string
	pollInterval time.Duration
}

func (s *service) run(ctx context.Context) {
	s.log.WithField("poll_interval", s.pollInterval).Info("Service started")
	if s.metricsAddr != "" {
		go s.serveMetrics(ctx)
	}

	running.WithBackOff(ctx, s.log, "matching", s.loop.runCycle, s.pollInterval, s.pollInterval, s.pollInterval)
	s.log.Info("Service stopped")
}

func (s *service) serveMetrics(ctx context.Context) {
	srv := &http.Server{
		Addr:    s.metricsAddr,
		Handler: promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.WithError(err).Warn("failed to shut down metrics server")
		}
	}()

	s.log.WithField("addr", s.metricsAddr).Info("serving metrics")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.WithError(err).Error("metrics server failed")
	}
}

func newService(cfg config.Config) *service {
	log := cfg.Log()
	intents := postgres.NewIntents(cfg.DB())
	matches := postgres.NewMatches(cfg.DB())

	submitter := settlement.NewSubmitter(
		log.WithField("component", "submitter"),
		newBoundary(cfg, log),
		matches,
		intents,
		cfg.Settlement().SubmitTimeout,
	)

	var pub publisher
	if connector := cfg.Collector(); connector != nil {
		pub = newCollector(connector)
	}

	m := newMetrics()
	matcherCfg := cfg.Matcher()
	return &service{
		log:          log,
		metrics:      m,
		metricsAddr:  cfg.Metrics().Addr,
		pollInterval: matcherCfg.PollInterval,
		loop: newLoop(log.WithField("component", "loop"), intents, matches, submitter, pub, m, loopOpts{
			SnapshotDepth:    matcherCfg.SnapshotDepth,
			StrictInvariants: matcherCfg.StrictInvariants,
		}),
	}
}

func newBoundary(cfg config.Config, log *logan.Entry) settlement.Boundary {
	if cfg.Settlement().Mode == config.SettlementLedger {
		return settlement.NewLedger(cfg.Ledger())
	}

	network := cfg.Network()
	escrow, err := settlement.NewEscrow(log.WithField("component", "escrow"), network.EthClient, settlement.EscrowOpts{
		Address:   network.Escrow,
		Signer:    network.Signer,
		ChainID:   network.ChainID,
		GasLimit:  network.GasLimit,
		FromBlock: network.FromBlock,
	})
	if err != nil {
		panic(errors.Wrap(err, "failed to create escrow settlement"))
	}
	return escrow
}

// Run blocks until ctx is cancelled. The cycle in progress is finished first.
func Run(ctx context.Context, cfg config.Config) {
	newService(cfg).run(ctx)
}
