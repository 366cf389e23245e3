package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	assetledger "agora/contexts/finance/asset-ledger"
	assetpostgres "agora/contexts/finance/asset-ledger/adapters/postgres"
	assetapp "agora/contexts/finance/asset-ledger/application"
	daoengine "agora/contexts/governance/dao-engine"
	governancepostgres "agora/contexts/governance/dao-engine/adapters/postgres"
	workerapp "agora/contexts/governance/dao-engine/application/workers"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	auditor      workerapp.EventAuditor
	relayEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

// treasuryLedger adapts the finance context to the governance payment port.
// The treasury is the fixed approved spender pulling purchase payments.
type treasuryLedger struct {
	service  assetapp.Service
	treasury string
}

func (l treasuryLedger) TransferFrom(ctx context.Context, from string, to string, amount uint64) error {
	return l.service.TransferFrom(ctx, l.treasury, from, to, amount)
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	assetRepo := assetpostgres.NewRepository(pg.DB, logger)
	assetModule := assetledger.NewModule(assetledger.Dependencies{
		Ledger: assetRepo,
		Clock:  assetpostgres.SystemClock{},
		Logger: logger,
	})

	governanceRepo := governancepostgres.NewRepository(pg.DB, logger)
	governanceModule := daoengine.NewModule(daoengine.Dependencies{
		Members:   governanceRepo,
		Proposals: governanceRepo,
		Assets: treasuryLedger{
			service:  assetModule.Service,
			treasury: cfg.TreasuryAddress,
		},
		Outbox:          governanceRepo,
		Clock:           governancepostgres.SystemClock{},
		IDGen:           governancepostgres.UUIDGenerator{},
		AdminAddress:    cfg.AdminAddress,
		TreasuryAddress: cfg.TreasuryAddress,
		GovernanceType:  cfg.GovernanceType,
		AssetDecimals:   cfg.AssetDecimals,
		Logger:          logger,
	})

	server := httpserver.New(governanceModule, assetModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := governancepostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     governancepostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		auditor: workerapp.EventAuditor{
			Subscriber: kafka,
			Topics: []string{
				"member.added",
				"shares.granted",
				"shares.purchased",
				"proposal.created",
				"vote.cast",
			},
			ConsumerGroup: "dao-engine-audit-cg",
			Logger:        logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return w.auditor.Run(groupCtx)
	})
	if w.relayEnabled {
		group.Go(func() error {
			ticker := time.NewTicker(w.pollInterval)
			defer ticker.Stop()
			for {
				if err := w.outboxRelay.RunOnce(groupCtx); err != nil {
					return err
				}
				select {
				case <-groupCtx.Done():
					return nil
				case <-ticker.C:
				}
			}
		})
	}
	return group.Wait()
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
