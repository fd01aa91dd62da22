package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	ballotbox "scrutin/contexts/polling-operations/ballot-box"
	ballotpostgres "scrutin/contexts/polling-operations/ballot-box/adapters/postgres"
	ballotworkers "scrutin/contexts/polling-operations/ballot-box/application/workers"
	ballotports "scrutin/contexts/polling-operations/ballot-box/ports"
	stationlifecycle "scrutin/contexts/polling-operations/station-lifecycle"
	lifecyclememory "scrutin/contexts/polling-operations/station-lifecycle/adapters/memory"
	minutesadapter "scrutin/contexts/polling-operations/station-lifecycle/adapters/minutes"
	lifecyclepostgres "scrutin/contexts/polling-operations/station-lifecycle/adapters/postgres"
	lifecycleports "scrutin/contexts/polling-operations/station-lifecycle/ports"
	disputeresolver "scrutin/contexts/tabulation/dispute-resolver"
	disputepostgres "scrutin/contexts/tabulation/dispute-resolver/adapters/postgres"
	disputeworkers "scrutin/contexts/tabulation/dispute-resolver/application/workers"
	disputeports "scrutin/contexts/tabulation/dispute-resolver/ports"
	resultaggregator "scrutin/contexts/tabulation/result-aggregator"
	aggregatorpostgres "scrutin/contexts/tabulation/result-aggregator/adapters/postgres"
	tallyledger "scrutin/contexts/tabulation/tally-ledger"
	ledgerpostgres "scrutin/contexts/tabulation/tally-ledger/adapters/postgres"
	"scrutin/internal/platform/config"
	"scrutin/internal/platform/db"
	"scrutin/internal/platform/httpserver"
	"scrutin/internal/platform/messaging"
	"scrutin/internal/shared/events"
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
	ballotRelay  ballotworkers.OutboxRelay
	disputeRelay disputeworkers.OutboxRelay
	relayEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
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

	renderer, err := buildMinutesRenderer(cfg)
	if err != nil {
		return nil, err
	}

	lifecycleRepo := lifecyclepostgres.NewRepository(pg.DB, logger)
	lifecycleModule := stationlifecycle.NewModule(stationlifecycle.Dependencies{
		Elections: lifecycleRepo,
		Stations:  lifecycleRepo,
		Minutes:   renderer,
		Clock:     lifecyclepostgres.SystemClock{},
		IDGen:     lifecyclepostgres.UUIDGenerator{},
		Logger:    logger,
	})

	ballotRepo := ballotpostgres.NewRepository(pg.DB, logger)
	ballotModule := ballotbox.NewModule(ballotbox.Dependencies{
		Ballots: ballotRepo,
		Roll:    ballotRepo,
		Outbox:  ballotRepo,
		Clock:   ballotpostgres.SystemClock{},
		IDGen:   ballotpostgres.UUIDGenerator{},
		Logger:  logger,
	})

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	ledgerModule := tallyledger.NewModule(tallyledger.Dependencies{
		Tallies:        ledgerRepo,
		Stations:       ledgerRepo,
		Clock:          ledgerpostgres.SystemClock{},
		SupervisorRole: cfg.SupervisorRole,
		Logger:         logger,
	})

	aggregatorRepo := aggregatorpostgres.NewRepository(pg.DB, logger)
	aggregatorModule := resultaggregator.NewModule(resultaggregator.Dependencies{
		Results: aggregatorRepo,
		Logger:  logger,
	})

	disputeRepo := disputepostgres.NewRepository(pg.DB, logger)
	disputeModule := disputeresolver.NewModule(disputeresolver.Dependencies{
		Disputes: disputeRepo,
		Outbox:   disputeRepo,
		Clock:    disputepostgres.SystemClock{},
		IDGen:    disputepostgres.UUIDGenerator{},
		Logger:   logger,
	})

	server := httpserver.New(
		lifecycleModule,
		ballotModule,
		ledgerModule,
		aggregatorModule,
		disputeModule,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
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

	ballotRepo := ballotpostgres.NewRepository(pg.DB, logger)
	disputeRepo := disputepostgres.NewRepository(pg.DB, logger)

	return &WorkerApp{
		postgres: pg,
		ballotRelay: ballotworkers.OutboxRelay{
			Outbox:    ballotRepo,
			Publisher: ballotEventPublisher{bus: kafka},
			Clock:     ballotpostgres.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		disputeRelay: disputeworkers.OutboxRelay{
			Outbox:    disputeRepo,
			Publisher: disputeEventPublisher{bus: kafka},
			Clock:     disputepostgres.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		pollInterval: time.Duration(cfg.WorkerPollIntervalMS) * time.Millisecond,
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
	if !w.relayEnabled {
		w.logger.Info("outbox relay disabled, worker idle",
			"event", "bootstrap_worker_idle",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.ballotRelay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.disputeRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func buildMinutesRenderer(cfg config.Config) (lifecycleports.MinutesRenderer, error) {
	if !cfg.EnableMinutesRender {
		return lifecyclememory.StaticMinutesRenderer{}, nil
	}
	return minutesadapter.NewTemplateRenderer("")
}

// ballotEventPublisher bridges the module-local envelope onto the shared bus
// envelope. Field sets match; modules stay decoupled from internal packages.
type ballotEventPublisher struct {
	bus *messaging.Kafka
}

func (p ballotEventPublisher) Publish(ctx context.Context, topic string, event ballotports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope{
		EventID:          event.EventID,
		EventType:        event.EventType,
		SourceService:    event.SourceService,
		OccurredAt:       event.OccurredAt,
		TraceID:          event.TraceID,
		SchemaVersion:    event.SchemaVersion,
		PartitionKeyPath: event.PartitionKeyPath,
		PartitionKey:     event.PartitionKey,
		Data:             event.Data,
	})
}

type disputeEventPublisher struct {
	bus *messaging.Kafka
}

func (p disputeEventPublisher) Publish(ctx context.Context, topic string, event disputeports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope{
		EventID:          event.EventID,
		EventType:        event.EventType,
		SourceService:    event.SourceService,
		OccurredAt:       event.OccurredAt,
		TraceID:          event.TraceID,
		SchemaVersion:    event.SchemaVersion,
		PartitionKeyPath: event.PartitionKeyPath,
		PartitionKey:     event.PartitionKey,
		Data:             event.Data,
	})
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
