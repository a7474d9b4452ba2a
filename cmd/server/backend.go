package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"onboard/internal/identity/alias"
	"onboard/internal/identity/matching"
	"onboard/internal/identity/registry"
	"onboard/internal/onboarding/service"
	"onboard/internal/onboarding/store"
	"onboard/internal/outbox"
	"onboard/internal/platform/config"
	"onboard/internal/platform/kafka"
	"onboard/internal/platform/postgres"
	"onboard/internal/platform/redis"
	"onboard/internal/ratelimit"
	httptransport "onboard/internal/transport/http"
	"onboard/pkg/platform/audit"
	auditmemory "onboard/pkg/platform/audit/store/memory"
	auditpostgres "onboard/pkg/platform/audit/store/postgres"
)

const (
	auditTopicPartitions  = 3
	auditTopicReplication = 1
)

// backend holds the stores selected by configuration: Postgres when a DSN
// is set, in-memory otherwise.
type backend struct {
	persons     personRegistry
	names       *alias.Resolver
	aliasSeeder *alias.Seeder
	claims      service.ClaimStore
	tasks       service.ReviewTaskStore
	claimTx     service.ClaimStoreTx
	auditStore  audit.Store
	rateStore   ratelimit.Store
	relay       *outbox.Relay
	health      map[string]httptransport.HealthCheck
	closers     []func()
}

// personRegistry is the person registry as both matching and onboarding see it.
type personRegistry interface {
	service.PersonStore
	matching.Registry
}

func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer) (*backend, error) {
	b := &backend{health: map[string]httptransport.HealthCheck{}}

	if cfg.Database.DSN == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		b.openMemory(cfg, log)
	} else if err := b.openPostgres(ctx, cfg, log, reg); err != nil {
		b.close()
		return nil, err
	}
	return b, nil
}

func (b *backend) openMemory(cfg config.Config, log *slog.Logger) {
	persons := registry.NewInMemory()
	b.persons = persons

	names := alias.NewMemorySource(nil)
	b.names = alias.NewResolver(names)
	b.aliasSeeder = alias.NewSeeder(cfg.Matching.AliasFile, names, nil, log)

	b.claims = store.NewInMemoryClaimStore()
	b.tasks = store.NewInMemoryReviewTaskStore()
	b.claimTx = service.NewShardedClaimTx(service.TxStores{
		Claims:      b.claims,
		ReviewTasks: b.tasks,
		Persons:     persons,
	}, cfg.Claims.TxTimeout)
	b.auditStore = auditmemory.NewInMemoryStore()
	b.rateStore = ratelimit.NewInMemoryStore()
}

func (b *backend) openPostgres(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer) error {
	db, err := postgres.Open(ctx, postgres.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	b.closers = append(b.closers, func() { _ = db.Close() })
	b.health["postgres"] = db.PingContext

	if cfg.Database.RunMigrations {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
	}

	persons := registry.NewPostgres(db)
	b.persons = persons

	names := alias.NewPostgresSource(db)
	var source alias.Source = names
	var invalidator alias.Invalidator
	b.rateStore = ratelimit.NewInMemoryStore()
	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rc != nil {
		b.closers = append(b.closers, func() { _ = rc.Close() })
		b.health["redis"] = rc.Health
		cached := alias.NewCachedSource(names, rc.Client, cfg.Matching.AliasCacheTTL,
			alias.WithLogger(log),
			alias.WithMetrics(alias.NewMetrics(reg)),
		)
		source, invalidator = cached, cached
		b.rateStore = ratelimit.NewRedisStore(rc.Client)
	}
	b.names = alias.NewResolver(source)
	b.aliasSeeder = alias.NewSeeder(cfg.Matching.AliasFile, names, invalidator, log)

	claims := store.NewPostgresClaimStore(db)
	tasks := store.NewPostgresReviewTaskStore(db)
	b.claims, b.tasks = claims, tasks
	b.claimTx = newClaimsPostgresTx(db, service.TxStores{
		Claims:      claims,
		ReviewTasks: tasks,
		Persons:     persons,
	}, cfg.Claims.TxTimeout)
	b.auditStore = auditpostgres.New(db)

	if len(cfg.Kafka.Brokers) > 0 {
		return b.openRelay(ctx, cfg, db, log, reg)
	}
	return nil
}

func (b *backend) openRelay(ctx context.Context, cfg config.Config, db *sql.DB, log *slog.Logger, reg prometheus.Registerer) error {
	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, log)
	if err != nil {
		return err
	}
	b.closers = append(b.closers, producer.Close)
	b.health["kafka"] = producer.Ping

	if err := producer.EnsureTopic(ctx, cfg.Kafka.AuditTopic, auditTopicPartitions, auditTopicReplication); err != nil {
		return fmt.Errorf("ensure audit topic: %w", err)
	}

	b.relay = outbox.NewRelay(outbox.NewPostgresStore(db), producer, cfg.Kafka.AuditTopic,
		outbox.WithBatchSize(cfg.Kafka.RelayBatch),
		outbox.WithInterval(cfg.Kafka.RelayInterval),
		outbox.WithLogger(log),
		outbox.WithMetrics(outbox.NewMetrics(reg)),
	)
	b.health["outbox"] = b.relay.Health
	return nil
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}
