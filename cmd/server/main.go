package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	identityhandler "onboard/internal/identity/handler"
	"onboard/internal/identity/matching"
	matchingmetrics "onboard/internal/identity/matching/metrics"
	jwttoken "onboard/internal/jwt_token"
	onboardinghandler "onboard/internal/onboarding/handler"
	onboardingmetrics "onboard/internal/onboarding/metrics"
	"onboard/internal/onboarding/service"
	"onboard/internal/platform/config"
	"onboard/internal/platform/httpserver"
	"onboard/internal/platform/logger"
	"onboard/internal/platform/metrics"
	"onboard/internal/ratelimit"
	httptransport "onboard/internal/transport/http"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/audit/publishers/compliance"
	"onboard/pkg/platform/audit/publishers/ops"
	"onboard/pkg/platform/audit/publishers/security"
	"onboard/pkg/platform/middleware/auth"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	b, err := openBackend(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer b.close()

	if cfg.Matching.AliasFile != "" {
		if _, err := b.aliasSeeder.Reload(ctx); err != nil {
			return err
		}
	}

	securityEvents := security.New(b.auditStore, security.WithLogger(log))
	defer func() {
		if err := securityEvents.Close(); err != nil {
			log.Warn("security publisher close failed", "error", err)
		}
	}()
	compliancePublisher := compliance.New(b.auditStore,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
	)
	opsTracker := ops.New(b.auditStore,
		ops.WithSampler(ops.NewSampler(1.0, nil)),
		ops.WithLogger(log),
		ops.WithMetrics(ops.NewMetrics(reg)),
	)

	matcher := matching.New(b.persons, b.names,
		matching.WithLogger(log),
		matching.WithMetrics(matchingmetrics.New(reg)),
		matching.WithSecurityPublisher(securityEvents),
	)

	furtherChecks := make([]id.ClientID, len(cfg.Claims.FurtherChecksClients))
	for i, c := range cfg.Claims.FurtherChecksClients {
		furtherChecks[i] = id.ClientID(c)
	}
	onboarding := service.New(b.claims, b.tasks, b.persons, b.claimTx, matcher,
		jwttoken.NewJWTService(cfg.Token.SigningKey, cfg.Token.Issuer, cfg.Token.TTL),
		service.WithLogger(log),
		service.WithMetrics(onboardingmetrics.New(reg)),
		service.WithAuditPublisher(compliancePublisher),
		service.WithOpsTracker(opsTracker),
		service.WithFurtherChecksClients(furtherChecks...),
	)

	clients, err := auth.NewBcryptVerifier(cfg.Auth.ClientKeys)
	if err != nil {
		return err
	}

	limiter := ratelimit.NewLimiter(b.rateStore, cfg.Limits.RequestsPerWindow, cfg.Limits.Window, log)

	claimsHandler := onboardinghandler.New(onboarding, log)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:     log,
		Metrics:    metrics.New(reg),
		Gatherer:   reg,
		Clients:    clients,
		AdminToken: cfg.Server.AdminToken,
		Health:     b.health,
		ClientMiddleware: []func(http.Handler) http.Handler{
			limiter.PerClient,
		},
		ClientRoutes: []httptransport.Registrar{
			identityhandler.New(matcher, log),
			claimsHandler,
		},
		AdminRoutes: []httptransport.Registrar{
			httptransport.RegistrarFunc(claimsHandler.RegisterAdmin),
			identityhandler.NewAdmin(b.aliasSeeder, securityEvents, log),
		},
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting onboard", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if b.relay != nil {
		g.Go(func() error {
			if err := b.relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
