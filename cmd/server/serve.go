package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpapi "ridergate/internal/http"
	incidenthandler "ridergate/internal/incident/handler"
	incidentservice "ridergate/internal/incident/service"
	jackethandler "ridergate/internal/jacket/handler"
	jacketservice "ridergate/internal/jacket/service"
	"ridergate/internal/jurisdiction"
	jurisdictionhandler "ridergate/internal/jurisdiction/handler"
	jwttoken "ridergate/internal/jwt_token"
	"ridergate/internal/platform/config"
	"ridergate/internal/platform/httpserver"
	"ridergate/internal/platform/kafka"
	"ridergate/internal/platform/logger"
	"ridergate/internal/platform/metrics"
	"ridergate/internal/platform/postgres"
	"ridergate/internal/platform/redis"
	ratelimitmetrics "ridergate/internal/ratelimit/metrics"
	ratelimitmw "ridergate/internal/ratelimit/middleware"
	ratelimitmodels "ridergate/internal/ratelimit/models"
	"ridergate/internal/ratelimit/store/bucket"
	"ridergate/internal/rider/allocator"
	riderhandler "ridergate/internal/rider/handler"
	ridermetrics "ridergate/internal/rider/metrics"
	riderservice "ridergate/internal/rider/service"
	"ridergate/internal/sms/gateway"
	smshandler "ridergate/internal/sms/handler"
	smsmetrics "ridergate/internal/sms/metrics"
	smsservice "ridergate/internal/sms/service"
	statshandler "ridergate/internal/stats/handler"
	statsservice "ridergate/internal/stats/service"
	verificationhandler "ridergate/internal/verification/handler"
	verificationmetrics "ridergate/internal/verification/metrics"
	verificationservice "ridergate/internal/verification/service"
	"ridergate/pkg/platform/audit/publisher"
	"ridergate/pkg/platform/audit/worker"
	"ridergate/pkg/platform/circuit"
)

const auditBufferSize = 1024

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Without database.url every store is in memory and jurisdictions are
preloaded. Without redis.url rate limits are kept in process. Without
kafka.brokers audit events stay in the outbox table.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Format)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, log)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	var (
		db     *sql.DB
		checks []httpapi.Check
		stores *backend
		err    error
	)
	if cfg.Database.URL != "" {
		db, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		stores = postgresBackend(db, cfg.Database.TxTimeout)
		checks = append(checks, httpapi.Check{Name: "database", Probe: db.PingContext})
	} else {
		log.Warn("database.url not set, using in-memory stores")
		stores = memoryBackend()
	}

	auditPublisher := publisher.NewPublisher(stores.audit,
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(auditBufferSize),
	)
	defer auditPublisher.Close()

	g, gctx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 && db != nil {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, "ridergate")
		if err != nil {
			return err
		}
		defer producer.Close()
		if err := producer.EnsureTopic(ctx, cfg.Kafka.AuditTopic, 1, 1); err != nil {
			log.Warn("ensure audit topic failed", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		checks = append(checks, httpapi.Check{Name: "kafka", Probe: producer.Health})
		relay := worker.NewRelay(db, producer, cfg.Kafka.AuditTopic,
			worker.WithBatchSize(cfg.Kafka.RelayBatch),
			worker.WithInterval(cfg.Kafka.RelayInterval),
			worker.WithLogger(log),
		)
		g.Go(func() error { return ignoreCanceled(relay.Run(gctx)) })
	}

	limiter, err := buildRateLimiter(gctx, g, cfg, log, auditPublisher, &checks)
	if err != nil {
		return err
	}

	router := newAPI(cfg, log, stores, auditPublisher, limiter, checks)
	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.RequestTimeout)
	g.Go(func() error { return httpserver.Run(gctx, srv, cfg.Server.ShutdownTimeout, log) })
	return g.Wait()
}

// newAPI builds every service over stores and mounts their handlers.
func newAPI(cfg *config.Config, log *slog.Logger, stores *backend, auditPublisher *publisher.Publisher, limiter *ratelimitmw.Middleware, checks []httpapi.Check) http.Handler {
	directory := jurisdiction.NewDirectory(stores.jurisdictions, jurisdiction.WithLogger(log))

	verifications := verificationservice.New(stores.riders, stores.attempts,
		verificationservice.WithLogger(log),
		verificationservice.WithAuditPublisher(auditPublisher),
		verificationservice.WithMetrics(verificationmetrics.New()),
	)
	incidents := incidentservice.New(stores.incidents, stores.riders,
		incidentservice.WithLogger(log),
		incidentservice.WithAuditPublisher(auditPublisher),
	)
	riders := riderservice.New(stores.riders, allocator.New(directory, stores.riders), directory, stores.runner,
		riderservice.WithLogger(log),
		riderservice.WithAuditPublisher(auditPublisher),
		riderservice.WithMetrics(ridermetrics.New()),
		riderservice.WithHistorySources(stores.payments, stores.jackets, stores.incidents, stores.attempts),
	)
	jackets := jacketservice.New(stores.jackets, stores.riders, stores.payments, directory,
		jacketservice.WithLogger(log),
		jacketservice.WithAuditPublisher(auditPublisher),
	)
	sms := smsservice.New(stores.sms, buildSMSSender(cfg.SMS, log), verifications, incidents, stores.riders,
		smsservice.WithLogger(log),
		smsservice.WithAuditPublisher(auditPublisher),
		smsservice.WithMetrics(smsmetrics.New()),
		smsservice.WithSenderID(cfg.SMS.SenderID),
	)
	stats := statsservice.New(stores.stats,
		statsservice.WithLogger(log),
		statsservice.WithJacketCounter(stores.jackets),
	)

	return httpapi.NewRouter(httpapi.Deps{
		Logger:         log,
		Validator:      jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience),
		Metrics:        metrics.NewHTTP(),
		RateLimit:      limiter,
		RequestTimeout: cfg.Server.RequestTimeout,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Checks:         checks,
		Handlers: []httpapi.Registrar{
			jurisdictionhandler.New(directory, log),
			riderhandler.New(riders, log),
			verificationhandler.New(verifications, log),
			incidenthandler.New(incidents, log),
			jackethandler.New(jackets, log),
			smshandler.New(sms, log, smshandler.WithInboundKeyHash(cfg.SMS.InboundKeyHash)),
			statshandler.New(stats, log),
		},
	})
}

// buildRateLimiter prefers Redis and falls back to process memory when Redis
// is unset or its breaker opens.
func buildRateLimiter(ctx context.Context, g *errgroup.Group, cfg *config.Config, log *slog.Logger, pub ratelimitmw.AuditPublisher, checks *[]httpapi.Check) (*ratelimitmw.Middleware, error) {
	limit := ratelimitmodels.Limit{Requests: cfg.RateLimit.RequestsPerWindow, Window: cfg.RateLimit.Window}
	memory := bucket.NewInMemoryStore()
	g.Go(func() error { return sweep(ctx, memory, limit.Window, log) })

	opts := []ratelimitmw.Option{
		ratelimitmw.WithDisabled(!cfg.RateLimit.Enabled),
		ratelimitmw.WithMetrics(ratelimitmetrics.New()),
		ratelimitmw.WithAuditPublisher(pub),
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return ratelimitmw.New(memory, limit, log, opts...), nil
	}
	g.Go(func() error {
		<-ctx.Done()
		return rc.Close()
	})
	*checks = append(*checks, httpapi.Check{Name: "redis", Probe: rc.Health})
	opts = append(opts, ratelimitmw.WithFallback(memory, circuit.New("ratelimit-redis")))
	return ratelimitmw.New(bucket.NewRedisStore(rc.Client), limit, log, opts...), nil
}

// sweep drops idle in-memory windows once per window.
func sweep(ctx context.Context, store *bucket.InMemoryStore, window time.Duration, log *slog.Logger) error {
	if window <= 0 {
		window = time.Minute
	}
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := store.Sweep(window); n > 0 {
				log.Debug("rate limit windows swept", "removed", n)
			}
		}
	}
}

func buildSMSSender(cfg config.SMSConfig, log *slog.Logger) smsservice.Sender {
	if cfg.GatewayURL == "" {
		log.Warn("sms.gateway_url not set, outbound sms is written to the log")
		return gateway.NewLogSender(log, "")
	}
	return gateway.NewBreakerSender(
		gateway.NewHTTPSender(cfg.GatewayURL, cfg.APIKey, cfg.Timeout),
		gateway.NewLogSender(log, "sms gateway unavailable"),
		circuit.New("sms-gateway"),
		log,
	)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
