package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"nyaya/internal/deadline"
	deadlinemetrics "nyaya/internal/deadline/metrics"
	evidencehandler "nyaya/internal/evidence/handler"
	"nyaya/internal/evidence/hash"
	evidencemetrics "nyaya/internal/evidence/metrics"
	evidenceservice "nyaya/internal/evidence/service"
	evidencestore "nyaya/internal/evidence/store"
	firhandler "nyaya/internal/fir/handler"
	firmetrics "nyaya/internal/fir/metrics"
	firservice "nyaya/internal/fir/service"
	firstore "nyaya/internal/fir/store"
	"nyaya/internal/jurisdiction"
	"nyaya/internal/notification/dispatch"
	notificationmetrics "nyaya/internal/notification/metrics"
	notificationstore "nyaya/internal/notification/store"
	"nyaya/internal/notification/worker"
	"nyaya/internal/platform/config"
	"nyaya/internal/platform/httpserver"
	"nyaya/internal/platform/kafka"
	"nyaya/internal/platform/logger"
	"nyaya/internal/platform/metrics"
	"nyaya/internal/platform/middleware"
	"nyaya/internal/platform/postgres"
	"nyaya/internal/platform/redis"
	"nyaya/internal/policy"
	ratelimitmetrics "nyaya/internal/ratelimit/metrics"
	ratelimitmw "nyaya/internal/ratelimit/middleware"
	ratelimitstore "nyaya/internal/ratelimit/store"
	"nyaya/internal/signature"
	"nyaya/pkg/platform/audit"
	auditpublisher "nyaya/pkg/platform/audit/publisher"
	"nyaya/pkg/platform/audit/publishers/compliance"
	"nyaya/pkg/platform/audit/publishers/ops"
	auditmemory "nyaya/pkg/platform/audit/store/memory"
	auditpostgres "nyaya/pkg/platform/audit/store/postgres"
	"nyaya/pkg/platform/circuit"
	"nyaya/pkg/platform/httputil"
	txcontext "nyaya/pkg/platform/tx"
)

const requestTimeout = 30 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("nyaya stopped", "error", err)
		os.Exit(1)
	}
}

// infra holds the connections shared by every subsystem. Nil members mean
// the backing service is not configured.
type infra struct {
	pool  *pgxpool.Pool
	db    *sql.DB
	redis *redis.Client
	audit audit.Store
}

func (i *infra) close() {
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
	if i.pool != nil {
		i.pool.Close()
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	inf, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer inf.close()

	complianceAudit := compliance.New(inf.audit,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics()),
	)
	integrityAudit := auditpublisher.NewPublisher(inf.audit,
		auditpublisher.WithAsyncBuffer(1024),
		auditpublisher.WithLogger(log),
	)
	defer func() { _ = integrityAudit.Close() }()

	group, gctx := errgroup.WithContext(ctx)

	firSvc, outbox, err := buildLifecycle(gctx, cfg, log, inf, complianceAudit, group)
	if err != nil {
		return err
	}

	dispatcher, closeDispatcher, err := buildDispatcher(gctx, cfg, log, inf)
	if err != nil {
		return err
	}
	defer closeDispatcher()

	evidenceSvc, closeEvidence, err := buildEvidence(gctx, cfg, log, inf, complianceAudit, integrityAudit)
	if err != nil {
		return err
	}
	defer closeEvidence()

	scheduler := deadline.New(firSvc,
		deadline.WithLogger(log),
		deadline.WithMetrics(deadlinemetrics.New()),
		deadline.WithPollInterval(cfg.Scheduler.PollInterval),
		deadline.WithWorkers(cfg.Scheduler.Workers),
		deadline.WithBatchSize(cfg.Scheduler.BatchSize),
		deadline.WithMaxRetries(cfg.Scheduler.MaxRetries),
	)
	outboxWorker := worker.New(outbox, dispatcher,
		worker.WithLogger(log),
		worker.WithMetrics(notificationmetrics.New()),
		worker.WithPollInterval(cfg.Outbox.PollInterval),
		worker.WithBatchSize(cfg.Outbox.BatchSize),
		worker.WithMaxAttempts(cfg.Outbox.MaxAttempts),
		worker.WithBreaker(circuit.New("notification-dispatch")),
		worker.WithOpsTracker(ops.New(inf.audit,
			ops.WithLogger(log),
			ops.WithMetrics(ops.NewMetrics()),
		)),
	)

	router, err := newRouter(cfg, log, inf, firSvc, evidenceSvc)
	if err != nil {
		return err
	}
	srv := httpserver.New(cfg.Server.Addr, router)

	group.Go(func() error { return scheduler.Run(gctx) })
	group.Go(func() error { return outboxWorker.Run(gctx) })
	group.Go(func() error {
		log.Info("starting nyaya", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	inf := &infra{}
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set; e-FIR, outbox and audit stores are in memory")
		inf.audit = auditmemory.NewInMemoryStore()
	} else {
		pgCfg := postgres.Config{
			URL:             cfg.Database.URL,
			MaxConns:        cfg.Database.MaxConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}
		pool, err := postgres.NewPool(ctx, pgCfg)
		if err != nil {
			return nil, err
		}
		inf.pool = pool
		db, err := postgres.OpenSQL(ctx, pgCfg)
		if err != nil {
			inf.close()
			return nil, err
		}
		inf.db = db
		store := auditpostgres.New(db)
		if err := store.Migrate(ctx); err != nil {
			inf.close()
			return nil, err
		}
		inf.audit = store
	}

	rc, err := redis.New(cfg.Redis)
	if err != nil {
		inf.close()
		return nil, err
	}
	inf.redis = rc
	return inf, nil
}

// buildLifecycle assembles the e-FIR service. Policy and station files are
// watched for changes under group.
func buildLifecycle(ctx context.Context, cfg config.Config, log *slog.Logger, inf *infra, auditor *compliance.Publisher, group *errgroup.Group) (*firservice.Service, worker.Outbox, error) {
	gate := policy.NewGate(policy.DefaultKeywords)
	if path := cfg.Policy.KeywordsFile; path != "" {
		loaded, err := policy.LoadGate(path, log)
		if err != nil {
			return nil, nil, err
		}
		gate = loaded
		group.Go(func() error { return gate.Watch(ctx) })
	}

	var lookup jurisdiction.StationLookup
	if path := cfg.Policy.StationsFile; path != "" {
		dir, err := jurisdiction.LoadDirectory(path, log)
		if err != nil {
			return nil, nil, err
		}
		lookup = dir
		group.Go(func() error { return dir.Watch(ctx) })
	}

	signer, err := signature.NewProvider(cfg.Signature.SigningKey, cfg.Signature.Issuer,
		signature.WithTTL(cfg.Signature.ChallengeTTL))
	if err != nil {
		return nil, nil, err
	}

	opts := []firservice.Option{
		firservice.WithLogger(log),
		firservice.WithMetrics(firmetrics.New()),
		firservice.WithJurisdiction(jurisdiction.NewResolver(lookup, log)),
		firservice.WithSignatureProvider(signer),
		firservice.WithAuditPublisher(auditor),
	}

	var (
		store  firservice.Store
		outbox worker.Outbox
	)
	if inf.pool != nil {
		if err := firstore.Migrate(ctx, inf.pool); err != nil {
			return nil, nil, err
		}
		store = firstore.NewPostgres(inf.pool)
		outbox = notificationstore.NewPostgres(inf.pool, cfg.Outbox.Lease)
		opts = append(opts, firservice.WithTx(newFIRPostgresTx(inf.pool)))
	} else {
		mem := notificationstore.NewInMemory(cfg.Outbox.Lease)
		store = firstore.NewInMemory(mem)
		outbox = mem
	}

	svc, err := firservice.New(store, gate, opts...)
	if err != nil {
		return nil, nil, err
	}
	return svc, outbox, nil
}

// buildDispatcher prefers Kafka, falls back to the log, and wraps either in
// the Redis dedupe guard when Redis is configured.
func buildDispatcher(ctx context.Context, cfg config.Config, log *slog.Logger, inf *infra) (dispatch.Dispatcher, func(), error) {
	var (
		d       dispatch.Dispatcher = dispatch.NewLog(log)
		closeFn                     = func() {}
	)
	if cfg.Kafka.Brokers != "" {
		kcfg := kafka.Config{
			Brokers:           cfg.Kafka.Brokers,
			ClientID:          cfg.Kafka.ClientID,
			Topic:             cfg.Kafka.Topic,
			Partitions:        cfg.Kafka.Partitions,
			ReplicationFactor: cfg.Kafka.ReplicationFactor,
			ProduceTimeout:    cfg.Kafka.ProduceTimeout,
		}
		client, err := kafka.NewClient(kcfg)
		if err != nil {
			return nil, nil, err
		}
		if err := kafka.EnsureTopic(ctx, client, kcfg, log); err != nil {
			client.Close()
			return nil, nil, err
		}
		d = dispatch.NewKafka(client, kcfg.Topic)
		closeFn = client.Close
	} else {
		log.Warn("KAFKA_BROKERS not set; notifications are written to the log")
	}
	if inf.redis != nil {
		d = dispatch.NewDeduping(d, inf.redis.Client, cfg.Redis.DedupeTTL)
	}
	return d, closeFn, nil
}

// buildEvidence picks SQLite when a path is configured, then Postgres, then
// memory.
func buildEvidence(ctx context.Context, cfg config.Config, log *slog.Logger, inf *infra, auditor *compliance.Publisher, integrity *auditpublisher.Publisher) (*evidenceservice.Service, func(), error) {
	engine, err := hash.New(cfg.Evidence.Algorithm,
		hash.WithWorkers(cfg.Evidence.HashWorkers),
		hash.WithMaxBytes(cfg.Evidence.MaxBytes),
	)
	if err != nil {
		return nil, nil, err
	}
	opts := []evidenceservice.Option{
		evidenceservice.WithLogger(log),
		evidenceservice.WithMetrics(evidencemetrics.New()),
		evidenceservice.WithIntegrityPublisher(integrity),
	}

	var (
		store   evidenceservice.Store
		closeFn = func() {}
	)
	switch {
	case cfg.Evidence.SQLitePath != "":
		sqlite, err := evidencestore.OpenSQLite(ctx, cfg.Evidence.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store = sqlite
		closeFn = func() { _ = sqlite.Close() }
		opts = append(opts,
			evidenceservice.WithTx(sqlite),
			evidenceservice.WithAuditPublisher(compliance.New(detachedAudit{inf.audit}, compliance.WithLogger(log))),
		)
	case inf.db != nil:
		if err := evidencestore.MigratePostgres(ctx, inf.db); err != nil {
			return nil, nil, err
		}
		pg := evidencestore.NewPostgres(inf.db)
		store = pg
		opts = append(opts, evidenceservice.WithTx(pg), evidenceservice.WithAuditPublisher(auditor))
	default:
		store = evidencestore.NewInMemory()
		opts = append(opts, evidenceservice.WithAuditPublisher(auditor))
	}

	svc, err := evidenceservice.New(store, engine, opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return svc, closeFn, nil
}

// detachedAudit keeps audit writes off the SQLite evidence transaction when
// the audit trail lives in Postgres.
type detachedAudit struct {
	audit.Store
}

func (d detachedAudit) Append(ctx context.Context, event audit.Event) error {
	return d.Store.Append(txcontext.Detach(ctx), event)
}

func newRouter(cfg config.Config, log *slog.Logger, inf *infra, firSvc *firservice.Service, evidenceSvc *evidenceservice.Service) (http.Handler, error) {
	var officerAuth func(http.Handler) http.Handler
	if cfg.Auth.OfficerTokenKey != "" {
		tokens, err := signature.NewOfficerTokens(cfg.Auth.OfficerTokenKey, cfg.Auth.OfficerIssuer, nil)
		if err != nil {
			return nil, err
		}
		officerAuth = middleware.RequireOfficer(tokens, log)
	} else {
		log.Warn("OFFICER_TOKEN_KEY not set; trusting " + middleware.OfficerHeader)
		officerAuth = middleware.TrustOfficerHeader
	}

	var limitStore ratelimitmw.Store = ratelimitstore.NewInMemory(nil)
	if inf.redis != nil {
		limitStore = ratelimitstore.NewRedis(inf.redis.Client, nil)
	}
	limiter := ratelimitmw.New(limitStore, cfg.RateLimit.SubmitLimit, cfg.RateLimit.SubmitWindow, log,
		ratelimitmw.WithMetrics(ratelimitmetrics.New()))

	fh, err := firhandler.New(firSvc, log, officerAuth, firhandler.WithSubmitGuard(limiter.PerIP("efir-submit")))
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(metrics.New()))

	r.Get("/healthz", healthz(inf))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		fh.Register(r)
	})
	// Evidence uploads run without the API timeout.
	evidencehandler.New(evidenceSvc, log, officerAuth,
		middleware.RequireAdminToken(cfg.Auth.AdminToken, log)).Register(r)
	return r, nil
}

func healthz(inf *infra) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := map[string]func(context.Context) error{}
		if inf.pool != nil {
			checks["postgres"] = inf.pool.Ping
		}
		if inf.redis != nil {
			checks["redis"] = inf.redis.Health
		}
		status := http.StatusOK
		body := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
