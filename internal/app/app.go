// Package app assembles the mandate service from configuration: stores,
// brokers, caches, services and the HTTP router.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"mandate/internal/document"
	jwttoken "mandate/internal/jwt_token"
	mandatehandler "mandate/internal/mandate/handler"
	mandatemetrics "mandate/internal/mandate/metrics"
	"mandate/internal/mandate/refnum"
	mandateservice "mandate/internal/mandate/service"
	mandatestore "mandate/internal/mandate/store"
	"mandate/internal/mandate/verify"
	"mandate/internal/notification"
	"mandate/internal/platform/config"
	"mandate/internal/platform/kafka"
	httpmetrics "mandate/internal/platform/metrics"
	"mandate/internal/platform/postgres"
	redisclient "mandate/internal/platform/redis"
	ratemetrics "mandate/internal/ratelimit/metrics"
	ratemw "mandate/internal/ratelimit/middleware"
	ratemodels "mandate/internal/ratelimit/models"
	"mandate/internal/ratelimit/store/bucket"
	staffhandler "mandate/internal/staff/handler"
	"mandate/internal/staff/password"
	staffservice "mandate/internal/staff/service"
	staffstore "mandate/internal/staff/store"
	"mandate/migrations"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/audit"
	"mandate/pkg/platform/audit/publishers/compliance"
	auditmemory "mandate/pkg/platform/audit/store/memory"
	auditpostgres "mandate/pkg/platform/audit/store/postgres"
	"mandate/pkg/platform/audit/worker"
	"mandate/pkg/platform/httputil"
	authmw "mandate/pkg/platform/middleware/auth"
	"mandate/pkg/platform/middleware/metadata"
	"mandate/pkg/platform/middleware/request"
	"mandate/pkg/platform/middleware/requesttime"
	txcontext "mandate/pkg/platform/tx"
)

// TokenAudience is the audience of staff access tokens.
const TokenAudience = "mandate-staff"

// App holds the assembled service.
type App struct {
	Router   http.Handler
	Mandates *mandateservice.Service
	Staff    *staffservice.Service
	Verifier *verify.Verifier
	Signer   *verify.Signer

	db      *sql.DB
	redis   *redisclient.Client
	kafka   *kgo.Client
	relay   *worker.Relay
	logger  *slog.Logger
	closers []func() error
}

type Option func(*options)

type options struct {
	registry *prometheus.Registry
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// Build connects every configured backend. Without a database URL the
// service runs on in-memory stores; without Redis documents are rendered on
// every request; without Kafka notifications are only logged.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (_ *App, err error) {
	o := options{registry: prometheus.NewRegistry()}
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	var (
		mandates interface {
			mandateservice.Store
			verify.MandateFinder
		}
		accounts staffservice.Store
		auditLog audit.Store
		outbox   worker.Outbox
		txRunner txcontext.Runner = txcontext.NoopRunner{}
	)
	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.closers = append(a.closers, db.Close)
		if cfg.Database.AutoMigrate {
			if _, err := postgres.Migrate(ctx, db, migrations.FS, logger); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		auditStore := auditpostgres.New(db)
		mandates = mandatestore.NewPostgres(db)
		accounts = staffstore.NewPostgres(db)
		auditLog, outbox = auditStore, auditStore
		txRunner = txcontext.NewSQLRunner(db)
	} else {
		logger.WarnContext(ctx, "no database configured, using in-memory stores")
		auditStore := auditmemory.NewInMemoryStore()
		mandates = mandatestore.NewInMemory()
		accounts = staffstore.NewInMemory()
		auditLog, outbox = auditStore, auditStore
	}

	docOpts := []document.Option{
		document.WithLogger(logger),
		document.WithMetrics(document.NewMetrics(o.registry)),
	}
	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		a.redis = rc
		a.closers = append(a.closers, rc.Close)
		docOpts = append(docOpts, document.WithCache(document.NewRedisCache(rc.Client, cfg.Documents.CacheTTL)))
	}

	var buckets ratemw.BucketStore = bucket.NewInMemoryBucketStore()
	if rc != nil {
		buckets = bucket.NewRedisStore(rc.Client)
	}
	limiter := ratemw.New(buckets, logger,
		ratemw.WithDisabled(!cfg.RateLimit.Enabled),
		ratemw.WithMetrics(ratemetrics.New(o.registry)),
		ratemw.WithLimit(ratemodels.ClassPublic, ratemodels.Limit{Requests: cfg.RateLimit.PublicRequests, Window: cfg.RateLimit.Window}),
		ratemw.WithLimit(ratemodels.ClassLogin, ratemodels.Limit{Requests: cfg.RateLimit.LoginAttempts, Window: cfg.RateLimit.Window}),
	)

	var notifier mandateservice.Notifier = notification.NewLogNotifier(logger)
	if cfg.Kafka.Enabled() {
		client, err := kafka.NewClient(ctx, cfg.Kafka)
		if err != nil {
			return nil, err
		}
		a.kafka = client
		a.closers = append(a.closers, func() error { client.Close(); return nil })
		if err := kafka.EnsureTopics(ctx, client, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor,
			cfg.Kafka.NotificationsTopic, cfg.Kafka.AuditTopic); err != nil {
			return nil, err
		}
		notifier = notification.Fanout{
			notification.NewBrokerNotifier(kafka.NewProducer(client, cfg.Kafka.NotificationsTopic)),
			notification.NewLogNotifier(logger),
		}
		a.relay = worker.NewRelay(outbox, kafka.NewProducer(client, cfg.Kafka.AuditTopic),
			worker.WithInterval(cfg.Kafka.OutboxPollInterval),
			worker.WithBatchSize(cfg.Kafka.OutboxBatchSize),
			worker.WithTxRunner(txRunner),
			worker.WithLogger(logger),
		)
	}

	signer, err := verify.NewSigner(cfg.Documents.SigningKey, cfg.Documents.VerificationBaseURL)
	if err != nil {
		return nil, err
	}
	a.Signer = signer
	documents := document.NewService(document.NewPdfRenderer(signer, cfg.Documents.Issuer), docOpts...)

	publisher := compliance.New(auditLog,
		compliance.WithLogger(logger),
		compliance.WithMetrics(compliance.NewMetrics(o.registry)),
	)

	a.Mandates, err = mandateservice.New(mandates,
		mandateservice.WithLogger(logger),
		mandateservice.WithMetrics(mandatemetrics.New(o.registry)),
		mandateservice.WithNotifier(notifier),
		mandateservice.WithDocuments(documents),
		mandateservice.WithAuditPublisher(publisher),
		mandateservice.WithTxRunner(txRunner),
		mandateservice.WithReferenceGenerator(refnum.New(cfg.Mandate.ReferencePrefix)),
		mandateservice.WithAutoIssue(cfg.Mandate.AutoIssuePdf),
		mandateservice.WithReferenceAttempts(cfg.Mandate.ReferenceRetries),
	)
	if err != nil {
		return nil, err
	}
	a.Verifier = verify.NewVerifier(mandates, signer)

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, TokenAudience)
	a.Staff, err = staffservice.New(accounts, tokens,
		staffservice.WithLogger(logger),
		staffservice.WithAuditPublisher(publisher),
		staffservice.WithPasswordHasher(password.NewHasher(cfg.Auth.BcryptCost)),
		staffservice.WithTokenTTL(cfg.Auth.AccessTokenTTL),
	)
	if err != nil {
		return nil, err
	}
	if cfg.Bootstrap.SuperAdminEmail != "" {
		if _, err := a.Staff.BootstrapSuperAdmin(ctx, cfg.Bootstrap.SuperAdminEmail, cfg.Bootstrap.SuperAdminPassword); err != nil {
			return nil, fmt.Errorf("bootstrap super admin: %w", err)
		}
	}

	a.Router = a.router(cfg, o.registry, jwttoken.NewJWTServiceAdapter(tokens), limiter)
	return a, nil
}

func (a *App) router(cfg config.Config, reg *prometheus.Registry, validator authmw.JWTValidator, limiter *ratemw.Middleware) http.Handler {
	m := httpmetrics.New(reg)
	mandates := mandatehandler.New(a.Mandates, a.Verifier, a.logger)
	staff := staffhandler.New(a.Staff, a.logger)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(a.logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.AccessLog(a.logger, m))
	if len(cfg.Server.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", request.HeaderRequestID},
			ExposedHeaders:   []string{request.HeaderRequestID, "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/health", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Use(limiter.RateLimit(ratemodels.ClassPublic))
		mandates.RegisterPublic(r)
	})
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(limiter.RateLimit(ratemodels.ClassLogin))
		staff.RegisterPublic(r)
	})
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authmw.RequireAuth(validator, a.logger))
		r.Use(authmw.RequireRole(a.logger, id.RoleAdmin, id.RoleSuperAdmin))
		mandates.RegisterAdmin(r)
		staff.RegisterAdmin(r)
	})
	return r
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true
	if a.db != nil {
		checks["database"] = "ok"
		if err := a.db.PingContext(ctx); err != nil {
			checks["database"], healthy = "unavailable", false
		}
	}
	if a.redis != nil {
		checks["redis"] = "ok"
		if err := a.redis.Health(ctx); err != nil {
			checks["redis"], healthy = "unavailable", false
		}
	}

	status := http.StatusOK
	body := map[string]any{"status": "ok", "checks": checks}
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	httputil.WriteJSON(w, status, body)
}

// DB is the database pool, or nil when running in memory.
func (a *App) DB() *sql.DB {
	return a.db
}

// RunWorkers runs background workers until ctx is cancelled.
func (a *App) RunWorkers(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if a.relay != nil {
		g.Go(func() error {
			a.logger.InfoContext(ctx, "audit outbox relay started")
			err := a.relay.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
