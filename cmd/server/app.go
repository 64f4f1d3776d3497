package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"

	"artemiz/internal/audit"
	auditHandler "artemiz/internal/audit/handler"
	"artemiz/internal/catalog"
	catalogHandler "artemiz/internal/catalog/handler"
	httpapi "artemiz/internal/http"
	"artemiz/internal/platform/config"
	platformMetrics "artemiz/internal/platform/metrics"
	"artemiz/internal/platform/postgres"
	"artemiz/internal/platform/redis"
	rateLimitMetrics "artemiz/internal/ratelimit/metrics"
	rateLimitMW "artemiz/internal/ratelimit/middleware"
	rateLimitModels "artemiz/internal/ratelimit/models"
	"artemiz/internal/ratelimit/store/bucket"
	registrationHandler "artemiz/internal/registration/handler"
	registrationMetrics "artemiz/internal/registration/metrics"
	"artemiz/internal/registration/models"
	"artemiz/internal/registration/publisher"
	"artemiz/internal/registration/service"
	registrationStore "artemiz/internal/registration/store/registration"
	"artemiz/internal/registration/store/session"
	"artemiz/pkg/platform/middleware/metadata"
)

// app holds the wired process: the router, the background audit worker and
// everything that needs closing on shutdown.
type app struct {
	router      http.Handler
	auditWorker *audit.Worker
	auditStore  audit.Store
	service     *service.Service

	redis *redis.Client
	db    *sql.DB
	kafka *kgo.Client
}

type registrationStoreBackend interface {
	service.Submitter
	service.RegistrationLister
	publisher.Store
}

func newApp(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	a := &app{}

	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	validator, err := models.NewValidator(cat)
	if err != nil {
		return nil, fmt.Errorf("build validator: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := platformMetrics.New(reg)

	checks := map[string]httpapi.HealthCheck{}

	a.redis, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	var (
		sessions service.SessionStore
		buckets  rateLimitMW.BucketStore
	)
	if a.redis != nil {
		sessions = session.NewRedis(a.redis.Client, cfg.Registration.SessionTTL)
		buckets = bucket.NewRedisBucketStore(a.redis.Client)
		checks["redis"] = a.redis.Health
		log.Info("wizard sessions stored in redis")
	} else {
		sessions = session.NewInMemory(cfg.Registration.SessionTTL)
		buckets = bucket.NewInMemoryBucketStore()
		log.Info("wizard sessions stored in memory")
	}

	a.db, err = postgres.Open(ctx, cfg.Database)
	if err != nil {
		a.Close()
		return nil, err
	}
	var (
		registrations registrationStoreBackend
		auditStore    audit.Store
	)
	if a.db != nil {
		auditStore = audit.NewPostgresStore(a.db)
		registrations = registrationStore.NewPostgres(a.db, registrationStore.WithAuditTrail(auditStore))
		checks["postgres"] = a.db.PingContext
		log.Info("registrations stored in postgres")
	} else {
		registrations = registrationStore.NewInMemory()
		auditStore = audit.NewInMemoryStore()
		log.Info("registrations stored in memory")
	}

	var announcer publisher.Announcer
	if len(cfg.Kafka.Brokers) > 0 {
		a.kafka, err = publisher.NewClient(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			a.Close()
			return nil, err
		}
		announcer = publisher.NewKafkaAnnouncer(a.kafka, cfg.Kafka.Topic, publisher.WithLogger(log))
		log.Info("registrations announced on kafka", "topic", cfg.Kafka.Topic)
	}

	a.auditStore = auditStore
	auditPublisher := audit.NewPublisher(1024)
	a.auditWorker = audit.NewWorker(auditStore, auditPublisher.Inbox(), log)

	a.service = service.New(sessions,
		publisher.NewAnnouncingSubmitter(registrations, announcer, log),
		registrations,
		validator,
		service.WithLogger(log),
		service.WithMetrics(registrationMetrics.New(reg)),
		service.WithAuditPublisher(auditPublisher),
		service.WithRedirectDelay(cfg.Registration.RedirectDelay),
		service.WithSubmitTimeout(cfg.Registration.SubmitTimeout),
	)

	limiter := rateLimitMW.New(buckets, log,
		rateLimitMW.WithLimit(rateLimitModels.ClassSubmit, rateLimitMW.Limit{
			Requests: cfg.RateLimit.SubmitLimit,
			Window:   cfg.RateLimit.SubmitWindow,
		}),
		rateLimitMW.WithMetrics(rateLimitMetrics.New(reg)),
		rateLimitMW.WithDisabled(cfg.RateLimit.Disabled),
	)

	trusted, err := metadata.ParseTrustedProxies(cfg.HTTP.TrustedProxies)
	if err != nil {
		a.Close()
		return nil, err
	}

	regHandler := registrationHandler.New(a.service, log, limiter.RateLimit(rateLimitModels.ClassSubmit))
	a.router = httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		Metrics:        httpMetrics,
		Gatherer:       reg,
		AdminToken:     cfg.AdminToken,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		TrustedProxies: trusted,
		Modules: []httpapi.Registrar{
			catalogHandler.New(cat, log),
			regHandler,
		},
		Admin: []httpapi.AdminRegistrar{
			regHandler,
			auditHandler.New(auditStore, log),
		},
		HealthChecks: checks,
	})
	return a, nil
}

// Close stops navigate-home timers and releases connections.
func (a *app) Close() error {
	if a.service != nil {
		a.service.Close()
	}
	var errs []error
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
