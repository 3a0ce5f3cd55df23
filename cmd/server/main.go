package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"dummyapi/internal/docs"
	dummyhandler "dummyapi/internal/dummy/handler"
	dummymetrics "dummyapi/internal/dummy/metrics"
	"dummyapi/internal/dummy/publisher"
	"dummyapi/internal/dummy/service"
	"dummyapi/internal/dummy/store"
	"dummyapi/internal/platform/config"
	"dummyapi/internal/platform/database"
	"dummyapi/internal/platform/health"
	"dummyapi/internal/platform/kafka"
	"dummyapi/internal/platform/kafka/producer"
	"dummyapi/internal/platform/logger"
	platformmetrics "dummyapi/internal/platform/metrics"
	redisclient "dummyapi/internal/platform/redis"
	httptransport "dummyapi/internal/transport/http"
	"dummyapi/migrations"
	request "dummyapi/pkg/platform/middleware/request"
	"dummyapi/pkg/platform/tracer"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = 15 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/dummy.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// infra holds the optional backing services so they can be closed together.
type infra struct {
	db       *database.Pool
	redis    *redisclient.Client
	producer *producer.Producer
}

func (i *infra) close(log *slog.Logger) {
	if i.producer != nil {
		_ = i.producer.Close() //nolint:errcheck // logs its own flush failures
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if err := i.db.Close(); err != nil {
		log.Warn("database close failed", "error", err)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing dummy api",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"store_backend", cfg.StoreBackend,
		"kafka_enabled", cfg.KafkaEnabled(),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	poolMetrics := platformmetrics.NewPool(reg)

	healthHandler := health.New(cfg.Environment, cfg.StoreBackend)
	deps := &infra{}
	defer deps.close(log)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(dummymetrics.New(reg)),
		service.WithTracer(tracer.NewOTel()),
	}

	var dummyStore service.Store
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := database.New(ctx, cfg.Database)
		if err != nil {
			return err
		}
		deps.db = pool
		if err := database.Bootstrap(ctx, pool.DB(), migrations.FS); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
		healthHandler.RegisterCheck("postgres", pool.Health)
		dummyStore = store.NewPostgres(pool.DB())
		opts = append(opts, service.WithTx(newDummyPostgresTx(pool.DB())))
	case config.BackendRedis:
		client, err := redisclient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		deps.redis = client
		healthHandler.RegisterCheck("redis", client.Health)
		dummyStore = store.NewRedis(client.Client)
	default:
		dummyStore = store.NewInMemory()
	}

	if cfg.KafkaEnabled() {
		prod, err := producer.New(producer.Config{
			Brokers: cfg.Kafka.Brokers,
			Acks:    cfg.Kafka.Acks,
		}, log)
		if err != nil {
			return err
		}
		deps.producer = prod
		brokers := kafka.NewHealthChecker(cfg.Kafka.Brokers)
		healthHandler.RegisterCheck(brokers.Name(), brokers.Check)
		pub := publisher.New(prod,
			publisher.WithTopic(cfg.Kafka.Topic),
			publisher.WithLogger(log),
		)
		healthHandler.RegisterCheck("kafka_publisher", func(context.Context) error {
			if pub.Degraded() {
				return errors.New("event publishing degraded")
			}
			return nil
		})
		opts = append(opts, service.WithPublisher(pub))
	}

	svc := service.New(dummyStore, opts...)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
		Latency:        request.NewMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	},
		healthHandler,
		docs.New(cfg.App),
		dummyhandler.New(svc, log),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(poolStatsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if deps.db != nil {
					poolMetrics.ObserveDB(deps.db.Stats())
				}
				if deps.redis != nil {
					deps.redis.RecordPoolStats(poolMetrics)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
