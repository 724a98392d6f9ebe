package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/raid-crawler/internal/api"
	"github.com/ethpandaops/raid-crawler/internal/block"
	"github.com/ethpandaops/raid-crawler/internal/config"
	"github.com/ethpandaops/raid-crawler/internal/crawler"
	"github.com/ethpandaops/raid-crawler/internal/delivery"
	"github.com/ethpandaops/raid-crawler/internal/filter"
	"github.com/ethpandaops/raid-crawler/internal/history"
	"github.com/ethpandaops/raid-crawler/internal/lease"
	"github.com/ethpandaops/raid-crawler/internal/notify"
	"github.com/ethpandaops/raid-crawler/internal/operator"
	"github.com/ethpandaops/raid-crawler/internal/publish"
	"github.com/ethpandaops/raid-crawler/internal/redis"
	"github.com/ethpandaops/raid-crawler/internal/scan"
	"github.com/ethpandaops/raid-crawler/internal/search"
	"github.com/ethpandaops/raid-crawler/internal/server"
	"github.com/ethpandaops/raid-crawler/internal/sysbot"
	"github.com/ethpandaops/raid-crawler/internal/version"
)

// infrastructure holds core infrastructure components. redisClient,
// publisher and store are nil when the matching feature is disabled.
type infrastructure struct {
	redisClient redis.Client
	consoleLock lease.Lease
	publisher   *publish.Publisher
	store       *history.Store
	hub         *operator.Hub
	messages    *operator.History
}

// services holds the crawler components.
type services struct {
	filters    *filter.Store
	controller *crawler.Controller
	engine     *search.Engine
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	logger := setupLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadAndValidateConfig(logger, *configPath)
	if err != nil {
		logger.WithError(err).Fatal("Configuration error")
	}

	infra, err := setupInfrastructure(ctx, logger, cfg)
	if err != nil {
		logger.WithError(err).Fatal("Infrastructure setup failed")
	}

	svc, err := setupServices(ctx, logger, cfg, infra)
	if err != nil {
		logger.WithError(err).Fatal("Service setup failed")
	}

	srv := startServer(logger, cfg, infra, svc)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	shutdownGracefully(logger, cfg, srv, svc, infra)
}

// setupLogger creates and configures the application logger.
func setupLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})

	logger.WithFields(logrus.Fields{
		"version":    version.Short(),
		"git_commit": version.GitCommit,
		"build_date": version.BuildDate,
	}).Info("Starting...")

	return logger
}

// loadAndValidateConfig loads the configuration file and validates it.
func loadAndValidateConfig(logger *logrus.Logger, configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level, parseErr := logrus.ParseLevel(cfg.Server.LogLevel)
	if parseErr != nil {
		logger.WithError(parseErr).Warn("Invalid log level, using info")

		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"port":      cfg.Server.Port,
		"log_level": cfg.Server.LogLevel,
		"console":   cfg.Session.Name,
		"address":   cfg.Session.Address,
		"redis":     cfg.RedisClient().Enabled(),
		"history":   cfg.History.Path != "",
	}).Info("Configuration loaded")

	return cfg, nil
}

// setupInfrastructure initializes redis, the console lease, the state
// publisher, the history database and the operator stream.
func setupInfrastructure(
	ctx context.Context,
	logger *logrus.Logger,
	cfg *config.Config,
) (*infrastructure, error) {
	infra := &infrastructure{
		consoleLock: lease.Local{},
		hub:         operator.NewHub(logger, cfg.Server.AllowedOrigins),
		messages:    operator.NewHistory(cfg.Server.MessageHistory),
	}

	if err := infra.hub.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start operator stream: %w", err)
	}

	if redisCfg := cfg.RedisClient(); redisCfg.Enabled() {
		infra.redisClient = redis.NewClient(logger, redisCfg)

		if err := infra.redisClient.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start Redis client: %w", err)
		}

		infra.consoleLock = lease.New(logger, cfg.LeaseSettings(), infra.redisClient)

		infra.publisher = publish.New(logger, cfg.PublishSettings(), infra.redisClient)
		if err := infra.publisher.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start state publisher: %w", err)
		}
	} else {
		logger.Info("Redis disabled, console lease is process local")
	}

	if cfg.History.Path != "" {
		store, err := history.Open(logger, cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open search history: %w", err)
		}

		infra.store = store
	}

	return infra, nil
}

// setupServices builds the console pipeline: sys-botbase session, region
// reader, delivery cache, filters, raid store, search engine and controller.
func setupServices(
	ctx context.Context,
	logger *logrus.Logger,
	cfg *config.Config,
	infra *infrastructure,
) (*services, error) {
	svc := &services{}

	reporters := operator.Multi{operator.NewLogReporter(logger), infra.hub, infra.messages}
	if infra.publisher != nil {
		reporters = append(reporters, infra.publisher)
	}

	sbCfg := cfg.Sysbot()
	if err := sbCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}

	console := sysbot.New(logger, sbCfg)
	reader := block.NewReader(logger, console, nil)
	events := delivery.NewCache(logger, console, delivery.FlatDecoder{}, delivery.NewDiskStore(cfg.Delivery.CacheDir))

	svc.filters = filter.NewStore(logger, cfg.Filters.Path)
	if err := svc.filters.Load(); err != nil {
		return nil, fmt.Errorf("failed to load filters: %w", err)
	}

	raids := scan.NewStore(logger, cfg.ScanSettings(), reader, scan.RecordDecoder{}, events, svc.filters, reporters)
	if err := raids.SetBoost(cfg.Scan.Boost); err != nil {
		return nil, fmt.Errorf("failed to set boost: %w", err)
	}

	svc.filters.OnLoad(func(*filter.Set) { raids.RecountMatches() })

	if cfg.Filters.Watch {
		if err := svc.filters.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to watch filters: %w", err)
		}
	}

	sinks := notify.Multi{notify.NewLogSink(logger)}
	if len(cfg.Notifications.WebhookURLs) > 0 {
		sinks = append(sinks, notify.NewWebhookSink(logger, cfg.Webhook()))
	}

	var (
		recorder  search.Recorder = history.Nop{}
		observers []search.Observer
	)

	if infra.store != nil {
		recorder = infra.store
	}

	if infra.publisher != nil {
		raids.Subscribe(infra.publisher)
		observers = append(observers, infra.publisher)
	}

	svc.engine = search.NewEngine(logger, cfg.SearchSettings(), search.Deps{
		Console:     console,
		Scanner:     raids,
		Pointers:    reader,
		Filters:     svc.filters,
		Sink:        sinks,
		Reporter:    reporters,
		Recorder:    recorder,
		Observers:   observers,
		ConsoleName: cfg.Session.Name,
	})

	if infra.store != nil {
		tries, successes, err := infra.store.Totals(ctx, cfg.Session.Name)
		if err != nil {
			logger.WithError(err).Warn("Failed to restore search totals")
		} else {
			svc.engine.RestoreTotals(tries, successes)
		}
	}

	svc.controller = crawler.New(logger, cfg.Session.Name, crawler.Deps{
		Session:  console,
		Pointers: reader,
		Scanner:  raids,
		Delivery: events,
		Search:   svc.engine,
		Sink:     sinks,
		Reporter: reporters,
		Lease:    infra.consoleLock,
	})

	return svc, nil
}

// startServer creates and starts the HTTP server.
func startServer(
	logger *logrus.Logger,
	cfg *config.Config,
	infra *infrastructure,
	svc *services,
) *server.Server {
	var hist api.History
	if infra.store != nil {
		hist = infra.store
	}

	handler := api.NewHandler(logger, svc.controller, hist, infra.messages, svc.filters)
	srv := server.New(logger, cfg, handler, infra.hub)

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server starting")

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	return srv
}

// shutdownGracefully performs graceful shutdown of all services.
// Shutdown order:
// 1. HTTP server (stop accepting requests).
// 2. Controller (stop the search, close the session, release the lease).
// 3. Filter watcher, publisher and operator stream.
// 4. History database and Redis client.
func shutdownGracefully(
	logger *logrus.Logger,
	cfg *config.Config,
	srv *server.Server,
	svc *services,
	infra *infrastructure,
) {
	logger.Info("Initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error during server shutdown")
	}

	if err := svc.controller.Close(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error closing console session")
	}

	if cfg.Filters.Watch {
		if err := svc.filters.Stop(); err != nil {
			logger.WithError(err).Error("Error stopping filter watcher")
		}
	}

	if infra.publisher != nil {
		if err := infra.publisher.Stop(); err != nil {
			logger.WithError(err).Error("Error stopping state publisher")
		}
	}

	if err := infra.hub.Stop(); err != nil {
		logger.WithError(err).Error("Error stopping operator stream")
	}

	if infra.store != nil {
		if err := infra.store.Close(); err != nil {
			logger.WithError(err).Error("Error closing search history")
		}
	}

	if infra.redisClient != nil {
		if err := infra.redisClient.Stop(); err != nil {
			logger.WithError(err).Error("Error stopping Redis client")
		}
	}

	logger.Info("Crawler stopped gracefully")
}
