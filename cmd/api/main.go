package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/Ramsey-B/fern/config"
	batchrepo "github.com/Ramsey-B/fern/internal/repositories/batch"
	listingrepo "github.com/Ramsey-B/fern/internal/repositories/listing"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/ingest"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/middleware"
	batchroutes "github.com/Ramsey-B/fern/pkg/routes/batch"
	fieldroutes "github.com/Ramsey-B/fern/pkg/routes/field"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	listingroutes "github.com/Ramsey-B/fern/pkg/routes/listing"
	"github.com/Ramsey-B/fern/pkg/store"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		panic(fmt.Errorf("failed to load config: %w", err))
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.AppName, cfg.Version)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to shut down tracing")
		}
	}()

	db, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := runMigrations(cfg, db, logger); err != nil {
		logger.WithError(err).Error("Failed to run migrations")
		os.Exit(1)
	}

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaEventsTopic,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: cfg.KafkaRequiredAcks,
		Compression:  cfg.KafkaCompression,
	}, logger)
	defer producer.Close()

	emitter := events.NewKafkaEmitter(producer, logger)

	storeClient := store.NewHTTPClient(store.Config{
		BaseURL:         cfg.StoreBaseURL,
		Timeout:         cfg.StoreTimeout,
		MaxIdleConns:    cfg.StoreMaxIdleConns,
		IdleConnTimeout: cfg.StoreIdleConnTimeout,
	}, logger)

	batches := batchrepo.NewRepository(db, logger)
	listings := listingrepo.NewRepository(db, logger)

	orchestrator := ingest.NewOrchestrator(ingest.Config{
		MappingThreshold: cfg.MappingThreshold,
		ReviewThreshold:  cfg.ReviewThreshold,
		ParseWorkers:     cfg.ParseWorkerCount,
		MaxRowsPerBatch:  cfg.MaxRowsPerBatch,
	}, batches, listings, storeClient, emitter, logger)

	if err := registerDependencies(logger, db, batches, listings, orchestrator); err != nil {
		logger.WithError(err).Error("Failed to register dependencies")
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Context())
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(echomw.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes, 10)))
	e.HTTPErrorHandler = middleware.Error(logger)

	checker := health.NewChecker(db, cfg.Version)
	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	batchroutes.Register(api.Group("/batches"))
	listingroutes.Register(api.Group("/listings"))
	fieldroutes.Register(api.Group("/fields"))

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	go func() {
		checker.SetReady(true)
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.WithField("addr", addr).Info("Starting HTTP server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("HTTP server stopped")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
}

func newLogger(cfg config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		panic(fmt.Errorf("failed to build logger: %w", err))
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func connectDatabase(ctx context.Context, cfg config.Config, logger ectologger.Logger) (database.DB, error) {
	port, err := strconv.Atoi(cfg.DatabasePort)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT %q: %w", cfg.DatabasePort, err)
	}

	return database.Connect(ctx, database.Config{
		Host:            cfg.DatabaseHost,
		Port:            port,
		User:            cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
}

func runMigrations(cfg config.Config, db database.DB, logger ectologger.Logger) error {
	instance, ok := db.(*database.DatabaseInstance)
	if !ok {
		return fmt.Errorf("migrations require a direct database connection")
	}

	driver, err := migratepg.WithInstance(instance.DB.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	service := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
	})
	return service.Migrate(cfg.DatabaseName, driver)
}

func registerDependencies(logger ectologger.Logger, db database.DB, batches *batchrepo.Repository, listings *listingrepo.Repository, orchestrator *ingest.Orchestrator) error {
	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		return err
	}

	if err := ectoinject.RegisterInstance[ectologger.Logger](container, logger); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[database.DB](container, db); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*batchrepo.Repository](container, batches); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*listingrepo.Repository](container, listings); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*ingest.Orchestrator](container, orchestrator); err != nil {
		return err
	}
	return nil
}
