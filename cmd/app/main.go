package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isoilaj/caregiver-registry/internal/auth"
	"github.com/isoilaj/caregiver-registry/internal/backup"
	"github.com/isoilaj/caregiver-registry/internal/candidate"
	"github.com/isoilaj/caregiver-registry/internal/caregiver"
	"github.com/isoilaj/caregiver-registry/internal/child"
	"github.com/isoilaj/caregiver-registry/internal/config"
	"github.com/isoilaj/caregiver-registry/internal/export"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/cache"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/database/postgres"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/events"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/monitoring"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/tracking"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/workbook"
	"github.com/isoilaj/caregiver-registry/internal/interface/http/handler"
	"github.com/isoilaj/caregiver-registry/internal/interface/http/router"
	"github.com/isoilaj/caregiver-registry/internal/interface/presenter"
	"github.com/isoilaj/caregiver-registry/internal/registry"
	"github.com/isoilaj/caregiver-registry/internal/report"
	"github.com/isoilaj/caregiver-registry/internal/usecase"
)

var version = "dev"

func main() {
	logger := log.New(os.Stdout, "REGISTRY: ", log.LstdFlags|log.Lshortfile)
	if err := run(logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(logger *log.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if err := tracking.Init(cfg.SentryDSN, cfg.Environment, version); err != nil {
		logger.Printf("error tracking disabled: %v", err)
	}
	defer tracking.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []registry.Option{
		registry.WithLogger(logger),
		registry.WithSaveHook(monitoring.RecordSave),
		registry.WithErrorReporter(tracking.Reporter("registry")),
	}
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Printf("reporting mirror disabled: %v", err)
		} else {
			defer db.Close()
			mirror := postgres.NewMirror(db)
			if err := mirror.EnsureSchema(ctx); err != nil {
				return err
			}
			opts = append(opts, registry.WithSaveHook(mirror.Hook()))
			go mirror.Run(ctx, logger, 10*time.Second)
			logger.Printf("mirroring saves to postgres")
		}
	}
	records := registry.NewManager(workbook.NewStore(cfg.WorkbookPath), opts...)

	issues, err := records.Check(ctx)
	if err != nil {
		return err
	}
	logger.Printf("loaded %s with %d data-quality issue(s)", cfg.WorkbookPath, len(issues))

	var summaries cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		c, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Printf("report cache disabled: %v", err)
		} else {
			summaries = c
		}
	}
	defer summaries.Close()

	var publisher events.Publisher = events.Nop{}
	if cfg.KafkaBroker != "" {
		p, err := events.NewKafkaPublisher(cfg.KafkaBroker, cfg.KafkaTopic)
		if err != nil {
			logger.Printf("event publishing disabled: %v", err)
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	present := presenter.NewRegistryPresenter(time.Now)
	backups := backup.NewService(cfg.WorkbookPath, cfg.BackupDir, nil)

	app := router.New(
		router.Options{JWTSecret: cfg.JWTSecret, RequestLog: true},
		auth.NewHandler(auth.NewService(cfg.OperatorName, cfg.OperatorPasswordHash, cfg.JWTSecret)),
		caregiver.NewHandler(caregiver.NewService(records, publisher, logger), present),
		child.NewHandler(child.NewService(records, publisher, logger), present),
		handler.NewIntakeHandler(usecase.NewIntakeService(records, publisher, logger), present),
		handler.NewMaintenanceHandler(usecase.NewMaintenanceService(records, publisher, logger)),
		report.NewHandler(report.NewService(records, summaries, logger)),
		export.NewHandler(export.NewService(records, present, publisher, logger)),
		backup.NewHandler(backups),
		candidate.NewHandler(candidate.NewService(workbook.NewCandidateStore(cfg.CandidatesPath), nil)),
	)

	if cfg.BackupInterval > 0 {
		go backups.Run(ctx, cfg.BackupInterval, logger, tracking.Reporter("backup"))
		logger.Printf("backing up every %s to %s", cfg.BackupInterval, cfg.BackupDir)
	}

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}()

	logger.Printf("listening on %s", cfg.Addr)
	return app.Listen(cfg.Addr)
}
