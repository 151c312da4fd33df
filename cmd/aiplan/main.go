// Основной пакет сервиса экспорта документов AIPlan. Читает конфигурацию, подключается к базе документов, собирает экспортер и запускает HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/config"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/cronmanager"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/dao"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/editor/markup"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/export"
	filestorage "github.com/aisa-it/aiplan/docexport/internal/aiplan/file-storage"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/gormlogger"
	sandbox "github.com/aisa-it/aiplan/docexport/internal/aiplan/render-sandbox"
	"github.com/aisa-it/aiplan/docexport/pkg/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var version string = "DEV"

// Пример запуска: go run main.go --noMigration --trace
func main() {
	paramQueries := flag.Bool("paramQueries", true, "Mask queries params in log")
	noMigration := flag.Bool("noMigration", false, "Turn off DB migration")
	trace := flag.Bool("trace", false, "Verbose logs and sql trace")
	flag.Parse()

	PrintBanner()

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
	}

	cfg := config.ReadConfig()

	slog.Info("AIPlan document export start.")

	if cfg.DatabaseDSN == "" {
		slog.Error("Database DSN not preset")
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DatabaseDSN,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.NewGormLogger(slog.Default(), time.Second*4, *paramQueries),
	})
	if err != nil {
		slog.Error("Fail init DB connection", "err", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Fail set settings to conn pool", "err", err)
		os.Exit(1)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(time.Minute * 15)

	if !*noMigration {
		if err := dao.Migrate(db); err != nil {
			slog.Error("DB migration failed", "err", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	limiter.Init(cfg.ExportMaxConcurrent)

	exporter := export.NewExporter(
		sandbox.NewChromeLauncher(cfg.ChromePath, cfg.ChromeNoSandbox, cfg.PageSettings()),
		markup.NewRenderer(cfg.RenderPolicy()),
		export.WithTimeout(cfg.ExportTimeout()),
		export.WithLimiter(limiter.Limiter),
		export.WithMetrics(export.NewMetrics(registry)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var archive filestorage.ArchiveStorage
	if cfg.ArchiveEnabled() {
		storage, err := filestorage.NewMinioStorage(ctx, cfg.AWSEndpoint, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.AWSSSL, cfg.AWSBucketName)
		if err != nil {
			slog.Error("Fail init export archive", "err", err)
			os.Exit(1)
		}
		archive = storage
	} else {
		slog.Info("Export archive disabled")
	}

	cron := cronmanager.NewCronManager(cronmanager.Registry(archive, time.Duration(cfg.ArchiveRetentionDays)*24*time.Hour))
	if err := cron.LoadJobs(); err != nil {
		slog.Error("Fail load cron jobs", "err", err)
		os.Exit(1)
	}
	cron.Start()
	defer cron.Stop()

	if err := aiplan.Server(ctx, aiplan.NewServices(db, exporter, archive, registry), cfg, version); err != nil {
		slog.Error("Server stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("AIPlan document export stopped")
}

// PrintBanner выводит заголовок сервиса с версией.
func PrintBanner() {
	banner := `
          _____ _____  _
    /\   |_   _|  __ \| |
   /  \    | | | |__) | | __ _ _ __
  / /\ \   | | |  ___/| |/ _  | '_ \
 / ____ \ _| |_| |    | | (_| | | | |
/_/    \_\_____|_|    |_|\__,_|_| |_| %s
Document export service
%s
----------------------------------------------------
`
	colorReset := "\033[0m"

	colorYellow := "\033[33m"
	colorBlue := "\033[34m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Printf(banner, formattedVersion, colorBlue+"https://aisa.ru"+colorReset)
}
