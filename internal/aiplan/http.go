// Пакет aiplan предоставляет HTTP API сервиса экспорта документов AIPlan.
//
// Основные возможности:
//   - Экспорт документа в PDF и просмотр промежуточного HTML.
//   - Сохранение экспортов в архив объектного хранилища со временной ссылкой на скачивание.
//   - Метрики Prometheus на отдельном адресе.
//
// Проверка доступа выполняется прокси AIPlan перед сервисом.
package aiplan

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/config"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/dto"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/export"
	filestorage "github.com/aisa-it/aiplan/docexport/internal/aiplan/file-storage"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	presignTTL      = time.Hour
	shutdownTimeout = 10 * time.Second
)

type Services struct {
	db       *gorm.DB
	exporter *export.Exporter
	// nil, если архив не настроен.
	archive  filestorage.ArchiveStorage
	registry *prometheus.Registry
}

func NewServices(db *gorm.DB, exporter *export.Exporter, archive filestorage.ArchiveStorage, registry *prometheus.Registry) *Services {
	return &Services{db: db, exporter: exporter, archive: archive, registry: registry}
}

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "AIPlan")
		return next(c)
	}
}

// NewEcho собирает сервер API со всеми маршрутами.
func (s *Services) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		slog.Error("Unhandled error in endpoint", "url", c.Request().URL.Path, "err", err)
		EErrorMsgStatus(c, nil, code)
	}

	e.Use(ServerHeader)
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     5,
		MinLength: 2048,
		Skipper: func(c echo.Context) bool {
			// PDF уже сжат.
			return strings.Contains(c.Request().URL.Path, "/pdf/")
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:                 "aiplan",
		Registerer:                s.registry,
		DoNotUseRequestPathFor404: true,
	}))
	e.Pre(middleware.AddTrailingSlash())

	apiGroup := e.Group("/api/")
	apiGroup.GET("_health/", s.health)
	s.AddDocExportServices(apiGroup)

	return e
}

// NewMetricsEcho - сервер метрик Prometheus.
func (s *Services) NewMetricsEcho() *echo.Echo {
	metrics := echo.New()
	metrics.HideBanner = true
	metrics.HidePort = true
	metrics.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: s.registry}))
	return metrics
}

// health godoc
// @id health
// @Summary Состояние сервиса
// @Tags Service
// @Produce json
// @Success 200 {object} dto.Health
// @Failure 503 {object} dto.Health "База данных недоступна"
// @Router /api/_health [get]
func (s *Services) health(c echo.Context) error {
	resp := dto.Health{Status: "ok", Archive: s.archive != nil}

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		slog.Error("Health check database", "err", err)
		resp.Status = "db_unavailable"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// Server запускает API и сервер метрик и останавливает их после отмены ctx.
func Server(ctx context.Context, s *Services, cfg *config.Config, version string) error {
	bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "aiplan",
		Name:      "boot_time",
		Help:      "Server startup time",
	})
	bootTimeGauge.Set(float64(time.Now().UnixMilli()))
	if err := s.registry.Register(bootTimeGauge); err != nil {
		return err
	}

	e := s.NewEcho()
	metrics := s.NewMetricsEcho()

	go func() {
		if err := metrics.Start(cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server fail", "err", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Export API listening", "addr", cfg.ListenAddr, "version", version)
		errCh <- e.Start(cfg.ListenAddr)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if sErr := e.Shutdown(shutdownCtx); sErr != nil {
		slog.Error("Shutdown API server", "err", sErr)
	}
	if sErr := metrics.Shutdown(shutdownCtx); sErr != nil {
		slog.Error("Shutdown metrics server", "err", sErr)
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
