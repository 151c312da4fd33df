// Пакет export превращает сохраненный документ в PDF.
//
// Основные возможности:
//   - Разбор TipTap JSON в дерево документа и рендер дерева в безопасный HTML.
//   - Сборка самостоятельного HTML-документа со встроенными стилями.
//   - Печать документа в PDF изолированным экземпляром headless Chrome, отдельным на каждый экспорт.
//   - Ограничение времени рендера и числа одновременных экспортов.
//   - Классификация ошибок (поврежденный документ, таймаут, сбой движка, отмена) и метрики Prometheus.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/apierrors"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/editor/markup"
	sandbox "github.com/aisa-it/aiplan/docexport/internal/aiplan/render-sandbox"
	"github.com/aisa-it/aiplan/docexport/pkg/limiter"
	"github.com/ledongthuc/pdf"
)

const DefaultTimeout = 30 * time.Second

type Exporter struct {
	launcher sandbox.Launcher
	renderer *markup.Renderer
	limiter  limiter.ExportLimiter
	timeout  time.Duration
	metrics  *Metrics
}

type Option func(*Exporter)

func WithTimeout(d time.Duration) Option {
	return func(e *Exporter) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithLimiter(l limiter.ExportLimiter) Option {
	return func(e *Exporter) {
		if l != nil {
			e.limiter = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Exporter) {
		e.metrics = m
	}
}

// NewExporter создает экспортер. renderer == nil - рендер с правилами по умолчанию.
func NewExporter(launcher sandbox.Launcher, renderer *markup.Renderer, opts ...Option) *Exporter {
	if renderer == nil {
		renderer = markup.NewRenderer(nil)
	}
	e := &Exporter{
		launcher: launcher,
		renderer: renderer,
		limiter:  limiter.Unlimited{},
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportHTML выполняет все этапы экспорта, кроме печати: разбор, рендер и сборку документа.
func (e *Exporter) ExportHTML(doc StoredDocument) (string, error) {
	tree, err := doc.tree()
	if err != nil {
		return "", err
	}
	return WrapDocument(e.renderer.Render(tree), doc.Title), nil
}

// ExportDocument возвращает PDF документа или ошибку из apierrors:
// ErrMalformedDocument, ErrRenderTimeout, ErrRenderEngineFailure, ErrExportCanceled.
// Экземпляр движка закрывается на любом пути выхода, включая панику во время рендера.
func (e *Exporter) ExportDocument(ctx context.Context, doc StoredDocument) ([]byte, error) {
	start := time.Now()

	res, err := e.export(ctx, doc)

	elapsed := time.Since(start)
	result := resultLabel(err)
	e.metrics.observe(result, elapsed, res.BlockedByType)

	if err != nil {
		log := slog.Error
		if result == resultMalformed || result == resultCanceled {
			log = slog.Warn
		}
		log("Export document", "docId", doc.ID, "result", result, "elapsed", elapsed, "blocked", res.Blocked, "err", err)
		return nil, err
	}

	slog.Info("Document exported", "docId", doc.ID, "bytes", len(res.PDF), "elapsed", elapsed, "blocked", res.Blocked)
	return res.PDF, nil
}

func (e *Exporter) export(ctx context.Context, doc StoredDocument) (res sandbox.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res.PDF = nil
			err = fmt.Errorf("%w: panic: %v", apierrors.ErrRenderEngineFailure, r)
		}
	}()

	document, err := e.ExportHTML(doc)
	if err != nil {
		return res, err
	}

	release, err := e.limiter.Acquire(ctx)
	if err != nil {
		return res, classifyFailure(ctx, ctx, err)
	}
	defer release()

	renderCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	engine, err := e.launcher.Launch(renderCtx)
	if err != nil {
		return res, classifyFailure(ctx, renderCtx, err)
	}
	// Выполняется и при панике: отложенные вызовы срабатывают до recover выше.
	defer func() {
		if err := engine.Close(); err != nil {
			slog.Warn("Close render engine", "docId", doc.ID, "err", err)
		}
	}()

	res, err = engine.Render(renderCtx, document)
	if err != nil {
		res.PDF = nil
		return res, classifyFailure(ctx, renderCtx, err)
	}

	if err := validatePDF(res.PDF); err != nil {
		res.PDF = nil
		return res, fmt.Errorf("%w: %w", apierrors.ErrRenderEngineFailure, err)
	}
	return res, nil
}

// classifyFailure различает отмену вызывающим, истечение времени рендера и сбой движка.
func classifyFailure(parent, render context.Context, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return fmt.Errorf("%w: %w", apierrors.ErrExportCanceled, err)
	}
	if errors.Is(render.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", apierrors.ErrRenderTimeout, err)
	}
	return fmt.Errorf("%w: %w", apierrors.ErrRenderEngineFailure, err)
}

// validatePDF проверяет, что движок вернул разбираемый PDF хотя бы с одной страницей.
func validatePDF(data []byte) error {
	if len(data) == 0 {
		return sandbox.ErrNoOutput
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("parse render output: %w", err)
	}
	if r.NumPage() < 1 {
		return fmt.Errorf("%w: no pages", sandbox.ErrNoOutput)
	}
	return nil
}
