package sandbox

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeLauncher запускает отдельный процесс headless Chrome на каждый экспорт.
type ChromeLauncher struct {
	// Путь к бинарнику Chrome/Chromium. Пустое значение - поиск в PATH.
	ExecPath string
	// Отключить sandbox процесса Chrome (контейнеры без user namespaces).
	NoSandbox bool
	Page      PageSettings
}

func NewChromeLauncher(execPath string, noSandbox bool, settings PageSettings) *ChromeLauncher {
	return &ChromeLauncher{ExecPath: execPath, NoSandbox: noSandbox, Page: settings}
}

func (l *ChromeLauncher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		// Имена хостов не резолвятся: документ обслуживается из памяти, остальные запросы блокируются.
		chromedp.Flag("host-resolver-rules", "MAP * ~NOTFOUND"),
		chromedp.Flag("disable-remote-fonts", true),
		chromedp.Flag("disable-file-system", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-pings", true),
	)
	if l.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.ExecPath))
	}
	if l.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// Launch запускает браузер и открывает вкладку. Отмена ctx завершает процесс браузера.
func (l *ChromeLauncher) Launch(ctx context.Context) (Engine, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, l.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(chromeLog(slog.LevelDebug)),
		chromedp.WithErrorf(chromeLog(slog.LevelDebug)),
	)

	e := &chromeEngine{
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		page:        l.Page,
	}

	// Пустой Run запускает процесс и создает вкладку.
	if err := chromedp.Run(tabCtx); err != nil {
		e.Close()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return e, nil
}

type chromeEngine struct {
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	page        PageSettings

	closeOnce sync.Once
}

func (e *chromeEngine) Render(ctx context.Context, document string) (Result, error) {
	if err := e.tabCtx.Err(); err != nil {
		return Result{}, fmt.Errorf("engine closed: %w", err)
	}

	// Отмена рендера закрывает вкладку, иначе зависший вызов CDP не вернется.
	stop := context.AfterFunc(ctx, e.tabCancel)
	defer stop()

	listenCtx, stopListen := context.WithCancel(e.tabCtx)
	defer stopListen()

	blocked := newBlockedCounter()
	body := base64.StdEncoding.EncodeToString([]byte(document))
	var served atomic.Bool
	domReady := make(chan struct{}, 1)

	chromedp.ListenTarget(listenCtx, func(ev any) {
		switch ev := ev.(type) {
		case *fetch.EventRequestPaused:
			rawURL := ev.Request.URL
			d := classifyRequest(rawURL, ev.ResourceType, served.Load())
			switch d {
			case dispositionServeDocument:
				served.Store(true)
			case dispositionBlock:
				blocked.add(ev.ResourceType)
				slog.Debug("Render request blocked", "type", ev.ResourceType, "host", requestHost(rawURL))
			}
			// Обработчик событий не должен блокироваться, ответ отправляется из отдельной горутины.
			go e.answer(listenCtx, ev.RequestID, d, body)
		case *page.EventDomContentEventFired:
			select {
			case domReady <- struct{}{}:
			default:
			}
		}
	})

	var pdf []byte
	err := chromedp.Run(e.tabCtx,
		fetch.Enable().WithPatterns([]*fetch.RequestPattern{{URLPattern: "*"}}),
		emulation.SetScriptExecutionDisabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, _, errorText, _, err := page.Navigate(documentURL).Do(ctx)
			if err != nil {
				return fmt.Errorf("navigate: %w", err)
			}
			if errorText != "" {
				return fmt.Errorf("navigate: %s", errorText)
			}

			// Ждем только разбора документа: сетевой активности быть не должно.
			select {
			case <-domReady:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPaperWidth(e.page.Size.WidthIn).
				WithPaperHeight(e.page.Size.HeightIn).
				WithMarginTop(mmToInch(e.page.Margins.Top)).
				WithMarginRight(mmToInch(e.page.Margins.Right)).
				WithMarginBottom(mmToInch(e.page.Margins.Bottom)).
				WithMarginLeft(mmToInch(e.page.Margins.Left)).
				WithPrintBackground(true).
				WithPreferCSSPageSize(false).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("print to pdf: %w", err)
			}
			pdf = data
			return nil
		}),
	)

	total, byType := blocked.snapshot()
	res := Result{PDF: pdf, Blocked: total, BlockedByType: byType}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, errors.Join(ctxErr, err)
		}
		return res, err
	}
	if len(pdf) == 0 {
		return res, ErrNoOutput
	}
	return res, nil
}

func (e *chromeEngine) answer(ctx context.Context, id fetch.RequestID, d disposition, body string) {
	c := chromedp.FromContext(ctx)
	if c == nil || c.Target == nil {
		return
	}
	ctx = cdp.WithExecutor(ctx, c.Target)

	var err error
	switch d {
	case dispositionServeDocument:
		err = fetch.FulfillRequest(id, 200).
			WithResponseHeaders([]*fetch.HeaderEntry{
				{Name: "Content-Type", Value: "text/html; charset=utf-8"},
				{Name: "Cache-Control", Value: "no-store"},
			}).
			WithBody(body).
			Do(ctx)
	case dispositionAllowData:
		err = fetch.ContinueRequest(id).Do(ctx)
	default:
		err = fetch.FailRequest(id, network.ErrorReasonBlockedByClient).Do(ctx)
	}

	if err != nil && ctx.Err() == nil {
		slog.Debug("Answer intercepted request", "disposition", d.String(), "err", err)
	}
}

// Close закрывает вкладку и браузер. Отмена аллокатора ждет завершения процесса и удаляет временный профиль.
func (e *chromeEngine) Close() error {
	e.closeOnce.Do(func() {
		e.tabCancel()
		e.allocCancel()
	})
	return nil
}

func chromeLog(level slog.Level) func(string, ...any) {
	return func(format string, args ...any) {
		slog.Log(context.Background(), level, fmt.Sprintf(format, args...), "component", "chromedp")
	}
}
