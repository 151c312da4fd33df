// Ошибка с трассой вызовов и контекстом (идентификатор документа, размеры, длительности) для логирования на уровне HTTP.
// Содержимое документов в контекст не кладется.
package stack_error

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/apierrors"
	"github.com/labstack/echo/v4"
)

type TrackerError struct {
	Context  map[string]any
	ErrStack []slog.Attr
	cause    error
}

// TrackErrorStack добавляет место вызова в трассу ошибки. Если err уже TrackerError, трасса дополняется, иначе создается новая.
func TrackErrorStack(err error) *TrackerError {
	if err == nil {
		return nil
	}

	var te *TrackerError
	if errors.As(err, &te) {
		te.ErrStack = append(te.ErrStack, getCallerFile(err))
		return te
	}

	newTe := newTrackError(err)
	newTe.ErrStack = append(newTe.ErrStack, getCallerFile(err))
	return newTe
}

func newTrackError(err error) *TrackerError {
	return &TrackerError{
		Context:  make(map[string]any),
		ErrStack: make([]slog.Attr, 0),
		cause:    err,
	}
}

// AddContext добавляет значение в контекст ошибки. Уже заданный ключ не перезаписывается.
func (te *TrackerError) AddContext(k string, v any) *TrackerError {
	if _, ok := te.Context[k]; !ok {
		te.Context[k] = v
	}
	return te
}

// Class возвращает описанную ошибку API, лежащую в цепочке, или ErrGeneric.
func Class(err error) apierrors.DefinedError {
	var defined apierrors.DefinedError
	if errors.As(err, &defined) {
		return defined
	}
	return apierrors.ErrGeneric
}

// GetError пишет в лог ошибку с трассой и контекстом, дополняя её данными запроса.
func GetError(c echo.Context, err error) {
	var trackerError *TrackerError
	var attrs []any

	if errors.As(err, &trackerError) {
		trackerError.traceOut()
		attrs = trackerError.getAttrs()
		attrs = append(attrs, slog.String("err", err.Error()))
	} else {
		attrs = []any{slog.String("raw_error", err.Error())}
	}

	attrs = append(attrs, slog.Int("code", Class(err).Code))

	if c != nil {
		attrs = append(attrs,
			slog.String("method", c.Request().Method),
			slog.String("url", c.Request().URL.Path))
	}

	slog.With(attrs...).Error("stack error")
}

func (te *TrackerError) Error() string {
	if te.cause != nil {
		return te.cause.Error()
	}
	return "TrackerError"
}

func (te *TrackerError) Unwrap() error {
	return te.cause
}

func (te *TrackerError) getAttrs() []any {
	res := make([]any, 0, len(te.Context))
	for k, v := range te.Context {
		res = append(res, slog.Any(k, v))
	}
	return res
}

func (te *TrackerError) traceOut() {
	for _, attr := range te.ErrStack {
		slog.Debug("trace:", attr)
	}
}

func getCallerFile(err error) slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.String("trace", "unknown")
	}
	_, file := filepath.Split(path)
	return slog.String("trace", fmt.Sprintf("%s:%d %s", file, no, err.Error()))
}

func (te *TrackerError) AddErr(err error) *TrackerError {
	te.ErrStack = append(te.ErrStack, getCallerFile(err))
	return te
}
