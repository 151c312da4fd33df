// Возврат ошибок API в формате apierrors.DefinedError с логированием.
//
// Основные возможности:
//   - Единый формат ответа об ошибке.
//   - Логирование ошибок с контекстом запроса (метод, путь, место вызова).
//   - Ошибки экспорта логируются по идентификатору документа, без содержимого.
package aiplan

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/apierrors"
	errStack "github.com/aisa-it/aiplan/docexport/internal/aiplan/stack-error"
	"github.com/labstack/echo/v4"
)

// EError возвращает описанную ошибку из цепочки err или ErrGeneric. Серверные ошибки логируются с трассой.
func EError(c echo.Context, err error) error {
	if err == nil {
		slog.Error("Unknown API error",
			"method", c.Request().Method,
			"url", c.Request().URL.Path,
			getCallerFile(),
		)
		return EErrorDefined(c, apierrors.ErrGeneric)
	}

	defined := errStack.Class(err)
	if defined.StatusCode >= http.StatusInternalServerError {
		errStack.GetError(c, err)
	}
	return EErrorDefined(c, defined)
}

// Возврат ошибки <status> с сообщением ошибки(403 код с пустой ошибкой не логируется)
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	er := apierrors.ErrGeneric
	er.StatusCode = status

	if err == nil {
		if status != http.StatusForbidden {
			slog.Error("Unknown API error",
				"method", c.Request().Method,
				slog.Int("status", status),
				"url", c.Request().URL.Path,
				getCallerFile(),
			)
		}
		return EErrorDefined(c, er)
	}

	// Ignore log 404 error
	if status != http.StatusNotFound {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			slog.Int("status", status),
			"url", c.Request().URL.Path,
			getCallerFile(),
		)
	}
	er.Err = err.Error()
	return EErrorDefined(c, er)
}

// EErrorDefined возвращает JSON-ответ с кодом статуса и сообщением об ошибке. Если код статуса не определен, используется 400 Bad Request.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	// If unknown code use 400 Bad Request
	if err.StatusCode != apierrors.StatusClientClosedRequest && http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}

// getCallerFile возвращает файл и строку вызова функции логирования.
func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}
