// Пакет содержит определения ошибок сервиса экспорта документов. Каждая ошибка имеет код, статус HTTP и описание, что позволяет удобно обрабатывать исключения и предоставлять информативные сообщения пользователю.
//
// Основные возможности:
//   - Определение ошибок загрузки документа, рендера и архива экспортов.
//   - Предоставление кодов ошибок, соответствующих кодам HTTP статусов.
//   - Включение сообщений об ошибках для удобной обработки и отображения пользователю.
//   - Функция для форматирования сообщений об ошибках с использованием аргументов.
package apierrors

import (
	"fmt"
	"net/http"
)

// StatusClientClosedRequest - нестандартный статус для отмененных клиентом запросов.
const StatusClientClosedRequest = 499

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

// WithFormattedMessage возвращает копию ошибки с подставленными в сообщения аргументами.
func (e DefinedError) WithFormattedMessage(args ...any) DefinedError {
	e.Err = fmt.Sprintf(e.Err, args...)
	e.RuErr = fmt.Sprintf(e.RuErr, args...)
	return e
}

var (
	ErrGeneric = DefinedError{Code: 1, StatusCode: http.StatusInternalServerError, Err: "internal server error", RuErr: "Внутренняя ошибка сервера"}

	// 34** - doc errors
	ErrDocNotFound   = DefinedError{Code: 3401, StatusCode: http.StatusNotFound, Err: "doc not found", RuErr: "Документ не найден"}
	ErrDocBadRequest = DefinedError{Code: 3404, StatusCode: http.StatusBadRequest, Err: "bad request", RuErr: "Некорректный запрос"}

	// Export errors
	ErrMalformedDocument   = DefinedError{Code: 3411, StatusCode: http.StatusUnprocessableEntity, Err: "document content is malformed", RuErr: "Содержимое документа повреждено и не может быть экспортировано"}
	ErrRenderTimeout       = DefinedError{Code: 3412, StatusCode: http.StatusGatewayTimeout, Err: "document render timed out", RuErr: "Превышено время формирования PDF-файла"}
	ErrRenderEngineFailure = DefinedError{Code: 3413, StatusCode: http.StatusBadGateway, Err: "render engine failure", RuErr: "Не удалось сформировать PDF-файл"}
	ErrExportCanceled      = DefinedError{Code: 3414, StatusCode: StatusClientClosedRequest, Err: "export canceled", RuErr: "Экспорт документа отменен"}

	// 50** - storage errors
	ErrArchiveDisabled = DefinedError{Code: 5002, StatusCode: http.StatusNotImplemented, Err: "export archive is not configured", RuErr: "Хранилище экспортов не настроено"}
	ErrArchiveFailed   = DefinedError{Code: 5003, StatusCode: http.StatusInternalServerError, Err: "failed to store export in archive", RuErr: "Не удалось сохранить PDF-файл в хранилище"}
)
