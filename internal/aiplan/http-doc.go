package aiplan

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/apierrors"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/dao"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/dto"
	filestorage "github.com/aisa-it/aiplan/docexport/internal/aiplan/file-storage"
	errStack "github.com/aisa-it/aiplan/docexport/internal/aiplan/stack-error"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// previewCSP запрещает странице предпросмотра любые загрузки, кроме data:-изображений и встроенных стилей.
const previewCSP = "default-src 'none'; img-src data:; style-src 'unsafe-inline'"

const maxFileNameLen = 100

type DocContext struct {
	echo.Context
	Doc dao.Doc
}

func (s *Services) DocMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		docId, err := uuid.FromString(c.Param("docId"))
		if err != nil {
			return EErrorDefined(c, apierrors.ErrDocBadRequest)
		}

		doc, err := dao.GetDoc(s.db.WithContext(c.Request().Context()), docId)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return EErrorDefined(c, apierrors.ErrDocNotFound)
			}
			return EError(c, errStack.TrackErrorStack(err).AddContext("docId", docId))
		}

		return next(DocContext{c, *doc})
	}
}

func (s *Services) AddDocExportServices(g *echo.Group) {
	docGroup := g.Group("docs/:docId", s.DocMiddleware)

	docGroup.GET("/pdf/", s.getDocPdf)
	docGroup.GET("/html/", s.getDocHtml)
	docGroup.POST("/pdf/archive/", s.archiveDocPdf)
}

// getDocPdf godoc
// @id getDocPdf
// @Summary Документы: экспорт в PDF
// @Tags Docs
// @Produce application/pdf
// @Param docId path string true "ID документа"
// @Success 200 {file} binary "PDF-файл документа"
// @Failure 400 {object} apierrors.DefinedError "Некорректный ID документа"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Failure 422 {object} apierrors.DefinedError "Содержимое документа повреждено"
// @Failure 502 {object} apierrors.DefinedError "Сбой движка рендера"
// @Failure 504 {object} apierrors.DefinedError "Превышено время рендера"
// @Router /api/docs/{docId}/pdf [get]
func (s *Services) getDocPdf(c echo.Context) error {
	doc := c.(DocContext).Doc

	data, err := s.exporter.ExportDocument(c.Request().Context(), doc.ToStored())
	if err != nil {
		return EError(c, errStack.TrackErrorStack(err).AddContext("docId", doc.ID))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, attachmentDisposition(doc.Title, ".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

// getDocHtml godoc
// @id getDocHtml
// @Summary Документы: HTML, который передается в движок рендера
// @Tags Docs
// @Produce html
// @Param docId path string true "ID документа"
// @Success 200 {string} string "HTML-документ"
// @Failure 422 {object} apierrors.DefinedError "Содержимое документа повреждено"
// @Router /api/docs/{docId}/html [get]
func (s *Services) getDocHtml(c echo.Context) error {
	doc := c.(DocContext).Doc

	html, err := s.exporter.ExportHTML(doc.ToStored())
	if err != nil {
		return EError(c, errStack.TrackErrorStack(err).AddContext("docId", doc.ID))
	}

	h := c.Response().Header()
	h.Set(echo.HeaderContentSecurityPolicy, previewCSP)
	h.Set(echo.HeaderXContentTypeOptions, "nosniff")
	h.Set("Referrer-Policy", "no-referrer")
	return c.HTML(http.StatusOK, html)
}

// archiveDocPdf godoc
// @id archiveDocPdf
// @Summary Документы: экспорт в PDF с сохранением в архив
// @Tags Docs
// @Produce json
// @Param docId path string true "ID документа"
// @Success 201 {object} dto.ArchivedExport "Ключ архива и временная ссылка"
// @Failure 501 {object} apierrors.DefinedError "Архив не настроен"
// @Router /api/docs/{docId}/pdf/archive [post]
func (s *Services) archiveDocPdf(c echo.Context) error {
	if s.archive == nil {
		return EErrorDefined(c, apierrors.ErrArchiveDisabled)
	}
	doc := c.(DocContext).Doc
	ctx := c.Request().Context()

	data, err := s.exporter.ExportDocument(ctx, doc.ToStored())
	if err != nil {
		return EError(c, errStack.TrackErrorStack(err).AddContext("docId", doc.ID))
	}

	now := time.Now()
	key := filestorage.ArchiveKey(doc.ID, now)
	if err := s.archive.Save(ctx, key, data, "application/pdf", &filestorage.Metadata{DocId: doc.ID.String()}); err != nil {
		return EError(c, errStack.TrackErrorStack(fmt.Errorf("%w: %w", apierrors.ErrArchiveFailed, err)).
			AddContext("docId", doc.ID).
			AddContext("key", key))
	}

	u, err := s.archive.PresignedURL(ctx, key, presignTTL)
	if err != nil {
		return EError(c, errStack.TrackErrorStack(fmt.Errorf("%w: %w", apierrors.ErrArchiveFailed, err)).
			AddContext("docId", doc.ID).
			AddContext("key", key))
	}

	return c.JSON(http.StatusCreated, dto.ArchivedExport{
		Doc:       doc.ToLightDTO(),
		Key:       key,
		URL:       u.String(),
		ExpiresAt: now.Add(presignTTL).UTC(),
	})
}

// exportFileName оставляет в заголовке документа буквы, цифры, пробелы и -_.
func exportFileName(title string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	name := strings.Trim(strings.Join(strings.Fields(b.String()), " "), ".")
	if runes := []rune(name); len(runes) > maxFileNameLen {
		name = strings.TrimSpace(string(runes[:maxFileNameLen]))
	}
	if name == "" {
		return "document"
	}
	return name
}

func attachmentDisposition(title, ext string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": exportFileName(title) + ext})
}
