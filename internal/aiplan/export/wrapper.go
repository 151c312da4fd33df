package export

import (
	"bytes"
	_ "embed"
	"html/template"
	"log/slog"

	policy "github.com/aisa-it/aiplan/docexport/internal/aiplan/render-policy"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
)

var (
	//go:embed style.css
	rawStyle string

	minifier *minify.M = minify.New()

	documentStyle template.CSS

	documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{.Style}}</style>
</head>
<body>
<h1 class="document-title">{{.Title}}</h1>
{{.Body}}
</body>
</html>
`))
)

func init() {
	minifier.AddFunc("text/css", css.Minify)

	style, err := minifier.String("text/css", rawStyle)
	if err != nil {
		slog.Warn("Error minify export style", "err", err)
		style = rawStyle
	}
	documentStyle = template.CSS(style)
}

type documentData struct {
	Title string
	Style template.CSS
	Body  template.HTML
}

// WrapDocument собирает самостоятельный HTML-документ из фрагмента рендера.
// Заголовок - обычный текст, экранируется шаблоном. Фрагмент повторно проходит через белый список policy.ExportPolicy,
// поэтому в документ попадают только теги и атрибуты, которые выдает рендер.
func WrapDocument(fragment, title string) string {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, documentData{
		Title: title,
		Style: documentStyle,
		Body:  template.HTML(policy.ExportPolicy.Sanitize(fragment)),
	}); err != nil {
		// Шаблон статический, ошибка возможна только при записи в буфер.
		slog.Error("Execute export document template", "err", err)
		return ""
	}
	return buf.String()
}
