package markup

import (
	"strconv"
	"strings"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/editor/edtypes"
	policy "github.com/aisa-it/aiplan/docexport/internal/aiplan/render-policy"
)

// writer пишет открывающую разметку узла и запоминает закрывающую в end.
type writer struct {
	policy *policy.Policy
	b      *strings.Builder
	end    string
}

var _ edtypes.Visitor = (*writer)(nil)

func (w *writer) wrap(open, end string) {
	w.b.WriteString(open)
	w.end = end
}

func (w *writer) VisitDocument(*edtypes.Document) {}

func (w *writer) VisitFragment(*edtypes.Fragment) {}

func (w *writer) VisitParagraph(n *edtypes.Paragraph) {
	align := w.policy.Alignment(n.TextAlign)
	if align == w.policy.Alignments[0] {
		w.wrap("<p>", "</p>")
		return
	}
	w.wrap(`<p style="text-align: `+align+`">`, "</p>")
}

func (w *writer) VisitHeading(n *edtypes.Heading) {
	level := strconv.Itoa(w.policy.HeadingLevel(n.Level))
	w.wrap("<h"+level+">", "</h"+level+">")
}

func (w *writer) VisitBulletList(*edtypes.BulletList) {
	w.wrap("<ul>", "</ul>")
}

func (w *writer) VisitOrderedList(n *edtypes.OrderedList) {
	if start := policy.ListStart(n.Start); start > 1 {
		w.wrap(`<ol start="`+strconv.Itoa(start)+`">`, "</ol>")
		return
	}
	w.wrap("<ol>", "</ol>")
}

func (w *writer) VisitListItem(*edtypes.ListItem) {
	w.wrap("<li>", "</li>")
}

func (w *writer) VisitTaskList(*edtypes.TaskList) {
	w.wrap(`<ul class="task-list">`, "</ul>")
}

// Флажок всегда disabled: экспорт не должен быть интерактивным.
func (w *writer) VisitTaskItem(n *edtypes.TaskItem) {
	if policy.Checked(n.Checked) {
		w.wrap(`<li class="task-item"><input type="checkbox" disabled checked>`, "</li>")
		return
	}
	w.wrap(`<li class="task-item"><input type="checkbox" disabled>`, "</li>")
}

func (w *writer) VisitCodeBlock(n *edtypes.CodeBlock) {
	lang := w.policy.LanguageTag(n.Language)
	if lang == "" {
		w.wrap("<pre><code>", "</code></pre>")
		return
	}
	w.wrap(`<pre><code class="language-`+lang+`" data-language="`+lang+`">`, "</code></pre>")
}

func (w *writer) VisitBlockquote(*edtypes.Blockquote) {
	w.wrap("<blockquote>", "</blockquote>")
}

func (w *writer) VisitHorizontalRule(*edtypes.HorizontalRule) {
	w.b.WriteString("<hr>")
}

func (w *writer) VisitHardBreak(*edtypes.HardBreak) {
	w.b.WriteString("<br>")
}

// Размеры изображения из документа не переносятся, ширину ограничивает таблица стилей.
func (w *writer) VisitImage(n *edtypes.Image) {
	w.b.WriteString(`<img src="`)
	w.b.WriteString(policy.EscapeText(w.policy.ClassifyURL(n.Src)))
	w.b.WriteString(`" alt="`)
	w.b.WriteString(policy.EscapeText(n.Alt))
	w.b.WriteString(`"`)
	if n.Title != "" {
		w.b.WriteString(` title="`)
		w.b.WriteString(policy.EscapeText(n.Title))
		w.b.WriteString(`"`)
	}
	w.b.WriteString(">")
}

func (w *writer) VisitTable(*edtypes.Table) {
	w.wrap("<table><tbody>", "</tbody></table>")
}

func (w *writer) VisitTableRow(*edtypes.TableRow) {
	w.wrap("<tr>", "</tr>")
}

func (w *writer) VisitTableHeader(n *edtypes.TableHeader) {
	w.wrap("<th"+w.spans(n.ColSpan, n.RowSpan)+">", "</th>")
}

func (w *writer) VisitTableCell(n *edtypes.TableCell) {
	w.wrap("<td"+w.spans(n.ColSpan, n.RowSpan)+">", "</td>")
}

func (w *writer) spans(colSpan, rowSpan any) string {
	var attrs string
	if n := w.policy.Span(colSpan); n > 1 {
		attrs += ` colspan="` + strconv.Itoa(n) + `"`
	}
	if n := w.policy.Span(rowSpan); n > 1 {
		attrs += ` rowspan="` + strconv.Itoa(n) + `"`
	}
	return attrs
}

// VisitText экранирует текст и оборачивает его метками в порядке источника: первая метка внешняя.
func (w *writer) VisitText(n *edtypes.Text) {
	ends := make([]string, 0, len(n.Marks))
	for _, m := range n.Marks {
		open, end := w.mark(m)
		if open == "" {
			continue
		}
		w.b.WriteString(open)
		ends = append(ends, end)
	}

	w.b.WriteString(policy.EscapeText(n.Text))

	for i := len(ends) - 1; i >= 0; i-- {
		w.b.WriteString(ends[i])
	}
}

// mark возвращает разметку метки. Пустой open означает, что метка не выводится.
// Пользовательские значения в атрибутах (адрес ссылки, цвет) проверяются здесь же.
func (w *writer) mark(m edtypes.Mark) (open, end string) {
	switch m.Kind {
	case edtypes.MarkBold:
		return "<strong>", "</strong>"
	case edtypes.MarkItalic:
		return "<em>", "</em>"
	case edtypes.MarkUnderline:
		return "<u>", "</u>"
	case edtypes.MarkStrike:
		return "<s>", "</s>"
	case edtypes.MarkCode:
		return "<code>", "</code>"
	case edtypes.MarkSuperscript:
		return "<sup>", "</sup>"
	case edtypes.MarkSubscript:
		return "<sub>", "</sub>"
	case edtypes.MarkLink:
		href := policy.EscapeText(w.policy.ClassifyURL(m.Href))
		return `<a href="` + href + `" rel="noopener noreferrer nofollow" referrerpolicy="no-referrer">`, "</a>"
	case edtypes.MarkTextColor:
		if c, ok := w.policy.Color(m.Color); ok {
			return `<span style="color: ` + c + `">`, "</span>"
		}
	case edtypes.MarkHighlight:
		if c, ok := w.policy.Color(m.Color); ok {
			return `<mark style="background-color: ` + c + `">`, "</mark>"
		}
		return "<mark>", "</mark>"
	}
	return "", ""
}
