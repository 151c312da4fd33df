package edtypes

// MarkKind - тип форматирования текста.
type MarkKind int

const (
	MarkBold MarkKind = iota
	MarkItalic
	MarkUnderline
	MarkStrike
	MarkCode
	MarkLink
	MarkTextColor
	MarkHighlight
	MarkSuperscript
	MarkSubscript
)

var markNames = [...]string{
	MarkBold:        "bold",
	MarkItalic:      "italic",
	MarkUnderline:   "underline",
	MarkStrike:      "strike",
	MarkCode:        "code",
	MarkLink:        "link",
	MarkTextColor:   "textStyle",
	MarkHighlight:   "highlight",
	MarkSuperscript: "superscript",
	MarkSubscript:   "subscript",
}

func (k MarkKind) String() string {
	if k < 0 || int(k) >= len(markNames) {
		return "unknown"
	}
	return markNames[k]
}

// Mark - форматирование, примененное к тексту.
// Href заполняется только для ссылок, Color - для цвета текста и подсветки.
// Значения не проверены и приходят из документа как есть.
type Mark struct {
	Kind  MarkKind
	Href  string
	Color string
}

func Bold() Mark              { return Mark{Kind: MarkBold} }
func Italic() Mark            { return Mark{Kind: MarkItalic} }
func Underline() Mark         { return Mark{Kind: MarkUnderline} }
func Strike() Mark            { return Mark{Kind: MarkStrike} }
func Code() Mark              { return Mark{Kind: MarkCode} }
func Superscript() Mark       { return Mark{Kind: MarkSuperscript} }
func Subscript() Mark         { return Mark{Kind: MarkSubscript} }
func Link(href string) Mark   { return Mark{Kind: MarkLink, Href: href} }
func TextColor(c string) Mark { return Mark{Kind: MarkTextColor, Color: c} }
func Highlight(c string) Mark { return Mark{Kind: MarkHighlight, Color: c} }
