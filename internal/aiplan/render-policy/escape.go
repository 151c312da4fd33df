package policy

import "strings"

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeText заменяет пять метасимволов разметки именованными сущностями за один проход.
// Используется и для текста, и для значений атрибутов в кавычках.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}
