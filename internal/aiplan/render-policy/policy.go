// Определяет правила санитизации, которые применяются при рендере документа для экспорта.
// Правила задаются один раз при старте процесса и не меняются во время работы.
//
// Основные возможности:
//   - Экранирование текста и значений атрибутов (EscapeText).
//   - Классификация URL: безопасный адрес остается как есть, остальные заменяются на URLPlaceholder.
//   - Проверка атрибутов узлов (выравнивание, уровень заголовка, флаг задачи, язык блока кода, цвет, объединение ячеек).
//   - Белый список bluemonday для повторной очистки готовой разметки (ExportPolicy).
//
// Проблемы санитизации никогда не возвращаются как ошибки: небезопасное значение заменяется безопасным значением по умолчанию.
package policy

import (
	"net/netip"
	"regexp"
)

// Policy - набор правил санитизации. После создания не изменяется и может использоваться из нескольких горутин.
type Policy struct {
	// Схемы URL, которые допускаются в href и src.
	AllowedSchemes []string
	// Имена хостов, запрещенные точно, и суффиксы, запрещенные для поддоменов.
	DeniedHosts        []string
	DeniedHostSuffixes []string
	// Запрещенные диапазоны адресов для литералов IP.
	DeniedPrefixes []netip.Prefix

	// Допустимые значения выравнивания. Первое значение используется по умолчанию.
	Alignments []string
	// Допустимый диапазон уровней заголовка.
	MinHeading int
	MaxHeading int
	// Максимальное значение colspan/rowspan ячейки таблицы.
	MaxSpan int
	// Максимальная длина метки языка блока кода.
	MaxLanguageTag int
	// Глубина дерева, после которой узлы выводятся плоским текстом.
	MaxDepth int

	color    *regexp.Regexp
	language *regexp.Regexp
}

const (
	DefaultMaxDepth = 256
	// URLPlaceholder подставляется вместо небезопасного URL. Ссылка на пустой якорь ничего не загружает.
	URLPlaceholder = "#"
)

var defaultDeniedPrefixes = []string{
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"224.0.0.0/3",

	"::/128",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
}

// Default возвращает правила экспорта документов.
func Default() *Policy {
	prefixes := make([]netip.Prefix, 0, len(defaultDeniedPrefixes))
	for _, p := range defaultDeniedPrefixes {
		prefixes = append(prefixes, netip.MustParsePrefix(p))
	}

	return &Policy{
		AllowedSchemes:     []string{"http", "https"},
		DeniedHosts:        []string{"localhost"},
		DeniedHostSuffixes: []string{".localhost"},
		DeniedPrefixes:     prefixes,
		Alignments:         []string{"left", "center", "right", "justify"},
		MinHeading:         1,
		MaxHeading:         6,
		MaxSpan:            64,
		MaxLanguageTag:     64,
		MaxDepth:           DefaultMaxDepth,
		color:              regexp.MustCompile(`^#[0-9a-fA-F]{6}$`),
		language:           regexp.MustCompile(`[^A-Za-z0-9_-]+`),
	}
}

// WithMaxDepth возвращает копию правил с другим ограничением глубины. Значения меньше 1 игнорируются.
func (p *Policy) WithMaxDepth(depth int) *Policy {
	cp := *p
	if depth > 0 {
		cp.MaxDepth = depth
	}
	return &cp
}
