package policy

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Alignment приводит выравнивание к одному из допустимых значений. Неизвестное значение дает первое из Alignments.
func (p *Policy) Alignment(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if slices.Contains(p.Alignments, v) {
		return v
	}
	return p.Alignments[0]
}

// HeadingLevel возвращает уровень заголовка в диапазоне [MinHeading, MaxHeading]. Нечисловое значение дает MinHeading.
func (p *Policy) HeadingLevel(v any) int {
	n, ok := toInt(v)
	if !ok {
		return p.MinHeading
	}
	return clamp(n, p.MinHeading, p.MaxHeading)
}

// Checked истинно только для булевого true. Строка "true" и другие значения дают false.
func Checked(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

// LanguageTag удаляет из метки языка все символы вне [A-Za-z0-9_-]. Пустой результат допустим.
func (p *Policy) LanguageTag(v string) string {
	v = p.language.ReplaceAllString(v, "")
	if len(v) > p.MaxLanguageTag {
		v = v[:p.MaxLanguageTag]
	}
	return v
}

// Color принимает только цвет вида #rrggbb. Возвращает его в нижнем регистре или false.
func (p *Policy) Color(v string) (string, bool) {
	if !p.color.MatchString(v) {
		return "", false
	}
	return strings.ToLower(v), true
}

// Span возвращает colspan/rowspan ячейки в диапазоне [1, MaxSpan].
func (p *Policy) Span(v any) int {
	n, ok := toInt(v)
	if !ok {
		return 1
	}
	return clamp(n, 1, p.MaxSpan)
}

// ListStart возвращает номер первого элемента нумерованного списка, не меньше 1.
func ListStart(v any) int {
	n, ok := toInt(v)
	if !ok {
		return 1
	}
	return clamp(n, 1, math.MaxInt32)
}

// toInt приводит значение атрибута к целому. Дробная часть отбрасывается.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return clampInt64(n), true
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return clampInt64(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return clampInt64(i), true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) {
		return 0, false
	}
	f = math.Trunc(f)
	if f > math.MaxInt32 {
		return math.MaxInt32, true
	}
	if f < math.MinInt32 {
		return math.MinInt32, true
	}
	return int(f), true
}

func clampInt64(n int64) int {
	return clamp64(n, math.MinInt32, math.MaxInt32)
}

func clamp64(n, lo, hi int64) int {
	return int(max(lo, min(hi, n)))
}

func clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}
