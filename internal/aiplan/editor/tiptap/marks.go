package tiptap

import (
	"log/slog"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/editor/edtypes"
)

// parseMarks переносит форматирование в порядке источника. Неизвестные метки отбрасываются, текст сохраняется.
func parseMarks(marks []TipTapMark) []edtypes.Mark {
	if len(marks) == 0 {
		return nil
	}

	res := make([]edtypes.Mark, 0, len(marks))
	for _, mark := range marks {
		switch mark.Type {
		case "bold":
			res = append(res, edtypes.Bold())
		case "italic":
			res = append(res, edtypes.Italic())
		case "underline":
			res = append(res, edtypes.Underline())
		case "strike":
			res = append(res, edtypes.Strike())
		case "code":
			res = append(res, edtypes.Code())
		case "superscript":
			res = append(res, edtypes.Superscript())
		case "subscript":
			res = append(res, edtypes.Subscript())
		case "link":
			res = append(res, edtypes.Link(getAttrString(mark.Attrs, "href")))
		case "textStyle":
			// textStyle без цвета (например, только размер шрифта) ничего не меняет
			if color := getAttrString(mark.Attrs, "color"); color != "" {
				res = append(res, edtypes.TextColor(color))
			}
		case "highlight":
			res = append(res, edtypes.Highlight(getAttrString(mark.Attrs, "color")))
		default:
			slog.Debug("Unknown mark type", "type", mark.Type)
		}
	}
	return res
}
