// Пакет tiptap разбирает сохраненный JSON-контент TipTap редактора в дерево edtypes.
//
// Любая ошибка разбора (синтаксис, неверная форма полей, корень не "doc") возвращается
// как apierrors.ErrMalformedDocument. Глубокая вложенность ошибкой не считается.
// Значения атрибутов не проверяются и переносятся в дерево как есть.
package tiptap

// TipTapNode представляет узел в дереве документа TipTap.
type TipTapNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []TipTapNode   `json:"content,omitempty"`
	Marks   []TipTapMark   `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// TipTapMark представляет форматирование текста (bold, italic, link и т.д.).
type TipTapMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}
