// Пакет markup строит HTML-фрагмент из дерева документа для экспорта.
//
// Каждое значение из документа (текст, URL, атрибуты) проходит через правила пакета render-policy,
// поэтому рендер не возвращает ошибок: небезопасные значения заменяются безопасными.
// Обход выполняется на явном стеке; узлы глубже Policy.MaxDepth выводятся экранированным плоским текстом.
package markup

import (
	"strings"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/editor/edtypes"
	policy "github.com/aisa-it/aiplan/docexport/internal/aiplan/render-policy"
)

// Renderer не хранит состояния между вызовами и может использоваться из нескольких горутин.
type Renderer struct {
	policy *policy.Policy
}

func NewRenderer(p *policy.Policy) *Renderer {
	if p == nil {
		p = policy.Default()
	}
	return &Renderer{policy: p}
}

type frame struct {
	node  edtypes.Node
	depth int
	// Закрывающая разметка. Используется, когда node == nil.
	end string
}

// Render возвращает HTML-фрагмент для поддерева root. Одинаковое дерево всегда дает одинаковый результат.
func (r *Renderer) Render(root edtypes.Node) string {
	if root == nil {
		return ""
	}

	var b strings.Builder
	w := &writer{policy: r.policy, b: &b}

	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.node == nil {
			b.WriteString(f.end)
			continue
		}

		if f.depth > r.policy.MaxDepth {
			b.WriteString(policy.EscapeText(edtypes.PlainText(f.node)))
			continue
		}

		w.end = ""
		f.node.Accept(w)

		if w.end != "" {
			stack = append(stack, frame{end: w.end})
		}

		children := f.node.Children()
		for i := len(children) - 1; i >= 0; i-- {
			if children[i] == nil {
				continue
			}
			stack = append(stack, frame{node: children[i], depth: f.depth + 1})
		}
	}

	return b.String()
}

// Render строит фрагмент с правилами по умолчанию.
func Render(root edtypes.Node) string {
	return NewRenderer(nil).Render(root)
}
