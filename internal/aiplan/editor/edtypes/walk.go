package edtypes

import "strings"

// WalkFunc вызывается для каждого узла при обходе. depth корня равен 0.
// Если функция возвращает false, потомки узла не обходятся.
type WalkFunc func(n Node, depth int) bool

// Walk обходит дерево в прямом порядке на явном стеке, поэтому глубина дерева
// не ограничена размером стека вызовов.
func Walk(root Node, fn WalkFunc) {
	if root == nil {
		return
	}

	type item struct {
		node  Node
		depth int
	}

	stack := []item{{node: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if it.node == nil || !fn(it.node, it.depth) {
			continue
		}

		children := it.node.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, item{node: children[i], depth: it.depth + 1})
		}
	}
}

// PlainText возвращает текстовое содержимое поддерева без форматирования.
// Переносы строк и блоки разделяются пробелом.
func PlainText(root Node) string {
	var b strings.Builder
	Walk(root, func(n Node, _ int) bool {
		switch t := n.(type) {
		case *Text:
			b.WriteString(t.Text)
		case *HardBreak, *HorizontalRule:
			writeSeparator(&b)
		case *Paragraph, *Heading, *ListItem, *TaskItem, *CodeBlock, *TableHeader, *TableCell:
			writeSeparator(&b)
		}
		return true
	})
	return strings.TrimSpace(b.String())
}

func writeSeparator(b *strings.Builder) {
	s := b.String()
	if len(s) > 0 && s[len(s)-1] != ' ' {
		b.WriteByte(' ')
	}
}

// Depth возвращает максимальную глубину дерева.
func Depth(root Node) int {
	deepest := 0
	Walk(root, func(_ Node, depth int) bool {
		if depth > deepest {
			deepest = depth
		}
		return true
	})
	return deepest
}
