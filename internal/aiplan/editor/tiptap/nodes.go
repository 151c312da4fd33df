package tiptap

import (
	"log/slog"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/editor/edtypes"
)

// newNode создает узел дерева по узлу TipTap без потомков. Потомков заполняет Convert.
func newNode(node *TipTapNode) edtypes.Node {
	switch node.Type {
	case "doc":
		// Вложенный doc ведет себя как фрагмент.
		return &edtypes.Fragment{SourceType: node.Type}
	case "paragraph":
		return &edtypes.Paragraph{TextAlign: getAttrString(node.Attrs, "textAlign")}
	case "heading":
		return &edtypes.Heading{Level: getAttr(node.Attrs, "level")}
	case "bulletList":
		return &edtypes.BulletList{}
	case "orderedList":
		return &edtypes.OrderedList{Start: getAttr(node.Attrs, "start")}
	case "listItem":
		return &edtypes.ListItem{}
	case "taskList":
		return &edtypes.TaskList{}
	case "taskItem":
		return &edtypes.TaskItem{Checked: getAttr(node.Attrs, "checked")}
	case "codeBlock":
		return &edtypes.CodeBlock{Language: getAttrString(node.Attrs, "language")}
	case "blockquote":
		return &edtypes.Blockquote{}
	case "horizontalRule":
		return &edtypes.HorizontalRule{}
	case "hardBreak":
		return &edtypes.HardBreak{}
	case "image", "imageResize":
		return parseImage(node)
	case "table":
		return &edtypes.Table{}
	case "tableRow":
		return &edtypes.TableRow{}
	case "tableHeader":
		return &edtypes.TableHeader{
			ColSpan: getAttr(node.Attrs, "colspan"),
			RowSpan: getAttr(node.Attrs, "rowspan"),
		}
	case "tableCell":
		return &edtypes.TableCell{
			ColSpan: getAttr(node.Attrs, "colspan"),
			RowSpan: getAttr(node.Attrs, "rowspan"),
		}
	case "text":
		return parseText(node)
	default:
		slog.Debug("Unknown node type", "type", node.Type)
		return &edtypes.Fragment{SourceType: node.Type}
	}
}

// contentOf возвращает указатель на список потомков узла или nil для листовых узлов.
func contentOf(n edtypes.Node) *[]edtypes.Node {
	switch n := n.(type) {
	case *edtypes.Document:
		return &n.Content
	case *edtypes.Paragraph:
		return &n.Content
	case *edtypes.Heading:
		return &n.Content
	case *edtypes.BulletList:
		return &n.Content
	case *edtypes.OrderedList:
		return &n.Content
	case *edtypes.ListItem:
		return &n.Content
	case *edtypes.TaskList:
		return &n.Content
	case *edtypes.TaskItem:
		return &n.Content
	case *edtypes.CodeBlock:
		return &n.Content
	case *edtypes.Blockquote:
		return &n.Content
	case *edtypes.Table:
		return &n.Content
	case *edtypes.TableRow:
		return &n.Content
	case *edtypes.TableHeader:
		return &n.Content
	case *edtypes.TableCell:
		return &n.Content
	case *edtypes.Fragment:
		return &n.Content
	}
	return nil
}

// parseText преобразует текстовую ноду TipTap в edtypes.Text.
func parseText(node *TipTapNode) *edtypes.Text {
	return &edtypes.Text{
		Text:  node.Text,
		Marks: parseMarks(node.Marks),
	}
}

// parseImage преобразует изображение TipTap в edtypes.Image.
// Поддерживает как "image", так и "imageResize" типы. Размеры и выравнивание не переносятся.
func parseImage(node *TipTapNode) *edtypes.Image {
	return &edtypes.Image{
		Src:   getAttrString(node.Attrs, "src"),
		Alt:   getAttrString(node.Attrs, "alt"),
		Title: getAttrString(node.Attrs, "title"),
	}
}
