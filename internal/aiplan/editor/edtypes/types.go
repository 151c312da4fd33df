// Пакет edtypes описывает дерево документа редактора, которое экспортируется в PDF.
//
// Набор типов узлов закрыт: Node нельзя реализовать вне пакета, а каждый обходчик дерева
// реализует Visitor, в котором на каждый тип узла есть свой метод. Добавление нового типа
// узла добавляет метод в Visitor, и все обходчики перестают компилироваться, пока не начнут
// его обрабатывать.
//
// Атрибуты хранятся в том виде, в каком пришли из сохраненного документа. Их проверка и
// приведение к безопасным значениям выполняется только при рендере (пакет render-policy).
package edtypes

// Kind - тип узла дерева документа.
type Kind int

const (
	KindDocument Kind = iota
	KindParagraph
	KindHeading
	KindBulletList
	KindOrderedList
	KindListItem
	KindTaskList
	KindTaskItem
	KindCodeBlock
	KindBlockquote
	KindHorizontalRule
	KindHardBreak
	KindImage
	KindTable
	KindTableRow
	KindTableHeader
	KindTableCell
	KindText
	KindFragment
)

var kindNames = [...]string{
	KindDocument:       "doc",
	KindParagraph:      "paragraph",
	KindHeading:        "heading",
	KindBulletList:     "bulletList",
	KindOrderedList:    "orderedList",
	KindListItem:       "listItem",
	KindTaskList:       "taskList",
	KindTaskItem:       "taskItem",
	KindCodeBlock:      "codeBlock",
	KindBlockquote:     "blockquote",
	KindHorizontalRule: "horizontalRule",
	KindHardBreak:      "hardBreak",
	KindImage:          "image",
	KindTable:          "table",
	KindTableRow:       "tableRow",
	KindTableHeader:    "tableHeader",
	KindTableCell:      "tableCell",
	KindText:           "text",
	KindFragment:       "fragment",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Node - узел дерева документа. Реализуется только типами этого пакета.
type Node interface {
	Kind() Kind
	Children() []Node
	Accept(v Visitor)

	node()
}

// Visitor обрабатывает каждый тип узла отдельным методом.
type Visitor interface {
	VisitDocument(n *Document)
	VisitParagraph(n *Paragraph)
	VisitHeading(n *Heading)
	VisitBulletList(n *BulletList)
	VisitOrderedList(n *OrderedList)
	VisitListItem(n *ListItem)
	VisitTaskList(n *TaskList)
	VisitTaskItem(n *TaskItem)
	VisitCodeBlock(n *CodeBlock)
	VisitBlockquote(n *Blockquote)
	VisitHorizontalRule(n *HorizontalRule)
	VisitHardBreak(n *HardBreak)
	VisitImage(n *Image)
	VisitTable(n *Table)
	VisitTableRow(n *TableRow)
	VisitTableHeader(n *TableHeader)
	VisitTableCell(n *TableCell)
	VisitText(n *Text)
	VisitFragment(n *Fragment)
}

// Document - корень дерева.
type Document struct {
	Content []Node
}

type Paragraph struct {
	TextAlign string
	Content   []Node
}

type Heading struct {
	Level   any
	Content []Node
}

type BulletList struct {
	Content []Node
}

type OrderedList struct {
	Start   any
	Content []Node
}

type ListItem struct {
	Content []Node
}

type TaskList struct {
	Content []Node
}

type TaskItem struct {
	Checked any
	Content []Node
}

type CodeBlock struct {
	Language string
	Content  []Node
}

type Blockquote struct {
	Content []Node
}

type HorizontalRule struct{}

type HardBreak struct{}

type Image struct {
	Src   string
	Alt   string
	Title string
}

type Table struct {
	Content []Node
}

type TableRow struct {
	Content []Node
}

type TableHeader struct {
	ColSpan any
	RowSpan any
	Content []Node
}

type TableCell struct {
	ColSpan any
	RowSpan any
	Content []Node
}

// Text - фрагмент текста с примененными к нему метками в порядке их следования в источнике.
type Text struct {
	Text  string
	Marks []Mark
}

// Fragment - узел неизвестного типа. Выводится только содержимое, без обертки.
type Fragment struct {
	SourceType string
	Content    []Node
}

func (*Document) Kind() Kind       { return KindDocument }
func (*Paragraph) Kind() Kind      { return KindParagraph }
func (*Heading) Kind() Kind        { return KindHeading }
func (*BulletList) Kind() Kind     { return KindBulletList }
func (*OrderedList) Kind() Kind    { return KindOrderedList }
func (*ListItem) Kind() Kind       { return KindListItem }
func (*TaskList) Kind() Kind       { return KindTaskList }
func (*TaskItem) Kind() Kind       { return KindTaskItem }
func (*CodeBlock) Kind() Kind      { return KindCodeBlock }
func (*Blockquote) Kind() Kind     { return KindBlockquote }
func (*HorizontalRule) Kind() Kind { return KindHorizontalRule }
func (*HardBreak) Kind() Kind      { return KindHardBreak }
func (*Image) Kind() Kind          { return KindImage }
func (*Table) Kind() Kind          { return KindTable }
func (*TableRow) Kind() Kind       { return KindTableRow }
func (*TableHeader) Kind() Kind    { return KindTableHeader }
func (*TableCell) Kind() Kind      { return KindTableCell }
func (*Text) Kind() Kind           { return KindText }
func (*Fragment) Kind() Kind       { return KindFragment }

func (n *Document) Children() []Node     { return n.Content }
func (n *Paragraph) Children() []Node    { return n.Content }
func (n *Heading) Children() []Node      { return n.Content }
func (n *BulletList) Children() []Node   { return n.Content }
func (n *OrderedList) Children() []Node  { return n.Content }
func (n *ListItem) Children() []Node     { return n.Content }
func (n *TaskList) Children() []Node     { return n.Content }
func (n *TaskItem) Children() []Node     { return n.Content }
func (n *CodeBlock) Children() []Node    { return n.Content }
func (n *Blockquote) Children() []Node   { return n.Content }
func (*HorizontalRule) Children() []Node { return nil }
func (*HardBreak) Children() []Node      { return nil }
func (*Image) Children() []Node          { return nil }
func (n *Table) Children() []Node        { return n.Content }
func (n *TableRow) Children() []Node     { return n.Content }
func (n *TableHeader) Children() []Node  { return n.Content }
func (n *TableCell) Children() []Node    { return n.Content }
func (*Text) Children() []Node           { return nil }
func (n *Fragment) Children() []Node     { return n.Content }

func (n *Document) Accept(v Visitor)       { v.VisitDocument(n) }
func (n *Paragraph) Accept(v Visitor)      { v.VisitParagraph(n) }
func (n *Heading) Accept(v Visitor)        { v.VisitHeading(n) }
func (n *BulletList) Accept(v Visitor)     { v.VisitBulletList(n) }
func (n *OrderedList) Accept(v Visitor)    { v.VisitOrderedList(n) }
func (n *ListItem) Accept(v Visitor)       { v.VisitListItem(n) }
func (n *TaskList) Accept(v Visitor)       { v.VisitTaskList(n) }
func (n *TaskItem) Accept(v Visitor)       { v.VisitTaskItem(n) }
func (n *CodeBlock) Accept(v Visitor)      { v.VisitCodeBlock(n) }
func (n *Blockquote) Accept(v Visitor)     { v.VisitBlockquote(n) }
func (n *HorizontalRule) Accept(v Visitor) { v.VisitHorizontalRule(n) }
func (n *HardBreak) Accept(v Visitor)      { v.VisitHardBreak(n) }
func (n *Image) Accept(v Visitor)          { v.VisitImage(n) }
func (n *Table) Accept(v Visitor)          { v.VisitTable(n) }
func (n *TableRow) Accept(v Visitor)       { v.VisitTableRow(n) }
func (n *TableHeader) Accept(v Visitor)    { v.VisitTableHeader(n) }
func (n *TableCell) Accept(v Visitor)      { v.VisitTableCell(n) }
func (n *Text) Accept(v Visitor)           { v.VisitText(n) }
func (n *Fragment) Accept(v Visitor)       { v.VisitFragment(n) }

func (*Document) node()       {}
func (*Paragraph) node()      {}
func (*Heading) node()        {}
func (*BulletList) node()     {}
func (*OrderedList) node()    {}
func (*ListItem) node()       {}
func (*TaskList) node()       {}
func (*TaskItem) node()       {}
func (*CodeBlock) node()      {}
func (*Blockquote) node()     {}
func (*HorizontalRule) node() {}
func (*HardBreak) node()      {}
func (*Image) node()          {}
func (*Table) node()          {}
func (*TableRow) node()       {}
func (*TableHeader) node()    {}
func (*TableCell) node()      {}
func (*Text) node()           {}
func (*Fragment) node()       {}
