package tiptap

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxDepth - глубина, начиная с которой потомки узла не строятся: их текст собирается в один текстовый узел.
const MaxDepth = 1000

// decodeFrame - разбираемый объект узла. node == nil внутри уплощаемого поддерева.
type decodeFrame struct {
	node  *TipTapNode
	depth int
	// Текст уплощаемого поддерева. Общий для всех его объектов.
	text      *strings.Builder
	inContent bool
}

// decodeDocument читает узлы потоком токенов на явном стеке, поэтому вложенность входа
// не упирается в ограничение глубины encoding/json.
func decodeDocument(dec *json.Decoder, maxDepth int) (*TipTapNode, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("document root is %v, want object", tok)
	}

	root := &TipTapNode{}
	stack := []*decodeFrame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]

		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		if f.inContent {
			switch tok {
			case json.Delim(']'):
				f.inContent = false
				if f.node != nil && f.text != nil {
					if text := strings.TrimSpace(f.text.String()); text != "" {
						f.node.Content = []TipTapNode{{Type: "text", Text: text}}
					}
				}
			case json.Delim('{'):
				child := &decodeFrame{depth: f.depth + 1, text: f.text}
				if f.text == nil {
					f.node.Content = append(f.node.Content, TipTapNode{})
					child.node = &f.node.Content[len(f.node.Content)-1]
				}
				stack = append(stack, child)
			default:
				return nil, fmt.Errorf("content item is %v, want object", tok)
			}
			continue
		}

		if tok == json.Delim('}') {
			stack = stack[:len(stack)-1]
			continue
		}

		key, _ := tok.(string)
		if err := f.decodeField(dec, key, maxDepth); err != nil {
			return nil, err
		}
	}

	return root, nil
}

func (f *decodeFrame) decodeField(dec *json.Decoder, key string, maxDepth int) error {
	switch key {
	case "type":
		typ, err := decodeString(dec, key)
		if err != nil {
			return err
		}
		if f.node != nil {
			f.node.Type = typ
		} else if separatesText(typ) {
			writeSeparator(f.text)
		}
	case "text":
		text, err := decodeString(dec, key)
		if err != nil {
			return err
		}
		if f.node != nil {
			f.node.Text = text
		} else {
			f.text.WriteString(text)
		}
	case "content":
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if tok == nil {
			return nil
		}
		if tok != json.Delim('[') {
			return fmt.Errorf("content is %v, want array", tok)
		}
		f.inContent = true
		if f.node != nil {
			f.node.Content = nil
			if f.depth >= maxDepth {
				f.text = &strings.Builder{}
			}
		}
	case "attrs":
		if f.node == nil {
			return skipValue(dec)
		}
		attrs, err := decodeAttrs(dec)
		if err != nil {
			return err
		}
		f.node.Attrs = attrs
	case "marks":
		if f.node == nil {
			return skipValue(dec)
		}
		marks, err := decodeMarks(dec)
		if err != nil {
			return err
		}
		f.node.Marks = marks
	default:
		return skipValue(dec)
	}
	return nil
}

// separatesText - узлы, текст которых отделяется пробелом, как в edtypes.PlainText.
func separatesText(typ string) bool {
	switch typ {
	case "paragraph", "heading", "listItem", "taskItem", "codeBlock", "tableHeader", "tableCell", "hardBreak", "horizontalRule":
		return true
	}
	return false
}

func writeSeparator(b *strings.Builder) {
	s := b.String()
	if len(s) > 0 && s[len(s)-1] != ' ' {
		b.WriteByte(' ')
	}
}

func decodeString(dec *json.Decoder, key string) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	switch v := tok.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	}
	return "", fmt.Errorf("%s is %v, want string", key, tok)
}

// decodeAttrs читает атрибуты узла или метки. Вложенные объекты и массивы не используются и пропускаются.
func decodeAttrs(dec *json.Decoder) (map[string]any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("attrs is %v, want object", tok)
	}

	attrs := make(map[string]any)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if tok == json.Delim('}') {
			return attrs, nil
		}
		key, _ := tok.(string)

		val, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if _, ok := val.(json.Delim); ok {
			if err := skipFrom(dec, val); err != nil {
				return nil, err
			}
			continue
		}
		attrs[key] = val
	}
}

func decodeMarks(dec *json.Decoder) ([]TipTapMark, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if tok != json.Delim('[') {
		return nil, fmt.Errorf("marks is %v, want array", tok)
	}

	var marks []TipTapMark
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if tok == json.Delim(']') {
			return marks, nil
		}
		if tok != json.Delim('{') {
			return nil, fmt.Errorf("mark is %v, want object", tok)
		}

		var mark TipTapMark
		for {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			if tok == json.Delim('}') {
				break
			}

			switch key, _ := tok.(string); key {
			case "type":
				mark.Type, err = decodeString(dec, key)
			case "attrs":
				mark.Attrs, err = decodeAttrs(dec)
			default:
				err = skipValue(dec)
			}
			if err != nil {
				return nil, err
			}
		}
		marks = append(marks, mark)
	}
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	return skipFrom(dec, tok)
}

// skipFrom пропускает значение, первый токен которого уже прочитан.
func skipFrom(dec *json.Decoder, tok json.Token) error {
	depth := 0
	for {
		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
		if depth == 0 {
			return nil
		}

		var err error
		if tok, err = dec.Token(); err != nil {
			return err
		}
	}
}
