package tiptap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/apierrors"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/editor/edtypes"
)

const rootType = "doc"

// ParseJSON парсит JSON контент TipTap редактора в дерево edtypes.Document.
//
// Узлы глубже MaxDepth не строятся: их текст становится одним текстовым узлом на границе.
// Узлы неизвестных типов становятся edtypes.Fragment.
func ParseJSON(r io.Reader) (*edtypes.Document, error) {
	return ParseJSONDepth(r, MaxDepth)
}

// ParseJSONDepth - ParseJSON с заданной границей глубины. maxDepth < 1 - MaxDepth.
func ParseJSONDepth(r io.Reader, maxDepth int) (*edtypes.Document, error) {
	if maxDepth < 1 {
		maxDepth = MaxDepth
	}

	dec := json.NewDecoder(r)
	root, err := decodeDocument(dec, maxDepth)
	if err != nil {
		return nil, malformed(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, malformed(errors.New("unexpected data after document"))
	}

	return Convert(*root)
}

// ParseBytes - ParseJSON для уже загруженного содержимого.
func ParseBytes(data []byte) (*edtypes.Document, error) {
	return ParseJSON(bytes.NewReader(data))
}

// Convert преобразует декодированный корень TipTap в дерево документа.
func Convert(root TipTapNode) (*edtypes.Document, error) {
	if root.Type != rootType {
		return nil, malformed(fmt.Errorf("root node type %q, want %q", root.Type, rootType))
	}

	doc := &edtypes.Document{}

	type task struct {
		src  *TipTapNode
		slot *edtypes.Node
	}

	var stack []task
	push := func(src []TipTapNode) []edtypes.Node {
		if len(src) == 0 {
			return nil
		}
		content := make([]edtypes.Node, len(src))
		for i := len(src) - 1; i >= 0; i-- {
			stack = append(stack, task{src: &src[i], slot: &content[i]})
		}
		return content
	}

	doc.Content = push(root.Content)
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := newNode(t.src)
		if content := contentOf(n); content != nil {
			*content = push(t.src.Content)
		}
		*t.slot = n
	}

	return doc, nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", apierrors.ErrMalformedDocument, err)
}
