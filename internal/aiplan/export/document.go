package export

import (
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/editor/edtypes"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/editor/tiptap"
)

// StoredDocument - документ, уже полученный из хранилища.
type StoredDocument struct {
	// Идентификатор для логов. Содержимое документа в логи не попадает.
	ID    string
	Title string

	// TipTap JSON из хранилища.
	Content []byte
	// Уже разобранное дерево. Если задано, Content не используется.
	Tree *edtypes.Document
}

func (d StoredDocument) tree() (*edtypes.Document, error) {
	if d.Tree != nil {
		return d.Tree, nil
	}
	return tiptap.ParseBytes(d.Content)
}
