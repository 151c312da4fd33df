package dao

import (
	"time"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/dto"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/export"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type Doc struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title string `json:"title"`
	// TipTap JSON документа.
	Content     []byte `json:"-"`
	WorkspaceId string `json:"workspace" gorm:"index"`
	Draft       bool   `json:"draft"`
}

func (Doc) TableName() string { return "docs" }

func (d Doc) GetId() string {
	return d.ID.String()
}

// ToStored - документ в виде, который принимает экспортер.
func (d *Doc) ToStored() export.StoredDocument {
	return export.StoredDocument{
		ID:      d.ID.String(),
		Title:   d.Title,
		Content: d.Content,
	}
}

func (d *Doc) ToLightDTO() *dto.DocLight {
	if d == nil {
		return nil
	}
	return &dto.DocLight{
		Id:        d.ID.String(),
		Title:     d.Title,
		Draft:     d.Draft,
		UpdatedAt: d.UpdatedAt,
	}
}

// GetDoc загружает документ по id. Если документа нет, возвращает gorm.ErrRecordNotFound.
func GetDoc(tx *gorm.DB, id uuid.UUID) (*Doc, error) {
	var doc Doc
	if err := tx.Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}
