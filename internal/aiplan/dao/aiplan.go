// Пакет dao содержит модели хранилища документов и методы их загрузки через gorm.
package dao

import (
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// GenUUID генерирует новый идентификатор UUID v4.
func GenUUID() uuid.UUID {
	u2, _ := uuid.NewV4()
	return u2
}

var models = []any{
	&Doc{},
}

// Migrate создает или обновляет таблицы моделей.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models...)
}
