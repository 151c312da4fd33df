// Содержит структуры данных (DTO) ответов сервиса экспорта документов.
package dto

import "time"

type DocLight struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Draft     bool      `json:"draft"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArchivedExport - экспорт, сохраненный в архиве, и временная ссылка на него.
type ArchivedExport struct {
	Doc       *DocLight `json:"doc"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Health struct {
	Status  string `json:"status"`
	Archive bool   `json:"archive"`
}
