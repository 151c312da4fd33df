// Пакет sandbox запускает внешний движок рендера (headless Chrome) и превращает HTML-документ в PDF.
//
// Движок загружает только сам документ и data:-ресурсы. Все остальные запросы страницы
// (изображения, стили, шрифты, скрипты, фреймы) отклоняются с причиной BlockedByClient и
// подсчитываются в Result. Выполнение скриптов на странице отключено.
//
// Экземпляр движка создается на один экспорт и закрывается вызывающим через Engine.Close.
package sandbox

import (
	"context"
	"errors"
	"strings"
)

// ErrNoOutput - движок завершил печать, но не вернул данных.
var ErrNoOutput = errors.New("render engine returned no output")

// Launcher запускает новый экземпляр движка.
type Launcher interface {
	Launch(ctx context.Context) (Engine, error)
}

// Engine - запущенный экземпляр движка. Не используется одновременно из нескольких экспортов.
type Engine interface {
	// Render загружает документ и печатает его в PDF. Отмена ctx прерывает рендер.
	Render(ctx context.Context, document string) (Result, error)
	// Close завершает процесс движка и удаляет его временные файлы. Повторный вызов ничего не делает.
	Close() error
}

// Result - результат рендера одного документа.
type Result struct {
	PDF []byte
	// Количество заблокированных запросов страницы.
	Blocked int
	// Заблокированные запросы по типу ресурса (Image, Stylesheet, Font...).
	BlockedByType map[string]int
}

// PageSize - размер бумаги в дюймах.
type PageSize struct {
	Name     string
	WidthIn  float64
	HeightIn float64
}

var (
	PageA4     = PageSize{Name: "A4", WidthIn: 8.27, HeightIn: 11.69}
	PageLetter = PageSize{Name: "LETTER", WidthIn: 8.5, HeightIn: 11}
)

// PageSizeByName возвращает размер по имени (A4, LETTER) без учета регистра.
func PageSizeByName(name string) (PageSize, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case PageA4.Name:
		return PageA4, true
	case PageLetter.Name:
		return PageLetter, true
	}
	return PageSize{}, false
}

// Margins - поля страницы в миллиметрах.
type Margins struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func UniformMargins(mm float64) Margins {
	return Margins{Left: mm, Top: mm, Right: mm, Bottom: mm}
}

// PageSettings - параметры печати, одинаковые для всех экспортов процесса.
type PageSettings struct {
	Size    PageSize
	Margins Margins
}

func DefaultPageSettings() PageSettings {
	return PageSettings{Size: PageA4, Margins: UniformMargins(15)}
}

func mmToInch(mm float64) float64 {
	return mm / 25.4
}
