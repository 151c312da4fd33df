package sandbox

import (
	"maps"
	"net/url"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
)

// documentURL - адрес, по которому страница получает экспортируемый документ. Запрос к нему
// перехватывается и обслуживается из памяти; зона .invalid никогда не резолвится.
const documentURL = "https://export.invalid/document"

type disposition int

const (
	dispositionBlock disposition = iota
	dispositionServeDocument
	dispositionAllowData
)

func (d disposition) String() string {
	switch d {
	case dispositionServeDocument:
		return "serve"
	case dispositionAllowData:
		return "data"
	}
	return "block"
}

// classifyRequest решает судьбу перехваченного запроса. Документ отдается только один раз,
// остальное, кроме data:, блокируется.
func classifyRequest(rawURL string, resourceType network.ResourceType, documentServed bool) disposition {
	if strings.HasPrefix(strings.ToLower(rawURL), "data:") {
		return dispositionAllowData
	}
	if !documentServed && resourceType == network.ResourceTypeDocument && rawURL == documentURL {
		return dispositionServeDocument
	}
	return dispositionBlock
}

// blockedCounter считает заблокированные запросы. Обработчики событий вызывают его из разных горутин.
type blockedCounter struct {
	mu     sync.Mutex
	total  int
	byType map[string]int
}

func newBlockedCounter() *blockedCounter {
	return &blockedCounter{byType: make(map[string]int)}
}

func (c *blockedCounter) add(resourceType network.ResourceType) {
	t := string(resourceType)
	if t == "" {
		t = string(network.ResourceTypeOther)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.total++
	c.byType[t]++
}

func (c *blockedCounter) snapshot() (int, map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.total, maps.Clone(c.byType)
}

// requestHost возвращает только хост запроса для логов: путь и параметры могут содержать данные документа.
func requestHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		if i := strings.IndexByte(rawURL, ':'); i > 0 && i < 16 {
			return rawURL[:i] + ":"
		}
		return "invalid"
	}
	return u.Host
}
