// Пакет limiter ограничивает число одновременно работающих экземпляров движка рендера.
package limiter

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"
)

type ExportLimiter interface {
	// Acquire ждет свободный слот. release безопасно вызывать несколько раз.
	Acquire(ctx context.Context) (release func(), err error)
}

// Limiter используется по умолчанию, пока Init не задал ограничение.
var Limiter ExportLimiter = Unlimited{}

// Init устанавливает общий лимит экспортов для процесса.
func Init(maxConcurrent int) {
	if maxConcurrent <= 0 {
		slog.Info("Using unlimited export limiter")
		Limiter = Unlimited{}
		return
	}
	slog.Info("Using community export limiter", "maxConcurrent", maxConcurrent)
	Limiter = NewCommunityLimiter(maxConcurrent)
}

// CommunityLimiter - взвешенный семафор на maxConcurrent слотов.
type CommunityLimiter struct {
	sem  *semaphore.Weighted
	size int64
}

func NewCommunityLimiter(maxConcurrent int) *CommunityLimiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &CommunityLimiter{sem: semaphore.NewWeighted(int64(maxConcurrent)), size: int64(maxConcurrent)}
}

func (l *CommunityLimiter) Acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.sem.Release(1) })
	}, nil
}

func (l *CommunityLimiter) Size() int {
	return int(l.size)
}

type Unlimited struct{}

func (Unlimited) Acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return func() {}, nil
}
