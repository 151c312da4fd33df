package cronmanager

import (
	"context"
	"log/slog"
	"time"

	filestorage "github.com/aisa-it/aiplan/docexport/internal/aiplan/file-storage"
)

const (
	ArchiveCleanupJobName  = "export-archive-cleanup"
	archiveCleanupSchedule = "@hourly"
	archiveCleanupTimeout  = 10 * time.Minute
)

// ArchiveCleanupJob удаляет из архива экспорты старше retention.
func ArchiveCleanupJob(storage filestorage.ArchiveStorage, retention time.Duration) Job {
	return Job{
		Schedule: archiveCleanupSchedule,
		Func: func() {
			ctx, cancel := context.WithTimeout(context.Background(), archiveCleanupTimeout)
			defer cancel()
			cleanupArchive(ctx, storage, retention)
		},
	}
}

func cleanupArchive(ctx context.Context, storage filestorage.ArchiveStorage, retention time.Duration) int {
	start := time.Now()
	deleted, err := storage.DeleteOlderThan(ctx, filestorage.ArchivePrefix, retention)
	if err != nil {
		slog.Error("Cleanup export archive", "deleted", deleted, "err", err)
		return deleted
	}
	slog.Info("Export archive cleaned", "deleted", deleted, "retention", retention, "elapsed", time.Since(start))
	return deleted
}

// Registry собирает задачи сервиса. Очистка архива добавляется, только если архив настроен и retention > 0.
func Registry(storage filestorage.ArchiveStorage, retention time.Duration) JobRegistry {
	registry := make(JobRegistry)
	if storage != nil && retention > 0 {
		registry[ArchiveCleanupJobName] = ArchiveCleanupJob(storage, retention)
	}
	return registry
}
