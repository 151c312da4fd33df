// Пакет для управления cron-задачами сервиса экспорта.
//
// Основные возможности:
//   - Загрузка задач из реестра.
//   - Добавление задач в cron-расписание и удаление из него.
//   - Запуск и остановка cron-диспетчера.
//   - Задача очистки архива экспортов (export-archive-cleanup).
package cronmanager

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/robfig/cron/v3"
)

type CronJobFunc func()

type Job struct {
	Func     CronJobFunc
	Schedule string
}

type JobRegistry map[string]Job

type CronManager struct {
	dispatcher  *cron.Cron
	jobs        map[string]cron.EntryID
	mu          sync.Mutex
	jobRegistry JobRegistry
}

// NewCronManager создает менеджер задач. Паника внутри задачи перехватывается и логируется.
//
// Параметры:
//   - jobRegistry: реестр задач
func NewCronManager(jobRegistry JobRegistry) *CronManager {
	dispatcher := cron.New(
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)

	return &CronManager{
		dispatcher:  dispatcher,
		jobs:        make(map[string]cron.EntryID),
		jobRegistry: jobRegistry,
	}
}

// LoadJobs заново добавляет в расписание все задачи реестра.
//
// Возвращает:
//   - error: первая ошибка добавления задачи, остальные задачи при этом добавляются
func (cm *CronManager) LoadJobs() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for name, entryID := range cm.jobs {
		cm.dispatcher.Remove(entryID)
		delete(cm.jobs, name)
	}

	var firstErr error
	for name := range cm.jobRegistry {
		if err := cm.addJob(name); err != nil {
			slog.Error("Error adding job", "name", name, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (cm *CronManager) addJob(name string) error {
	job, exists := cm.jobRegistry[name]
	if !exists {
		return fmt.Errorf("no job function registered for name: %s", name)
	}

	id, err := cm.dispatcher.AddFunc(job.Schedule, job.Func)
	if err != nil {
		return fmt.Errorf("add job '%s': %w", name, err)
	}
	cm.jobs[name] = id
	return nil
}

// RemoveJob убирает задачу из расписания по имени.
func (cm *CronManager) RemoveJob(name string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if entryID, exists := cm.jobs[name]; exists {
		cm.dispatcher.Remove(entryID)
		delete(cm.jobs, name)
	}
}

// Scheduled возвращает отсортированные имена задач в расписании.
func (cm *CronManager) Scheduled() []string {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	names := make([]string, 0, len(cm.jobs))
	for name := range cm.jobs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (cm *CronManager) Start() {
	cm.dispatcher.Start()
}

// Stop останавливает диспетчер и ждет завершения выполняющихся задач.
func (cm *CronManager) Stop() {
	ctx := cm.dispatcher.Stop()
	<-ctx.Done()
}
