// Пакет запускает фоновые задачи сервиса по расписанию cron.
//
// Каждая задача получает контекст с таймаутом, ошибка задачи пишется в лог вместе с именем задачи,
// паника перехватывается, повторный запуск пропускается, пока предыдущий не завершился.
package cronmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	errStack "github.com/tarimkoop/koop/internal/koop/stack-error"
)

const DefaultTimeout = time.Minute

type JobFunc func(ctx context.Context) error

type Job struct {
	Func     JobFunc
	Schedule string
	// 0 - DefaultTimeout
	Timeout time.Duration
}

type JobRegistry map[string]Job

type CronManager struct {
	dispatcher *cron.Cron
	registry   JobRegistry

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewCronManager(registry JobRegistry) *CronManager {
	logger := cronLogger{slog.Default().With("component", "cron")}
	return &CronManager{
		dispatcher: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		registry: registry,
		entries:  make(map[string]cron.EntryID),
	}
}

// LoadJobs планирует все задачи реестра заново. Задачи с ошибочным расписанием пропускаются,
// их ошибки возвращаются вместе.
func (cm *CronManager) LoadJobs() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for name, id := range cm.entries {
		cm.dispatcher.Remove(id)
		delete(cm.entries, name)
	}

	var errs []error
	for _, name := range slices.Sorted(maps.Keys(cm.registry)) {
		job := cm.registry[name]
		if job.Func == nil {
			errs = append(errs, fmt.Errorf("job %q: no function", name))
			continue
		}
		id, err := cm.dispatcher.AddFunc(job.Schedule, run(name, job))
		if err != nil {
			slog.Error("Schedule cron job", "name", name, "schedule", job.Schedule, "err", err)
			errs = append(errs, fmt.Errorf("job %q: %w", name, err))
			continue
		}
		cm.entries[name] = id
	}
	return errors.Join(errs...)
}

// Jobs возвращает имена запланированных задач по алфавиту.
func (cm *CronManager) Jobs() []string {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return slices.Sorted(maps.Keys(cm.entries))
}

func (cm *CronManager) Start() {
	cm.dispatcher.Start()
}

// Stop дожидается завершения выполняющихся задач.
func (cm *CronManager) Stop() {
	<-cm.dispatcher.Stop().Done()
}

func run(name string, job Job) func() {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		if err := job.Func(ctx); err != nil {
			errStack.LogError(nil, errStack.TrackErrorStack(err).AddContext("job", name))
			return
		}
		slog.Debug("Cron job done", "name", name, "took", time.Since(start))
	}
}

// cronLogger направляет сообщения планировщика в slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "err", err)...)
}
