package session

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically sweeps abandoned sessions out of a MemoryStore.
// Redis-backed stores expire keys natively and need no janitor.
type Janitor struct {
	store     *MemoryStore
	retention time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewJanitor(store *MemoryStore, retention time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Janitor{
		store:     store,
		retention: retention,
		cron:      cron.New(),
		logger:    logger.With("module", "session_janitor"),
	}
}

// Start schedules the sweep. Schedule uses cron syntax, e.g. "@every 10m".
func (j *Janitor) Start(schedule string) error {
	_, err := j.cron.AddFunc(schedule, func() {
		if dropped := j.store.SweepExpired(j.retention); dropped > 0 {
			j.logger.Info("Swept expired wizard sessions", "count", dropped)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()

	return nil
}

// Stop halts the schedule, waiting for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}
