package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"creator-market/internal/services"
)

// StatsRefreshJob runs the stats refresh cycle on a fixed interval and on
// manual triggers. A single-flight guard keeps overlapping runs (manual
// trigger firing mid-cycle) from observing the same view delta twice and
// double-firing milestone notifications.
type StatsRefreshJob struct {
	service  *services.StatsRefreshService
	interval time.Duration
	trigger  chan struct{}
	stopChan chan struct{}
	stopOnce sync.Once

	mu         sync.Mutex
	running    bool
	lastReport *services.CycleReport
}

// NewStatsRefreshJob creates a new stats refresh job
func NewStatsRefreshJob(service *services.StatsRefreshService, interval time.Duration) *StatsRefreshJob {
	return &StatsRefreshJob{
		service:  service,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

// Start begins the refresh loop. The first cycle runs immediately.
func (j *StatsRefreshJob) Start(ctx context.Context) {
	go func() {
		log.Printf("[StatsRefresh] Starting stats refresh job (interval: %v)", j.interval)

		j.runOnce(ctx)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.runOnce(ctx)
			case <-j.trigger:
				j.runOnce(ctx)
			case <-j.stopChan:
				log.Println("[StatsRefresh] Stopping stats refresh job")
				return
			case <-ctx.Done():
				log.Println("[StatsRefresh] Context cancelled, stopping stats refresh job")
				return
			}
		}
	}()
}

// Stop stops the refresh loop. The cycle in progress finishes. Safe to call
// more than once.
func (j *StatsRefreshJob) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopChan)
	})
}

// TriggerNow requests an immediate cycle. Returns false when a cycle is
// already running or a trigger is already queued.
func (j *StatsRefreshJob) TriggerNow() bool {
	j.mu.Lock()
	running := j.running
	j.mu.Unlock()
	if running {
		return false
	}

	select {
	case j.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// LastReport returns the most recent cycle report, nil before the first run
func (j *StatsRefreshJob) LastReport() *services.CycleReport {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastReport
}

func (j *StatsRefreshJob) runOnce(ctx context.Context) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		log.Println("[StatsRefresh] Cycle already in progress, skipping")
		return
	}
	j.running = true
	j.mu.Unlock()

	report, err := j.service.RunCycle(ctx)
	if err != nil {
		log.Printf("[StatsRefresh] Cycle error: %v", err)
	}

	j.mu.Lock()
	j.running = false
	if report != nil {
		j.lastReport = report
	}
	j.mu.Unlock()
}
