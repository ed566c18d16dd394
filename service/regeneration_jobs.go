package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"garment-studio/models"
	"garment-studio/repository"
)

// ErrJobNotFound is returned for unknown regeneration job ids
var ErrJobNotFound = errors.New("regeneration job not found")

// jobRetention is how long finished jobs stay readable
const jobRetention = 24 * time.Hour

// RegenerationJobs runs regeneration batches in the background and keeps their progress
type RegenerationJobs struct {
	mu      sync.RWMutex
	jobs    map[string]*models.RegenerationJob
	service RegenerationServiceInterface
	ctx     context.Context
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewRegenerationJobs creates a registry whose batches run under ctx
func NewRegenerationJobs(ctx context.Context, service RegenerationServiceInterface) *RegenerationJobs {
	return &RegenerationJobs{
		jobs:    make(map[string]*models.RegenerationJob),
		service: service,
		ctx:     ctx,
		now:     time.Now,
	}
}

// StartBatch starts regenerating orderIDs and returns the job snapshot right away
func (j *RegenerationJobs) StartBatch(orderIDs []string) models.RegenerationJob {
	job := &models.RegenerationJob{
		ID:        uuid.NewString(),
		Status:    models.JobStatusRunning,
		Progress:  models.RegenerationProgress{Total: len(orderIDs)},
		StartedAt: j.now().UTC().Format(time.RFC3339),
	}

	j.mu.Lock()
	j.pruneLocked()
	j.jobs[job.ID] = job
	snapshot := cloneJob(job)
	j.mu.Unlock()

	ids := append([]string(nil), orderIDs...)
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		results := j.service.RegenerateBatch(j.ctx, ids, func(p models.RegenerationProgress) {
			j.mu.Lock()
			job.Progress = p
			j.mu.Unlock()
		})

		j.mu.Lock()
		defer j.mu.Unlock()
		job.Results = results
		for _, r := range results {
			if r.Success {
				job.Succeeded++
			} else {
				job.Failed++
			}
		}
		job.Status = models.JobStatusCompleted
		job.FinishedAt = j.now().UTC().Format(time.RFC3339)
	}()

	zap.L().Info("🚀 Regeneration job started", zap.String("jobId", job.ID), zap.Int("orders", len(ids)))
	return snapshot
}

// Get returns a snapshot of a job
func (j *RegenerationJobs) Get(id string) (models.RegenerationJob, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	job, ok := j.jobs[id]
	if !ok {
		return models.RegenerationJob{}, ErrJobNotFound
	}
	return cloneJob(job), nil
}

// Wait blocks until every started job has finished or ctx ends
func (j *RegenerationJobs) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (j *RegenerationJobs) pruneLocked() {
	cutoff := j.now().Add(-jobRetention)
	for id, job := range j.jobs {
		if job.Status != models.JobStatusCompleted {
			continue
		}
		finished, err := time.Parse(time.RFC3339, job.FinishedAt)
		if err == nil && finished.Before(cutoff) {
			delete(j.jobs, id)
		}
	}
}

func cloneJob(job *models.RegenerationJob) models.RegenerationJob {
	c := *job
	c.Results = append([]models.RegenerationResult(nil), job.Results...)
	return c
}

// RegenerationSweeper periodically regenerates orders that have no artifacts yet
type RegenerationSweeper struct {
	repo    repository.OrderCustomizationRepositoryInterface
	service RegenerationServiceInterface
	limit   int
	cron    *cron.Cron
	running sync.Mutex
}

// NewRegenerationSweeper creates a sweeper handling up to limit orders per run
func NewRegenerationSweeper(repo repository.OrderCustomizationRepositoryInterface, service RegenerationServiceInterface, limit int) *RegenerationSweeper {
	if limit <= 0 {
		limit = 50
	}
	return &RegenerationSweeper{repo: repo, service: service, limit: limit}
}

// Start runs the sweep on a standard five-field cron schedule
func (s *RegenerationSweeper) Start(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() { s.Sweep(ctx) }); err != nil {
		return err
	}
	s.cron = c
	c.Start()
	zap.L().Info("⏰ Regeneration sweep scheduled", zap.String("schedule", schedule))
	return nil
}

// Stop stops the schedule and waits for a running sweep
func (s *RegenerationSweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Sweep regenerates one page of orders missing captures. Overlapping runs are skipped.
// It returns the results of the run, nil when skipped or when nothing was pending.
func (s *RegenerationSweeper) Sweep(ctx context.Context) []models.RegenerationResult {
	if !s.running.TryLock() {
		zap.L().Info("⏭️ Regeneration sweep already running, skipping")
		return nil
	}
	defer s.running.Unlock()

	ids, err := s.repo.ListMissingCaptures(ctx, s.limit)
	if err != nil {
		zap.L().Error("❌ Failed to list orders missing captures", zap.Error(err))
		return nil
	}
	if len(ids) == 0 {
		return nil
	}
	zap.L().Info("🧹 Regenerating orders missing captures", zap.String("orders", describeOrders(ids)))
	return s.service.RegenerateBatch(ctx, ids, nil)
}
