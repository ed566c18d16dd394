package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garment-studio/models"
)

func storedOrder(id string) *models.OrderCustomization {
	return &models.OrderCustomization{
		OrderID:       id,
		ProductID:     "tee-classic",
		Mockup:        *testMockup(),
		Customization: *frontDesignRecord(),
	}
}

func TestRegenerateSingle_StoresArtifactsInRecord(t *testing.T) {
	order := storedOrder("o1")
	placement := *order.Customization.FrontDesign.Clone()
	repo := newFakeOrderRepo(order)
	svc := NewRegenerationService(repo, newTestCaptureService(&fakeRenderer{}, newMemStore()), 1)

	result := svc.RegenerateSingle(context.Background(), "o1")
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "https://cdn.test/captures/orders/o1/front.png?v=v1", result.FrontURL)
	assert.Empty(t, result.BackURL)
	assert.Equal(t, [2]string{result.FrontURL, ""}, repo.updates["o1"])

	stored := repo.orders["o1"].Customization.FrontDesign
	require.NotNil(t, stored)
	assert.Equal(t, result.FrontURL, stored.CaptureURL)
	require.NotNil(t, stored.CapturedAt)
	assert.Equal(t, placement.DesignID, stored.DesignID)
	assert.Equal(t, placement.Transform, stored.Transform)
	assert.Equal(t, placement.PrintSizeLabel, stored.PrintSizeLabel)
	assert.Zero(t, repo.failed["o1"])
}

func TestRegenerateSingle_FailureRecordsAttempt(t *testing.T) {
	repo := newFakeOrderRepo(storedOrder("o1"))
	store := newMemStore()
	store.failOn = "orders/o1/"
	svc := NewRegenerationService(repo, newTestCaptureService(&fakeRenderer{}, store), 1)

	result := svc.RegenerateSingle(context.Background(), "o1")
	assert.False(t, result.Success)
	assert.Equal(t, 1, repo.failed["o1"])
	assert.Empty(t, repo.updates)
	assert.Empty(t, repo.orders["o1"].Customization.FrontDesign.CaptureURL)
}

func TestRegenerateSingle_MissingOrder(t *testing.T) {
	svc := NewRegenerationService(newFakeOrderRepo(), newTestCaptureService(&fakeRenderer{}, newMemStore()), 1)

	result := svc.RegenerateSingle(context.Background(), "nope")
	assert.False(t, result.Success)
	assert.Equal(t, "nope", result.OrderID)
	assert.Contains(t, result.Error, "not found")
}

func TestRegenerateSingle_EmptyCustomization(t *testing.T) {
	order := storedOrder("o1")
	order.Customization = models.CustomizationRecord{}
	repo := newFakeOrderRepo(order)
	svc := NewRegenerationService(repo, newTestCaptureService(&fakeRenderer{}, newMemStore()), 1)

	result := svc.RegenerateSingle(context.Background(), "o1")
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, repo.updates)
}

func TestRegenerateBatch_PerItemFailure(t *testing.T) {
	repo := newFakeOrderRepo(storedOrder("o1"), storedOrder("o2"))
	store := newMemStore()
	store.failOn = "orders/o2/"
	svc := NewRegenerationService(repo, newTestCaptureService(&fakeRenderer{}, store), 2)

	var mu sync.Mutex
	var progress []models.RegenerationProgress
	results := svc.RegenerateBatch(context.Background(), []string{"o1", "o2"}, func(p models.RegenerationProgress) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, p)
	})

	require.Len(t, results, 2)
	assert.Equal(t, "o1", results[0].OrderID)
	assert.True(t, results[0].Success)
	assert.Equal(t, "o2", results[1].OrderID)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)

	require.Len(t, progress, 2)
	for i, p := range progress {
		assert.Equal(t, i+1, p.Current)
		assert.Equal(t, 2, p.Total)
	}
	last := progress[len(progress)-1]
	assert.Equal(t, 2, last.Current)
	assert.Equal(t, 2, last.Total)

	assert.Contains(t, repo.updates, "o1")
	assert.NotContains(t, repo.updates, "o2")
}

func TestRegenerateBatch_CancelledContext(t *testing.T) {
	repo := newFakeOrderRepo(storedOrder("o1"), storedOrder("o2"), storedOrder("o3"))
	svc := NewRegenerationService(repo, newTestCaptureService(&fakeRenderer{}, newMemStore()), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var last models.RegenerationProgress
	results := svc.RegenerateBatch(ctx, []string{"o1", "o2", "o3"}, func(p models.RegenerationProgress) { last = p })
	require.Len(t, results, 3)
	for _, r := range results {
		assert.False(t, r.Success)
	}
	assert.Equal(t, 3, last.Current)
	assert.Empty(t, repo.updates)
}

func TestRegenerationJobs_StartAndGet(t *testing.T) {
	repo := newFakeOrderRepo(storedOrder("o1"), storedOrder("o2"))
	store := newMemStore()
	store.failOn = "orders/o2/"
	svc := NewRegenerationService(repo, newTestCaptureService(&fakeRenderer{}, store), 2)
	jobs := NewRegenerationJobs(context.Background(), svc)

	started := jobs.StartBatch([]string{"o1", "o2"})
	assert.NotEmpty(t, started.ID)
	assert.Equal(t, models.JobStatusRunning, started.Status)
	assert.Equal(t, 2, started.Progress.Total)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	jobs.Wait(ctx)

	job, err := jobs.Get(started.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, 1, job.Succeeded)
	assert.Equal(t, 1, job.Failed)
	assert.Equal(t, models.RegenerationProgress{Current: 2, Total: 2, CurrentOrderID: job.Progress.CurrentOrderID}, job.Progress)
	assert.NotEmpty(t, job.FinishedAt)

	_, err = jobs.Get("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestRegenerationSweeper_Sweep(t *testing.T) {
	repo := newFakeOrderRepo(storedOrder("o1"))
	repo.missing = []string{"o1"}
	svc := NewRegenerationService(repo, newTestCaptureService(&fakeRenderer{}, newMemStore()), 1)
	sweeper := NewRegenerationSweeper(repo, svc, 10)

	results := sweeper.Sweep(context.Background())
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)

	repo.missing = nil
	assert.Nil(t, sweeper.Sweep(context.Background()))
}

func TestRegenerationSweeper_InvalidSchedule(t *testing.T) {
	sweeper := NewRegenerationSweeper(newFakeOrderRepo(), nil, 0)
	assert.Error(t, sweeper.Start(context.Background(), "not a cron"))
	sweeper.Stop()
}
