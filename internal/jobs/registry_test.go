package jobs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get(42)
	assert.False(t, ok)

	r.Create(42)
	job, ok := r.Get(42)
	require.True(t, ok)
	assert.Equal(t, Job{Progress: 0, Status: StatusStarting}, job)

	r.Update(42, 57, StatusDownloading)
	job, _ = r.Get(42)
	assert.Equal(t, Job{Progress: 57, Status: StatusDownloading}, job)

	r.Remove(42)
	_, ok = r.Get(42)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusStarting.IsTerminal())
	assert.False(t, StatusDownloading.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusNotFound.IsTerminal())
}

func TestExpireAfterRemovesEntry(t *testing.T) {
	r := NewRegistry()
	r.Create(1)
	r.Update(1, 100, StatusCompleted)

	r.ExpireAfter(1, 10*time.Millisecond)
	_, ok := r.Get(1)
	assert.True(t, ok, "entry stays queryable during the grace period")

	assert.Eventually(t, func() bool {
		_, ok := r.Get(1)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestExpireAfterSparesRecreatedEntry(t *testing.T) {
	r := NewRegistry()
	r.Create(1)
	r.Update(1, 0, StatusFailed)
	r.ExpireAfter(1, 20*time.Millisecond)

	r.Create(1)
	time.Sleep(60 * time.Millisecond)

	job, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, StatusStarting, job.Status)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for id := int64(0); id < 16; id++ {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			r.Create(id)
			for p := 0; p <= 100; p++ {
				r.Update(id, p, StatusDownloading)
			}
		}(id)
		go func(id int64) {
			defer wg.Done()
			last := -1
			for i := 0; i < 200; i++ {
				if job, ok := r.Get(id); ok {
					assert.GreaterOrEqual(t, job.Progress, last)
					last = job.Progress
				}
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 16, r.Len())
}

func TestCreateReplacesActiveJob(t *testing.T) {
	r := NewRegistry()
	r.Create(7)
	r.Update(7, 40, StatusDownloading)

	r.Create(7)
	job, ok := r.Get(7)
	require.True(t, ok)
	assert.Equal(t, Job{Progress: 0, Status: StatusStarting}, job)
	assert.Equal(t, 1, r.Len())
}
