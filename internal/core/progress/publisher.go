// Package progress turns job registry state into a per-track event feed.
package progress

import (
	"context"
	"time"

	"github.com/mancube/tidaloader-opus/internal/jobs"
)

const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultMaxMisses    = 10
)

// Event is one progress update for a track.
type Event struct {
	Progress int         `json:"progress"`
	TrackID  int64       `json:"track_id"`
	Status   jobs.Status `json:"status"`
}

// Publisher polls a registry on behalf of subscribers.
type Publisher struct {
	registry  *jobs.Registry
	interval  time.Duration
	maxMisses int
}

// NewPublisher returns a publisher over registry. Non-positive values fall
// back to the defaults.
func NewPublisher(registry *jobs.Registry, interval time.Duration, maxMisses int) *Publisher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxMisses <= 0 {
		maxMisses = DefaultMaxMisses
	}
	return &Publisher{registry: registry, interval: interval, maxMisses: maxMisses}
}

// Subscribe emits an event whenever the progress of trackID changes and
// closes the channel after a terminal status, after maxMisses consecutive
// polls without a job (ending with a not_found event), or when ctx is done.
func (p *Publisher) Subscribe(ctx context.Context, trackID int64) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		send := func(ev Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		lastProgress := -1
		var lastStatus jobs.Status
		misses := 0
		for {
			job, ok := p.registry.Get(trackID)
			if ok {
				misses = 0
				terminal := job.Status.IsTerminal()
				// a terminal status is reported even when progress did not move
				if job.Progress != lastProgress || (terminal && job.Status != lastStatus) {
					lastProgress, lastStatus = job.Progress, job.Status
					if !send(Event{Progress: job.Progress, TrackID: trackID, Status: job.Status}) {
						return
					}
				}
				if terminal {
					return
				}
			} else {
				misses++
				if misses >= p.maxMisses {
					send(Event{Progress: 0, TrackID: trackID, Status: jobs.StatusNotFound})
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return events
}
