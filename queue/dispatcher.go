package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueueKey is the redis list staging job ids travel through.
const QueueKey = "staging:queue"

const outcomeKeyPrefix = "staging:result:"

// Dispatcher hands staging jobs to the worker pool through redis. Terminal
// outcomes are recorded under a retention window so a job id that gets
// enqueued twice is not processed twice.
type Dispatcher struct {
	rdb       *redis.Client
	retention time.Duration
}

func NewDispatcher(rdb *redis.Client, retention time.Duration) *Dispatcher {
	return &Dispatcher{rdb: rdb, retention: retention}
}

// Enqueue pushes a job id onto the staging queue and returns immediately.
func (d *Dispatcher) Enqueue(ctx context.Context, jobID string) error {
	if err := d.rdb.LPush(ctx, QueueKey, jobID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", jobID, err)
	}
	return nil
}

// RecordOutcome stores a job's terminal status for the retention window.
func (d *Dispatcher) RecordOutcome(ctx context.Context, jobID, status string) error {
	if err := d.rdb.Set(ctx, outcomeKeyPrefix+jobID, status, d.retention).Err(); err != nil {
		return fmt.Errorf("failed to record outcome for job %s: %w", jobID, err)
	}
	return nil
}

// Outcome returns the recorded terminal status for a job, or "" when none
// is retained.
func (d *Dispatcher) Outcome(ctx context.Context, jobID string) (string, error) {
	status, err := d.rdb.Get(ctx, outcomeKeyPrefix+jobID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read outcome for job %s: %w", jobID, err)
	}
	return status, nil
}

// ClearOutcome drops the retention marker, used when a job row is deleted.
func (d *Dispatcher) ClearOutcome(ctx context.Context, jobID string) error {
	if err := d.rdb.Del(ctx, outcomeKeyPrefix+jobID).Err(); err != nil {
		return fmt.Errorf("failed to clear outcome for job %s: %w", jobID, err)
	}
	return nil
}
