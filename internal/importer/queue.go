package importer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fitnesspoint/internal/logger"
	"fitnesspoint/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "imports"
	failedQueueKey = "imports:failed"
)

type JobRunner interface {
	Run(ctx context.Context, importID int) (Statistics, error)
}

type queuedJob struct {
	ImportID int       `json:"import_id"`
	Queued   time.Time `json:"queued"`
}

// Queue hands import ids to a single worker through a Redis list. Jobs are
// not retried; a failed run is parked on the failed list.
type Queue struct {
	redis  *redis.Client
	runner JobRunner
	// errorDelay is how long the worker waits after Redis itself fails.
	errorDelay time.Duration
}

func NewQueue(rdb *redis.Client, runner JobRunner) *Queue {
	return &Queue{redis: rdb, runner: runner, errorDelay: time.Second}
}

func (q *Queue) Enqueue(ctx context.Context, importID int) error {
	data, err := json.Marshal(queuedJob{ImportID: importID, Queued: time.Now()})
	if err != nil {
		return err
	}

	if err := q.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue import %d: %v", importID, err)
		return err
	}

	logger.Infof("Import %d queued", importID)
	return nil
}

func (q *Queue) Start(ctx context.Context) {
	logger.Info("Import worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Import worker stopped")
			return
		default:
			q.processNext(ctx)
		}
	}
}

func (q *Queue) processNext(ctx context.Context) {
	result, err := q.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.Errorf("Import queue unavailable: %v", err)
			q.wait(ctx, q.errorDelay)
		}
		return
	}
	metrics.ImportQueueLength.Set(float64(q.Length(ctx)))

	var job queuedJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad import job data: %v", err)
		return
	}

	if _, err := q.runner.Run(ctx, job.ImportID); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Infof("Import %d interrupted by shutdown, marked failed for a rerun", job.ImportID)
			return
		}
		q.saveFailed(job, err)
	}
}

func (q *Queue) wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (q *Queue) saveFailed(job queuedJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	q.redis.LPush(context.Background(), failedQueueKey, string(data))
	logger.Errorf("Import %d moved to failed queue: %v", job.ImportID, err)
}

func (q *Queue) Length(ctx context.Context) int64 {
	length, _ := q.redis.LLen(ctx, queueKey).Result()
	return length
}
