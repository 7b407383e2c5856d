package queue

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jledbetter-dev/stagepilot/database"
	"github.com/jledbetter-dev/stagepilot/pipeline"
	"github.com/jledbetter-dev/stagepilot/repository"
)

// popTimeout bounds each BRPOP so workers can notice StopChan.
const popTimeout = 5 * time.Second

// WorkerPool consumes the staging queue and runs the pipeline. Each job is
// processed under a bounded execution timeout; a job that exceeds it is
// marked error through the pipeline's normal failure path. A reaper
// goroutine periodically fails in_progress jobs whose worker died mid-run.
type WorkerPool struct {
	rdb        *redis.Client
	dispatcher *Dispatcher
	pipe       *pipeline.Pipeline
	jobs       repository.JobRepositoryInterface

	NumWorkers     int
	JobTimeout     time.Duration
	StaleJobAge    time.Duration
	ReaperInterval time.Duration

	Wg       sync.WaitGroup
	StopChan chan struct{}
}

func NewWorkerPool(
	rdb *redis.Client,
	dispatcher *Dispatcher,
	pipe *pipeline.Pipeline,
	jobs repository.JobRepositoryInterface,
	numWorkers int,
	jobTimeout, staleJobAge, reaperInterval time.Duration,
) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &WorkerPool{
		rdb:            rdb,
		dispatcher:     dispatcher,
		pipe:           pipe,
		jobs:           jobs,
		NumWorkers:     numWorkers,
		JobTimeout:     jobTimeout,
		StaleJobAge:    staleJobAge,
		ReaperInterval: reaperInterval,
		StopChan:       make(chan struct{}),
	}
}

// Start launches the worker goroutines and the reaper.
func (wp *WorkerPool) Start() {
	wp.Wg.Add(wp.NumWorkers)
	for i := 0; i < wp.NumWorkers; i++ {
		go wp.worker(i)
	}
	wp.Wg.Add(1)
	go wp.reaper()
	log.Printf("Started %d staging worker(s) watching %s", wp.NumWorkers, QueueKey)
}

// Stop signals all goroutines and waits for in-flight jobs to finish.
func (wp *WorkerPool) Stop() {
	close(wp.StopChan)
	wp.Wg.Wait()
	log.Println("Staging worker pool stopped")
}

func (wp *WorkerPool) worker(id int) {
	defer wp.Wg.Done()
	log.Printf("Worker %d: started", id)

	ctx := context.Background()
	for {
		select {
		case <-wp.StopChan:
			log.Printf("Worker %d: stopping", id)
			return
		default:
		}

		result, err := wp.rdb.BRPop(ctx, popTimeout, QueueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			log.Printf("Worker %d: BRPOP error: %v", id, err)
			time.Sleep(5 * time.Second)
			continue
		}

		// result[0] is the queue key, result[1] the job id
		jobID := result[1]
		wp.processJob(id, jobID)
	}
}

func (wp *WorkerPool) processJob(id int, jobID string) {
	ctx, cancel := context.WithTimeout(context.Background(), wp.JobTimeout)
	defer cancel()

	if outcome, err := wp.dispatcher.Outcome(ctx, jobID); err != nil {
		log.Printf("Worker %d: outcome check failed for job %s: %v", id, jobID, err)
	} else if outcome != "" {
		log.Printf("Worker %d: job %s already finished (%s), skipping", id, jobID, outcome)
		return
	}

	log.Printf("Worker %d: processing job %s", id, jobID)
	status := database.StatusCompleted
	if err := wp.pipe.Process(ctx, jobID); err != nil {
		status = database.StatusError
	}

	if err := wp.dispatcher.RecordOutcome(context.Background(), jobID, status); err != nil {
		log.Printf("Worker %d: %v", id, err)
	}
}

// reaper fails in_progress jobs that have been running longer than the
// stale threshold. These are jobs whose worker process was killed before
// it could record an error.
func (wp *WorkerPool) reaper() {
	defer wp.Wg.Done()
	ticker := time.NewTicker(wp.ReaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-wp.StopChan:
			return
		case <-ticker.C:
			count, err := wp.jobs.FailStaleInProgress(wp.StaleJobAge, "staging worker did not finish; job reaped as stale")
			if err != nil {
				log.Printf("Reaper: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("Reaper: failed %d stale in-progress job(s)", count)
			}
		}
	}
}
