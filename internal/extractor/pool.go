package extractor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pinscraper/pkg/logger"
	"pinscraper/pkg/models"
	"pinscraper/pkg/ratelimit"
)

// ExtractJob represents a single pin extraction task
type ExtractJob struct {
	Index   int
	PinURL  string
	Keyword string
}

// ExtractResult represents the result of an extraction job
type ExtractResult struct {
	Job      ExtractJob
	Pin      *models.Pin
	Success  bool
	Error    error
	Duration time.Duration
}

// PinExtractor interface for fetching and parsing pin closeup pages
type PinExtractor interface {
	ExtractPin(ctx context.Context, pinURL, keyword string) (*models.Pin, error)
}

// WorkerPool manages concurrent pin extraction workers
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan ExtractJob
	resultQueue chan ExtractResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	extractor   PinExtractor
	rateLimiter ratelimit.Limiter
	logger      logger.Logger
}

// NewWorkerPool creates a new extraction worker pool
func NewWorkerPool(
	numWorkers int,
	extractor PinExtractor,
	rateLimiter ratelimit.Limiter,
	log logger.Logger,
) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.GetLogger()
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan ExtractJob, numWorkers*2),
		resultQueue: make(chan ExtractResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		extractor:   extractor,
		rateLimiter: rateLimiter,
		logger:      log,
	}
}

// Start initializes and starts all workers
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("Starting extraction pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop gracefully shuts down the worker pool
func (wp *WorkerPool) Stop() {
	wp.logger.Debug("Stopping extraction pool...")

	// Close job queue to signal no more jobs will be added
	close(wp.jobQueue)

	// Wait for all workers to finish processing remaining jobs
	wp.wg.Wait()

	close(wp.resultQueue)
	wp.cancel()

	wp.logger.Debug("Extraction pool stopped")
}

// Submit adds a new extraction job to the queue
func (wp *WorkerPool) Submit(job ExtractJob) error {
	select {
	case wp.jobQueue <- job:
		wp.logger.DebugWithFields("Job submitted to queue", map[string]interface{}{
			"pin_url": job.PinURL,
			"keyword": job.Keyword,
		})
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("extraction pool is shutting down")
	}
}

// Results returns the result channel for consuming extraction results
func (wp *WorkerPool) Results() <-chan ExtractResult {
	return wp.resultQueue
}

// worker is the main worker routine
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	wp.logger.DebugWithFields("Worker started", map[string]interface{}{
		"worker_id": id,
	})

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker stopping - context cancelled", map[string]interface{}{
				"worker_id": id,
			})
			return
		default:
		}

		result := wp.processJob(job, id)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker stopping - context cancelled while sending result", map[string]interface{}{
				"worker_id": id,
			})
			return
		}
	}

	wp.logger.DebugWithFields("Worker stopping - job queue closed", map[string]interface{}{
		"worker_id": id,
	})
}

// processJob handles a single extraction job
func (wp *WorkerPool) processJob(job ExtractJob, workerID int) ExtractResult {
	start := time.Now()
	result := ExtractResult{
		Job:     job,
		Success: false,
	}

	wp.logger.DebugWithFields("Worker processing job", map[string]interface{}{
		"worker_id": workerID,
		"pin_url":   job.PinURL,
		"keyword":   job.Keyword,
	})

	if wp.rateLimiter != nil && !wp.rateLimiter.Allow() {
		wp.logger.DebugWithFields("Worker waiting for rate limit", map[string]interface{}{
			"worker_id": workerID,
			"pin_url":   job.PinURL,
		})
		if err := wp.rateLimiter.WaitContext(wp.ctx); err != nil {
			result.Error = err
			result.Duration = time.Since(start)
			return result
		}
	}

	pin, err := wp.extractor.ExtractPin(wp.ctx, job.PinURL, job.Keyword)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = fmt.Errorf("extraction failed: %w", err)

		wp.logger.WarnWithFields("Worker failed to extract pin", map[string]interface{}{
			"worker_id": workerID,
			"pin_url":   job.PinURL,
			"error":     err.Error(),
			"duration":  result.Duration,
		})

		return result
	}

	result.Pin = pin
	result.Success = true

	wp.logger.DebugWithFields("Worker completed job successfully", map[string]interface{}{
		"worker_id": workerID,
		"pin_id":    pin.PinID,
		"duration":  result.Duration,
	})

	return result
}

// GetQueueSize returns the current number of jobs in the queue
func (wp *WorkerPool) GetQueueSize() int {
	return len(wp.jobQueue)
}

// GetActiveWorkers returns the number of active workers
func (wp *WorkerPool) GetActiveWorkers() int {
	return wp.numWorkers
}

// ExtractAll runs all pin URLs through the pool and returns the successfully
// extracted pins in their original search order. Failed pins are skipped and
// reported through the returned failure count.
func ExtractAll(
	ctx context.Context,
	extractor PinExtractor,
	pinURLs []string,
	keyword string,
	numWorkers int,
	rateLimiter ratelimit.Limiter,
	log logger.Logger,
	onResult func(ExtractResult),
) ([]*models.Pin, int) {
	if log == nil {
		log = logger.GetLogger()
	}

	pool := NewWorkerPool(numWorkers, extractor, rateLimiter, log)
	pool.Start()

	go func() {
		for i, pinURL := range pinURLs {
			if ctx.Err() != nil {
				break
			}
			if err := pool.Submit(ExtractJob{Index: i, PinURL: pinURL, Keyword: keyword}); err != nil {
				break
			}
		}
		pool.Stop()
	}()

	ordered := make([]*models.Pin, len(pinURLs))
	failed := 0
	for result := range pool.Results() {
		if onResult != nil {
			onResult(result)
		}
		if result.Success {
			ordered[result.Job.Index] = result.Pin
		} else {
			failed++
		}
	}

	pins := make([]*models.Pin, 0, len(pinURLs))
	for _, pin := range ordered {
		if pin != nil {
			pins = append(pins, pin)
		}
	}
	return pins, failed
}
