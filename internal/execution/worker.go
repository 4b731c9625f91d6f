package execution

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"gunit/internal/config"
	"gunit/internal/domain"
)

// WorkerPool manages a pool of workers for parallel test execution
type WorkerPool struct {
	config    *config.Config
	runner    *Runner
	scheduler Scheduler
	progress  Progress
	logger    *zap.Logger
}

var _ Executor = (*WorkerPool)(nil)

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner *Runner, scheduler Scheduler, logger *zap.Logger) *WorkerPool {
	if scheduler == nil {
		scheduler = NewRoundRobinScheduler()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		config:    cfg,
		runner:    runner,
		scheduler: scheduler,
		logger:    logger,
	}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute executes tests in parallel using worker pool (no fail-fast).
func (wp *WorkerPool) Execute(ctx context.Context, tests []*domain.TestCase) ([]*domain.Result, time.Duration, error) {
	return wp.ExecuteWithOptions(ctx, tests, false)
}

// ExecuteWithOptions executes tests with optional fail-fast (stop on first failure).
// Results are returned in the order of tests.
func (wp *WorkerPool) ExecuteWithOptions(ctx context.Context, tests []*domain.TestCase, failFast bool) ([]*domain.Result, time.Duration, error) {
	if len(tests) == 0 {
		return nil, 0, nil
	}
	workerCount := wp.workerCount()
	wp.logger.Info("starting test run",
		zap.Int("tests", len(tests)),
		zap.Int("workers", workerCount),
		zap.Bool("fail_fast", failFast),
	)

	var (
		results  []*domain.Result
		duration time.Duration
	)
	if !failFast {
		results, duration = wp.executeAll(ctx, tests, workerCount)
	} else {
		results, duration = wp.executeFailFast(ctx, tests, workerCount)
	}

	wp.logger.Info("finished test run", zap.Int("results", len(results)), zap.Duration("duration", duration))
	return results, duration, ctx.Err()
}

func (wp *WorkerPool) workerCount() int {
	workerCount := 1
	if wp.config != nil && wp.config.Workers > 0 {
		workerCount = wp.config.Workers
	}
	return workerCount
}

// tally tracks progress across workers
type tally struct {
	mu        sync.Mutex
	progress  Progress
	completed int
	passed    int
	failed    int
}

func (t *tally) add(result *domain.Result) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	failed := result.Status().IsFailure()
	if failed {
		t.failed++
	} else {
		t.passed++
	}
	if t.progress != nil {
		t.progress.Update(t.completed, t.passed, t.failed)
	}
	return failed
}

// executeAll runs every test, each worker taking its scheduled share.
func (wp *WorkerPool) executeAll(ctx context.Context, tests []*domain.TestCase, workerCount int) ([]*domain.Result, time.Duration) {
	index := make(map[*domain.TestCase]int, len(tests))
	for i, test := range tests {
		index[test] = i
	}
	results := make([]*domain.Result, len(tests))
	counts := &tally{progress: wp.progress}
	startTime := time.Now()

	var wg sync.WaitGroup
	for i, share := range wp.scheduler.Schedule(tests, workerCount) {
		wg.Add(1)
		go func(workerID int, share []*domain.TestCase) {
			defer wg.Done()
			for _, test := range share {
				result := wp.runner.Run(ctx, test, workerID)
				results[index[test]] = result
				counts.add(result)
			}
		}(i+1, share)
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}
	return compact(results), time.Since(startTime)
}

// executeFailFast runs tests from a shared queue and stops dispatching after
// the first failure. Tests in flight see a cancelled context.
func (wp *WorkerPool) executeFailFast(parent context.Context, tests []*domain.TestCase, workerCount int) ([]*domain.Result, time.Duration) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	type job struct {
		index int
		test  *domain.TestCase
	}
	testQueue := make(chan job, 1)
	go func() {
		defer close(testQueue)
		for i, test := range tests {
			select {
			case <-ctx.Done():
				return
			case testQueue <- job{index: i, test: test}:
			}
		}
	}()

	results := make([]*domain.Result, len(tests))
	counts := &tally{progress: wp.progress}
	startTime := time.Now()

	var wg sync.WaitGroup
	for i := 1; i <= workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range testQueue {
				if ctx.Err() != nil {
					continue
				}
				result := wp.runner.Run(ctx, j.test, workerID)
				results[j.index] = result
				if counts.add(result) {
					wp.logger.Info("stopping after failure", zap.String("test", j.test.FullName()))
					cancel()
				}
			}
		}(i)
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}
	return compact(results), time.Since(startTime)
}

// compact drops the slots of tests that were never dispatched
func compact(results []*domain.Result) []*domain.Result {
	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
