package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/finlens/backend/pkg/logger"
)

// Scheduler manages scheduled jobs
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	entries map[string]cron.EntryID
	history map[string]*JobHistory
	mu      sync.RWMutex

	// Retry configuration
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithRetry overrides the retry count and the delay between attempts
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(s *Scheduler) {
		s.maxRetries = maxRetries
		s.retryDelay = delay
	}
}

// New creates a new scheduler. Schedules use the six field cron format with seconds.
func New(log *logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		logger:     log.WithField("module", "scheduler"),
		jobs:       make(map[string]Job),
		entries:    make(map[string]cron.EntryID),
		history:    make(map[string]*JobHistory),
		maxRetries: 2,
		retryDelay: 1 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobName := job.Name()

	if _, exists := s.jobs[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() {
		_ = s.runJob(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", jobName, err)
	}

	s.jobs[jobName] = job
	s.entries[jobName] = id
	s.history[jobName] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// RemoveJob unschedules a job; its history is kept
func (s *Scheduler) RemoveJob(jobName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[jobName]; !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	s.cron.Remove(s.entries[jobName])
	delete(s.jobs, jobName)
	delete(s.entries, jobName)
	s.logger.WithField("job", jobName).Info("Job removed from scheduler")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// RunJob runs a job immediately and waits for it, retries included
func (s *Scheduler) RunJob(ctx context.Context, jobName string) error {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	return s.runJob(ctx, job)
}

// runJob executes a job with retry logic and records the outcome
func (s *Scheduler) runJob(ctx context.Context, job Job) error {
	jobName := job.Name()
	startTime := time.Now()
	log := s.logger.WithField("job", jobName)

	log.Info("Job started")

	var lastErr error
	attempts := 0

retry:
	for {
		attempts++
		if lastErr = job.Run(ctx); lastErr == nil {
			break
		}
		log.WithError(lastErr).WithField("attempt", attempts).Warn("Job execution failed")

		if attempts > s.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			lastErr = fmt.Errorf("%w (retries abandoned: %v)", lastErr, ctx.Err())
			break retry
		case <-time.After(s.retryDelay):
		}
	}

	result := JobResult{
		JobName:   jobName,
		StartTime: startTime,
		Duration:  time.Since(startTime),
		Attempts:  attempts,
		Success:   lastErr == nil,
	}
	if lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[jobName]; exists {
		history.add(result)
	}
	s.mu.Unlock()

	if result.Success {
		log.WithField("duration", result.Duration).Info("Job completed successfully")
		return nil
	}

	log.WithError(lastErr).WithField("duration", result.Duration).Error("Job failed after all retries")
	return fmt.Errorf("job %s: %w", jobName, lastErr)
}

// GetJobHistory returns the history for a specific job
func (s *Scheduler) GetJobHistory(jobName string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[jobName]
	if !exists {
		return nil, fmt.Errorf("job %s not found", jobName)
	}

	return history, nil
}

// GetAllJobs returns all registered jobs
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]string, 0, len(s.jobs))
	for jobName := range s.jobs {
		jobs = append(jobs, jobName)
	}

	return jobs
}

// GetJobStats returns statistics for the scheduled jobs
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats, len(s.jobs))
	for jobName, job := range s.jobs {
		history := s.history[jobName]
		st := JobStats{
			JobName:        jobName,
			Schedule:       job.Schedule(),
			HistorySummary: history.Summary(),
		}
		if last, ok := history.Last(); ok {
			started := last.StartTime
			st.LastRun = &started
		}
		stats[jobName] = st
	}

	return stats
}

// JobStats represents statistics for a job
type JobStats struct {
	JobName  string     `json:"job_name"`
	Schedule string     `json:"schedule"`
	LastRun  *time.Time `json:"last_run,omitempty"`
	HistorySummary
}
