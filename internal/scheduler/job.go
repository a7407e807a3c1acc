package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string
	Run(ctx context.Context) error

	// Schedule returns a six-field cron spec ("0 0 6 * * *") or a descriptor ("@daily")
	Schedule() string
}

// JobResult records one execution, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// maxHistory bounds the results kept per job
const maxHistory = 50

// JobHistory keeps the most recent results of a job, oldest first
type JobHistory struct {
	Results []JobResult
}

func (h *JobHistory) add(result JobResult) {
	h.Results = append(h.Results, result)
	if over := len(h.Results) - maxHistory; over > 0 {
		h.Results = append(h.Results[:0:0], h.Results[over:]...)
	}
}

// Last returns the most recent result
func (h *JobHistory) Last() (JobResult, bool) {
	if len(h.Results) == 0 {
		return JobResult{}, false
	}
	return h.Results[len(h.Results)-1], true
}

// HistorySummary aggregates a job history
type HistorySummary struct {
	Runs        int        `json:"runs"`
	Failures    int        `json:"failures"`
	SuccessRate float64    `json:"success_rate"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastFailure *time.Time `json:"last_failure,omitempty"`
}

// Summary counts outcomes and finds the latest success and failure
func (h *JobHistory) Summary() HistorySummary {
	sum := HistorySummary{Runs: len(h.Results)}
	for i := range h.Results {
		r := h.Results[i]
		started := r.StartTime
		if r.Success {
			sum.LastSuccess = &started
		} else {
			sum.Failures++
			sum.LastFailure = &started
		}
	}
	if sum.Runs > 0 {
		sum.SuccessRate = float64(sum.Runs-sum.Failures) / float64(sum.Runs)
	}
	return sum
}
