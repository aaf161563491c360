package entities

import "time"

// TaskStatus is the terminal outcome of one operation on one project.
type TaskStatus string

const (
	TaskSuccess TaskStatus = "success"
	TaskFailed  TaskStatus = "failed"
	TaskSkipped TaskStatus = "skipped"
)

// TaskResult is the outcome of running one operation on one project.
// Err is non-nil if and only if Status is TaskFailed.
type TaskResult struct {
	Project  *Project
	Status   TaskStatus
	Output   string
	Err      error
	Duration time.Duration
}

// RunReport aggregates the results of a TaskRunner invocation.
type RunReport struct {
	Operation Operation
	Results   []TaskResult
}

// NewRunReport wraps the results of an operation.
func NewRunReport(op Operation, results []TaskResult) *RunReport {
	return &RunReport{Operation: op, Results: results}
}

// Succeeded returns the projects whose operation completed successfully.
func (r *RunReport) Succeeded() []*Project { return r.filter(TaskSuccess) }

// Failed returns the projects whose operation failed.
func (r *RunReport) Failed() []*Project { return r.filter(TaskFailed) }

// Skipped returns the projects that were never attempted.
func (r *RunReport) Skipped() []*Project { return r.filter(TaskSkipped) }

// HasFailures reports whether any project failed.
func (r *RunReport) HasFailures() bool { return len(r.Failed()) > 0 }

// AllSucceeded reports whether every project reached success.
func (r *RunReport) AllSucceeded() bool {
	return len(r.Succeeded()) == len(r.Results)
}

// Result returns the result recorded for the named project.
func (r *RunReport) Result(name string) (TaskResult, bool) {
	for _, res := range r.Results {
		if res.Project.Name == name {
			return res, true
		}
	}
	return TaskResult{}, false
}

func (r *RunReport) filter(status TaskStatus) []*Project {
	var out []*Project
	for _, res := range r.Results {
		if res.Status == status {
			out = append(out, res.Project)
		}
	}
	return out
}
