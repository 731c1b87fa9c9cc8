package core

// JobStatus is the lifecycle state of a Job, mirroring the terminal
// states a TaskGraph's tasks can collectively reach (spec.md §3).
type JobStatus int

const (
	JobRunning JobStatus = iota
	JobSucceeded
	JobFailed
	JobCancelled
)

func (s JobStatus) String() string {
	switch s {
	case JobRunning:
		return "running"
	case JobSucceeded:
		return "success"
	case JobFailed:
		return "fail"
	case JobCancelled:
		return "cancel"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether s will never change again, matching the
// client/job.py caching rule: once a terminal status or result set has
// been observed, it's cached forever rather than re-polled.
func (s JobStatus) IsTerminal() bool {
	return s != JobRunning
}

// Job is a lazy, cache-once-terminal view over a submitted graph's
// server-side status and results (spec.md §3, grounded on
// client/job.py's get_status/get_results caching).
type Job struct {
	JobID JobId

	cachedStatus  *JobStatus
	cachedResults []TaskOutput
}

// NewJob wraps a freshly submitted job id with no cached state.
func NewJob(id JobId) *Job {
	return &Job{JobID: id}
}

// CachedStatus returns the last observed status and whether one has
// been cached yet.
func (j *Job) CachedStatus() (JobStatus, bool) {
	if j.cachedStatus == nil {
		return 0, false
	}
	return *j.cachedStatus, true
}

// SetCachedStatus stores status, but only actually caches it once it's
// terminal: a Running status is never trustworthy to cache, since the
// job may have since progressed (client/job.py's get_status never
// short-circuits on a cached "running" value for this reason).
func (j *Job) SetCachedStatus(status JobStatus) {
	if status.IsTerminal() {
		j.cachedStatus = &status
	}
}

// CachedResults returns the last observed output values and whether
// they've been cached yet.
func (j *Job) CachedResults() ([]TaskOutput, bool) {
	if j.cachedResults == nil {
		return nil, false
	}
	return j.cachedResults, true
}

// SetCachedResults caches the job's final output values. Results are
// only ever fetched once a job reaches JobSucceeded, so no terminality
// check is needed here the way SetCachedStatus needs one.
func (j *Job) SetCachedResults(results []TaskOutput) {
	j.cachedResults = results
}
