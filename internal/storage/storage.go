package storage

import "github.com/chalkan3-sloth/spider-go/internal/core"

// Storage is the backend interface every job-submission/status/result
// and data-registration operation is issued through (spec.md §4.7,
// grounded on storage/storage.py's Storage ABC).
type Storage interface {
	// CreateDriver registers driverID so Data rows can reference it.
	CreateDriver(driverID core.DriverId) error

	// SubmitJobs submits taskGraphs under driverID in a single
	// transaction and returns one Job handle per graph, in order.
	SubmitJobs(driverID core.DriverId, taskGraphs []*core.TaskGraph) ([]*core.Job, error)

	// GetJobStatus reads job's current status. It does not mutate job.
	GetJobStatus(job *core.Job) (core.JobStatus, error)

	// GetJobResults reads job's output values, or (nil, false) if the
	// job has no results yet. It does not mutate job.
	GetJobResults(job *core.Job) ([]core.TaskOutput, bool, error)

	// CreateDataWithDriverRef inserts data, owned by driverID.
	CreateDataWithDriverRef(driverID core.DriverId, data *core.Data) error

	// CreateDataWithTaskRef inserts data, owned by taskID.
	CreateDataWithTaskRef(taskID core.TaskId, data *core.Data) error

	// GetData reads back a previously stored Data object by id.
	GetData(dataID core.DataId) (*core.Data, error)

	// Close releases the underlying connection.
	Close() error
}

// FetchAndUpdateJobStatus refreshes job's cached status from storage,
// honoring the terminal-status caching rule (spec.md §4.6, grounded
// on storage/job_utils.py's fetch_and_update_job_status).
func FetchAndUpdateJobStatus(s Storage, job *core.Job) error {
	if _, cached := job.CachedStatus(); cached {
		return nil
	}
	status, err := s.GetJobStatus(job)
	if err != nil {
		return err
	}
	job.SetCachedStatus(status)
	return nil
}

// FetchAndUpdateJobResults refreshes job's cached results from
// storage, returning early if already cached (spec.md §4.6, grounded
// on storage/job_utils.py's fetch_and_update_job_results).
func FetchAndUpdateJobResults(s Storage, job *core.Job) error {
	if _, cached := job.CachedResults(); cached {
		return nil
	}
	results, ok, err := s.GetJobResults(job)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	job.SetCachedResults(results)
	return nil
}
