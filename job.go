package spider

import (
	"github.com/chalkan3-sloth/spider-go/internal/core"
	"github.com/chalkan3-sloth/spider-go/internal/serde"
	"github.com/chalkan3-sloth/spider-go/internal/storage"
	"github.com/chalkan3-sloth/spider-go/internal/tdl"
)

// Job is a handle to a submitted TaskGraph's server-side execution,
// wrapping internal/core's Job (spec.md §3, grounded on
// client/job.py's Job).
type Job struct {
	impl    *core.Job
	storage storage.Storage
}

func jobFromImpl(impl *core.Job, store storage.Storage) *Job {
	return &Job{impl: impl, storage: store}
}

// JobID returns the job's id.
func (j *Job) JobID() core.JobId {
	return j.impl.JobID
}

// GetStatus fetches the job's current status, transparently caching it
// once it reaches a terminal state (client/job.py's get_status).
func (j *Job) GetStatus() (core.JobStatus, error) {
	if err := storage.FetchAndUpdateJobStatus(j.storage, j.impl); err != nil {
		return 0, err
	}
	status, _ := j.impl.CachedStatus()
	return status, nil
}

// GetResults fetches and converts the job's output values, or
// (nil, false) if the job has not produced results yet. Each output
// is raised to either a native Go value (inline-serialized outputs)
// or a *Data handle (data-reference outputs), mirroring
// client/job.py's get_results/_convert_outputs.
func (j *Job) GetResults() ([]any, bool, error) {
	if err := storage.FetchAndUpdateJobResults(j.storage, j.impl); err != nil {
		return nil, false, err
	}
	outputs, ok := j.impl.CachedResults()
	if !ok {
		return nil, false, nil
	}

	results := make([]any, len(outputs))
	for i, out := range outputs {
		value, err := j.convertOutput(out)
		if err != nil {
			return nil, false, err
		}
		results[i] = value
	}
	return results, true, nil
}

// convertOutput raises a single TaskOutput to the value an
// application author actually wants to see: a *Data handle for a
// data-reference output, or the deserialized native value for an
// inline one.
func (j *Job) convertOutput(out core.TaskOutput) (any, error) {
	switch out.Source {
	case core.OutputData:
		data, err := j.storage.GetData(out.DataID)
		if err != nil {
			return nil, err
		}
		return dataFromImpl(data), nil
	case core.OutputValue:
		tdlType, err := tdl.Parse(out.Type)
		if err != nil {
			return nil, err
		}
		nativeType, err := tdl.NativeType(tdlType)
		if err != nil {
			return nil, err
		}
		value, err := serde.DecodeMsgpack(out.Value, nativeType)
		if err != nil {
			return nil, core.NewTypeError("failed to deserialize task output of type %q", out.Type).WithCause(err)
		}
		return value, nil
	default:
		return nil, core.NewStorageError("task output of type %q was never resolved by the executor", out.Type)
	}
}
