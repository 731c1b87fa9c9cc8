package spider

import (
	"testing"

	"github.com/chalkan3-sloth/spider-go/internal/core"
	"github.com/chalkan3-sloth/spider-go/internal/serde"
)

type fakeStorage struct {
	status      core.JobStatus
	results     []core.TaskOutput
	resultsOK   bool
	data        map[core.DataId]*core.Data
	statusCalls int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: map[core.DataId]*core.Data{}}
}

func (s *fakeStorage) CreateDriver(core.DriverId) error { return nil }
func (s *fakeStorage) SubmitJobs(core.DriverId, []*core.TaskGraph) ([]*core.Job, error) {
	return nil, nil
}
func (s *fakeStorage) GetJobStatus(job *core.Job) (core.JobStatus, error) {
	s.statusCalls++
	return s.status, nil
}
func (s *fakeStorage) GetJobResults(job *core.Job) ([]core.TaskOutput, bool, error) {
	return s.results, s.resultsOK, nil
}
func (s *fakeStorage) CreateDataWithDriverRef(core.DriverId, *core.Data) error { return nil }
func (s *fakeStorage) CreateDataWithTaskRef(core.TaskId, *core.Data) error     { return nil }
func (s *fakeStorage) GetData(id core.DataId) (*core.Data, error) {
	d, ok := s.data[id]
	if !ok {
		return nil, core.NewStorageError("no such data %s", id)
	}
	return d, nil
}
func (s *fakeStorage) Close() error { return nil }

func TestJob_GetStatus_CachesTerminalStatus(t *testing.T) {
	fs := newFakeStorage()
	fs.status = core.JobSucceeded

	job := jobFromImpl(core.NewJob(core.NewId()), fs)

	status, err := job.GetStatus()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != core.JobSucceeded {
		t.Fatalf("status = %v, want JobSucceeded", status)
	}

	fs.status = core.JobFailed // should not be observed: cached already
	status, err = job.GetStatus()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != core.JobSucceeded {
		t.Errorf("expected cached JobSucceeded, got %v", status)
	}
	if fs.statusCalls != 1 {
		t.Errorf("expected storage to be queried once, got %d calls", fs.statusCalls)
	}
}

func TestJob_GetResults_InlineValue(t *testing.T) {
	fs := newFakeStorage()
	encoded, err := serde.EncodeMsgpack(int32(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fs.results = []core.TaskOutput{{Type: "int32", Source: core.OutputValue, Value: encoded}}
	fs.resultsOK = true

	job := jobFromImpl(core.NewJob(core.NewId()), fs)
	results, ok, err := job.GetResults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected results to be ready")
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	got, ok := results[0].(int32)
	if !ok || got != 42 {
		t.Errorf("results[0] = %#v, want int32(42)", results[0])
	}
}

func TestJob_GetResults_DataReference(t *testing.T) {
	fs := newFakeStorage()
	dataID := core.NewId()
	fs.data[dataID] = &core.Data{DataID: dataID, Value: []byte("blob")}
	fs.results = []core.TaskOutput{{Type: dataClassName, Source: core.OutputData, DataID: dataID}}
	fs.resultsOK = true

	job := jobFromImpl(core.NewJob(core.NewId()), fs)
	results, ok, err := job.GetResults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected results to be ready")
	}
	data, ok := results[0].(*Data)
	if !ok {
		t.Fatalf("results[0] = %#v, want *Data", results[0])
	}
	if string(data.Value()) != "blob" {
		t.Errorf("Value() = %q", data.Value())
	}
}

func TestJob_GetResults_NotYetReady(t *testing.T) {
	fs := newFakeStorage()
	fs.resultsOK = false

	job := jobFromImpl(core.NewJob(core.NewId()), fs)
	_, ok, err := job.GetResults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected results not to be ready")
	}
}
