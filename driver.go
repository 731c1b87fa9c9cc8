package spider

import (
	"reflect"

	"github.com/chalkan3-sloth/spider-go/internal/core"
	"github.com/chalkan3-sloth/spider-go/internal/storage"
	"github.com/chalkan3-sloth/spider-go/internal/tdl"
)

// dataClassName is the TDL class name bound arguments of type *Data
// are tagged with, mirroring client/driver.py's
// to_tdl_type_str(Data) for an argument that is itself a Data handle
// rather than a plain value.
var dataClassName = tdl.ClassName(reflect.TypeOf(Data{}))

// Driver is the client's entry point: it owns a storage connection and
// submits task graphs for execution (spec.md §4.5, grounded on
// client/driver.py's Driver).
type Driver struct {
	driverID core.DriverId
	storage  storage.Storage
}

// NewDriver parses storageURL, connects to the backing storage, and
// registers a fresh driver id with it.
func NewDriver(storageURL string) (*Driver, error) {
	params, err := storage.ParseJdbcURL(storageURL)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(params)
	if err != nil {
		return nil, err
	}

	driverID := core.NewId()
	if err := store.CreateDriver(driverID); err != nil {
		store.Close()
		return nil, err
	}
	return &Driver{driverID: driverID, storage: store}, nil
}

// Close releases the driver's storage connection.
func (d *Driver) Close() error {
	return d.storage.Close()
}

// SubmitJobs submits taskGraphs, one job per graph, binding each
// graph's graph-level inputs to the corresponding slice of args in
// order (spec.md §4.5 "submit_jobs", grounded on client/driver.py's
// submit_jobs). Each graph is deep-copied before binding, leaving the
// caller's original TaskGraph values untouched and reusable.
func (d *Driver) SubmitJobs(taskGraphs []*TaskGraph, args [][]any) ([]*Job, error) {
	if len(taskGraphs) != len(args) {
		return nil, core.NewValueError("number of job inputs does not match number of arguments")
	}
	if len(taskGraphs) == 0 {
		return nil, nil
	}

	coreGraphs := make([]*core.TaskGraph, len(taskGraphs))
	for i, graph := range taskGraphs {
		coreGraph := graph.impl.Copy()
		if err := bindArguments(coreGraph, args[i]); err != nil {
			return nil, err
		}
		coreGraphs[i] = coreGraph
	}

	coreJobs, err := d.storage.SubmitJobs(d.driverID, coreGraphs)
	if err != nil {
		return nil, err
	}

	jobs := make([]*Job, len(coreJobs))
	for i, coreJob := range coreJobs {
		jobs[i] = jobFromImpl(coreJob, d.storage)
	}
	return jobs, nil
}

// bindArguments sets every task in graph to Pending, marks its
// graph-level input tasks Ready, and binds taskArgs to their
// TaskInputs in order, one argument per input slot across all input
// tasks.
func bindArguments(graph *core.TaskGraph, taskArgs []any) error {
	for _, task := range graph.Tasks {
		task.State = core.TaskPending
	}

	argIndex := 0
	for _, taskIdx := range graph.InputTaskIndices {
		task := graph.Tasks[taskIdx]
		task.State = core.TaskReady
		for i := range task.TaskInputs {
			if argIndex >= len(taskArgs) {
				return core.NewValueError("number of job inputs does not match number of arguments")
			}
			arg := taskArgs[argIndex]
			argIndex++

			if data, ok := arg.(*Data); ok {
				task.TaskInputs[i].Type = dataClassName
				task.TaskInputs[i].Source = core.InputData
				task.TaskInputs[i].DataID = data.impl.DataID
				continue
			}

			tdlType, value, err := LowerArgument(arg)
			if err != nil {
				return err
			}
			task.TaskInputs[i].Type = tdlType
			task.TaskInputs[i].Source = core.InputValue
			task.TaskInputs[i].Value = value
		}
	}
	if argIndex != len(taskArgs) {
		return core.NewValueError("number of job inputs does not match number of arguments")
	}
	return nil
}

// CreateData persists data, owned by this driver.
func (d *Driver) CreateData(data *Data) error {
	if err := d.storage.CreateDataWithDriverRef(d.driverID, data.impl); err != nil {
		return err
	}
	data.impl.Persisted = true
	return nil
}
