// Package spider is Spider's client-side public API: the TDL type
// system, task graph composition, and storage-facing job submission
// (spec.md §1-2). It wraps internal/core, internal/tdl,
// internal/serde, and internal/storage behind the small surface an
// application author actually calls.
package spider

import (
	"reflect"
	"runtime"

	"github.com/chalkan3-sloth/spider-go/internal/core"
	"github.com/chalkan3-sloth/spider-go/internal/serde"
	"github.com/chalkan3-sloth/spider-go/internal/storage"
	"github.com/chalkan3-sloth/spider-go/internal/tdl"
)

// TaskContext gives a running task its own id and a handle for
// creating task-owned Data objects (spec.md §4.3, grounded on
// client/task_context.py's TaskContext). It is the mandatory first
// parameter of every task function.
type TaskContext struct {
	taskID  core.TaskId
	storage storage.Storage
}

// NewTaskContext constructs a TaskContext; the task executor calls
// this once per task invocation.
func NewTaskContext(taskID core.TaskId, store storage.Storage) *TaskContext {
	return &TaskContext{taskID: taskID, storage: store}
}

// TaskID returns the id of the task this context belongs to.
func (c *TaskContext) TaskID() core.TaskId {
	return c.taskID
}

// CreateData creates a new Data object owned by this task (spec.md's
// SUPPLEMENTED FEATURES: client/task_context.py's create_data,
// mirrored here using the task-ref ownership variant instead of the
// driver-ref variant Driver.CreateData uses).
func (c *TaskContext) CreateData(value []byte) (*Data, error) {
	impl := core.NewDataWithTaskRef(value, c.taskID)
	if err := c.storage.CreateDataWithTaskRef(c.taskID, impl); err != nil {
		return nil, err
	}
	impl.Persisted = true
	return &Data{impl: impl}, nil
}

var taskContextType = reflect.TypeOf((*TaskContext)(nil))

// taskFunction is what an application author actually writes: a Go
// function whose first parameter is *TaskContext, followed by TDL-
// convertible parameters, returning zero or more TDL-convertible
// values plus an optional trailing error.
//
// Go idiomatically signals fallibility through a trailing error
// return rather than an exception; the original Python
// implementation has no such convention to port, since Python tasks
// raise. A trailing error return is therefore NOT counted as a TDL
// output (spec.md §9 open question, resolved this way).
type taskFunction = any

// CreateTask builds a core.Task from a Go function via reflection,
// the idiomatic-Go replacement for Python's runtime signature
// introspection (spec.md §4.3, grounded on client/task.py's
// _create_task/_process_parameters/_process_return).
func CreateTask(fn taskFunction) (*core.Task, error) {
	fnVal := reflect.ValueOf(fn)
	if fnVal.Kind() != reflect.Func {
		return nil, core.NewTypeError("CreateTask requires a function, got %s", fnVal.Kind())
	}
	fnType := fnVal.Type()

	if fnType.NumIn() == 0 || fnType.In(0) != taskContextType {
		return nil, core.NewTypeError("first argument is not a *TaskContext")
	}
	if fnType.IsVariadic() {
		return nil, core.NewTypeError("variadic parameters are not supported")
	}

	task := core.NewTask(functionName(fnVal))

	for i := 1; i < fnType.NumIn(); i++ {
		tdlType, err := tdl.ToTDLType(fnType.In(i))
		if err != nil {
			return nil, err
		}
		task.TaskInputs = append(task.TaskInputs, core.TaskInput{Type: tdlType.String()})
	}

	numOut := fnType.NumOut()
	if numOut > 0 && fnType.Out(numOut-1) == errorType {
		numOut--
	}
	for i := 0; i < numOut; i++ {
		tdlType, err := tdl.ToTDLType(fnType.Out(i))
		if err != nil {
			return nil, err
		}
		task.TaskOutputs = append(task.TaskOutputs, core.TaskOutput{Type: tdlType.String()})
	}

	return task, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// functionName returns the task function's fully-qualified name,
// standing in for Python's func.__qualname__ (client/task.py's
// _create_task).
func functionName(fnVal reflect.Value) string {
	if fn := runtime.FuncForPC(fnVal.Pointer()); fn != nil {
		return fn.Name()
	}
	return fnVal.Type().String()
}

// LowerArgument converts a bound Go value into the (type string,
// serialized bytes) pair stored inline on a TaskInput, mirroring
// Driver.submit_jobs's per-argument branch for non-Data values
// (spec.md §4.5).
func LowerArgument(value any) (string, []byte, error) {
	tdlType, err := tdl.ToTDLType(reflect.TypeOf(value))
	if err != nil {
		return "", nil, err
	}
	encoded, err := serde.EncodeMsgpack(value)
	if err != nil {
		return "", nil, core.NewTypeError("failed to serialize argument").WithCause(err)
	}
	return tdlType.String(), encoded, nil
}
