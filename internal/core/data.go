package core

// DataLocality hints at where a Data object's bytes can be fetched
// from without going through the storage driver (spec.md §3).
type DataLocality struct {
	Address string
}

// DataRefKind tags which of the two ownership models a Data object
// was created under (spec.md §4.7's data_ref_driver/data_ref_task
// tables): a driver-owned Data is garbage-collected with its driver,
// a task-owned one with the job that produced it.
type DataRefKind int

const (
	DataRefDriver DataRefKind = iota
	DataRefTask
)

// Data is a storable blob with locality hints and a dual ownership
// model for external garbage collection (spec.md §3, grounded on
// client/data.py and core/data.py).
type Data struct {
	DataID DataId

	// Value holds the already-serialized bytes; Spider never
	// inspects or re-encodes them once stored.
	Value []byte

	Localities   []DataLocality
	HardLocality bool

	RefKind DataRefKind
	// RefDriverID/RefTaskID is populated according to RefKind.
	RefDriverID DriverId
	RefTaskID   TaskId

	// Persisted reports whether the storage adapter has durably
	// written this Data object yet.
	Persisted bool
}

// NewDataWithDriverRef constructs a Data object owned by a driver
// (created outside of any task, e.g. as a job argument).
func NewDataWithDriverRef(value []byte, driverID DriverId) *Data {
	return &Data{
		DataID:      NewId(),
		Value:       value,
		RefKind:     DataRefDriver,
		RefDriverID: driverID,
	}
}

// NewDataWithTaskRef constructs a Data object owned by a task (created
// inside a running task via TaskContext.CreateData).
func NewDataWithTaskRef(value []byte, taskID TaskId) *Data {
	return &Data{
		DataID:    NewId(),
		Value:     value,
		RefKind:   DataRefTask,
		RefTaskID: taskID,
	}
}

// AddLocality appends a new locality hint.
func (d *Data) AddLocality(addr string) {
	d.Localities = append(d.Localities, DataLocality{Address: addr})
}

// GetLocalities returns the current locality hints.
func (d *Data) GetLocalities() []DataLocality {
	return d.Localities
}
