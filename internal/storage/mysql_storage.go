package storage

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/chalkan3-sloth/spider-go/internal/common"
	"github.com/chalkan3-sloth/spider-go/internal/core"
	"github.com/chalkan3-sloth/spider-go/internal/metrics"
	"github.com/chalkan3-sloth/spider-go/internal/reliability"
)

var storageLogger = common.GetLogger()

// languageTag identifies this client's implementation language in the
// tasks table (spec.md §4.7 step 3).
const languageTag = "go"

const (
	insertDriver = "INSERT INTO `drivers` (`id`, `heartbeat`) VALUES (?, ?)"

	insertJob = "INSERT INTO `jobs` (`id`, `client_id`) VALUES (?, ?)"

	insertTask = "INSERT INTO `tasks` " +
		"(`id`, `job_id`, `func_name`, `language`, `state`, `timeout`, `max_retry`) " +
		"VALUES (?, ?, ?, ?, ?, ?, ?)"

	insertTaskDependency = "INSERT INTO `task_dependencies` (`parent`, `child`) VALUES (?, ?)"

	insertInputTask  = "INSERT INTO `input_tasks` (`job_id`, `task_id`, `position`) VALUES (?, ?, ?)"
	insertOutputTask = "INSERT INTO `output_tasks` (`job_id`, `task_id`, `position`) VALUES (?, ?, ?)"

	insertTaskOutput = "INSERT INTO `task_outputs` (`task_id`, `position`, `type`) VALUES (?, ?, ?)"

	insertTaskInputData = "INSERT INTO `task_inputs` " +
		"(`task_id`, `position`, `type`, `data_id`) VALUES (?, ?, ?, ?)"

	insertTaskInputValue = "INSERT INTO `task_inputs` " +
		"(`task_id`, `position`, `type`, `value`) VALUES (?, ?, ?, ?)"

	insertTaskInputOutput = "INSERT INTO `task_inputs` " +
		"(`task_id`, `position`, `type`, `output_task_id`, `output_task_position`) VALUES (?, ?, ?, ?, ?)"

	insertData = "INSERT INTO `data` (`id`, `value`, `hard_locality`, `persisted`) VALUES (?, ?, ?, ?)"

	insertDataLocality  = "INSERT INTO `data_locality` (`id`, `address`) VALUES (?, ?)"
	insertDataRefDriver = "INSERT INTO `data_ref_driver` (`id`, `driver_id`) VALUES (?, ?)"
	insertDataRefTask   = "INSERT INTO `data_ref_task` (`id`, `task_id`) VALUES (?, ?)"

	selectJobState = "SELECT `state` FROM `jobs` WHERE `id` = ?"

	selectOutputTasks = "SELECT `task_id`, `position` FROM `output_tasks` " +
		"WHERE `job_id` = ? ORDER BY `position`"

	selectTaskOutputs = "SELECT `type`, `value`, `data_id` FROM `task_outputs` " +
		"WHERE `task_id` = ? ORDER BY `position`"

	selectData = "SELECT `value`, `hard_locality`, `persisted` FROM `data` WHERE `id` = ?"

	selectDataLocalities = "SELECT `address` FROM `data_locality` WHERE `id` = ?"
)

// MySQLStorage implements Storage against a MySQL/MariaDB-compatible
// server reachable over database/sql (spec.md §4.7, grounded on
// storage/mariadb_storage.py's MariaDBStorage, adapted from
// mariadb-python's cursor.executemany to Go's prepared-statement-in-
// a-transaction-loop idiom since database/sql has no batch-exec
// primitive).
type MySQLStorage struct {
	db *sql.DB
}

// Open connects to the database named by params, retrying the
// initial ping with reliability.Retry (adapted from the teacher's Retrier and
// internal/masterdb.go's plain sql.Open, since a network database
// warrants a bounded retry on connection where a local sqlite file
// did not).
func Open(params *JdbcParameters) (*MySQLStorage, error) {
	db, err := sql.Open("mysql", params.DSN())
	if err != nil {
		return nil, core.NewStorageError("opening connection to %s", params.Host).WithCause(err)
	}

	_, err = reliability.Retry(3, 200*time.Millisecond, func() (any, error) {
		return nil, db.Ping()
	})
	if err != nil {
		db.Close()
		storageLogger.Error("failed to connect to storage: " + err.Error())
		return nil, core.NewStorageError("connecting to %s", params.Host).WithCause(err)
	}

	metrics.OpenSessions.Inc()
	storageLogger.Success("connected to storage at " + params.Host)
	return &MySQLStorage{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *MySQLStorage) Close() error {
	metrics.OpenSessions.Dec()
	storageLogger.Info("closing storage connection")
	return s.db.Close()
}

func (s *MySQLStorage) CreateDriver(driverID core.DriverId) error {
	_, err := s.db.Exec(insertDriver, idBytes(driverID), time.Now().Unix())
	if err != nil {
		metrics.StorageErrors.WithLabelValues("create_driver").Inc()
		storageLogger.Warn("failed to create driver " + driverID.String())
		return core.NewStorageError("creating driver").WithCause(err)
	}
	return nil
}

// SubmitJobs implements the exact eight-step transaction from
// spec.md §4.7, table by table, inside one *sql.Tx.
func (s *MySQLStorage) SubmitJobs(driverID core.DriverId, taskGraphs []*core.TaskGraph) ([]*core.Job, error) {
	if len(taskGraphs) == 0 {
		return nil, nil
	}

	start := time.Now()
	jobs, err := s.submitJobsTx(driverID, taskGraphs)
	outcome := "success"
	if err != nil {
		outcome = "error"
		metrics.StorageErrors.WithLabelValues("submit_jobs").Inc()
	}
	metrics.JobsSubmitted.WithLabelValues(outcome).Add(float64(len(taskGraphs)))
	metrics.SubmissionLatency.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return jobs, err
}

func (s *MySQLStorage) submitJobsTx(driverID core.DriverId, taskGraphs []*core.TaskGraph) ([]*core.Job, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, core.NewStorageError("beginning submit_jobs transaction").WithCause(err)
	}

	jobs, err := submitJobsWithTx(tx, driverID, taskGraphs)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, core.NewStorageError("committing submit_jobs transaction").WithCause(err)
	}
	return jobs, nil
}

// submitJobsWithTx is split out from submitJobsTx so tests can drive
// it directly against a sqlmock transaction.
func submitJobsWithTx(tx *sql.Tx, driverID core.DriverId, taskGraphs []*core.TaskGraph) ([]*core.Job, error) {
	jobIDs := make([]uuid.UUID, len(taskGraphs))
	taskIDs := make([][]uuid.UUID, len(taskGraphs))
	for i, g := range taskGraphs {
		jobIDs[i] = core.NewId()
		taskIDs[i] = make([]uuid.UUID, len(g.Tasks))
		for j := range g.Tasks {
			taskIDs[i][j] = core.NewId()
		}
	}

	if err := execMany(tx, insertJob, func(yield func(...any) error) error {
		for _, jobID := range jobIDs {
			if err := yield(idBytes(jobID), idBytes(driverID)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, wrapStorage("inserting jobs", err)
	}

	if err := execMany(tx, insertTask, func(yield func(...any) error) error {
		for gi, g := range taskGraphs {
			for ti, task := range g.Tasks {
				if err := yield(idBytes(taskIDs[gi][ti]), idBytes(jobIDs[gi]), task.FunctionName,
					languageTag, task.State.StateStr(), task.Timeout, task.MaxRetries); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return nil, wrapStorage("inserting tasks", err)
	}

	hasDeps := false
	for _, g := range taskGraphs {
		if len(g.Dependencies) > 0 {
			hasDeps = true
			break
		}
	}
	if hasDeps {
		if err := execMany(tx, insertTaskDependency, func(yield func(...any) error) error {
			for gi, g := range taskGraphs {
				for _, dep := range g.Dependencies {
					if err := yield(idBytes(taskIDs[gi][dep[0]]), idBytes(taskIDs[gi][dep[1]])); err != nil {
						return err
					}
				}
			}
			return nil
		}); err != nil {
			return nil, wrapStorage("inserting task dependencies", err)
		}
	}

	if err := execMany(tx, insertInputTask, func(yield func(...any) error) error {
		for gi, g := range taskGraphs {
			for pos, ti := range g.InputTaskIndices {
				if err := yield(idBytes(jobIDs[gi]), idBytes(taskIDs[gi][ti]), pos); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return nil, wrapStorage("inserting input_tasks", err)
	}

	if err := execMany(tx, insertOutputTask, func(yield func(...any) error) error {
		for gi, g := range taskGraphs {
			for pos, ti := range g.OutputTaskIndices {
				if err := yield(idBytes(jobIDs[gi]), idBytes(taskIDs[gi][ti]), pos); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return nil, wrapStorage("inserting output_tasks", err)
	}

	if err := execMany(tx, insertTaskOutput, func(yield func(...any) error) error {
		for gi, g := range taskGraphs {
			for ti, task := range g.Tasks {
				for pos, out := range task.TaskOutputs {
					if err := yield(idBytes(taskIDs[gi][ti]), pos, out.Type); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}); err != nil {
		return nil, wrapStorage("inserting task_outputs", err)
	}

	hasDataInputs := false
	hasValueInputs := false
	for _, g := range taskGraphs {
		for _, task := range g.Tasks {
			for _, in := range task.TaskInputs {
				switch in.Source {
				case core.InputData:
					hasDataInputs = true
				case core.InputValue:
					hasValueInputs = true
				}
			}
		}
	}

	if hasDataInputs {
		if err := execMany(tx, insertTaskInputData, func(yield func(...any) error) error {
			for gi, g := range taskGraphs {
				for ti, task := range g.Tasks {
					for pos, in := range task.TaskInputs {
						if in.Source != core.InputData {
							continue
						}
						if err := yield(idBytes(taskIDs[gi][ti]), pos, in.Type, idBytes(in.DataID)); err != nil {
							return err
						}
					}
				}
			}
			return nil
		}); err != nil {
			return nil, wrapStorage("inserting data-backed task_inputs", err)
		}
	}

	if hasValueInputs {
		if err := execMany(tx, insertTaskInputValue, func(yield func(...any) error) error {
			for gi, g := range taskGraphs {
				for ti, task := range g.Tasks {
					for pos, in := range task.TaskInputs {
						if in.Source != core.InputValue {
							continue
						}
						if err := yield(idBytes(taskIDs[gi][ti]), pos, in.Type, in.Value); err != nil {
							return err
						}
					}
				}
			}
			return nil
		}); err != nil {
			return nil, wrapStorage("inserting value-backed task_inputs", err)
		}
	}

	hasRefs := false
	for _, g := range taskGraphs {
		if len(g.TaskInputOutputRefs) > 0 {
			hasRefs = true
			break
		}
	}
	if hasRefs {
		if err := execMany(tx, insertTaskInputOutput, func(yield func(...any) error) error {
			for gi, g := range taskGraphs {
				for _, ref := range g.TaskInputOutputRefs {
					consumerType := g.Tasks[ref.ConsumerTaskIdx].TaskInputs[ref.ConsumerInputPos].Type
					if err := yield(
						idBytes(taskIDs[gi][ref.ConsumerTaskIdx]), ref.ConsumerInputPos, consumerType,
						idBytes(taskIDs[gi][ref.ProducerTaskIdx]), ref.ProducerOutputPos,
					); err != nil {
						return err
					}
				}
			}
			return nil
		}); err != nil {
			return nil, wrapStorage("inserting cross-reference task_inputs", err)
		}
	}

	jobs := make([]*core.Job, len(jobIDs))
	for i, id := range jobIDs {
		jobs[i] = core.NewJob(id)
	}
	return jobs, nil
}

// GetJobStatus reads jobs.state and translates it to the enum
// (spec.md §4.7 "get_job_status").
func (s *MySQLStorage) GetJobStatus(job *core.Job) (core.JobStatus, error) {
	var stateStr string
	err := s.db.QueryRow(selectJobState, idBytes(job.JobID)).Scan(&stateStr)
	outcome := "success"
	defer func() { metrics.JobStatusPolls.WithLabelValues(outcome).Inc() }()

	if err == sql.ErrNoRows {
		outcome = "error"
		metrics.StorageErrors.WithLabelValues("get_job_status").Inc()
		return 0, core.NewStorageError("unknown job %s", job.JobID)
	}
	if err != nil {
		outcome = "error"
		metrics.StorageErrors.WithLabelValues("get_job_status").Inc()
		return 0, core.NewStorageError("reading job status").WithCause(err)
	}

	status, ok := parseJobStatus(stateStr)
	if !ok {
		outcome = "error"
		metrics.StorageErrors.WithLabelValues("get_job_status").Inc()
		return 0, core.NewStorageError("unknown job state %q", stateStr)
	}
	return status, nil
}

func parseJobStatus(s string) (core.JobStatus, bool) {
	switch s {
	case "running":
		return core.JobRunning, true
	case "success":
		return core.JobSucceeded, true
	case "fail":
		return core.JobFailed, true
	case "cancel":
		return core.JobCancelled, true
	default:
		return 0, false
	}
}

// GetJobResults reads output_tasks ordered by position, then each
// task's task_outputs ordered by position, classifying each row as
// inline value, data reference, or malformed (spec.md §4.7
// "get_job_results"). If the job isn't in a terminal successful
// state, it returns (nil, false, nil).
func (s *MySQLStorage) GetJobResults(job *core.Job) ([]core.TaskOutput, bool, error) {
	status, err := s.GetJobStatus(job)
	if err != nil {
		return nil, false, err
	}
	if status != core.JobSucceeded {
		return nil, false, nil
	}

	rows, err := s.db.Query(selectOutputTasks, idBytes(job.JobID))
	if err != nil {
		metrics.StorageErrors.WithLabelValues("get_job_results").Inc()
		return nil, false, core.NewStorageError("reading output_tasks").WithCause(err)
	}
	defer rows.Close()

	var taskIDs [][]byte
	for rows.Next() {
		var taskID []byte
		var position int
		if err := rows.Scan(&taskID, &position); err != nil {
			metrics.StorageErrors.WithLabelValues("get_job_results").Inc()
			return nil, false, core.NewStorageError("scanning output_tasks row").WithCause(err)
		}
		taskIDs = append(taskIDs, taskID)
	}

	var results []core.TaskOutput
	for _, taskID := range taskIDs {
		outRows, err := s.db.Query(selectTaskOutputs, taskID)
		if err != nil {
			metrics.StorageErrors.WithLabelValues("get_job_results").Inc()
			return nil, false, core.NewStorageError("reading task_outputs").WithCause(err)
		}
		for outRows.Next() {
			var typ string
			var value []byte
			var dataID []byte
			if err := outRows.Scan(&typ, &value, &dataID); err != nil {
				outRows.Close()
				metrics.StorageErrors.WithLabelValues("get_job_results").Inc()
				return nil, false, core.NewStorageError("scanning task_outputs row").WithCause(err)
			}
			out := core.TaskOutput{Type: typ}
			switch {
			case value != nil && dataID == nil:
				out.Source = core.OutputValue
				out.Value = value
			case dataID != nil && value == nil:
				out.Source = core.OutputData
				copy(out.DataID[:], dataID)
			default:
				outRows.Close()
				metrics.StorageErrors.WithLabelValues("get_job_results").Inc()
				return nil, false, core.NewStorageError("malformed task_outputs row: exactly one of value/data_id must be set")
			}
			results = append(results, out)
		}
		outRows.Close()
	}

	return results, true, nil
}

func (s *MySQLStorage) CreateDataWithDriverRef(driverID core.DriverId, data *core.Data) error {
	return s.createData(data, func(tx *sql.Tx) error {
		_, err := tx.Exec(insertDataRefDriver, idBytes(data.DataID), idBytes(driverID))
		return err
	})
}

func (s *MySQLStorage) CreateDataWithTaskRef(taskID core.TaskId, data *core.Data) error {
	return s.createData(data, func(tx *sql.Tx) error {
		_, err := tx.Exec(insertDataRefTask, idBytes(data.DataID), idBytes(taskID))
		return err
	})
}

func (s *MySQLStorage) createData(data *core.Data, insertRef func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return core.NewStorageError("beginning create_data transaction").WithCause(err)
	}

	if _, err := tx.Exec(insertData, idBytes(data.DataID), data.Value, data.HardLocality, data.Persisted); err != nil {
		tx.Rollback()
		metrics.StorageErrors.WithLabelValues("create_data").Inc()
		return core.NewStorageError("inserting data row").WithCause(err)
	}
	for _, loc := range data.Localities {
		if _, err := tx.Exec(insertDataLocality, idBytes(data.DataID), loc.Address); err != nil {
			tx.Rollback()
			metrics.StorageErrors.WithLabelValues("create_data").Inc()
			return core.NewStorageError("inserting data_locality row").WithCause(err)
		}
	}
	if err := insertRef(tx); err != nil {
		tx.Rollback()
		metrics.StorageErrors.WithLabelValues("create_data").Inc()
		return core.NewStorageError("inserting data reference row").WithCause(err)
	}
	if err := tx.Commit(); err != nil {
		metrics.StorageErrors.WithLabelValues("create_data").Inc()
		return core.NewStorageError("committing create_data transaction").WithCause(err)
	}
	return nil
}

func (s *MySQLStorage) GetData(dataID core.DataId) (*core.Data, error) {
	data := &core.Data{DataID: dataID}
	err := s.db.QueryRow(selectData, idBytes(dataID)).Scan(&data.Value, &data.HardLocality, &data.Persisted)
	if err == sql.ErrNoRows {
		metrics.StorageErrors.WithLabelValues("get_data").Inc()
		return nil, core.NewStorageError("unknown data id %s", dataID)
	}
	if err != nil {
		metrics.StorageErrors.WithLabelValues("get_data").Inc()
		return nil, core.NewStorageError("reading data row").WithCause(err)
	}

	rows, err := s.db.Query(selectDataLocalities, idBytes(dataID))
	if err != nil {
		metrics.StorageErrors.WithLabelValues("get_data").Inc()
		return nil, core.NewStorageError("reading data_locality rows").WithCause(err)
	}
	defer rows.Close()
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			metrics.StorageErrors.WithLabelValues("get_data").Inc()
			return nil, core.NewStorageError("scanning data_locality row").WithCause(err)
		}
		data.AddLocality(addr)
	}
	return data, nil
}

// execMany prepares query once and lets build repeatedly call yield
// with one row's worth of arguments, executing the prepared
// statement per row. This stands in for cursor.executemany, which
// database/sql has no direct equivalent of.
func execMany(tx *sql.Tx, query string, build func(yield func(...any) error) error) error {
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	return build(func(args ...any) error {
		_, err := stmt.Exec(args...)
		return err
	})
}

func idBytes(id uuid.UUID) []byte {
	b := make([]byte, 16)
	copy(b, id[:])
	return b
}

func wrapStorage(op string, err error) error {
	return core.NewStorageError(op).WithCause(err)
}
