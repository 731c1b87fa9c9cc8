package storage

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/chalkan3-sloth/spider-go/internal/core"
)

func oneTaskGraph() *core.TaskGraph {
	task := core.NewTask("example.add")
	task.TaskInputs = []core.TaskInput{{Type: "int32", Source: core.InputValue, Value: []byte{1, 0, 0, 0}}}
	task.TaskOutputs = []core.TaskOutput{{Type: "int32"}}

	g := core.NewTaskGraph()
	g.Tasks = []*core.Task{task}
	g.InputTaskIndices = []int{0}
	g.OutputTaskIndices = []int{0}
	return g
}

func TestSubmitJobsWithTx_HappyPath(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("unexpected error opening sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare(insertJob).ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(insertTask).ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(insertInputTask).ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(insertOutputTask).ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(insertTaskOutput).ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(insertTaskInputValue).ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("unexpected error beginning tx: %v", err)
	}

	driverID := core.NewId()
	jobs, err := submitJobsWithTx(tx, driverID, []*core.TaskGraph{oneTaskGraph()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("unexpected error committing: %v", err)
	}

	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSubmitJobsWithTx_EmptyGraphList(t *testing.T) {
	s := &MySQLStorage{}
	jobs, err := s.SubmitJobs(core.NewId(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobs != nil {
		t.Errorf("expected nil jobs for an empty graph list, got %v", jobs)
	}
}

func TestSubmitJobsWithTx_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("unexpected error opening sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare(insertJob).ExpectExec().WillReturnError(sqlErr("connection lost"))
	mock.ExpectRollback()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("unexpected error beginning tx: %v", err)
	}

	_, err = submitJobsWithTx(tx, core.NewId(), []*core.TaskGraph{oneTaskGraph()})
	if err == nil {
		t.Fatal("expected an error")
	}
	tx.Rollback()

	se, ok := err.(*core.SpiderError)
	if !ok || se.Kind != core.KindStorage {
		t.Errorf("expected a KindStorage SpiderError, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

type sqlErr string

func (e sqlErr) Error() string { return string(e) }
