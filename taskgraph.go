package spider

import "github.com/chalkan3-sloth/spider-go/internal/core"

// TaskGraph is a client-side composition of tasks, wrapping
// internal/core's index-based TaskGraph (spec.md §3-4.4, grounded on
// client/task_graph.py's TaskGraph).
type TaskGraph struct {
	impl *core.TaskGraph
}

func taskGraphFromImpl(impl *core.TaskGraph) *TaskGraph {
	return &TaskGraph{impl: impl}
}

// singleTaskGraph wraps one task function into a one-task graph whose
// sole task is both the graph's single input and single output,
// mirroring client/task.py's create_task plus a fresh core.TaskGraph
// around it.
func singleTaskGraph(fn taskFunction) (*core.TaskGraph, error) {
	task, err := CreateTask(fn)
	if err != nil {
		return nil, err
	}
	graph := core.NewTaskGraph()
	graph.Tasks = append(graph.Tasks, task)
	graph.InputTaskIndices = []int{0}
	graph.OutputTaskIndices = []int{0}
	return graph, nil
}

// asCoreGraph resolves a Group/Chain operand (either a task function
// or an already-built *TaskGraph) down to its internal/core graph.
func asCoreGraph(operand any) (*core.TaskGraph, error) {
	if g, ok := operand.(*TaskGraph); ok {
		return g.impl, nil
	}
	return singleTaskGraph(operand)
}

// Group composes task functions and/or task graphs into a single task
// graph as a disjoint union (spec.md §4.4 "group", grounded on
// client/task_graph.py's group).
func Group(operands ...any) (*TaskGraph, error) {
	graphs := make([]*core.TaskGraph, len(operands))
	for i, operand := range operands {
		g, err := asCoreGraph(operand)
		if err != nil {
			return nil, err
		}
		graphs[i] = g
	}
	return taskGraphFromImpl(core.Group(graphs...)), nil
}

// Chain splices parent's graph-level outputs into child's graph-level
// inputs, in order (spec.md §4.4 "chain", grounded on
// client/task_graph.py's chain). Both parent and child may be a task
// function or an already-built *TaskGraph.
func Chain(parent, child any) (*TaskGraph, error) {
	parentGraph, err := asCoreGraph(parent)
	if err != nil {
		return nil, err
	}
	childGraph, err := asCoreGraph(child)
	if err != nil {
		return nil, err
	}
	merged, err := core.Chain(parentGraph, childGraph)
	if err != nil {
		return nil, err
	}
	return taskGraphFromImpl(merged), nil
}
