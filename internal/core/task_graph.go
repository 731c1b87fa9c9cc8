package core

// InputOutputRef wires one task's output to another task's input
// within the same graph (spec.md §3 "task_input_output_refs").
type InputOutputRef struct {
	ConsumerTaskIdx   int
	ConsumerInputPos  int
	ProducerTaskIdx   int
	ProducerOutputPos int
}

// TaskGraph is an index-based DAG of Tasks (spec.md §3, grounded on
// storage/mariadb_storage.py's submit_jobs rather than the older
// dict/set TaskGraph found elsewhere in the original source).
//
// Dependencies holds (parent_index, child_index) pairs. InputTaskIndices
// and OutputTaskIndices name which tasks in Tasks expose graph-level
// inputs/outputs. TaskInputOutputRefs records which task output feeds
// which task input inside the graph, independent of Dependencies (a
// dependency can exist without a data edge, and vice versa is not
// meaningful but both are tracked the way the original does).
type TaskGraph struct {
	Tasks               []*Task
	Dependencies        [][2]int
	InputTaskIndices    []int
	OutputTaskIndices   []int
	TaskInputOutputRefs []InputOutputRef
}

// NewTaskGraph returns an empty graph ready to have tasks appended.
func NewTaskGraph() *TaskGraph {
	return &TaskGraph{}
}

// Copy returns a deep copy of g, used before binding arguments at
// submission time so the caller's original graph is left untouched
// (spec.md §4.5 "submit_jobs ... per-graph copy").
func (g *TaskGraph) Copy() *TaskGraph {
	cp := &TaskGraph{
		Tasks:               make([]*Task, len(g.Tasks)),
		Dependencies:        append([][2]int(nil), g.Dependencies...),
		InputTaskIndices:    append([]int(nil), g.InputTaskIndices...),
		OutputTaskIndices:   append([]int(nil), g.OutputTaskIndices...),
		TaskInputOutputRefs: append([]InputOutputRef(nil), g.TaskInputOutputRefs...),
	}
	for i, t := range g.Tasks {
		cp.Tasks[i] = t.Copy()
	}
	return cp
}

// NumInputs returns the number of graph-level inputs, i.e. the total
// count of unbound TaskInputs across the tasks named in
// InputTaskIndices, in order.
func (g *TaskGraph) NumInputs() int {
	n := 0
	for _, idx := range g.InputTaskIndices {
		n += len(g.Tasks[idx].TaskInputs)
	}
	return n
}

// NumOutputs returns the number of graph-level outputs, mirroring
// NumInputs for OutputTaskIndices.
func (g *TaskGraph) NumOutputs() int {
	n := 0
	for _, idx := range g.OutputTaskIndices {
		n += len(g.Tasks[idx].TaskOutputs)
	}
	return n
}

// Group composes graphs as a disjoint union: every task, dependency,
// input/output index, and input-output ref is carried over with
// indices offset by the running total of tasks already placed
// (spec.md §4.4 "group"). The resulting graph's InputTaskIndices and
// OutputTaskIndices are the concatenation of each input graph's own,
// in argument order, so graph-level input/output position is
// preserved across the merge.
func Group(graphs ...*TaskGraph) *TaskGraph {
	out := NewTaskGraph()
	offset := 0
	for _, g := range graphs {
		for _, t := range g.Tasks {
			out.Tasks = append(out.Tasks, t.Copy())
		}
		for _, dep := range g.Dependencies {
			out.Dependencies = append(out.Dependencies, [2]int{dep[0] + offset, dep[1] + offset})
		}
		for _, idx := range g.InputTaskIndices {
			out.InputTaskIndices = append(out.InputTaskIndices, idx+offset)
		}
		for _, idx := range g.OutputTaskIndices {
			out.OutputTaskIndices = append(out.OutputTaskIndices, idx+offset)
		}
		for _, ref := range g.TaskInputOutputRefs {
			out.TaskInputOutputRefs = append(out.TaskInputOutputRefs, InputOutputRef{
				ConsumerTaskIdx:   ref.ConsumerTaskIdx + offset,
				ConsumerInputPos:  ref.ConsumerInputPos,
				ProducerTaskIdx:   ref.ProducerTaskIdx + offset,
				ProducerOutputPos: ref.ProducerOutputPos,
			})
		}
		offset += len(g.Tasks)
	}
	return out
}

// Chain splices child's graph-level inputs to parent's graph-level
// outputs, in order, and returns the combined graph (spec.md §4.4
// "chain"). It requires parent's output count to equal child's input
// count; any mismatch is a KindType SpiderError with the exact
// message "Parent outputs size and child inputs size do not match."
//
// The splice walks both output and input positions with independent
// cursors: for each task in parent.OutputTaskIndices, for each of its
// TaskOutputs in order, the walk advances the matching cursor over
// child.InputTaskIndices/TaskInputs and records a new
// InputOutputRef linking the parent producer to the child consumer.
// A child task with zero inputs is skipped entirely and never
// advances the input cursor (spec.md §9 open question, resolved:
// zero-input tasks are transparent to the splice).
func Chain(parent, child *TaskGraph) (*TaskGraph, error) {
	if parent.NumOutputs() != child.NumInputs() {
		return nil, NewTypeError("Parent outputs size and child inputs size do not match.")
	}

	merged := Group(parent, child)
	offset := len(parent.Tasks)

	// Carry over child's existing input-output refs, offsetting task
	// indices the same way Group already did internally; Group
	// handles that, so here we only need to add the NEW cross-graph
	// refs produced by the splice, plus fold child's own
	// InputTaskIndices out of the merged graph's public input list
	// (the merged graph now satisfies those inputs internally).

	childInputIdx := 0     // position within child.InputTaskIndices
	childTaskInputPos := 0 // position within the current child task's TaskInputs

	advanceChildCursor := func() (taskIdx, inputPos int, ok bool) {
		for childInputIdx < len(child.InputTaskIndices) {
			ct := child.InputTaskIndices[childInputIdx]
			inputs := child.Tasks[ct].TaskInputs
			if childTaskInputPos >= len(inputs) {
				childInputIdx++
				childTaskInputPos = 0
				continue
			}
			taskIdx = ct
			inputPos = childTaskInputPos
			childTaskInputPos++
			return taskIdx, inputPos, true
		}
		return 0, 0, false
	}

	seenDeps := make(map[[2]int]bool, len(merged.Dependencies))
	for _, dep := range merged.Dependencies {
		seenDeps[dep] = true
	}

	for _, pt := range parent.OutputTaskIndices {
		outputs := parent.Tasks[pt].TaskOutputs
		for outPos := range outputs {
			ct, inPos, ok := advanceChildCursor()
			if !ok {
				return nil, NewTypeError("Parent outputs size and child inputs size do not match.")
			}
			merged.TaskInputOutputRefs = append(merged.TaskInputOutputRefs, InputOutputRef{
				ConsumerTaskIdx:   ct + offset,
				ConsumerInputPos:  inPos,
				ProducerTaskIdx:   pt,
				ProducerOutputPos: outPos,
			})
			dep := [2]int{pt, ct + offset}
			if !seenDeps[dep] {
				seenDeps[dep] = true
				merged.Dependencies = append(merged.Dependencies, dep)
			}
		}
	}

	// The merged graph exposes parent's inputs and child's outputs as
	// its own graph-level boundary; child's inputs (now satisfied by
	// parent's outputs) and parent's outputs (now consumed internally)
	// drop out of the public InputTaskIndices/OutputTaskIndices.
	merged.InputTaskIndices = append([]int(nil), parent.InputTaskIndices...)
	merged.OutputTaskIndices = make([]int, len(child.OutputTaskIndices))
	for i, idx := range child.OutputTaskIndices {
		merged.OutputTaskIndices[i] = idx + offset
	}

	return merged, nil
}
