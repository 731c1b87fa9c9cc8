package core

import "testing"

func singleTask(name string, numInputs, numOutputs int) *Task {
	t := NewTask(name)
	for i := 0; i < numInputs; i++ {
		t.TaskInputs = append(t.TaskInputs, TaskInput{Type: "int32"})
	}
	for i := 0; i < numOutputs; i++ {
		t.TaskOutputs = append(t.TaskOutputs, TaskOutput{Type: "int32"})
	}
	return t
}

func graphOf(t *Task) *TaskGraph {
	g := NewTaskGraph()
	g.Tasks = append(g.Tasks, t)
	g.InputTaskIndices = []int{0}
	g.OutputTaskIndices = []int{0}
	return g
}

func TestGroup_DisjointUnion(t *testing.T) {
	a := graphOf(singleTask("a", 1, 1))
	b := graphOf(singleTask("b", 2, 1))

	merged := Group(a, b)

	if len(merged.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(merged.Tasks))
	}
	if got, want := merged.InputTaskIndices, []int{0, 1}; !intSliceEq(got, want) {
		t.Errorf("InputTaskIndices = %v, want %v", got, want)
	}
	if got, want := merged.OutputTaskIndices, []int{0, 1}; !intSliceEq(got, want) {
		t.Errorf("OutputTaskIndices = %v, want %v", got, want)
	}
}

func TestGroup_OffsetsDependenciesAndRefs(t *testing.T) {
	p1 := singleTask("p1", 0, 1)
	p2 := singleTask("p2", 1, 0)
	g1 := NewTaskGraph()
	g1.Tasks = []*Task{p1, p2}
	g1.Dependencies = [][2]int{{0, 1}}
	g1.TaskInputOutputRefs = []InputOutputRef{{ConsumerTaskIdx: 1, ConsumerInputPos: 0, ProducerTaskIdx: 0, ProducerOutputPos: 0}}

	g2 := graphOf(singleTask("q", 0, 1))

	merged := Group(g1, g2)

	if len(merged.Dependencies) != 1 || merged.Dependencies[0] != ([2]int{0, 1}) {
		t.Errorf("unexpected dependencies: %v", merged.Dependencies)
	}
	if len(merged.TaskInputOutputRefs) != 1 {
		t.Fatalf("expected 1 ref, got %d", len(merged.TaskInputOutputRefs))
	}
	ref := merged.TaskInputOutputRefs[0]
	if ref.ConsumerTaskIdx != 1 || ref.ProducerTaskIdx != 0 {
		t.Errorf("unexpected ref offsets: %+v", ref)
	}
	// g2's single task lands at index 2.
	if merged.OutputTaskIndices[len(merged.OutputTaskIndices)-1] != 2 {
		t.Errorf("expected g2's task offset to 2, got %v", merged.OutputTaskIndices)
	}
}

func TestChain_SplicesOutputsToInputs(t *testing.T) {
	parent := graphOf(singleTask("parent", 0, 2))
	child := graphOf(singleTask("child", 2, 1))

	merged, err := Chain(parent, child)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(merged.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(merged.Tasks))
	}
	if len(merged.TaskInputOutputRefs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(merged.TaskInputOutputRefs))
	}
	for i, ref := range merged.TaskInputOutputRefs {
		if ref.ProducerTaskIdx != 0 || ref.ProducerOutputPos != i {
			t.Errorf("ref %d: unexpected producer side: %+v", i, ref)
		}
		if ref.ConsumerTaskIdx != 1 || ref.ConsumerInputPos != i {
			t.Errorf("ref %d: unexpected consumer side: %+v", i, ref)
		}
	}
	// parent has no graph inputs, child's output is the only public output.
	if merged.NumInputs() != 0 {
		t.Errorf("expected no public inputs, got %d", merged.NumInputs())
	}
	if len(merged.OutputTaskIndices) != 1 || merged.OutputTaskIndices[0] != 1 {
		t.Errorf("expected public output at offset task 1, got %v", merged.OutputTaskIndices)
	}
	if len(merged.Dependencies) != 1 || merged.Dependencies[0] != ([2]int{0, 1}) {
		t.Errorf("expected one splice dependency (0,1), got %v", merged.Dependencies)
	}
}

// TestChain_GroupThenSwap mirrors spec.md's scenario 2: chaining a
// two-task group into a single task that consumes both outputs
// produces 2 dependencies and 2 input-output refs.
func TestChain_GroupThenSwap(t *testing.T) {
	parent := Group(graphOf(singleTask("double", 1, 1)), graphOf(singleTask("double", 1, 1)))
	child := graphOf(singleTask("swap", 2, 2))

	merged, err := Chain(parent, child)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(merged.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(merged.Tasks))
	}
	if len(merged.Dependencies) != 2 {
		t.Fatalf("expected 2 dependencies, got %d: %v", len(merged.Dependencies), merged.Dependencies)
	}
	if len(merged.InputTaskIndices) != 2 {
		t.Errorf("expected 2 public inputs, got %v", merged.InputTaskIndices)
	}
	if len(merged.OutputTaskIndices) != 1 {
		t.Errorf("expected 1 public output, got %v", merged.OutputTaskIndices)
	}
	if len(merged.TaskInputOutputRefs) != 2 {
		t.Errorf("expected 2 refs, got %d", len(merged.TaskInputOutputRefs))
	}
	for _, dep := range merged.Dependencies {
		if dep[1] != 2 {
			t.Errorf("expected every dependency to point into the swap task (index 2), got %v", dep)
		}
		if dep[0] != 0 && dep[0] != 1 {
			t.Errorf("expected dependency parents to be task 0 or 1, got %v", dep)
		}
	}
}

func TestChain_MismatchedSizesIsTypeError(t *testing.T) {
	parent := graphOf(singleTask("parent", 0, 1))
	child := graphOf(singleTask("child", 2, 1))

	_, err := Chain(parent, child)
	if err == nil {
		t.Fatal("expected an error")
	}
	se, ok := err.(*SpiderError)
	if !ok {
		t.Fatalf("expected *SpiderError, got %T", err)
	}
	if se.Kind != KindType {
		t.Errorf("expected KindType, got %v", se.Kind)
	}
	if se.Message != "Parent outputs size and child inputs size do not match." {
		t.Errorf("unexpected message: %q", se.Message)
	}
}

func TestChain_ZeroInputChildTaskIsTransparent(t *testing.T) {
	parent := graphOf(singleTask("parent", 0, 1))

	zeroInput := singleTask("noop", 0, 0)
	consumer := singleTask("consumer", 1, 0)
	child := NewTaskGraph()
	child.Tasks = []*Task{zeroInput, consumer}
	child.InputTaskIndices = []int{0, 1}

	merged, err := Chain(parent, child)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(merged.TaskInputOutputRefs) != 1 {
		t.Fatalf("expected 1 ref, got %d", len(merged.TaskInputOutputRefs))
	}
	ref := merged.TaskInputOutputRefs[0]
	// consumer is child task index 1, offset by len(parent.Tasks)==1.
	if ref.ConsumerTaskIdx != 2 || ref.ConsumerInputPos != 0 {
		t.Errorf("unexpected consumer side: %+v", ref)
	}
}

func TestTaskGraph_Copy_IsDeep(t *testing.T) {
	g := graphOf(singleTask("a", 1, 1))
	cp := g.Copy()

	cp.Tasks[0].FunctionName = "mutated"
	if g.Tasks[0].FunctionName == "mutated" {
		t.Error("Copy should not alias the original task")
	}
}

func intSliceEq(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
