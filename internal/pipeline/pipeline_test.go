package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, task *Task) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, task *Task) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, task)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineExecute tests step ordering and error handling.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(_ context.Context, _ *Task) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New([]Step{record("a"), record("b"), record("c")})

		if err := p.Execute(context.Background(), NewTask("http://x")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(order, []string{"a", "b", "c"}) {
			t.Errorf("expected a, b, c, got %v", order)
		}
		if !reflect.DeepEqual(p.StepNames(), []string{"a", "b", "c"}) {
			t.Errorf("unexpected step names %v", p.StepNames())
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		failing := &mockStep{name: "fail", doFunc: func(context.Context, *Task) error { return boom }}
		after := &mockStep{name: "after"}

		task := NewTask("http://x")
		err := New([]Step{failing, after}).Execute(context.Background(), task)
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if !errors.Is(task.Err, boom) {
			t.Errorf("expected task error to be recorded, got %v", task.Err)
		}
		if after.callCount != 0 {
			t.Error("expected later step to be skipped")
		}
	})

	t.Run("checks cancellation before each step", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		a := &mockStep{name: "a", doFunc: func(context.Context, *Task) error {
			cancel()
			return nil
		}}
		b := &mockStep{name: "b"}

		err := New([]Step{a, b}).Execute(ctx, NewTask("http://x"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if b.callCount != 0 {
			t.Error("expected step after cancellation to be skipped")
		}
	})
}
