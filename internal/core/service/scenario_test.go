package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yndnr/dynbind-go/internal/core/domain"
	"github.com/yndnr/dynbind-go/internal/core/dynvar"
)

func TestDemoService_RunAll(t *testing.T) {
	rt := dynvar.NewRuntime()
	svc := NewDemoService(rt, nil)

	results, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != len(svc.Scenarios()) {
		t.Fatalf("got %d results, want %d", len(results), len(svc.Scenarios()))
	}

	for _, res := range results {
		t.Run(res.Name, func(t *testing.T) {
			if !res.Passed {
				t.Errorf("scenario failed: %s", res.Error)
			}
			if len(res.Steps) == 0 {
				t.Error("scenario recorded no steps")
			}
			for i, step := range res.Steps {
				if !step.OK {
					t.Errorf("step %d %s/%s = %s", i, step.Thread, step.Op, step.Result)
				}
			}
		})
	}

	if got := rt.Namespaces(); len(got) != 0 {
		t.Errorf("Namespaces() = %v, want none left behind", got)
	}
	if rt.ThreadCount() != 0 {
		t.Errorf("ThreadCount() = %d, want 0", rt.ThreadCount())
	}
}

func TestDemoService_RunSelected(t *testing.T) {
	svc := NewDemoService(dynvar.NewRuntime(), nil)

	results, err := svc.Run(context.Background(), "release", "unbound")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 2 || results[0].Name != "release" || results[1].Name != "unbound" {
		t.Errorf("Run() = %+v, want release then unbound", results)
	}
}

func TestDemoService_RunUnknown(t *testing.T) {
	svc := NewDemoService(dynvar.NewRuntime(), nil)

	_, err := svc.Run(context.Background(), "nope")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Run() error = %v, want ErrInvalidArgument", err)
	}
}

func TestDemoService_RunCanceled(t *testing.T) {
	svc := NewDemoService(dynvar.NewRuntime(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := svc.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestDemoService_UnboundSteps(t *testing.T) {
	svc := NewDemoService(dynvar.NewRuntime(), nil)

	results, err := svc.Run(context.Background(), "unbound")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"ok", "10", "ok", "20", "ok", "false", "error DB-VAR-4040"}
	steps := results[0].Steps
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i, w := range want {
		if steps[i].Result != w {
			t.Errorf("step %d (%s) = %q, want %q", i, steps[i].Op, steps[i].Result, w)
		}
	}
}

func TestRecorder(t *testing.T) {
	tests := []struct {
		name   string
		record func(r *recorder)
		wantOK bool
	}{
		{"value match", func(r *recorder) { r.value("m", "get", 1, nil, 1) }, true},
		{"value mismatch", func(r *recorder) { r.value("m", "get", 1, nil, 2) }, false},
		{"value error", func(r *recorder) { r.value("m", "get", nil, domain.ErrUnbound, 1) }, false},
		{"ok", func(r *recorder) { r.ok("m", "pop", nil) }, true},
		{"ok error", func(r *recorder) { r.ok("m", "pop", domain.ErrStackUnderflow) }, false},
		{"fails match", func(r *recorder) { r.fails("m", "pop", domain.ErrStackUnderflow, domain.ErrStackUnderflow) }, true},
		{"fails other", func(r *recorder) { r.fails("m", "pop", domain.ErrUnbound, domain.ErrStackUnderflow) }, false},
		{"fails nil", func(r *recorder) { r.fails("m", "pop", nil, domain.ErrStackUnderflow) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			tt.record(r)
			if len(r.steps) != 1 {
				t.Fatalf("got %d steps, want 1", len(r.steps))
			}
			if r.steps[0].OK != tt.wantOK {
				t.Errorf("OK = %v, want %v", r.steps[0].OK, tt.wantOK)
			}
			if (r.err == nil) != tt.wantOK {
				t.Errorf("err = %v, want failure %v", r.err, !tt.wantOK)
			}
		})
	}
}

func TestRecorder_KeepsFirstError(t *testing.T) {
	r := &recorder{}
	r.value("m", "first", 1, nil, 2)
	r.value("m", "second", 3, nil, 4)

	if r.err == nil || r.err.Error() != "m: first: got 1, want 2" {
		t.Errorf("err = %v, want the first mismatch", r.err)
	}
}
